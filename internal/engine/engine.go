// Package engine implements the in-memory ledger: per-client accounts, a
// transaction log, and the dispute lifecycle over recorded transactions.
//
// Concurrency model: the account table, the transaction log and the disputed
// set are each guarded by their own RWMutex; every account additionally has
// its own exclusive lock for balance mutation, so operations on different
// accounts never contend. Table-level locks are acquired before per-account
// locks and are held only for a single structural change. No operation
// touches two accounts.
//
// Every operation is atomic: new balances are computed into temporaries and
// committed only after all checks pass, so a failed call leaves all state
// exactly as it was.
package engine

import (
	"sort"
	"sync"

	"github.com/paystream-engine/internal/domain/account"
	"github.com/paystream-engine/internal/domain/money"
	"github.com/paystream-engine/internal/domain/shared"
)

// Config carries engine policy knobs.
type Config struct {
	// AllowRedispute permits disputing a transaction again after it has been
	// resolved. Disabled, a resolved transaction is terminal for disputes.
	AllowRedispute bool
}

// txState tracks the lifecycle of one transaction id. An id is consumed the
// moment an attempt reserves it, successful or not, and is never released.
type txState uint8

const (
	// txPending marks an id reserved by an in-flight attempt.
	txPending txState = iota
	// txRetryable marks an id whose deposit lost the account-creation race;
	// only the identical deposit may claim it again.
	txRetryable
	// txConsumed marks an id burned by a failed attempt. Not disputable.
	txConsumed
	// txRecorded marks a successful deposit or withdrawal.
	txRecorded
	// txChargedBack is terminal.
	txChargedBack
)

type txRecord struct {
	client   shared.ClientID
	kind     shared.OperationType
	amount   money.Money
	state    txState
	resolved bool
}

type accountEntry struct {
	mu   sync.Mutex
	acct account.Account
}

// Engine owns the account table and transaction log and applies the five
// ledger operations. Safe for concurrent use.
type Engine struct {
	allowRedispute bool

	accountsMu sync.RWMutex
	accounts   map[shared.ClientID]*accountEntry

	txMu         sync.RWMutex
	transactions map[shared.TxID]*txRecord

	disputedMu sync.RWMutex
	disputed   map[shared.TxID]struct{}
}

// New creates an empty engine.
func New(cfg Config) *Engine {
	return &Engine{
		allowRedispute: cfg.AllowRedispute,
		accounts:       make(map[shared.ClientID]*accountEntry),
		transactions:   make(map[shared.TxID]*txRecord),
		disputed:       make(map[shared.TxID]struct{}),
	}
}

// Deposit adds amount to the client's available funds, creating the account
// on first use. The tx id is consumed even when the deposit fails; a
// TryAgainError keeps the reservation claimable by the identical retry.
func (e *Engine) Deposit(client shared.ClientID, tx shared.TxID, amount money.Money) error {
	if err := e.reserveTx(client, tx, shared.OperationDeposit, amount); err != nil {
		return err
	}

	entry, err := e.entryForDeposit(client, tx)
	if err != nil {
		e.finishTx(tx, txRetryable)
		return err
	}

	err = func() error {
		entry.mu.Lock()
		defer entry.mu.Unlock()

		if entry.acct.Locked {
			return AccountLockedError{Client: client}
		}
		newAvailable, addErr := entry.acct.Available.Add(amount)
		if addErr != nil {
			return DepositError{Client: client, Tx: tx, Amount: amount, Err: addErr}
		}
		entry.acct.Available = newAvailable
		return nil
	}()
	if err != nil {
		e.finishTx(tx, txConsumed)
		return err
	}

	e.finishTx(tx, txRecorded)
	return nil
}

// Withdrawal subtracts amount from the client's available funds. The tx id
// is consumed even when the withdrawal fails.
func (e *Engine) Withdrawal(client shared.ClientID, tx shared.TxID, amount money.Money) error {
	if err := e.reserveTx(client, tx, shared.OperationWithdrawal, amount); err != nil {
		return err
	}

	entry := e.lookupAccount(client)
	if entry == nil {
		e.finishTx(tx, txConsumed)
		return AccountDoesNotExistError{Client: client}
	}

	err := func() error {
		entry.mu.Lock()
		defer entry.mu.Unlock()

		if entry.acct.Locked {
			return AccountLockedError{Client: client}
		}
		newAvailable, subErr := entry.acct.Available.Sub(amount)
		if subErr != nil {
			return InsufficientFundsError{Client: client, Tx: tx, Amount: amount}
		}
		entry.acct.Available = newAvailable
		return nil
	}()
	if err != nil {
		e.finishTx(tx, txConsumed)
		return err
	}

	e.finishTx(tx, txRecorded)
	return nil
}

// Dispute moves the recorded amount of tx from available to held and adds tx
// to the disputed set.
func (e *Engine) Dispute(client shared.ClientID, tx shared.TxID) error {
	e.disputedMu.RLock()
	_, disputed := e.disputed[tx]
	e.disputedMu.RUnlock()
	if disputed {
		return AlreadyDisputedError{Tx: tx}
	}

	rec, err := e.recordedTx(tx)
	if err != nil {
		return err
	}
	if rec.resolved && !e.allowRedispute {
		return AlreadyResolvedError{Tx: tx}
	}

	entry := e.lookupAccount(client)
	if entry == nil {
		return AccountNotFoundError{Client: client}
	}
	if rec.client != client {
		// The transaction exists but belongs to another client's account.
		return TransactionNotFoundError{Tx: tx}
	}
	amount := rec.amount

	e.disputedMu.Lock()
	defer e.disputedMu.Unlock()
	// Re-check under the write lock: another dispute may have won the race
	// between the fast-path check and here.
	if _, again := e.disputed[tx]; again {
		return AlreadyDisputedError{Tx: tx}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	newAvailable, subErr := entry.acct.Available.Sub(amount)
	if subErr != nil {
		return DisputeAvailableError{Tx: tx, Err: subErr}
	}
	newHeld, addErr := entry.acct.Held.Add(amount)
	if addErr != nil {
		return DisputeHeldError{Tx: tx, Err: addErr}
	}
	entry.acct.Available = newAvailable
	entry.acct.Held = newHeld
	e.disputed[tx] = struct{}{}
	return nil
}

// Resolve moves the disputed amount of tx back from held to available and
// removes tx from the disputed set.
func (e *Engine) Resolve(client shared.ClientID, tx shared.TxID) error {
	rec, err := e.recordedTx(tx)
	if err != nil {
		return err
	}

	if err := e.requireDisputed(tx); err != nil {
		return err
	}

	entry := e.lookupAccount(client)
	if entry == nil {
		return AccountNotFoundError{Client: client}
	}
	if rec.client != client {
		return TransactionNotFoundError{Tx: tx}
	}
	amount := rec.amount

	e.disputedMu.Lock()
	defer e.disputedMu.Unlock()
	if _, in := e.disputed[tx]; !in {
		return NotDisputedError{Tx: tx}
	}

	moveErr := func() error {
		entry.mu.Lock()
		defer entry.mu.Unlock()

		newHeld, subErr := entry.acct.Held.Sub(amount)
		if subErr != nil {
			return ResolveHeldError{Tx: tx, Err: subErr}
		}
		newAvailable, addErr := entry.acct.Available.Add(amount)
		if addErr != nil {
			return ResolveAvailableError{Tx: tx, Err: addErr}
		}
		entry.acct.Held = newHeld
		entry.acct.Available = newAvailable
		return nil
	}()
	if moveErr != nil {
		return moveErr
	}

	e.markResolved(tx)
	delete(e.disputed, tx)
	return nil
}

// Chargeback voids the disputed amount of tx: it is subtracted from held and
// not returned to available. The owning account is locked permanently.
func (e *Engine) Chargeback(client shared.ClientID, tx shared.TxID) error {
	rec, err := e.recordedTx(tx)
	if err != nil {
		return err
	}

	if err := e.requireDisputed(tx); err != nil {
		return err
	}

	entry := e.lookupAccount(client)
	if entry == nil {
		return AccountNotFoundError{Client: client}
	}
	if rec.client != client {
		return TransactionNotFoundError{Tx: tx}
	}
	amount := rec.amount

	e.disputedMu.Lock()
	defer e.disputedMu.Unlock()
	if _, in := e.disputed[tx]; !in {
		return NotDisputedError{Tx: tx}
	}

	moveErr := func() error {
		entry.mu.Lock()
		defer entry.mu.Unlock()

		newHeld, subErr := entry.acct.Held.Sub(amount)
		if subErr != nil {
			return ChargebackHeldError{Tx: tx, Err: subErr}
		}
		entry.acct.Held = newHeld
		entry.acct.Locked = true
		return nil
	}()
	if moveErr != nil {
		return moveErr
	}

	e.finishTx(tx, txChargedBack)
	delete(e.disputed, tx)
	return nil
}

// Snapshots returns a read-only copy of every known account, ordered by
// client id.
func (e *Engine) Snapshots() []account.Snapshot {
	e.accountsMu.RLock()
	clients := make([]shared.ClientID, 0, len(e.accounts))
	entries := make(map[shared.ClientID]*accountEntry, len(e.accounts))
	for client, entry := range e.accounts {
		clients = append(clients, client)
		entries[client] = entry
	}
	e.accountsMu.RUnlock()

	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })

	snapshots := make([]account.Snapshot, 0, len(clients))
	for _, client := range clients {
		snapshots = append(snapshots, snapshotOf(client, entries[client]))
	}
	return snapshots
}

// Snapshot returns a read-only copy of one account.
func (e *Engine) Snapshot(client shared.ClientID) (account.Snapshot, error) {
	entry := e.lookupAccount(client)
	if entry == nil {
		return account.Snapshot{}, AccountNotFoundError{Client: client}
	}
	return snapshotOf(client, entry), nil
}

func snapshotOf(client shared.ClientID, entry *accountEntry) account.Snapshot {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return account.Snapshot{
		Client:    client,
		Available: entry.acct.Available,
		Held:      entry.acct.Held,
		Locked:    entry.acct.Locked,
	}
}

// reserveTx consumes the tx id before any balance work, so callers can never
// reuse an id after an attempt, successful or not. The only exception is a
// txRetryable reservation, which the identical deposit may claim again.
func (e *Engine) reserveTx(client shared.ClientID, tx shared.TxID, kind shared.OperationType, amount money.Money) error {
	e.txMu.Lock()
	defer e.txMu.Unlock()

	if rec, ok := e.transactions[tx]; ok {
		if rec.state == txRetryable && kind == shared.OperationDeposit &&
			rec.client == client && rec.kind == kind && rec.amount == amount {
			rec.state = txPending
			return nil
		}
		return TransactionNotUniqueError{Tx: tx}
	}

	e.transactions[tx] = &txRecord{client: client, kind: kind, amount: amount, state: txPending}
	return nil
}

func (e *Engine) finishTx(tx shared.TxID, state txState) {
	e.txMu.Lock()
	defer e.txMu.Unlock()
	if rec, ok := e.transactions[tx]; ok {
		rec.state = state
	}
}

func (e *Engine) markResolved(tx shared.TxID) {
	e.txMu.Lock()
	defer e.txMu.Unlock()
	if rec, ok := e.transactions[tx]; ok {
		rec.resolved = true
	}
}

// recordedTx looks up a successfully recorded transaction. Ids that are
// unknown, consumed by a failed attempt, or charged back all read as not
// found. Returns a copy so callers read a consistent view.
func (e *Engine) recordedTx(tx shared.TxID) (txRecord, error) {
	e.txMu.RLock()
	defer e.txMu.RUnlock()

	rec, ok := e.transactions[tx]
	if !ok || rec.state != txRecorded {
		return txRecord{}, TransactionNotFoundError{Tx: tx}
	}
	return *rec, nil
}

func (e *Engine) requireDisputed(tx shared.TxID) error {
	e.disputedMu.RLock()
	defer e.disputedMu.RUnlock()
	if _, in := e.disputed[tx]; !in {
		return NotDisputedError{Tx: tx}
	}
	return nil
}

// lookupAccount takes only the table read lock; balance access afterwards
// goes through the entry's own lock.
func (e *Engine) lookupAccount(client shared.ClientID) *accountEntry {
	e.accountsMu.RLock()
	defer e.accountsMu.RUnlock()
	return e.accounts[client]
}

// entryForDeposit finds or creates the client's account. Creation follows a
// read, release, build, write-lock, insert sequence; losing the insert race
// surfaces as TryAgainError instead of overwriting the winner's state.
func (e *Engine) entryForDeposit(client shared.ClientID, tx shared.TxID) (*accountEntry, error) {
	if entry := e.lookupAccount(client); entry != nil {
		return entry, nil
	}

	fresh := &accountEntry{}

	e.accountsMu.Lock()
	defer e.accountsMu.Unlock()
	if _, exists := e.accounts[client]; exists {
		return nil, TryAgainError{Tx: tx}
	}
	e.accounts[client] = fresh
	return fresh, nil
}
