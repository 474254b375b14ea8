package engine

import (
	"errors"
	"fmt"

	"github.com/paystream-engine/internal/domain/money"
	"github.com/paystream-engine/internal/domain/shared"
)

// Rejection marks failures that invalidate a single operation while leaving
// the engine healthy. Stream processors report them and keep going; anything
// that is not a Rejection (and not a TryAgainError) is an infrastructure
// fault for the caller to handle.
type Rejection interface {
	error
	rejection()
}

// IsRejection reports whether err is a per-operation rejection.
func IsRejection(err error) bool {
	var r Rejection
	return errors.As(err, &r)
}

// AccountLockedError rejects deposits and withdrawals on an account frozen
// by a completed chargeback.
type AccountLockedError struct {
	Client shared.ClientID
}

func (e AccountLockedError) Error() string {
	return fmt.Sprintf("cannot operate: account for client %d is locked", e.Client)
}

func (AccountLockedError) rejection() {}

// AccountDoesNotExistError rejects a withdrawal for a client that never
// deposited.
type AccountDoesNotExistError struct {
	Client shared.ClientID
}

func (e AccountDoesNotExistError) Error() string {
	return fmt.Sprintf("account for client %d does not exist", e.Client)
}

func (AccountDoesNotExistError) rejection() {}

// AccountNotFoundError rejects a dispute, resolve or chargeback naming a
// client with no account.
type AccountNotFoundError struct {
	Client shared.ClientID
}

func (e AccountNotFoundError) Error() string {
	return fmt.Sprintf("cannot find account for client %d", e.Client)
}

func (AccountNotFoundError) rejection() {}

// TransactionNotUniqueError rejects reuse of a transaction id that any
// deposit or withdrawal has already consumed.
type TransactionNotUniqueError struct {
	Tx shared.TxID
}

func (e TransactionNotUniqueError) Error() string {
	return fmt.Sprintf("transaction id must be unique but already exists: %d", e.Tx)
}

func (TransactionNotUniqueError) rejection() {}

// TransactionNotFoundError rejects a dispute, resolve or chargeback naming a
// transaction id with no successfully recorded deposit or withdrawal for the
// requesting client.
type TransactionNotFoundError struct {
	Tx shared.TxID
}

func (e TransactionNotFoundError) Error() string {
	return fmt.Sprintf("cannot find transaction: %d", e.Tx)
}

func (TransactionNotFoundError) rejection() {}

// TryAgainError signals a benign race on first-time account creation: the
// deposit lost the insert and must be re-issued by the caller. The original
// tx id stays reserved for the identical retry, so this is not a Rejection;
// retry policy belongs to the caller.
type TryAgainError struct {
	Tx shared.TxID
}

func (e TryAgainError) Error() string {
	return fmt.Sprintf("deposit transaction %d failed due to a creation race, try again", e.Tx)
}

// DepositError rejects a deposit whose balance mutation failed.
type DepositError struct {
	Client shared.ClientID
	Tx     shared.TxID
	Amount money.Money
	Err    error
}

func (e DepositError) Error() string {
	return fmt.Sprintf("cannot deposit %s for client %d, transaction %d: %v", e.Amount, e.Client, e.Tx, e.Err)
}

func (e DepositError) Unwrap() error { return e.Err }

func (DepositError) rejection() {}

// InsufficientFundsError rejects a withdrawal exceeding the available funds.
type InsufficientFundsError struct {
	Client shared.ClientID
	Tx     shared.TxID
	Amount money.Money
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds to withdraw %s for client %d, transaction %d", e.Amount, e.Client, e.Tx)
}

func (InsufficientFundsError) rejection() {}

// AlreadyDisputedError rejects a dispute of a transaction already under
// dispute.
type AlreadyDisputedError struct {
	Tx shared.TxID
}

func (e AlreadyDisputedError) Error() string {
	return fmt.Sprintf("transaction already disputed: %d", e.Tx)
}

func (AlreadyDisputedError) rejection() {}

// AlreadyResolvedError rejects a second dispute of a resolved transaction
// when re-dispute is disabled.
type AlreadyResolvedError struct {
	Tx shared.TxID
}

func (e AlreadyResolvedError) Error() string {
	return fmt.Sprintf("transaction was already resolved and cannot be disputed again: %d", e.Tx)
}

func (AlreadyResolvedError) rejection() {}

// NotDisputedError rejects a resolve or chargeback of a transaction that is
// not currently under dispute.
type NotDisputedError struct {
	Tx shared.TxID
}

func (e NotDisputedError) Error() string {
	return fmt.Sprintf("transaction is not disputed: %d", e.Tx)
}

func (NotDisputedError) rejection() {}

// DisputeAvailableError rejects a dispute whose amount no longer fits in the
// account's available funds (they may have been withdrawn since the original
// deposit). Funds never go negative.
type DisputeAvailableError struct {
	Tx  shared.TxID
	Err error
}

func (e DisputeAvailableError) Error() string {
	return fmt.Sprintf("cannot subtract available funds to dispute transaction %d: %v", e.Tx, e.Err)
}

func (e DisputeAvailableError) Unwrap() error { return e.Err }

func (DisputeAvailableError) rejection() {}

// DisputeHeldError rejects a dispute that would overflow the held funds.
type DisputeHeldError struct {
	Tx  shared.TxID
	Err error
}

func (e DisputeHeldError) Error() string {
	return fmt.Sprintf("cannot add held funds to dispute transaction %d: %v", e.Tx, e.Err)
}

func (e DisputeHeldError) Unwrap() error { return e.Err }

func (DisputeHeldError) rejection() {}

// ResolveHeldError rejects a resolve that cannot subtract the disputed
// amount from held funds.
type ResolveHeldError struct {
	Tx  shared.TxID
	Err error
}

func (e ResolveHeldError) Error() string {
	return fmt.Sprintf("cannot subtract held funds to resolve transaction %d: %v", e.Tx, e.Err)
}

func (e ResolveHeldError) Unwrap() error { return e.Err }

func (ResolveHeldError) rejection() {}

// ResolveAvailableError rejects a resolve that would overflow the available
// funds.
type ResolveAvailableError struct {
	Tx  shared.TxID
	Err error
}

func (e ResolveAvailableError) Error() string {
	return fmt.Sprintf("cannot add available funds to resolve transaction %d: %v", e.Tx, e.Err)
}

func (e ResolveAvailableError) Unwrap() error { return e.Err }

func (ResolveAvailableError) rejection() {}

// ChargebackHeldError rejects a chargeback that cannot subtract the disputed
// amount from held funds.
type ChargebackHeldError struct {
	Tx  shared.TxID
	Err error
}

func (e ChargebackHeldError) Error() string {
	return fmt.Sprintf("cannot subtract held funds to charge back transaction %d: %v", e.Tx, e.Err)
}

func (e ChargebackHeldError) Unwrap() error { return e.Err }

func (ChargebackHeldError) rejection() {}

// MissingAmountError rejects a deposit or withdrawal record without the
// mandatory amount field.
type MissingAmountError struct {
	Type shared.OperationType
}

func (e MissingAmountError) Error() string {
	return fmt.Sprintf("%s record misses the mandatory amount field", e.Type)
}

func (MissingAmountError) rejection() {}

// InvalidAmountError rejects a record whose amount field cannot be parsed
// into a money value.
type InvalidAmountError struct {
	Input string
	Err   error
}

func (e InvalidAmountError) Error() string {
	return fmt.Sprintf("cannot parse amount %q: %v", e.Input, e.Err)
}

func (e InvalidAmountError) Unwrap() error { return e.Err }

func (InvalidAmountError) rejection() {}

// UnknownOperationError rejects an operation tag outside the closed set of
// five kinds.
type UnknownOperationError struct {
	Type shared.OperationType
}

func (e UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation type: %q", e.Type)
}

func (e UnknownOperationError) Unwrap() error { return shared.ErrUnknownOperationType }

func (UnknownOperationError) rejection() {}
