package shared

import (
	"errors"
	"fmt"
	"time"
)

// ClientID identifies an account owner.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Deposits and withdrawals share a
// single id namespace for the whole engine lifetime.
type TxID uint32

// OperationType defines the closed set of ledger operations. Every switch
// over it must handle all five kinds and reject anything else, so adding a
// kind is a compile-visible change.
type OperationType string

const (
	OperationDeposit    OperationType = "deposit"
	OperationWithdrawal OperationType = "withdrawal"
	OperationDispute    OperationType = "dispute"
	OperationResolve    OperationType = "resolve"
	OperationChargeback OperationType = "chargeback"
)

// ErrUnknownOperationType reports an operation tag outside the closed set.
var ErrUnknownOperationType = errors.New("unknown operation type")

// ParseOperationType validates a decoded operation tag.
func ParseOperationType(tag string) (OperationType, error) {
	switch op := OperationType(tag); op {
	case OperationDeposit, OperationWithdrawal, OperationDispute, OperationResolve, OperationChargeback:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperationType, tag)
	}
}

// RequiresAmount reports whether records of this kind must carry an amount
// field. Dispute, resolve and chargeback reference a recorded transaction
// and never carry one.
func (t OperationType) RequiresAmount() bool {
	return t == OperationDeposit || t == OperationWithdrawal
}

// Operation is one decoded input record. Amount holds the raw textual amount
// and is empty for the kinds that do not carry one; parsing it into a money
// value is the dispatcher's job so value errors surface as typed failures.
type Operation struct {
	Type   OperationType
	Client ClientID
	Tx     TxID
	Amount string
}

// OperationRequest is the wire form of an Operation used by the HTTP API and
// the Kafka ingestion topic.
type OperationRequest struct {
	Type          string    `json:"type"`
	Client        ClientID  `json:"client"`
	Tx            TxID      `json:"tx"`
	Amount        string    `json:"amount,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// OperationEvent is published after an operation has been applied. It is an
// audit record carrying the resulting balances, not a command; consumers must
// not replay it into the engine.
type OperationEvent struct {
	Type          string    `json:"type"`
	Client        ClientID  `json:"client"`
	Tx            TxID      `json:"tx"`
	Amount        string    `json:"amount,omitempty"`
	Available     string    `json:"available"`
	Held          string    `json:"held"`
	Locked        bool      `json:"locked"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	AppliedAt     time.Time `json:"applied_at"`
}

// Operation converts the wire form into a validated Operation.
func (r *OperationRequest) Operation() (Operation, error) {
	opType, err := ParseOperationType(r.Type)
	if err != nil {
		return Operation{}, err
	}
	return Operation{
		Type:   opType,
		Client: r.Client,
		Tx:     r.Tx,
		Amount: r.Amount,
	}, nil
}
