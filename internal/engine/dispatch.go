package engine

import (
	"github.com/paystream-engine/internal/domain/money"
	"github.com/paystream-engine/internal/domain/shared"
)

// Apply maps one decoded operation to exactly one engine method, parsing the
// amount field for the kinds that carry one. The switch is exhaustive over
// the closed operation set; an unknown tag is a rejection, never a panic.
func (e *Engine) Apply(op shared.Operation) error {
	switch op.Type {
	case shared.OperationDeposit:
		amount, err := parseAmount(op)
		if err != nil {
			return err
		}
		return e.Deposit(op.Client, op.Tx, amount)
	case shared.OperationWithdrawal:
		amount, err := parseAmount(op)
		if err != nil {
			return err
		}
		return e.Withdrawal(op.Client, op.Tx, amount)
	case shared.OperationDispute:
		return e.Dispute(op.Client, op.Tx)
	case shared.OperationResolve:
		return e.Resolve(op.Client, op.Tx)
	case shared.OperationChargeback:
		return e.Chargeback(op.Client, op.Tx)
	default:
		return UnknownOperationError{Type: op.Type}
	}
}

func parseAmount(op shared.Operation) (money.Money, error) {
	if op.Amount == "" {
		return money.Money{}, MissingAmountError{Type: op.Type}
	}
	amount, err := money.Parse(op.Amount)
	if err != nil {
		return money.Money{}, InvalidAmountError{Input: op.Amount, Err: err}
	}
	return amount, nil
}
