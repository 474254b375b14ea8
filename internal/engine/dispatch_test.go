package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paystream-engine/internal/domain/money"
	"github.com/paystream-engine/internal/domain/shared"
)

func TestApply(t *testing.T) {
	t.Run("FullLifecycle", func(t *testing.T) {
		e := newTestEngine(t)

		ops := []shared.Operation{
			{Type: shared.OperationDeposit, Client: 1, Tx: 1, Amount: "2.0"},
			{Type: shared.OperationDispute, Client: 1, Tx: 1},
			{Type: shared.OperationResolve, Client: 1, Tx: 1},
			{Type: shared.OperationWithdrawal, Client: 1, Tx: 2, Amount: "0.5"},
			{Type: shared.OperationDispute, Client: 1, Tx: 2},
			{Type: shared.OperationChargeback, Client: 1, Tx: 2},
		}
		for _, op := range ops {
			require.NoError(t, e.Apply(op))
		}

		requireSnapshot(t, e, 1, "1.0000", "0.0000", true)
	})

	t.Run("MissingAmountOnDeposit", func(t *testing.T) {
		e := newTestEngine(t)

		err := e.Apply(shared.Operation{Type: shared.OperationDeposit, Client: 1, Tx: 1})

		var missing MissingAmountError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, shared.OperationDeposit, missing.Type)
		assert.Empty(t, e.Snapshots())
	})

	t.Run("MissingAmountOnWithdrawal", func(t *testing.T) {
		e := newTestEngine(t)

		err := e.Apply(shared.Operation{Type: shared.OperationWithdrawal, Client: 1, Tx: 1})

		var missing MissingAmountError
		require.ErrorAs(t, err, &missing)
	})

	t.Run("UnparsableAmount", func(t *testing.T) {
		e := newTestEngine(t)

		err := e.Apply(shared.Operation{Type: shared.OperationDeposit, Client: 1, Tx: 1, Amount: "1.23456"})

		var invalid InvalidAmountError
		require.ErrorAs(t, err, &invalid)
		var tooLong money.FractionalTooLongError
		require.ErrorAs(t, err, &tooLong)
	})

	t.Run("AmountParseFailureDoesNotConsumeTxID", func(t *testing.T) {
		// Value errors happen before the engine is called, so the id is
		// still free for a valid record.
		e := newTestEngine(t)

		require.Error(t, e.Apply(shared.Operation{Type: shared.OperationDeposit, Client: 1, Tx: 1, Amount: "bogus"}))
		require.NoError(t, e.Apply(shared.Operation{Type: shared.OperationDeposit, Client: 1, Tx: 1, Amount: "1.0"}))
	})

	t.Run("UnknownOperation", func(t *testing.T) {
		e := newTestEngine(t)

		err := e.Apply(shared.Operation{Type: "transfer", Client: 1, Tx: 1})

		var unknown UnknownOperationError
		require.ErrorAs(t, err, &unknown)
		require.ErrorIs(t, err, shared.ErrUnknownOperationType)
	})

	t.Run("IgnoredAmountOnDispute", func(t *testing.T) {
		// Reference operations never carry an amount; a stray value is
		// ignored rather than parsed.
		e := newTestEngine(t)
		require.NoError(t, e.Apply(shared.Operation{Type: shared.OperationDeposit, Client: 1, Tx: 1, Amount: "1.0"}))

		require.NoError(t, e.Apply(shared.Operation{Type: shared.OperationDispute, Client: 1, Tx: 1, Amount: "9.9"}))
		requireSnapshot(t, e, 1, "0.0000", "1.0000", false)
	})
}
