package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paystream-engine/internal/domain/money"
)

func TestAccount_ZeroValue(t *testing.T) {
	var acc Account

	assert.True(t, acc.Available.IsZero())
	assert.True(t, acc.Held.IsZero())
	assert.False(t, acc.Locked)

	total, err := acc.Total()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestAccount_Total(t *testing.T) {
	t.Run("SumOfAvailableAndHeld", func(t *testing.T) {
		available, err := money.New(1, 2500)
		require.NoError(t, err)
		held, err := money.New(0, 7500)
		require.NoError(t, err)

		acc := Account{Available: available, Held: held}

		total, err := acc.Total()
		require.NoError(t, err)
		assert.Equal(t, "2.0000", total.String())
	})

	t.Run("OverflowIsSurfaced", func(t *testing.T) {
		one, err := money.New(0, 1)
		require.NoError(t, err)

		acc := Account{Available: money.Max(), Held: one}

		_, err = acc.Total()
		require.ErrorIs(t, err, money.ErrAddOverflow)
	})
}
