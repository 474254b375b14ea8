package stream

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paystream-engine/internal/engine"
)

func runStream(t *testing.T, input string) (string, string) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	runner := NewRunner(engine.New(engine.Config{AllowRedispute: true}), 3, logger)

	var out bytes.Buffer
	require.NoError(t, runner.Run(strings.NewReader(input), &out))
	return out.String(), logs.String()
}

func TestRunner(t *testing.T) {
	t.Run("SingleDeposit", func(t *testing.T) {
		input := "type,       client,  tx, amount\n" +
			"deposit,         1,   1,    1.0\n"

		out, _ := runStream(t, input)
		assert.Equal(t, "client,available,held,total,locked\n1,1.0000,0.0000,1.0000,false\n", out)
	})

	t.Run("DepositThenPartialWithdrawal", func(t *testing.T) {
		input := strings.Join([]string{
			"type,client,tx,amount",
			"deposit,1,1,1.0",
			"withdrawal,1,2,0.5",
		}, "\n")

		out, _ := runStream(t, input)
		assert.Equal(t, "client,available,held,total,locked\n1,0.5000,0.0000,0.5000,false\n", out)
	})

	t.Run("OverdraftIsRejectedAndReported", func(t *testing.T) {
		input := strings.Join([]string{
			"type,client,tx,amount",
			"deposit,1,1,1.0",
			"withdrawal,1,2,2.0",
		}, "\n")

		out, logs := runStream(t, input)
		assert.Equal(t, "client,available,held,total,locked\n1,1.0000,0.0000,1.0000,false\n", out)
		assert.Contains(t, logs, "Operation rejected")
		assert.Contains(t, logs, "insufficient funds")
	})

	t.Run("DisputeResolveChargebackLifecycle", func(t *testing.T) {
		input := strings.Join([]string{
			"type,client,tx,amount",
			"deposit,1,1,2.0",
			"dispute,1,1,",
			"resolve,1,1,",
			"deposit,2,2,3.0",
			"dispute,2,2,",
			"chargeback,2,2,",
		}, "\n")

		out, _ := runStream(t, input)
		expected := strings.Join([]string{
			"client,available,held,total,locked",
			"1,2.0000,0.0000,2.0000,false",
			"2,0.0000,0.0000,0.0000,true",
			"",
		}, "\n")
		assert.Equal(t, expected, out)
	})

	t.Run("UndecodableRecordIsSkipped", func(t *testing.T) {
		input := strings.Join([]string{
			"type,client,tx,amount",
			"deposit,not-a-client,1,1.0",
			"deposit,1,2,1.0",
		}, "\n")

		out, logs := runStream(t, input)
		assert.Equal(t, "client,available,held,total,locked\n1,1.0000,0.0000,1.0000,false\n", out)
		assert.Contains(t, logs, "Skipping undecodable record")
	})

	t.Run("MalformedAmountDoesNotAbortTheStream", func(t *testing.T) {
		input := strings.Join([]string{
			"type,client,tx,amount",
			"deposit,1,1,1.23456",
			"deposit,1,2,1.0",
		}, "\n")

		out, logs := runStream(t, input)
		assert.Equal(t, "client,available,held,total,locked\n1,1.0000,0.0000,1.0000,false\n", out)
		assert.Contains(t, logs, "Operation rejected")
	})

	t.Run("MissingHeaderIsFatal", func(t *testing.T) {
		logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
		runner := NewRunner(engine.New(engine.Config{}), 3, logger)

		var out bytes.Buffer
		err := runner.Run(strings.NewReader(""), &out)
		require.Error(t, err)
		assert.Empty(t, out.String())
	})

	t.Run("EmptyStreamWritesHeaderOnly", func(t *testing.T) {
		out, _ := runStream(t, "type,client,tx,amount\n")
		assert.Equal(t, "client,available,held,total,locked\n", out)
	})
}
