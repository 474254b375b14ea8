package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/paystream-engine/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerEventProducer_Publish(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	topic := "test-events"
	ctx := context.Background()

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &LedgerEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		event := &shared.OperationEvent{
			Type:      "deposit",
			Client:    1,
			Tx:        7,
			Amount:    "2.5",
			Available: "2.5000",
			Held:      "0.0000",
			AppliedAt: time.Now().UTC(),
		}
		expectedJSONValue, _ := json.Marshal(event)

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 &&
				string(msgs[0].Key) == "1" &&
				string(msgs[0].Value) == string(expectedJSONValue)
		})).Return(nil).Once()

		err := producer.Publish(ctx, "1", event)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &LedgerEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		writerError := errors.New("kafka write error")
		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerError).Once()

		err := producer.Publish(ctx, "1", &shared.OperationEvent{})
		require.Error(t, err)
		mockWriter.AssertExpectations(t)
	})
}

func TestLedgerEventProducer_Close(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mockWriter := new(MockKafkaWriter)
	producer := &LedgerEventProducer{
		logger: logger,
		writer: mockWriter,
		topic:  "test-events-close",
	}

	mockWriter.On("Close").Return(nil).Once()
	require.NoError(t, producer.Close())
	mockWriter.AssertExpectations(t)
}
