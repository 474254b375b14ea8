// Package consumer wires the Kafka operations topic into the ledger engine.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/paystream-engine/internal/domain/shared"
	"github.com/paystream-engine/internal/engine"
	"github.com/paystream-engine/internal/platform/messaging/producers"
	"github.com/paystream-engine/internal/processor/service"
)

// OperationEventHandler handles incoming operation request messages from Kafka
type OperationEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewOperationEventHandler creates a new handler
func NewOperationEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *OperationEventHandler {
	return &OperationEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes one Kafka message. Rejected operations go to the
// DLQ and the offset is committed; infrastructure failures propagate so the
// message is redelivered.
func (h *OperationEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.OperationRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal operation request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received operation request for processing",
		"type", request.Type,
		"client", request.Client,
		"tx", request.Tx,
		"amount", request.Amount,
	)

	if err := h.processingService.ProcessOperation(ctx, &request); err != nil {
		if engine.IsRejection(err) {
			logger.Warn("Operation rejected",
				"type", request.Type,
				"client", request.Client,
				"tx", request.Tx,
				"error", err,
			)
			if h.producer != nil {
				if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, err.Error()); dlqErr != nil {
					logger.Error("Failed to publish rejected operation to DLQ",
						"dlq_error", dlqErr,
						"original_error", err,
					)
					return fmt.Errorf("publishing rejected operation to DLQ failed: %w", dlqErr)
				}
			}
			// The rejection is final, commit the offset
			return nil
		}

		logger.Error("Failed to process operation",
			"type", request.Type,
			"client", request.Client,
			"tx", request.Tx,
			"error", err,
		)
		return fmt.Errorf("processing operation for client %d tx %d failed: %w", request.Client, request.Tx, err)
	}

	logger.Info("Successfully processed operation", "client", request.Client, "tx", request.Tx)
	return nil // Success, commit offset
}
