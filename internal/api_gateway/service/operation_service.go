package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/paystream-engine/internal/domain/shared"
	"github.com/paystream-engine/internal/platform/messaging/producers"
	processorservice "github.com/paystream-engine/internal/processor/service"
)

type OperationServiceImpl struct {
	processing processorservice.ProcessingService
	publisher  producers.MessagePublisher // optional, nil disables Enqueue
	logger     *slog.Logger
}

// NewOperationService creates the gateway-side operation service. processing
// applies operations against the engine; publisher feeds the operations
// topic for asynchronous submissions.
func NewOperationService(
	processing processorservice.ProcessingService,
	publisher producers.MessagePublisher,
	logger *slog.Logger,
) OperationService {
	return &OperationServiceImpl{
		processing: processing,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *OperationServiceImpl) Apply(ctx context.Context, request *shared.OperationRequest) error {
	return s.processing.ProcessOperation(ctx, request)
}

func (s *OperationServiceImpl) Enqueue(ctx context.Context, request *shared.OperationRequest) error {
	if s.publisher == nil {
		return fmt.Errorf("operations topic publisher is not configured")
	}

	// Keyed by client so one client's operations stay ordered per partition
	key := strconv.FormatUint(uint64(request.Client), 10)
	if err := s.publisher.Publish(ctx, key, request); err != nil {
		return fmt.Errorf("failed to enqueue operation for client %d tx %d: %w", request.Client, request.Tx, err)
	}

	s.logger.Debug("Operation enqueued",
		"type", request.Type,
		"client", request.Client,
		"tx", request.Tx,
		"correlation_id", request.CorrelationID,
	)
	return nil
}
