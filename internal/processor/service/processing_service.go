package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/paystream-engine/internal/domain/shared"
	"github.com/paystream-engine/internal/engine"
	"github.com/paystream-engine/internal/platform/messaging/producers"
)

type ProcessingServiceImpl struct {
	engine        *engine.Engine
	events        producers.MessagePublisher // optional, nil disables event publishing
	retryAttempts int
	logger        *slog.Logger
}

// NewProcessingService creates the service that applies operation requests to
// the engine. retryAttempts bounds how often a deposit losing the
// account-creation race is re-issued.
func NewProcessingService(
	eng *engine.Engine,
	events producers.MessagePublisher,
	retryAttempts int,
	logger *slog.Logger,
) ProcessingService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &ProcessingServiceImpl{
		engine:        eng,
		events:        events,
		retryAttempts: retryAttempts,
		logger:        logger,
	}
}

// ProcessOperation applies one operation request. Rejections come back as
// typed engine errors for the caller to classify; infrastructure never
// swallows them here.
func (s *ProcessingServiceImpl) ProcessOperation(ctx context.Context, request *shared.OperationRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	op := shared.Operation{
		Type:   shared.OperationType(request.Type),
		Client: request.Client,
		Tx:     request.Tx,
		Amount: request.Amount,
	}

	logger.Info("Processing operation", "type", request.Type, "client", request.Client, "tx", request.Tx)

	if err := s.applyWithRetry(logger, op); err != nil {
		logger.Error("Operation not applied",
			"type", request.Type,
			"client", request.Client,
			"tx", request.Tx,
			"error", err,
		)
		return err
	}

	s.publishEvent(ctx, logger, request)

	logger.Info("Successfully applied operation", "type", request.Type, "client", request.Client, "tx", request.Tx)
	return nil
}

// applyWithRetry re-issues an operation that lost a first-deposit race. The
// engine leaves the reservation claimable by the identical retry, so the
// bounded loop here is the whole retry policy.
func (s *ProcessingServiceImpl) applyWithRetry(logger *slog.Logger, op shared.Operation) error {
	var err error
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		err = s.engine.Apply(op)

		var tryAgain engine.TryAgainError
		if !errors.As(err, &tryAgain) {
			return err
		}
		logger.Debug("Account creation race lost, retrying deposit",
			"client", op.Client,
			"tx", op.Tx,
			"attempt", attempt,
		)
	}
	return err
}

func (s *ProcessingServiceImpl) publishEvent(ctx context.Context, logger *slog.Logger, request *shared.OperationRequest) {
	if s.events == nil {
		return
	}

	snap, err := s.engine.Snapshot(request.Client)
	if err != nil {
		logger.Warn("No account snapshot for applied operation, skipping event",
			"client", request.Client,
			"tx", request.Tx,
			"error", err,
		)
		return
	}

	event := &shared.OperationEvent{
		Type:          request.Type,
		Client:        request.Client,
		Tx:            request.Tx,
		Amount:        request.Amount,
		Available:     snap.Available.String(),
		Held:          snap.Held.String(),
		Locked:        snap.Locked,
		CorrelationID: request.CorrelationID,
		AppliedAt:     time.Now().UTC(),
	}

	// Events are an audit trail; a publish failure must not fail the operation
	key := strconv.FormatUint(uint64(request.Client), 10)
	if err := s.events.Publish(ctx, key, event); err != nil {
		logger.Error("Failed to publish operation event",
			"client", request.Client,
			"tx", request.Tx,
			"error", err,
		)
	}
}
