package service

import (
	"context"

	"github.com/paystream-engine/internal/domain/shared"
)

// ProcessingService defines the interface for applying operation requests to the ledger.
type ProcessingService interface {
	ProcessOperation(ctx context.Context, request *shared.OperationRequest) error
}
