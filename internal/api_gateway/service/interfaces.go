package service

import (
	"context"

	"github.com/paystream-engine/internal/domain/account"
	"github.com/paystream-engine/internal/domain/shared"
)

// OperationService defines the interface for submitting ledger operations
type OperationService interface {
	// Apply applies one operation synchronously. Rejections come back as
	// typed engine errors for the handler to map to HTTP statuses.
	Apply(ctx context.Context, request *shared.OperationRequest) error

	// Enqueue publishes the operation to the operations topic for
	// asynchronous processing by the consumer.
	Enqueue(ctx context.Context, request *shared.OperationRequest) error
}

// AccountService defines the interface for read-only account access
type AccountService interface {
	// ListAccounts returns snapshots of every known account, sorted by client id
	ListAccounts(ctx context.Context) []account.Snapshot

	// GetAccount returns the snapshot for one client
	// Returns engine.AccountNotFoundError if the account doesn't exist
	GetAccount(ctx context.Context, client shared.ClientID) (account.Snapshot, error)
}
