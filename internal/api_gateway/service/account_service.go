package service

import (
	"context"
	"log/slog"

	"github.com/paystream-engine/internal/domain/account"
	"github.com/paystream-engine/internal/domain/shared"
	"github.com/paystream-engine/internal/engine"
)

type AccountServiceImpl struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewAccountService creates the read-only account access service
func NewAccountService(eng *engine.Engine, logger *slog.Logger) AccountService {
	return &AccountServiceImpl{
		engine: eng,
		logger: logger,
	}
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context) []account.Snapshot {
	return s.engine.Snapshots()
}

func (s *AccountServiceImpl) GetAccount(ctx context.Context, client shared.ClientID) (account.Snapshot, error) {
	return s.engine.Snapshot(client)
}
