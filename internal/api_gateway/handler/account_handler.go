package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paystream-engine/internal/api_gateway/service"
	"github.com/paystream-engine/internal/domain/account"
	"github.com/paystream-engine/internal/domain/shared"
	"github.com/paystream-engine/internal/engine"
)

// AccountHandler handles HTTP requests for account snapshots
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// List returns snapshots of every known account, sorted by client id
func (h *AccountHandler) List(c *gin.Context) {
	snapshots := h.accountService.ListAccounts(c.Request.Context())

	accounts := make([]AccountResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		accounts = append(accounts, h.mapSnapshotToResponse(snap))
	}

	RespondOK(c, AccountListResponse{Accounts: accounts})
}

// GetByID returns the snapshot for one client, 404 if unknown
func (h *AccountHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 16)
	if err != nil {
		h.logger.Error("Invalid client ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid client ID")
		return
	}

	snap, err := h.accountService.GetAccount(c.Request.Context(), shared.ClientID(id))
	if err != nil {
		var notFound engine.AccountNotFoundError
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, h.mapSnapshotToResponse(snap))
}

// mapSnapshotToResponse maps an account snapshot to a response DTO. An
// overflowing total is surfaced as a warning and an omitted field.
func (h *AccountHandler) mapSnapshotToResponse(snap account.Snapshot) AccountResponse {
	response := AccountResponse{
		Client:    uint16(snap.Client),
		Available: snap.Available.String(),
		Held:      snap.Held.String(),
		Locked:    snap.Locked,
	}

	total, err := snap.Total()
	if err != nil {
		h.logger.Warn("account total not representable",
			"client", snap.Client,
			"available", snap.Available.String(),
			"held", snap.Held.String(),
			"error", err,
		)
	} else {
		response.Total = total.String()
	}

	return response
}
