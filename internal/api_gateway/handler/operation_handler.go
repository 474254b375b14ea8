package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paystream-engine/internal/api_gateway/middleware"
	"github.com/paystream-engine/internal/api_gateway/service"
	"github.com/paystream-engine/internal/domain/shared"
	"github.com/paystream-engine/internal/engine"
)

// OperationHandler handles HTTP requests for ledger operations
type OperationHandler struct {
	operationService service.OperationService
	logger           *slog.Logger
}

// NewOperationHandler creates a new operation handler
func NewOperationHandler(logger *slog.Logger, operationService service.OperationService) *OperationHandler {
	return &OperationHandler{
		operationService: operationService,
		logger:           logger,
	}
}

// Apply applies one operation synchronously and maps the outcome to an HTTP status
func (h *OperationHandler) Apply(c *gin.Context) {
	request, ok := h.bindRequest(c)
	if !ok {
		return
	}

	if err := h.operationService.Apply(c.Request.Context(), request); err != nil {
		h.respondOperationError(c, request, err)
		return
	}

	RespondOK(c, gin.H{
		"type":   request.Type,
		"client": request.Client,
		"tx":     request.Tx,
		"status": "APPLIED",
	})
}

// Enqueue publishes one operation to the operations topic for asynchronous processing
func (h *OperationHandler) Enqueue(c *gin.Context) {
	request, ok := h.bindRequest(c)
	if !ok {
		return
	}

	if err := h.operationService.Enqueue(c.Request.Context(), request); err != nil {
		h.logger.Error("Failed to enqueue operation", "client", request.Client, "tx", request.Tx, "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, gin.H{
		"type":   request.Type,
		"client": request.Client,
		"tx":     request.Tx,
		"status": "PENDING",
	})
}

func (h *OperationHandler) bindRequest(c *gin.Context) (*shared.OperationRequest, bool) {
	var req SubmitOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return nil, false
	}

	return &shared.OperationRequest{
		Type:          req.Type,
		Client:        shared.ClientID(req.Client),
		Tx:            shared.TxID(req.Tx),
		Amount:        req.Amount,
		CorrelationID: middleware.GetCorrelationID(c),
		Timestamp:     time.Now().UTC(),
	}, true
}

// respondOperationError maps the engine's typed failures onto HTTP statuses:
// value errors are 400, missing referents 404, lifecycle and funds conflicts
// 409, locked accounts 403 and the benign creation race 503.
func (h *OperationHandler) respondOperationError(c *gin.Context, request *shared.OperationRequest, err error) {
	var (
		missingAmount engine.MissingAmountError
		invalidAmount engine.InvalidAmountError
		unknownOp     engine.UnknownOperationError

		accountNotFound engine.AccountNotFoundError
		accountMissing  engine.AccountDoesNotExistError
		txNotFound      engine.TransactionNotFoundError

		accountLocked engine.AccountLockedError
		tryAgain      engine.TryAgainError
	)

	switch {
	case errors.As(err, &missingAmount), errors.As(err, &invalidAmount), errors.As(err, &unknownOp):
		RespondBadRequest(c, err.Error())
	case errors.As(err, &accountNotFound), errors.As(err, &accountMissing), errors.As(err, &txNotFound):
		RespondNotFound(c, err.Error())
	case errors.As(err, &accountLocked):
		RespondForbidden(c, err.Error())
	case errors.As(err, &tryAgain):
		RespondServiceUnavailable(c, err.Error())
	case engine.IsRejection(err):
		// Uniqueness, lifecycle and arithmetic rejections all describe a
		// conflict with current ledger state
		RespondConflict(c, err.Error())
	default:
		h.logger.Error("Failed to apply operation",
			"type", request.Type,
			"client", request.Client,
			"tx", request.Tx,
			"error", err,
		)
		RespondInternalError(c)
	}
}
