package handler

// SubmitOperationRequest represents a request to apply or enqueue a ledger operation
type SubmitOperationRequest struct {
	Type   string `json:"type" binding:"required,oneof=deposit withdrawal dispute resolve chargeback"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Amount string `json:"amount,omitempty"`
}

// AccountResponse represents an account snapshot in API responses. Total is
// omitted when available+held is not representable; the handler logs a
// warning instead of suppressing it.
type AccountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total,omitempty"`
	Locked    bool   `json:"locked"`
}

// AccountListResponse represents all account snapshots in API responses
type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
