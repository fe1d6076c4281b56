package cash

import (
	"time"

	"github.com/erp/posledger/internal/domain/cash"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest represents a request to open a register shift
type OpenSessionRequest struct {
	OperatorID     int64           `json:"operator_id" validate:"gt=0"`
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"gte=0"`
}

// AddMovementRequest represents a manual cash entry or exit
type AddMovementRequest struct {
	Kind          string          `json:"kind" validate:"required,oneof=ENTRADA SAIDA"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Description   string          `json:"description" validate:"required,max=255"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,payment_method"`
}

// CloseSessionRequest represents a request to close a register shift
type CloseSessionRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// MovementResponse represents a cash movement in API responses
type MovementResponse struct {
	ID            int64           `json:"id"`
	SessionID     int64           `json:"session_id"`
	OperatorID    int64           `json:"operator_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	SaleID        *int64          `json:"sale_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SessionResponse represents a cash session in API responses
type SessionResponse struct {
	ID             int64              `json:"id"`
	OperatorID     int64              `json:"operator_id"`
	Status         string             `json:"status"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
	ClosingNote    string             `json:"closing_note,omitempty"`
	OpenedAt       time.Time          `json:"opened_at"`
	ClosedAt       *time.Time         `json:"closed_at,omitempty"`
	Movements      []MovementResponse `json:"movements"`
	Version        int                `json:"version"`
}

// SessionSummary totals a session's movements
type SessionSummary struct {
	SessionID       int64                      `json:"session_id"`
	Status          string                     `json:"status"`
	OpeningBalance  decimal.Decimal            `json:"opening_balance"`
	TotalEntries    decimal.Decimal            `json:"total_entries"`
	TotalExits      decimal.Decimal            `json:"total_exits"`
	Balance         decimal.Decimal            `json:"balance"`
	BalanceDisplay  string                     `json:"balance_display"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
	MovementCount   int                        `json:"movement_count"`
}

// ToMovementResponse converts a domain CashMovement to MovementResponse
func ToMovementResponse(m cash.CashMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		SessionID:     m.SessionID,
		OperatorID:    m.OperatorID,
		Kind:          string(m.Kind),
		Amount:        m.Amount,
		Description:   m.Description,
		PaymentMethod: string(m.PaymentMethod),
		SaleID:        m.SaleID,
		CreatedAt:     m.CreatedAt,
	}
}

// ToMovementResponses converts domain movements to MovementResponses
func ToMovementResponses(movements []cash.CashMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = ToMovementResponse(m)
	}
	return responses
}

// ToSessionResponse converts a domain CashSession to SessionResponse
func ToSessionResponse(s *cash.CashSession) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		OperatorID:     s.OperatorID,
		Status:         string(s.Status),
		OpeningBalance: s.OpeningBalance,
		ClosingBalance: s.ClosingBalance,
		ClosingNote:    s.ClosingNote,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
		Movements:      ToMovementResponses(s.Movements),
		Version:        s.Version,
	}
}
