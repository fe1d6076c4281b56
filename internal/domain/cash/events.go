package cash

import (
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCashSession = "CashSession"

// Event type constants
const (
	EventTypeCashSessionOpened = "CashSessionOpened"
	EventTypeCashSessionClosed = "CashSessionClosed"
)

// CashSessionOpenedEvent is published once an opened register is stored
type CashSessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID      int64           `json:"session_id"`
	OperatorID     int64           `json:"operator_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// NewCashSessionOpenedEvent creates a new CashSessionOpenedEvent
func NewCashSessionOpenedEvent(s *CashSession) *CashSessionOpenedEvent {
	return &CashSessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionOpened, AggregateTypeCashSession, s.ID),
		SessionID:       s.ID,
		OperatorID:      s.OperatorID,
		OpeningBalance:  s.OpeningBalance,
	}
}

// CashSessionClosedEvent is raised when a register shift ends
type CashSessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID      int64           `json:"session_id"`
	OperatorID     int64           `json:"operator_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	TotalEntries   decimal.Decimal `json:"total_entries"`
	TotalExits     decimal.Decimal `json:"total_exits"`
	MovementCount  int             `json:"movement_count"`
	Note           string          `json:"note,omitempty"`
}

// NewCashSessionClosedEvent creates a new CashSessionClosedEvent
func NewCashSessionClosedEvent(s *CashSession) *CashSessionClosedEvent {
	return &CashSessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashSessionClosed, AggregateTypeCashSession, s.ID),
		SessionID:       s.ID,
		OperatorID:      s.OperatorID,
		OpeningBalance:  s.OpeningBalance,
		ClosingBalance:  s.ClosingBalance,
		TotalEntries:    s.TotalEntries(),
		TotalExits:      s.TotalExits(),
		MovementCount:   len(s.Movements),
		Note:            s.ClosingNote,
	}
}
