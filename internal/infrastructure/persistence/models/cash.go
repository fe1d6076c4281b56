package models

import (
	"time"

	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CashSessionModel is the persistence model for a register shift.
type CashSessionModel struct {
	AggregateModel
	OperatorID     int64               `gorm:"not null;index:idx_cash_session_operator_status,priority:1"`
	OpenedAt       time.Time           `gorm:"not null"`
	ClosedAt       *time.Time
	OpeningBalance decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ClosingBalance decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status         cash.SessionStatus  `gorm:"type:varchar(20);not null;index:idx_cash_session_operator_status,priority:2"`
	ClosingNote    string              `gorm:"type:varchar(500)"`
	Movements      []CashMovementModel `gorm:"foreignKey:SessionID"`
}

// TableName returns the table name for GORM
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// CashMovementModel is the persistence model for one session movement.
type CashMovementModel struct {
	ID            int64                     `gorm:"primaryKey;autoIncrement"`
	SessionID     int64                     `gorm:"not null;index"`
	OperatorID    int64                     `gorm:"not null"`
	Kind          cash.MovementKind         `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Description   string                    `gorm:"type:varchar(255);not null"`
	PaymentMethod valueobject.PaymentMethod `gorm:"type:varchar(20)"`
	SaleID        *int64                    `gorm:"index"`
	CreatedAt     time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the persistence model to a domain CashMovement.
func (m *CashMovementModel) ToDomain() cash.CashMovement {
	return cash.CashMovement{
		ID:            m.ID,
		SessionID:     m.SessionID,
		OperatorID:    m.OperatorID,
		Kind:          m.Kind,
		Amount:        m.Amount,
		Description:   m.Description,
		PaymentMethod: m.PaymentMethod,
		SaleID:        m.SaleID,
		CreatedAt:     m.CreatedAt,
	}
}

// CashMovementModelFromDomain creates a persistence model from a domain CashMovement.
func CashMovementModelFromDomain(mv cash.CashMovement) CashMovementModel {
	return CashMovementModel{
		ID:            mv.ID,
		SessionID:     mv.SessionID,
		OperatorID:    mv.OperatorID,
		Kind:          mv.Kind,
		Amount:        mv.Amount,
		Description:   mv.Description,
		PaymentMethod: mv.PaymentMethod,
		SaleID:        mv.SaleID,
		CreatedAt:     mv.CreatedAt,
	}
}

// ToDomain converts the persistence model to a domain CashSession.
func (m *CashSessionModel) ToDomain() *cash.CashSession {
	movements := make([]cash.CashMovement, len(m.Movements))
	for i := range m.Movements {
		movements[i] = m.Movements[i].ToDomain()
	}
	return &cash.CashSession{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OperatorID:        m.OperatorID,
		OpenedAt:          m.OpenedAt,
		ClosedAt:          m.ClosedAt,
		OpeningBalance:    m.OpeningBalance,
		ClosingBalance:    m.ClosingBalance,
		Status:            m.Status,
		ClosingNote:       m.ClosingNote,
		Movements:         movements,
	}
}

// CashSessionModelFromDomain creates a persistence model from a domain
// CashSession, without its movements.
func CashSessionModelFromDomain(s *cash.CashSession) *CashSessionModel {
	m := &CashSessionModel{
		OperatorID:     s.OperatorID,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
		OpeningBalance: s.OpeningBalance,
		ClosingBalance: s.ClosingBalance,
		Status:         s.Status,
		ClosingNote:    s.ClosingNote,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
