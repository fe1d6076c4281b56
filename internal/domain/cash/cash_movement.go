package cash

import (
	"time"

	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MovementKind is the direction of a cash movement
type MovementKind string

const (
	MovementEntrada MovementKind = "ENTRADA"
	MovementSaida   MovementKind = "SAIDA"
)

// IsValid checks if the kind is known
func (k MovementKind) IsValid() bool {
	return k == MovementEntrada || k == MovementSaida
}

// CashMovement is one inflow or outflow of a session. Movements are only
// created through CashSession and never edited afterwards.
type CashMovement struct {
	ID            int64
	SessionID     int64
	OperatorID    int64
	Kind          MovementKind
	Amount        decimal.Decimal
	Description   string
	PaymentMethod valueobject.PaymentMethod // empty when untagged
	SaleID        *int64
	CreatedAt     time.Time
}

// SignedAmount returns the amount as it affects the balance
func (m CashMovement) SignedAmount() decimal.Decimal {
	if m.Kind == MovementSaida {
		return m.Amount.Neg()
	}
	return m.Amount
}
