package cash

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/erp/posledger/internal/domain/trade"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// SessionStatus represents the status of a cash session
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

var sessionTransitions = shared.Transitions[SessionStatus]{
	SessionStatusOpen: {SessionStatusClosed},
}

// displayLanguage formats amounts in generated movement descriptions
var displayLanguage = language.BrazilianPortuguese

// CashSession is a register shift. It owns its movements and keeps
// ClosingBalance equal to OpeningBalance plus entries minus exits.
type CashSession struct {
	shared.BaseAggregateRoot
	OperatorID     int64
	OpenedAt       time.Time
	ClosedAt       *time.Time
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Status         SessionStatus
	ClosingNote    string
	Movements      []CashMovement
}

// Open starts a session for an operator
func Open(operatorID int64, openingBalance decimal.Decimal) (*CashSession, error) {
	if operatorID <= 0 {
		return nil, shared.NewValidationError("INVALID_OPERATOR", "Operator ID is required")
	}
	if openingBalance.IsNegative() {
		return nil, shared.NewValidationError("INVALID_OPENING_BALANCE", "Opening balance cannot be negative")
	}

	s := &CashSession{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OperatorID:        operatorID,
		OpeningBalance:    openingBalance,
		ClosingBalance:    openingBalance,
		Status:            SessionStatusOpen,
		Movements:         make([]CashMovement, 0),
	}
	s.OpenedAt = s.CreatedAt
	return s, nil
}

// IsOpen returns true while the session accepts movements
func (s *CashSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}

// AddMovement records an inflow or outflow. An exit above the current
// balance is rejected and leaves the session unchanged.
func (s *CashSession) AddMovement(kind MovementKind, amount decimal.Decimal, description string, method valueobject.PaymentMethod) error {
	return s.addMovement(kind, amount, description, method, nil)
}

// RecordSale posts the cash side of a sale paid in cash: an entry of the
// amount handed over, then an exit of the change. Both are recorded or
// neither is. Other payment methods are ignored.
func (s *CashSession) RecordSale(sale *trade.Sale) error {
	if sale == nil {
		return shared.NewValidationError("INVALID_SALE", "Sale is required")
	}
	if !sale.PaymentMethod.IsCash() {
		return nil
	}

	count, balance := len(s.Movements), s.ClosingBalance
	saleID := sale.ID

	desc := fmt.Sprintf("Venda #%d recebido %s", sale.ID, valueobject.NewMoneyBRL(sale.AmountPaid).Format(displayLanguage))
	if err := s.addMovement(MovementEntrada, sale.AmountPaid, desc, sale.PaymentMethod, &saleID); err != nil {
		return err
	}
	if sale.Change.IsPositive() {
		desc = fmt.Sprintf("Troco venda #%d %s", sale.ID, valueobject.NewMoneyBRL(sale.Change).Format(displayLanguage))
		if err := s.addMovement(MovementSaida, sale.Change, desc, sale.PaymentMethod, &saleID); err != nil {
			s.Movements = s.Movements[:count]
			s.ClosingBalance = balance
			return err
		}
	}
	return nil
}

// Close ends the session. A closed session never reopens.
func (s *CashSession) Close(note string) error {
	if err := sessionTransitions.Guard("cash session", s.Status, SessionStatusClosed); err != nil {
		return err
	}

	now := time.Now()
	s.Status = SessionStatusClosed
	s.ClosedAt = &now
	s.ClosingNote = strings.TrimSpace(note)
	s.UpdatedAt = now

	s.AddDomainEvent(NewCashSessionClosedEvent(s))
	return nil
}

// TotalEntries sums the ENTRADA movements
func (s *CashSession) TotalEntries() decimal.Decimal {
	return s.sumKind(MovementEntrada)
}

// TotalExits sums the SAIDA movements
func (s *CashSession) TotalExits() decimal.Decimal {
	return s.sumKind(MovementSaida)
}

// TotalsByPaymentMethod nets the movements per payment method tag.
// Untagged movements are grouped under the empty method.
func (s *CashSession) TotalsByPaymentMethod() map[valueobject.PaymentMethod]decimal.Decimal {
	totals := make(map[valueobject.PaymentMethod]decimal.Decimal)
	for _, m := range s.Movements {
		totals[m.PaymentMethod] = totals[m.PaymentMethod].Add(m.SignedAmount())
	}
	return totals
}

// Balance folds the opening balance with every movement in order
func (s *CashSession) Balance() decimal.Decimal {
	balance := s.OpeningBalance
	for _, m := range s.Movements {
		balance = balance.Add(m.SignedAmount())
	}
	return balance
}

// NewMovements returns the movements not persisted yet
func (s *CashSession) NewMovements() []CashMovement {
	var pending []CashMovement
	for _, m := range s.Movements {
		if m.ID == 0 {
			pending = append(pending, m)
		}
	}
	return pending
}

func (s *CashSession) addMovement(kind MovementKind, amount decimal.Decimal, description string, method valueobject.PaymentMethod, saleID *int64) error {
	if !s.IsOpen() {
		return shared.NewStateError("SESSION_NOT_OPEN", fmt.Sprintf("Cannot add movements to a session in %s status", s.Status))
	}
	if !kind.IsValid() {
		return shared.NewValidationError("INVALID_KIND", fmt.Sprintf("Unknown movement kind %q", kind))
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return shared.NewValidationError("INVALID_DESCRIPTION", "Movement description cannot be empty")
	}
	if method != "" && !method.IsValid() {
		return shared.NewValidationError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}
	if kind == MovementSaida && amount.GreaterThan(s.ClosingBalance) {
		return shared.NewInsufficientFundsError("INSUFFICIENT_CASH",
			fmt.Sprintf("Exit of %s exceeds session balance %s", amount.StringFixed(2), s.ClosingBalance.StringFixed(2)))
	}

	m := CashMovement{
		SessionID:     s.ID,
		OperatorID:    s.OperatorID,
		Kind:          kind,
		Amount:        amount,
		Description:   description,
		PaymentMethod: method,
		SaleID:        saleID,
		CreatedAt:     time.Now(),
	}
	s.Movements = append(s.Movements, m)
	s.ClosingBalance = s.ClosingBalance.Add(m.SignedAmount())
	s.UpdatedAt = m.CreatedAt
	return nil
}

func (s *CashSession) sumKind(kind MovementKind) decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.Movements {
		if m.Kind == kind {
			total = total.Add(m.Amount)
		}
	}
	return total
}
