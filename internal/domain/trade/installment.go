package trade

import (
	"fmt"
	"time"

	"github.com/erp/posledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the status of an installment
type InstallmentStatus string

const (
	InstallmentStatusPending  InstallmentStatus = "PENDING"
	InstallmentStatusPaid     InstallmentStatus = "PAID"
	InstallmentStatusOverdue  InstallmentStatus = "OVERDUE"
	InstallmentStatusCanceled InstallmentStatus = "CANCELED"
)

var installmentTransitions = shared.Transitions[InstallmentStatus]{
	InstallmentStatusPending: {InstallmentStatusPaid, InstallmentStatusOverdue, InstallmentStatusCanceled},
	InstallmentStatusOverdue: {InstallmentStatusPaid, InstallmentStatusCanceled},
}

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid, InstallmentStatusOverdue, InstallmentStatusCanceled:
		return true
	}
	return false
}

// IsTerminal returns true for PAID and CANCELED
func (s InstallmentStatus) IsTerminal() bool {
	return installmentTransitions.IsTerminal(s)
}

// Installment is one scheduled payment of a sale
type Installment struct {
	ID        int64
	SaleID    int64
	Number    int
	Count     int
	Amount    decimal.Decimal
	DueDate   time.Time
	PaidAt    *time.Time
	Status    InstallmentStatus
	CreatedAt time.Time
}

// NewInstallment creates a pending installment number of count
func NewInstallment(number, count int, amount decimal.Decimal, dueDate time.Time) (*Installment, error) {
	if count <= 0 {
		return nil, shared.NewValidationError("INVALID_INSTALLMENT_COUNT", "Installment count must be positive")
	}
	if number <= 0 || number > count {
		return nil, shared.NewValidationError("INVALID_INSTALLMENT_NUMBER",
			fmt.Sprintf("Installment number must be between 1 and %d", count))
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Installment amount must be positive")
	}
	if dueDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_DUE_DATE", "Due date is required")
	}

	return &Installment{
		Number:    number,
		Count:     count,
		Amount:    amount,
		DueDate:   dueDate,
		Status:    InstallmentStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// Pay settles the installment now
func (i *Installment) Pay() error {
	if err := installmentTransitions.Guard("installment", i.Status, InstallmentStatusPaid); err != nil {
		return err
	}
	now := time.Now()
	i.Status = InstallmentStatusPaid
	i.PaidAt = &now
	return nil
}

// Cancel cancels an unpaid installment
func (i *Installment) Cancel() error {
	return i.transition(InstallmentStatusCanceled)
}

// IsOverdue reports whether the installment is unpaid past its due date
func (i *Installment) IsOverdue() bool {
	return i.IsOverdueAt(time.Now())
}

// IsOverdueAt reports whether the installment is unpaid and the day of t is
// after the due day
func (i *Installment) IsOverdueAt(t time.Time) bool {
	if i.PaidAt != nil {
		return false
	}
	return dateOf(t).After(dateOf(i.DueDate.In(t.Location())))
}

// RefreshStatus moves a pending installment to OVERDUE once it is overdue.
// Returns true when the status changed.
func (i *Installment) RefreshStatus() bool {
	return i.RefreshStatusAt(time.Now())
}

// RefreshStatusAt is RefreshStatus evaluated at t
func (i *Installment) RefreshStatusAt(t time.Time) bool {
	if i.Status != InstallmentStatusPending || !i.IsOverdueAt(t) {
		return false
	}
	return i.transition(InstallmentStatusOverdue) == nil
}

// IsOpen returns true while the installment still expects payment
func (i *Installment) IsOpen() bool {
	return i.Status == InstallmentStatusPending || i.Status == InstallmentStatusOverdue
}

func (i *Installment) transition(to InstallmentStatus) error {
	if err := installmentTransitions.Guard("installment", i.Status, to); err != nil {
		return err
	}
	i.Status = to
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
