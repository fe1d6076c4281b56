package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusFinalized SaleStatus = "FINALIZED"
	SaleStatusCanceled  SaleStatus = "CANCELED"
)

var saleTransitions = shared.Transitions[SaleStatus]{
	SaleStatusPending:   {SaleStatusFinalized},
	SaleStatusFinalized: {SaleStatusCanceled},
}

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusFinalized, SaleStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	return saleTransitions.Allows(s, target)
}

// CashRegister receives the cash side of a sale paid in cash
type CashRegister interface {
	IsOpen() bool
	RecordSale(sale *Sale) error
}

// SaleItem is the copy of an order line taken when the sale is created
type SaleItem struct {
	ID          int64
	SaleID      int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// Sale is the paid transaction derived from a finalized order.
// Items are fixed at creation and cannot diverge from the order afterwards.
type Sale struct {
	shared.BaseAggregateRoot
	OrderID       int64
	CustomerID    int64
	SellerID      int64
	Items         []SaleItem
	Total         decimal.Decimal
	Discount      decimal.Decimal
	AmountPaid    decimal.Decimal
	Change        decimal.Decimal
	PaymentMethod valueobject.PaymentMethod
	Status        SaleStatus
	CancelReason  string
	FinalizedAt   *time.Time
	CanceledAt    *time.Time
	Installments  []Installment
}

// NewSaleFromOrder creates a pending sale from a finalized order
func NewSaleFromOrder(order *Order) (*Sale, error) {
	if order == nil {
		return nil, shared.NewValidationError("INVALID_ORDER", "Order is required")
	}
	if order.Status != OrderStatusFinalized {
		return nil, shared.NewValidationError("ORDER_NOT_FINALIZED",
			fmt.Sprintf("Cannot create a sale from an order in %s status", order.Status))
	}

	items := make([]SaleItem, len(order.Lines))
	for i, l := range order.Lines {
		items[i] = SaleItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Total:       l.Total,
		}
	}

	return &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           order.ID,
		CustomerID:        order.CustomerID,
		SellerID:          order.SellerID,
		Items:             items,
		Total:             order.Total,
		Discount:          decimal.Zero,
		AmountPaid:        decimal.Zero,
		Change:            decimal.Zero,
		Status:            SaleStatusPending,
		Installments:      make([]Installment, 0),
	}, nil
}

// AmountDue returns total minus discount
func (s *Sale) AmountDue() decimal.Decimal {
	return s.Total.Sub(s.Discount)
}

// SetDiscount sets the sale-level discount, at most the total. A discount
// that changes the amount due drops the installment plan, which must then be
// generated again.
func (s *Sale) SetDiscount(discount decimal.Decimal) error {
	if err := s.ensurePending(); err != nil {
		return err
	}
	if discount.IsNegative() {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.GreaterThan(s.Total) {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot exceed the sale total")
	}
	if !discount.Equal(s.Discount) && len(s.Installments) > 0 {
		s.Installments = make([]Installment, 0)
	}
	s.Discount = discount
	s.recomputeChange()
	s.UpdatedAt = time.Now()
	return nil
}

// SetPaymentMethod sets how the sale will be paid
func (s *Sale) SetPaymentMethod(method valueobject.PaymentMethod) error {
	if err := s.ensurePending(); err != nil {
		return err
	}
	if !method.IsValid() {
		return shared.NewValidationError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}
	if len(s.Installments) > 0 && !method.AllowsInstallments() {
		return shared.NewStateError("HAS_INSTALLMENTS", "Remove the installments before switching to "+method.String())
	}
	s.PaymentMethod = method
	s.UpdatedAt = time.Now()
	return nil
}

// SetAmountPaid records what the customer handed over. A shortfall is not an
// error here; Finalize enforces sufficiency.
func (s *Sale) SetAmountPaid(amount decimal.Decimal) error {
	if err := s.ensurePending(); err != nil {
		return err
	}
	if amount.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Amount paid cannot be negative")
	}
	s.AmountPaid = amount
	s.recomputeChange()
	s.UpdatedAt = time.Now()
	return nil
}

// AddInstallment appends an installment; only installment-eligible payment
// methods accept them
func (s *Sale) AddInstallment(inst *Installment) error {
	if err := s.ensurePending(); err != nil {
		return err
	}
	if !s.PaymentMethod.AllowsInstallments() {
		return shared.NewStateError("INSTALLMENTS_NOT_ALLOWED",
			fmt.Sprintf("Payment method %q does not accept installments", s.PaymentMethod))
	}
	if inst == nil {
		return shared.NewValidationError("INVALID_INSTALLMENT", "Installment is required")
	}
	for _, existing := range s.Installments {
		if existing.Number == inst.Number {
			return shared.NewValidationError("DUPLICATE_INSTALLMENT",
				fmt.Sprintf("Installment %d already exists", inst.Number))
		}
	}

	inst.SaleID = s.ID
	s.Installments = append(s.Installments, *inst)
	s.UpdatedAt = time.Now()
	return nil
}

// GenerateInstallments replaces the installments with count installments
// splitting the amount due, the first due at firstDue and the rest every
// intervalDays days. Remainder cents go to the first installments.
func (s *Sale) GenerateInstallments(count int, firstDue time.Time, intervalDays int) error {
	if err := s.ensurePending(); err != nil {
		return err
	}
	if !s.PaymentMethod.AllowsInstallments() {
		return shared.NewStateError("INSTALLMENTS_NOT_ALLOWED",
			fmt.Sprintf("Payment method %q does not accept installments", s.PaymentMethod))
	}
	if count <= 0 {
		return shared.NewValidationError("INVALID_INSTALLMENT_COUNT", "Installment count must be positive")
	}
	if intervalDays <= 0 {
		return shared.NewValidationError("INVALID_INTERVAL", "Installment interval must be positive")
	}

	parts, err := valueobject.NewMoneyBRL(s.AmountDue()).Allocate(count)
	if err != nil {
		return shared.NewValidationError("INVALID_INSTALLMENT_COUNT", err.Error())
	}

	installments := make([]Installment, 0, count)
	for i, part := range parts {
		inst, err := NewInstallment(i+1, count, part.Amount(), firstDue.AddDate(0, 0, i*intervalDays))
		if err != nil {
			return err
		}
		inst.SaleID = s.ID
		installments = append(installments, *inst)
	}

	s.Installments = installments
	s.UpdatedAt = time.Now()
	return nil
}

// Finalize settles the sale: payment is checked, every item is debited from
// the stock ledger and, for cash payments, the register records the sale.
// When any step fails nothing is left changed.
func (s *Sale) Finalize(ledger *catalog.StockLedger, register CashRegister) error {
	if err := saleTransitions.Guard("sale", s.Status, SaleStatusFinalized); err != nil {
		return err
	}
	if s.PaymentMethod == "" {
		return shared.NewValidationError("PAYMENT_METHOD_REQUIRED", "Payment method is required")
	}
	if s.AmountPaid.LessThan(s.AmountDue()) {
		return shared.NewInsufficientFundsError("INSUFFICIENT_PAYMENT",
			fmt.Sprintf("Amount paid %s is below amount due %s", s.AmountPaid.StringFixed(2), s.AmountDue().StringFixed(2)))
	}
	if s.PaymentMethod.AllowsInstallments() && len(s.Installments) == 0 {
		return shared.NewStateError("INSTALLMENTS_REQUIRED",
			fmt.Sprintf("Payment method %q requires at least one installment", s.PaymentMethod))
	}
	if s.PaymentMethod.AllowsInstallments() && !s.InstallmentsTotal().Equal(s.AmountDue()) {
		return shared.NewValidationError("INSTALLMENT_MISMATCH",
			fmt.Sprintf("Installments sum to %s but amount due is %s", s.InstallmentsTotal().StringFixed(2), s.AmountDue().StringFixed(2)))
	}
	if s.PaymentMethod.IsCash() && (register == nil || !register.IsOpen()) {
		return shared.NewStateError("NO_OPEN_CASH_SESSION", "Cash payments require an open cash session")
	}
	if ledger == nil {
		return shared.NewValidationError("INVALID_LEDGER", "Stock ledger is required")
	}

	sp := ledger.Savepoint()
	if err := ledger.Debit(s.StockMoves()); err != nil {
		return err
	}

	if s.PaymentMethod.IsCash() {
		if err := register.RecordSale(s); err != nil {
			ledger.Rollback(sp)
			return err
		}
	}

	now := time.Now()
	s.Status = SaleStatusFinalized
	s.FinalizedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleFinalizedEvent(s))
	return nil
}

// Cancel cancels a finalized sale and returns every item to stock.
// Open installments are canceled with it.
func (s *Sale) Cancel(reason string, ledger *catalog.StockLedger) error {
	if err := saleTransitions.Guard("sale", s.Status, SaleStatusCanceled); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("INVALID_REASON", "Cancel reason is required")
	}
	if ledger == nil {
		return shared.NewValidationError("INVALID_LEDGER", "Stock ledger is required")
	}

	if err := ledger.Credit(s.StockMoves()); err != nil {
		return err
	}

	for i := range s.Installments {
		if s.Installments[i].IsOpen() {
			_ = s.Installments[i].Cancel()
		}
	}

	now := time.Now()
	s.Status = SaleStatusCanceled
	s.CancelReason = reason
	s.CanceledAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleCanceledEvent(s))
	return nil
}

// InstallmentsTotal sums the amounts of the installment plan
func (s *Sale) InstallmentsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Installments {
		total = total.Add(inst.Amount)
	}
	return total
}

// PayInstallment pays installment number of a finalized sale
func (s *Sale) PayInstallment(number int) error {
	if s.Status != SaleStatusFinalized {
		return shared.NewStateError("SALE_NOT_FINALIZED",
			fmt.Sprintf("Cannot pay installments of a sale in %s status", s.Status))
	}
	inst := s.Installment(number)
	if inst == nil {
		return shared.NewValidationError("INSTALLMENT_NOT_FOUND", fmt.Sprintf("Installment %d does not exist", number))
	}
	if err := inst.Pay(); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewInstallmentPaidEvent(s, inst))
	return nil
}

// RefreshInstallments marks the installments overdue at t.
// Returns how many changed.
func (s *Sale) RefreshInstallments(t time.Time) int {
	changed := 0
	for i := range s.Installments {
		if s.Installments[i].RefreshStatusAt(t) {
			changed++
		}
	}
	if changed > 0 {
		s.UpdatedAt = time.Now()
	}
	return changed
}

// Installment returns installment number, or nil
func (s *Sale) Installment(number int) *Installment {
	for i := range s.Installments {
		if s.Installments[i].Number == number {
			return &s.Installments[i]
		}
	}
	return nil
}

// StockMoves returns the stock quantities the sale takes out
func (s *Sale) StockMoves() []catalog.StockMove {
	moves := make([]catalog.StockMove, len(s.Items))
	for i, item := range s.Items {
		moves[i] = catalog.StockMove{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return moves
}

// ProductIDs returns the products referenced by the sale
func (s *Sale) ProductIDs() []int64 {
	ids := make([]int64, len(s.Items))
	for i, item := range s.Items {
		ids[i] = item.ProductID
	}
	return ids
}

func (s *Sale) ensurePending() error {
	if s.Status != SaleStatusPending {
		return shared.NewStateError("SALE_NOT_PENDING", fmt.Sprintf("Cannot modify sale in %s status", s.Status))
	}
	return nil
}

func (s *Sale) recomputeChange() {
	change := s.AmountPaid.Sub(s.AmountDue())
	if change.IsNegative() {
		change = decimal.Zero
	}
	s.Change = change
}
