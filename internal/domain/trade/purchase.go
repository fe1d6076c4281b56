package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the status of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "PENDING"
	PurchaseStatusFinalized PurchaseStatus = "FINALIZED"
	PurchaseStatusCanceled  PurchaseStatus = "CANCELED"
)

var purchaseTransitions = shared.Transitions[PurchaseStatus]{
	PurchaseStatusPending: {PurchaseStatusFinalized, PurchaseStatusCanceled},
}

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusFinalized, PurchaseStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	return purchaseTransitions.Allows(s, target)
}

// PurchaseLine is one product received from the supplier.
// Discount never exceeds the line subtotal.
type PurchaseLine struct {
	ID          int64
	PurchaseID  int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitCost    decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// Subtotal returns quantity times unit cost
func (l *PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l *PurchaseLine) recalculate() {
	if subtotal := l.Subtotal(); l.Discount.GreaterThan(subtotal) {
		l.Discount = subtotal
	}
	l.Total = l.Subtotal().Sub(l.Discount)
}

// Purchase is an inbound stock transaction from a supplier
type Purchase struct {
	shared.BaseAggregateRoot
	SupplierID    int64
	OperatorID    int64
	Lines         []PurchaseLine
	Total         decimal.Decimal
	Status        PurchaseStatus
	InvoiceNumber string
	CancelReason  string
	FinalizedAt   *time.Time
	CanceledAt    *time.Time
}

// NewPurchase creates a pending purchase
func NewPurchase(supplierID, operatorID int64) (*Purchase, error) {
	if supplierID <= 0 {
		return nil, shared.NewValidationError("INVALID_SUPPLIER", "Supplier ID is required")
	}
	if operatorID <= 0 {
		return nil, shared.NewValidationError("INVALID_OPERATOR", "Operator ID is required")
	}

	return &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		OperatorID:        operatorID,
		Lines:             make([]PurchaseLine, 0),
		Total:             decimal.Zero,
		Status:            PurchaseStatusPending,
	}, nil
}

// AddLine adds quantity of a product at unitCost. A product already in the
// purchase has its quantity and discount added to the existing line, which
// keeps its original unit cost.
func (p *Purchase) AddLine(product *catalog.Product, quantity int, unitCost, discount decimal.Decimal) error {
	if err := p.ensurePending(); err != nil {
		return err
	}
	if product == nil {
		return shared.NewValidationError("INVALID_PRODUCT", "Product is required")
	}
	if quantity <= 0 {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !unitCost.IsPositive() {
		return shared.NewValidationError("INVALID_COST", "Unit cost must be positive")
	}
	if discount.IsNegative() {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot be negative")
	}

	if line := p.Line(product.ID); line != nil {
		line.Quantity += quantity
		line.Discount = line.Discount.Add(discount)
		line.recalculate()
	} else {
		line := PurchaseLine{
			PurchaseID:  p.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitCost:    unitCost,
			Discount:    discount,
		}
		line.recalculate()
		p.Lines = append(p.Lines, line)
	}

	p.recalculateTotals()
	p.UpdatedAt = time.Now()
	return nil
}

// RemoveLine removes the line of a product
func (p *Purchase) RemoveLine(productID int64) error {
	if err := p.ensurePending(); err != nil {
		return err
	}
	for i := range p.Lines {
		if p.Lines[i].ProductID == productID {
			p.Lines = append(p.Lines[:i], p.Lines[i+1:]...)
			p.recalculateTotals()
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewValidationError("LINE_NOT_FOUND", fmt.Sprintf("Product %d is not in the purchase", productID))
}

// SetInvoiceNumber records the supplier invoice
func (p *Purchase) SetInvoiceNumber(number string) error {
	if err := p.ensurePending(); err != nil {
		return err
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.NewValidationError("INVALID_INVOICE", "Invoice number cannot be empty")
	}
	if len(number) > 60 {
		return shared.NewValidationError("INVALID_INVOICE", "Invoice number cannot exceed 60 characters")
	}
	p.InvoiceNumber = number
	p.UpdatedAt = time.Now()
	return nil
}

// Finalize receives the goods: every line is credited to stock and the
// product cost is updated to the line's unit cost
func (p *Purchase) Finalize(ledger *catalog.StockLedger) error {
	if err := purchaseTransitions.Guard("purchase", p.Status, PurchaseStatusFinalized); err != nil {
		return err
	}
	if len(p.Lines) == 0 {
		return shared.NewStateError("EMPTY_PURCHASE", "Cannot finalize a purchase without lines")
	}
	if strings.TrimSpace(p.InvoiceNumber) == "" {
		return shared.NewValidationError("INVOICE_REQUIRED", "Invoice number is required to finalize")
	}
	if ledger == nil {
		return shared.NewValidationError("INVALID_LEDGER", "Stock ledger is required")
	}

	if err := ledger.Credit(p.StockMoves()); err != nil {
		return err
	}
	for _, l := range p.Lines {
		if product, ok := ledger.Product(l.ProductID); ok {
			if err := product.UpdateCost(l.UnitCost); err != nil {
				return err
			}
		}
	}

	now := time.Now()
	p.Status = PurchaseStatusFinalized
	p.FinalizedAt = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPurchaseFinalizedEvent(p))
	return nil
}

// Cancel cancels a pending purchase. Stock is not touched.
func (p *Purchase) Cancel(reason string) error {
	if err := purchaseTransitions.Guard("purchase", p.Status, PurchaseStatusCanceled); err != nil {
		return err
	}

	now := time.Now()
	p.Status = PurchaseStatusCanceled
	p.CancelReason = strings.TrimSpace(reason)
	p.CanceledAt = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPurchaseCanceledEvent(p))
	return nil
}

// Line returns the line of a product, or nil
func (p *Purchase) Line(productID int64) *PurchaseLine {
	for i := range p.Lines {
		if p.Lines[i].ProductID == productID {
			return &p.Lines[i]
		}
	}
	return nil
}

// StockMoves returns the stock quantities the purchase brings in
func (p *Purchase) StockMoves() []catalog.StockMove {
	moves := make([]catalog.StockMove, len(p.Lines))
	for i, l := range p.Lines {
		moves[i] = catalog.StockMove{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return moves
}

// ProductIDs returns the products referenced by the purchase
func (p *Purchase) ProductIDs() []int64 {
	ids := make([]int64, len(p.Lines))
	for i, l := range p.Lines {
		ids[i] = l.ProductID
	}
	return ids
}

func (p *Purchase) ensurePending() error {
	if p.Status != PurchaseStatusPending {
		return shared.NewStateError("PURCHASE_NOT_PENDING", fmt.Sprintf("Cannot modify purchase in %s status", p.Status))
	}
	return nil
}

func (p *Purchase) recalculateTotals() {
	total := decimal.Zero
	for _, l := range p.Lines {
		total = total.Add(l.Total)
	}
	p.Total = total
}
