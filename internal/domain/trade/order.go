package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusFinalized OrderStatus = "FINALIZED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

var orderTransitions = shared.Transitions[OrderStatus]{
	OrderStatusOpen: {OrderStatusFinalized, OrderStatusCanceled},
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusFinalized, OrderStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return orderTransitions.Allows(s, target)
}

// OrderLine is one product of an order. UnitPrice is the price when the
// product was first added.
type OrderLine struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// Subtotal returns quantity times unit price
func (l *OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l *OrderLine) recalculate() {
	l.Total = l.Subtotal().Sub(l.Discount)
}

// Order is a cart of lines for a customer, independent of payment
type Order struct {
	shared.BaseAggregateRoot
	CustomerID   int64 // zero for walk-in customers
	SellerID     int64
	Status       OrderStatus
	Lines        []OrderLine
	Total        decimal.Decimal
	CancelReason string
	FinalizedAt  *time.Time
	CanceledAt   *time.Time
}

// NewOrder creates an open order
func NewOrder(customerID, sellerID int64) (*Order, error) {
	if sellerID <= 0 {
		return nil, shared.NewValidationError("INVALID_SELLER", "Seller ID is required")
	}
	if customerID < 0 {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be negative")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		SellerID:          sellerID,
		Status:            OrderStatusOpen,
		Lines:             make([]OrderLine, 0),
		Total:             decimal.Zero,
	}, nil
}

// AddLine adds quantity of a product to the order. A product already in the
// order has its line quantity increased instead of getting a second line.
// A nil unitPrice uses the product's current price.
func (o *Order) AddLine(product *catalog.Product, quantity int, unitPrice *decimal.Decimal) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	if product == nil {
		return shared.NewValidationError("INVALID_PRODUCT", "Product is required")
	}
	if quantity <= 0 {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !product.Active {
		return shared.NewValidationError("PRODUCT_INACTIVE", fmt.Sprintf("Product %s is not active", product.Code))
	}
	price := product.Price
	if unitPrice != nil {
		price = *unitPrice
	}
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}

	if line := o.Line(product.ID); line != nil {
		line.Quantity += quantity
		line.recalculate()
	} else {
		line := OrderLine{
			OrderID:     o.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   price,
			Discount:    decimal.Zero,
		}
		line.recalculate()
		o.Lines = append(o.Lines, line)
	}

	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	return nil
}

// RemoveLine removes the line of a product
func (o *Order) RemoveLine(productID int64) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewValidationError("LINE_NOT_FOUND", fmt.Sprintf("Product %d is not in the order", productID))
}

// SetLineDiscount sets the discount of a product line, at most its subtotal
func (o *Order) SetLineDiscount(productID int64, discount decimal.Decimal) error {
	if err := o.ensureOpen(); err != nil {
		return err
	}
	line := o.Line(productID)
	if line == nil {
		return shared.NewValidationError("LINE_NOT_FOUND", fmt.Sprintf("Product %d is not in the order", productID))
	}
	if discount.IsNegative() {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.GreaterThan(line.Subtotal()) {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot exceed the line subtotal")
	}

	line.Discount = discount
	line.recalculate()
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	return nil
}

// Finalize closes the cart; an order without lines cannot be finalized
func (o *Order) Finalize() error {
	if err := orderTransitions.Guard("order", o.Status, OrderStatusFinalized); err != nil {
		return err
	}
	if len(o.Lines) == 0 {
		return shared.NewStateError("EMPTY_ORDER", "Cannot finalize an order without lines")
	}

	now := time.Now()
	o.Status = OrderStatusFinalized
	o.FinalizedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderFinalizedEvent(o))
	return nil
}

// Cancel cancels an open order
func (o *Order) Cancel(reason string) error {
	if err := orderTransitions.Guard("order", o.Status, OrderStatusCanceled); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = OrderStatusCanceled
	o.CancelReason = reason
	o.CanceledAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCanceledEvent(o))
	return nil
}

// Line returns the line of a product, or nil
func (o *Order) Line(productID int64) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID {
			return &o.Lines[i]
		}
	}
	return nil
}

// ProductIDs returns the products referenced by the order
func (o *Order) ProductIDs() []int64 {
	ids := make([]int64, len(o.Lines))
	for i, l := range o.Lines {
		ids[i] = l.ProductID
	}
	return ids
}

// IsOpen returns true if the order still accepts changes
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

func (o *Order) ensureOpen() error {
	if o.Status != OrderStatusOpen {
		return shared.NewStateError("ORDER_NOT_OPEN", fmt.Sprintf("Cannot modify order in %s status", o.Status))
	}
	return nil
}

func (o *Order) recalculateTotals() {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Total)
	}
	o.Total = total
}
