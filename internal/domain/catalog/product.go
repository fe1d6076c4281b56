package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/posledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockDirection is the direction of a stock adjustment
type StockDirection string

const (
	StockIn  StockDirection = "ENTRADA"
	StockOut StockDirection = "SAIDA"
)

// IsValid checks if the direction is known
func (d StockDirection) IsValid() bool {
	return d == StockIn || d == StockOut
}

// Product is the catalog entry that carries the stock counter.
// StockQuantity is only ever changed through Adjust.
type Product struct {
	shared.BaseAggregateRoot
	Code             string
	Name             string
	Price            decimal.Decimal
	Cost             decimal.Decimal
	StockQuantity    int
	MinStockQuantity int
	Active           bool
}

// NewProduct creates an active product with zero stock
func NewProduct(code, name string, price, cost decimal.Decimal) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Price cannot be negative")
	}
	if cost.IsNegative() {
		return nil, shared.NewValidationError("INVALID_COST", "Cost cannot be negative")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Price:             price,
		Cost:              cost,
		Active:            true,
	}
	return p, nil
}

// Adjust moves stock in the given direction. Incoming stock always succeeds;
// outgoing stock fails when it exceeds the current quantity and leaves the
// product untouched.
func (p *Product) Adjust(quantity int, direction StockDirection) error {
	if quantity <= 0 {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}

	switch direction {
	case StockIn:
		p.StockQuantity += quantity
	case StockOut:
		if quantity > p.StockQuantity {
			return shared.NewInsufficientStockError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Product %s has %d in stock, %d requested", p.Code, p.StockQuantity, quantity))
		}
		p.StockQuantity -= quantity
	default:
		return shared.NewValidationError("INVALID_DIRECTION", fmt.Sprintf("Unknown stock direction %q", direction))
	}

	p.UpdatedAt = time.Now()

	if direction == StockOut && p.IsBelowMinimum() {
		p.AddDomainEvent(NewStockBelowMinimumEvent(p))
	}
	return nil
}

// CanDebit reports whether quantity units can leave stock
func (p *Product) CanDebit(quantity int) bool {
	return quantity > 0 && quantity <= p.StockQuantity
}

// SetPrices updates sale price and cost
func (p *Product) SetPrices(price, cost decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Price cannot be negative")
	}
	if cost.IsNegative() {
		return shared.NewValidationError("INVALID_COST", "Cost cannot be negative")
	}
	p.Price = price
	p.Cost = cost
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateCost records the unit cost of the latest purchase
func (p *Product) UpdateCost(cost decimal.Decimal) error {
	if !cost.IsPositive() {
		return shared.NewValidationError("INVALID_COST", "Cost must be positive")
	}
	p.Cost = cost
	p.UpdatedAt = time.Now()
	return nil
}

// SetMinStock sets the minimum stock threshold
func (p *Product) SetMinStock(quantity int) error {
	if quantity < 0 {
		return shared.NewValidationError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	p.MinStockQuantity = quantity
	p.UpdatedAt = time.Now()
	return nil
}

// IsBelowMinimum reports whether stock dropped under the configured minimum.
// A zero minimum disables the check.
func (p *Product) IsBelowMinimum() bool {
	return p.MinStockQuantity > 0 && p.StockQuantity < p.MinStockQuantity
}

// Activate makes the product sellable
func (p *Product) Activate() error {
	if p.Active {
		return shared.NewStateError("ALREADY_ACTIVE", "Product is already active")
	}
	p.Active = true
	p.UpdatedAt = time.Now()
	return nil
}

// Deactivate removes the product from sale
func (p *Product) Deactivate() error {
	if !p.Active {
		return shared.NewStateError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	return nil
}

// Margin returns price minus cost
func (p *Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}
