package catalog

import (
	"github.com/erp/posledger/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeStockBelowMinimum = "StockBelowMinimum"
)

// StockBelowMinimumEvent is raised when an outgoing adjustment leaves a
// product under its minimum stock quantity
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	ProductID        int64  `json:"product_id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	StockQuantity    int    `json:"stock_quantity"`
	MinStockQuantity int    `json:"min_stock_quantity"`
}

// NewStockBelowMinimumEvent creates a new StockBelowMinimumEvent
func NewStockBelowMinimumEvent(p *Product) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, AggregateTypeProduct, p.ID),
		ProductID:        p.ID,
		Code:             p.Code,
		Name:             p.Name,
		StockQuantity:    p.StockQuantity,
		MinStockQuantity: p.MinStockQuantity,
	}
}
