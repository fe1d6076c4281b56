package catalog

import (
	"time"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code         string          `json:"code" validate:"required,max=50"`
	Name         string          `json:"name" validate:"required,max=200"`
	Price        decimal.Decimal `json:"price" validate:"gte=0"`
	Cost         decimal.Decimal `json:"cost" validate:"gte=0"`
	MinStock     int             `json:"min_stock" validate:"gte=0"`
	InitialStock int             `json:"initial_stock" validate:"gte=0"`
}

// UpdatePricesRequest represents a request to change a product's price and cost
type UpdatePricesRequest struct {
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Cost  decimal.Decimal `json:"cost" validate:"gte=0"`
}

// AdjustStockRequest represents a manual stock adjustment
type AdjustStockRequest struct {
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Direction string `json:"direction" validate:"required,oneof=ENTRADA SAIDA"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID               int64           `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Cost             decimal.Decimal `json:"cost"`
	Margin           decimal.Decimal `json:"margin"`
	StockQuantity    int             `json:"stock_quantity"`
	MinStockQuantity int             `json:"min_stock_quantity"`
	BelowMinimum     bool            `json:"below_minimum"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Code:             p.Code,
		Name:             p.Name,
		Price:            p.Price,
		Cost:             p.Cost,
		Margin:           p.Margin(),
		StockQuantity:    p.StockQuantity,
		MinStockQuantity: p.MinStockQuantity,
		BelowMinimum:     p.IsBelowMinimum(),
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}

// ToProductResponses converts a slice of domain Products to ProductResponses
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
