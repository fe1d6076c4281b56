package models

import (
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Code             string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_code"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Price            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Cost             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockQuantity    int             `gorm:"not null;default:0"`
	MinStockQuantity int             `gorm:"not null;default:0"`
	Active           bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Price:             m.Price,
		Cost:              m.Cost,
		StockQuantity:     m.StockQuantity,
		MinStockQuantity:  m.MinStockQuantity,
		Active:            m.Active,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:             p.Code,
		Name:             p.Name,
		Price:            p.Price,
		Cost:             p.Cost,
		StockQuantity:    p.StockQuantity,
		MinStockQuantity: p.MinStockQuantity,
		Active:           p.Active,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
