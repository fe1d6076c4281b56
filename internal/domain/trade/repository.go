package trade

import (
	"context"
	"time"
)

// OrderRepository defines the interface for order persistence.
// Create and Update also store the order lines.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id int64) error
	FindByStatus(ctx context.Context, status OrderStatus) ([]*Order, error)
}

// OrderLineRepository reads order lines; lines are written through their order
type OrderLineRepository interface {
	FindByID(ctx context.Context, id int64) (*OrderLine, error)
	FindByOrder(ctx context.Context, orderID int64) ([]OrderLine, error)
}

// SaleRepository defines the interface for sale persistence.
// Create and Update also store the sale items and installments.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id int64) (*Sale, error)
	// FindByOrder finds the sale created from an order
	FindByOrder(ctx context.Context, orderID int64) (*Sale, error)
	Update(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, id int64) error
}

// InstallmentRepository reads installments; they are written through their sale
type InstallmentRepository interface {
	FindByID(ctx context.Context, id int64) (*Installment, error)
	FindBySale(ctx context.Context, saleID int64) ([]Installment, error)
	// FindDueBefore finds unpaid, uncanceled installments due before t
	FindDueBefore(ctx context.Context, t time.Time) ([]Installment, error)
}

// PurchaseRepository defines the interface for purchase persistence.
// Create and Update also store the purchase lines.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *Purchase) error
	FindByID(ctx context.Context, id int64) (*Purchase, error)
	Update(ctx context.Context, purchase *Purchase) error
	Delete(ctx context.Context, id int64) error
	FindByStatus(ctx context.Context, status PurchaseStatus) ([]*Purchase, error)
}

// PurchaseLineRepository reads purchase lines; lines are written through their purchase
type PurchaseLineRepository interface {
	FindByID(ctx context.Context, id int64) (*PurchaseLine, error)
	FindByPurchase(ctx context.Context, purchaseID int64) ([]PurchaseLine, error)
}
