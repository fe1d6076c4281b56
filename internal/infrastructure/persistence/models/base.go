package models

import (
	"time"

	"github.com/erp/posledger/internal/domain/shared"
)

// AggregateModel provides the persistence fields of an aggregate root.
// Version backs optimistic locking.
type AggregateModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomainAggregateRoot returns the domain root fields; pending events are empty
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

// All returns every model in migration order
func All() []any {
	return []any{
		&ProductModel{},
		&CashSessionModel{},
		&CashMovementModel{},
		&OrderModel{},
		&OrderLineModel{},
		&SaleModel{},
		&SaleItemModel{},
		&InstallmentModel{},
		&PurchaseModel{},
		&PurchaseLineModel{},
	}
}
