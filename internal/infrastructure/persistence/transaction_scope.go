package persistence

import (
	"context"

	"github.com/erp/posledger/internal/application/common"
	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements common.TransactionScope using GORM transactions.
// If fn returns an error, every write made through the scoped repositories
// is rolled back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos common.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// gormRepositories provides access to all repositories within a transaction.
type gormRepositories struct {
	tx *gorm.DB
}

func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormRepositories) Sessions() cash.SessionRepository {
	return NewGormSessionRepository(r.tx)
}

func (r *gormRepositories) Movements() cash.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormRepositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormRepositories) OrderLines() trade.OrderLineRepository {
	return NewGormOrderLineRepository(r.tx)
}

func (r *gormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormRepositories) Installments() trade.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

func (r *gormRepositories) Purchases() trade.PurchaseRepository {
	return NewGormPurchaseRepository(r.tx)
}

func (r *gormRepositories) PurchaseLines() trade.PurchaseLineRepository {
	return NewGormPurchaseLineRepository(r.tx)
}

var (
	_ common.TransactionScope = (*GormTransactionScope)(nil)
	_ common.Repositories     = (*gormRepositories)(nil)
)
