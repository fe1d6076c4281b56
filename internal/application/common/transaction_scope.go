package common

import (
	"context"

	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/trade"
)

// TransactionScope runs a unit of work against repositories that share one
// transaction. If fn returns an error every write made through repos is
// rolled back; otherwise they are committed together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to every repository within a transaction.
// Child entities (order lines, sale items, installments, purchase lines and
// cash movements) are written through their aggregate root and only read
// through their own repositories.
type Repositories interface {
	Products() catalog.ProductRepository
	Sessions() cash.SessionRepository
	Movements() cash.MovementRepository
	Orders() trade.OrderRepository
	OrderLines() trade.OrderLineRepository
	Sales() trade.SaleRepository
	Installments() trade.InstallmentRepository
	Purchases() trade.PurchaseRepository
	PurchaseLines() trade.PurchaseLineRepository
}
