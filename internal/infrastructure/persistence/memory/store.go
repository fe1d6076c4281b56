package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/erp/posledger/internal/application/common"
	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/trade"
)

// Store keeps every aggregate in maps of detached copies. Callers never hold
// a reference into the store: reads return copies and writes store copies.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	nextID    int64
	products  map[int64]catalog.Product
	sessions  map[int64]cash.CashSession
	orders    map[int64]trade.Order
	sales     map[int64]trade.Sale
	purchases map[int64]trade.Purchase
}

// New creates an empty store
func New() *Store {
	return &Store{
		products:  make(map[int64]catalog.Product),
		sessions:  make(map[int64]cash.CashSession),
		orders:    make(map[int64]trade.Order),
		sales:     make(map[int64]trade.Sale),
		purchases: make(map[int64]trade.Purchase),
	}
}

type snapshot struct {
	nextID    int64
	products  map[int64]catalog.Product
	sessions  map[int64]cash.CashSession
	orders    map[int64]trade.Order
	sales     map[int64]trade.Sale
	purchases map[int64]trade.Purchase
}

// Execute runs fn as one serialized transaction. Stored values are never
// mutated in place, so a shallow copy of the maps is enough to roll back.
func (s *Store) Execute(ctx context.Context, fn func(repos common.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		nextID:    s.nextID,
		products:  maps.Clone(s.products),
		sessions:  maps.Clone(s.sessions),
		orders:    maps.Clone(s.orders),
		sales:     maps.Clone(s.sales),
		purchases: maps.Clone(s.purchases),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.products = snap.products
	s.sessions = snap.sessions
	s.orders = snap.orders
	s.sales = snap.sales
	s.purchases = snap.purchases
}

// newID must be called with mu held
func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

// Products returns the product repository
func (s *Store) Products() catalog.ProductRepository { return &productRepo{s: s} }

// Sessions returns the cash session repository
func (s *Store) Sessions() cash.SessionRepository { return &sessionRepo{s: s} }

// Movements returns the cash movement repository
func (s *Store) Movements() cash.MovementRepository { return &movementRepo{s: s} }

// Orders returns the order repository
func (s *Store) Orders() trade.OrderRepository { return &orderRepo{s: s} }

// OrderLines returns the order line repository
func (s *Store) OrderLines() trade.OrderLineRepository { return &orderLineRepo{s: s} }

// Sales returns the sale repository
func (s *Store) Sales() trade.SaleRepository { return &saleRepo{s: s} }

// Installments returns the installment repository
func (s *Store) Installments() trade.InstallmentRepository { return &installmentRepo{s: s} }

// Purchases returns the purchase repository
func (s *Store) Purchases() trade.PurchaseRepository { return &purchaseRepo{s: s} }

// PurchaseLines returns the purchase line repository
func (s *Store) PurchaseLines() trade.PurchaseLineRepository { return &purchaseLineRepo{s: s} }

var (
	_ common.TransactionScope = (*Store)(nil)
	_ common.Repositories     = (*Store)(nil)
)

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
