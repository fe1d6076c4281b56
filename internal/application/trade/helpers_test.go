package trade

import (
	"context"
	"sync"
	"testing"

	"github.com/erp/posledger/internal/application/common"
	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/infrastructure/persistence/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testEnv struct {
	store     *memory.Store
	publisher *recordingPublisher
	orders    *OrderService
	sales     *SaleService
	purchases *PurchaseService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	locker := common.NewKeyedLocker()
	publisher := &recordingPublisher{}
	logger := zaptest.NewLogger(t)
	return &testEnv{
		store:     store,
		publisher: publisher,
		orders:    NewOrderService(store, locker, publisher, logger),
		sales:     NewSaleService(store, locker, publisher, DefaultSaleSettings(), logger),
		purchases: NewPurchaseService(store, locker, publisher, logger),
	}
}

func (e *testEnv) product(t *testing.T, code, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, "Product "+code, dec(price), dec("1"))
	require.NoError(t, err)
	if stock > 0 {
		require.NoError(t, p.Adjust(stock, catalog.StockIn))
	}
	require.NoError(t, e.store.Products().Create(context.Background(), p))
	return p
}

func (e *testEnv) stock(t *testing.T, productID int64) int {
	t.Helper()
	p, err := e.store.Products().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func (e *testEnv) openSession(t *testing.T, operatorID int64, balance string) *cash.CashSession {
	t.Helper()
	s, err := cash.Open(operatorID, dec(balance))
	require.NoError(t, err)
	require.NoError(t, e.store.Sessions().Create(context.Background(), s))
	return s
}

func (e *testEnv) session(t *testing.T, id int64) *cash.CashSession {
	t.Helper()
	s, err := e.store.Sessions().FindByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (e *testEnv) finalizedOrder(t *testing.T, lines ...OrderLineRequest) *OrderResponse {
	t.Helper()
	ctx := context.Background()
	order, err := e.orders.Create(ctx, CreateOrderRequest{SellerID: 7, Lines: lines})
	require.NoError(t, err)
	order, err = e.orders.Finalize(ctx, order.ID)
	require.NoError(t, err)
	return order
}

func (e *testEnv) pendingSale(t *testing.T, lines ...OrderLineRequest) *SaleResponse {
	t.Helper()
	order := e.finalizedOrder(t, lines...)
	sale, err := e.sales.CreateFromOrder(context.Background(), order.ID)
	require.NoError(t, err)
	return sale
}

func line(p *catalog.Product, quantity int) OrderLineRequest {
	return OrderLineRequest{ProductID: p.ID, Quantity: quantity}
}
