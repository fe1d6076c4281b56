package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockStockAlertNotifier is a mock notifier for testing
type MockStockAlertNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
	err    error
}

func (n *MockStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func (n *MockStockAlertNotifier) GetAlerts() []StockAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]StockAlert(nil), n.alerts...)
}

func belowMinimumEvent(t *testing.T, stock, minStock int) *catalog.StockBelowMinimumEvent {
	t.Helper()
	p, err := catalog.NewProduct("CAFE", "Cafe", dec("10"), dec("6"))
	require.NoError(t, err)
	p.ID = 9
	require.NoError(t, p.SetMinStock(minStock))
	p.StockQuantity = stock
	return catalog.NewStockBelowMinimumEvent(p)
}

func TestLowStockAlertHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("sends low stock alert", func(t *testing.T) {
		notifier := &MockStockAlertNotifier{}
		handler := NewLowStockAlertHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

		require.NoError(t, handler.Handle(ctx, belowMinimumEvent(t, 2, 5)))

		alerts := notifier.GetAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, "low_stock", alerts[0].AlertType)
		assert.Equal(t, int64(9), alerts[0].ProductID)
		assert.Equal(t, 2, alerts[0].CurrentQuantity)
		assert.Equal(t, 5, alerts[0].MinimumQuantity)
	})

	t.Run("zero stock is out of stock", func(t *testing.T) {
		notifier := &MockStockAlertNotifier{}
		handler := NewLowStockAlertHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

		require.NoError(t, handler.Handle(ctx, belowMinimumEvent(t, 0, 5)))
		assert.Equal(t, "out_of_stock", notifier.GetAlerts()[0].AlertType)
	})

	t.Run("notifier failure does not fail handling", func(t *testing.T) {
		notifier := &MockStockAlertNotifier{err: errors.New("smtp down")}
		handler := NewLowStockAlertHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

		assert.NoError(t, handler.Handle(ctx, belowMinimumEvent(t, 1, 5)))
	})

	t.Run("without notifier only logs", func(t *testing.T) {
		handler := NewLowStockAlertHandler(zaptest.NewLogger(t))
		assert.NoError(t, handler.Handle(ctx, belowMinimumEvent(t, 1, 5)))
	})

	t.Run("rejects other events", func(t *testing.T) {
		handler := NewLowStockAlertHandler(zaptest.NewLogger(t))
		session, err := cash.Open(1, dec("10"))
		require.NoError(t, err)
		err = handler.Handle(ctx, cash.NewCashSessionOpenedEvent(session))
		assert.Error(t, err)
	})

	t.Run("event types", func(t *testing.T) {
		handler := NewLowStockAlertHandler(zaptest.NewLogger(t))
		assert.Equal(t, []string{catalog.EventTypeStockBelowMinimum}, handler.EventTypes())
	})
}

func TestLoggingStockAlertNotifier(t *testing.T) {
	n := NewLoggingStockAlertNotifier(zaptest.NewLogger(t))
	assert.NoError(t, n.SendAlert(context.Background(), StockAlert{ProductID: 1, AlertType: "low_stock"}))
}
