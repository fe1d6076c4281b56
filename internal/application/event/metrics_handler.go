package event

import (
	"context"

	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Recorder receives business measurements derived from committed events.
// telemetry.BusinessMetrics implements it.
type Recorder interface {
	RecordSaleFinalized(ctx context.Context, paymentMethod string, total decimal.Decimal)
	RecordSaleCanceled(ctx context.Context)
	RecordPurchaseFinalized(ctx context.Context, total decimal.Decimal)
	RecordCashSessionClosed(ctx context.Context, movementCount int)
	RecordInstallmentPaid(ctx context.Context)
	RecordLowStockAlert(ctx context.Context, alertType string)
}

// MetricsHandler translates domain events into business metrics
type MetricsHandler struct {
	recorder Recorder
	logger   *zap.Logger
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(recorder Recorder, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{recorder: recorder, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		trade.EventTypeSaleFinalized,
		trade.EventTypeSaleCanceled,
		trade.EventTypePurchaseFinalized,
		trade.EventTypeInstallmentPaid,
		cash.EventTypeCashSessionClosed,
		catalog.EventTypeStockBelowMinimum,
	}
}

// Handle implements shared.EventHandler. Unknown events are ignored.
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.SaleFinalizedEvent:
		h.recorder.RecordSaleFinalized(ctx, string(e.PaymentMethod), e.Total)
	case *trade.SaleCanceledEvent:
		h.recorder.RecordSaleCanceled(ctx)
	case *trade.PurchaseFinalizedEvent:
		h.recorder.RecordPurchaseFinalized(ctx, e.Total)
	case *trade.InstallmentPaidEvent:
		h.recorder.RecordInstallmentPaid(ctx)
	case *cash.CashSessionClosedEvent:
		h.recorder.RecordCashSessionClosed(ctx, e.MovementCount)
	case *catalog.StockBelowMinimumEvent:
		alertType := "low_stock"
		if e.StockQuantity == 0 {
			alertType = "out_of_stock"
		}
		h.recorder.RecordLowStockAlert(ctx, alertType)
	default:
		h.logger.Debug("no metric for event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
