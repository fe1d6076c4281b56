package catalog

import (
	"context"
	"fmt"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlertNotifier is the interface for sending stock alerts
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	ProductID       int64  `json:"product_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	CurrentQuantity int    `json:"current_quantity"`
	MinimumQuantity int    `json:"minimum_quantity"`
	AlertType       string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// LowStockAlertHandler handles StockBelowMinimum events and sends an alert
// for each product that fell under its minimum
type LowStockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewLowStockAlertHandler creates a new handler for stock below minimum events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{catalog.EventTypeStockBelowMinimum}
}

// Handle processes a StockBelowMinimumEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	belowEvent, ok := event.(*catalog.StockBelowMinimumEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeStockBelowMinimum),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeStockBelowMinimum, event.EventType())
	}

	alertType := "low_stock"
	if belowEvent.StockQuantity == 0 {
		alertType = "out_of_stock"
	}

	h.logger.Warn("stock below minimum detected",
		zap.Int64("product_id", belowEvent.ProductID),
		zap.String("code", belowEvent.Code),
		zap.Int("stock_quantity", belowEvent.StockQuantity),
		zap.Int("min_stock_quantity", belowEvent.MinStockQuantity),
		zap.String("alert_type", alertType),
	)

	if h.notifier == nil {
		return nil
	}

	alert := StockAlert{
		ProductID:       belowEvent.ProductID,
		Code:            belowEvent.Code,
		Name:            belowEvent.Name,
		CurrentQuantity: belowEvent.StockQuantity,
		MinimumQuantity: belowEvent.MinStockQuantity,
		AlertType:       alertType,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// notification failure does not fail the event handling
		h.logger.Error("failed to send stock alert notification",
			zap.Int64("product_id", alert.ProductID),
			zap.Error(err),
		)
	}
	return nil
}

// Ensure LowStockAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingStockAlertNotifier is a notifier that logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.Int64("product_id", alert.ProductID),
		zap.String("code", alert.Code),
		zap.Int("current_qty", alert.CurrentQuantity),
		zap.Int("minimum_qty", alert.MinimumQuantity),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
