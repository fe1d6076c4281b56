package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics counts what happens at the counter: sales, purchases,
// cash sessions, installments and stock alerts.
type BusinessMetrics struct {
	salesFinalized     *Counter
	salesCanceled      *Counter
	saleAmountCents    *Counter
	saleTicket         *Histogram
	purchasesFinalized *Counter
	purchaseAmount     *Counter
	sessionsClosed     *Counter
	cashMovements      *Counter
	installmentsPaid   *Counter
	lowStockAlerts     *Counter
}

// NewBusinessMetrics creates the POS instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.salesFinalized, "pos_sales_finalized_total", "Sales finalized", "{sales}"},
		{&bm.salesCanceled, "pos_sales_canceled_total", "Sales canceled", "{sales}"},
		{&bm.saleAmountCents, "pos_sale_amount_total", "Finalized sale amount in centavos", "{centavos}"},
		{&bm.purchasesFinalized, "pos_purchases_finalized_total", "Purchases finalized", "{purchases}"},
		{&bm.purchaseAmount, "pos_purchase_amount_total", "Finalized purchase amount in centavos", "{centavos}"},
		{&bm.sessionsClosed, "pos_cash_sessions_closed_total", "Cash sessions closed", "{sessions}"},
		{&bm.cashMovements, "pos_cash_movements_total", "Cash movements recorded in closed sessions", "{movements}"},
		{&bm.installmentsPaid, "pos_installments_paid_total", "Installments paid", "{installments}"},
		{&bm.lowStockAlerts, "pos_low_stock_alerts_total", "Products that fell to or below minimum stock", "{alerts}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	ticket, err := NewHistogram(meter, HistogramOpts{
		Name:        "pos_sale_ticket",
		Description: "Distribution of finalized sale totals",
		Unit:        "BRL",
		Boundaries:  TicketBuckets,
	})
	if err != nil {
		return nil, err
	}
	bm.saleTicket = ticket

	return bm, nil
}

// RecordSaleFinalized counts a finalized sale and its total.
func (bm *BusinessMetrics) RecordSaleFinalized(ctx context.Context, paymentMethod string, total decimal.Decimal) {
	method := AttrPaymentMethod.String(paymentMethod)
	bm.salesFinalized.Inc(ctx, method)
	bm.saleAmountCents.Add(ctx, cents(total), method)
	bm.saleTicket.Record(ctx, total.InexactFloat64(), method)
}

// RecordSaleCanceled counts a canceled sale.
func (bm *BusinessMetrics) RecordSaleCanceled(ctx context.Context) {
	bm.salesCanceled.Inc(ctx)
}

// RecordPurchaseFinalized counts a finalized purchase and its total.
func (bm *BusinessMetrics) RecordPurchaseFinalized(ctx context.Context, total decimal.Decimal) {
	bm.purchasesFinalized.Inc(ctx)
	bm.purchaseAmount.Add(ctx, cents(total))
}

// RecordCashSessionClosed counts a closed session and the movements it held.
func (bm *BusinessMetrics) RecordCashSessionClosed(ctx context.Context, movementCount int) {
	bm.sessionsClosed.Inc(ctx)
	bm.cashMovements.Add(ctx, int64(movementCount))
}

// RecordInstallmentPaid counts a paid installment.
func (bm *BusinessMetrics) RecordInstallmentPaid(ctx context.Context) {
	bm.installmentsPaid.Inc(ctx)
}

// RecordLowStockAlert counts a low-stock alert by type (low_stock, out_of_stock).
func (bm *BusinessMetrics) RecordLowStockAlert(ctx context.Context, alertType string) {
	bm.lowStockAlerts.Inc(ctx, AttrAlertType.String(alertType))
}

func cents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
