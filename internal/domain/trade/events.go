package trade

import (
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeOrder    = "Order"
	AggregateTypeSale     = "Sale"
	AggregateTypePurchase = "Purchase"
)

// Event type constants
const (
	EventTypeOrderFinalized    = "OrderFinalized"
	EventTypeOrderCanceled     = "OrderCanceled"
	EventTypeSaleFinalized     = "SaleFinalized"
	EventTypeSaleCanceled      = "SaleCanceled"
	EventTypeInstallmentPaid   = "InstallmentPaid"
	EventTypePurchaseFinalized = "PurchaseFinalized"
	EventTypePurchaseCanceled  = "PurchaseCanceled"
)

// OrderFinalizedEvent is raised when an order is closed for sale
type OrderFinalizedEvent struct {
	shared.BaseDomainEvent
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	LineCount  int             `json:"line_count"`
	Total      decimal.Decimal `json:"total"`
}

// NewOrderFinalizedEvent creates a new OrderFinalizedEvent
func NewOrderFinalizedEvent(o *Order) *OrderFinalizedEvent {
	return &OrderFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFinalized, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		LineCount:       len(o.Lines),
		Total:           o.Total,
	}
}

// OrderCanceledEvent is raised when an open order is canceled
type OrderCanceledEvent struct {
	shared.BaseDomainEvent
	OrderID int64  `json:"order_id"`
	Reason  string `json:"reason"`
}

// NewOrderCanceledEvent creates a new OrderCanceledEvent
func NewOrderCanceledEvent(o *Order) *OrderCanceledEvent {
	return &OrderCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCanceled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Reason:          o.CancelReason,
	}
}

// SaleItemInfo represents item information for events
type SaleItemInfo struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

func saleItemInfos(s *Sale) []SaleItemInfo {
	items := make([]SaleItemInfo, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemInfo{ProductID: item.ProductID, Quantity: item.Quantity, Total: item.Total}
	}
	return items
}

// SaleFinalizedEvent is raised after a sale debited stock and settled payment
type SaleFinalizedEvent struct {
	shared.BaseDomainEvent
	SaleID           int64                     `json:"sale_id"`
	OrderID          int64                     `json:"order_id"`
	PaymentMethod    valueobject.PaymentMethod `json:"payment_method"`
	Total            decimal.Decimal           `json:"total"`
	Discount         decimal.Decimal           `json:"discount"`
	AmountPaid       decimal.Decimal           `json:"amount_paid"`
	Change           decimal.Decimal           `json:"change"`
	InstallmentCount int                       `json:"installment_count"`
	Items            []SaleItemInfo            `json:"items"`
}

// NewSaleFinalizedEvent creates a new SaleFinalizedEvent
func NewSaleFinalizedEvent(s *Sale) *SaleFinalizedEvent {
	return &SaleFinalizedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSaleFinalized, AggregateTypeSale, s.ID),
		SaleID:           s.ID,
		OrderID:          s.OrderID,
		PaymentMethod:    s.PaymentMethod,
		Total:            s.Total,
		Discount:         s.Discount,
		AmountPaid:       s.AmountPaid,
		Change:           s.Change,
		InstallmentCount: len(s.Installments),
		Items:            saleItemInfos(s),
	}
}

// SaleCanceledEvent is raised after a sale returned its items to stock
type SaleCanceledEvent struct {
	shared.BaseDomainEvent
	SaleID int64           `json:"sale_id"`
	Reason string          `json:"reason"`
	Total  decimal.Decimal `json:"total"`
	Items  []SaleItemInfo  `json:"items"`
}

// NewSaleCanceledEvent creates a new SaleCanceledEvent
func NewSaleCanceledEvent(s *Sale) *SaleCanceledEvent {
	return &SaleCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCanceled, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Reason:          s.CancelReason,
		Total:           s.Total,
		Items:           saleItemInfos(s),
	}
}

// InstallmentPaidEvent is raised when an installment of a sale is paid
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	SaleID int64           `json:"sale_id"`
	Number int             `json:"number"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// NewInstallmentPaidEvent creates a new InstallmentPaidEvent
func NewInstallmentPaidEvent(s *Sale, inst *Installment) *InstallmentPaidEvent {
	return &InstallmentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentPaid, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Number:          inst.Number,
		Count:           inst.Count,
		Amount:          inst.Amount,
	}
}

// PurchaseFinalizedEvent is raised after a purchase credited stock
type PurchaseFinalizedEvent struct {
	shared.BaseDomainEvent
	PurchaseID    int64           `json:"purchase_id"`
	SupplierID    int64           `json:"supplier_id"`
	InvoiceNumber string          `json:"invoice_number"`
	LineCount     int             `json:"line_count"`
	Total         decimal.Decimal `json:"total"`
}

// NewPurchaseFinalizedEvent creates a new PurchaseFinalizedEvent
func NewPurchaseFinalizedEvent(p *Purchase) *PurchaseFinalizedEvent {
	return &PurchaseFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseFinalized, AggregateTypePurchase, p.ID),
		PurchaseID:      p.ID,
		SupplierID:      p.SupplierID,
		InvoiceNumber:   p.InvoiceNumber,
		LineCount:       len(p.Lines),
		Total:           p.Total,
	}
}

// PurchaseCanceledEvent is raised when a pending purchase is canceled
type PurchaseCanceledEvent struct {
	shared.BaseDomainEvent
	PurchaseID int64  `json:"purchase_id"`
	Reason     string `json:"reason"`
}

// NewPurchaseCanceledEvent creates a new PurchaseCanceledEvent
func NewPurchaseCanceledEvent(p *Purchase) *PurchaseCanceledEvent {
	return &PurchaseCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseCanceled, AggregateTypePurchase, p.ID),
		PurchaseID:      p.ID,
		Reason:          p.CancelReason,
	}
}
