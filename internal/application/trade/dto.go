package trade

import (
	"time"

	"github.com/erp/posledger/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Orders ====================

// OrderLineRequest represents a product line added to an order.
// UnitPrice defaults to the product price.
type OrderLineRequest struct {
	ProductID int64            `json:"product_id" validate:"gt=0"`
	Quantity  int              `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest represents a request to open an order.
// CustomerID 0 is a walk-in customer.
type CreateOrderRequest struct {
	CustomerID int64              `json:"customer_id" validate:"gte=0"`
	SellerID   int64              `json:"seller_id" validate:"gt=0"`
	Lines      []OrderLineRequest `json:"lines" validate:"dive"`
}

// SetLineDiscountRequest represents a discount on one order line
type SetLineDiscountRequest struct {
	Discount decimal.Decimal `json:"discount" validate:"gte=0"`
}

// CancelRequest represents a cancellation with its reason
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID           int64               `json:"id"`
	CustomerID   int64               `json:"customer_id"`
	SellerID     int64               `json:"seller_id"`
	Status       string              `json:"status"`
	Lines        []OrderLineResponse `json:"lines"`
	Total        decimal.Decimal     `json:"total"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	FinalizedAt  *time.Time          `json:"finalized_at,omitempty"`
	CanceledAt   *time.Time          `json:"canceled_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	Version      int                 `json:"version"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Total:       l.Total,
		}
	}
	return OrderResponse{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		SellerID:     o.SellerID,
		Status:       string(o.Status),
		Lines:        lines,
		Total:        o.Total,
		CancelReason: o.CancelReason,
		FinalizedAt:  o.FinalizedAt,
		CanceledAt:   o.CanceledAt,
		CreatedAt:    o.CreatedAt,
		Version:      o.Version,
	}
}

// ==================== Sales ====================

// SetPaymentRequest sets how a pending sale is paid. Installments > 0
// generates that many installments, the first due at FirstDueDate or one
// interval from now.
type SetPaymentRequest struct {
	PaymentMethod string          `json:"payment_method" validate:"required,payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid" validate:"gte=0"`
	Discount      decimal.Decimal `json:"discount" validate:"gte=0"`
	Installments  int             `json:"installments" validate:"gte=0"`
	FirstDueDate  *time.Time      `json:"first_due_date"`
}

// FinalizeSaleRequest names the operator whose open register receives cash payments
type FinalizeSaleRequest struct {
	OperatorID int64 `json:"operator_id" validate:"gte=0"`
}

// SaleItemResponse represents a sale item in API responses
type SaleItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID      int64           `json:"id"`
	Number  int             `json:"number"`
	Count   int             `json:"count"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
	PaidAt  *time.Time      `json:"paid_at,omitempty"`
	Status  string          `json:"status"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            int64                 `json:"id"`
	OrderID       int64                 `json:"order_id"`
	CustomerID    int64                 `json:"customer_id"`
	SellerID      int64                 `json:"seller_id"`
	Status        string                `json:"status"`
	Items         []SaleItemResponse    `json:"items"`
	Total         decimal.Decimal       `json:"total"`
	Discount      decimal.Decimal       `json:"discount"`
	AmountDue     decimal.Decimal       `json:"amount_due"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	Change        decimal.Decimal       `json:"change"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	Installments  []InstallmentResponse `json:"installments"`
	CancelReason  string                `json:"cancel_reason,omitempty"`
	FinalizedAt   *time.Time            `json:"finalized_at,omitempty"`
	CanceledAt    *time.Time            `json:"canceled_at,omitempty"`
	Version       int                   `json:"version"`
}

// ToInstallmentResponse converts a domain Installment to InstallmentResponse
func ToInstallmentResponse(inst trade.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:      inst.ID,
		Number:  inst.Number,
		Count:   inst.Count,
		Amount:  inst.Amount,
		DueDate: inst.DueDate,
		PaidAt:  inst.PaidAt,
		Status:  string(inst.Status),
	}
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			Total:       item.Total,
		}
	}
	installments := make([]InstallmentResponse, len(s.Installments))
	for i, inst := range s.Installments {
		installments[i] = ToInstallmentResponse(inst)
	}
	return SaleResponse{
		ID:            s.ID,
		OrderID:       s.OrderID,
		CustomerID:    s.CustomerID,
		SellerID:      s.SellerID,
		Status:        string(s.Status),
		Items:         items,
		Total:         s.Total,
		Discount:      s.Discount,
		AmountDue:     s.AmountDue(),
		AmountPaid:    s.AmountPaid,
		Change:        s.Change,
		PaymentMethod: string(s.PaymentMethod),
		Installments:  installments,
		CancelReason:  s.CancelReason,
		FinalizedAt:   s.FinalizedAt,
		CanceledAt:    s.CanceledAt,
		Version:       s.Version,
	}
}

// ==================== Purchases ====================

// PurchaseLineRequest represents a product line received from a supplier
type PurchaseLineRequest struct {
	ProductID int64           `json:"product_id" validate:"gt=0"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost" validate:"gt=0"`
	Discount  decimal.Decimal `json:"discount" validate:"gte=0"`
}

// CreatePurchaseRequest represents a request to register a supplier purchase
type CreatePurchaseRequest struct {
	SupplierID    int64                 `json:"supplier_id" validate:"gt=0"`
	OperatorID    int64                 `json:"operator_id" validate:"gt=0"`
	InvoiceNumber string                `json:"invoice_number" validate:"max=60"`
	Lines         []PurchaseLineRequest `json:"lines" validate:"dive"`
}

// PurchaseLineResponse represents a purchase line in API responses
type PurchaseLineResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID            int64                  `json:"id"`
	SupplierID    int64                  `json:"supplier_id"`
	OperatorID    int64                  `json:"operator_id"`
	Status        string                 `json:"status"`
	InvoiceNumber string                 `json:"invoice_number,omitempty"`
	Lines         []PurchaseLineResponse `json:"lines"`
	Total         decimal.Decimal        `json:"total"`
	CancelReason  string                 `json:"cancel_reason,omitempty"`
	FinalizedAt   *time.Time             `json:"finalized_at,omitempty"`
	CanceledAt    *time.Time             `json:"canceled_at,omitempty"`
	Version       int                    `json:"version"`
}

// ToPurchaseResponse converts a domain Purchase to PurchaseResponse
func ToPurchaseResponse(p *trade.Purchase) PurchaseResponse {
	lines := make([]PurchaseLineResponse, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = PurchaseLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			Discount:    l.Discount,
			Total:       l.Total,
		}
	}
	return PurchaseResponse{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		OperatorID:    p.OperatorID,
		Status:        string(p.Status),
		InvoiceNumber: p.InvoiceNumber,
		Lines:         lines,
		Total:         p.Total,
		CancelReason:  p.CancelReason,
		FinalizedAt:   p.FinalizedAt,
		CanceledAt:    p.CanceledAt,
		Version:       p.Version,
	}
}
