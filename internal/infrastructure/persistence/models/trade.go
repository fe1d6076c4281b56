package models

import (
	"time"

	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/erp/posledger/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate.
type OrderModel struct {
	AggregateModel
	CustomerID   int64             `gorm:"not null;default:0;index"`
	SellerID     int64             `gorm:"not null;index"`
	Status       trade.OrderStatus `gorm:"type:varchar(20);not null;index"`
	Total        decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	CancelReason string            `gorm:"type:varchar(255)"`
	FinalizedAt  *time.Time
	CanceledAt   *time.Time
	Lines        []OrderLineModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is the persistence model for an order line.
type OrderLineModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"not null;index"`
	ProductID   int64           `gorm:"not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain OrderLine.
func (l *OrderLineModel) ToDomain() trade.OrderLine {
	return trade.OrderLine{
		ID:          l.ID,
		OrderID:     l.OrderID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Discount:    l.Discount,
		Total:       l.Total,
	}
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *trade.Order {
	lines := make([]trade.OrderLine, len(m.Lines))
	for i := range m.Lines {
		lines[i] = m.Lines[i].ToDomain()
	}
	return &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		SellerID:          m.SellerID,
		Status:            m.Status,
		Lines:             lines,
		Total:             m.Total,
		CancelReason:      m.CancelReason,
		FinalizedAt:       m.FinalizedAt,
		CanceledAt:        m.CanceledAt,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order,
// lines included.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		CustomerID:   o.CustomerID,
		SellerID:     o.SellerID,
		Status:       o.Status,
		Total:        o.Total,
		CancelReason: o.CancelReason,
		FinalizedAt:  o.FinalizedAt,
		CanceledAt:   o.CanceledAt,
		Lines:        make([]OrderLineModel, len(o.Lines)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, l := range o.Lines {
		m.Lines[i] = OrderLineModel{
			ID:          l.ID,
			OrderID:     o.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Total:       l.Total,
		}
	}
	return m
}

// SaleModel is the persistence model for the Sale aggregate.
// A unique order_id keeps one sale per order.
type SaleModel struct {
	AggregateModel
	OrderID       int64                     `gorm:"not null;uniqueIndex:idx_sale_order"`
	CustomerID    int64                     `gorm:"not null;default:0;index"`
	SellerID      int64                     `gorm:"not null;index"`
	Total         decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Discount      decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid    decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Change        decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod valueobject.PaymentMethod `gorm:"type:varchar(20)"`
	Status        trade.SaleStatus          `gorm:"type:varchar(20);not null;index"`
	CancelReason  string                    `gorm:"type:varchar(255)"`
	FinalizedAt   *time.Time
	CanceledAt    *time.Time
	Items         []SaleItemModel    `gorm:"foreignKey:SaleID"`
	Installments  []InstallmentModel `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is the persistence model for a sale item.
type SaleItemModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	SaleID      int64           `gorm:"not null;index"`
	ProductID   int64           `gorm:"not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// InstallmentModel is the persistence model for an installment.
type InstallmentModel struct {
	ID        int64                   `gorm:"primaryKey;autoIncrement"`
	SaleID    int64                   `gorm:"not null;index"`
	Number    int                     `gorm:"not null"`
	Count     int                     `gorm:"not null"`
	Amount    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	DueDate   time.Time               `gorm:"not null;index:idx_installment_status_due,priority:2"`
	PaidAt    *time.Time
	Status    trade.InstallmentStatus `gorm:"type:varchar(20);not null;index:idx_installment_status_due,priority:1"`
	CreatedAt time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m *InstallmentModel) ToDomain() trade.Installment {
	return trade.Installment{
		ID:        m.ID,
		SaleID:    m.SaleID,
		Number:    m.Number,
		Count:     m.Count,
		Amount:    m.Amount,
		DueDate:   m.DueDate,
		PaidAt:    m.PaidAt,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

// ToDomain converts the persistence model to a domain SaleItem.
func (it *SaleItemModel) ToDomain() trade.SaleItem {
	return trade.SaleItem{
		ID:          it.ID,
		SaleID:      it.SaleID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Discount:    it.Discount,
		Total:       it.Total,
	}
}

// ToDomain converts the persistence model to a domain Sale.
func (m *SaleModel) ToDomain() *trade.Sale {
	items := make([]trade.SaleItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	installments := make([]trade.Installment, len(m.Installments))
	for i := range m.Installments {
		installments[i] = m.Installments[i].ToDomain()
	}
	return &trade.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		CustomerID:        m.CustomerID,
		SellerID:          m.SellerID,
		Items:             items,
		Total:             m.Total,
		Discount:          m.Discount,
		AmountPaid:        m.AmountPaid,
		Change:            m.Change,
		PaymentMethod:     m.PaymentMethod,
		Status:            m.Status,
		CancelReason:      m.CancelReason,
		FinalizedAt:       m.FinalizedAt,
		CanceledAt:        m.CanceledAt,
		Installments:      installments,
	}
}

// SaleModelFromDomain creates a persistence model from a domain Sale,
// items and installments included.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{
		OrderID:       s.OrderID,
		CustomerID:    s.CustomerID,
		SellerID:      s.SellerID,
		Total:         s.Total,
		Discount:      s.Discount,
		AmountPaid:    s.AmountPaid,
		Change:        s.Change,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		CancelReason:  s.CancelReason,
		FinalizedAt:   s.FinalizedAt,
		CanceledAt:    s.CanceledAt,
		Items:         make([]SaleItemModel, len(s.Items)),
		Installments:  make([]InstallmentModel, len(s.Installments)),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	for i, it := range s.Items {
		m.Items[i] = SaleItemModel{
			ID:          it.ID,
			SaleID:      s.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Total:       it.Total,
		}
	}
	for i, inst := range s.Installments {
		m.Installments[i] = InstallmentModel{
			ID:        inst.ID,
			SaleID:    s.ID,
			Number:    inst.Number,
			Count:     inst.Count,
			Amount:    inst.Amount,
			DueDate:   inst.DueDate,
			PaidAt:    inst.PaidAt,
			Status:    inst.Status,
			CreatedAt: inst.CreatedAt,
		}
	}
	return m
}

// PurchaseModel is the persistence model for the Purchase aggregate.
type PurchaseModel struct {
	AggregateModel
	SupplierID    int64                `gorm:"not null;index"`
	OperatorID    int64                `gorm:"not null"`
	Total         decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status        trade.PurchaseStatus `gorm:"type:varchar(20);not null;index"`
	InvoiceNumber string               `gorm:"type:varchar(60)"`
	CancelReason  string               `gorm:"type:varchar(255)"`
	FinalizedAt   *time.Time
	CanceledAt    *time.Time
	Lines         []PurchaseLineModel `gorm:"foreignKey:PurchaseID"`
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// PurchaseLineModel is the persistence model for a purchase line.
type PurchaseLineModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	PurchaseID  int64           `gorm:"not null;index"`
	ProductID   int64           `gorm:"not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseLineModel) TableName() string {
	return "purchase_lines"
}

// ToDomain converts the persistence model to a domain PurchaseLine.
func (l *PurchaseLineModel) ToDomain() trade.PurchaseLine {
	return trade.PurchaseLine{
		ID:          l.ID,
		PurchaseID:  l.PurchaseID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Quantity:    l.Quantity,
		UnitCost:    l.UnitCost,
		Discount:    l.Discount,
		Total:       l.Total,
	}
}

// ToDomain converts the persistence model to a domain Purchase.
func (m *PurchaseModel) ToDomain() *trade.Purchase {
	lines := make([]trade.PurchaseLine, len(m.Lines))
	for i := range m.Lines {
		lines[i] = m.Lines[i].ToDomain()
	}
	return &trade.Purchase{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SupplierID:        m.SupplierID,
		OperatorID:        m.OperatorID,
		Lines:             lines,
		Total:             m.Total,
		Status:            m.Status,
		InvoiceNumber:     m.InvoiceNumber,
		CancelReason:      m.CancelReason,
		FinalizedAt:       m.FinalizedAt,
		CanceledAt:        m.CanceledAt,
	}
}

// PurchaseModelFromDomain creates a persistence model from a domain
// Purchase, lines included.
func PurchaseModelFromDomain(p *trade.Purchase) *PurchaseModel {
	m := &PurchaseModel{
		SupplierID:    p.SupplierID,
		OperatorID:    p.OperatorID,
		Total:         p.Total,
		Status:        p.Status,
		InvoiceNumber: p.InvoiceNumber,
		CancelReason:  p.CancelReason,
		FinalizedAt:   p.FinalizedAt,
		CanceledAt:    p.CanceledAt,
		Lines:         make([]PurchaseLineModel, len(p.Lines)),
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	for i, l := range p.Lines {
		m.Lines[i] = PurchaseLineModel{
			ID:          l.ID,
			PurchaseID:  p.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			Discount:    l.Discount,
			Total:       l.Total,
		}
	}
	return m
}
