package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/trade"
)

// ==================== Orders ====================

type orderRepo struct {
	s *Store
}

func detachOrder(o *trade.Order) trade.Order {
	c := *o
	c.ClearDomainEvents()
	c.FinalizedAt = copyTime(o.FinalizedAt)
	c.CanceledAt = copyTime(o.CanceledAt)
	c.Lines = append([]trade.OrderLine(nil), o.Lines...)
	return c
}

func (r *orderRepo) assignLineIDs(o *trade.Order) {
	for i := range o.Lines {
		o.Lines[i].OrderID = o.ID
		if o.Lines[i].ID == 0 {
			o.Lines[i].ID = r.s.newID()
		}
	}
}

func (r *orderRepo) Create(ctx context.Context, o *trade.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o.ID = r.s.newID()
	r.assignLineIDs(o)
	r.s.orders[o.ID] = detachOrder(o)
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id int64) (*trade.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.orders[id]
	if !ok {
		return nil, shared.NewNotFoundError("order", id)
	}
	o := detachOrder(&stored)
	return &o, nil
}

func (r *orderRepo) Update(ctx context.Context, o *trade.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.orders[o.ID]
	if !ok {
		return shared.NewNotFoundError("order", o.ID)
	}
	if stored.Version != o.Version {
		return shared.ErrConcurrencyConflict
	}

	r.assignLineIDs(o)
	o.Version++
	o.UpdatedAt = time.Now()
	r.s.orders[o.ID] = detachOrder(o)
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return shared.NewNotFoundError("order", id)
	}
	delete(r.s.orders, id)
	return nil
}

func (r *orderRepo) FindByStatus(ctx context.Context, status trade.OrderStatus) ([]*trade.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var orders []*trade.Order
	for _, stored := range r.s.orders {
		if stored.Status == status {
			o := detachOrder(&stored)
			orders = append(orders, &o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

type orderLineRepo struct {
	s *Store
}

func (r *orderLineRepo) FindByID(ctx context.Context, id int64) (*trade.OrderLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.orders {
		for _, l := range o.Lines {
			if l.ID == id {
				return &l, nil
			}
		}
	}
	return nil, shared.NewNotFoundError("order line", id)
}

func (r *orderLineRepo) FindByOrder(ctx context.Context, orderID int64) ([]trade.OrderLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[orderID]
	if !ok {
		return []trade.OrderLine{}, nil
	}
	return append([]trade.OrderLine{}, o.Lines...), nil
}

// ==================== Sales ====================

type saleRepo struct {
	s *Store
}

func detachInstallment(inst trade.Installment) trade.Installment {
	inst.PaidAt = copyTime(inst.PaidAt)
	return inst
}

func detachSale(sale *trade.Sale) trade.Sale {
	c := *sale
	c.ClearDomainEvents()
	c.FinalizedAt = copyTime(sale.FinalizedAt)
	c.CanceledAt = copyTime(sale.CanceledAt)
	c.Items = append([]trade.SaleItem(nil), sale.Items...)
	c.Installments = make([]trade.Installment, len(sale.Installments))
	for i, inst := range sale.Installments {
		c.Installments[i] = detachInstallment(inst)
	}
	return c
}

func (r *saleRepo) assignChildIDs(sale *trade.Sale) {
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		if sale.Items[i].ID == 0 {
			sale.Items[i].ID = r.s.newID()
		}
	}
	for i := range sale.Installments {
		sale.Installments[i].SaleID = sale.ID
		if sale.Installments[i].ID == 0 {
			sale.Installments[i].ID = r.s.newID()
		}
	}
}

func (r *saleRepo) Create(ctx context.Context, sale *trade.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.sales {
		if existing.OrderID == sale.OrderID {
			return shared.NewDuplicateKeyError("order_id", strconv.FormatInt(existing.OrderID, 10))
		}
	}
	sale.ID = r.s.newID()
	r.assignChildIDs(sale)
	r.s.sales[sale.ID] = detachSale(sale)
	return nil
}

func (r *saleRepo) FindByID(ctx context.Context, id int64) (*trade.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.sales[id]
	if !ok {
		return nil, shared.NewNotFoundError("sale", id)
	}
	sale := detachSale(&stored)
	return &sale, nil
}

func (r *saleRepo) FindByOrder(ctx context.Context, orderID int64) (*trade.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, stored := range r.s.sales {
		if stored.OrderID == orderID {
			sale := detachSale(&stored)
			return &sale, nil
		}
	}
	return nil, shared.NewNotFoundByError("sale", fmt.Sprintf("for order %d", orderID))
}

func (r *saleRepo) Update(ctx context.Context, sale *trade.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.sales[sale.ID]
	if !ok {
		return shared.NewNotFoundError("sale", sale.ID)
	}
	if stored.Version != sale.Version {
		return shared.ErrConcurrencyConflict
	}

	r.assignChildIDs(sale)
	sale.Version++
	sale.UpdatedAt = time.Now()
	r.s.sales[sale.ID] = detachSale(sale)
	return nil
}

func (r *saleRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sales[id]; !ok {
		return shared.NewNotFoundError("sale", id)
	}
	delete(r.s.sales, id)
	return nil
}

type installmentRepo struct {
	s *Store
}

func (r *installmentRepo) FindByID(ctx context.Context, id int64) (*trade.Installment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sale := range r.s.sales {
		for _, inst := range sale.Installments {
			if inst.ID == id {
				inst = detachInstallment(inst)
				return &inst, nil
			}
		}
	}
	return nil, shared.NewNotFoundError("installment", id)
}

func (r *installmentRepo) FindBySale(ctx context.Context, saleID int64) ([]trade.Installment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sale, ok := r.s.sales[saleID]
	if !ok {
		return []trade.Installment{}, nil
	}
	return detachSale(&sale).Installments, nil
}

func (r *installmentRepo) FindDueBefore(ctx context.Context, t time.Time) ([]trade.Installment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var due []trade.Installment
	for _, sale := range r.s.sales {
		for _, inst := range sale.Installments {
			if inst.IsOpen() && inst.DueDate.Before(t) {
				due = append(due, detachInstallment(inst))
			}
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

// ==================== Purchases ====================

type purchaseRepo struct {
	s *Store
}

func detachPurchase(p *trade.Purchase) trade.Purchase {
	c := *p
	c.ClearDomainEvents()
	c.FinalizedAt = copyTime(p.FinalizedAt)
	c.CanceledAt = copyTime(p.CanceledAt)
	c.Lines = append([]trade.PurchaseLine(nil), p.Lines...)
	return c
}

func (r *purchaseRepo) assignLineIDs(p *trade.Purchase) {
	for i := range p.Lines {
		p.Lines[i].PurchaseID = p.ID
		if p.Lines[i].ID == 0 {
			p.Lines[i].ID = r.s.newID()
		}
	}
}

func (r *purchaseRepo) Create(ctx context.Context, p *trade.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.ID = r.s.newID()
	r.assignLineIDs(p)
	r.s.purchases[p.ID] = detachPurchase(p)
	return nil
}

func (r *purchaseRepo) FindByID(ctx context.Context, id int64) (*trade.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.purchases[id]
	if !ok {
		return nil, shared.NewNotFoundError("purchase", id)
	}
	p := detachPurchase(&stored)
	return &p, nil
}

func (r *purchaseRepo) Update(ctx context.Context, p *trade.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.purchases[p.ID]
	if !ok {
		return shared.NewNotFoundError("purchase", p.ID)
	}
	if stored.Version != p.Version {
		return shared.ErrConcurrencyConflict
	}

	r.assignLineIDs(p)
	p.Version++
	p.UpdatedAt = time.Now()
	r.s.purchases[p.ID] = detachPurchase(p)
	return nil
}

func (r *purchaseRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.purchases[id]; !ok {
		return shared.NewNotFoundError("purchase", id)
	}
	delete(r.s.purchases, id)
	return nil
}

func (r *purchaseRepo) FindByStatus(ctx context.Context, status trade.PurchaseStatus) ([]*trade.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var purchases []*trade.Purchase
	for _, stored := range r.s.purchases {
		if stored.Status == status {
			p := detachPurchase(&stored)
			purchases = append(purchases, &p)
		}
	}
	sort.Slice(purchases, func(i, j int) bool { return purchases[i].ID < purchases[j].ID })
	return purchases, nil
}

type purchaseLineRepo struct {
	s *Store
}

func (r *purchaseLineRepo) FindByID(ctx context.Context, id int64) (*trade.PurchaseLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.purchases {
		for _, l := range p.Lines {
			if l.ID == id {
				return &l, nil
			}
		}
	}
	return nil, shared.NewNotFoundError("purchase line", id)
}

func (r *purchaseLineRepo) FindByPurchase(ctx context.Context, purchaseID int64) ([]trade.PurchaseLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.purchases[purchaseID]
	if !ok {
		return []trade.PurchaseLine{}, nil
	}
	return append([]trade.PurchaseLine{}, p.Lines...), nil
}
