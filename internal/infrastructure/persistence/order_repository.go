package persistence

import (
	"context"
	"time"

	"github.com/erp/posledger/internal/domain/trade"
	"github.com/erp/posledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order with its lines
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.OrderModelFromDomain(order)
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		order.ID = m.ID
		return r.saveLines(tx, order, m.Lines)
	})
}

// FindByID finds an order by ID with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*trade.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines", orderByID).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return m.ToDomain(), nil
}

// Update stores the order with a version check and replaces its lines
func (r *GormOrderRepository) Update(ctx context.Context, order *trade.Order) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.OrderModelFromDomain(order)
		if err := versionedUpdate(tx, &models.OrderModel{}, "order", order.ID, order.Version, map[string]any{
			"customer_id":   order.CustomerID,
			"seller_id":     order.SellerID,
			"status":        order.Status,
			"total":         order.Total,
			"cancel_reason": order.CancelReason,
			"finalized_at":  order.FinalizedAt,
			"canceled_at":   order.CanceledAt,
			"updated_at":    now,
		}); err != nil {
			return err
		}
		return r.saveLines(tx, order, m.Lines)
	})
	if err != nil {
		return err
	}
	order.Version++
	order.UpdatedAt = now
	return nil
}

func (r *GormOrderRepository) saveLines(tx *gorm.DB, order *trade.Order, lines []models.OrderLineModel) error {
	keep := make([]int64, 0, len(lines))
	for i := range lines {
		lines[i].OrderID = order.ID
		if lines[i].ID != 0 {
			keep = append(keep, lines[i].ID)
		}
	}
	if err := replaceChildren(tx, "order_id", order.ID, keep, lines); err != nil {
		return err
	}
	for i := range lines {
		order.Lines[i].ID = lines[i].ID
		order.Lines[i].OrderID = order.ID
	}
	return nil
}

// Delete deletes an order and its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderLineModel{}).Error; err != nil {
			return err
		}
		return deleteRoot(tx, &models.OrderModel{}, "order", id)
	})
}

// FindByStatus lists orders in a status, ordered by ID
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status trade.OrderStatus) ([]*trade.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderByID).
		Where("status = ?", status).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]*trade.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, nil
}

// GormOrderLineRepository implements trade.OrderLineRepository using GORM
type GormOrderLineRepository struct {
	db *gorm.DB
}

// NewGormOrderLineRepository creates a new GormOrderLineRepository
func NewGormOrderLineRepository(db *gorm.DB) *GormOrderLineRepository {
	return &GormOrderLineRepository{db: db}
}

// FindByID finds an order line by its ID
func (r *GormOrderLineRepository) FindByID(ctx context.Context, id int64) (*trade.OrderLine, error) {
	var m models.OrderLineModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order line", id)
	}
	line := m.ToDomain()
	return &line, nil
}

// FindByOrder lists the lines of an order
func (r *GormOrderLineRepository) FindByOrder(ctx context.Context, orderID int64) ([]trade.OrderLine, error) {
	var rows []models.OrderLineModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]trade.OrderLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

var (
	_ trade.OrderRepository     = (*GormOrderRepository)(nil)
	_ trade.OrderLineRepository = (*GormOrderLineRepository)(nil)
)
