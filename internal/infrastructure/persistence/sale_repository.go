package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/trade"
	"github.com/erp/posledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", orderByID).
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number") })
}

// Create inserts the sale with its items and installments. A second sale
// for the same order is a duplicate key.
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.SaleModelFromDomain(sale)
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return duplicateKey(err, "order_id", strconv.FormatInt(sale.OrderID, 10))
		}
		sale.ID = m.ID
		return r.saveChildren(tx, sale, m)
	})
}

// FindByID finds a sale by ID with its items and installments
func (r *GormSaleRepository) FindByID(ctx context.Context, id int64) (*trade.Sale, error) {
	var m models.SaleModel
	if err := r.preloaded(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "sale", id)
	}
	return m.ToDomain(), nil
}

// FindByOrder finds the sale created from an order
func (r *GormSaleRepository) FindByOrder(ctx context.Context, orderID int64) (*trade.Sale, error) {
	var m models.SaleModel
	if err := r.preloaded(ctx).First(&m, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundByError("sale", fmt.Sprintf("for order %d", orderID))
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Update stores the sale with a version check and replaces its children
func (r *GormSaleRepository) Update(ctx context.Context, sale *trade.Sale) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := versionedUpdate(tx, &models.SaleModel{}, "sale", sale.ID, sale.Version, map[string]any{
			"total":          sale.Total,
			"discount":       sale.Discount,
			"amount_paid":    sale.AmountPaid,
			"change":         sale.Change,
			"payment_method": sale.PaymentMethod,
			"status":         sale.Status,
			"cancel_reason":  sale.CancelReason,
			"finalized_at":   sale.FinalizedAt,
			"canceled_at":    sale.CanceledAt,
			"updated_at":     now,
		}); err != nil {
			return err
		}
		return r.saveChildren(tx, sale, models.SaleModelFromDomain(sale))
	})
	if err != nil {
		return err
	}
	sale.Version++
	sale.UpdatedAt = now
	return nil
}

func (r *GormSaleRepository) saveChildren(tx *gorm.DB, sale *trade.Sale, m *models.SaleModel) error {
	itemIDs := make([]int64, 0, len(m.Items))
	for i := range m.Items {
		m.Items[i].SaleID = sale.ID
		if m.Items[i].ID != 0 {
			itemIDs = append(itemIDs, m.Items[i].ID)
		}
	}
	if err := replaceChildren(tx, "sale_id", sale.ID, itemIDs, m.Items); err != nil {
		return err
	}

	installmentIDs := make([]int64, 0, len(m.Installments))
	for i := range m.Installments {
		m.Installments[i].SaleID = sale.ID
		if m.Installments[i].ID != 0 {
			installmentIDs = append(installmentIDs, m.Installments[i].ID)
		}
	}
	if err := replaceChildren(tx, "sale_id", sale.ID, installmentIDs, m.Installments); err != nil {
		return err
	}

	for i := range m.Items {
		sale.Items[i].ID = m.Items[i].ID
		sale.Items[i].SaleID = sale.ID
	}
	for i := range m.Installments {
		sale.Installments[i].ID = m.Installments[i].ID
		sale.Installments[i].SaleID = sale.ID
	}
	return nil
}

// Delete deletes a sale with its items and installments
func (r *GormSaleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&models.InstallmentModel{}).Error; err != nil {
			return err
		}
		return deleteRoot(tx, &models.SaleModel{}, "sale", id)
	})
}

// GormInstallmentRepository implements trade.InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id int64) (*trade.Installment, error) {
	var m models.InstallmentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "installment", id)
	}
	inst := m.ToDomain()
	return &inst, nil
}

// FindBySale lists the installments of a sale by number
func (r *GormInstallmentRepository) FindBySale(ctx context.Context, saleID int64) ([]trade.Installment, error) {
	return r.find(r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("number"))
}

// FindDueBefore finds open installments due before t, ordered by ID
func (r *GormInstallmentRepository) FindDueBefore(ctx context.Context, t time.Time) ([]trade.Installment, error) {
	return r.find(r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?",
			[]trade.InstallmentStatus{trade.InstallmentStatusPending, trade.InstallmentStatusOverdue}, t).
		Order("id"))
}

func (r *GormInstallmentRepository) find(query *gorm.DB) ([]trade.Installment, error) {
	var rows []models.InstallmentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	installments := make([]trade.Installment, len(rows))
	for i := range rows {
		installments[i] = rows[i].ToDomain()
	}
	return installments, nil
}

var (
	_ trade.SaleRepository        = (*GormSaleRepository)(nil)
	_ trade.InstallmentRepository = (*GormInstallmentRepository)(nil)
)
