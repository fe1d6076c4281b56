package persistence

import (
	"context"
	"time"

	"github.com/erp/posledger/internal/domain/trade"
	"github.com/erp/posledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseRepository implements trade.PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Create inserts the purchase with its lines
func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *trade.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.PurchaseModelFromDomain(purchase)
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		purchase.ID = m.ID
		return r.saveLines(tx, purchase, m.Lines)
	})
}

// FindByID finds a purchase by ID with its lines
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id int64) (*trade.Purchase, error) {
	var m models.PurchaseModel
	if err := r.db.WithContext(ctx).Preload("Lines", orderByID).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "purchase", id)
	}
	return m.ToDomain(), nil
}

// Update stores the purchase with a version check and replaces its lines
func (r *GormPurchaseRepository) Update(ctx context.Context, purchase *trade.Purchase) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := versionedUpdate(tx, &models.PurchaseModel{}, "purchase", purchase.ID, purchase.Version, map[string]any{
			"supplier_id":    purchase.SupplierID,
			"operator_id":    purchase.OperatorID,
			"total":          purchase.Total,
			"status":         purchase.Status,
			"invoice_number": purchase.InvoiceNumber,
			"cancel_reason":  purchase.CancelReason,
			"finalized_at":   purchase.FinalizedAt,
			"canceled_at":    purchase.CanceledAt,
			"updated_at":     now,
		}); err != nil {
			return err
		}
		return r.saveLines(tx, purchase, models.PurchaseModelFromDomain(purchase).Lines)
	})
	if err != nil {
		return err
	}
	purchase.Version++
	purchase.UpdatedAt = now
	return nil
}

func (r *GormPurchaseRepository) saveLines(tx *gorm.DB, purchase *trade.Purchase, lines []models.PurchaseLineModel) error {
	keep := make([]int64, 0, len(lines))
	for i := range lines {
		lines[i].PurchaseID = purchase.ID
		if lines[i].ID != 0 {
			keep = append(keep, lines[i].ID)
		}
	}
	if err := replaceChildren(tx, "purchase_id", purchase.ID, keep, lines); err != nil {
		return err
	}
	for i := range lines {
		purchase.Lines[i].ID = lines[i].ID
		purchase.Lines[i].PurchaseID = purchase.ID
	}
	return nil
}

// Delete deletes a purchase and its lines
func (r *GormPurchaseRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", id).Delete(&models.PurchaseLineModel{}).Error; err != nil {
			return err
		}
		return deleteRoot(tx, &models.PurchaseModel{}, "purchase", id)
	})
}

// FindByStatus lists purchases in a status, ordered by ID
func (r *GormPurchaseRepository) FindByStatus(ctx context.Context, status trade.PurchaseStatus) ([]*trade.Purchase, error) {
	var rows []models.PurchaseModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderByID).
		Where("status = ?", status).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	purchases := make([]*trade.Purchase, len(rows))
	for i := range rows {
		purchases[i] = rows[i].ToDomain()
	}
	return purchases, nil
}

// GormPurchaseLineRepository implements trade.PurchaseLineRepository using GORM
type GormPurchaseLineRepository struct {
	db *gorm.DB
}

// NewGormPurchaseLineRepository creates a new GormPurchaseLineRepository
func NewGormPurchaseLineRepository(db *gorm.DB) *GormPurchaseLineRepository {
	return &GormPurchaseLineRepository{db: db}
}

// FindByID finds a purchase line by its ID
func (r *GormPurchaseLineRepository) FindByID(ctx context.Context, id int64) (*trade.PurchaseLine, error) {
	var m models.PurchaseLineModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "purchase line", id)
	}
	line := m.ToDomain()
	return &line, nil
}

// FindByPurchase lists the lines of a purchase
func (r *GormPurchaseLineRepository) FindByPurchase(ctx context.Context, purchaseID int64) ([]trade.PurchaseLine, error) {
	var rows []models.PurchaseLineModel
	if err := r.db.WithContext(ctx).Where("purchase_id = ?", purchaseID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]trade.PurchaseLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

var (
	_ trade.PurchaseRepository     = (*GormPurchaseRepository)(nil)
	_ trade.PurchaseLineRepository = (*GormPurchaseLineRepository)(nil)
)
