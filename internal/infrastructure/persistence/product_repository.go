package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts the product and assigns its ID
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	m := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return duplicateKey(err, "code", product.Code)
	}
	product.ID = m.ID
	return nil
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return m.ToDomain(), nil
}

// FindByIDs finds the products with the given IDs, ordered by ID
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []int64) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindByCode finds a product by its unique code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).First(&m, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundByError("product", fmt.Sprintf("with code %q", code))
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Update stores the product with a version check
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	now := time.Now()
	err := versionedUpdate(r.db.WithContext(ctx), &models.ProductModel{}, "product", product.ID, product.Version, map[string]any{
		"code":               product.Code,
		"name":               product.Name,
		"price":              product.Price,
		"cost":               product.Cost,
		"stock_quantity":     product.StockQuantity,
		"min_stock_quantity": product.MinStockQuantity,
		"active":             product.Active,
		"updated_at":         now,
	})
	if err != nil {
		return duplicateKey(err, "code", product.Code)
	}
	product.Version++
	product.UpdatedAt = now
	return nil
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return deleteRoot(r.db.WithContext(ctx), &models.ProductModel{}, "product", id)
}

// FindBelowMinimumStock finds active products whose stock is under their minimum
func (r *GormProductRepository) FindBelowMinimumStock(ctx context.Context) ([]*catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("active = ? AND min_stock_quantity > 0 AND stock_quantity < min_stock_quantity", true).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

func toProducts(rows []models.ProductModel) []*catalog.Product {
	products := make([]*catalog.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
