package catalog

import (
	"context"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create assigns an ID to the product and stores it.
	// A taken code returns a duplicate key error.
	Create(ctx context.Context, product *Product) error

	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByIDs finds multiple products by their IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []int64) ([]*Product, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// Update stores the product if its version is unchanged since it was loaded
	Update(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id int64) error

	// FindBelowMinimumStock finds active products whose stock is under their minimum
	FindBelowMinimumStock(ctx context.Context) ([]*Product, error)
}
