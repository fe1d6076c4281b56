package catalog

import (
	"context"

	"github.com/erp/posledger/internal/application/common"
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	scope     common.TransactionScope
	locker    *common.KeyedLocker
	publisher shared.EventPublisher
	validator *common.Validator
	logger    *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	scope common.TransactionScope,
	locker *common.KeyedLocker,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		scope:     scope,
		locker:    locker,
		publisher: publisher,
		validator: common.NewValidator(),
		logger:    logger,
	}
}

// Create creates a new product, optionally with an initial stock entry
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.Price, req.Cost)
	if err != nil {
		return nil, err
	}
	if err := product.SetMinStock(req.MinStock); err != nil {
		return nil, err
	}
	if req.InitialStock > 0 {
		if err := product.Adjust(req.InitialStock, catalog.StockIn); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos common.Repositories) error {
		return repos.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	product.ClearDomainEvents()

	s.logger.Info("product created",
		zap.Int64("product_id", product.ID),
		zap.String("code", product.Code),
		zap.Int("stock_quantity", product.StockQuantity),
	)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID int64) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		product, err = repos.Products().FindByID(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByCode retrieves a product by code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		product, err = repos.Products().FindByCode(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// ListBelowMinimum lists the active products under their minimum stock
func (s *ProductService) ListBelowMinimum(ctx context.Context) ([]ProductResponse, error) {
	var products []*catalog.Product
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		products, err = repos.Products().FindBelowMinimumStock(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// UpdatePrices changes the sale price and the cost of a product
func (s *ProductService) UpdatePrices(ctx context.Context, productID int64, req UpdatePricesRequest) (*ProductResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, productID, func(p *catalog.Product) error {
		return p.SetPrices(req.Price, req.Cost)
	})
}

// SetMinStock sets the quantity under which the product is reported as low stock
func (s *ProductService) SetMinStock(ctx context.Context, productID int64, quantity int) (*ProductResponse, error) {
	return s.mutate(ctx, productID, func(p *catalog.Product) error {
		return p.SetMinStock(quantity)
	})
}

// Activate activates a product
func (s *ProductService) Activate(ctx context.Context, productID int64) (*ProductResponse, error) {
	return s.mutate(ctx, productID, func(p *catalog.Product) error {
		return p.Activate()
	})
}

// Deactivate deactivates a product
func (s *ProductService) Deactivate(ctx context.Context, productID int64) (*ProductResponse, error) {
	return s.mutate(ctx, productID, func(p *catalog.Product) error {
		return p.Deactivate()
	})
}

// AdjustStock applies a manual stock entry or exit
func (s *ProductService) AdjustStock(ctx context.Context, productID int64, req AdjustStockRequest) (*ProductResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	response, err := s.mutate(ctx, productID, func(p *catalog.Product) error {
		return p.Adjust(req.Quantity, catalog.StockDirection(req.Direction))
	})
	if err != nil {
		s.logger.Warn("stock adjustment rejected",
			zap.Int64("product_id", productID),
			zap.Int("quantity", req.Quantity),
			zap.String("direction", req.Direction),
			zap.String("error_kind", string(shared.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.Int64("product_id", productID),
		zap.Int("quantity", req.Quantity),
		zap.String("direction", req.Direction),
		zap.Int("stock_quantity", response.StockQuantity),
	)
	return response, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, productID int64) error {
	unlock := s.locker.Lock(common.ProductKey(productID))
	defer unlock()

	return s.scope.Execute(ctx, func(repos common.Repositories) error {
		return repos.Products().Delete(ctx, productID)
	})
}

// mutate loads the product under its lock, applies fn, stores it and
// publishes the raised events once the transaction has committed
func (s *ProductService) mutate(ctx context.Context, productID int64, fn func(*catalog.Product) error) (*ProductResponse, error) {
	unlock := s.locker.Lock(common.ProductKey(productID))
	defer unlock()

	var (
		product *catalog.Product
		events  common.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		events.Reset()
		var err error
		product, err = repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := fn(product); err != nil {
			return err
		}
		if err := repos.Products().Update(ctx, product); err != nil {
			return err
		}
		events.Collect(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher, s.logger)

	response := ToProductResponse(product)
	return &response, nil
}
