package trade

import (
	"context"

	"github.com/erp/posledger/internal/application/common"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/trade"
	"go.uber.org/zap"
)

// PurchaseService handles supplier purchases and the stock they bring in
type PurchaseService struct {
	scope     common.TransactionScope
	locker    *common.KeyedLocker
	publisher shared.EventPublisher
	validator *common.Validator
	logger    *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	scope common.TransactionScope,
	locker *common.KeyedLocker,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		scope:     scope,
		locker:    locker,
		publisher: publisher,
		validator: common.NewValidator(),
		logger:    logger,
	}
}

// Create registers a pending purchase with its initial lines
func (s *PurchaseService) Create(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	purchase, err := trade.NewPurchase(req.SupplierID, req.OperatorID)
	if err != nil {
		return nil, err
	}
	if req.InvoiceNumber != "" {
		if err := purchase.SetInvoiceNumber(req.InvoiceNumber); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos common.Repositories) error {
		for _, line := range req.Lines {
			if err := addPurchaseLine(ctx, repos, purchase, line); err != nil {
				return err
			}
		}
		return repos.Purchases().Create(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase created",
		zap.Int64("purchase_id", purchase.ID),
		zap.Int64("supplier_id", purchase.SupplierID),
		zap.Int("line_count", len(purchase.Lines)),
	)

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// GetByID retrieves a purchase by ID
func (s *PurchaseService) GetByID(ctx context.Context, purchaseID int64) (*PurchaseResponse, error) {
	var purchase *trade.Purchase
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		purchase, err = repos.Purchases().FindByID(ctx, purchaseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// ListByStatus lists the purchases in a status
func (s *PurchaseService) ListByStatus(ctx context.Context, status string) ([]PurchaseResponse, error) {
	purchaseStatus := trade.PurchaseStatus(status)
	if !purchaseStatus.IsValid() {
		return nil, shared.NewValidationError("INVALID_STATUS", "Unknown purchase status "+status)
	}

	var purchases []*trade.Purchase
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		purchases, err = repos.Purchases().FindByStatus(ctx, purchaseStatus)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]PurchaseResponse, len(purchases))
	for i, p := range purchases {
		responses[i] = ToPurchaseResponse(p)
	}
	return responses, nil
}

// AddLine adds a product to a pending purchase
func (s *PurchaseService) AddLine(ctx context.Context, purchaseID int64, req PurchaseLineRequest) (*PurchaseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, purchaseID, func(repos common.Repositories, purchase *trade.Purchase) error {
		return addPurchaseLine(ctx, repos, purchase, req)
	})
}

// RemoveLine removes a product from a pending purchase
func (s *PurchaseService) RemoveLine(ctx context.Context, purchaseID, productID int64) (*PurchaseResponse, error) {
	return s.mutate(ctx, purchaseID, func(_ common.Repositories, purchase *trade.Purchase) error {
		return purchase.RemoveLine(productID)
	})
}

// SetInvoiceNumber records the supplier invoice of a pending purchase
func (s *PurchaseService) SetInvoiceNumber(ctx context.Context, purchaseID int64, number string) (*PurchaseResponse, error) {
	return s.mutate(ctx, purchaseID, func(_ common.Repositories, purchase *trade.Purchase) error {
		return purchase.SetInvoiceNumber(number)
	})
}

// Finalize receives the goods of a pending purchase into stock
func (s *PurchaseService) Finalize(ctx context.Context, purchaseID int64) (*PurchaseResponse, error) {
	unlockPurchase := s.locker.Lock(common.PurchaseKey(purchaseID))
	defer unlockPurchase()

	pending, err := s.load(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	// lines cannot change while the purchase key is held
	unlockProducts := s.locker.Lock(common.ProductKeys(pending.ProductIDs())...)
	defer unlockProducts()

	var (
		purchase *trade.Purchase
		events   common.EventCollector
	)
	err = s.scope.Execute(ctx, func(repos common.Repositories) error {
		events.Reset()
		var err error
		purchase, err = repos.Purchases().FindByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		ledger, err := loadLedger(ctx, repos, purchase.ProductIDs())
		if err != nil {
			return err
		}
		if err := purchase.Finalize(ledger); err != nil {
			return err
		}
		if err := updateProducts(ctx, repos, ledger); err != nil {
			return err
		}
		if err := repos.Purchases().Update(ctx, purchase); err != nil {
			return err
		}
		events.Collect(purchase)
		collectProducts(&events, ledger)
		return nil
	})
	if err != nil {
		s.logger.Warn("purchase finalize rejected",
			zap.Int64("purchase_id", purchaseID),
			zap.String("error_kind", string(shared.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	events.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("purchase finalized",
		zap.Int64("purchase_id", purchase.ID),
		zap.String("invoice_number", purchase.InvoiceNumber),
		zap.String("total", purchase.Total.StringFixed(2)),
	)

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// Cancel cancels a pending purchase; the reason is optional
func (s *PurchaseService) Cancel(ctx context.Context, purchaseID int64, req CancelRequest) (*PurchaseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	response, err := s.mutate(ctx, purchaseID, func(_ common.Repositories, purchase *trade.Purchase) error {
		return purchase.Cancel(req.Reason)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase canceled",
		zap.Int64("purchase_id", purchaseID),
		zap.String("reason", req.Reason),
	)
	return response, nil
}

func (s *PurchaseService) load(ctx context.Context, purchaseID int64) (*trade.Purchase, error) {
	var purchase *trade.Purchase
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		purchase, err = repos.Purchases().FindByID(ctx, purchaseID)
		return err
	})
	return purchase, err
}

func (s *PurchaseService) mutate(ctx context.Context, purchaseID int64, fn func(common.Repositories, *trade.Purchase) error) (*PurchaseResponse, error) {
	unlock := s.locker.Lock(common.PurchaseKey(purchaseID))
	defer unlock()

	var (
		purchase *trade.Purchase
		events   common.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		events.Reset()
		var err error
		purchase, err = repos.Purchases().FindByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := fn(repos, purchase); err != nil {
			return err
		}
		if err := repos.Purchases().Update(ctx, purchase); err != nil {
			return err
		}
		events.Collect(purchase)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher, s.logger)

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

func addPurchaseLine(ctx context.Context, repos common.Repositories, purchase *trade.Purchase, req PurchaseLineRequest) error {
	product, err := repos.Products().FindByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	return purchase.AddLine(product, req.Quantity, req.UnitCost, req.Discount)
}
