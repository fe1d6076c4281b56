package trade

import (
	"context"

	"github.com/erp/posledger/internal/application/common"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderService handles orders while they are being put together
type OrderService struct {
	scope     common.TransactionScope
	locker    *common.KeyedLocker
	publisher shared.EventPublisher
	validator *common.Validator
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope common.TransactionScope,
	locker *common.KeyedLocker,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		scope:     scope,
		locker:    locker,
		publisher: publisher,
		validator: common.NewValidator(),
		logger:    logger,
	}
}

// Create opens an order with its initial lines
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	order, err := trade.NewOrder(req.CustomerID, req.SellerID)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos common.Repositories) error {
		for _, line := range req.Lines {
			if err := addOrderLine(ctx, repos, order, line); err != nil {
				return err
			}
		}
		return repos.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("seller_id", order.SellerID),
		zap.Int("line_count", len(order.Lines)),
	)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID int64) (*OrderResponse, error) {
	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// ListByStatus lists the orders in a status
func (s *OrderService) ListByStatus(ctx context.Context, status string) ([]OrderResponse, error) {
	orderStatus := trade.OrderStatus(status)
	if !orderStatus.IsValid() {
		return nil, shared.NewValidationError("INVALID_STATUS", "Unknown order status "+status)
	}

	var orders []*trade.Order
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		orders, err = repos.Orders().FindByStatus(ctx, orderStatus)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = ToOrderResponse(o)
	}
	return responses, nil
}

// AddLine adds a product to an open order
func (s *OrderService) AddLine(ctx context.Context, orderID int64, req OrderLineRequest) (*OrderResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(repos common.Repositories, order *trade.Order) error {
		return addOrderLine(ctx, repos, order, req)
	})
}

// RemoveLine removes a product from an open order
func (s *OrderService) RemoveLine(ctx context.Context, orderID, productID int64) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(_ common.Repositories, order *trade.Order) error {
		return order.RemoveLine(productID)
	})
}

// SetLineDiscount sets the discount of one order line
func (s *OrderService) SetLineDiscount(ctx context.Context, orderID, productID int64, req SetLineDiscountRequest) (*OrderResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(_ common.Repositories, order *trade.Order) error {
		return order.SetLineDiscount(productID, req.Discount)
	})
}

// Finalize closes an order so a sale can be created from it
func (s *OrderService) Finalize(ctx context.Context, orderID int64) (*OrderResponse, error) {
	response, err := s.mutate(ctx, orderID, func(_ common.Repositories, order *trade.Order) error {
		return order.Finalize()
	})
	if err != nil {
		s.logger.Warn("order finalize rejected",
			zap.Int64("order_id", orderID),
			zap.String("error_kind", string(shared.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("order finalized",
		zap.Int64("order_id", orderID),
		zap.String("total", response.Total.StringFixed(2)),
	)
	return response, nil
}

// Cancel cancels an open order
func (s *OrderService) Cancel(ctx context.Context, orderID int64, req CancelRequest) (*OrderResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	response, err := s.mutate(ctx, orderID, func(_ common.Repositories, order *trade.Order) error {
		return order.Cancel(req.Reason)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order canceled",
		zap.Int64("order_id", orderID),
		zap.String("reason", req.Reason),
	)
	return response, nil
}

func (s *OrderService) mutate(ctx context.Context, orderID int64, fn func(common.Repositories, *trade.Order) error) (*OrderResponse, error) {
	unlock := s.locker.Lock(common.OrderKey(orderID))
	defer unlock()

	var (
		order  *trade.Order
		events common.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		events.Reset()
		var err error
		order, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := fn(repos, order); err != nil {
			return err
		}
		if err := repos.Orders().Update(ctx, order); err != nil {
			return err
		}
		events.Collect(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher, s.logger)

	response := ToOrderResponse(order)
	return &response, nil
}

func addOrderLine(ctx context.Context, repos common.Repositories, order *trade.Order, req OrderLineRequest) error {
	product, err := repos.Products().FindByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	return order.AddLine(product, req.Quantity, req.UnitPrice)
}
