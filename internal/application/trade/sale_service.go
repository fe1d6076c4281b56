package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/posledger/internal/application/common"
	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/erp/posledger/internal/domain/trade"
	"go.uber.org/zap"
)

// SaleSettings bounds the installment plans a sale may be split into
type SaleSettings struct {
	MaxInstallments         int
	InstallmentIntervalDays int
}

// DefaultSaleSettings returns monthly plans of up to 12 installments
func DefaultSaleSettings() SaleSettings {
	return SaleSettings{MaxInstallments: 12, InstallmentIntervalDays: 30}
}

// SaleService settles sales against the stock ledger and the cash register
type SaleService struct {
	scope     common.TransactionScope
	locker    *common.KeyedLocker
	publisher shared.EventPublisher
	validator *common.Validator
	settings  SaleSettings
	logger    *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope common.TransactionScope,
	locker *common.KeyedLocker,
	publisher shared.EventPublisher,
	settings SaleSettings,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		scope:     scope,
		locker:    locker,
		publisher: publisher,
		validator: common.NewValidator(),
		settings:  settings,
		logger:    logger,
	}
}

// CreateFromOrder creates the pending sale of a finalized order.
// An order yields at most one sale.
func (s *SaleService) CreateFromOrder(ctx context.Context, orderID int64) (*SaleResponse, error) {
	unlock := s.locker.Lock(common.OrderKey(orderID))
	defer unlock()

	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		sale, err = trade.NewSaleFromOrder(order)
		if err != nil {
			return err
		}
		return repos.Sales().Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("order_id", orderID),
		zap.String("total", sale.Total.StringFixed(2)),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, saleID int64) (*SaleResponse, error) {
	sale, err := s.load(ctx, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByOrder retrieves the sale created from an order
func (s *SaleService) GetByOrder(ctx context.Context, orderID int64) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// SetPayment sets discount, payment method and amount paid of a pending
// sale, and generates its installment plan when one is requested. An
// existing plan is generated again over the new amount due, keeping its
// count and first due date unless the request sets them.
func (s *SaleService) SetPayment(ctx context.Context, saleID int64, req SetPaymentRequest) (*SaleResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Installments > s.settings.MaxInstallments {
		return nil, shared.NewValidationError("INVALID_INSTALLMENT_COUNT",
			fmt.Sprintf("At most %d installments are allowed", s.settings.MaxInstallments))
	}

	unlock := s.locker.Lock(common.SaleKey(saleID))
	defer unlock()

	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		method := valueobject.PaymentMethod(req.PaymentMethod)
		count, firstDue := req.Installments, s.firstDueDate(req)
		if count == 0 && len(sale.Installments) > 0 && method.AllowsInstallments() {
			count = len(sale.Installments)
			if req.FirstDueDate == nil {
				firstDue = sale.Installments[0].DueDate
			}
		}

		if err := sale.SetDiscount(req.Discount); err != nil {
			return err
		}
		if err := sale.SetPaymentMethod(method); err != nil {
			return err
		}
		if err := sale.SetAmountPaid(req.AmountPaid); err != nil {
			return err
		}
		if count > 0 {
			if err := sale.GenerateInstallments(count, firstDue, s.settings.InstallmentIntervalDays); err != nil {
				return err
			}
		}
		return repos.Sales().Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

// Finalize settles a pending sale. Every item is debited from stock and,
// for cash payments, the operator's open register records the sale. Stock,
// register and sale are stored together or not at all.
func (s *SaleService) Finalize(ctx context.Context, saleID int64, req FinalizeSaleRequest) (*SaleResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	pending, err := s.load(ctx, saleID)
	if err != nil {
		return nil, err
	}
	sessionID, err := s.openSessionID(ctx, pending, req.OperatorID)
	if err != nil {
		return nil, err
	}

	keys := append(common.ProductKeys(pending.ProductIDs()), common.SaleKey(saleID))
	if sessionID != 0 {
		keys = append(keys, common.SessionKey(sessionID))
	}
	unlock := s.locker.Lock(keys...)
	defer unlock()

	var (
		sale   *trade.Sale
		events common.EventCollector
	)
	err = s.scope.Execute(ctx, func(repos common.Repositories) error {
		events.Reset()
		var err error
		sale, err = repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		ledger, err := loadLedger(ctx, repos, sale.ProductIDs())
		if err != nil {
			return err
		}

		var (
			register trade.CashRegister
			session  *cash.CashSession
		)
		if sessionID != 0 {
			session, err = repos.Sessions().FindByID(ctx, sessionID)
			if err != nil {
				return err
			}
			register = session
		}

		if err := sale.Finalize(ledger, register); err != nil {
			return err
		}

		if err := updateProducts(ctx, repos, ledger); err != nil {
			return err
		}
		if session != nil && sale.PaymentMethod.IsCash() {
			if err := repos.Sessions().Update(ctx, session); err != nil {
				return err
			}
		}
		if err := repos.Sales().Update(ctx, sale); err != nil {
			return err
		}
		events.Collect(sale)
		collectProducts(&events, ledger)
		return nil
	})
	if err != nil {
		s.logger.Warn("sale finalize rejected",
			zap.Int64("sale_id", saleID),
			zap.String("error_kind", string(shared.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	events.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("sale finalized",
		zap.Int64("sale_id", sale.ID),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.String("amount_due", sale.AmountDue().StringFixed(2)),
		zap.String("change", sale.Change.StringFixed(2)),
		zap.Int64("session_id", sessionID),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// Cancel cancels a finalized sale and returns its items to stock
func (s *SaleService) Cancel(ctx context.Context, saleID int64, req CancelRequest) (*SaleResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	finalized, err := s.load(ctx, saleID)
	if err != nil {
		return nil, err
	}

	keys := append(common.ProductKeys(finalized.ProductIDs()), common.SaleKey(saleID))
	unlock := s.locker.Lock(keys...)
	defer unlock()

	var (
		sale   *trade.Sale
		events common.EventCollector
	)
	err = s.scope.Execute(ctx, func(repos common.Repositories) error {
		events.Reset()
		var err error
		sale, err = repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		ledger, err := loadLedger(ctx, repos, sale.ProductIDs())
		if err != nil {
			return err
		}
		if err := sale.Cancel(req.Reason, ledger); err != nil {
			return err
		}
		if err := updateProducts(ctx, repos, ledger); err != nil {
			return err
		}
		if err := repos.Sales().Update(ctx, sale); err != nil {
			return err
		}
		events.Collect(sale)
		collectProducts(&events, ledger)
		return nil
	})
	if err != nil {
		s.logger.Warn("sale cancel rejected",
			zap.Int64("sale_id", saleID),
			zap.String("error_kind", string(shared.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	events.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("sale canceled",
		zap.Int64("sale_id", sale.ID),
		zap.String("reason", sale.CancelReason),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// PayInstallment pays one installment of a finalized sale
func (s *SaleService) PayInstallment(ctx context.Context, saleID int64, number int) (*SaleResponse, error) {
	unlock := s.locker.Lock(common.SaleKey(saleID))
	defer unlock()

	var (
		sale   *trade.Sale
		events common.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		events.Reset()
		var err error
		sale, err = repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := sale.PayInstallment(number); err != nil {
			return err
		}
		if err := repos.Sales().Update(ctx, sale); err != nil {
			return err
		}
		events.Collect(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("installment paid",
		zap.Int64("sale_id", saleID),
		zap.Int("number", number),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// RefreshOverdue marks every open installment overdue at now.
// Returns how many installments changed.
func (s *SaleService) RefreshOverdue(ctx context.Context, now time.Time) (int, error) {
	var due []trade.Installment
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		due, err = repos.Installments().FindDueBefore(ctx, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	saleIDs := make([]int64, 0, len(due))
	seen := make(map[int64]bool, len(due))
	for _, inst := range due {
		if !seen[inst.SaleID] {
			seen[inst.SaleID] = true
			saleIDs = append(saleIDs, inst.SaleID)
		}
	}

	changed := 0
	for _, saleID := range saleIDs {
		n, err := s.refreshSale(ctx, saleID, now)
		if err != nil {
			return changed, fmt.Errorf("refresh installments of sale %d: %w", saleID, err)
		}
		changed += n
	}

	if changed > 0 {
		s.logger.Info("installments marked overdue",
			zap.Int("count", changed),
			zap.Int("sale_count", len(saleIDs)),
		)
	}
	return changed, nil
}

func (s *SaleService) refreshSale(ctx context.Context, saleID int64, now time.Time) (int, error) {
	unlock := s.locker.Lock(common.SaleKey(saleID))
	defer unlock()

	changed := 0
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		changed = sale.RefreshInstallments(now)
		if changed == 0 {
			return nil
		}
		return repos.Sales().Update(ctx, sale)
	})
	return changed, err
}

func (s *SaleService) load(ctx context.Context, saleID int64) (*trade.Sale, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, saleID)
		return err
	})
	return sale, err
}

// openSessionID finds the open register of the operator for cash sales.
// Returns 0 when the sale does not touch the register or no session is open;
// the sale itself rejects a cash payment without a register.
func (s *SaleService) openSessionID(ctx context.Context, sale *trade.Sale, operatorID int64) (int64, error) {
	if !sale.PaymentMethod.IsCash() || operatorID == 0 {
		return 0, nil
	}

	var sessionID int64
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		session, err := repos.Sessions().FindOpenByOperator(ctx, operatorID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		sessionID = session.ID
		return nil
	})
	return sessionID, err
}

func (s *SaleService) firstDueDate(req SetPaymentRequest) time.Time {
	if req.FirstDueDate != nil {
		return *req.FirstDueDate
	}
	return time.Now().AddDate(0, 0, s.settings.InstallmentIntervalDays)
}

func loadLedger(ctx context.Context, repos common.Repositories, productIDs []int64) (*catalog.StockLedger, error) {
	products, err := repos.Products().FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	return catalog.NewStockLedger(products...), nil
}

func updateProducts(ctx context.Context, repos common.Repositories, ledger *catalog.StockLedger) error {
	for _, p := range ledger.Touched() {
		if err := repos.Products().Update(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func collectProducts(events *common.EventCollector, ledger *catalog.StockLedger) {
	for _, p := range ledger.Touched() {
		events.Collect(p)
	}
}
