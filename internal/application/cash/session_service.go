package cash

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/posledger/internal/application/common"
	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// SessionService handles cash register shifts and their movements
type SessionService struct {
	scope     common.TransactionScope
	locker    *common.KeyedLocker
	publisher shared.EventPublisher
	validator *common.Validator
	logger    *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	scope common.TransactionScope,
	locker *common.KeyedLocker,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		scope:     scope,
		locker:    locker,
		publisher: publisher,
		validator: common.NewValidator(),
		logger:    logger,
	}
}

// Open starts a shift for an operator. An operator holds at most one open session.
func (s *SessionService) Open(ctx context.Context, req OpenSessionRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(common.OperatorKey(req.OperatorID))
	defer unlock()

	var session *cash.CashSession
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		existing, err := repos.Sessions().FindOpenByOperator(ctx, req.OperatorID)
		if err == nil {
			return shared.NewStateError("SESSION_ALREADY_OPEN",
				fmt.Sprintf("Operator %d already has open cash session #%d", req.OperatorID, existing.ID))
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		session, err = cash.Open(req.OperatorID, req.OpeningBalance)
		if err != nil {
			return err
		}
		return repos.Sessions().Create(ctx, session)
	})
	if err != nil {
		s.logger.Warn("cash session open rejected",
			zap.Int64("operator_id", req.OperatorID),
			zap.String("error_kind", string(shared.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	events := common.EventCollector{}
	events.Add(cash.NewCashSessionOpenedEvent(session))
	events.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("cash session opened",
		zap.Int64("session_id", session.ID),
		zap.Int64("operator_id", session.OperatorID),
		zap.String("opening_balance", session.OpeningBalance.StringFixed(2)),
	)

	response := ToSessionResponse(session)
	return &response, nil
}

// AddMovement records a manual entry or exit on an open session
func (s *SessionService) AddMovement(ctx context.Context, sessionID int64, req AddMovementRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	response, err := s.mutate(ctx, sessionID, func(session *cash.CashSession) error {
		return session.AddMovement(cash.MovementKind(req.Kind), req.Amount, req.Description, valueobject.PaymentMethod(req.PaymentMethod))
	})
	if err != nil {
		s.logger.Warn("cash movement rejected",
			zap.Int64("session_id", sessionID),
			zap.String("kind", req.Kind),
			zap.String("amount", req.Amount.String()),
			zap.String("error_kind", string(shared.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("cash movement recorded",
		zap.Int64("session_id", sessionID),
		zap.String("kind", req.Kind),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("closing_balance", response.ClosingBalance.StringFixed(2)),
	)
	return response, nil
}

// Close ends a shift
func (s *SessionService) Close(ctx context.Context, sessionID int64, req CloseSessionRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	response, err := s.mutate(ctx, sessionID, func(session *cash.CashSession) error {
		return session.Close(req.Note)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cash session closed",
		zap.Int64("session_id", sessionID),
		zap.String("closing_balance", response.ClosingBalance.StringFixed(2)),
		zap.Int("movement_count", len(response.Movements)),
	)
	return response, nil
}

// Get retrieves a session with its movements
func (s *SessionService) Get(ctx context.Context, sessionID int64) (*SessionResponse, error) {
	session, err := s.find(ctx, func(repos common.Repositories) (*cash.CashSession, error) {
		return repos.Sessions().FindByID(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// Current retrieves the open session of an operator
func (s *SessionService) Current(ctx context.Context, operatorID int64) (*SessionResponse, error) {
	session, err := s.find(ctx, func(repos common.Repositories) (*cash.CashSession, error) {
		return repos.Sessions().FindOpenByOperator(ctx, operatorID)
	})
	if err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// Movements lists the movements of a session in the order they were recorded
func (s *SessionService) Movements(ctx context.Context, sessionID int64) ([]MovementResponse, error) {
	var movements []cash.CashMovement
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		if _, err := repos.Sessions().FindByID(ctx, sessionID); err != nil {
			return err
		}
		var err error
		movements, err = repos.Movements().FindBySession(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// Summary totals a session per direction and per payment method
func (s *SessionService) Summary(ctx context.Context, sessionID int64) (*SessionSummary, error) {
	session, err := s.find(ctx, func(repos common.Repositories) (*cash.CashSession, error) {
		return repos.Sessions().FindByID(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}

	byMethod := make(map[string]decimal.Decimal)
	for method, total := range session.TotalsByPaymentMethod() {
		byMethod[string(method)] = total
	}

	balance := session.Balance()
	return &SessionSummary{
		SessionID:       session.ID,
		Status:          string(session.Status),
		OpeningBalance:  session.OpeningBalance,
		TotalEntries:    session.TotalEntries(),
		TotalExits:      session.TotalExits(),
		Balance:         balance,
		BalanceDisplay:  valueobject.NewMoneyBRL(balance).Format(language.BrazilianPortuguese),
		ByPaymentMethod: byMethod,
		MovementCount:   len(session.Movements),
	}, nil
}

func (s *SessionService) find(ctx context.Context, fn func(repos common.Repositories) (*cash.CashSession, error)) (*cash.CashSession, error) {
	var session *cash.CashSession
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		var err error
		session, err = fn(repos)
		return err
	})
	return session, err
}

// mutate loads the session under its lock, applies fn, stores it and
// publishes the raised events once the transaction has committed
func (s *SessionService) mutate(ctx context.Context, sessionID int64, fn func(*cash.CashSession) error) (*SessionResponse, error) {
	unlock := s.locker.Lock(common.SessionKey(sessionID))
	defer unlock()

	var (
		session *cash.CashSession
		events  common.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos common.Repositories) error {
		events.Reset()
		var err error
		session, err = repos.Sessions().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		if err := repos.Sessions().Update(ctx, session); err != nil {
			return err
		}
		events.Collect(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.Publish(ctx, s.publisher, s.logger)

	response := ToSessionResponse(session)
	return &response, nil
}
