package cash

import (
	"context"
)

// SessionRepository defines the interface for cash session persistence.
// Update also inserts the session's new movements.
type SessionRepository interface {
	Create(ctx context.Context, session *CashSession) error
	FindByID(ctx context.Context, id int64) (*CashSession, error)
	Update(ctx context.Context, session *CashSession) error
	Delete(ctx context.Context, id int64) error

	// FindOpenByOperator finds the open session of an operator
	FindOpenByOperator(ctx context.Context, operatorID int64) (*CashSession, error)

	// FindOpen finds every open session
	FindOpen(ctx context.Context) ([]*CashSession, error)
}

// MovementRepository reads cash movements. Movements are append-only and
// are written through their session.
type MovementRepository interface {
	FindByID(ctx context.Context, id int64) (*CashMovement, error)
	FindBySession(ctx context.Context, sessionID int64) ([]CashMovement, error)
}
