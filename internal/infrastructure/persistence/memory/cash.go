package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/shared"
)

type sessionRepo struct {
	s *Store
}

func detachSession(session *cash.CashSession) cash.CashSession {
	c := *session
	c.ClearDomainEvents()
	c.ClosedAt = copyTime(session.ClosedAt)
	c.Movements = make([]cash.CashMovement, len(session.Movements))
	for i, m := range session.Movements {
		m.SaleID = copyID(m.SaleID)
		c.Movements[i] = m
	}
	return c
}

// assignMovementIDs must be called with mu held
func (r *sessionRepo) assignMovementIDs(session *cash.CashSession) {
	for i := range session.Movements {
		session.Movements[i].SessionID = session.ID
		if session.Movements[i].ID == 0 {
			session.Movements[i].ID = r.s.newID()
		}
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *cash.CashSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session.ID = r.s.newID()
	r.assignMovementIDs(session)
	r.s.sessions[session.ID] = detachSession(session)
	return nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id int64) (*cash.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.sessions[id]
	if !ok {
		return nil, shared.NewNotFoundError("cash session", id)
	}
	session := detachSession(&stored)
	return &session, nil
}

// Update stores the session and assigns IDs to movements added since it was loaded
func (r *sessionRepo) Update(ctx context.Context, session *cash.CashSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.sessions[session.ID]
	if !ok {
		return shared.NewNotFoundError("cash session", session.ID)
	}
	if stored.Version != session.Version {
		return shared.ErrConcurrencyConflict
	}

	r.assignMovementIDs(session)
	session.Version++
	session.UpdatedAt = time.Now()
	r.s.sessions[session.ID] = detachSession(session)
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[id]; !ok {
		return shared.NewNotFoundError("cash session", id)
	}
	delete(r.s.sessions, id)
	return nil
}

func (r *sessionRepo) FindOpenByOperator(ctx context.Context, operatorID int64) (*cash.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, stored := range r.s.sessions {
		if stored.OperatorID == operatorID && stored.IsOpen() {
			session := detachSession(&stored)
			return &session, nil
		}
	}
	return nil, shared.NewNotFoundByError("cash session", fmt.Sprintf("open for operator %d", operatorID))
}

func (r *sessionRepo) FindOpen(ctx context.Context) ([]*cash.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sessions []*cash.CashSession
	for _, stored := range r.s.sessions {
		if stored.IsOpen() {
			session := detachSession(&stored)
			sessions = append(sessions, &session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

type movementRepo struct {
	s *Store
}

func (r *movementRepo) FindByID(ctx context.Context, id int64) (*cash.CashMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, session := range r.s.sessions {
		for _, m := range session.Movements {
			if m.ID == id {
				m.SaleID = copyID(m.SaleID)
				return &m, nil
			}
		}
	}
	return nil, shared.NewNotFoundError("cash movement", id)
}

func (r *movementRepo) FindBySession(ctx context.Context, sessionID int64) ([]cash.CashMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	session, ok := r.s.sessions[sessionID]
	if !ok {
		return []cash.CashMovement{}, nil
	}
	return detachSession(&session).Movements, nil
}
