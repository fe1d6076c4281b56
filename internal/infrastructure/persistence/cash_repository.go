package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/posledger/internal/domain/cash"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionRepository implements cash.SessionRepository using GORM.
// Movements are append-only: Update inserts the ones without an ID.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Create inserts the session and its movements
func (r *GormSessionRepository) Create(ctx context.Context, session *cash.CashSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.CashSessionModelFromDomain(session)
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		session.ID = m.ID
		return insertMovements(tx, session)
	})
}

// FindByID finds a session by ID with its movements
func (r *GormSessionRepository) FindByID(ctx context.Context, id int64) (*cash.CashSession, error) {
	var m models.CashSessionModel
	if err := r.db.WithContext(ctx).Preload("Movements", orderByID).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "cash session", id)
	}
	return m.ToDomain(), nil
}

// Update stores the session with a version check and inserts new movements
func (r *GormSessionRepository) Update(ctx context.Context, session *cash.CashSession) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := versionedUpdate(tx, &models.CashSessionModel{}, "cash session", session.ID, session.Version, map[string]any{
			"closed_at":       session.ClosedAt,
			"closing_balance": session.ClosingBalance,
			"status":          session.Status,
			"closing_note":    session.ClosingNote,
			"updated_at":      now,
		}); err != nil {
			return err
		}
		return insertMovements(tx, session)
	})
	if err != nil {
		return err
	}
	session.Version++
	session.UpdatedAt = now
	return nil
}

// Delete deletes a session and its movements
func (r *GormSessionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.CashMovementModel{}).Error; err != nil {
			return err
		}
		return deleteRoot(tx, &models.CashSessionModel{}, "cash session", id)
	})
}

// FindOpenByOperator finds the open session of an operator
func (r *GormSessionRepository) FindOpenByOperator(ctx context.Context, operatorID int64) (*cash.CashSession, error) {
	var m models.CashSessionModel
	err := r.db.WithContext(ctx).
		Preload("Movements", orderByID).
		Where("operator_id = ? AND status = ?", operatorID, cash.SessionStatusOpen).
		Order("id").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundByError("cash session", fmt.Sprintf("open for operator %d", operatorID))
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindOpen finds every open session, ordered by ID
func (r *GormSessionRepository) FindOpen(ctx context.Context) ([]*cash.CashSession, error) {
	var rows []models.CashSessionModel
	if err := r.db.WithContext(ctx).
		Preload("Movements", orderByID).
		Where("status = ?", cash.SessionStatusOpen).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sessions := make([]*cash.CashSession, len(rows))
	for i := range rows {
		sessions[i] = rows[i].ToDomain()
	}
	return sessions, nil
}

func insertMovements(tx *gorm.DB, session *cash.CashSession) error {
	for i := range session.Movements {
		mv := &session.Movements[i]
		if mv.ID != 0 {
			continue
		}
		mv.SessionID = session.ID
		m := models.CashMovementModelFromDomain(*mv)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		mv.ID = m.ID
	}
	return nil
}

// GormMovementRepository implements cash.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id int64) (*cash.CashMovement, error) {
	var m models.CashMovementModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "cash movement", id)
	}
	mv := m.ToDomain()
	return &mv, nil
}

// FindBySession lists the movements of a session in insertion order
func (r *GormMovementRepository) FindBySession(ctx context.Context, sessionID int64) ([]cash.CashMovement, error) {
	var rows []models.CashMovementModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]cash.CashMovement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements, nil
}

var (
	_ cash.SessionRepository  = (*GormSessionRepository)(nil)
	_ cash.MovementRepository = (*GormMovementRepository)(nil)
)
