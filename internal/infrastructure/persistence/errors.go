package persistence

import (
	"errors"
	"fmt"

	"github.com/erp/posledger/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to a domain not-found error for entity id
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return fmt.Errorf("find %s %d: %w", entity, id, err)
}

// duplicateKey maps gorm.ErrDuplicatedKey to a domain duplicate key error.
// Needs gorm.Config.TranslateError.
func duplicateKey(err error, field, value string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDuplicateKeyError(field, value)
	}
	return err
}

// versionedUpdate applies updates to the row id of model when its version
// still equals expected, bumping the version. A missing row is not found; a
// changed version is a concurrency conflict.
func versionedUpdate(tx *gorm.DB, model any, entity string, id int64, expected int, updates map[string]any) error {
	updates["version"] = expected + 1
	result := tx.Model(model).
		Where("id = ? AND version = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.NewNotFoundError(entity, id)
	}
	return shared.ErrConcurrencyConflict
}

// deleteRoot deletes the row id of model, reporting a missing row as not found
func deleteRoot(tx *gorm.DB, model any, entity string, id int64) error {
	result := tx.Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(entity, id)
	}
	return nil
}

// replaceChildren deletes the children of parentID missing from rows and
// saves rows, inserting those without an ID.
func replaceChildren[M any](tx *gorm.DB, parentColumn string, parentID int64, keep []int64, rows []M) error {
	var zero M
	query := tx.Where(parentColumn+" = ?", parentID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	if err := query.Delete(&zero).Error; err != nil {
		return err
	}
	for i := range rows {
		if err := tx.Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
