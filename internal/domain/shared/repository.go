package shared

import (
	"context"
)

// Repository is the CRUD contract shared by all aggregate repositories.
// Create assigns the identity of the entity (and of any owned children) in place.
// FindByID, Update and Delete return ErrNotFound for unknown identities.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id int64) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id int64) error
}
