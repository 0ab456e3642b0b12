package mediator

import (
	"context"

	domain "plotmap/internal/domain/mediator"
)

// Store persists Mediator state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Mediator, error)
	Save(ctx context.Context, value domain.Mediator) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Mediator, error)
}
