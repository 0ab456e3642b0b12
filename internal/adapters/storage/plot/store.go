package plot

import (
	"context"

	domain "plotmap/internal/domain/plot"
)

// Store persists Plot state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Plot, error)
	Save(ctx context.Context, value domain.Plot) error
	UpdateDetails(ctx context.Context, value domain.Plot) error
	SetStatus(ctx context.Context, id string, status domain.Status) error
	List(ctx context.Context, filter ListFilter) ([]domain.Plot, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	Facing string
}
