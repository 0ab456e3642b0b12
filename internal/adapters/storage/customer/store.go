package customer

import (
	"context"

	domain "plotmap/internal/domain/customer"
)

// Store persists customer Records. Create, Update and Delete also move
// the bound plot's status inside the same transaction, so the record and
// the plot can never disagree about whether the plot is taken.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	GetByPlotID(ctx context.Context, plotID string) (domain.Record, error)
	Create(ctx context.Context, value domain.Record) error
	Update(ctx context.Context, value domain.Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Record, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit    int
	Offset   int
	Status   string
	Mediator string
	Search   string
}
