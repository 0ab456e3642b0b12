package enquiry

import (
	"context"

	domain "plotmap/internal/domain/enquiry"
)

// Store persists Enquiry state.
type Store interface {
	Save(ctx context.Context, value domain.Enquiry) error
	List(ctx context.Context, limit int) ([]domain.Enquiry, error)
}
