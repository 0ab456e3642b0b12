package enquiry

import (
	"errors"
	"strings"
	"time"

	"plotmap/internal/domain/customer"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("enquiry name cannot be empty")
	ErrInvalidPhone = errors.New("a valid 10-digit mobile number is required")
)

// Enquiry is a public visitor's interest in a plot, submitted from the
// map without an account.
type Enquiry struct {
	ID        string
	PlotID    string
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Validate checks if the Enquiry has valid data.
// PRE: Enquiry struct is populated
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: unlike customer records, the phone is mandatory here — it is
// the only way to reach the enquirer
func (e *Enquiry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.Phone == "" || !customer.ValidPhone(e.Phone) {
		return ErrInvalidPhone
	}
	return nil
}
