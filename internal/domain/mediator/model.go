package mediator

import (
	"errors"
	"strings"

	"plotmap/internal/domain/customer"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("mediator name cannot be empty")
	ErrInvalidPhone = errors.New("phone must be 10 digits")
)

// Mediator is a broker who introduced a customer and earns a commission.
type Mediator struct {
	ID       string
	Name     string
	Phone    string
	Location string
}

// Validate checks if the Mediator has valid data.
// PRE: Mediator struct is populated
// POST: Returns error if validation fails, nil otherwise
func (m *Mediator) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > 100 {
		return errors.New("mediator name cannot exceed 100 characters")
	}
	if !customer.ValidPhone(m.Phone) {
		return ErrInvalidPhone
	}
	return nil
}
