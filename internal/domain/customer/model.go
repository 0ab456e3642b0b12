package customer

import (
	"errors"
	"strings"

	"plotmap/internal/domain/plot"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength     = 100
	MaxMediatorLength = 100
	PhoneDigits       = 10
)

// Domain errors
var (
	ErrEmptyName     = errors.New("customer name cannot be empty")
	ErrInvalidPhone  = errors.New("phone must be 10 digits")
	ErrInvalidStatus = errors.New("customer status must be reserved, booked or registered")
	ErrMissingPlot   = errors.New("customer must be bound to a plot")
)

// Record is the buyer/booking record bound to a non-available plot.
// Exactly one Record exists per plot whose status has left "available";
// deleting the Record is the action that frees the plot.
type Record struct {
	ID            string
	PlotID        string
	PlotLabel     string
	Name          string
	Phone         string
	Mediator      string
	Commission    string
	BookingAmount string
	ClosureDate   string // yyyy-mm-dd
	Status        plot.Status
	Installments  []Installment
}

// Installment is one received payment. Installments have no identity
// beyond their position until persisted with the owning Record.
type Installment struct {
	Amount   string
	Date     string // date received, yyyy-mm-dd
	FollowUp string // next follow-up date, yyyy-mm-dd
}

// Validate checks if the Record has valid data.
// PRE: Record struct is populated
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name non-empty; Phone, when present, exactly 10 digits;
// Status is never "available" (an available plot has no Record)
func (r *Record) Validate() error {
	if strings.TrimSpace(r.PlotID) == "" {
		return ErrMissingPlot
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return errors.New("customer name cannot exceed 100 characters")
	}
	if len(r.Mediator) > MaxMediatorLength {
		return errors.New("mediator name cannot exceed 100 characters")
	}
	if !ValidPhone(r.Phone) {
		return ErrInvalidPhone
	}
	switch r.Status {
	case plot.StatusReserved, plot.StatusBooked, plot.StatusRegistered:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// ValidPhone reports whether phone is empty or exactly ten digits.
func ValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	if len(phone) != PhoneDigits {
		return false
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
