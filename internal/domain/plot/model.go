package plot

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength  = 100
	MaxFacingLength = 40
)

// Status is the canonical lifecycle status of a plot. Exactly four values
// exist; legacy display spellings are normalised by ParseStatus and never
// stored.
type Status string

// Lifecycle status constants.
const (
	StatusAvailable  Status = "available"
	StatusReserved   Status = "reserved"
	StatusBooked     Status = "booked"
	StatusRegistered Status = "registered"
)

// Domain errors
var (
	ErrUnknownStatus = errors.New("unknown plot status")
	ErrEmptyTitle    = errors.New("plot title cannot be empty")
)

// Plot holds state for a sellable parcel on the map.
type Plot struct {
	ID        string
	Title     string
	PlotNum   string
	StampNum  string
	VisibleID string // shape id on the map when it differs from ID
	Price     float64
	Sqft      float64
	Cent      float64
	Facing    string
	Status    Status
}

// Validate checks if the Plot has valid data.
// PRE: Plot struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Title must not be empty, Status must be canonical
func (p *Plot) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if len(p.Title) > MaxTitleLength {
		return errors.New("plot title cannot exceed 100 characters")
	}
	if len(p.Facing) > MaxFacingLength {
		return errors.New("plot facing cannot exceed 40 characters")
	}
	if !IsValid(p.Status) {
		return ErrUnknownStatus
	}
	return nil
}

// IsAvailable returns true if the plot has no customer bound.
// INVARIANT: Status field is not mutated
func (p *Plot) IsAvailable() bool {
	return p.Status == StatusAvailable
}

// IsValid reports whether s is one of the four canonical statuses.
func IsValid(s Status) bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusBooked, StatusRegistered:
		return true
	}
	return false
}

// ParseStatus normalises a status string read from an external boundary
// (API payload, legacy database row) to its canonical value. The legacy
// map data spelled "registered" three different ways; they all collapse
// here and never propagate further.
// PRE: none
// POST: Returns a canonical Status or ErrUnknownStatus
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "available":
		return StatusAvailable, nil
	case "reserved":
		return StatusReserved, nil
	case "booked", "progress":
		return StatusBooked, nil
	case "registered", "register", "registration done", "booked-registered":
		return StatusRegistered, nil
	}
	return "", ErrUnknownStatus
}

// DisplayLabel returns the operator-facing label for a status. Used by
// projections and CSV export only; storage and the API always carry the
// canonical value.
func DisplayLabel(s Status) string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusReserved:
		return "Reserved"
	case StatusBooked:
		return "Booked"
	case StatusRegistered:
		return "Registration Done"
	}
	return string(s)
}
