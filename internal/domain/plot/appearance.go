package plot

// Fill colors used on the map. One color per sales state; booked and
// registered share the "sold" fill and are distinguished by the stamp.
const (
	FillFree    = "#2BBCA5"
	FillPending = "#FFD253"
	FillSold    = "#F48274"
)

// Appearance is the visual representation of a persisted status: the
// shape's fill color and whether the per-plot stamp is shown.
type Appearance struct {
	Fill  string
	Stamp bool
}

// AppearanceOf returns the appearance a shape must carry for a status.
// POST: the result depends only on s (pure)
func AppearanceOf(s Status) Appearance {
	switch s {
	case StatusReserved:
		return Appearance{Fill: FillPending}
	case StatusBooked:
		return Appearance{Fill: FillSold}
	case StatusRegistered:
		return Appearance{Fill: FillSold, Stamp: true}
	}
	return Appearance{Fill: FillFree}
}
