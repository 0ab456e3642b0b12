package plot

// Decision is the outcome of evaluating the transition guard for a
// persisted status: which statuses the operator may pick next, and whether
// the customer-editable fields are locked.
type Decision struct {
	Selectable []Status
	Locked     bool
}

// transitionTable maps a persisted status to the statuses selectable next.
// This is the single source of truth for transition legality; UI controls
// and the server-side write handlers both derive from it.
//
// Forward progress is monotonic: a status is never re-selectable, and a
// booked plot cannot regress to reserved. "available" appears only for
// plots that already have a customer — choosing it means deleting the
// customer record, which is the action that frees the plot. A registered
// plot is fully locked.
var transitionTable = map[Status][]Status{
	StatusAvailable:  {StatusReserved, StatusBooked, StatusRegistered},
	StatusReserved:   {StatusBooked, StatusRegistered, StatusAvailable},
	StatusBooked:     {StatusRegistered, StatusAvailable},
	StatusRegistered: {},
}

// AllowedTransitions evaluates the guard for a persisted status.
// PRE: persisted is a canonical Status (an unknown value yields a locked,
// empty decision)
// POST: Returns the selectable next statuses and the field lock flag
// INVARIANT: the table above is never consulted anywhere else
func AllowedTransitions(persisted Status) Decision {
	next, ok := transitionTable[persisted]
	if !ok {
		return Decision{Locked: true}
	}
	selectable := make([]Status, len(next))
	copy(selectable, next)
	return Decision{
		Selectable: selectable,
		Locked:     persisted == StatusRegistered,
	}
}

// CanSelect reports whether candidate is a legal next status from the
// given persisted status.
// INVARIANT: CanSelect(s, c) == (c appears in AllowedTransitions(s).Selectable)
func CanSelect(persisted, candidate Status) bool {
	for _, s := range transitionTable[persisted] {
		if s == candidate {
			return true
		}
	}
	return false
}
