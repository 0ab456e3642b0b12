package lifecycle

import (
	"errors"
	"fmt"

	"plotmap/internal/domain/plot"
)

// Session errors. None of them is fatal: every failure leaves the plot's
// visible state consistent with its last confirmed persisted state.
var (
	ErrSessionOpen     = errors.New("an edit session is already open")
	ErrNoSession       = errors.New("no edit session is open")
	ErrCommitInFlight  = errors.New("a save or delete is already in flight")
	ErrStatusLocked    = errors.New("plot is registered and locked")
	ErrNoStatusChosen  = errors.New("no plot status selected")
	ErrNoCustomerBound = errors.New("no customer record to delete")
	ErrUnknownPlot     = errors.New("plot is not on the map")

	// ErrNotFound is returned by CustomerService.FetchByPlot when the plot
	// has no bound record. Non-fatal on session open.
	ErrNotFound = errors.New("customer record not found")
)

// ValidationError reports a rejected field before any remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransitionRejectedError reports a status change refused by the guard or
// by the server (the server can disagree after a race with another
// session).
type TransitionRejectedError struct {
	From plot.Status
	To   plot.Status
}

func (e *TransitionRejectedError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed", e.From, e.To)
}

// RemoteError wraps a failed call to the persistence layer. Retrying is
// simply re-invoking the commit; the session stays open.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
