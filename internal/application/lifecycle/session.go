// Package lifecycle drives the plot edit session: one plot open at a
// time, previewed status changes on the map, and commits that reach the
// map only after the persistence layer acknowledged them.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"

	"plotmap/internal/application/mapview"
	"plotmap/internal/application/registry"
	"plotmap/internal/domain/customer"
	"plotmap/internal/domain/plot"
)

// CustomerService is the persistence boundary the controller commits
// through. FetchByPlot returns ErrNotFound (possibly wrapped) when the
// plot has no bound record. Create and Update may return a
// *TransitionRejectedError when the server's guard disagrees with the
// session's view of the persisted status.
type CustomerService interface {
	FetchByPlot(ctx context.Context, plotID string) (customer.Record, error)
	Create(ctx context.Context, rec customer.Record) (string, error)
	Update(ctx context.Context, rec customer.Record) error
	Delete(ctx context.Context, id string) error
}

// Session modes.
const (
	ModeNew  = "new"  // plot has no customer record yet
	ModeEdit = "edit" // plot has a bound record being amended
)

// session states
const (
	stateOpen     = "open"
	stateSaving   = "saving"
	stateDeleting = "deleting"
)

// Form carries the operator-editable customer fields submitted on save.
// Status is not part of the form; it is selected through SelectStatus.
type Form struct {
	Name          string
	Phone         string
	Mediator      string
	Commission    string
	BookingAmount string
	ClosureDate   string
	Installments  []customer.Installment
}

// SessionView is a read-only snapshot of the open session, handed to the
// presentation layer so it can build the form and enable the right
// status controls.
type SessionView struct {
	PlotID         string
	Mode           string
	ExistingStatus plot.Status
	Pending        plot.Status
	Selectable     []plot.Status
	Locked         bool
	Draft          customer.Record
	Warning        string // non-fatal fetch problem surfaced on open
}

type session struct {
	state          string
	mode           string
	plotID         string
	customerID     string
	existingStatus plot.Status
	pending        plot.Status
	selectable     []plot.Status
	locked         bool
	draft          customer.Record
	warning        string
}

// Controller owns the single edit session and is the only component that
// asks RenderSync to preview, commit or revert. All methods are safe for
// concurrent use; the mutex is released around remote calls so reads of
// the map stay live while a commit is in flight.
type Controller struct {
	registry  *registry.PlotRegistry
	render    *mapview.RenderSync
	customers CustomerService

	// Confirm is asked before a customer record is deleted. A false
	// answer makes the delete a no-op. Nil means no prompt is wired and
	// deletes proceed.
	Confirm func(prompt string) bool

	mu   sync.Mutex
	sess *session
}

// NewController wires the controller to its collaborators.
func NewController(reg *registry.PlotRegistry, render *mapview.RenderSync, customers CustomerService) *Controller {
	return &Controller{registry: reg, render: render, customers: customers}
}

// OpenSession opens an edit session for a plot.
// PRE: no session is open
// POST: on success a session exists in mode "new" or "edit"; the map is
// unchanged
//
// A failed record fetch does not block the operator: the session opens in
// mode "new" with a warning, except for ErrNotFound which is the normal
// no-record case. In mode "edit" the pending status starts at the
// persisted status, so saving without touching the status controls is a
// detail-only amendment.
func (c *Controller) OpenSession(ctx context.Context, plotID string) (SessionView, error) {
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return SessionView{}, ErrSessionOpen
	}
	if _, ok := c.registry.Get(plotID); !ok {
		c.mu.Unlock()
		return SessionView{}, ErrUnknownPlot
	}
	persisted := c.registry.Status(plotID)
	decision := plot.AllowedTransitions(persisted)

	s := &session{
		state:          stateOpen,
		mode:           ModeNew,
		plotID:         plotID,
		existingStatus: persisted,
		selectable:     decision.Selectable,
		locked:         decision.Locked,
	}
	c.sess = s
	c.mu.Unlock()

	rec, err := c.customers.FetchByPlot(ctx, plotID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != s {
		// cancelled while the fetch was in flight
		return SessionView{}, ErrNoSession
	}
	switch {
	case err == nil:
		s.mode = ModeEdit
		s.customerID = rec.ID
		s.draft = rec
		s.pending = persisted
	case errors.Is(err, ErrNotFound):
		// no record bound; a fresh booking starts here
	default:
		s.warning = "could not load the customer record; starting a fresh one"
	}
	return c.viewLocked(), nil
}

// Session returns a snapshot of the open session, false when none is open.
func (c *Controller) Session() (SessionView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return SessionView{}, false
	}
	return c.viewLocked(), true
}

// SelectStatus records candidate as the session's pending status and
// previews its appearance on the map. Illegal candidates are silently
// refused and the previous selection stands.
// POST: on true, pending == candidate and the shape shows its preview
// fill; on false, nothing changed
func (c *Controller) SelectStatus(candidate plot.Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sess
	if s == nil || s.state != stateOpen || s.locked {
		return false
	}
	// re-selecting the persisted status undoes any preview
	if candidate == s.existingStatus && s.mode == ModeEdit {
		s.pending = candidate
		c.render.Revert(s.plotID, s.existingStatus)
		return true
	}
	if !plot.CanSelect(s.existingStatus, candidate) {
		return false
	}
	s.pending = candidate
	c.render.Preview(s.plotID, candidate)
	return true
}

// CommitSave validates the form, persists the record, and only then lets
// the committed status reach the map and the registry. Selecting
// "available" is a delete request and is routed to CommitDelete.
// PRE: session open, no commit in flight
// POST: on success the session is closed and the map shows the committed
// status; on failure the session stays open, the map is reverted to the
// pre-session appearance, and the registry is untouched
func (c *Controller) CommitSave(ctx context.Context, form Form) error {
	c.mu.Lock()
	s := c.sess
	if s == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	if s.state != stateOpen {
		c.mu.Unlock()
		return ErrCommitInFlight
	}
	if s.locked {
		c.mu.Unlock()
		return ErrStatusLocked
	}
	if s.pending == "" {
		c.mu.Unlock()
		return ErrNoStatusChosen
	}
	if s.pending == plot.StatusAvailable {
		// freeing the plot is a record deletion, not a save
		c.mu.Unlock()
		return c.CommitDelete(ctx)
	}

	rec := customer.Record{
		ID:            s.customerID,
		PlotID:        s.plotID,
		Name:          strings.TrimSpace(form.Name),
		Phone:         strings.TrimSpace(form.Phone),
		Mediator:      strings.TrimSpace(form.Mediator),
		Commission:    form.Commission,
		BookingAmount: form.BookingAmount,
		ClosureDate:   form.ClosureDate,
		Status:        s.pending,
		Installments:  form.Installments,
	}
	if rec.Name == "" {
		c.mu.Unlock()
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if !customer.ValidPhone(rec.Phone) {
		c.mu.Unlock()
		return &ValidationError{Field: "phone", Reason: "must be exactly 10 digits"}
	}
	if err := rec.Validate(); err != nil {
		c.mu.Unlock()
		return &ValidationError{Field: "record", Reason: err.Error()}
	}

	mode := s.mode
	plotID := s.plotID
	pending := s.pending
	existing := s.existingStatus
	s.state = stateSaving
	c.mu.Unlock()

	var err error
	if mode == ModeNew {
		var id string
		id, err = c.customers.Create(ctx, rec)
		if err == nil {
			rec.ID = id
		}
	} else {
		err = c.customers.Update(ctx, rec)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.render.Revert(plotID, existing)
		s.state = stateOpen
		var rej *TransitionRejectedError
		if errors.As(err, &rej) {
			return rej
		}
		op := "save"
		if mode == ModeNew {
			op = "create"
		}
		return &RemoteError{Op: op, Err: err}
	}
	c.render.Commit(plotID, pending)
	c.sess = nil
	return nil
}

// CommitDelete removes the plot's customer record, which frees the plot.
// The confirmation hook is asked first; a declined prompt leaves session
// and map exactly as they were.
// PRE: session open in mode "edit", no commit in flight
// POST: on success the session is closed and the plot is available on the
// map and in the registry; on failure the session stays open and the map
// shows the pre-session appearance
func (c *Controller) CommitDelete(ctx context.Context) error {
	c.mu.Lock()
	s := c.sess
	if s == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	if s.state != stateOpen {
		c.mu.Unlock()
		return ErrCommitInFlight
	}
	if s.mode != ModeEdit || s.customerID == "" {
		c.mu.Unlock()
		return ErrNoCustomerBound
	}
	plotID := s.plotID
	customerID := s.customerID
	existing := s.existingStatus
	confirm := c.Confirm
	c.mu.Unlock()

	if confirm != nil && !confirm("Delete the customer record and free this plot?") {
		return nil
	}

	c.mu.Lock()
	if c.sess != s || s.state != stateOpen {
		c.mu.Unlock()
		return ErrNoSession
	}
	s.state = stateDeleting
	c.mu.Unlock()

	err := c.customers.Delete(ctx, customerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.render.Revert(plotID, existing)
		s.state = stateOpen
		return &RemoteError{Op: "delete", Err: err}
	}
	c.render.Commit(plotID, plot.StatusAvailable)
	c.sess = nil
	return nil
}

// CancelSession discards the session and reverts any preview.
// POST: the map shows the pre-session appearance; the registry is
// untouched; no session is open
func (c *Controller) CancelSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sess
	if s == nil {
		return nil
	}
	if s.state != stateOpen {
		return ErrCommitInFlight
	}
	c.render.Revert(s.plotID, s.existingStatus)
	c.sess = nil
	return nil
}

func (c *Controller) viewLocked() SessionView {
	s := c.sess
	selectable := make([]plot.Status, len(s.selectable))
	copy(selectable, s.selectable)
	return SessionView{
		PlotID:         s.plotID,
		Mode:           s.mode,
		ExistingStatus: s.existingStatus,
		Pending:        s.pending,
		Selectable:     selectable,
		Locked:         s.locked,
		Draft:          s.draft,
		Warning:        s.warning,
	}
}
