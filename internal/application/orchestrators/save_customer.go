package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	customerStore "plotmap/internal/adapters/storage/customer"
	plotStore "plotmap/internal/adapters/storage/plot"
	customerDomain "plotmap/internal/domain/customer"
	plotDomain "plotmap/internal/domain/plot"
)

// Errors surfaced to the write handlers. TransitionDeniedError maps to a
// conflict response: the caller's view of the plot was stale and the
// server's persisted status wins.
var (
	ErrPlotLocked    = errors.New("plot is registered and can no longer be changed")
	ErrPlotTaken     = errors.New("plot already has a customer record")
	ErrPlotMismatch  = errors.New("customer record is bound to a different plot")
	ErrDeleteViaSave = errors.New("freeing a plot is a delete, not a save")
)

// TransitionDeniedError reports a status change the persisted state does
// not allow.
type TransitionDeniedError struct {
	From plotDomain.Status
	To   plotDomain.Status
}

func (e *TransitionDeniedError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed", e.From, e.To)
}

// SaveCustomerInput carries a customer record write.
type SaveCustomerInput struct {
	Record customerDomain.Record
}

// SaveCustomerDeps holds dependencies for the customer write orchestrators.
type SaveCustomerDeps struct {
	CustomerStore customerStore.Store
	PlotStore     plotStore.Store
	GenerateID    func() string
}

// checkTransition re-reads the persisted plot status and applies the
// transition table against it. The client previews against its own copy
// of the status; two operators can race, so the persisted row is the
// authority here.
func checkTransition(ctx context.Context, deps SaveCustomerDeps, plotID string, candidate plotDomain.Status, allowNoop bool) (plotDomain.Plot, error) {
	p, err := deps.PlotStore.GetByID(ctx, plotID)
	if err != nil {
		return plotDomain.Plot{}, err
	}
	if p.Status == plotDomain.StatusRegistered {
		return plotDomain.Plot{}, ErrPlotLocked
	}
	if allowNoop && candidate == p.Status {
		return p, nil
	}
	if !plotDomain.CanSelect(p.Status, candidate) {
		return plotDomain.Plot{}, &TransitionDeniedError{From: p.Status, To: candidate}
	}
	return p, nil
}

// ExecuteCreateCustomer creates a customer record bound to a plot and
// moves the plot to the record's status in one transaction.
// PRE: Record validates; Record.PlotID names a plot without a record
// POST: Record persisted and plot status updated together, or nothing
func ExecuteCreateCustomer(ctx context.Context, input SaveCustomerInput, deps SaveCustomerDeps) (string, error) {
	rec := input.Record
	rec.ID = deps.GenerateID()
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if rec.Status == plotDomain.StatusAvailable {
		return "", ErrDeleteViaSave
	}

	if _, err := deps.CustomerStore.GetByPlotID(ctx, rec.PlotID); err == nil {
		return "", ErrPlotTaken
	}
	if _, err := checkTransition(ctx, deps, rec.PlotID, rec.Status, false); err != nil {
		return "", err
	}

	if err := deps.CustomerStore.Create(ctx, rec); err != nil {
		return "", err
	}

	slog.Info("customer_event", "event", "customer_created", "customer_id", rec.ID, "plot_id", rec.PlotID, "status", rec.Status)
	return rec.ID, nil
}

// ExecuteUpdateCustomer amends an existing record. Keeping the persisted
// status is a plain detail edit; changing it goes through the transition
// table against the persisted row.
// PRE: Record.ID names an existing record on Record.PlotID
// POST: Record, installments and plot status committed together, or nothing
func ExecuteUpdateCustomer(ctx context.Context, input SaveCustomerInput, deps SaveCustomerDeps) error {
	rec := input.Record
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.Status == plotDomain.StatusAvailable {
		return ErrDeleteViaSave
	}

	existing, err := deps.CustomerStore.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if existing.PlotID != rec.PlotID {
		return ErrPlotMismatch
	}
	if _, err := checkTransition(ctx, deps, rec.PlotID, rec.Status, true); err != nil {
		return err
	}

	if err := deps.CustomerStore.Update(ctx, rec); err != nil {
		return err
	}

	slog.Info("customer_event", "event", "customer_updated", "customer_id", rec.ID, "plot_id", rec.PlotID, "status", rec.Status)
	return nil
}

// ExecuteDeleteCustomer removes a record and frees its plot.
// PRE: id names an existing record; the plot is not registered
// POST: Record gone and plot available, committed together
func ExecuteDeleteCustomer(ctx context.Context, id string, deps SaveCustomerDeps) error {
	existing, err := deps.CustomerStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := checkTransition(ctx, deps, existing.PlotID, plotDomain.StatusAvailable, false); err != nil {
		return err
	}

	if err := deps.CustomerStore.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("customer_event", "event", "customer_deleted", "customer_id", id, "plot_id", existing.PlotID)
	return nil
}
