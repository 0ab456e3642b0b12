package lifecycle

import (
	"context"
	"errors"
	"testing"

	"plotmap/internal/application/mapview"
	"plotmap/internal/application/registry"
	"plotmap/internal/domain/customer"
	"plotmap/internal/domain/plot"
)

type mockCustomerService struct {
	byPlot    map[string]customer.Record
	fetchErr  error
	createErr error
	updateErr error
	deleteErr error

	created *customer.Record
	updated *customer.Record
	deleted []string

	createGate    chan struct{} // when set, Create blocks until closed
	createEntered chan struct{} // closed when Create is reached
}

func (m *mockCustomerService) FetchByPlot(_ context.Context, plotID string) (customer.Record, error) {
	if m.fetchErr != nil {
		return customer.Record{}, m.fetchErr
	}
	rec, ok := m.byPlot[plotID]
	if !ok {
		return customer.Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *mockCustomerService) Create(_ context.Context, rec customer.Record) (string, error) {
	if m.createEntered != nil {
		close(m.createEntered)
	}
	if m.createGate != nil {
		<-m.createGate
	}
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = &rec
	return "cust-new", nil
}

func (m *mockCustomerService) Update(_ context.Context, rec customer.Record) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = &rec
	return nil
}

func (m *mockCustomerService) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type fixture struct {
	reg        *registry.PlotRegistry
	canvas     *mapview.Canvas
	controller *Controller
	svc        *mockCustomerService
}

func newFixture(t *testing.T, plots ...plot.Plot) *fixture {
	t.Helper()
	reg := registry.New()
	reg.Load(plots)
	canvas := mapview.NewCanvas()
	render := mapview.NewRenderSync(canvas, reg)
	for _, p := range plots {
		canvas.RegisterShape(p.ID, plot.AppearanceOf(p.Status).Fill, "")
		render.Apply(p.ID, p.Status)
	}
	svc := &mockCustomerService{byPlot: map[string]customer.Record{}}
	return &fixture{
		reg:        reg,
		canvas:     canvas,
		controller: NewController(reg, render, svc),
		svc:        svc,
	}
}

func availablePlot(id string) plot.Plot {
	return plot.Plot{ID: id, Title: id, Status: plot.StatusAvailable}
}

func TestFreshBookingCommit(t *testing.T) {
	f := newFixture(t, availablePlot("p1"))

	view, err := f.controller.OpenSession(context.Background(), "p1")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if view.Mode != ModeNew {
		t.Fatalf("mode = %q, want %q", view.Mode, ModeNew)
	}

	if !f.controller.SelectStatus(plot.StatusReserved) {
		t.Fatal("selecting reserved from available should be allowed")
	}
	// preview paints but does not commit
	if got := f.canvas.Fill("p1"); got != plot.FillPending {
		t.Errorf("preview fill = %q, want %q", got, plot.FillPending)
	}
	if got := f.reg.Status("p1"); got != plot.StatusAvailable {
		t.Errorf("registry moved on preview: %v", got)
	}

	err = f.controller.CommitSave(context.Background(), Form{Name: "Anand", Phone: "9876543210"})
	if err != nil {
		t.Fatalf("CommitSave: %v", err)
	}
	if f.svc.created == nil {
		t.Fatal("no record was created")
	}
	if f.svc.created.Status != plot.StatusReserved {
		t.Errorf("created status = %v, want reserved", f.svc.created.Status)
	}
	if got := f.reg.Status("p1"); got != plot.StatusReserved {
		t.Errorf("registry status = %v, want reserved", got)
	}
	if got := f.canvas.Fill("p1"); got != plot.FillPending {
		t.Errorf("committed fill = %q, want %q", got, plot.FillPending)
	}
	if _, open := f.controller.Session(); open {
		t.Error("session should be closed after a successful commit")
	}
}

func TestSaveFailureRevertsPreview(t *testing.T) {
	f := newFixture(t, availablePlot("p1"))

	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	f.controller.SelectStatus(plot.StatusBooked)
	f.svc.createErr = errors.New("connection reset")

	err := f.controller.CommitSave(context.Background(), Form{Name: "Anand"})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	if got := f.canvas.Fill("p1"); got != plot.FillFree {
		t.Errorf("fill after failed save = %q, want pre-session %q", got, plot.FillFree)
	}
	if got := f.reg.Status("p1"); got != plot.StatusAvailable {
		t.Errorf("registry moved on failed save: %v", got)
	}
	if _, open := f.controller.Session(); !open {
		t.Error("session should stay open for retry after a failed save")
	}

	// retry on the same session succeeds
	f.svc.createErr = nil
	f.controller.SelectStatus(plot.StatusBooked)
	if err := f.controller.CommitSave(context.Background(), Form{Name: "Anand"}); err != nil {
		t.Fatalf("retry CommitSave: %v", err)
	}
	if got := f.reg.Status("p1"); got != plot.StatusBooked {
		t.Errorf("registry status after retry = %v, want booked", got)
	}
}

func TestRegisteredPlotIsLocked(t *testing.T) {
	p := availablePlot("p1")
	p.Status = plot.StatusRegistered
	f := newFixture(t, p)
	f.svc.byPlot["p1"] = customer.Record{ID: "c1", PlotID: "p1", Name: "Anand", Status: plot.StatusRegistered}

	view, err := f.controller.OpenSession(context.Background(), "p1")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if !view.Locked {
		t.Fatal("registered plot should open locked")
	}
	if len(view.Selectable) != 0 {
		t.Errorf("selectable = %v, want none", view.Selectable)
	}
	for _, s := range []plot.Status{plot.StatusAvailable, plot.StatusReserved, plot.StatusBooked, plot.StatusRegistered} {
		if f.controller.SelectStatus(s) {
			t.Errorf("SelectStatus(%v) accepted on a locked plot", s)
		}
	}
	if err := f.controller.CommitSave(context.Background(), Form{Name: "Anand"}); !errors.Is(err, ErrStatusLocked) {
		t.Errorf("CommitSave on locked plot = %v, want ErrStatusLocked", err)
	}
	if got := f.canvas.Fill("p1"); got != plot.FillSold {
		t.Errorf("locked plot fill = %q, want %q", got, plot.FillSold)
	}

	// cancelling the no-op session must leave the stamp in place
	if err := f.controller.CancelSession(); err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if a, _ := f.canvas.AppearanceOf("p1"); !a.Stamp {
		t.Error("stamp hidden after cancelling a session on a registered plot")
	}
}

func TestSelectingAvailableDeletesRecord(t *testing.T) {
	p := availablePlot("p1")
	p.Status = plot.StatusReserved
	f := newFixture(t, p)
	f.svc.byPlot["p1"] = customer.Record{ID: "c1", PlotID: "p1", Name: "Anand", Status: plot.StatusReserved}

	asked := false
	f.controller.Confirm = func(string) bool { asked = true; return true }

	view, err := f.controller.OpenSession(context.Background(), "p1")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if view.Mode != ModeEdit {
		t.Fatalf("mode = %q, want %q", view.Mode, ModeEdit)
	}
	if !f.controller.SelectStatus(plot.StatusAvailable) {
		t.Fatal("selecting available from reserved should be allowed")
	}
	if err := f.controller.CommitSave(context.Background(), Form{Name: "Anand"}); err != nil {
		t.Fatalf("CommitSave routed to delete: %v", err)
	}
	if !asked {
		t.Error("delete should ask for confirmation")
	}
	if len(f.svc.deleted) != 1 || f.svc.deleted[0] != "c1" {
		t.Errorf("deleted = %v, want [c1]", f.svc.deleted)
	}
	if got := f.reg.Status("p1"); got != plot.StatusAvailable {
		t.Errorf("registry status = %v, want available", got)
	}
	if got := f.canvas.Fill("p1"); got != plot.FillFree {
		t.Errorf("fill = %q, want %q", got, plot.FillFree)
	}
}

func TestDeclinedDeleteChangesNothing(t *testing.T) {
	p := availablePlot("p1")
	p.Status = plot.StatusBooked
	f := newFixture(t, p)
	f.svc.byPlot["p1"] = customer.Record{ID: "c1", PlotID: "p1", Name: "Anand", Status: plot.StatusBooked}
	f.controller.Confirm = func(string) bool { return false }

	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if err := f.controller.CommitDelete(context.Background()); err != nil {
		t.Fatalf("declined delete should be a no-op, got %v", err)
	}
	if len(f.svc.deleted) != 0 {
		t.Error("delete was issued despite declined confirmation")
	}
	if got := f.reg.Status("p1"); got != plot.StatusBooked {
		t.Errorf("registry status = %v, want booked", got)
	}
	if _, open := f.controller.Session(); !open {
		t.Error("session should stay open after a declined delete")
	}
}

func TestDeleteFailureRestoresCommittedAppearance(t *testing.T) {
	p := availablePlot("p1")
	p.Status = plot.StatusReserved
	f := newFixture(t, p)
	f.svc.byPlot["p1"] = customer.Record{ID: "c1", PlotID: "p1", Name: "Anand", Status: plot.StatusReserved}
	f.svc.deleteErr = errors.New("boom")

	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	err := f.controller.CommitDelete(context.Background())
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	// never repainted to "available": the record still exists
	if got := f.canvas.Fill("p1"); got != plot.FillPending {
		t.Errorf("fill after failed delete = %q, want %q", got, plot.FillPending)
	}
	if got := f.reg.Status("p1"); got != plot.StatusReserved {
		t.Errorf("registry status = %v, want reserved", got)
	}
}

func TestServerGuardRejectionSurfaces(t *testing.T) {
	f := newFixture(t, availablePlot("p1"))
	f.svc.createErr = &TransitionRejectedError{From: plot.StatusBooked, To: plot.StatusReserved}

	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	f.controller.SelectStatus(plot.StatusReserved)

	err := f.controller.CommitSave(context.Background(), Form{Name: "Anand"})
	var rej *TransitionRejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want *TransitionRejectedError", err)
	}
	if got := f.canvas.Fill("p1"); got != plot.FillFree {
		t.Errorf("fill after rejection = %q, want %q", got, plot.FillFree)
	}
	if got := f.reg.Status("p1"); got != plot.StatusAvailable {
		t.Errorf("registry status = %v, want available", got)
	}
}

func TestValidationBlocksRemoteCall(t *testing.T) {
	f := newFixture(t, availablePlot("p1"))
	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	f.controller.SelectStatus(plot.StatusReserved)

	cases := []struct {
		name  string
		form  Form
		field string
	}{
		{"missing name", Form{Phone: "9876543210"}, "name"},
		{"short phone", Form{Name: "Anand", Phone: "98765"}, "phone"},
		{"letters in phone", Form{Name: "Anand", Phone: "98765abcde"}, "phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.controller.CommitSave(context.Background(), tc.form)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %q, want %q", ve.Field, tc.field)
			}
			if f.svc.created != nil {
				t.Error("remote call made despite validation failure")
			}
		})
	}
	if _, open := f.controller.Session(); !open {
		t.Error("session should survive validation failures")
	}
}

func TestCommitWithoutStatusSelection(t *testing.T) {
	f := newFixture(t, availablePlot("p1"))
	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	err := f.controller.CommitSave(context.Background(), Form{Name: "Anand"})
	if !errors.Is(err, ErrNoStatusChosen) {
		t.Errorf("err = %v, want ErrNoStatusChosen", err)
	}
}

func TestSingleSessionAtATime(t *testing.T) {
	f := newFixture(t, availablePlot("p1"), availablePlot("p2"))
	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if _, err := f.controller.OpenSession(context.Background(), "p2"); !errors.Is(err, ErrSessionOpen) {
		t.Errorf("second open = %v, want ErrSessionOpen", err)
	}
	if err := f.controller.CancelSession(); err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if _, err := f.controller.OpenSession(context.Background(), "p2"); err != nil {
		t.Errorf("open after cancel: %v", err)
	}
}

func TestCancelRevertsPreview(t *testing.T) {
	f := newFixture(t, availablePlot("p1"))
	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	f.controller.SelectStatus(plot.StatusRegistered)
	if got := f.canvas.Fill("p1"); got != plot.FillSold {
		t.Fatalf("preview fill = %q, want %q", got, plot.FillSold)
	}
	if err := f.controller.CancelSession(); err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if got := f.canvas.Fill("p1"); got != plot.FillFree {
		t.Errorf("fill after cancel = %q, want %q", got, plot.FillFree)
	}
	if a, _ := f.canvas.AppearanceOf("p1"); a.Stamp {
		t.Error("stamp visible after cancel")
	}
}

func TestIllegalSelectionKeepsPreviousPreview(t *testing.T) {
	p := availablePlot("p1")
	p.Status = plot.StatusBooked
	f := newFixture(t, p)
	f.svc.byPlot["p1"] = customer.Record{ID: "c1", PlotID: "p1", Name: "Anand", Status: plot.StatusBooked}

	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if !f.controller.SelectStatus(plot.StatusRegistered) {
		t.Fatal("booked -> registered should be allowed")
	}
	if f.controller.SelectStatus(plot.StatusReserved) {
		t.Fatal("booked -> reserved is a regression and must be refused")
	}
	view, _ := f.controller.Session()
	if view.Pending != plot.StatusRegistered {
		t.Errorf("pending = %v, want registered to stand", view.Pending)
	}
	if got := f.canvas.Fill("p1"); got != plot.FillSold {
		t.Errorf("fill = %q, want the standing registered preview %q", got, plot.FillSold)
	}
}

func TestStampOnlyAfterCommittedRegistration(t *testing.T) {
	p := availablePlot("p1")
	p.Status = plot.StatusBooked
	f := newFixture(t, p)
	f.svc.byPlot["p1"] = customer.Record{ID: "c1", PlotID: "p1", Name: "Anand", Status: plot.StatusBooked}

	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	f.controller.SelectStatus(plot.StatusRegistered)
	if a, _ := f.canvas.AppearanceOf("p1"); a.Stamp {
		t.Fatal("stamp shown on preview")
	}
	if err := f.controller.CommitSave(context.Background(), Form{Name: "Anand"}); err != nil {
		t.Fatalf("CommitSave: %v", err)
	}
	a, _ := f.canvas.AppearanceOf("p1")
	if !a.Stamp {
		t.Error("stamp missing after committed registration")
	}
}

func TestFetchFailureOpensFreshSessionWithWarning(t *testing.T) {
	p := availablePlot("p1")
	p.Status = plot.StatusReserved
	f := newFixture(t, p)
	f.svc.fetchErr = errors.New("gateway timeout")

	view, err := f.controller.OpenSession(context.Background(), "p1")
	if err != nil {
		t.Fatalf("a failed fetch must not block the session: %v", err)
	}
	if view.Mode != ModeNew {
		t.Errorf("mode = %q, want %q", view.Mode, ModeNew)
	}
	if view.Warning == "" {
		t.Error("expected a warning about the failed fetch")
	}
}

func TestReselectingExistingStatusClearsPreview(t *testing.T) {
	p := availablePlot("p1")
	p.Status = plot.StatusReserved
	f := newFixture(t, p)
	f.svc.byPlot["p1"] = customer.Record{ID: "c1", PlotID: "p1", Name: "Anand", Status: plot.StatusReserved}

	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	f.controller.SelectStatus(plot.StatusBooked)
	if !f.controller.SelectStatus(plot.StatusReserved) {
		t.Fatal("re-selecting the persisted status should be accepted")
	}
	if got := f.canvas.Fill("p1"); got != plot.FillPending {
		t.Errorf("fill = %q, want the persisted reserved fill %q", got, plot.FillPending)
	}
	view, _ := f.controller.Session()
	if view.Pending != plot.StatusReserved {
		t.Errorf("pending = %v, want reserved", view.Pending)
	}
}

func TestNoOverlappingCommits(t *testing.T) {
	f := newFixture(t, availablePlot("p1"))
	gate := make(chan struct{})
	entered := make(chan struct{})
	f.svc.createGate = gate
	f.svc.createEntered = entered

	if _, err := f.controller.OpenSession(context.Background(), "p1"); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	f.controller.SelectStatus(plot.StatusReserved)

	done := make(chan error, 1)
	go func() {
		done <- f.controller.CommitSave(context.Background(), Form{Name: "Anand"})
	}()
	<-entered // first commit is parked inside Create

	if err := f.controller.CancelSession(); !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("cancel during commit = %v, want ErrCommitInFlight", err)
	}
	if err := f.controller.CommitSave(context.Background(), Form{Name: "Other"}); !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("second commit = %v, want ErrCommitInFlight", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if got := f.reg.Status("p1"); got != plot.StatusReserved {
		t.Errorf("registry status = %v, want reserved", got)
	}
}
