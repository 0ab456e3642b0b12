package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"plotmap/internal/adapters/http/middleware"
	customerStore "plotmap/internal/adapters/storage/customer"
	plotStore "plotmap/internal/adapters/storage/plot"
	"plotmap/internal/application/listutil"
	"plotmap/internal/application/orchestrators"
	"plotmap/internal/application/projections"
	customerDomain "plotmap/internal/domain/customer"
	mediatorDomain "plotmap/internal/domain/mediator"
	plotDomain "plotmap/internal/domain/plot"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// jsonError writes a JSON error body. Conflict responses carry the
// persisted and requested statuses so the console can report which
// transition lost the race.
func jsonError(w http.ResponseWriter, status int, msg string, extra map[string]string) {
	body := map[string]string{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// registerRoutes wires all HTTP endpoints onto the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/plots", handlePlots)
	mux.HandleFunc("/api/plots/import", handlePlotImport)
	mux.HandleFunc("/api/plots/", handlePlotByID)
	mux.HandleFunc("/api/customers", handleCustomers)
	mux.HandleFunc("/api/customers/by-plot/", handleCustomerByPlot)
	mux.HandleFunc("/api/customers/", handleCustomerByID)
	mux.HandleFunc("/api/mediators", handleMediators)
	mux.HandleFunc("/api/mediators/", handleMediatorByID)
	mux.HandleFunc("/api/enquiries", handleEnquiries)
	mux.HandleFunc("/api/stats", handleStats)
	mux.HandleFunc("/api/export/customers", handleExportCustomers)
	mux.HandleFunc("/api/export/plots", handleExportPlots)
	mux.HandleFunc("/api/export/mediators", handleExportMediators)
	mux.HandleFunc("/api/auth/login", handleAuthLogin)
	mux.HandleFunc("/api/auth/logout", handleAuthLogout)
	mux.HandleFunc("/api/auth/me", handleAuthMe)
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
	mux.HandleFunc("/about", handleAbout)
}

// requireAdmin checks the session for admin role and returns the session.
// Returns false if the request should not proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if sess.Role != "admin" {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// customerWriteError maps orchestrator failures onto HTTP statuses. A
// denied transition is a conflict: the caller's view of the plot was
// stale and the persisted row won.
func customerWriteError(w http.ResponseWriter, err error) {
	var denied *orchestrators.TransitionDeniedError
	switch {
	case errors.As(err, &denied):
		jsonError(w, http.StatusConflict, denied.Error(), map[string]string{
			"from": string(denied.From),
			"to":   string(denied.To),
		})
	case errors.Is(err, orchestrators.ErrPlotLocked):
		jsonError(w, http.StatusConflict, err.Error(), map[string]string{
			"from": string(plotDomain.StatusRegistered),
		})
	case errors.Is(err, orchestrators.ErrPlotTaken):
		jsonError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, sql.ErrNoRows):
		jsonError(w, http.StatusNotFound, "not found", nil)
	case errors.Is(err, orchestrators.ErrPlotMismatch),
		errors.Is(err, orchestrators.ErrDeleteViaSave),
		errors.Is(err, customerDomain.ErrEmptyName),
		errors.Is(err, customerDomain.ErrInvalidPhone),
		errors.Is(err, customerDomain.ErrInvalidStatus),
		errors.Is(err, customerDomain.ErrMissingPlot):
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		internalError(w, err)
	}
}

// --- Plots ---

// handlePlots handles GET /api/plots: the bulk map load. The response is
// keyed by plot id so the console can join shapes to statuses in one pass.
func handlePlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	plots, err := stores.PlotStore.List(r.Context(), plotStore.ListFilter{})
	if err != nil {
		internalError(w, err)
		return
	}

	byID := make(map[string]plotDomain.Plot, len(plots))
	for _, p := range plots {
		byID[p.ID] = p
	}
	writeJSON(w, http.StatusOK, byID)
}

// plotDetailPayload is the PUT /api/plots/{id} body. Status is absent on
// purpose: listing details and lifecycle status never travel together.
type plotDetailPayload struct {
	Title     string
	PlotNum   string
	StampNum  string
	VisibleID string
	Price     float64
	Sqft      float64
	Cent      float64
	Facing    string
}

// handlePlotByID handles PUT /api/plots/{id} for listing detail edits.
func handlePlotByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != "PUT" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/plots/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid plot id", http.StatusBadRequest)
		return
	}

	var payload plotDetailPayload
	if err := strictDecode(r, &payload); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	existing, err := stores.PlotStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, http.StatusNotFound, "plot not found", nil)
			return
		}
		internalError(w, err)
		return
	}

	updated := plotDomain.Plot{
		ID:        existing.ID,
		Title:     payload.Title,
		PlotNum:   payload.PlotNum,
		StampNum:  payload.StampNum,
		VisibleID: payload.VisibleID,
		Price:     payload.Price,
		Sqft:      payload.Sqft,
		Cent:      payload.Cent,
		Facing:    payload.Facing,
		Status:    existing.Status,
	}
	if err := updated.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := stores.PlotStore.UpdateDetails(ctx, updated); err != nil {
		internalError(w, err)
		return
	}

	slog.Info("plot_event", "event", "plot_updated", "plot_id", id)
	writeJSON(w, http.StatusOK, updated)
}

// handlePlotImport handles POST /api/plots/import: a CSV upload of the
// plot inventory. dry_run=true validates without writing.
func handlePlotImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	input := orchestrators.ImportPlotsInput{
		Reader: file,
		DryRun: r.URL.Query().Get("dry_run") == "true",
	}
	deps := orchestrators.ImportPlotsDeps{
		PlotStore:  stores.PlotStore,
		GenerateID: generateID,
	}

	result, err := orchestrators.ExecuteImportPlots(r.Context(), input, deps)
	if err != nil {
		var verr *orchestrators.ImportPlotsValidationError
		if errors.As(err, &verr) {
			jsonError(w, http.StatusBadRequest, verr.Message, nil)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Customers ---

// installmentPayload is one received payment in a customer write.
type installmentPayload struct {
	Amount   string
	Date     string
	FollowUp string
}

// customerPayload is the POST/PUT /api/customers body.
type customerPayload struct {
	PlotID        string
	Name          string
	Phone         string
	Mediator      string
	Commission    string
	BookingAmount string
	ClosureDate   string
	Status        string
	Installments  []installmentPayload
}

func (p customerPayload) toRecord() (customerDomain.Record, error) {
	status, err := plotDomain.ParseStatus(p.Status)
	if err != nil {
		return customerDomain.Record{}, err
	}
	rec := customerDomain.Record{
		PlotID:        p.PlotID,
		Name:          p.Name,
		Phone:         p.Phone,
		Mediator:      p.Mediator,
		Commission:    p.Commission,
		BookingAmount: p.BookingAmount,
		ClosureDate:   p.ClosureDate,
		Status:        status,
	}
	for _, inst := range p.Installments {
		rec.Installments = append(rec.Installments, customerDomain.Installment{
			Amount:   inst.Amount,
			Date:     inst.Date,
			FollowUp: inst.FollowUp,
		})
	}
	return rec, nil
}

// handleCustomers handles GET (list) and POST (create) for /api/customers.
func handleCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"name", "status", "closure_date"},
			[]string{"status", "mediator"},
		)
		filter := customerStore.ListFilter{
			Limit:    lp.PerPage,
			Offset:   (lp.Page - 1) * lp.PerPage,
			Status:   lp.Filters["status"],
			Mediator: lp.Filters["mediator"],
			Search:   lp.Search,
		}

		records, err := stores.CustomerStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		total, err := stores.CustomerStore.Count(ctx)
		if err != nil {
			internalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"Customers": records,
			"PageInfo":  listutil.NewPageInfo(lp.Page, lp.PerPage, total),
		})
		return
	}

	if r.Method == "POST" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}

		var payload customerPayload
		if err := strictDecode(r, &payload); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		rec, err := payload.toRecord()
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}

		deps := orchestrators.SaveCustomerDeps{
			CustomerStore: stores.CustomerStore,
			PlotStore:     stores.PlotStore,
			GenerateID:    generateID,
		}
		id, err := orchestrators.ExecuteCreateCustomer(ctx, orchestrators.SaveCustomerInput{Record: rec}, deps)
		if err != nil {
			customerWriteError(w, err)
			return
		}
		rec.ID = id
		writeJSON(w, http.StatusCreated, rec)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleCustomerByPlot handles GET /api/customers/by-plot/{plotId}. The
// console opens its booking form with this; 404 means the plot has no
// record bound and a fresh form should open.
func handleCustomerByPlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	plotID := strings.TrimPrefix(r.URL.Path, "/api/customers/by-plot/")
	if plotID == "" || strings.Contains(plotID, "/") {
		http.Error(w, "invalid plot id", http.StatusBadRequest)
		return
	}

	rec, err := stores.CustomerStore.GetByPlotID(r.Context(), plotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, http.StatusNotFound, "no customer bound to plot", nil)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleCustomerByID handles GET/PUT/DELETE for /api/customers/{id}.
func handleCustomerByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/customers/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	deps := orchestrators.SaveCustomerDeps{
		CustomerStore: stores.CustomerStore,
		PlotStore:     stores.PlotStore,
		GenerateID:    generateID,
	}

	switch r.Method {
	case "GET":
		rec, err := stores.CustomerStore.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				jsonError(w, http.StatusNotFound, "customer not found", nil)
				return
			}
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case "PUT":
		var payload customerPayload
		if err := strictDecode(r, &payload); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		rec, err := payload.toRecord()
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		rec.ID = id

		if err := orchestrators.ExecuteUpdateCustomer(ctx, orchestrators.SaveCustomerInput{Record: rec}, deps); err != nil {
			customerWriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case "DELETE":
		if err := orchestrators.ExecuteDeleteCustomer(ctx, id, deps); err != nil {
			customerWriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- Mediators ---

// mediatorPayload is the POST /api/mediators body.
type mediatorPayload struct {
	ID       string
	Name     string
	Phone    string
	Location string
}

// handleMediators handles GET (list) and POST (create/update) for /api/mediators.
func handleMediators(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		mediators, err := stores.MediatorStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		if mediators == nil {
			mediators = []mediatorDomain.Mediator{}
		}
		writeJSON(w, http.StatusOK, mediators)
		return
	}

	if r.Method == "POST" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var payload mediatorPayload
		if err := strictDecode(r, &payload); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		med := mediatorDomain.Mediator{
			ID:       payload.ID,
			Name:     payload.Name,
			Phone:    payload.Phone,
			Location: payload.Location,
		}
		created := med.ID == ""
		if created {
			med.ID = generateID()
		}
		if err := med.Validate(); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		if err := stores.MediatorStore.Save(ctx, med); err != nil {
			internalError(w, err)
			return
		}

		slog.Info("mediator_event", "event", "mediator_saved", "mediator_id", med.ID, "created", created)
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, med)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleMediatorByID handles DELETE /api/mediators/{id}.
func handleMediatorByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/mediators/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid mediator id", http.StatusBadRequest)
		return
	}

	if err := stores.MediatorStore.Delete(r.Context(), id); err != nil {
		internalError(w, err)
		return
	}
	slog.Info("mediator_event", "event", "mediator_deleted", "mediator_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// --- Enquiries ---

// enquiryPayload is the POST /api/enquiries body.
type enquiryPayload struct {
	PlotID  string
	Name    string
	Phone   string
	Address string
}

// handleEnquiries handles POST (public submission) and GET (admin list)
// for /api/enquiries. POST is the one unauthenticated write in the API:
// visitors enquire from the public map without an account.
func handleEnquiries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "POST" {
		var payload enquiryPayload
		if err := strictDecode(r, &payload); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		deps := orchestrators.SubmitEnquiryDeps{
			EnquiryStore:  stores.EnquiryStore,
			PlotStore:     stores.PlotStore,
			EmailSender:   emailSender,
			GenerateID:    generateID,
			Now:           timeNow,
			FromAddress:   emailFromAddress,
			NotifyAddress: emailNotifyAddress,
		}
		input := orchestrators.SubmitEnquiryInput{
			PlotID:  payload.PlotID,
			Name:    payload.Name,
			Phone:   payload.Phone,
			Address: payload.Address,
		}
		id, err := orchestrators.ExecuteSubmitEnquiry(ctx, input, deps)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"ID": id})
		return
	}

	if r.Method == "GET" {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		enquiries, err := stores.EnquiryStore.List(ctx, 0)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, enquiries)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// --- Stats and export ---

// handleStats handles GET /api/stats: the sales dashboard counters.
func handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	deps := projections.GetSalesStatsDeps{
		PlotStore:     stores.PlotStore,
		CustomerStore: stores.CustomerStore,
	}
	result, err := projections.QueryGetSalesStats(r.Context(), deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func exportDeps() projections.ExportDeps {
	return projections.ExportDeps{
		PlotStore:     stores.PlotStore,
		CustomerStore: stores.CustomerStore,
		MediatorStore: stores.MediatorStore,
	}
}

func serveCSV(w http.ResponseWriter, r *http.Request, filename string, write func() error) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := write(); err != nil {
		slog.Error("csv_export_failed", "file", filename, "error", err.Error())
	}
}

// handleExportCustomers handles GET /api/export/customers.
func handleExportCustomers(w http.ResponseWriter, r *http.Request) {
	serveCSV(w, r, "customers.csv", func() error {
		return projections.WriteCustomersCSV(r.Context(), w, exportDeps())
	})
}

// handleExportPlots handles GET /api/export/plots.
func handleExportPlots(w http.ResponseWriter, r *http.Request) {
	serveCSV(w, r, "plots.csv", func() error {
		return projections.WritePlotsCSV(r.Context(), w, exportDeps())
	})
}

// handleExportMediators handles GET /api/export/mediators.
func handleExportMediators(w http.ResponseWriter, r *http.Request) {
	serveCSV(w, r, "mediators.csv", func() error {
		return projections.WriteMediatorsCSV(r.Context(), w, exportDeps())
	})
}

// --- Auth ---

// loginPayload is the POST /api/auth/login body.
type loginPayload struct {
	Username string
	Password string
}

// handleAuthLogin handles POST /api/auth/login.
func handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload loginPayload
	if err := strictDecode(r, &payload); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.LoginInput{
		Username: payload.Username,
		Password: payload.Password,
	}
	deps := orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		jsonError(w, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Username, result.DisplayName, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]string{
		"Username":    result.Username,
		"DisplayName": result.DisplayName,
		"Role":        result.Role,
	})
}

// handleAuthLogout handles POST /api/auth/logout.
func handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleAuthMe handles GET /api/auth/me.
func handleAuthMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"Username":    sess.Username,
		"DisplayName": sess.DisplayName,
		"Role":        sess.Role,
	})
}

// --- Admin perf ---

// handleAdminPerf handles GET /api/admin/perf: a snapshot of request and
// query timings for the last hour.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		jsonError(w, http.StatusServiceUnavailable, "perf collection disabled", nil)
		return
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-time.Hour), 20))
}

// --- About ---

const aboutMarkdown = `# Plot Sales Map

An interactive map of the layout for tracking plot sales.

- **Green** plots are available.
- **Yellow** plots are reserved pending advance payment.
- **Red** plots are booked or registered; registered plots carry the
  buyer's stamp.

Use the enquiry form on any available plot to get in touch, or call the
site office for a visit.`

// handleAbout handles GET /about, rendering the about page markdown.
func handleAbout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(aboutMarkdown), &buf); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>About</title></head><body>%s</body></html>", buf.String())
}
