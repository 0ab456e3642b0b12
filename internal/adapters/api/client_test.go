package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"plotmap/internal/application/lifecycle"
	"plotmap/internal/domain/customer"
	"plotmap/internal/domain/plot"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	return client
}

// TestFetchPlots verifies the id-keyed map response becomes a plot slice.
func TestFetchPlots(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/plots" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]plot.Plot{
			"p1": {ID: "p1", Title: "Plot 1", Status: plot.StatusAvailable},
			"p2": {ID: "p2", Title: "Plot 2", Status: plot.StatusRegistered},
		})
	}))

	plots, err := client.FetchPlots(context.Background())
	if err != nil {
		t.Fatalf("FetchPlots: %v", err)
	}
	if len(plots) != 2 {
		t.Errorf("got %d plots, want 2", len(plots))
	}
}

// TestFetchByPlotNotFound verifies a 404 maps onto lifecycle.ErrNotFound
// so the controller opens a fresh session instead of failing.
func TestFetchByPlotNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no customer bound to plot"})
	}))

	_, err := client.FetchByPlot(context.Background(), "p9")
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("got %v, want lifecycle.ErrNotFound", err)
	}
}

// TestCreateConflictBecomesTransitionRejected verifies a 409 body is
// decoded into the controller's rejection type with both statuses.
func TestCreateConflictBecomesTransitionRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "transition booked -> reserved is not allowed",
			"from":  "booked",
			"to":    "reserved",
		})
	}))

	_, err := client.Create(context.Background(), customer.Record{
		PlotID: "p1", Name: "Asha", Status: plot.StatusReserved,
	})

	var rejected *lifecycle.TransitionRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("got %T (%v), want *lifecycle.TransitionRejectedError", err, err)
	}
	if rejected.From != plot.StatusBooked || rejected.To != plot.StatusReserved {
		t.Errorf("got %s -> %s, want booked -> reserved", rejected.From, rejected.To)
	}
}

// TestCreateReturnsServerID verifies the server-assigned id comes back.
func TestCreateReturnsServerID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			PlotID string
			Name   string
			Status string
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload.Status != "booked" {
			t.Errorf("got status %q, want booked", payload.Status)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(customer.Record{ID: "c-42", PlotID: payload.PlotID, Name: payload.Name})
	}))

	id, err := client.Create(context.Background(), customer.Record{
		PlotID: "p1", Name: "Asha", Phone: "9876543210", Status: plot.StatusBooked,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "c-42" {
		t.Errorf("got id %q, want c-42", id)
	}
}

// TestDeleteNoContent verifies 204 counts as success.
func TestDeleteNoContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" {
			t.Errorf("got method %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.Delete(context.Background(), "c-1"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

// TestLoginKeepsSessionCookie verifies the cookie jar carries the session
// into later requests.
func TestLoginKeepsSessionCookie(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "plotmap_session", Value: "tok-1", Path: "/"})
			json.NewEncoder(w).Encode(map[string]string{"Username": "admin"})
		case "/api/plots":
			cookie, err := r.Cookie("plotmap_session")
			if err != nil || cookie.Value != "tok-1" {
				t.Errorf("session cookie not sent: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]plot.Plot{})
		}
	}))

	if err := client.Login(context.Background(), "admin", "correct-horse-battery"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := client.FetchPlots(context.Background()); err != nil {
		t.Fatalf("FetchPlots: %v", err)
	}
}
