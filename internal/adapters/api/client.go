// Package api is the console's HTTP client for the plotmap server. It
// implements lifecycle.CustomerService, translating the server's status
// codes back into the controller's error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"plotmap/internal/application/lifecycle"
	"plotmap/internal/domain/customer"
	"plotmap/internal/domain/plot"
)

// Client talks to the plotmap JSON API. The zero value is not usable;
// construct with NewClient. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the server at baseURL. The session
// cookie issued by Login is held in the client's jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
	}, nil
}

var _ lifecycle.CustomerService = (*Client)(nil)

// apiError is the server's JSON error body. Conflict responses carry the
// persisted and requested statuses.
type apiError struct {
	Error string `json:"error"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// installmentPayload mirrors the server's installment wire shape.
type installmentPayload struct {
	Amount   string
	Date     string
	FollowUp string
}

// customerPayload mirrors the server's customer write body.
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

func toPayload(rec customer.Record) customerPayload {
	p := customerPayload{
		PlotID:        rec.PlotID,
		Name:          rec.Name,
		Phone:         rec.Phone,
		Mediator:      rec.Mediator,
		Commission:    rec.Commission,
		BookingAmount: rec.BookingAmount,
		ClosureDate:   rec.ClosureDate,
		Status:        string(rec.Status),
	}
	for _, inst := range rec.Installments {
		p.Installments = append(p.Installments, installmentPayload{
			Amount:   inst.Amount,
			Date:     inst.Date,
			FollowUp: inst.FollowUp,
		})
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// decodeError reads a non-2xx response into the controller's taxonomy. A
// 409 becomes a *lifecycle.TransitionRejectedError so the session treats
// it exactly like a local guard rejection.
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	var body apiError
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", resp.Request.URL.Path, lifecycle.ErrNotFound)
	case http.StatusConflict:
		from, _ := plot.ParseStatus(body.From)
		to, _ := plot.ParseStatus(body.To)
		return &lifecycle.TransitionRejectedError{From: from, To: to}
	}
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
}

// Login authenticates the operator and stores the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, "POST", "/api/auth/login", map[string]string{
		"Username": username,
		"Password": password,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	resp.Body.Close()
	return nil
}

// FetchPlots loads the full plot inventory for the map.
// POST: Returns every plot the server knows, in no particular order.
func (c *Client) FetchPlots(ctx context.Context) ([]plot.Plot, error) {
	resp, err := c.do(ctx, "GET", "/api/plots", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	defer resp.Body.Close()

	var byID map[string]plot.Plot
	if err := json.NewDecoder(resp.Body).Decode(&byID); err != nil {
		return nil, err
	}
	plots := make([]plot.Plot, 0, len(byID))
	for _, p := range byID {
		plots = append(plots, p)
	}
	return plots, nil
}

// FetchByPlot returns the customer record bound to a plot.
// POST: Returns the record, or an error wrapping lifecycle.ErrNotFound
// when the plot has none.
func (c *Client) FetchByPlot(ctx context.Context, plotID string) (customer.Record, error) {
	resp, err := c.do(ctx, "GET", "/api/customers/by-plot/"+url.PathEscape(plotID), nil)
	if err != nil {
		return customer.Record{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return customer.Record{}, decodeError(resp)
	}
	defer resp.Body.Close()

	var rec customer.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return customer.Record{}, err
	}
	return rec, nil
}

// Create persists a new customer record and returns its server-assigned id.
func (c *Client) Create(ctx context.Context, rec customer.Record) (string, error) {
	resp, err := c.do(ctx, "POST", "/api/customers", toPayload(rec))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", decodeError(resp)
	}
	defer resp.Body.Close()

	var created customer.Record
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// Update amends an existing customer record.
func (c *Client) Update(ctx context.Context, rec customer.Record) error {
	resp, err := c.do(ctx, "PUT", "/api/customers/"+url.PathEscape(rec.ID), toPayload(rec))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	resp.Body.Close()
	return nil
}

// Delete removes a customer record, freeing its plot.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.do(ctx, "DELETE", "/api/customers/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	resp.Body.Close()
	return nil
}
