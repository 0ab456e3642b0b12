package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	emailAdapter "plotmap/internal/adapters/email"
	domain "plotmap/internal/domain/enquiry"
	plotDomain "plotmap/internal/domain/plot"
)

type mockEnquiryStore struct {
	saved   []domain.Enquiry
	saveErr error
}

func (m *mockEnquiryStore) Save(_ context.Context, e domain.Enquiry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, e)
	return nil
}

func (m *mockEnquiryStore) List(_ context.Context, _ int) ([]domain.Enquiry, error) {
	return m.saved, nil
}

type mockSender struct {
	sent    []emailAdapter.SendRequest
	sendErr error
}

func (m *mockSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if m.sendErr != nil {
		return emailAdapter.SendResult{}, m.sendErr
	}
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: "msg-1"}, nil
}

func (m *mockSender) SendBatch(ctx context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	var results []emailAdapter.SendResult
	for _, req := range reqs {
		r, err := m.Send(ctx, req)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func testEnquiryDeps(store *mockEnquiryStore, sender *mockSender) SubmitEnquiryDeps {
	_, _, ps := testSaveDeps(plotDomain.Plot{ID: "p1", Title: "Plot 12A", Status: plotDomain.StatusAvailable})
	return SubmitEnquiryDeps{
		EnquiryStore:  store,
		PlotStore:     ps,
		EmailSender:   sender,
		GenerateID:    func() string { return "enq-1" },
		Now:           func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
		FromAddress:   "Plot Sales <noreply@example.com>",
		NotifyAddress: "admin@example.com",
	}
}

func TestExecuteSubmitEnquiry(t *testing.T) {
	store := &mockEnquiryStore{}
	sender := &mockSender{}
	deps := testEnquiryDeps(store, sender)

	id, err := ExecuteSubmitEnquiry(context.Background(), SubmitEnquiryInput{
		PlotID: "p1",
		Name:   "Kavya",
		Phone:  "9876543210",
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteSubmitEnquiry: %v", err)
	}
	if id != "enq-1" {
		t.Errorf("id = %q, want enq-1", id)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(store.saved))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sent))
	}
	if sender.sent[0].To[0] != "admin@example.com" {
		t.Errorf("notification to = %v", sender.sent[0].To)
	}
}

func TestExecuteSubmitEnquiry_PhoneRequired(t *testing.T) {
	store := &mockEnquiryStore{}
	deps := testEnquiryDeps(store, &mockSender{})

	_, err := ExecuteSubmitEnquiry(context.Background(), SubmitEnquiryInput{Name: "Kavya"}, deps)
	if !errors.Is(err, domain.ErrInvalidPhone) {
		t.Errorf("err = %v, want ErrInvalidPhone", err)
	}
	if len(store.saved) != 0 {
		t.Error("invalid enquiry was saved")
	}
}

func TestExecuteSubmitEnquiry_NotifyFailureKeepsEnquiry(t *testing.T) {
	store := &mockEnquiryStore{}
	sender := &mockSender{sendErr: errors.New("provider down")}
	deps := testEnquiryDeps(store, sender)

	id, err := ExecuteSubmitEnquiry(context.Background(), SubmitEnquiryInput{
		PlotID: "p1",
		Name:   "Kavya",
		Phone:  "9876543210",
	}, deps)
	if err != nil {
		t.Fatalf("a failed notification must not fail the submission: %v", err)
	}
	if id == "" || len(store.saved) != 1 {
		t.Error("enquiry was lost when the notification failed")
	}
}
