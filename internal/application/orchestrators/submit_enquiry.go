package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	emailAdapter "plotmap/internal/adapters/email"
	enquiryStore "plotmap/internal/adapters/storage/enquiry"
	plotStore "plotmap/internal/adapters/storage/plot"
	domain "plotmap/internal/domain/enquiry"
)

// SubmitEnquiryInput carries a public visitor's enquiry.
type SubmitEnquiryInput struct {
	PlotID  string
	Name    string
	Phone   string
	Address string
}

// SubmitEnquiryDeps holds dependencies for SubmitEnquiry.
type SubmitEnquiryDeps struct {
	EnquiryStore enquiryStore.Store
	PlotStore    plotStore.Store
	EmailSender  emailAdapter.Sender
	GenerateID   func() string
	Now          func() time.Time

	// Notification config. When NotifyAddress is empty the enquiry is
	// stored but no mail goes out.
	FromAddress   string
	NotifyAddress string
}

// ExecuteSubmitEnquiry validates and stores an enquiry, then notifies the
// sales admin by email.
// PRE: Name non-empty, Phone exactly 10 digits
// POST: Enquiry persisted; notification attempted
// INVARIANT: A failed notification never loses the enquiry — the store
// write happens first and its error is the only fatal one
func ExecuteSubmitEnquiry(ctx context.Context, input SubmitEnquiryInput, deps SubmitEnquiryDeps) (string, error) {
	enq := domain.Enquiry{
		ID:        deps.GenerateID(),
		PlotID:    input.PlotID,
		Name:      input.Name,
		Phone:     input.Phone,
		Address:   input.Address,
		CreatedAt: deps.Now(),
	}
	if err := enq.Validate(); err != nil {
		return "", err
	}

	if err := deps.EnquiryStore.Save(ctx, enq); err != nil {
		return "", fmt.Errorf("failed to save enquiry: %w", err)
	}

	plotLabel := "(no plot selected)"
	if enq.PlotID != "" {
		if p, err := deps.PlotStore.GetByID(ctx, enq.PlotID); err == nil {
			plotLabel = p.Title
		}
	}

	if deps.NotifyAddress != "" {
		body := fmt.Sprintf(
			"<p>New plot enquiry.</p><ul><li>Plot: %s</li><li>Name: %s</li><li>Phone: %s</li><li>Address: %s</li></ul>",
			html.EscapeString(plotLabel),
			html.EscapeString(enq.Name),
			html.EscapeString(enq.Phone),
			html.EscapeString(enq.Address),
		)
		_, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
			To:      []string{deps.NotifyAddress},
			From:    deps.FromAddress,
			Subject: "New enquiry: " + plotLabel,
			HTML:    body,
		})
		if err != nil {
			slog.Error("enquiry_notify_failed", "error", err.Error(), "enquiry_id", enq.ID)
		}
	}

	slog.Info("enquiry_event", "event", "enquiry_submitted", "enquiry_id", enq.ID, "plot_id", enq.PlotID)
	return enq.ID, nil
}
