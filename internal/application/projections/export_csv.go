package projections

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	customerStore "plotmap/internal/adapters/storage/customer"
	plotStore "plotmap/internal/adapters/storage/plot"
	customerDomain "plotmap/internal/domain/customer"
	mediatorDomain "plotmap/internal/domain/mediator"
	plotDomain "plotmap/internal/domain/plot"
)

// ExportCustomerStore defines the customer store interface needed for export.
type ExportCustomerStore interface {
	List(ctx context.Context, filter customerStore.ListFilter) ([]customerDomain.Record, error)
	GetByID(ctx context.Context, id string) (customerDomain.Record, error)
}

// ExportMediatorStore defines the mediator store interface needed for export.
type ExportMediatorStore interface {
	List(ctx context.Context) ([]mediatorDomain.Mediator, error)
}

// ExportDeps holds dependencies for the CSV export projections.
type ExportDeps struct {
	PlotStore     StatsPlotStore
	CustomerStore ExportCustomerStore
	MediatorStore ExportMediatorStore
}

// WriteCustomersCSV streams all customer records as CSV. A customer with
// installments repeats across rows, one row per installment, the way the
// office spreadsheet lays them out.
// POST: header plus one row per (customer, installment) pair; customers
// without installments get a single row with empty installment columns
func WriteCustomersCSV(ctx context.Context, w io.Writer, deps ExportDeps) error {
	records, err := deps.CustomerStore.List(ctx, customerStore.ListFilter{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"Plot", "Customer", "Phone", "Status", "Mediator", "Commission", "Booking Amount", "Closure Date", "Installment Amount", "Installment Date", "Follow Up"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		// list rows carry no installments; fetch the full record
		full, err := deps.CustomerStore.GetByID(ctx, rec.ID)
		if err != nil {
			full = rec
		}
		base := []string{
			full.PlotLabel,
			full.Name,
			full.Phone,
			plotDomain.DisplayLabel(full.Status),
			full.Mediator,
			full.Commission,
			full.BookingAmount,
			full.ClosureDate,
		}
		if len(full.Installments) == 0 {
			if err := cw.Write(append(base, "", "", "")); err != nil {
				return err
			}
			continue
		}
		for _, inst := range full.Installments {
			row := append(append([]string{}, base...), inst.Amount, inst.Date, inst.FollowUp)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePlotsCSV streams the plot inventory as CSV.
func WritePlotsCSV(ctx context.Context, w io.Writer, deps ExportDeps) error {
	plots, err := deps.PlotStore.List(ctx, plotStore.ListFilter{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Plot", "Plot No", "Price", "Sqft", "Cent", "Facing", "Status"}); err != nil {
		return err
	}
	for _, p := range plots {
		row := []string{
			p.Title,
			p.PlotNum,
			formatFloat(p.Price),
			formatFloat(p.Sqft),
			formatFloat(p.Cent),
			p.Facing,
			plotDomain.DisplayLabel(p.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMediatorsCSV streams the mediator list as CSV.
func WriteMediatorsCSV(ctx context.Context, w io.Writer, deps ExportDeps) error {
	mediators, err := deps.MediatorStore.List(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Phone", "Location"}); err != nil {
		return err
	}
	for _, m := range mediators {
		if err := cw.Write([]string{m.Name, m.Phone, m.Location}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%g", v)
}
