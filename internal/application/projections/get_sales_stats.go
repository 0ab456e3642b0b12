package projections

import (
	"context"
	"strconv"
	"strings"

	customerStore "plotmap/internal/adapters/storage/customer"
	plotStore "plotmap/internal/adapters/storage/plot"
	customerDomain "plotmap/internal/domain/customer"
	plotDomain "plotmap/internal/domain/plot"
)

// StatsPlotStore defines the plot store interface needed by the stats projection.
type StatsPlotStore interface {
	List(ctx context.Context, filter plotStore.ListFilter) ([]plotDomain.Plot, error)
}

// StatsCustomerStore defines the customer store interface needed by the stats projection.
type StatsCustomerStore interface {
	List(ctx context.Context, filter customerStore.ListFilter) ([]customerDomain.Record, error)
}

// GetSalesStatsDeps holds dependencies for the stats projection.
type GetSalesStatsDeps struct {
	PlotStore     StatsPlotStore
	CustomerStore StatsCustomerStore
}

// SalesStatsResult carries the dashboard counters.
type SalesStatsResult struct {
	TotalPlots     int
	Available      int
	Reserved       int
	Booked         int
	Registered     int
	TotalCustomers int

	// Money figures are summed from free-text amount fields; rows that do
	// not parse as numbers are skipped rather than failing the dashboard.
	BookingTotal float64
}

// QueryGetSalesStats aggregates the counters shown on the sales dashboard.
// POST: Counts always add up: Available+Reserved+Booked+Registered == TotalPlots
func QueryGetSalesStats(ctx context.Context, deps GetSalesStatsDeps) (SalesStatsResult, error) {
	plots, err := deps.PlotStore.List(ctx, plotStore.ListFilter{})
	if err != nil {
		return SalesStatsResult{}, err
	}

	result := SalesStatsResult{TotalPlots: len(plots)}
	for _, p := range plots {
		switch p.Status {
		case plotDomain.StatusReserved:
			result.Reserved++
		case plotDomain.StatusBooked:
			result.Booked++
		case plotDomain.StatusRegistered:
			result.Registered++
		default:
			result.Available++
		}
	}

	customers, err := deps.CustomerStore.List(ctx, customerStore.ListFilter{})
	if err != nil {
		return SalesStatsResult{}, err
	}
	result.TotalCustomers = len(customers)
	for _, c := range customers {
		result.BookingTotal += parseAmount(c.BookingAmount)
	}

	return result, nil
}

// parseAmount reads a free-text money field, tolerating commas and blanks.
func parseAmount(raw string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
