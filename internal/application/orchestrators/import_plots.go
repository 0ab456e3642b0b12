package orchestrators

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	plotStore "plotmap/internal/adapters/storage/plot"
	domain "plotmap/internal/domain/plot"
)

// ImportPlotsInput carries the parsed CSV reader and import options.
// PRE: Reader is a valid CSV stream with a header row.
// POST: Returns aggregate counts and per-row errors; writes are skipped when DryRun=true.
// INVARIANT: Import never touches the status column of an existing plot —
// status moves only through the customer write path.
type ImportPlotsInput struct {
	Reader io.Reader
	DryRun bool
}

// ImportPlotsResult holds aggregate counts and per-row errors from an import run.
type ImportPlotsResult struct {
	Total   int
	Created int
	Updated int
	Errors  []ImportPlotsRowError
	DryRun  bool
	Unknown []string
}

// ImportPlotsRowError describes a validation or processing error for a single CSV row.
type ImportPlotsRowError struct {
	Row     int
	Message string
}

// ImportPlotsValidationError reports a CSV-level problem such as a missing column.
type ImportPlotsValidationError struct {
	Message string
}

func (e *ImportPlotsValidationError) Error() string {
	return e.Message
}

// ImportPlotsDeps holds external dependencies for the import orchestrator.
type ImportPlotsDeps struct {
	PlotStore  plotStore.Store
	GenerateID func() string
}

// ExecuteImportPlots parses a CSV stream and creates or updates plot listings.
// PRE: Input.Reader contains a valid CSV with at least ID and TITLE columns.
// POST: Plots are created or their listing details updated; aggregate counts
// and per-row errors are returned.
// INVARIANT: When DryRun=true no writes occur; existing plot statuses are preserved.
func ExecuteImportPlots(ctx context.Context, input ImportPlotsInput, deps ImportPlotsDeps) (ImportPlotsResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return ImportPlotsResult{}, err
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}

	if _, ok := colIdx["ID"]; !ok {
		return ImportPlotsResult{}, &ImportPlotsValidationError{Message: "CSV missing required column: ID"}
	}
	if _, ok := colIdx["TITLE"]; !ok {
		return ImportPlotsResult{}, &ImportPlotsValidationError{Message: "CSV missing required column: TITLE"}
	}

	known := map[string]bool{
		"ID": true, "TITLE": true, "PLOTNUM": true, "STAMPNUM": true,
		"VISIBLEID": true, "PRICE": true, "SQFT": true, "CENT": true, "FACING": true,
	}
	var unknownCols []string
	for _, h := range header {
		if !known[strings.ToUpper(strings.TrimSpace(h))] {
			unknownCols = append(unknownCols, h)
		}
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	getFloat := func(row []string, col string) (float64, error) {
		raw := getCol(row, col)
		if raw == "" {
			return 0, nil
		}
		return strconv.ParseFloat(raw, 64)
	}

	result := ImportPlotsResult{DryRun: input.DryRun, Unknown: unknownCols}
	rowNum := 1

	for {
		row, err := cr.Read()
		if err != nil {
			break
		}
		rowNum++
		result.Total++

		p := domain.Plot{
			ID:        getCol(row, "ID"),
			Title:     getCol(row, "TITLE"),
			PlotNum:   getCol(row, "PLOTNUM"),
			StampNum:  getCol(row, "STAMPNUM"),
			VisibleID: getCol(row, "VISIBLEID"),
			Facing:    getCol(row, "FACING"),
			Status:    domain.StatusAvailable,
		}
		if p.ID == "" {
			result.Errors = append(result.Errors, ImportPlotsRowError{Row: rowNum, Message: "id is required"})
			continue
		}
		var badNum bool
		for _, col := range []struct {
			name string
			dst  *float64
		}{
			{"PRICE", &p.Price},
			{"SQFT", &p.Sqft},
			{"CENT", &p.Cent},
		} {
			v, err := getFloat(row, col.name)
			if err != nil {
				result.Errors = append(result.Errors, ImportPlotsRowError{Row: rowNum, Message: fmt.Sprintf("invalid %s: %s", strings.ToLower(col.name), getCol(row, col.name))})
				badNum = true
				break
			}
			*col.dst = v
		}
		if badNum {
			continue
		}
		if err := p.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportPlotsRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		existing, err := deps.PlotStore.GetByID(ctx, p.ID)
		switch {
		case err == nil:
			result.Updated++
			if input.DryRun {
				continue
			}
			// listing details only; status stays whatever it is
			p.Status = existing.Status
			if err := deps.PlotStore.UpdateDetails(ctx, p); err != nil {
				result.Errors = append(result.Errors, ImportPlotsRowError{Row: rowNum, Message: err.Error()})
				result.Updated--
			}
		default:
			result.Created++
			if input.DryRun {
				continue
			}
			if err := deps.PlotStore.Save(ctx, p); err != nil {
				result.Errors = append(result.Errors, ImportPlotsRowError{Row: rowNum, Message: err.Error()})
				result.Created--
			}
		}
	}

	slog.Info("plot_import",
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"errors", len(result.Errors),
		"dry_run", result.DryRun,
	)
	return result, nil
}
