package plot_test

import (
	"testing"

	"plotmap/internal/domain/plot"
)

// TestPlotValidation tests validation of Plot.
func TestPlotValidation(t *testing.T) {
	tests := []struct {
		name    string
		plot    plot.Plot
		wantErr bool
	}{
		{
			name: "valid plot",
			plot: plot.Plot{
				ID:     "plot-12",
				Title:  "Plot 12",
				Price:  250000,
				Sqft:   1200,
				Facing: "East",
				Status: plot.StatusAvailable,
			},
			wantErr: false,
		},
		{
			name: "valid registered plot",
			plot: plot.Plot{
				ID:     "plot-3",
				Title:  "Plot 3",
				Status: plot.StatusRegistered,
			},
			wantErr: false,
		},
		{
			name: "empty title",
			plot: plot.Plot{
				ID:     "plot-12",
				Title:  "  ",
				Status: plot.StatusAvailable,
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			plot: plot.Plot{
				ID:     "plot-12",
				Title:  "Plot 12",
				Status: plot.Status("sold"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plot.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestParseStatus verifies boundary normalisation of legacy spellings.
func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    plot.Status
		wantErr bool
	}{
		{"available", plot.StatusAvailable, false},
		{"", plot.StatusAvailable, false},
		{"Reserved", plot.StatusReserved, false},
		{"booked", plot.StatusBooked, false},
		{"progress", plot.StatusBooked, false},
		{"registered", plot.StatusRegistered, false},
		{"register", plot.StatusRegistered, false},
		{"Registration Done", plot.StatusRegistered, false},
		{"booked-registered", plot.StatusRegistered, false},
		{"sold", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := plot.ParseStatus(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// TestDisplayLabel verifies the operator-facing labels.
func TestDisplayLabel(t *testing.T) {
	if got := plot.DisplayLabel(plot.StatusRegistered); got != "Registration Done" {
		t.Errorf("DisplayLabel(registered) = %q", got)
	}
	if got := plot.DisplayLabel(plot.StatusAvailable); got != "Available" {
		t.Errorf("DisplayLabel(available) = %q", got)
	}
}

// TestAppearanceOf verifies the status to appearance mapping.
func TestAppearanceOf(t *testing.T) {
	tests := []struct {
		status    plot.Status
		wantFill  string
		wantStamp bool
	}{
		{plot.StatusAvailable, plot.FillFree, false},
		{plot.StatusReserved, plot.FillPending, false},
		{plot.StatusBooked, plot.FillSold, false},
		{plot.StatusRegistered, plot.FillSold, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			a := plot.AppearanceOf(tt.status)
			if a.Fill != tt.wantFill {
				t.Errorf("fill = %q, want %q", a.Fill, tt.wantFill)
			}
			if a.Stamp != tt.wantStamp {
				t.Errorf("stamp = %v, want %v", a.Stamp, tt.wantStamp)
			}
		})
	}
}
