// Package registry holds the in-memory view of persisted plot state.
// The persistence layer is the source of truth; this is a read-through
// cache loaded at startup and refreshed after each committed mutation.
package registry

import (
	"sort"
	"sync"

	"plotmap/internal/domain/plot"
)

// PlotRegistry maps plot id to the last persisted plot record. Read-mostly:
// tooltips and dashboards read it freely, and the only status writer is
// RenderSync.Commit (plus the initial bulk Load).
type PlotRegistry struct {
	mu    sync.RWMutex
	plots map[string]plot.Plot
}

// New creates an empty PlotRegistry.
func New() *PlotRegistry {
	return &PlotRegistry{plots: make(map[string]plot.Plot)}
}

// Load replaces the registry contents with a fresh bulk fetch.
// PRE: plots came from the persistence layer
// POST: Registry holds exactly the given plots
func (r *PlotRegistry) Load(plots []plot.Plot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plots = make(map[string]plot.Plot, len(plots))
	for _, p := range plots {
		r.plots[p.ID] = p
	}
}

// Get retrieves a plot record by id.
// POST: Returns the record and true, or a zero record and false
func (r *PlotRegistry) Get(id string) (plot.Plot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plots[id]
	return p, ok
}

// Status returns the persisted status of a plot. Unknown plots read as
// available so that callers never see a fifth state.
func (r *PlotRegistry) Status(id string) plot.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.plots[id]; ok {
		return p.Status
	}
	return plot.StatusAvailable
}

// SetStatus records a committed status change. RenderSync.Commit is the
// only caller; going through it keeps the rendered appearance and the
// registry in lockstep.
// PRE: the write behind status has been acknowledged by the store
// POST: Status updated; no-op for unknown ids
func (r *PlotRegistry) SetStatus(id string, status plot.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plots[id]
	if !ok {
		return
	}
	p.Status = status
	r.plots[id] = p
}

// Update replaces a single plot record after a committed detail edit
// (price, area, facing). The status field of the stored record is kept —
// detail edits never move the lifecycle.
// POST: record stored with its previous status preserved
func (r *PlotRegistry) Update(p plot.Plot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.plots[p.ID]; ok {
		p.Status = prev.Status
	}
	r.plots[p.ID] = p
}

// Snapshot returns all plots ordered by title, for dashboards and export.
// POST: Returned slice is a copy; mutating it does not affect the registry
func (r *PlotRegistry) Snapshot() []plot.Plot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]plot.Plot, 0, len(r.plots))
	for _, p := range r.plots {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// Len returns the number of plots loaded.
func (r *PlotRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plots)
}
