package mapview

import (
	"plotmap/internal/application/registry"
	"plotmap/internal/domain/plot"
)

// RenderSync is the only component allowed to change a plot shape's
// appearance. Preview paints a provisional state while an edit session is
// open; Commit paints the same state AND writes the status into the
// registry, and is invoked only after the persistence layer acknowledged
// the write. There is no path on which the registry's status and the
// shape's committed appearance can diverge.
type RenderSync struct {
	canvas   *Canvas
	registry *registry.PlotRegistry
}

// NewRenderSync binds a canvas and a registry.
func NewRenderSync(canvas *Canvas, reg *registry.PlotRegistry) *RenderSync {
	return &RenderSync{canvas: canvas, registry: reg}
}

// Preview paints the appearance of status onto the shape without touching
// the registry. Issued on every status selection inside an open session;
// each call overwrites the previous preview. The stamp is never shown on
// preview — it appears only after a confirmed save.
func (rs *RenderSync) Preview(plotID string, status plot.Status) {
	a := plot.AppearanceOf(status)
	rs.canvas.SetFill(plotID, a.Fill)
	rs.canvas.HideStamp(plotID)
}

// Commit paints the appearance of status and records it in the registry.
// PRE: the remote write carrying status was acknowledged
// POST: shape appearance and registry status agree
func (rs *RenderSync) Commit(plotID string, status plot.Status) {
	a := plot.AppearanceOf(status)
	rs.canvas.SetFill(plotID, a.Fill)
	if a.Stamp {
		rs.canvas.ShowStamp(plotID)
	} else {
		rs.canvas.HideStamp(plotID)
	}
	rs.registry.SetStatus(plotID, status)
}

// Revert repaints the appearance of the status that was persisted when
// the session opened, undoing any preview. Used on cancel and on commit
// failure; the registry is not touched because it was never changed.
func (rs *RenderSync) Revert(plotID string, original plot.Status) {
	rs.Apply(plotID, original)
}

// Apply paints the appearance of an already-persisted status, used during
// the initial bulk load to make the map reflect the registry.
func (rs *RenderSync) Apply(plotID string, status plot.Status) {
	a := plot.AppearanceOf(status)
	rs.canvas.SetFill(plotID, a.Fill)
	if a.Stamp {
		rs.canvas.ShowStamp(plotID)
	} else {
		rs.canvas.HideStamp(plotID)
	}
}
