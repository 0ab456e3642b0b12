// Package mapview owns the visual state of the plot map: one shape per
// plot, and the RenderSync gate that keeps shape appearance in lockstep
// with persisted status.
package mapview

import (
	"sync"
)

// FallbackStampLabel is the text synthesised onto a shape when the map
// graphic carries no stamp resource for the plot.
const FallbackStampLabel = "SOLD"

// Shape is the renderable state of one plot on the map.
type Shape struct {
	Fill          string
	StampVisible  bool
	StampResource string // id of the stamp graphic in the map asset, "" if absent
	FallbackLabel string // synthesised label shown when stamping without a resource
}

// Appearance summarises what an observer of the map sees for a shape.
type Appearance struct {
	Fill  string
	Stamp bool
}

// Canvas holds the shapes of the plot map. It knows nothing about the
// sales lifecycle; RenderSync decides what to draw.
type Canvas struct {
	mu     sync.RWMutex
	shapes map[string]*Shape
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{shapes: make(map[string]*Shape)}
}

// RegisterShape adds or replaces the shape for a plot.
// PRE: plotID is non-empty
// POST: Shape is present with the given fill; stamp hidden
func (c *Canvas) RegisterShape(plotID, fill, stampResource string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shapes[plotID] = &Shape{Fill: fill, StampResource: stampResource}
}

// SetFill sets a shape's fill color.
// POST: no-op for unknown plots
func (c *Canvas) SetFill(plotID, fill string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.shapes[plotID]; ok {
		s.Fill = fill
	}
}

// ShowStamp makes the plot's stamp visible, synthesising the fallback
// label when the map asset has no stamp resource for this plot.
func (c *Canvas) ShowStamp(plotID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.shapes[plotID]
	if !ok {
		return
	}
	s.StampVisible = true
	if s.StampResource == "" {
		s.FallbackLabel = FallbackStampLabel
	}
}

// HideStamp hides the stamp and removes any synthesised label.
func (c *Canvas) HideStamp(plotID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.shapes[plotID]; ok {
		s.StampVisible = false
		s.FallbackLabel = ""
	}
}

// Fill returns a shape's current fill color, "" for unknown plots.
func (c *Canvas) Fill(plotID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.shapes[plotID]; ok {
		return s.Fill
	}
	return ""
}

// AppearanceOf returns what the map currently shows for a plot.
func (c *Canvas) AppearanceOf(plotID string) (Appearance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.shapes[plotID]
	if !ok {
		return Appearance{}, false
	}
	return Appearance{Fill: s.Fill, Stamp: s.StampVisible}, true
}
