package geometry

import (
	"math"

	"github.com/lvillar/layoutpdf/design"
)

// DefaultThreshold is the guide snap distance in pixels.
const DefaultThreshold = 8

// Grid configures grid snapping.
type Grid struct {
	Enabled bool
	Size    float64 // pitch in pixels
}

// Guides configures smart alignment guides.
type Guides struct {
	Enabled   bool
	Threshold float64 // snap when the distance is strictly below this
}

// Engine applies margin containment, grid snapping and alignment guides to
// element transforms. The zero Engine has an empty printable area; use
// NewEngine.
type Engine struct {
	Printable Rect
	Grid      Grid
	Guides    Guides
}

// NewEngine returns an engine for the given printable rectangle with guides
// on at the default threshold and the grid off.
func NewEngine(printable Rect) Engine {
	return Engine{
		Printable: printable,
		Guides:    Guides{Enabled: true, Threshold: DefaultThreshold},
	}
}

// Contain shifts t so its bounding box lies inside the printable rectangle.
// It never resizes; an element larger than the rectangle ends up aligned to
// its left and top edges. Used while dragging.
func (e Engine) Contain(t design.Transform) design.Transform {
	t = t.Normalize()
	b := BoundingBox(t)
	r := e.Printable
	t.X += clampDelta(b.Left, b.Right(), r.Left, r.Right())
	t.Y += clampDelta(b.Top, b.Bottom(), r.Top, r.Bottom())
	return t
}

func clampDelta(lo, hi, from, to float64) float64 {
	switch {
	case lo < from:
		return from - lo
	case hi > to:
		return to - hi
	}
	return 0
}

// Enforce is the authoritative containment applied once an edit settles: an
// element whose bounding box overflows the printable rectangle on either
// axis is scaled down uniformly until it fits, then clamped inside.
func (e Engine) Enforce(t design.Transform) design.Transform {
	t = t.Normalize()
	b := BoundingBox(t)
	r := e.Printable
	s := 1.0
	if b.Width > r.Width && b.Width > 0 {
		s = math.Min(s, r.Width/b.Width)
	}
	if b.Height > r.Height && b.Height > 0 {
		s = math.Min(s, r.Height/b.Height)
	}
	if s < 1 {
		t.Width *= s
		t.Height *= s
	}
	return e.Contain(t)
}

// SnapToGrid rounds the offset of t from the printable origin to the nearest
// multiple of the grid pitch on each axis. It is a no-op when the grid is off.
func (e Engine) SnapToGrid(t design.Transform) design.Transform {
	g := e.Grid.Size
	if !e.Grid.Enabled || g <= 0 {
		return t
	}
	r := e.Printable
	t.X = r.Left + math.Round((t.X-r.Left)/g)*g
	t.Y = r.Top + math.Round((t.Y-r.Top)/g)*g
	return t
}

// Move runs the live-drag pipeline for a proposed transform: grid snapping,
// then guide alignment against others, then containment. Containment always
// runs last so no snap can leave the printable rectangle. Move never resizes.
func (e Engine) Move(t design.Transform, others []*design.Element) (design.Transform, []Guide) {
	t = e.SnapToGrid(t)
	var guides []Guide
	if e.Guides.Enabled {
		t, guides = e.Align(t, others)
	}
	return e.Contain(t), guides
}
