package geometry

import (
	"math"

	"github.com/lvillar/layoutpdf/design"
)

// Axis names the direction a guide measures along.
type Axis string

const (
	AxisX Axis = "x" // vertical guide line at an x coordinate
	AxisY Axis = "y" // horizontal guide line at a y coordinate
)

// Guide sources other than element ids.
const (
	SourcePageCenter = "page-center"
	SourcePageEdge   = "page-edge"
)

// Guide is a transient alignment line shown while an element is moved.
// Source is SourcePageCenter, SourcePageEdge or the id of the element the
// line was taken from.
type Guide struct {
	Axis     Axis
	Position float64
	Source   string
}

type candidate struct {
	moving float64 // coordinate on the moving box
	target float64
	source string
}

// Align snaps t independently on each axis to the first candidate closer
// than the threshold. Candidates are evaluated in a fixed order: the printable
// rectangle's center, its edges, then the edges and centers of every other
// visible element in document order. Containers and backgrounds are ignored.
func (e Engine) Align(t design.Transform, others []*design.Element) (design.Transform, []Guide) {
	th := e.Guides.Threshold
	if th <= 0 {
		th = DefaultThreshold
	}
	m := BoundingBox(t)
	r := e.Printable

	xs := []candidate{
		{m.CenterX(), r.CenterX(), SourcePageCenter},
		{m.Left, r.Left, SourcePageEdge},
		{m.Right(), r.Right(), SourcePageEdge},
	}
	ys := []candidate{
		{m.CenterY(), r.CenterY(), SourcePageCenter},
		{m.Top, r.Top, SourcePageEdge},
		{m.Bottom(), r.Bottom(), SourcePageEdge},
	}
	for _, o := range others {
		if o == nil || !o.Visible || o.Type == design.TypeContainer || o.Type == design.TypeBackground {
			continue
		}
		b := BoundingBox(o.Transform)
		xs = append(xs,
			candidate{m.Left, b.Left, o.ID},
			candidate{m.Left, b.Right(), o.ID},
			candidate{m.Right(), b.Right(), o.ID},
			candidate{m.Right(), b.Left, o.ID},
			candidate{m.CenterX(), b.CenterX(), o.ID},
		)
		ys = append(ys,
			candidate{m.Top, b.Top, o.ID},
			candidate{m.Top, b.Bottom(), o.ID},
			candidate{m.Bottom(), b.Bottom(), o.ID},
			candidate{m.Bottom(), b.Top, o.ID},
			candidate{m.CenterY(), b.CenterY(), o.ID},
		)
	}

	var guides []Guide
	if c, ok := firstWithin(xs, th); ok {
		t.X += c.target - c.moving
		guides = append(guides, Guide{Axis: AxisX, Position: c.target, Source: c.source})
	}
	if c, ok := firstWithin(ys, th); ok {
		t.Y += c.target - c.moving
		guides = append(guides, Guide{Axis: AxisY, Position: c.target, Source: c.source})
	}
	return t, guides
}

func firstWithin(cs []candidate, th float64) (candidate, bool) {
	for _, c := range cs {
		if math.Abs(c.target-c.moving) < th {
			return c, true
		}
	}
	return candidate{}, false
}
