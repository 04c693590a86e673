// Package geometry keeps design elements inside the printable area of a page
// and offers grid and guide snapping while they are moved.
//
// All coordinates are device pixels at the editor DPI, with the origin at the
// top-left corner of the page and y growing downwards.
package geometry

import (
	"math"

	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/units"
)

// epsilon absorbs float error when comparing edges.
const epsilon = 1e-6

// Rect is an axis-aligned rectangle.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64   { return r.Left + r.Width }
func (r Rect) Bottom() float64  { return r.Top + r.Height }
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left-epsilon &&
		o.Top >= r.Top-epsilon &&
		o.Right() <= r.Right()+epsilon &&
		o.Bottom() <= r.Bottom()+epsilon
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Union returns the smallest rectangle covering every rect in rs. The union
// of nothing is the zero Rect.
func Union(rs ...Rect) Rect {
	if len(rs) == 0 {
		return Rect{}
	}
	l, t := rs[0].Left, rs[0].Top
	r, b := rs[0].Right(), rs[0].Bottom()
	for _, x := range rs[1:] {
		l = math.Min(l, x.Left)
		t = math.Min(t, x.Top)
		r = math.Max(r, x.Right())
		b = math.Max(b, x.Bottom())
	}
	return Rect{Left: l, Top: t, Width: r - l, Height: b - t}
}

// PageRect returns the full page in device pixels at dpi.
func PageRect(page design.PageConfig, dpi float64) Rect {
	w, h := page.Size()
	return Rect{Width: units.MMToDevice(w, dpi), Height: units.MMToDevice(h, dpi)}
}

// PrintableRect returns the page rectangle shrunk by its margins, all
// converted to device pixels at dpi. It never has a negative size.
func PrintableRect(page design.PageConfig, dpi float64) Rect {
	p := PageRect(page, dpi)
	m := page.Margins
	left := units.MMToDevice(m.Left, dpi)
	top := units.MMToDevice(m.Top, dpi)
	right := units.MMToDevice(m.Right, dpi)
	bottom := units.MMToDevice(m.Bottom, dpi)
	return Rect{
		Left:   left,
		Top:    top,
		Width:  math.Max(0, p.Width-left-right),
		Height: math.Max(0, p.Height-top-bottom),
	}
}

// BoundingBox returns the axis-aligned box covering t after rotating it
// clockwise by t.Rotation degrees about its top-left corner.
func BoundingBox(t design.Transform) Rect {
	t = t.Normalize()
	if math.Mod(t.Rotation, 360) == 0 {
		return Rect{Left: t.X, Top: t.Y, Width: t.Width, Height: t.Height}
	}
	sin, cos := math.Sincos(t.Rotation * math.Pi / 180)
	xs := [4]float64{0, t.Width * cos, -t.Height * sin, t.Width*cos - t.Height*sin}
	ys := [4]float64{0, t.Width * sin, t.Height * cos, t.Width*sin + t.Height*cos}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	return Rect{Left: t.X + minX, Top: t.Y + minY, Width: maxX - minX, Height: maxY - minY}
}
