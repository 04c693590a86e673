package geometry

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/layoutpdf/design"
)

func box(x, y, w, h float64) design.Transform {
	return design.Transform{X: x, Y: y, Width: w, Height: h}
}

func element(id string, t design.Transform) *design.Element {
	return &design.Element{ID: id, Type: design.TypeShape, Visible: true, Transform: t, Config: &design.ShapeConfig{}}
}

func TestPrintableRectA4(t *testing.T) {
	r := PrintableRect(design.DefaultPage(), 96)
	assert.Equal(t, Rect{Left: 38, Top: 38, Width: 718, Height: 1047}, r)

	land := design.DefaultPage()
	land.Orientation = design.Landscape
	r = PrintableRect(land, 96)
	assert.Equal(t, 1047.0, r.Width)
	assert.Equal(t, 718.0, r.Height)
}

func TestPrintableRectNeverNegative(t *testing.T) {
	p := design.PageConfig{Width: 10, Height: 10, Margins: design.Margins{Left: 8, Right: 8, Top: 8, Bottom: 8}}
	r := PrintableRect(p, 96)
	assert.Zero(t, r.Width)
	assert.Zero(t, r.Height)
}

func TestBoundingBoxRotation(t *testing.T) {
	b := BoundingBox(design.Transform{X: 100, Y: 100, Width: 40, Height: 20, Rotation: 90})
	assert.InDelta(t, 80, b.Left, 1e-9)
	assert.InDelta(t, 100, b.Top, 1e-9)
	assert.InDelta(t, 20, b.Width, 1e-9)
	assert.InDelta(t, 40, b.Height, 1e-9)

	b = BoundingBox(design.Transform{X: 10, Y: 10, Width: 40, Height: 20, Rotation: 360})
	assert.Equal(t, Rect{10, 10, 40, 20}, b)
}

func TestEnforceScalesDownOverflow(t *testing.T) {
	e := NewEngine(Rect{Left: 0, Top: 0, Width: 300, Height: 300})

	got := e.Enforce(box(50, 20, 400, 300))

	assert.LessOrEqual(t, got.Width, 300.0)
	assert.InDelta(t, 400.0/300.0, got.Width/got.Height, 1e-9, "aspect ratio preserved")
	assert.Equal(t, 300.0, got.Width)
	assert.Equal(t, 225.0, got.Height)
	assert.True(t, e.Printable.Contains(BoundingBox(got)))
}

func TestContainNeverResizes(t *testing.T) {
	e := NewEngine(Rect{Left: 10, Top: 10, Width: 300, Height: 300})

	got := e.Contain(box(-50, 500, 400, 100))

	assert.Equal(t, 400.0, got.Width)
	assert.Equal(t, 100.0, got.Height)
	assert.Equal(t, 10.0, got.X, "oversized element is pinned to the left edge")
	assert.Equal(t, 210.0, got.Y)
}

func TestEnforceContainmentProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 2000; i++ {
		e := NewEngine(Rect{
			Left:   rng.Float64() * 100,
			Top:    rng.Float64() * 100,
			Width:  10 + rng.Float64()*900,
			Height: 10 + rng.Float64()*900,
		})
		tr := design.Transform{
			X:        rng.Float64()*2000 - 1000,
			Y:        rng.Float64()*2000 - 1000,
			Width:    rng.Float64() * 1500,
			Height:   rng.Float64() * 1500,
			Rotation: float64(rng.IntN(8)) * 45,
		}
		got := e.Enforce(tr)
		require.Truef(t, e.Printable.Contains(BoundingBox(got)), "case %d: %+v in %+v", i, got, e.Printable)
	}
}

func TestSnapToGrid(t *testing.T) {
	e := NewEngine(Rect{Left: 5, Top: 5, Width: 500, Height: 500})
	e.Grid = Grid{Enabled: true, Size: 10}

	got := e.SnapToGrid(box(18, 31, 20, 20))
	assert.Equal(t, 15.0, got.X)
	assert.Equal(t, 35.0, got.Y)

	e.Grid.Enabled = false
	assert.Equal(t, box(18, 31, 20, 20), e.SnapToGrid(box(18, 31, 20, 20)))
}

func TestGuideThresholdBoundary(t *testing.T) {
	e := NewEngine(Rect{Width: 1000, Height: 1000})
	anchor := element("anchor", box(100, 100, 50, 50))

	got, guides := e.Align(box(157, 400, 40, 40), []*design.Element{anchor})
	assert.Equal(t, 150.0, got.X, "7px from the right edge snaps")
	require.Len(t, guides, 1)
	assert.Equal(t, Guide{Axis: AxisX, Position: 150, Source: "anchor"}, guides[0])

	got, guides = e.Align(box(159, 400, 40, 40), []*design.Element{anchor})
	assert.Equal(t, 159.0, got.X, "9px does not snap")
	assert.Empty(t, guides)
}

func TestGuidesPreferPageCenter(t *testing.T) {
	e := NewEngine(Rect{Width: 1000, Height: 1000})
	// Both the page center (500) and the other element's left edge (503) are
	// in range; the page center comes first.
	other := element("other", box(503, 700, 50, 50))

	got, guides := e.Align(box(481, 100, 40, 40), []*design.Element{other})
	assert.Equal(t, 480.0, got.X)
	require.NotEmpty(t, guides)
	assert.Equal(t, SourcePageCenter, guides[0].Source)
}

func TestGuidesIgnoreHiddenElements(t *testing.T) {
	e := NewEngine(Rect{Width: 1000, Height: 1000})
	hidden := element("hidden", box(100, 100, 50, 50))
	hidden.Visible = false

	got, guides := e.Align(box(155, 400, 40, 40), []*design.Element{hidden})
	assert.Equal(t, 155.0, got.X)
	assert.Empty(t, guides)
}

func TestMoveContainsAfterSnapping(t *testing.T) {
	e := NewEngine(Rect{Left: 20, Top: 20, Width: 200, Height: 200})
	e.Grid = Grid{Enabled: true, Size: 50}

	got, _ := e.Move(box(210, 210, 40, 40), nil)
	assert.True(t, e.Printable.Contains(BoundingBox(got)))
	assert.Equal(t, 40.0, got.Width)
}

func TestAlignAll(t *testing.T) {
	boxes := []Rect{{10, 10, 20, 20}, {50, 40, 10, 30}}

	left := AlignAll(boxes, AlignLeft)
	assert.Equal(t, 10.0, left[1].Left)
	assert.Equal(t, 40.0, left[1].Top)

	right := AlignAll(boxes, AlignRight)
	assert.Equal(t, 40.0, right[0].Left)
	assert.Equal(t, 50.0, right[1].Left)

	middle := AlignAll(boxes, AlignMiddle)
	assert.Equal(t, 40.0, middle[0].CenterY())
	assert.Equal(t, 40.0, middle[1].CenterY())

	_, err := ParseAlignMode("diagonal")
	assert.Error(t, err)
}

func TestUnion(t *testing.T) {
	u := Union(Rect{0, 0, 10, 10}, Rect{20, 5, 10, 20})
	assert.Equal(t, Rect{0, 0, 30, 25}, u)
	assert.Equal(t, Rect{}, Union())
}
