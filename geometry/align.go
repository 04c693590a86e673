package geometry

import "fmt"

// AlignMode selects how AlignAll lines up a multi-selection.
type AlignMode string

const (
	AlignLeft   AlignMode = "left"
	AlignCenter AlignMode = "center"
	AlignRight  AlignMode = "right"
	AlignTop    AlignMode = "top"
	AlignMiddle AlignMode = "middle"
	AlignBottom AlignMode = "bottom"
)

// ParseAlignMode validates s.
func ParseAlignMode(s string) (AlignMode, error) {
	switch m := AlignMode(s); m {
	case AlignLeft, AlignCenter, AlignRight, AlignTop, AlignMiddle, AlignBottom:
		return m, nil
	}
	return "", fmt.Errorf("geometry: unknown align mode %q", s)
}

// AlignAll lines up boxes against their union. The result has the same
// length and order as boxes.
func AlignAll(boxes []Rect, mode AlignMode) []Rect {
	return AlignWithin(boxes, Union(boxes...), mode)
}

// AlignWithin lines up boxes against frame, typically the printable
// rectangle when a single element is selected.
func AlignWithin(boxes []Rect, frame Rect, mode AlignMode) []Rect {
	out := make([]Rect, len(boxes))
	for i, b := range boxes {
		switch mode {
		case AlignLeft:
			b.Left = frame.Left
		case AlignCenter:
			b.Left = frame.CenterX() - b.Width/2
		case AlignRight:
			b.Left = frame.Right() - b.Width
		case AlignTop:
			b.Top = frame.Top
		case AlignMiddle:
			b.Top = frame.CenterY() - b.Height/2
		case AlignBottom:
			b.Top = frame.Bottom() - b.Height
		}
		out[i] = b
	}
	return out
}
