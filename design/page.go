// Package design is the in-memory document model: a page configuration, an
// ordered bag of typed elements and the template variables the elements may
// bind to.
//
// The model serializes to the JSON form persisted by template repositories:
//
//	{
//	  "name": "Certificate",
//	  "page": {"width": 297, "height": 210, "orientation": "landscape",
//	           "margins": {"top": 10, "right": 10, "bottom": 10, "left": 10}},
//	  "elements": [{
//	    "id": "6b0f…", "type": "text", "name": "Recipient",
//	    "transform": {"x": 120, "y": 300, "width": 400, "height": 60, "zIndex": 2},
//	    "config": {"content": "Awarded to {{name}}", "fontSize": 32, "align": "center"}
//	  }],
//	  "variables": [{"name": "name", "label": "Recipient", "type": "text", "required": true}]
//	}
//
// Element ids and the {{name}} token convention are the only bit-exact
// contract external consumers rely on.
package design

import "strings"

// Orientation is the page orientation.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// FitMode controls how a bitmap is fitted into its box.
type FitMode string

const (
	FitCover   FitMode = "cover"
	FitContain FitMode = "contain"
	FitFill    FitMode = "fill"
	FitNone    FitMode = "none"
)

// Margins are the four page margins in millimetres.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Background is the optional page background. Image may be a data URI, a URL,
// a file path, or a PDF file whose first page is used.
type Background struct {
	Color string  `json:"color,omitempty"`
	Image string  `json:"image,omitempty"`
	Fit   FitMode `json:"fit,omitempty"` // cover, contain, fill (default: cover)
}

// PageConfig describes the physical page. Width and Height are stored without
// regard to orientation; Size swaps them to match Orientation.
type PageConfig struct {
	Width       float64     `json:"width"`  // mm
	Height      float64     `json:"height"` // mm
	Orientation Orientation `json:"orientation,omitempty"`
	Margins     Margins     `json:"margins"`
	Background  *Background `json:"background,omitempty"`
}

// Size returns the page width and height in millimetres, swapped when the
// stored dimensions contradict the orientation.
func (p PageConfig) Size() (w, h float64) {
	w, h = p.Width, p.Height
	switch p.Orientation {
	case Landscape:
		if h > w {
			w, h = h, w
		}
	case Portrait:
		if w > h {
			w, h = h, w
		}
	}
	return w, h
}

// Named page sizes in millimetres, portrait.
var pageSizes = map[string][2]float64{
	"a3":     {297, 420},
	"a4":     {210, 297},
	"a5":     {148, 210},
	"a6":     {105, 148},
	"letter": {215.9, 279.4},
	"legal":  {215.9, 355.6},
	"card":   {53.98, 85.6}, // ISO/IEC 7810 ID-1
}

// PageSize returns the dimensions of a named page size (A3, A4, A5, A6,
// Letter, Legal, Card). The lookup is case-insensitive.
func PageSize(name string) (w, h float64, ok bool) {
	s, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	return s[0], s[1], ok
}

// DefaultPage returns an A4 portrait page with 10 mm margins.
func DefaultPage() PageConfig {
	return PageConfig{
		Width:       210,
		Height:      297,
		Orientation: Portrait,
		Margins:     Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
	}
}

func (b *Background) clone() *Background {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
