// Package asset materializes the bitmaps behind image and QR elements.
//
// Loading an image source and encoding a QR payload are the only slow
// operations in the system. Both produce an Asset, which starts Pending and
// settles as Ready or Failed; callers decide whether a settled asset is still
// wanted by comparing its Source with the element's current source.
package asset

import (
	"context"
	"image"
)

// State is the materialization state of an asset.
type State int

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// PDF-native formats an Asset's Data may hold.
const (
	FormatPNG = "PNG"
	FormatJPG = "JPG"
	FormatPDF = "PDF"
)

// Asset is a loaded source.
type Asset struct {
	State  State
	Source string      // the source string or QR payload it was built from
	Image  image.Image // nil for PDF assets
	Data   []byte      // bytes the PDF engine can embed, in Format
	Format string
	Err    error
}

// Size returns the natural size in pixels, or zeros when not decoded.
func (a *Asset) Size() (w, h int) {
	if a == nil || a.Image == nil {
		return 0, 0
	}
	b := a.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Loader turns a source string into a Ready asset.
type Loader interface {
	Load(ctx context.Context, src string) (*Asset, error)
}

// Fail returns a Failed asset for src.
func Fail(src string, err error) *Asset {
	return &Asset{State: Failed, Source: src, Err: err}
}
