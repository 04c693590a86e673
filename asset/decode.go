package asset

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"

	"github.com/lvillar/layoutpdf"
)

// Decode turns raw bytes into a Ready asset. PDF documents are passed
// through untouched, JPEG is kept as is, and every other format is
// normalised to 8-bit non-interlaced PNG.
func Decode(data []byte) (*Asset, error) {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return &Asset{State: Ready, Data: data, Format: FormatPDF}, nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, layoutpdf.Errorf("asset.Decode", layoutpdf.ErrDecode, "%v", err)
	}
	if format == "jpeg" {
		return &Asset{State: Ready, Image: img, Data: data, Format: FormatJPG}, nil
	}
	return FromImage(img)
}

// FromImage wraps a decoded bitmap as a Ready PNG asset.
func FromImage(img image.Image) (*Asset, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &Asset{State: Ready, Image: img, Data: data, Format: FormatPNG}, nil
}

// EncodePNG writes img as 8-bit NRGBA PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	n, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		n = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(n, image.Point{}, img, b, draw.Src, nil)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, n); err != nil {
		return nil, fmt.Errorf("asset: encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
