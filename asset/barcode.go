package asset

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/qr"
	pdf417 "github.com/ruudk/golang-pdf417"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/design"
)

// QREncoder is the QR-encoding capability the renderer and the editor
// consume. It may be absent; QR elements are then skipped.
type QREncoder interface {
	Encode(ctx context.Context, content string, sizePx int, level design.ECLevel) (image.Image, error)
}

// Symbol describes a 2D or linear code to encode.
type Symbol struct {
	Content    string
	SizePx     int
	Level      design.ECLevel
	Symbology  design.Symbology
	Foreground string // color, black when empty
	Background string // color, white when empty
}

// SymbolEncoder is a QREncoder that also handles other symbologies and
// colors.
type SymbolEncoder interface {
	QREncoder
	EncodeSymbol(ctx context.Context, s Symbol) (image.Image, error)
}

// pdf417Columns is the number of data columns used for PDF417 codes.
const pdf417Columns = 10

// BarcodeEncoder encodes QR, PDF417, DataMatrix and Code128 symbols.
type BarcodeEncoder struct{}

// NewBarcodeEncoder returns the default symbol encoder.
func NewBarcodeEncoder() *BarcodeEncoder { return &BarcodeEncoder{} }

// Encode implements QREncoder.
func (e *BarcodeEncoder) Encode(ctx context.Context, content string, sizePx int, level design.ECLevel) (image.Image, error) {
	return e.EncodeSymbol(ctx, Symbol{Content: content, SizePx: sizePx, Level: level, Symbology: design.SymbologyQR})
}

// EncodeSymbol implements SymbolEncoder. The result is at least sizePx wide;
// codes whose modules do not fit are returned at their native size.
func (e *BarcodeEncoder) EncodeSymbol(ctx context.Context, s Symbol) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Content == "" {
		return nil, layoutpdf.Errorf("asset.EncodeSymbol", layoutpdf.ErrInvalidParam, "empty content")
	}

	var (
		bc  barcode.Barcode
		err error
	)
	switch s.Symbology {
	case "", design.SymbologyQR:
		bc, err = qr.Encode(s.Content, qrLevel(s.Level), qr.Auto)
	case design.SymbologyDataMatrix:
		bc, err = datamatrix.Encode(s.Content)
	case design.SymbologyCode128:
		bc, err = code128.Encode(s.Content)
	case design.SymbologyPDF417:
		bc = pdf417.Encode(s.Content, pdf417Columns, pdf417Security(s.Level))
	default:
		return nil, layoutpdf.Errorf("asset.EncodeSymbol", layoutpdf.ErrUnsupported, "symbology %q", s.Symbology)
	}
	if err != nil {
		return nil, fmt.Errorf("asset: encoding %s: %w", s.Symbology, err)
	}

	native := bc.Bounds()
	w := max(s.SizePx, native.Dx())
	h := w
	switch s.Symbology {
	case design.SymbologyCode128:
		h = max(native.Dy(), w/3)
	case design.SymbologyPDF417:
		h = max(native.Dy(), w*native.Dy()/max(1, native.Dx()))
	}
	if scaled, err := barcode.Scale(bc, w, h); err == nil {
		bc = scaled
	}
	return recolor(bc, s.Foreground, s.Background), nil
}

func qrLevel(l design.ECLevel) qr.ErrorCorrectionLevel {
	switch l {
	case design.ECLevelL:
		return qr.L
	case design.ECLevelQ:
		return qr.Q
	case design.ECLevelH:
		return qr.H
	}
	return qr.M
}

func pdf417Security(l design.ECLevel) int {
	switch l {
	case design.ECLevelL:
		return 1
	case design.ECLevelQ:
		return 4
	case design.ECLevelH:
		return 5
	}
	return 2
}

// recolor paints dark modules with fg and light ones with bg.
func recolor(img image.Image, fg, bg string) *image.NRGBA {
	dark := toNRGBA(fg, color.NRGBA{A: 255})
	light := toNRGBA(bg, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := light
			if g := color.GrayModel.Convert(img.At(x, y)).(color.Gray); g.Y < 128 {
				c = dark
			}
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}

func toNRGBA(s string, def color.NRGBA) color.NRGBA {
	c, a, ok := design.ParseColor(s)
	if !ok {
		return def
	}
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: uint8(a*255 + 0.5)}
}
