package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/design"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadDataURI(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t, 30, 20))

	a, err := NewLoader().Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, Ready, a.State)
	assert.Equal(t, FormatPNG, a.Format)
	assert.Equal(t, src, a.Source)
	w, h := a.Size()
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)
}

func TestLoadFileRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), testPNG(t, 8, 8), 0o644))

	a, err := NewLoader(WithBaseDir(dir)).Load(context.Background(), "logo.png")
	require.NoError(t, err)
	assert.Equal(t, Ready, a.State)

	_, err = NewLoader(WithBaseDir(dir)).Load(context.Background(), "missing.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, layoutpdf.ErrNotFound))
}

func TestLoadHTTP(t *testing.T) {
	body := testPNG(t, 4, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	a, err := l.Load(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, Ready, a.State)

	a, err = l.Load(context.Background(), srv.URL+"/nope.png")
	require.Error(t, err)
	assert.Equal(t, Failed, a.State)
	assert.True(t, errors.Is(err, layoutpdf.ErrNotFound))
}

func TestLoadRespectsMaxBytes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.png"), testPNG(t, 64, 64), 0o644))

	_, err := NewLoader(WithBaseDir(dir), WithMaxBytes(16)).Fetch(context.Background(), "big.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, layoutpdf.ErrInvalidParam))
}

func TestLoadEmptySource(t *testing.T) {
	a, err := NewLoader().Load(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, layoutpdf.ErrNoSource))
	assert.Equal(t, Failed, a.State)
}

func TestDecodeNormalisesBMPToPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 5, 3))))

	a, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, a.Format)
	assert.True(t, bytes.HasPrefix(a.Data, []byte("\x89PNG")))
	w, h := a.Size()
	assert.Equal(t, 5, w)
	assert.Equal(t, 3, h)
}

func TestDecodePassesPDFThrough(t *testing.T) {
	a, err := Decode([]byte("%PDF-1.4\n%%EOF"))
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, a.Format)
	assert.Nil(t, a.Image)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, layoutpdf.ErrDecode))
}

func TestCropCover(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	got := CropCover(img, 50, 50)
	assert.Equal(t, image.Rect(0, 0, 100, 100), got.Bounds())

	got = CropCover(img, 400, 100)
	assert.Equal(t, image.Rect(0, 0, 200, 50), got.Bounds())
}

func TestDownscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 200))
	assert.Equal(t, image.Rect(0, 0, 100, 50), Downscale(img, 100).Bounds())
	assert.Same(t, img, Downscale(img, 1000))
}

func TestBarcodeEncoderQR(t *testing.T) {
	img, err := NewBarcodeEncoder().Encode(context.Background(), "https://example.com", 128, design.ECLevelH)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 128, 128), img.Bounds())
}

func TestBarcodeEncoderSymbologies(t *testing.T) {
	enc := NewBarcodeEncoder()
	for _, sym := range []design.Symbology{design.SymbologyDataMatrix, design.SymbologyCode128, design.SymbologyPDF417} {
		img, err := enc.EncodeSymbol(context.Background(), Symbol{Content: "LAYOUT-42", SizePx: 120, Symbology: sym})
		require.NoError(t, err, sym)
		assert.GreaterOrEqual(t, img.Bounds().Dx(), 120, sym)
	}

	_, err := enc.EncodeSymbol(context.Background(), Symbol{Content: "x", Symbology: "aztec"})
	assert.True(t, errors.Is(err, layoutpdf.ErrUnsupported))
}

func TestPDF417ErrorCorrectionLevels(t *testing.T) {
	enc := NewBarcodeEncoder()
	for _, level := range []design.ECLevel{"", design.ECLevelL, design.ECLevelM, design.ECLevelQ, design.ECLevelH} {
		img, err := enc.EncodeSymbol(context.Background(), Symbol{Content: "LAYOUT-42", SizePx: 160, Symbology: design.SymbologyPDF417, Level: level})
		require.NoError(t, err, level)
		assert.GreaterOrEqual(t, img.Bounds().Dx(), 160, level)
	}
	assert.Equal(t, 2, pdf417Security(""))
	assert.Equal(t, 5, pdf417Security(design.ECLevelH))
}

func TestBarcodeEncoderColors(t *testing.T) {
	img, err := NewBarcodeEncoder().EncodeSymbol(context.Background(), Symbol{
		Content:    "colors",
		SizePx:     64,
		Foreground: "#ff0000",
		Background: "#0000ff",
	})
	require.NoError(t, err)
	seen := map[color.NRGBA]bool{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			seen[color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)] = true
		}
	}
	assert.Equal(t, map[color.NRGBA]bool{
		{R: 255, A: 255}: true,
		{B: 255, A: 255}: true,
	}, seen)
}

func TestBarcodeEncoderRejects(t *testing.T) {
	enc := NewBarcodeEncoder()
	_, err := enc.Encode(context.Background(), "", 64, design.ECLevelM)
	assert.True(t, errors.Is(err, layoutpdf.ErrInvalidParam))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = enc.Encode(ctx, "x", 64, design.ECLevelM)
	assert.ErrorIs(t, err, context.Canceled)
}
