package asset

import (
	"image"

	"golang.org/x/image/draw"
)

// CropCover returns the centered part of img with the aspect ratio w:h, so
// that stretching it over a w×h box reproduces cover fitting.
func CropCover(img image.Image, w, h float64) image.Image {
	b := img.Bounds()
	if w <= 0 || h <= 0 || b.Empty() {
		return img
	}
	iw, ih := float64(b.Dx()), float64(b.Dy())
	cw, ch := iw, ih
	if iw/ih > w/h {
		cw = ih * w / h
	} else {
		ch = iw * h / w
	}
	x0 := b.Min.X + int((iw-cw)/2)
	y0 := b.Min.Y + int((ih-ch)/2)
	src := image.Rect(x0, y0, x0+max(1, int(cw)), y0+max(1, int(ch)))
	out := image.NewNRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Copy(out, image.Point{}, img, src, draw.Src, nil)
	return out
}

// Downscale shrinks img so neither side exceeds maxSide pixels. Smaller
// images are returned unchanged.
func Downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	s := float64(maxSide) / float64(max(b.Dx(), b.Dy()))
	out := image.NewNRGBA(image.Rect(0, 0, max(1, int(float64(b.Dx())*s)), max(1, int(float64(b.Dy())*s))))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}
