// Package units converts between physical millimetres and device pixels.
//
// A device-pixel value is only meaningful together with the DPI that produced
// it: the editor works at a fixed on-screen DPI while export may use another.
// Callers always pass the DPI explicitly.
package units

import "math"

const (
	// MMPerInch is the number of millimetres in one inch.
	MMPerInch = 25.4

	// PointsPerInch is the PDF user-space resolution.
	PointsPerInch = 72.0

	// EditorDPI is the on-screen resolution of the editing surface.
	EditorDPI = 96.0

	// DefaultExportDPI is the resolution export coordinates are interpreted at
	// when a render target does not name one.
	DefaultExportDPI = 96.0
)

// MMToDevice converts millimetres to device pixels, rounded to the nearest integer.
func MMToDevice(mm, dpi float64) float64 {
	return math.Round(mm / MMPerInch * dpi)
}

// DeviceToMM converts device pixels to millimetres, rounded to the nearest integer.
func DeviceToMM(px, dpi float64) float64 {
	return math.Round(px / dpi * MMPerInch)
}

// PxToMM converts device pixels to millimetres without rounding.
func PxToMM(px, dpi float64) float64 {
	return px / dpi * MMPerInch
}

// MMToPx converts millimetres to device pixels without rounding.
func MMToPx(mm, dpi float64) float64 {
	return mm / MMPerInch * dpi
}

// MMToPt converts millimetres to PDF points.
func MMToPt(mm float64) float64 {
	return mm / MMPerInch * PointsPerInch
}

// PxToPt converts device pixels at dpi to PDF points. Font sizes authored in
// editor pixels go through here.
func PxToPt(px, dpi float64) float64 {
	return px / dpi * PointsPerInch
}
