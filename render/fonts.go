package render

import (
	"strconv"
	"strings"
)

// coreFamilies maps common font family names to the three families every
// PDF viewer provides.
var coreFamilies = map[string]string{
	"helvetica":        "helvetica",
	"arial":            "helvetica",
	"sans-serif":       "helvetica",
	"system-ui":        "helvetica",
	"roboto":           "helvetica",
	"open sans":        "helvetica",
	"inter":            "helvetica",
	"lato":             "helvetica",
	"montserrat":       "helvetica",
	"poppins":          "helvetica",
	"verdana":          "helvetica",
	"tahoma":           "helvetica",
	"trebuchet ms":     "helvetica",
	"calibri":          "helvetica",
	"segoe ui":         "helvetica",
	"times":            "times",
	"times new roman":  "times",
	"serif":            "times",
	"georgia":          "times",
	"garamond":         "times",
	"cambria":          "times",
	"palatino":         "times",
	"book antiqua":     "times",
	"merriweather":     "times",
	"playfair display": "times",
	"courier":          "courier",
	"courier new":      "courier",
	"monospace":        "courier",
	"consolas":         "courier",
	"menlo":            "courier",
	"roboto mono":      "courier",
	"source code pro":  "courier",
}

// normFamily lower-cases a CSS-style family list and keeps its first entry.
func normFamily(family string) string {
	if i := strings.IndexByte(family, ','); i >= 0 {
		family = family[:i]
	}
	return strings.ToLower(strings.Trim(strings.TrimSpace(family), `"'`))
}

// coreFamily maps family to helvetica, times or courier, falling back to
// helvetica.
func coreFamily(family string) string {
	if f, ok := coreFamilies[normFamily(family)]; ok {
		return f
	}
	return "helvetica"
}

// fontStyle builds the fpdf style string ("", "B", "I" or "BI") from CSS
// weight and style values.
func fontStyle(weight, style string) string {
	s := ""
	switch w := strings.ToLower(strings.TrimSpace(weight)); w {
	case "bold", "bolder":
		s = "B"
	default:
		if n, err := strconv.Atoi(w); err == nil && n >= 600 {
			s = "B"
		}
	}
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "italic", "oblique":
		s += "I"
	}
	return s
}
