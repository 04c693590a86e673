package vars

import (
	"time"

	"github.com/lvillar/layoutpdf/design"
)

// DateLayout is the format of sample dates.
const DateLayout = "02/01/2006"

// Sample returns a placeholder value for v, used for previews when no real
// value is supplied. It is never used on the export path.
func Sample(v design.TemplateVariable, now time.Time) string {
	switch v.Type {
	case design.VarText:
		label := v.Label
		if label == "" {
			label = v.Name
		}
		return "[" + label + "]"
	case design.VarDate:
		return now.Format(DateLayout)
	case design.VarNumber:
		return "123"
	case design.VarQR:
		return "https://example.com/" + v.Name
	}
	return ""
}

// Samples returns a sample for every declared variable, keeping defaults
// where they exist.
func Samples(declared []design.TemplateVariable, now time.Time) map[string]string {
	out := make(map[string]string, len(declared))
	for _, v := range declared {
		if v.Default != "" {
			out[v.Name] = v.Default
			continue
		}
		out[v.Name] = Sample(v, now)
	}
	return out
}
