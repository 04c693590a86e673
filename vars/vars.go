// Package vars resolves {{name}} tokens in text and QR content against a
// map of runtime values.
//
// Unknown tokens are left verbatim, braces included, so a template rendered
// with partial data still shows which values were missing.
package vars

import (
	"regexp"
	"sort"

	"github.com/lvillar/layoutpdf/design"
)

var tokenRe = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Substitute replaces every {{name}} whose name is a key of values.
func Substitute(text string, values map[string]string) string {
	if len(values) == 0 {
		return text
	}
	return tokenRe.ReplaceAllStringFunc(text, func(tok string) string {
		if v, ok := values[tok[2:len(tok)-2]]; ok {
			return v
		}
		return tok
	})
}

// Tokens returns the distinct names referenced by text, in order of first
// appearance.
func Tokens(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range tokenRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// effective applies a dynamic binding before token substitution, so a bound
// value may itself carry further tokens.
func effective(content string, dynamic bool, name string, values map[string]string) string {
	if dynamic && name != "" {
		if v, ok := values[name]; ok {
			content = v
		}
	}
	return Substitute(content, values)
}

// EffectiveText returns what a text element displays for values.
func EffectiveText(c *design.TextConfig, values map[string]string) string {
	if c == nil {
		return ""
	}
	return effective(c.Content, c.IsDynamic, c.VariableName, values)
}

// EffectiveQR returns the payload a QR element encodes for values.
func EffectiveQR(c *design.QRConfig, values map[string]string) string {
	if c == nil {
		return ""
	}
	return effective(c.Content, c.IsDynamic, c.VariableName, values)
}

// EffectiveImageSource returns the source an image element loads. A dynamic
// binding takes precedence over the literal source; an empty result means
// nothing resolves and the element is skipped.
func EffectiveImageSource(c *design.ImageConfig, values map[string]string) string {
	if c == nil {
		return ""
	}
	if c.IsDynamic && c.VariableName != "" {
		if v := values[c.VariableName]; v != "" {
			return v
		}
	}
	return c.Src
}

// Resolve merges supplied values over the declared defaults and returns the
// names of required variables that still have no value, sorted.
func Resolve(declared []design.TemplateVariable, supplied map[string]string) (map[string]string, []string) {
	out := make(map[string]string, len(declared)+len(supplied))
	for _, v := range declared {
		if v.Default != "" {
			out[v.Name] = v.Default
		}
	}
	for k, v := range supplied {
		out[k] = v
	}
	var missing []string
	for _, v := range declared {
		if v.Required && out[v.Name] == "" {
			missing = append(missing, v.Name)
		}
	}
	sort.Strings(missing)
	return out, missing
}

// Referenced lists every variable name doc needs at render time: dynamic
// bindings plus tokens inside text and QR content. Sorted, no duplicates.
func Referenced(doc *design.Document) []string {
	seen := map[string]bool{}
	add := func(names ...string) {
		for _, n := range names {
			if n != "" {
				seen[n] = true
			}
		}
	}
	for _, e := range doc.Elements {
		switch c := e.Config.(type) {
		case *design.TextConfig:
			add(Tokens(c.Content)...)
			if c.IsDynamic {
				add(c.VariableName)
			}
		case *design.QRConfig:
			add(Tokens(c.Content)...)
			if c.IsDynamic {
				add(c.VariableName)
			}
		case *design.ImageConfig:
			if c.IsDynamic {
				add(c.VariableName)
			}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
