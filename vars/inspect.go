package vars

import (
	"sort"
	"time"

	"github.com/lvillar/layoutpdf/design"
)

// Report describes how a document's variables line up with supplied values.
type Report struct {
	Declared   []design.TemplateVariable `json:"declared"`
	Referenced []string                  `json:"referenced"`
	Undeclared []string                  `json:"undeclared,omitempty"` // referenced but not declared
	Unused     []string                  `json:"unused,omitempty"`     // declared but not referenced
	Missing    []string                  `json:"missing,omitempty"`    // required with no value
	Samples    map[string]string         `json:"samples"`
}

// Inspect builds a Report for doc given the values a caller would render
// with.
func Inspect(doc *design.Document, supplied map[string]string, now time.Time) Report {
	r := Report{
		Declared:   append([]design.TemplateVariable{}, doc.Variables...),
		Referenced: Referenced(doc),
		Samples:    Samples(doc.Variables, now),
	}
	if r.Referenced == nil {
		r.Referenced = []string{}
	}
	declared := make(map[string]bool, len(doc.Variables))
	for _, v := range doc.Variables {
		declared[v.Name] = true
	}
	used := make(map[string]bool, len(r.Referenced))
	for _, n := range r.Referenced {
		used[n] = true
		if !declared[n] {
			r.Undeclared = append(r.Undeclared, n)
		}
	}
	for _, v := range doc.Variables {
		if !used[v.Name] {
			r.Unused = append(r.Unused, v.Name)
		}
	}
	sort.Strings(r.Unused)
	_, r.Missing = Resolve(doc.Variables, supplied)
	return r
}
