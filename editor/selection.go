package editor

import (
	"slices"

	"github.com/lvillar/layoutpdf/design"
)

// Select replaces the selection with the known ids among ids.
func (s *Session) Select(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = s.selection[:0]
	for _, id := range ids {
		if s.doc.Find(id) != nil && !slices.Contains(s.selection, id) {
			s.selection = append(s.selection, id)
		}
	}
}

// Toggle adds id to the selection, or removes it when already selected.
func (s *Session) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.selection, id) {
		s.selection = without(s.selection, id)
		return false
	}
	if s.doc.Find(id) == nil {
		return false
	}
	s.selection = append(s.selection, id)
	return true
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
}

// Selection returns the selected ids in selection order.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selection)
}

// selected resolves the selection to live elements. Callers hold s.mu.
func (s *Session) selected() []*design.Element {
	out := make([]*design.Element, 0, len(s.selection))
	for _, id := range s.selection {
		if e := s.doc.Find(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(x string) bool { return x == id })
}
