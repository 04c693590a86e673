package editor

import (
	"slices"

	"github.com/lvillar/layoutpdf/design"
)

// BringToFront paints the element above every other one.
func (s *Session) BringToFront(id string) bool {
	return s.restack(id, "bring to front", func(e *design.Element) bool {
		if s.topmost(e) {
			return false
		}
		e.Transform = e.Transform.WithZ(s.doc.MaxZ() + 1)
		return true
	})
}

// SendToBack paints the element below every other one.
func (s *Session) SendToBack(id string) bool {
	return s.restack(id, "send to back", func(e *design.Element) bool {
		order := s.paintOrder()
		if order[0] == e {
			return false
		}
		e.Transform = e.Transform.WithZ(s.doc.MinZ() - 1)
		return true
	})
}

// BringForward swaps the element with the one painted just above it.
func (s *Session) BringForward(id string) bool {
	return s.restack(id, "bring forward", func(e *design.Element) bool { return s.step(e, 1) })
}

// SendBackward swaps the element with the one painted just below it.
func (s *Session) SendBackward(id string) bool {
	return s.restack(id, "send backward", func(e *design.Element) bool { return s.step(e, -1) })
}

func (s *Session) restack(id, label string, change func(*design.Element) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.doc.Find(id)
	if e == nil || !change(e) {
		return false
	}
	s.commit(label)
	return true
}

// paintOrder returns the elements in the order they are painted: ascending
// z, ties broken by document order.
func (s *Session) paintOrder() []*design.Element {
	order := slices.Clone(s.doc.Elements)
	slices.SortStableFunc(order, func(a, b *design.Element) int {
		return a.Transform.Z() - b.Transform.Z()
	})
	return order
}

func (s *Session) topmost(e *design.Element) bool {
	order := s.paintOrder()
	return order[len(order)-1] == e
}

// step moves e one place in paint order and renumbers z densely so the
// swap is visible regardless of ties.
func (s *Session) step(e *design.Element, dir int) bool {
	order := s.paintOrder()
	i := slices.Index(order, e)
	j := i + dir
	if j < 0 || j >= len(order) {
		return false
	}
	order[i], order[j] = order[j], order[i]
	for z, o := range order {
		o.Transform = o.Transform.WithZ(z)
	}
	return true
}
