package editor

import (
	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/geometry"
)

// BeginDrag starts moving an element. Nothing is recorded until EndDrag.
func (s *Session) BeginDrag(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.doc.Find(id)
	if e == nil || e.Locked || !placeable(e) {
		return false
	}
	s.drag = &dragState{id: id, start: e.Transform}
	return true
}

// DragTo moves the dragged element so its top-left corner lands near (x, y).
// The position is snapped to the grid and to guides, then kept inside the
// printable rectangle without resizing. It returns the guides in effect.
func (s *Session) DragTo(x, y float64) []geometry.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return nil
	}
	e := s.doc.Find(s.drag.id)
	if e == nil {
		s.drag = nil
		s.guides = nil
		return nil
	}
	t := e.Transform
	t.X, t.Y = x, y
	others := make([]*design.Element, 0, len(s.doc.Elements))
	for _, o := range s.doc.Elements {
		if o.ID != e.ID {
			others = append(others, o)
		}
	}
	e.Transform, s.guides = s.engine.Move(t, others)
	return append([]geometry.Guide(nil), s.guides...)
}

// EndDrag commits the drag as a single "move" step. A drag that ends where
// it started records nothing.
func (s *Session) EndDrag() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.drag
	s.drag = nil
	s.guides = nil
	if d == nil {
		return false
	}
	e := s.doc.Find(d.id)
	if e == nil {
		return false
	}
	e.Transform = s.engine.Enforce(e.Transform)
	if e.Transform.X == d.start.X && e.Transform.Y == d.start.Y &&
		e.Transform.Width == d.start.Width && e.Transform.Height == d.start.Height {
		return false
	}
	s.commit("move")
	return true
}

// CancelDrag puts the dragged element back where the drag started.
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return
	}
	if e := s.doc.Find(s.drag.id); e != nil {
		e.Transform = s.drag.start
	}
	s.drag = nil
	s.guides = nil
}

// MoveSelection nudges every unlocked selected element by (dx, dy) as one
// step.
func (s *Session) MoveSelection(dx, dy float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := false
	for _, e := range s.selected() {
		if e.Locked || !placeable(e) {
			continue
		}
		t := e.Transform
		t.X += dx
		t.Y += dy
		e.Transform = s.engine.Enforce(t)
		moved = true
	}
	if moved {
		s.commit("move")
	}
	return moved
}

// Align lines up the selection. A single element is aligned to the
// printable rectangle; several are aligned to their common bounds. Locked
// elements stay put.
func (s *Session) Align(mode geometry.AlignMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var elems []*design.Element
	for _, e := range s.selected() {
		if !e.Locked && placeable(e) {
			elems = append(elems, e)
		}
	}
	if len(elems) == 0 {
		return false
	}
	boxes := make([]geometry.Rect, len(elems))
	for i, e := range elems {
		boxes[i] = geometry.BoundingBox(e.Transform)
	}
	var aligned []geometry.Rect
	if len(elems) == 1 {
		aligned = geometry.AlignWithin(boxes, s.engine.Printable, mode)
	} else {
		aligned = geometry.AlignAll(boxes, mode)
	}
	for i, e := range elems {
		t := e.Transform
		t.X += aligned[i].Left - boxes[i].Left
		t.Y += aligned[i].Top - boxes[i].Top
		e.Transform = s.engine.Enforce(t)
	}
	s.commit("align " + string(mode))
	return true
}
