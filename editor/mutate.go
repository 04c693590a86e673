package editor

import (
	"fmt"

	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/geometry"
)

// duplicateOffset is how far a duplicate is shifted from its original.
const duplicateOffset = 20

// Add creates an element of the given kind, lets configure adjust it before
// it is placed, puts it on top of the paint order and selects it. It returns
// the new id.
func (s *Session) Add(kind design.ElementType, configure func(*design.Element)) (string, error) {
	e, err := design.NewElement(kind)
	if err != nil {
		return "", fmt.Errorf("editor: %w", err)
	}
	if configure != nil {
		configure(e)
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("editor: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.Find(e.ID) != nil {
		return "", fmt.Errorf("editor: duplicate element id %q", e.ID)
	}
	if e.Transform.ZIndex == nil && len(s.doc.Elements) > 0 {
		e.Transform = e.Transform.WithZ(s.doc.MaxZ() + 1)
	}
	if placeable(e) && e.Transform.Width > 0 && e.Transform.Height > 0 {
		e.Transform = s.engine.Enforce(e.Transform)
	}
	s.doc.Add(e)
	s.selection = []string{e.ID}
	s.commit("add " + string(kind))
	s.materialize(e)
	return e.ID, nil
}

// placeable reports whether e takes part in geometry constraints.
// Containers and backgrounds do not.
func placeable(e *design.Element) bool {
	return e.Type != design.TypeContainer && e.Type != design.TypeBackground
}

// AddText adds a text element with the given content.
func (s *Session) AddText(content string) (string, error) {
	return s.Add(design.TypeText, func(e *design.Element) { e.Text().Content = content })
}

// AddImage adds an image element. Its size is taken from the bitmap once
// it has loaded.
func (s *Session) AddImage(src string) (string, error) {
	return s.Add(design.TypeImage, func(e *design.Element) { e.Image().SetSource(src) })
}

// AddShape adds a shape element of the given kind.
func (s *Session) AddShape(kind design.ShapeKind) (string, error) {
	return s.Add(design.TypeShape, func(e *design.Element) { e.Shape().Shape = kind })
}

// AddQR adds a QR element encoding content.
func (s *Session) AddQR(content string) (string, error) {
	return s.Add(design.TypeQR, func(e *design.Element) { e.QR().Content = content })
}

// Remove deletes an element and drops it from the selection.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.remove(id) {
		return false
	}
	s.commit("remove")
	return true
}

// RemoveSelection deletes every selected element as one history step and
// returns how many were removed.
func (s *Session) RemoveSelection() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range append([]string(nil), s.selection...) {
		if s.remove(id) {
			n++
		}
	}
	if n > 0 {
		s.commit("remove")
	}
	return n
}

func (s *Session) remove(id string) bool {
	if !s.doc.Remove(id) {
		return false
	}
	s.selection = without(s.selection, id)
	delete(s.assets, id)
	if s.drag != nil && s.drag.id == id {
		s.drag = nil
		s.guides = nil
	}
	return true
}

// Duplicate copies an element under a fresh id, offset from the original and
// on top of the paint order. The copy becomes the selection.
func (s *Session) Duplicate(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.doc.Find(id)
	if src == nil {
		return "", false
	}
	fresh, err := design.NewElement(src.Type)
	if err != nil {
		return "", false
	}
	e := src.Clone()
	e.ID = fresh.ID
	if e.Name != "" {
		e.Name += " copy"
	}
	e.Locked = false
	t := e.Transform
	t.X += duplicateOffset
	t.Y += duplicateOffset
	t = t.WithZ(s.doc.MaxZ() + 1)
	if placeable(e) {
		t = s.engine.Enforce(t)
	}
	e.Transform = t
	s.doc.Add(e)
	s.selection = []string{e.ID}
	s.commit("duplicate")
	s.materialize(e)
	return e.ID, true
}

// SetTransform commits a new transform: it is constrained into the
// printable rectangle, scaling down if it overflows. Locked elements refuse.
func (s *Session) SetTransform(id string, t design.Transform) bool {
	return s.transform(id, "transform", func(design.Transform) design.Transform { return t })
}

// Resize commits a new size, keeping the position.
func (s *Session) Resize(id string, width, height float64) bool {
	return s.transform(id, "resize", func(t design.Transform) design.Transform {
		t.Width, t.Height = width, height
		return t
	})
}

// Rotate commits a new rotation in clockwise degrees.
func (s *Session) Rotate(id string, degrees float64) bool {
	return s.transform(id, "rotate", func(t design.Transform) design.Transform {
		t.Rotation = degrees
		return t
	})
}

func (s *Session) transform(id, label string, change func(design.Transform) design.Transform) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.doc.Find(id)
	if e == nil || e.Locked {
		return false
	}
	t := change(e.Transform)
	t.ZIndex = e.Transform.ZIndex
	if placeable(e) {
		t = s.engine.Enforce(t)
	}
	e.Transform = t.Normalize()
	s.commit(label)
	s.materialize(e)
	return true
}

// Restyle replaces an element's visual style. A nil style removes it.
func (s *Session) Restyle(id string, style *design.VisualStyle) bool {
	return s.update(id, "restyle", func(e *design.Element) bool {
		if style == nil {
			e.Style = nil
			return true
		}
		c := (&design.Element{Style: style}).Clone()
		e.Style = c.Style
		return true
	})
}

// Rename sets an element's human label.
func (s *Session) Rename(id, name string) bool {
	return s.update(id, "rename", func(e *design.Element) bool {
		e.Name = name
		return true
	})
}

// UpdateText edits a text element's configuration.
func (s *Session) UpdateText(id string, edit func(*design.TextConfig)) bool {
	return s.update(id, "edit text", func(e *design.Element) bool {
		c := e.Text()
		if c == nil {
			return false
		}
		edit(c)
		return true
	})
}

// UpdateShape edits a shape element's configuration.
func (s *Session) UpdateShape(id string, edit func(*design.ShapeConfig)) bool {
	return s.update(id, "edit shape", func(e *design.Element) bool {
		c := e.Shape()
		if c == nil {
			return false
		}
		edit(c)
		return true
	})
}

// UpdateQR edits a QR element's configuration and re-encodes it.
func (s *Session) UpdateQR(id string, edit func(*design.QRConfig)) bool {
	return s.update(id, "edit qr", func(e *design.Element) bool {
		c := e.QR()
		if c == nil {
			return false
		}
		edit(c)
		return c.ErrorCorrection.Valid()
	})
}

// SetSource makes an image element literal with src and reloads it.
func (s *Session) SetSource(id, src string) bool {
	return s.update(id, "set source", func(e *design.Element) bool {
		c := e.Image()
		if c == nil {
			return false
		}
		c.SetSource(src)
		return true
	})
}

// Bind makes a text, image or QR element take its content from variable.
func (s *Session) Bind(id, variable string) bool {
	if variable == "" {
		return false
	}
	return s.update(id, "bind", func(e *design.Element) bool {
		switch c := e.Config.(type) {
		case *design.TextConfig:
			c.IsDynamic, c.VariableName = true, variable
		case *design.ImageConfig:
			c.Bind(variable)
		case *design.QRConfig:
			c.IsDynamic, c.VariableName = true, variable
		default:
			return false
		}
		return true
	})
}

// Unbind returns an element to its literal content. An unbound image has no
// source until SetSource is called.
func (s *Session) Unbind(id string) bool {
	return s.update(id, "unbind", func(e *design.Element) bool {
		switch c := e.Config.(type) {
		case *design.TextConfig:
			c.IsDynamic, c.VariableName = false, ""
		case *design.ImageConfig:
			c.IsDynamic, c.VariableName = false, ""
		case *design.QRConfig:
			c.IsDynamic, c.VariableName = false, ""
		default:
			return false
		}
		return true
	})
}

// SetLocked locks or unlocks an element's geometry.
func (s *Session) SetLocked(id string, locked bool) bool {
	return s.update(id, "lock", func(e *design.Element) bool {
		e.Locked = locked
		return true
	})
}

// SetVisible shows or hides an element.
func (s *Session) SetVisible(id string, visible bool) bool {
	return s.update(id, "visibility", func(e *design.Element) bool {
		e.Visible = visible
		return true
	})
}

// update applies edit to a copy of the element and swaps it in when edit
// accepts the change, so a rejected edit leaves no trace.
func (s *Session) update(id, label string, edit func(*design.Element) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.doc.Index(id)
	if i < 0 {
		return false
	}
	e := s.doc.Elements[i].Clone()
	if !edit(e) || e.Validate() != nil {
		return false
	}
	s.doc.Elements[i] = e
	s.commit(label)
	s.materialize(e)
	return true
}

// SetPage replaces the page configuration, recomputes the printable
// rectangle and re-enforces every element against it.
func (s *Session) SetPage(page design.PageConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := *s.doc
	next.Page = page
	next.Elements = nil
	if err := next.Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	s.doc.Page = page
	s.engine.Printable = geometry.PrintableRect(page, s.dpi)
	for _, e := range s.doc.Elements {
		if placeable(e) {
			e.Transform = s.engine.Enforce(e.Transform)
		}
	}
	s.commit("page")
	s.materializeAll()
	return nil
}

// DeclareVariable adds a template variable or replaces the one with the
// same name.
func (s *Session) DeclareVariable(v design.TemplateVariable) error {
	if v.Name == "" || !v.Type.Valid() {
		return fmt.Errorf("editor: invalid variable %q of type %q", v.Name, v.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i := range s.doc.Variables {
		if s.doc.Variables[i].Name == v.Name {
			s.doc.Variables[i] = v
			replaced = true
		}
	}
	if !replaced {
		s.doc.Variables = append(s.doc.Variables, v)
	}
	s.commit("variable")
	return nil
}

// RemoveVariable drops a declared variable. Bindings to it are left in
// place and simply stop resolving.
func (s *Session) RemoveVariable(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.doc.Variables {
		if v.Name == name {
			s.doc.Variables = append(s.doc.Variables[:i], s.doc.Variables[i+1:]...)
			s.commit("variable")
			return true
		}
	}
	return false
}
