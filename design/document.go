package design

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lvillar/layoutpdf"
)

// Document is a page configuration plus an ordered bag of elements and the
// variables they may bind to. Element order is not paint order: Transform.ZIndex is.
type Document struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name,omitempty"`
	Description string             `json:"description,omitempty"`
	Category    string             `json:"category,omitempty"`
	Page        PageConfig         `json:"page"`
	Elements    []*Element         `json:"elements"`
	Variables   []TemplateVariable `json:"variables"`
	CreatedAt   time.Time          `json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `json:"updatedAt,omitempty"`
}

// NewDocument returns an empty document with a fresh id.
func NewDocument(name string, page PageConfig) *Document {
	return &Document{
		ID:       uuid.NewString(),
		Name:     name,
		Page:     page,
		Elements: []*Element{},
	}
}

// Parse decodes and validates a JSON document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("design: parsing document: %w", err)
	}
	if doc.Elements == nil {
		doc.Elements = []*Element{}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Find returns the element with the given id, or nil.
func (d *Document) Find(id string) *Element {
	if i := d.Index(id); i >= 0 {
		return d.Elements[i]
	}
	return nil
}

// Index returns the position of the element with the given id, or -1.
func (d *Document) Index(id string) int {
	for i, e := range d.Elements {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Add appends e.
func (d *Document) Add(e *Element) {
	d.Elements = append(d.Elements, e)
}

// Remove deletes the element with the given id and reports whether it existed.
func (d *Document) Remove(id string) bool {
	i := d.Index(id)
	if i < 0 {
		return false
	}
	d.Elements = append(d.Elements[:i], d.Elements[i+1:]...)
	for _, e := range d.Elements {
		if c := e.Container(); c != nil {
			c.Children = removeString(c.Children, id)
		}
	}
	return true
}

// MaxZ returns the highest ZIndex in the document, or 0 when empty.
func (d *Document) MaxZ() int {
	hi := 0
	for i, e := range d.Elements {
		if z := e.Transform.Z(); i == 0 || z > hi {
			hi = z
		}
	}
	return hi
}

// MinZ returns the lowest ZIndex in the document, or 0 when empty.
func (d *Document) MinZ() int {
	lo := 0
	for i, e := range d.Elements {
		if z := e.Transform.Z(); i == 0 || z < lo {
			lo = z
		}
	}
	return lo
}

// Variable returns the declared variable with the given name.
func (d *Document) Variable(name string) (TemplateVariable, bool) {
	for _, v := range d.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return TemplateVariable{}, false
}

// Clone returns a deep copy of d sharing no memory with it.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Page.Background = d.Page.Background.clone()
	c.Elements = make([]*Element, len(d.Elements))
	for i, e := range d.Elements {
		c.Elements[i] = e.Clone()
	}
	if d.Variables != nil {
		c.Variables = append([]TemplateVariable(nil), d.Variables...)
	}
	return &c
}

// Validate checks the structural invariants of the document.
func (d *Document) Validate() error {
	const op = "design.Validate"
	if d.Page.Width <= 0 || d.Page.Height <= 0 {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "page size %gx%g mm", d.Page.Width, d.Page.Height)
	}
	switch d.Page.Orientation {
	case "", Portrait, Landscape:
	default:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "orientation %q", d.Page.Orientation)
	}
	m := d.Page.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "negative margin")
	}
	w, h := d.Page.Size()
	if m.Left+m.Right >= w || m.Top+m.Bottom >= h {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "margins leave no printable area")
	}

	ids := make(map[string]bool, len(d.Elements))
	for _, e := range d.Elements {
		if e == nil {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "nil element")
		}
		if ids[e.ID] {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "duplicate element id %q", e.ID)
		}
		ids[e.ID] = true
		if err := e.Validate(); err != nil {
			return err
		}
	}

	names := make(map[string]bool, len(d.Variables))
	for _, v := range d.Variables {
		if v.Name == "" {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "variable without name")
		}
		if names[v.Name] {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "duplicate variable %q", v.Name)
		}
		names[v.Name] = true
		if !v.Type.Valid() {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "variable %q has type %q", v.Name, v.Type)
		}
	}
	return nil
}

// Validate checks the invariants of a single element.
func (e *Element) Validate() error {
	const op = "design.Validate"
	if e.ID == "" {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "element %q has no id", e.Name)
	}
	if !e.Type.Known() {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "element %q has unknown type %q", e.ID, e.Type)
	}
	if e.Config == nil || e.Config.Kind() != e.Type {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "element %q config does not match type %q", e.ID, e.Type)
	}
	if e.Transform.Width < 0 || e.Transform.Height < 0 {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "element %q has negative size", e.ID)
	}
	switch c := e.Config.(type) {
	case *ImageConfig:
		if c.IsDynamic && c.Src != "" {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "image %q is both literal and dynamic", e.ID)
		}
	case *QRConfig:
		if !c.ErrorCorrection.Valid() {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "qr %q has error correction %q", e.ID, c.ErrorCorrection)
		}
		if c.Size < 0 {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "qr %q has negative size", e.ID)
		}
	}
	return nil
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
