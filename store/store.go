// Package store persists design documents as reusable templates.
//
// Three Repository implementations are provided: FileRepository keeps one
// JSON file per template, GormRepository keeps them in a SQL table through
// gorm, and CachedRepository puts a Redis read-through cache in front of
// either.
package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/design"
)

// ErrNotFound is returned, wrapped, when no template has the requested id.
var ErrNotFound = layoutpdf.ErrNotFound

// Summary is the listing view of a template.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Elements    int       `json:"elements"`
	Variables   []string  `json:"variables,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string                   `json:"name,omitempty"`
	Description *string                   `json:"description,omitempty"`
	Category    *string                   `json:"category,omitempty"`
	Page        *design.PageConfig        `json:"page,omitempty"`
	Elements    []*design.Element         `json:"elements,omitempty"`
	Variables   []design.TemplateVariable `json:"variables,omitempty"`
}

// Apply writes the set fields of p into doc.
func (p Patch) Apply(doc *design.Document) {
	if p.Name != nil {
		doc.Name = *p.Name
	}
	if p.Description != nil {
		doc.Description = *p.Description
	}
	if p.Category != nil {
		doc.Category = *p.Category
	}
	if p.Page != nil {
		doc.Page = *p.Page
	}
	if p.Elements != nil {
		doc.Elements = make([]*design.Element, len(p.Elements))
		for i, e := range p.Elements {
			doc.Elements[i] = e.Clone()
		}
	}
	if p.Variables != nil {
		doc.Variables = append([]design.TemplateVariable(nil), p.Variables...)
	}
}

// Repository stores templates. Implementations return deep copies, so
// callers may mutate what they get back.
type Repository interface {
	List(ctx context.Context) ([]Summary, error)
	Get(ctx context.Context, id string) (*design.Document, error)
	// Create stores doc, assigning an id when it has none, and returns the
	// stored copy.
	Create(ctx context.Context, doc *design.Document) (*design.Document, error)
	Update(ctx context.Context, id string, p Patch) (*design.Document, error)
	Delete(ctx context.Context, id string) error
	// Duplicate stores a copy of a template under a new id with fresh
	// element ids, named "<name> (copy)".
	Duplicate(ctx context.Context, id string) (*design.Document, error)
}

// Option configures the File and Gorm repositories.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *log.Logger
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, logger: log.New(io.Discard)}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithClock sets the time source for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the repository logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func notFound(op, id string) error {
	return layoutpdf.Errorf(op, ErrNotFound, "template %q", id)
}

// prepareNew copies doc for storage, giving it an id and timestamps.
func prepareNew(op string, doc *design.Document, now time.Time) (*design.Document, error) {
	if doc == nil {
		return nil, layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "nil document")
	}
	d := doc.Clone()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := validID(op, d.ID); err != nil {
		return nil, err
	}
	if d.Elements == nil {
		d.Elements = []*design.Element{}
	}
	if err := d.Validate(); err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	now = now.UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	return d, nil
}

// patched applies p to a copy of doc and validates the result.
func patched(op string, doc *design.Document, p Patch, now time.Time) (*design.Document, error) {
	d := doc.Clone()
	p.Apply(d)
	if err := d.Validate(); err != nil {
		return nil, layoutpdf.Wrap(op, err)
	}
	d.UpdatedAt = now.UTC()
	return d, nil
}

// copyOf returns doc under a new id with fresh element ids. Container
// children are remapped to the new ids.
func copyOf(doc *design.Document, now time.Time) *design.Document {
	d := doc.Clone()
	d.ID = uuid.NewString()
	d.Name = fmt.Sprintf("%s (copy)", doc.Name)
	ids := make(map[string]string, len(d.Elements))
	for _, e := range d.Elements {
		fresh := uuid.NewString()
		ids[e.ID] = fresh
		e.ID = fresh
	}
	for _, e := range d.Elements {
		if c := e.Container(); c != nil {
			for i, child := range c.Children {
				if id, ok := ids[child]; ok {
					c.Children[i] = id
				}
			}
		}
	}
	now = now.UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	return d
}

func summarize(d *design.Document) Summary {
	s := Summary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Elements:    len(d.Elements),
		UpdatedAt:   d.UpdatedAt,
	}
	for _, v := range d.Variables {
		s.Variables = append(s.Variables, v.Name)
	}
	return s
}

// validID rejects ids that cannot be used as file names or keys.
func validID(op, id string) error {
	if id == "" || id == "." || id == ".." {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "template id %q", id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "template id %q", id)
		}
	}
	return nil
}
