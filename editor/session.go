// Package editor is the controller that exclusively owns a design document
// while it is being edited.
//
// Every change goes through a Session method, which routes geometry through
// the constraint engine and records one history snapshot per discrete
// mutation. Drags record once, when they end. Image loads and QR encodes run
// in the background and re-enter the session under its lock; a completion
// whose element was deleted, or whose source changed in the meantime, is
// discarded.
//
// Methods taking an element id report false, and change nothing, when the
// id is unknown.
package editor

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lvillar/layoutpdf/asset"
	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/geometry"
	"github.com/lvillar/layoutpdf/history"
	"github.com/lvillar/layoutpdf/render"
	"github.com/lvillar/layoutpdf/units"
)

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	dpi      float64
	grid     geometry.Grid
	guides   geometry.Guides
	capacity int
	loader   asset.Loader
	encoder  asset.QREncoder
	logger   *log.Logger
	values   map[string]string
	onChange func()
}

// WithDPI sets the editor resolution (default units.EditorDPI).
func WithDPI(dpi float64) Option {
	return func(c *sessionConfig) { c.dpi = dpi }
}

// WithGrid enables grid snapping at size pixels.
func WithGrid(size float64) Option {
	return func(c *sessionConfig) { c.grid = geometry.Grid{Enabled: size > 0, Size: size} }
}

// WithGuides configures smart guides. A non-positive threshold disables them.
func WithGuides(threshold float64) Option {
	return func(c *sessionConfig) { c.guides = geometry.Guides{Enabled: threshold > 0, Threshold: threshold} }
}

// WithHistoryCapacity bounds the undo log (default history.DefaultCapacity).
func WithHistoryCapacity(n int) Option {
	return func(c *sessionConfig) { c.capacity = n }
}

// WithLoader sets how image sources are loaded.
func WithLoader(l asset.Loader) Option {
	return func(c *sessionConfig) { c.loader = l }
}

// WithQREncoder sets the QR capability; nil leaves QR elements unmaterialized.
func WithQREncoder(e asset.QREncoder) Option {
	return func(c *sessionConfig) { c.encoder = e }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithValues supplies the variable values used to materialize dynamic
// images and QR codes while editing, typically sample values.
func WithValues(values map[string]string) Option {
	return func(c *sessionConfig) { c.values = values }
}

// WithOnChange registers a callback run, outside the session lock, after a
// background asset settles.
func WithOnChange(fn func()) Option {
	return func(c *sessionConfig) { c.onChange = fn }
}

type dragState struct {
	id    string
	start design.Transform
}

// Session owns a document, its selection, geometry engine, history and
// assets. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	doc       *design.Document
	dpi       float64
	engine    geometry.Engine
	hist      *history.Manager
	selection []string
	guides    []geometry.Guide
	drag      *dragState
	assets    map[string]*asset.Asset
	loader    asset.Loader
	encoder   asset.QREncoder
	values    map[string]string
	logger    *log.Logger
	onChange  func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New starts a session editing a copy of doc. A nil doc starts a blank A4
// page. Asset materialization for existing elements starts immediately.
func New(doc *design.Document, opts ...Option) (*Session, error) {
	cfg := &sessionConfig{
		dpi:      units.EditorDPI,
		guides:   geometry.Guides{Enabled: true, Threshold: geometry.DefaultThreshold},
		capacity: history.DefaultCapacity,
		loader:   asset.NewLoader(),
		encoder:  asset.NewBarcodeEncoder(),
		logger:   log.New(io.Discard),
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.dpi <= 0 {
		return nil, fmt.Errorf("editor: dpi must be positive, got %g", cfg.dpi)
	}

	if doc == nil {
		doc = design.NewDocument("Untitled", design.DefaultPage())
	} else {
		doc = doc.Clone()
	}
	if doc.Elements == nil {
		doc.Elements = []*design.Element{}
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		doc:      doc,
		dpi:      cfg.dpi,
		hist:     history.New(cfg.capacity),
		assets:   map[string]*asset.Asset{},
		loader:   cfg.loader,
		encoder:  cfg.encoder,
		values:   cfg.values,
		logger:   cfg.logger,
		onChange: cfg.onChange,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.engine = geometry.NewEngine(geometry.PrintableRect(doc.Page, s.dpi))
	s.engine.Grid = cfg.grid
	s.engine.Guides = cfg.guides

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hist.Reset(s.doc); err != nil {
		cancel()
		return nil, fmt.Errorf("editor: %w", err)
	}
	s.materializeAll()
	return s, nil
}

// Close stops background work and waits for it to finish.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until every background asset has settled.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Document returns a point-in-time deep copy of the document, suitable for
// rendering or saving.
func (s *Session) Document() *design.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Element returns a copy of the element with the given id, or nil.
func (s *Session) Element(id string) *design.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Find(id).Clone()
}

// Printable returns the printable rectangle in editor pixels.
func (s *Session) Printable() geometry.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Printable
}

// DPI returns the editor resolution.
func (s *Session) DPI() float64 { return s.dpi }

// Guides returns the guide lines of the drag in progress.
func (s *Session) Guides() []geometry.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geometry.Guide(nil), s.guides...)
}

// Asset returns a copy of the materialization state of an element's
// bitmap. The decoded image and bytes are shared and must not be modified.
func (s *Session) Asset(id string) (*asset.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, false
	}
	c := *a
	return &c, true
}

// SetGrid toggles grid snapping. View settings are not recorded in history.
func (s *Session) SetGrid(enabled bool, size float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Grid = geometry.Grid{Enabled: enabled && size > 0, Size: size}
}

// SetGuides toggles smart guides.
func (s *Session) SetGuides(enabled bool, threshold float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if threshold <= 0 {
		threshold = geometry.DefaultThreshold
	}
	s.engine.Guides = geometry.Guides{Enabled: enabled, Threshold: threshold}
}

// Render renders a snapshot of the document. Editing may continue while it
// runs.
func (s *Session) Render(ctx context.Context, r *render.Renderer, values map[string]string, target render.Target) render.Result {
	if target.DPI == 0 {
		target.DPI = s.dpi
	}
	return r.Render(ctx, s.Document(), values, target)
}

// Undo restores the previous snapshot.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Undo(s.restore)
}

// Redo restores the next snapshot.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Redo(s.restore)
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// HistoryLabels lists the recorded steps, oldest first.
func (s *Session) HistoryLabels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Labels()
}

// restore swaps in a decoded snapshot. It runs under the history guard.
func (s *Session) restore(doc *design.Document) {
	if doc.Elements == nil {
		doc.Elements = []*design.Element{}
	}
	s.doc = doc
	s.engine.Printable = geometry.PrintableRect(doc.Page, s.dpi)
	s.drag = nil
	s.guides = nil
	kept := s.selection[:0]
	for _, id := range s.selection {
		if doc.Find(id) != nil {
			kept = append(kept, id)
		}
	}
	s.selection = kept
	s.materializeAll()
}

// commit records the current document as a history step.
func (s *Session) commit(label string) {
	if err := s.hist.Record(s.doc, label); err != nil {
		s.logger.Warn("history record failed", "label", label, "err", err)
	}
}
