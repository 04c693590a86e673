// Package render turns a design document and a set of variable values into
// a print-ready PDF.
//
// Rendering works in two phases. Plan resolves every visible element into a
// paint operation: dynamic content is substituted, image sources are loaded
// and QR payloads are encoded concurrently, and the operations are ordered by
// z-index. The painter then walks the plan in order, so the paint sequence
// never depends on which asset finished loading first.
//
// Render never returns an error: failures, including panics inside the PDF
// engine, come back as a Result with OK unset and a Message.
package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lvillar/layoutpdf/asset"
	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/units"
)

// Action selects what happens to the generated bytes.
type Action string

const (
	ActionBytes   Action = "bytes"   // return the bytes only
	ActionSave    Action = "save"    // also write them to Target.Filename
	ActionPreview Action = "preview" // also write a temporary file and open it
)

// Target describes the output of a render call.
type Target struct {
	// DPI is the resolution element pixel coordinates are interpreted at.
	// Zero means units.DefaultExportDPI.
	DPI      float64
	Action   Action
	Filename string // save path; defaults to the document name
}

func (t Target) dpi() float64 {
	if t.DPI > 0 {
		return t.DPI
	}
	return units.DefaultExportDPI
}

// Skip records an element left out of the output.
type Skip struct {
	ElementID string
	Reason    string
}

// Result is the outcome of a render call. Bytes is set whenever OK is, for
// every action.
type Result struct {
	OK      bool
	Message string
	Bytes   []byte
	Path    string // file written by ActionSave or ActionPreview
	Pages   int
	Skipped []Skip
}

// DataURI returns the PDF as a data URI.
func (r Result) DataURI() string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(r.Bytes)
}

func failed(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

type fontFile struct {
	family string
	style  string
	data   []byte
}

// Renderer renders documents. It is safe for concurrent use.
type Renderer struct {
	logger      *log.Logger
	loader      asset.Loader
	encoder     asset.QREncoder
	clock       func() time.Time
	concurrency int
	compress    bool
	fonts       []fontFile
	opener      func(path string) error
	tempDir     string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. Skipped elements are logged at warn level.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithLoader sets how image sources are resolved.
func WithLoader(l asset.Loader) Option {
	return func(r *Renderer) { r.loader = l }
}

// WithQREncoder sets the QR capability. A nil encoder makes every QR
// element a non-fatal skip.
func WithQREncoder(e asset.QREncoder) Option {
	return func(r *Renderer) { r.encoder = e }
}

// WithClock fixes the creation date written into the PDF. Together with the
// sorted catalog this makes output byte-for-byte reproducible.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.clock = now }
}

// WithConcurrency bounds how many assets are materialized at once.
func WithConcurrency(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithCompression toggles PDF stream compression (default on).
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// WithFont registers a TrueType font under family for the given style
// ("", "B", "I" or "BI"). Text in a registered family is written as UTF-8
// instead of going through the core-font code page.
func WithFont(family, style string, ttf []byte) Option {
	return func(r *Renderer) {
		r.fonts = append(r.fonts, fontFile{family: normFamily(family), style: style, data: ttf})
	}
}

// WithOpener replaces the command used by ActionPreview.
func WithOpener(open func(path string) error) Option {
	return func(r *Renderer) { r.opener = open }
}

// WithTempDir sets where preview files are written.
func WithTempDir(dir string) Option {
	return func(r *Renderer) { r.tempDir = dir }
}

// New creates a Renderer. By default it resolves sources with
// asset.NewLoader and encodes QR codes with asset.NewBarcodeEncoder.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		logger:      log.New(io.Discard),
		loader:      asset.NewLoader(),
		encoder:     asset.NewBarcodeEncoder(),
		clock:       time.Now,
		concurrency: runtime.GOMAXPROCS(0),
		compress:    true,
		opener:      openFile,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render renders doc with values into a single page.
func (r *Renderer) Render(ctx context.Context, doc *design.Document, values map[string]string, target Target) Result {
	return r.RenderBatch(ctx, doc, []map[string]string{values}, target)
}

// RenderBatch renders one page per value set into a single PDF, for example
// one certificate per recipient. doc is never modified.
func (r *Renderer) RenderBatch(ctx context.Context, doc *design.Document, records []map[string]string, target Target) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("render panicked", "panic", p)
			res = failed("render: %v", p)
		}
	}()
	if doc == nil {
		return failed("render: nil document")
	}
	if len(records) == 0 {
		records = []map[string]string{nil}
	}
	snapshot := doc.Clone()

	plans := make([]*Plan, len(records))
	for i, values := range records {
		p, err := r.Plan(ctx, snapshot, values, target)
		if err != nil {
			return failed("render: planning page %d: %v", i+1, err)
		}
		plans[i] = p
	}

	data, err := r.paint(snapshot, plans, target)
	if err != nil {
		return failed("render: %v", err)
	}

	res = Result{OK: true, Message: "ok", Bytes: data, Pages: len(plans)}
	for _, p := range plans {
		res.Skipped = append(res.Skipped, p.Skipped...)
	}
	if err := r.deliver(&res, snapshot, target); err != nil {
		res.OK = false
		res.Message = err.Error()
	}
	r.logger.Debug("rendered", "document", snapshot.Name, "pages", res.Pages, "bytes", len(res.Bytes), "skipped", len(res.Skipped))
	return res
}
