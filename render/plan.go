package render

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/asset"
	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/units"
	"github.com/lvillar/layoutpdf/vars"
)

// Box is an element box in millimetres. Rotation is clockwise degrees about
// the top-left corner.
type Box struct {
	X, Y, W, H float64
	Rotation   float64
}

// Layer is a page-covering background: the page background first, then
// background elements.
type Layer struct {
	ElementID string // empty for the page background
	Color     string
	Asset     *asset.Asset
	Fit       design.FitMode
}

// Op is one fully resolved paint operation.
type Op struct {
	ElementID string
	Kind      design.ElementType
	Z         int
	Box       Box
	Opacity   float64
	Style     *design.VisualStyle

	Text  string             // effective text, for text ops
	Font  *design.TextConfig // text styling
	Shape *design.ShapeConfig
	Asset *asset.Asset   // image or encoded QR bitmap
	Fit   design.FitMode // image fit
}

// Plan is the ordered paint sequence for one page.
type Plan struct {
	Width, Height float64 // final page size in mm
	DPI           float64
	Layers        []Layer
	Ops           []Op
	Skipped       []Skip
}

// job is an asset to materialize for a layer or an op.
type job struct {
	layer  int // index into Plan.Layers, or -1
	op     int // index into Plan.Ops, or -1
	source string
	qr     *design.QRConfig
	sizePx int
	result *asset.Asset
}

// Plan resolves doc against values into the ordered list of paint
// operations for one page. Visible elements are stable-sorted by z-index
// (nil sorts as 0, ties keep document order); containers are not painted.
// Assets load concurrently; an element whose asset fails is dropped from the
// plan and listed in Skipped. Only context cancellation returns an error.
func (r *Renderer) Plan(ctx context.Context, doc *design.Document, values map[string]string, target Target) (*Plan, error) {
	dpi := target.dpi()
	w, h := doc.Page.Size()
	p := &Plan{Width: w, Height: h, DPI: dpi}

	var jobs []*job
	addLayer := func(l Layer, image string) {
		p.Layers = append(p.Layers, l)
		if image != "" {
			jobs = append(jobs, &job{layer: len(p.Layers) - 1, op: -1, source: image})
		}
	}
	if bg := doc.Page.Background; bg != nil && (bg.Color != "" || bg.Image != "") {
		addLayer(Layer{Color: bg.Color, Fit: bg.Fit}, bg.Image)
	}

	visible := make([]*design.Element, 0, len(doc.Elements))
	for _, e := range doc.Elements {
		if e.Visible && e.Type != design.TypeContainer {
			visible = append(visible, e)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Transform.Z() < visible[j].Transform.Z()
	})

	for _, e := range visible {
		if c := e.Background(); c != nil {
			addLayer(Layer{ElementID: e.ID, Color: c.Color, Fit: c.Fit}, c.Image)
			continue
		}
		op := Op{
			ElementID: e.ID,
			Kind:      e.Type,
			Z:         e.Transform.Z(),
			Box:       toBox(e.Transform, dpi),
			Opacity:   1,
			Style:     e.Style,
		}
		if e.Style != nil && e.Style.Opacity != nil {
			op.Opacity = math.Max(0, math.Min(1, *e.Style.Opacity))
		}
		var j *job
		switch c := e.Config.(type) {
		case *design.TextConfig:
			op.Text = vars.EffectiveText(c, values)
			op.Font = c
		case *design.ShapeConfig:
			op.Shape = c
		case *design.ImageConfig:
			src := vars.EffectiveImageSource(c, values)
			if src == "" {
				p.skip(e.ID, "no image source")
				continue
			}
			op.Fit = c.Fit
			j = &job{source: src}
		case *design.QRConfig:
			size := c.Size
			if size <= 0 {
				size = int(math.Round(math.Min(e.Transform.Width, e.Transform.Height)))
			}
			j = &job{source: vars.EffectiveQR(c, values), qr: c, sizePx: size}
		}
		p.Ops = append(p.Ops, op)
		if j != nil {
			j.layer, j.op = -1, len(p.Ops)-1
			jobs = append(jobs, j)
		}
	}

	if err := r.materialize(ctx, jobs); err != nil {
		return nil, err
	}

	dropped := map[int]bool{}
	for _, j := range jobs {
		a := j.result
		switch {
		case j.layer >= 0 && a.State == asset.Ready:
			p.Layers[j.layer].Asset = a
		case j.layer >= 0:
			p.skip(p.Layers[j.layer].ElementID, "background: "+a.Err.Error())
		case a.State == asset.Ready:
			p.Ops[j.op].Asset = a
		default:
			dropped[j.op] = true
			p.skip(p.Ops[j.op].ElementID, a.Err.Error())
		}
	}
	if len(dropped) > 0 {
		kept := p.Ops[:0]
		for i, op := range p.Ops {
			if !dropped[i] {
				kept = append(kept, op)
			}
		}
		p.Ops = kept
	}
	for _, s := range p.Skipped {
		r.logger.Warn("element skipped", "element", s.ElementID, "reason", s.Reason)
	}
	return p, nil
}

func (p *Plan) skip(id, reason string) {
	p.Skipped = append(p.Skipped, Skip{ElementID: id, Reason: reason})
}

// materialize settles every job concurrently. Asset failures are recorded on
// the job; only cancellation fails the whole call.
func (r *Renderer) materialize(ctx context.Context, jobs []*job) error {
	if len(jobs) == 0 {
		return ctx.Err()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, j := range jobs {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					j.result = asset.Fail(j.source, fmt.Errorf("render: materializing %q: %v", j.source, p))
				}
			}()
			if j.qr != nil {
				j.result = r.encodeQR(gctx, j)
			} else {
				j.result = r.load(gctx, j.source)
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *Renderer) load(ctx context.Context, src string) *asset.Asset {
	if r.loader == nil {
		return asset.Fail(src, layoutpdf.ErrCapabilityUnavailable)
	}
	a, err := r.loader.Load(ctx, src)
	if err != nil {
		return asset.Fail(src, err)
	}
	if a == nil || a.State != asset.Ready {
		return asset.Fail(src, layoutpdf.ErrNoSource)
	}
	return a
}

func (r *Renderer) encodeQR(ctx context.Context, j *job) *asset.Asset {
	if r.encoder == nil {
		return asset.Fail(j.source, layoutpdf.Errorf("render.qr", layoutpdf.ErrCapabilityUnavailable, "no QR encoder"))
	}
	if j.source == "" {
		return asset.Fail(j.source, layoutpdf.Errorf("render.qr", layoutpdf.ErrNoSource, "empty QR content"))
	}
	img, err := EncodeSymbol(ctx, r.encoder, j.qr, j.source, j.sizePx)
	if err != nil {
		return asset.Fail(j.source, err)
	}
	a, err := asset.FromImage(img)
	if err != nil {
		return asset.Fail(j.source, err)
	}
	a.Source = j.source
	return a
}

// EncodeSymbol asks enc for the code described by c with content at sizePx.
// Encoders that only implement asset.QREncoder can serve QR symbols alone.
func EncodeSymbol(ctx context.Context, enc asset.QREncoder, c *design.QRConfig, content string, sizePx int) (image.Image, error) {
	if se, ok := enc.(asset.SymbolEncoder); ok {
		return se.EncodeSymbol(ctx, asset.Symbol{
			Content:    content,
			SizePx:     sizePx,
			Level:      c.ErrorCorrection,
			Symbology:  c.Symbology,
			Foreground: c.Foreground,
			Background: c.Background,
		})
	}
	if c.Symbology != "" && c.Symbology != design.SymbologyQR {
		return nil, layoutpdf.Errorf("render.qr", layoutpdf.ErrUnsupported, "symbology %q", c.Symbology)
	}
	return enc.Encode(ctx, content, sizePx, c.ErrorCorrection)
}

// toBox converts a pixel transform to millimetres at dpi. The exact
// conversion is used so positions do not jitter by a rounded millimetre.
func toBox(t design.Transform, dpi float64) Box {
	t = t.Normalize()
	return Box{
		X:        units.PxToMM(t.X, dpi),
		Y:        units.PxToMM(t.Y, dpi),
		W:        units.PxToMM(t.Width, dpi),
		H:        units.PxToMM(t.Height, dpi),
		Rotation: t.Rotation,
	}
}
