package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"golang.org/x/text/unicode/norm"

	"github.com/lvillar/layoutpdf/asset"
	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/units"
)

const (
	// baselineRatio places the first baseline this fraction of the font
	// size below the top of the text box.
	baselineRatio = 0.8

	defaultFontSizePx = 16
	defaultLineHeight = 1.16
	shadowAlpha       = 0.35
)

// painter writes plans into one fpdf document.
type painter struct {
	r    *Renderer
	pdf  *fpdf.Fpdf
	tr   func(string) string
	utf8 map[string]map[string]bool // registered family -> styles
	imp  *gofpdi.Importer
	page int
}

func (r *Renderer) paint(doc *design.Document, plans []*Plan, target Target) ([]byte, error) {
	first := plans[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(r.clock())
	pdf.SetCatalogSort(true)
	pdf.SetCreator("layoutpdf", true)
	if doc.Name != "" {
		pdf.SetTitle(doc.Name, true)
	}

	pt := &painter{
		r:    r,
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		utf8: map[string]map[string]bool{},
		imp:  gofpdi.NewImporter(),
	}
	for _, f := range r.fonts {
		pdf.AddUTF8FontFromBytes(f.family, f.style, f.data)
		if pt.utf8[f.family] == nil {
			pt.utf8[f.family] = map[string]bool{}
		}
		pt.utf8[f.family][f.style] = true
	}
	if pdf.Err() {
		return nil, fmt.Errorf("registering fonts: %w", pdf.Error())
	}

	for i, p := range plans {
		pt.page = i
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: p.Width, Ht: p.Height})
		for _, l := range p.Layers {
			pt.layer(p, l)
		}
		for _, op := range p.Ops {
			pt.op(p, op)
		}
		if pdf.Err() {
			return nil, fmt.Errorf("page %d: %w", i+1, pdf.Error())
		}
		r.logger.Debug("painted page", "page", i+1, "layers", len(p.Layers), "ops", len(p.Ops))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (pt *painter) layer(p *Plan, l Layer) {
	full := Box{W: p.Width, H: p.Height}
	if c, a, ok := design.ParseColor(l.Color); ok {
		pt.pdf.SetAlpha(a, "Normal")
		pt.pdf.SetFillColor(c.R, c.G, c.B)
		pt.pdf.Rect(0, 0, p.Width, p.Height, "F")
		pt.pdf.SetAlpha(1, "Normal")
	}
	if l.Asset != nil {
		fit := l.Fit
		if fit == "" {
			fit = design.FitCover
		}
		name := "bg/" + l.ElementID
		if !pt.place(p, l.Asset, full, fit, name) {
			p.skip(l.ElementID, "background could not be embedded")
		}
	}
}

func (pt *painter) op(p *Plan, op Op) {
	pdf := pt.pdf
	b := op.Box
	if b.Rotation != 0 {
		pdf.TransformBegin()
		pdf.TransformRotate(-b.Rotation, b.X, b.Y)
		defer pdf.TransformEnd()
	}
	if op.Opacity < 1 {
		pdf.SetAlpha(op.Opacity, "Normal")
		defer pdf.SetAlpha(1, "Normal")
	}

	pt.decorate(p, op)
	switch op.Kind {
	case design.TypeText:
		pt.text(p, op)
	case design.TypeShape:
		pt.shape(p, op)
	case design.TypeImage:
		fit := op.Fit
		if fit == "" {
			fit = design.FitContain
		}
		if !pt.place(p, op.Asset, b, fit, "img/"+op.ElementID) {
			p.skip(op.ElementID, "image could not be embedded")
		}
	case design.TypeQR:
		if !pt.place(p, op.Asset, b, design.FitContain, "qr/"+op.ElementID) {
			p.skip(op.ElementID, "qr could not be embedded")
		}
	}
}

// decorate paints the optional shadow, fill and border shared by every
// element type.
func (pt *painter) decorate(p *Plan, op Op) {
	s := op.Style
	if s == nil {
		return
	}
	pdf := pt.pdf
	b := op.Box
	radius := 0.0
	if s.Border != nil {
		radius = units.PxToMM(s.Border.Radius, p.DPI)
	}
	rect := func(x, y float64, style string) {
		if radius > 0 {
			pdf.RoundedRect(x, y, b.W, b.H, math.Min(radius, math.Min(b.W, b.H)/2), "1234", style)
			return
		}
		pdf.Rect(x, y, b.W, b.H, style)
	}

	if sh := s.Shadow; sh != nil {
		if c, _, ok := design.ParseColor(sh.Color); ok {
			pdf.SetAlpha(shadowAlpha*op.Opacity, "Normal")
			pdf.SetFillColor(c.R, c.G, c.B)
			rect(b.X+units.PxToMM(sh.OffsetX, p.DPI), b.Y+units.PxToMM(sh.OffsetY, p.DPI), "F")
			pdf.SetAlpha(op.Opacity, "Normal")
		}
	}
	if c, _, ok := design.ParseColor(s.Fill); ok {
		pdf.SetFillColor(c.R, c.G, c.B)
		rect(b.X, b.Y, "F")
	}
	if br := s.Border; br != nil && br.Width > 0 {
		if c, _, ok := design.ParseColor(br.Color); ok {
			pdf.SetDrawColor(c.R, c.G, c.B)
			pdf.SetLineWidth(units.PxToMM(br.Width, p.DPI))
			rect(b.X, b.Y, "D")
		}
	}
}

func (pt *painter) text(p *Plan, op Op) {
	c := op.Font
	if c == nil || strings.TrimSpace(op.Text) == "" {
		return
	}
	pdf := pt.pdf
	family, style, utf8 := pt.font(c)
	if c.Underline {
		style += "U"
	}
	px := c.FontSize
	if px <= 0 {
		px = defaultFontSizePx
	}
	sizePt := units.PxToPt(px, p.DPI)
	pdf.SetFont(family, style, sizePt)
	if col, _, ok := design.ParseColor(c.Color); ok {
		pdf.SetTextColor(col.R, col.G, col.B)
	} else {
		pdf.SetTextColor(0, 0, 0)
	}

	text := norm.NFC.String(op.Text)
	if !utf8 {
		text = pt.tr(text)
	}
	lh := c.LineHeight
	if lh <= 0 {
		lh = defaultLineHeight
	}
	fontMM := sizePt / units.PointsPerInch * units.MMPerInch
	b := op.Box
	row := 0
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		lines := wrapText(pdf.GetStringWidth, para, b.W)
		for i, line := range lines {
			y := b.Y + fontMM*baselineRatio + float64(row)*fontMM*lh
			row++
			x := b.X
			switch c.Align {
			case design.AlignCenter:
				x += (b.W - pdf.GetStringWidth(line)) / 2
			case design.AlignRight:
				x += b.W - pdf.GetStringWidth(line)
			case design.AlignJustify:
				// The last line of a paragraph stays left-aligned.
				if i < len(lines)-1 && pt.justify(line, b.X, y, b.W) {
					continue
				}
			}
			pdf.Text(x, y, line)
		}
	}
}

// justify spreads the words of line across w. It reports false when the
// line has a single word.
func (pt *painter) justify(line string, x, y, w float64) bool {
	words := strings.Fields(line)
	if len(words) < 2 {
		return false
	}
	used := 0.0
	for _, word := range words {
		used += pt.pdf.GetStringWidth(word)
	}
	gap := (w - used) / float64(len(words)-1)
	for _, word := range words {
		pt.pdf.Text(x, y, word)
		x += pt.pdf.GetStringWidth(word) + gap
	}
	return true
}

// font resolves the family and style to use for c and reports whether it is
// a registered UTF-8 font.
func (pt *painter) font(c *design.TextConfig) (family, style string, utf8 bool) {
	style = fontStyle(c.FontWeight, c.FontStyle)
	fam := normFamily(c.FontFamily)
	if styles, ok := pt.utf8[fam]; ok {
		if styles[style] {
			return fam, style, true
		}
		if styles[""] {
			return fam, "", true
		}
	}
	return coreFamily(fam), style, false
}

// wrapText breaks text into lines no wider than w using width for
// measurement. Explicit newlines are kept; words longer than w are split.
func wrapText(width func(string) float64, text string, w float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if w <= 0 {
			lines = append(lines, para)
			continue
		}
		line := ""
		for _, word := range strings.Fields(para) {
			cand := word
			if line != "" {
				cand = line + " " + word
			}
			if width(cand) <= w {
				line = cand
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = word
			for width(line) > w && len(line) > 1 {
				cut := breakAt(width, line, w)
				lines = append(lines, line[:cut])
				line = line[cut:]
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// breakAt returns the largest prefix length of s that fits in w, at least
// one character.
func breakAt(width func(string) float64, s string, w float64) int {
	cut := 0
	for i := range s {
		if i > 0 && width(s[:i]) > w {
			break
		}
		cut = i
	}
	if cut == 0 {
		for i := range s {
			if i > 0 {
				return i
			}
		}
		return len(s)
	}
	return cut
}

func (pt *painter) shape(p *Plan, op Op) {
	c := op.Shape
	if c == nil {
		return
	}
	pdf := pt.pdf
	b := op.Box
	fill, fa, hasFill := design.ParseColor(c.Fill)
	stroke, sa, hasStroke := design.ParseColor(c.Stroke)

	style := ""
	switch {
	case hasFill && hasStroke:
		style = "FD"
	case hasFill:
		style = "F"
	case hasStroke:
		style = "D"
	default:
		return
	}
	if hasFill {
		pdf.SetFillColor(fill.R, fill.G, fill.B)
	}
	if hasStroke {
		pdf.SetDrawColor(stroke.R, stroke.G, stroke.B)
		pdf.SetLineWidth(math.Max(units.PxToMM(c.StrokeWidth, p.DPI), 0.1))
	}
	alpha := sa
	if hasFill {
		alpha = fa
	}
	if alpha < 1 {
		pdf.SetAlpha(alpha*op.Opacity, "Normal")
		defer pdf.SetAlpha(op.Opacity, "Normal")
	}

	switch c.Shape {
	case design.ShapeCircle:
		pdf.Circle(b.X+b.W/2, b.Y+b.H/2, math.Min(b.W, b.H)/2, style)
	case design.ShapeEllipse:
		pdf.Ellipse(b.X+b.W/2, b.Y+b.H/2, b.W/2, b.H/2, 0, style)
	case design.ShapeLine:
		if !hasStroke {
			pdf.SetDrawColor(fill.R, fill.G, fill.B)
			pdf.SetLineWidth(math.Max(units.PxToMM(c.StrokeWidth, p.DPI), 0.1))
		}
		pdf.Line(b.X, b.Y, b.X+b.W, b.Y+b.H)
	case design.ShapeTriangle:
		pdf.Polygon([]fpdf.PointType{
			{X: b.X + b.W/2, Y: b.Y},
			{X: b.X + b.W, Y: b.Y + b.H},
			{X: b.X, Y: b.Y + b.H},
		}, style)
	default:
		pdf.Rect(b.X, b.Y, b.W, b.H, style)
	}
}

// place embeds a into box according to fit. Content that may spill out of
// the box is clipped to it. It reports false when the engine rejected the
// asset; the engine error is cleared so the rest of the page still renders.
func (pt *painter) place(p *Plan, a *asset.Asset, box Box, fit design.FitMode, name string) bool {
	if a == nil || a.State != asset.Ready {
		return false
	}
	pdf := pt.pdf
	name = fmt.Sprintf("%s@%d", name, pt.page)

	if a.Format == asset.FormatPDF {
		var rs io.ReadSeeker = bytes.NewReader(a.Data)
		tpl := pt.imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
		if pdf.Err() {
			pt.r.logger.Warn("importing pdf page", "asset", name, "err", pdf.Error())
			pdf.ClearError()
			return false
		}
		iw, ih := 0.0, 0.0
		if dims, ok := pt.imp.GetPageSizes()[1]["/MediaBox"]; ok {
			iw = dims["w"] / units.PointsPerInch * units.MMPerInch
			ih = dims["h"] / units.PointsPerInch * units.MMPerInch
		}
		x, y, w, h := fitRect(fit, box, iw, ih)
		clip := spills(fit)
		if clip {
			pdf.ClipRect(box.X, box.Y, box.W, box.H, false)
		}
		pt.imp.UseImportedTemplate(pdf, tpl, x, y, w, h)
		if clip {
			pdf.ClipEnd()
		}
		return true
	}

	data, format := a.Data, a.Format
	iw, ih := a.Size()
	natW, natH := units.PxToMM(float64(iw), p.DPI), units.PxToMM(float64(ih), p.DPI)
	if fit == design.FitCover && a.Image != nil {
		cropped, err := asset.FromImage(asset.CropCover(a.Image, box.W, box.H))
		if err != nil {
			pt.r.logger.Warn("cropping image", "asset", name, "err", err)
			return false
		}
		data, format = cropped.Data, cropped.Format
		fit = design.FitFill
	}

	opts := fpdf.ImageOptions{ImageType: format, AllowNegativePosition: true}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() || info == nil {
		pt.r.logger.Warn("embedding image", "asset", name, "err", pdf.Error())
		pdf.ClearError()
		return false
	}
	if natW == 0 || natH == 0 {
		natW, natH = info.Width(), info.Height()
	}
	x, y, w, h := fitRect(fit, box, natW, natH)
	clip := spills(fit)
	if clip {
		pdf.ClipRect(box.X, box.Y, box.W, box.H, false)
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if clip {
		pdf.ClipEnd()
	}
	return true
}

func spills(fit design.FitMode) bool {
	return fit == design.FitCover || fit == design.FitNone
}

// fitRect places content of natural size iw×ih into box. cover and contain
// scale uniformly and center; fill stretches; none keeps the natural size at
// the box origin.
func fitRect(fit design.FitMode, box Box, iw, ih float64) (x, y, w, h float64) {
	if iw <= 0 || ih <= 0 || fit == design.FitFill {
		return box.X, box.Y, box.W, box.H
	}
	var s float64
	switch fit {
	case design.FitNone:
		return box.X, box.Y, iw, ih
	case design.FitCover:
		s = math.Max(box.W/iw, box.H/ih)
	default:
		s = math.Min(box.W/iw, box.H/ih)
	}
	w, h = iw*s, ih*s
	return box.X + (box.W-w)/2, box.Y + (box.H-h)/2, w, h
}
