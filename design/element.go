package design

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ElementType discriminates the Element tagged union.
type ElementType string

const (
	TypeText       ElementType = "text"
	TypeImage      ElementType = "image"
	TypeShape      ElementType = "shape"
	TypeQR         ElementType = "qr"
	TypeContainer  ElementType = "container"
	TypeBackground ElementType = "background"
)

// Known reports whether t is one of the element types.
func (t ElementType) Known() bool {
	switch t {
	case TypeText, TypeImage, TypeShape, TypeQR, TypeContainer, TypeBackground:
		return true
	}
	return false
}

// Transform is an element's box in device pixels relative to the page's
// top-left corner. Rotation is in degrees, clockwise, about the top-left
// corner. Elements without a ZIndex paint at z 0.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
	ZIndex   *int    `json:"zIndex,omitempty"`
}

// Z returns the paint-order key.
func (t Transform) Z() int {
	if t.ZIndex == nil {
		return 0
	}
	return *t.ZIndex
}

// WithZ returns a copy of t with ZIndex set to z.
func (t Transform) WithZ(z int) Transform {
	t.ZIndex = &z
	return t
}

// Normalize clamps negative sizes to zero.
func (t Transform) Normalize() Transform {
	if t.Width < 0 {
		t.Width = 0
	}
	if t.Height < 0 {
		t.Height = 0
	}
	return t
}

func (t Transform) clone() Transform {
	if t.ZIndex != nil {
		z := *t.ZIndex
		t.ZIndex = &z
	}
	return t
}

// Border is an element outline.
type Border struct {
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`  // px
	Radius float64 `json:"radius,omitempty"` // px
}

// Shadow is a drop shadow.
type Shadow struct {
	Color   string  `json:"color,omitempty"`
	Blur    float64 `json:"blur,omitempty"`
	OffsetX float64 `json:"offsetX,omitempty"`
	OffsetY float64 `json:"offsetY,omitempty"`
}

// VisualStyle is the optional fill/border/shadow envelope shared by every
// element type.
type VisualStyle struct {
	Fill    string   `json:"fill,omitempty"`
	Border  *Border  `json:"border,omitempty"`
	Shadow  *Shadow  `json:"shadow,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"` // 0..1, nil means opaque
}

func (s *VisualStyle) clone() *VisualStyle {
	if s == nil {
		return nil
	}
	c := *s
	if s.Border != nil {
		b := *s.Border
		c.Border = &b
	}
	if s.Shadow != nil {
		sh := *s.Shadow
		c.Shadow = &sh
	}
	if s.Opacity != nil {
		o := *s.Opacity
		c.Opacity = &o
	}
	return &c
}

// Config is the type-specific payload of an Element. The set of
// implementations is closed: TextConfig, ImageConfig, ShapeConfig, QRConfig,
// ContainerConfig and BackgroundConfig.
type Config interface {
	Kind() ElementType
	cloneConfig() Config
}

// Element is one design object on the page.
type Element struct {
	ID        string       // immutable for the element's lifetime
	Type      ElementType  // discriminator, always equal to Config.Kind()
	Name      string       // human label
	Transform Transform    // device pixels at the editor DPI
	Style     *VisualStyle // optional
	Locked    bool
	Visible   bool
	Config    Config
}

// NewElement returns an element of the given type with a fresh id and the
// per-type defaults.
func NewElement(kind ElementType) (*Element, error) {
	cfg, t, err := defaultConfig(kind)
	if err != nil {
		return nil, err
	}
	return &Element{
		ID:        uuid.NewString(),
		Type:      kind,
		Name:      defaultName(kind),
		Transform: t,
		Visible:   true,
		Config:    cfg,
	}, nil
}

// Text returns the text payload, or nil when e is not a text element.
func (e *Element) Text() *TextConfig {
	c, _ := e.Config.(*TextConfig)
	return c
}

// Image returns the image payload, or nil when e is not an image element.
func (e *Element) Image() *ImageConfig {
	c, _ := e.Config.(*ImageConfig)
	return c
}

// Shape returns the shape payload, or nil when e is not a shape element.
func (e *Element) Shape() *ShapeConfig {
	c, _ := e.Config.(*ShapeConfig)
	return c
}

// QR returns the QR payload, or nil when e is not a QR element.
func (e *Element) QR() *QRConfig {
	c, _ := e.Config.(*QRConfig)
	return c
}

// Container returns the container payload, or nil when e is not a container.
func (e *Element) Container() *ContainerConfig {
	c, _ := e.Config.(*ContainerConfig)
	return c
}

// Background returns the background payload, or nil when e is not a background element.
func (e *Element) Background() *BackgroundConfig {
	c, _ := e.Config.(*BackgroundConfig)
	return c
}

// Clone returns a deep copy of e sharing no memory with it.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	c.Transform = e.Transform.clone()
	c.Style = e.Style.clone()
	if e.Config != nil {
		c.Config = e.Config.cloneConfig()
	}
	return &c
}

type elementJSON struct {
	ID        string          `json:"id"`
	Type      ElementType     `json:"type"`
	Name      string          `json:"name,omitempty"`
	Transform Transform       `json:"transform"`
	Style     *VisualStyle    `json:"style,omitempty"`
	Locked    bool            `json:"locked,omitempty"`
	Visible   *bool           `json:"visible,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *Element) MarshalJSON() ([]byte, error) {
	visible := e.Visible
	out := elementJSON{
		ID:        e.ID,
		Type:      e.Type,
		Name:      e.Name,
		Transform: e.Transform,
		Style:     e.Style,
		Locked:    e.Locked,
		Visible:   &visible,
	}
	if e.Config != nil {
		raw, err := json.Marshal(e.Config)
		if err != nil {
			return nil, fmt.Errorf("design: encoding %s config: %w", e.Type, err)
		}
		out.Config = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. A missing "visible" field
// decodes as visible.
func (e *Element) UnmarshalJSON(data []byte) error {
	var in elementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cfg, err := emptyConfig(in.Type)
	if err != nil {
		return err
	}
	if len(in.Config) > 0 && string(in.Config) != "null" {
		if err := json.Unmarshal(in.Config, cfg); err != nil {
			return fmt.Errorf("design: decoding %s config of %q: %w", in.Type, in.ID, err)
		}
	}
	*e = Element{
		ID:        in.ID,
		Type:      in.Type,
		Name:      in.Name,
		Transform: in.Transform,
		Style:     in.Style,
		Locked:    in.Locked,
		Visible:   in.Visible == nil || *in.Visible,
		Config:    cfg,
	}
	return nil
}

func emptyConfig(kind ElementType) (Config, error) {
	switch kind {
	case TypeText:
		return &TextConfig{}, nil
	case TypeImage:
		return &ImageConfig{}, nil
	case TypeShape:
		return &ShapeConfig{}, nil
	case TypeQR:
		return &QRConfig{}, nil
	case TypeContainer:
		return &ContainerConfig{}, nil
	case TypeBackground:
		return &BackgroundConfig{}, nil
	}
	return nil, fmt.Errorf("design: unknown element type %q", kind)
}

func defaultName(kind ElementType) string {
	switch kind {
	case TypeText:
		return "Text"
	case TypeImage:
		return "Image"
	case TypeShape:
		return "Shape"
	case TypeQR:
		return "QR code"
	case TypeContainer:
		return "Group"
	case TypeBackground:
		return "Background"
	}
	return string(kind)
}

func defaultConfig(kind ElementType) (Config, Transform, error) {
	switch kind {
	case TypeText:
		return &TextConfig{
			Content:    "Text",
			FontFamily: "Helvetica",
			FontSize:   24,
			FontWeight: "normal",
			FontStyle:  "normal",
			Color:      "#000000",
			Align:      AlignLeft,
			LineHeight: 1.16,
		}, Transform{X: 50, Y: 50, Width: 200, Height: 40}, nil
	case TypeImage:
		// Zero size: the editor adopts the bitmap's natural size once decoded.
		return &ImageConfig{Fit: FitContain}, Transform{X: 50, Y: 50}, nil
	case TypeShape:
		return &ShapeConfig{
			Shape:       ShapeRectangle,
			Fill:        "#cccccc",
			Stroke:      "#000000",
			StrokeWidth: 1,
		}, Transform{X: 50, Y: 50, Width: 100, Height: 100}, nil
	case TypeQR:
		return &QRConfig{
			Content:         "https://example.com",
			Size:            128,
			ErrorCorrection: ECLevelM,
			Symbology:       SymbologyQR,
		}, Transform{X: 50, Y: 50, Width: 128, Height: 128}, nil
	case TypeContainer:
		return &ContainerConfig{}, Transform{}, nil
	case TypeBackground:
		return &BackgroundConfig{Fit: FitCover}, Transform{}, nil
	}
	return nil, Transform{}, fmt.Errorf("design: unknown element type %q", kind)
}
