package design

// Align is horizontal text alignment.
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// TextConfig is the payload of a text element. FontSize is in editor pixels.
type TextConfig struct {
	Content       string  `json:"content"`
	IsDynamic     bool    `json:"isDynamic,omitempty"`
	VariableName  string  `json:"variableName,omitempty"`
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	FontWeight    string  `json:"fontWeight,omitempty"` // normal, bold, or a numeric weight
	FontStyle     string  `json:"fontStyle,omitempty"`  // normal, italic
	Color         string  `json:"color,omitempty"`
	Align         Align   `json:"align,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`    // multiple of font size
	LetterSpacing float64 `json:"letterSpacing,omitempty"` // px
	Underline     bool    `json:"underline,omitempty"`
}

func (*TextConfig) Kind() ElementType { return TypeText }

func (c *TextConfig) cloneConfig() Config { v := *c; return &v }

// ImageConfig is the payload of an image element. An image is either literal
// (Src set, IsDynamic false) or dynamic (IsDynamic true, Src empty).
type ImageConfig struct {
	Src          string  `json:"src,omitempty"`
	IsDynamic    bool    `json:"isDynamic,omitempty"`
	VariableName string  `json:"variableName,omitempty"`
	Fit          FitMode `json:"fit,omitempty"`
}

func (*ImageConfig) Kind() ElementType { return TypeImage }

func (c *ImageConfig) cloneConfig() Config { v := *c; return &v }

// SetSource makes the image literal.
func (c *ImageConfig) SetSource(src string) {
	c.Src = src
	c.IsDynamic = false
	c.VariableName = ""
}

// Bind makes the image dynamic, clearing any literal source.
func (c *ImageConfig) Bind(variable string) {
	c.Src = ""
	c.IsDynamic = true
	c.VariableName = variable
}

// ShapeKind is the geometric kind of a shape element.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeEllipse   ShapeKind = "ellipse"
	ShapeTriangle  ShapeKind = "triangle"
	ShapeLine      ShapeKind = "line"
	ShapePolygon   ShapeKind = "polygon"
)

// ShapeConfig is the payload of a shape element. StrokeWidth is in editor pixels.
type ShapeConfig struct {
	Shape       ShapeKind `json:"shape"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
}

func (*ShapeConfig) Kind() ElementType { return TypeShape }

func (c *ShapeConfig) cloneConfig() Config { v := *c; return &v }

// ECLevel is a QR error-correction level.
type ECLevel string

const (
	ECLevelL ECLevel = "L"
	ECLevelM ECLevel = "M"
	ECLevelQ ECLevel = "Q"
	ECLevelH ECLevel = "H"
)

// Valid reports whether l is one of L, M, Q, H. The empty level is valid and means M.
func (l ECLevel) Valid() bool {
	switch l {
	case "", ECLevelL, ECLevelM, ECLevelQ, ECLevelH:
		return true
	}
	return false
}

// Symbology selects the 2D/1D code a QR element encodes to.
type Symbology string

const (
	SymbologyQR         Symbology = "qr"
	SymbologyPDF417     Symbology = "pdf417"
	SymbologyDataMatrix Symbology = "datamatrix"
	SymbologyCode128    Symbology = "code128"
)

// QRConfig is the payload of a QR element. Size is the target bitmap size in
// editor pixels.
type QRConfig struct {
	Content         string    `json:"content"`
	IsDynamic       bool      `json:"isDynamic,omitempty"`
	VariableName    string    `json:"variableName,omitempty"`
	Size            int       `json:"size,omitempty"`
	ErrorCorrection ECLevel   `json:"errorCorrection,omitempty"`
	Symbology       Symbology `json:"symbology,omitempty"`
	Foreground      string    `json:"foreground,omitempty"`
	Background      string    `json:"background,omitempty"`
}

func (*QRConfig) Kind() ElementType { return TypeQR }

func (c *QRConfig) cloneConfig() Config { v := *c; return &v }

// ContainerConfig groups other elements by id. Containers are not painted.
type ContainerConfig struct {
	Children []string `json:"children"`
}

func (*ContainerConfig) Kind() ElementType { return TypeContainer }

func (c *ContainerConfig) cloneConfig() Config {
	v := ContainerConfig{}
	if c.Children != nil {
		v.Children = append([]string(nil), c.Children...)
	}
	return &v
}

// BackgroundConfig is a page-covering element painted beneath every other
// element, after the page background.
type BackgroundConfig struct {
	Color string  `json:"color,omitempty"`
	Image string  `json:"image,omitempty"`
	Fit   FitMode `json:"fit,omitempty"`
}

func (*BackgroundConfig) Kind() ElementType { return TypeBackground }

func (c *BackgroundConfig) cloneConfig() Config { v := *c; return &v }
