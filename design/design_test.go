package design

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/layoutpdf"
)

const certificateJSON = `{
	"id": "tpl-1",
	"name": "Certificate",
	"page": {
		"width": 210, "height": 297, "orientation": "landscape",
		"margins": {"top": 10, "right": 10, "bottom": 10, "left": 10},
		"background": {"color": "#fffaf0"}
	},
	"elements": [
		{"id": "title", "type": "text", "name": "Title",
		 "transform": {"x": 100, "y": 80, "width": 600, "height": 60, "zIndex": 2},
		 "config": {"content": "Certificate for {{name}}", "fontSize": 36, "align": "center"}},
		{"id": "logo", "type": "image", "visible": false,
		 "transform": {"x": 40, "y": 40, "width": 120, "height": 120},
		 "config": {"isDynamic": true, "variableName": "logo", "fit": "contain"}},
		{"id": "frame", "type": "shape",
		 "transform": {"x": 20, "y": 20, "width": 1000, "height": 700, "zIndex": 0},
		 "style": {"border": {"color": "#333", "width": 2}},
		 "config": {"shape": "rectangle", "stroke": "#333333", "strokeWidth": 2}},
		{"id": "code", "type": "qr",
		 "transform": {"x": 900, "y": 600, "width": 96, "height": 96, "zIndex": 3},
		 "config": {"content": "https://verify.example/{{id}}", "size": 96, "errorCorrection": "H"}}
	],
	"variables": [
		{"name": "name", "label": "Recipient", "type": "text", "required": true},
		{"name": "logo", "type": "image"},
		{"name": "id", "type": "text"}
	]
}`

func TestParseCertificate(t *testing.T) {
	doc, err := Parse([]byte(certificateJSON))
	require.NoError(t, err)

	require.Len(t, doc.Elements, 4)
	title := doc.Find("title")
	require.NotNil(t, title)
	require.NotNil(t, title.Text())
	assert.Equal(t, "Certificate for {{name}}", title.Text().Content)
	assert.Equal(t, AlignCenter, title.Text().Align)
	assert.Equal(t, 2, title.Transform.Z())
	assert.True(t, title.Visible, "missing visible decodes as visible")

	logo := doc.Find("logo")
	assert.False(t, logo.Visible)
	assert.True(t, logo.Image().IsDynamic)
	assert.Nil(t, logo.Text())

	assert.Equal(t, ShapeRectangle, doc.Find("frame").Shape().Shape)
	assert.Equal(t, ECLevelH, doc.Find("code").QR().ErrorCorrection)

	v, ok := doc.Variable("name")
	require.True(t, ok)
	assert.True(t, v.Required)
}

func TestDocumentJSONRoundTripIsIdentity(t *testing.T) {
	doc, err := Parse([]byte(certificateJSON))
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestPageSizeFollowsOrientation(t *testing.T) {
	p := PageConfig{Width: 210, Height: 297, Orientation: Landscape}
	w, h := p.Size()
	assert.Equal(t, 297.0, w)
	assert.Equal(t, 210.0, h)

	p = PageConfig{Width: 297, Height: 210, Orientation: Portrait}
	w, h = p.Size()
	assert.Equal(t, 210.0, w)
	assert.Equal(t, 297.0, h)

	p = PageConfig{Width: 297, Height: 210}
	w, h = p.Size()
	assert.Equal(t, 297.0, w, "no orientation keeps stored dimensions")
	assert.Equal(t, 210.0, h)
}

func TestPageSizePresets(t *testing.T) {
	w, h, ok := PageSize("A4")
	require.True(t, ok)
	assert.Equal(t, 210.0, w)
	assert.Equal(t, 297.0, h)

	_, _, ok = PageSize("B7")
	assert.False(t, ok)
}

func TestCloneSharesNothing(t *testing.T) {
	doc, err := Parse([]byte(certificateJSON))
	require.NoError(t, err)

	c := doc.Clone()
	require.Equal(t, doc, c)

	c.Find("title").Text().Content = "changed"
	*c.Find("title").Transform.ZIndex = 99
	c.Find("frame").Style.Border.Width = 10
	c.Page.Background.Color = "#000"
	c.Variables[0].Label = "changed"

	assert.Equal(t, "Certificate for {{name}}", doc.Find("title").Text().Content)
	assert.Equal(t, 2, doc.Find("title").Transform.Z())
	assert.Equal(t, 2.0, doc.Find("frame").Style.Border.Width)
	assert.Equal(t, "#fffaf0", doc.Page.Background.Color)
	assert.Equal(t, "Recipient", doc.Variables[0].Label)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
	}{
		{"duplicate id", func(d *Document) { d.Elements[1].ID = "title" }},
		{"image both literal and dynamic", func(d *Document) { d.Find("logo").Image().Src = "a.png" }},
		{"bad qr level", func(d *Document) { d.Find("code").QR().ErrorCorrection = "X" }},
		{"config mismatch", func(d *Document) { d.Find("title").Config = &ShapeConfig{} }},
		{"negative size", func(d *Document) { d.Find("frame").Transform.Width = -1 }},
		{"duplicate variable", func(d *Document) { d.Variables = append(d.Variables, TemplateVariable{Name: "id", Type: VarText}) }},
		{"bad variable type", func(d *Document) { d.Variables[0].Type = "color" }},
		{"margins swallow page", func(d *Document) { d.Page.Margins.Left = 290 }},
		{"bad orientation", func(d *Document) { d.Page.Orientation = "diagonal" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(certificateJSON))
			require.NoError(t, err)
			tt.mutate(doc)
			err = doc.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, layoutpdf.ErrInvalidParam))
		})
	}
}

func TestParseUnknownElementType(t *testing.T) {
	_, err := Parse([]byte(`{"page": {"width": 100, "height": 100}, "elements": [{"id": "a", "type": "video"}]}`))
	require.Error(t, err)
}

func TestNewElementDefaults(t *testing.T) {
	for _, kind := range []ElementType{TypeText, TypeImage, TypeShape, TypeQR, TypeContainer, TypeBackground} {
		e, err := NewElement(kind)
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.True(t, e.Visible)
		assert.Equal(t, kind, e.Config.Kind())
		assert.NoError(t, e.Validate())
	}

	a, _ := NewElement(TypeText)
	b, _ := NewElement(TypeText)
	assert.NotEqual(t, a.ID, b.ID)

	_, err := NewElement("video")
	assert.Error(t, err)
}

func TestImageBindClearsSource(t *testing.T) {
	c := &ImageConfig{Src: "logo.png"}
	c.Bind("logo")
	assert.Empty(t, c.Src)
	assert.True(t, c.IsDynamic)

	c.SetSource("other.png")
	assert.False(t, c.IsDynamic)
	assert.Empty(t, c.VariableName)
}

func TestRemoveDropsContainerChild(t *testing.T) {
	doc := NewDocument("doc", DefaultPage())
	a, _ := NewElement(TypeText)
	g, _ := NewElement(TypeContainer)
	g.Container().Children = []string{a.ID}
	doc.Add(a)
	doc.Add(g)

	assert.True(t, doc.Remove(a.ID))
	assert.False(t, doc.Remove(a.ID))
	assert.Empty(t, doc.Find(g.ID).Container().Children)
}

func TestZRange(t *testing.T) {
	doc := NewDocument("doc", DefaultPage())
	assert.Equal(t, 0, doc.MaxZ())
	for _, z := range []int{3, -1, 7} {
		e, _ := NewElement(TypeShape)
		e.Transform = e.Transform.WithZ(z)
		doc.Add(e)
	}
	assert.Equal(t, 7, doc.MaxZ())
	assert.Equal(t, -1, doc.MinZ())
}

func TestParseColor(t *testing.T) {
	c, a, ok := ParseColor("#ff8000")
	require.True(t, ok)
	assert.Equal(t, RGB{255, 128, 0}, c)
	assert.Equal(t, 1.0, a)

	c, _, ok = ParseColor("#0F0")
	require.True(t, ok)
	assert.Equal(t, RGB{0, 255, 0}, c)

	c, a, ok = ParseColor("rgba(10, 20, 30, 0.5)")
	require.True(t, ok)
	assert.Equal(t, RGB{10, 20, 30}, c)
	assert.Equal(t, 0.5, a)

	c, _, ok = ParseColor("Navy")
	require.True(t, ok)
	assert.Equal(t, RGB{0, 0, 128}, c)

	for _, s := range []string{"", "none", "transparent", "#12", "rgb(300,0,0)", "rgba(1,2,3,0)", "chartreuse-ish"} {
		_, _, ok := ParseColor(s)
		assert.False(t, ok, s)
	}
}

func TestShapeConfigEncodesKindAsShape(t *testing.T) {
	e, err := NewElement(TypeShape)
	require.NoError(t, err)
	e.Shape().Shape = ShapeEllipse
	assert.Equal(t, TypeShape, e.Config.Kind())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	var raw struct {
		Config map[string]any `json:"config"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "ellipse", raw.Config["shape"])

	var back Element
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ShapeEllipse, back.Shape().Shape)
}
