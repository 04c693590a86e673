package vars

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lvillar/layoutpdf/design"
)

func TestSubstituteKeepsUnknownTokens(t *testing.T) {
	got := Substitute("Hola {{nombre}}, {{desconocido}}", map[string]string{"nombre": "Ana"})
	assert.Equal(t, "Hola Ana, {{desconocido}}", got)
}

func TestSubstituteIsIdempotent(t *testing.T) {
	values := map[string]string{"a": "1", "b": "two words", "c": ""}
	for _, s := range []string{
		"",
		"plain",
		"{{a}}{{b}}{{c}}",
		"{{a}} and {{missing}} and {{ a }}",
		"{{{a}}}",
		"{{a}",
	} {
		once := Substitute(s, values)
		assert.Equal(t, once, Substitute(once, values), s)
	}
}

func TestSubstituteIgnoresMalformedTokens(t *testing.T) {
	values := map[string]string{"a-b": "x", "a": "y"}
	assert.Equal(t, "{{a-b}} {{ a }} y", Substitute("{{a-b}} {{ a }} {{a}}", values))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"name", "date"}, Tokens("{{name}} on {{date}} by {{name}}"))
	assert.Empty(t, Tokens("no tokens"))
}

func TestEffectiveTextDynamicBinding(t *testing.T) {
	c := &design.TextConfig{Content: "Literal", IsDynamic: true, VariableName: "greeting"}
	values := map[string]string{"greeting": "Hello {{name}}", "name": "Ana"}
	assert.Equal(t, "Hello Ana", EffectiveText(c, values))

	// Unbound value falls back to the literal content.
	assert.Equal(t, "Literal", EffectiveText(c, map[string]string{}))

	c.IsDynamic = false
	assert.Equal(t, "Literal", EffectiveText(c, values))
}

func TestEffectiveQR(t *testing.T) {
	c := &design.QRConfig{Content: "https://verify.example/{{id}}"}
	assert.Equal(t, "https://verify.example/42", EffectiveQR(c, map[string]string{"id": "42"}))
	assert.Equal(t, "", EffectiveQR(nil, nil))
}

func TestEffectiveImageSource(t *testing.T) {
	dyn := &design.ImageConfig{IsDynamic: true, VariableName: "logo"}
	assert.Equal(t, "logo.png", EffectiveImageSource(dyn, map[string]string{"logo": "logo.png"}))
	assert.Equal(t, "", EffectiveImageSource(dyn, nil))

	lit := &design.ImageConfig{Src: "static.png"}
	assert.Equal(t, "static.png", EffectiveImageSource(lit, map[string]string{"logo": "x.png"}))
}

func TestSamples(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	declared := []design.TemplateVariable{
		{Name: "name", Label: "Recipient", Type: design.VarText},
		{Name: "when", Type: design.VarDate},
		{Name: "score", Type: design.VarNumber},
		{Name: "photo", Type: design.VarImage},
		{Name: "course", Type: design.VarText, Default: "Go 101"},
	}
	got := Samples(declared, now)
	assert.Equal(t, map[string]string{
		"name":   "[Recipient]",
		"when":   "09/03/2024",
		"score":  "123",
		"photo":  "",
		"course": "Go 101",
	}, got)
}

func TestResolve(t *testing.T) {
	declared := []design.TemplateVariable{
		{Name: "name", Type: design.VarText, Required: true},
		{Name: "course", Type: design.VarText, Default: "Go 101", Required: true},
		{Name: "date", Type: design.VarDate, Required: true},
	}
	values, missing := Resolve(declared, map[string]string{"name": "Ana", "extra": "x"})
	assert.Equal(t, map[string]string{"name": "Ana", "course": "Go 101", "extra": "x"}, values)
	assert.Equal(t, []string{"date"}, missing)
}

func TestReferenced(t *testing.T) {
	doc := design.NewDocument("d", design.DefaultPage())
	doc.Add(&design.Element{ID: "t", Type: design.TypeText, Config: &design.TextConfig{Content: "{{b}} {{a}}"}})
	doc.Add(&design.Element{ID: "i", Type: design.TypeImage, Config: &design.ImageConfig{IsDynamic: true, VariableName: "photo"}})
	doc.Add(&design.Element{ID: "q", Type: design.TypeQR, Config: &design.QRConfig{Content: "x", IsDynamic: true, VariableName: "a"}})
	assert.Equal(t, []string{"a", "b", "photo"}, Referenced(doc))
}

func TestInspect(t *testing.T) {
	doc := design.NewDocument("d", design.DefaultPage())
	doc.Add(&design.Element{ID: "t", Type: design.TypeText, Config: &design.TextConfig{Content: "{{name}} {{course}}"}})
	doc.Variables = []design.TemplateVariable{
		{Name: "name", Type: design.VarText, Required: true},
		{Name: "issued", Type: design.VarDate},
	}
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	r := Inspect(doc, nil, now)
	assert.Equal(t, []string{"course", "name"}, r.Referenced)
	assert.Equal(t, []string{"course"}, r.Undeclared)
	assert.Equal(t, []string{"issued"}, r.Unused)
	assert.Equal(t, []string{"name"}, r.Missing)
	assert.Equal(t, "09/03/2024", r.Samples["issued"])

	r = Inspect(doc, map[string]string{"name": "Ana"}, now)
	assert.Empty(t, r.Missing)
}
