package vars_test

import (
	"fmt"
	"time"

	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/vars"
)

func ExampleSubstitute() {
	values := map[string]string{"name": "Ana"}
	fmt.Println(vars.Substitute("Awarded to {{name}} on {{date}}", values))
	// Output: Awarded to Ana on {{date}}
}

func ExampleEffectiveText() {
	c := &design.TextConfig{Content: "placeholder", IsDynamic: true, VariableName: "title"}
	fmt.Println(vars.EffectiveText(c, map[string]string{"title": "Dr. {{name}}", "name": "Ana"}))
	fmt.Println(vars.EffectiveText(c, nil))
	// Output:
	// Dr. Ana
	// placeholder
}

func ExampleSamples() {
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	samples := vars.Samples([]design.TemplateVariable{
		{Name: "name", Label: "Recipient", Type: design.VarText},
		{Name: "issued", Type: design.VarDate},
		{Name: "score", Type: design.VarNumber},
	}, now)
	fmt.Println(samples["name"], samples["issued"], samples["score"])
	// Output: [Recipient] 09/03/2024 123
}
