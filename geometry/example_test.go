package geometry_test

import (
	"fmt"

	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/geometry"
)

func ExampleEngine_Enforce() {
	e := geometry.NewEngine(geometry.Rect{Width: 300, Height: 300})

	t := e.Enforce(design.Transform{Width: 400, Height: 300})
	fmt.Println(t.X, t.Y, t.Width, t.Height)
	// Output: 0 0 300 225
}
