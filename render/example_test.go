package render_test

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/render"
)

func ExampleRenderer_Render() {
	doc := design.NewDocument("Certificate", design.DefaultPage())
	txt, err := design.NewElement(design.TypeText)
	if err != nil {
		fmt.Println(err)
		return
	}
	txt.Text().Content = "Awarded to {{name}}"
	doc.Add(txt)

	r := render.New(render.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }))
	res := r.Render(context.Background(), doc, map[string]string{"name": "Ana"}, render.Target{Action: render.ActionBytes})

	fmt.Println(res.OK, res.Pages, bytes.HasPrefix(res.Bytes, []byte("%PDF")))
	// Output: true 1 true
}
