// Package layoutpdf composes page-sized layouts (certificates, cards, badges)
// from typed design elements and renders them, with runtime variables
// substituted, into print-ready PDF pages.
//
// The work is split across focused packages:
//
//   - units: millimetre and device-pixel conversion
//   - design: the document model (page, elements, variables) and its JSON form
//   - geometry: margin containment, grid snapping and alignment guides
//   - history: bounded undo/redo over document snapshots
//   - vars: {{token}} substitution and sample values
//   - asset: image decoding and QR/barcode encoding
//   - render: the paint plan and the PDF painter
//   - editor: the session that owns a document while it is being edited
//   - store: template repositories (files, SQL, Redis cache)
//
// Example:
//
//	doc, _ := design.Parse(data)
//	res := render.New().Render(ctx, doc, map[string]string{"name": "Ana"}, render.Target{})
//	if !res.OK {
//	    log.Fatal(res.Message)
//	}
//	os.WriteFile("out.pdf", res.Bytes, 0644)
package layoutpdf
