package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/render"
	"github.com/lvillar/layoutpdf/store"
	"github.com/lvillar/layoutpdf/vars"
)

// Toolkit holds what the template tools work with. Repo may be nil, in
// which case only inline templates can be used and the repository tools are
// not registered.
type Toolkit struct {
	Repo     store.Repository
	Renderer *render.Renderer
	DPI      float64          // export resolution; zero uses the renderer default
	Now      func() time.Time // clock for sample dates
}

func (tk *Toolkit) now() time.Time {
	if tk.Now != nil {
		return tk.Now()
	}
	return time.Now()
}

// RegisterDefaultTools adds the template tools to the server.
func RegisterDefaultTools(s *Server, tk *Toolkit) {
	s.AddTool(renderTemplateTool(tk))
	s.AddTool(inspectTemplateTool(tk))
	s.AddTool(validateTemplateTool(tk))
	if tk.Repo != nil {
		s.AddTool(listTemplatesTool(tk))
		s.AddTool(getTemplateTool(tk))
		s.AddTool(saveTemplateTool(tk))
	}
}

// templateArgs is the schema fragment shared by tools that accept either an
// inline template or a stored one.
func templateArgs() map[string]interface{} {
	return map[string]interface{}{
		"template": map[string]interface{}{
			"type":        "object",
			"description": "Inline design document: page, elements and variables",
		},
		"templateId": map[string]interface{}{
			"type":        "string",
			"description": "Id of a stored template, used when 'template' is omitted",
		},
		"variables": map[string]interface{}{
			"type":        "object",
			"description": "Variable values keyed by name",
		},
	}
}

func (tk *Toolkit) loadTemplate(ctx context.Context, args map[string]interface{}) (*design.Document, error) {
	if raw, ok := args["template"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encoding template: %w", err)
		}
		return design.Parse(data)
	}
	id, _ := args["templateId"].(string)
	if id == "" {
		return nil, fmt.Errorf("missing 'template' or 'templateId' argument")
	}
	if tk.Repo == nil {
		return nil, fmt.Errorf("no template repository configured")
	}
	return tk.Repo.Get(ctx, id)
}

// stringMap converts a JSON object of scalars into variable values.
func stringMap(raw interface{}) (map[string]string, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("variables must be an object")
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case string:
			out[k] = v
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(v)
		case nil:
		default:
			return nil, fmt.Errorf("variable %q must be a string, number or boolean", k)
		}
	}
	return out, nil
}

func renderTemplateTool(tk *Toolkit) Tool {
	props := templateArgs()
	props["records"] = map[string]interface{}{
		"type":        "array",
		"description": "Optional list of variable objects; renders one page per record into a single PDF",
		"items":       map[string]interface{}{"type": "object"},
	}
	props["outputPath"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional file path to save the PDF. If omitted, returns base64.",
	}
	return Tool{
		Name:        "render_template",
		Description: "Render a layout template to PDF, substituting variables. Elements whose image or QR cannot be produced are skipped and reported. Returns the PDF as base64 unless outputPath is given.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
		},
		Handler: tk.handleRenderTemplate,
	}
}

func (tk *Toolkit) handleRenderTemplate(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	doc, err := tk.loadTemplate(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}

	var records []map[string]string
	if raw, ok := args["records"].([]interface{}); ok {
		for i, r := range raw {
			values, err := stringMap(r)
			if err != nil {
				return ToolResult{}, fmt.Errorf("record %d: %w", i, err)
			}
			records = append(records, values)
		}
	} else {
		values, err := stringMap(args["variables"])
		if err != nil {
			return ToolResult{}, err
		}
		records = []map[string]string{values}
	}
	for i, values := range records {
		resolved, missing := vars.Resolve(doc.Variables, values)
		if len(missing) > 0 {
			return ToolResult{}, fmt.Errorf("record %d: missing required variables: %s", i, strings.Join(missing, ", "))
		}
		records[i] = resolved
	}

	target := render.Target{DPI: tk.DPI, Action: render.ActionBytes}
	outputPath, _ := args["outputPath"].(string)
	if outputPath != "" {
		target.Action = render.ActionSave
		target.Filename = outputPath
	}

	res := tk.Renderer.RenderBatch(ctx, doc, records, target)
	if !res.OK {
		return ToolResult{}, fmt.Errorf("rendering PDF: %s", res.Message)
	}

	var notes strings.Builder
	for _, sk := range res.Skipped {
		id := sk.ElementID
		if id == "" {
			id = "page background"
		}
		fmt.Fprintf(&notes, "\nskipped %s: %s", id, sk.Reason)
	}

	if outputPath != "" {
		return textResult("PDF created successfully: %s (%d bytes, %d pages)%s", res.Path, len(res.Bytes), res.Pages, notes.String()), nil
	}
	encoded := base64.StdEncoding.EncodeToString(res.Bytes)
	return textResult("PDF created successfully (%d bytes, %d pages)%s\nBase64 data:\n%s", len(res.Bytes), res.Pages, notes.String(), encoded), nil
}

func inspectTemplateTool(tk *Toolkit) Tool {
	return Tool{
		Name:        "inspect_template",
		Description: "Report a template's declared and referenced variables, which required ones are still missing for the given values, and sample values for previews.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": templateArgs(),
		},
		Handler: tk.handleInspectTemplate,
	}
}

func (tk *Toolkit) handleInspectTemplate(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	doc, err := tk.loadTemplate(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}
	values, err := stringMap(args["variables"])
	if err != nil {
		return ToolResult{}, err
	}
	return jsonResult(vars.Inspect(doc, values, tk.now()))
}

func validateTemplateTool(tk *Toolkit) Tool {
	return Tool{
		Name:        "validate_template",
		Description: "Check that a template is well formed: page size and margins, element types and ids, variable declarations.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template": map[string]interface{}{
					"type":        "object",
					"description": "Inline design document",
				},
			},
			"required": []string{"template"},
		},
		Handler: tk.handleValidateTemplate,
	}
}

func (tk *Toolkit) handleValidateTemplate(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	doc, err := tk.loadTemplate(ctx, map[string]interface{}{"template": args["template"]})
	if err != nil {
		return textResult("Template is invalid: %v", err), nil
	}
	counts := map[design.ElementType]int{}
	for _, e := range doc.Elements {
		counts[e.Type]++
	}
	kinds := make([]string, 0, len(counts))
	for k, n := range counts {
		kinds = append(kinds, fmt.Sprintf("%d %s", n, k))
	}
	sort.Strings(kinds)
	w, h := doc.Page.Size()
	return textResult("Template is valid: %gx%g mm, %d elements (%s), %d variables",
		w, h, len(doc.Elements), strings.Join(kinds, ", "), len(doc.Variables)), nil
}

func listTemplatesTool(tk *Toolkit) Tool {
	return Tool{
		Name:        "list_templates",
		Description: "List stored templates with their ids, names, element counts and variable names.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Handler: tk.handleListTemplates,
	}
}

func (tk *Toolkit) handleListTemplates(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	list, err := tk.Repo.List(ctx)
	if err != nil {
		return ToolResult{}, err
	}
	return jsonResult(list)
}

func getTemplateTool(tk *Toolkit) Tool {
	return Tool{
		Name:        "get_template",
		Description: "Return a stored template as a JSON design document.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Template id",
				},
			},
			"required": []string{"id"},
		},
		Handler: tk.handleGetTemplate,
	}
}

func (tk *Toolkit) handleGetTemplate(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return ToolResult{}, fmt.Errorf("missing 'id' argument")
	}
	doc, err := tk.Repo.Get(ctx, id)
	if err != nil {
		return ToolResult{}, err
	}
	return jsonResult(doc)
}

func saveTemplateTool(tk *Toolkit) Tool {
	return Tool{
		Name:        "save_template",
		Description: "Store an inline template and return its id. Use 'duplicateOf' instead to copy a stored template.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template": map[string]interface{}{
					"type":        "object",
					"description": "Inline design document",
				},
				"duplicateOf": map[string]interface{}{
					"type":        "string",
					"description": "Id of a stored template to copy",
				},
			},
		},
		Handler: tk.handleSaveTemplate,
	}
}

func (tk *Toolkit) handleSaveTemplate(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	var (
		doc *design.Document
		err error
	)
	if src, _ := args["duplicateOf"].(string); src != "" {
		doc, err = tk.Repo.Duplicate(ctx, src)
	} else {
		doc, err = tk.loadTemplate(ctx, map[string]interface{}{"template": args["template"]})
		if err == nil {
			doc, err = tk.Repo.Create(ctx, doc)
		}
	}
	if err != nil {
		return ToolResult{}, err
	}
	return textResult("Template saved: %s (%s)", doc.ID, doc.Name), nil
}
