package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lvillar/layoutpdf/design"
	"github.com/lvillar/layoutpdf/render"
	"github.com/lvillar/layoutpdf/store"
)

func fixedNow() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

func newToolkit(t *testing.T) *Toolkit {
	t.Helper()
	repo, err := store.NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatalf("creating repository: %v", err)
	}
	return &Toolkit{
		Repo:     repo,
		Renderer: render.New(render.WithClock(fixedNow), render.WithQREncoder(nil)),
		Now:      fixedNow,
	}
}

func newTestServer(t *testing.T) (*Server, *Toolkit) {
	t.Helper()
	tk := newToolkit(t)
	s := NewServer(WithIO(nil, nil))
	RegisterDefaultTools(s, tk)
	RegisterDefaultResources(s, tk)
	return s, tk
}

// certificate returns a one-text template as the generic JSON object a
// client would send.
func certificate(t *testing.T) (*design.Document, map[string]interface{}) {
	t.Helper()
	doc := design.NewDocument("Certificate", design.DefaultPage())
	txt, err := design.NewElement(design.TypeText)
	if err != nil {
		t.Fatal(err)
	}
	txt.Text().Content = "Awarded to {{name}}"
	doc.Add(txt)
	doc.Variables = []design.TemplateVariable{{Name: "name", Type: design.VarText, Required: true}}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatal(err)
	}
	return doc, obj
}

func sendRequest(t *testing.T, s *Server, method string, id int, params interface{}) jsonrpcResponse {
	t.Helper()

	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}

	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	reqBytes = append(reqBytes, '\n')

	var output bytes.Buffer
	s.input = bytes.NewReader(reqBytes)
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", output.String(), err)
	}
	return resp
}

// callTool invokes a tool and returns the text of its first content block.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	resp := sendRequest(t, s, "tools/call", 9, map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	var result ToolResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decoding tool result: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	return result.Content[0].Text, result.IsError
}

func TestServerInitialize(t *testing.T) {
	s := NewServer(WithIO(nil, nil), WithVersion("1.2.3"))

	resp := sendRequest(t, s, "initialize", 1, map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]interface{}{"name": "test", "version": "1.0"},
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("result is not a map")
	}

	if result["protocolVersion"] != "2024-11-05" {
		t.Fatalf("unexpected protocol version: %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("missing serverInfo")
	}
	if serverInfo["name"] != ServerName || serverInfo["version"] != "1.2.3" {
		t.Fatalf("unexpected server info: %v", serverInfo)
	}
}

func TestServerToolsList(t *testing.T) {
	s, _ := newTestServer(t)

	resp := sendRequest(t, s, "tools/list", 2, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]interface{})
	if !ok {
		t.Fatal("tools is not an array")
	}

	var names []string
	for _, tool := range tools {
		if tm, ok := tool.(map[string]interface{}); ok {
			names = append(names, tm["name"].(string))
		}
	}
	want := "get_template,inspect_template,list_templates,render_template,save_template,validate_template"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("tools = %s, want %s (sorted)", got, want)
	}
}

func TestServerToolsWithoutRepository(t *testing.T) {
	s := NewServer(WithIO(nil, nil))
	tk := &Toolkit{Renderer: render.New()}
	RegisterDefaultTools(s, tk)
	RegisterDefaultResources(s, tk)

	if len(s.tools) != 3 {
		t.Fatalf("expected 3 tools without a repository, got %d", len(s.tools))
	}
	if len(s.resources) != 0 {
		t.Fatalf("expected no resources without a repository, got %d", len(s.resources))
	}
}

func TestServerResourcesList(t *testing.T) {
	s, _ := newTestServer(t)

	resp := sendRequest(t, s, "resources/list", 3, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	resources, ok := resp.Result.(map[string]interface{})["resources"].([]interface{})
	if !ok {
		t.Fatal("resources is not an array")
	}
	if len(resources) != 3 {
		t.Fatalf("expected 3 resources, got %d", len(resources))
	}
}

func TestServerPing(t *testing.T) {
	s := NewServer(WithIO(nil, nil))

	resp := sendRequest(t, s, "ping", 4, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	s := NewServer(WithIO(nil, nil))

	resp := sendRequest(t, s, "nonexistent/method", 5, nil)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Fatalf("expected error code -32601, got %d", resp.Error.Code)
	}
}

func TestServerUnknownTool(t *testing.T) {
	s, _ := newTestServer(t)

	resp := sendRequest(t, s, "tools/call", 6, map[string]interface{}{
		"name":      "nonexistent_tool",
		"arguments": map[string]interface{}{},
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRenderTemplateTool(t *testing.T) {
	s, _ := newTestServer(t)
	_, tpl := certificate(t)

	text, isErr := callTool(t, s, "render_template", map[string]interface{}{
		"template":  tpl,
		"variables": map[string]interface{}{"name": "Ana"},
	})
	if isErr {
		t.Fatalf("tool failed: %s", text)
	}
	if !strings.Contains(text, "PDF created successfully") || !strings.Contains(text, "1 pages") {
		t.Fatalf("unexpected result: %s", text)
	}
	_, b64, ok := strings.Cut(text, "Base64 data:\n")
	if !ok {
		t.Fatalf("expected base64 data in result: %s", text)
	}
	pdf, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("decoding base64: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("not a PDF: %q", pdf[:min(len(pdf), 16)])
	}
}

func TestRenderTemplateToolMissingVariable(t *testing.T) {
	s, _ := newTestServer(t)
	_, tpl := certificate(t)

	text, isErr := callTool(t, s, "render_template", map[string]interface{}{"template": tpl})
	if !isErr || !strings.Contains(text, "missing required variables: name") {
		t.Fatalf("expected missing variable error, got %q", text)
	}
}

func TestRenderTemplateToolBatchToFile(t *testing.T) {
	s, tk := newTestServer(t)
	doc, _ := certificate(t)
	if _, err := tk.Repo.Create(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "batch.pdf")

	text, isErr := callTool(t, s, "render_template", map[string]interface{}{
		"templateId": doc.ID,
		"records": []interface{}{
			map[string]interface{}{"name": "Ana"},
			map[string]interface{}{"name": "Luis"},
			map[string]interface{}{"name": 42.0},
		},
		"outputPath": out,
	})
	if isErr {
		t.Fatalf("tool failed: %s", text)
	}
	if !strings.Contains(text, "3 pages") {
		t.Fatalf("unexpected result: %s", text)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output not written: %v", err)
	}
}

func TestInspectTemplateTool(t *testing.T) {
	s, _ := newTestServer(t)
	_, tpl := certificate(t)

	text, isErr := callTool(t, s, "inspect_template", map[string]interface{}{"template": tpl})
	if isErr {
		t.Fatalf("tool failed: %s", text)
	}
	var report struct {
		Referenced []string          `json:"referenced"`
		Missing    []string          `json:"missing"`
		Samples    map[string]string `json:"samples"`
	}
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if len(report.Missing) != 1 || report.Missing[0] != "name" {
		t.Fatalf("missing = %v", report.Missing)
	}
	if report.Samples["name"] != "[name]" {
		t.Fatalf("samples = %v", report.Samples)
	}
}

func TestValidateTemplateTool(t *testing.T) {
	s, _ := newTestServer(t)
	_, tpl := certificate(t)

	text, _ := callTool(t, s, "validate_template", map[string]interface{}{"template": tpl})
	if !strings.HasPrefix(text, "Template is valid: 210x297 mm, 1 elements (1 text)") {
		t.Fatalf("unexpected result: %s", text)
	}

	tpl["page"].(map[string]interface{})["width"] = -1.0
	text, _ = callTool(t, s, "validate_template", map[string]interface{}{"template": tpl})
	if !strings.HasPrefix(text, "Template is invalid") {
		t.Fatalf("unexpected result: %s", text)
	}
}

func TestTemplateRepositoryTools(t *testing.T) {
	s, _ := newTestServer(t)
	_, tpl := certificate(t)

	text, isErr := callTool(t, s, "save_template", map[string]interface{}{"template": tpl})
	if isErr {
		t.Fatalf("save failed: %s", text)
	}
	id := tpl["id"].(string)

	text, _ = callTool(t, s, "save_template", map[string]interface{}{"duplicateOf": id})
	if !strings.Contains(text, "Certificate (copy)") {
		t.Fatalf("unexpected duplicate result: %s", text)
	}

	text, _ = callTool(t, s, "list_templates", nil)
	var list []store.Summary
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(list))
	}

	text, isErr = callTool(t, s, "get_template", map[string]interface{}{"id": id})
	if isErr {
		t.Fatalf("get failed: %s", text)
	}
	if _, err := design.Parse([]byte(text)); err != nil {
		t.Fatalf("get_template returned an invalid document: %v", err)
	}

	_, isErr = callTool(t, s, "get_template", map[string]interface{}{"id": "missing"})
	if !isErr {
		t.Fatal("expected an error for a missing template")
	}
}

func TestTemplateResources(t *testing.T) {
	s, tk := newTestServer(t)
	doc, _ := certificate(t)
	if _, err := tk.Repo.Create(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	resp := sendRequest(t, s, "resources/read", 1, map[string]interface{}{"uri": "template://get?id=" + doc.ID})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	if !strings.Contains(string(data), "Awarded to {{name}}") {
		t.Fatalf("unexpected contents: %s", data)
	}

	resp = sendRequest(t, s, "resources/read", 2, map[string]interface{}{"uri": "template://get"})
	if resp.Error == nil || resp.Error.Code != -32603 {
		t.Fatalf("expected resource error, got %+v", resp.Error)
	}

	resp = sendRequest(t, s, "resources/read", 3, map[string]interface{}{"uri": "template://nope"})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected unknown resource, got %+v", resp.Error)
	}
}

func TestServerMultipleRequests(t *testing.T) {
	requests := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"ping"}`,
	}

	input := strings.Join(requests, "\n") + "\n"
	var output bytes.Buffer

	tk := newToolkit(t)
	s := NewServer(WithIO(strings.NewReader(input), &output))
	RegisterDefaultTools(s, tk)
	RegisterDefaultResources(s, tk)

	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 responses, got %d: %s", len(lines), output.String())
	}

	for i, line := range lines {
		var resp jsonrpcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response %d: unmarshal error: %v\nline: %s", i, err, line)
		}
		if resp.Error != nil {
			t.Errorf("response %d: unexpected error: %s", i, resp.Error.Message)
		}
	}
}

func TestServerParseError(t *testing.T) {
	var output bytes.Buffer
	s := NewServer(WithIO(strings.NewReader("{not json}\n"), &output))
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != -32700 {
		t.Fatalf("expected parse error, got %+v", resp)
	}
}

func TestServerAddTool(t *testing.T) {
	s := NewServer(WithIO(nil, nil))

	s.AddTool(Tool{
		Name:        "custom_tool",
		Description: "A custom test tool",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			return textResult("custom result"), nil
		},
	})

	text, isErr := callTool(t, s, "custom_tool", map[string]interface{}{})
	if isErr || text != "custom result" {
		t.Fatalf("unexpected result: %q", text)
	}
}
