package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lvillar/layoutpdf/vars"
)

// RegisterDefaultResources adds the template resources to the server. They
// need a repository and are skipped when tk.Repo is nil.
func RegisterDefaultResources(s *Server, tk *Toolkit) {
	if tk.Repo == nil {
		return
	}
	s.AddResource(Resource{
		URI:         "template://list",
		Name:        "Stored templates",
		Description: "Summaries of every stored template.",
		MIMEType:    "application/json",
		Handler:     tk.handleListResource,
	})

	s.AddResource(Resource{
		URI:         "template://get",
		Name:        "Template document",
		Description: "A stored template as a JSON design document. Pass the id as a query parameter: template://get?id=...",
		MIMEType:    "application/json",
		Handler:     tk.handleGetResource,
	})

	s.AddResource(Resource{
		URI:         "template://variables",
		Name:        "Template variables",
		Description: "Declared, referenced and sample variables of a stored template: template://variables?id=...",
		MIMEType:    "application/json",
		Handler:     tk.handleVariablesResource,
	})
}

func queryParam(uri, key string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

func jsonContent(uri string, v interface{}) ([]ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(data),
	}}, nil
}

func (tk *Toolkit) handleListResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	list, err := tk.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, list)
}

func (tk *Toolkit) handleGetResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	id := queryParam(uri, "id")
	if id == "" {
		return nil, fmt.Errorf("missing 'id' parameter in URI")
	}
	doc, err := tk.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, doc)
}

func (tk *Toolkit) handleVariablesResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	id := queryParam(uri, "id")
	if id == "" {
		return nil, fmt.Errorf("missing 'id' parameter in URI")
	}
	doc, err := tk.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, vars.Inspect(doc, nil, tk.now()))
}
