package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lvillar/formlayout/doctpl"
	"github.com/lvillar/formlayout/template"
)

// RegisterDefaultResources adds the form resources to the server.
// Resources use the form:// scheme; parameters go into the query.
func RegisterDefaultResources(s *Server, assets template.AssetSource) {
	s.AddResource(Resource{
		URI:         "form://templates",
		Name:        "Built-in form templates",
		Description: "Names, titles, variants and field counts of the built-in templates.",
		MIMEType:    "application/json",
		Handler:     handleTemplatesResource,
	})

	s.AddResource(Resource{
		URI:         "form://fields",
		Name:        "Form field manifest",
		Description: "Field manifest of a template: form://fields?template=bewirtung&theme=styled",
		MIMEType:    "application/json",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			return handleFieldsResource(ctx, uri, assets)
		},
	})
}

func handleTemplatesResource(_ context.Context, uri string) ([]ResourceContent, error) {
	type variant struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	type entry struct {
		Name     string    `json:"name"`
		Title    string    `json:"title"`
		Fields   int       `json:"fields"`
		Variants []variant `json:"variants"`
	}

	var out []entry
	for _, name := range doctpl.BuiltinNames() {
		doc, err := doctpl.Builtin(name)
		if err != nil {
			return nil, err
		}
		tpl, err := doc.Template()
		if err != nil {
			return nil, fmt.Errorf("builtin %q: %w", name, err)
		}
		e := entry{Name: name, Title: tpl.Header.Title, Fields: tpl.FieldCount()}
		for _, v := range tpl.Variants {
			e.Variants = append(e.Variants, variant{Name: v.Name, Label: v.Label})
		}
		out = append(out, e)
	}

	data, err := json.MarshalIndent(map[string]interface{}{"templates": out}, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}

func handleFieldsResource(ctx context.Context, uri string, assets template.AssetSource) ([]ResourceContent, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing URI: %w", err)
	}
	q := u.Query()
	name := q.Get("template")
	if name == "" {
		return nil, fmt.Errorf("missing 'template' parameter in URI")
	}
	doc, err := doctpl.Builtin(name)
	if err != nil {
		return nil, err
	}
	if th := q.Get("theme"); th != "" {
		doc.Theme = th
	}
	m, err := Manifest(ctx, doc, assets)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := m.WriteJSON(&buf); err != nil {
		return nil, err
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: buf.String()}}, nil
}
