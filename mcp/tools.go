package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lvillar/formlayout/doctpl"
	"github.com/lvillar/formlayout/manifest"
	"github.com/lvillar/formlayout/pdfwriter"
	"github.com/lvillar/formlayout/record"
	"github.com/lvillar/formlayout/template"
)

// Toolkit holds what the form tools need to render.
type Toolkit struct {
	Assets template.AssetSource
	Writer []pdfwriter.Option
	Logger *zap.Logger
}

// RegisterDefaultTools adds all form tools to the server.
func RegisterDefaultTools(s *Server, tk Toolkit) {
	if tk.Logger == nil {
		tk.Logger = zap.NewNop()
	}
	s.AddTool(tk.renderFormTool())
	s.AddTool(tk.listFieldsTool())
	s.AddTool(listVariantsTool())
	s.AddTool(validateTemplateTool())
}

var templateArgs = map[string]interface{}{
	"template": map[string]interface{}{
		"type":        "string",
		"description": "Name of a built-in template (e.g. \"bewirtung\") or path to a .json, .yaml or .toml description",
	},
	"description": map[string]interface{}{
		"type":        "object",
		"description": "Inline form description; used instead of 'template'",
	},
}

func schema(required []string, extra map[string]interface{}) map[string]interface{} {
	props := make(map[string]interface{}, len(templateArgs)+len(extra))
	for k, v := range templateArgs {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	s := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// loadDocument resolves the 'description' or 'template' argument.
func loadDocument(args map[string]interface{}) (*doctpl.Document, error) {
	if desc, ok := args["description"]; ok && desc != nil {
		data, err := json.Marshal(desc)
		if err != nil {
			return nil, fmt.Errorf("encoding description: %w", err)
		}
		return doctpl.Parse(data, doctpl.FormatJSON)
	}
	ref, _ := args["template"].(string)
	if ref == "" {
		return nil, fmt.Errorf("missing 'template' or 'description' argument")
	}
	return doctpl.LoadAny(ref)
}

func applyTheme(doc *doctpl.Document, args map[string]interface{}) {
	if th, ok := args["theme"].(string); ok && th != "" {
		doc.Theme = th
	}
}

var themeArg = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"basic", "styled"},
	"description": "Override the description's theme",
}

func (tk Toolkit) renderFormTool() Tool {
	return Tool{
		Name:        "render_form",
		Description: "Render one variant of a form template as a fillable PDF. Returns the PDF as base64 unless outputPath is given.",
		InputSchema: schema(nil, map[string]interface{}{
			"variant": map[string]interface{}{
				"type":        "string",
				"description": "Variant name; defaults to the first declared variant",
			},
			"theme": themeArg,
			"outputPath": map[string]interface{}{
				"type":        "string",
				"description": "Optional file path to save the PDF. If omitted, returns base64.",
			},
		}),
		Handler: tk.handleRenderForm,
	}
}

func (tk Toolkit) renderOptions() []doctpl.RenderOption {
	opts := []doctpl.RenderOption{
		doctpl.WithLogger(tk.Logger),
		doctpl.WithWriterOptions(tk.Writer...),
	}
	if tk.Assets != nil {
		opts = append(opts, doctpl.WithAssets(tk.Assets))
	}
	return opts
}

func (tk Toolkit) handleRenderForm(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	doc, err := loadDocument(args)
	if err != nil {
		return ToolResult{}, err
	}
	applyTheme(doc, args)
	variant, _ := args["variant"].(string)

	var buf bytes.Buffer
	if err := doctpl.RenderDocument(ctx, &buf, doc, variant, tk.renderOptions()...); err != nil {
		return ToolResult{}, fmt.Errorf("rendering form: %w", err)
	}

	if outputPath, ok := args["outputPath"].(string); ok && outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return ToolResult{}, fmt.Errorf("creating directory: %w", err)
		}
		if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return textResult(fmt.Sprintf("Form rendered: %s (%d bytes)", outputPath, buf.Len())), nil
	}

	return ToolResult{
		Content: []ContentBlock{
			{Type: "text", Text: fmt.Sprintf("Form rendered (%d bytes). Base64 data follows.", buf.Len())},
			{Type: "resource", MIMEType: "application/pdf", Data: base64.StdEncoding.EncodeToString(buf.Bytes())},
		},
	}, nil
}

func (tk Toolkit) listFieldsTool() Tool {
	return Tool{
		Name:        "list_fields",
		Description: "List the fillable fields of a form template with their names, labels, kinds and rectangles in points.",
		InputSchema: schema(nil, map[string]interface{}{"theme": themeArg}),
		Handler:     tk.handleListFields,
	}
}

func (tk Toolkit) handleListFields(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	doc, err := loadDocument(args)
	if err != nil {
		return ToolResult{}, err
	}
	applyTheme(doc, args)
	m, err := Manifest(ctx, doc, tk.Assets)
	if err != nil {
		return ToolResult{}, err
	}
	var buf bytes.Buffer
	if err := m.WriteJSON(&buf); err != nil {
		return ToolResult{}, err
	}
	return textResult(buf.String()), nil
}

// Manifest lays out doc and lists its fields. Field geometry is the same for
// every variant, so the manifest is not tied to one.
func Manifest(ctx context.Context, doc *doctpl.Document, assets template.AssetSource) (*manifest.Manifest, error) {
	tpl, err := doc.Template()
	if err != nil {
		return nil, err
	}
	var opts []template.Option
	if assets != nil {
		opts = append(opts, template.WithAssets(assets))
	}
	e, err := doc.Engine(opts...)
	if err != nil {
		return nil, err
	}
	g := e.Geometry()
	base, err := e.Render(ctx, tpl, record.New(g.Width, g.Height, pdfwriter.NewFactory()))
	if err != nil {
		return nil, err
	}
	return manifest.New(tpl.Name, "", g, base.Fields()), nil
}

func listVariantsTool() Tool {
	return Tool{
		Name:        "list_variants",
		Description: "List the variants (badge overlays) a form template declares.",
		InputSchema: schema(nil, nil),
		Handler:     handleListVariants,
	}
}

func handleListVariants(_ context.Context, args map[string]interface{}) (ToolResult, error) {
	doc, err := loadDocument(args)
	if err != nil {
		return ToolResult{}, err
	}
	tpl, err := doc.Template()
	if err != nil {
		return ToolResult{}, err
	}
	out := make([]map[string]interface{}, 0, len(tpl.Variants))
	for _, v := range tpl.Variants {
		entry := map[string]interface{}{
			"name":       v.Name,
			"label":      v.Label,
			"documentId": template.DocumentID(tpl.Name, v.Name),
		}
		if v.Accent != nil {
			entry["accent"] = v.Accent.Hex()
		}
		out = append(out, entry)
	}
	return jsonResult(map[string]interface{}{"template": tpl.Name, "variants": out})
}

func validateTemplateTool() Tool {
	return Tool{
		Name:        "validate_template",
		Description: "Check that a form description parses and lays out on its page under both themes without overlapping or overflowing fields.",
		InputSchema: schema(nil, nil),
		Handler:     handleValidateTemplate,
	}
}

func handleValidateTemplate(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	doc, err := loadDocument(args)
	if err != nil {
		return ToolResult{}, err
	}
	var problems []string
	for _, theme := range []string{"basic", "styled"} {
		d := *doc
		d.Theme = theme
		if _, err := Manifest(ctx, &d, nil); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", theme, err))
		}
	}
	if len(problems) > 0 {
		return ToolResult{
			Content: []ContentBlock{{Type: "text", Text: "Invalid template:\n" + strings.Join(problems, "\n")}},
			IsError: true,
		}, nil
	}
	return textResult(fmt.Sprintf("Template %q is valid.", doc.Name)), nil
}

func textResult(s string) ToolResult {
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: s}}}
}

func jsonResult(v interface{}) (ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(string(data)), nil
}
