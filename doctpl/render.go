package doctpl

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/lvillar/formlayout/pdfwriter"
	"github.com/lvillar/formlayout/template"
)

// RenderOption configures Render and Produce.
type RenderOption func(*renderConfig)

type renderConfig struct {
	assets  template.AssetSource
	logger  *zap.Logger
	writer  []pdfwriter.Option
	creator string
}

// WithAssets sets the source of the header logo.
func WithAssets(src template.AssetSource) RenderOption {
	return func(c *renderConfig) { c.assets = src }
}

// WithLogger sets the logger for the engine and the writers.
func WithLogger(l *zap.Logger) RenderOption {
	return func(c *renderConfig) { c.logger = l }
}

// WithWriterOptions passes options through to every PDF writer.
func WithWriterOptions(opts ...pdfwriter.Option) RenderOption {
	return func(c *renderConfig) { c.writer = append(c.writer, opts...) }
}

// WithCreator sets the creator recorded in the PDF metadata.
func WithCreator(name string) RenderOption {
	return func(c *renderConfig) { c.creator = name }
}

func newRenderConfig(opts []RenderOption) renderConfig {
	c := renderConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Produce renders the requested variants of doc, or all of them when names
// is empty. Every successful result holds an unfinalised PDF document.
func Produce(ctx context.Context, doc *Document, names []string, opts ...RenderOption) ([]template.Result, error) {
	cfg := newRenderConfig(opts)
	tpl, err := doc.Template()
	if err != nil {
		return nil, err
	}
	engineOpts := []template.Option{template.WithLogger(cfg.logger)}
	if cfg.assets != nil {
		engineOpts = append(engineOpts, template.WithAssets(cfg.assets))
	}
	if cfg.creator != "" {
		engineOpts = append(engineOpts, template.WithCreator(cfg.creator))
	}
	e, err := doc.Engine(engineOpts...)
	if err != nil {
		return nil, err
	}

	variants := tpl.Variants
	if len(names) > 0 {
		variants = variants[:0:0]
		for _, n := range names {
			v, ok := tpl.Variant(n)
			if !ok {
				return nil, fmt.Errorf("doctpl: template %q has no variant %q", tpl.Name, n)
			}
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("doctpl: template %q declares no variants", tpl.Name)
	}

	writerOpts := append([]pdfwriter.Option{pdfwriter.WithLogger(cfg.logger)}, cfg.writer...)
	return e.Produce(ctx, tpl, variants, pdfwriter.NewFactory(writerOpts...))
}

// RenderDocument writes the PDF of one variant of doc to w. An empty
// variant selects the first declared one.
func RenderDocument(ctx context.Context, w io.Writer, doc *Document, variant string, opts ...RenderOption) error {
	var names []string
	if variant != "" {
		names = []string{variant}
	} else if len(doc.Variants) > 0 {
		names = []string{doc.Variants[0].Name}
	}
	results, err := Produce(ctx, doc, names, opts...)
	if err != nil {
		return err
	}
	res := results[0]
	if res.Err != nil {
		return fmt.Errorf("doctpl: variant %q: %w", res.Variant.Name, res.Err)
	}
	_, err = res.Document.WriteTo(w)
	return err
}

// Render parses a description and writes the PDF of one variant to w.
func Render(ctx context.Context, w io.Writer, data []byte, f Format, variant string, opts ...RenderOption) error {
	doc, err := Parse(data, f)
	if err != nil {
		return err
	}
	return RenderDocument(ctx, w, doc, variant, opts...)
}
