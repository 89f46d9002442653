package pdfwriter

import (
	"sync"

	"github.com/go-pdf/fpdf"

	fl "github.com/lvillar/formlayout"
)

// Factory creates writers with shared options and measures text with the
// same font metrics the writers use. It is safe for concurrent use.
type Factory struct {
	opts []Option

	mu      sync.Mutex
	measure *fpdf.Fpdf
	tr      func(string) string
}

// NewFactory creates a Factory applying opts to every writer.
func NewFactory(opts ...Option) *Factory {
	pdf := newFpdf(595.28, 841.89)
	return &Factory{opts: opts, measure: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// TextWidth implements formlayout.TextMeasurer.
func (f *Factory) TextWidth(text string, font fl.Font) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.measure.SetFont(font.Family, font.Style, font.Size)
	return f.measure.GetStringWidth(f.tr(text))
}

// NewDocument returns a fresh single-page writer sized to g.
func (f *Factory) NewDocument(g fl.Geometry) (fl.Document, error) {
	return New(g, f.opts...)
}
