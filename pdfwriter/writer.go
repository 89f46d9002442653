// Package pdfwriter implements formlayout.Document on top of fpdf.
//
// The writer works in points with the origin at the bottom-left corner and
// converts every call to fpdf's top-left coordinates. Text is set in the core
// PDF fonts with cp1252 translation. Widgets are collected while drawing and
// written as an AcroForm incremental update when the document is output.
package pdfwriter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/form"
)

var _ fl.Document = (*Writer)(nil)

// Option is a functional option for configuring writers.
type Option func(*config)

type config struct {
	fixedTime time.Time
	compress  bool
	logger    *zap.Logger
}

// WithFixedTime sets the creation and modification dates, making output
// byte-for-byte reproducible.
func WithFixedTime(t time.Time) Option {
	return func(c *config) { c.fixedTime = t }
}

// WithCompression enables or disables content stream compression.
// Default: enabled.
func WithCompression(on bool) Option {
	return func(c *config) { c.compress = on }
}

// WithLogger sets the logger used for recoverable drawing problems.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	c := config{compress: true, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Writer is a single-page PDF document. It is not safe for concurrent use.
type Writer struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	width     float64
	height    float64
	fields    *form.Builder
	assets    *assetCache
	logger    *zap.Logger
	finalized bool
}

// New creates a writer with one blank page sized to g.
func New(g fl.Geometry, opts ...Option) (*Writer, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	pdf := newFpdf(g.Width, g.Height)
	pdf.SetCompression(cfg.compress)
	pdf.SetCatalogSort(true)
	if !cfg.fixedTime.IsZero() {
		pdf.SetCreationDate(cfg.fixedTime)
		pdf.SetModificationDate(cfg.fixedTime)
	}
	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdfwriter: %w", err)
	}
	return &Writer{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  g.Width,
		height: g.Height,
		fields: form.NewBuilder(),
		assets: newAssetCache(),
		logger: cfg.logger,
	}, nil
}

func newFpdf(w, h float64) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// Err returns the first error fpdf recorded, if any.
func (w *Writer) Err() error { return w.pdf.Error() }

func (w *Writer) PageSize() (float64, float64) { return w.width, w.height }

func (w *Writer) TextWidth(text string, font fl.Font) float64 {
	w.pdf.SetFont(font.Family, font.Style, font.Size)
	return w.pdf.GetStringWidth(w.tr(text))
}

// y converts a bottom-left Y coordinate to fpdf's top-left one.
func (w *Writer) y(v float64) float64 { return w.height - v }

func (w *Writer) Rect(r fl.Rect, radius float64, paint fl.Paint) {
	style := ""
	if paint.Fill != nil {
		setFill(w.pdf, *paint.Fill)
		style += "F"
	}
	if paint.Stroke != nil {
		setDraw(w.pdf, *paint.Stroke)
		width := paint.StrokeWidth
		if width <= 0 {
			width = 1
		}
		w.pdf.SetLineWidth(width)
		style += "D"
	}
	if style == "" || r.Empty() {
		return
	}
	if radius > 0 {
		w.pdf.RoundedRect(r.X, w.y(r.Top()), r.W, r.H, radius, "1234", style)
		return
	}
	w.pdf.Rect(r.X, w.y(r.Top()), r.W, r.H, style)
}

func (w *Writer) Line(from, to fl.Point, s fl.Stroke) {
	setDraw(w.pdf, s.Color)
	w.pdf.SetLineWidth(s.Width)
	w.pdf.Line(from.X, w.y(from.Y), to.X, w.y(to.Y))
}

func (w *Writer) Text(at fl.Point, text string, style fl.TextStyle) {
	if text == "" {
		return
	}
	f := style.Font
	w.pdf.SetFont(f.Family, f.Style, f.Size)
	w.pdf.SetTextColor(int(style.Color.R), int(style.Color.G), int(style.Color.B))
	s := w.tr(text)
	x := at.X
	switch style.Align {
	case fl.AlignCenter:
		x -= w.pdf.GetStringWidth(s) / 2
	case fl.AlignRight:
		x -= w.pdf.GetStringWidth(s)
	}
	w.pdf.Text(x, w.y(at.Y), s)
}

// Widget queues f; widgets are written when the document is output.
func (w *Writer) Widget(f fl.Field) {
	w.fields.AddField(f)
}

// SetMetadata writes the document information dictionary and an XMP packet
// carrying the document id.
func (w *Writer) SetMetadata(m fl.Metadata) {
	w.pdf.SetTitle(m.Title, true)
	w.pdf.SetSubject(m.Subject, true)
	w.pdf.SetAuthor(m.Author, true)
	w.pdf.SetCreator(m.Creator, true)
	w.pdf.SetKeywords(m.Keywords, true)
	if m.DocumentID != "" {
		w.pdf.SetXmpMetadata([]byte(fmt.Sprintf(xmpPacket, m.DocumentID)))
	}
}

const xmpPacket = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
<rdf:Description rdf:about="" xmlns:xmpMM="http://ns.adobe.com/xap/1.0/mm/">
<xmpMM:DocumentID>uuid:%s</xmpMM:DocumentID>
</rdf:Description>
</rdf:RDF>
</x:xmpmeta>
<?xpacket end="r"?>`

// Bytes closes the document and returns the complete PDF including the
// AcroForm update.
func (w *Writer) Bytes() ([]byte, error) {
	if w.finalized {
		return nil, fl.ErrFinalized
	}
	w.finalized = true
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdfwriter: %w", err)
	}
	out, err := w.fields.Apply(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("pdfwriter: adding widgets: %w", err)
	}
	return out, nil
}

// WriteTo closes the document and writes it to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	data, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(data)
	return int64(n), err
}

// Finalize closes the document and writes it to path.
func (w *Writer) Finalize(path string) error {
	data, err := w.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pdfwriter: %w", err)
	}
	return nil
}

func setFill(pdf *fpdf.Fpdf, c fl.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setDraw(pdf *fpdf.Fpdf, c fl.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
