// Package record implements a Canvas that stores drawing calls as a display
// list instead of producing output.
//
// A Recorder serves two purposes. The template renders the shared base layout
// of a document family into a Recorder once and replays the result onto the
// writer of every variant. Tests use it to inspect exactly what was drawn.
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	fl "github.com/lvillar/formlayout"
)

// Kind identifies the drawing call an Op records.
type Kind string

const (
	KindRect    Kind = "rect"
	KindLine    Kind = "line"
	KindText    Kind = "text"
	KindAsset   Kind = "asset"
	KindBarcode Kind = "barcode"
	KindWidget  Kind = "widget"
)

// Op is one recorded drawing call. Only the fields relevant to Kind are set.
type Op struct {
	Kind   Kind   `json:"kind"`
	Region string `json:"region,omitempty"`

	Rect   fl.Rect  `json:"rect,omitempty"`
	Radius float64  `json:"radius,omitempty"`
	Paint  fl.Paint `json:"paint,omitempty"`

	From   fl.Point  `json:"from,omitempty"`
	To     fl.Point  `json:"to,omitempty"`
	Stroke fl.Stroke `json:"stroke,omitempty"`

	At    fl.Point     `json:"at,omitempty"`
	Text  string       `json:"text,omitempty"`
	Style fl.TextStyle `json:"style,omitempty"`

	Asset   *fl.Asset      `json:"asset,omitempty"`
	Barcode fl.BarcodeKind `json:"barcode,omitempty"`
	Payload string         `json:"payload,omitempty"`
	Field   *fl.Field      `json:"field,omitempty"`
}

var _ fl.Document = (*Recorder)(nil)

// Recorder is an in-memory fl.Document.
type Recorder struct {
	width, height float64
	measure       fl.TextMeasurer
	region        string
	ops           []Op
	meta          fl.Metadata
	finalized     bool
}

// New creates a recorder for a page of w×h points. Text is measured with tm;
// a nil tm uses Approx.
func New(w, h float64, tm fl.TextMeasurer) *Recorder {
	if tm == nil {
		tm = Approx{}
	}
	return &Recorder{width: w, height: h, measure: tm}
}

// Approx measures text as half an em per rune. It is good enough for tests
// and previews that never reach a real font.
type Approx struct{}

// TextWidth implements fl.TextMeasurer.
func (Approx) TextWidth(text string, font fl.Font) float64 {
	return float64(len([]rune(text))) * font.Size * 0.5
}

// BeginRegion tags every following op with name until the next call.
func (r *Recorder) BeginRegion(name string) { r.region = name }

func (r *Recorder) PageSize() (float64, float64) { return r.width, r.height }

func (r *Recorder) TextWidth(text string, font fl.Font) float64 {
	return r.measure.TextWidth(text, font)
}

func (r *Recorder) Rect(rect fl.Rect, radius float64, paint fl.Paint) {
	r.add(Op{Kind: KindRect, Rect: rect, Radius: radius, Paint: clonePaint(paint)})
}

func (r *Recorder) Line(from, to fl.Point, stroke fl.Stroke) {
	r.add(Op{Kind: KindLine, From: from, To: to, Stroke: stroke})
}

func (r *Recorder) Text(at fl.Point, text string, style fl.TextStyle) {
	r.add(Op{Kind: KindText, At: at, Text: text, Style: style})
}

func (r *Recorder) DrawAsset(a *fl.Asset, rect fl.Rect) {
	if a == nil {
		return
	}
	cp := *a
	r.add(Op{Kind: KindAsset, Asset: &cp, Rect: rect})
}

func (r *Recorder) Barcode(kind fl.BarcodeKind, payload string, rect fl.Rect) {
	r.add(Op{Kind: KindBarcode, Barcode: kind, Payload: payload, Rect: rect})
}

func (r *Recorder) Widget(f fl.Field) {
	r.add(Op{Kind: KindWidget, Field: &f, Rect: f.Rect})
}

// SetMetadata stores m; it is written with the display list.
func (r *Recorder) SetMetadata(m fl.Metadata) { r.meta = m }

// Metadata returns the stored document information.
func (r *Recorder) Metadata() fl.Metadata { return r.meta }

func (r *Recorder) add(op Op) {
	if r.finalized {
		return
	}
	op.Region = r.region
	r.ops = append(r.ops, op)
}

// Ops returns a copy of the recorded display list.
func (r *Recorder) Ops() []Op {
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Region returns the ops tagged with name.
func (r *Recorder) Region(name string) []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Region == name {
			out = append(out, op)
		}
	}
	return out
}

// Snapshot freezes the current display list into an immutable List.
func (r *Recorder) Snapshot() List {
	return List{ops: r.Ops()}
}

type document struct {
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Metadata fl.Metadata `json:"metadata"`
	Ops      []Op        `json:"ops"`
}

// WriteTo writes the display list as indented JSON.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(document{Width: r.width, Height: r.height, Metadata: r.meta, Ops: r.ops}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("record: encoding display list: %w", err)
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}

// Finalize writes the display list to path. The recorder ignores further
// drawing afterwards.
func (r *Recorder) Finalize(path string) error {
	if r.finalized {
		return fl.ErrFinalized
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	r.finalized = true
	return f.Close()
}

func clonePaint(p fl.Paint) fl.Paint {
	if p.Fill != nil {
		c := *p.Fill
		p.Fill = &c
	}
	if p.Stroke != nil {
		c := *p.Stroke
		p.Stroke = &c
	}
	return p
}

// List is an immutable display list.
type List struct {
	ops []Op
}

// Len returns the number of ops.
func (l List) Len() int { return len(l.ops) }

// Ops returns a copy of the ops.
func (l List) Ops() []Op {
	out := make([]Op, len(l.ops))
	copy(out, l.ops)
	return out
}

// Replay emits every op onto c in recording order. Region tags are forwarded
// when c is itself a Recorder.
func (l List) Replay(c fl.Canvas) {
	rec, _ := c.(*Recorder)
	for _, op := range l.ops {
		if rec != nil {
			rec.BeginRegion(op.Region)
		}
		Emit(c, op)
	}
	if rec != nil {
		rec.BeginRegion("")
	}
}

// Emit performs a single op on c.
func Emit(c fl.Canvas, op Op) {
	switch op.Kind {
	case KindRect:
		c.Rect(op.Rect, op.Radius, op.Paint)
	case KindLine:
		c.Line(op.From, op.To, op.Stroke)
	case KindText:
		c.Text(op.At, op.Text, op.Style)
	case KindAsset:
		c.DrawAsset(op.Asset, op.Rect)
	case KindBarcode:
		c.Barcode(op.Barcode, op.Payload, op.Rect)
	case KindWidget:
		if op.Field != nil {
			c.Widget(*op.Field)
		}
	}
}

// Factory creates Recorders for a page geometry. A nil Measurer uses Approx.
type Factory struct {
	Measurer fl.TextMeasurer
}

// TextWidth implements fl.TextMeasurer.
func (f Factory) TextWidth(text string, font fl.Font) float64 {
	if f.Measurer == nil {
		return Approx{}.TextWidth(text, font)
	}
	return f.Measurer.TextWidth(text, font)
}

// NewDocument returns an empty Recorder sized to g.
func (f Factory) NewDocument(g fl.Geometry) (fl.Document, error) {
	return New(g.Width, g.Height, f.Measurer), nil
}
