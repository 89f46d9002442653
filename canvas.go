package formlayout

import "io"

// Align selects horizontal text alignment relative to the anchor point.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Paint describes how a closed shape is filled and outlined. A nil colour
// skips that part of the shape.
type Paint struct {
	Fill        *Color
	Stroke      *Color
	StrokeWidth float64
}

// Filled returns a Paint that only fills.
func Filled(c Color) Paint {
	return Paint{Fill: &c}
}

// Stroke describes a line.
type Stroke struct {
	Color Color
	Width float64
}

// TextStyle bundles the font and colour of a piece of text.
type TextStyle struct {
	Font  Font
	Color Color
	Align Align
}

// BarcodeKind selects the symbology of a reference code.
type BarcodeKind string

const (
	BarcodeQR      BarcodeKind = "qr"
	BarcodeCode128 BarcodeKind = "code128"
	BarcodePDF417  BarcodeKind = "pdf417"
)

// Asset formats understood by the PDF writer.
const (
	AssetSVG  = "svg"
	AssetPDF  = "pdf"
	AssetPNG  = "png"
	AssetJPEG = "jpg"
	AssetTIFF = "tiff"
)

// Asset is a resolved decorative graphic such as a logo.
type Asset struct {
	Name   string  // logical name, e.g. "docbits"
	Format string  // one of the Asset* constants
	Data   []byte  // encoded graphic
	Width  float64 // natural width in points
	Height float64 // natural height in points
}

// Metadata is the document information written by the writer.
type Metadata struct {
	Title      string
	Subject    string
	Author     string
	Creator    string
	Keywords   string
	DocumentID string
}

// TextMeasurer measures the width of text in points.
type TextMeasurer interface {
	TextWidth(text string, font Font) float64
}

// Canvas is the drawing surface the engine emits to. Coordinates are points
// with the origin at the bottom-left corner of the current page. Every call
// carries its complete style; implementations must not rely on state left
// behind by a previous call.
type Canvas interface {
	// PageSize returns the page width and height in points.
	PageSize() (w, h float64)
	TextMeasurer

	Rect(r Rect, radius float64, paint Paint)
	Line(from, to Point, stroke Stroke)
	Text(at Point, text string, style TextStyle)
	DrawAsset(a *Asset, r Rect)
	Barcode(kind BarcodeKind, payload string, r Rect)

	// Widget materialises a fillable field at f.Rect.
	Widget(f Field)
}

// Document is a Canvas that can be persisted once rendering is complete.
type Document interface {
	Canvas
	SetMetadata(m Metadata)
	WriteTo(w io.Writer) (int64, error)
	Finalize(path string) error
}
