package pdfwriter

import (
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf/contrib/barcode"

	fl "github.com/lvillar/formlayout"
)

// PDF417 symbol parameters for reference codes.
const (
	pdf417Columns  = 8
	pdf417Security = 2
)

// Barcode draws a machine-readable reference code scaled into r.
func (w *Writer) Barcode(kind fl.BarcodeKind, payload string, r fl.Rect) {
	if payload == "" || r.Empty() {
		return
	}
	var key string
	switch kind {
	case fl.BarcodeQR:
		key = barcode.RegisterQR(w.pdf, payload, qr.M, qr.Unicode)
	case fl.BarcodeCode128:
		key = barcode.RegisterCode128(w.pdf, payload)
	case fl.BarcodePDF417:
		key = barcode.RegisterPdf417(w.pdf, payload, pdf417Columns, pdf417Security)
	default:
		w.pdf.SetErrorf("pdfwriter: unknown barcode kind %q", kind)
		return
	}
	if w.pdf.Err() {
		return
	}
	barcode.Barcode(w.pdf, key, r.X, w.y(r.Top()), r.W, r.H, false)
}
