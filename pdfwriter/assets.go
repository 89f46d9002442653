package pdfwriter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"github.com/go-pdf/fpdf/contrib/tiff"
	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
)

// assetCache remembers the images and imported pages already placed in a
// document so repeated assets are embedded once.
type assetCache struct {
	images    map[string]bool
	templates map[string]int
	importer  *gofpdi.Importer
}

func newAssetCache() *assetCache {
	return &assetCache{images: make(map[string]bool), templates: make(map[string]int)}
}

// DrawAsset places a into r. A graphic that cannot be decoded is logged and
// skipped; it never fails the document.
func (w *Writer) DrawAsset(a *fl.Asset, r fl.Rect) {
	if a == nil || r.Empty() {
		return
	}
	if w.pdf.Err() {
		return
	}
	var err error
	switch a.Format {
	case fl.AssetSVG:
		err = w.drawSVG(a, r)
	case fl.AssetPDF:
		err = w.drawPDFPage(a, r)
	case fl.AssetPNG, fl.AssetJPEG:
		w.drawImage(a, r, func(name string, rd io.Reader) {
			w.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: imageType(a.Format)}, rd)
		})
	case fl.AssetTIFF:
		w.drawImage(a, r, func(name string, rd io.Reader) {
			tiff.RegisterReader(w.pdf, name, fpdf.ImageOptions{ImageType: "tiff"}, rd)
		})
	default:
		err = fmt.Errorf("unsupported asset format %q", a.Format)
	}
	if err == nil && w.pdf.Err() {
		err = w.pdf.Error()
		w.pdf.ClearError()
	}
	if err != nil {
		w.logger.Warn("asset skipped", zap.String("asset", a.Name), zap.String("format", a.Format), zap.Error(err))
	}
}

func imageType(format string) string {
	if format == fl.AssetJPEG {
		return "jpg"
	}
	return "png"
}

func (w *Writer) drawSVG(a *fl.Asset, r fl.Rect) error {
	sig, err := fpdf.SVGBasicParse(a.Data)
	if err != nil {
		return err
	}
	if sig.Wd <= 0 {
		return fmt.Errorf("svg %q has no width", a.Name)
	}
	setDraw(w.pdf, fl.RGB(0, 0, 0))
	w.pdf.SetLineWidth(0.5)
	w.pdf.SetLineCapStyle("round")
	w.pdf.SetXY(r.X, w.y(r.Top()))
	w.pdf.SVGBasicWrite(&sig, r.W/sig.Wd)
	return nil
}

func (w *Writer) drawPDFPage(a *fl.Asset, r fl.Rect) (err error) {
	c := w.assets
	tpl, ok := c.templates[a.Name]
	if !ok {
		if c.importer == nil {
			c.importer = gofpdi.NewImporter()
		}
		if tpl, err = importPage(w.pdf, c.importer, a.Data); err != nil {
			return err
		}
		c.templates[a.Name] = tpl
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("placing PDF page: %v", p)
		}
	}()
	c.importer.UseImportedTemplate(w.pdf, tpl, r.X, w.y(r.Top()), r.W, r.H)
	return nil
}

func (w *Writer) drawImage(a *fl.Asset, r fl.Rect, register func(name string, rd io.Reader)) {
	name := "asset:" + a.Name
	if !w.assets.images[name] {
		register(name, bytes.NewReader(a.Data))
		if w.pdf.Err() {
			return
		}
		w.assets.images[name] = true
	}
	w.pdf.ImageOptions(name, r.X, w.y(r.Top()), r.W, r.H, false, fpdf.ImageOptions{}, 0, "")
}
