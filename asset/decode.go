package asset

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG for DecodeConfig
	"image/png"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/pdfwriter"
)

// pxToPt converts CSS pixels (96 per inch) to points (72 per inch).
const pxToPt = 0.75

var (
	reSVGOpen   = regexp.MustCompile(`<svg\b[^>]*>`)
	reSVGLength = regexp.MustCompile(`(\s(?:width|height)=")([\d.]+)(?:px|pt)(")`)
	reMediaBox  = regexp.MustCompile(`/MediaBox\s*\[\s*(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)\s*\]`)
)

// Decode turns raw bytes into a drawable asset. The format is taken from the
// file extension of name, or sniffed from data when there is none. WebP and
// BMP images are converted to PNG; every other format is passed through
// after validation.
func Decode(name string, data []byte) (*fl.Asset, error) {
	format := formatOf(name, data)
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	a := &fl.Asset{Name: base, Format: format, Data: data}

	var err error
	switch format {
	case fl.AssetSVG:
		err = decodeSVG(a)
	case fl.AssetPDF:
		err = decodePDF(a)
	case fl.AssetPNG, fl.AssetJPEG:
		err = decodeConfig(a, func() (image.Config, error) {
			cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
			return cfg, err
		})
	case fl.AssetTIFF:
		err = decodeConfig(a, func() (image.Config, error) { return tiff.DecodeConfig(bytes.NewReader(data)) })
	case "webp":
		err = toPNG(a, func() (image.Image, error) { return webp.Decode(bytes.NewReader(data)) })
	case "bmp":
		err = toPNG(a, func() (image.Image, error) { return bmp.Decode(bytes.NewReader(data)) })
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("asset %q: %v: %w", name, err, fl.ErrAssetResolution)
	}
	return a, nil
}

func formatOf(name string, data []byte) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".svg":
		return fl.AssetSVG
	case ".pdf":
		return fl.AssetPDF
	case ".png":
		return fl.AssetPNG
	case ".jpg", ".jpeg":
		return fl.AssetJPEG
	case ".tif", ".tiff":
		return fl.AssetTIFF
	case ".webp":
		return "webp"
	case ".bmp":
		return "bmp"
	}
	switch ct := http.DetectContentType(data); {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return fl.AssetPDF
	case ct == "image/png":
		return fl.AssetPNG
	case ct == "image/jpeg":
		return fl.AssetJPEG
	case ct == "image/webp":
		return "webp"
	case ct == "image/bmp":
		return "bmp"
	case bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")):
		return fl.AssetTIFF
	case bytes.Contains(data[:min(len(data), 512)], []byte("<svg")):
		return fl.AssetSVG
	}
	return ""
}

// decodeSVG strips unit suffixes from the root size attributes, which the
// basic SVG parser cannot read, and checks that the paths parse.
func decodeSVG(a *fl.Asset) error {
	data := a.Data
	if loc := reSVGOpen.FindIndex(data); loc != nil {
		tag := reSVGLength.ReplaceAll(data[loc[0]:loc[1]], []byte("${1}${2}${3}"))
		data = append(append(append([]byte{}, data[:loc[0]]...), tag...), data[loc[1]:]...)
	}
	sig, err := fpdf.SVGBasicParse(data)
	if err != nil {
		return err
	}
	if len(sig.Segments) == 0 {
		return fmt.Errorf("svg has no paths")
	}
	a.Data = data
	a.Width, a.Height = sig.Wd, sig.Ht
	return nil
}

// decodePDF reads the page size and does a trial import, so a file the
// importer cannot parse is rejected here instead of when it is drawn.
func decodePDF(a *fl.Asset) error {
	if !bytes.HasPrefix(a.Data, []byte("%PDF-")) {
		return fmt.Errorf("missing PDF header")
	}
	m := reMediaBox.FindSubmatch(a.Data)
	if m == nil {
		return fmt.Errorf("no /MediaBox found")
	}
	var box [4]float64
	for i := range box {
		v, err := strconv.ParseFloat(string(m[i+1]), 64)
		if err != nil {
			return err
		}
		box[i] = v
	}
	a.Width, a.Height = box[2]-box[0], box[3]-box[1]
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("empty /MediaBox")
	}
	return pdfwriter.CheckPDFPage(a.Data)
}

func decodeConfig(a *fl.Asset, cfg func() (image.Config, error)) error {
	c, err := cfg()
	if err != nil {
		return err
	}
	a.Width, a.Height = float64(c.Width)*pxToPt, float64(c.Height)*pxToPt
	return nil
}

func toPNG(a *fl.Asset, decode func() (image.Image, error)) error {
	img, err := decode()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	b := img.Bounds()
	a.Format = fl.AssetPNG
	a.Data = buf.Bytes()
	a.Width, a.Height = float64(b.Dx())*pxToPt, float64(b.Dy())*pxToPt
	return nil
}
