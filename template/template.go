// Package template renders form templates and stamps variants onto them.
//
// A Template is rendered once into a BaseState: the exported fields, the
// final cursor position and an immutable display list of everything drawn.
// ApplyVariant overlays a badge onto a canvas holding that base. Produce
// drives both for a batch of variants, giving every variant its own
// document so that one failing variant never affects another.
package template

import (
	"context"
	"fmt"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/section"
)

// Header is the top of the page: an optional logo and a centred title.
type Header struct {
	Logo      string  // asset name; empty draws no logo
	LogoScale float64 // scale applied to the asset's natural size; 0 means 0.2
	Title     string
}

// Reference is an optional machine-readable code printed in the footer.
type Reference struct {
	Kind    fl.BarcodeKind
	Payload string
}

// Footer is the attribution line at the bottom of the page.
type Footer struct {
	Text      string
	Reference *Reference
}

// Variant is a named overlay: a badge with its own text and colour.
type Variant struct {
	Name   string    // identifier, e.g. "kunden"
	Label  string    // badge text, e.g. "Kundenbewirtung"
	Accent *fl.Color // badge fill; nil uses the theme accent
}

// Template is the shared base layout of a document family.
type Template struct {
	Name     string
	Header   Header
	Sections []section.Section
	Footer   Footer
	Variants []Variant
}

// AssetSource resolves named decorative assets such as logos.
type AssetSource interface {
	Resolve(ctx context.Context, name string) (*fl.Asset, error)
}

// Validate checks the parts of tpl that do not depend on layout: names and
// variants. Geometry problems surface when rendering.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fl.NewLayoutError("Validate", "", "", fmt.Errorf("template has no name: %w", fl.ErrInvalidParam))
	}
	seen := make(map[string]bool)
	for _, v := range t.Variants {
		if err := v.validate(); err != nil {
			return err
		}
		if seen[v.Name] {
			return fl.NewLayoutError("Validate", "", "", fmt.Errorf("duplicate variant %q: %w", v.Name, fl.ErrInvalidParam))
		}
		seen[v.Name] = true
	}
	if r := t.Footer.Reference; r != nil {
		switch r.Kind {
		case fl.BarcodeQR, fl.BarcodeCode128, fl.BarcodePDF417:
		default:
			return fl.NewLayoutError("Validate", "", "", fmt.Errorf("unknown barcode kind %q: %w", r.Kind, fl.ErrInvalidParam))
		}
		if r.Payload == "" {
			return fl.NewLayoutError("Validate", "", "", fmt.Errorf("empty reference payload: %w", fl.ErrInvalidParam))
		}
	}
	return nil
}

// Variant returns the declared variant called name.
func (t *Template) Variant(name string) (Variant, bool) {
	for _, v := range t.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// FieldCount returns the number of fields the template declares.
func (t *Template) FieldCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Fields)
	}
	return n
}

func (v Variant) validate() error {
	if v.Name == "" || v.Label == "" {
		return fl.NewLayoutError("Variant", "", "", fmt.Errorf("variant needs a name and a label: %w", fl.ErrInvalidParam))
	}
	return nil
}
