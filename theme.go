package formlayout

import "fmt"

// Color is an opaque RGB colour. There is no alpha channel: every colour the
// engine draws is fully opaque.
type Color struct {
	R, G, B uint8
}

// RGB is shorthand for Color{R: r, G: g, B: b}.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Gray returns the gray colour for a 0..1 intensity.
func Gray(level float64) Color {
	v := uint8(clamp01(level)*255 + 0.5)
	return Color{R: v, G: v, B: v}
}

// RGBf builds a colour from 0..1 channel intensities.
func RGBf(r, g, b float64) Color {
	return Color{
		R: uint8(clamp01(r)*255 + 0.5),
		G: uint8(clamp01(g)*255 + 0.5),
		B: uint8(clamp01(b)*255 + 0.5),
	}
}

// Hex formats the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rgb or #rrggbb.
func ParseHex(s string) (Color, error) {
	var c Color
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B); err != nil {
			return Color{}, fmt.Errorf("formlayout: parsing colour %q: %w", s, ErrInvalidParam)
		}
	case 4:
		var r, g, b uint8
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("formlayout: parsing colour %q: %w", s, ErrInvalidParam)
		}
		c = Color{R: r * 17, G: g * 17, B: b * 17}
	default:
		return Color{}, fmt.Errorf("formlayout: parsing colour %q: %w", s, ErrInvalidParam)
	}
	return c, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Font selects one of the core PDF fonts at a size in points.
type Font struct {
	Family string  // Helvetica, Times, Courier
	Style  string  // "" (regular), "B", "I", "BI"
	Size   float64 // in points
}

// WithSize returns a copy of f at a different size.
func (f Font) WithSize(size float64) Font {
	f.Size = size
	return f
}

// Fidelity selects how much decoration a theme draws around sections.
type Fidelity int

const (
	// FidelityBasic draws labels and rules only.
	FidelityBasic Fidelity = iota
	// FidelityStyled adds rounded section boxes, section titles and a header band.
	FidelityStyled
)

func (f Fidelity) String() string {
	switch f {
	case FidelityBasic:
		return "basic"
	case FidelityStyled:
		return "styled"
	}
	return fmt.Sprintf("Fidelity(%d)", int(f))
}

// ParseFidelity maps "basic" and "styled" to a Fidelity.
func ParseFidelity(s string) (Fidelity, error) {
	switch s {
	case "", "basic":
		return FidelityBasic, nil
	case "styled":
		return FidelityStyled, nil
	}
	return FidelityBasic, fmt.Errorf("formlayout: unknown fidelity %q: %w", s, ErrInvalidParam)
}

// Theme is the palette, fonts and line weights used throughout a document.
// Themes are values: pass them around by copy and never mutate a theme that
// is already in use.
type Theme struct {
	Fidelity Fidelity

	Accent      Color   // header band, title rules
	Sections    []Color // section backgrounds, cycled by section index
	GridLine    Color   // field rules and guide lines
	SectionEdge Color   // section box outline
	Text        Color   // labels and titles
	Muted       Color   // footer text
	HeaderText  Color   // text drawn on the header band
	FooterRule  Color   // footer separator
	BadgeText   Color   // pill badge text

	Regular Font
	Bold    Font
	Italic  Font
	Title   Font
	Footer  Font

	RuleWidth       float64 // field rules
	GuideWidth      float64 // decorative guide lines
	FooterRuleWidth float64
	SectionRadius   float64
}

// SectionColor returns the background for the i-th section.
func (t Theme) SectionColor(i int) Color {
	if len(t.Sections) == 0 {
		return RGB(255, 255, 255)
	}
	return t.Sections[i%len(t.Sections)]
}

// Validate checks fonts and line weights. Colours need no validation since
// the type cannot express transparency.
func (t Theme) Validate() error {
	for name, f := range map[string]Font{
		"regular": t.Regular, "bold": t.Bold, "italic": t.Italic,
		"title": t.Title, "footer": t.Footer,
	} {
		if f.Family == "" || f.Size <= 0 {
			return fmt.Errorf("formlayout: theme font %s: %w", name, ErrInvalidParam)
		}
	}
	if t.RuleWidth <= 0 || t.GuideWidth <= 0 || t.FooterRuleWidth <= 0 {
		return fmt.Errorf("formlayout: theme line widths must be positive: %w", ErrInvalidParam)
	}
	if t.SectionRadius < 0 {
		return fmt.Errorf("formlayout: theme section radius: %w", ErrInvalidParam)
	}
	return nil
}

// Clone returns a deep copy so callers can derive a theme without sharing
// the section palette backing array.
func (t Theme) Clone() Theme {
	t.Sections = append([]Color(nil), t.Sections...)
	return t
}

// BasicTheme reproduces the plain form: dark gray labels on light gray rules.
func BasicTheme() Theme {
	return Theme{
		Fidelity:    FidelityBasic,
		Accent:      RGBf(0.2, 0.45, 0.75),
		Sections:    []Color{RGB(255, 255, 255)},
		GridLine:    Gray(0.85),
		SectionEdge: Gray(0.9),
		Text:        Gray(0.2),
		Muted:       Gray(0.5),
		HeaderText:  Gray(0.2),
		FooterRule:  Gray(0.9),
		BadgeText:   RGB(255, 255, 255),

		Regular: Font{Family: "Helvetica", Size: 12},
		Bold:    Font{Family: "Helvetica", Style: "B", Size: 12},
		Italic:  Font{Family: "Helvetica", Style: "I", Size: 14},
		Title:   Font{Family: "Helvetica", Size: 18},
		Footer:  Font{Family: "Helvetica", Size: 8},

		RuleWidth:       1,
		GuideWidth:      1,
		FooterRuleWidth: 0.75,
		SectionRadius:   0,
	}
}

// StyledTheme adds tinted section boxes and a coloured header band.
func StyledTheme() Theme {
	t := BasicTheme()
	t.Fidelity = FidelityStyled
	t.Sections = []Color{
		RGB(240, 245, 252),
		RGB(246, 246, 246),
		RGB(243, 249, 244),
	}
	t.SectionEdge = RGB(214, 222, 235)
	t.HeaderText = RGB(255, 255, 255)
	t.Bold = Font{Family: "Helvetica", Style: "B", Size: 13}
	t.GuideWidth = 0.5
	t.SectionRadius = 8
	return t
}
