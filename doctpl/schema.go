// Package doctpl reads declarative form descriptions and renders them.
//
// A description names the page, the theme, the header, an ordered list of
// sections with their fields, the footer and the variants. It may be written
// as JSON, YAML or TOML; the field names are the same in all three.
//
// Example YAML:
//
//	name: bewirtung
//	theme: styled
//	header:
//	  title: Bewirtungsformular
//	sections:
//	  - title: Angaben zur Bewirtung
//	    fields:
//	      - {name: Datum, label: "Datum:"}
//	      - {name: Anlass, label: "Anlass der Bewirtung:", kind: multi_line, lines: 3}
//	variants:
//	  - {name: kunden, label: Kundenbewirtung}
package doctpl

// Document is the top-level description of a form family.
type Document struct {
	Name        string  `json:"name" yaml:"name" toml:"name"`
	PageSize    string  `json:"pageSize,omitempty" yaml:"pageSize,omitempty" toml:"pageSize,omitempty"` // A4, A5, Letter, Legal (default: A4)
	Orientation string  `json:"orientation,omitempty" yaml:"orientation,omitempty" toml:"orientation,omitempty"`
	Margin      float64 `json:"margin,omitempty" yaml:"margin,omitempty" toml:"margin,omitempty"`
	Theme       string  `json:"theme,omitempty" yaml:"theme,omitempty" toml:"theme,omitempty"`    // basic or styled
	Accent      string  `json:"accent,omitempty" yaml:"accent,omitempty" toml:"accent,omitempty"` // hex colour

	Header   Header    `json:"header" yaml:"header" toml:"header"`
	Sections []Section `json:"sections" yaml:"sections" toml:"sections"`
	Footer   Footer    `json:"footer" yaml:"footer" toml:"footer"`
	Variants []Variant `json:"variants,omitempty" yaml:"variants,omitempty" toml:"variants,omitempty"`
}

// Header is the page header.
type Header struct {
	Title     string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Logo      string  `json:"logo,omitempty" yaml:"logo,omitempty" toml:"logo,omitempty"`
	LogoScale float64 `json:"logoScale,omitempty" yaml:"logoScale,omitempty" toml:"logoScale,omitempty"`
}

// Section is a titled group of fields.
type Section struct {
	Title      string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Background string  `json:"background,omitempty" yaml:"background,omitempty" toml:"background,omitempty"`
	Fields     []Field `json:"fields" yaml:"fields" toml:"fields"`
}

// Field is one labeled input.
type Field struct {
	Name       string  `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Label      string  `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Kind       string  `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"` // single_line or multi_line
	Lines      int     `json:"lines,omitempty" yaml:"lines,omitempty" toml:"lines,omitempty"`
	Inline     bool    `json:"inline,omitempty" yaml:"inline,omitempty" toml:"inline,omitempty"`
	LabelWidth float64 `json:"labelWidth,omitempty" yaml:"labelWidth,omitempty" toml:"labelWidth,omitempty"`
	Width      float64 `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`

	Value    string  `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	MaxLen   int     `json:"maxLen,omitempty" yaml:"maxLen,omitempty" toml:"maxLen,omitempty"`
	ReadOnly bool    `json:"readOnly,omitempty" yaml:"readOnly,omitempty" toml:"readOnly,omitempty"`
	Required bool    `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty"`
	FontSize float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty" toml:"fontSize,omitempty"`
}

// Footer is the attribution line and an optional reference code.
type Footer struct {
	Text      string     `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Reference *Reference `json:"reference,omitempty" yaml:"reference,omitempty" toml:"reference,omitempty"`
}

// Reference is a barcode printed in the footer.
type Reference struct {
	Kind    string `json:"kind" yaml:"kind" toml:"kind"` // qr, code128, pdf417
	Payload string `json:"payload" yaml:"payload" toml:"payload"`
}

// Variant is a named badge overlay.
type Variant struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	Label  string `json:"label" yaml:"label" toml:"label"`
	Accent string `json:"accent,omitempty" yaml:"accent,omitempty" toml:"accent,omitempty"`
}
