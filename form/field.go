// Package form adds interactive text fields (AcroForm widgets) to PDF output.
//
// Fields are collected on a Builder and written by Apply, which appends an
// incremental update to a finished PDF: the affected page objects are
// re-emitted with an /Annots array, the catalog gains an /AcroForm entry and
// one widget annotation object is added per field. The original bytes are
// left untouched, so the update works on the output of any writer that uses
// a classic cross-reference table.
package form

import (
	"fmt"
	"strings"
	"unicode/utf16"

	fl "github.com/lvillar/formlayout"
)

// Field flag bits of a text field.
const (
	flagReadOnly  = 1
	flagRequired  = 1 << 1
	flagMultiLine = 1 << 12
)

// Field defines a text field to be added to a PDF page.
type Field struct {
	Name      string  // field name (must be unique within the form)
	Tooltip   string  // alternate description shown by viewers
	Page      int     // page number (1-based)
	Rect      fl.Rect // position in points, origin bottom-left
	Value     string  // default value
	FontSize  float64 // font size for text display (0 = auto)
	MaxLen    int     // maximum text length (0 = unlimited)
	ReadOnly  bool    // whether the field is read-only
	Required  bool    // whether the field is required
	MultiLine bool    // allow multi-line input
}

// Builder collects the fields of one document.
type Builder struct {
	fields []Field
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddTextField adds a text input field to the form.
func (b *Builder) AddTextField(name string, page int, r fl.Rect) *Field {
	b.fields = append(b.fields, Field{Name: name, Page: page, Rect: r})
	return &b.fields[len(b.fields)-1]
}

// AddField adds a laid-out field, keeping its constraints.
func (b *Builder) AddField(f fl.Field) *Field {
	page := f.Page
	if page == 0 {
		page = 1
	}
	ff := b.AddTextField(f.Name, page, f.Rect)
	ff.Tooltip = strings.TrimSuffix(strings.TrimSpace(f.Label), ":")
	ff.Value = f.Value
	ff.FontSize = f.FontSize
	ff.MaxLen = f.MaxLen
	ff.ReadOnly = f.ReadOnly
	ff.Required = f.Required
	ff.MultiLine = f.Kind == fl.MultiLine
	return ff
}

// Len returns the number of collected fields.
func (b *Builder) Len() int { return len(b.fields) }

// SetValue sets the default value for a field. Returns the field for chaining.
func (f *Field) SetValue(v string) *Field {
	f.Value = v
	return f
}

// SetRequired marks the field as required.
func (f *Field) SetRequired(required bool) *Field {
	f.Required = required
	return f
}

// SetReadOnly marks the field as read-only.
func (f *Field) SetReadOnly(readOnly bool) *Field {
	f.ReadOnly = readOnly
	return f
}

// SetMaxLen sets the maximum input length.
func (f *Field) SetMaxLen(n int) *Field {
	f.MaxLen = n
	return f
}

// SetMultiLine enables multi-line input.
func (f *Field) SetMultiLine(multiLine bool) *Field {
	f.MultiLine = multiLine
	return f
}

// widgetDict constructs the merged field/widget annotation dictionary.
func widgetDict(f Field, pageRef int) string {
	var ff int
	if f.ReadOnly {
		ff |= flagReadOnly
	}
	if f.Required {
		ff |= flagRequired
	}
	if f.MultiLine {
		ff |= flagMultiLine
	}

	r := f.Rect
	var sb strings.Builder
	fmt.Fprintf(&sb, "<</Type /Annot /Subtype /Widget /FT /Tx /T %s /Rect [%.2f %.2f %.2f %.2f] /P %d 0 R /F 4",
		pdfString(f.Name), r.X, r.Y, r.Right(), r.Top(), pageRef)
	if f.Tooltip != "" {
		fmt.Fprintf(&sb, " /TU %s", pdfString(f.Tooltip))
	}
	fmt.Fprintf(&sb, " /DA (/Helv %.1f Tf 0 g)", f.FontSize)
	if f.Value != "" {
		fmt.Fprintf(&sb, " /V %s", pdfString(f.Value))
	}
	if f.MaxLen > 0 {
		fmt.Fprintf(&sb, " /MaxLen %d", f.MaxLen)
	}
	if ff != 0 {
		fmt.Fprintf(&sb, " /Ff %d", ff)
	}
	sb.WriteString(">>")
	return sb.String()
}

// pdfString encodes s as a PDF text string: a literal string for ASCII, a
// UTF-16BE hex string otherwise.
func pdfString(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return "(" + escapePDFString(s) + ")"
	}
	var sb strings.Builder
	sb.WriteString("<FEFF")
	for _, u := range utf16.Encode([]rune(s)) {
		fmt.Fprintf(&sb, "%04X", u)
	}
	sb.WriteString(">")
	return sb.String()
}

// escapePDFString escapes special characters in a PDF string.
func escapePDFString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `(`, `\(`)
	s = strings.ReplaceAll(s, `)`, `\)`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
