package formlayout

import "fmt"

// FieldKind specifies how much text a field accepts.
type FieldKind int

const (
	SingleLine FieldKind = iota // one row of text
	MultiLine                   // a block of several rows
)

func (k FieldKind) String() string {
	switch k {
	case SingleLine:
		return "single_line"
	case MultiLine:
		return "multi_line"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// ParseFieldKind maps "single_line"/"single" and "multi_line"/"multi" to a kind.
func ParseFieldKind(s string) (FieldKind, error) {
	switch s {
	case "", "single", "single_line", "text":
		return SingleLine, nil
	case "multi", "multi_line", "textarea":
		return MultiLine, nil
	}
	return SingleLine, fmt.Errorf("formlayout: unknown field kind %q: %w", s, ErrInvalidParam)
}

// Underline describes the rule drawn under a field's label.
type Underline struct {
	Color Color
	Width float64
	Gap   float64 // distance of the rule below the text baseline
}

// Field is a named, rectangular, fillable region bound to a label.
type Field struct {
	Name      string    // unique within a document
	Label     string    // text printed next to or above the widget
	Kind      FieldKind // single_line or multi_line
	Rect      Rect      // widget rectangle in points
	Underline Underline // rule style under the label
	Section   string    // title of the owning section
	Page      int       // page number (1-based)

	Value    string  // default value
	MaxLen   int     // maximum text length (0 = unlimited)
	ReadOnly bool    // whether the field is read-only
	Required bool    // whether the field is required
	FontSize float64 // font size for the widget text (0 = writer default)
}
