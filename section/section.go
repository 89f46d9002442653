// Package section lays out titled groups of labeled fields.
//
// Layout happens in two steps. Plan computes every rectangle, rule and label
// position of a section, including its content height, without touching a
// canvas. Draw then emits the plan. Build runs both against a cursor and a
// field registry, in that order, so a section whose height would overflow
// the page or whose fields conflict is never partially drawn.
package section

import (
	fl "github.com/lvillar/formlayout"
)

// FieldSpec describes one labeled field before it is positioned.
type FieldSpec struct {
	Name  string       // widget name; defaults to Label
	Label string       // printed text, e.g. "Datum:"
	Kind  fl.FieldKind // SingleLine or MultiLine

	// Inline places a single-line field in the same row as the previous
	// single-line field. The row's columns share the section width equally.
	Inline bool

	// LabelWidth reserves a fixed width for the label; 0 measures it.
	LabelWidth float64
	// Width limits the rule (and widget) length; 0 runs to the column end.
	Width float64
	// GuideLines is the number of ruled lines of a MultiLine block;
	// 0 uses Metrics.GuideLines.
	GuideLines int

	Value    string
	MaxLen   int
	ReadOnly bool
	Required bool
	FontSize float64
}

// Section is a titled group of fields.
type Section struct {
	Title      string
	Background *fl.Color // nil uses the theme's section colour
	Fields     []FieldSpec
}

// Metrics are the vertical and horizontal constants of section layout.
type Metrics struct {
	LineHeight   float64 // height of a label line
	RowGap       float64 // extra space after every row
	TopInset     float64 // box top above the title baseline
	TitleHeight  float64 // space taken by a non-empty title
	BottomInset  float64 // box bottom below the last row
	Padding      float64 // horizontal inset of content inside the box
	SectionGap   float64 // space between a box and the next section
	WidgetHeight float64 // height of a single-line widget above its rule
	LabelGap     float64 // space between label text and its rule
	ColumnGap    float64 // space between inline columns
	MinRule      float64 // shortest acceptable rule
	GuideLines   int     // default guide lines of a multi-line block
}

// DefaultMetrics returns the metrics for g at the given fidelity. The basic
// fidelity draws flush with the page margin; the styled one pads content
// inside rounded boxes.
func DefaultMetrics(g fl.Geometry, f fl.Fidelity) Metrics {
	m := Metrics{
		LineHeight:   g.LineHeight,
		RowGap:       10,
		TitleHeight:  g.LineHeight,
		SectionGap:   20,
		WidgetHeight: 18,
		LabelGap:     8,
		ColumnGap:    30,
		MinRule:      24,
		GuideLines:   3,
	}
	if f == fl.FidelityStyled {
		m.TopInset = 12
		m.BottomInset = 4
		m.Padding = 12
	}
	return m
}

// SingleRowHeight is the vertical space of one single-line row.
func (m Metrics) SingleRowHeight() float64 {
	return m.LineHeight + m.RowGap
}

// BlockHeight is the height of the guide-line block of a multi-line field.
func (m Metrics) BlockHeight(guides int) float64 {
	return float64(guides) * m.LineHeight
}

// MultiRowHeight is the vertical space of a multi-line field: its label
// line, the guide block, half a line of spacing and the row gap.
func (m Metrics) MultiRowHeight(guides int) float64 {
	return m.LineHeight + m.BlockHeight(guides) + m.LineHeight/2 + m.RowGap
}

func (m Metrics) guides(spec FieldSpec) int {
	if spec.GuideLines > 0 {
		return spec.GuideLines
	}
	return m.GuideLines
}
