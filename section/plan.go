package section

import (
	"fmt"
	"math"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/draw"
)

// Segment is a straight line between two points.
type Segment struct {
	From, To fl.Point
}

// Cell is one positioned field: its label, the rule under it and the widget.
type Cell struct {
	Label   string
	LabelAt fl.Point
	Rule    *Segment // nil for multi-line fields
	Field   fl.Field
}

// Row is a horizontal band of one multi-line cell or one or more single-line
// cells sharing a baseline.
type Row struct {
	Baseline float64
	Height   float64
	Cells    []Cell
}

// Layout is a fully positioned section.
type Layout struct {
	Title         string
	Index         int
	TitleAt       fl.Point
	Box           fl.Rect
	Background    fl.Color
	ContentHeight float64
	Rows          []Row
	Guides        []Segment // decorative lines of multi-line blocks
	Next          float64   // outer cursor Y for the following section
}

// Fields returns the fields of all cells in layout order.
func (l *Layout) Fields() []fl.Field {
	var out []fl.Field
	for _, r := range l.Rows {
		for _, c := range r.Cells {
			out = append(out, c.Field)
		}
	}
	return out
}

// Builder plans and draws sections for one page geometry and theme.
type Builder struct {
	geometry fl.Geometry
	theme    fl.Theme
	metrics  Metrics
	measure  fl.TextMeasurer
}

// NewBuilder creates a builder. The measurer must report the same widths as
// the canvas the sections are finally drawn on.
func NewBuilder(g fl.Geometry, th fl.Theme, m Metrics, tm fl.TextMeasurer) *Builder {
	return &Builder{geometry: g, theme: th, metrics: m, measure: tm}
}

// Metrics returns the builder's metrics.
func (b *Builder) Metrics() Metrics { return b.metrics }

// ContentHeight returns the height of the section box: the top inset, the
// title line or the lead of an untitled box, every row and the bottom inset.
// It depends on the field kinds only, never on drawn output.
func (b *Builder) ContentHeight(sec Section) (float64, error) {
	rows, err := groupRows(sec)
	if err != nil {
		return 0, err
	}
	m := b.metrics
	h := m.TopInset + m.BottomInset
	if sec.Title != "" {
		h += m.TitleHeight
	}
	h += b.lead(sec.Title, rows)
	for _, r := range rows {
		h += b.rowHeight(r)
	}
	return h, nil
}

// lead is how far the first row of a boxed section drops below the title
// baseline so that a single-line widget stays under the box top. It is zero
// for titled sections and for the basic metrics, which draw no box.
func (b *Builder) lead(title string, rows [][]FieldSpec) float64 {
	m := b.metrics
	if m.TopInset <= 0 || len(rows) == 0 || rows[0][0].Kind != fl.SingleLine {
		return 0
	}
	room := m.TopInset
	if title != "" {
		room += m.TitleHeight
	}
	return math.Max(0, m.WidgetHeight-draw.UnderlineGap-room)
}

func (b *Builder) rowHeight(r []FieldSpec) float64 {
	if len(r) == 1 && r[0].Kind == fl.MultiLine {
		return b.metrics.MultiRowHeight(b.metrics.guides(r[0]))
	}
	return b.metrics.SingleRowHeight()
}

// groupRows splits the field specs into rows, honouring Inline.
func groupRows(sec Section) ([][]FieldSpec, error) {
	var rows [][]FieldSpec
	for i, f := range sec.Fields {
		name := f.Name
		if name == "" {
			name = f.Label
		}
		if name == "" {
			return nil, fl.NewLayoutError("Plan", sec.Title, "", fmt.Errorf("field %d has neither name nor label: %w", i, fl.ErrInvalidParam))
		}
		if f.Kind != fl.SingleLine && f.Kind != fl.MultiLine {
			return nil, fl.NewLayoutError("Plan", sec.Title, name, fmt.Errorf("unknown kind %s: %w", f.Kind, fl.ErrInvalidParam))
		}
		if f.GuideLines < 0 {
			return nil, fl.NewLayoutError("Plan", sec.Title, name, fmt.Errorf("negative guide line count: %w", fl.ErrInvalidParam))
		}
		if f.Inline {
			if f.Kind == fl.MultiLine || len(rows) == 0 || rows[len(rows)-1][0].Kind == fl.MultiLine {
				return nil, fl.NewLayoutError("Plan", sec.Title, name, fmt.Errorf("inline field must follow a single-line field: %w", fl.ErrInvalidParam))
			}
			rows[len(rows)-1] = append(rows[len(rows)-1], f)
			continue
		}
		rows = append(rows, []FieldSpec{f})
	}
	return rows, nil
}

// Plan positions sec with its title baseline at y. index selects the theme's
// section colour and page is stamped onto the fields. Plan does not check
// the bottom margin; Build does.
func (b *Builder) Plan(sec Section, index int, y float64, page int) (*Layout, error) {
	rows, err := groupRows(sec)
	if err != nil {
		return nil, err
	}
	ch, err := b.ContentHeight(sec)
	if err != nil {
		return nil, err
	}

	m := b.metrics
	g := b.geometry
	box := fl.Rect{X: g.Margin, Y: y - ch + m.TopInset, W: g.ContentWidth(), H: ch}
	l := &Layout{
		Title:         sec.Title,
		Index:         index,
		TitleAt:       fl.Pt(box.X+m.Padding, y),
		Box:           box,
		Background:    b.theme.SectionColor(index),
		ContentHeight: ch,
		Next:          box.Top() - ch - m.SectionGap,
	}
	if sec.Background != nil {
		l.Background = *sec.Background
	}

	inner := y - b.lead(sec.Title, rows)
	if sec.Title != "" {
		inner -= m.TitleHeight
	}
	left := box.X + m.Padding
	right := box.Right() - m.Padding
	for _, specs := range rows {
		row := Row{Baseline: inner, Height: b.rowHeight(specs)}
		if specs[0].Kind == fl.MultiLine {
			cell, guides := b.multiCell(sec.Title, specs[0], left, right, inner, page)
			row.Cells = append(row.Cells, cell)
			l.Guides = append(l.Guides, guides...)
		} else {
			colW := (right - left - float64(len(specs)-1)*m.ColumnGap) / float64(len(specs))
			for i, spec := range specs {
				x0 := left + float64(i)*(colW+m.ColumnGap)
				cell, err := b.singleCell(sec.Title, spec, x0, x0+colW, inner, page)
				if err != nil {
					return nil, err
				}
				row.Cells = append(row.Cells, cell)
			}
		}
		l.Rows = append(l.Rows, row)
		inner -= row.Height
	}
	return l, nil
}

func (b *Builder) singleCell(title string, spec FieldSpec, x0, x1, baseline float64, page int) (Cell, error) {
	m := b.metrics
	name := fieldName(spec)
	labelW := spec.LabelWidth
	if labelW <= 0 && spec.Label != "" {
		labelW = b.measure.TextWidth(spec.Label, b.theme.Regular) + m.LabelGap
	}
	start := x0 + labelW
	end := x1
	if spec.Width > 0 && start+spec.Width < end {
		end = start + spec.Width
	}
	if end-start < m.MinRule {
		return Cell{}, fl.NewLayoutError("Plan", title, name,
			fmt.Errorf("label leaves %.2fpt for the field, need %.2fpt: %w", end-start, m.MinRule, fl.ErrInvalidParam))
	}
	rule := b.underline()
	ruleY := baseline - rule.Gap
	return Cell{
		Label:   spec.Label,
		LabelAt: fl.Pt(x0, baseline),
		Rule:    &Segment{From: fl.Pt(start, ruleY), To: fl.Pt(end, ruleY)},
		Field:   b.field(title, spec, fl.Rect{X: start, Y: ruleY, W: end - start, H: m.WidgetHeight}, page),
	}, nil
}

func (b *Builder) multiCell(title string, spec FieldSpec, x0, x1, baseline float64, page int) (Cell, []Segment) {
	m := b.metrics
	n := m.guides(spec)
	rule := b.underline()
	first := baseline - m.LineHeight
	guides := make([]Segment, n)
	for i := range guides {
		y := first - float64(i)*m.LineHeight - rule.Gap
		guides[i] = Segment{From: fl.Pt(x0, y), To: fl.Pt(x1, y)}
	}
	block := m.BlockHeight(n)
	r := fl.Rect{X: x0, Y: baseline - rule.Gap - block, W: x1 - x0, H: block}
	return Cell{
		Label:   spec.Label,
		LabelAt: fl.Pt(x0, baseline),
		Field:   b.field(title, spec, r, page),
	}, guides
}

func (b *Builder) underline() fl.Underline {
	return fl.Underline{Color: b.theme.GridLine, Width: b.theme.RuleWidth, Gap: draw.UnderlineGap}
}

func (b *Builder) field(title string, spec FieldSpec, r fl.Rect, page int) fl.Field {
	return fl.Field{
		Name:      fieldName(spec),
		Label:     spec.Label,
		Kind:      spec.Kind,
		Rect:      r,
		Underline: b.underline(),
		Section:   title,
		Page:      page,
		Value:     spec.Value,
		MaxLen:    spec.MaxLen,
		ReadOnly:  spec.ReadOnly,
		Required:  spec.Required,
		FontSize:  spec.FontSize,
	}
}

func fieldName(spec FieldSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.Label
}
