package section_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/field"
	"github.com/lvillar/formlayout/record"
	"github.com/lvillar/formlayout/section"
)

func newBuilder(th fl.Theme) (*section.Builder, fl.Geometry) {
	g := fl.NewGeometry()
	return section.NewBuilder(g, th, section.DefaultMetrics(g, th.Fidelity), record.Approx{}), g
}

func specs(kind fl.FieldKind, n int) []section.FieldSpec {
	out := make([]section.FieldSpec, n)
	for i := range out {
		out[i] = section.FieldSpec{Name: fmt.Sprintf("%s-%d", kind, i), Label: "Feld:", Kind: kind}
	}
	return out
}

func TestContentHeightFormula(t *testing.T) {
	for _, th := range []fl.Theme{fl.BasicTheme(), fl.StyledTheme()} {
		b, _ := newBuilder(th)
		m := b.Metrics()
		for _, title := range []string{"", "Bewirtung"} {
			for _, singles := range []int{0, 1, 4} {
				for _, multis := range []int{0, 1, 3} {
					name := fmt.Sprintf("%s/title=%q/single=%d/multi=%d", th.Fidelity, title, singles, multis)
					t.Run(name, func(t *testing.T) {
						sec := section.Section{Title: title}
						sec.Fields = append(sec.Fields, specs(fl.SingleLine, singles)...)
						sec.Fields = append(sec.Fields, specs(fl.MultiLine, multis)...)

						want := m.TopInset + m.BottomInset +
							float64(singles)*(m.LineHeight+m.RowGap) +
							float64(multis)*(m.LineHeight+3*m.LineHeight+m.LineHeight/2+m.RowGap)
						if title != "" {
							want += m.TitleHeight
						} else if th.Fidelity == fl.FidelityStyled && singles > 0 {
							want += m.WidgetHeight - 2 - m.TopInset
						}
						got, err := b.ContentHeight(sec)
						require.NoError(t, err)
						assert.InDelta(t, want, got, 1e-9)

						l, err := b.Plan(sec, 0, 700, 1)
						require.NoError(t, err)
						assert.InDelta(t, want, l.Box.H, 1e-9, "box height equals content height")
						if th.Fidelity == fl.FidelityStyled {
							for _, f := range l.Fields() {
								assert.True(t, l.Box.Contains(f.Rect), "field %s inside box", f.Name)
							}
						}
					})
				}
			}
		}
	}
}

func TestContentHeightConstants(t *testing.T) {
	b, _ := newBuilder(fl.BasicTheme())
	single, err := b.ContentHeight(section.Section{Fields: specs(fl.SingleLine, 1)})
	require.NoError(t, err)
	assert.Equal(t, 38.0, single)

	multi, err := b.ContentHeight(section.Section{Fields: specs(fl.MultiLine, 1)})
	require.NoError(t, err)
	assert.Equal(t, 136.0, multi)

	five, err := b.ContentHeight(section.Section{Fields: []section.FieldSpec{{Label: "Teilnehmer:", Kind: fl.MultiLine, GuideLines: 5}}})
	require.NoError(t, err)
	assert.Equal(t, 28.0+140+14+10, five)
}

func TestInlineFieldsShareARow(t *testing.T) {
	b, g := newBuilder(fl.BasicTheme())
	sec := section.Section{Fields: []section.FieldSpec{
		{Name: "Gesamtbetrag Netto", Label: "Netto:"},
		{Name: "MwSt. Gesamt", Label: "MwSt.:", Inline: true},
	}}
	h, err := b.ContentHeight(sec)
	require.NoError(t, err)
	assert.Equal(t, 38.0, h)

	l, err := b.Plan(sec, 0, 700, 1)
	require.NoError(t, err)
	require.Len(t, l.Rows, 1)
	cells := l.Rows[0].Cells
	require.Len(t, cells, 2)
	assert.Equal(t, cells[0].LabelAt.Y, cells[1].LabelAt.Y)
	assert.Less(t, cells[0].Field.Rect.Right(), cells[1].LabelAt.X)
	assert.InDelta(t, g.Width-g.Margin, cells[1].Field.Rect.Right(), 1e-9)
	assert.False(t, cells[0].Field.Rect.Intersects(cells[1].Field.Rect))
}

func TestInlineRequiresSingleLinePredecessor(t *testing.T) {
	b, _ := newBuilder(fl.BasicTheme())
	cases := []section.Section{
		{Fields: []section.FieldSpec{{Label: "A:", Inline: true}}},
		{Fields: []section.FieldSpec{{Label: "A:", Kind: fl.MultiLine}, {Label: "B:", Inline: true}}},
		{Fields: []section.FieldSpec{{Label: "A:"}, {Label: "B:", Kind: fl.MultiLine, Inline: true}}},
	}
	for _, sec := range cases {
		_, err := b.ContentHeight(sec)
		assert.ErrorIs(t, err, fl.ErrInvalidParam)
	}
}

func TestPlanPositions(t *testing.T) {
	b, g := newBuilder(fl.StyledTheme())
	sec := section.Section{Title: "Bewirtung", Fields: []section.FieldSpec{
		{Label: "Datum:"},
		{Label: "Anlass:", Kind: fl.MultiLine},
	}}
	l, err := b.Plan(sec, 0, 700, 1)
	require.NoError(t, err)

	assert.Equal(t, g.Margin, l.Box.X)
	assert.Equal(t, g.ContentWidth(), l.Box.W)
	assert.Equal(t, 712.0, l.Box.Top(), "box top sits TopInset above the title")
	assert.Equal(t, 700.0-l.ContentHeight+12, l.Box.Y)
	assert.Equal(t, l.Box.Top()-l.ContentHeight-20, l.Next)

	fields := l.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "Datum:", fields[0].Name)
	assert.Equal(t, 670.0, fields[0].Rect.Y)
	assert.Equal(t, 18.0, fields[0].Rect.H)
	assert.Equal(t, fl.MultiLine, fields[1].Kind)
	assert.Equal(t, 634.0-2-84, fields[1].Rect.Y)
	assert.Equal(t, 84.0, fields[1].Rect.H)

	require.Len(t, l.Guides, 3, "guide lines are decorative, not fields")
	for i, gl := range l.Guides {
		assert.Equal(t, 634.0-28-float64(i)*28-2, gl.From.Y)
	}
	for _, f := range fields {
		assert.True(t, l.Box.Contains(f.Rect), "field %s inside box", f.Name)
		assert.Equal(t, "Bewirtung", f.Section)
	}
}

func TestUntitledStyledSectionKeepsWidgetsInBox(t *testing.T) {
	b, _ := newBuilder(fl.StyledTheme())
	sec := section.Section{Fields: []section.FieldSpec{
		{Label: "Datum:"},
		{Label: "Ort:", Inline: true},
		{Label: "Anlass:", Kind: fl.MultiLine},
	}}
	l, err := b.Plan(sec, 0, 700, 1)
	require.NoError(t, err)

	assert.Equal(t, 712.0, l.Box.Top())
	fields := l.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, 712.0, fields[0].Rect.Top(), "first widget touches the box top")
	for _, f := range fields {
		assert.True(t, l.Box.Contains(f.Rect), "field %s inside box", f.Name)
	}

	multiFirst, err := b.Plan(section.Section{Fields: specs(fl.MultiLine, 1)}, 0, 700, 1)
	require.NoError(t, err)
	assert.Equal(t, 700.0, multiFirst.Rows[0].Baseline, "a leading multi-line block needs no extra drop")
}

func TestPlanRejectsCrampedLabel(t *testing.T) {
	b, _ := newBuilder(fl.BasicTheme())
	sec := section.Section{Fields: []section.FieldSpec{{Name: "x", Label: "Label", LabelWidth: 510}}}
	_, err := b.Plan(sec, 0, 700, 1)
	assert.ErrorIs(t, err, fl.ErrInvalidParam)
}

func TestBuildDrawsAndRegisters(t *testing.T) {
	b, g := newBuilder(fl.StyledTheme())
	rec := record.New(g.Width, g.Height, nil)
	reg := field.New()
	cur := fl.NewPageCursor(g, 700)

	l, err := b.Build(rec, reg, cur, section.Section{Title: "Bewirtung", Fields: []section.FieldSpec{
		{Name: "Datum", Label: "Datum:"},
		{Name: "Anlass", Label: "Anlass der Bewirtung:", Kind: fl.MultiLine},
	}}, 0)
	require.NoError(t, err)
	assert.Equal(t, l.Next, cur.Peek())
	assert.Equal(t, []string{"Datum", "Anlass"}, reg.Names())

	ops := rec.Ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, record.KindRect, ops[0].Kind, "background box first")
	assert.Equal(t, l.Box, ops[0].Rect)

	var lines int
	for _, op := range ops {
		if op.Kind == record.KindLine {
			lines++
		}
	}
	assert.Equal(t, 1+3, lines, "one field rule plus three guide lines")
}

func TestBuildBasicDrawsNoBox(t *testing.T) {
	b, g := newBuilder(fl.BasicTheme())
	rec := record.New(g.Width, g.Height, nil)
	_, err := b.Build(rec, field.New(), fl.NewPageCursor(g, 700), section.Section{Fields: specs(fl.SingleLine, 2)}, 0)
	require.NoError(t, err)
	for _, op := range rec.Ops() {
		assert.NotEqual(t, record.KindRect, op.Kind)
	}
}

func TestBuildOverflowIsAtomic(t *testing.T) {
	b, g := newBuilder(fl.BasicTheme())
	rec := record.New(g.Width, g.Height, nil)
	reg := field.New()
	cur := fl.NewPageCursor(g, g.BottomMargin+100)

	_, err := b.Build(rec, reg, cur, section.Section{Title: "Teilnehmer", Fields: specs(fl.MultiLine, 1)}, 0)
	require.ErrorIs(t, err, fl.ErrLayoutOverflow)

	var le *fl.LayoutError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "Teilnehmer", le.Section)
	assert.Equal(t, g.BottomMargin+100, cur.Peek())
	assert.Zero(t, reg.Len())
	assert.Empty(t, rec.Ops())
}

func TestBuildDuplicateAcrossSections(t *testing.T) {
	b, g := newBuilder(fl.BasicTheme())
	rec := record.New(g.Width, g.Height, nil)
	reg := field.New()
	cur := fl.NewPageCursor(g, 760)

	_, err := b.Build(rec, reg, cur, section.Section{Fields: []section.FieldSpec{{Name: "Datum", Label: "Datum:"}}}, 0)
	require.NoError(t, err)
	drawn := len(rec.Ops())
	y := cur.Peek()

	_, err = b.Build(rec, reg, cur, section.Section{Title: "Zweite", Fields: []section.FieldSpec{
		{Name: "Ort", Label: "Ort:"},
		{Name: "Datum", Label: "Datum:"},
	}}, 1)
	require.ErrorIs(t, err, fl.ErrDuplicateFieldName)
	assert.Equal(t, []string{"Datum"}, reg.Names())
	assert.Len(t, rec.Ops(), drawn)
	assert.Equal(t, y, cur.Peek())
}
