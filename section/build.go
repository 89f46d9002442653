package section

import (
	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/draw"
	"github.com/lvillar/formlayout/field"
)

// Draw emits a planned section. Styled themes get a rounded background box;
// both fidelities draw the title, labels, rules and guide lines.
func (b *Builder) Draw(c fl.Canvas, l *Layout) {
	th := b.theme
	if th.Fidelity == fl.FidelityStyled {
		edge := th.SectionEdge
		bg := l.Background
		draw.RoundedBox(c, l.Box, th.SectionRadius, &bg, &edge, 0.75)
	}
	if l.Title != "" {
		c.Text(l.TitleAt, l.Title, fl.TextStyle{Font: th.Bold, Color: th.Text})
	}

	label := fl.TextStyle{Font: th.Regular, Color: th.Text}
	for _, row := range l.Rows {
		for _, cell := range row.Cells {
			if cell.Rule == nil {
				if cell.Label != "" {
					c.Text(cell.LabelAt, cell.Label, label)
				}
				continue
			}
			draw.LabeledUnderline(c, cell.Label, cell.LabelAt, cell.Rule.From.X, cell.Rule.To.X, label, cell.Field.Underline)
		}
	}
	for _, g := range l.Guides {
		draw.RuledLine(c, g.From, g.To, th.GridLine, th.GuideWidth)
	}
}

// Build plans sec at the cursor, reserves its height, registers its fields
// and draws it. On error nothing is drawn or registered and the cursor is
// left where it was. On success the cursor rests at the start of the next
// section.
func (b *Builder) Build(c fl.Canvas, reg *field.Registry, cur *fl.Cursor, sec Section, index int) (*Layout, error) {
	l, err := b.Plan(sec, index, cur.Peek(), cur.Page())
	if err != nil {
		return nil, err
	}
	if !cur.Fits(l.ContentHeight - b.metrics.TopInset) {
		_, err := cur.Advance(l.ContentHeight - b.metrics.TopInset)
		return nil, fl.NewLayoutError("Build", sec.Title, "", err)
	}
	if err := reg.RegisterAll(l.Fields()); err != nil {
		return nil, fl.NewLayoutError("Build", sec.Title, "", err)
	}
	if _, err := cur.Advance(l.ContentHeight - b.metrics.TopInset); err != nil {
		return nil, fl.NewLayoutError("Build", sec.Title, "", err)
	}
	cur.Gap(b.metrics.SectionGap)
	b.Draw(c, l)
	return l, nil
}
