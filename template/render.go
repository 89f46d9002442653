package template

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/draw"
	"github.com/lvillar/formlayout/field"
	"github.com/lvillar/formlayout/record"
	"github.com/lvillar/formlayout/section"
)

// Display list regions.
const (
	RegionHeader  = "header"
	RegionFooter  = "footer"
	RegionWidgets = "widgets"
	RegionBadge   = "badge"
)

// SectionRegion names the display list region of the i-th section.
func SectionRegion(i int) string { return fmt.Sprintf("section/%d", i) }

// BaseState is the immutable result of rendering a template.
type BaseState struct {
	Template string
	Geometry fl.Geometry
	CursorY  float64           // cursor position after the last section
	Sections []*section.Layout // planned sections in order
	Display  record.List       // everything drawn, including widgets
	Warnings []string          // recoverable problems such as a missing logo

	fields []fl.Field
}

// Fields returns a copy of the registered fields in layout order.
func (b *BaseState) Fields() []fl.Field {
	out := make([]fl.Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// Render lays out tpl and draws it onto c: header, sections in order, the
// footer, then one widget per field. Layout defects (duplicate names,
// overlapping widgets, overflow) abort the render; a logo that cannot be
// resolved is logged and skipped.
//
// Drawing goes through a display list that is replayed onto c once the whole
// layout succeeded, so a failed render leaves c untouched.
func (e *Engine) Render(ctx context.Context, tpl *Template, c fl.Canvas) (*BaseState, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	g := e.geometry
	if w, h := c.PageSize(); math.Abs(w-g.Width) > 0.01 || math.Abs(h-g.Height) > 0.01 {
		return nil, fl.NewLayoutError("Render", "", "",
			fmt.Errorf("canvas is %.2fx%.2f, geometry is %.2fx%.2f: %w", w, h, g.Width, g.Height, fl.ErrInvalidParam))
	}

	log := e.logger.With(zap.String("template", tpl.Name))
	rec := record.New(g.Width, g.Height, c)
	base := &BaseState{Template: tpl.Name, Geometry: g}

	rec.BeginRegion(RegionHeader)
	if err := e.drawHeader(ctx, rec, tpl.Header, base, log); err != nil {
		return nil, err
	}

	reg := field.New()
	builder := section.NewBuilder(g, e.theme, e.sectionMetrics(), c)
	cur := fl.NewPageCursor(g, e.ContentTop())
	for i, sec := range tpl.Sections {
		rec.BeginRegion(SectionRegion(i))
		l, err := builder.Build(rec, reg, cur, sec, i)
		if err != nil {
			log.Debug("section rejected", zap.String("section", sec.Title), zap.Error(err))
			return nil, err
		}
		log.Debug("section laid out",
			zap.String("section", sec.Title),
			zap.Float64("height", l.ContentHeight),
			zap.Int("fields", len(sec.Fields)),
			zap.Float64("cursor", cur.Peek()))
		base.Sections = append(base.Sections, l)
	}

	rec.BeginRegion(RegionFooter)
	e.drawFooter(rec, tpl.Footer)

	base.fields = reg.Export()
	rec.BeginRegion(RegionWidgets)
	for _, f := range base.fields {
		rec.Widget(f)
	}
	rec.BeginRegion("")

	base.CursorY = cur.Peek()
	base.Display = rec.Snapshot()
	base.Display.Replay(c)
	return base, nil
}

func (e *Engine) drawHeader(ctx context.Context, c *record.Recorder, h Header, base *BaseState, log *zap.Logger) error {
	g := e.geometry
	th := e.theme
	if th.Fidelity == fl.FidelityStyled {
		draw.Band(c, fl.Rect{X: 0, Y: g.Height - headerBand, W: g.Width, H: headerBand}, th.Accent)
	}

	if h.Logo != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a := e.resolveLogo(ctx, h.Logo, base, log); a != nil {
			c.DrawAsset(a, logoRect(g, a, h.LogoScale))
		}
	}

	if h.Title != "" {
		style := fl.TextStyle{Font: th.Title, Color: th.HeaderText, Align: fl.AlignCenter}
		c.Text(fl.Pt(g.Width/2, g.Height-titleDrop), h.Title, style)
	}
	return nil
}

func (e *Engine) resolveLogo(ctx context.Context, name string, base *BaseState, log *zap.Logger) *fl.Asset {
	if e.assets == nil {
		base.Warnings = append(base.Warnings, fmt.Sprintf("logo %q: no asset source configured", name))
		log.Warn("logo skipped, no asset source", zap.String("asset", name))
		return nil
	}
	a, err := e.assets.Resolve(ctx, name)
	if err == nil && (a == nil || a.Width <= 0 || a.Height <= 0) {
		err = fmt.Errorf("asset %q has no size: %w", name, fl.ErrAssetResolution)
	}
	if err != nil {
		base.Warnings = append(base.Warnings, fmt.Sprintf("logo %q: %v", name, err))
		log.Warn("logo skipped", zap.String("asset", name), zap.Error(err))
		return nil
	}
	return a
}

// logoRect places a at the top-left of the header, scaled down further if
// it would not fit into the header.
func logoRect(g fl.Geometry, a *fl.Asset, scale float64) fl.Rect {
	if scale <= 0 {
		scale = defaultScale
	}
	w, h := a.Width*scale, a.Height*scale
	if h > logoMaxHeight {
		w, h = w*logoMaxHeight/h, logoMaxHeight
	}
	return fl.Rect{X: g.Margin, Y: g.Height - logoDrop, W: w, H: h}
}

func (e *Engine) drawFooter(c fl.Canvas, f Footer) {
	g := e.geometry
	th := e.theme
	draw.RuledLine(c, fl.Pt(g.Margin, footerRuleY), fl.Pt(g.Width-g.Margin, footerRuleY), th.FooterRule, th.FooterRuleWidth)
	if f.Text != "" {
		c.Text(fl.Pt(g.Width-g.Margin, footerTextY), f.Text, fl.TextStyle{Font: th.Footer, Color: th.Muted, Align: fl.AlignRight})
	}
	if r := f.Reference; r != nil {
		c.Barcode(r.Kind, r.Payload, referenceRect(g, r.Kind))
	}
}

func referenceRect(g fl.Geometry, kind fl.BarcodeKind) fl.Rect {
	switch kind {
	case fl.BarcodeCode128:
		return fl.Rect{X: g.Margin, Y: 14, W: 120, H: 24}
	case fl.BarcodePDF417:
		return fl.Rect{X: g.Margin, Y: 12, W: 96, H: referenceSize}
	}
	return fl.Rect{X: g.Margin, Y: 12, W: referenceSize, H: referenceSize}
}
