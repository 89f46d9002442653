package template_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/draw"
	"github.com/lvillar/formlayout/record"
	"github.com/lvillar/formlayout/section"
	"github.com/lvillar/formlayout/template"
)

var (
	kunden      = template.Variant{Name: "kunden", Label: "Kundenbewirtung"}
	mitarbeiter = template.Variant{Name: "mitarbeiter", Label: "Mitarbeiterbewirtung", Accent: &fl.Color{R: 40, G: 140, B: 90}}
)

func sampleTemplate() *template.Template {
	return &template.Template{
		Name:   "bewirtung",
		Header: template.Header{Title: "Bewirtungsformular"},
		Sections: []section.Section{{
			Title: "Bewirtung",
			Fields: []section.FieldSpec{
				{Name: "Datum", Label: "Datum:"},
				{Name: "Anlass", Label: "Anlass der Bewirtung:", Kind: fl.MultiLine, GuideLines: 3},
			},
		}},
		Footer:   template.Footer{Text: "Dieses Formular wurde mit DocBits erstellt"},
		Variants: []template.Variant{kunden, mitarbeiter},
	}
}

func newRecorder(g fl.Geometry) *record.Recorder {
	return record.New(g.Width, g.Height, nil)
}

func TestEndToEndDatumAnlassBadge(t *testing.T) {
	for _, th := range []fl.Theme{fl.BasicTheme(), fl.StyledTheme()} {
		t.Run(th.Fidelity.String(), func(t *testing.T) {
			e, err := template.New(template.WithTheme(th))
			require.NoError(t, err)
			g := e.Geometry()
			rec := newRecorder(g)

			base, err := e.Render(context.Background(), sampleTemplate(), rec)
			require.NoError(t, err)

			fields := base.Fields()
			require.Len(t, fields, 2)
			datum, anlass := fields[0], fields[1]
			assert.Equal(t, "Datum", datum.Name)
			assert.Equal(t, "Anlass", anlass.Name)
			assert.Equal(t, fl.MultiLine, anlass.Kind)

			m := section.DefaultMetrics(g, th.Fidelity)
			minDistance := m.SingleRowHeight() + m.BlockHeight(3)
			assert.GreaterOrEqual(t, datum.Rect.Y-anlass.Rect.Y+1e-9, minDistance)

			badge, err := e.ApplyVariant(base, kunden, rec)
			require.NoError(t, err)
			assert.Equal(t, "Kundenbewirtung", badge.Text)
			assert.Equal(t, fl.Pt(g.Width-g.Margin-draw.BadgeWidth, g.Height-g.HeaderOffset), badge.Rect.TopLeft())
			assert.Equal(t, th.Accent, badge.Fill)

			badgeOps := rec.Region(template.RegionBadge)
			require.Len(t, badgeOps, 2)
			assert.Equal(t, "Kundenbewirtung", badgeOps[1].Text)

			widgets := rec.Region(template.RegionWidgets)
			assert.Len(t, widgets, 2)
		})
	}
}

func TestLongBadgeLabelIsTruncatedAndReported(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e, err := template.New(template.WithLogger(zap.New(core)))
	require.NoError(t, err)
	g := e.Geometry()
	rec := newRecorder(g)
	base, err := e.Render(context.Background(), sampleTemplate(), rec)
	require.NoError(t, err)

	long := template.Variant{Name: "gemischt", Label: "Bewirtung von Geschäftsfreunden und Mitarbeitern"}
	badge, err := e.ApplyVariant(base, long, rec)
	require.NoError(t, err)
	assert.True(t, badge.Truncated)
	assert.NotEqual(t, long.Label, badge.Text)
	assert.Contains(t, badge.Text, "...")

	entries := logs.FilterMessage("badge label truncated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gemischt", entries[0].ContextMap()["variant"])

	badge, err = e.ApplyVariant(base, kunden, rec)
	require.NoError(t, err)
	assert.False(t, badge.Truncated)
	assert.Equal(t, 1, logs.FilterMessage("badge label truncated").Len())
}

func TestVariantsShareGeometry(t *testing.T) {
	e, err := template.New(template.WithTheme(fl.StyledTheme()))
	require.NoError(t, err)

	results, err := e.Produce(context.Background(), sampleTemplate(), []template.Variant{kunden, mitarbeiter}, record.Factory{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	a, b := results[0], results[1]
	if diff := cmp.Diff(a.Fields, b.Fields); diff != "" {
		t.Errorf("field geometry differs between variants (-kunden +mitarbeiter):\n%s", diff)
	}
	assert.Equal(t, a.Badge.Rect, b.Badge.Rect)
	assert.NotEqual(t, a.Badge.Text, b.Badge.Text)
	assert.NotEqual(t, a.Badge.Fill, b.Badge.Fill)

	recA := a.Document.(*record.Recorder)
	recB := b.Document.(*record.Recorder)
	withoutBadge := func(ops []record.Op) []record.Op {
		var out []record.Op
		for _, op := range ops {
			if op.Region != template.RegionBadge {
				out = append(out, op)
			}
		}
		return out
	}
	if diff := cmp.Diff(withoutBadge(recA.Ops()), withoutBadge(recB.Ops())); diff != "" {
		t.Errorf("variants differ outside the badge region:\n%s", diff)
	}
	assert.NotEqual(t, recA.Region(template.RegionBadge), recB.Region(template.RegionBadge))

	assert.Equal(t, "Kundenbewirtung", recA.Metadata().Subject)
	assert.Equal(t, template.DocumentID("bewirtung", "kunden"), recA.Metadata().DocumentID)
	assert.NotEqual(t, recA.Metadata().DocumentID, recB.Metadata().DocumentID)
}

func TestFieldsNeverOverlap(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Sections = append(tpl.Sections, section.Section{
		Title: "Beträge",
		Fields: []section.FieldSpec{
			{Name: "Gesamtbetrag", Label: "Gesamtbetrag:", Width: 130},
			{Name: "Gesamtbetrag Netto", Label: "Netto:"},
			{Name: "MwSt. Gesamt", Label: "MwSt.:", Inline: true},
			{Name: "Trinkgeld", Label: "Trinkgeld:"},
			{Name: "MwSt Trinkgeld", Label: "MwSt. Trinkgeld:", Inline: true},
		},
	})
	e, err := template.New(template.WithTheme(fl.StyledTheme()))
	require.NoError(t, err)
	base, err := e.Render(context.Background(), tpl, newRecorder(e.Geometry()))
	require.NoError(t, err)

	fields := base.Fields()
	require.Len(t, fields, 7)
	for i := range fields {
		for j := i + 1; j < len(fields); j++ {
			assert.False(t, fields[i].Rect.Intersects(fields[j].Rect), "%s overlaps %s", fields[i].Name, fields[j].Name)
		}
	}
	assert.Greater(t, base.CursorY, e.Geometry().BottomMargin)
}

func TestRenderDuplicateFieldAbortsWithoutDrawing(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Sections = append(tpl.Sections, section.Section{
		Title:  "Zweite",
		Fields: []section.FieldSpec{{Name: "Datum", Label: "Datum:"}},
	})
	e, err := template.New()
	require.NoError(t, err)
	rec := newRecorder(e.Geometry())

	_, err = e.Render(context.Background(), tpl, rec)
	require.ErrorIs(t, err, fl.ErrDuplicateFieldName)
	var le *fl.LayoutError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "Zweite", le.Section)
	assert.Equal(t, "Datum", le.Field)
	assert.Empty(t, rec.Ops())
}

func TestRenderOverflow(t *testing.T) {
	tpl := sampleTemplate()
	for i := 0; i < 8; i++ {
		tpl.Sections = append(tpl.Sections, section.Section{
			Title:  fmt.Sprintf("Block %d", i),
			Fields: []section.FieldSpec{{Name: fmt.Sprintf("Notiz %d", i), Label: "Notiz:", Kind: fl.MultiLine}},
		})
	}
	e, err := template.New()
	require.NoError(t, err)
	_, err = e.Render(context.Background(), tpl, newRecorder(e.Geometry()))
	require.ErrorIs(t, err, fl.ErrLayoutOverflow)

	var le *fl.LayoutError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Section, "Block")
}

type failingAssets struct{}

func (failingAssets) Resolve(context.Context, string) (*fl.Asset, error) {
	return nil, fmt.Errorf("fetching logo: %w", fl.ErrAssetResolution)
}

type staticAssets struct{ a *fl.Asset }

func (s staticAssets) Resolve(context.Context, string) (*fl.Asset, error) { return s.a, nil }

func TestLogoFailureDegradesGracefully(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	tpl := sampleTemplate()
	tpl.Header.Logo = "docbits"

	for name, src := range map[string]template.AssetSource{"failing": failingAssets{}, "none": nil} {
		t.Run(name, func(t *testing.T) {
			opts := []template.Option{template.WithLogger(zap.New(core))}
			if src != nil {
				opts = append(opts, template.WithAssets(src))
			}
			e, err := template.New(opts...)
			require.NoError(t, err)
			rec := newRecorder(e.Geometry())

			base, err := e.Render(context.Background(), tpl, rec)
			require.NoError(t, err)
			assert.Len(t, base.Fields(), 2)
			require.Len(t, base.Warnings, 1)
			assert.Contains(t, base.Warnings[0], "docbits")
			for _, op := range rec.Ops() {
				assert.NotEqual(t, record.KindAsset, op.Kind)
			}
		})
	}
	assert.Equal(t, 2, logs.FilterField(zap.String("asset", "docbits")).Len())
}

func TestLogoIsScaledIntoHeader(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Header.Logo = "docbits"
	logo := &fl.Asset{Name: "docbits", Format: fl.AssetSVG, Data: []byte("<svg/>"), Width: 600, Height: 300}
	e, err := template.New(template.WithAssets(staticAssets{logo}))
	require.NoError(t, err)
	g := e.Geometry()
	rec := newRecorder(g)

	_, err = e.Render(context.Background(), tpl, rec)
	require.NoError(t, err)
	header := rec.Region(template.RegionHeader)
	require.NotEmpty(t, header)
	assert.Equal(t, record.KindAsset, header[0].Kind)
	assert.Equal(t, fl.Rect{X: g.Margin, Y: g.Height - 60, W: 88, H: 44}, header[0].Rect)
}

type flakyFactory struct {
	record.Factory
	calls int
}

func (f *flakyFactory) NewDocument(g fl.Geometry) (fl.Document, error) {
	f.calls++
	if f.calls == 1 {
		return nil, errors.New("disk full")
	}
	return f.Factory.NewDocument(g)
}

func TestProduceIsolatesVariantFailures(t *testing.T) {
	e, err := template.New()
	require.NoError(t, err)
	variants := []template.Variant{kunden, mitarbeiter, {Name: "leer"}, kunden}

	results, err := e.Produce(context.Background(), sampleTemplate(), variants, &flakyFactory{})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.ErrorContains(t, results[0].Err, "disk full")
	assert.Nil(t, results[0].Document)
	assert.NoError(t, results[1].Err)
	assert.NotNil(t, results[1].Document)
	assert.ErrorIs(t, results[2].Err, fl.ErrInvalidParam)
	assert.ErrorIs(t, results[3].Err, fl.ErrInvalidParam, "duplicate variant in one batch")
}

func TestProduceBaseFailure(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Sections[0].Fields = append(tpl.Sections[0].Fields, section.FieldSpec{Name: "Datum", Label: "Datum:"})
	e, err := template.New()
	require.NoError(t, err)
	results, err := e.Produce(context.Background(), tpl, tpl.Variants, record.Factory{})
	assert.ErrorIs(t, err, fl.ErrDuplicateFieldName)
	assert.Nil(t, results)
}

func TestRenderRejectsMismatchedCanvas(t *testing.T) {
	e, err := template.New()
	require.NoError(t, err)
	_, err = e.Render(context.Background(), sampleTemplate(), record.New(612, 792, nil))
	assert.ErrorIs(t, err, fl.ErrInvalidParam)
}

func TestTemplateValidate(t *testing.T) {
	tpl := sampleTemplate()
	require.NoError(t, tpl.Validate())
	v, ok := tpl.Variant("mitarbeiter")
	require.True(t, ok)
	assert.Equal(t, "Mitarbeiterbewirtung", v.Label)
	assert.Equal(t, 2, tpl.FieldCount())

	tpl.Variants = append(tpl.Variants, kunden)
	assert.ErrorIs(t, tpl.Validate(), fl.ErrInvalidParam)

	tpl = sampleTemplate()
	tpl.Footer.Reference = &template.Reference{Kind: "aztec", Payload: "x"}
	assert.ErrorIs(t, tpl.Validate(), fl.ErrInvalidParam)

	tpl.Footer.Reference = &template.Reference{Kind: fl.BarcodeQR, Payload: "https://example.com/beleg"}
	require.NoError(t, tpl.Validate())
	e, err := template.New()
	require.NoError(t, err)
	rec := newRecorder(e.Geometry())
	_, err = e.Render(context.Background(), tpl, rec)
	require.NoError(t, err)
	footer := rec.Region(template.RegionFooter)
	require.Len(t, footer, 3)
	assert.Equal(t, record.KindBarcode, footer[2].Kind)
	assert.Less(t, footer[2].Rect.Top(), 50.0)
}
