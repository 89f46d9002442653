package doctpl_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/asset"
	"github.com/lvillar/formlayout/doctpl"
	"github.com/lvillar/formlayout/pdfwriter"
	"github.com/lvillar/formlayout/record"
)

const smallJSON = `{
  "name": "small",
  "theme": "basic",
  "header": {"title": "Beleg"},
  "sections": [{
    "title": "Angaben",
    "fields": [
      {"name": "Datum", "label": "Datum:"},
      {"name": "Anlass", "label": "Anlass:", "kind": "multi_line", "lines": 3}
    ]
  }],
  "footer": {"text": "erstellt"},
  "variants": [{"name": "kunden", "label": "Kundenbewirtung", "accent": "#336699"}]
}`

const smallYAML = `
name: small
theme: basic
header:
  title: Beleg
sections:
  - title: Angaben
    fields:
      - {name: Datum, label: "Datum:"}
      - {name: Anlass, label: "Anlass:", kind: multi_line, lines: 3}
footer:
  text: erstellt
variants:
  - {name: kunden, label: Kundenbewirtung, accent: "#336699"}
`

const smallTOML = `
name = "small"
theme = "basic"

[header]
title = "Beleg"

[[sections]]
title = "Angaben"

  [[sections.fields]]
  name = "Datum"
  label = "Datum:"

  [[sections.fields]]
  name = "Anlass"
  label = "Anlass:"
  kind = "multi_line"
  lines = 3

[footer]
text = "erstellt"

[[variants]]
name = "kunden"
label = "Kundenbewirtung"
accent = "#336699"
`

func TestParseFormatsAgree(t *testing.T) {
	want, err := doctpl.Parse([]byte(smallJSON), doctpl.FormatJSON)
	require.NoError(t, err)

	for f, src := range map[doctpl.Format]string{doctpl.FormatYAML: smallYAML, doctpl.FormatTOML: smallTOML} {
		got, err := doctpl.Parse([]byte(src), f)
		require.NoError(t, err, f)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s differs from json (-want +got):\n%s", f, diff)
		}
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	tests := map[doctpl.Format]string{
		doctpl.FormatJSON: `{"name": "x", "colour": "red"}`,
		doctpl.FormatYAML: "name: x\ncolour: red\n",
		doctpl.FormatTOML: "name = \"x\"\ncolour = \"red\"\n",
	}
	for f, src := range tests {
		_, err := doctpl.Parse([]byte(src), f)
		assert.Error(t, err, f)
	}
	_, err := doctpl.Parse([]byte("{}"), "xml")
	assert.ErrorIs(t, err, doctpl.ErrUnknownFormat)
}

func TestFormatOf(t *testing.T) {
	for name, want := range map[string]doctpl.Format{
		"a.json": doctpl.FormatJSON, "a.YAML": doctpl.FormatYAML, "a.yml": doctpl.FormatYAML, "a.toml": doctpl.FormatTOML,
	} {
		got, err := doctpl.FormatOf(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := doctpl.FormatOf("a.txt")
	assert.ErrorIs(t, err, doctpl.ErrUnknownFormat)
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "small.toml")
	require.NoError(t, os.WriteFile(p, []byte(smallTOML), 0o600))

	doc, err := doctpl.LoadAny(p)
	require.NoError(t, err)
	assert.Equal(t, "small", doc.Name)

	doc, err = doctpl.LoadAny("bewirtung")
	require.NoError(t, err)
	assert.Equal(t, "bewirtung", doc.Name)

	_, err = doctpl.LoadAny("nope")
	assert.Error(t, err)
}

func TestTemplateConversion(t *testing.T) {
	doc, err := doctpl.Parse([]byte(smallJSON), doctpl.FormatJSON)
	require.NoError(t, err)
	tpl, err := doc.Template()
	require.NoError(t, err)

	require.Len(t, tpl.Sections, 1)
	fields := tpl.Sections[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, fl.SingleLine, fields[0].Kind)
	assert.Equal(t, fl.MultiLine, fields[1].Kind)
	assert.Equal(t, 3, fields[1].GuideLines)

	require.Len(t, tpl.Variants, 1)
	require.NotNil(t, tpl.Variants[0].Accent)
	assert.Equal(t, fl.RGB(0x33, 0x66, 0x99), *tpl.Variants[0].Accent)
}

func TestLabelsAreStrippedOfMarkup(t *testing.T) {
	doc := &doctpl.Document{
		Name:   "x",
		Header: doctpl.Header{Title: "<h1>Beleg</h1>"},
		Sections: []doctpl.Section{{
			Title: "<script>alert(1)</script>Angaben",
			Fields: []doctpl.Field{
				{Name: "Datum", Label: "<b>Datum:</b>"},
				{Name: "Teilnehmer", Label: "Name &amp; Firma", Kind: "multi"},
			},
		}},
	}
	tpl, err := doc.Template()
	require.NoError(t, err)
	assert.Equal(t, "Beleg", tpl.Header.Title)
	assert.Equal(t, "Angaben", tpl.Sections[0].Title)
	assert.Equal(t, "Datum:", tpl.Sections[0].Fields[0].Label)
	assert.Equal(t, "Name & Firma", tpl.Sections[0].Fields[1].Label)
}

func TestTemplateErrors(t *testing.T) {
	base := func() *doctpl.Document {
		return &doctpl.Document{
			Name:     "x",
			Sections: []doctpl.Section{{Fields: []doctpl.Field{{Name: "a", Label: "A:"}}}},
		}
	}
	tests := []struct {
		name   string
		mutate func(*doctpl.Document)
	}{
		{"unknown kind", func(d *doctpl.Document) { d.Sections[0].Fields[0].Kind = "checkbox" }},
		{"negative lines", func(d *doctpl.Document) { d.Sections[0].Fields[0].Lines = -1 }},
		{"bad background", func(d *doctpl.Document) { d.Sections[0].Background = "blue" }},
		{"bad variant accent", func(d *doctpl.Document) {
			d.Variants = []doctpl.Variant{{Name: "v", Label: "V", Accent: "#12"}}
		}},
		{"unknown barcode", func(d *doctpl.Document) {
			d.Footer.Reference = &doctpl.Reference{Kind: "aztec", Payload: "x"}
		}},
		{"no name", func(d *doctpl.Document) { d.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.mutate(d)
			_, err := d.Template()
			assert.ErrorIs(t, err, fl.ErrInvalidParam)
		})
	}

	d := base()
	d.Accent = "nope"
	_, err := d.ThemeValue()
	assert.ErrorIs(t, err, fl.ErrInvalidParam)
	d.Accent, d.Theme = "", "fancy"
	_, err = d.ThemeValue()
	assert.ErrorIs(t, err, fl.ErrInvalidParam)
}

func TestGeometry(t *testing.T) {
	d := &doctpl.Document{PageSize: "Letter", Orientation: "Landscape", Margin: 36}
	g := d.Geometry()
	assert.Equal(t, 792.0, g.Width)
	assert.Equal(t, 612.0, g.Height)
	assert.Equal(t, 36.0, g.Margin)
}

var bewirtungFields = []string{
	"Firma_Mitarbeiter", "Datum", "Restaurant", "Anschrift", "Geschaeftsart", "Zahlungsart",
	"Anlass", "Teilnehmer", "Namen", "Firma",
	"Gesamtbetrag", "Betrag Kreditkarte", "Gesamtbetrag Netto", "MwSt. Gesamt",
	"Trinkgeld", "MwSt Trinkgeld", "Unterschrift", "Ort_Datum",
}

func TestBuiltinBewirtung(t *testing.T) {
	assert.Contains(t, doctpl.BuiltinNames(), "bewirtung")

	doc, err := doctpl.Builtin("bewirtung")
	require.NoError(t, err)
	tpl, err := doc.Template()
	require.NoError(t, err)

	var names []string
	for _, s := range tpl.Sections {
		for _, f := range s.Fields {
			names = append(names, f.Name)
		}
	}
	assert.Equal(t, bewirtungFields, names)

	kunden, ok := tpl.Variant("kunden")
	require.True(t, ok)
	assert.Equal(t, "Kundenbewirtung", kunden.Label)
	mitarbeiter, ok := tpl.Variant("mitarbeiter")
	require.True(t, ok)
	assert.Equal(t, "Mitarbeiterbewirtung", mitarbeiter.Label)
}

func TestBuiltinFitsEveryTheme(t *testing.T) {
	measure := pdfwriter.NewFactory()
	for _, theme := range []string{"basic", "styled"} {
		t.Run(theme, func(t *testing.T) {
			doc, err := doctpl.Builtin("bewirtung")
			require.NoError(t, err)
			doc.Theme = theme
			tpl, err := doc.Template()
			require.NoError(t, err)
			e, err := doc.Engine()
			require.NoError(t, err)

			g := e.Geometry()
			base, err := e.Render(context.Background(), tpl, record.New(g.Width, g.Height, measure))
			require.NoError(t, err)

			fields := base.Fields()
			require.Len(t, fields, len(bewirtungFields))
			page := fl.Rect{X: g.Margin, Y: g.BottomMargin, W: g.ContentWidth(), H: e.ContentTop() - g.BottomMargin}
			for i, a := range fields {
				assert.True(t, page.Contains(a.Rect), "%s at %v leaves the content area", a.Name, a.Rect)
				for _, b := range fields[i+1:] {
					assert.False(t, a.Rect.Intersects(b.Rect), "%s overlaps %s", a.Name, b.Name)
				}
			}
		})
	}
}

func TestRenderWritesFillablePDF(t *testing.T) {
	doc, err := doctpl.Builtin("bewirtung")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = doctpl.RenderDocument(context.Background(), &buf, doc, "kunden",
		doctpl.WithAssets(asset.Builtin()),
		doctpl.WithWriterOptions(
			pdfwriter.WithCompression(false),
			pdfwriter.WithFixedTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		),
	)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "/AcroForm")
	assert.Contains(t, out, "(Kundenbewirtung) Tj")
	assert.Equal(t, len(bewirtungFields), strings.Count(out, "/Subtype /Widget"))
}

func TestRenderFromYAML(t *testing.T) {
	var buf bytes.Buffer
	err := doctpl.Render(context.Background(), &buf, []byte(smallYAML), doctpl.FormatYAML, "")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), "/Subtype /Widget"))
}

func TestProduceSelectsVariants(t *testing.T) {
	doc, err := doctpl.Builtin("bewirtung")
	require.NoError(t, err)

	results, err := doctpl.Produce(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.NotNil(t, r.Document)
	}

	_, err = doctpl.Produce(context.Background(), doc, []string{"gaeste"})
	assert.Error(t, err)
}
