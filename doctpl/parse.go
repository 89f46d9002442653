package doctpl

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/section"
	"github.com/lvillar/formlayout/template"
)

// Format is the encoding of a description.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for file extensions that are not a supported
// encoding.
var ErrUnknownFormat = errors.New("doctpl: unknown format")

// FormatOf derives the format from a file name.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Parse decodes a description. Unknown keys are rejected so typos in field
// options do not silently fall back to defaults.
func Parse(data []byte, f Format) (*Document, error) {
	var doc Document
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("doctpl: parsing json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("doctpl: parsing yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, fmt.Errorf("doctpl: parsing toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("doctpl: parsing toml: unknown key %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return &doc, nil
}

// Load reads and parses the description at path.
func Load(name string) (*Document, error) {
	f, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("doctpl: %w", err)
	}
	return Parse(data, f)
}

//go:embed builtin
var builtinFS embed.FS

// BuiltinNames lists the descriptions shipped with the module.
func BuiltinNames() []string {
	entries, _ := fs.ReadDir(builtinFS, "builtin")
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Builtin returns the shipped description called name.
func Builtin(name string) (*Document, error) {
	for _, ext := range []string{".yaml", ".json", ".toml"} {
		data, err := builtinFS.ReadFile("builtin/" + name + ext)
		if err != nil {
			continue
		}
		f, _ := FormatOf(ext)
		return Parse(data, f)
	}
	return nil, fmt.Errorf("doctpl: no builtin template %q", name)
}

// LoadAny returns the builtin called ref, or loads ref as a file path.
func LoadAny(ref string) (*Document, error) {
	if filepath.Ext(ref) == "" {
		return Builtin(ref)
	}
	return Load(ref)
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// plain strips markup from user supplied text. The strict policy escapes
// entities, which are turned back into characters since the PDF writer
// prints text verbatim.
func plain(s string) string {
	policyOnce.Do(func() { policy = bluemonday.StrictPolicy() })
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Geometry returns the page geometry the document asks for.
func (d *Document) Geometry() fl.Geometry {
	opts := []fl.Option{}
	if d.PageSize != "" {
		opts = append(opts, fl.WithPageSize(d.PageSize))
	}
	if d.Orientation != "" {
		opts = append(opts, fl.WithOrientation(strings.ToLower(d.Orientation)))
	}
	if d.Margin > 0 {
		opts = append(opts, fl.WithMargin(d.Margin))
	}
	return fl.NewGeometry(opts...)
}

// ThemeValue returns the theme the document asks for.
func (d *Document) ThemeValue() (fl.Theme, error) {
	fid, err := fl.ParseFidelity(strings.ToLower(d.Theme))
	if err != nil {
		return fl.Theme{}, err
	}
	th := fl.BasicTheme()
	if fid == fl.FidelityStyled {
		th = fl.StyledTheme()
	}
	if d.Accent != "" {
		c, err := fl.ParseHex(d.Accent)
		if err != nil {
			return fl.Theme{}, fmt.Errorf("doctpl: accent: %w", err)
		}
		th.Accent = c
	}
	return th, nil
}

// Template converts the description into a renderable template. Text is
// stripped of markup.
func (d *Document) Template() (*template.Template, error) {
	tpl := &template.Template{
		Name: strings.TrimSpace(d.Name),
		Header: template.Header{
			Title:     plain(d.Header.Title),
			Logo:      strings.TrimSpace(d.Header.Logo),
			LogoScale: d.Header.LogoScale,
		},
		Footer: template.Footer{Text: plain(d.Footer.Text)},
	}
	if r := d.Footer.Reference; r != nil {
		tpl.Footer.Reference = &template.Reference{
			Kind:    fl.BarcodeKind(strings.ToLower(r.Kind)),
			Payload: r.Payload,
		}
	}
	for i, s := range d.Sections {
		sec, err := s.section()
		if err != nil {
			return nil, fmt.Errorf("doctpl: section %d: %w", i+1, err)
		}
		tpl.Sections = append(tpl.Sections, sec)
	}
	for _, v := range d.Variants {
		tv := template.Variant{Name: strings.TrimSpace(v.Name), Label: plain(v.Label)}
		if v.Accent != "" {
			c, err := fl.ParseHex(v.Accent)
			if err != nil {
				return nil, fmt.Errorf("doctpl: variant %q accent: %w", v.Name, err)
			}
			tv.Accent = &c
		}
		tpl.Variants = append(tpl.Variants, tv)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s Section) section() (section.Section, error) {
	sec := section.Section{Title: plain(s.Title)}
	if s.Background != "" {
		c, err := fl.ParseHex(s.Background)
		if err != nil {
			return sec, err
		}
		sec.Background = &c
	}
	for _, f := range s.Fields {
		kind, err := fl.ParseFieldKind(strings.ToLower(f.Kind))
		if err != nil {
			return sec, err
		}
		if f.Lines < 0 || f.MaxLen < 0 || f.Width < 0 || f.LabelWidth < 0 || f.FontSize < 0 {
			return sec, fl.NewLayoutError("Parse", sec.Title, f.Name, fmt.Errorf("negative field option: %w", fl.ErrInvalidParam))
		}
		sec.Fields = append(sec.Fields, section.FieldSpec{
			Name:       strings.TrimSpace(f.Name),
			Label:      plain(f.Label),
			Kind:       kind,
			Inline:     f.Inline,
			LabelWidth: f.LabelWidth,
			Width:      f.Width,
			GuideLines: f.Lines,
			Value:      f.Value,
			MaxLen:     f.MaxLen,
			ReadOnly:   f.ReadOnly,
			Required:   f.Required,
			FontSize:   f.FontSize,
		})
	}
	return sec, nil
}

// Engine creates a template engine with the document's geometry and theme.
// opts are applied after them and may override either.
func (d *Document) Engine(opts ...template.Option) (*template.Engine, error) {
	th, err := d.ThemeValue()
	if err != nil {
		return nil, err
	}
	all := append([]template.Option{
		template.WithGeometry(d.Geometry()),
		template.WithTheme(th),
	}, opts...)
	return template.New(all...)
}
