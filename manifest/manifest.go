// Package manifest lists the fillable fields of a rendered form so a filling
// backend can address the widgets by name.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	fl "github.com/lvillar/formlayout"
)

// Entry describes one widget.
type Entry struct {
	Name     string  `json:"name"`
	Label    string  `json:"label,omitempty"`
	Kind     string  `json:"kind"`
	Section  string  `json:"section,omitempty"`
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	MaxLen   int     `json:"maxLen,omitempty"`
	Required bool    `json:"required,omitempty"`
	ReadOnly bool    `json:"readOnly,omitempty"`
}

// Manifest is the field inventory of one variant.
type Manifest struct {
	Template   string  `json:"template"`
	Variant    string  `json:"variant,omitempty"`
	DocumentID string  `json:"documentId,omitempty"`
	PageWidth  float64 `json:"pageWidth"`
	PageHeight float64 `json:"pageHeight"`
	Fields     []Entry `json:"fields"`
}

// New builds a manifest from exported fields, keeping their order.
func New(template, variant string, g fl.Geometry, fields []fl.Field) *Manifest {
	m := &Manifest{
		Template:   template,
		Variant:    variant,
		PageWidth:  g.Width,
		PageHeight: g.Height,
		Fields:     make([]Entry, 0, len(fields)),
	}
	for _, f := range fields {
		page := f.Page
		if page == 0 {
			page = 1
		}
		m.Fields = append(m.Fields, Entry{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     f.Kind.String(),
			Section:  f.Section,
			Page:     page,
			X:        f.Rect.X,
			Y:        f.Rect.Y,
			Width:    f.Rect.W,
			Height:   f.Rect.H,
			MaxLen:   f.MaxLen,
			Required: f.Required,
			ReadOnly: f.ReadOnly,
		})
	}
	return m
}

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatOf maps a file name or a bare format name to a Format.
func FormatOf(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		ext = strings.ToLower(name)
	}
	switch Format(ext) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("manifest: unknown format %q: %w", name, fl.ErrInvalidParam)
}

// Write encodes m in the given format.
func (m *Manifest) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return m.WriteJSON(w)
	case FormatXLSX:
		return m.WriteXLSX(w)
	}
	return fmt.Errorf("manifest: unknown format %q: %w", f, fl.ErrInvalidParam)
}

// WriteJSON writes m as indented JSON.
func (m *Manifest) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}

// ReadJSON decodes a manifest written by WriteJSON.
func ReadJSON(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}

// Sheet is the name of the worksheet written by WriteXLSX.
const Sheet = "Fields"

var columns = []struct {
	title string
	width float64
}{
	{"Name", 24}, {"Label", 30}, {"Kind", 12}, {"Section", 24}, {"Page", 6},
	{"X", 9}, {"Y", 9}, {"Width", 9}, {"Height", 9},
	{"MaxLen", 8}, {"Required", 9}, {"ReadOnly", 9},
}

// WriteXLSX writes m as a spreadsheet with one row per field below a frozen
// header row. Template and variant go into the document properties.
func (m *Manifest) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       m.Template,
		Subject:     m.Variant,
		Identifier:  m.DocumentID,
		Description: fmt.Sprintf("%d fields", len(m.Fields)),
	}); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.title
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(Sheet, col, col, c.width); err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
	}
	if err := f.SetSheetRow(Sheet, "A1", &header); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F2"}},
		Border: []excelize.Border{{Type: "bottom", Color: "#7F7F7F", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(Sheet, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	for i, e := range m.Fields {
		row := []any{
			e.Name, e.Label, e.Kind, e.Section, e.Page,
			e.X, e.Y, e.Width, e.Height,
			e.MaxLen, e.Required, e.ReadOnly,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			return fmt.Errorf("manifest: row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(Sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if len(m.Fields) > 0 {
		ref := fmt.Sprintf("A1:%s%d", last, len(m.Fields)+1)
		if err := f.AutoFilter(Sheet, ref, nil); err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}
