// Package formlayout is a document layout and form-generation engine.
//
// A form is described declaratively as a header, an ordered list of titled
// sections holding labeled fields, and a footer. The engine lays the form out
// top to bottom with exact point positions, registers one fillable widget per
// field, and stamps named variants (a coloured badge) on top of a shared base
// layout.
//
// The root package holds the data model shared by the subpackages:
//
//   - Geometry, Point and Rect: page geometry in points, origin bottom-left
//   - Theme, Color and Font: the immutable visual palette
//   - Cursor: the vertical write position
//   - Field: a named widget rectangle
//   - Canvas and Document: the drawing surface the engine emits to
//
// The subpackages build on it:
//
//   - draw: stateless primitive renderers
//   - field: the per-document field registry
//   - section: section planning and drawing
//   - template: form templates, variants and batch production
//   - record: an in-memory Canvas producing replayable display lists
//   - pdfwriter: a Canvas that writes PDF with AcroForm widgets
//   - form: AcroForm widget dictionaries and incremental updates
//   - asset: logo resolution from directories or HTTP
//   - doctpl: JSON, YAML and TOML form descriptions
//   - manifest: field inventories as JSON or XLSX
//   - mcp: a Model Context Protocol server exposing rendering as tools
//
// The binaries live in cmd/formlayout (CLI and HTTP server) and
// cmd/formlayout-mcp.
package formlayout
