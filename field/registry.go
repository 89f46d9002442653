// Package field implements the per-document registry of fillable widgets.
//
// A Registry guarantees that field names are unique and that widget
// rectangles never overlap. Failed registrations leave the registry exactly
// as it was, so a rejected template never produces a partial field list.
package field

import (
	"fmt"

	fl "github.com/lvillar/formlayout"
)

// Registry maps field names to widget geometry for one document.
// It is not safe for concurrent use; every document owns its own registry.
type Registry struct {
	fields []fl.Field
	byName map[string]int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds f to the registry. It fails with ErrDuplicateFieldName if the
// name is taken and with ErrOverlappingGeometry if f.Rect intersects a
// registered rectangle on the same page.
func (r *Registry) Register(f fl.Field) error {
	if err := r.check(f, nil); err != nil {
		return err
	}
	r.add(f)
	return nil
}

// RegisterAll adds fs in order, or none of them if any would be rejected.
// Conflicts within fs are detected as well as conflicts with the registry.
func (r *Registry) RegisterAll(fs []fl.Field) error {
	for i, f := range fs {
		if err := r.check(f, fs[:i]); err != nil {
			return err
		}
	}
	for _, f := range fs {
		r.add(f)
	}
	return nil
}

func (r *Registry) check(f fl.Field, pending []fl.Field) error {
	if f.Name == "" {
		return fl.NewLayoutError("Register", f.Section, "", fmt.Errorf("empty field name: %w", fl.ErrInvalidParam))
	}
	if f.Rect.Empty() {
		return fl.NewLayoutError("Register", f.Section, f.Name, fmt.Errorf("empty rectangle %s: %w", f.Rect, fl.ErrInvalidParam))
	}
	if _, ok := r.byName[f.Name]; ok {
		return fl.NewLayoutError("Register", f.Section, f.Name, fl.ErrDuplicateFieldName)
	}
	for _, p := range pending {
		if p.Name == f.Name {
			return fl.NewLayoutError("Register", f.Section, f.Name, fl.ErrDuplicateFieldName)
		}
	}
	for _, set := range [][]fl.Field{r.fields, pending} {
		for _, other := range set {
			if pageOf(other) == pageOf(f) && other.Rect.Intersects(f.Rect) {
				return fl.NewLayoutError("Register", f.Section, f.Name,
					fmt.Errorf("%s intersects %q %s: %w", f.Rect, other.Name, other.Rect, fl.ErrOverlappingGeometry))
			}
		}
	}
	return nil
}

func (r *Registry) add(f fl.Field) {
	if f.Page == 0 {
		f.Page = 1
	}
	r.byName[f.Name] = len(r.fields)
	r.fields = append(r.fields, f)
}

func pageOf(f fl.Field) int {
	if f.Page == 0 {
		return 1
	}
	return f.Page
}

// Export returns a copy of the registered fields in registration order.
func (r *Registry) Export() []fl.Field {
	out := make([]fl.Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Lookup returns the field registered under name.
func (r *Registry) Lookup(name string) (fl.Field, bool) {
	i, ok := r.byName[name]
	if !ok {
		return fl.Field{}, false
	}
	return r.fields[i], true
}

// Len returns the number of registered fields.
func (r *Registry) Len() int { return len(r.fields) }

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}
