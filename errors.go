package formlayout

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for layout and composition failures.
var (
	ErrDuplicateFieldName  = errors.New("formlayout: duplicate field name")
	ErrOverlappingGeometry = errors.New("formlayout: overlapping field geometry")
	ErrLayoutOverflow      = errors.New("formlayout: layout overflows bottom margin")
	ErrAssetResolution     = errors.New("formlayout: asset could not be resolved")
	ErrInvalidParam        = errors.New("formlayout: invalid parameter")
	ErrFinalized           = errors.New("formlayout: document already finalized")
)

// LayoutError represents an error raised while laying out a specific part of
// a document. It carries enough context to locate the defect in a template.
type LayoutError struct {
	Op      string // operation name, e.g. "Register", "Plan"
	Section string // section title, if known
	Field   string // field name, if known
	Err     error  // underlying error
}

func (e *LayoutError) Error() string {
	var where []string
	if e.Section != "" {
		where = append(where, fmt.Sprintf("section %q", e.Section))
	}
	if e.Field != "" {
		where = append(where, fmt.Sprintf("field %q", e.Field))
	}
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if len(where) == 0 {
		return fmt.Sprintf("formlayout.%s: %s", e.Op, msg)
	}
	return fmt.Sprintf("formlayout.%s (%s): %s", e.Op, strings.Join(where, ", "), msg)
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

// NewLayoutError creates a LayoutError wrapping err with operation context.
// If err is already a LayoutError, missing context is filled in and the
// original is returned.
func NewLayoutError(op, section, fieldName string, err error) *LayoutError {
	var le *LayoutError
	if errors.As(err, &le) {
		if le.Section == "" {
			le.Section = section
		}
		if le.Field == "" {
			le.Field = fieldName
		}
		return le
	}
	return &LayoutError{Op: op, Section: section, Field: fieldName, Err: err}
}
