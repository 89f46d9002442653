package formlayout

import (
	"fmt"
	"math"
)

// Cursor tracks the vertical write position on a page. Y only ever moves
// down; a new page is the one way to move it back up.
type Cursor struct {
	y          float64
	bottom     float64
	lineHeight float64
	page       int
}

// NewCursor creates a cursor at y that may not descend below bottom.
func NewCursor(y, bottom, lineHeight float64) *Cursor {
	return &Cursor{y: y, bottom: bottom, lineHeight: lineHeight, page: 1}
}

// NewPageCursor creates a cursor for g starting at the given top Y.
func NewPageCursor(g Geometry, top float64) *Cursor {
	return NewCursor(top, g.BottomMargin, g.LineHeight)
}

// Peek returns the current Y without moving.
func (c *Cursor) Peek() float64 { return c.y }

// Bottom returns the lowest Y content may reach.
func (c *Cursor) Bottom() float64 { return c.bottom }

// LineHeight returns the height of one single-line row.
func (c *Cursor) LineHeight() float64 { return c.lineHeight }

// Page returns the current page number (1-based).
func (c *Cursor) Page() int { return c.page }

// Remaining returns the vertical space left above the bottom margin.
func (c *Cursor) Remaining() float64 { return c.y - c.bottom }

// Fits reports whether delta more points can be consumed on this page.
func (c *Cursor) Fits(delta float64) bool {
	return delta >= 0 && c.y-delta >= c.bottom
}

// Advance moves the cursor down by delta and returns the new Y. If the move
// would cross the bottom margin the cursor is left untouched and
// ErrLayoutOverflow is returned; callers decide whether to paginate.
func (c *Cursor) Advance(delta float64) (float64, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return c.y, &LayoutError{Op: "Advance", Err: fmt.Errorf("non-finite delta %v: %w", delta, ErrInvalidParam)}
	}
	if delta < 0 {
		return c.y, &LayoutError{Op: "Advance", Err: fmt.Errorf("negative delta %.2f: %w", delta, ErrInvalidParam)}
	}
	if c.y-delta < c.bottom {
		return c.y, &LayoutError{
			Op:  "Advance",
			Err: fmt.Errorf("need %.2fpt, %.2fpt left: %w", delta, c.Remaining(), ErrLayoutOverflow),
		}
	}
	c.y -= delta
	return c.y, nil
}

// Lines advances by n line heights.
func (c *Cursor) Lines(n float64) (float64, error) {
	return c.Advance(n * c.lineHeight)
}

// Gap consumes decorative spacing. Spacing is not content, so it stops at the
// bottom margin instead of failing.
func (c *Cursor) Gap(delta float64) float64 {
	if !(delta > 0) {
		return c.y
	}
	if c.y-delta < c.bottom {
		c.y = c.bottom
		return c.y
	}
	c.y -= delta
	return c.y
}

// NextPage moves the cursor to top on the following page. The single-page
// templates never call it; it is the hook for multi-page flow.
func (c *Cursor) NextPage(top float64) {
	c.page++
	c.y = top
}
