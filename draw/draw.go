// Package draw provides the primitive renderers used to compose forms.
//
// Every function is stateless: it takes the Canvas, explicit geometry and an
// explicit style, emits drawing calls and returns. None of them read or move a
// layout cursor; all positioning math belongs to the caller.
package draw

import (
	fl "github.com/lvillar/formlayout"
)

// UnderlineGap is the distance of a label rule below the text baseline, so the
// rule sits just under the text instead of striking through it.
const UnderlineGap = 2.0

// Default pill badge dimensions.
const (
	BadgeWidth  = 150.0
	BadgeHeight = 24.0
	BadgeRadius = 12.0
)

// capHeight approximates the height of capital letters relative to the font
// size for the core fonts; used to centre text vertically.
const capHeight = 0.7

// RoundedBox draws a rectangle with rounded corners. A nil fill or stroke
// skips that part of the shape.
func RoundedBox(c fl.Canvas, r fl.Rect, radius float64, fill, stroke *fl.Color, strokeWidth float64) {
	if r.Empty() || (fill == nil && stroke == nil) {
		return
	}
	c.Rect(r, radius, fl.Paint{Fill: fill, Stroke: stroke, StrokeWidth: strokeWidth})
}

// RuledLine draws a straight line.
func RuledLine(c fl.Canvas, from, to fl.Point, color fl.Color, width float64) {
	if width <= 0 {
		return
	}
	c.Line(from, to, fl.Stroke{Color: color, Width: width})
}

// LabeledUnderline draws label at at and a horizontal rule from x0 to x1,
// lowered by rule.Gap below the label's baseline. It returns the rule's Y.
func LabeledUnderline(c fl.Canvas, label string, at fl.Point, x0, x1 float64, style fl.TextStyle, rule fl.Underline) float64 {
	if label != "" {
		c.Text(at, label, style)
	}
	gap := rule.Gap
	if gap <= 0 {
		gap = UnderlineGap
	}
	y := at.Y - gap
	if x1 > x0 {
		RuledLine(c, fl.Pt(x0, y), fl.Pt(x1, y), rule.Color, rule.Width)
	}
	return y
}

// GuideLines draws count decorative rules from x0 to x1, the first one gap
// below firstBaseline and each following one pitch lower. Guide lines are
// purely visual; they are never individual widgets.
func GuideLines(c fl.Canvas, x0, x1, firstBaseline, pitch float64, count int, rule fl.Underline) {
	gap := rule.Gap
	if gap <= 0 {
		gap = UnderlineGap
	}
	for i := 0; i < count; i++ {
		y := firstBaseline - float64(i)*pitch - gap
		RuledLine(c, fl.Pt(x0, y), fl.Pt(x1, y), rule.Color, rule.Width)
	}
}

// PillBadge draws a rounded rectangle whose top-left corner is at topLeft and
// centres text inside it. Zero width, height or radius fall back to the
// Badge* defaults. It returns the badge rectangle.
func PillBadge(c fl.Canvas, topLeft fl.Point, width, height, radius float64, text string, font fl.Font, fill, textColor fl.Color) fl.Rect {
	if width <= 0 {
		width = BadgeWidth
	}
	if height <= 0 {
		height = BadgeHeight
	}
	if radius <= 0 {
		radius = BadgeRadius
	}
	if radius > height/2 {
		radius = height / 2
	}
	r := fl.Rect{X: topLeft.X, Y: topLeft.Y - height, W: width, H: height}
	c.Rect(r, radius, fl.Filled(fill))
	if text != "" {
		baseline := r.Y + height/2 - font.Size*capHeight/2
		c.Text(fl.Pt(r.X+width/2, baseline), text, fl.TextStyle{Font: font, Color: textColor, Align: fl.AlignCenter})
	}
	return r
}

// Band fills a full-width rectangle, e.g. a header strip.
func Band(c fl.Canvas, r fl.Rect, color fl.Color) {
	if r.Empty() {
		return
	}
	c.Rect(r, 0, fl.Filled(color))
}

// FitText shortens text with an ellipsis until it fits into maxWidth.
func FitText(c fl.Canvas, text string, font fl.Font, maxWidth float64) string {
	if maxWidth <= 0 || c.TextWidth(text, font) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if c.TextWidth(candidate, font) <= maxWidth {
			return candidate
		}
	}
	return ""
}
