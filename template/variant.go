package template

import (
	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/draw"
	"github.com/lvillar/formlayout/record"
)

const badgeWidth = draw.BadgeWidth

// Badge describes the overlay a variant stamped onto a page.
type Badge struct {
	Variant   string
	Text      string
	Rect      fl.Rect
	Fill      fl.Color
	TextColor fl.Color
	Truncated bool // Text is Label shortened to fit the badge
}

// ApplyVariant draws the badge of v onto c, which must already hold base.
// The badge's top-left corner sits at (pageWidth - margin - badgeWidth,
// pageHeight - headerOffset). Section layout is not touched.
func (e *Engine) ApplyVariant(base *BaseState, v Variant, c fl.Canvas) (Badge, error) {
	if base == nil {
		return Badge{}, fl.NewLayoutError("ApplyVariant", "", "", fl.ErrInvalidParam)
	}
	if err := v.validate(); err != nil {
		return Badge{}, err
	}
	fill := e.theme.Accent
	if v.Accent != nil {
		fill = *v.Accent
	}
	font := e.theme.Italic.WithSize(badgeFontSize)
	text := draw.FitText(c, v.Label, font, badgeWidth-2*badgePadding)
	truncated := text != v.Label
	if truncated {
		e.logger.Warn("badge label truncated", zap.String("variant", v.Name), zap.String("label", v.Label), zap.String("text", text))
	}

	if rec, ok := c.(*record.Recorder); ok {
		rec.BeginRegion(RegionBadge)
		defer rec.BeginRegion("")
	}
	r := draw.PillBadge(c, e.BadgeAnchor(), badgeWidth, 0, 0, text, font, fill, e.theme.BadgeText)
	return Badge{Variant: v.Name, Text: text, Rect: r, Fill: fill, TextColor: e.theme.BadgeText, Truncated: truncated}, nil
}
