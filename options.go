package formlayout

// Page size names accepted by WithPageSize.
const (
	PageSizeA4     = "A4"
	PageSizeA5     = "A5"
	PageSizeLetter = "Letter"
	PageSizeLegal  = "Legal"
)

// Page orientations accepted by WithOrientation.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

var pageSizes = map[string][2]float64{
	PageSizeA4:     {595.28, 841.89},
	PageSizeA5:     {419.53, 595.28},
	PageSizeLetter: {612, 792},
	PageSizeLegal:  {612, 1008},
}

// Geometry is the fixed page geometry shared by every document of a family.
// All values are in points.
type Geometry struct {
	Width        float64 // page width
	Height       float64 // page height
	Margin       float64 // left, right and top margin
	BottomMargin float64 // lowest Y content may reach; the footer lives below it
	LineHeight   float64 // height of one single-line row
	HeaderOffset float64 // distance from the page top to the header baseline
}

// ContentWidth returns the width between the left and right margins.
func (g Geometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

// Validate checks that the geometry leaves room for content.
func (g Geometry) Validate() error {
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return NewLayoutError("Geometry", "", "", ErrInvalidParam)
	case g.Margin < 0 || 2*g.Margin >= g.Width:
		return NewLayoutError("Geometry", "", "", ErrInvalidParam)
	case g.BottomMargin < 0 || g.BottomMargin >= g.Height-g.HeaderOffset:
		return NewLayoutError("Geometry", "", "", ErrInvalidParam)
	case g.LineHeight <= 0:
		return NewLayoutError("Geometry", "", "", ErrInvalidParam)
	}
	return nil
}

// Option is a functional option for configuring page geometry via NewGeometry.
type Option func(*geometryConfig)

type geometryConfig struct {
	size         string
	orientation  string
	custom       *[2]float64
	margin       float64
	bottomMargin float64
	lineHeight   float64
	headerOffset float64
}

// WithPageSize sets the page size by name.
// Use PageSizeA4, PageSizeA5, PageSizeLetter or PageSizeLegal.
func WithPageSize(size string) Option {
	return func(c *geometryConfig) {
		c.size = size
	}
}

// WithPageSizeCustom sets a custom page size in points.
func WithPageSizeCustom(width, height float64) Option {
	return func(c *geometryConfig) {
		c.custom = &[2]float64{width, height}
	}
}

// WithOrientation sets the page orientation.
// Use OrientationPortrait or OrientationLandscape.
func WithOrientation(orientation string) Option {
	return func(c *geometryConfig) {
		c.orientation = orientation
	}
}

// WithMargin sets the left, right and top margin.
func WithMargin(margin float64) Option {
	return func(c *geometryConfig) {
		c.margin = margin
	}
}

// WithBottomMargin sets the lowest Y coordinate content may occupy.
func WithBottomMargin(bottom float64) Option {
	return func(c *geometryConfig) {
		c.bottomMargin = bottom
	}
}

// WithLineHeight sets the height of a single-line row.
func WithLineHeight(h float64) Option {
	return func(c *geometryConfig) {
		c.lineHeight = h
	}
}

// WithHeaderOffset sets the distance from the page top to the header baseline.
func WithHeaderOffset(offset float64) Option {
	return func(c *geometryConfig) {
		c.headerOffset = offset
	}
}

// NewGeometry creates page geometry using functional options.
// If no options are specified, defaults to portrait A4 with a 40pt margin,
// 28pt rows and room for the footer below 60pt.
//
// Example:
//
//	g := formlayout.NewGeometry(
//	    formlayout.WithPageSize(formlayout.PageSizeLetter),
//	    formlayout.WithMargin(36),
//	)
func NewGeometry(opts ...Option) Geometry {
	cfg := &geometryConfig{
		size:         PageSizeA4,
		orientation:  OrientationPortrait,
		margin:       40,
		bottomMargin: 60,
		lineHeight:   28,
		headerOffset: 40,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var w, h float64
	if cfg.custom != nil {
		w, h = cfg.custom[0], cfg.custom[1]
	} else {
		dims, ok := pageSizes[cfg.size]
		if !ok {
			dims = pageSizes[PageSizeA4]
		}
		w, h = dims[0], dims[1]
	}
	if cfg.orientation == OrientationLandscape && w < h {
		w, h = h, w
	}

	return Geometry{
		Width:        w,
		Height:       h,
		Margin:       cfg.margin,
		BottomMargin: cfg.bottomMargin,
		LineHeight:   cfg.lineHeight,
		HeaderOffset: cfg.headerOffset,
	}
}

// PageSizeNames returns the names accepted by WithPageSize.
func PageSizeNames() []string {
	return []string{PageSizeA4, PageSizeA5, PageSizeLetter, PageSizeLegal}
}
