package template

import (
	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/section"
)

// Vertical positions of the page chrome, in points from the page top unless
// noted otherwise.
const (
	headerBand    = 70  // height of the styled header band
	titleDrop     = 45  // title baseline
	logoDrop      = 60  // logo bottom edge
	logoMaxHeight = 44  // logos are scaled down to fit the header
	contentDrop   = 100 // first section title baseline
	footerRuleY   = 50  // from the page bottom
	footerTextY   = 40  // from the page bottom
	referenceSize = 32  // QR / PDF417 footprint in the footer
	defaultScale  = 0.2
	badgeFontSize = 12.0
	badgePadding  = 8.0
)

// Engine renders templates for one page geometry and theme.
type Engine struct {
	geometry fl.Geometry
	theme    fl.Theme
	metrics  *section.Metrics
	assets   AssetSource
	logger   *zap.Logger
	creator  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithGeometry sets the page geometry. Default: fl.NewGeometry().
func WithGeometry(g fl.Geometry) Option {
	return func(e *Engine) { e.geometry = g }
}

// WithTheme sets the theme. Default: fl.BasicTheme().
func WithTheme(th fl.Theme) Option {
	return func(e *Engine) { e.theme = th.Clone() }
}

// WithMetrics overrides the section metrics derived from geometry and theme.
func WithMetrics(m section.Metrics) Option {
	return func(e *Engine) { e.metrics = &m }
}

// WithAssets sets the source used to resolve the header logo.
func WithAssets(src AssetSource) Option {
	return func(e *Engine) { e.assets = src }
}

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCreator sets the creator recorded in document metadata.
func WithCreator(name string) Option {
	return func(e *Engine) { e.creator = name }
}

// New creates an engine and validates its geometry and theme.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		geometry: fl.NewGeometry(),
		theme:    fl.BasicTheme(),
		logger:   zap.NewNop(),
		creator:  "formlayout",
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.geometry.Validate(); err != nil {
		return nil, err
	}
	if err := e.theme.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Geometry returns the engine's page geometry.
func (e *Engine) Geometry() fl.Geometry { return e.geometry }

// Theme returns a copy of the engine's theme.
func (e *Engine) Theme() fl.Theme { return e.theme.Clone() }

func (e *Engine) sectionMetrics() section.Metrics {
	if e.metrics != nil {
		return *e.metrics
	}
	return section.DefaultMetrics(e.geometry, e.theme.Fidelity)
}

// ContentTop returns the baseline of the first section title.
func (e *Engine) ContentTop() float64 {
	return e.geometry.Height - contentDrop
}

// BadgeAnchor returns the top-left corner of every variant badge.
func (e *Engine) BadgeAnchor() fl.Point {
	g := e.geometry
	return fl.Pt(g.Width-g.Margin-badgeWidth, g.Height-g.HeaderOffset)
}
