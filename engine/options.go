package engine

import (
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/spektr-org/gccdash/roster"
	"github.com/spektr-org/gccdash/schema"
)

// ============================================================================
// ENGINE OPTIONS: Functional options for New() and the pure functions
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Axes       *schema.AxisTable
	Language   language.Tag      // collation of pivot bucket keys
	DateFormat roster.DateFormat // epoch-ms "Date" fields in the details view
	Log        logrus.FieldLogger
}

// WithAxes sets the axis table used to resolve grouping and filter names.
func WithAxes(axes *schema.AxisTable) Option {
	return func(c *config) {
		if axes != nil {
			c.Axes = axes
		}
	}
}

// WithLanguage sets the collation language for bucket ordering.
func WithLanguage(tag language.Tag) Option {
	return func(c *config) {
		c.Language = tag
	}
}

// WithDateFormat sets how heuristic date values are displayed.
func WithDateFormat(df roster.DateFormat) Option {
	return func(c *config) {
		c.DateFormat = df
	}
}

// WithLogger sets the logger for debug tracing of operations.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		if log != nil {
			c.Log = log
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	cfg := &config{
		Axes:       schema.DefaultAxes(),
		Language:   language.English,
		DateFormat: roster.DefaultDateFormat(),
		Log:        discard,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
