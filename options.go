package ggblend

import (
	"image"
	"log/slog"
	"runtime"

	"github.com/gogpu/gg"
)

// Option configures a Compiler or a BlendImage call.
//
// Example:
//
//	c := ggblend.NewCompiler(
//	    ggblend.WithWorkers(4),
//	    ggblend.WithConstant(gg.RGBA{R: 1, G: 0.5, B: 0, A: 1}),
//	)
type Option func(*options)

// options holds optional configuration.
type options struct {
	logger   *slog.Logger
	workers  int
	constant gg.RGBA
	srgb     bool
	coverage *image.Alpha
}

// defaultOptions returns the default options.
func defaultOptions() options {
	return options{
		workers: runtime.GOMAXPROCS(0),
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// log returns the configured logger, falling back to the package logger.
func (o *options) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return Logger()
}

// WithLogger sets a logger used instead of the package logger set by
// SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWorkers sets the number of goroutines image blending uses.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithConstant sets the blend constant color used by image blending.
// The default is transparent black.
func WithConstant(c gg.RGBA) Option {
	return func(o *options) {
		o.constant = c
	}
}

// WithSRGB makes image blending treat 8-bit pixels as sRGB encoded and
// blend on linear values.
func WithSRGB(enabled bool) Option {
	return func(o *options) {
		o.srgb = enabled
	}
}

// WithCoverage sets a per-pixel coverage image for image blending. Pixels
// with zero coverage keep the destination. A coverage image of another size
// is scaled to the destination.
func WithCoverage(a *image.Alpha) Option {
	return func(o *options) {
		o.coverage = a
	}
}
