package lutsynth

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kovidgoyal/lutsynth/blend"
	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

const DEFAULT_RESOLUTION = 33
const DEFAULT_CURVE_ENTRIES = 4096

// Source selects which profile transform an inverse table is derived from.
type Source int

const (
	// SourceForward inverts the device to connection space transform
	SourceForward Source = iota
	// SourceBackward re-samples an existing connection space to device
	// transform, which is itself interpolated so fine grids gain nothing
	SourceBackward
)

var sourceNames = map[Source]string{SourceForward: "forward", SourceBackward: "backward"}

func (s Source) String() string { return sourceNames[s] }

func ParseSource(s string) (Source, error) {
	for k, v := range sourceNames {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	return SourceForward, fmt.Errorf("unknown table source: %#v", s)
}

type config struct {
	resolution      int
	source          Source
	intent          types.Intent
	curve_entries   int
	bpc             bool
	bpc_mode        blend.Mode
	bpc_power       float64
	bpc_scale       bool
	perceptual_clip bool
	boundary        *blend.Boundary
	smoothing       bool
	chunk_size      int
	input_encoding  grid.InputEncoding
	title           string
	log             *slog.Logger
}

func default_config() config {
	return config{
		intent: types.RelativeColorimetric, curve_entries: DEFAULT_CURVE_ENTRIES,
		bpc_power: blend.DEFAULT_POWER, perceptual_clip: true, chunk_size: grid.DEFAULT_CHUNK_SIZE,
	}
}

func (c *config) logger() *slog.Logger {
	if c.log == nil {
		return slog.Default()
	}
	return c.log
}

// Option sets an optional parameter of GenerateInverse and GenerateDeviceLink.
type Option func(*config)

// WithResolution sets the number of grid nodes per axis. Defaults to 33, or
// the size of the existing table when re-sampling one.
func WithResolution(n int) Option {
	return func(c *config) {
		c.resolution = n
	}
}

func WithSource(s Source) Option {
	return func(c *config) {
		c.source = s
	}
}

// WithIntent sets the rendering intent of oracle lookups. Defaults to
// relative colorimetric.
func WithIntent(intent types.Intent) Option {
	return func(c *config) {
		c.intent = intent
	}
}

// WithCurveEntries sets the number of neutral axis samples used to build the
// input curves of inverse tables. Defaults to 4096.
func WithCurveEntries(n int) Option {
	return func(c *config) {
		c.curve_entries = n
	}
}

// WithBlackPointCompensation blends the darkest colors towards the hue of the
// device black. When scale is true connection space black is additionally
// mapped onto the device black before blending.
func WithBlackPointCompensation(enabled, scale bool) Option {
	return func(c *config) {
		c.bpc, c.bpc_scale = enabled, scale
	}
}

func WithBlendMode(mode blend.Mode) Option {
	return func(c *config) {
		c.bpc_mode = mode
	}
}

func WithBlendPower(power float64) Option {
	return func(c *config) {
		c.bpc_power = power
	}
}

// WithPerceptualClip controls the second, perceptually clipped, lookup pass
// near the gamut boundary. Enabled by default.
func WithPerceptualClip(enabled bool) Option {
	return func(c *config) {
		c.perceptual_clip = enabled
	}
}

// WithBoundary overrides the grid indices between which the two clipping
// passes are cross-faded. Defaults to 1/3 and 3/4 of the resolution.
func WithBoundary(inner, outer int) Option {
	return func(c *config) {
		c.boundary = &blend.Boundary{Inner: inner, Outer: outer}
	}
}

func WithSmoothing(enabled bool) Option {
	return func(c *config) {
		c.smoothing = enabled
	}
}

// WithChunkSize sets the maximum number of coordinates per oracle call.
func WithChunkSize(n int) Option {
	return func(c *config) {
		c.chunk_size = n
	}
}

// WithInputEncoding sets the signal range eeColor device links are sampled
// for. Pass the same encoding to encode.InputEncoding when saving.
func WithInputEncoding(e grid.InputEncoding) Option {
	return func(c *config) {
		c.input_encoding = e
	}
}

func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}
