package lutsynth

import (
	"context"
	"fmt"

	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/oracle"
	"github.com/kovidgoyal/lutsynth/types"
)

// GenerateDeviceLink samples the device to device transform o on a grid laid
// out the way format stores it and returns the table in canonical order.
// eeColor tables always have 65 nodes per axis.
func GenerateDeviceLink(ctx context.Context, o oracle.Oracle, format types.Format, opts ...Option) (*lut.Table, error) {
	cfg := default_config()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger()
	order, err := grid.OrderFor(format)
	if err != nil {
		return nil, err
	}
	n, err := grid.Resolution(cfg.resolution, DEFAULT_RESOLUTION, false)
	if err != nil {
		return nil, err
	}
	shell := format == types.EECOLOR
	if shell && n != grid.EECOLOR_RESOLUTION {
		log.Info("eeColor tables have a fixed size", "requested", n, "used", grid.EECOLOR_RESOLUTION)
		n = grid.EECOLOR_RESOLUTION
	}
	g, err := grid.New(n, order, grid.InteriorRemap(shell), grid.Encoding(cfg.input_encoding))
	if err != nil {
		return nil, err
	}
	t, err := lut.New(n, types.DeviceRGB, types.DeviceRGB)
	if err != nil {
		return nil, err
	}
	t.Shell, t.Title = shell, cfg.title
	t.Input, t.Output = lut.IdentityCurves(3), lut.IdentityCurves(3)
	req := oracle.Request{Intent: cfg.intent, Direction: types.Forward, PCS: types.DeviceRGB, Clip: grid.IfElse(cfg.perceptual_clip, oracle.ClipPerceptual, oracle.ClipNearest)}
	filled, clipped := 0, 0
	for i := range n {
		if err = check_cancel(ctx); err != nil {
			return nil, err
		}
		start, end := g.Plane(i)
		res, err := oracle.LookupAll(ctx, o, req, g.Coords[start:end], cfg.chunk_size)
		if err != nil {
			return nil, oracle_error(ctx, err)
		}
		for p, r := range res {
			if r.Coord.Len() != 3 {
				return nil, fmt.Errorf("%w: device link returned %s for %s", oracle.ErrContract, r.Coord, g.Coords[start+p])
			}
			t.CLUT[g.Canonical(start+p)] = r.Coord
			filled++
			if r.Clipped {
				clipped++
			}
		}
	}
	if filled != t.Len() {
		return nil, fmt.Errorf("%w: sampled %d of %d nodes", lut.ErrCount, filled, t.Len())
	}
	if err = t.Validate(); err != nil {
		return nil, err
	}
	log.Info("device link sampled", "format", format.String(), "size", n, "order", order.String(), "clipped", clipped)
	return t, nil
}
