package lutsynth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kovidgoyal/lutsynth/blend"
	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/curve"
	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/oracle"
	"github.com/kovidgoyal/lutsynth/pcs"
	"github.com/kovidgoyal/lutsynth/smooth"
	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

type inverter struct {
	cfg       config
	log       *slog.Logger
	o         oracle.Oracle
	space     types.ColorSpace
	channels  int
	size      int
	direction types.Direction
	boundary  blend.Boundary
	// nil for Lab connection spaces and for devices whose primaries are
	// not meaningful
	working *pcs.WorkingMatrix
	// grid position to working space value per input channel, nil means
	// the identity
	to_working [3]*curve.Interp
	input      [][]float64
}

// GenerateInverse synthesizes a connection space to device table for the
// profile p by looking up every node of a connection space grid through o in
// the device direction. The context is checked once per grid plane, when it is
// done an error wrapping ErrCancelled is returned and no table.
func GenerateInverse(ctx context.Context, o oracle.Oracle, p Profile, opts ...Option) (*lut.Table, error) {
	cfg := default_config()
	for _, opt := range opts {
		opt(&cfg)
	}
	inv := inverter{cfg: cfg, log: cfg.logger(), o: o, space: p.ConnectionSpace(), channels: p.DeviceChannels()}
	if err := inv.configure(p); err != nil {
		return nil, err
	}
	if err := check_cancel(ctx); err != nil {
		return nil, err
	}
	if err := inv.build_curves(ctx); err != nil {
		return nil, err
	}
	nodes, err := inv.nodes(p)
	if err != nil {
		return nil, err
	}
	clut, err := inv.lookup(ctx, nodes)
	if err != nil {
		return nil, err
	}
	return inv.table(ctx, clut)
}

// configure validates everything that can be validated before the first
// oracle call.
func (inv *inverter) configure(p Profile) (err error) {
	cfg := &inv.cfg
	if !inv.space.IsConnectionSpace() {
		return fmt.Errorf("%w: %s", ErrUnsupportedSpace, inv.space)
	}
	if inv.channels != 3 && inv.channels != 4 {
		return fmt.Errorf("%w: %d", ErrChannels, inv.channels)
	}
	if inv.size, err = grid.Resolution(cfg.resolution, DEFAULT_RESOLUTION, cfg.source == SourceBackward); err != nil {
		return err
	}
	if cfg.resolution > 0 && inv.size != cfg.resolution {
		inv.log.Info("grid resolution reduced for a re-sampled table", "requested", cfg.resolution, "used", inv.size)
	}
	if cfg.curve_entries < 2 {
		return fmt.Errorf("invalid number of curve entries: %d", cfg.curve_entries)
	}
	inv.boundary = blend.DefaultBoundary(inv.size)
	if cfg.boundary != nil {
		inv.boundary = *cfg.boundary
	}
	if err = inv.boundary.Validate(inv.size); err != nil {
		return err
	}
	inv.direction = grid.IfElse(cfg.source == SourceBackward, types.Backward, types.InverseForward)
	if inv.channels != 3 {
		return nil
	}
	r, g, b := p.Primaries()
	if err = pcs.CheckPrimaries(r, g, b); err != nil {
		return err
	}
	if inv.space == types.XYZ {
		sel, err := pcs.Select(pcs.Primaries{Red: r, Green: g, Blue: b, White: p.WhitePoint()}, inv.log)
		if err != nil {
			return err
		}
		wm, err := pcs.Build(sel.Candidate, p.WhitePoint(), inv.log)
		if err != nil {
			return err
		}
		inv.working = &wm
		inv.log.Info("working space", "selection", sel.String())
	}
	return nil
}

// xyz_to_working maps D50 relative XYZ to the working space, white goes to 1.
func (inv *inverter) xyz_to_working(xyz colorconv.Vec3) colorconv.Vec3 {
	return inv.working.Apply(xyz.Scale(1 / pcs.HEADROOM))
}

func (inv *inverter) working_to_xyz(w colorconv.Vec3) colorconv.Vec3 {
	return inv.working.Unapply(w).Scale(pcs.HEADROOM)
}

// build_curves looks up the neutral axis in the device direction and derives
// input curves that distribute grid nodes evenly in device space.
func (inv *inverter) build_curves(ctx context.Context) error {
	inv.input = lut.IdentityCurves(3)
	if inv.channels != 3 {
		return nil
	}
	count := inv.cfg.curve_entries
	coords := make([]types.Coordinate, count)
	working := make([]colorconv.Vec3, count)
	for k := range count {
		L := 100 * float64(k) / float64(count-1)
		if inv.space == types.Lab {
			coords[k] = types.LabValue(L, 0, 0)
			working[k] = colorconv.Vec3{L / 100, L / 100, L / 100}
		} else {
			xyz := colorconv.LabToXYZ_D50(L, 0, 0)
			coords[k] = types.XYZValue(xyz[0], xyz[1], xyz[2])
			working[k] = inv.xyz_to_working(xyz)
		}
	}
	req := oracle.Request{Intent: inv.cfg.intent, Direction: inv.direction, PCS: inv.space, Clip: oracle.ClipNearest}
	res, err := oracle.LookupAll(ctx, inv.o, req, coords, inv.cfg.chunk_size)
	if err != nil {
		return oracle_error(ctx, err)
	}
	// Lab only redistributes lightness, a* and b* stay linear
	curved := grid.IfElse(inv.space == types.Lab, 1, 3)
	xs, ys := make([]float64, count), make([]float64, count)
	for c := range curved {
		for k, r := range res {
			if inv.space == types.Lab {
				v := r.Coord.Triple()
				xs[k] = (v[0] + v[1] + v[2]) / 3
			} else {
				xs[k] = r.Coord.V[c]
			}
			ys[k] = working[k][c]
		}
		dx, dy := curve.Dedupe(xs, ys)
		fwd, err := curve.New(dx, dy)
		if err != nil {
			return fmt.Errorf("device to working curve of channel %d: %w", c, err)
		}
		ix, iy := curve.Dedupe(dy, dx)
		back, err := curve.New(ix, iy)
		if err != nil {
			return fmt.Errorf("working to device curve of channel %d: %w", c, err)
		}
		inv.to_working[c] = fwd
		inv.input[c] = make([]float64, count)
		for m := range count {
			inv.input[c][m] = colorconv.Clamp01(back.At(float64(m) / float64(count-1)))
		}
		inv.log.Debug("input curve", "channel", c, "points", fwd.Len(), "kind", fwd.Kind().String())
	}
	return nil
}

// nodes returns the connection space value of every grid node in canonical
// order, black point blended if requested.
func (inv *inverter) nodes(p Profile) ([]types.Coordinate, error) {
	n := inv.size
	step := 1 / float64(n-1)
	ans := make([]types.Coordinate, n*n*n)
	for idx := range ans {
		r, g, b := grid.Unflatten(n, idx)
		var w colorconv.Vec3
		for c, i := range [3]int{r, g, b} {
			w[c] = float64(i) * step
			if f := inv.to_working[c]; f != nil {
				w[c] = f.At(w[c])
			}
		}
		switch {
		case inv.space == types.Lab:
			ans[idx] = types.Coordinate{Space: types.Lab, V: [4]float64{w[0], w[1], w[2]}}
		case inv.working != nil:
			xyz := inv.working_to_xyz(w)
			ans[idx] = types.XYZValue(xyz[0], xyz[1], xyz[2])
		default:
			ans[idx] = types.XYZValue(w[0]*pcs.HEADROOM, w[1]*pcs.HEADROOM, w[2]*pcs.HEADROOM)
		}
	}
	if !inv.cfg.bpc {
		return ans, nil
	}
	bp, err := blend.NewBlackPoint(p.BlackPoint(), colorconv.D50, inv.cfg.bpc_mode, inv.cfg.bpc_power, inv.cfg.bpc_scale)
	if err != nil {
		return nil, err
	}
	inv.log.Info("black point blend", "mode", inv.cfg.bpc_mode.String(), "black", p.BlackPoint(), "scale", inv.cfg.bpc_scale)
	return ans, bp.Apply(ans)
}

// lookup runs the ordinary and perceptually clipped passes plane by plane and
// blends them.
func (inv *inverter) lookup(ctx context.Context, nodes []types.Coordinate) ([]types.Coordinate, error) {
	n := inv.size
	g, err := grid.New(n, grid.OrderBlueFastest, grid.Space(inv.space))
	if err != nil {
		return nil, err
	}
	perceptual_pass := inv.cfg.perceptual_clip
	ordinary := make(map[int]oracle.Result, len(nodes))
	var perceptual map[int]oracle.Result
	if perceptual_pass {
		perceptual = make(map[int]oracle.Result, len(nodes))
	}
	pass := func(clip oracle.ClipMode, idx []int, dest map[int]oracle.Result) error {
		if len(idx) == 0 {
			return nil
		}
		coords := make([]types.Coordinate, len(idx))
		for i, x := range idx {
			coords[i] = nodes[x]
		}
		req := oracle.Request{Intent: inv.cfg.intent, Direction: inv.direction, PCS: inv.space, Clip: clip}
		res, err := oracle.LookupAll(ctx, inv.o, req, coords, inv.cfg.chunk_size)
		if err != nil {
			return oracle_error(ctx, err)
		}
		for i, x := range idx {
			if res[i].Coord.Len() != inv.channels {
				return fmt.Errorf("%w: %s result for a %d channel device", oracle.ErrContract, res[i].Coord.Space, inv.channels)
			}
			dest[x] = res[i]
		}
		return nil
	}
	var a, b []int
	for i := range n {
		if err = check_cancel(ctx); err != nil {
			return nil, err
		}
		start, end := g.Plane(i)
		a, b = a[:0], b[:0]
		for p := start; p < end; p++ {
			x := g.Index[p]
			c := g.Canonical(p)
			if !perceptual_pass || inv.boundary.NeedsOrdinary(x[0], x[1], x[2]) {
				a = append(a, c)
			}
			if perceptual_pass && inv.boundary.NeedsPerceptual(x[0], x[1], x[2]) {
				b = append(b, c)
			}
		}
		if err = pass(oracle.ClipNearest, a, ordinary); err != nil {
			return nil, err
		}
		if err = pass(oracle.ClipPerceptual, b, perceptual); err != nil {
			return nil, err
		}
		inv.log.Debug("grid plane done", "plane", i, "ordinary", len(a), "perceptual", len(b))
	}
	ans, stats, err := blend.Blend(n, inv.boundary, ordinary, perceptual)
	if err != nil {
		return nil, err
	}
	inv.log.Info("gamut boundary blend", "boundary", inv.boundary.String(), "clipped", stats.Clipped, "blended", stats.Blended, "perceptual", stats.Perceptual)
	return ans, nil
}

func (inv *inverter) table(ctx context.Context, clut []types.Coordinate) (*lut.Table, error) {
	t, err := lut.New(inv.size, inv.space, grid.IfElse(inv.channels == 4, types.DeviceCMYK, types.DeviceRGB))
	if err != nil {
		return nil, err
	}
	if inv.channels == 3 && inv.space == types.XYZ {
		clut[0] = types.RGB(0, 0, 0)
		clut[len(clut)-1] = types.RGB(1, 1, 1)
	}
	t.CLUT, t.Input, t.Output, t.Title = clut, inv.input, lut.IdentityCurves(inv.channels), inv.cfg.title
	if inv.working != nil {
		m := inv.working.Scaled
		t.Matrix = &m
	}
	if err = t.Validate(); err != nil {
		return nil, err
	}
	if inv.cfg.smoothing {
		if inv.channels != 3 {
			inv.log.Warn("smoothing is only supported for three channel devices, skipping")
		} else {
			changed, err := smooth.Apply(t, smooth.LabIndexed(inv.space == types.Lab), smooth.WithContext(ctx))
			if err != nil {
				return nil, oracle_error(ctx, err)
			}
			inv.log.Info("smoothed", "changed", changed)
		}
	}
	return t, nil
}
