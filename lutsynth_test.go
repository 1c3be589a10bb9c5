package lutsynth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kovidgoyal/lutsynth/blend"
	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/encode"
	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/oracle"
	"github.com/kovidgoyal/lutsynth/pcs"
	"github.com/kovidgoyal/lutsynth/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ = fmt.Print

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func resolve(t *testing.T, d *oracle.MatrixDevice, space types.ColorSpace) ProfileInfo {
	p, err := ResolveProfile(context.Background(), d, space, types.RelativeColorimetric)
	require.NoError(t, err)
	return p
}

// evaluate runs D50 relative XYZ through an XYZ indexed table
func evaluate(tbl *lut.Table, xyz colorconv.Vec3) [3]float64 {
	return tbl.Evaluate(xyz.Scale(1/pcs.HEADROOM), lut.Trilinear)
}

func TestResolveProfile(t *testing.T) {
	d := oracle.SRGBDevice()
	p := resolve(t, d, types.XYZ)
	for i := range 3 {
		assert.InDelta(t, colorconv.D50[i], p.WhitePoint()[i], 1e-4)
		assert.InDelta(t, 0, p.BlackPoint()[i], 1e-9)
	}
	r, g, b := p.Primaries()
	require.NoError(t, pcs.CheckPrimaries(r, g, b))
	assert.Equal(t, 3, p.DeviceChannels())
	assert.Equal(t, types.XYZ, p.ConnectionSpace())
	_, err := ResolveProfile(context.Background(), d, types.DeviceRGB, types.Perceptual)
	assert.True(t, errors.Is(err, ErrUnsupportedSpace))
}

func TestGenerateInverseXYZ(t *testing.T) {
	d := oracle.SRGBDevice()
	tbl, err := GenerateInverse(context.Background(), d, resolve(t, d, types.XYZ), WithResolution(9), WithCurveEntries(1024), WithTitle("srgb"), quiet())
	require.NoError(t, err)
	require.NoError(t, tbl.Validate())
	assert.Equal(t, 9, tbl.Size)
	assert.Equal(t, "srgb", tbl.Title)
	assert.Equal(t, types.XYZ, tbl.InputSpace)
	assert.Equal(t, types.DeviceRGB, tbl.OutputSpace)
	require.NotNil(t, tbl.Matrix)
	require.Len(t, tbl.Input, 3)
	for _, c := range tbl.Input {
		require.Len(t, c, 1024)
		assert.Equal(t, 0.0, c[0])
		assert.InDelta(t, 1, c[len(c)-1], 1e-6)
	}
	assert.Equal(t, [3]float64{0, 0, 0}, tbl.Node(0, 0, 0))
	assert.Equal(t, [3]float64{1, 1, 1}, tbl.Node(8, 8, 8))
	for _, rgb := range []colorconv.Vec3{{0.2, 0.5, 0.7}, {0.9, 0.1, 0.3}, {0.5, 0.5, 0.5}, {0.75, 0.8, 0.1}} {
		got := evaluate(tbl, d.ToXYZ(rgb))
		for i := range 3 {
			assert.InDelta(t, rgb[i], got[i], 0.01, "rgb: %v got: %v", rgb, got)
		}
	}
}

func TestGenerateInverseOptions(t *testing.T) {
	d, err := oracle.NewCandidateDevice("Adobe RGB (1998)", 2.2, 0.005)
	require.NoError(t, err)
	p := resolve(t, d, types.XYZ)
	tbl, err := GenerateInverse(context.Background(), d, p, WithResolution(17), WithCurveEntries(512),
		WithBlackPointCompensation(true, false), WithBlendMode(blend.ModeXYZ), WithSmoothing(true), WithBoundary(4, 12), quiet())
	require.NoError(t, err)
	assert.Equal(t, 17, tbl.Size)
	got := evaluate(tbl, d.ToXYZ(colorconv.Vec3{0.5, 0.5, 0.5}))
	for i := range 3 {
		assert.InDelta(t, 0.5, got[i], 0.03, "%v", got)
	}

	tbl, err = GenerateInverse(context.Background(), d, p, WithSource(SourceBackward), WithCurveEntries(64), WithPerceptualClip(false), quiet())
	require.NoError(t, err)
	assert.Equal(t, grid.MAX_SELF_INTERPOLATED_RESOLUTION, tbl.Size)
}

func TestGenerateInverseLab(t *testing.T) {
	d := oracle.SRGBDevice()
	tbl, err := GenerateInverse(context.Background(), d, resolve(t, d, types.Lab), WithResolution(9), WithCurveEntries(512), quiet())
	require.NoError(t, err)
	assert.Nil(t, tbl.Matrix)
	assert.Equal(t, types.Lab, tbl.InputSpace)
	// a* and b* are not redistributed
	assert.Equal(t, []float64{0, 1}, tbl.Input[1])
	assert.Equal(t, []float64{0, 1}, tbl.Input[2])
	for _, L := range []float64{30, 50, 80} {
		want, _ := d.FromXYZ(colorconv.LabToXYZ_D50(L, 0, 0), oracle.ClipNearest)
		got := tbl.Evaluate(types.LabValue(L, 0, 0).Triple(), lut.Trilinear)
		for i := range 3 {
			assert.InDelta(t, want[i], got[i], 0.03, "L: %v", L)
		}
	}
}

func never_called(t *testing.T) oracle.Oracle {
	return oracle.Func(func(ctx context.Context, req oracle.Request, coords []types.Coordinate) ([]oracle.Result, error) {
		t.Fatalf("the oracle must not be called")
		return nil, nil
	})
}

func TestConfigurationErrors(t *testing.T) {
	good := resolve(t, oracle.SRGBDevice(), types.XYZ)
	ctx := context.Background()
	o := never_called(t)

	p := good
	p.PCS = types.DeviceRGB
	_, err := GenerateInverse(ctx, o, p, quiet())
	assert.True(t, errors.Is(err, ErrUnsupportedSpace))

	p = good
	p.Channels = 2
	_, err = GenerateInverse(ctx, o, p, quiet())
	assert.True(t, errors.Is(err, ErrChannels))

	_, err = GenerateInverse(ctx, o, good, WithResolution(1), quiet())
	assert.True(t, errors.Is(err, grid.ErrDegenerate))

	p = good
	p.Red, p.Green = p.Green, p.Red
	_, err = GenerateInverse(ctx, o, p, quiet())
	assert.True(t, errors.Is(err, pcs.ErrPrimaries))

	_, err = GenerateInverse(ctx, o, good, WithBoundary(5, 5), quiet())
	assert.Error(t, err)

	_, err = GenerateDeviceLink(ctx, o, types.UNKNOWN, quiet())
	assert.Error(t, err)

	p = good
	p.Black = p.White
	_, err = GenerateInverse(ctx, oracle.SRGBDevice(), p, WithResolution(3), WithCurveEntries(16), WithBlackPointCompensation(true, false), quiet())
	assert.True(t, errors.Is(err, blend.ErrBlackTooLight))
}

func TestOracleErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	o := oracle.Func(func(ctx context.Context, req oracle.Request, coords []types.Coordinate) ([]oracle.Result, error) {
		return nil, boom
	})
	_, err := GenerateInverse(context.Background(), o, resolve(t, oracle.SRGBDevice(), types.XYZ), quiet())
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrCancelled))
}

// cancel_after cancels the context once the wrapped oracle has been called
// calls times.
func cancel_after(calls int, o oracle.Oracle, cancel context.CancelFunc) oracle.Oracle {
	count := 0
	return oracle.Func(func(ctx context.Context, req oracle.Request, coords []types.Coordinate) ([]oracle.Result, error) {
		res, err := o.Lookup(ctx, req, coords)
		if count++; count == calls {
			cancel()
		}
		return res, err
	})
}

type recording_fs struct {
	created, removed []string
}

func (r *recording_fs) Create(name string) (io.WriteCloser, error) {
	r.created = append(r.created, name)
	return localFS{}.Create(name)
}
func (r *recording_fs) Open(name string) (io.ReadCloser, error) { return localFS{}.Open(name) }
func (r *recording_fs) Remove(name string) error {
	r.removed = append(r.removed, name)
	return localFS{}.Remove(name)
}

func use_recording_fs(t *testing.T) *recording_fs {
	r := &recording_fs{}
	orig := fs
	fs = r
	t.Cleanup(func() { fs = orig })
	return r
}

func TestCancellation(t *testing.T) {
	rfs := use_recording_fs(t)
	out := filepath.Join(t.TempDir(), "out.cube")
	d := oracle.SRGBDevice()
	p := resolve(t, d, types.XYZ)
	run := func(generate func(ctx context.Context, o oracle.Oracle) (*lut.Table, error), calls int) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		tbl, err := generate(ctx, cancel_after(calls, d, cancel))
		if err == nil {
			err = Save(tbl, out)
		}
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCancelled), "%v", err)
		assert.True(t, errors.Is(err, context.Canceled), "%v", err)
		assert.Nil(t, tbl)
	}
	// the first call builds the input curves, the second is the first grid plane
	run(func(ctx context.Context, o oracle.Oracle) (*lut.Table, error) {
		return GenerateInverse(ctx, o, p, WithResolution(9), WithCurveEntries(64), quiet())
	}, 2)
	run(func(ctx context.Context, o oracle.Oracle) (*lut.Table, error) {
		return GenerateDeviceLink(ctx, o, types.CUBE, WithResolution(9), quiet())
	}, 1)
	assert.Empty(t, rfs.created)
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = GenerateInverse(ctx, never_called(t), p, quiet())
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestGenerateDeviceLink(t *testing.T) {
	d := oracle.SRGBDevice()
	link := oracle.Link{Source: d, Destination: d}
	ctx := context.Background()
	tbl, err := GenerateDeviceLink(ctx, link, types.CUBE, WithResolution(5), quiet())
	require.NoError(t, err)
	ident, err := lut.Identity(5)
	require.NoError(t, err)
	assert.True(t, tbl.Equal(ident, 1e-6))

	// every format order scatters back into the same canonical table
	for _, f := range []types.Format{types.THREEDL, types.SPI3D, types.MGA, types.IMAGE} {
		other, err := GenerateDeviceLink(ctx, link, f, WithResolution(5), quiet())
		require.NoError(t, err)
		assert.True(t, other.Equal(tbl, 1e-12), "%s", f)
	}

	ee, err := GenerateDeviceLink(ctx, link, types.EECOLOR, WithResolution(5), WithPerceptualClip(false), quiet())
	require.NoError(t, err)
	assert.Equal(t, grid.EECOLOR_RESOLUTION, ee.Size)
	assert.True(t, ee.Shell)
	assert.InDelta(t, 1, ee.Node(63, 0, 0)[0], 1e-6)
	assert.InDelta(t, 1, ee.Node(64, 0, 0)[0], 1e-6)
	got := ee.At([3]float64{0.5, 0.25, 0.8}, lut.Tetrahedral)
	for i, v := range []float64{0.5, 0.25, 0.8} {
		assert.InDelta(t, v, got[i], 1e-6)
	}
	xv, err := GenerateDeviceLink(ctx, link, types.EECOLOR, WithInputEncoding(grid.XvYCC), quiet())
	require.NoError(t, err)
	assert.InDelta(t, 0, xv.Node(0, 1, 0)[1], 1e-9)
	assert.InDelta(t, 1.0/62, xv.Node(0, 2, 2)[2], 1e-9)
	assert.InDelta(t, 32.0/64, xv.Node(32, 0, 0)[0], 1e-9)
}

func TestSaveAndOpen(t *testing.T) {
	rfs := use_recording_fs(t)
	dir := t.TempDir()
	tbl, err := lut.Identity(5)
	require.NoError(t, err)
	for _, name := range []string{"a.cube", "a.3dl", "a.spi3d", "a.txt", "a.mga", "a.png", "a.tiff"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(tbl, path))
		got, err := Open(path)
		require.NoError(t, err, name)
		if got.Shell {
			got, err = got.Resample(5, false, lut.Trilinear)
			require.NoError(t, err)
		}
		assert.True(t, got.Equal(tbl, 1e-3), name)
	}
	assert.Len(t, rfs.created, 7)
	data, err := os.ReadFile(filepath.Join(dir, "a.cube"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Created with "+Creator())
	data, err = os.ReadFile(filepath.Join(dir, "a.tiff"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("II")) || bytes.HasPrefix(data, []byte("MM")))

	err = Save(tbl, filepath.Join(dir, "a.unknown"))
	assert.Error(t, err)
	assert.Len(t, rfs.created, 7)

	// a failed encode leaves no partial file behind
	bad := filepath.Join(dir, "b.png")
	require.Error(t, Save(tbl, bad, encode.ImageBits(12)))
	assert.Equal(t, []string{bad}, rfs.removed)
	_, err = os.Stat(bad)
	assert.True(t, os.IsNotExist(err))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tbl, types.CUBE))
	assert.True(t, strings.HasPrefix(buf.String(), "# Created with lutsynth "))
}

func TestSavedInverseKeepsPipeline(t *testing.T) {
	d := oracle.SRGBDevice()
	tbl, err := GenerateInverse(context.Background(), d, resolve(t, d, types.XYZ), WithResolution(33), WithCurveEntries(1024), quiet())
	require.NoError(t, err)
	require.False(t, tbl.IsPlain())
	dir := t.TempDir()
	for _, name := range []string{"inverse.cube", "inverse.3dl", "inverse.spi3d", "inverse.tiff"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(tbl, path, encode.OutputBits(16)))
		got, err := Open(path)
		require.NoError(t, err)
		assert.True(t, got.IsPlain(), name)
		for _, rgb := range []colorconv.Vec3{{0.5, 0.5, 0.5}, {0.8, 0.8, 0.8}, {0.7, 0.8, 0.9}} {
			v := d.ToXYZ(rgb).Scale(1 / pcs.HEADROOM)
			want := tbl.Evaluate(v, lut.Trilinear)
			have := got.Evaluate(v, lut.Trilinear)
			for i := range 3 {
				assert.InDelta(t, want[i], have[i], 0.03, "%s rgb: %v", name, rgb)
				assert.InDelta(t, rgb[i], have[i], 0.03, "%s rgb: %v", name, rgb)
			}
		}
	}
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", Version.String())
	assert.True(t, Version.After(VersionInfo{0, 9, 9}))
	assert.True(t, Version.Before(VersionInfo{1, 0, 1}))
	assert.False(t, Version.Before(Version))
}
