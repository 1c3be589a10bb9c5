package lut

import (
	"errors"
	"testing"

	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityInterpolation(t *testing.T) {
	tbl, err := Identity(9)
	require.NoError(t, err)
	require.NoError(t, tbl.Validate())
	for _, kind := range []Interpolation{Trilinear, Tetrahedral} {
		for _, v := range [][3]float64{{0, 0, 0}, {1, 1, 1}, {0.1, 0.5, 0.93}, {0.77, 0.2, 0.4}, {0.3, 0.3, 0.9}, {0.5, 0.9, 0.1}} {
			got := tbl.At(v, kind)
			for ch := range 3 {
				assert.InDelta(t, v[ch], got[ch], 1e-12, "kind: %d v: %v", kind, v)
			}
		}
	}
	// out of range inputs clamp
	assert.Equal(t, [3]float64{1, 0, 1}, tbl.At([3]float64{2, -1, 1}, Trilinear))
}

func TestNonLinearInterpolation(t *testing.T) {
	tbl, err := New(2, types.DeviceRGB, types.DeviceRGB)
	require.NoError(t, err)
	// value is the product of the inputs, trilinear reproduces it exactly
	for r := range 2 {
		for g := range 2 {
			for b := range 2 {
				p := float64(r * g * b)
				tbl.CLUT[tbl.Offset(r, g, b)] = types.RGB(p, p, p)
			}
		}
	}
	got := tbl.At([3]float64{0.5, 0.5, 0.5}, Trilinear)
	assert.InDelta(t, 0.125, got[0], 1e-12)
	// tetrahedral only uses the diagonal corners here
	got = tbl.At([3]float64{0.5, 0.5, 0.5}, Tetrahedral)
	assert.InDelta(t, 0.5, got[0], 1e-12)
}

func TestResample(t *testing.T) {
	tbl, err := Identity(9)
	require.NoError(t, err)
	tbl.Title = "x"
	shell, err := tbl.Resample(65, true, Trilinear)
	require.NoError(t, err)
	require.NoError(t, shell.Validate())
	assert.True(t, shell.Shell)
	assert.Equal(t, "x", shell.Title)
	for _, k := range []int{0, 8, 31, 63, 64} {
		want := min(1, float64(k)/63)
		assert.InDelta(t, want, shell.Node(k, 0, 0)[0], 1e-12)
		assert.InDelta(t, want, shell.Node(0, k, 0)[1], 1e-12)
	}
	// evaluating the shell table recovers the identity
	for _, v := range [][3]float64{{0.125, 0.25, 1}, {0.5, 0.625, 0.875}} {
		got := shell.At(v, Trilinear)
		for ch := range 3 {
			assert.InDelta(t, v[ch], got[ch], 1e-12)
		}
	}
	back, err := shell.Resample(9, false, Tetrahedral)
	require.NoError(t, err)
	assert.True(t, back.Equal(tbl, 1e-12))
	_, err = tbl.Resample(2, true, Trilinear)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tbl, err := Identity(3)
	require.NoError(t, err)
	tbl.CLUT = tbl.CLUT[:26]
	err = tbl.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCount))

	tbl, _ = Identity(3)
	tbl.Input = [][]float64{{0, 0.5, 0.4, 1}}
	assert.Error(t, tbl.Validate())
	tbl.Input = IdentityCurves(3)
	assert.NoError(t, tbl.Validate())
	_, err = New(1, types.DeviceRGB, types.DeviceRGB)
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	tbl, _ := Identity(3)
	tbl.Input = IdentityCurves(3)
	c := tbl.Clone()
	c.CLUT[0] = types.RGB(1, 1, 1)
	c.Input[0][0] = 0.5
	assert.Equal(t, [3]float64{0, 0, 0}, tbl.Node(0, 0, 0))
	assert.Equal(t, 0.0, tbl.Input[0][0])
	assert.False(t, c.Equal(tbl, 0.1))
}

func TestBake(t *testing.T) {
	tbl, err := Identity(5)
	require.NoError(t, err)
	assert.True(t, tbl.IsPlain())
	tbl.Input, tbl.Output = IdentityCurves(3), [][]float64{{0, 0.25, 0.5, 0.75, 1}, {}, {}}
	assert.True(t, tbl.IsPlain())

	m := colorconv.Diagonal(colorconv.Vec3{0.5, 1, 1})
	tbl.Matrix = &m
	tbl.Input[1] = []float64{0, 0.25, 1}
	tbl.Output[2] = []float64{0, 0.5, 0.5}
	assert.False(t, tbl.IsPlain())
	assert.False(t, IsIdentityCurve([]float64{0.5}))

	baked, err := tbl.Bake(5, Tetrahedral)
	require.NoError(t, err)
	require.NoError(t, baked.Validate())
	assert.True(t, baked.IsPlain())
	assert.Nil(t, baked.Matrix)
	for _, v := range [][3]float64{{0, 0, 0}, {1, 1, 1}, {0.5, 0.25, 0.75}, {1, 0.5, 0.25}} {
		want := tbl.Evaluate(v, Tetrahedral)
		got := baked.Evaluate(v, Tetrahedral)
		for ch := range 3 {
			assert.InDelta(t, want[ch], got[ch], 1e-12, "v: %v", v)
		}
	}
	// red is halved by the matrix, green is bent by its input curve and blue
	// is capped by its output curve
	assert.InDelta(t, 0.5, baked.Node(4, 0, 0)[0], 1e-12)
	assert.InDelta(t, 0.125, baked.Node(0, 1, 0)[1], 1e-12)
	assert.InDelta(t, 0.5, baked.Node(0, 0, 4)[2], 1e-12)
}
