package pcs

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func primaries_of(t *testing.T, c Candidate, scale float64) Primaries {
	m, err := c.Matrix()
	require.NoError(t, err)
	return Primaries{
		Red: m.Column(0).Scale(scale), Green: m.Column(1).Scale(scale), Blue: m.Column(2).Scale(scale),
		White: colorconv.D50,
	}
}

func TestCatalog(t *testing.T) {
	cat := Catalog()
	require.GreaterOrEqual(t, len(cat), 10)
	for i := 1; i < len(cat); i++ {
		require.LessOrEqual(t, cat[i-1].Area(), cat[i].Area(), "%s should not be larger than %s", cat[i-1], cat[i])
	}
	cat[0].Name = "mutated"
	assert.NotEqual(t, "mutated", Catalog()[0].Name)
	c, ok := Lookup("Rec. 709")
	require.True(t, ok)
	assert.Equal(t, Chromaticity{0.64, 0.33}, c.Red)
	_, ok = Lookup("nonexistent")
	assert.False(t, ok)
}

func TestWorkingMatrix(t *testing.T) {
	for _, c := range Catalog() {
		t.Run(c.Name, func(t *testing.T) {
			m, err := c.Matrix()
			require.NoError(t, err)
			// white maps to D50
			w := m.MulVec(colorconv.Vec3{1, 1, 1})
			for i := range 3 {
				assert.InDelta(t, colorconv.D50[i], w[i], 1e-5)
			}
			wm, err := Build(c, colorconv.D50, quiet())
			require.NoError(t, err)
			assert.True(t, wm.Scaled.Multiply(wm.Inverse).IsIdentity(1e-9), "%s", wm.Scaled.Multiply(wm.Inverse))
			assert.True(t, wm.Raw.Multiply(wm.Primaries).IsIdentity(1e-9))
			ones := wm.Corrected.MulVec(colorconv.D50)
			for i := range 3 {
				assert.InDelta(t, 1, ones[i], 1e-9)
			}
			scaled := wm.Apply(colorconv.D50)
			for i := range 3 {
				assert.InDelta(t, HEADROOM, scaled[i], 1e-9)
			}
			back := wm.Unapply(scaled)
			for i := range 3 {
				assert.InDelta(t, colorconv.D50[i], back[i], 1e-9)
			}
		})
	}
}

func TestBuildLogsEveryStep(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, _ := Lookup("Adobe RGB (1998)")
	_, err := Build(c, colorconv.D50, log)
	require.NoError(t, err)
	for _, q := range []string{"step=1", "step=2", "step=3"} {
		assert.Contains(t, buf.String(), q)
	}
}

func TestSingular(t *testing.T) {
	bad := Candidate{Name: "bad", Gamma: 1, White: colorconv.D50,
		Red: Chromaticity{0.3, 0.3}, Green: Chromaticity{0.4, 0.4}, Blue: Chromaticity{0.5, 0.5}}
	_, err := Build(bad, colorconv.D50, quiet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, colorconv.ErrSingularMatrix))
	assert.Contains(t, err.Error(), "bad")
}

func TestSelectNeverPicksLarger(t *testing.T) {
	cat := Catalog()
	for i, c := range cat {
		t.Run(c.Name, func(t *testing.T) {
			p := primaries_of(t, c, 1)
			ok, err := Contains(c, p)
			require.NoError(t, err)
			require.True(t, ok)
			s, err := Select(p, quiet())
			require.NoError(t, err)
			assert.True(t, s.Contains)
			assert.LessOrEqual(t, s.Index, i, "selected %s for the primaries of %s", s.Candidate, c)
			assert.Equal(t, cat[s.Index].Name, s.Candidate.Name)
		})
	}
}

func TestSelectFallback(t *testing.T) {
	cat := Catalog()
	largest := cat[len(cat)-1]
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := Select(primaries_of(t, largest, 1.5), log)
	require.NoError(t, err)
	assert.False(t, s.Contains)
	assert.Equal(t, len(cat)-1, s.Index)
	assert.Equal(t, largest.Name, s.Candidate.Name)
	assert.InDelta(t, 1, s.FitRatio, 1e-6)
	assert.Contains(t, buf.String(), "fit_ratio")
}

func TestCheckPrimaries(t *testing.T) {
	c, _ := Lookup("Rec. 709")
	p := primaries_of(t, c, 1)
	require.NoError(t, CheckPrimaries(p.Red, p.Green, p.Blue))
	err := CheckPrimaries(p.Green, p.Red, p.Blue)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrimaries))
	assert.Contains(t, err.Error(), "red primary")
}
