package lut

import (
	"fmt"

	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/curve"
	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

type Interpolation int

const (
	Trilinear Interpolation = iota
	Tetrahedral
)

func clamp01(x float64) float64 { return max(0, min(x, 1)) }

// position returns the base grid index and fractional weight along one axis
func (t *Table) position(v float64) (idx int, weight float64) {
	last := t.Size - 1
	scale := float64(last)
	if t.Shell {
		scale = float64(t.Size - 2)
	}
	pos := clamp01(v) * scale
	idx = int(pos)
	weight = pos - float64(idx)
	// Clamp index to be at most the second to last grid point.
	if idx >= last {
		idx = last - 1
		weight = 1
	}
	return
}

// At evaluates the CLUT at v, whose components are in [0,1].
func (t *Table) At(v [3]float64, kind Interpolation) [3]float64 {
	if kind == Tetrahedral {
		return t.tetrahedral(v)
	}
	return t.trilinear(v)
}

// Evaluate runs v, in the input encoding of the table, through the complete
// pipeline: matrix, input curves, CLUT and output curves.
func (t *Table) Evaluate(v [3]float64, kind Interpolation) (ans [3]float64) {
	if t.Matrix != nil {
		v = t.Matrix.MulVec(colorconv.Vec3(v))
	}
	for i, c := range t.Input {
		if i < 3 {
			v[i] = curve.Sample(c, clamp01(v[i]))
		}
	}
	ans = t.At(v, kind)
	for i, c := range t.Output {
		if i < 3 {
			ans[i] = curve.Sample(c, clamp01(ans[i]))
		}
	}
	return
}

// Performs a trilinear interpolation by summing the weighted values of all
// eight corners of the enclosing cell.
func (t *Table) trilinear(input [3]float64) (output [3]float64) {
	var indices [3]int
	var weights [3]float64
	for i, val := range input {
		indices[i], weights[i] = t.position(val)
	}
	for i := range 1 << 3 {
		cornerWeight := 1.0
		var idx [3]int
		for j := range 3 {
			// Check the j-th bit of i to decide if we are at the lower or upper bound for this dimension
			if (i>>j)&1 == 1 {
				cornerWeight *= weights[j]
				idx[j] = indices[j] + 1
			} else {
				cornerWeight *= (1.0 - weights[j])
				idx[j] = indices[j]
			}
		}
		if cornerWeight == 0 {
			continue
		}
		c := t.Node(idx[0], idx[1], idx[2])
		for k, v := range c {
			output[k] += v * cornerWeight
		}
	}
	return
}

// Tetrahedral interpolation splits the enclosing cell into six tetrahedra
// along its main diagonal and interpolates inside the one containing input.
func (t *Table) tetrahedral(input [3]float64) (output [3]float64) {
	var i [3]int
	var f [3]float64
	for ch, val := range input {
		i[ch], f[ch] = t.position(val)
	}
	node := func(dr, dg, db int) [3]float64 { return t.Node(i[0]+dr, i[1]+dg, i[2]+db) }
	c000, c111 := node(0, 0, 0), node(1, 1, 1)
	fr, fg, fb := f[0], f[1], f[2]
	var a, b [3]float64
	var w0, w1, w2, w3 float64
	switch {
	case fr >= fg && fg >= fb:
		a, b = node(1, 0, 0), node(1, 1, 0)
		w0, w1, w2, w3 = 1-fr, fr-fg, fg-fb, fb
	case fr >= fb && fb >= fg:
		a, b = node(1, 0, 0), node(1, 0, 1)
		w0, w1, w2, w3 = 1-fr, fr-fb, fb-fg, fg
	case fb >= fr && fr >= fg:
		a, b = node(0, 0, 1), node(1, 0, 1)
		w0, w1, w2, w3 = 1-fb, fb-fr, fr-fg, fg
	case fg >= fr && fr >= fb:
		a, b = node(0, 1, 0), node(1, 1, 0)
		w0, w1, w2, w3 = 1-fg, fg-fr, fr-fb, fb
	case fg >= fb && fb >= fr:
		a, b = node(0, 1, 0), node(0, 1, 1)
		w0, w1, w2, w3 = 1-fg, fg-fb, fb-fr, fr
	default: // fb >= fg >= fr
		a, b = node(0, 0, 1), node(0, 1, 1)
		w0, w1, w2, w3 = 1-fb, fb-fg, fg-fr, fr
	}
	for k := range 3 {
		output[k] = w0*c000[k] + w1*a[k] + w2*b[k] + w3*c111[k]
	}
	return
}

// Resample evaluates t on a new grid of the given size. When shell is true
// the new table only addresses its inner size-1 nodes, as eeColor does.
func (t *Table) Resample(size int, shell bool, kind Interpolation) (*Table, error) {
	if size == t.Size && shell == t.Shell {
		return t.Clone(), nil
	}
	if shell && size < 3 {
		return nil, fmt.Errorf("invalid LUT size for interior addressing: %d", size)
	}
	ans, err := New(size, t.InputSpace, t.OutputSpace)
	if err != nil {
		return nil, err
	}
	ans.Shell, ans.Title, ans.DomainMin, ans.DomainMax = shell, t.Title, t.DomainMin, t.DomainMax
	c := t.Clone()
	ans.Input, ans.Output, ans.Matrix = c.Input, c.Output, c.Matrix
	scale := float64(size - 1)
	if shell {
		scale = float64(size - 2)
	}
	for r := range size {
		for g := range size {
			for b := range size {
				v := t.At([3]float64{clamp01(float64(r) / scale), clamp01(float64(g) / scale), clamp01(float64(b) / scale)}, kind)
				ans.CLUT[ans.Offset(r, g, b)] = types.Coordinate{Space: t.OutputSpace, V: [4]float64{v[0], v[1], v[2]}}
			}
		}
	}
	return ans, nil
}

// Bake returns a plain table of the given size whose CLUT holds the complete
// pipeline of t, matrix and curves included, evaluated at every node.
func (t *Table) Bake(size int, kind Interpolation) (*Table, error) {
	ans, err := New(size, t.InputSpace, t.OutputSpace)
	if err != nil {
		return nil, err
	}
	ans.Title, ans.DomainMin, ans.DomainMax = t.Title, t.DomainMin, t.DomainMax
	ans.Input, ans.Output = IdentityCurves(3), IdentityCurves(3)
	scale := 1 / float64(size-1)
	for r := range size {
		for g := range size {
			for b := range size {
				v := t.Evaluate([3]float64{float64(r) * scale, float64(g) * scale, float64(b) * scale}, kind)
				ans.CLUT[ans.Offset(r, g, b)] = types.Coordinate{Space: t.OutputSpace, V: [4]float64{v[0], v[1], v[2]}}
			}
		}
	}
	return ans, nil
}
