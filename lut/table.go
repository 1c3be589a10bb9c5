package lut

import (
	"errors"
	"fmt"

	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

var ErrCount = errors.New("lut: CLUT does not have size³ entries")

// Table is a 3D lookup table. The CLUT is stored with the first input
// channel varying slowest and the last fastest.
type Table struct {
	Size int
	CLUT []types.Coordinate
	// per channel curves applied before and after the CLUT, sampled
	// uniformly over [0,1]. Empty means identity.
	Input, Output [][]float64
	InputSpace    types.ColorSpace
	OutputSpace   types.ColorSpace
	DomainMin     [3]float64
	DomainMax     [3]float64
	// only the inner Size-1 nodes of every axis are addressable, the
	// outermost shell duplicates the node before it
	Shell bool
	Title string
	// the working space matrix applied to connection space inputs, if any
	Matrix *colorconv.Mat3
}

// New creates a table with all CLUT entries zero.
func New(size int, input, output types.ColorSpace) (*Table, error) {
	if size < 2 {
		return nil, fmt.Errorf("invalid LUT size: %d", size)
	}
	ans := &Table{
		Size: size, CLUT: make([]types.Coordinate, size*size*size),
		InputSpace: input, OutputSpace: output, DomainMax: [3]float64{1, 1, 1},
	}
	for i := range ans.CLUT {
		ans.CLUT[i].Space = output
	}
	return ans, nil
}

// Identity creates a device RGB table that maps every node to its own coordinates.
func Identity(size int) (*Table, error) {
	ans, err := New(size, types.DeviceRGB, types.DeviceRGB)
	if err != nil {
		return nil, err
	}
	m := 1 / float64(size-1)
	for r := range size {
		for g := range size {
			for b := range size {
				ans.CLUT[ans.Offset(r, g, b)] = types.RGB(float64(r)*m, float64(g)*m, float64(b)*m)
			}
		}
	}
	return ans, nil
}

func (t *Table) Len() int                   { return len(t.CLUT) }
func (t *Table) Offset(r, g, b int) int     { return (r*t.Size+g)*t.Size + b }
func (t *Table) Node(r, g, b int) [3]float64 { return t.CLUT[t.Offset(r, g, b)].Triple() }

// Validate checks the structural invariants of the table.
func (t *Table) Validate() error {
	if t.Size < 2 {
		return fmt.Errorf("invalid LUT size: %d", t.Size)
	}
	if len(t.CLUT) != t.Size*t.Size*t.Size {
		return fmt.Errorf("%w: size %d has %d entries instead of %d", ErrCount, t.Size, len(t.CLUT), t.Size*t.Size*t.Size)
	}
	for name, curves := range map[string][][]float64{"input": t.Input, "output": t.Output} {
		for ch, c := range curves {
			for i := 1; i < len(c); i++ {
				if c[i] < c[i-1] {
					return fmt.Errorf("%s curve %d decreases at entry %d: %v < %v", name, ch, i, c[i], c[i-1])
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	ans := *t
	ans.CLUT = append([]types.Coordinate(nil), t.CLUT...)
	cp := func(src [][]float64) (dest [][]float64) {
		for _, c := range src {
			dest = append(dest, append([]float64(nil), c...))
		}
		return
	}
	ans.Input, ans.Output = cp(t.Input), cp(t.Output)
	if t.Matrix != nil {
		m := *t.Matrix
		ans.Matrix = &m
	}
	return &ans
}

// Equal reports whether the CLUTs of two tables of the same size are equal
// to within tolerance.
func (t *Table) Equal(o *Table, tolerance float64) bool {
	if t.Size != o.Size || len(t.CLUT) != len(o.CLUT) {
		return false
	}
	for i, c := range t.CLUT {
		for ch := range c.Len() {
			if d := c.V[ch] - o.CLUT[i].V[ch]; d > tolerance || d < -tolerance {
				return false
			}
		}
	}
	return true
}

// IsIdentityCurve reports whether the uniformly sampled curve c maps every
// input to itself. An empty curve is the identity.
func IsIdentityCurve(c []float64) bool {
	switch len(c) {
	case 0:
		return true
	case 1:
		return false
	}
	last := float64(len(c) - 1)
	for i, v := range c {
		if d := v - float64(i)/last; d > 1e-9 || d < -1e-9 {
			return false
		}
	}
	return true
}

// IsPlain reports whether the CLUT alone is the transform of t, that is it
// has no matrix and only identity curves.
func (t *Table) IsPlain() bool {
	if t.Matrix != nil && !t.Matrix.IsIdentity(1e-12) {
		return false
	}
	for _, curves := range [][][]float64{t.Input, t.Output} {
		for _, c := range curves {
			if !IsIdentityCurve(c) {
				return false
			}
		}
	}
	return true
}

// IdentityCurves returns count channels of two point identity curves.
func IdentityCurves(count int) [][]float64 {
	ans := make([][]float64, count)
	for i := range ans {
		ans[i] = []float64{0, 1}
	}
	return ans
}
