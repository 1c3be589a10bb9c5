package curve

import (
	"fmt"
	"math"
)

// Curves with a |gamma - 1| below this are treated as linear
const GAMMA_TOLERANCE = 0.0001

// Curve is a per-channel tone response curve mapping encoded device values to
// linear light and back.
type Curve interface {
	Transform(x float64) float64
	InverseTransform(x float64) float64
	String() string
}

type GammaCurve struct {
	gamma, inv_gamma float64
	is_one           bool
}

// ConditionalZeroCurve is Y = (aX+b)^g for X >= -b/a else 0
type ConditionalZeroCurve struct{ g, a, b float64 }

// ConditionalCCurve is Y = (aX+b)^g + c for X >= -b/a else c
type ConditionalCCurve struct{ g, a, b, c float64 }

// SplitCurve is Y = (aX+b)^g for X >= d else cX, as used by sRGB and Rec. 709
type SplitCurve struct{ g, a, b, c, d, threshold float64 }

// ComplexCurve is Y = (aX+b)^g + e for X >= d else cX + f
type ComplexCurve struct{ g, a, b, c, d, e, f, threshold float64 }

// PointsCurve is a tabulated curve over evenly spaced inputs in [0,1]
type PointsCurve struct {
	points  []float64
	max_idx float64
	reverse *Interp
}

var _ Curve = (*GammaCurve)(nil)
var _ Curve = (*ConditionalZeroCurve)(nil)
var _ Curve = (*ConditionalCCurve)(nil)
var _ Curve = (*SplitCurve)(nil)
var _ Curve = (*ComplexCurve)(nil)
var _ Curve = (*PointsCurve)(nil)

func NewGammaCurve(gamma float64) (*GammaCurve, error) {
	if gamma <= 0 || math.IsNaN(gamma) {
		return nil, fmt.Errorf("gamma curve has invalid gamma value: %v", gamma)
	}
	return &GammaCurve{gamma: gamma, inv_gamma: 1 / gamma, is_one: math.Abs(gamma-1) < GAMMA_TOLERANCE}, nil
}

func (c GammaCurve) Transform(x float64) float64 {
	if x < 0 {
		if c.is_one {
			return x
		}
		return 0
	}
	return math.Pow(x, c.gamma)
}

func (c GammaCurve) InverseTransform(x float64) float64 {
	if x < 0 {
		if c.is_one {
			return x
		}
		return 0
	}
	return math.Pow(x, c.inv_gamma)
}

func (c GammaCurve) String() string { return fmt.Sprintf("GammaCurve{%f}", c.gamma) }

// NewParametricCurve creates a curve from the parameters of an ICC
// parametricCurveType, the function type being selected by how many there
// are: 1, 3, 4, 5 or 7, in the order g, a, b, c, d, e, f.
func NewParametricCurve(params []float64) (ans Curve, err error) {
	p := func(i int) float64 { return params[i] }
	switch len(params) {
	case 1:
		var c *GammaCurve
		if c, err = NewGammaCurve(p(0)); err == nil {
			ans = c
		}
	case 3:
		var c *ConditionalZeroCurve
		if c, err = NewConditionalZeroCurve(p(0), p(1), p(2)); err == nil {
			ans = c
		}
	case 4:
		var c *ConditionalCCurve
		if c, err = NewConditionalCCurve(p(0), p(1), p(2), p(3)); err == nil {
			ans = c
		}
	case 5:
		var c *SplitCurve
		if c, err = NewSplitCurve(p(0), p(1), p(2), p(3), p(4)); err == nil {
			ans = c
		}
	case 7:
		var c *ComplexCurve
		if c, err = NewComplexCurve(p(0), p(1), p(2), p(3), p(4), p(5), p(6)); err == nil {
			ans = c
		}
	default:
		err = fmt.Errorf("%w: a parametric curve has 1, 3, 4, 5 or 7 parameters, got %d", ErrBadSamples, len(params))
	}
	return
}

func NewConditionalZeroCurve(g, a, b float64) (*ConditionalZeroCurve, error) {
	if a == 0 || g == 0 {
		return nil, fmt.Errorf("conditional zero curve has zero parameter value: a=%f or g=%f", a, g)
	}
	return &ConditionalZeroCurve{g: g, a: a, b: b}, nil
}

func (c *ConditionalZeroCurve) Transform(x float64) float64 {
	if e := c.a*x + c.b; e > 0 {
		return math.Pow(e, c.g)
	}
	return 0
}

func (c *ConditionalZeroCurve) InverseTransform(y float64) float64 {
	return max(-c.b/c.a, (math.Pow(max(0, y), 1/c.g)-c.b)/c.a)
}

func (c *ConditionalZeroCurve) String() string {
	return fmt.Sprintf("ConditionalZeroCurve{a: %v b: %v g: %v}", c.a, c.b, c.g)
}

func NewConditionalCCurve(g, a, b, cc float64) (*ConditionalCCurve, error) {
	if a == 0 || g == 0 {
		return nil, fmt.Errorf("conditional C curve has zero parameter value: a=%f or g=%f", a, g)
	}
	return &ConditionalCCurve{g: g, a: a, b: b, c: cc}, nil
}

func (c *ConditionalCCurve) Transform(x float64) float64 {
	if e := c.a*x + c.b; e > 0 {
		return math.Pow(e, c.g) + c.c
	}
	return c.c
}

func (c *ConditionalCCurve) InverseTransform(y float64) float64 {
	return max(-c.b/c.a, (math.Pow(max(0, y-c.c), 1/c.g)-c.b)/c.a)
}

func (c *ConditionalCCurve) String() string {
	return fmt.Sprintf("ConditionalCCurve{a: %v b: %v c: %v g: %v}", c.a, c.b, c.c, c.g)
}

func NewSplitCurve(g, a, b, c, d float64) (*SplitCurve, error) {
	if a == 0 || g == 0 || c == 0 {
		return nil, fmt.Errorf("split curve has zero parameter value: a=%f or g=%f or c=%f", a, g, c)
	}
	return &SplitCurve{g: g, a: a, b: b, c: c, d: d, threshold: math.Pow(a*d+b, g)}, nil
}

// SRGBCurve is the IEC 61966-2-1 transfer function
func SRGBCurve() *SplitCurve {
	ans, _ := NewSplitCurve(2.4, 1/1.055, 0.055/1.055, 1/12.92, 0.04045)
	return ans
}

func (c *SplitCurve) Transform(x float64) float64 {
	if x >= c.d {
		if e := c.a*x + c.b; e > 0 {
			return math.Pow(e, c.g)
		}
		return 0
	}
	return c.c * x
}

func (c *SplitCurve) InverseTransform(y float64) float64 {
	if y < c.threshold {
		return y / c.c
	}
	return (math.Pow(y, 1/c.g) - c.b) / c.a
}

func (c *SplitCurve) String() string {
	return fmt.Sprintf("SplitCurve{a: %v b: %v c: %v d: %v g: %v}", c.a, c.b, c.c, c.d, c.g)
}

func NewComplexCurve(g, a, b, c, d, e, f float64) (*ComplexCurve, error) {
	if a == 0 || g == 0 || c == 0 {
		return nil, fmt.Errorf("complex curve has zero parameter value: a=%f or g=%f or c=%f", a, g, c)
	}
	return &ComplexCurve{g: g, a: a, b: b, c: c, d: d, e: e, f: f, threshold: math.Pow(max(0, a*d+b), g) + e}, nil
}

func (c *ComplexCurve) Transform(x float64) float64 {
	if x >= c.d {
		if t := c.a*x + c.b; t > 0 {
			return math.Pow(t, c.g) + c.e
		}
		return c.e
	}
	return c.c*x + c.f
}

func (c *ComplexCurve) InverseTransform(y float64) float64 {
	if y < c.threshold {
		return (y - c.f) / c.c
	}
	return (math.Pow(max(0, y-c.e), 1/c.g) - c.b) / c.a
}

func (c *ComplexCurve) String() string {
	return fmt.Sprintf("ComplexCurve{a: %v b: %v c: %v d: %v e: %v f: %v g: %v}", c.a, c.b, c.c, c.d, c.e, c.f, c.g)
}

// NewPointsCurve creates a tabulated curve. The points must be
// non-decreasing, flat runs are allowed and invert to their first input.
func NewPointsCurve(points []float64) (*PointsCurve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: a points curve needs at least two points, got %d", ErrBadSamples, len(points))
	}
	c := &PointsCurve{points: append([]float64(nil), points...), max_idx: float64(len(points) - 1)}
	xs := make([]float64, len(points))
	for i := range xs {
		xs[i] = float64(i) / c.max_idx
		if i > 0 && points[i] < points[i-1] {
			return nil, fmt.Errorf("%w: point %d (%v) is below point %d (%v)", ErrNotMonotonic, i, points[i], i-1, points[i-1])
		}
	}
	ys, ixs := Dedupe(c.points, xs)
	var err error
	if c.reverse, err = New(ys, ixs); err != nil {
		return nil, err
	}
	return c, nil
}

func sampled_value(samples []float64, max_idx float64, x float64) float64 {
	idx := max(0, min(x, 1)) * max_idx
	lof := math.Trunc(idx)
	lo := int(lof)
	if lof == idx {
		return samples[lo]
	}
	p := idx - float64(lo)
	vhi := samples[lo+1]
	vlo := samples[lo]
	return vlo + p*(vhi-vlo)
}

// Sample linearly interpolates a curve tabulated uniformly over [0,1]. An
// empty curve is the identity.
func Sample(samples []float64, x float64) float64 {
	switch len(samples) {
	case 0:
		return x
	case 1:
		return samples[0]
	}
	return sampled_value(samples, float64(len(samples)-1), x)
}

func (c *PointsCurve) Transform(v float64) float64 {
	return sampled_value(c.points, c.max_idx, v)
}

func (c *PointsCurve) InverseTransform(v float64) float64 {
	return c.reverse.At(v)
}

func (c *PointsCurve) String() string { return fmt.Sprintf("PointsCurve{%d}", len(c.points)) }
