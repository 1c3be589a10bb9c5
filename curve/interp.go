package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var _ = fmt.Print

var ErrNotMonotonic = errors.New("curve: sample points are not monotonic")
var ErrBadSamples = errors.New("curve: invalid sample points")

type Kind int

const (
	Linear Kind = iota
	Cubic
)

func (k Kind) String() string {
	if k == Cubic {
		return "cubic"
	}
	return "linear"
}

// Interp interpolates a sampled curve. With two or fewer points it is
// piecewise linear, otherwise a cubic Hermite spline with Catmull-Rom tangents
// limited so that monotonic data never overshoots. Queries outside the sampled
// range return the end values. To go in the other direction construct a second
// Interp with the arguments swapped.
type Interp struct {
	xs, ys, tangents []float64
	kind             Kind
}

// New builds an interpolant. xs must be strictly increasing, use Dedupe()
// first for data that may contain repeated or out of order inputs.
func New(xs, ys []float64) (*Interp, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d inputs and %d outputs", ErrBadSamples, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: no sample points", ErrBadSamples)
	}
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return nil, fmt.Errorf("%w: non-finite point (%v, %v) at index %d", ErrBadSamples, xs[i], ys[i], i)
		}
		if i > 0 && xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("%w: x[%d]=%v follows x[%d]=%v", ErrNotMonotonic, i, xs[i], i-1, xs[i-1])
		}
	}
	ans := &Interp{xs: append([]float64(nil), xs...), ys: append([]float64(nil), ys...)}
	if len(xs) > 2 {
		ans.kind = Cubic
		ans.tangents = monotone_tangents(ans.xs, ans.ys)
	}
	return ans, nil
}

// Dedupe returns copies of xs and ys with every point that does not strictly
// increase x dropped, keeping the first occurrence of a repeated x.
func Dedupe(xs, ys []float64) (oxs, oys []float64) {
	n := min(len(xs), len(ys))
	oxs, oys = make([]float64, 0, n), make([]float64, 0, n)
	for i := range n {
		if len(oxs) > 0 && xs[i] <= oxs[len(oxs)-1] {
			continue
		}
		oxs = append(oxs, xs[i])
		oys = append(oys, ys[i])
	}
	return
}

// Fritsch-Carlson limited Catmull-Rom tangents
func monotone_tangents(xs, ys []float64) []float64 {
	n := len(xs)
	secants := make([]float64, n-1)
	for i := range n - 1 {
		secants[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}
	m := make([]float64, n)
	m[0], m[n-1] = secants[0], secants[n-2]
	for i := 1; i < n-1; i++ {
		if secants[i-1]*secants[i] <= 0 {
			// local extremum or flat segment
			continue
		}
		m[i] = (ys[i+1] - ys[i-1]) / (xs[i+1] - xs[i-1])
	}
	for i, d := range secants {
		if d == 0 {
			m[i], m[i+1] = 0, 0
			continue
		}
		alpha, beta := m[i]/d, m[i+1]/d
		if alpha < 0 {
			m[i], alpha = 0, 0
		}
		if beta < 0 {
			m[i+1], beta = 0, 0
		}
		if s := alpha*alpha + beta*beta; s > 9 {
			tau := 3 / math.Sqrt(s)
			m[i] = tau * alpha * d
			m[i+1] = tau * beta * d
		}
	}
	return m
}

func (c *Interp) Kind() Kind { return c.kind }
func (c *Interp) Len() int   { return len(c.xs) }

// Domain returns the smallest and largest sampled inputs.
func (c *Interp) Domain() (lo, hi float64) { return c.xs[0], c.xs[len(c.xs)-1] }

func (c *Interp) At(x float64) float64 {
	n := len(c.xs)
	switch {
	case n == 1 || x <= c.xs[0]:
		return c.ys[0]
	case x >= c.xs[n-1]:
		return c.ys[n-1]
	}
	// first index with xs[i] > x
	i := sort.Search(n, func(i int) bool { return c.xs[i] > x }) - 1
	x0, x1, y0, y1 := c.xs[i], c.xs[i+1], c.ys[i], c.ys[i+1]
	h := x1 - x0
	t := (x - x0) / h
	if c.kind == Linear {
		return y0 + t*(y1-y0)
	}
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*y0 + h10*h*c.tangents[i] + h01*y1 + h11*h*c.tangents[i+1]
}

func (c *Interp) String() string {
	lo, hi := c.Domain()
	return fmt.Sprintf("Interp{%s, %d points, [%g, %g]}", c.kind, len(c.xs), lo, hi)
}
