package blend

import (
	"fmt"

	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/oracle"
	"github.com/kovidgoyal/lutsynth/types"
)

// Boundary describes the band of grid indices over which lookups clipped to
// the nearest device value are replaced by perceptually clipped ones. The
// distance of a node from the origin is the largest of its three indices.
type Boundary struct {
	Inner, Outer int
}

func DefaultBoundary(n int) Boundary {
	inner := n / 3
	return Boundary{Inner: inner, Outer: max(inner+1, 3*n/4)}
}

func (b Boundary) String() string { return fmt.Sprintf("Boundary{%d..%d}", b.Inner, b.Outer) }

func (b Boundary) Validate(n int) error {
	if b.Inner < 0 || b.Outer <= b.Inner {
		return fmt.Errorf("invalid gamut boundary thresholds %d and %d for grid size %d", b.Inner, b.Outer, n)
	}
	return nil
}

// Weight of the perceptual result for the node at idx, 0 at or inside Inner
// and 1 at or outside Outer.
func (b Boundary) Weight(r, g, bl int) float64 {
	d := max(r, g, bl)
	return max(0, min(float64(d-b.Inner)/float64(b.Outer-b.Inner), 1))
}

func (b Boundary) NeedsOrdinary(r, g, bl int) bool   { return max(r, g, bl) < b.Outer }
func (b Boundary) NeedsPerceptual(r, g, bl int) bool { return max(r, g, bl) > b.Inner }

type Stats struct {
	// nodes the ordinary pass had to clip
	Clipped int
	// nodes that mix both passes
	Blended int
	// nodes taken entirely from the perceptual pass
	Perceptual int
}

// Blend combines the results of the ordinary and perceptual passes, keyed by
// canonical grid index, into a single canonically ordered list. A nil
// perceptual map uses the ordinary pass everywhere.
func Blend(n int, b Boundary, ordinary, perceptual map[int]oracle.Result) (ans []types.Coordinate, stats Stats, err error) {
	total := n * n * n
	ans = make([]types.Coordinate, total)
	for idx := range total {
		r, g, bl := grid.Unflatten(n, idx)
		w := 0.0
		if perceptual != nil {
			w = b.Weight(r, g, bl)
		}
		var o, p oracle.Result
		var found bool
		if w < 1 {
			if o, found = ordinary[idx]; !found {
				return nil, stats, fmt.Errorf("%w: no ordinary result for node (%d, %d, %d)", lut.ErrCount, r, g, bl)
			}
			if o.Clipped {
				stats.Clipped++
			}
		}
		if w > 0 {
			if p, found = perceptual[idx]; !found {
				return nil, stats, fmt.Errorf("%w: no perceptual result for node (%d, %d, %d)", lut.ErrCount, r, g, bl)
			}
		}
		switch {
		case w == 0:
			ans[idx] = o.Coord
		case w == 1:
			ans[idx] = p.Coord
			stats.Perceptual++
		default:
			if !o.Coord.Compatible(p.Coord) {
				return nil, stats, fmt.Errorf("cannot blend %s with %s at node (%d, %d, %d)", o.Coord.Space, p.Coord.Space, r, g, bl)
			}
			c := o.Coord
			for ch := range c.Len() {
				c.V[ch] = o.Coord.V[ch]*(1-w) + p.Coord.V[ch]*w
			}
			ans[idx] = c
			stats.Blended++
		}
	}
	return
}
