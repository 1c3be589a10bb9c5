// Package smooth reduces isolated jumps between neighboring CLUT nodes, such
// as those left behind by gamut clipping, without disturbing the neutral
// axis or the darkest colors.
package smooth

import (
	"context"
	"fmt"

	"github.com/kovidgoyal/go-parallel"
	"github.com/kovidgoyal/lutsynth/lut"
)

var _ = fmt.Print

// Nodes whose channels sum to less than this are never modified
const DARK_THRESHOLD = 3 * 0.03125

type config struct {
	lab_indexed bool
	ctx         context.Context
}

type Option func(*config)

// LabIndexed indicates the table is indexed by normalized Lab rather than
// device or XYZ values, which moves the neutral axis to the center of every
// plane.
func LabIndexed(enabled bool) Option {
	return func(c *config) { c.lab_indexed = enabled }
}

// WithContext makes Apply check ctx for cancellation before every plane.
func WithContext(ctx context.Context) Option {
	return func(c *config) { c.ctx = ctx }
}

type neighbor struct {
	dy, dx int
	weight float64
}

var box = []neighbor{
	{-1, -1, 1. / 3}, {-1, 0, 2. / 3}, {-1, 1, 1. / 3},
	{0, -1, 2. / 3}, {0, 1, 2. / 3},
	{1, -1, 1. / 3}, {1, 0, 2. / 3}, {1, 1, 1. / 3},
}

type filter struct {
	size        int
	lab_indexed bool
}

func (f filter) is_neutral(i, y, x int) bool {
	if f.lab_indexed {
		c := f.size / 2
		return f.size%2 == 1 && x == c && y == c
	}
	return x == i && y == i
}

// smoothed returns the new value of the node at (y, x) in plane i given a
// snapshot of the whole plane.
func (f filter) smoothed(plane [][3]float64, i, y, x int) (ans [3]float64) {
	n := f.size
	last := n - 1
	orig := plane[y*n+x]
	if orig[0]+orig[1]+orig[2] < DARK_THRESHOLD || f.is_neutral(i, y, x) {
		return orig
	}
	sum, count := orig, 1
	add := func(dy, dx int, w float64) {
		nb := plane[(y+dy)*n+x+dx]
		for ch := range 3 {
			sum[ch] += nb[ch]*w + orig[ch]*(1-w)
		}
		count++
	}
	if x == 0 || x == last || y == 0 || y == last {
		w := 0.5
		if f.lab_indexed && i > n/2 {
			w = 0.25
		}
		if y > 0 && y < last {
			add(-1, 0, w)
			add(1, 0, w)
		}
		if x > 0 && x < last {
			add(0, -1, w)
			add(0, 1, w)
		}
	} else {
		for _, nb := range box {
			add(nb.dy, nb.dx, nb.weight)
		}
	}
	for ch := range 3 {
		ans[ch] = max(0, min(sum[ch]/float64(count), 1))
	}
	return
}

// rounding noise from averaging identical values is not a change
const TOLERANCE = 1e-12

func same(a, b [3]float64) bool {
	for i := range 3 {
		if d := a[i] - b[i]; d > TOLERANCE || d < -TOLERANCE {
			return false
		}
	}
	return true
}

// Apply smooths the CLUT of t in place, one plane of constant first channel
// index at a time, and returns the number of nodes that changed.
func Apply(t *lut.Table, opts ...Option) (changed int, err error) {
	cfg := config{ctx: context.Background()}
	for _, o := range opts {
		o(&cfg)
	}
	if err = t.Validate(); err != nil {
		return
	}
	n := t.Size
	if n < 3 {
		return
	}
	f := filter{size: n, lab_indexed: cfg.lab_indexed}
	plane := make([][3]float64, n*n)
	row_changes := make([]int, n)
	for i := range n {
		if err = cfg.ctx.Err(); err != nil {
			return changed, err
		}
		for y := range n {
			for x := range n {
				plane[y*n+x] = t.Node(i, y, x)
			}
		}
		clear(row_changes)
		rows := func(start, limit int) {
			for y := start; y < limit; y++ {
				for x := range n {
					v := f.smoothed(plane, i, y, x)
					if !same(v, plane[y*n+x]) {
						c := &t.CLUT[t.Offset(i, y, x)]
						c.V[0], c.V[1], c.V[2] = v[0], v[1], v[2]
						row_changes[y]++
					}
				}
			}
		}
		if err = parallel.Run_in_parallel_over_range(0, rows, 0, n); err != nil {
			return changed, fmt.Errorf("failed to smooth plane %d: %w", i, err)
		}
		for _, c := range row_changes {
			changed += c
		}
	}
	return
}
