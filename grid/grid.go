package grid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

var ErrDegenerate = errors.New("grid: degenerate grid resolution")

// Largest resolution used when a table is re-derived by interpolating an
// existing table rather than inverting the forward transform
const MAX_SELF_INTERPOLATED_RESOLUTION = 23

// Fixed resolution of eeColor LUTs
const EECOLOR_RESOLUTION = 65

// Default number of coordinates per oracle call
const DEFAULT_CHUNK_SIZE = 1000

// Order gives the channel that varies in the outer, middle and inner loop.
type Order [3]int

var (
	// red slowest, blue fastest, this is also the canonical CLUT order
	OrderBlueFastest = Order{0, 1, 2}
	// blue slowest, red fastest
	OrderRedFastest = Order{2, 1, 0}
	// blue slowest, green fastest
	OrderGreenFastest = Order{2, 0, 1}
)

func (o Order) String() string {
	const names = "RGB"
	return string([]byte{names[o[0]], names[o[1]], names[o[2]]})
}

// OrderFor returns the axis order a file format stores its values in.
func OrderFor(f types.Format) (Order, error) {
	switch f {
	case types.THREEDL, types.SPI3D, types.MGA:
		return OrderBlueFastest, nil
	case types.CUBE, types.IMAGE:
		return OrderRedFastest, nil
	case types.EECOLOR:
		return OrderGreenFastest, nil
	}
	return Order{}, fmt.Errorf("no axis order for LUT format: %s", f)
}

// InputEncoding is the signal range interior remapped grids are addressed in.
type InputEncoding int

const (
	// FullRange addresses the inner size-1 nodes of every axis
	FullRange InputEncoding = iota
	// XvYCC leaves the first axis alone and skips the lowest node of the
	// other two as well, they carry the chroma of the extended gamut signal
	XvYCC
)

var inputEncodingNames = map[InputEncoding]string{FullRange: "full", XvYCC: "xvycc"}

func (e InputEncoding) String() string { return inputEncodingNames[e] }

func ParseInputEncoding(s string) (InputEncoding, error) {
	for k, v := range inputEncodingNames {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	return FullRange, fmt.Errorf("unknown input encoding: %#v", s)
}

// Remap returns the unclamped input value of node i of an interior remapped
// axis with n nodes. Values outside [0,1] address the shell.
func Remap(i, n, channel int, e InputEncoding) float64 {
	v := float64(i) / float64(n-1)
	if e == XvYCC {
		if channel == 0 {
			return v
		}
		return (v*float64(n-1) - 1) / float64(n-3)
	}
	return v * float64(n-1) / float64(n-2)
}

type config struct {
	interior_remap bool
	encoding       InputEncoding
	space          types.ColorSpace
}

type Option func(*config)

// InteriorRemap rescales every axis so that only the inner size-1 grid points
// are addressable, the outermost shell maps to the same values as the one
// inside it. This is needed for eeColor LUTs.
func InteriorRemap(enabled bool) Option {
	return func(c *config) { c.interior_remap = enabled }
}

// Encoding sets the input encoding of interior remapped grids.
func Encoding(e InputEncoding) Option {
	return func(c *config) { c.encoding = e }
}

// Space sets the color space tag of the generated coordinates, defaults to DeviceRGB.
func Space(s types.ColorSpace) Option {
	return func(c *config) { c.space = s }
}

// Grid is an ordered sampling of the unit cube. Index[p] holds the (r, g, b)
// grid indices of Coords[p].
type Grid struct {
	Size   int
	Order  Order
	Coords []types.Coordinate
	Index  [][3]int
}

func New(n int, order Order, opts ...Option) (*Grid, error) {
	cfg := config{space: types.DeviceRGB}
	for _, o := range opts {
		o(&cfg)
	}
	if n <= 1 {
		return nil, fmt.Errorf("%w: %d", ErrDegenerate, n)
	}
	if cfg.interior_remap && n <= IfElse(cfg.encoding == XvYCC, 3, 2) {
		return nil, fmt.Errorf("%w: %d is too small for interior addressing", ErrDegenerate, n)
	}
	if cfg.space.Channels() != 3 {
		return nil, fmt.Errorf("cannot sample a three dimensional grid in %s", cfg.space)
	}
	seen := [3]bool{}
	for _, c := range order {
		if c < 0 || c > 2 || seen[c] {
			return nil, fmt.Errorf("invalid grid axis order: %v", [3]int(order))
		}
		seen[c] = true
	}
	var axes [3][]float64
	for ch := range axes {
		axes[ch] = make([]float64, n)
		for i := range n {
			v := float64(i) / float64(n-1)
			if cfg.interior_remap {
				v = max(0, min(1, Remap(i, n, ch, cfg.encoding)))
			}
			axes[ch][i] = v
		}
	}
	total := n * n * n
	g := &Grid{Size: n, Order: order, Coords: make([]types.Coordinate, 0, total), Index: make([][3]int, 0, total)}
	var idx [3]int
	for a := range n {
		idx[order[0]] = a
		for b := range n {
			idx[order[1]] = b
			for c := range n {
				idx[order[2]] = c
				g.Index = append(g.Index, idx)
				g.Coords = append(g.Coords, types.Coordinate{Space: cfg.space, V: [4]float64{axes[0][idx[0]], axes[1][idx[1]], axes[2][idx[2]]}})
			}
		}
	}
	return g, nil
}

func (g *Grid) Len() int { return len(g.Coords) }

// Plane returns the half open range of samples in the outer loop iteration i.
func (g *Grid) Plane(i int) (start, end int) {
	sz := g.Size * g.Size
	return i * sz, (i + 1) * sz
}

// Canonical returns the offset of sample p in a red slowest, blue fastest
// array of size³ values.
func (g *Grid) Canonical(p int) int {
	i := g.Index[p]
	return CanonicalIndex(g.Size, i[0], i[1], i[2])
}

func CanonicalIndex(n, r, g, b int) int { return (r*n+g)*n + b }

func Unflatten(n, idx int) (r, g, b int) {
	b = idx % n
	idx /= n
	return idx / n, idx % n, b
}

// Resolution picks the grid size to use. requested wins over the size of an
// existing table, grids re-derived by self interpolation are capped.
func Resolution(requested, from_table int, self_interpolated bool) (int, error) {
	n := IfElse(requested > 0, requested, from_table)
	if self_interpolated {
		n = min(n, MAX_SELF_INTERPOLATED_RESOLUTION)
	}
	if n <= 1 {
		return 0, fmt.Errorf("%w: %d", ErrDegenerate, n)
	}
	return n, nil
}

// Chunks splits items into consecutive batches of at most size items.
func Chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DEFAULT_CHUNK_SIZE
	}
	ans := make([][]T, 0, (len(items)+size-1)/size)
	for len(items) > 0 {
		n := min(size, len(items))
		ans = append(ans, items[:n:n])
		items = items[n:]
	}
	return ans
}

func IfElse[T any](condition bool, if_val T, else_val T) T {
	if condition {
		return if_val
	}
	return else_val
}
