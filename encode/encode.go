// Package encode writes and reads 3D lookup tables in the file formats
// understood by video processors, color grading software and display
// hardware.
package encode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

var ErrUnknownFormat = errors.New("encode: unknown LUT format")
var ErrMalformed = errors.New("encode: malformed LUT file")

type ImageLayout int

const (
	// N pixels wide and N² tall, one N row block per red plane
	Vertical ImageLayout = iota
	// N² pixels wide and N tall, one N column block per blue plane
	Horizontal
)

type Container int

const (
	PNG Container = iota
	TIFF
)

type config struct {
	input_bits, output_bits int
	title, creator, owner   string
	filename                string
	created                 time.Time
	layout                  ImageLayout
	image_bits              int
	container               Container
	encoding                grid.InputEncoding
}

type Option func(*config)

// InputBits sets the bit depth of the 3dl shaper line, defaults to 10.
func InputBits(bits int) Option { return func(c *config) { c.input_bits = bits } }

// OutputBits sets the integer precision of 3dl (default 12) and mga (default
// 16) values.
func OutputBits(bits int) Option { return func(c *config) { c.output_bits = bits } }

func Title(title string) Option     { return func(c *config) { c.title = title } }
func Creator(creator string) Option { return func(c *config) { c.creator = creator } }
func Owner(owner string) Option     { return func(c *config) { c.owner = owner } }

// Filename is recorded in the mga header and is the default title.
func Filename(name string) Option { return func(c *config) { c.filename = name } }

func Created(t time.Time) Option { return func(c *config) { c.created = t } }

func Layout(layout ImageLayout) Option { return func(c *config) { c.layout = layout } }

// ImageBits sets the bits per channel of image LUTs, 8 or 16 (the default).
func ImageBits(bits int) Option { return func(c *config) { c.image_bits = bits } }

func ImageContainer(container Container) Option { return func(c *config) { c.container = container } }

// InputEncoding sets the signal range the input columns of eeColor files are
// written for.
func InputEncoding(e grid.InputEncoding) Option { return func(c *config) { c.encoding = e } }

func (c *config) bits(f types.Format) (in, out int) {
	in, out = c.input_bits, c.output_bits
	if in <= 0 {
		in = 10
	}
	if out <= 0 {
		out = grid.IfElse(f == types.MGA, 16, 12)
	}
	return
}

// Encode writes t to w in format f, titled with t.Title unless opts say
// otherwise. Nothing is written if the format is unknown or t cannot be
// represented in it.
func Encode(w io.Writer, t *lut.Table, f types.Format, opts ...Option) (err error) {
	cfg := config{image_bits: 16, created: time.Now(), title: t.Title}
	for _, o := range opts {
		o(&cfg)
	}
	if !f.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if err = t.Validate(); err != nil {
		return err
	}
	if t.OutputSpace.Channels() != 3 {
		return fmt.Errorf("cannot encode a LUT with %d output channels as %s", t.OutputSpace.Channels(), f)
	}
	// file formats only store the CLUT
	if !t.IsPlain() {
		if t, err = t.Bake(t.Size, lut.Tetrahedral); err != nil {
			return err
		}
	}
	if f == types.IMAGE {
		return encode_image(w, t, &cfg)
	}
	bw := bufio.NewWriter(w)
	switch f {
	case types.CUBE:
		err = encode_cube(bw, t, &cfg)
	case types.THREEDL:
		err = encode_3dl(bw, t, &cfg)
	case types.SPI3D:
		err = encode_spi3d(bw, t, &cfg)
	case types.EECOLOR:
		err = encode_eecolor(bw, t, &cfg)
	case types.MGA:
		err = encode_mga(bw, t, &cfg)
	}
	if err == nil {
		err = bw.Flush()
	}
	return
}

// Decode reads a table in format f from r. The returned CLUT is always in
// canonical order.
func Decode(r io.Reader, f types.Format) (ans *lut.Table, err error) {
	switch f {
	case types.CUBE:
		ans, err = decode_cube(r)
	case types.THREEDL:
		ans, err = decode_3dl(r)
	case types.SPI3D:
		ans, err = decode_spi3d(r)
	case types.EECOLOR:
		ans, err = decode_eecolor(r)
	case types.MGA:
		ans, err = decode_mga(r)
	case types.IMAGE:
		ans, err = decode_image(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s LUT: %w", f, err)
	}
	return ans, ans.Validate()
}

// traversal returns the canonical (r, g, b) indices of every node of an n
// sized grid in the order format f stores them.
func traversal(n int, f types.Format) ([][3]int, error) {
	order, err := grid.OrderFor(f)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(n, order)
	if err != nil {
		return nil, err
	}
	return g.Index, nil
}

func quantize(v float64, maxval int) int {
	return int(math.Round(max(0, min(v, 1)) * float64(maxval)))
}

func fmt_float(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// lines yields the whitespace separated fields of every non-empty line of r
// along with its 1-based line number.
func lines(r io.Reader, f func(lnum int, line string, fields []string) error) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lnum := 0
	for s.Scan() {
		lnum++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if err := f(lnum, line, strings.Fields(line)); err != nil {
			return err
		}
	}
	return s.Err()
}

func parse_floats(lnum int, fields []string) ([]float64, error) {
	ans := make([]float64, len(fields))
	for i, x := range fields {
		v, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %#v is not a number", ErrMalformed, lnum, x)
		}
		ans[i] = v
	}
	return ans, nil
}

// cube_root returns n such that n³ == count or an error wrapping lut.ErrCount.
func cube_root(count int) (int, error) {
	n := int(math.Round(math.Cbrt(float64(count))))
	if n < 2 || n*n*n != count {
		return 0, fmt.Errorf("%w: %d values do not form a cube", lut.ErrCount, count)
	}
	return n, nil
}

// scatter builds a canonical table from values stored in the traversal order
// of format f.
func scatter(n int, f types.Format, values [][3]float64) (*lut.Table, error) {
	if len(values) != n*n*n {
		return nil, fmt.Errorf("%w: found %d values for size %d", lut.ErrCount, len(values), n)
	}
	order, err := traversal(n, f)
	if err != nil {
		return nil, err
	}
	t, err := lut.New(n, types.DeviceRGB, types.DeviceRGB)
	if err != nil {
		return nil, err
	}
	for p, idx := range order {
		v := values[p]
		t.CLUT[t.Offset(idx[0], idx[1], idx[2])] = types.RGB(v[0], v[1], v[2])
	}
	return t, nil
}
