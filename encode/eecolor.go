package encode

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/types"
)

// eeColor tables always have 65 nodes per axis of which only the inner 64 are
// addressable. The input columns are written unclamped, so the shell reads
// past 1.
func encode_eecolor(w *bufio.Writer, t *lut.Table, cfg *config) (err error) {
	if t.Size != grid.EECOLOR_RESOLUTION || !t.Shell {
		if t, err = t.Resample(grid.EECOLOR_RESOLUTION, true, lut.Tetrahedral); err != nil {
			return err
		}
	}
	order, err := grid.OrderFor(types.EECOLOR)
	if err != nil {
		return err
	}
	g, err := grid.New(t.Size, order, grid.InteriorRemap(true), grid.Encoding(cfg.encoding))
	if err != nil {
		return err
	}
	for _, idx := range g.Index {
		var in [3]float64
		for ch := range in {
			in[ch] = grid.Remap(idx[ch], t.Size, ch, cfg.encoding)
		}
		v := t.Node(idx[0], idx[1], idx[2])
		fmt.Fprintf(w, "%s %s %s %s %s %s\r\n", fmt_float(in[0]), fmt_float(in[1]), fmt_float(in[2]), fmt_float(v[0]), fmt_float(v[1]), fmt_float(v[2]))
	}
	return nil
}

func decode_eecolor(r io.Reader) (*lut.Table, error) {
	var values [][3]float64
	err := lines(r, func(lnum int, line string, fields []string) error {
		v, err := parse_floats(lnum, fields)
		if err != nil {
			return err
		}
		if len(v) != 6 {
			return fmt.Errorf("%w: line %d: expected six values, found %d", ErrMalformed, lnum, len(v))
		}
		values = append(values, [3]float64{v[3], v[4], v[5]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	size, err := cube_root(len(values))
	if err != nil {
		return nil, err
	}
	t, err := scatter(size, types.EECOLOR, values)
	if err != nil {
		return nil, err
	}
	t.Shell = true
	return t, nil
}
