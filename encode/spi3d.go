package encode

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/types"
)

func encode_spi3d(w *bufio.Writer, t *lut.Table, cfg *config) error {
	n := t.Size
	fmt.Fprintf(w, "SPILUT 1.0\n3 3\n%d %d %d\n", n, n, n)
	order, err := traversal(n, types.SPI3D)
	if err != nil {
		return err
	}
	for _, idx := range order {
		v := t.Node(idx[0], idx[1], idx[2])
		fmt.Fprintf(w, "%d %d %d %s %s %s\n", idx[0], idx[1], idx[2], fmt_float(v[0]), fmt_float(v[1]), fmt_float(v[2]))
	}
	return nil
}

func decode_spi3d(r io.Reader) (*lut.Table, error) {
	var t *lut.Table
	header := 0
	seen := 0
	err := lines(r, func(lnum int, line string, fields []string) error {
		switch header {
		case 0:
			if fields[0] != "SPILUT" {
				return fmt.Errorf("%w: not a SPILUT file", ErrMalformed)
			}
			header++
			return nil
		case 1:
			if len(fields) != 2 || fields[0] != "3" || fields[1] != "3" {
				return fmt.Errorf("%w: line %d: only 3D LUTs with three output channels are supported", ErrMalformed, lnum)
			}
			header++
			return nil
		case 2:
			v, err := parse_floats(lnum, fields)
			if err != nil {
				return err
			}
			if len(v) != 3 || v[0] != v[1] || v[1] != v[2] {
				return fmt.Errorf("%w: line %d: grid must be a cube", ErrMalformed, lnum)
			}
			if t, err = lut.New(int(v[0]), types.DeviceRGB, types.DeviceRGB); err != nil {
				return err
			}
			header++
			return nil
		}
		v, err := parse_floats(lnum, fields)
		if err != nil {
			return err
		}
		if len(v) != 6 {
			return fmt.Errorf("%w: line %d: expected six values, found %d", ErrMalformed, lnum, len(v))
		}
		var idx [3]int
		for i := range 3 {
			idx[i] = int(v[i])
			if float64(idx[i]) != v[i] || idx[i] < 0 || idx[i] >= t.Size {
				return fmt.Errorf("%w: line %d: invalid grid index %v", ErrMalformed, lnum, v[i])
			}
		}
		t.CLUT[t.Offset(idx[0], idx[1], idx[2])] = types.RGB(v[3], v[4], v[5])
		seen++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: truncated header", ErrMalformed)
	}
	if seen != t.Len() {
		return nil, fmt.Errorf("%w: found %d entries for size %d", lut.ErrCount, seen, t.Size)
	}
	return t, nil
}
