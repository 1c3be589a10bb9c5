package encode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/types"
)

func encode_3dl(w *bufio.Writer, t *lut.Table, cfg *config) error {
	in_bits, out_bits := cfg.bits(types.THREEDL)
	if in_bits > 31 || out_bits > 31 {
		return fmt.Errorf("unsupported 3dl bit depth: %d/%d", in_bits, out_bits)
	}
	if cfg.creator != "" {
		fmt.Fprintf(w, "# Created with %s\n", cfg.creator)
	}
	fmt.Fprintf(w, "# INPUT RANGE: %d\n", in_bits)
	fmt.Fprintf(w, "# OUTPUT RANGE: %d\n", out_bits)
	in_max, out_max := 1<<in_bits-1, 1<<out_bits-1
	shaper := make([]string, t.Size)
	step := 1 / float64(t.Size-1)
	for i := range shaper {
		shaper[i] = strconv.Itoa(quantize(float64(i)*step, in_max))
	}
	fmt.Fprintln(w, strings.Join(shaper, " "))
	pad := len(strconv.Itoa(out_max))
	order, err := traversal(t.Size, types.THREEDL)
	if err != nil {
		return err
	}
	for _, idx := range order {
		v := t.Node(idx[0], idx[1], idx[2])
		fmt.Fprintf(w, "%*d %*d %*d\n", pad, quantize(v[0], out_max), pad, quantize(v[1], out_max), pad, quantize(v[2], out_max))
	}
	return nil
}

func decode_3dl(r io.Reader) (*lut.Table, error) {
	out_bits := 0
	var rows [][]float64
	err := lines(r, func(lnum int, line string, fields []string) error {
		if strings.HasPrefix(line, "#") {
			if rest, found := strings.CutPrefix(line, "# OUTPUT RANGE:"); found {
				b, err := strconv.Atoi(strings.TrimSpace(rest))
				if err != nil || b < 1 || b > 31 {
					return fmt.Errorf("%w: line %d: invalid output range", ErrMalformed, lnum)
				}
				out_bits = b
			}
			return nil
		}
		v, err := parse_floats(lnum, fields)
		if err != nil {
			return err
		}
		if len(v) != 3 && len(rows) > 0 {
			return fmt.Errorf("%w: line %d: expected three values, found %d", ErrMalformed, lnum, len(v))
		}
		rows = append(rows, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no values", ErrMalformed)
	}
	// the shaper line has one entry per grid node, a three node shaper is
	// only recognizable by the number of rows following it
	size := 0
	if len(rows[0]) != 3 || len(rows) == 28 {
		size = len(rows[0])
		rows = rows[1:]
	} else if size, err = cube_root(len(rows)); err != nil {
		return nil, err
	}
	largest := 0.0
	for _, v := range rows {
		largest = max(largest, v[0], v[1], v[2])
	}
	if out_bits == 0 {
		// files without a range comment use the smallest common depth that fits
		out_bits = 16
		for _, b := range []int{10, 12, 14, 16} {
			if largest <= float64(int(1)<<b-1) {
				out_bits = b
				break
			}
		}
	}
	out_max := float64(int(1)<<out_bits - 1)
	values := make([][3]float64, len(rows))
	for i, v := range rows {
		for ch := range 3 {
			values[i][ch] = v[ch] / out_max
		}
	}
	return scatter(size, types.THREEDL, values)
}
