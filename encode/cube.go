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

func encode_cube(w *bufio.Writer, t *lut.Table, cfg *config) error {
	if cfg.title != "" {
		fmt.Fprintf(w, "TITLE %s\n", strconv.Quote(cfg.title))
	}
	if cfg.creator != "" {
		fmt.Fprintf(w, "# Created with %s\n", cfg.creator)
	}
	fmt.Fprintf(w, "LUT_3D_SIZE %d\n", t.Size)
	fmt.Fprintf(w, "DOMAIN_MIN 0.0 0.0 0.0\n")
	fmt.Fprintf(w, "DOMAIN_MAX 1.0 1.0 1.0\n\n")
	order, err := traversal(t.Size, types.CUBE)
	if err != nil {
		return err
	}
	for _, idx := range order {
		v := t.Node(idx[0], idx[1], idx[2])
		fmt.Fprintf(w, "%s %s %s\n", fmt_float(v[0]), fmt_float(v[1]), fmt_float(v[2]))
	}
	return nil
}

func decode_cube(r io.Reader) (*lut.Table, error) {
	size := 0
	title := ""
	var values [][3]float64
	var dmin, dmax = [3]float64{0, 0, 0}, [3]float64{1, 1, 1}
	domain := func(lnum int, fields []string, dest *[3]float64) error {
		v, err := parse_floats(lnum, fields[1:])
		if err != nil {
			return err
		}
		if len(v) != 3 {
			return fmt.Errorf("%w: line %d: domain needs three values", ErrMalformed, lnum)
		}
		copy(dest[:], v)
		return nil
	}
	err := lines(r, func(lnum int, line string, fields []string) (err error) {
		switch fields[0] {
		case "TITLE":
			if title, err = strconv.Unquote(strings.TrimSpace(line[len("TITLE"):])); err != nil {
				return fmt.Errorf("%w: line %d: invalid title", ErrMalformed, lnum)
			}
		case "LUT_3D_SIZE":
			if len(fields) != 2 {
				return fmt.Errorf("%w: line %d: invalid LUT_3D_SIZE", ErrMalformed, lnum)
			}
			if size, err = strconv.Atoi(fields[1]); err != nil || size < 2 {
				return fmt.Errorf("%w: line %d: invalid LUT_3D_SIZE: %s", ErrMalformed, lnum, fields[1])
			}
		case "LUT_1D_SIZE":
			return fmt.Errorf("%w: line %d: 1D cube files are not supported", ErrMalformed, lnum)
		case "DOMAIN_MIN":
			return domain(lnum, fields, &dmin)
		case "DOMAIN_MAX":
			return domain(lnum, fields, &dmax)
		default:
			if strings.HasPrefix(line, "#") {
				return nil
			}
			v, err := parse_floats(lnum, fields)
			if err != nil {
				return err
			}
			if len(v) != 3 {
				return fmt.Errorf("%w: line %d: expected three values, found %d", ErrMalformed, lnum, len(v))
			}
			values = append(values, [3]float64{v[0], v[1], v[2]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: no LUT_3D_SIZE", ErrMalformed)
	}
	t, err := scatter(size, types.CUBE, values)
	if err != nil {
		return nil, err
	}
	t.Title, t.DomainMin, t.DomainMax = title, dmin, dmax
	return t, nil
}
