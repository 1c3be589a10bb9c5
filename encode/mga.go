package encode

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/types"
)

// Pandora mga files
func encode_mga(w *bufio.Writer, t *lut.Table, cfg *config) error {
	_, out_bits := cfg.bits(types.MGA)
	if out_bits > 31 {
		return fmt.Errorf("unsupported mga bit depth: %d", out_bits)
	}
	name := ""
	if cfg.filename != "" {
		name = filepath.Base(cfg.filename)
	}
	title := cfg.title
	if title == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	fmt.Fprintf(w, "#HEADER\n#filename: %s\n#type: 3D cube file\n#format: 1.00\n", name)
	fmt.Fprintf(w, "#created: %s\n#owner: %s\n#title: %s\n#END\n\n", cfg.created.Format("02 January 2006"), cfg.owner, title)
	out_max := 1<<out_bits - 1
	fmt.Fprintf(w, "channel 3d\nin %d\nout %d\n\nformat lut\n\nvalues\tred\tgreen\tblue\n", t.Len(), out_max+1)
	order, err := traversal(t.Size, types.MGA)
	if err != nil {
		return err
	}
	for i, idx := range order {
		v := t.Node(idx[0], idx[1], idx[2])
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", i, quantize(v[0], out_max), quantize(v[1], out_max), quantize(v[2], out_max))
	}
	return nil
}

func decode_mga(r io.Reader) (*lut.Table, error) {
	count, out := 0, 0
	in_values := false
	title := ""
	var values [][3]float64
	err := lines(r, func(lnum int, line string, fields []string) (err error) {
		if strings.HasPrefix(line, "#") {
			if rest, found := strings.CutPrefix(line, "#title:"); found {
				title = strings.TrimSpace(rest)
			}
			return nil
		}
		if in_values {
			v, err := parse_floats(lnum, fields)
			if err != nil {
				return err
			}
			if len(v) != 4 || int(v[0]) != len(values) {
				return fmt.Errorf("%w: line %d: expected entry %d", ErrMalformed, lnum, len(values))
			}
			values = append(values, [3]float64{v[1], v[2], v[3]})
			return nil
		}
		atoi := func() (int, error) {
			if len(fields) != 2 {
				return 0, fmt.Errorf("%w: line %d: invalid %s", ErrMalformed, lnum, fields[0])
			}
			return strconv.Atoi(fields[1])
		}
		switch fields[0] {
		case "channel":
			if len(fields) != 2 || fields[1] != "3d" {
				return fmt.Errorf("%w: line %d: only 3d mga files are supported", ErrMalformed, lnum)
			}
		case "in":
			count, err = atoi()
		case "out":
			out, err = atoi()
		case "format":
		case "values":
			in_values = true
		default:
			return fmt.Errorf("%w: line %d: unknown keyword %#v", ErrMalformed, lnum, fields[0])
		}
		return
	})
	if err != nil {
		return nil, err
	}
	if out < 2 {
		return nil, fmt.Errorf("%w: missing or invalid output range", ErrMalformed)
	}
	size, err := cube_root(count)
	if err != nil {
		return nil, err
	}
	out_max := float64(out - 1)
	for i := range values {
		for ch := range 3 {
			values[i][ch] /= out_max
		}
	}
	t, err := scatter(size, types.MGA, values)
	if err != nil {
		return nil, err
	}
	t.Title = title
	return t, nil
}
