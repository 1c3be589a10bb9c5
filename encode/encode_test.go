package encode

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/grid"
	"github.com/kovidgoyal/lutsynth/lut"
	"github.com/kovidgoyal/lutsynth/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ = fmt.Print

func identity(t *testing.T, n int) *lut.Table {
	tbl, err := lut.Identity(n)
	require.NoError(t, err)
	return tbl
}

func TestRoundTrip(t *testing.T) {
	tbl := identity(t, 9)
	for _, tc := range []struct {
		name      string
		format    types.Format
		opts      []Option
		tolerance float64
	}{
		{"cube", types.CUBE, nil, 1e-6},
		{"3dl", types.THREEDL, nil, 0.5 / 4095},
		{"3dl-16", types.THREEDL, []Option{OutputBits(16)}, 0.5 / 65535},
		{"spi3d", types.SPI3D, nil, 1e-6},
		{"eeColor", types.EECOLOR, nil, 1e-5},
		{"mga", types.MGA, nil, 0.5 / 65535},
		{"png-8", types.IMAGE, []Option{ImageBits(8)}, 0.5 / 255},
		{"png-16", types.IMAGE, nil, 0.5 / 65535},
		{"png-horizontal", types.IMAGE, []Option{Layout(Horizontal)}, 0.5 / 65535},
		{"tiff-16", types.IMAGE, []Option{ImageContainer(TIFF)}, 0.5 / 65535},
		{"tiff-horizontal-8", types.IMAGE, []Option{ImageContainer(TIFF), ImageBits(8), Layout(Horizontal)}, 0.5 / 255},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tbl, tc.format, tc.opts...))
			got, err := Decode(bytes.NewReader(buf.Bytes()), tc.format)
			require.NoError(t, err)
			if tc.format == types.EECOLOR {
				require.Equal(t, 65, got.Size)
				require.True(t, got.Shell)
				got, err = got.Resample(tbl.Size, false, lut.Trilinear)
				require.NoError(t, err)
			}
			require.Equal(t, tbl.Size, got.Size)
			for i, c := range tbl.CLUT {
				for ch := range 3 {
					require.InDelta(t, c.V[ch], got.CLUT[i].V[ch], tc.tolerance, "node: %d channel: %d", i, ch)
				}
			}
		})
	}
}

func TestCubeText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, identity(t, 2), types.CUBE, Title("test \"lut\""), Creator("lutgen 1.0")))
	expected := `TITLE "test \"lut\""
# Created with lutgen 1.0
LUT_3D_SIZE 2
DOMAIN_MIN 0.0 0.0 0.0
DOMAIN_MAX 1.0 1.0 1.0

0.000000 0.000000 0.000000
1.000000 0.000000 0.000000
0.000000 1.000000 0.000000
1.000000 1.000000 0.000000
0.000000 0.000000 1.000000
1.000000 0.000000 1.000000
0.000000 1.000000 1.000000
1.000000 1.000000 1.000000
`
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Fatalf("Unexpected cube output (-want +got):\n%s", diff)
	}
	got, err := Decode(&buf, types.CUBE)
	require.NoError(t, err)
	assert.Equal(t, `test "lut"`, got.Title)
}

func Test3dlText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, identity(t, 2), types.THREEDL))
	expected := `# INPUT RANGE: 10
# OUTPUT RANGE: 12
0 1023
   0    0    0
   0    0 4095
   0 4095    0
   0 4095 4095
4095    0    0
4095    0 4095
4095 4095    0
4095 4095 4095
`
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Fatalf("Unexpected 3dl output (-want +got):\n%s", diff)
	}
	// a three node shaper line looks like a row
	buf.Reset()
	require.NoError(t, Encode(&buf, identity(t, 3), types.THREEDL, InputBits(12)))
	assert.Contains(t, buf.String(), "\n0 2048 4095\n")
	got, err := Decode(&buf, types.THREEDL)
	require.NoError(t, err)
	assert.True(t, got.Equal(identity(t, 3), 1e-3))
}

func TestSpi3dAndEeColorText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, identity(t, 2), types.SPI3D))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, []string{"SPILUT 1.0", "3 3", "2 2 2", "0 0 0 0.000000 0.000000 0.000000", "0 0 1 0.000000 0.000000 1.000000"}, lines[:5])

	buf.Reset()
	require.NoError(t, Encode(&buf, identity(t, 2), types.EECOLOR))
	lines = strings.Split(buf.String(), "\r\n")
	require.Len(t, lines, 65*65*65+1)
	assert.Equal(t, "", lines[len(lines)-1])
	assert.Equal(t, "0.000000 0.000000 0.000000 0.000000 0.000000 0.000000", lines[0])
	// green varies fastest and the last node repeats the one before it
	assert.Equal(t, "0.000000 0.015873 0.000000 0.000000 0.015873 0.000000", lines[1])
	assert.Equal(t, "0.000000 1.015873 0.000000 0.000000 1.000000 0.000000", lines[64])
	assert.Equal(t, "0.000000 1.000000 0.000000 0.000000 1.000000 0.000000", lines[63])

	buf.Reset()
	require.NoError(t, Encode(&buf, identity(t, 2), types.EECOLOR, InputEncoding(grid.XvYCC)))
	lines = strings.Split(buf.String(), "\r\n")
	assert.Equal(t, "0.000000 -0.016129 -0.016129 0.000000 0.000000 0.000000", lines[0])
	assert.Equal(t, "0.000000 0.000000 -0.016129 0.000000 0.015873 0.000000", lines[1])
}

func TestEncodeBakesPipeline(t *testing.T) {
	const n = 5
	tbl := identity(t, n)
	m := colorconv.Diagonal(colorconv.Vec3{0.5, 0.75, 1})
	tbl.Matrix = &m
	tbl.Input = [][]float64{{0, 1}, {0, 0.5, 1}, {0, 0.25, 1}}
	for _, f := range []types.Format{types.CUBE, types.THREEDL, types.SPI3D, types.MGA, types.IMAGE} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, tbl, f, OutputBits(16)))
		got, err := Decode(&buf, f)
		require.NoError(t, err)
		for r := range n {
			for g := range n {
				for b := range n {
					v := [3]float64{float64(r) / (n - 1), float64(g) / (n - 1), float64(b) / (n - 1)}
					want := tbl.Evaluate(v, lut.Tetrahedral)
					have := got.Node(r, g, b)
					for ch := range 3 {
						require.InDelta(t, want[ch], have[ch], 1e-4, "%s node: %v", f, v)
					}
				}
			}
		}
	}
	// the table itself is left alone
	assert.NotNil(t, tbl.Matrix)
}

func TestMgaText(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, Encode(&buf, identity(t, 2), types.MGA, Filename("/tmp/some/display.mga"), Owner("me"), Created(created)))
	lines := strings.Split(buf.String(), "\n")
	expected := []string{
		"#HEADER", "#filename: display.mga", "#type: 3D cube file", "#format: 1.00",
		"#created: 05 March 2024", "#owner: me", "#title: display", "#END", "",
		"channel 3d", "in 8", "out 65536", "", "format lut", "", "values\tred\tgreen\tblue",
		"0\t0\t0\t0", "1\t0\t0\t65535",
	}
	if diff := cmp.Diff(expected, lines[:len(expected)]); diff != "" {
		t.Fatalf("Unexpected mga output (-want +got):\n%s", diff)
	}
	got, err := Decode(&buf, types.MGA)
	require.NoError(t, err)
	assert.Equal(t, "display", got.Title)
}

func TestImageDimensions(t *testing.T) {
	for _, layout := range []ImageLayout{Vertical, Horizontal} {
		var buf bytes.Buffer
		tbl := identity(t, 4)
		require.NoError(t, Encode(&buf, tbl, types.IMAGE, Layout(layout)))
		got, err := Decode(&buf, types.IMAGE)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Size)
		assert.True(t, got.Equal(tbl, 1e-4))
	}
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, identity(t, 2), types.IMAGE, ImageBits(12)))
	assert.Equal(t, 0, buf.Len())
}

func TestErrors(t *testing.T) {
	var buf bytes.Buffer
	tbl := identity(t, 3)
	for _, f := range []types.Format{types.UNKNOWN, types.Format(99)} {
		err := Encode(&buf, tbl, f)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownFormat))
		assert.Equal(t, 0, buf.Len())
		_, err = Decode(&buf, f)
		assert.True(t, errors.Is(err, ErrUnknownFormat))
	}
	cmyk, err := lut.New(3, types.DeviceRGB, types.DeviceCMYK)
	require.NoError(t, err)
	assert.Error(t, Encode(&buf, cmyk, types.CUBE))
	assert.Equal(t, 0, buf.Len())

	short := identity(t, 3)
	short.CLUT = short.CLUT[:20]
	err = Encode(&buf, short, types.CUBE)
	assert.True(t, errors.Is(err, lut.ErrCount))

	_, err = Decode(strings.NewReader("LUT_3D_SIZE 2\n0 0 0\n1 1 1\n"), types.CUBE)
	assert.True(t, errors.Is(err, lut.ErrCount))
	_, err = Decode(strings.NewReader("LUT_3D_SIZE 2\n0 0 x\n"), types.CUBE)
	assert.True(t, errors.Is(err, ErrMalformed))
	_, err = Decode(strings.NewReader("not a lut"), types.SPI3D)
	assert.True(t, errors.Is(err, ErrMalformed))
	_, err = Decode(strings.NewReader("0 0 0 0 0 0\n"), types.EECOLOR)
	assert.True(t, errors.Is(err, lut.ErrCount))
}
