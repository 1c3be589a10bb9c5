package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

var _ = fmt.Print

// Format is a 3D LUT file format.
type Format int

// LUT file formats.
const (
	UNKNOWN Format = iota
	CUBE
	THREEDL
	SPI3D
	EECOLOR
	MGA
	IMAGE
)

var FormatExts = map[string]Format{
	"cube":  CUBE,
	"3dl":   THREEDL,
	"spi3d": SPI3D,
	"txt":   EECOLOR,
	"mga":   MGA,
	"png":   IMAGE,
	"tif":   IMAGE,
	"tiff":  IMAGE,
}

var formatNames = map[Format]string{
	CUBE:    "cube",
	THREEDL: "3dl",
	SPI3D:   "spi3d",
	EECOLOR: "eeColor",
	MGA:     "mga",
	IMAGE:   "image",
}

func (f Format) String() string {
	if ans, ok := formatNames[f]; ok {
		return ans
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// ParseFormat accepts either a format name as returned by String() or a file
// extension from FormatExts. Matching is case insensitive.
func ParseFormat(name string) (Format, error) {
	q := strings.ToLower(strings.TrimPrefix(name, "."))
	for f, n := range formatNames {
		if strings.ToLower(n) == q {
			return f, nil
		}
	}
	if f, ok := FormatExts[q]; ok {
		return f, nil
	}
	return UNKNOWN, fmt.Errorf("unknown LUT format: %#v", name)
}

// FormatFromFilename returns the format implied by the extension of path.
func FormatFromFilename(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return UNKNOWN, fmt.Errorf("no file extension in %#v to determine LUT format from", path)
	}
	return ParseFormat(ext)
}

// ColorSpace tags every Coordinate.
type ColorSpace int

const (
	DeviceRGB ColorSpace = iota
	DeviceCMYK
	XYZ
	Lab
)

var colorSpaceNames = map[ColorSpace]string{
	DeviceRGB:  "RGB",
	DeviceCMYK: "CMYK",
	XYZ:        "XYZ",
	Lab:        "Lab",
}

func (c ColorSpace) String() string {
	if ans, ok := colorSpaceNames[c]; ok {
		return ans
	}
	return fmt.Sprintf("ColorSpace(%d)", int(c))
}

func (c ColorSpace) Channels() int {
	if c == DeviceCMYK {
		return 4
	}
	return 3
}

func (c ColorSpace) IsConnectionSpace() bool { return c == XYZ || c == Lab }

// Coordinate is a normalized color value. Device values are in [0,1], XYZ
// values are relative to a white with Y=1 and Lab values are normalized as
// L/100, (a+128)/256, (b+128)/256 so that 0.5 is neutral.
type Coordinate struct {
	Space ColorSpace
	V     [4]float64
}

func RGB(r, g, b float64) Coordinate { return Coordinate{Space: DeviceRGB, V: [4]float64{r, g, b}} }
func CMYK(c, m, y, k float64) Coordinate {
	return Coordinate{Space: DeviceCMYK, V: [4]float64{c, m, y, k}}
}
func XYZValue(x, y, z float64) Coordinate { return Coordinate{Space: XYZ, V: [4]float64{x, y, z}} }

// Span of the normalized a* and b* axes, the legacy 16-bit ICC encoding
// with 0x8000 as neutral.
const LAB_AB_RANGE = 256

// LabValue creates a normalized Lab coordinate from CIELAB values.
func LabValue(L, a, b float64) Coordinate {
	return Coordinate{Space: Lab, V: [4]float64{L / 100, (a + 128) / LAB_AB_RANGE, (b + 128) / LAB_AB_RANGE}}
}

// CIELAB returns the un-normalized L*a*b* values of a Lab coordinate.
func (c Coordinate) CIELAB() (L, a, b float64) {
	return c.V[0] * 100, c.V[1]*LAB_AB_RANGE - 128, c.V[2]*LAB_AB_RANGE - 128
}

func (c Coordinate) Len() int                     { return c.Space.Channels() }
func (c Coordinate) Values() []float64            { return c.V[:c.Len()] }
func (c Coordinate) Triple() [3]float64           { return [3]float64{c.V[0], c.V[1], c.V[2]} }
func (c Coordinate) Compatible(o Coordinate) bool { return c.Space == o.Space }

func (c Coordinate) String() string {
	return fmt.Sprintf("%s%v", c.Space, c.Values())
}

// Intent is an ICC rendering intent.
type Intent int

const (
	Perceptual Intent = iota
	RelativeColorimetric
	Saturation
	AbsoluteColorimetric
)

var intentNames = map[Intent]string{
	Perceptual:           "perceptual",
	RelativeColorimetric: "relative",
	Saturation:           "saturation",
	AbsoluteColorimetric: "absolute",
}

func (i Intent) String() string { return intentNames[i] }

func ParseIntent(name string) (Intent, error) {
	for k, v := range intentNames {
		if v == strings.ToLower(name) {
			return k, nil
		}
	}
	return Perceptual, fmt.Errorf("unknown rendering intent: %#v", name)
}

// Direction selects which table of a profile a lookup goes through.
type Direction int

const (
	// Forward is device to connection space through the A2B table
	Forward Direction = iota
	// Backward is connection space to device through the B2A table
	Backward
	// InverseForward is connection space to device by inverting the A2B table
	InverseForward
	// InverseBackward is device to connection space by inverting the B2A table
	InverseBackward
)

var directionNames = map[Direction]string{
	Forward:         "f",
	Backward:        "b",
	InverseForward:  "if",
	InverseBackward: "ib",
}

func (d Direction) String() string { return directionNames[d] }

// ToDevice reports whether lookups in this direction produce device values.
func (d Direction) ToDevice() bool { return d == Backward || d == InverseForward }
