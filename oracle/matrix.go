package oracle

import (
	"context"
	"fmt"
	"math"

	"cogentcore.org/core/colors/cam/cam16"
	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/curve"
	"github.com/kovidgoyal/lutsynth/pcs"
	"github.com/kovidgoyal/lutsynth/types"
)

// Slack allowed outside [0,1] before a device value counts as clipped
const GAMUT_EPSILON = 1e-9

// MatrixDevice is a matrix/shaper display model: per channel tone response
// curves, a primaries matrix and an additive black level. It implements
// Oracle and is used as a reference device.
type MatrixDevice struct {
	matrix, inverse  colorconv.Mat3
	curves           [3]curve.Curve
	black            colorconv.Vec3
	white_scale      float64
	to_cam, from_cam colorconv.Mat3
}

var _ Oracle = (*MatrixDevice)(nil)

// NewMatrixDevice creates a device from the linear RGB -> D50 XYZ matrix, the
// tone curves of the three channels and the XYZ of the device black.
func NewMatrixDevice(matrix colorconv.Mat3, curves [3]curve.Curve, black colorconv.Vec3) (*MatrixDevice, error) {
	inv, err := matrix.Inverted()
	if err != nil {
		return nil, fmt.Errorf("device primaries: %w", err)
	}
	if black[1] >= 1 {
		return nil, fmt.Errorf("device black level %v is not darker than white", black)
	}
	for i, c := range curves {
		if c == nil {
			return nil, fmt.Errorf("no tone curve for channel %d", i)
		}
	}
	return &MatrixDevice{
		matrix: matrix, inverse: inv, curves: curves, black: black, white_scale: 1 - black[1],
		to_cam:   colorconv.ChromaticAdaptationMatrix(colorconv.D50, colorconv.D65),
		from_cam: colorconv.ChromaticAdaptationMatrix(colorconv.D65, colorconv.D50),
	}, nil
}

// NewCandidateDevice creates a device with the primaries of a working space
// candidate, gamma curves and a neutral black of luminance black_y.
func NewCandidateDevice(name string, gamma, black_y float64) (*MatrixDevice, error) {
	g, err := curve.NewGammaCurve(gamma)
	if err != nil {
		return nil, err
	}
	return NewCandidateCurveDevice(name, g, black_y)
}

// NewCandidateCurveDevice is NewCandidateDevice with the tone curve c shared
// by all three channels.
func NewCandidateCurveDevice(name string, c curve.Curve, black_y float64) (*MatrixDevice, error) {
	cand, ok := pcs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown working space: %#v", name)
	}
	m, err := cand.Matrix()
	if err != nil {
		return nil, err
	}
	return NewMatrixDevice(m, [3]curve.Curve{c, c, c}, colorconv.Neutral(colorconv.D50, black_y))
}

// SRGBDevice is a Rec. 709 primaries device with the sRGB tone curve and a
// zero black level.
func SRGBDevice() *MatrixDevice {
	c, _ := pcs.Lookup("Rec. 709")
	m, _ := c.Matrix()
	s := curve.SRGBCurve()
	ans, _ := NewMatrixDevice(m, [3]curve.Curve{s, s, s}, colorconv.Vec3{})
	return ans
}

// Primaries returns the XYZ of the red, green and blue device primaries,
// including the black level.
func (d *MatrixDevice) Primaries() (r, g, b, white, black colorconv.Vec3) {
	return d.ToXYZ(colorconv.Vec3{1, 0, 0}), d.ToXYZ(colorconv.Vec3{0, 1, 0}), d.ToXYZ(colorconv.Vec3{0, 0, 1}), d.ToXYZ(colorconv.Vec3{1, 1, 1}), d.black
}

// ToXYZ converts an encoded device value to D50 relative XYZ.
func (d *MatrixDevice) ToXYZ(rgb colorconv.Vec3) colorconv.Vec3 {
	var lin colorconv.Vec3
	for i, c := range d.curves {
		lin[i] = c.Transform(colorconv.Clamp01(rgb[i]))
	}
	return d.matrix.MulVec(lin).Scale(d.white_scale).Add(d.black)
}

func (d *MatrixDevice) linear(xyz colorconv.Vec3) colorconv.Vec3 {
	return d.inverse.MulVec(xyz.Sub(d.black).Scale(1 / d.white_scale))
}

func in_gamut(lin colorconv.Vec3) bool {
	for _, x := range lin {
		if !(x >= -GAMUT_EPSILON && x <= 1+GAMUT_EPSILON) {
			return false
		}
	}
	return true
}

func (d *MatrixDevice) encode(lin colorconv.Vec3) (ans colorconv.Vec3) {
	for i, c := range d.curves {
		if x := lin[i]; !math.IsNaN(x) {
			ans[i] = colorconv.Clamp01(c.InverseTransform(colorconv.Clamp01(x)))
		}
	}
	return
}

// FromXYZ converts D50 relative XYZ to an encoded device value, clipping out
// of gamut colors according to mode.
func (d *MatrixDevice) FromXYZ(xyz colorconv.Vec3, mode ClipMode) (rgb colorconv.Vec3, clipped bool) {
	lin := d.linear(xyz)
	if in_gamut(lin) {
		return d.encode(lin), false
	}
	if mode == ClipPerceptual {
		lin = d.cam_clip(xyz)
	}
	return d.encode(lin), true
}

// cam_clip reduces CAM16 chroma at constant lightness and hue with a binary
// search for the largest chroma that is inside the device gamut.
func (d *MatrixDevice) cam_clip(xyz colorconv.Vec3) colorconv.Vec3 {
	v := d.to_cam.MulVec(xyz).Scale(100)
	cam := cam16.FromXYZ(float32(v[0]), float32(v[1]), float32(v[2]))
	at := func(scale float64) colorconv.Vec3 {
		c := cam16.FromJCH(cam.Lightness, cam.Chroma*float32(scale), cam.Hue)
		x, y, z := c.XYZ()
		return d.linear(d.from_cam.MulVec(colorconv.Vec3{float64(x), float64(y), float64(z)}).Scale(0.01))
	}
	lo, hi := 0.0, 1.0
	found := false
	var ans colorconv.Vec3
	for range 24 {
		mid := (lo + hi) / 2
		lin := at(mid)
		if in_gamut(lin) {
			ans, found = lin, true
			lo = mid
		} else {
			hi = mid
		}
	}
	if !found {
		// lightness itself is out of range, fall back to clipping the neutral
		if ans = at(0); math.IsNaN(ans.Sum()) {
			return d.linear(xyz)
		}
	}
	return ans
}

func (d *MatrixDevice) Lookup(ctx context.Context, req Request, coords []types.Coordinate) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.PCS != types.XYZ && req.PCS != types.Lab {
		return nil, fmt.Errorf("matrix devices cannot encode the connection space as %s", req.PCS)
	}
	ans := make([]Result, len(coords))
	to_device := req.Direction.ToDevice()
	for i, c := range coords {
		if to_device {
			if c.Space != req.PCS {
				return nil, fmt.Errorf("coordinate %d is %s, expected %s", i, c, req.PCS)
			}
			rgb, clipped := d.FromXYZ(pcs_to_xyz(c), req.Clip)
			ans[i] = Result{Coord: types.RGB(rgb[0], rgb[1], rgb[2]), Clipped: clipped}
		} else {
			if c.Space != types.DeviceRGB {
				return nil, fmt.Errorf("coordinate %d is %s, expected RGB", i, c)
			}
			ans[i] = Result{Coord: xyz_to_pcs(d.ToXYZ(colorconv.Vec3(c.Triple())), req.PCS)}
		}
	}
	return ans, nil
}

func pcs_to_xyz(c types.Coordinate) colorconv.Vec3 {
	if c.Space == types.Lab {
		return colorconv.LabToXYZ_D50(c.CIELAB())
	}
	return colorconv.Vec3(c.Triple())
}

func xyz_to_pcs(xyz colorconv.Vec3, space types.ColorSpace) types.Coordinate {
	if space == types.Lab {
		return types.LabValue(colorconv.XYZToLab_D50(xyz))
	}
	return types.XYZValue(xyz[0], xyz[1], xyz[2])
}

// Link chains the forward transform of Source with the inverse transform of
// Destination, giving device to device lookups.
type Link struct {
	Source, Destination *MatrixDevice
}

var _ Oracle = Link{}

func (l Link) Lookup(ctx context.Context, req Request, coords []types.Coordinate) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ans := make([]Result, len(coords))
	for i, c := range coords {
		if c.Space != types.DeviceRGB {
			return nil, fmt.Errorf("coordinate %d is %s, expected RGB", i, c)
		}
		rgb, clipped := l.Destination.FromXYZ(l.Source.ToXYZ(colorconv.Vec3(c.Triple())), req.Clip)
		ans[i] = Result{Coord: types.RGB(rgb[0], rgb[1], rgb[2]), Clipped: clipped}
	}
	return ans, nil
}
