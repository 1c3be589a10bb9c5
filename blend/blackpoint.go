package blend

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/kovidgoyal/lutsynth/types"
)

var _ = fmt.Print

var ErrBlackTooLight = errors.New("blend: black point is not darker than white")

// Exponent applied to the black point blend weight, large values confine the
// blend to the darkest few percent of lightness
const DEFAULT_POWER = 40

type Mode int

const (
	// ModeLab blends a* and b* towards those of the black point
	ModeLab Mode = iota
	// ModeXYZ adds the chromatic part of the black point directly in XYZ
	ModeXYZ
)

var modeNames = map[Mode]string{ModeLab: "Lab", ModeXYZ: "XYZ"}

func (m Mode) String() string { return modeNames[m] }

func ParseMode(s string) (Mode, error) {
	for k, v := range modeNames {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	return ModeLab, fmt.Errorf("unknown black point blend mode: %#v", s)
}

// Correction maps in_black to out_black while leaving white unchanged,
// linearly per XYZ channel.
type Correction struct {
	scale, offset colorconv.Vec3
}

func NewCorrection(in_black, out_black, white colorconv.Vec3) Correction {
	ans := Correction{}
	for i := range 3 {
		t := in_black[i] - white[i]
		ans.scale[i] = (out_black[i] - white[i]) / t
		ans.offset[i] = -white[i] * (out_black[i] - in_black[i]) / t
	}
	return ans
}

func (c Correction) Apply(v colorconv.Vec3) colorconv.Vec3 {
	return colorconv.Vec3{c.scale[0]*v[0] + c.offset[0], c.scale[1]*v[1] + c.offset[1], c.scale[2]*v[2] + c.offset[2]}
}

func (c Correction) String() string {
	return fmt.Sprintf("Correction{scale: %v offset: %v}", c.scale, c.offset)
}

// BlackPoint blends the darkest connection space colors towards the hue of
// the device black so that no seam appears where the device stops getting
// darker.
type BlackPoint struct {
	Black, White colorconv.Vec3
	Mode         Mode
	Power        float64
	// optional linear compression of [0, white] onto [neutral black, white]
	// done before blending
	Compensate bool

	black_L, black_a, black_b float64
	correction                Correction
}

func NewBlackPoint(black, white colorconv.Vec3, mode Mode, power float64, compensate bool) (*BlackPoint, error) {
	if power <= 0 {
		power = DEFAULT_POWER
	}
	ans := &BlackPoint{Black: black, White: white, Mode: mode, Power: power, Compensate: compensate}
	ans.black_L, ans.black_a, ans.black_b = colorconv.XYZToLab(black, white)
	if ans.black_L >= 100 {
		return nil, fmt.Errorf("%w: L* of black is %v", ErrBlackTooLight, ans.black_L)
	}
	ans.correction = NewCorrection(colorconv.Vec3{}, colorconv.Neutral(white, black[1]), white)
	return ans, nil
}

// Weight is 1 at and below the lightness of the black point falling off
// steeply to 0 at white.
func (b *BlackPoint) Weight(L float64) float64 {
	v := 1 - (L-b.black_L)/(100-b.black_L)
	return math.Pow(max(0, min(v, 1)), b.Power)
}

func (b *BlackPoint) BlendXYZ(xyz colorconv.Vec3) colorconv.Vec3 {
	if b.Compensate {
		xyz = b.correction.Apply(xyz)
	}
	L, A, B := colorconv.XYZToLab(xyz, b.White)
	w := b.Weight(L)
	if w == 0 {
		return xyz
	}
	switch b.Mode {
	case ModeXYZ:
		return xyz.Add(b.Black.Sub(colorconv.Neutral(b.White, b.Black[1])).Scale(w))
	default:
		return colorconv.LabToXYZ(L, A+w*b.black_a, B+w*b.black_b, b.White)
	}
}

// Apply blends every connection space coordinate in place.
func (b *BlackPoint) Apply(coords []types.Coordinate) error {
	for i, c := range coords {
		switch c.Space {
		case types.XYZ:
			v := b.BlendXYZ(colorconv.Vec3(c.Triple()))
			coords[i].V[0], coords[i].V[1], coords[i].V[2] = v[0], v[1], v[2]
		case types.Lab:
			L, A, B := c.CIELAB()
			coords[i] = types.LabValue(colorconv.XYZToLab(b.BlendXYZ(colorconv.LabToXYZ(L, A, B, b.White)), b.White))
		default:
			return fmt.Errorf("cannot blend the black point of the %s coordinate %d", c.Space, i)
		}
	}
	return nil
}
