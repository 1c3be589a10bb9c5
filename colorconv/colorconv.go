package colorconv

import (
	"math"
)

// This package holds the small amount of color math the LUT synthesis needs:
// CIE L*a*b* <-> XYZ relative to an arbitrary white, xyY chromaticities,
// Bradford chromatic adaptation and 3x3 matrix algebra.
//
// Notes:
// - XYZ values are relative, with the white point having Y = 1.0.
// - Lab values are the usual CIELAB values (L in [0,100], a,b around -/+).

type Vec3 [3]float64

// Standard reference whites (CIE XYZ) normalized so Y = 1.0
// Note that D50 uses Z value from ICC spec rather that CIE spec.
var (
	D50 = Vec3{0.96422, 1.00000, 0.82491}
	D65 = Vec3{0.95047, 1.00000, 1.08883}
)

// Bradford transform matrices (forward and inverse)
var (
	bradford = Mat3{
		{0.8951, 0.2664, -0.1614},
		{-0.7502, 1.7135, 0.0367},
		{0.0389, -0.0685, 1.0296},
	}
	invBradford = Mat3{
		{0.9869929, -0.1470543, 0.1599627},
		{0.4323053, 0.5183603, 0.0492912},
		{-0.0085287, 0.0400428, 0.9684867},
	}
)

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }
func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Max() float64         { return max(v[0], v[1], v[2]) }
func (v Vec3) Sum() float64         { return v[0] + v[1] + v[2] }

// NormalizeY scales v so that its Y component is 1. A zero Y is returned unchanged.
func (v Vec3) NormalizeY() Vec3 {
	if v[1] == 0 {
		return v
	}
	return v.Scale(1 / v[1])
}

func finv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	// when t <= delta: 3*delta^2*(t - 4/29)
	return 3 * delta * delta * (t - 4.0/29.0)
}

// LabToXYZ converts Lab relative to white into CIE XYZ values relative to that white.
func LabToXYZ(L, a, b float64, white Vec3) Vec3 {
	// Inverse of the CIELAB f function
	var fy = (L + 16.0) / 116.0
	var fx = fy + (a / 500.0)
	var fz = fy - (b / 200.0)
	return Vec3{finv(fx) * white[0], finv(fy) * white[1], finv(fz) * white[2]}
}

func ff(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	// t <= delta^3
	return t/(3*delta*delta) + 4.0/29.0
}

// XYZToLab converts XYZ (relative to white) into CIELAB.
func XYZToLab(xyz, white Vec3) (L, a, b float64) {
	fx := ff(xyz[0] / white[0])
	fy := ff(xyz[1] / white[1])
	fz := ff(xyz[2] / white[2])

	L = 116.0*fy - 16.0
	a = 500.0 * (fx - fy)
	b = 200.0 * (fy - fz)
	return
}

// LabToXYZ_D50 and XYZToLab_D50 are the connection space conversions.
func LabToXYZ_D50(L, a, b float64) Vec3 { return LabToXYZ(L, a, b, D50) }
func XYZToLab_D50(xyz Vec3) (L, a, b float64) { return XYZToLab(xyz, D50) }

// XYToXYZ converts a chromaticity with luminance Y into XYZ.
func XYToXYZ(x, y, Y float64) Vec3 {
	if y == 0 {
		return Vec3{}
	}
	return Vec3{x * Y / y, Y, (1 - x - y) * Y / y}
}

// Neutral returns the color with the chromaticity of white and the given luminance.
func Neutral(white Vec3, Y float64) Vec3 {
	return white.NormalizeY().Scale(Y)
}

// clamp01 clamps value to [0,1]
func clamp01(x float64) float64 {
	return max(0, min(x, 1))
}

func Clamp01(x float64) float64 { return clamp01(x) }

// ChromaticAdaptationMatrix constructs a 3x3 matrix that adapts XYZ values
// from sourceWhite to targetWhite using the Bradford method.
func ChromaticAdaptationMatrix(sourceWhite, targetWhite Vec3) Mat3 {
	// Convert whites to LMS using Bradford
	src := bradford.MulVec(sourceWhite)
	tgt := bradford.MulVec(targetWhite)
	// adapt = invBradford * diag * bradford
	diag := Diagonal(Vec3{tgt[0] / src[0], tgt[1] / src[1], tgt[2] / src[2]})
	return invBradford.Multiply(diag.Multiply(bradford))
}
