package pcs

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kovidgoyal/lutsynth/colorconv"
	"github.com/lucasb-eyer/go-colorful"
)

var _ = fmt.Print

// Reference whites of the candidate spaces, normalized to Y = 1
var (
	WhiteC    = colorconv.Vec3{0.98074, 1, 1.18232}
	WhiteE    = colorconv.Vec3{1, 1, 1}
	WhiteACES = colorconv.Vec3{0.95265, 1, 1.00883}
	WhiteDCI  = colorconv.Vec3{0.89459, 1, 0.95442}
)

// Chromaticity is a CIE xy pair
type Chromaticity struct{ X, Y float64 }

// Candidate is a synthetic RGB working space.
type Candidate struct {
	Name             string
	Gamma            float64
	White            colorconv.Vec3
	Red, Green, Blue Chromaticity
}

func (c Candidate) String() string { return c.Name }

// Matrix returns the RGB -> XYZ matrix of the space, chromatically adapted to D50.
func (c Candidate) Matrix() (colorconv.Mat3, error) {
	m := colorconv.FromColumns(
		colorconv.XYToXYZ(c.Red.X, c.Red.Y, 1),
		colorconv.XYToXYZ(c.Green.X, c.Green.Y, 1),
		colorconv.XYToXYZ(c.Blue.X, c.Blue.Y, 1),
	)
	inv, err := m.Inverted()
	if err != nil {
		return m, fmt.Errorf("primaries of %s: %w", c.Name, err)
	}
	m = m.Multiply(colorconv.Diagonal(inv.MulVec(c.White)))
	if c.White != colorconv.D50 {
		m = colorconv.ChromaticAdaptationMatrix(c.White, colorconv.D50).Multiply(m)
	}
	return m, nil
}

// Area returns the area of the D50 adapted gamut triangle in the xy plane.
func (c Candidate) Area() float64 {
	m, err := c.Matrix()
	if err != nil {
		return 0
	}
	return TriangleArea(m.Column(0), m.Column(1), m.Column(2))
}

func xy(v colorconv.Vec3) (x, y float64) {
	x, y, _ = colorful.XyzToXyy(v[0], v[1], v[2])
	return
}

// TriangleArea is the area in the xy chromaticity plane of the triangle whose
// corners are the chromaticities of the three XYZ colors.
func TriangleArea(r, g, b colorconv.Vec3) float64 {
	x1, y1 := xy(r)
	x2, y2 := xy(g)
	x3, y3 := xy(b)
	return math.Abs(x1*(y2-y3)+x2*(y3-y1)+x3*(y1-y2)) / 2
}

var catalog = sync.OnceValue(func() []Candidate {
	ans := []Candidate{
		{"ACES", 1.0, WhiteACES, Chromaticity{0.7347, 0.2653}, Chromaticity{0, 1}, Chromaticity{0.0001, -0.077}},
		{"ACEScg", 1.0, WhiteACES, Chromaticity{0.713, 0.293}, Chromaticity{0.165, 0.83}, Chromaticity{0.128, 0.044}},
		{"Adobe RGB (1998)", 2 + 51.0/256, colorconv.D65, Chromaticity{0.64, 0.33}, Chromaticity{0.21, 0.71}, Chromaticity{0.15, 0.06}},
		{"Apple RGB", 1.8, colorconv.D65, Chromaticity{0.625, 0.34}, Chromaticity{0.28, 0.595}, Chromaticity{0.155, 0.07}},
		{"Best RGB", 2.2, colorconv.D50, Chromaticity{0.7347, 0.2653}, Chromaticity{0.215, 0.775}, Chromaticity{0.13, 0.035}},
		{"Beta RGB", 2.2, colorconv.D50, Chromaticity{0.6888, 0.3112}, Chromaticity{0.1986, 0.7551}, Chromaticity{0.1265, 0.0352}},
		{"Bruce RGB", 2.2, colorconv.D65, Chromaticity{0.64, 0.33}, Chromaticity{0.28, 0.65}, Chromaticity{0.15, 0.06}},
		{"CIE RGB", 2.2, WhiteE, Chromaticity{0.735, 0.265}, Chromaticity{0.274, 0.717}, Chromaticity{0.167, 0.009}},
		{"ColorMatch RGB", 1.8, colorconv.D50, Chromaticity{0.63, 0.34}, Chromaticity{0.295, 0.605}, Chromaticity{0.15, 0.075}},
		{"DCI P3", 2.6, WhiteDCI, Chromaticity{0.68, 0.32}, Chromaticity{0.265, 0.69}, Chromaticity{0.15, 0.06}},
		{"DCI P3 D65", 2.6, colorconv.D65, Chromaticity{0.68, 0.32}, Chromaticity{0.265, 0.69}, Chromaticity{0.15, 0.06}},
		{"Don RGB 4", 2.2, colorconv.D50, Chromaticity{0.696, 0.3}, Chromaticity{0.215, 0.765}, Chromaticity{0.13, 0.035}},
		{"ECI RGB", 1.8, colorconv.D50, Chromaticity{0.67, 0.33}, Chromaticity{0.21, 0.71}, Chromaticity{0.14, 0.08}},
		{"Ekta Space PS5", 2.2, colorconv.D50, Chromaticity{0.695, 0.305}, Chromaticity{0.26, 0.7}, Chromaticity{0.11, 0.005}},
		{"NTSC 1953", 2.2, WhiteC, Chromaticity{0.67, 0.33}, Chromaticity{0.21, 0.71}, Chromaticity{0.14, 0.08}},
		{"PAL/SECAM", 2.2, colorconv.D65, Chromaticity{0.64, 0.33}, Chromaticity{0.29, 0.6}, Chromaticity{0.15, 0.06}},
		{"ProPhoto RGB", 1.8, colorconv.D50, Chromaticity{0.7347, 0.2653}, Chromaticity{0.1596, 0.8404}, Chromaticity{0.0366, 0.0001}},
		{"Rec. 709", 2.4, colorconv.D65, Chromaticity{0.64, 0.33}, Chromaticity{0.3, 0.6}, Chromaticity{0.15, 0.06}},
		{"Rec. 2020", 2.4, colorconv.D65, Chromaticity{0.708, 0.292}, Chromaticity{0.17, 0.797}, Chromaticity{0.131, 0.046}},
		{"SMPTE-C", 2.2, colorconv.D65, Chromaticity{0.63, 0.34}, Chromaticity{0.31, 0.595}, Chromaticity{0.155, 0.07}},
		{"Wide Gamut RGB", 2.2, colorconv.D50, Chromaticity{0.735, 0.265}, Chromaticity{0.115, 0.826}, Chromaticity{0.157, 0.018}},
	}
	areas := make(map[string]float64, len(ans))
	for _, c := range ans {
		areas[c.Name] = c.Area()
	}
	sort.SliceStable(ans, func(i, j int) bool { return areas[ans[i].Name] < areas[ans[j].Name] })
	return ans
})

// Catalog returns the candidate working spaces ordered from the smallest to
// the largest gamut. The returned slice is a copy.
func Catalog() []Candidate {
	return append([]Candidate(nil), catalog()...)
}

// Lookup finds a candidate by name.
func Lookup(name string) (Candidate, bool) {
	for _, c := range catalog() {
		if c.Name == name {
			return c, true
		}
	}
	return Candidate{}, false
}
