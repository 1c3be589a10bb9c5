package pcs

import (
	"fmt"
	"log/slog"

	"github.com/kovidgoyal/lutsynth/colorconv"
)

// Allowed excursion outside [0,1] when testing whether a device primary is
// inside a candidate gamut
const FIT_TOLERANCE = 1e-6

// Primaries are the device primaries and white point as D50 relative XYZ.
type Primaries struct {
	Red, Green, Blue, White colorconv.Vec3
}

func (p Primaries) Area() float64 { return TriangleArea(p.Red, p.Green, p.Blue) }

type Selection struct {
	Candidate Candidate
	// position of Candidate in Catalog()
	Index int
	// true if the candidate gamut contains all device primaries
	Contains bool
	// device gamut area / candidate gamut area in the xy plane
	FitRatio float64
}

func (s Selection) String() string {
	return fmt.Sprintf("%s (contains device: %v, fit ratio: %.4f)", s.Candidate.Name, s.Contains, s.FitRatio)
}

// Contains reports whether all three device primaries, expressed in the RGB
// basis of c, lie within [0,1].
func Contains(c Candidate, p Primaries) (bool, error) {
	m, err := c.Matrix()
	if err != nil {
		return false, err
	}
	inv, err := m.Inverted()
	if err != nil {
		return false, err
	}
	for _, prim := range []colorconv.Vec3{p.Red, p.Green, p.Blue} {
		rgb := inv.MulVec(prim)
		for _, x := range rgb {
			if x < -FIT_TOLERANCE || x > 1+FIT_TOLERANCE {
				return false, nil
			}
		}
	}
	return true, nil
}

// Select picks the smallest candidate that contains the device gamut. When
// no candidate does, the largest one is used and the fit ratio is logged.
func Select(p Primaries, log *slog.Logger) (ans Selection, err error) {
	if log == nil {
		log = slog.Default()
	}
	cat := catalog()
	device_area := p.Area()
	for i, c := range cat {
		ok, err := Contains(c, p)
		if err != nil {
			return ans, err
		}
		if ok {
			ans = Selection{Candidate: c, Index: i, Contains: true, FitRatio: device_area / c.Area()}
			log.Debug("selected working space", "candidate", c.Name, "fit_ratio", ans.FitRatio)
			return ans, nil
		}
	}
	i := len(cat) - 1
	ans = Selection{Candidate: cat[i], Index: i, FitRatio: device_area / cat[i].Area()}
	log.Warn("no working space contains the device gamut, using the largest", "candidate", ans.Candidate.Name, "fit_ratio", ans.FitRatio)
	return ans, nil
}
