package pcs

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kovidgoyal/lutsynth/colorconv"
)

var _ = fmt.Print

// Scale applied to the final matrix so that values of exactly 1.0 survive
// 16-bit fixed point encoding without clipping
const HEADROOM = 1 + 32767.0/32768

var ErrPrimaries = errors.New("pcs: device primaries failed sanity check")

// WorkingMatrix maps connection space XYZ into the RGB basis of a candidate.
type WorkingMatrix struct {
	Candidate Candidate
	// candidate RGB -> XYZ (D50)
	Primaries colorconv.Mat3
	// XYZ -> candidate RGB
	Raw colorconv.Mat3
	// Raw rescaled so that White maps to (1, 1, 1)
	Corrected colorconv.Mat3
	// Corrected times HEADROOM, the matrix consumers should use
	Scaled colorconv.Mat3
	// Inverse of Scaled
	Inverse colorconv.Mat3
	White   colorconv.Vec3
}

// Apply maps connection space XYZ into the working space.
func (w *WorkingMatrix) Apply(xyz colorconv.Vec3) colorconv.Vec3 { return w.Scaled.MulVec(xyz) }

// Unapply maps working space values back to connection space XYZ.
func (w *WorkingMatrix) Unapply(rgb colorconv.Vec3) colorconv.Vec3 { return w.Inverse.MulVec(rgb) }

// Build creates the working matrix for candidate c and the device white
// point, which must be in D50 relative XYZ.
func Build(c Candidate, white colorconv.Vec3, log *slog.Logger) (ans WorkingMatrix, err error) {
	if log == nil {
		log = slog.Default()
	}
	ans.Candidate, ans.White = c, white
	if ans.Primaries, err = c.Matrix(); err != nil {
		return
	}
	if ans.Raw, err = ans.Primaries.Inverted(); err != nil {
		return ans, fmt.Errorf("primaries matrix of %s: %w", c.Name, err)
	}
	log.Debug("working space matrix", "step", 1, "candidate", c.Name, "matrix", ans.Raw.String())
	s := ans.Raw.MulVec(white)
	if ans.Corrected, err = ans.Primaries.Multiply(colorconv.Diagonal(s)).Inverted(); err != nil {
		return ans, fmt.Errorf("white corrected matrix of %s for white %v: %w", c.Name, white, err)
	}
	log.Debug("working space matrix", "step", 2, "candidate", c.Name, "white", white, "matrix", ans.Corrected.String())
	ans.Scaled = colorconv.Diagonal(colorconv.Vec3{HEADROOM, HEADROOM, HEADROOM}).Multiply(ans.Corrected)
	log.Debug("working space matrix", "step", 3, "candidate", c.Name, "scale", HEADROOM, "matrix", ans.Scaled.String())
	if ans.Inverse, err = ans.Scaled.Inverted(); err != nil {
		return ans, fmt.Errorf("scaled matrix of %s: %w", c.Name, err)
	}
	return ans, nil
}

// CheckPrimaries verifies that red is dominated by X, green by Y and blue by Z.
func CheckPrimaries(red, green, blue colorconv.Vec3) error {
	for i, q := range []struct {
		name  string
		value colorconv.Vec3
	}{{"red", red}, {"green", green}, {"blue", blue}} {
		v := q.value
		for j := range 3 {
			if j != i && v[j] >= v[i] {
				return fmt.Errorf("%w: %s primary XYZ %.6f %.6f %.6f is not dominated by its %c component", ErrPrimaries, q.name, v[0], v[1], v[2], "XYZ"[i])
			}
		}
	}
	return nil
}
