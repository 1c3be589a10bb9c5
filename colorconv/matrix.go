package colorconv

import (
	"errors"
	"fmt"
	"math"
)

type Mat3 [3][3]float64

// Determinant lower than that are assumed zero (used on matrix invert)
const MATRIX_DET_TOLERANCE = 1e-12

var ErrSingularMatrix = errors.New("colorconv: matrix is singular and cannot be inverted")

var Identity = Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func Diagonal(v Vec3) Mat3 {
	return Mat3{{v[0], 0, 0}, {0, v[1], 0}, {0, 0, v[2]}}
}

// FromColumns builds a matrix whose columns are a, b and c.
func FromColumns(a, b, c Vec3) Mat3 {
	return Mat3{
		{a[0], b[0], c[0]},
		{a[1], b[1], c[1]},
		{a[2], b[2], c[2]},
	}
}

func (m Mat3) Column(i int) Vec3 { return Vec3{m[0][i], m[1][i], m[2][i]} }

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Multiply returns m * o
func (m Mat3) Multiply(o Mat3) Mat3 {
	var out Mat3
	for i := range 3 {
		for j := range 3 {
			sum := 0.0
			for k := range 3 {
				sum += m[i][k] * o[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func (m Mat3) Scale(s float64) (ans Mat3) {
	for i := range 3 {
		for j := range 3 {
			ans[i][j] = m[i][j] * s
		}
	}
	return
}

func (mat Mat3) Determinant() float64 {
	return mat[0][0]*(mat[1][1]*mat[2][2]-mat[1][2]*mat[2][1]) -
		mat[0][1]*(mat[1][0]*mat[2][2]-mat[1][2]*mat[2][0]) +
		mat[0][2]*(mat[1][0]*mat[2][1]-mat[1][1]*mat[2][0])
}

func (mat Mat3) Inverted() (ans Mat3, err error) {
	det := mat.Determinant()
	if math.Abs(det) < MATRIX_DET_TOLERANCE || math.IsNaN(det) {
		return ans, fmt.Errorf("%w: determinant %g of %v", ErrSingularMatrix, det, mat)
	}
	invDet := 1 / det
	adj := Mat3{
		{
			(mat[1][1]*mat[2][2] - mat[1][2]*mat[2][1]),
			(mat[0][2]*mat[2][1] - mat[0][1]*mat[2][2]), // Note the sign change for cofactor C12
			(mat[0][1]*mat[1][2] - mat[0][2]*mat[1][1]), // Note the sign change for cofactor C13
		},
		{
			(mat[1][2]*mat[2][0] - mat[1][0]*mat[2][2]),
			(mat[0][0]*mat[2][2] - mat[0][2]*mat[2][0]),
			(mat[0][2]*mat[1][0] - mat[0][0]*mat[1][2]),
		},
		{
			(mat[1][0]*mat[2][1] - mat[1][1]*mat[2][0]),
			(mat[0][1]*mat[2][0] - mat[0][0]*mat[2][1]),
			(mat[0][0]*mat[1][1] - mat[0][1]*mat[1][0]),
		},
	}
	return adj.Scale(invDet), nil
}

// IsIdentity reports whether m is the identity matrix to within tolerance.
func (m Mat3) IsIdentity(tolerance float64) bool {
	for i := range 3 {
		for j := range 3 {
			if math.Abs(m[i][j]-Identity[i][j]) > tolerance {
				return false
			}
		}
	}
	return true
}

func (m Mat3) String() string {
	return fmt.Sprintf("[%.8f %.8f %.8f; %.8f %.8f %.8f; %.8f %.8f %.8f]",
		m[0][0], m[0][1], m[0][2], m[1][0], m[1][1], m[1][2], m[2][0], m[2][1], m[2][2])
}
