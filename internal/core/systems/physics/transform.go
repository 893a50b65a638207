package physics

// Geometry helpers shared by the shape model and the intersection tests.
//
// Matrices are mgl64 (column-major, column vectors). A point is transformed as
// M * [p 1], so the translation lives in M[12..14], the same memory slots a
// row-vector engine would call its 4th row. Composition reads right to left:
// the row-vector product Scale * Rotation * Translation is Translate * Rotate * Scale here.

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidTransform is returned for transforms that are not invertible affine matrices.
var ErrInvalidTransform = errors.New("invalid transform")

// singularEpsilon is the smallest |det| of the 3x3 block accepted as invertible.
const singularEpsilon = 1e-12

// TransformPoint applies the affine transform m to p.
func TransformPoint(p mgl64.Vec3, m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

// TransformVector applies only the linear part of m to v.
func TransformVector(v mgl64.Vec3, m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}

// InverseAffine inverts m. It fails with ErrInvalidTransform when m has non-finite
// elements, a projective bottom row or a singular 3x3 block.
func InverseAffine(m mgl64.Mat4) (mgl64.Mat4, error) {
	if err := ValidateAffine(m); err != nil {
		return mgl64.Mat4{}, err
	}
	return m.Inv(), nil
}

// ValidateAffine reports whether m can be inverted as an affine transform.
func ValidateAffine(m mgl64.Mat4) error {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidTransform
		}
	}
	if m[3] != 0 || m[7] != 0 || m[11] != 0 || m[15] != 1 {
		return ErrInvalidTransform
	}
	if math.Abs(Rotation3(m).Det()) < singularEpsilon {
		return ErrInvalidTransform
	}
	return nil
}

// TRS builds the world placement of an entity: uniform scale, then rotation, then translation.
func TRS(position mgl64.Vec3, orientation mgl64.Quat, scale float64) mgl64.Mat4 {
	return mgl64.Translate3D(position[0], position[1], position[2]).
		Mul4(orientation.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(scale, scale, scale))
}

// MaxScale is the length of the longest basis vector of m's 3x3 block.
func MaxScale(m mgl64.Mat4) float64 {
	r := Rotation3(m)
	return math.Max(r.Col(0).Len(), math.Max(r.Col(1).Len(), r.Col(2).Len()))
}
