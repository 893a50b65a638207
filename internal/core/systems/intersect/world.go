// Package intersect implements the overlap predicates between shape variants
// and the table that dispatches a pair of shapes to the right predicate.
//
// Predicates evaluate shapes in world space. Boundaries differ on purpose:
// sphere tests are closed (touching collides), box tests are open (touching does not).
package intersect

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/racecollide/internal/core/systems/physics"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// worldSphere returns the sphere's center and radius after its transform.
func worldSphere(s *shape.Sphere) (mgl64.Vec3, float64) {
	m := s.Transform()
	return physics.TransformPoint(s.Center(), m), s.Radius() * physics.MaxScale(m)
}

// WorldBounds returns the world-space min and max corners of an axis-aligned box.
// A rotated transform yields the bounds of the 8 transformed corners.
func WorldBounds(b *shape.AxisAlignedBox) (mgl64.Vec3, mgl64.Vec3) {
	m := b.Transform()
	if m == mgl64.Ident4() {
		return b.Min(), b.Max()
	}

	lo, hi := b.Min(), b.Max()
	min := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < 8; i++ {
		corner := lo
		if i&1 != 0 {
			corner[0] = hi[0]
		}
		if i&2 != 0 {
			corner[1] = hi[1]
		}
		if i&4 != 0 {
			corner[2] = hi[2]
		}
		p := physics.TransformPoint(corner, m)
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], p[axis])
			max[axis] = math.Max(max[axis], p[axis])
		}
	}
	return min, max
}

// AsOrientedBox reinterprets an axis-aligned box as an oriented box with identity
// rotation spanning the same world-space bounds.
func AsOrientedBox(b *shape.AxisAlignedBox) *shape.OrientedBox {
	min, max := WorldBounds(b)
	return shape.MustOrientedBox(min, max)
}
