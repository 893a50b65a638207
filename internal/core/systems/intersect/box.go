package intersect

import (
	"fmt"
	"math"

	"github.com/zeusync/racecollide/internal/core/systems/physics"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// edgeEpsilon pads |R| on the edge-edge axes. When two edges are parallel their
// cross product vanishes and every term of the test collapses to zero.
const edgeEpsilon = 1e-9

// AABBAABB collides only on strict overlap along all three axes.
func AABBAABB(a, b shape.Shape) (bool, error) {
	b1, ok1 := a.(*shape.AxisAlignedBox)
	b2, ok2 := b.(*shape.AxisAlignedBox)
	if !ok1 || !ok2 {
		return false, nil
	}

	min1, max1 := WorldBounds(b1)
	min2, max2 := WorldBounds(b2)
	for i := 0; i < 3; i++ {
		if !(max1[i] > min2[i] && min1[i] < max2[i]) {
			return false, nil
		}
	}
	return true, nil
}

// AABBOBB accepts the boxes in either order and runs the oriented test with the
// axis-aligned box converted by AsOrientedBox.
func AABBOBB(a, b shape.Shape) (bool, error) {
	aabb, ok := a.(*shape.AxisAlignedBox)
	obb, okObb := b.(*shape.OrientedBox)
	if !ok || !okObb {
		aabb, ok = b.(*shape.AxisAlignedBox)
		obb, okObb = a.(*shape.OrientedBox)
		if !ok || !okObb {
			return false, nil
		}
	}
	return OBBOBB(obb, AsOrientedBox(aabb))
}

// OBBOBB runs the separating axis test on two oriented boxes: the 3 face normals
// of each box, then the 9 edge-edge cross products. B is expressed in A's local
// frame so A's axes are the unit basis. Touching boxes are separated.
func OBBOBB(a, b shape.Shape) (bool, error) {
	o1, ok1 := a.(*shape.OrientedBox)
	o2, ok2 := b.(*shape.OrientedBox)
	if !ok1 || !ok2 {
		return false, nil
	}

	toA, err := physics.InverseAffine(o1.Transform())
	if err != nil {
		return false, fmt.Errorf("obb %v: %w", o1.Center(), err)
	}
	if err = physics.ValidateAffine(o2.Transform()); err != nil {
		return false, fmt.Errorf("obb %v: %w", o2.Center(), err)
	}
	toMe := toA.Mul4(o2.Transform())

	t := physics.TransformPoint(o2.Center(), toMe).Sub(o1.Center())
	ea := o1.Extent()
	eb := o2.Extent()

	// Columns of R are B's axes in A's frame. Fold their length (relative scale)
	// into B's extents so R is a pure rotation.
	r := physics.Rotation3(toMe)
	for j := 0; j < 3; j++ {
		l := r.Col(j).Len()
		eb[j] *= l
		for i := 0; i < 3; i++ {
			r[j*3+i] /= l
		}
	}
	absR := physics.AbsMat3(r)

	// A's face normals.
	for i := 0; i < 3; i++ {
		ra := ea[i]
		rb := eb[0]*absR.At(i, 0) + eb[1]*absR.At(i, 1) + eb[2]*absR.At(i, 2)
		if math.Abs(t[i]) >= ra+rb {
			return false, nil
		}
	}

	// B's face normals.
	for j := 0; j < 3; j++ {
		ra := ea[0]*absR.At(0, j) + ea[1]*absR.At(1, j) + ea[2]*absR.At(2, j)
		rb := eb[j]
		dist := t[0]*r.At(0, j) + t[1]*r.At(1, j) + t[2]*r.At(2, j)
		if math.Abs(dist) >= ra+rb {
			return false, nil
		}
	}

	// A_i x B_j.
	absR = physics.AddScalar(absR, edgeEpsilon)
	for i := 0; i < 3; i++ {
		i1, i2 := (i+1)%3, (i+2)%3
		for j := 0; j < 3; j++ {
			j1, j2 := (j+1)%3, (j+2)%3
			ra := ea[i1]*absR.At(i2, j) + ea[i2]*absR.At(i1, j)
			rb := eb[j1]*absR.At(i, j2) + eb[j2]*absR.At(i, j1)
			dist := t[i2]*r.At(i1, j) - t[i1]*r.At(i2, j)
			if math.Abs(dist) >= ra+rb {
				return false, nil
			}
		}
	}

	return true, nil
}
