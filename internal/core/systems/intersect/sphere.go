package intersect

import (
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// SphereSphere collides when the squared center distance is at most (r1+r2)².
func SphereSphere(a, b shape.Shape) (bool, error) {
	s1, ok1 := a.(*shape.Sphere)
	s2, ok2 := b.(*shape.Sphere)
	if !ok1 || !ok2 {
		return false, nil
	}

	c1, r1 := worldSphere(s1)
	c2, r2 := worldSphere(s2)
	d := c1.Sub(c2)
	return d.Dot(d) <= (r1+r2)*(r1+r2), nil
}

// SphereAABB accepts the sphere and the box in either order.
func SphereAABB(a, b shape.Shape) (bool, error) {
	sphere, box, ok := sphereAndBox(a, b)
	if !ok {
		return false, nil
	}

	center, radius := worldSphere(sphere)
	min, max := WorldBounds(box)

	var d float64
	for i := 0; i < 3; i++ {
		var s float64
		switch {
		case center[i] < min[i]:
			s = center[i] - min[i]
		case center[i] > max[i]:
			s = center[i] - max[i]
		}
		d += s * s
	}
	// A center inside the box accumulates nothing, so it always collides.
	return d <= radius*radius, nil
}

// SphereOBB is not supported and never reports a collision.
func SphereOBB(a, b shape.Shape) (bool, error) {
	return false, nil
}

func sphereAndBox(a, b shape.Shape) (*shape.Sphere, *shape.AxisAlignedBox, bool) {
	if s, ok := a.(*shape.Sphere); ok {
		box, ok := b.(*shape.AxisAlignedBox)
		return s, box, ok
	}
	s, ok := b.(*shape.Sphere)
	if !ok {
		return nil, nil, false
	}
	box, ok := a.(*shape.AxisAlignedBox)
	return s, box, ok
}
