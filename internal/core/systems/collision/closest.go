package collision

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/racecollide/internal/core/systems/physics"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// ClosestPointOnOBB returns the point of obb nearest to the world point p.
// Points inside the box are returned unchanged.
func ClosestPointOnOBB(p mgl64.Vec3, obb *shape.OrientedBox) (mgl64.Vec3, error) {
	if obb == nil {
		return mgl64.Vec3{}, fmt.Errorf("closest point: %w", shape.ErrMalformedShape)
	}

	inv, err := physics.InverseAffine(obb.Transform())
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("closest point: %w", err)
	}

	local := physics.TransformPoint(p, inv)
	lo, hi := obb.Min(), obb.Max()
	for i := range local {
		local[i] = mgl64.Clamp(local[i], lo[i], hi[i])
	}

	return physics.TransformPoint(local, obb.Transform()), nil
}
