package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/racecollide/internal/core/models"
	"github.com/zeusync/racecollide/internal/core/systems/physics"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

func TestClosestPointPerShape(t *testing.T) {
	sphere := shape.MustSphere(mgl64.Vec3{}, 1)
	sphere.SetTransform(physics.TRS(mgl64.Vec3{0, 4, 0}, mgl64.QuatIdent(), 2))

	got, err := closestPoint(mgl64.Vec3{0, 0, 0}, sphere)
	require.NoError(t, err)
	require.InDelta(t, 0, got.Sub(mgl64.Vec3{0, 2, 0}).Len(), 1e-9, "got %v", got)

	got, err = closestPoint(mgl64.Vec3{0, 3, 0}, sphere)
	require.NoError(t, err)
	require.Equal(t, mgl64.Vec3{0, 3, 0}, got)

	box := shape.MustAxisAlignedBox(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1})
	box.SetTransform(physics.TRS(mgl64.Vec3{10, 0, 0}, mgl64.QuatIdent(), 1))
	got, err = closestPoint(mgl64.Vec3{0, 0, 0}, box)
	require.NoError(t, err)
	require.InDelta(t, 0, got.Sub(mgl64.Vec3{9, 0, 0}).Len(), 1e-9, "got %v", got)

	got, err = closestPoint(mgl64.Vec3{1, 2, 3}, nil)
	require.NoError(t, err)
	require.Equal(t, mgl64.Vec3{1, 2, 3}, got)
}

func TestWorldCenter(t *testing.T) {
	box := shape.MustAxisAlignedBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2})
	obj := models.NewGameObject(models.KindSceneObject, "crate", box, mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent(), 1)
	require.InDelta(t, 0, worldCenter(obj).Sub(mgl64.Vec3{6, 1, 1}).Len(), 1e-9)

	marker := models.NewGameObject(models.KindBasic, "marker", nil, mgl64.Vec3{3, 3, 3}, mgl64.QuatIdent(), 1)
	require.Equal(t, mgl64.Vec3{3, 3, 3}, worldCenter(marker))
}
