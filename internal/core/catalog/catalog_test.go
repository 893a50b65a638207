package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

const shapesYAML = `
shapes:
  - name: car
    type: obb
    min: {x: -1, y: -2, z: 0}
    max: {x: 1, y: 2, z: 1.2}
  - name: wall
    type: aabb
    min: {x: -5, y: -0.5, z: 0}
    max: {x: 5, y: 0.5, z: 3}
  - name: timebonus
    type: sphere
    center: {x: 0, y: 0, z: 0.5}
    radius: 0.8
  - name: ramp
    type: mesh
`

const shapesJSON = `{"shapes": [
  {"name": "checkpoint", "type": "aabb", "min": {"x": -4, "y": -1, "z": 0}, "max": {"x": 4, "y": 1, "z": 5}}
]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	doc, err := LoadYAML(strings.NewReader(shapesYAML))
	require.NoError(t, err)
	require.Len(t, doc.Shapes, 4)
	require.Equal(t, "sphere", doc.Shapes[2].Type)
	require.Equal(t, 0.8, *doc.Shapes[2].Radius)

	empty, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, empty.Shapes)
}

func TestConfigShapeBuild(t *testing.T) {
	lo, hi := &ConfigVec3{X: -1, Y: -1, Z: -1}, &ConfigVec3{X: 1, Y: 1, Z: 1}
	radius := 2.0
	negative := -1.0

	tests := []struct {
		name    string
		config  ConfigShape
		kind    shape.Kind
		wantErr error
	}{
		{"aabb", ConfigShape{Name: "a", Type: "aabb", Min: lo, Max: hi}, shape.KindAABB, nil},
		{"obb", ConfigShape{Name: "o", Type: "obb", Min: lo, Max: hi}, shape.KindOBB, nil},
		{"sphere", ConfigShape{Name: "s", Type: "sphere", Center: lo, Radius: &radius}, shape.KindSphere, nil},
		{"missing max", ConfigShape{Name: "a", Type: "aabb", Min: lo}, 0, shape.ErrMalformedShape},
		{"inverted", ConfigShape{Name: "a", Type: "obb", Min: hi, Max: lo}, 0, shape.ErrMalformedShape},
		{"missing radius", ConfigShape{Name: "s", Type: "sphere", Center: lo}, 0, shape.ErrMalformedShape},
		{"negative radius", ConfigShape{Name: "s", Type: "sphere", Center: lo, Radius: &negative}, 0, shape.ErrMalformedShape},
		{"unknown", ConfigShape{Name: "m", Type: "mesh"}, 0, ErrUnknownShapeType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.config.Build()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.kind, s.Kind())
		})
	}
}

func TestCatalogGetReturnsCopies(t *testing.T) {
	c := New(WithLogger(log.NewNop()))
	doc, err := LoadYAML(strings.NewReader(shapesYAML))
	require.NoError(t, err)
	require.NoError(t, c.Apply("memory", doc))

	// The unknown "mesh" entry is skipped.
	require.Equal(t, []string{"car", "timebonus", "wall"}, c.Names())

	first, ok := c.Get("car")
	require.True(t, ok)
	second, ok := c.Get("car")
	require.True(t, ok)
	require.NotSame(t, first, second)

	first.SetTransform(mgl64.Translate3D(5, 0, 0))
	require.NoError(t, first.(*shape.OrientedBox).SetBounds(mgl64.Vec3{}, mgl64.Vec3{9, 9, 9}))

	third, _ := c.Get("car")
	require.Equal(t, mgl64.Ident4(), third.Transform())
	require.Equal(t, mgl64.Vec3{1, 2, 1.2}, third.(*shape.OrientedBox).Max())

	missing, ok := c.Get("tree")
	require.False(t, ok)
	require.Nil(t, missing)
}

func TestCatalogStrict(t *testing.T) {
	c := New(WithStrict(true), WithLogger(log.NewNop()))
	doc, err := LoadYAML(strings.NewReader(shapesYAML))
	require.NoError(t, err)

	err = c.Apply("memory", doc)
	require.ErrorIs(t, err, ErrUnknownShapeType)
	require.Zero(t, c.Len())
}

func TestCatalogDuplicates(t *testing.T) {
	c := New()
	sphere := shape.MustSphere(mgl64.Vec3{}, 1)
	require.NoError(t, c.Add("ball", sphere))
	require.ErrorIs(t, c.Add("ball", sphere), ErrDuplicateShape)

	radius := 1.0
	center := &ConfigVec3{}
	doc := &Document{Shapes: []ConfigShape{{Name: "ball", Type: "sphere", Center: center, Radius: &radius}}}
	require.ErrorIs(t, c.Apply("file.yaml", doc), ErrDuplicateShape)

	twice := &Document{Shapes: []ConfigShape{
		{Name: "x", Type: "sphere", Center: center, Radius: &radius},
		{Name: "x", Type: "sphere", Center: center, Radius: &radius},
	}}
	require.ErrorIs(t, c.Apply("other.yaml", twice), ErrDuplicateShape)
	require.Equal(t, []string{"ball"}, c.Names())
}

func TestCatalogLoadFiles(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "shapes.yaml", shapesYAML)
	jsonPath := writeFile(t, dir, "extra.json", shapesJSON)

	c := New(WithLogger(log.NewNop()), WithWorkers(2))
	require.NoError(t, c.LoadFiles(context.Background(), yamlPath, jsonPath))
	require.Equal(t, []string{"car", "checkpoint", "timebonus", "wall"}, c.Names())

	s, ok := c.Get("checkpoint")
	require.True(t, ok)
	require.Equal(t, shape.KindAABB, s.Kind())

	err := c.LoadFiles(context.Background(), filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCatalogReloadOnlyWhenChanged(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shapes.yaml", shapesYAML)

	c := New(WithLogger(log.NewNop()))
	changed, err := c.LoadFile(path)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = c.LoadFile(path)
	require.NoError(t, err)
	require.False(t, changed)

	// Rewriting the file replaces its shapes; names it no longer lists disappear.
	writeFile(t, dir, "shapes.yaml", `
shapes:
  - name: car
    type: sphere
    center: {x: 0, y: 0, z: 0}
    radius: 1.5
`)
	changed, err = c.LoadFile(path)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, []string{"car"}, c.Names())

	car, ok := c.Get("car")
	require.True(t, ok)
	require.Equal(t, 1.5, car.(*shape.Sphere).Radius())
}

func TestCatalogRejectedReloadKeepsShapes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shapes.yaml", shapesYAML)

	c := New(WithLogger(log.NewNop()))
	_, err := c.LoadFile(path)
	require.NoError(t, err)

	writeFile(t, dir, "shapes.yaml", "shapes: [{name: car, type: aabb}]")
	_, err = c.LoadFile(path)
	require.ErrorIs(t, err, shape.ErrMalformedShape)
	require.Equal(t, []string{"car", "timebonus", "wall"}, c.Names())

	writeFile(t, dir, "shapes.yaml", "shapes: [")
	_, err = c.LoadFile(path)
	require.Error(t, err)
	require.Equal(t, 3, c.Len())
}
