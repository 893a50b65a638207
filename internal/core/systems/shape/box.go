package shape

import "github.com/go-gl/mathgl/mgl64"

var (
	_ Shape = (*AxisAlignedBox)(nil)
	_ Shape = (*OrientedBox)(nil)
)

// AxisAlignedBox is a box whose faces stay parallel to the world axes.
type AxisAlignedBox struct {
	Placement
	min, max mgl64.Vec3
}

func NewAxisAlignedBox(min, max mgl64.Vec3) (*AxisAlignedBox, error) {
	if err := validateBounds(min, max); err != nil {
		return nil, err
	}
	return &AxisAlignedBox{Placement: identity(), min: min, max: max}, nil
}

// MustAxisAlignedBox is NewAxisAlignedBox for bounds known to be valid.
func MustAxisAlignedBox(min, max mgl64.Vec3) *AxisAlignedBox {
	b, err := NewAxisAlignedBox(min, max)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *AxisAlignedBox) Kind() Kind { return KindAABB }

func (b *AxisAlignedBox) Min() mgl64.Vec3 { return b.min }

func (b *AxisAlignedBox) Max() mgl64.Vec3 { return b.max }

// SetBounds replaces both corners. The box is left untouched on error.
func (b *AxisAlignedBox) SetBounds(min, max mgl64.Vec3) error {
	if err := validateBounds(min, max); err != nil {
		return err
	}
	b.min, b.max = min, max
	return nil
}

func (b *AxisAlignedBox) Copy() Shape {
	c := *b
	return &c
}

// OrientedBox is a local-space box oriented in the world by its transform.
// Center and Extent are derived from the bounds and kept in sync by SetBounds.
type OrientedBox struct {
	Placement
	min, max       mgl64.Vec3
	center, extent mgl64.Vec3
}

func NewOrientedBox(min, max mgl64.Vec3) (*OrientedBox, error) {
	o := &OrientedBox{Placement: identity()}
	if err := o.SetBounds(min, max); err != nil {
		return nil, err
	}
	return o, nil
}

// MustOrientedBox is NewOrientedBox for bounds known to be valid.
func MustOrientedBox(min, max mgl64.Vec3) *OrientedBox {
	o, err := NewOrientedBox(min, max)
	if err != nil {
		panic(err)
	}
	return o
}

func (o *OrientedBox) Kind() Kind { return KindOBB }

func (o *OrientedBox) Min() mgl64.Vec3 { return o.min }

func (o *OrientedBox) Max() mgl64.Vec3 { return o.max }

// Center is the local-space midpoint of the bounds.
func (o *OrientedBox) Center() mgl64.Vec3 { return o.center }

// Extent holds the local-space half sizes.
func (o *OrientedBox) Extent() mgl64.Vec3 { return o.extent }

// SetBounds replaces both corners and recomputes center and extent.
func (o *OrientedBox) SetBounds(min, max mgl64.Vec3) error {
	if err := validateBounds(min, max); err != nil {
		return err
	}
	o.min, o.max = min, max
	o.center = min.Add(max).Mul(0.5)
	o.extent = max.Sub(min).Mul(0.5)
	return nil
}

func (o *OrientedBox) Copy() Shape {
	c := *o
	return &c
}
