// Package shape holds the collision geometry attached to entities.
//
// Shapes are plain data: local-space parameters plus a world transform that the
// owning entity refreshes every tick. All overlap logic lives in package intersect.
package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrMalformedShape is returned when shape parameters break their invariants.
var ErrMalformedShape = errors.New("malformed shape")

// Kind discriminates shape variants in the dispatch table.
type Kind uint8

const (
	KindSphere Kind = iota
	KindAABB
	KindOBB

	// KindCustom is the first kind available to shapes defined outside this package.
	KindCustom Kind = 16
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindAABB:
		return "aabb"
	case KindOBB:
		return "obb"
	default:
		return fmt.Sprintf("custom(%d)", uint8(k))
	}
}

// Shape is implemented by every collision volume.
type Shape interface {
	Kind() Kind
	Transform() mgl64.Mat4
	SetTransform(m mgl64.Mat4)
	// Copy returns an independent shape with identical fields and transform.
	Copy() Shape
}

// Placement carries the world transform shared by all variants.
// Embed it to implement the transform half of Shape.
type Placement struct {
	transform mgl64.Mat4
}

func identity() Placement {
	return Placement{transform: mgl64.Ident4()}
}

func (p *Placement) Transform() mgl64.Mat4 {
	return p.transform
}

func (p *Placement) SetTransform(m mgl64.Mat4) {
	p.transform = m
}

func validateBounds(min, max mgl64.Vec3) error {
	for i := 0; i < 3; i++ {
		if math.IsNaN(min[i]) || math.IsNaN(max[i]) {
			return fmt.Errorf("%w: NaN bound on axis %d", ErrMalformedShape, i)
		}
		if min[i] > max[i] {
			return fmt.Errorf("%w: min %v exceeds max %v on axis %d", ErrMalformedShape, min[i], max[i], i)
		}
	}
	return nil
}
