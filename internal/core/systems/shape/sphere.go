package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var _ Shape = (*Sphere)(nil)

type Sphere struct {
	Placement
	center mgl64.Vec3
	radius float64
}

// NewSphere creates a sphere in local space. A zero radius is allowed.
func NewSphere(center mgl64.Vec3, radius float64) (*Sphere, error) {
	if math.IsNaN(radius) || radius < 0 {
		return nil, fmt.Errorf("%w: sphere radius %v", ErrMalformedShape, radius)
	}
	return &Sphere{Placement: identity(), center: center, radius: radius}, nil
}

// MustSphere is NewSphere for parameters known to be valid.
func MustSphere(center mgl64.Vec3, radius float64) *Sphere {
	s, err := NewSphere(center, radius)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Sphere) Kind() Kind { return KindSphere }

func (s *Sphere) Center() mgl64.Vec3 { return s.center }

func (s *Sphere) Radius() float64 { return s.radius }

func (s *Sphere) SetCenter(center mgl64.Vec3) { s.center = center }

func (s *Sphere) SetRadius(radius float64) error {
	if math.IsNaN(radius) || radius < 0 {
		return fmt.Errorf("%w: sphere radius %v", ErrMalformedShape, radius)
	}
	s.radius = radius
	return nil
}

func (s *Sphere) Copy() Shape {
	c := *s
	return &c
}
