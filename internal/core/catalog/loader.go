package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
	"gopkg.in/yaml.v3"
)

// Document is a shape prototype file, in JSON or YAML.
//
//	shapes:
//	  - name: car
//	    type: obb
//	    min: {x: -1, y: -2, z: 0}
//	    max: {x: 1, y: 2, z: 1.2}
//	  - name: timebonus
//	    type: sphere
//	    center: {x: 0, y: 0, z: 0.5}
//	    radius: 0.8
type Document struct {
	Shapes []ConfigShape `json:"shapes" yaml:"shapes"`
}

type ConfigShape struct {
	Name   string      `json:"name" yaml:"name"`
	Type   string      `json:"type" yaml:"type"`
	Min    *ConfigVec3 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *ConfigVec3 `json:"max,omitempty" yaml:"max,omitempty"`
	Center *ConfigVec3 `json:"center,omitempty" yaml:"center,omitempty"`
	Radius *float64    `json:"radius,omitempty" yaml:"radius,omitempty"`
}

type ConfigVec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (v ConfigVec3) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// LoadJSON loads a document from JSON reader.
func LoadJSON(r io.Reader) (*Document, error) {
	var d Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadYAML loads a document from YAML reader.
func LoadYAML(r io.Reader) (*Document, error) {
	var d Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return &d, nil
		}
		return nil, err
	}
	return &d, nil
}

// Build constructs the shape prototype described by c.
func (c ConfigShape) Build() (shape.Shape, error) {
	var (
		s   shape.Shape
		err error
	)

	switch c.Type {
	case "aabb", "obb":
		if c.Min == nil || c.Max == nil {
			return nil, fmt.Errorf("shape %s: %s requires min and max: %w", c.Name, c.Type, shape.ErrMalformedShape)
		}
		if c.Type == "aabb" {
			s, err = shape.NewAxisAlignedBox(c.Min.Vec3(), c.Max.Vec3())
		} else {
			s, err = shape.NewOrientedBox(c.Min.Vec3(), c.Max.Vec3())
		}
	case "sphere":
		if c.Center == nil || c.Radius == nil {
			return nil, fmt.Errorf("shape %s: sphere requires center and radius: %w", c.Name, shape.ErrMalformedShape)
		}
		s, err = shape.NewSphere(c.Center.Vec3(), *c.Radius)
	default:
		return nil, fmt.Errorf("shape %s: %q: %w", c.Name, c.Type, ErrUnknownShapeType)
	}

	if err != nil {
		return nil, fmt.Errorf("shape %s: %w", c.Name, err)
	}
	return s, nil
}
