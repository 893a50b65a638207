package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotation3 extracts the upper-left 3x3 (rotation and scale) block of m.
func Rotation3(m mgl64.Mat4) mgl64.Mat3 {
	return m.Mat3()
}

// AbsMat3 returns the element-wise absolute value of m.
func AbsMat3(m mgl64.Mat3) mgl64.Mat3 {
	var abs mgl64.Mat3
	for i, v := range m {
		abs[i] = math.Abs(v)
	}
	return abs
}

// AddScalar adds s to every element of m.
func AddScalar(m mgl64.Mat3, s float64) mgl64.Mat3 {
	for i := range m {
		m[i] += s
	}
	return m
}
