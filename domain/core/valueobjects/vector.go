package valueobjects

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector is an immutable value object for a point or displacement in 3D map
// space. The z component stays 0 for flat maps.
type Vector struct {
	vec r3.Vec
}

// NewVector creates a vector from its three components
func NewVector(x, y, z float64) Vector {
	return Vector{vec: r3.Vec{X: x, Y: y, Z: z}}
}

// ZeroVector returns the zero vector
func ZeroVector() Vector {
	return Vector{}
}

// X returns the X component
func (v Vector) X() float64 {
	return v.vec.X
}

// Y returns the Y component
func (v Vector) Y() float64 {
	return v.vec.Y
}

// Z returns the Z component
func (v Vector) Z() float64 {
	return v.vec.Z
}

// Add returns the component-wise sum of two vectors
func (v Vector) Add(other Vector) Vector {
	return Vector{vec: r3.Add(v.vec, other.vec)}
}

// Sub returns the component-wise difference of two vectors
func (v Vector) Sub(other Vector) Vector {
	return Vector{vec: r3.Sub(v.vec, other.vec)}
}

// Scale returns the vector multiplied by a scalar
func (v Vector) Scale(f float64) Vector {
	return Vector{vec: r3.Scale(f, v.vec)}
}

// Length returns the Euclidean length of the vector
func (v Vector) Length() float64 {
	return r3.Norm(v.vec)
}

// DistanceTo returns the Euclidean distance to another vector
func (v Vector) DistanceTo(other Vector) float64 {
	return r3.Norm(r3.Sub(v.vec, other.vec))
}

// Equals checks if two vectors are exactly equal, component by component
func (v Vector) Equals(other Vector) bool {
	return v.vec == other.vec
}

// IsZero checks if the vector is the zero vector
func (v Vector) IsZero() bool {
	return v.vec == r3.Vec{}
}

// IsFinite checks that no component is NaN or infinite
func (v Vector) IsFinite() bool {
	return isFinite(v.vec.X) && isFinite(v.vec.Y) && isFinite(v.vec.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
