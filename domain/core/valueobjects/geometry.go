package valueobjects

import "math"

// Box is an axis-aligned box in map space
type Box struct {
	min Vector
	max Vector
}

// NewBox creates a box spanning the two given corners, in any order
func NewBox(a, b Vector) Box {
	return Box{
		min: NewVector(math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y()), math.Min(a.Z(), b.Z())),
		max: NewVector(math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y()), math.Max(a.Z(), b.Z())),
	}
}

// BoxAround creates the cube of the given half-extent centered on a point
func BoxAround(center Vector, radius float64) Box {
	offset := NewVector(radius, radius, radius)
	return Box{min: center.Sub(offset), max: center.Add(offset)}
}

// Min returns the corner with the smallest components
func (b Box) Min() Vector {
	return b.min
}

// Max returns the corner with the largest components
func (b Box) Max() Vector {
	return b.max
}

// Contains checks whether a point lies inside the box, boundary included
func (b Box) Contains(p Vector) bool {
	return p.X() >= b.min.X() && p.X() <= b.max.X() &&
		p.Y() >= b.min.Y() && p.Y() <= b.max.Y() &&
		p.Z() >= b.min.Z() && p.Z() <= b.max.Z()
}

// Expand grows the box by d in every axis direction
func (b Box) Expand(d float64) Box {
	offset := NewVector(d, d, d)
	return Box{min: b.min.Sub(offset), max: b.max.Add(offset)}
}

// Segment is a line segment between two points in map space
type Segment struct {
	a Vector
	b Vector
}

// NewSegment creates a segment between two endpoints
func NewSegment(a, b Vector) Segment {
	return Segment{a: a, b: b}
}

// A returns the first endpoint
func (s Segment) A() Vector {
	return s.a
}

// B returns the second endpoint
func (s Segment) B() Vector {
	return s.b
}

// Bounds returns the axis-aligned bounding box of the segment
func (s Segment) Bounds() Box {
	return NewBox(s.a, s.b)
}

// Intersects2D checks whether two segments intersect when projected onto the
// XY plane. Endpoint touches count as intersections.
func (s Segment) Intersects2D(other Segment) bool {
	d1 := orientation2D(other.a, other.b, s.a)
	d2 := orientation2D(other.a, other.b, s.b)
	d3 := orientation2D(s.a, s.b, other.a)
	d4 := orientation2D(s.a, s.b, other.b)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear or touching cases
	if d1 == 0 && onSegment2D(other.a, other.b, s.a) {
		return true
	}
	if d2 == 0 && onSegment2D(other.a, other.b, s.b) {
		return true
	}
	if d3 == 0 && onSegment2D(s.a, s.b, other.a) {
		return true
	}
	if d4 == 0 && onSegment2D(s.a, s.b, other.b) {
		return true
	}
	return false
}

// orientation2D returns the signed area of the triangle (a, b, p) in the XY
// plane: positive for counter-clockwise, negative for clockwise, 0 when
// collinear.
func orientation2D(a, b, p Vector) float64 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

// onSegment2D checks whether p, known collinear with the segment (a, b), lies
// within its XY bounds.
func onSegment2D(a, b, p Vector) bool {
	return p.X() >= math.Min(a.X(), b.X()) && p.X() <= math.Max(a.X(), b.X()) &&
		p.Y() >= math.Min(a.Y(), b.Y()) && p.Y() <= math.Max(a.Y(), b.Y())
}
