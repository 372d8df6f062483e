package geometry

// Point is a 2D point in database units.
//
// Adapted from pkg/geometry.Point2D in the teacher: the same value-type
// shape (X, Y with Add/Sub helpers), redone over DbU instead of float64 so
// that geometric predicates used by the sweep-line and interval tree are
// exact.
type Point struct {
	X, Y DbU
}

// NewPoint creates a Point.
func NewPoint(x, y DbU) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points, treating the receiver's argument as a
// translation vector.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Equal reports whether two points have identical coordinates.
func (p Point) Equal(o Point) bool {
	return p.X == o.X && p.Y == o.Y
}
