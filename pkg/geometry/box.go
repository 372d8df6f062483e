package geometry

// Box is an axis-aligned rectangle in database units, expressed as
// independent X and Y intervals. Adapted from the teacher's Rect (X, Y,
// Width, Height in float64): the min/max-per-axis shape is kept, but
// Width/Height derived fields are dropped in favour of the X/Y interval
// pair so that Box composes directly with Interval's overlap/empty rules
// (spec §3: "empty boxes propagate through intersect").
type Box struct {
	X, Y Interval
}

// NewBox creates a box from its four coordinates. Panics on xmin>xmax or
// ymin>ymax, matching spec §3's invariant that a well-formed box always
// has min<=max on each axis.
func NewBox(xmin, ymin, xmax, ymax DbU) Box {
	return Box{X: NewInterval(xmin, xmax), Y: NewInterval(ymin, ymax)}
}

// EmptyBox returns the canonical empty box.
func EmptyBox() Box {
	return Box{X: EmptyInterval(), Y: EmptyInterval()}
}

// IsEmpty reports whether either axis is empty.
func (b Box) IsEmpty() bool {
	return b.X.IsEmpty() || b.Y.IsEmpty()
}

// XMin, XMax, YMin, YMax expose the four scalar coordinates.
func (b Box) XMin() DbU { return b.X.Low }
func (b Box) XMax() DbU { return b.X.High }
func (b Box) YMin() DbU { return b.Y.Low }
func (b Box) YMax() DbU { return b.Y.High }

// Width and Height return the axis extents, 0 for an empty box.
func (b Box) Width() DbU  { return b.X.Length() }
func (b Box) Height() DbU { return b.Y.Length() }

// Center returns the box's centre point. Undefined (zero value) for an
// empty box.
func (b Box) Center() Point {
	return Point{X: (b.X.Low + b.X.High) / 2, Y: (b.Y.Low + b.Y.High) / 2}
}

// Contains reports whether p lies within the box, closed on both axes.
func (b Box) Contains(p Point) bool {
	return b.X.Contains(p.X) && b.Y.Contains(p.Y)
}

// Intersects reports whether the two boxes overlap on both axes.
// Touching at a single edge or corner counts as intersecting, matching
// the closed-interval semantics of Interval.Overlap.
func (b Box) Intersects(o Box) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.X.Overlap(o.X) && b.Y.Overlap(o.Y)
}

// Intersect returns the intersection box, empty if the boxes do not
// overlap. Empty operands propagate: intersecting anything with an
// empty box yields an empty box (spec §3).
func (b Box) Intersect(o Box) Box {
	if b.IsEmpty() || o.IsEmpty() {
		return EmptyBox()
	}
	x := b.X.Intersect(o.X)
	y := b.Y.Intersect(o.Y)
	if x.IsEmpty() || y.IsEmpty() {
		return EmptyBox()
	}
	return Box{X: x, Y: y}
}

// Union returns the smallest box enclosing both boxes. An empty operand
// does not participate; Union of two empty boxes is empty.
func (b Box) Union(o Box) Box {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return Box{X: b.X.Union(o.X), Y: b.Y.Union(o.Y)}
}

// Inflate grows the box by d on every side.
func (b Box) Inflate(d DbU) Box {
	if b.IsEmpty() {
		return b
	}
	return Box{X: b.X.Inflate(d), Y: b.Y.Inflate(d)}
}

// Equal reports whether two boxes have identical coordinates, or are both
// empty.
func (b Box) Equal(o Box) bool {
	if b.IsEmpty() && o.IsEmpty() {
		return true
	}
	return b.X == o.X && b.Y == o.Y
}
