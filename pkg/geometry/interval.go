package geometry

// Interval is a one-dimensional span [Low, High] in database units. By
// default both ends are closed; OpenLow / OpenHigh flag an end as
// exclusive, which matters only when two intervals touch at a single
// point (spec §4.1: "two segments sharing only an endpoint intersect iff
// their touching endpoints are equal AND neither side is flagged as
// open").
type Interval struct {
	Low, High       DbU
	OpenLow         bool
	OpenHigh        bool
}

// NewInterval creates a closed interval. Panics if low > high: an
// inverted interval is a programmer error, never a runtime input.
func NewInterval(low, high DbU) Interval {
	if low > high {
		panic("geometry: inverted interval")
	}
	return Interval{Low: low, High: high}
}

// EmptyInterval returns the canonical empty interval.
func EmptyInterval() Interval {
	return Interval{Low: 1, High: 0}
}

// IsEmpty reports whether the interval is the canonical empty interval
// (Low > High). Empty intervals never overlap anything, including
// themselves.
func (i Interval) IsEmpty() bool {
	return i.Low > i.High
}

// Length returns High-Low, or 0 for an empty interval.
func (i Interval) Length() DbU {
	if i.IsEmpty() {
		return 0
	}
	return i.High - i.Low
}

// Contains reports whether x lies within the interval, honouring the
// open-end flags.
func (i Interval) Contains(x DbU) bool {
	if i.IsEmpty() {
		return false
	}
	if x < i.Low || x > i.High {
		return false
	}
	if x == i.Low && i.OpenLow {
		return false
	}
	if x == i.High && i.OpenHigh {
		return false
	}
	return true
}

// Overlap reports whether the two intervals intersect. Intersection is
// closed on both ends unless the touching side is flagged open: two
// intervals that share only a single boundary point intersect exactly
// when that shared point is closed on both sides.
func (i Interval) Overlap(o Interval) bool {
	if i.IsEmpty() || o.IsEmpty() {
		return false
	}
	if i.High < o.Low || o.High < i.Low {
		return false
	}
	if i.High == o.Low && (i.OpenHigh || o.OpenLow) {
		return false
	}
	if o.High == i.Low && (o.OpenHigh || i.OpenLow) {
		return false
	}
	return true
}

// Intersect returns the intersection of two intervals, which is the
// empty interval when they do not overlap.
func (i Interval) Intersect(o Interval) Interval {
	if !i.Overlap(o) {
		return EmptyInterval()
	}
	low, openLow := i.Low, i.OpenLow
	if o.Low > low || (o.Low == low && o.OpenLow) {
		low, openLow = o.Low, o.OpenLow
	}
	high, openHigh := i.High, i.OpenHigh
	if o.High < high || (o.High == high && o.OpenHigh) {
		high, openHigh = o.High, o.OpenHigh
	}
	return Interval{Low: low, High: high, OpenLow: openLow, OpenHigh: openHigh}
}

// Union returns the smallest interval enclosing both intervals. An empty
// operand does not participate.
func (i Interval) Union(o Interval) Interval {
	if i.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return i
	}
	return Interval{Low: dbuMin(i.Low, o.Low), High: dbuMax(i.High, o.High)}
}

// Inflate grows the interval by d on both ends (d may be negative to
// shrink). Shrinking past emptiness yields the empty interval.
func (i Interval) Inflate(d DbU) Interval {
	if i.IsEmpty() {
		return i
	}
	low, high := i.Low-d, i.High+d
	if low > high {
		return EmptyInterval()
	}
	return Interval{Low: low, High: high}
}
