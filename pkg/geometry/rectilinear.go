package geometry

import (
	"errors"
	"sort"
)

// ErrRectilinearNotOrthogonal is returned when a polygon has an edge that
// is neither purely horizontal nor purely vertical (spec §4.3: "the
// extractor refused a non-Manhattan shape (45°/polygon)").
var ErrRectilinearNotOrthogonal = errors.New("geometry: polygon edge is not axis-aligned")

// ErrRectilinearSelfTouch is returned when an otherwise-rectilinear
// polygon touches itself at a single vertex. Spec §9's Open Questions
// section notes the source keeps this conservative policy; a more
// permissive decomposition that splits at the touching corner is left as
// a future extension.
var ErrRectilinearSelfTouch = errors.New("geometry: polygon self-touches at a corner")

// Decompose splits a simple, orthogonal (Manhattan) polygon into a set of
// axis-aligned rectangles whose union equals the polygon's interior.
// vertices must describe a closed ring in order (the last point need not
// repeat the first). The decomposition is by horizontal/vertical strip,
// not minimal-rectangle-count, but is exact.
//
// Adapted from the teacher's polygon-clipping helpers
// (pkg/geometry/polygon.go: IsConvex, PointInPolygon, crossProduct) —
// the same edge-orientation and ray-casting techniques, redone over
// integer DbU coordinates and restricted to rectilinear input so the
// result is a clean rectangle tiling instead of a convex hull/clip.
func Decompose(vertices []Point) ([]Box, error) {
	n := len(vertices)
	if n < 4 {
		return nil, ErrRectilinearNotOrthogonal
	}
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		if a.X != b.X && a.Y != b.Y {
			return nil, ErrRectilinearNotOrthogonal
		}
	}
	if selfTouches(vertices) {
		return nil, ErrRectilinearSelfTouch
	}

	xs := uniqueSorted(func(yield func(DbU)) {
		for _, p := range vertices {
			yield(p.X)
		}
	})
	ys := uniqueSorted(func(yield func(DbU)) {
		for _, p := range vertices {
			yield(p.Y)
		}
	})
	if len(xs) < 2 || len(ys) < 2 {
		return nil, ErrRectilinearNotOrthogonal
	}

	var boxes []Box
	for yi := 0; yi < len(ys)-1; yi++ {
		y0, y1 := ys[yi], ys[yi+1]
		midY := y0 + (y1-y0)/2
		// Merge horizontally adjacent covered columns into wider strips.
		var runStart DbU
		inRun := false
		for xi := 0; xi < len(xs)-1; xi++ {
			x0, x1 := xs[xi], xs[xi+1]
			midX := x0 + (x1-x0)/2
			covered := pointInRectilinear(vertices, midX, midY)
			switch {
			case covered && !inRun:
				inRun = true
				runStart = x0
			case !covered && inRun:
				inRun = false
				boxes = append(boxes, NewBox(runStart, y0, x0, y1))
			}
		}
		if inRun {
			boxes = append(boxes, NewBox(runStart, y0, xs[len(xs)-1], y1))
		}
	}
	return boxes, nil
}

// selfTouches reports whether any vertex coordinate occurs more than
// once in the ring (adjacent repeats included), which for a rectilinear
// ring indicates the boundary pinches to a point.
func selfTouches(vertices []Point) bool {
	seen := make(map[Point]int, len(vertices))
	for _, p := range vertices {
		seen[p]++
	}
	for _, count := range seen {
		if count > 1 {
			return true
		}
	}
	return false
}

// pointInRectilinear performs a ray-casting inside test along +X from
// (x,y). Because the polygon is rectilinear, only vertical edges can be
// crossed by a horizontal ray.
func pointInRectilinear(vertices []Point, x, y DbU) bool {
	n := len(vertices)
	crossings := 0
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		if a.X != b.X {
			continue // horizontal edge, never crossed by a horizontal ray
		}
		ylo, yhi := a.Y, b.Y
		if ylo > yhi {
			ylo, yhi = yhi, ylo
		}
		if y < ylo || y >= yhi {
			continue
		}
		if a.X > x {
			crossings++
		}
	}
	return crossings%2 == 1
}

// uniqueSorted collects the values a producer yields, dedupes and sorts
// them ascending.
func uniqueSorted(produce func(yield func(DbU))) []DbU {
	set := make(map[DbU]struct{})
	produce(func(v DbU) { set[v] = struct{}{} })
	out := make([]DbU, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
