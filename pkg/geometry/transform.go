package geometry

// Orientation is one of the eight Manhattan-preserving orientations: the
// four axis-aligned rotations, each with an optional mirror. VLSI layout
// transformations never use an arbitrary rotation angle — every instance
// placement is one of these eight so that layer masks stay axis-aligned.
type Orientation int

const (
	OrientID Orientation = iota // identity
	OrientR1                    // rotate 90°
	OrientR2                    // rotate 180°
	OrientR3                    // rotate 270°
	OrientMX                    // mirror X axis
	OrientMX_R1
	OrientMX_R2
	OrientMX_R3
)

// Transformation composes an Orientation with a translation, applied
// orientation-then-translate. Adapted from the teacher's AffineTransform
// (pkg/geometry/types.go): the same Apply/Compose/Inverse contract, but
// restricted to the eight Manhattan orientations instead of an arbitrary
// 2x2 matrix, since spec §3 requires transformations to compose along an
// instance path while keeping every shape axis-aligned.
type Transformation struct {
	Tx, Ty DbU
	Orient Orientation
}

// Identity returns the identity transformation.
func Identity() Transformation {
	return Transformation{}
}

// NewTransformation creates a translation with the given orientation.
func NewTransformation(tx, ty DbU, o Orientation) Transformation {
	return Transformation{Tx: tx, Ty: ty, Orient: o}
}

// rotate90 applies a single 90° counter-clockwise rotation to a
// coordinate pair around the origin.
func rotate90(x, y DbU) (DbU, DbU) {
	return -y, x
}

func mirrorX(x, y DbU) (DbU, DbU) {
	return x, -y
}

// applyOrientation applies just the orientation component to a point,
// with no translation.
func applyOrientation(o Orientation, x, y DbU) (DbU, DbU) {
	switch o {
	case OrientID:
		return x, y
	case OrientR1:
		return rotate90(x, y)
	case OrientR2:
		x, y = rotate90(x, y)
		return rotate90(x, y)
	case OrientR3:
		x, y = rotate90(x, y)
		x, y = rotate90(x, y)
		return rotate90(x, y)
	case OrientMX:
		return mirrorX(x, y)
	case OrientMX_R1:
		x, y = mirrorX(x, y)
		return rotate90(x, y)
	case OrientMX_R2:
		x, y = mirrorX(x, y)
		x, y = rotate90(x, y)
		return rotate90(x, y)
	case OrientMX_R3:
		x, y = mirrorX(x, y)
		x, y = rotate90(x, y)
		x, y = rotate90(x, y)
		return rotate90(x, y)
	default:
		return x, y
	}
}

// Apply transforms a point.
func (t Transformation) Apply(p Point) Point {
	x, y := applyOrientation(t.Orient, p.X, p.Y)
	return Point{X: x + t.Tx, Y: y + t.Ty}
}

// ApplyBox transforms a box, re-normalising the corners so the result
// still satisfies min<=max on each axis regardless of orientation.
func (t Transformation) ApplyBox(b Box) Box {
	if b.IsEmpty() {
		return b
	}
	p1 := t.Apply(Point{X: b.XMin(), Y: b.YMin()})
	p2 := t.Apply(Point{X: b.XMax(), Y: b.YMax()})
	xmin, xmax := p1.X, p2.X
	if xmin > xmax {
		xmin, xmax = xmax, xmin
	}
	ymin, ymax := p1.Y, p2.Y
	if ymin > ymax {
		ymin, ymax = ymax, ymin
	}
	return NewBox(xmin, ymin, xmax, ymax)
}

// orientCompose maps a pair of composed orientations to the resulting
// orientation, derived by applying both in sequence to the four unit
// basis outcomes. Composition of two Manhattan orientations is again a
// Manhattan orientation, and the group is small enough to tabulate.
var orientCompose = buildOrientCompose()

func buildOrientCompose() map[[2]Orientation]Orientation {
	all := []Orientation{OrientID, OrientR1, OrientR2, OrientR3, OrientMX, OrientMX_R1, OrientMX_R2, OrientMX_R3}
	table := make(map[[2]Orientation]Orientation, len(all)*len(all))
	// Represent each orientation by its effect on the two basis vectors,
	// then find which tabulated orientation matches the composed effect.
	effect := func(o Orientation) [2][2]DbU {
		x1, y1 := applyOrientation(o, 1, 0)
		x2, y2 := applyOrientation(o, 0, 1)
		return [2][2]DbU{{x1, y1}, {x2, y2}}
	}
	effects := make(map[Orientation][2][2]DbU, len(all))
	for _, o := range all {
		effects[o] = effect(o)
	}
	for _, outer := range all {
		for _, inner := range all {
			// Composed effect: apply inner first, then outer.
			e1x, e1y := applyOrientation(inner, 1, 0)
			e1x, e1y = applyOrientation(outer, e1x, e1y)
			e2x, e2y := applyOrientation(inner, 0, 1)
			e2x, e2y = applyOrientation(outer, e2x, e2y)
			composed := [2][2]DbU{{e1x, e1y}, {e2x, e2y}}
			for cand, eff := range effects {
				if eff == composed {
					table[[2]Orientation{outer, inner}] = cand
					break
				}
			}
		}
	}
	return table
}

// Compose returns the transformation equivalent to applying `other`
// first, then the receiver — i.e. the transform of an occurrence nested
// one level deeper in the instance path (spec §3: "transformations
// compose along the path").
func (t Transformation) Compose(other Transformation) Transformation {
	orient := orientCompose[[2]Orientation{t.Orient, other.Orient}]
	p := t.Apply(Point{X: other.Tx, Y: other.Ty})
	return Transformation{Tx: p.X, Ty: p.Y, Orient: orient}
}

// invertOrientation returns the orientation whose composition with o is
// identity. Every one of the eight Manhattan orientations is its own
// inverse except R1/R3, which swap.
func invertOrientation(o Orientation) Orientation {
	switch o {
	case OrientR1:
		return OrientR3
	case OrientR3:
		return OrientR1
	default:
		return o
	}
}

// Inverse returns the inverse transformation.
func (t Transformation) Inverse() Transformation {
	inv := invertOrientation(t.Orient)
	x, y := applyOrientation(inv, -t.Tx, -t.Ty)
	return Transformation{Tx: x, Ty: y, Orient: inv}
}
