package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalOverlapClosedEndpoints(t *testing.T) {
	a := NewInterval(0, 10)
	b := NewInterval(10, 20)
	assert.True(t, a.Overlap(b), "closed intervals touching at 10 must overlap")

	c := NewInterval(0, 10)
	c.OpenHigh = true
	assert.False(t, c.Overlap(b), "open high end must not overlap a closed low end at the same point")
}

func TestIntervalEmptyPropagation(t *testing.T) {
	empty := EmptyInterval()
	full := NewInterval(0, 10)
	assert.True(t, empty.Intersect(full).IsEmpty())
	assert.False(t, empty.Overlap(full))
}

func TestBoxIntersectEmptyPropagates(t *testing.T) {
	b1 := NewBox(0, 0, 10, 10)
	empty := EmptyBox()
	result := b1.Intersect(empty)
	assert.True(t, result.IsEmpty())
}

func TestBoxUnion(t *testing.T) {
	b1 := NewBox(0, 0, 10, 10)
	b2 := NewBox(5, 5, 20, 30)
	u := b1.Union(b2)
	assert.Equal(t, NewBox(0, 0, 20, 30), u)
}

func TestTransformationComposeAndInverse(t *testing.T) {
	outer := NewTransformation(100, 0, OrientR1)
	inner := NewTransformation(10, 20, OrientID)
	composed := outer.Compose(inner)

	p := Point{X: 1, Y: 0}
	direct := outer.Apply(inner.Apply(p))
	assert.Equal(t, direct, composed.Apply(p))

	inv := composed.Inverse()
	back := inv.Apply(composed.Apply(p))
	assert.Equal(t, p, back)
}

func TestTransformationApplyBoxNormalises(t *testing.T) {
	b := NewBox(0, 0, 100, 20)
	t90 := NewTransformation(0, 0, OrientR1)
	out := t90.ApplyBox(b)
	require.False(t, out.IsEmpty())
	assert.Equal(t, DbU(-20), out.XMin())
	assert.Equal(t, DbU(0), out.XMax())
}

func TestDecomposeLShape(t *testing.T) {
	// L-shape: matches scenario A's silhouette but as a single polygon.
	verts := []Point{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 60}, {X: 80, Y: 60},
		{X: 80, Y: 20}, {X: 0, Y: 20},
	}
	boxes, err := Decompose(verts)
	require.NoError(t, err)
	require.NotEmpty(t, boxes)

	var total DbU
	for _, b := range boxes {
		total += b.Width() * b.Height()
	}
	assert.Equal(t, DbU(100*20+20*40), total)
}

func TestDecomposeRejectsNonOrthogonal(t *testing.T) {
	verts := []Point{{X: 0, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 10}}
	_, err := Decompose(verts)
	assert.ErrorIs(t, err, ErrRectilinearNotOrthogonal)
}

func TestDecomposeRejectsSelfTouch(t *testing.T) {
	// Figure-eight-like ring that revisits (10,10).
	verts := []Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 10},
		{X: 20, Y: 20}, {X: 10, Y: 20}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	_, err := Decompose(verts)
	assert.ErrorIs(t, err, ErrRectilinearSelfTouch)
}
