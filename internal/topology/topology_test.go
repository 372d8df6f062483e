package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vlsix/internal/diagnostic"
	"vlsix/internal/entity"
	"vlsix/internal/gauge"
	"vlsix/internal/gcell"
	"vlsix/internal/layer"
	"vlsix/pkg/geometry"
)

const (
	metal1 layer.ID = 1
	metal2 layer.ID = 2
)

func newContact(e *Engine, row, col int, l layer.ID, topo ContactTopology) *AutoContact {
	c := &AutoContact{ID: entity.NextID(), GCellRow: row, GCellCol: col, Layer: l, Topo: topo}
	e.CreateContact(c)
	return c
}

func newHSegment(e *Engine, src, tgt *AutoContact, depth uint32, l layer.ID, length geometry.DbU) *AutoSegment {
	s := &AutoSegment{
		ID:       entity.NextID(),
		Flags:    Horizontal,
		Depth:    depth,
		Layer:    l,
		SourceID: src.ID,
		TargetID: tgt.ID,
		Length:   length,
	}
	e.CreateSegment(s)
	src.AddSlave(s.ID)
	tgt.AddSlave(s.ID)
	return s
}

func TestCanonicalizeElectsSmallestIDAndPropagatesAxis(t *testing.T) {
	entity.ResetCounterForTest()
	a := &AutoSegment{ID: 5, OptimalAxisMin: 0, OptimalAxisMax: 100, Axis: 40}
	b := &AutoSegment{ID: 2, OptimalAxisMin: 20, OptimalAxisMax: 80, Axis: 10, Flags: Global}
	c := &AutoSegment{ID: 9, OptimalAxisMin: 30, OptimalAxisMax: 90, Axis: 70, Flags: Canonical}

	elect := Canonicalize([]*AutoSegment{a, b, c})

	require.Same(t, b, elect)
	require.True(t, elect.IsCanonical())
	require.False(t, a.IsCanonical())
	require.False(t, c.IsCanonical())
	require.True(t, a.Flags.Has(WeakGlobal))
	require.True(t, c.Flags.Has(WeakGlobal))
	// intersection of [0,100],[20,80],[30,90] is [30,80], midpoint 55
	require.Equal(t, geometry.DbU(55), elect.Axis)
	require.Equal(t, geometry.DbU(55), a.Axis)
	require.Equal(t, geometry.DbU(55), c.Axis)
}

func TestCanonicalizePanicsOnEmptyChain(t *testing.T) {
	require.Panics(t, func() { Canonicalize(nil) })
}

func TestCompareForCanonicalOrdering(t *testing.T) {
	a := &AutoSegment{ID: 1, Depth: 2, SourceU: 10, Length: 50, Axis: 5}
	b := &AutoSegment{ID: 2, Depth: 2, SourceU: 10, Length: 80, Axis: 5}
	require.True(t, CompareForCanonical(b, a)) // longer sorts first at equal depth/sourceU
}

func TestMakeDoglegSplitsSegmentAndRewiresContacts(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	src := newContact(e, 0, 0, metal1, Terminal)
	tgt := newContact(e, 0, 4, metal1, Terminal)
	seg := newHSegment(e, src, tgt, 2, metal1, 400)

	grid := gcell.NewGrid(
		[]geometry.DbU{0, 100, 200, 300, 400, 500},
		[]geometry.DbU{0, 100},
		8,
	)
	cell := grid.At(0, 2)

	gauge := &stubGauge{depths: 6, paired: map[uint32]uint32{2: 4}}

	dl, err := e.MakeDogleg(seg.ID, cell, gauge)
	require.NoError(t, err)
	require.NotNil(t, dl.Head)
	require.NotNil(t, dl.Middle)
	require.NotNil(t, dl.Tail)

	require.Equal(t, src.ID, dl.Head.SourceID)
	require.Equal(t, dl.Middle.SourceID, dl.Head.TargetID)
	require.Equal(t, dl.Middle.TargetID, dl.Tail.SourceID)
	require.Equal(t, tgt.ID, dl.Tail.TargetID)
	require.True(t, dl.Middle.Flags.Has(Vertical))
	require.Equal(t, uint32(4), dl.Middle.Depth)

	_, stillLinked := e.Segment(seg.ID)
	require.False(t, stillLinked)

	require.NotContains(t, src.Slaves(), seg.ID)
	require.Contains(t, src.Slaves(), dl.Head.ID)
	require.NotContains(t, tgt.Slaves(), seg.ID)
	require.Contains(t, tgt.Slaves(), dl.Tail.ID)
}

func TestMakeDoglegRejectsFixedSegment(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	src := newContact(e, 0, 0, metal1, Terminal)
	tgt := newContact(e, 0, 4, metal1, Terminal)
	seg := newHSegment(e, src, tgt, 2, metal1, 400)
	seg.Flags |= Fixed

	grid := gcell.NewGrid([]geometry.DbU{0, 100, 200}, []geometry.DbU{0, 100}, 8)
	cell := grid.At(0, 0)

	_, err := e.MakeDogleg(seg.ID, cell, &stubGauge{depths: 6})
	require.ErrorIs(t, err, diagnostic.ErrFixedSegment)
}

func TestMakeDoglegRejectsOutOfSpanCell(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	src := newContact(e, 0, 0, metal1, Terminal)
	tgt := newContact(e, 0, 1, metal1, Terminal)
	seg := newHSegment(e, src, tgt, 2, metal1, 100)

	grid := gcell.NewGrid(
		[]geometry.DbU{0, 100, 200, 300},
		[]geometry.DbU{0, 100},
		8,
	)
	cell := grid.At(0, 2) // outside [0,1] column span

	_, err := e.MakeDogleg(seg.ID, cell, &stubGauge{depths: 6})
	require.ErrorIs(t, err, diagnostic.ErrSpan)
}

func TestClassifyTerminalMarksStrongAndWeak(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	pin := newContact(e, 0, 0, metal1, Terminal)
	mid := newContact(e, 0, 1, metal1, Turn)
	far := newContact(e, 0, 2, metal1, Turn)

	s1 := newHSegment(e, pin, mid, 2, metal1, 100)
	s2 := newHSegment(e, mid, far, 2, metal1, 100)

	e.ClassifyTerminal(s1.ID, func(entity.ID) bool { return false })
	e.ClassifyTerminal(s2.ID, func(entity.ID) bool { return false })

	require.True(t, s1.Flags.Has(StrongTerminal))
	require.True(t, s1.Flags.Has(SourceTerminal))
	require.True(t, s2.Flags.Has(WeakTerminal1))
}

func TestClassifyTerminalStopsAtFork(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	pin := newContact(e, 0, 0, metal1, Terminal)
	fork := newContact(e, 0, 1, metal1, Turn)
	leafA := newContact(e, 0, 2, metal1, Turn)
	leafB := newContact(e, 1, 1, metal1, Turn)

	s1 := newHSegment(e, pin, fork, 2, metal1, 100)
	s2 := newHSegment(e, fork, leafA, 2, metal1, 100)
	s3 := newHSegment(e, fork, leafB, 2, metal1, 100)

	e.ClassifyTerminal(s2.ID, func(entity.ID) bool { return false })
	require.False(t, s2.Flags.Has(WeakTerminal1))
	require.False(t, s2.Flags.Has(WeakTerminal2))
	_ = s1
	_ = s3
}

func TestMoveUpChangesDepthAndLayer(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	src := newContact(e, 0, 0, metal1, Terminal)
	tgt := newContact(e, 0, 1, metal1, Terminal)
	seg := newHSegment(e, src, tgt, 2, metal1, 100)

	gauge := &stubGauge{depths: 6, layers: map[uint32]layer.ID{4: metal2}}
	err := e.MoveUp([]*AutoSegment{seg}, gauge)
	require.NoError(t, err)
	require.Equal(t, uint32(4), seg.Depth)
	require.Equal(t, metal2, seg.Layer)
	require.True(t, seg.Flags.Has(InvalidatedLayer))
}

func TestMoveDownRejectsBelowMinimum(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	src := newContact(e, 0, 0, metal1, Terminal)
	tgt := newContact(e, 0, 1, metal1, Terminal)
	seg := newHSegment(e, src, tgt, 0, metal1, 100)

	err := e.MoveDown([]*AutoSegment{seg}, &stubGauge{depths: 6})
	require.Error(t, err)
}

func TestCanSlackenDetectsConstraintViolation(t *testing.T) {
	seg := &AutoSegment{Axis: 500, ConstraintMin: 0, ConstraintMax: 400}
	require.True(t, seg.Axis > seg.ConstraintMax)
	e := &Engine{}
	require.True(t, e.CanSlacken(seg))
}

func TestCanSlackenFalseWhenNoConstraint(t *testing.T) {
	e := &Engine{}
	seg := &AutoSegment{Axis: 500}
	require.False(t, e.CanSlacken(seg))
}

func TestCanReduceRequiresSpinBothEnds(t *testing.T) {
	e := &Engine{}
	seg := &AutoSegment{Length: 10, Flags: SpinTop}
	require.False(t, e.CanReduce(seg, nil, func() int64 { return 100 }))

	seg.Flags |= SpinBottom
	require.True(t, e.CanReduce(seg, nil, func() int64 { return 100 }))
}

func TestReduceMergesContactsAndDestroysSegment(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	src := newContact(e, 0, 0, metal1, Turn)
	tgt := newContact(e, 0, 1, metal1, Turn)
	other := newContact(e, 0, 2, metal1, Terminal)

	seg := newHSegment(e, src, tgt, 2, metal1, 10)
	seg.Flags |= SpinTop | SpinBottom
	keep := newHSegment(e, tgt, other, 2, metal1, 100)

	err := e.Reduce(seg)
	require.NoError(t, err)

	_, ok := e.Segment(seg.ID)
	require.False(t, ok)
	_, ok = e.Contact(tgt.ID)
	require.False(t, ok)
	require.Equal(t, src.ID, keep.SourceID)
}

func TestBuildHookRingFindsConnectedComponentsAndDetectsCycle(t *testing.T) {
	entity.ResetCounterForTest()
	e := NewEngine()
	a := newContact(e, 0, 0, metal1, Terminal)
	b := newContact(e, 0, 1, metal1, Turn)
	c := newContact(e, 0, 2, metal1, Terminal)
	newHSegment(e, a, b, 2, metal1, 100)
	newHSegment(e, b, c, 2, metal1, 100)

	isolated := newContact(e, 5, 5, metal1, Terminal)

	hr := e.BuildHookRing([]entity.ID{a.ID, isolated.ID})
	comps := hr.ConnectedComponents()
	require.Len(t, comps, 2)
	require.False(t, hr.HasCycle())

	segID, ok := hr.SegmentBetween(a.ID, b.ID)
	require.True(t, ok)
	require.NotZero(t, segID)

	// close the triangle to introduce a cycle
	newHSegment(e, c, a, 2, metal1, 200)
	hr2 := e.BuildHookRing([]entity.ID{a.ID})
	require.True(t, hr2.HasCycle())
}

// stubGauge is a minimal gauge.RoutingGauge for topology tests; only the
// methods topology actually calls are meaningfully implemented.
type stubGauge struct {
	depths uint32
	paired map[uint32]uint32
	layers map[uint32]layer.ID
}

func (g *stubGauge) LayerDepth(layer.ID) uint32               { return 0 }
func (g *stubGauge) RoutingLayer(depth uint32) (layer.ID, bool) {
	if l, ok := g.layers[depth]; ok {
		return l, true
	}
	return metal1, true
}
func (g *stubGauge) ContactLayer(uint32) (layer.ID, bool)   { return metal1, true }
func (g *stubGauge) Pitch(uint32) geometry.DbU              { return 100 }
func (g *stubGauge) Offset(uint32) geometry.DbU             { return 0 }
func (g *stubGauge) WireWidth(uint32) geometry.DbU          { return 10 }
func (g *stubGauge) ViaWidth(uint32) geometry.DbU           { return 10 }
func (g *stubGauge) Direction(uint32) gauge.Direction        { return gauge.Horizontal }
func (g *stubGauge) ExtensionCap(layer.ID) geometry.DbU     { return 0 }
func (g *stubGauge) MinimalSpacing(layer.ID) geometry.DbU   { return 0 }
func (g *stubGauge) MinimalSize(layer.ID) geometry.DbU      { return 0 }
func (g *stubGauge) PairedDepth(depth uint32, up bool) (uint32, bool) {
	if !up {
		return 0, false
	}
	d, ok := g.paired[depth]
	return d, ok
}
func (g *stubGauge) Depths() uint32 { return g.depths }
