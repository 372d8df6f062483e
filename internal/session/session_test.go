package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vlsix/internal/diagnostic"
	"vlsix/internal/entity"
	"vlsix/internal/gauge"
	"vlsix/internal/gcell"
	"vlsix/internal/layer"
	"vlsix/internal/topology"
	"vlsix/pkg/geometry"
)

const metal1 layer.ID = 1

type stubGauge struct{}

func (stubGauge) LayerDepth(layer.ID) uint32                   { return 0 }
func (stubGauge) RoutingLayer(uint32) (layer.ID, bool)          { return metal1, true }
func (stubGauge) ContactLayer(uint32) (layer.ID, bool)          { return metal1, true }
func (stubGauge) Pitch(uint32) geometry.DbU                     { return 100 }
func (stubGauge) Offset(uint32) geometry.DbU                    { return 0 }
func (stubGauge) WireWidth(uint32) geometry.DbU                 { return 10 }
func (stubGauge) ViaWidth(uint32) geometry.DbU                  { return 10 }
func (stubGauge) Direction(uint32) gauge.Direction               { return gauge.Horizontal }
func (stubGauge) ExtensionCap(layer.ID) geometry.DbU             { return 0 }
func (stubGauge) MinimalSpacing(layer.ID) geometry.DbU           { return 0 }
func (stubGauge) MinimalSize(layer.ID) geometry.DbU              { return 0 }
func (stubGauge) PairedDepth(depth uint32, up bool) (uint32, bool) {
	if up {
		return depth + 2, true
	}
	return 0, false
}
func (stubGauge) Depths() uint32 { return 8 }

func resetSession() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

func newTestContact(e *topology.Engine, row, col int, l layer.ID, topo topology.ContactTopology) *topology.AutoContact {
	c := &topology.AutoContact{ID: entity.NextID(), GCellRow: row, GCellCol: col, Layer: l, Topo: topo}
	e.CreateContact(c)
	return c
}

func newTestSegment(e *topology.Engine, src, tgt *topology.AutoContact, depth uint32, l layer.ID) *topology.AutoSegment {
	s := &topology.AutoSegment{
		ID:       entity.NextID(),
		Flags:    topology.Horizontal,
		Depth:    depth,
		Layer:    l,
		SourceID: src.ID,
		TargetID: tgt.ID,
	}
	e.CreateSegment(s)
	src.AddSlave(s.ID)
	tgt.AddSlave(s.ID)
	return s
}

func TestOpenCloseIdempotentWithNoMutations(t *testing.T) {
	resetSession()
	entity.ResetCounterForTest()
	e := topology.NewEngine()
	events := diagnostic.NewEventQueue()

	guard, err := Open(1, e, stubGauge{}, events)
	require.NoError(t, err)
	require.NoError(t, guard.Close())
	require.Empty(t, events.History())
	require.Nil(t, Current())
}

func TestReentrantOpenJoinsSameOwner(t *testing.T) {
	resetSession()
	entity.ResetCounterForTest()
	e := topology.NewEngine()

	g1, err := Open(7, e, stubGauge{}, nil)
	require.NoError(t, err)
	g2, err := Open(7, e, stubGauge{}, nil)
	require.NoError(t, err)

	require.Same(t, g1.s, g2.s)
	require.NoError(t, g2.Close())
	require.NotNil(t, Current()) // still held open by g1
	require.NoError(t, g1.Close())
	require.Nil(t, Current())
}

func TestOpenDifferentOwnerFailsWithSessionReopen(t *testing.T) {
	resetSession()
	e := topology.NewEngine()

	g1, err := Open(1, e, stubGauge{}, nil)
	require.NoError(t, err)
	defer g1.Close()

	_, err = Open(2, e, stubGauge{}, nil)
	require.ErrorIs(t, err, diagnostic.ErrSessionReopen)
}

func TestOperationsFailWithoutOpenSession(t *testing.T) {
	resetSession()
	e := topology.NewEngine()
	s := &Session{engine: e}

	err := s.Invalidate(SegmentKind, 1)
	require.ErrorIs(t, err, diagnostic.ErrNoSession)
}

func TestRevalidateCanonicalizesChainAndClearsPending(t *testing.T) {
	resetSession()
	entity.ResetCounterForTest()
	e := topology.NewEngine()

	a := newTestContact(e, 0, 0, metal1, topology.Terminal)
	mid := newTestContact(e, 0, 1, metal1, topology.Turn)
	b := newTestContact(e, 0, 2, metal1, topology.Terminal)

	s1 := newTestSegment(e, a, mid, 2, metal1)
	s1.OptimalAxisMin, s1.OptimalAxisMax = 0, 100
	s2 := newTestSegment(e, mid, b, 2, metal1)
	s2.OptimalAxisMin, s2.OptimalAxisMax = 20, 120

	guard, err := Open(99, e, stubGauge{}, diagnostic.NewEventQueue())
	require.NoError(t, err)

	require.NoError(t, guard.s.Invalidate(SegmentKind, s1.ID))
	require.NoError(t, guard.s.Invalidate(SegmentKind, s2.ID))
	require.NoError(t, guard.Close())

	canonicalCount := 0
	if s1.IsCanonical() {
		canonicalCount++
	}
	if s2.IsCanonical() {
		canonicalCount++
	}
	require.Equal(t, 1, canonicalCount)
	require.Equal(t, s1.Axis, s2.Axis)
}

func TestRevalidateIsNoOpTheSecondTime(t *testing.T) {
	resetSession()
	entity.ResetCounterForTest()
	e := topology.NewEngine()
	a := newTestContact(e, 0, 0, metal1, topology.Terminal)
	b := newTestContact(e, 0, 1, metal1, topology.Terminal)
	seg := newTestSegment(e, a, b, 2, metal1)

	events := diagnostic.NewEventQueue()
	guard, err := Open(3, e, stubGauge{}, events)
	require.NoError(t, err)
	require.NoError(t, guard.s.Invalidate(SegmentKind, seg.ID))

	require.NoError(t, guard.s.Revalidate())
	firstLen := len(events.History())
	require.NoError(t, guard.s.Revalidate())
	require.Equal(t, firstLen, len(events.History()))

	require.NoError(t, guard.Close())
}

func TestMakeDoglegRecordsHeadMiddleTailOrder(t *testing.T) {
	resetSession()
	entity.ResetCounterForTest()
	e := topology.NewEngine()
	a := newTestContact(e, 0, 0, metal1, topology.Terminal)
	b := newTestContact(e, 0, 3, metal1, topology.Terminal)
	seg := newTestSegment(e, a, b, 2, metal1)

	grid := gcell.NewGrid(
		[]geometry.DbU{0, 100, 200, 300, 400},
		[]geometry.DbU{0, 100},
		4,
	)
	cell := grid.At(0, 1)

	guard, err := Open(5, e, stubGauge{}, nil)
	require.NoError(t, err)
	guard.s.SetGrid(grid)

	dl, err := guard.s.MakeDogleg(seg.ID, cell)
	require.NoError(t, err)

	doglegs := guard.s.GetDoglegs()
	require.Len(t, doglegs, 1)
	require.Equal(t, dl.Head.ID, doglegs[0].Head.ID)
	require.Equal(t, dl.Middle.ID, doglegs[0].Middle.ID)
	require.Equal(t, dl.Tail.ID, doglegs[0].Tail.ID)

	require.NoError(t, guard.Close())
}

func TestDestroyRequestRemovesSegmentAndOrphanedContact(t *testing.T) {
	resetSession()
	entity.ResetCounterForTest()
	e := topology.NewEngine()
	a := newTestContact(e, 0, 0, metal1, topology.Terminal)
	b := newTestContact(e, 0, 1, metal1, topology.Terminal)
	seg := newTestSegment(e, a, b, 2, metal1)

	guard, err := Open(6, e, stubGauge{}, nil)
	require.NoError(t, err)
	require.NoError(t, guard.s.DestroyRequest(seg.ID))
	require.NoError(t, guard.Close())

	_, ok := e.Segment(seg.ID)
	require.False(t, ok)
	_, ok = e.Contact(a.ID)
	require.False(t, ok)
	_, ok = e.Contact(b.ID)
	require.False(t, ok)
}
