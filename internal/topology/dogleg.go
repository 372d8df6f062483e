package topology

import (
	"vlsix/internal/diagnostic"
	"vlsix/internal/entity"
	"vlsix/internal/gauge"
	"vlsix/internal/gcell"
)

// Doglegs is the ordered (head, middle, tail) result of MakeDogleg
// (spec §4.6.3: "Session::getDoglegs() contains the three produced
// segments in the order (head, middle, tail)").
type Doglegs struct {
	Head, Middle, Tail *AutoSegment
}

// MakeDogleg splits seg at cell by inserting two orthogonal
// sub-segments joined by two new contacts (spec §4.6.3). g supplies the
// gauge used to pick the middle segment's layer: the depth immediately
// above or below the current one, preferring whichever side the gauge
// reports as paired.
func (e *Engine) MakeDogleg(segID entity.ID, cell *gcell.GCell, g gauge.RoutingGauge) (Doglegs, error) {
	seg, ok := e.segments[segID]
	if !ok {
		return Doglegs{}, diagnostic.Wrap(diagnostic.ErrBadAnchor, "makeDogleg: unknown segment")
	}
	if seg.IsFixed() {
		return Doglegs{}, diagnostic.Wrap(diagnostic.ErrFixedSegment, "makeDogleg")
	}

	src, srcOK := e.contacts[seg.SourceID]
	tgt, tgtOK := e.contacts[seg.TargetID]
	if !srcOK || !tgtOK {
		return Doglegs{}, diagnostic.Wrap(diagnostic.ErrBadAnchor, "makeDogleg: dangling endpoint")
	}

	if !withinSpan(seg, src, tgt, cell) {
		return Doglegs{}, diagnostic.Wrap(diagnostic.ErrSpan, "makeDogleg: gcell outside segment span")
	}

	middleDepth, ok := pairedDepth(seg.Depth, cell, g)
	if !ok {
		middleDepth = seg.Depth
	}
	middleLayer := seg.Layer
	if ml, ok := g.RoutingLayer(middleDepth); ok {
		middleLayer = ml
	}

	contactA := &AutoContact{
		ID:       entity.NextID(),
		GCellRow: cell.Row,
		GCellCol: cell.Col,
		Layer:    seg.Layer,
		Position: cell.BBox.Center(),
		Topo:     Turn,
	}
	contactB := &AutoContact{
		ID:       entity.NextID(),
		GCellRow: cell.Row,
		GCellCol: cell.Col,
		Layer:    middleLayer,
		Position: cell.BBox.Center(),
		Topo:     Turn,
	}
	e.CreateContact(contactA)
	e.CreateContact(contactB)

	head := &AutoSegment{
		ID:             entity.NextID(),
		Flags:          seg.Flags &^ (Canonical | Dogleg),
		Depth:          seg.Depth,
		Layer:          seg.Layer,
		SourceID:       seg.SourceID,
		TargetID:       contactA.ID,
		OptimalAxisMin: seg.OptimalAxisMin,
		OptimalAxisMax: seg.OptimalAxisMax,
		ParentID:       seg.ID,
	}
	middle := &AutoSegment{
		ID:       entity.NextID(),
		Flags:    perpendicular(seg.Flags) | Dogleg,
		Depth:    middleDepth,
		Layer:    middleLayer,
		SourceID: contactA.ID,
		TargetID: contactB.ID,
		ParentID: seg.ID,
	}
	tail := &AutoSegment{
		ID:             entity.NextID(),
		Flags:          seg.Flags &^ (Canonical | Dogleg),
		Depth:          seg.Depth,
		Layer:          seg.Layer,
		SourceID:       contactB.ID,
		TargetID:       seg.TargetID,
		OptimalAxisMin: seg.OptimalAxisMin,
		OptimalAxisMax: seg.OptimalAxisMax,
		ParentID:       seg.ID,
	}

	e.CreateSegment(head)
	e.CreateSegment(middle)
	e.CreateSegment(tail)

	contactA.AddSlave(head.ID)
	contactA.AddSlave(middle.ID)
	contactB.AddSlave(middle.ID)
	contactB.AddSlave(tail.ID)
	src.RemoveSlave(seg.ID)
	src.AddSlave(head.ID)
	tgt.RemoveSlave(seg.ID)
	tgt.AddSlave(tail.ID)

	e.DestroySegment(seg.ID)

	return Doglegs{Head: head, Middle: middle, Tail: tail}, nil
}

func perpendicular(f Flags) Flags {
	if f.Has(Horizontal) {
		return f&^Horizontal | Vertical
	}
	return f&^Vertical | Horizontal
}

func withinSpan(seg *AutoSegment, src, tgt *AutoContact, cell *gcell.GCell) bool {
	if seg.IsHorizontal() {
		lo, hi := src.GCellCol, tgt.GCellCol
		if lo > hi {
			lo, hi = hi, lo
		}
		return cell.Col >= lo && cell.Col <= hi
	}
	lo, hi := src.GCellRow, tgt.GCellRow
	if lo > hi {
		lo, hi = hi, lo
	}
	return cell.Row >= lo && cell.Row <= hi
}

func pairedDepth(depth uint32, cell *gcell.GCell, g gauge.RoutingGauge) (uint32, bool) {
	if up, ok := g.PairedDepth(depth, true); ok {
		return up, true
	}
	if down, ok := g.PairedDepth(depth, false); ok {
		return down, true
	}
	return depth, false
}
