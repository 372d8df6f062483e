package session

import (
	"sort"

	"vlsix/internal/diagnostic"
	"vlsix/internal/entity"
	"vlsix/internal/topology"
)

// Revalidate runs the six-step pipeline of spec §4.6.2 exactly once
// per call; if nothing is pending it is a no-op, giving the
// idempotence property spec §8 requires ("revalidate()+revalidate()
// is a no-op after the first").
func (s *Session) Revalidate() error {
	if len(s.pendingNets) == 0 && len(s.pendingContacts) == 0 && len(s.pendingSegments) == 0 &&
		len(s.destroySegments) == 0 && len(s.destroyContacts) == 0 {
		return nil
	}

	s.revalidateNets()

	chains := s.chains()
	for _, chain := range chains {
		if err := s.canonicalizeChain(chain); err != nil {
			if diagnostic.Fatal(err) {
				s.needsRepair = true
				return err
			}
		}
	}

	s.revalidateContacts()
	s.revalidateSegments()
	s.bulkDestroy()
	s.reorderTracks(chains)

	s.pendingNets = make(map[entity.ID]bool)
	s.pendingContacts = make(map[entity.ID]bool)
	s.pendingSegments = make(map[entity.ID]bool)

	return nil
}

// revalidateNets is step 1: recompute hook rings for every invalidated
// net that has registered seeds.
func (s *Session) revalidateNets() {
	for _, netID := range sortedIDs(s.pendingNets) {
		seeds, ok := s.netSeeds[netID]
		if !ok {
			continue
		}
		s.netRings[netID] = s.engine.BuildHookRing(seeds)
	}
}

// chains groups every pending segment into its maximal aligned chain
// (spec §4.6.1: segments joined end-to-end through Turn contacts,
// sharing depth and orientation), sorted for deterministic iteration.
func (s *Session) chains() [][]*topology.AutoSegment {
	visited := make(map[entity.ID]bool)
	var chains [][]*topology.AutoSegment

	for _, id := range sortedIDs(s.pendingSegments) {
		if visited[id] {
			continue
		}
		seed, ok := s.engine.Segment(id)
		if !ok {
			continue
		}
		chain := s.collectChain(seed, visited)
		if len(chain) > 0 {
			chains = append(chains, chain)
		}
	}

	sort.Slice(chains, func(i, j int) bool { return chains[i][0].ID < chains[j][0].ID })
	return chains
}

func (s *Session) collectChain(seed *topology.AutoSegment, visited map[entity.ID]bool) []*topology.AutoSegment {
	var chain []*topology.AutoSegment
	queue := []*topology.AutoSegment{seed}

	for len(queue) > 0 {
		seg := queue[0]
		queue = queue[1:]
		if visited[seg.ID] {
			continue
		}
		visited[seg.ID] = true
		chain = append(chain, seg)

		for _, contactID := range [2]entity.ID{seg.SourceID, seg.TargetID} {
			c, ok := s.engine.Contact(contactID)
			if !ok || c.Topo != topology.Turn {
				continue
			}
			for _, nid := range c.Slaves() {
				if visited[nid] || nid == seg.ID {
					continue
				}
				n, ok := s.engine.Segment(nid)
				if !ok || n.Depth != seg.Depth || n.IsHorizontal() != seg.IsHorizontal() {
					continue
				}
				queue = append(queue, n)
			}
		}
	}

	sort.Slice(chain, func(i, j int) bool { return chain[i].ID < chain[j].ID })
	return chain
}

// canonicalizeChain is step 2, guarding topology.Canonicalize's panic
// (empty chain) and turning it into the CanonicalBug fatal error spec
// §7 names, rather than letting it escape the revalidation pass.
func (s *Session) canonicalizeChain(chain []*topology.AutoSegment) (err error) {
	if len(chain) == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = diagnostic.Wrap(diagnostic.ErrCanonicalBug, "session.canonicalizeChain")
		}
	}()
	topology.Canonicalize(chain)
	return nil
}

// revalidateContacts is step 3: re-centre each invalidated contact
// within its gcell, when a grid is attached.
func (s *Session) revalidateContacts() {
	if s.grid == nil {
		return
	}
	for _, id := range sortedIDs(s.pendingContacts) {
		c, ok := s.engine.Contact(id)
		if !ok {
			continue
		}
		if c.GCellRow < 0 || c.GCellRow >= s.grid.Rows() || c.GCellCol < 0 || c.GCellCol >= s.grid.Cols() {
			continue
		}
		c.Position = s.grid.At(c.GCellRow, c.GCellCol).BBox.Center()
	}
}

// revalidateSegments is step 4: refresh spin flags from the endpoint
// contacts' depth span and emit Revalidate/RevalidatePPitch
// notifications.
func (s *Session) revalidateSegments() {
	for _, id := range sortedIDs(s.pendingSegments) {
		seg, ok := s.engine.Segment(id)
		if !ok {
			continue
		}
		seg.Flags &^= (topology.SourceTop | topology.SourceBottom | topology.TargetTop | topology.TargetBottom)

		if src, ok := s.engine.Contact(seg.SourceID); ok {
			if src.MaxDepth > seg.Depth {
				seg.Flags |= topology.SourceTop
			}
			if src.MinDepth < seg.Depth {
				seg.Flags |= topology.SourceBottom
			}
		}
		if tgt, ok := s.engine.Contact(seg.TargetID); ok {
			if tgt.MaxDepth > seg.Depth {
				seg.Flags |= topology.TargetTop
			}
			if tgt.MinDepth < seg.Depth {
				seg.Flags |= topology.TargetBottom
			}
		}

		if s.events != nil {
			s.events.Publish(diagnostic.EventRevalidate, uint64(seg.ID))
			if seg.Flags.Has(topology.InvalidatedLayer) {
				s.events.Publish(diagnostic.EventRevalidatePPitch, uint64(seg.ID))
			}
		}
		seg.Flags &^= (topology.Invalidated | topology.InvalidatedSource | topology.InvalidatedTarget | topology.InvalidatedLayer)
	}
}

// bulkDestroy is step 5.
func (s *Session) bulkDestroy() {
	var orphanedContacts []entity.ID
	for _, id := range sortedIDs(s.destroySegments) {
		if seg, ok := s.engine.Segment(id); ok {
			orphanedContacts = append(orphanedContacts, seg.SourceID, seg.TargetID)
		}
		s.engine.DestroySegment(id)
		if s.events != nil {
			s.events.Publish(diagnostic.EventDestroy, uint64(id))
		}
	}
	s.destroySegments = make(map[entity.ID]bool)

	for _, id := range sortedIDs(s.destroyContacts) {
		if s.engine.DestroyContact(id) && s.events != nil {
			s.events.Publish(diagnostic.EventDestroy, uint64(id))
		}
	}
	s.destroyContacts = make(map[entity.ID]bool)

	// A contact whose last slave segment was just bulk-destroyed
	// becomes isolated as fallout (spec's AutoContact row: "destroyed
	// only when isolated"); recheck every endpoint touched this pass.
	sort.Slice(orphanedContacts, func(i, j int) bool { return orphanedContacts[i] < orphanedContacts[j] })
	for _, cid := range orphanedContacts {
		if c, ok := s.engine.Contact(cid); ok && c.IsIsolated() {
			if s.engine.DestroyContact(cid) && s.events != nil {
				s.events.Publish(diagnostic.EventDestroy, uint64(cid))
			}
		}
	}
}

// reorderTracks is step 6: for each (depth, axis) track touched by
// this revalidation, sort its segments by (source-u ascending, id
// ascending) and verify no two non-fixed segments overlap along the
// track's free coordinate.
func (s *Session) reorderTracks(chains [][]*topology.AutoSegment) {
	type trackKey struct {
		depth uint32
		axis  int64
	}
	tracks := make(map[trackKey][]*topology.AutoSegment)
	for _, chain := range chains {
		for _, seg := range chain {
			k := trackKey{seg.Depth, int64(seg.Axis)}
			tracks[k] = append(tracks[k], seg)
		}
	}

	keys := make([]trackKey, 0, len(tracks))
	for k := range tracks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].depth != keys[j].depth {
			return keys[i].depth < keys[j].depth
		}
		return keys[i].axis < keys[j].axis
	})

	for _, k := range keys {
		segs := tracks[k]
		sort.Slice(segs, func(i, j int) bool {
			if segs[i].SourceU != segs[j].SourceU {
				return segs[i].SourceU < segs[j].SourceU
			}
			return segs[i].ID < segs[j].ID
		})
		for i := 1; i < len(segs); i++ {
			prev, next := segs[i-1], segs[i]
			if prev.IsFixed() || next.IsFixed() {
				continue
			}
			if prev.TargetU > next.SourceU {
				s.needsRepair = true
				if s.events != nil {
					s.events.Publish(diagnostic.EventInvalidate, uint64(next.ID))
				}
			}
		}
	}
}
