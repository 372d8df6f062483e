package topology

import "vlsix/internal/entity"

// ClassifyTerminal recomputes the terminal flags on seg's endpoint
// contacts (spec §4.6.5): a contact anchored directly on a device or
// pin terminal is StrongTerminal; a contact whose only adjacent
// segment chain eventually reaches a strong terminal without crossing
// a fork is a weak terminal, split into WeakTerminal1 (via the source
// side) and WeakTerminal2 (via the target side) depending on which
// side of seg the strong terminal was reached from.
//
// deviceTerminal reports whether a base entity anchors an external
// device/pin terminal; the engine has no notion of devices itself, so
// this is supplied by the caller (mirrors internal/topology's
// consumed-not-produced boundary, spec §6.1).
func (e *Engine) ClassifyTerminal(segID entity.ID, deviceTerminal func(baseID entity.ID) bool) {
	seg, ok := e.segments[segID]
	if !ok {
		return
	}
	src, srcOK := e.contacts[seg.SourceID]
	tgt, tgtOK := e.contacts[seg.TargetID]

	if srcOK {
		e.classifyContact(src, deviceTerminal)
	}
	if tgtOK {
		e.classifyContact(tgt, deviceTerminal)
	}

	seg.Flags &^= (SourceTerminal | TargetTerminal | WeakTerminal1 | WeakTerminal2 | StrongTerminal)
	if srcOK {
		if src.Topo == Terminal {
			seg.Flags |= SourceTerminal | StrongTerminal
		} else if e.reachesStrongTerminal(src, segID, deviceTerminal, make(map[entity.ID]bool)) {
			seg.Flags |= WeakTerminal1
		}
	}
	if tgtOK {
		if tgt.Topo == Terminal {
			seg.Flags |= TargetTerminal | StrongTerminal
		} else if e.reachesStrongTerminal(tgt, segID, deviceTerminal, make(map[entity.ID]bool)) {
			seg.Flags |= WeakTerminal2
		}
	}
}

// classifyContact sets c.Topo to Terminal when c anchors a device pin
// directly, leaving any prior classification (Turn/HTee/VTee/Cross)
// untouched otherwise — those are set by the routing engine's fork
// counting, not by terminal classification.
func (e *Engine) classifyContact(c *AutoContact, deviceTerminal func(baseID entity.ID) bool) {
	if deviceTerminal != nil && deviceTerminal(c.BaseID) {
		c.Topo = Terminal
	}
}

// reachesStrongTerminal walks the contact's slave segments (excluding
// the one we arrived from) looking for a strong terminal without
// crossing a fork (a contact used by more than two segments). This
// bounds the walk to genuine two-terminal chains, matching the spec's
// "weak terminal" definition: reachable without passing through a
// branch point.
func (e *Engine) reachesStrongTerminal(c *AutoContact, fromSeg entity.ID, deviceTerminal func(baseID entity.ID) bool, visited map[entity.ID]bool) bool {
	if visited[c.ID] {
		return false
	}
	visited[c.ID] = true

	if c.Topo == Terminal {
		return true
	}
	if len(c.slaveSegments) > 2 {
		return false // fork: not reachable without branching
	}

	for _, nextSegID := range c.slaveSegments {
		if nextSegID == fromSeg {
			continue
		}
		next, ok := e.segments[nextSegID]
		if !ok {
			continue
		}
		var other *AutoContact
		if next.SourceID == c.ID {
			other, ok = e.contacts[next.TargetID]
		} else {
			other, ok = e.contacts[next.SourceID]
		}
		if !ok {
			continue
		}
		if e.reachesStrongTerminal(other, nextSegID, deviceTerminal, visited) {
			return true
		}
	}
	return false
}
