package topology

import (
	"vlsix/internal/diagnostic"
	"vlsix/internal/entity"
	"vlsix/internal/gauge"
	"vlsix/internal/gcell"
)

// MoveUp / MoveDown relocate a canonical segment (and every aligned
// member of its chain) to depth±2, per spec §4.6.4. Only the segments'
// Depth, Layer and InvalidatedLayer flag change; neighbour contacts are
// not updated, and no contact is created or relayered. Geometric
// re-centering is left to the revalidation pass's per-contact update
// (spec §4.6.2 step 3), which always runs after a topology mutation.
func (e *Engine) MoveUp(chain []*AutoSegment, g gauge.RoutingGauge) error {
	return moveDepth(chain, g, true)
}

func (e *Engine) MoveDown(chain []*AutoSegment, g gauge.RoutingGauge) error {
	return moveDepth(chain, g, false)
}

func moveDepth(chain []*AutoSegment, g gauge.RoutingGauge, up bool) error {
	for _, s := range chain {
		if s.IsFixed() {
			return diagnostic.Wrap(diagnostic.ErrFixedSegment, "moveDepth")
		}
	}
	for _, s := range chain {
		var newDepth uint32
		if up {
			newDepth = s.Depth + 2
		} else {
			if s.Depth < 2 {
				return diagnostic.Wrap(diagnostic.ErrSpan, "moveDepth: below minimum depth")
			}
			newDepth = s.Depth - 2
		}
		if newDepth >= g.Depths() {
			return diagnostic.Wrap(diagnostic.ErrSpan, "moveDepth: above maximum depth")
		}
		l, ok := g.RoutingLayer(newDepth)
		if !ok {
			return diagnostic.Wrap(diagnostic.ErrLayerMismatch, "moveDepth: no routing layer at target depth")
		}
		s.Depth = newDepth
		s.Layer = l
		s.Flags |= InvalidatedLayer
	}
	return nil
}

// CanSlacken reports whether a non-fixed seg has a user-constraint
// interval (not both bounds zero) and its axis lies outside it, without
// mutating anything (spec §4.6.4). It does not check whether a gcell
// is available to dogleg into.
func (e *Engine) CanSlacken(seg *AutoSegment) bool {
	if seg.IsFixed() {
		return false
	}
	if seg.ConstraintMin == 0 && seg.ConstraintMax == 0 {
		return false
	}
	return seg.Axis < seg.ConstraintMin || seg.Axis > seg.ConstraintMax
}

// Slacken relaxes a constraint-violating segment by inserting a dogleg
// in the caller-supplied cell and marking the head and tail Slackened;
// the cell is used as given, not chosen by Slacken. Returns whether any
// progress was made.
func (e *Engine) Slacken(seg *AutoSegment, cell *gcell.GCell, g gauge.RoutingGauge) (bool, error) {
	if !e.CanSlacken(seg) {
		return false, nil
	}
	dl, err := e.MakeDogleg(seg.ID, cell, g)
	if err != nil {
		return false, err
	}
	dl.Head.Flags |= Slackened
	dl.Tail.Flags |= Slackened
	return true, nil
}

// CanReduce reports whether a local segment spinning strictly between
// the top and bottom of a two-via stack, whose length is below
// 2×pitchDbU(), may be collapsed into a single via (spec §4.6.4). The
// perpendicularPitch argument is not consulted.
func (e *Engine) CanReduce(seg *AutoSegment, perpendicularPitch func() (int64, bool), pitchDbU func() int64) bool {
	if seg.IsFixed() || seg.Flags.Has(Global) {
		return false
	}
	if !(seg.Flags.Has(SpinTop) && seg.Flags.Has(SpinBottom)) {
		// A reducible segment must strictly spin between top and
		// bottom of the via stack, i.e. carry both spin flags at once
		// having originated from a dogleg whose head/tail collapsed.
		return false
	}
	return int64(seg.Length) < 2*pitchDbU()
}

// Reduce collapses seg's endpoints into a single via, destroying the
// segment and merging its two contacts. The merged via is only
// rematerialised later if MustRaise becomes true (spec §4.6.4);
// tracking that condition is the revalidation pass's responsibility,
// not Reduce's.
func (e *Engine) Reduce(seg *AutoSegment) error {
	src, ok := e.contacts[seg.SourceID]
	if !ok {
		return diagnostic.Wrap(diagnostic.ErrBadAnchor, "reduce: missing source contact")
	}
	tgt, ok := e.contacts[seg.TargetID]
	if !ok {
		return diagnostic.Wrap(diagnostic.ErrBadAnchor, "reduce: missing target contact")
	}

	for _, slaveID := range tgt.Slaves() {
		if slaveID == seg.ID {
			continue
		}
		if s, ok := e.segments[slaveID]; ok {
			if s.SourceID == tgt.ID {
				s.SourceID = src.ID
			}
			if s.TargetID == tgt.ID {
				s.TargetID = src.ID
			}
			src.AddSlave(slaveID)
			tgt.RemoveSlave(slaveID)
		}
	}

	e.DestroySegment(seg.ID)
	e.DestroyContact(tgt.ID)
	return nil
}

// MustRaise is left as a hook the revalidation pass evaluates per spec
// §4.6.4's forward reference; the toolbox core does not itself decide
// when routing pressure requires re-raising a reduced via, since that
// judgement depends on collaborator-supplied capacity data (spec §6.1).
type MustRaise func(contactID entity.ID) bool
