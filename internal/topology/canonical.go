package topology

import (
	"sort"

	"vlsix/pkg/geometry"
)

// CompareForCanonical is the stable-sort comparator spec §4.6.1
// specifies for canonical election, ripup-order dumps, and trace
// dumps: lexicographic on (layer-depth ascending, source-u ascending,
// length descending, axis ascending, id ascending).
//
// The final id key decides whenever two segments tie on the first
// four. Entity ids are unique by construction (internal/entity panics
// rather than reusing an id on overflow), so two distinct segments
// never tie on all five keys and the ordering is total.
func CompareForCanonical(a, b *AutoSegment) bool {
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	if a.SourceU != b.SourceU {
		return a.SourceU < b.SourceU
	}
	if a.Length != b.Length {
		return a.Length > b.Length
	}
	if a.Axis != b.Axis {
		return a.Axis < b.Axis
	}
	return a.ID < b.ID
}

// Canonicalize elects the canonical member of an aligned chain: the
// smallest entity id among chain (spec §4.6.1), propagates WeakGlobal
// if any member is Global, and sets the elected member's Axis as the
// chain's shared axis. Returns the elected canonical segment.
//
// Panics if chain is empty; the session's revalidation recovers that
// panic and reports it as diagnostic.ErrCanonicalBug. Canonical flags
// already set on members are cleared before the election, so exactly
// one member is Canonical afterwards; how many were flagged before is
// not checked.
func Canonicalize(chain []*AutoSegment) *AutoSegment {
	if len(chain) == 0 {
		panic("topology: canonicalize called on an empty chain")
	}

	sorted := append([]*AutoSegment(nil), chain...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	elect := sorted[0]

	weakGlobal := false
	for _, s := range chain {
		if s.Flags.Has(Global) {
			weakGlobal = true
		}
		s.Flags &^= Canonical
	}

	elect.Flags |= Canonical
	if weakGlobal {
		for _, s := range chain {
			s.Flags |= WeakGlobal
		}
	}

	axis := elect.Axis
	if !elect.Flags.Has(AxisSet) {
		axis = optimalAxis(chain)
	} else {
		axis = constraintAxis(elect)
	}
	elect.Axis = axis
	elect.Flags |= AxisSet
	elect.Flags &^= UnsetAxis

	for _, s := range chain {
		if s == elect {
			continue
		}
		s.Axis = axis
		s.Flags &^= NotAligned
	}

	return elect
}

// optimalAxis implements toOptimalAxis: the midpoint of the
// intersection of every member's optimal-axis interval, falling back
// to the first chain member's OptimalAxisMin if the intersection is
// empty (nothing is logged or returned as an error in that case).
func optimalAxis(chain []*AutoSegment) geometry.DbU {
	lo, hi := chain[0].OptimalAxisMin, chain[0].OptimalAxisMax
	for _, s := range chain[1:] {
		if s.OptimalAxisMin > lo {
			lo = s.OptimalAxisMin
		}
		if s.OptimalAxisMax < hi {
			hi = s.OptimalAxisMax
		}
	}
	if lo > hi {
		return chain[0].OptimalAxisMin
	}
	return lo + (hi-lo)/2
}

// constraintAxis implements toConstraintAxis for a segment whose axis
// was explicitly user-set: it must already lie within the
// user-constraint interval, so it is returned unchanged.
func constraintAxis(s *AutoSegment) geometry.DbU {
	return s.Axis
}
