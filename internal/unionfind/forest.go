// Package unionfind implements the rank-weighted, path-compressing
// disjoint-set forest that fuses sweep-line tiles into equipotentials
// (spec §4.2).
//
// Grounded on the teacher's internal/netlist ConnectedComponents pass
// (internal/netlist/electrical.go), which walks a union-style adjacency
// structure to fold PCB features into nets; here the walk climbs
// explicit parent pointers instead of an adjacency list, and folds a
// generic payload instead of a fixed ElectricalNet; its only user in
// this module is the extractor's equipotential builder.
package unionfind

import (
	"fmt"
	"sort"
)

// TileID names a node in the forest.
type TileID uint64

// Flags controls what Root does while it climbs to the root of t's tree.
type Flags uint8

const (
	// Compress path-compresses every visited non-root node directly
	// under the root once it is found.
	Compress Flags = 1 << iota
	// MergeEqui folds each not-yet-merged visited tile's payload into
	// the root's payload as the walk climbs.
	MergeEqui
	// MakeLeafEqui allocates a payload for the root if it has none yet.
	MakeLeafEqui
)

type tileNode[T any] struct {
	parent           TileID
	rank             int
	refCount         int
	timeStamp        uint64
	occurrenceMerged bool
	equi             *T
}

// NewPayloadFunc seeds a fresh payload for a tile that has just become
// (or been confirmed as) a root.
type NewPayloadFunc[T any] func(root TileID) *T

// MergeFunc folds tile's own contribution into the root's payload.
type MergeFunc[T any] func(equi *T, tile TileID)

// Forest is a disjoint-set forest over TileIDs, augmented with a
// per-root payload of type T (spec's Equipotential attached to a root
// tile).
type Forest[T any] struct {
	nodes map[TileID]*tileNode[T]

	newPayload NewPayloadFunc[T]
	merge      MergeFunc[T]

	epoch uint64
}

// New creates an empty forest. newPayload and merge implement the
// domain-specific parts of MakeLeafEqui / MergeEqui respectively.
func New[T any](newPayload NewPayloadFunc[T], merge MergeFunc[T]) *Forest[T] {
	return &Forest[T]{
		nodes:      make(map[TileID]*tileNode[T]),
		newPayload: newPayload,
		merge:      merge,
	}
}

// Add registers a fresh singleton tile. Panics if id is already present.
func (f *Forest[T]) Add(id TileID) {
	if _, exists := f.nodes[id]; exists {
		panic(fmt.Sprintf("unionfind: tile %d already registered", id))
	}
	f.nodes[id] = &tileNode[T]{parent: id, rank: 0}
}

// Contains reports whether id has been registered.
func (f *Forest[T]) Contains(id TileID) bool {
	_, ok := f.nodes[id]
	return ok
}

// AdvanceEpoch bumps the epoch counter, invalidating "occurrence-merged"
// bookkeeping so a subsequent MergeEqui pass re-folds every tile — used
// between independent extraction runs over the same forest.
func (f *Forest[T]) AdvanceEpoch() {
	f.epoch++
}

// Root returns the root tile of t's tree, applying flags along the way.
func (f *Forest[T]) Root(t TileID, flags Flags) TileID {
	if _, ok := f.nodes[t]; !ok {
		panic(fmt.Sprintf("unionfind: unknown tile %d", t))
	}

	var path []TileID
	cur := t
	limit := len(f.nodes) + 1
	for {
		cn := f.nodes[cur]
		if cn.parent == cur {
			break
		}
		path = append(path, cur)
		cur = cn.parent
		if len(path) > limit {
			panic("unionfind: cycle detected in parent pointers")
		}
	}
	root := cur
	rn := f.nodes[root]

	if flags&MakeLeafEqui != 0 && rn.equi == nil {
		rn.equi = f.newPayload(root)
	}

	if flags&MergeEqui != 0 && rn.equi != nil {
		for _, id := range path {
			mn := f.nodes[id]
			if mn.occurrenceMerged && mn.timeStamp == f.epoch {
				continue
			}
			f.merge(rn.equi, id)
			mn.occurrenceMerged = true
			mn.timeStamp = f.epoch
		}
		if !rn.occurrenceMerged || rn.timeStamp != f.epoch {
			f.merge(rn.equi, root)
			rn.occurrenceMerged = true
			rn.timeStamp = f.epoch
		}
	}

	if flags&Compress != 0 {
		for _, id := range path {
			f.nodes[id].parent = root
		}
	}

	return root
}

// Payload returns the payload attached to t's root, if any.
func (f *Forest[T]) Payload(t TileID) (*T, bool) {
	root := f.Root(t, Compress)
	rn := f.nodes[root]
	if rn.equi == nil {
		return nil, false
	}
	return rn.equi, true
}

// Union merges the trees containing a and b, attaching the smaller-rank
// root under the larger; on a rank tie the winner's rank increments
// (spec §4.2). Returns the surviving root; a no-op (returning the shared
// root) if a and b were already in the same tree.
func (f *Forest[T]) Union(a, b TileID) TileID {
	ra := f.Root(a, Compress)
	rb := f.Root(b, Compress)
	if ra == rb {
		return ra
	}
	na, nb := f.nodes[ra], f.nodes[rb]
	switch {
	case na.rank < nb.rank:
		na.parent = rb
		return rb
	case na.rank > nb.rank:
		nb.parent = ra
		return ra
	default:
		nb.parent = ra
		na.rank++
		return ra
	}
}

// Connected reports whether a and b share a root.
func (f *Forest[T]) Connected(a, b TileID) bool {
	return f.Root(a, Compress) == f.Root(b, Compress)
}

// IncRef and DecRef track a tile's reference count so the sweep-line
// extractor can reclaim non-root tiles once every interval-tree entry
// referencing them has been removed (spec §4.3: "decrement t's
// ref-count; when ref-count reaches zero, t may be reclaimed").
func (f *Forest[T]) IncRef(t TileID) {
	f.nodes[t].refCount++
}

// DecRef decrements t's reference count and reports whether it reached
// zero.
func (f *Forest[T]) DecRef(t TileID) bool {
	n := f.nodes[t]
	n.refCount--
	return n.refCount <= 0
}

// Roots returns every distinct root currently present, ascending.
func (f *Forest[T]) Roots() []TileID {
	seen := make(map[TileID]bool)
	var out []TileID
	for id := range f.nodes {
		r := f.Root(id, Compress)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
