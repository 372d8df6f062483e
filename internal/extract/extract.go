// Package extract implements the sweep-line layout extractor and the
// equipotential builder that consolidates its union-find output into
// the toolbox's public EquipotentialReport (spec §4.3, §4.4, §6.2).
//
// Grounded on the teacher's internal/trace package (a container/heap
// -driven event loop ordering path-finding events by position, see
// internal/trace/pathfind.go before it was folded into this package's
// event queue) for the event-queue shape, and on
// internal/netlist/electrical.go's ElectricalNet/ConnectedComponents
// pass — now split between internal/net (data model) and this
// package's builder — for the equipotential consolidation rules.
package extract

import (
	"container/heap"
	"sort"

	"vlsix/internal/design"
	"vlsix/internal/entity"
	"vlsix/internal/ivltree"
	"vlsix/internal/layer"
	"vlsix/internal/net"
	"vlsix/internal/unionfind"
	"vlsix/pkg/geometry"
)

// Shape is one piece of extracted geometry offered to the sweep line: a
// single rectangle on a (possibly composite) layer, tagged with the
// occurrence and net it belongs to. Rectilinear input is expected to
// already have been decomposed into rectangles via geometry.Decompose
// before reaching this package.
type Shape struct {
	Occ   entity.Occurrence
	NetID entity.ID // zero value entity.ID means "no net"
	Layer *layer.Layer
	BBox  geometry.Box
}

// tileRecord is one (occurrence, basic-layer, bbox) tuple, the unit the
// sweep line and union-find operate on (spec's Tile type).
type tileRecord struct {
	id    unionfind.TileID
	occ   entity.Occurrence
	netID entity.ID
	basic layer.ID
	bbox  geometry.Box
}

func (t *tileRecord) Interval() geometry.Interval {
	return geometry.NewInterval(t.bbox.YMin(), t.bbox.YMax())
}

func (t *tileRecord) ElementID() uint64 { return uint64(t.id) }

// buildTiles expands each shape into one tile per basic layer it spans
// (spec §4.3: "for every basic layer b ... produce a tile"), skipping
// shapes whose layer has no basic layers registered. It also returns,
// per shape, the tile ids produced from it: a multi-basic-layer shape
// (a contact or via) is one physical entity touching every one of its
// basic layers at once, so its own tiles must be fused together
// directly rather than left to rely on incidental geometric overlap
// within a single basic layer's interval tree.
func buildTiles(shapes []Shape) ([]*tileRecord, [][]unionfind.TileID) {
	var tiles []*tileRecord
	groups := make([][]unionfind.TileID, len(shapes))
	var next unionfind.TileID
	for si, s := range shapes {
		if s.Layer == nil || s.BBox.IsEmpty() {
			continue
		}
		for _, b := range s.Layer.BasicLayers() {
			tiles = append(tiles, &tileRecord{
				id:    next,
				occ:   s.Occ,
				netID: s.NetID,
				basic: b,
				bbox:  s.BBox,
			})
			groups[si] = append(groups[si], next)
			next++
		}
	}
	return tiles, groups
}

type eventKind int

const (
	leftEdge eventKind = iota
	rightEdge
)

type event struct {
	x    geometry.DbU
	kind eventKind
	tile int // index into the tiles slice
}

// eventQueue is a container/heap-ordered priority queue over events,
// matching spec §4.3's deterministic ordering: x ascending, LeftEdge
// before RightEdge at equal x, then by tile id.
type eventQueue struct {
	events []event
	tiles  []*tileRecord
}

func (q *eventQueue) Len() int { return len(q.events) }

func (q *eventQueue) Less(i, j int) bool {
	a, b := q.events[i], q.events[j]
	if a.x != b.x {
		return a.x < b.x
	}
	if a.kind != b.kind {
		return a.kind == leftEdge
	}
	return q.tiles[a.tile].id < q.tiles[b.tile].id
}

func (q *eventQueue) Swap(i, j int) { q.events[i], q.events[j] = q.events[j], q.events[i] }

func (q *eventQueue) Push(x any) { q.events = append(q.events, x.(event)) }

func (q *eventQueue) Pop() any {
	n := len(q.events)
	e := q.events[n-1]
	q.events = q.events[:n-1]
	return e
}

// shortCircuitCandidate is recorded the instant the sweep line unions
// two tiles carrying distinct externally-driven nets; it is resolved to
// the surviving equipotential once the sweep finishes.
type shortCircuitCandidate struct {
	tileA, tileB unionfind.TileID
	netA, netB   string
	witness      geometry.Box
}

// Sweep fuses each shape's own multi-basic-layer tiles (groups) and
// then runs the sweep-line pass, unioning every pair that overlaps on a
// shared basic layer's active interval tree. Returns the populated
// union-find forest plus any recorded short-circuit candidates.
// Exported separately from Extract so tests can inspect connectivity
// without paying for equipotential construction.
func Sweep(tiles []*tileRecord, groups [][]unionfind.TileID, cell *design.Cell) (*unionfind.Forest[net.Equipotential], []shortCircuitCandidate) {
	trees := make(map[layer.ID]*ivltree.Tree)

	forest := unionfind.New(
		func(root unionfind.TileID) *net.Equipotential {
			return net.NewEquipotential(cell.NewEquipotentialID(), cell.ID())
		},
		func(equi *net.Equipotential, id unionfind.TileID) {
			t := tiles[id]
			equi.AddComponent(t.occ, t.bbox)
			if t.netID != 0 {
				if n, ok := cell.NetByID(t.netID); ok {
					equi.AddNetContribution(n)
				}
			}
		},
	)
	for _, t := range tiles {
		forest.Add(t.id)
	}
	for _, group := range groups {
		for i := 1; i < len(group); i++ {
			forest.Union(group[0], group[i])
		}
	}

	var candidates []shortCircuitCandidate
	netName := func(id entity.ID) (string, bool) {
		if id == 0 {
			return "", false
		}
		n, ok := cell.NetByID(id)
		if !ok || !n.External {
			return "", false
		}
		return n.Name, true
	}

	q := &eventQueue{tiles: tiles}
	for i, t := range tiles {
		heap.Push(q, event{x: t.bbox.XMin(), kind: leftEdge, tile: i})
		heap.Push(q, event{x: t.bbox.XMax(), kind: rightEdge, tile: i})
	}

	for q.Len() > 0 {
		e := heap.Pop(q).(event)
		t := tiles[e.tile]
		tree, ok := trees[t.basic]
		if !ok {
			tree = ivltree.New()
			trees[t.basic] = tree
		}

		switch e.kind {
		case leftEdge:
			tree.Overlap(t.Interval(), func(el ivltree.Element) {
				other := tiles[el.ElementID()]
				if other.id == t.id {
					return
				}
				if nameA, okA := netName(t.netID); okA {
					if nameB, okB := netName(other.netID); okB && nameA != nameB {
						candidates = append(candidates, shortCircuitCandidate{
							tileA:   t.id,
							tileB:   other.id,
							netA:    nameA,
							netB:    nameB,
							witness: t.bbox.Intersect(other.bbox),
						})
					}
				}
				forest.Union(t.id, other.id)
			})
			tree.Insert(t)
			forest.IncRef(t.id)
		case rightEdge:
			tree.Remove(t.Interval(), t.ElementID())
			forest.DecRef(t.id)
		}
	}

	return forest, candidates
}

// Report is the public extraction result (spec §6.2).
type Report struct {
	Equipotentials []*net.Equipotential
	OpenNets       []*net.Net
	ShortCircuits  []net.ShortCircuit
	PerNet         map[string][]*net.Equipotential
}

// SortedByName returns the equipotentials ordered by canonical name.
func (r *Report) SortedByName() []*net.Equipotential {
	out := append([]*net.Equipotential(nil), r.Equipotentials...)
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalName < out[j].CanonicalName })
	return out
}

// SortedByArea returns the equipotentials ordered by descending bbox
// area, a supplemental view original_source's report tooling exposes
// for triaging the largest nets first.
func (r *Report) SortedByArea() []*net.Equipotential {
	out := append([]*net.Equipotential(nil), r.Equipotentials...)
	sort.Slice(out, func(i, j int) bool {
		return area(out[i].BBox) > area(out[j].BBox)
	})
	return out
}

func area(b geometry.Box) int64 {
	if b.IsEmpty() {
		return 0
	}
	return int64(b.Width()) * int64(b.Height())
}

// Extract runs the full sweep-line + equipotential-builder pipeline
// over shapes and publishes results onto cell (spec §4.4, §6.2).
func Extract(cell *design.Cell, shapes []Shape) *Report {
	tiles, groups := buildTiles(shapes)
	forest, candidates := Sweep(tiles, groups, cell)

	// Step 1 of the builder: give every tile's root an equipotential
	// aggregating its occurrences and box union (spec §4.4.1).
	roots := make(map[unionfind.TileID]*net.Equipotential)
	for _, t := range tiles {
		root := forest.Root(t.id, unionfind.Compress|unionfind.MergeEqui|unionfind.MakeLeafEqui)
		if equi, ok := forest.Payload(root); ok {
			roots[root] = equi
		}
	}

	// Resolve short-circuit candidates to their surviving equipotential
	// and attach the evidence.
	for _, c := range candidates {
		root := forest.Root(c.tileA, unionfind.Compress)
		equi, ok := roots[root]
		if !ok {
			continue
		}
		equi.RecordShortCircuit(c.netA, c.netB, c.witness)
	}

	equis := make([]*net.Equipotential, 0, len(roots))
	for _, e := range roots {
		e.FinalizeName()
		equis = append(equis, e)
		cell.PublishEquipotential(e)
	}
	sort.Slice(equis, func(i, j int) bool { return equis[i].ID < equis[j].ID })

	perNet := make(map[string][]*net.Equipotential)
	for _, e := range equis {
		for _, name := range e.ExternalNetNames() {
			perNet[name] = append(perNet[name], e)
		}
	}

	var openNets []*net.Net
	var openNames []string
	for name, es := range perNet {
		if len(es) > 1 {
			openNames = append(openNames, name)
		}
	}
	sort.Strings(openNames)
	for _, name := range openNames {
		if n, ok := cell.Net(name); ok {
			openNets = append(openNets, n)
		}
	}

	var shorts []net.ShortCircuit
	for _, e := range equis {
		shorts = append(shorts, e.ShortCircuits...)
	}

	return &Report{
		Equipotentials: equis,
		OpenNets:       openNets,
		ShortCircuits:  shorts,
		PerNet:         perNet,
	}
}
