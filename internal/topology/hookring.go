package topology

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"vlsix/internal/entity"
)

// HookRing is the connectivity graph of every AutoContact/AutoSegment
// reachable from a net's set of seed contacts, recomputed as step 1 of
// revalidation whenever the net is invalidated (spec §4.6.2). It is
// built with gonum/graph/simple rather than a hand-rolled adjacency
// list so that gonum/graph/topo's connected-components can be reused
// directly (HasCycle builds on it by counting edges per component),
// matching how the retrieval pack
// leans on gonum for graph analysis rather than reimplementing it.
type HookRing struct {
	g         *simple.UndirectedGraph
	segByEdge map[[2]int64]entity.ID
}

// BuildHookRing constructs the contact/segment graph reachable from
// seeds by breadth-first traversal over the engine's live topology.
func (e *Engine) BuildHookRing(seeds []entity.ID) *HookRing {
	hr := &HookRing{
		g:         simple.NewUndirectedGraph(),
		segByEdge: make(map[[2]int64]entity.ID),
	}

	visited := make(map[entity.ID]bool)
	queue := append([]entity.ID(nil), seeds...)
	for _, id := range seeds {
		if _, ok := e.contacts[id]; ok {
			hr.g.AddNode(simple.Node(int64(id)))
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		c, ok := e.contacts[id]
		if !ok {
			continue
		}
		if hr.g.Node(int64(id)) == nil {
			hr.g.AddNode(simple.Node(int64(id)))
		}

		for _, segID := range c.Slaves() {
			seg, ok := e.segments[segID]
			if !ok {
				continue
			}
			other := seg.SourceID
			if other == id {
				other = seg.TargetID
			}
			if _, ok := e.contacts[other]; !ok {
				continue
			}
			if hr.g.Node(int64(other)) == nil {
				hr.g.AddNode(simple.Node(int64(other)))
			}
			hr.g.SetEdge(hr.g.NewEdge(simple.Node(int64(id)), simple.Node(int64(other))))
			hr.segByEdge[edgeKey(id, other)] = segID
			if !visited[other] {
				queue = append(queue, other)
			}
		}
	}

	return hr
}

func edgeKey(a, b entity.ID) [2]int64 {
	x, y := int64(a), int64(b)
	if x > y {
		x, y = y, x
	}
	return [2]int64{x, y}
}

// Contacts returns every contact id present in the ring, sorted for
// deterministic iteration.
func (hr *HookRing) Contacts() []entity.ID {
	nodes := graph.NodesOf(hr.g.Nodes())
	out := make([]entity.ID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, entity.ID(n.ID()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SegmentBetween resolves the segment id linking two adjacent contacts
// in the ring, if any.
func (hr *HookRing) SegmentBetween(a, b entity.ID) (entity.ID, bool) {
	id, ok := hr.segByEdge[edgeKey(a, b)]
	return id, ok
}

// ConnectedComponents partitions the ring's contacts into connected
// components, each sorted ascending, components themselves ordered by
// their smallest member — used to detect a net whose extraction left
// it split into disjoint pieces (an open net, spec §4.4) reflected
// here at the routing-topology level.
func (hr *HookRing) ConnectedComponents() [][]entity.ID {
	raw := topo.ConnectedComponents(hr.g)
	out := make([][]entity.ID, 0, len(raw))
	for _, comp := range raw {
		ids := make([]entity.ID, 0, len(comp))
		for _, n := range comp {
			ids = append(ids, entity.ID(n.ID()))
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// HasCycle reports whether the ring contains a loop: a connected
// routing topology is a tree, so any component whose edge count
// exceeds nodes-1 holds a cycle the revalidation pass should flag.
func (hr *HookRing) HasCycle() bool {
	for _, comp := range topo.ConnectedComponents(hr.g) {
		edges := 0
		for _, n := range comp {
			edges += hr.g.From(n.ID()).Len()
		}
		edges /= 2 // undirected: each edge counted from both endpoints
		if edges > len(comp)-1 {
			return true
		}
	}
	return false
}
