package topology

import (
	"sort"

	"vlsix/internal/entity"
	"vlsix/internal/layer"
	"vlsix/pkg/geometry"
)

// AutoContact wraps a base contact entity with the routing engine's
// topology bookkeeping (spec's AutoContact data-model row). Contacts
// hold weak/back references to their slave segments, resolved through
// the owning Engine's lookup table — never a direct pointer — so that
// there is no reference cycle between AutoSegment and AutoContact
// (spec §5, memory model).
type AutoContact struct {
	ID       entity.ID
	BaseID   entity.ID
	GCellRow int
	GCellCol int
	Layer    layer.ID
	MinDepth uint32
	MaxDepth uint32
	Position geometry.Point
	Topo     ContactTopology

	slaveSegments []entity.ID
}

// AddSlave registers segID as using this contact as an endpoint.
func (c *AutoContact) AddSlave(segID entity.ID) {
	for _, id := range c.slaveSegments {
		if id == segID {
			return
		}
	}
	c.slaveSegments = append(c.slaveSegments, segID)
}

// RemoveSlave deregisters segID.
func (c *AutoContact) RemoveSlave(segID entity.ID) {
	for i, id := range c.slaveSegments {
		if id == segID {
			c.slaveSegments = append(c.slaveSegments[:i], c.slaveSegments[i+1:]...)
			return
		}
	}
}

// Slaves returns the ids of every segment anchored on this contact.
func (c *AutoContact) Slaves() []entity.ID {
	return append([]entity.ID(nil), c.slaveSegments...)
}

// IsIsolated reports whether no segment references this contact,
// making it eligible for destruction (spec's Session data-model row:
// "destroyed only when isolated").
func (c *AutoContact) IsIsolated() bool { return len(c.slaveSegments) == 0 }

// AutoSegment wraps a base segment entity with routing topology state
// (spec's AutoSegment data-model row).
type AutoSegment struct {
	ID     entity.ID
	Flags  Flags
	Depth  uint32
	Layer  layer.ID
	Axis   geometry.DbU // shared axis of the canonical chain this segment belongs to
	Length geometry.DbU

	SourceID entity.ID // AutoContact id
	TargetID entity.ID

	SourceU geometry.DbU
	TargetU geometry.DbU

	OptimalAxisMin geometry.DbU
	OptimalAxisMax geometry.DbU

	ConstraintMin geometry.DbU
	ConstraintMax geometry.DbU

	ParentID entity.ID // dogleg lineage: the segment this one was split from
}

// IsHorizontal / IsVertical read the exactly-one-of{Horizontal,Vertical}
// invariant.
func (s *AutoSegment) IsHorizontal() bool { return s.Flags.Has(Horizontal) }
func (s *AutoSegment) IsVertical() bool   { return s.Flags.Has(Vertical) }
func (s *AutoSegment) IsCanonical() bool  { return s.Flags.Has(Canonical) }
func (s *AutoSegment) IsFixed() bool      { return s.Flags.Has(Fixed) }

// Engine owns every live AutoContact/AutoSegment and is the single
// lookup between base entities and their auto wrappers (spec §4.7:
// "lookup(entity) -> auto-entity | None is the single mapping").
type Engine struct {
	segments map[entity.ID]*AutoSegment
	contacts map[entity.ID]*AutoContact

	byBase map[entity.ID]entity.ID // base entity id -> auto entity id

	nextID entity.ID
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		segments: make(map[entity.ID]*AutoSegment),
		contacts: make(map[entity.ID]*AutoContact),
		byBase:   make(map[entity.ID]entity.ID),
	}
}

// Link registers autoID as the wrapper for baseID.
func (e *Engine) Link(baseID, autoID entity.ID) {
	e.byBase[baseID] = autoID
}

// Unlink deregisters baseID's wrapper. Returns false if baseID was not
// linked (spec §4.7: "calling unlink on something not linked fails").
func (e *Engine) Unlink(baseID entity.ID) bool {
	if _, ok := e.byBase[baseID]; !ok {
		return false
	}
	delete(e.byBase, baseID)
	return true
}

// Lookup resolves a base entity id to its auto entity id.
func (e *Engine) Lookup(baseID entity.ID) (entity.ID, bool) {
	id, ok := e.byBase[baseID]
	return id, ok
}

// Segment / Contact resolve an auto entity id to its wrapper.
func (e *Engine) Segment(id entity.ID) (*AutoSegment, bool) {
	s, ok := e.segments[id]
	return s, ok
}

func (e *Engine) Contact(id entity.ID) (*AutoContact, bool) {
	c, ok := e.contacts[id]
	return c, ok
}

// CreateSegment allocates and registers a new AutoSegment.
func (e *Engine) CreateSegment(s *AutoSegment) {
	s.Flags |= Created
	e.segments[s.ID] = s
}

// CreateContact allocates and registers a new AutoContact.
func (e *Engine) CreateContact(c *AutoContact) {
	e.contacts[c.ID] = c
}

// DestroySegment removes a segment and detaches it from its endpoint
// contacts.
func (e *Engine) DestroySegment(id entity.ID) {
	s, ok := e.segments[id]
	if !ok {
		return
	}
	if c, ok := e.contacts[s.SourceID]; ok {
		c.RemoveSlave(id)
	}
	if c, ok := e.contacts[s.TargetID]; ok {
		c.RemoveSlave(id)
	}
	delete(e.segments, id)
}

// DestroyContact removes a contact if it is isolated (spec: "destroyed
// only when isolated").
func (e *Engine) DestroyContact(id entity.ID) bool {
	c, ok := e.contacts[id]
	if !ok || !c.IsIsolated() {
		return false
	}
	delete(e.contacts, id)
	return true
}

// SegmentsSorted returns every live segment ordered by id, for
// deterministic iteration (spec §5: "all iteration ... is either over
// an ordered map/set or a vector sorted by a total order on entity
// ids").
func (e *Engine) SegmentsSorted() []*AutoSegment {
	out := make([]*AutoSegment, 0, len(e.segments))
	for _, s := range e.segments {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
