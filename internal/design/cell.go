// Package design provides the Cell composition root: the owner of a
// design's entities and nets, and the target of both the extractor and
// the routing session (spec §3 ownership semantics: "Cell exclusively
// owns all its entities").
//
// Grounded on the teacher's internal/board package (board.Board owning
// a set of components plus its net list) generalised from a fixed PCB
// board shape to an arbitrary hierarchical cell.
package design

import (
	"fmt"
	"sort"
	"sync"

	"vlsix/internal/entity"
	"vlsix/internal/net"
)

// Cell owns every entity and net belonging to one design. entity.Store
// and the net registry are kept as separate packages (entity does not
// import net) so that Cell is the only place their lifecycles are
// coupled together.
type Cell struct {
	mu sync.RWMutex

	id   entity.ID
	name string

	store *entity.Store

	nets     map[string]*net.Net
	netAlias map[string]string // alias name -> primary name
	netsByID map[entity.ID]*net.Net

	equipotentials map[uint64]*net.Equipotential
	nextEquiID     uint64

	subInstances map[entity.ID]*Cell // masterCellID -> Cell, for hierarchy
}

// New creates an empty cell owned by id (itself an entity so that a
// cell can be instantiated as another cell's sub-instance).
func New(id entity.ID, name string) *Cell {
	return &Cell{
		id:             id,
		name:           name,
		store:          entity.NewStore(),
		nets:           make(map[string]*net.Net),
		netAlias:       make(map[string]string),
		netsByID:       make(map[entity.ID]*net.Net),
		equipotentials: make(map[uint64]*net.Equipotential),
		subInstances:   make(map[entity.ID]*Cell),
	}
}

// ID returns the cell's own entity id.
func (c *Cell) ID() entity.ID { return c.id }

// Name returns the cell's name.
func (c *Cell) Name() string { return c.name }

// Store returns the entity store owned by this cell.
func (c *Cell) Store() *entity.Store { return c.store }

// ErrDuplicateNetName is returned when a net name (or alias) collides
// with an existing net's primary name (spec §3: "aliases never collide
// with another net's primary name").
var ErrDuplicateNetName = fmt.Errorf("design: net name already registered in this cell")

// AddNet registers n under its own name. Fails if the name is already
// taken by another net's primary name or alias.
func (c *Cell) AddNet(n *net.Net) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.nets[n.Name]; exists {
		return ErrDuplicateNetName
	}
	if _, exists := c.netAlias[n.Name]; exists {
		return ErrDuplicateNetName
	}
	c.nets[n.Name] = n
	c.netsByID[n.ID] = n
	return nil
}

// NetByID resolves a net by its entity id, used by the extractor to map
// a component's NetID back to the owning Net.
func (c *Cell) NetByID(id entity.ID) (*net.Net, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.netsByID[id]
	return n, ok
}

// AddAlias records alias as an alternate name for n, rejecting a
// collision with any existing net name or alias.
func (c *Cell) AddAlias(n *net.Net, alias string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.nets[alias]; exists {
		return ErrDuplicateNetName
	}
	if _, exists := c.netAlias[alias]; exists {
		return ErrDuplicateNetName
	}
	n.AddAlias(alias)
	c.netAlias[alias] = n.Name
	return nil
}

// Net resolves a net by its primary name or any registered alias.
func (c *Cell) Net(name string) (*net.Net, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n, ok := c.nets[name]; ok {
		return n, true
	}
	if primary, ok := c.netAlias[name]; ok {
		return c.nets[primary], true
	}
	return nil, false
}

// Nets returns every registered net, ordered by name.
func (c *Cell) Nets() []*net.Net {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*net.Net, 0, len(c.nets))
	for _, n := range c.nets {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RemoveNet removes a net and every alias registered for it from the
// cell's registries. Components in the cell's store that carry the
// net's id in their NetID field are not modified, and the net's own
// ComponentIDs list is left as it is.
func (c *Cell) RemoveNet(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nets[name]
	if !ok {
		return
	}
	for alias := range n.Aliases {
		delete(c.netAlias, alias)
	}
	delete(c.nets, name)
	delete(c.netsByID, n.ID)
}

// NewEquipotentialID allocates a monotonically increasing equipotential
// id, scoped to this cell (spec's Equipotential.ID is only meaningful
// per extraction run, unlike entity.ID which is process-wide).
func (c *Cell) NewEquipotentialID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextEquiID++
	return c.nextEquiID
}

// PublishEquipotential records an extraction result under its id; the
// extractor's builder calls it once per equipotential it produces. The
// id allocator is reset only by ResetExtraction.
func (c *Cell) PublishEquipotential(e *net.Equipotential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.equipotentials[e.ID] = e
}

// Equipotentials returns every published equipotential, ordered by id.
func (c *Cell) Equipotentials() []*net.Equipotential {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*net.Equipotential, 0, len(c.equipotentials))
	for _, e := range c.equipotentials {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ResetExtraction discards every published equipotential, matching
// spec's Equipotential lifecycle: "destroyed with cell extraction
// reset".
func (c *Cell) ResetExtraction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.equipotentials = make(map[uint64]*net.Equipotential)
	c.nextEquiID = 0
}

// AddSubInstance records that masterID's design is instantiated within
// this cell, used by the extractor's hierarchical child-equi cache
// (spec §4.3).
func (c *Cell) AddSubInstance(masterID entity.ID, master *Cell) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subInstances[masterID] = master
}

// SubInstance returns the sub-cell registered under masterID.
func (c *Cell) SubInstance(masterID entity.ID) (*Cell, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sc, ok := c.subInstances[masterID]
	return sc, ok
}
