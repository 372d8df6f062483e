package entity

import (
	"fmt"
	"sort"
	"sync"
)

// Store is an id-stable, owning registry for one cell's components.
// Grounded on the teacher's internal/features.DetectedFeaturesLayer: a
// map-of-id registry guarded by a sync.RWMutex, with typed side-index
// slices kept alongside the main map for fast by-kind iteration — the
// same shape as DetectedFeaturesLayer.vias/traces next to its
// features map.
type Store struct {
	mu sync.RWMutex

	components map[ID]Component
	byKind     map[Kind][]ID

	// properties are attached out-of-band, keyed by entity id then
	// property name, matching spec §3's "supports property attachment".
	properties map[ID]map[string]any
}

// NewStore creates an empty component store.
func NewStore() *Store {
	return &Store{
		components: make(map[ID]Component),
		byKind:     make(map[Kind][]ID),
		properties: make(map[ID]map[string]any),
	}
}

// Add registers a component that has already been assigned an id via
// NextID, transitioning it to Alive.
func (s *Store) Add(c Component) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.EntityID()
	setState(c, StateAlive)
	s.components[id] = c
	s.byKind[c.ComponentKind()] = append(s.byKind[c.ComponentKind()], id)
}

// Get returns the component for id, or (nil, false) if it is unknown or
// already destroyed.
func (s *Store) Get(id ID) (Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[id]
	if !ok || c.EntityState() == StateDead {
		return nil, false
	}
	return c, true
}

// ByKind returns the ids of every live component of the given kind, in
// ascending id order (spec §5: "all iteration ... is either over an
// ordered map/set or over a vector sorted by a total order on entity
// ids").
func (s *Store) ByKind(k Kind) []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]ID, 0, len(s.byKind[k]))
	for _, id := range s.byKind[k] {
		if s.components[id].EntityState() != StateDead {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// All returns every live component id in ascending order.
func (s *Store) All() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]ID, 0, len(s.components))
	for id, c := range s.components {
		if c.EntityState() != StateDead {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Destroy transitions a component through Destroying -> Dead and detaches
// its properties, matching spec §3's "destruction detaches all
// referencing hooks" and §9's explicit destroy state machine. Returns an
// error if the id is unknown.
func (s *Store) Destroy(id ID, detach func(Component)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.components[id]
	if !ok {
		return fmt.Errorf("entity: destroy of unknown id %d", id)
	}
	setState(c, StateDestroying)
	if detach != nil {
		detach(c)
	}
	setState(c, StateDead)
	delete(s.properties, id)
	return nil
}

// setState mutates the embedded Header.State field through the Component
// interface via a type switch, since Component does not expose a mutator
// (mutation is intentionally not part of the read-only capability set).
func setState(c Component, st State) {
	switch v := c.(type) {
	case *Wire:
		v.State = st
	case *Contact:
		v.State = st
	case *Rectilinear:
		v.State = st
	case *Pad:
		v.State = st
	case *Pin:
		v.State = st
	case *RoutingPad:
		v.State = st
	case *Instance:
		v.State = st
	}
}

// SetProperty attaches a named property value to an entity.
func (s *Store) SetProperty(id ID, name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.properties[id] == nil {
		s.properties[id] = make(map[string]any)
	}
	s.properties[id][name] = value
}

// Property returns a named property previously attached to id.
func (s *Store) Property(id ID, name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.properties[id]
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}
