// Package session implements the transactional routing session: the
// scoped guard that batches invalidations against an Engine and runs
// one coherent revalidation pass on close (spec §4.7, §5).
//
// Grounded on the teacher's internal/app/state.go (a single mutable
// app-state struct owning pending-change collections drained on save)
// generalised into an explicit open/close guard rather than an
// implicit save trigger, per spec §9's redesign of process-wide
// singletons into an owned guard value.
package session

import (
	"sort"
	"sync"

	"vlsix/internal/diagnostic"
	"vlsix/internal/entity"
	"vlsix/internal/gauge"
	"vlsix/internal/gcell"
	"vlsix/internal/topology"
)

// InvalidateKind distinguishes what pending collection an invalidated
// entity id belongs in.
type InvalidateKind int

const (
	NetKind InvalidateKind = iota
	ContactKind
	SegmentKind
)

var (
	mu      sync.Mutex
	current *Session
)

// Session is the process-wide open routing transaction (spec §5: "the
// process-wide state S is the open Session pointer"). There is at most
// one live Session at a time; a second Open on the same owner cell
// joins it by incrementing refCount rather than nesting, per spec §5's
// "re-entrant calls ... join the existing session".
type Session struct {
	ownerCellID entity.ID
	engine      *topology.Engine
	gauge       gauge.RoutingGauge
	events      *diagnostic.EventQueue
	grid        *gcell.Grid

	refCount int

	pendingNets     map[entity.ID]bool
	pendingContacts map[entity.ID]bool
	pendingSegments map[entity.ID]bool
	destroySegments map[entity.ID]bool
	destroyContacts map[entity.ID]bool

	netSeeds map[entity.ID][]entity.ID
	netRings map[entity.ID]*topology.HookRing

	doglegs []topology.Doglegs

	needsRepair bool
}

// Guard is returned by Open; dropping it (calling Close) releases the
// session, running revalidation exactly once when the outermost guard
// closes (spec §6.2: "Session::open(engine) -> Guard, where dropping
// the guard calls close()").
type Guard struct {
	s      *Session
	closed bool
}

// Open acquires the routing session for ownerCellID. If a session is
// already open on the same owner, this call joins it (spec §5); if one
// is open on a different owner, it fails with ErrSessionReopen (spec
// §7).
func Open(ownerCellID entity.ID, engine *topology.Engine, g gauge.RoutingGauge, events *diagnostic.EventQueue) (*Guard, error) {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		if current.ownerCellID != ownerCellID {
			return nil, diagnostic.Wrap(diagnostic.ErrSessionReopen, "session.Open")
		}
		current.refCount++
		return &Guard{s: current}, nil
	}

	s := &Session{
		ownerCellID:     ownerCellID,
		engine:          engine,
		gauge:           g,
		events:          events,
		refCount:        1,
		pendingNets:     make(map[entity.ID]bool),
		pendingContacts: make(map[entity.ID]bool),
		pendingSegments: make(map[entity.ID]bool),
		destroySegments: make(map[entity.ID]bool),
		destroyContacts: make(map[entity.ID]bool),
		netSeeds:        make(map[entity.ID][]entity.ID),
		netRings:        make(map[entity.ID]*topology.HookRing),
	}
	current = s
	return &Guard{s: s}, nil
}

// Current returns the process-wide open session, or nil if none is
// open (spec §5: any access outside an open session fails with
// NoSession).
func Current() *Session {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Close releases one reference to the guard's session. When the
// outermost guard closes, it runs revalidation exactly once, verifies
// every pending set drained, and releases the process-wide session
// slot (spec §4.7: "On close: revalidate as above, verify all pending
// sets are empty, then release the update lock").
func (g *Guard) Close() error {
	mu.Lock()
	if g.closed {
		mu.Unlock()
		return nil
	}
	g.closed = true
	s := g.s
	s.refCount--
	outermost := s.refCount == 0
	if outermost {
		current = nil
	}
	mu.Unlock()

	if !outermost {
		return nil
	}
	if err := s.Revalidate(); err != nil {
		return err
	}
	if len(s.pendingNets) != 0 || len(s.pendingContacts) != 0 || len(s.pendingSegments) != 0 {
		panic("session: pending sets not drained after revalidation")
	}
	return nil
}

// SetGrid attaches the gcell grid used to re-centre invalidated
// contacts during revalidation step 3. Optional: a session with no
// grid skips geometric re-centring.
func (s *Session) SetGrid(grid *gcell.Grid) { s.grid = grid }

// RegisterNetSeeds records the contact ids revalidation should walk
// from when recomputing net id's hook ring (step 1); the session has
// no independent notion of "which contacts belong to a net" since that
// mapping is owned by the collaborator hierarchy store (spec §6.1).
func (s *Session) RegisterNetSeeds(netID entity.ID, contactIDs []entity.ID) {
	s.netSeeds[netID] = append([]entity.ID(nil), contactIDs...)
}

// HookRing returns the most recently revalidated hook ring for netID,
// if any.
func (s *Session) HookRing(netID entity.ID) (*topology.HookRing, bool) {
	r, ok := s.netRings[netID]
	return r, ok
}

// NeedsRepair reports whether a revalidation left the engine in the
// "needs-repair" state: set when canonical election fails with a fatal
// error or when two non-fixed segments overlap on a track.
func (s *Session) NeedsRepair() bool { return s.needsRepair }

// requireOpen fails with NoSession if s is not the currently open
// session (spec §7: "any access outside an open session ... fails
// with NoSessionError").
func (s *Session) requireOpen() error {
	mu.Lock()
	defer mu.Unlock()
	if current != s {
		return diagnostic.Wrap(diagnostic.ErrNoSession, "session")
	}
	return nil
}

// Invalidate appends id to the pending collection named by kind; no
// geometry changes happen until the next Revalidate (spec §4.7).
func (s *Session) Invalidate(kind InvalidateKind, id entity.ID) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	switch kind {
	case NetKind:
		s.pendingNets[id] = true
	case ContactKind:
		s.pendingContacts[id] = true
	case SegmentKind:
		s.pendingSegments[id] = true
		if seg, ok := s.engine.Segment(id); ok {
			seg.Flags |= topology.Invalidated
		}
	}
	if s.events != nil {
		s.events.Publish(diagnostic.EventInvalidate, uint64(id))
	}
	return nil
}

// Link registers autoID as baseID's auto-entity wrapper.
func (s *Session) Link(baseID, autoID entity.ID) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	s.engine.Link(baseID, autoID)
	return nil
}

// Unlink deregisters baseID's wrapper, failing if it was not linked
// (spec §4.7).
func (s *Session) Unlink(baseID entity.ID) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if !s.engine.Unlink(baseID) {
		return diagnostic.Wrap(diagnostic.ErrUnlinkNotLinked, "session.Unlink")
	}
	return nil
}

// Lookup resolves a base entity id to its auto-entity id.
func (s *Session) Lookup(baseID entity.ID) (entity.ID, bool, error) {
	if err := s.requireOpen(); err != nil {
		return 0, false, err
	}
	id, ok := s.engine.Lookup(baseID)
	return id, ok, nil
}

// DestroyRequest queues segID for destruction after revalidation has
// read whatever state it needs (spec §4.7).
func (s *Session) DestroyRequest(segID entity.ID) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	s.destroySegments[segID] = true
	return nil
}

// DestroyContactRequest queues a contact for destruction once isolated.
func (s *Session) DestroyContactRequest(contactID entity.ID) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	s.destroyContacts[contactID] = true
	return nil
}

// MakeDogleg splits segID at cell, immediately mutating the engine
// (spec §4.6.3), records the result for GetDoglegs, and marks all
// three produced segments invalidated so the next revalidation
// canonicalises and re-centres them.
func (s *Session) MakeDogleg(segID entity.ID, cell *gcell.GCell) (topology.Doglegs, error) {
	if err := s.requireOpen(); err != nil {
		return topology.Doglegs{}, err
	}
	dl, err := s.engine.MakeDogleg(segID, cell, s.gauge)
	if err != nil {
		return topology.Doglegs{}, err
	}
	s.doglegs = append(s.doglegs, dl)
	s.pendingSegments[dl.Head.ID] = true
	s.pendingSegments[dl.Middle.ID] = true
	s.pendingSegments[dl.Tail.ID] = true
	s.pendingContacts[dl.Head.TargetID] = true
	s.pendingContacts[dl.Tail.SourceID] = true
	if s.events != nil {
		s.events.Publish(diagnostic.EventCreate, uint64(dl.Head.ID))
		s.events.Publish(diagnostic.EventCreate, uint64(dl.Middle.ID))
		s.events.Publish(diagnostic.EventCreate, uint64(dl.Tail.ID))
	}
	return dl, nil
}

// GetDoglegs returns every dogleg produced during the session so far,
// in production order, each as (head, middle, tail) (spec §4.6.3).
func (s *Session) GetDoglegs() []topology.Doglegs {
	return append([]topology.Doglegs(nil), s.doglegs...)
}

func sortedIDs(m map[entity.ID]bool) []entity.ID {
	out := make([]entity.ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
