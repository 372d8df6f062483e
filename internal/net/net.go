// Package net implements the Net and Equipotential data model consolidated
// by the sweep-line extractor and consumed by the auto-routing session.
//
// Adapted from the teacher's internal/netlist package: ElectricalNet's
// element bookkeeping (typed element lists, name-priority ranking via
// BetterNetName, RebuildIDLists, ConnectedComponents) is reworked here
// into Net + Equipotential over entity.Occurrence values instead of
// string-keyed PCB features.
package net

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"vlsix/internal/entity"
	"vlsix/pkg/geometry"
)

// Type classifies what a net carries electrically (spec §3).
type Type int

const (
	TypeLogical Type = iota
	TypeClock
	TypePower
	TypeGround
	TypeBlockage
	TypeFused
)

func (t Type) String() string {
	switch t {
	case TypeLogical:
		return "Logical"
	case TypeClock:
		return "Clock"
	case TypePower:
		return "Power"
	case TypeGround:
		return "Ground"
	case TypeBlockage:
		return "Blockage"
	case TypeFused:
		return "Fused"
	default:
		return "Unknown"
	}
}

// Direction is a bitset of the electrical directions a net may carry;
// external nets must resolve to a well-defined direction (spec §3).
type Direction uint8

const (
	DirUndefined Direction = 0
	DirIn        Direction = 1 << iota
	DirOut
	DirTristate
)

// Merge returns the bitwise-or of two direction sets (spec §4.4:
// "Direction = bitwise-or of contributing directions").
func (d Direction) Merge(o Direction) Direction { return d | o }

var autoNetRe = regexp.MustCompile(`^net-\d+$`)

// namePriority scores a net name for canonical-name selection: higher
// wins. Adapted directly from the teacher's netNamePriority /
// BetterNetName pair (internal/netlist/electrical.go), which ranks
// auto-generated names below component-pin names below user/signal
// names. Canonical equipotential naming does not use it (see
// FinalizeName and BetterLexName).
func namePriority(name string) int {
	if autoNetRe.MatchString(name) {
		return 0
	}
	if strings.Contains(name, ".") {
		return 1
	}
	return 2
}

// BetterNetName returns whichever of a and b ranks higher by
// namePriority; when both rank equally, the lexicographically smaller
// name wins, so the result is deterministic. An empty name always
// loses to a non-empty one.
func BetterNetName(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	pa, pb := namePriority(a), namePriority(b)
	if pa != pb {
		if pa > pb {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

// Net is a named electrical net owned by a cell.
type Net struct {
	ID        entity.ID
	Name      string
	Type      Type
	Direction Direction
	External  bool
	Aliases   map[string]bool

	// ComponentIDs lists every routing-pad/plug/component entity attached
	// to this net (spec §3: "if external, has a plug for every slave
	// instance").
	ComponentIDs []entity.ID
}

// NewNet creates an internal (non-external) net.
func NewNet(id entity.ID, name string, typ Type) *Net {
	return &Net{ID: id, Name: name, Type: typ, Aliases: make(map[string]bool)}
}

// AddAlias records an alternate name for this net. Per spec §3, aliases
// must never collide with another net's primary name; that cross-net
// invariant is enforced by the owning cell's registry, not by Net
// itself.
func (n *Net) AddAlias(alias string) {
	n.Aliases[alias] = true
}

// AttachComponent records a component/plug id as belonging to this net.
func (n *Net) AttachComponent(id entity.ID) {
	n.ComponentIDs = append(n.ComponentIDs, id)
}

// ShortCircuit records evidence that two externally-driven nets were
// found electrically connected during extraction (spec §4.4).
type ShortCircuit struct {
	NetA, NetB string
	Witness    geometry.Box
}

// Flags is a bitset of equipotential classification flags. Bit layout
// recovered from original_source/tramontana/src/tramontana/Equipotential.h,
// which spec.md's data-model table compresses to prose; "Automatic" is
// the one bit the distillation dropped (see SPEC_FULL.md §4).
type Flags uint32

const (
	FlagBuried Flags = 1 << iota
	FlagExternal
	FlagGlobal
	FlagAutomatic
	FlagPower
	FlagGround
	FlagHasFused
	FlagMerged
)

// netCount tracks how many external vs internal nets contributed to an
// equipotential, per spec §3's "net multiset with (external,internal)
// counts".
type netCount struct {
	External int
	Internal int
}

// Equipotential is a maximal electrically connected set of components,
// consolidated by the extractor's builder pass from union-find roots.
type Equipotential struct {
	ID      uint64
	OwnerID entity.ID
	BBox    geometry.Box

	nets       map[string]*netCount
	components map[string]entity.Occurrence // keyed by Occurrence.Key()
	childEquis map[string]entity.Occurrence

	Flags         Flags
	CanonicalName string
	Direction     Direction
	Type          Type

	ShortCircuits []ShortCircuit

	hasPower, hasGround, hasClock bool
}

// NewEquipotential creates an empty equipotential owned by cell.
func NewEquipotential(id uint64, owner entity.ID) *Equipotential {
	return &Equipotential{
		ID:         id,
		OwnerID:    owner,
		BBox:       geometry.EmptyBox(),
		nets:       make(map[string]*netCount),
		components: make(map[string]entity.Occurrence),
		childEquis: make(map[string]entity.Occurrence),
	}
}

// AddComponent folds one component occurrence (and its bounding box) into
// the equipotential.
func (e *Equipotential) AddComponent(occ entity.Occurrence, bb geometry.Box) {
	e.components[occ.Key()] = occ
	e.BBox = e.BBox.Union(bb)
}

// AddChildEquipotential records a nested (sub-instance) equipotential's
// occurrence that was folded into this one during hierarchical merging
// (spec §4.3: "merges at the parent level carry the child-equi
// reference").
func (e *Equipotential) AddChildEquipotential(occ entity.Occurrence) {
	e.childEquis[occ.Key()] = occ
}

// Components returns every contributing component occurrence.
func (e *Equipotential) Components() []entity.Occurrence {
	out := make([]entity.Occurrence, 0, len(e.components))
	for _, occ := range e.components {
		out = append(out, occ)
	}
	return out
}

// ChildEquipotentials returns every folded-in child equipotential
// occurrence.
func (e *Equipotential) ChildEquipotentials() []entity.Occurrence {
	out := make([]entity.Occurrence, 0, len(e.childEquis))
	for _, occ := range e.childEquis {
		out = append(out, occ)
	}
	return out
}

// AddNetContribution records that a net (external or internal) touches
// this equipotential and re-derives Type/Direction/Flags per spec §4.4's
// classification rule.
func (e *Equipotential) AddNetContribution(n *Net) {
	c := e.nets[n.Name]
	if c == nil {
		c = &netCount{}
		e.nets[n.Name] = c
	}
	if n.External {
		c.External++
	} else {
		c.Internal++
	}
	e.Direction = e.Direction.Merge(n.Direction)
	e.reclassify(n.Type)
}

// reclassify implements spec §4.4's merge rule: "if any contributing net
// is Power -> Power; else if any is Ground -> Ground; else if any is
// Clock -> Clock; else Logical; conflicting Power+Ground sets HasFused".
// Contributing types accumulate as booleans rather than being folded
// eagerly into e.Type, so that the presence of one Power net and one
// Ground net is detected regardless of the order they were added in.
func (e *Equipotential) reclassify(incoming Type) {
	switch incoming {
	case TypePower:
		e.hasPower = true
	case TypeGround:
		e.hasGround = true
	case TypeClock:
		e.hasClock = true
	}
	if e.hasPower && e.hasGround {
		e.Flags |= FlagHasFused
	}

	switch {
	case e.hasPower:
		e.Flags |= FlagPower
		e.Type = TypePower
	case e.hasGround:
		e.Flags |= FlagGround
		e.Type = TypeGround
	case e.hasClock:
		e.Type = TypeClock
	default:
		e.Type = TypeLogical
	}
}

// ExternalNetNames returns every distinct net name that contributed
// externally, ascending.
func (e *Equipotential) ExternalNetNames() []string {
	var names []string
	for name, c := range e.nets {
		if c.External > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NetNames returns every distinct contributing net name, ascending.
func (e *Equipotential) NetNames() []string {
	names := make([]string, 0, len(e.nets))
	for name := range e.nets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExternalCount and InternalCount return the (external, internal)
// contribution counts recorded for a given net name.
func (e *Equipotential) ExternalCount(name string) int {
	if c, ok := e.nets[name]; ok {
		return c.External
	}
	return 0
}

func (e *Equipotential) InternalCount(name string) int {
	if c, ok := e.nets[name]; ok {
		return c.Internal
	}
	return 0
}

// RecordShortCircuit appends a short-circuit witness and sets HasFused.
func (e *Equipotential) RecordShortCircuit(netA, netB string, witness geometry.Box) {
	e.Flags |= FlagHasFused
	e.ShortCircuits = append(e.ShortCircuits, ShortCircuit{NetA: netA, NetB: netB, Witness: witness})
}

// FinalizeName elects the equipotential's canonical name: the
// lex-smallest external contributing net name, or a synthesized
// "tmp_equi_<id>" (with FlagAutomatic set) if none is external — spec
// §4.4 and SPEC_FULL.md §4.
func (e *Equipotential) FinalizeName() {
	ext := e.ExternalNetNames()
	if len(ext) == 0 {
		e.CanonicalName = fmt.Sprintf("tmp_equi_%d", e.ID)
		e.Flags |= FlagAutomatic
		return
	}
	e.Flags |= FlagExternal
	name := ext[0]
	for _, n := range ext[1:] {
		name = BetterLexName(name, n)
	}
	e.CanonicalName = name
}

// BetterLexName returns the lexicographically smaller of two names,
// exactly the tie-break spec §4.4 specifies for canonical naming
// (distinct from BetterNetName's priority ranking, which is used when
// choosing a display name for a single net rather than naming a merged
// equipotential).
func BetterLexName(a, b string) string {
	if a <= b {
		return a
	}
	return b
}

// IsMerged reports whether this equipotential has been folded into
// another (spec §3: "if merged, must be detached from net/component
// property indices").
func (e *Equipotential) IsMerged() bool {
	return e.Flags&FlagMerged != 0
}

// MarkMerged flags the equipotential as merged away.
func (e *Equipotential) MarkMerged() {
	e.Flags |= FlagMerged
}
