package entity

import (
	"vlsix/internal/layer"
	"vlsix/pkg/geometry"
)

// Kind identifies which component variant a Header belongs to. Spec §9
// replaces the source's inheritance hierarchy (Horizontal/Vertical/
// Contact/Rectilinear/...) with a tagged variant: one common header plus
// a kind tag, instead of a class per component type.
type Kind int

const (
	KindHorizontal Kind = iota
	KindVertical
	KindContact
	KindVia
	KindRectilinear
	KindPad
	KindPin
	KindRoutingPad
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindHorizontal:
		return "Horizontal"
	case KindVertical:
		return "Vertical"
	case KindContact:
		return "Contact"
	case KindVia:
		return "Via"
	case KindRectilinear:
		return "Rectilinear"
	case KindPad:
		return "Pad"
	case KindPin:
		return "Pin"
	case KindRoutingPad:
		return "RoutingPad"
	case KindInstance:
		return "Instance"
	default:
		return "Unknown"
	}
}

// Component is the small capability set the core needs from any owned
// entity, regardless of Kind: a stable id, its bounding box and the layer
// it sits on. Everything else (net membership, endpoints, ...) is
// variant-specific and reached via a type switch on Kind, matching spec
// §9's "small capability set" redesign of the source's virtual dispatch.
type Component interface {
	EntityID() ID
	BoundingBox() geometry.Box
	Layer() layer.ID
	ComponentKind() Kind
	EntityState() State
}

// Header is the common record embedded in every component variant.
type Header struct {
	ID      ID
	OwnerID ID // owning cell's entity id
	LayerID layer.ID
	BBox    geometry.Box
	Kind    Kind
	State   State
}

func (h *Header) EntityID() ID                { return h.ID }
func (h *Header) BoundingBox() geometry.Box   { return h.BBox }
func (h *Header) Layer() layer.ID             { return h.LayerID }
func (h *Header) ComponentKind() Kind         { return h.Kind }
func (h *Header) EntityState() State          { return h.State }

// Wire is a Horizontal or Vertical routing segment (Kind distinguishes
// them). SourceX/TargetX and the fixed Y (or SourceY/TargetY and fixed X)
// are folded into BBox; Width is kept separately since it does not affect
// which axis the wire runs along.
type Wire struct {
	Header
	Width geometry.DbU
	NetID ID
}

// Contact is a via or pin contact anchoring one or more wires.
type Contact struct {
	Header
	NetID ID
}

// Rectilinear is a non-Manhattan-free polygonal shape already decomposed
// into its owning rectangle set at construction time (geometry.Decompose
// is applied by the caller before a Rectilinear is stored).
type Rectilinear struct {
	Header
	Rectangles []geometry.Box
	NetID      ID
}

// Pad is a component terminal (external pin footprint).
type Pad struct {
	Header
	NetID ID
}

// Pin is an external, top-level cell terminal.
type Pin struct {
	Header
	NetID ID
}

// RoutingPad is a virtual terminal representing an external net's
// connection point before routing (glossary: "Routing pad").
type RoutingPad struct {
	Header
	NetID ID
}

// Instance is a placed occurrence of a sub-cell, carrying the
// transformation from the sub-cell's coordinate space into its owner's.
type Instance struct {
	Header
	MasterCellID ID
	Transform    geometry.Transformation
}
