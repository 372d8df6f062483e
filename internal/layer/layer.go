// Package layer implements the hierarchical layer model: basic, regular,
// contact and via layers identified by a bitmask of the basic layers they
// physically contain.
package layer

import (
	"fmt"

	"vlsix/pkg/geometry"
)

// ID identifies a layer within a Technology.
type ID uint32

// Mask is a bitset over basic layers: bit i is set iff the layer
// physically contains basic layer i. A via spanning two metals sets both
// their bits; a plain metal layer sets only its own bit.
type Mask uint64

// Contains reports whether every bit in other is also set in m.
func (m Mask) Contains(other Mask) bool {
	return m&other == other
}

// Intersects reports whether m and other share at least one bit.
func (m Mask) Intersects(other Mask) bool {
	return m&other != 0
}

// Kind distinguishes the four layer categories of spec §3.
type Kind int

const (
	KindBasic Kind = iota
	KindRegular
	KindContact
	KindVia
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "Basic"
	case KindRegular:
		return "Regular"
	case KindContact:
		return "Contact"
	case KindVia:
		return "Via"
	default:
		return "Unknown"
	}
}

// Layer is one entry of the technology's layer stack.
type Layer struct {
	id   ID
	name string
	kind Kind

	// mask is the set of basic layers this layer physically contains;
	// extractMask is the mask used for extraction. It equals mask unless
	// a composite layer's Spec supplies a non-zero ExtractMask, which is
	// stored as given: the two masks are not checked against each other.
	mask        Mask
	extractMask Mask

	minSize     geometry.DbU
	minSpacing  geometry.DbU
	minArea     int64 // DbU², kept as int64 since it is a product of two DbU
	extension   geometry.DbU
	enclosures  map[ID]geometry.DbU // enclosure requirement over each sub-layer, by id
	basicLayers []ID                // basic layers whose bits are set in mask, ascending id
}

// ID returns the layer's identifier.
func (l *Layer) ID() ID { return l.id }

// Name returns the layer's symbolic name.
func (l *Layer) Name() string { return l.name }

// Kind returns the layer's category.
func (l *Layer) Kind() Kind { return l.kind }

// Mask returns the set of basic layers this layer contains.
func (l *Layer) Mask() Mask { return l.mask }

// ExtractMask returns the mask used for extraction (see the field
// comment on Layer).
func (l *Layer) ExtractMask() Mask { return l.extractMask }

// BasicLayers returns the basic layer ids contained in this layer,
// ascending. For a KindBasic layer this is a single-element slice
// containing its own id.
func (l *Layer) BasicLayers() []ID {
	out := make([]ID, len(l.basicLayers))
	copy(out, l.basicLayers)
	return out
}

// Contains reports whether this layer's mask contains every basic layer
// bit set in other's mask (e.g. a via containing both the metal it lands
// on and the cut it uses).
func (l *Layer) Contains(other *Layer) bool {
	return l.mask.Contains(other.mask)
}

// IntersectMask returns the basic layers shared between this layer and
// other.
func (l *Layer) IntersectMask(other *Layer) Mask {
	return l.mask & other.mask
}

// Enclosure returns the minimal enclosure this layer must provide over
// sub, or 0 if no rule is registered.
func (l *Layer) Enclosure(sub ID) geometry.DbU {
	return l.enclosures[sub]
}

// ExtensionCap returns the minimal wire extension beyond a via/contact
// edge required on this layer.
func (l *Layer) ExtensionCap() geometry.DbU { return l.extension }

// MinimalSize returns the minimal shape width/height on this layer.
func (l *Layer) MinimalSize() geometry.DbU { return l.minSize }

// MinimalSpacing returns the minimal spacing between two same-layer
// shapes.
func (l *Layer) MinimalSpacing() geometry.DbU { return l.minSpacing }

// MinimalArea returns the minimal shape area (DbU²) on this layer.
func (l *Layer) MinimalArea() int64 { return l.minArea }

// Spec describes the parameters used to create a Layer; it mirrors the
// fields a technology loader would populate from a technology file
// (technology-file parsing itself is out of scope per spec §1).
type Spec struct {
	Name        string
	Kind        Kind
	Mask        Mask
	ExtractMask Mask
	MinSize     geometry.DbU
	MinSpacing  geometry.DbU
	MinArea     int64
	Extension   geometry.DbU
	Enclosures  map[ID]geometry.DbU
	BasicLayers []ID // required for non-basic layers; a basic layer supplies its own id automatically
}

func (l *Layer) String() string {
	return fmt.Sprintf("Layer<%s:%s>", l.kind, l.name)
}
