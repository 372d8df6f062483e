package entity

// Occurrence identifies one hierarchical instance of an entity: an
// instance path (outermost to innermost) plus the entity at the bottom
// of that path. Spec §3: "two occurrences equal iff path and entity both
// equal; flattened occurrence has empty path."
type Occurrence struct {
	Path   []ID
	Entity ID
}

// Flat creates a flattened (top-level) occurrence: no instance path.
func Flat(e ID) Occurrence {
	return Occurrence{Entity: e}
}

// Nested prepends an instance to a deeper occurrence's path, used while
// walking down a hierarchy (outermost instance first).
func Nested(inst ID, inner Occurrence) Occurrence {
	path := make([]ID, 0, len(inner.Path)+1)
	path = append(path, inst)
	path = append(path, inner.Path...)
	return Occurrence{Path: path, Entity: inner.Entity}
}

// Equal reports whether two occurrences reference the same path and
// entity.
func (o Occurrence) Equal(other Occurrence) bool {
	if o.Entity != other.Entity {
		return false
	}
	if len(o.Path) != len(other.Path) {
		return false
	}
	for i := range o.Path {
		if o.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// IsFlat reports whether the occurrence has an empty path.
func (o Occurrence) IsFlat() bool {
	return len(o.Path) == 0
}

// Key returns a value usable as a map key, since Occurrence itself
// contains a slice.
func (o Occurrence) Key() string {
	// Fixed-width encoding avoids delimiter collisions between path
	// entries and the trailing entity id.
	buf := make([]byte, 0, (len(o.Path)+1)*8)
	for _, id := range o.Path {
		buf = appendUint64(buf, uint64(id))
	}
	buf = appendUint64(buf, uint64(o.Entity))
	return string(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(v>>(56-8*i)))
	}
	return buf
}
