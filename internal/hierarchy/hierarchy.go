// Package hierarchy declares the Hierarchy Store collaborator interface
// consumed by the extractor and routing session (spec §6.1). The
// toolbox core never implements it; a GDS/LEF/DEF/Bookshelf front end
// does (spec §6.3: "boundaries ... are the collaborators' responsibility").
//
// Grounded on internal/board's BoardSpec-style small accessor
// interfaces (internal/board/spec.go), generalised from a single fixed
// board to an arbitrary cell hierarchy.
package hierarchy

import (
	"vlsix/internal/entity"
	"vlsix/internal/layer"
	"vlsix/pkg/geometry"
)

// Cell is the minimal view of a design cell the hierarchy store needs
// to expose; internal/design.Cell satisfies it.
type Cell interface {
	ID() entity.ID
	Name() string
}

// Store is implemented by whatever owns the design database (a GDS/LEF
// importer, an in-memory test fixture, ...).
type Store interface {
	// CellsOf iterates every cell belonging to library.
	CellsOf(library string) ([]Cell, error)

	// ComponentsUnder iterates every component occurrence intersecting
	// box on any layer in layerMask, within cell.
	ComponentsUnder(cell Cell, box geometry.Box, layerMask layer.Mask) ([]entity.Occurrence, error)

	// OccurrencesUnder iterates every occurrence (of any kind)
	// intersecting box within cell.
	OccurrencesUnder(cell Cell, box geometry.Box) ([]entity.Occurrence, error)

	// Flatten materialises deep nets for cell according to flags,
	// resolving hierarchical net connectivity down through
	// sub-instances.
	Flatten(cell Cell, flags FlattenFlags) error
}

// FlattenFlags controls how deep and how eagerly Flatten materialises
// nested nets.
type FlattenFlags uint8

const (
	// FlattenRecursive descends into every sub-instance transitively,
	// rather than stopping at the first level.
	FlattenRecursive FlattenFlags = 1 << iota
	// FlattenCacheChildEqui reuses a previously published child
	// equipotential instead of re-flattening it (spec §4.3's
	// "child-equi cache").
	FlattenCacheChildEqui
)
