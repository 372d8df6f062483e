// Package gauge declares the Technology/Routing Gauge and Global Router
// Oracle collaborator interfaces consumed by the routing session and
// GCell grid (spec §6.1).
//
// Grounded on internal/board/spec.go's BoardSpec accessor-method style
// (small read-only interfaces exposing physical constants by index).
package gauge

import (
	"vlsix/internal/layer"
	"vlsix/pkg/geometry"
)

// Direction is the preferred wiring direction at a routing depth.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

// RoutingGauge exposes the per-depth physical constants the router
// needs: pitch, offset, wire/via widths, preferred direction, and the
// technology limits used by extraction and DRC-adjacent checks.
type RoutingGauge interface {
	LayerDepth(l layer.ID) uint32
	RoutingLayer(depth uint32) (layer.ID, bool)
	ContactLayer(depth uint32) (layer.ID, bool)

	Pitch(depth uint32) geometry.DbU
	Offset(depth uint32) geometry.DbU
	WireWidth(depth uint32) geometry.DbU
	ViaWidth(depth uint32) geometry.DbU
	Direction(depth uint32) Direction

	ExtensionCap(l layer.ID) geometry.DbU
	MinimalSpacing(l layer.ID) geometry.DbU
	MinimalSize(l layer.ID) geometry.DbU

	// PairedDepth returns the depth of the layer immediately above or
	// below depth that a dogleg's perpendicular middle segment should
	// prefer, per spec §4.6.3's "policy: prefer the layer reported by
	// the gauge as paired to the current".
	PairedDepth(depth uint32, up bool) (uint32, bool)

	// Depths returns the number of routing depths configured, bounding
	// every depth-indexed query above.
	Depths() uint32
}

// GlobalRouterOracle optionally supplies cut lines to bootstrap a
// GCellGrid and post-hoc edge-capacity adjustments (spec §6.1: optional
// collaborator).
type GlobalRouterOracle interface {
	HorizontalCutLines() []geometry.DbU
	VerticalCutLines() []geometry.DbU
	EdgeCapacity(fromRow, fromCol, toRow, toCol int) (delta int, ok bool)
}
