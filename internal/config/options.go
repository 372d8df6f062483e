// Package config holds the routing/extraction options recognised by
// the toolbox (spec §6.4), persisted the way the teacher persists a
// project file: a JSON-tagged struct loaded/saved with encoding/json.
//
// Grounded on internal/project/project.go's File/Load/Save shape.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"vlsix/pkg/geometry"
)

// RipupLimits caps how many times a segment of each class may be
// ripped up before the router declares failure (spec §6.4).
type RipupLimits struct {
	Strap       uint32 `json:"strap"`
	GlobalShort uint32 `json:"global_short"`
	GlobalLong  uint32 `json:"global_long"`
	Local       uint32 `json:"local"`
}

// Options is the full set of recognised configuration knobs.
type Options struct {
	SaturateRatio         float64      `json:"saturate_ratio"`
	SaturateRp            uint32       `json:"saturate_rp"`
	GlobalLengthThreshold geometry.DbU `json:"global_length_threshold"`
	TopRoutingLayer       string       `json:"top_routing_layer"`
	HEdgeReservedLocal    uint32       `json:"h_edge_reserved_local"`
	VEdgeReservedLocal    uint32       `json:"v_edge_reserved_local"`
	EventsLimit           uint64       `json:"events_limit"`
	RipupLimits           RipupLimits  `json:"ripup_limits"`

	// CompositeViaTiles records the per-technology choice of via/contact
	// tile fan-out: false (default) means one tile per basic layer a
	// contact spans, true means a single tile carrying the union mask.
	// The extractor does not read this option: extract.Extract always
	// emits one tile per basic layer.
	CompositeViaTiles bool `json:"composite_via_tiles"`
}

// Default returns the toolbox's baseline configuration.
func Default() Options {
	return Options{
		SaturateRatio:         0.85,
		SaturateRp:            8,
		GlobalLengthThreshold: 50 * geometry.Resolution,
		HEdgeReservedLocal:    1,
		VEdgeReservedLocal:    1,
		EventsLimit:           1_000_000,
		RipupLimits: RipupLimits{
			Strap:       3,
			GlobalShort: 5,
			GlobalLong:  5,
			Local:       10,
		},
	}
}

// Validate reports the first configuration error found, if any.
func (o Options) Validate() error {
	if o.SaturateRatio < 0 || o.SaturateRatio > 1 {
		return fmt.Errorf("config: saturate_ratio %v out of [0,1]", o.SaturateRatio)
	}
	if o.GlobalLengthThreshold < 0 {
		return fmt.Errorf("config: global_length_threshold must be non-negative")
	}
	if o.EventsLimit == 0 {
		return fmt.Errorf("config: events_limit must be positive")
	}
	return nil
}

// Load reads and validates an Options value from a JSON file.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	opts := Default()
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Save persists o as indented JSON.
func (o Options) Save(path string) error {
	if err := o.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
