package artifact

import (
	"fmt"

	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/keyrx/keyrx/pkg/layer"
)

// Lookup is the precomputed, read-only in-memory index for one
// DeviceConfig: a base layer, a specificity-sorted conditional-layer
// list, and the coverage set the platform adapter uses to configure
// hardware-level filtering (spec.md §4.1).
type Lookup struct {
	Base         layer.Layer
	Conditionals []layer.Conditional
	CoverageSet  map[keycode.Code]struct{}
}

// newLookup resolves dc's layer indices against cfg.Layers, builds the
// Layer values, sorts the conditional list by specificity, and unions
// every mapped key into the coverage set.
func newLookup(cfg ConfigRoot, dc DeviceConfig) (Lookup, error) {
	base, err := resolveLayer(cfg, dc.BaseLayer)
	if err != nil {
		return Lookup{}, fmt.Errorf("base layer: %w", err)
	}

	conds := make([]layer.Conditional, 0, len(dc.Conditionals))
	for i, c := range dc.Conditionals {
		l, err := resolveLayer(cfg, c.LayerIndex)
		if err != nil {
			return Lookup{}, fmt.Errorf("conditional %d: %w", i, err)
		}
		conds = append(conds, layer.Conditional{
			Predicate: layer.Predicate{Modifiers: c.ModifierIndices, Locks: c.LockIndices},
			Index:     c.LayerIndex,
			Layer:     l,
		})
	}
	layer.SortConditionals(conds)

	coverage := make(map[keycode.Code]struct{})
	for k := range base.Mapping {
		coverage[k] = struct{}{}
	}
	for _, c := range conds {
		for k := range c.Layer.Mapping {
			coverage[k] = struct{}{}
		}
	}

	return Lookup{Base: base, Conditionals: conds, CoverageSet: coverage}, nil
}

func resolveLayer(cfg ConfigRoot, idx uint16) (layer.Layer, error) {
	if int(idx) >= len(cfg.Layers) {
		return layer.Layer{}, fmt.Errorf("layer index %d out of range (have %d layers)", idx, len(cfg.Layers))
	}
	decl := cfg.Layers[idx]
	return layer.Layer{ID: layer.ID(decl.ID), Mapping: decl.Mapping}, nil
}

// ForDevice returns the Lookup whose DeviceConfig.Pattern matches
// identity, falling back to the global Fallback. Matching follows the
// three pattern kinds of spec.md §6: an exact vendor:product:serial
// match wins over a serial-only match, which wins over '*'; Devices
// is searched in declaration order and the first structural match (by
// kind) is returned, mirroring how layer predicates break ties by
// declaration order.
func (r *Root) ForDevice(identity DeviceIdentity) Lookup {
	var best *Lookup
	bestKind := DevicePatternKind(0)
	matchedAny := false

	for i, dc := range r.Config.Devices {
		if !matches(dc.Pattern, identity) {
			continue
		}
		if !matchedAny || dc.Pattern.Kind > bestKind {
			best = &r.Lookups[i]
			bestKind = dc.Pattern.Kind
			matchedAny = true
		}
	}
	if matchedAny {
		return *best
	}
	return r.Fallback
}

// DeviceIdentity is the subset of a platform DeviceIdentity (§4.3)
// needed to match a DevicePattern.
type DeviceIdentity struct {
	VendorID  uint16
	ProductID uint16
	Serial    string
}

func matches(p DevicePattern, id DeviceIdentity) bool {
	switch p.Kind {
	case PatternWildcard:
		return true
	case PatternSerial:
		return p.Serial != "" && p.Serial == id.Serial
	case PatternVendorProductSerial:
		return p.VendorID == id.VendorID && p.ProductID == id.ProductID && p.Serial == id.Serial
	default:
		return false
	}
}
