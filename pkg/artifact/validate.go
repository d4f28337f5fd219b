package artifact

import (
	"fmt"

	"github.com/keyrx/keyrx/pkg/action"
)

// Finding is one structural-consistency problem reported by Validate.
// Unlike the load-time errors in format.go, a Finding does not stop
// the artifact from loading — Validate runs against an already-loaded
// Root and is meant for the `validate` CLI command's diagnostic
// output (SPEC_FULL.md §6 supplemented feature).
type Finding struct {
	Device  int    // index into Config.Devices, or -1 for the fallback
	Message string
}

// Validate performs the structural checks spec.md §4.2 says are
// "caught at load time by the artifact validator": every LayerSwitch
// action's target layer index resolves, and every predicate alias
// index used anywhere has a matching AliasDecl. Load already rejects
// artifacts whose layer *indices* don't resolve (that's a hard
// ErrMalformedArchive); Validate additionally catches LayerSwitch
// targets and undeclared aliases, which Load intentionally tolerates
// at decode time since they only matter once the engine dispatches
// through them.
func (r *Root) Validate() []Finding {
	var findings []Finding

	declared := make(map[uint8]bool)   // modifier indices
	declaredLK := make(map[uint8]bool) // lock indices
	for _, a := range r.Config.Aliases {
		if a.IsLock {
			declaredLK[a.Index] = true
		} else {
			declared[a.Index] = true
		}
	}

	checkDevice := func(devIdx int, dc DeviceConfig) {
		for _, c := range dc.Conditionals {
			for _, m := range c.ModifierIndices {
				if !declared[m] {
					findings = append(findings, Finding{devIdx, fmt.Sprintf("predicate references undeclared MD_%02X", m)})
				}
			}
			for _, l := range c.LockIndices {
				if !declaredLK[l] {
					findings = append(findings, Finding{devIdx, fmt.Sprintf("predicate references undeclared LK_%02X", l)})
				}
			}
		}
		for _, layerIdx := range allLayerIndices(dc) {
			if int(layerIdx) >= len(r.Config.Layers) {
				findings = append(findings, Finding{devIdx, fmt.Sprintf("layer index %d out of range", layerIdx)})
				continue
			}
			decl := r.Config.Layers[layerIdx]
			for code, act := range decl.Mapping {
				if act.Kind != action.KindLayerSwitch {
					continue
				}
				if int(act.LayerSwitchLayer) >= len(r.Config.Layers) {
					findings = append(findings, Finding{devIdx,
						fmt.Sprintf("layer %q: LayerSwitch on %v targets undefined layer index %d", decl.ID, code, act.LayerSwitchLayer)})
				}
			}
		}
	}

	for i, dc := range r.Config.Devices {
		checkDevice(i, dc)
	}
	checkDevice(-1, r.Config.Fallback)

	return findings
}

func allLayerIndices(dc DeviceConfig) []uint16 {
	idx := []uint16{dc.BaseLayer}
	for _, c := range dc.Conditionals {
		idx = append(idx, c.LayerIndex)
	}
	return idx
}
