package artifact

import (
	"time"

	"github.com/keyrx/keyrx/pkg/action"
	"github.com/keyrx/keyrx/pkg/keycode"
)

// DevicePatternKind discriminates the three device-matching forms the
// compiler's contract allows (spec.md §6 DSL-to-artifact contract).
type DevicePatternKind uint8

const (
	PatternWildcard DevicePatternKind = iota
	PatternSerial
	PatternVendorProductSerial
)

// DevicePattern identifies which physical devices a DeviceConfig
// applies to.
type DevicePattern struct {
	Kind     DevicePatternKind `cbor:"1,keyasint"`
	Serial   string            `cbor:"2,keyasint,omitempty"`
	VendorID uint16            `cbor:"3,keyasint,omitempty"`
	ProductID uint16           `cbor:"4,keyasint,omitempty"`
}

// AliasDecl is a human-readable name bound to an MD_/LK_ alias index,
// declared once at the artifact root (spec.md §6: "each alias index
// used anywhere in the artifact MUST be declared once at the root").
type AliasDecl struct {
	IsLock bool   `cbor:"1,keyasint"`
	Index  uint8  `cbor:"2,keyasint"`
	Name   string `cbor:"3,keyasint"`
}

// LayerDecl is one entry in the layer arena. Index 0 is always the
// base layer (layer.BaseIndex).
type LayerDecl struct {
	ID      string                        `cbor:"1,keyasint"`
	Mapping map[keycode.Code]action.Action `cbor:"2,keyasint"`
}

// ConditionalDecl binds a predicate to a layer arena index for one
// DeviceConfig.
type ConditionalDecl struct {
	ModifierIndices []uint8 `cbor:"1,keyasint,omitempty"`
	LockIndices     []uint8 `cbor:"2,keyasint,omitempty"`
	LayerIndex      uint16  `cbor:"3,keyasint"`
}

// DeviceConfig is the base layer plus conditional layers for devices
// matching Pattern.
type DeviceConfig struct {
	Pattern      DevicePattern     `cbor:"1,keyasint"`
	BaseLayer    uint16            `cbor:"2,keyasint"`
	Conditionals []ConditionalDecl `cbor:"3,keyasint,omitempty"`
}

// Metadata is descriptive, non-semantic information about a build.
type Metadata struct {
	Name        string    `cbor:"1,keyasint,omitempty"`
	BuildTime   time.Time `cbor:"2,keyasint,omitempty"`
	GitHash     string    `cbor:"3,keyasint,omitempty"`
	ProducerVer string    `cbor:"4,keyasint,omitempty"`
}

// ConfigRoot is the archive root: the whole of the artifact's content
// region, minus the header.
type ConfigRoot struct {
	VersionMajor uint16         `cbor:"1,keyasint"`
	VersionMinor uint16         `cbor:"2,keyasint"`
	Meta         Metadata       `cbor:"3,keyasint"`
	Layers       []LayerDecl    `cbor:"4,keyasint"`
	Aliases      []AliasDecl    `cbor:"5,keyasint,omitempty"`
	Devices      []DeviceConfig `cbor:"6,keyasint"`
	// Fallback is the global '*' DeviceConfig, applied when no other
	// DeviceConfig.Pattern matches a device.
	Fallback DeviceConfig `cbor:"7,keyasint"`
}
