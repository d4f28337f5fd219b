package artifact

import (
	"fmt"
	"os"
)

// Root is the loaded, immutable artifact: the validated ConfigRoot
// plus its precomputed per-device Lookup tables (§4.1). A Root is safe
// to share, unlocked, across every device's dispatch code (spec.md
// §3: "in-memory lookup tables are built once per load and shared
// read-only across devices").
type Root struct {
	Config   ConfigRoot
	Lookups  []Lookup // parallel to Config.Devices
	Fallback Lookup   // built from Config.Fallback
}

// Load reads, validates, and decodes the artifact at path, then builds
// its lookup structures. It returns one of ErrInvalidMagic,
// ErrVersionMismatch, ErrHashMismatch, or ErrMalformedArchive on
// failure; it never panics (spec.md §4.1, §7).
func Load(path string) (*Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: open %s: %w", path, err)
	}
	defer f.Close()

	_, content, err := ReadAll(f)
	if err != nil {
		return nil, err
	}
	return decode(content)
}

// decode resolves the archive root, under a single scoped
// catch-on-panic guard (spec.md §4.1: "a single scoped catch-on-panic
// guard wraps the archive root resolution as a defense-in-depth
// measure because zero-copy validation is currently best-effort for
// value semantics"). CBOR decoding into typed Go structs is memory
// safe by construction, unlike the rkyv-style zero-copy archive the
// spec's reference format uses, so this guard is pure
// defense-in-depth against decoder bugs, not a load-bearing safety
// mechanism the way it would be for true zero-copy pointer validation.
func decode(content []byte) (root *Root, err error) {
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = fmt.Errorf("%w: panic during archive resolution: %v", ErrMalformedArchive, r)
		}
	}()

	cfg, decErr := decodeRoot(content)
	if decErr != nil {
		return nil, decErr
	}
	return build(cfg)
}

// build constructs a Root's Lookup tables from a decoded ConfigRoot.
func build(cfg ConfigRoot) (*Root, error) {
	lookups := make([]Lookup, len(cfg.Devices))
	for i, dc := range cfg.Devices {
		l, err := newLookup(cfg, dc)
		if err != nil {
			return nil, fmt.Errorf("%w: device %d: %v", ErrMalformedArchive, i, err)
		}
		lookups[i] = l
	}
	fallback, err := newLookup(cfg, cfg.Fallback)
	if err != nil {
		return nil, fmt.Errorf("%w: fallback device: %v", ErrMalformedArchive, err)
	}
	return &Root{Config: cfg, Lookups: lookups, Fallback: fallback}, nil
}
