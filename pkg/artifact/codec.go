package artifact

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// contentEncMode encodes a ConfigRoot deterministically: canonical key
// sort, no indefinite-length items. Determinism is what makes the
// content region content-addressable (spec.md §2: "content-addressed
// binary configuration artifact") — the same ConfigRoot value always
// serializes to the same bytes, hence the same SHA-256. Configured the
// same way the teacher's pkg/wire/codec.go configures its message
// codec.
var contentEncMode cbor.EncMode

// contentDecMode is lenient for forward compatibility with minor
// version bumps (spec.md §4.1: "minor-forward compatible").
var contentDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	contentEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("artifact: failed to build CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	contentDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("artifact: failed to build CBOR decoder mode: %v", err))
	}
}

// EncodeRoot serializes root to its canonical content-region bytes.
func EncodeRoot(root ConfigRoot) ([]byte, error) {
	return contentEncMode.Marshal(root)
}

// decodeRoot deserializes content-region bytes into a ConfigRoot. Any
// panic raised by the underlying decoder is converted to
// ErrMalformedArchive by the caller's recover in load.go — this
// function itself does not recover, so tests can exercise it directly
// without the guard masking bugs.
func decodeRoot(content []byte) (ConfigRoot, error) {
	var root ConfigRoot
	if err := contentDecMode.Unmarshal(content, &root); err != nil {
		return ConfigRoot{}, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	return root, nil
}
