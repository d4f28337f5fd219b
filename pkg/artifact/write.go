package artifact

import (
	"crypto/sha256"
	"os"
)

// Encode serializes root into a complete artifact file image: header
// followed by its content region. Primarily used by tests (round-trip
// property, spec.md §8 property 3); the DSL compiler that produces
// real artifacts is out of scope (spec.md §1).
func Encode(root ConfigRoot) ([]byte, error) {
	content, err := EncodeRoot(root)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(content)
	h := Header{
		Magic:         Magic,
		VersionMajor:  SupportedMajor,
		VersionMinor:  SupportedMinor,
		ContentSHA256: sum,
		ContentLength: uint64(len(content)),
	}
	out := make([]byte, 0, headerSize+len(content))
	out = append(out, EncodeHeader(h)...)
	out = append(out, content...)
	return out, nil
}

// WriteFile encodes root and writes it to path.
func WriteFile(path string, root ConfigRoot) error {
	data, err := Encode(root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
