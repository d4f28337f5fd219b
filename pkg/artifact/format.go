// Package artifact implements the binary configuration artifact format
// and loader of spec.md §4.1: a small little-endian header (magic,
// version, SHA-256 content digest, content length) followed by a
// canonical-CBOR-encoded ConfigRoot. The format is read-only at
// runtime; a separate compiler (out of scope, spec.md §1) produces it.
package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic is the fixed 4-byte file signature.
var Magic = [4]byte{'K', 'R', 'X', 0}

// SupportedMajor is the only major version this loader accepts.
// SupportedMinor is the highest minor version understood; artifacts
// with a lower minor are forward-compatible by construction (spec.md
// §4.1: "minor-forward compatible").
const (
	SupportedMajor uint16 = 1
	SupportedMinor uint16 = 0
)

// headerSize is the fixed on-disk header length (spec.md §4.1 layout
// table): 4 (magic) + 2 + 2 (version) + 32 (sha256) + 8 (length).
const headerSize = 4 + 2 + 2 + 32 + 8

// Header is the fixed-layout artifact header, read with explicit
// little-endian primitives per spec.md §4.1.
type Header struct {
	Magic         [4]byte
	VersionMajor  uint16
	VersionMinor  uint16
	ContentSHA256 [32]byte
	ContentLength uint64
}

// Sentinel errors for the four recoverable load failures of spec.md
// §4.1 and §7. None of these ever surface as a panic; the loader
// returns them as ordinary errors.
var (
	ErrInvalidMagic     = errors.New("artifact: invalid magic")
	ErrVersionMismatch  = errors.New("artifact: unsupported version")
	ErrHashMismatch     = errors.New("artifact: content hash mismatch")
	ErrMalformedArchive = errors.New("artifact: malformed archive")
)

// EncodeHeader writes h's fixed fields in the on-disk layout.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionMajor)
	binary.LittleEndian.PutUint16(buf[6:8], h.VersionMinor)
	copy(buf[8:40], h.ContentSHA256[:])
	binary.LittleEndian.PutUint64(buf[40:48], h.ContentLength)
	return buf
}

// DecodeHeader reads the fixed header fields from the front of data.
// It performs no validation beyond having enough bytes; callers must
// call Validate.
func DecodeHeader(data []byte) (Header, []byte, error) {
	if len(data) < headerSize {
		return Header{}, nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrMalformedArchive, len(data))
	}
	var h Header
	copy(h.Magic[:], data[0:4])
	h.VersionMajor = binary.LittleEndian.Uint16(data[4:6])
	h.VersionMinor = binary.LittleEndian.Uint16(data[6:8])
	copy(h.ContentSHA256[:], data[8:40])
	h.ContentLength = binary.LittleEndian.Uint64(data[40:48])
	return h, data[headerSize:], nil
}

// Validate performs the three header-level checks of spec.md §4.1, in
// order: magic, then version, then (given content) hash. content must
// be exactly h.ContentLength bytes; the caller slices it from the file
// after the header.
func (h Header) Validate(content []byte) error {
	if h.Magic != Magic {
		return ErrInvalidMagic
	}
	if h.VersionMajor != SupportedMajor || h.VersionMinor > SupportedMinor {
		return ErrVersionMismatch
	}
	if uint64(len(content)) != h.ContentLength {
		return fmt.Errorf("%w: content length mismatch", ErrMalformedArchive)
	}
	sum := sha256.Sum256(content)
	if !bytes.Equal(sum[:], h.ContentSHA256[:]) {
		return ErrHashMismatch
	}
	return nil
}

// ReadAll reads header and content from r, validating both before
// returning. This is the single entry point load.go's Load wraps with
// archive deserialization and the catch-on-panic guard.
func ReadAll(r io.Reader) (Header, []byte, error) {
	all, err := io.ReadAll(r)
	if err != nil {
		return Header{}, nil, err
	}
	h, rest, err := DecodeHeader(all)
	if err != nil {
		return Header{}, nil, err
	}
	if uint64(len(rest)) < h.ContentLength {
		return Header{}, nil, fmt.Errorf("%w: content shorter than declared length", ErrMalformedArchive)
	}
	content := rest[:h.ContentLength]
	if err := h.Validate(content); err != nil {
		return Header{}, nil, err
	}
	return h, content, nil
}
