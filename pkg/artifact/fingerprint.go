package artifact

import "golang.org/x/crypto/blake2b"

// Fingerprint is a short, log-friendly identifier for a loaded
// artifact's content, distinct from the mandatory SHA-256 integrity
// digest in the header (which must stay crypto/sha256 exactly as
// spec.md §4.1 requires): the first 8 bytes of a BLAKE2b-256 digest,
// as 16 hex characters. The orchestrator's reload log event does not
// include it.
func Fingerprint(content []byte) string {
	sum := blake2b.Sum256(content)
	const n = 8
	const hextable = "0123456789abcdef"
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		out[i*2] = hextable[sum[i]>>4]
		out[i*2+1] = hextable[sum[i]&0x0f]
	}
	return string(out)
}
