// Package digest derives ledger entry identifiers.
//
// The identifier of an entry is the lowercase hex BLAKE3-256 digest of the
// canonical JSON text of its preimage (the entry without attestations). The
// canonical CBOR path produces a different, auxiliary digest and is only used
// when a caller asks for it explicitly. The bytes presented to a signature
// scheme are SigningPrefix followed by the identifier.
package digest

import (
	"encoding/hex"
	"fmt"
)

// SigningPrefix is prepended to an identifier to form the signing input.
const SigningPrefix = "ledger-entry:"

// Digest hashes data with h and returns the lowercase hex digest.
func Digest(h Hasher, data []byte) (string, error) {
	if h == nil {
		h = Blake3()
	}
	sum, err := h.Sum(data)
	if err != nil {
		return "", err
	}
	if len(sum) != Size {
		return "", fmt.Errorf("digest: %s returned %d bytes, want %d", h.Name(), len(sum), Size)
	}
	return hex.EncodeToString(sum), nil
}

// SigningInput returns the exact string to be signed for id.
func SigningInput(id string) string {
	return SigningPrefix + id
}
