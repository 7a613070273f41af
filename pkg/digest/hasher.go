package digest

import (
	"github.com/zeebo/blake3"

	"github.com/flyingrobots/ledger-kernel/pkg/capability"
)

// Size is the length in bytes of an entry digest.
const Size = 32

// Hasher is the hash capability used to derive identifiers.
type Hasher interface {
	// Name identifies the primitive, e.g. "blake3".
	Name() string
	// Sum returns the Size-byte digest of data.
	Sum(data []byte) ([]byte, error)
}

// Blake3 returns the BLAKE3-256 hasher.
func Blake3() Hasher {
	return blake3Hasher{}
}

type blake3Hasher struct{}

func (blake3Hasher) Name() string { return capability.Hash }

func (blake3Hasher) Sum(data []byte) ([]byte, error) {
	sum := blake3.Sum256(data)
	return sum[:], nil
}

// Unavailable returns a hasher that always fails with
// capability.UnavailableError. It stands in for the hash primitive when it
// is disabled or missing.
func Unavailable(reason string) Hasher {
	return unavailableHasher{reason: reason}
}

type unavailableHasher struct {
	reason string
}

func (unavailableHasher) Name() string { return capability.Hash }

func (h unavailableHasher) Sum([]byte) ([]byte, error) {
	return nil, capability.Unavailable(capability.Hash, h.reason)
}

// Available reports whether h can produce digests.
func Available(h Hasher) bool {
	if h == nil {
		return false
	}
	_, absent := h.(unavailableHasher)
	return !absent
}
