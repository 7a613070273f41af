package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ContentID wraps a hex digest produced by this package as a CIDv1 with the
// raw codec and a blake3 multihash. It lets an identifier be stored in or
// fetched from content-addressed stores without rehashing.
func ContentID(hexDigest string) (cid.Cid, error) {
	sum, err := hex.DecodeString(hexDigest)
	if err != nil {
		return cid.Undef, fmt.Errorf("digest: invalid hex digest: %w", err)
	}
	if len(sum) != Size {
		return cid.Undef, fmt.Errorf("digest: digest is %d bytes, want %d", len(sum), Size)
	}
	mh, err := multihash.Encode(sum, multihash.BLAKE3)
	if err != nil {
		return cid.Undef, fmt.Errorf("digest: multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// DigestFromContentID is the inverse of ContentID.
func DigestFromContentID(s string) (string, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return "", fmt.Errorf("digest: invalid cid: %w", err)
	}
	dec, err := multihash.Decode(c.Hash())
	if err != nil {
		return "", fmt.Errorf("digest: invalid multihash: %w", err)
	}
	if dec.Code != multihash.BLAKE3 {
		return "", fmt.Errorf("digest: cid hash is %s, want blake3", dec.Name)
	}
	if len(dec.Digest) != Size {
		return "", fmt.Errorf("digest: cid digest is %d bytes, want %d", len(dec.Digest), Size)
	}
	return hex.EncodeToString(dec.Digest), nil
}
