package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Digest is a 256-bit node value in the piece tree.
// For a real piece it is the SHA-256 of the piece's (padded) bytes;
// for a synthetic padding leaf it is ZeroDigest.
type Digest [32]byte

// ZeroDigest is the all-zero sentinel used for padding leaves.
// It is never produced by hashing real piece content: real pieces are
// always run through SHA-256, and SHA-256 of anything is not zero.
var ZeroDigest Digest

// NewDigest computes the SHA-256 hash of the given data and
// returns it as a Digest.
func NewDigest(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(sum)
}

// Bytes returns the raw 32-byte slice of the Digest.
func (d Digest) Bytes() []byte {
	// Return a copy to avoid caller mutating internal array.
	b := make([]byte, len(d))
	copy(b, d[:])
	return b
}

// String returns the Digest as a lowercase hex string,
// e.g. "9b39e1...".
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// DigestFromHex parses a 64-char hex string into a Digest.
// Returns an error if the string is invalid.
func DigestFromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("DigestFromHex: decode error: %w", err)
	}
	if len(b) != len(d) {
		return d, fmt.Errorf("DigestFromHex: invalid length: got %d, want %d", len(b), len(d))
	}
	copy(d[:], b)
	return d, nil
}

// MustDigestFromHex is a convenience for tests / hard-coded digests.
// It panics if parsing fails.
func MustDigestFromHex(s string) Digest {
	d, err := DigestFromHex(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Equal reports whether two Digests are identical.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// IsZero reports whether the Digest is the padding sentinel.
func (d Digest) IsZero() bool {
	return d == ZeroDigest
}
