package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Checksum is the SHA-256 digest of an encoded tape body.
type Checksum [ChecksumSize]byte

// BodyChecksum returns the digest stored in the header for body.
func BodyChecksum(body []byte) Checksum {
	return sha256.Sum256(body)
}

// String returns the digest in lowercase hex.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// short is the prefix used in error messages.
func (c Checksum) short() string {
	return c.String()[:12]
}

// verifyBody checks body against the digest recorded in h.
func verifyBody(h Header, body []byte) error {
	if got := BodyChecksum(body); got != h.Checksum {
		return fmt.Errorf("%w: header %s, body %s", ErrChecksumMismatch, h.Checksum.short(), got.short())
	}
	return nil
}
