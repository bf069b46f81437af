package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrBodyTooLarge       = errors.New("tape body exceeds maximum size")
	ErrTooManyOps         = errors.New("too many operators in tape")
)

// ValidationError describes a decoded body that cannot form a tape.
type ValidationError struct {
	Type    string // kind of failure, e.g. "opcode", "length"
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
