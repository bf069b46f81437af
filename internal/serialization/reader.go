package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/born-ml/adtape/internal/tape"
)

// ReadHeader reads and checks the fixed-size prefix.
func ReadHeader(r io.Reader) (Header, error) {
	var fixed [FixedHeaderSize]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Header{}, fmt.Errorf("failed to read header: %w", err)
	}
	if string(fixed[:4]) != MagicBytes {
		return Header{}, ErrInvalidMagic
	}
	h := Header{
		Version:  binary.LittleEndian.Uint32(fixed[4:]),
		BodySize: binary.LittleEndian.Uint64(fixed[8+ChecksumSize:]),
	}
	copy(h.Checksum[:], fixed[8:8+ChecksumSize])
	if h.Version != FormatVersion {
		return Header{}, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, h.Version, FormatVersion)
	}
	if h.BodySize > MaxBodySize {
		return Header{}, ErrBodyTooLarge
	}
	return h, nil
}

// Read decodes a tape from r and validates it.
func Read(r io.Reader) (*tape.Tape, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, h.BodySize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read tape body: %w", err)
	}
	if err := verifyBody(h, data); err != nil {
		return nil, err
	}

	var b body
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode tape body: %w", err)
	}
	if err := validateBody(&b); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	t := b.tape()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return t, nil
}

// Decode is Read over an in-memory encoding.
func Decode(data []byte) (*tape.Tape, error) {
	return Read(bytes.NewReader(data))
}

// ReadFile reads the tape stored at path.
func ReadFile(path string) (*tape.Tape, error) {
	//nolint:gosec // G304: path comes from the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	t, err := Read(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
