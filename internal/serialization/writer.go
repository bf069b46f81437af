package serialization

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/born-ml/adtape/internal/tape"
)

// cborEncMode uses canonical mode so equal tapes encode to equal bytes and
// therefore equal checksums.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("serialization: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Encode returns the complete .adtp encoding of t.
func Encode(t *tape.Tape) ([]byte, error) {
	data, err := cborEncMode.Marshal(bodyFromTape(t))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tape body: %w", err)
	}
	if len(data) > MaxBodySize {
		return nil, ErrBodyTooLarge
	}

	out := make([]byte, FixedHeaderSize, FixedHeaderSize+len(data))
	copy(out, MagicBytes)
	binary.LittleEndian.PutUint32(out[4:], FormatVersion)
	sum := BodyChecksum(data)
	copy(out[8:8+ChecksumSize], sum[:])
	binary.LittleEndian.PutUint64(out[8+ChecksumSize:], uint64(len(data)))
	return append(out, data...), nil
}

// Write encodes t to w.
func Write(w io.Writer, t *tape.Tape) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tape: %w", err)
	}
	return nil
}

// WriteFile encodes t into the file at path, replacing it.
func WriteFile(path string, t *tape.Tape) (err error) {
	//nolint:gosec // G304: path comes from the caller
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := Write(bw, t); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush file: %w", err)
	}
	return nil
}
