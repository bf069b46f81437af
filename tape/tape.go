// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tape exposes recorded tapes and their persistence.
//
// Example:
//
//	import (
//	    "github.com/born-ml/adtape/autodiff"
//	    "github.com/born-ml/adtape/tape"
//	)
//
//	if err := tape.WriteFile("f.adtp", f.Tape()); err != nil {
//	    log.Fatal(err)
//	}
//	t, err := tape.ReadFile("f.adtp")
//	g, err := autodiff.New(t)
package tape

import (
	"io"

	"github.com/born-ml/adtape/internal/serialization"
	"github.com/born-ml/adtape/internal/store"
	"github.com/born-ml/adtape/internal/tape"
)

// Tape is an immutable recorded operation sequence.
type Tape = tape.Tape

// Op is one operator record.
type Op = tape.Op

// OpCode identifies an operator.
type OpCode = tape.OpCode

// Store keeps named tapes in a SQLite database.
type Store = store.Store

// Entry describes a stored tape.
type Entry = store.Entry

// ErrNotFound is returned by Store for unknown names.
var ErrNotFound = store.ErrNotFound

// Write encodes t to w in the .adtp format.
func Write(w io.Writer, t *Tape) error {
	return serialization.Write(w, t)
}

// Read decodes and validates a tape from r.
func Read(r io.Reader) (*Tape, error) {
	return serialization.Read(r)
}

// WriteFile encodes t into the file at path.
func WriteFile(path string, t *Tape) error {
	return serialization.WriteFile(path, t)
}

// ReadFile reads and validates the tape stored at path.
func ReadFile(path string) (*Tape, error) {
	return serialization.ReadFile(path)
}

// OpenStore opens or creates a tape store at path.
func OpenStore(path string) (*Store, error) {
	return store.Open(path)
}
