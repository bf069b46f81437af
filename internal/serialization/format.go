package serialization

import (
	"github.com/born-ml/adtape/internal/tape"
)

// Format constants.
const (
	MagicBytes      = "ADTP"
	FormatVersion   = 1
	ChecksumSize    = 32
	FixedHeaderSize = 4 + 4 + ChecksumSize + 8
)

// Header is the fixed-size prefix of a .adtp file.
type Header struct {
	Version  uint32
	Checksum Checksum
	BodySize uint64
}

// opRecord is one operator in the body, encoded as a CBOR array.
type opRecord struct {
	_    struct{} `cbor:",toarray"`
	Code uint8
	Arg  [4]int
	Res  int
}

// body is the CBOR payload of a .adtp file.
type body struct {
	Ops          []opRecord `cbor:"1,keyasint"`
	Par          []float64  `cbor:"2,keyasint,omitempty"`
	Combined     []int      `cbor:"3,keyasint,omitempty"`
	CombinedVar  []bool     `cbor:"4,keyasint,omitempty"`
	Independent  []int      `cbor:"5,keyasint,omitempty"`
	Dependent    []int      `cbor:"6,keyasint,omitempty"`
	DependentPar []bool     `cbor:"7,keyasint,omitempty"`
	NumVar       int        `cbor:"8,keyasint"`
	NumLoad      int        `cbor:"9,keyasint"`
}

func bodyFromTape(t *tape.Tape) *body {
	b := &body{
		Ops:          make([]opRecord, len(t.Ops)),
		Par:          t.Par,
		Combined:     t.Combined,
		CombinedVar:  t.CombinedVar,
		Independent:  t.Independent,
		Dependent:    t.Dependent,
		DependentPar: t.DependentPar,
		NumVar:       t.NumVar,
		NumLoad:      t.NumLoad,
	}
	for i, op := range t.Ops {
		b.Ops[i] = opRecord{Code: uint8(op.Code), Arg: op.Arg, Res: op.Res}
	}
	return b
}

func (b *body) tape() *tape.Tape {
	t := &tape.Tape{
		Ops:          make([]tape.Op, len(b.Ops)),
		Par:          b.Par,
		Combined:     b.Combined,
		CombinedVar:  b.CombinedVar,
		Independent:  b.Independent,
		Dependent:    b.Dependent,
		DependentPar: b.DependentPar,
		NumVar:       b.NumVar,
		NumLoad:      b.NumLoad,
	}
	for i, op := range b.Ops {
		t.Ops[i] = tape.Op{Code: tape.OpCode(op.Code), Arg: op.Arg, Res: op.Res}
	}
	return t
}
