package sweep

import (
	"fmt"
	"math"

	"github.com/born-ml/adtape/internal/ops"
	"github.com/born-ml/adtape/internal/tape"
)

// IndexError reports an indirectly computed vector index outside the
// vector's declared length. It depends on run-time data, so it is checked
// on every replay.
type IndexError struct {
	Op     int     // position of the load or store in the tape
	Offset int     // combined offset of the vector
	Index  float64 // index value before truncation
	Len    int     // declared vector length
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("sweep: op %d: vector index %v out of range [0, %d) for vector at offset %d",
		e.Op, e.Index, e.Len, e.Offset)
}

// VecState is the replay-time state of the indirect vectors: a working
// copy of the tape's combined array (mutated by stores) and the row each
// load resolved to during the last order-0 sweep.
type VecState struct {
	Combined []int
	IsVar    []bool
	Load     []int // resolved row per load slot, -1 for a parameter
}

// NewVecState allocates replay state for t.
func NewVecState(t *tape.Tape) *VecState {
	v := &VecState{
		Combined: make([]int, len(t.Combined)),
		IsVar:    make([]bool, len(t.CombinedVar)),
		Load:     make([]int, t.NumLoad),
	}
	v.Reset(t)
	return v
}

// Reset restores the combined array to its recorded initial contents.
func (v *VecState) Reset(t *tape.Tape) {
	copy(v.Combined, t.Combined)
	copy(v.IsVar, t.CombinedVar)
}

// element returns the combined position addressed by a load or store.
func (v *VecState) element(pos int, op tape.Op, taylor ops.Matrix) (int, error) {
	off := op.Arg[0]
	n := v.Combined[off-1]
	switch op.Code {
	case tape.Ldp, tape.Stpp, tape.Stpv:
		return off + op.Arg[1], nil
	}
	x := taylor.Row(op.Arg[1])[0]
	f := math.Floor(x)
	if !(f >= 0 && f < float64(n)) {
		return 0, &IndexError{Op: pos, Offset: off, Index: x, Len: n}
	}
	return off + int(f), nil
}

// vectorIndex maps combined offsets to vector numbers for the sparsity sweeps.
func vectorIndex(t *tape.Tape) map[int]int {
	offs := t.Vectors()
	m := make(map[int]int, len(offs))
	for i, off := range offs {
		m[off] = i
	}
	return m
}
