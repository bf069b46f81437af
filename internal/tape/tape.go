// Package tape holds the recorded operation sequence that every
// derivative sweep replays.
//
// A Tape is built once by a Builder during recording and is read-only
// afterwards. It contains:
//   - Ops: operator records in execution order (topologically sorted)
//   - Par: the parameter pool (constants referenced by operators)
//   - Combined: descriptor blocks for indirectly addressed vectors
//   - Independent / Dependent: the declared input and output rows
package tape

import (
	"errors"
	"fmt"
	"unsafe"
)

// Errors reported by Validate.
var (
	ErrBadOpCode   = errors.New("unknown opcode")
	ErrForwardRef  = errors.New("argument refers to a row not yet computed")
	ErrParRange    = errors.New("parameter index out of range")
	ErrRowOrder    = errors.New("result rows out of order")
	ErrVecOffset   = errors.New("vector offset out of range")
	ErrIndependent = errors.New("independent rows must be the first rows in declaration order")
	ErrDependent   = errors.New("dependent address out of range")
)

// ValidationError reports the operator that broke a tape invariant.
type ValidationError struct {
	Op    int    // position in Ops, -1 for address tables
	Code  OpCode // opcode of the offending record
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Op < 0 {
		return fmt.Sprintf("tape: %v", e.Cause)
	}
	return fmt.Sprintf("tape: op %d (%s): %v", e.Op, e.Code, e.Cause)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Tape is an immutable recorded operation sequence.
type Tape struct {
	Ops []Op      // operator records in ascending row order
	Par []float64 // parameter pool

	// Combined holds one block per indirect vector: Combined[off-1] is the
	// block length and Combined[off+k] the row or parameter index initially
	// stored at element k. CombinedVar[off+k] is true when that entry is a
	// variable row.
	Combined    []int
	CombinedVar []bool

	Independent  []int  // rows of the independent variables
	Dependent    []int  // row, or parameter index when DependentPar is set
	DependentPar []bool // dependent is a parameter (constant output)

	NumVar  int // total number of rows
	NumLoad int // number of load operators (size of the load resolution table)
}

// NumOps returns the number of recorded operators.
func (t *Tape) NumOps() int {
	return len(t.Ops)
}

// VectorLen returns the declared length of the vector whose block starts at off.
func (t *Tape) VectorLen(off int) int {
	return t.Combined[off-1]
}

// Vectors returns the combined offset of every indirect vector in creation order.
func (t *Tape) Vectors() []int {
	var offs []int
	for off := 1; off <= len(t.Combined); off += t.Combined[off-1] + 1 {
		offs = append(offs, off)
	}
	return offs
}

// Memory returns the approximate number of bytes held by the tape.
func (t *Tape) Memory() int {
	return len(t.Ops)*int(unsafe.Sizeof(Op{})) +
		len(t.Par)*8 +
		len(t.Combined)*int(unsafe.Sizeof(int(0))) +
		len(t.CombinedVar) +
		(len(t.Independent)+len(t.Dependent))*int(unsafe.Sizeof(int(0))) +
		len(t.DependentPar)
}

// Validate checks the structural invariants every sweep relies on:
// opcodes are known, result rows are assigned in increasing order, every
// variable argument precedes the operator's first result, parameter and
// vector references are in range, independents occupy the first rows and
// dependents refer to existing rows or parameters.
func (t *Tape) Validate() error {
	next := 0
	loads := 0
	for i, op := range t.Ops {
		if !op.Code.Valid() {
			return &ValidationError{Op: i, Code: op.Code, Cause: ErrBadOpCode}
		}
		if op.Code == Inv && i >= len(t.Independent) {
			return &ValidationError{Op: i, Code: op.Code, Cause: ErrIndependent}
		}
		first := op.FirstRes()
		if first != next {
			return &ValidationError{Op: i, Code: op.Code, Cause: ErrRowOrder}
		}
		if err := t.validateArgs(op, first, &loads); err != nil {
			return &ValidationError{Op: i, Code: op.Code, Cause: err}
		}
		next += op.Code.NumRes()
	}
	if next != t.NumVar {
		return &ValidationError{Op: -1, Cause: fmt.Errorf("%w: %d rows recorded, NumVar %d", ErrRowOrder, next, t.NumVar)}
	}
	if loads != t.NumLoad {
		return &ValidationError{Op: -1, Cause: fmt.Errorf("load count %d does not match NumLoad %d", loads, t.NumLoad)}
	}
	if len(t.CombinedVar) != len(t.Combined) {
		return &ValidationError{Op: -1, Cause: fmt.Errorf("%w: combined flags length mismatch", ErrVecOffset)}
	}
	for off := 1; off <= len(t.Combined); off += t.Combined[off-1] + 1 {
		n := t.Combined[off-1]
		if n < 0 || off+n > len(t.Combined) {
			return &ValidationError{Op: -1, Cause: ErrVecOffset}
		}
		for k := off; k < off+n; k++ {
			limit := len(t.Par)
			if t.CombinedVar[k] {
				limit = t.NumVar
			}
			if t.Combined[k] < 0 || t.Combined[k] >= limit {
				return &ValidationError{Op: -1, Cause: fmt.Errorf("%w: element %d", ErrVecOffset, k-off)}
			}
		}
	}
	for j, row := range t.Independent {
		if j >= len(t.Ops) || t.Ops[j].Code != Inv || t.Ops[j].Res != row || row != j {
			return &ValidationError{Op: -1, Cause: ErrIndependent}
		}
	}
	if len(t.DependentPar) != len(t.Dependent) {
		return &ValidationError{Op: -1, Cause: fmt.Errorf("%w: flag length mismatch", ErrDependent)}
	}
	for i, addr := range t.Dependent {
		limit := t.NumVar
		if t.DependentPar[i] {
			limit = len(t.Par)
		}
		if addr < 0 || addr >= limit {
			return &ValidationError{Op: -1, Cause: fmt.Errorf("%w: output %d", ErrDependent, i)}
		}
	}
	return nil
}

func (t *Tape) validateArgs(op Op, first int, loads *int) error {
	code := op.Code
	for k := 0; k < code.NumArg(); k++ {
		a := op.Arg[k]
		switch {
		case code.ArgIsVar(k):
			if a < 0 || a >= first {
				return ErrForwardRef
			}
		case code.ArgIsPar(k):
			if a < 0 || a >= len(t.Par) {
				return ErrParRange
			}
		}
	}
	switch code {
	case Ldp, Ldv, Stpp, Stpv, Stvp, Stvv:
		off := op.Arg[0]
		if off < 1 || off > len(t.Combined) {
			return ErrVecOffset
		}
		n := t.Combined[off-1]
		if off+n > len(t.Combined) {
			return ErrVecOffset
		}
		if (code == Ldp || code == Stpp || code == Stpv) && (op.Arg[1] < 0 || op.Arg[1] >= n) {
			return ErrVecOffset
		}
		if code == Ldp || code == Ldv {
			if op.Arg[2] != *loads {
				return fmt.Errorf("load slot %d out of sequence", op.Arg[2])
			}
			*loads++
		}
	case Com:
		flags := op.Arg[1]
		for side, bit := range [2]int{CompareLeftVar, CompareRightVar} {
			a := op.Arg[2+side]
			if flags&bit != 0 {
				if a < 0 || a >= first {
					return ErrForwardRef
				}
			} else if a < 0 || a >= len(t.Par) {
				return ErrParRange
			}
		}
		if op.Arg[0] < int(CompareLt) || op.Arg[0] > int(CompareNe) {
			return fmt.Errorf("unknown comparison %d", op.Arg[0])
		}
	}
	return nil
}
