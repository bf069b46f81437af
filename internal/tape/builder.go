package tape

import (
	"fmt"
	"math"
)

// Builder appends operator records during one recording pass.
//
// All methods return the row index assigned to the operator's primary
// result. Arguments must already be valid row or parameter indices;
// the recording front end is responsible for that.
type Builder struct {
	t        Tape
	parIndex map[float64]int
	done     bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		t: Tape{
			Ops: make([]Op, 0, 64), // Pre-allocate for common case
		},
		parIndex: make(map[float64]int),
	}
}

// NumVar returns the number of rows assigned so far.
func (b *Builder) NumVar() int {
	return b.t.NumVar
}

// PutPar adds a value to the parameter pool and returns its index.
// Equal values share one entry; NaN and negative zero are never deduplicated.
func (b *Builder) PutPar(v float64) int {
	if idx, ok := b.parIndex[v]; ok && math.Signbit(b.t.Par[idx]) == math.Signbit(v) {
		return idx
	}
	idx := len(b.t.Par)
	b.t.Par = append(b.t.Par, v)
	if v == v && !(v == 0 && math.Signbit(v)) {
		b.parIndex[v] = idx
	}
	return idx
}

// Par returns parameter idx.
func (b *Builder) Par(idx int) float64 {
	return b.t.Par[idx]
}

// PutOp appends an operator and assigns its result rows.
func (b *Builder) PutOp(code OpCode, args ...int) int {
	if b.done {
		panic("tape: PutOp after Finish")
	}
	if len(args) != code.NumArg() {
		panic(fmt.Sprintf("tape: %s takes %d arguments, got %d", code, code.NumArg(), len(args)))
	}
	op := Op{Code: code}
	copy(op.Arg[:], args)
	n := code.NumRes()
	if n == 0 {
		op.Res = b.t.NumVar
	} else {
		op.Res = b.t.NumVar + n - 1
	}
	b.t.NumVar += n
	b.t.Ops = append(b.t.Ops, op)
	return op.Res
}

// PutInv records an independent variable. Independents must be recorded
// before any other operator.
func (b *Builder) PutInv() int {
	if len(b.t.Ops) != len(b.t.Independent) {
		panic("tape: independent variables must precede all other operators")
	}
	row := b.PutOp(Inv)
	b.t.Independent = append(b.t.Independent, row)
	return row
}

// PutLoad records a load and allocates its slot in the load resolution table.
func (b *Builder) PutLoad(code OpCode, offset, index int) int {
	slot := b.t.NumLoad
	b.t.NumLoad++
	return b.PutOp(code, offset, index, slot)
}

// PutVector reserves a combined block for a vector whose elements start out
// as the given parameter indices. It returns the block offset.
func (b *Builder) PutVector(parIdx []int) int {
	b.t.Combined = append(b.t.Combined, len(parIdx))
	b.t.CombinedVar = append(b.t.CombinedVar, false)
	offset := len(b.t.Combined)
	b.t.Combined = append(b.t.Combined, parIdx...)
	b.t.CombinedVar = append(b.t.CombinedVar, make([]bool, len(parIdx))...)
	return offset
}

// Finish declares the dependent addresses and returns the finished tape.
// The builder cannot be used afterwards.
func (b *Builder) Finish(dep []int, depPar []bool) (*Tape, error) {
	if b.done {
		return nil, fmt.Errorf("tape: Finish called twice")
	}
	b.done = true
	b.t.Dependent = append([]int(nil), dep...)
	b.t.DependentPar = append([]bool(nil), depPar...)
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
