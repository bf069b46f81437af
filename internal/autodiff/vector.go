package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/adtape/internal/tape"
)

// Vector is an indirectly addressed array. Element accesses whose index is
// traced are resolved again at every replay, so a tape recorded with one
// index value follows the index when it changes.
type Vector struct {
	rec  *Recorder
	off  int
	elem []Var

	// tainted is set once a store with a traced index or value is recorded;
	// from then on every Get is recorded as a load.
	tainted bool
}

// NewVector records a vector whose elements start out as the given constants.
func (r *Recorder) NewVector(init []float64) *Vector {
	v := &Vector{rec: r, elem: make([]Var, len(init))}
	idx := make([]int, len(init))
	for k, x := range init {
		v.elem[k] = Const(x)
		idx[k] = r.par(x)
	}
	if r.live() {
		v.off = r.b.PutVector(idx)
	}
	return v
}

// Len returns the number of elements.
func (v *Vector) Len() int {
	return len(v.elem)
}

// slot truncates i to an element index, recording ErrIndex when it falls
// outside the vector.
func (v *Vector) slot(i Var) (int, bool) {
	f := math.Floor(i.val)
	if !(f >= 0 && f < float64(len(v.elem))) {
		v.rec.fail(fmt.Errorf("%w: vector index %v, length %d", ErrIndex, i.val, len(v.elem)))
		return 0, false
	}
	return int(f), true
}

// Get returns element floor(i).
func (v *Vector) Get(i Var) Var {
	r := v.rec
	if !r.live(i) {
		return Const(math.NaN())
	}
	k, ok := v.slot(i)
	if !ok {
		return Const(math.NaN())
	}
	x := v.elem[k]
	if i.rec == nil && !v.tainted {
		return x
	}
	if i.rec == nil {
		return Var{val: x.val, rec: r, row: r.putLoad(tape.Ldp, v.off, k)}
	}
	return Var{val: x.val, rec: r, row: r.putLoad(tape.Ldv, v.off, i.row)}
}

// Set stores x at element floor(i).
func (v *Vector) Set(i, x Var) {
	r := v.rec
	if !r.live(i, x) {
		return
	}
	k, ok := v.slot(i)
	if !ok {
		return
	}
	v.elem[k] = x

	var code tape.OpCode
	index, value := k, 0
	switch {
	case i.rec == nil && x.rec == nil:
		code, value = tape.Stpp, r.par(x.val)
	case i.rec == nil:
		code, value = tape.Stpv, x.row
	case x.rec == nil:
		code, index, value = tape.Stvp, i.row, r.par(x.val)
	default:
		code, index, value = tape.Stvv, i.row, x.row
	}
	if code != tape.Stpp {
		v.tainted = true
	}
	r.recorded = true
	r.b.PutOp(code, v.off, index, value)
}

func (r *Recorder) putLoad(code tape.OpCode, off, index int) int {
	r.recorded = true
	return r.b.PutLoad(code, off, index)
}
