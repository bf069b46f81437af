// Package autodiff records numeric programs onto a tape and differentiates
// them.
//
// Recording uses explicit context passing. A Recorder owns the tape being
// built; every traced operation is a Recorder method:
//
//	rec := autodiff.NewRecorder()
//	x := rec.Independent([]float64{0.5, 0.2})
//	z := rec.Sin(rec.Mul(x[0], x[1]))
//	f, err := rec.Stop(z)
//
// The resulting Fun replays the tape:
//   - Forward: Taylor coefficients, one order at a time
//   - Reverse: adjoints of a weighted sum of outputs
//   - ForSparseJac, RevSparseJac, RevSparseHes: dependency patterns
//
// A Fun is not safe for concurrent use. Independent evaluations run on
// private Recorder and Fun values per goroutine.
package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/adtape/internal/tape"
)

// Var is a scalar seen by the recorder. A Var without a recorder is a
// parameter: a constant that never becomes a tape row.
type Var struct {
	val float64
	rec *Recorder
	row int
}

// Const returns a parameter with value v.
func Const(v float64) Var {
	return Var{val: v}
}

// Value returns the value computed during recording.
func (x Var) Value() float64 { return x.val }

// IsParameter reports whether x is a constant rather than a tape row.
func (x Var) IsParameter() bool { return x.rec == nil }

// Row returns the tape row of x, or -1 for a parameter.
func (x Var) Row() int {
	if x.rec == nil {
		return -1
	}
	return x.row
}

// String implements fmt.Stringer.
func (x Var) String() string {
	if x.rec == nil {
		return fmt.Sprintf("par(%g)", x.val)
	}
	return fmt.Sprintf("var[%d](%g)", x.row, x.val)
}

// Recorder builds one tape. The first misuse is kept and returned by Stop;
// later operations keep computing values but record nothing.
type Recorder struct {
	b        *tape.Builder
	err      error
	stopped  bool
	recorded bool // an operator other than Inv has been appended
}

// NewRecorder starts a recording pass.
func NewRecorder() *Recorder {
	return &Recorder{b: tape.NewBuilder()}
}

// Err returns the first recording error, if any.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// live reports whether recording can continue with operands xs.
func (r *Recorder) live(xs ...Var) bool {
	if r.stopped {
		r.fail(ErrStopped)
	}
	for _, x := range xs {
		if x.rec != nil && x.rec != r {
			r.fail(ErrRecorder)
		}
	}
	return r.err == nil
}

// Independent declares the domain variables with their recording values.
// It must be called before any other operation; it may be called more
// than once to append more independents.
func (r *Recorder) Independent(x []float64) []Var {
	out := make([]Var, len(x))
	for i, v := range x {
		out[i] = Const(v)
	}
	if !r.live() {
		return out
	}
	if r.recorded {
		r.fail(ErrOrdering)
		return out
	}
	for i, v := range x {
		out[i] = Var{val: v, rec: r, row: r.b.PutInv()}
	}
	return out
}

// put appends an operator and returns its traced result.
func (r *Recorder) put(val float64, code tape.OpCode, args ...int) Var {
	r.recorded = true
	return Var{val: val, rec: r, row: r.b.PutOp(code, args...)}
}

func (r *Recorder) par(v float64) int {
	return r.b.PutPar(v)
}

// binary records z = x op y using the vv, pv or vp opcode depending on
// which operands are traced. Two parameters fold to a parameter.
func (r *Recorder) binary(vv, pv, vp tape.OpCode, x, y Var, z float64) Var {
	if !r.live(x, y) {
		return Const(z)
	}
	switch {
	case x.rec != nil && y.rec != nil:
		return r.put(z, vv, x.row, y.row)
	case y.rec != nil:
		return r.put(z, pv, r.par(x.val), y.row)
	case x.rec != nil:
		return r.put(z, vp, x.row, r.par(y.val))
	}
	return Const(z)
}

func (r *Recorder) unary(code tape.OpCode, x Var, z float64) Var {
	if !r.live(x) || x.rec == nil {
		return Const(z)
	}
	return r.put(z, code, x.row)
}

// Add returns x + y.
func (r *Recorder) Add(x, y Var) Var {
	return r.binary(tape.Addvv, tape.Addpv, tape.Addvp, x, y, x.val+y.val)
}

// Sub returns x - y.
func (r *Recorder) Sub(x, y Var) Var {
	return r.binary(tape.Subvv, tape.Subpv, tape.Subvp, x, y, x.val-y.val)
}

// Mul returns x * y.
func (r *Recorder) Mul(x, y Var) Var {
	return r.binary(tape.Mulvv, tape.Mulpv, tape.Mulvp, x, y, x.val*y.val)
}

// Div returns x / y.
func (r *Recorder) Div(x, y Var) Var {
	return r.binary(tape.Divvv, tape.Divpv, tape.Divvp, x, y, x.val/y.val)
}

// Pow returns x raised to y, recorded as exp(log(x) * y).
func (r *Recorder) Pow(x, y Var) Var {
	return r.binary(tape.Powvv, tape.Powpv, tape.Powvp, x, y, math.Pow(x.val, y.val))
}

// Neg returns -x.
func (r *Recorder) Neg(x Var) Var { return r.unary(tape.Neg, x, -x.val) }

// Abs returns |x|.
func (r *Recorder) Abs(x Var) Var { return r.unary(tape.Abs, x, math.Abs(x.val)) }

// Exp returns e**x.
func (r *Recorder) Exp(x Var) Var { return r.unary(tape.Exp, x, math.Exp(x.val)) }

// Log returns the natural logarithm of x.
func (r *Recorder) Log(x Var) Var { return r.unary(tape.Log, x, math.Log(x.val)) }

// Sqrt returns the square root of x.
func (r *Recorder) Sqrt(x Var) Var { return r.unary(tape.Sqrt, x, math.Sqrt(x.val)) }

// Sin returns the sine of x.
func (r *Recorder) Sin(x Var) Var { return r.unary(tape.Sin, x, math.Sin(x.val)) }

// Cos returns the cosine of x.
func (r *Recorder) Cos(x Var) Var { return r.unary(tape.Cos, x, math.Cos(x.val)) }

// Atan returns the arctangent of x.
func (r *Recorder) Atan(x Var) Var { return r.unary(tape.Atan, x, math.Atan(x.val)) }

// Lt reports x < y and records the comparison.
func (r *Recorder) Lt(x, y Var) bool { return r.compare(tape.CompareLt, x, y) }

// Le reports x <= y and records the comparison.
func (r *Recorder) Le(x, y Var) bool { return r.compare(tape.CompareLe, x, y) }

// Gt reports x > y and records the comparison.
func (r *Recorder) Gt(x, y Var) bool { return r.compare(tape.CompareGt, x, y) }

// Ge reports x >= y and records the comparison.
func (r *Recorder) Ge(x, y Var) bool { return r.compare(tape.CompareGe, x, y) }

// Eq reports x == y and records the comparison.
func (r *Recorder) Eq(x, y Var) bool { return r.compare(tape.CompareEq, x, y) }

// Ne reports x != y and records the comparison.
func (r *Recorder) Ne(x, y Var) bool { return r.compare(tape.CompareNe, x, y) }

func (r *Recorder) compare(cop tape.CompareOp, x, y Var) bool {
	res := cop.Eval(x.val, y.val)
	if !r.live(x, y) || (x.rec == nil && y.rec == nil) {
		return res
	}
	flags := 0
	if res {
		flags |= tape.CompareResult
	}
	left, right := r.operand(x), r.operand(y)
	if x.rec != nil {
		flags |= tape.CompareLeftVar
	}
	if y.rec != nil {
		flags |= tape.CompareRightVar
	}
	r.recorded = true
	r.b.PutOp(tape.Com, int(cop), flags, left, right)
	return res
}

// operand returns the row of a traced value or the pool index of a parameter.
func (r *Recorder) operand(x Var) int {
	if x.rec != nil {
		return x.row
	}
	return r.par(x.val)
}

// Stop ends recording with y as the dependent variables and returns the
// function object that owns the tape.
func (r *Recorder) Stop(y ...Var) (*Fun, error) {
	if !r.live(y...) {
		return nil, r.err
	}
	r.stopped = true
	dep := make([]int, len(y))
	depPar := make([]bool, len(y))
	for i, v := range y {
		if v.rec == nil {
			dep[i] = r.par(v.val)
			depPar[i] = true
		} else {
			dep[i] = v.row
		}
	}
	t, err := r.b.Finish(dep, depPar)
	if err != nil {
		return nil, fmt.Errorf("autodiff: finish tape: %w", err)
	}
	return New(t)
}
