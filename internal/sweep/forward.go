// Package sweep replays a tape.
//
// Every sweep is a single synchronous walk over the operator records:
//   - Forward0 / Forward: Taylor coefficients, ascending row order
//   - Reverse: adjoints, descending row order
//   - ForJac / RevJac / RevHes: bit-packed dependency sets
//   - CompareChange: re-evaluation of recorded comparisons
//
// Dispatch is a switch over the closed opcode set; the per-operator rules
// live in package ops. Buffers are owned by the caller and addressed by
// row, so sweeps never allocate per operator.
package sweep

import (
	"fmt"

	"github.com/born-ml/adtape/internal/ops"
	"github.com/born-ml/adtape/internal/tape"
)

// Forward0 computes the order-0 coefficient of every row. The caller sets
// the independent rows beforehand. vec is reset to the recorded vector
// contents and receives the load resolutions used by later orders.
func Forward0(t *tape.Tape, taylor ops.Matrix, vec *VecState) error {
	vec.Reset(t)
	par := t.Par
	row := taylor.Row

	for i, op := range t.Ops {
		a := op.Arg
		switch op.Code {
		case tape.Inv:
			// set by the caller

		case tape.Addvv:
			ops.Forward0Addvv(row(op.Res), row(a[0]), row(a[1]))
		case tape.Addpv:
			ops.Forward0Addpv(row(op.Res), par[a[0]], row(a[1]))
		case tape.Addvp:
			ops.Forward0Addpv(row(op.Res), par[a[1]], row(a[0]))
		case tape.Subvv:
			ops.Forward0Subvv(row(op.Res), row(a[0]), row(a[1]))
		case tape.Subpv:
			ops.Forward0Subpv(row(op.Res), par[a[0]], row(a[1]))
		case tape.Subvp:
			ops.Forward0Subvp(row(op.Res), row(a[0]), par[a[1]])
		case tape.Mulvv:
			ops.Forward0Mulvv(row(op.Res), row(a[0]), row(a[1]))
		case tape.Mulpv:
			ops.Forward0Mulpv(row(op.Res), par[a[0]], row(a[1]))
		case tape.Mulvp:
			ops.Forward0Mulpv(row(op.Res), par[a[1]], row(a[0]))
		case tape.Divvv:
			ops.Forward0Divvv(row(op.Res), row(a[0]), row(a[1]))
		case tape.Divpv:
			ops.Forward0Divpv(row(op.Res), par[a[0]], row(a[1]))
		case tape.Divvp:
			ops.Forward0Divvp(row(op.Res), row(a[0]), par[a[1]])

		case tape.Neg:
			ops.Forward0Neg(row(op.Res), row(a[0]))
		case tape.Abs:
			ops.Forward0Abs(row(op.Res), row(a[0]))
		case tape.Exp:
			ops.Forward0Exp(row(op.Res), row(a[0]))
		case tape.Log:
			ops.Forward0Log(row(op.Res), row(a[0]))
		case tape.Sqrt:
			ops.Forward0Sqrt(row(op.Res), row(a[0]))
		case tape.Sin:
			ops.Forward0SinCos(row(op.Res), row(op.Res-1), row(a[0]))
		case tape.Cos:
			ops.Forward0SinCos(row(op.Res-1), row(op.Res), row(a[0]))
		case tape.Atan:
			ops.Forward0Atan(row(op.Res), row(op.Res-1), row(a[0]))

		case tape.Powvv:
			ops.Forward0Pow(row(op.Res-2), row(op.Res-1), row(op.Res), row(a[0]), row(a[1]))
		case tape.Powpv:
			ops.Forward0Pow(row(op.Res-2), row(op.Res-1), row(op.Res), par[a[0]:a[0]+1], row(a[1]))
		case tape.Powvp:
			ops.Forward0Pow(row(op.Res-2), row(op.Res-1), row(op.Res), row(a[0]), par[a[1]:a[1]+1])

		case tape.Ldp, tape.Ldv:
			pos, err := vec.element(i, op, taylor)
			if err != nil {
				return err
			}
			if vec.IsVar[pos] {
				y := vec.Combined[pos]
				vec.Load[a[2]] = y
				ops.Forward0LoadVar(row(op.Res), row(y))
			} else {
				vec.Load[a[2]] = -1
				ops.Forward0LoadPar(row(op.Res), par[vec.Combined[pos]])
			}

		case tape.Stpp, tape.Stpv, tape.Stvp, tape.Stvv:
			pos, err := vec.element(i, op, taylor)
			if err != nil {
				return err
			}
			vec.Combined[pos] = a[2]
			vec.IsVar[pos] = op.Code == tape.Stpv || op.Code == tape.Stvv

		case tape.Com:
			// replayed by CompareChange

		default:
			panic(fmt.Sprintf("sweep: Forward0: unexpected opcode %s", op.Code))
		}
	}
	return nil
}

// Forward computes the order-j coefficient of every row, j ≥ 1. Orders
// below j must already be stored, and the independent rows must hold their
// order-j direction.
func Forward(t *tape.Tape, j int, taylor ops.Matrix, vec *VecState) {
	if j < 1 || j >= taylor.Cols {
		panic(fmt.Sprintf("sweep: Forward: order %d outside [1, %d)", j, taylor.Cols))
	}
	par := t.Par
	row := taylor.Row

	for _, op := range t.Ops {
		a := op.Arg
		switch op.Code {
		case tape.Inv:

		case tape.Addvv:
			ops.ForwardAddvv(j, row(op.Res), row(a[0]), row(a[1]))
		case tape.Addpv:
			ops.ForwardAddpv(j, row(op.Res), row(a[1]))
		case tape.Addvp:
			ops.ForwardAddpv(j, row(op.Res), row(a[0]))
		case tape.Subvv:
			ops.ForwardSubvv(j, row(op.Res), row(a[0]), row(a[1]))
		case tape.Subpv:
			ops.ForwardSubpv(j, row(op.Res), row(a[1]))
		case tape.Subvp:
			ops.ForwardSubvp(j, row(op.Res), row(a[0]))
		case tape.Mulvv:
			ops.ForwardMulvv(j, row(op.Res), row(a[0]), row(a[1]))
		case tape.Mulpv:
			ops.ForwardMulpv(j, row(op.Res), par[a[0]], row(a[1]))
		case tape.Mulvp:
			ops.ForwardMulpv(j, row(op.Res), par[a[1]], row(a[0]))
		case tape.Divvv:
			ops.ForwardDivvv(j, row(op.Res), row(a[0]), row(a[1]))
		case tape.Divpv:
			ops.ForwardDivpv(j, row(op.Res), row(a[1]))
		case tape.Divvp:
			ops.ForwardDivvp(j, row(op.Res), row(a[0]), par[a[1]])

		case tape.Neg:
			ops.ForwardNeg(j, row(op.Res), row(a[0]))
		case tape.Abs:
			ops.ForwardAbs(j, row(op.Res), row(a[0]))
		case tape.Exp:
			ops.ForwardExp(j, row(op.Res), row(a[0]))
		case tape.Log:
			ops.ForwardLog(j, row(op.Res), row(a[0]))
		case tape.Sqrt:
			ops.ForwardSqrt(j, row(op.Res), row(a[0]))
		case tape.Sin:
			ops.ForwardSinCos(j, row(op.Res), row(op.Res-1), row(a[0]))
		case tape.Cos:
			ops.ForwardSinCos(j, row(op.Res-1), row(op.Res), row(a[0]))
		case tape.Atan:
			ops.ForwardAtan(j, row(op.Res), row(op.Res-1), row(a[0]))

		case tape.Powvv:
			ops.ForwardPowvv(j, row(op.Res-2), row(op.Res-1), row(op.Res), row(a[0]), row(a[1]))
		case tape.Powpv:
			ops.ForwardPowpv(j, row(op.Res-2), row(op.Res-1), row(op.Res), row(a[1]))
		case tape.Powvp:
			ops.ForwardPowvp(j, row(op.Res-2), row(op.Res-1), row(op.Res), row(a[0]), par[a[1]])

		case tape.Ldp, tape.Ldv:
			var y []float64
			if r := vec.Load[a[2]]; r >= 0 {
				y = row(r)
			}
			ops.ForwardLoad(j, row(op.Res), y)

		case tape.Stpp, tape.Stpv, tape.Stvp, tape.Stvv, tape.Com:
			// no result rows

		default:
			panic(fmt.Sprintf("sweep: Forward: unexpected opcode %s", op.Code))
		}
	}
}

// CompareChange re-evaluates every recorded comparison with the stored
// order-0 coefficients and returns how many now disagree with the result
// seen during recording.
func CompareChange(t *tape.Tape, taylor ops.Matrix) int {
	count := 0
	for _, op := range t.Ops {
		if op.Code != tape.Com {
			continue
		}
		flags := op.Arg[1]
		left := operand(t, taylor, op.Arg[2], flags&tape.CompareLeftVar != 0)
		right := operand(t, taylor, op.Arg[3], flags&tape.CompareRightVar != 0)
		now := tape.CompareOp(op.Arg[0]).Eval(left, right)
		if now != (flags&tape.CompareResult != 0) {
			count++
		}
	}
	return count
}

func operand(t *tape.Tape, taylor ops.Matrix, idx int, isVar bool) float64 {
	if isVar {
		return taylor.Row(idx)[0]
	}
	return t.Par[idx]
}
