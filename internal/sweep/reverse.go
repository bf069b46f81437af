package sweep

import (
	"fmt"

	"github.com/born-ml/adtape/internal/ops"
	"github.com/born-ml/adtape/internal/tape"
)

// Reverse accumulates partials for orders 0..d in descending row order.
//
// partial must hold the seeds on the dependent rows and zeros elsewhere;
// on return the independent rows hold the requested adjoints. Orders 0..d
// of taylor must be current, and vec must hold the load resolutions of
// the last Forward0.
func Reverse(t *tape.Tape, d int, taylor, partial ops.Matrix, vec *VecState) {
	if d < 0 || d >= taylor.Cols || d >= partial.Cols {
		panic(fmt.Sprintf("sweep: Reverse: order %d outside stored columns", d))
	}
	par := t.Par
	z := taylor.Row
	p := partial.Row

	for i := len(t.Ops) - 1; i >= 0; i-- {
		op := t.Ops[i]
		a := op.Arg
		r := op.Res
		switch op.Code {
		case tape.Inv:

		case tape.Addvv:
			ops.ReverseAddvv(d, p(a[0]), p(a[1]), p(r))
		case tape.Addpv:
			ops.ReverseAddpv(d, p(a[1]), p(r))
		case tape.Addvp, tape.Subvp:
			// z = x + p and z = x - p pass the partial through unchanged
			ops.ReverseAddpv(d, p(a[0]), p(r))
		case tape.Subvv:
			ops.ReverseSubvv(d, p(a[0]), p(a[1]), p(r))
		case tape.Subpv:
			ops.ReverseSubpv(d, p(a[1]), p(r))
		case tape.Mulvv:
			ops.ReverseMulvv(d, z(a[0]), z(a[1]), p(a[0]), p(a[1]), p(r))
		case tape.Mulpv:
			ops.ReverseMulpv(d, par[a[0]], p(a[1]), p(r))
		case tape.Mulvp:
			ops.ReverseMulpv(d, par[a[1]], p(a[0]), p(r))
		case tape.Divvv:
			ops.ReverseDivvv(d, z(r), z(a[1]), p(a[0]), p(a[1]), p(r))
		case tape.Divpv:
			ops.ReverseDivpv(d, z(r), z(a[1]), p(a[1]), p(r))
		case tape.Divvp:
			ops.ReverseDivvp(d, par[a[1]], p(a[0]), p(r))

		case tape.Neg:
			ops.ReverseNeg(d, p(a[0]), p(r))
		case tape.Abs:
			ops.ReverseAbs(d, z(a[0]), p(a[0]), p(r))
		case tape.Exp:
			ops.ReverseExp(d, z(r), z(a[0]), p(a[0]), p(r))
		case tape.Log:
			ops.ReverseLog(d, z(r), z(a[0]), p(a[0]), p(r))
		case tape.Sqrt:
			ops.ReverseSqrt(d, z(r), p(a[0]), p(r))
		case tape.Sin:
			ops.ReverseSinCos(d, z(r), z(r-1), z(a[0]), p(a[0]), p(r), p(r-1))
		case tape.Cos:
			ops.ReverseSinCos(d, z(r-1), z(r), z(a[0]), p(a[0]), p(r-1), p(r))
		case tape.Atan:
			ops.ReverseAtan(d, z(r), z(r-1), z(a[0]), p(a[0]), p(r), p(r-1))

		case tape.Powvv:
			ops.ReversePowvv(d, z(r-2), z(r-1), z(r), z(a[0]), z(a[1]),
				p(r-2), p(r-1), p(r), p(a[0]), p(a[1]))
		case tape.Powpv:
			ops.ReversePowpv(d, z(r-2), z(r-1), z(r), z(a[1]),
				p(r-2), p(r-1), p(r), p(a[1]))
		case tape.Powvp:
			ops.ReversePowvp(d, z(r-2), z(r-1), z(r), z(a[0]), par[a[1]],
				p(r-2), p(r-1), p(r), p(a[0]))

		case tape.Ldp, tape.Ldv:
			var py []float64
			if y := vec.Load[a[2]]; y >= 0 {
				py = p(y)
			}
			ops.ReverseLoad(d, py, p(r))

		case tape.Stpp, tape.Stpv, tape.Stvp, tape.Stvv, tape.Com:
			// no result rows; loads already routed partials to stored rows

		default:
			panic(fmt.Sprintf("sweep: Reverse: unexpected opcode %s", op.Code))
		}
	}
}
