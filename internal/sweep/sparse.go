package sweep

import (
	"fmt"

	"github.com/born-ml/adtape/internal/sparse"
	"github.com/born-ml/adtape/internal/tape"
)

// Indirect vectors are tracked as a whole: a load may return any element,
// so its set is the union of everything stored into the vector so far.
// The index operand never contributes (its derivative is zero).

// ForJac propagates forward Jacobian sparsity. The caller seeds the
// independent rows of set; every other row is overwritten.
func ForJac(t *tape.Tape, set *sparse.Pattern) {
	vecs := vectorIndex(t)
	vecSet := sparse.New(len(vecs), set.Cols())

	for _, op := range t.Ops {
		a := op.Arg
		r := op.Res
		switch op.Code {
		case tape.Inv:

		case tape.Addvv, tape.Subvv, tape.Mulvv, tape.Divvv:
			set.CopyRow(r, a[0])
			set.UnionRow(r, a[1])
		case tape.Addpv, tape.Subpv, tape.Mulpv, tape.Divpv:
			set.CopyRow(r, a[1])
		case tape.Addvp, tape.Subvp, tape.Mulvp, tape.Divvp:
			set.CopyRow(r, a[0])

		case tape.Neg, tape.Abs, tape.Exp, tape.Log, tape.Sqrt:
			set.CopyRow(r, a[0])
		case tape.Sin, tape.Cos, tape.Atan:
			set.CopyRow(r-1, a[0])
			set.CopyRow(r, a[0])

		case tape.Powvv:
			set.CopyRow(r-2, a[0])
			set.CopyRow(r-1, r-2)
			set.UnionRow(r-1, a[1])
			set.CopyRow(r, r-1)
		case tape.Powpv:
			set.ClearRow(r - 2)
			set.CopyRow(r-1, a[1])
			set.CopyRow(r, r-1)
		case tape.Powvp:
			set.CopyRow(r-2, a[0])
			set.CopyRow(r-1, r-2)
			set.CopyRow(r, r-1)

		case tape.Ldp, tape.Ldv:
			set.ClearRow(r)
			set.UnionFrom(r, vecSet, vecs[a[0]])
		case tape.Stpv, tape.Stvv:
			vecSet.UnionFrom(vecs[a[0]], set, a[2])
		case tape.Stpp, tape.Stvp, tape.Com:

		default:
			panic(fmt.Sprintf("sweep: ForJac: unexpected opcode %s", op.Code))
		}
	}
}

// RevJac propagates reverse Jacobian sparsity. The caller clears set and
// seeds the dependent rows; on return the independent rows hold the
// pattern.
func RevJac(t *tape.Tape, set *sparse.Pattern) {
	vecs := vectorIndex(t)
	vecSet := sparse.New(len(vecs), set.Cols())

	for i := len(t.Ops) - 1; i >= 0; i-- {
		op := t.Ops[i]
		a := op.Arg
		r := op.Res
		switch op.Code {
		case tape.Inv:

		case tape.Addvv, tape.Subvv, tape.Mulvv, tape.Divvv:
			set.UnionRow(a[0], r)
			set.UnionRow(a[1], r)
		case tape.Addpv, tape.Subpv, tape.Mulpv, tape.Divpv:
			set.UnionRow(a[1], r)
		case tape.Addvp, tape.Subvp, tape.Mulvp, tape.Divvp:
			set.UnionRow(a[0], r)

		case tape.Neg, tape.Abs, tape.Exp, tape.Log, tape.Sqrt:
			set.UnionRow(a[0], r)
		case tape.Sin, tape.Cos, tape.Atan:
			set.UnionRow(a[0], r)
			set.UnionRow(a[0], r-1)

		case tape.Powvv, tape.Powpv, tape.Powvp:
			set.UnionRow(r-1, r)
			set.UnionRow(r-2, r-1)
			if op.Code != tape.Powvp {
				set.UnionRow(a[1], r-1)
			}
			if op.Code != tape.Powpv {
				set.UnionRow(a[0], r-2)
			}

		case tape.Ldp, tape.Ldv:
			vecSet.UnionFrom(vecs[a[0]], set, r)
		case tape.Stpv, tape.Stvv:
			set.UnionFrom(a[2], vecSet, vecs[a[0]])
		case tape.Stpp, tape.Stvp, tape.Com:

		default:
			panic(fmt.Sprintf("sweep: RevJac: unexpected opcode %s", op.Code))
		}
	}
}

// RevHes propagates reverse Hessian sparsity for one scalar combination
// of the dependents.
//
// forJac holds the forward Jacobian sparsity of every row (from ForJac).
// revJac marks the rows the selected dependents depend on; the caller
// seeds the dependent rows and RevHes extends it backward. hes must be
// cleared by the caller; on return row i of an independent holds the set
// of forward-seed columns that may pair with it in a nonzero second
// derivative.
func RevHes(t *tape.Tape, forJac *sparse.Pattern, revJac []bool, hes *sparse.Pattern) {
	vecs := vectorIndex(t)
	vecHes := sparse.New(len(vecs), hes.Cols())
	vecJac := make([]bool, len(vecs))

	// linear: z depends linearly on x
	linear := func(x, z int) {
		hes.UnionRow(x, z)
		revJac[x] = revJac[x] || revJac[z]
	}
	// nonlinear: z has a nonzero second derivative in x
	nonlinear := func(x, z int) {
		linear(x, z)
		if revJac[z] {
			hes.UnionFrom(x, forJac, x)
		}
	}
	// product: z = x * y
	product := func(x, y, z int) {
		linear(x, z)
		linear(y, z)
		if revJac[z] {
			hes.UnionFrom(x, forJac, y)
			hes.UnionFrom(y, forJac, x)
		}
	}

	for i := len(t.Ops) - 1; i >= 0; i-- {
		op := t.Ops[i]
		a := op.Arg
		r := op.Res
		switch op.Code {
		case tape.Inv:

		case tape.Addvv, tape.Subvv:
			linear(a[0], r)
			linear(a[1], r)
		case tape.Addpv, tape.Subpv, tape.Mulpv:
			linear(a[1], r)
		case tape.Addvp, tape.Subvp, tape.Mulvp, tape.Divvp:
			linear(a[0], r)
		case tape.Mulvv:
			product(a[0], a[1], r)
		case tape.Divvv:
			product(a[0], a[1], r)
			if revJac[r] {
				hes.UnionFrom(a[1], forJac, a[1])
			}
		case tape.Divpv:
			nonlinear(a[1], r)

		case tape.Neg, tape.Abs:
			linear(a[0], r)
		case tape.Exp, tape.Log, tape.Sqrt:
			nonlinear(a[0], r)
		case tape.Sin, tape.Cos, tape.Atan:
			nonlinear(a[0], r)
			nonlinear(a[0], r-1)

		case tape.Powvv:
			nonlinear(r-1, r)
			product(r-2, a[1], r-1)
			nonlinear(a[0], r-2)
		case tape.Powpv:
			nonlinear(r-1, r)
			product(r-2, a[1], r-1)
		case tape.Powvp:
			nonlinear(r-1, r)
			linear(r-2, r-1)
			nonlinear(a[0], r-2)

		case tape.Ldp, tape.Ldv:
			v := vecs[a[0]]
			vecHes.UnionFrom(v, hes, r)
			vecJac[v] = vecJac[v] || revJac[r]
		case tape.Stpv, tape.Stvv:
			v := vecs[a[0]]
			hes.UnionFrom(a[2], vecHes, v)
			revJac[a[2]] = revJac[a[2]] || vecJac[v]
		case tape.Stpp, tape.Stvp, tape.Com:

		default:
			panic(fmt.Sprintf("sweep: RevHes: unexpected opcode %s", op.Code))
		}
	}
}
