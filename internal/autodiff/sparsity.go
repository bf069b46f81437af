package autodiff

import (
	"fmt"

	"github.com/born-ml/adtape/internal/sparse"
	"github.com/born-ml/adtape/internal/sweep"
)

// ForSparseJac returns the sparsity pattern of F'(x) R for the n × q
// pattern r (row-major). The result is m × q. The per-row pattern is kept
// for RevSparseHes.
func (f *Fun) ForSparseJac(q int, r []bool) ([]bool, error) {
	n, m := f.Domain(), f.Range()
	if q < 1 || len(r) != n*q {
		return nil, fmt.Errorf("%w: seed has %d entries, want %d x %d", ErrDimension, len(r), n, q)
	}
	set := f.forJac
	if set == nil || set.Cols() != q || set.Rows() != f.t.NumVar {
		log.Debugf("allocating forward sparsity %d x %d", f.t.NumVar, q)
		set = sparse.New(f.t.NumVar, q)
	}
	for j, row := range f.t.Independent {
		set.ClearRow(row)
		for k := 0; k < q; k++ {
			if r[j*q+k] {
				set.Set(row, k)
			}
		}
	}
	sweep.ForJac(f.t, set)
	f.forJac = set

	out := sparse.New(m, q)
	for i, addr := range f.t.Dependent {
		if !f.t.DependentPar[i] {
			out.UnionFrom(i, set, addr)
		}
	}
	return out.Bools(), nil
}

// RevSparseJac returns the sparsity pattern of S F'(x) for the p × m
// pattern s (row-major). The result is p × n.
func (f *Fun) RevSparseJac(p int, s []bool) ([]bool, error) {
	n, m := f.Domain(), f.Range()
	if p < 1 || len(s) != p*m {
		return nil, fmt.Errorf("%w: seed has %d entries, want %d x %d", ErrDimension, len(s), p, m)
	}
	set := sparse.New(f.t.NumVar, p)
	for i, addr := range f.t.Dependent {
		if f.t.DependentPar[i] {
			continue
		}
		for k := 0; k < p; k++ {
			if s[k*m+i] {
				set.Set(addr, k)
			}
		}
	}
	sweep.RevJac(f.t, set)

	out := make([]bool, p*n)
	for j, row := range f.t.Independent {
		for k := 0; k < p; k++ {
			out[k*n+j] = set.Has(row, k)
		}
	}
	return out, nil
}

// RevSparseHes returns the sparsity pattern of the Hessian of s · F times
// the seed given to the last ForSparseJac(q, R): an n × q pattern whose
// entry (j, k) may be nonzero only if it is set. s selects the outputs.
func (f *Fun) RevSparseHes(q int, s []bool) ([]bool, error) {
	if f.forJac == nil || f.forJac.Cols() != q {
		return nil, ErrNoForJac
	}
	n, m := f.Domain(), f.Range()
	if len(s) != m {
		return nil, fmt.Errorf("%w: selector has %d entries, range %d", ErrDimension, len(s), m)
	}
	revJac := make([]bool, f.t.NumVar)
	for i, addr := range f.t.Dependent {
		if s[i] && !f.t.DependentPar[i] {
			revJac[addr] = true
		}
	}
	hes := sparse.New(f.t.NumVar, q)
	sweep.RevHes(f.t, f.forJac, revJac, hes)

	out := sparse.New(n, q)
	for j, row := range f.t.Independent {
		out.UnionFrom(j, hes, row)
	}
	return out.Bools(), nil
}
