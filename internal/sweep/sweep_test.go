package sweep

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adtape/internal/ops"
	"github.com/born-ml/adtape/internal/sparse"
	"github.com/born-ml/adtape/internal/tape"
)

// sinOfProduct records z = sin(x0 * x1).
func sinOfProduct(t *testing.T) *tape.Tape {
	b := tape.NewBuilder()
	x0 := b.PutInv()
	x1 := b.PutInv()
	m := b.PutOp(tape.Mulvv, x0, x1)
	z := b.PutOp(tape.Sin, m)
	tp, err := b.Finish([]int{z}, []bool{false})
	require.NoError(t, err)
	return tp
}

func setInputs(tp *tape.Tape, taylor ops.Matrix, j int, u []float64) {
	for k, row := range tp.Independent {
		taylor.Row(row)[j] = u[k]
	}
}

func TestForwardReverse(t *testing.T) {
	tp := sinOfProduct(t)
	taylor := ops.NewMatrix(tp.NumVar, 2)
	vec := NewVecState(tp)

	setInputs(tp, taylor, 0, []float64{0.5, 0.2})
	require.NoError(t, Forward0(tp, taylor, vec))
	z := tp.Dependent[0]
	assert.InDelta(t, math.Sin(0.1), taylor.Row(z)[0], 1e-15)

	// First order in direction e0: d/dx0 sin(x0 x1) = cos(0.1) * 0.2.
	setInputs(tp, taylor, 1, []float64{1, 0})
	Forward(tp, 1, taylor, vec)
	assert.InDelta(t, math.Cos(0.1)*0.2, taylor.Row(z)[1], 1e-15)

	partial := ops.NewMatrix(tp.NumVar, 1)
	partial.Row(z)[0] = 1
	Reverse(tp, 0, taylor, partial, vec)
	assert.InDelta(t, math.Cos(0.1)*0.2, partial.Row(0)[0], 1e-15)
	assert.InDelta(t, math.Cos(0.1)*0.5, partial.Row(1)[0], 1e-15)

	assert.Panics(t, func() { Forward(tp, 2, taylor, vec) })
	assert.Panics(t, func() { Reverse(tp, 1, taylor, partial, vec) })
}

// vectorTape records v = [a, b]; y = v[i] for a variable index i.
func vectorTape(t *testing.T) *tape.Tape {
	b := tape.NewBuilder()
	a := b.PutInv()
	bb := b.PutInv()
	i := b.PutInv()
	zero := b.PutPar(0)
	off := b.PutVector([]int{zero, zero})
	b.PutOp(tape.Stpv, off, 0, a)
	b.PutOp(tape.Stpv, off, 1, bb)
	y := b.PutLoad(tape.Ldv, off, i)
	w := b.PutOp(tape.Mulvv, y, y)
	tp, err := b.Finish([]int{w}, []bool{false})
	require.NoError(t, err)
	return tp
}

func TestLoadResolvesAtReplay(t *testing.T) {
	tp := vectorTape(t)
	taylor := ops.NewMatrix(tp.NumVar, 1)
	vec := NewVecState(tp)
	w := tp.Dependent[0]

	setInputs(tp, taylor, 0, []float64{3, 5, 1})
	require.NoError(t, Forward0(tp, taylor, vec))
	assert.Equal(t, 25.0, taylor.Row(w)[0])
	assert.Equal(t, []int{1}, vec.Load)

	setInputs(tp, taylor, 0, []float64{3, 5, 0.9})
	require.NoError(t, Forward0(tp, taylor, vec))
	assert.Equal(t, 9.0, taylor.Row(w)[0], "index floors to 0")

	partial := ops.NewMatrix(tp.NumVar, 1)
	partial.Row(w)[0] = 1
	Reverse(tp, 0, taylor, partial, vec)
	assert.Equal(t, []float64{6, 0, 0}, []float64{partial.Row(0)[0], partial.Row(1)[0], partial.Row(2)[0]})
}

func TestLoadIndexError(t *testing.T) {
	tp := vectorTape(t)
	taylor := ops.NewMatrix(tp.NumVar, 1)
	vec := NewVecState(tp)

	for _, idx := range []float64{2, -0.5, math.NaN()} {
		setInputs(tp, taylor, 0, []float64{3, 5, idx})
		err := Forward0(tp, taylor, vec)
		var ierr *IndexError
		require.True(t, errors.As(err, &ierr), "index %v", idx)
		assert.Equal(t, 2, ierr.Len)
		assert.Contains(t, ierr.Error(), "out of range")
	}
}

func TestCompareChange(t *testing.T) {
	b := tape.NewBuilder()
	x := b.PutInv()
	one := b.PutPar(1)
	// recorded with x = 0.5: x < 1 was true
	b.PutOp(tape.Com, int(tape.CompareLt), tape.CompareResult|tape.CompareLeftVar, x, one)
	y := b.PutOp(tape.Exp, x)
	tp, err := b.Finish([]int{y}, []bool{false})
	require.NoError(t, err)

	taylor := ops.NewMatrix(tp.NumVar, 1)
	vec := NewVecState(tp)

	setInputs(tp, taylor, 0, []float64{0.5})
	require.NoError(t, Forward0(tp, taylor, vec))
	assert.Equal(t, 0, CompareChange(tp, taylor))

	setInputs(tp, taylor, 0, []float64{2})
	require.NoError(t, Forward0(tp, taylor, vec))
	assert.Equal(t, 1, CompareChange(tp, taylor))
}

// sparseTape records
//
//	y0 = x0 * x1
//	y1 = exp(x2) + x1
//	y2 = pow(x0, 3)
func sparseTape(t *testing.T) *tape.Tape {
	b := tape.NewBuilder()
	x0 := b.PutInv()
	x1 := b.PutInv()
	x2 := b.PutInv()
	y0 := b.PutOp(tape.Mulvv, x0, x1)
	e := b.PutOp(tape.Exp, x2)
	y1 := b.PutOp(tape.Addvv, e, x1)
	y2 := b.PutOp(tape.Powvp, x0, b.PutPar(3))
	tp, err := b.Finish([]int{y0, y1, y2}, []bool{false, false, false})
	require.NoError(t, err)
	return tp
}

func TestForJac(t *testing.T) {
	tp := sparseTape(t)
	set := sparse.New(tp.NumVar, 3)
	for j, row := range tp.Independent {
		set.Set(row, j)
	}
	ForJac(tp, set)

	got := sparse.New(3, 3)
	for i, row := range tp.Dependent {
		got.UnionFrom(i, set, row)
	}
	want := []bool{
		true, true, false,
		false, true, true,
		true, false, false,
	}
	if diff := cmp.Diff(want, got.Bools()); diff != "" {
		t.Errorf("jacobian pattern mismatch (-want +got):\n%s", diff)
	}
}

func TestRevJac(t *testing.T) {
	tp := sparseTape(t)
	set := sparse.New(tp.NumVar, 3)
	for i, row := range tp.Dependent {
		set.Set(row, i)
	}
	RevJac(tp, set)

	// row j of the independents lists the dependents that use x_j
	assert.True(t, set.Has(0, 0))
	assert.True(t, set.Has(0, 2))
	assert.False(t, set.Has(0, 1))
	assert.True(t, set.Has(1, 0))
	assert.True(t, set.Has(1, 1))
	assert.True(t, set.Has(2, 1))
	assert.False(t, set.Has(2, 0))
}

func TestRevHes(t *testing.T) {
	tp := sparseTape(t)
	forJac := sparse.New(tp.NumVar, 3)
	for j, row := range tp.Independent {
		forJac.Set(row, j)
	}
	ForJac(tp, forJac)

	hesFor := func(sel []bool) []bool {
		revJac := make([]bool, tp.NumVar)
		for i, row := range tp.Dependent {
			revJac[row] = sel[i]
		}
		hes := sparse.New(tp.NumVar, 3)
		RevHes(tp, forJac, revJac, hes)
		out := sparse.New(3, 3)
		for j, row := range tp.Independent {
			out.UnionFrom(j, hes, row)
		}
		return out.Bools()
	}

	// y0 = x0 x1: only the cross terms
	assert.Equal(t, []bool{
		false, true, false,
		true, false, false,
		false, false, false,
	}, hesFor([]bool{true, false, false}))

	// y1 = exp(x2) + x1: only x2 x2
	assert.Equal(t, []bool{
		false, false, false,
		false, false, false,
		false, false, true,
	}, hesFor([]bool{false, true, false}))

	// y2 = x0^3: only x0 x0
	assert.Equal(t, []bool{
		true, false, false,
		false, false, false,
		false, false, false,
	}, hesFor([]bool{false, false, true}))
}

func TestVectorSparsity(t *testing.T) {
	tp := vectorTape(t)
	set := sparse.New(tp.NumVar, 3)
	for j, row := range tp.Independent {
		set.Set(row, j)
	}
	ForJac(tp, set)
	w := tp.Dependent[0]
	// the load may return a or b; the index never contributes
	assert.True(t, set.Has(w, 0))
	assert.True(t, set.Has(w, 1))
	assert.False(t, set.Has(w, 2))

	rev := sparse.New(tp.NumVar, 1)
	rev.Set(w, 0)
	RevJac(tp, rev)
	assert.True(t, rev.Has(0, 0))
	assert.True(t, rev.Has(1, 0))
	assert.False(t, rev.Has(2, 0))
}
