package autodiff_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adtape/internal/autodiff"
)

// mixed exercises every opcode family at least once.
func mixed(r *autodiff.Recorder, x []autodiff.Var) []autodiff.Var {
	c := autodiff.Const
	f0 := r.Add(
		r.Mul(r.Sin(x[0]), r.Cos(x[1])),
		r.Div(r.Atan(x[2]), r.Sqrt(x[0])),
	)
	f1 := r.Sub(
		r.Add(r.Mul(r.Exp(r.Neg(x[1])), r.Log(x[2])), r.Abs(r.Sub(x[0], x[2]))),
		r.Div(c(3), x[1]),
	)
	f2 := r.Add(
		r.Add(r.Pow(x[0], x[2]), r.Pow(c(2), x[1])),
		r.Sub(r.Mul(r.Pow(x[1], c(0.5)), x[2]), r.Sub(x[0], c(1))),
	)
	f3 := r.Mul(r.Sub(c(4), x[2]), r.Add(c(1), r.Div(x[0], c(5))))
	v := r.NewVector([]float64{0, 0, 0})
	v.Set(c(0), x[0])
	v.Set(c(1), r.Mul(x[1], x[2]))
	v.Set(x[2], c(2))
	f4 := r.Mul(v.Get(c(1)), r.Mul(c(3), v.Get(x[0])))
	return []autodiff.Var{f0, f1, f2, f3, f4}
}

// eval evaluates fn at x by recording it.
func eval(t *testing.T, fn func(*autodiff.Recorder, []autodiff.Var) []autodiff.Var, x []float64) []float64 {
	t.Helper()
	r := autodiff.NewRecorder()
	ys := fn(r, r.Independent(x))
	require.NoError(t, r.Err())
	out := make([]float64, len(ys))
	for i, y := range ys {
		out[i] = y.Value()
	}
	return out
}

// numericJacobian computes the m × n Jacobian by central differences.
func numericJacobian(t *testing.T, fn func(*autodiff.Recorder, []autodiff.Var) []autodiff.Var, x []float64, eps float64) []float64 {
	n := len(x)
	m := len(eval(t, fn, x))
	jac := make([]float64, m*n)
	for j := 0; j < n; j++ {
		xp := append([]float64(nil), x...)
		xm := append([]float64(nil), x...)
		xp[j] += eps
		xm[j] -= eps
		fp, fm := eval(t, fn, xp), eval(t, fn, xm)
		for i := 0; i < m; i++ {
			jac[i*n+j] = (fp[i] - fm[i]) / (2 * eps)
		}
	}
	return jac
}

var mixedPoint = []float64{0.7, 1.3, 1.6}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	f := record(t, mixedPoint, mixed)
	want := numericJacobian(t, mixed, mixedPoint, 1e-6)
	n, m := f.Domain(), f.Range()

	_, err := f.Forward(0, mixedPoint)
	require.NoError(t, err)
	for i := 0; i < m; i++ {
		w := make([]float64, m)
		w[i] = 1
		dw, err := f.Reverse(1, w)
		require.NoError(t, err)
		for j := 0; j < n; j++ {
			assert.InDelta(t, want[i*n+j], dw[j], 1e-6, "output %d input %d", i, j)
		}
	}
}

func TestJacobianDrivers(t *testing.T) {
	f := record(t, mixedPoint, mixed)
	want := numericJacobian(t, mixed, mixedPoint, 1e-6)
	n, m := f.Domain(), f.Range()

	// n < m: forward mode
	jac, err := f.Jacobian(mixedPoint)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, jac, 1e-6)

	for j := 0; j < n; j++ {
		col, err := f.ForOne(mixedPoint, j)
		require.NoError(t, err)
		for i := 0; i < m; i++ {
			assert.InDelta(t, want[i*n+j], col[i], 1e-6)
		}
	}
	for i := 0; i < m; i++ {
		row, err := f.RevOne(mixedPoint, i)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want[i*n:(i+1)*n], row, 1e-6)
	}

	// n > m: reverse mode
	sum := func(r *autodiff.Recorder, x []autodiff.Var) []autodiff.Var {
		ys := mixed(r, x)
		s := ys[0]
		for _, y := range ys[1:] {
			s = r.Add(s, y)
		}
		return []autodiff.Var{s, r.Mul(x[0], x[1])}
	}
	g := record(t, mixedPoint, sum)
	jac, err = g.Jacobian(mixedPoint)
	require.NoError(t, err)
	assert.InDeltaSlice(t, numericJacobian(t, sum, mixedPoint, 1e-6), jac, 1e-6)

	_, err = f.ForOne(mixedPoint, n)
	require.ErrorIs(t, err, autodiff.ErrIndex)
	_, err = f.RevOne(mixedPoint, -1)
	require.ErrorIs(t, err, autodiff.ErrIndex)
}

func TestHessianMatchesFiniteDifference(t *testing.T) {
	f := record(t, mixedPoint, mixed)
	n := f.Domain()
	const eps = 1e-5

	for i := 0; i < f.Range(); i++ {
		hes, err := f.Hessian(mixedPoint, i)
		require.NoError(t, err)

		for j := 0; j < n; j++ {
			xp := append([]float64(nil), mixedPoint...)
			xm := append([]float64(nil), mixedPoint...)
			xp[j] += eps
			xm[j] -= eps
			gp, err := f.RevOne(xp, i)
			require.NoError(t, err)
			gm, err := f.RevOne(xm, i)
			require.NoError(t, err)
			for k := 0; k < n; k++ {
				fd := (gp[k] - gm[k]) / (2 * eps)
				assert.InDelta(t, fd, hes[k*n+j], 1e-5, "output %d entry (%d, %d)", i, k, j)
			}
		}
	}

	_, err := f.Hessian(mixedPoint, f.Range())
	require.ErrorIs(t, err, autodiff.ErrIndex)
}

func TestSecondOrderDriversMatchHessian(t *testing.T) {
	f := record(t, mixedPoint, mixed)
	n, m := f.Domain(), f.Range()
	hes := make([][]float64, m)
	for i := range hes {
		var err error
		hes[i], err = f.Hessian(mixedPoint, i)
		require.NoError(t, err)
	}

	j := []int{0, 1, 2, 0, 2}
	k := []int{0, 1, 2, 1, 0}
	p := len(j)
	ddy, err := f.ForTwo(mixedPoint, j, k)
	require.NoError(t, err)
	require.Len(t, ddy, m*p)
	for i := 0; i < m; i++ {
		for l := range j {
			assert.InDelta(t, hes[i][j[l]*n+k[l]], ddy[i*p+l], 1e-9, "ForTwo output %d pair (%d, %d)", i, j[l], k[l])
		}
	}

	outs := []int{0, 2, 4, 1}
	ins := []int{1, 0, 2, 2}
	p = len(outs)
	ddw, err := f.RevTwo(mixedPoint, outs, ins)
	require.NoError(t, err)
	require.Len(t, ddw, n*p)
	for r := 0; r < n; r++ {
		for l := range outs {
			assert.InDelta(t, hes[outs[l]][r*n+ins[l]], ddw[r*p+l], 1e-9, "RevTwo output %d pair (%d, %d)", outs[l], r, ins[l])
		}
	}

	_, err = f.ForTwo(mixedPoint, []int{0}, []int{0, 1})
	require.ErrorIs(t, err, autodiff.ErrDimension)
	_, err = f.ForTwo(mixedPoint, []int{n}, []int{0})
	require.ErrorIs(t, err, autodiff.ErrIndex)
	_, err = f.RevTwo(mixedPoint, []int{m}, []int{0})
	require.ErrorIs(t, err, autodiff.ErrIndex)
}

func TestHessianOfProduct(t *testing.T) {
	f := record(t, []float64{2, 3}, func(r *autodiff.Recorder, x []autodiff.Var) []autodiff.Var {
		return []autodiff.Var{r.Add(r.Mul(x[0], x[1]), r.Pow(x[0], autodiff.Const(3)))}
	})
	hes, err := f.Hessian([]float64{2, 3}, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{12, 1, 1, 0}, hes, 1e-12)
}

func TestSparsityCoversNonzeros(t *testing.T) {
	f := record(t, mixedPoint, mixed)
	n, m := f.Domain(), f.Range()

	identity := func(k int) []bool {
		b := make([]bool, k*k)
		for i := 0; i < k; i++ {
			b[i*k+i] = true
		}
		return b
	}
	forPat, err := f.ForSparseJac(n, identity(n))
	require.NoError(t, err)
	revPat, err := f.RevSparseJac(m, identity(m))
	require.NoError(t, err)
	assert.Equal(t, forPat, revPat, "forward and reverse patterns agree")

	for _, x := range [][]float64{mixedPoint, {1.1, 0.4, 0.2}, {2.5, 1.9, 1.2}} {
		jac := numericJacobian(t, mixed, x, 1e-6)
		for k, v := range jac {
			if math.Abs(v) > 1e-8 {
				assert.True(t, forPat[k], "jacobian entry %d nonzero at %v", k, x)
			}
		}
	}

	for i := 0; i < m; i++ {
		s := make([]bool, m)
		s[i] = true
		hesPat, err := f.RevSparseHes(n, s)
		require.NoError(t, err)
		hes, err := f.Hessian(mixedPoint, i)
		require.NoError(t, err)
		for k, v := range hes {
			if math.Abs(v) > 1e-10 {
				assert.True(t, hesPat[k], "hessian %d entry %d nonzero", i, k)
			}
		}
	}
}

func TestSparsityExact(t *testing.T) {
	f := record(t, []float64{1, 2, 3}, func(r *autodiff.Recorder, x []autodiff.Var) []autodiff.Var {
		return []autodiff.Var{r.Mul(x[0], x[1]), r.Exp(x[2]), autodiff.Const(1)}
	})
	r := []bool{
		true, false, false,
		false, true, false,
		false, false, true,
	}
	jac, err := f.ForSparseJac(3, r)
	require.NoError(t, err)
	assert.Equal(t, []bool{
		true, true, false,
		false, false, true,
		false, false, false,
	}, jac)

	hes, err := f.RevSparseHes(3, []bool{true, true, true})
	require.NoError(t, err)
	assert.Equal(t, []bool{
		false, true, false,
		true, false, false,
		false, false, true,
	}, hes)

	_, err = f.RevSparseHes(2, []bool{true, true, true})
	require.ErrorIs(t, err, autodiff.ErrNoForJac)
}
