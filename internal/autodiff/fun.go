package autodiff

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/born-ml/adtape/internal/config"
	"github.com/born-ml/adtape/internal/ops"
	"github.com/born-ml/adtape/internal/sparse"
	"github.com/born-ml/adtape/internal/sweep"
	"github.com/born-ml/adtape/internal/tape"
)

var log = commonlog.GetLogger("adtape.autodiff")

// Fun owns a finished tape and the buffers derived from it.
//
// Coefficient and sparsity buffers are allocated on first use and grow on
// demand; they never shrink. A Fun must be used by one goroutine at a time.
type Fun struct {
	t *tape.Tape

	taylor  ops.Matrix // NumVar × stored columns
	partial ops.Matrix // scratch for Reverse
	order   int        // number of valid Taylor orders
	vec     *sweep.VecState

	forJac *sparse.Pattern // per-row pattern from the last ForSparseJac

	compare       config.Compare
	compareChange int
}

// New returns a function object for t. The tape is validated first.
func New(t *tape.Tape) (*Fun, error) {
	if t == nil {
		return nil, errors.New("autodiff: nil tape")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Fun{
		t:       t,
		vec:     sweep.NewVecState(t),
		compare: config.Default().Compare,
	}, nil
}

// Configure sets the comparison-change policy.
func (f *Fun) Configure(c config.Compare) {
	f.compare = c
}

// Size returns the number of tape rows.
func (f *Fun) Size() int { return f.t.NumVar }

// Domain returns the number of independent variables.
func (f *Fun) Domain() int { return len(f.t.Independent) }

// Range returns the number of dependent variables.
func (f *Fun) Range() int { return len(f.t.Dependent) }

// Order returns the number of Taylor orders currently stored.
func (f *Fun) Order() int { return f.order }

// Tape returns the recorded tape. It must not be modified.
func (f *Fun) Tape() *tape.Tape { return f.t }

// CompareChange returns the number of recorded comparisons whose result
// differed during the last order-0 Forward. It stays 0 when comparison
// checking is disabled.
func (f *Fun) CompareChange() int { return f.compareChange }

// Parameter reports whether output i is a constant.
func (f *Fun) Parameter(i int) (bool, error) {
	if i < 0 || i >= f.Range() {
		return false, fmt.Errorf("%w: output %d, range %d", ErrIndex, i, f.Range())
	}
	return f.t.DependentPar[i], nil
}

// Memory returns the approximate number of bytes held by the tape and
// the derived buffers.
func (f *Fun) Memory() int {
	n := f.t.Memory() + 8*(len(f.taylor.Data)+len(f.partial.Data))
	n += 8 * (len(f.vec.Combined) + len(f.vec.Load))
	if f.forJac != nil {
		n += f.forJac.Memory()
	}
	return n
}

// Forward computes the order-p Taylor coefficients of the outputs.
//
// For p = 0, u holds the independent values and every comparison is
// checked again. For p ≥ 1, u is the order-p coefficient of the
// independents and orders 0..p-1 must be stored. Requesting p below the
// stored orders recomputes order p and discards the higher ones.
func (f *Fun) Forward(p int, u []float64) ([]float64, error) {
	if p < 0 || p > f.order {
		return nil, fmt.Errorf("%w: order %d requested, %d stored", ErrOrderSkipped, p, f.order)
	}
	if len(u) != f.Domain() {
		return nil, fmt.Errorf("%w: got %d values for domain %d", ErrDimension, len(u), f.Domain())
	}
	f.growTaylor(p + 1)
	for j, row := range f.t.Independent {
		f.taylor.Row(row)[p] = u[j]
	}

	if p == 0 {
		f.order = 0
		if err := sweep.Forward0(f.t, f.taylor, f.vec); err != nil {
			return nil, fmt.Errorf("autodiff: forward order 0: %w", err)
		}
		f.order = 1
		if err := f.checkCompare(); err != nil {
			return nil, err
		}
	} else {
		sweep.Forward(f.t, p, f.taylor, f.vec)
		f.order = p + 1
	}

	y := make([]float64, f.Range())
	for i, addr := range f.t.Dependent {
		switch {
		case !f.t.DependentPar[i]:
			y[i] = f.taylor.Row(addr)[p]
		case p == 0:
			y[i] = f.t.Par[addr]
		}
	}
	return y, nil
}

func (f *Fun) checkCompare() error {
	if !f.compare.Check {
		return nil
	}
	f.compareChange = sweep.CompareChange(f.t, f.taylor)
	if f.compareChange == 0 {
		return nil
	}
	switch f.compare.Policy {
	case config.PolicyWarn:
		log.Warningf("%d recorded comparisons changed; the tape may not represent the function at this point", f.compareChange)
	case config.PolicyError:
		return fmt.Errorf("%w: %d", ErrComparisonChanged, f.compareChange)
	}
	return nil
}

func (f *Fun) growTaylor(cols int) {
	if cols <= f.taylor.Cols && f.taylor.Rows() == f.t.NumVar {
		return
	}
	log.Debugf("growing taylor buffer to %d x %d", f.t.NumVar, cols)
	f.taylor = f.taylor.Grow(f.t.NumVar, cols)
}

// Reverse returns the partials of w · Y^(p-1), the weighted order p-1
// output coefficients, with respect to every input coefficient of order
// 0..p-1. Element j*p+k is the partial with respect to order k of input j.
// Forward must have stored at least p orders.
func (f *Fun) Reverse(p int, w []float64) ([]float64, error) {
	if p < 1 || p > f.order {
		return nil, fmt.Errorf("%w: order %d requested, %d stored", ErrNotComputed, p, f.order)
	}
	if len(w) != f.Range() {
		return nil, fmt.Errorf("%w: got %d weights for range %d", ErrDimension, len(w), f.Range())
	}
	if f.partial.Cols < p || f.partial.Rows() != f.t.NumVar {
		log.Debugf("growing partial buffer to %d x %d", f.t.NumVar, p)
		f.partial = f.partial.Grow(f.t.NumVar, p)
	}
	f.partial.Clear(p)
	for i, addr := range f.t.Dependent {
		if !f.t.DependentPar[i] {
			f.partial.Row(addr)[p-1] += w[i]
		}
	}
	sweep.Reverse(f.t, p-1, f.taylor, f.partial, f.vec)

	dw := make([]float64, f.Domain()*p)
	for j, row := range f.t.Independent {
		copy(dw[j*p:(j+1)*p], f.partial.Row(row)[:p])
	}
	return dw, nil
}
