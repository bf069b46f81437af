// Package ops implements the numeric contract of every tape operator.
//
// Each operator provides three rules over Taylor coefficient rows:
//   - Forward0: order-0 (value) coefficient of the result from argument values
//   - Forward: order-j coefficient of the result, given orders 0..j of the
//     arguments and 0..j-1 of the result
//   - Reverse: given orders 0..d of arguments and result and the partials of
//     a scalar objective with respect to them, accumulate the argument
//     partials; the result partials are scratch afterwards
//
// Rows are passed as slices so every access is bounds checked. For
// operators with parameter operands the parameter value is passed
// directly; its higher-order coefficients are zero.
//
// Supported operators:
//   - Add, Sub, Mul, Div (vv, pv, vp forms)
//   - Neg, Abs, Exp, Log, Sqrt
//   - Sin, Cos, Atan (primary plus auxiliary result)
//   - Pow (log, multiply, exp stages)
//   - Load (copy of a dynamically resolved row or parameter)
package ops

// Matrix is a row-major coefficient matrix: one row per tape variable,
// one column per Taylor order.
type Matrix struct {
	Cols int
	Data []float64
}

// NewMatrix allocates a rows × cols matrix of zeros.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Cols: cols, Data: make([]float64, rows*cols)}
}

// Row returns the coefficients of variable i. The slice aliases the matrix.
func (m Matrix) Row(i int) []float64 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	if m.Cols == 0 {
		return 0
	}
	return len(m.Data) / m.Cols
}

// Grow returns a matrix with at least cols columns holding the same
// coefficients. The receiver is returned unchanged when it is wide enough.
func (m Matrix) Grow(rows, cols int) Matrix {
	if cols <= m.Cols && m.Rows() == rows {
		return m
	}
	if cols < m.Cols {
		cols = m.Cols
	}
	g := NewMatrix(rows, cols)
	n := min(rows, m.Rows())
	for i := 0; i < n; i++ {
		copy(g.Row(i), m.Row(i))
	}
	return g
}

// Clear zeros the first cols columns of every row.
func (m Matrix) Clear(cols int) {
	if cols >= m.Cols {
		clear(m.Data)
		return
	}
	for i := 0; i < m.Rows(); i++ {
		clear(m.Row(i)[:cols])
	}
}
