package autodiff

import "fmt"

// Jacobian returns F'(x) as an m × n row-major matrix. It uses forward
// mode when the domain is not larger than the range, reverse mode
// otherwise.
func (f *Fun) Jacobian(x []float64) ([]float64, error) {
	n, m := f.Domain(), f.Range()
	if _, err := f.Forward(0, x); err != nil {
		return nil, err
	}
	jac := make([]float64, m*n)
	if n <= m {
		for j := 0; j < n; j++ {
			col, err := f.Forward(1, unit(n, j))
			if err != nil {
				return nil, err
			}
			for i := 0; i < m; i++ {
				jac[i*n+j] = col[i]
			}
		}
		return jac, nil
	}
	for i := 0; i < m; i++ {
		row, err := f.Reverse(1, unit(m, i))
		if err != nil {
			return nil, err
		}
		copy(jac[i*n:(i+1)*n], row)
	}
	return jac, nil
}

// Hessian returns the n × n Hessian of output i at x, row-major.
// Column j comes from a first-order forward sweep in direction e_j
// followed by a second-order reverse sweep.
func (f *Fun) Hessian(x []float64, i int) ([]float64, error) {
	n, m := f.Domain(), f.Range()
	if i < 0 || i >= m {
		return nil, fmt.Errorf("%w: output %d, range %d", ErrIndex, i, m)
	}
	if _, err := f.Forward(0, x); err != nil {
		return nil, err
	}
	w := unit(m, i)
	hes := make([]float64, n*n)
	for j := 0; j < n; j++ {
		if _, err := f.Forward(1, unit(n, j)); err != nil {
			return nil, err
		}
		dw, err := f.Reverse(2, w)
		if err != nil {
			return nil, err
		}
		for k := 0; k < n; k++ {
			hes[k*n+j] = dw[k*2]
		}
	}
	return hes, nil
}

// ForOne returns the partial of every output with respect to input j at x.
func (f *Fun) ForOne(x []float64, j int) ([]float64, error) {
	n := f.Domain()
	if j < 0 || j >= n {
		return nil, fmt.Errorf("%w: input %d, domain %d", ErrIndex, j, n)
	}
	if _, err := f.Forward(0, x); err != nil {
		return nil, err
	}
	return f.Forward(1, unit(n, j))
}

// RevOne returns the gradient of output i at x.
func (f *Fun) RevOne(x []float64, i int) ([]float64, error) {
	m := f.Range()
	if i < 0 || i >= m {
		return nil, fmt.Errorf("%w: output %d, range %d", ErrIndex, i, m)
	}
	if _, err := f.Forward(0, x); err != nil {
		return nil, err
	}
	return f.Reverse(1, unit(m, i))
}

// ForTwo returns second partials of every output by forward mode. For
// each pair l, element i*len(j)+l is the partial of output i with respect
// to inputs j[l] and k[l].
func (f *Fun) ForTwo(x []float64, j, k []int) ([]float64, error) {
	n, m := f.Domain(), f.Range()
	if len(j) != len(k) {
		return nil, fmt.Errorf("%w: %d first indices, %d second", ErrDimension, len(j), len(k))
	}
	for l := range j {
		if j[l] < 0 || j[l] >= n || k[l] < 0 || k[l] >= n {
			return nil, fmt.Errorf("%w: pair (%d, %d), domain %d", ErrIndex, j[l], k[l], n)
		}
	}
	if _, err := f.Forward(0, x); err != nil {
		return nil, err
	}

	zero := make([]float64, n)
	// second returns the order-2 output coefficients along direction u,
	// which equal u'F''u / 2.
	second := func(u []float64) ([]float64, error) {
		if _, err := f.Forward(1, u); err != nil {
			return nil, err
		}
		return f.Forward(2, zero)
	}
	diag := make(map[int][]float64)
	diagonal := func(a int) ([]float64, error) {
		if d, ok := diag[a]; ok {
			return d, nil
		}
		d, err := second(unit(n, a))
		if err != nil {
			return nil, err
		}
		for i := range d {
			d[i] *= 2
		}
		diag[a] = d
		return d, nil
	}

	p := len(j)
	ddy := make([]float64, m*p)
	for l := range j {
		dj, err := diagonal(j[l])
		if err != nil {
			return nil, err
		}
		if j[l] == k[l] {
			for i := 0; i < m; i++ {
				ddy[i*p+l] = dj[i]
			}
			continue
		}
		dk, err := diagonal(k[l])
		if err != nil {
			return nil, err
		}
		u := unit(n, j[l])
		u[k[l]] = 1
		y2, err := second(u)
		if err != nil {
			return nil, err
		}
		for i := 0; i < m; i++ {
			ddy[i*p+l] = y2[i] - (dj[i]+dk[i])/2
		}
	}
	return ddy, nil
}

// RevTwo returns second partials by reverse mode. For each pair l,
// element r*len(i)+l is the partial of output i[l] with respect to inputs
// r and j[l].
func (f *Fun) RevTwo(x []float64, i, j []int) ([]float64, error) {
	n, m := f.Domain(), f.Range()
	if len(i) != len(j) {
		return nil, fmt.Errorf("%w: %d outputs, %d inputs", ErrDimension, len(i), len(j))
	}
	for l := range i {
		if i[l] < 0 || i[l] >= m || j[l] < 0 || j[l] >= n {
			return nil, fmt.Errorf("%w: output %d input %d, range %d domain %d", ErrIndex, i[l], j[l], m, n)
		}
	}
	if _, err := f.Forward(0, x); err != nil {
		return nil, err
	}

	p := len(i)
	ddw := make([]float64, n*p)
	for l := range i {
		if _, err := f.Forward(1, unit(n, j[l])); err != nil {
			return nil, err
		}
		dw, err := f.Reverse(2, unit(m, i[l]))
		if err != nil {
			return nil, err
		}
		for r := 0; r < n; r++ {
			ddw[r*p+l] = dw[r*2]
		}
	}
	return ddw, nil
}

func unit(n, k int) []float64 {
	e := make([]float64, n)
	e[k] = 1
	return e
}
