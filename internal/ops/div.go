package ops

// Div: z = x / y.
//
// From z * y = x:
//
//	z_j = (x_j - Σ_{k=1..j} z_{j-k} y_k) / y_0
//
// The reverse rule walks orders downward and folds the partial of z_j into
// the lower-order partials of z, which is why pz is scratch afterwards.

// Forward0Divvv computes z = x / y.
func Forward0Divvv(z, x, y []float64) {
	z[0] = x[0] / y[0]
}

// ForwardDivvv computes the order-j coefficient of z = x / y.
func ForwardDivvv(j int, z, x, y []float64) {
	s := x[j]
	for k := 1; k <= j; k++ {
		s -= z[j-k] * y[k]
	}
	z[j] = s / y[0]
}

// ReverseDivvv propagates partials of z = x / y.
func ReverseDivvv(d int, z, y, px, py, pz []float64) {
	for j := d; j >= 0; j-- {
		pz[j] /= y[0]
		px[j] += pz[j]
		for k := 1; k <= j; k++ {
			pz[j-k] -= pz[j] * y[k]
			py[k] -= pz[j] * z[j-k]
		}
		py[0] -= pz[j] * z[j]
	}
}

// Forward0Divpv computes z = p / y.
func Forward0Divpv(z []float64, p float64, y []float64) {
	z[0] = p / y[0]
}

// ForwardDivpv computes the order-j coefficient of z = p / y.
func ForwardDivpv(j int, z, y []float64) {
	var s float64
	for k := 1; k <= j; k++ {
		s -= z[j-k] * y[k]
	}
	z[j] = s / y[0]
}

// ReverseDivpv propagates partials of z = p / y.
func ReverseDivpv(d int, z, y, py, pz []float64) {
	for j := d; j >= 0; j-- {
		pz[j] /= y[0]
		for k := 1; k <= j; k++ {
			pz[j-k] -= pz[j] * y[k]
			py[k] -= pz[j] * z[j-k]
		}
		py[0] -= pz[j] * z[j]
	}
}

// Forward0Divvp computes z = x / p.
func Forward0Divvp(z, x []float64, p float64) {
	z[0] = x[0] / p
}

// ForwardDivvp computes the order-j coefficient of z = x / p.
func ForwardDivvp(j int, z, x []float64, p float64) {
	z[j] = x[j] / p
}

// ReverseDivvp propagates partials of z = x / p.
func ReverseDivvp(d int, p float64, px, pz []float64) {
	for k := 0; k <= d; k++ {
		px[k] += pz[k] / p
	}
}
