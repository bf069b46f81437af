package ops

// Mul: z = x * y.
//
// Forward (Cauchy product):
//
//	z_j = Σ_{k=0..j} x_{j-k} y_k
//
// Reverse:
//
//	∂z_j/∂x_{j-k} = y_k,  ∂z_j/∂y_k = x_{j-k}

// Forward0Mulvv computes z = x * y.
func Forward0Mulvv(z, x, y []float64) {
	z[0] = x[0] * y[0]
}

// ForwardMulvv computes the order-j coefficient of z = x * y.
func ForwardMulvv(j int, z, x, y []float64) {
	var s float64
	for k := 0; k <= j; k++ {
		s += x[j-k] * y[k]
	}
	z[j] = s
}

// ReverseMulvv propagates partials of z = x * y.
func ReverseMulvv(d int, x, y, px, py, pz []float64) {
	for j := d; j >= 0; j-- {
		for k := 0; k <= j; k++ {
			px[j-k] += pz[j] * y[k]
			py[k] += pz[j] * x[j-k]
		}
	}
}

// Forward0Mulpv computes z = p * y.
func Forward0Mulpv(z []float64, p float64, y []float64) {
	z[0] = p * y[0]
}

// ForwardMulpv computes the order-j coefficient of z = p * y.
func ForwardMulpv(j int, z []float64, p float64, y []float64) {
	z[j] = p * y[j]
}

// ReverseMulpv propagates partials of z = p * y (and z = x * p).
func ReverseMulpv(d int, p float64, py, pz []float64) {
	for k := 0; k <= d; k++ {
		py[k] += pz[k] * p
	}
}
