package ops

// Forward0Neg computes z = -x.
func Forward0Neg(z, x []float64) {
	z[0] = -x[0]
}

// ForwardNeg computes the order-j coefficient of z = -x.
func ForwardNeg(j int, z, x []float64) {
	z[j] = -x[j]
}

// ReverseNeg propagates partials of z = -x.
func ReverseNeg(d int, px, pz []float64) {
	for k := 0; k <= d; k++ {
		px[k] -= pz[k]
	}
}
