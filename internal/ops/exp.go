package ops

import "math"

// Exp: z = exp(x).
//
// From z' = z x':
//
//	z_j = (1/j) Σ_{k=1..j} k x_k z_{j-k}

// Forward0Exp computes z = exp(x).
func Forward0Exp(z, x []float64) {
	z[0] = math.Exp(x[0])
}

// ForwardExp computes the order-j coefficient of z = exp(x), j ≥ 1.
func ForwardExp(j int, z, x []float64) {
	var s float64
	for k := 1; k <= j; k++ {
		s += float64(k) * x[k] * z[j-k]
	}
	z[j] = s / float64(j)
}

// ReverseExp propagates partials of z = exp(x).
func ReverseExp(d int, z, x, px, pz []float64) {
	for j := d; j > 0; j-- {
		pz[j] /= float64(j)
		for k := 1; k <= j; k++ {
			px[k] += pz[j] * float64(k) * z[j-k]
			pz[j-k] += pz[j] * float64(k) * x[k]
		}
	}
	px[0] += pz[0] * z[0]
}
