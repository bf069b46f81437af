package ops

import "math"

// Sqrt: z = sqrt(x).
//
// From z z = x:
//
//	z_j = (x_j - Σ_{k=1..j-1} z_k z_{j-k}) / (2 z_0)

// Forward0Sqrt computes z = sqrt(x).
func Forward0Sqrt(z, x []float64) {
	z[0] = math.Sqrt(x[0])
}

// ForwardSqrt computes the order-j coefficient of z = sqrt(x), j ≥ 1.
func ForwardSqrt(j int, z, x []float64) {
	s := x[j]
	for k := 1; k < j; k++ {
		s -= z[k] * z[j-k]
	}
	z[j] = s / (2 * z[0])
}

// ReverseSqrt propagates partials of z = sqrt(x).
func ReverseSqrt(d int, z, px, pz []float64) {
	for j := d; j > 0; j-- {
		pz[j] /= z[0]
		pz[0] -= pz[j] * z[j]
		px[j] += pz[j] / 2
		for k := 1; k < j; k++ {
			pz[k] -= pz[j] * z[j-k]
		}
	}
	px[0] += pz[0] / (2 * z[0])
}
