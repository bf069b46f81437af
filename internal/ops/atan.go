package ops

import "math"

// Atan: z = atan(x) with auxiliary b = 1 + x*x.
//
// From b z' = x':
//
//	b_j = Σ_{k=0..j} x_k x_{j-k}   (plus 1 at order 0)
//	z_j = (x_j - (1/j) Σ_{k=1..j-1} k z_k b_{j-k}) / b_0

// Forward0Atan computes z = atan(x) and b = 1 + x*x.
func Forward0Atan(z, b, x []float64) {
	z[0] = math.Atan(x[0])
	b[0] = 1 + x[0]*x[0]
}

// ForwardAtan computes the order-j coefficients of z and b, j ≥ 1.
func ForwardAtan(j int, z, b, x []float64) {
	var bj float64
	for k := 0; k <= j; k++ {
		bj += x[k] * x[j-k]
	}
	b[j] = bj

	var s float64
	for k := 1; k < j; k++ {
		s += float64(k) * z[k] * b[j-k]
	}
	z[j] = (x[j] - s/float64(j)) / b[0]
}

// ReverseAtan propagates the partials of z and b to x.
func ReverseAtan(d int, z, b, x, px, pz, pb []float64) {
	for j := d; j > 0; j-- {
		// z_j
		pz[j] /= b[0]
		pb[0] -= pz[j] * z[j]
		px[j] += pz[j]
		pz[j] /= float64(j)
		for k := 1; k < j; k++ {
			pb[j-k] -= pz[j] * float64(k) * z[k]
			pz[k] -= pz[j] * float64(k) * b[j-k]
		}
		// b_j
		for k := 0; k <= j; k++ {
			px[k] += 2 * pb[j] * x[j-k]
		}
	}
	px[0] += pz[0] / b[0]
	px[0] += 2 * pb[0] * x[0]
}
