package ops

import "math"

// Log: z = log(x).
//
// From x z' = x':
//
//	z_j = (x_j - (1/j) Σ_{k=1..j-1} k z_k x_{j-k}) / x_0

// Forward0Log computes z = log(x).
func Forward0Log(z, x []float64) {
	z[0] = math.Log(x[0])
}

// ForwardLog computes the order-j coefficient of z = log(x), j ≥ 1.
func ForwardLog(j int, z, x []float64) {
	var s float64
	for k := 1; k < j; k++ {
		s += float64(k) * z[k] * x[j-k]
	}
	z[j] = (x[j] - s/float64(j)) / x[0]
}

// ReverseLog propagates partials of z = log(x).
func ReverseLog(d int, z, x, px, pz []float64) {
	for j := d; j > 0; j-- {
		pz[j] /= x[0]
		px[0] -= pz[j] * z[j]
		px[j] += pz[j]
		pz[j] /= float64(j)
		for k := 1; k < j; k++ {
			pz[k] -= pz[j] * float64(k) * x[j-k]
			px[j-k] -= pz[j] * float64(k) * z[k]
		}
	}
	px[0] += pz[0] / x[0]
}
