package ops

import "math"

// Sin and Cos are computed together: each needs the other for its
// derivative, so the tape keeps both rows (one as the auxiliary result).
//
//	s_j =  (1/j) Σ_{k=1..j} k x_k c_{j-k}
//	c_j = -(1/j) Σ_{k=1..j} k x_k s_{j-k}

// Forward0SinCos computes s = sin(x) and c = cos(x).
func Forward0SinCos(s, c, x []float64) {
	s[0], c[0] = math.Sincos(x[0])
}

// ForwardSinCos computes the order-j coefficients of sin(x) and cos(x), j ≥ 1.
func ForwardSinCos(j int, s, c, x []float64) {
	var ss, cc float64
	for k := 1; k <= j; k++ {
		ss += float64(k) * x[k] * c[j-k]
		cc -= float64(k) * x[k] * s[j-k]
	}
	s[j] = ss / float64(j)
	c[j] = cc / float64(j)
}

// ReverseSinCos propagates the partials of both sin(x) and cos(x) to x.
func ReverseSinCos(d int, s, c, x, px, ps, pc []float64) {
	for j := d; j > 0; j-- {
		ps[j] /= float64(j)
		pc[j] /= float64(j)
		for k := 1; k <= j; k++ {
			fk := float64(k)
			px[k] += ps[j] * fk * c[j-k]
			px[k] -= pc[j] * fk * s[j-k]
			ps[j-k] -= pc[j] * fk * x[k]
			pc[j-k] += ps[j] * fk * x[k]
		}
	}
	px[0] += ps[0] * c[0]
	px[0] -= pc[0] * s[0]
}
