package ops

import "math"

// Abs: z = |x|.
//
// The derivative is taken as sign(x_0), with sign(0) = 0, so every order is
// a scaled copy of the argument:
//
//	z_j = sign(x_0) x_j

// Forward0Abs computes z = |x|.
func Forward0Abs(z, x []float64) {
	z[0] = math.Abs(x[0])
}

// ForwardAbs computes the order-j coefficient of z = |x|.
func ForwardAbs(j int, z, x []float64) {
	z[j] = sign(x[0]) * x[j]
}

// ReverseAbs propagates partials of z = |x|.
func ReverseAbs(d int, x, px, pz []float64) {
	s := sign(x[0])
	for k := 0; k <= d; k++ {
		px[k] += s * pz[k]
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
