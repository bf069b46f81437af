package ops

// Pow: z = x^y is recorded as three chained rows
//
//	z0 = log(x)
//	z1 = z0 * y
//	z2 = exp(z1)
//
// so each stage reuses the Log, Mul and Exp rules. When x is a parameter
// z0 is a constant row (all higher orders zero); when y is a parameter
// z1 is a scaled copy of z0.

// Forward0Pow computes the three stage values. y is the row of y; pass a
// one-element slice holding the parameter value when y is a parameter.
func Forward0Pow(z0, z1, z2, x, y []float64) {
	Forward0Log(z0, x)
	Forward0Mulvv(z1, z0, y)
	Forward0Exp(z2, z1)
}

// ForwardPowvv computes the order-j coefficients for x and y variables.
func ForwardPowvv(j int, z0, z1, z2, x, y []float64) {
	ForwardLog(j, z0, x)
	ForwardMulvv(j, z1, z0, y)
	ForwardExp(j, z2, z1)
}

// ForwardPowpv computes the order-j coefficients for parameter x.
func ForwardPowpv(j int, z0, z1, z2, y []float64) {
	z0[j] = 0
	ForwardMulvv(j, z1, z0, y)
	ForwardExp(j, z2, z1)
}

// ForwardPowvp computes the order-j coefficients for parameter y.
func ForwardPowvp(j int, z0, z1, z2, x []float64, y float64) {
	ForwardLog(j, z0, x)
	ForwardMulpv(j, z1, y, z0)
	ForwardExp(j, z2, z1)
}

// ReversePowvv propagates partials through all three stages.
func ReversePowvv(d int, z0, z1, z2, x, y, pz0, pz1, pz2, px, py []float64) {
	ReverseExp(d, z2, z1, pz1, pz2)
	ReverseMulvv(d, z0, y, pz0, py, pz1)
	ReverseLog(d, z0, x, px, pz0)
}

// ReversePowpv propagates partials for parameter x; the log stage is constant.
func ReversePowpv(d int, z0, z1, z2, y, pz0, pz1, pz2, py []float64) {
	ReverseExp(d, z2, z1, pz1, pz2)
	ReverseMulvv(d, z0, y, pz0, py, pz1)
}

// ReversePowvp propagates partials for parameter y.
func ReversePowvp(d int, z0, z1, z2, x []float64, y float64, pz0, pz1, pz2, px []float64) {
	ReverseExp(d, z2, z1, pz1, pz2)
	ReverseMulpv(d, y, pz0, pz1)
	ReverseLog(d, z0, x, px, pz0)
}
