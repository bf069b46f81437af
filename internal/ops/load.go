package ops

// Load: z = v[i] where the element was resolved at order 0 to either a
// variable row y or a parameter value. Later orders copy the same row, so
// a load behaves like the identity on the resolved variable.

// Forward0LoadVar copies the value of the resolved variable.
func Forward0LoadVar(z, y []float64) {
	z[0] = y[0]
}

// Forward0LoadPar sets z to the resolved parameter value.
func Forward0LoadPar(z []float64, p float64) {
	z[0] = p
}

// ForwardLoad computes the order-j coefficient of a load. y is nil when the
// element was a parameter.
func ForwardLoad(j int, z, y []float64) {
	if y == nil {
		z[j] = 0
		return
	}
	z[j] = y[j]
}

// ReverseLoad propagates partials to the resolved variable. py is nil when
// the element was a parameter.
func ReverseLoad(d int, py, pz []float64) {
	if py == nil {
		return
	}
	for k := 0; k <= d; k++ {
		py[k] += pz[k]
	}
}
