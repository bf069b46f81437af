package ops

// Add and Sub are linear, so every order follows the same rule:
//   - z_j = x_j ± y_j
//   - dz/dx = 1, dz/dy = ±1
//
// A parameter operand contributes only to order 0.

// Forward0Addvv computes z = x + y.
func Forward0Addvv(z, x, y []float64) {
	z[0] = x[0] + y[0]
}

// ForwardAddvv computes the order-j coefficient of z = x + y.
func ForwardAddvv(j int, z, x, y []float64) {
	z[j] = x[j] + y[j]
}

// ReverseAddvv propagates partials of z = x + y.
func ReverseAddvv(d int, px, py, pz []float64) {
	for k := 0; k <= d; k++ {
		px[k] += pz[k]
		py[k] += pz[k]
	}
}

// Forward0Addpv computes z = p + y.
func Forward0Addpv(z []float64, p float64, y []float64) {
	z[0] = p + y[0]
}

// ForwardAddpv computes the order-j coefficient of z = p + y.
func ForwardAddpv(j int, z, y []float64) {
	z[j] = y[j]
}

// ReverseAddpv propagates partials of z = p + y (and z = x + p).
func ReverseAddpv(d int, py, pz []float64) {
	for k := 0; k <= d; k++ {
		py[k] += pz[k]
	}
}

// Forward0Subvv computes z = x - y.
func Forward0Subvv(z, x, y []float64) {
	z[0] = x[0] - y[0]
}

// ForwardSubvv computes the order-j coefficient of z = x - y.
func ForwardSubvv(j int, z, x, y []float64) {
	z[j] = x[j] - y[j]
}

// ReverseSubvv propagates partials of z = x - y.
func ReverseSubvv(d int, px, py, pz []float64) {
	for k := 0; k <= d; k++ {
		px[k] += pz[k]
		py[k] -= pz[k]
	}
}

// Forward0Subpv computes z = p - y.
func Forward0Subpv(z []float64, p float64, y []float64) {
	z[0] = p - y[0]
}

// ForwardSubpv computes the order-j coefficient of z = p - y.
func ForwardSubpv(j int, z, y []float64) {
	z[j] = -y[j]
}

// ReverseSubpv propagates partials of z = p - y.
func ReverseSubpv(d int, py, pz []float64) {
	for k := 0; k <= d; k++ {
		py[k] -= pz[k]
	}
}

// Forward0Subvp computes z = x - p.
func Forward0Subvp(z, x []float64, p float64) {
	z[0] = x[0] - p
}

// ForwardSubvp computes the order-j coefficient of z = x - p.
func ForwardSubvp(j int, z, x []float64) {
	z[j] = x[j]
}
