package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const order = 3 // highest Taylor order exercised

// unaryRule evaluates orders 0..d of a unary operator and reverses them.
type unaryRule struct {
	name    string
	x0      float64
	forward func(x []float64, d int) []float64 // returns z orders 0..d
	reverse func(x []float64, d int, pz []float64) []float64
}

func runForward(f0 func(z, x []float64), f func(j int, z, x []float64)) func([]float64, int) []float64 {
	return func(x []float64, d int) []float64 {
		z := make([]float64, d+1)
		f0(z, x)
		for j := 1; j <= d; j++ {
			f(j, z, x)
		}
		return z
	}
}

func unaryRules() []unaryRule {
	return []unaryRule{
		{
			name:    "exp",
			x0:      0.3,
			forward: runForward(Forward0Exp, ForwardExp),
			reverse: func(x []float64, d int, pz []float64) []float64 {
				z := runForward(Forward0Exp, ForwardExp)(x, d)
				px := make([]float64, d+1)
				ReverseExp(d, z, x, px, pz)
				return px
			},
		},
		{
			name:    "log",
			x0:      1.7,
			forward: runForward(Forward0Log, ForwardLog),
			reverse: func(x []float64, d int, pz []float64) []float64 {
				z := runForward(Forward0Log, ForwardLog)(x, d)
				px := make([]float64, d+1)
				ReverseLog(d, z, x, px, pz)
				return px
			},
		},
		{
			name:    "sqrt",
			x0:      2.2,
			forward: runForward(Forward0Sqrt, ForwardSqrt),
			reverse: func(x []float64, d int, pz []float64) []float64 {
				z := runForward(Forward0Sqrt, ForwardSqrt)(x, d)
				px := make([]float64, d+1)
				ReverseSqrt(d, z, px, pz)
				return px
			},
		},
		{
			name:    "neg",
			x0:      0.4,
			forward: runForward(Forward0Neg, ForwardNeg),
			reverse: func(x []float64, d int, pz []float64) []float64 {
				px := make([]float64, d+1)
				ReverseNeg(d, px, pz)
				return px
			},
		},
		{
			name:    "abs",
			x0:      -0.8,
			forward: runForward(Forward0Abs, ForwardAbs),
			reverse: func(x []float64, d int, pz []float64) []float64 {
				px := make([]float64, d+1)
				ReverseAbs(d, x, px, pz)
				return px
			},
		},
		{
			name: "sin",
			x0:   0.6,
			forward: func(x []float64, d int) []float64 {
				s, _ := sinCos(x, d)
				return s
			},
			reverse: func(x []float64, d int, pz []float64) []float64 {
				s, c := sinCos(x, d)
				px := make([]float64, d+1)
				ReverseSinCos(d, s, c, x, px, pz, make([]float64, d+1))
				return px
			},
		},
		{
			name: "cos",
			x0:   0.6,
			forward: func(x []float64, d int) []float64 {
				_, c := sinCos(x, d)
				return c
			},
			reverse: func(x []float64, d int, pz []float64) []float64 {
				s, c := sinCos(x, d)
				px := make([]float64, d+1)
				ReverseSinCos(d, s, c, x, px, make([]float64, d+1), pz)
				return px
			},
		},
		{
			name: "atan",
			x0:   0.9,
			forward: func(x []float64, d int) []float64 {
				z, _ := atan(x, d)
				return z
			},
			reverse: func(x []float64, d int, pz []float64) []float64 {
				z, b := atan(x, d)
				px := make([]float64, d+1)
				ReverseAtan(d, z, b, x, px, pz, make([]float64, d+1))
				return px
			},
		},
	}
}

func sinCos(x []float64, d int) ([]float64, []float64) {
	s := make([]float64, d+1)
	c := make([]float64, d+1)
	Forward0SinCos(s, c, x)
	for j := 1; j <= d; j++ {
		ForwardSinCos(j, s, c, x)
	}
	return s, c
}

func atan(x []float64, d int) ([]float64, []float64) {
	z := make([]float64, d+1)
	b := make([]float64, d+1)
	Forward0Atan(z, b, x)
	for j := 1; j <= d; j++ {
		ForwardAtan(j, z, b, x)
	}
	return z, b
}

// TestForwardTaylorSeries checks forward coefficients along x(t) = x0 + t
// against derivatives computed by central differences of the order-0 rule.
func TestForwardTaylorSeries(t *testing.T) {
	for _, r := range unaryRules() {
		t.Run(r.name, func(t *testing.T) {
			x := []float64{r.x0, 1, 0, 0}
			z := r.forward(x, order)

			f := func(v float64) float64 {
				return r.forward([]float64{v, 0, 0, 0}, 0)[0]
			}
			h := 1e-3
			d1 := (f(r.x0+h) - f(r.x0-h)) / (2 * h)
			d2 := (f(r.x0+h) - 2*f(r.x0) + f(r.x0-h)) / (h * h)

			assert.InDelta(t, f(r.x0), z[0], 1e-12)
			assert.InDelta(t, d1, z[1], 1e-5)
			assert.InDelta(t, d2/2, z[2], 1e-4)
		})
	}
}

// TestReverseMatchesForward checks that the reverse rule returns the
// gradient of W(x) = Σ_k w_k z_k(x) with respect to every input order.
func TestReverseMatchesForward(t *testing.T) {
	w := []float64{0.7, -1.3, 0.5, 2.0}
	for _, r := range unaryRules() {
		t.Run(r.name, func(t *testing.T) {
			x := []float64{r.x0, 0.8, -0.4, 0.3}
			pz := append([]float64(nil), w...)
			px := r.reverse(x, order, pz)

			objective := func(x []float64) float64 {
				z := r.forward(x, order)
				var s float64
				for k := range z {
					s += w[k] * z[k]
				}
				return s
			}
			h := 1e-6
			for k := 0; k <= order; k++ {
				xp := append([]float64(nil), x...)
				xm := append([]float64(nil), x...)
				xp[k] += h
				xm[k] -= h
				want := (objective(xp) - objective(xm)) / (2 * h)
				assert.InDelta(t, want, px[k], 1e-5, "order %d", k)
			}
		})
	}
}

func TestBinaryRules(t *testing.T) {
	x := []float64{1.5, 0.2, -0.7, 0.1}
	y := []float64{-2.0, 0.3, 0.4, -0.2}
	w := []float64{1.1, 0.5, -0.9, 0.6}

	type binary struct {
		name    string
		forward func(x, y []float64) []float64
		reverse func(x, y, z, pz []float64) ([]float64, []float64)
	}
	rules := []binary{
		{
			name: "mul",
			forward: func(x, y []float64) []float64 {
				z := make([]float64, order+1)
				Forward0Mulvv(z, x, y)
				for j := 1; j <= order; j++ {
					ForwardMulvv(j, z, x, y)
				}
				return z
			},
			reverse: func(x, y, z, pz []float64) ([]float64, []float64) {
				px, py := make([]float64, order+1), make([]float64, order+1)
				ReverseMulvv(order, x, y, px, py, pz)
				return px, py
			},
		},
		{
			name: "div",
			forward: func(x, y []float64) []float64 {
				z := make([]float64, order+1)
				Forward0Divvv(z, x, y)
				for j := 1; j <= order; j++ {
					ForwardDivvv(j, z, x, y)
				}
				return z
			},
			reverse: func(x, y, z, pz []float64) ([]float64, []float64) {
				px, py := make([]float64, order+1), make([]float64, order+1)
				ReverseDivvv(order, z, y, px, py, pz)
				return px, py
			},
		},
		{
			name: "sub",
			forward: func(x, y []float64) []float64 {
				z := make([]float64, order+1)
				Forward0Subvv(z, x, y)
				for j := 1; j <= order; j++ {
					ForwardSubvv(j, z, x, y)
				}
				return z
			},
			reverse: func(x, y, z, pz []float64) ([]float64, []float64) {
				px, py := make([]float64, order+1), make([]float64, order+1)
				ReverseSubvv(order, px, py, pz)
				return px, py
			},
		},
		{
			name: "pow",
			forward: func(x, y []float64) []float64 {
				z0, z1, z2 := make([]float64, order+1), make([]float64, order+1), make([]float64, order+1)
				Forward0Pow(z0, z1, z2, x, y)
				for j := 1; j <= order; j++ {
					ForwardPowvv(j, z0, z1, z2, x, y)
				}
				return z2
			},
			reverse: func(x, y, _, pz []float64) ([]float64, []float64) {
				z0, z1, z2 := make([]float64, order+1), make([]float64, order+1), make([]float64, order+1)
				Forward0Pow(z0, z1, z2, x, y)
				for j := 1; j <= order; j++ {
					ForwardPowvv(j, z0, z1, z2, x, y)
				}
				px, py := make([]float64, order+1), make([]float64, order+1)
				pz0, pz1 := make([]float64, order+1), make([]float64, order+1)
				ReversePowvv(order, z0, z1, z2, x, y, pz0, pz1, pz, px, py)
				return px, py
			},
		},
	}

	for _, r := range rules {
		t.Run(r.name, func(t *testing.T) {
			xx := append([]float64(nil), x...)
			if r.name == "pow" {
				xx[0] = 1.5 // log needs a positive base
			}
			z := r.forward(xx, y)
			px, py := r.reverse(xx, y, z, append([]float64(nil), w...))

			objective := func(x, y []float64) float64 {
				z := r.forward(x, y)
				var s float64
				for k := range z {
					s += w[k] * z[k]
				}
				return s
			}
			h := 1e-6
			for k := 0; k <= order; k++ {
				xp, xm := append([]float64(nil), xx...), append([]float64(nil), xx...)
				xp[k] += h
				xm[k] -= h
				assert.InDelta(t, (objective(xp, y)-objective(xm, y))/(2*h), px[k], 1e-5, "x order %d", k)

				yp, ym := append([]float64(nil), y...), append([]float64(nil), y...)
				yp[k] += h
				ym[k] -= h
				assert.InDelta(t, (objective(xx, yp)-objective(xx, ym))/(2*h), py[k], 1e-5, "y order %d", k)
			}
		})
	}
}

func TestExpSeries(t *testing.T) {
	// exp(t) = Σ t^k / k!
	z := runForward(Forward0Exp, ForwardExp)([]float64{0, 1, 0, 0}, order)
	assert.InDeltaSlice(t, []float64{1, 1, 0.5, 1.0 / 6}, z, 1e-15)
}

func TestParameterForms(t *testing.T) {
	y := []float64{2, 1, 0}
	z := make([]float64, 3)

	Forward0Divpv(z, 4, y)
	ForwardDivpv(1, z, y)
	ForwardDivpv(2, z, y)
	// 4/(2+t) = 2 - t + t²/2 - ...
	assert.InDeltaSlice(t, []float64{2, -1, 0.5}, z, 1e-15)

	pz := []float64{1, 0, 0}
	py := make([]float64, 3)
	ReverseDivpv(0, z, y, py, pz)
	assert.InDelta(t, -1.0, py[0], 1e-15) // d(4/y)/dy = -4/y² = -1

	Forward0Addpv(z, 3, y)
	ForwardAddpv(1, z, y)
	assert.Equal(t, []float64{5, 1}, z[:2])

	Forward0Subpv(z, 3, y)
	ForwardSubpv(1, z, y)
	assert.Equal(t, []float64{1, -1}, z[:2])

	Forward0Subvp(z, y, 3)
	ForwardSubvp(1, z, y)
	assert.Equal(t, []float64{-1, 1}, z[:2])

	Forward0Mulpv(z, 3, y)
	ForwardMulpv(1, z, 3, y)
	assert.Equal(t, []float64{6, 3}, z[:2])

	Forward0Divvp(z, y, 4)
	ForwardDivvp(1, z, y, 4)
	assert.Equal(t, []float64{0.5, 0.25}, z[:2])
}

func TestPowParameterForms(t *testing.T) {
	// 2^y at y = 3: value 8, d/dy = 8 ln 2.
	y := []float64{3, 1}
	z0, z1, z2 := make([]float64, 2), make([]float64, 2), make([]float64, 2)
	Forward0Pow(z0, z1, z2, []float64{2}, y)
	ForwardPowpv(1, z0, z1, z2, y)
	assert.InDelta(t, 8.0, z2[0], 1e-12)
	assert.InDelta(t, 8*math.Ln2, z2[1], 1e-12)

	// x^3 at x = 2: value 8, d/dx = 12.
	x := []float64{2, 1}
	Forward0Pow(z0, z1, z2, x, []float64{3})
	ForwardPowvp(1, z0, z1, z2, x, 3)
	assert.InDelta(t, 8.0, z2[0], 1e-12)
	assert.InDelta(t, 12.0, z2[1], 1e-12)

	px := make([]float64, 2)
	ReversePowvp(0, z0, z1, z2, x, 3, make([]float64, 2), make([]float64, 2), []float64{1, 0}, px)
	assert.InDelta(t, 12.0, px[0], 1e-12)
}

func TestMatrixGrow(t *testing.T) {
	m := NewMatrix(2, 1)
	m.Row(0)[0] = 1
	m.Row(1)[0] = 2

	g := m.Grow(2, 3)
	assert.Equal(t, 3, g.Cols)
	assert.Equal(t, []float64{1, 0, 0}, g.Row(0))
	assert.Equal(t, []float64{2, 0, 0}, g.Row(1))

	same := g.Grow(2, 2)
	assert.Equal(t, 3, same.Cols, "never shrinks")

	g.Clear(1)
	assert.Equal(t, []float64{0, 0, 0}, g.Row(1))
	assert.Equal(t, 0, Matrix{}.Rows())
}

func TestLoad(t *testing.T) {
	z := make([]float64, 2)
	y := []float64{4, 5}
	Forward0LoadVar(z, y)
	ForwardLoad(1, z, y)
	assert.Equal(t, []float64{4, 5}, z)

	Forward0LoadPar(z, 7)
	ForwardLoad(1, z, nil)
	assert.Equal(t, []float64{7, 0}, z)

	py := make([]float64, 2)
	ReverseLoad(1, py, []float64{1, 2})
	ReverseLoad(1, nil, []float64{1, 2})
	assert.Equal(t, []float64{1, 2}, py)
}
