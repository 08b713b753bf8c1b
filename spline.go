package greenspline

import "math"

// cubicTable is a natural cubic spline through equally spaced samples.
type cubicTable struct {
	x0, h, inv float64
	y, y2      []float64
}

func newCubicTable(x0, h float64, y []float64) *cubicTable {
	t := &cubicTable{x0: x0, h: h, inv: 1 / h, y: y, y2: make([]float64, len(y))}
	t.secondDerivatives()
	return t
}

// secondDerivatives solves for the interior second derivatives with the ends
// held at zero.
func (t *cubicTable) secondDerivatives() {
	n := len(t.y)
	if n < 3 {
		return
	}
	m := n - 2
	as, bs := make([]float64, m), make([]float64, m)
	cs, rs := make([]float64, m), make([]float64, m)
	for i := range rs {
		j := i + 1
		as[i] = t.h / 6
		bs[i] = 2 * t.h / 3
		cs[i] = t.h / 6
		rs[i] = (t.y[j+1] - 2*t.y[j] + t.y[j-1]) * t.inv
	}
	triDiagAt(as, bs, cs, rs, t.y2[1:n-1])
}

func (t *cubicTable) eval(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	f := (x - t.x0) * t.inv
	k := int(math.Floor(f))
	if k < 0 {
		k = 0
	} else if k > len(t.y)-2 {
		k = len(t.y) - 2
	}
	b := f - float64(k)
	a := 1 - b
	return a*t.y[k] + b*t.y[k+1] + ((a*a*a-a)*t.y2[k]+(b*b*b-b)*t.y2[k+1])*t.h*t.h/6
}

func (t *cubicTable) min() float64 {
	return t.x0
}

func (t *cubicTable) max() float64 {
	return t.x0 + float64(len(t.y)-1)*t.h
}

// triDiagAt solves the tridiagonal system with sub-diagonal as, diagonal bs and
// super-diagonal cs for out. The system is diagonally dominant here, so no
// pivot can vanish.
func triDiagAt(as, bs, cs, rs, out []float64) {
	tmp := make([]float64, len(as))
	beta := bs[0]
	out[0] = rs[0] / beta
	for i := 1; i < len(out); i++ {
		tmp[i] = cs[i-1] / beta
		beta = bs[i] - as[i]*tmp[i]
		out[i] = (rs[i] - as[i]*out[i-1]) / beta
	}
	for i := len(out) - 2; i >= 0; i-- {
		out[i] -= tmp[i+1] * out[i+1]
	}
}
