package greenspline

import (
	"fmt"
	"math"
	"sync"
)

// SeriesConfig controls the Legendre series of the spherical tension kernel.
type SeriesConfig struct {
	// Error is the relative truncation error ε of the series.
	Error float64 `yaml:"error"`
	// Lookup evaluates the kernel from cubic spline tables instead of summing
	// the series for every argument.
	Lookup bool `yaml:"lookup"`
	// Nodes is the (odd) number of table abscissas.
	Nodes int `yaml:"nodes"`
	// Range is the tabulated interval of cos θ.
	Range [2]float64 `yaml:"range"`
	// Gradient also tabulates dG/dx up front. The table is otherwise built on
	// first use by gradient constraints or derivative output.
	Gradient bool `yaml:"gradient"`
}

func DefaultSeriesConfig() SeriesConfig {
	return SeriesConfig{Error: 1e-6, Nodes: 10001, Range: [2]float64{-1, 1}}
}

func (c SeriesConfig) validate() error {
	if !(c.Error > 0 && c.Error < 1) {
		return fmt.Errorf("%w: series error %g outside (0, 1)", ErrConfiguration, c.Error)
	}
	if !c.Lookup {
		return nil
	}
	if c.Nodes < 3 || c.Nodes%2 == 0 {
		return fmt.Errorf("%w: lookup table needs an odd node count >= 3, got %d", ErrConfiguration, c.Nodes)
	}
	if c.Range[0] < -1 || c.Range[1] > 1 || c.Range[0] >= c.Range[1] {
		return fmt.Errorf("%w: lookup range %v not inside [-1, 1]", ErrConfiguration, c.Range)
	}
	return nil
}

// SplineContext holds the Legendre recursion coefficients, normalization and
// optional lookup tables of the spherical tension kernel. It is built once per
// solve and is read-only afterwards.
type SplineContext struct {
	p    float64
	eps  float64
	lmax int

	a, b, c []float64

	sMinus float64
	rng    float64
	norm   float64

	cfg      SeriesConfig
	g, dg    *cubicTable
	gradOnce sync.Once
}

// NewSplineContext prepares the series for tension t in [0, 1).
func NewSplineContext(tension float64, cfg SeriesConfig) (*SplineContext, error) {
	if tension < 0 || tension >= 1 || math.IsNaN(tension) {
		return nil, fmt.Errorf("%w: tension %g outside [0, 1)", ErrConfiguration, tension)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &SplineContext{p: math.Sqrt(tension / (1 - tension)), eps: cfg.Error, cfg: cfg}
	s.lmax = int(math.Ceil(math.Max(s.p, 1)/math.Sqrt(s.eps))) + 10

	s.a = make([]float64, s.lmax+1)
	s.b = make([]float64, s.lmax+1)
	s.c = make([]float64, s.lmax+1)
	p2 := s.p * s.p
	sPlus, sMinus := 0.0, 0.0
	for l := 1; l <= s.lmax; l++ {
		fl := float64(l)
		ll := fl * (fl + 1)
		s.a[l] = (2*fl + 1) / (fl + 1)
		s.b[l] = fl / (fl + 1)
		s.c[l] = (2*fl + 1) / (ll * (ll + p2))
		sPlus += s.c[l]
		if l%2 == 0 {
			sMinus += s.c[l]
		} else {
			sMinus -= s.c[l]
		}
	}
	s.sMinus = sMinus
	s.rng = sPlus - sMinus
	s.norm = 1 / s.rng

	if cfg.Lookup {
		s.g = newCubicTable(s.cfg.Range[0], s.step(), s.tabulate(s.direct))
		if cfg.Gradient {
			s.TabulateGradient()
		}
	}
	return s, nil
}

func (s *SplineContext) step() float64 {
	return (s.cfg.Range[1] - s.cfg.Range[0]) / float64(s.cfg.Nodes-1)
}

func (s *SplineContext) tabulate(f func(float64) float64) []float64 {
	n := s.cfg.Nodes
	x0, h := s.cfg.Range[0], s.step()
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := x0 + float64(i)*h
		if i == n-1 {
			x = s.cfg.Range[1]
		}
		y[i] = f(x)
	}
	return y
}

// TabulateGradient builds the dG/dx table of a lookup context. It runs at most
// once and does nothing when lookup is off.
func (s *SplineContext) TabulateGradient() {
	if !s.cfg.Lookup {
		return
	}
	s.gradOnce.Do(func() {
		dy := s.tabulate(s.directGradient)
		if s.cfg.Range[0] == -1 {
			dy[0] = 2*dy[1] - dy[2]
		}
		s.dg = newCubicTable(s.cfg.Range[0], s.step(), dy)
	})
}

// Tabulated reports whether G and dG/dx are read from lookup tables.
func (s *SplineContext) Tabulated() (value, gradient bool) {
	return s.g != nil, s.dg != nil
}

// Tension returns p = sqrt(t/(1-t)).
func (s *SplineContext) Tension() float64 {
	return s.p
}

// MaxOrder returns L_max, the longest series ever summed.
func (s *SplineContext) MaxOrder() int {
	return s.lmax
}

// Order returns the number of terms needed at x for a relative error ε.
func (s *SplineContext) Order(x float64) int {
	return s.clamp(s.order(x))
}

func (s *SplineContext) order(x float64) float64 {
	target := s.eps * s.rng
	sin := math.Sqrt(math.Max(0, 1-x*x))
	var L float64
	if sin > 0 {
		L = math.Pow(0.8*math.Sqrt(2/(math.Pi*sin))/target, 0.4)
		if L*sin >= 1 {
			return L
		}
	}
	if x > 0 {
		if s.p > 0 {
			return s.p / math.Sqrt(math.Expm1(s.p*s.p*target))
		}
		return 1 / math.Sqrt(target)
	}
	k := 2 / target
	L = math.Cbrt(k)
	if s.p > 0 {
		L = math.Min(L, k/(s.p*s.p))
	}
	return L
}

// gradientOrder bounds the tail of Σ C_l P'_l(x). Its terms oscillate with
// phase step θ and amplitude about 2·sqrt(2/(π sin³θ))·l^(-5/2), so partial
// summation bounds the tail by the first omitted amplitude over sin(θ/2).
func (s *SplineContext) gradientOrder(x float64) int {
	target := s.eps * s.rng
	sin := math.Sqrt(math.Max(0, 1-x*x))
	half := math.Sqrt(math.Max(0, (1-x)/2))
	if sin > 0 && half > 0 {
		amp := 2 * math.Sqrt(2/(math.Pi*sin*sin*sin))
		L := math.Pow(amp/(half*target), 0.4)
		if L*sin >= 1 {
			return s.clamp(L)
		}
	}
	return s.lmax
}

func (s *SplineContext) clamp(L float64) int {
	if math.IsNaN(L) || L > float64(s.lmax) {
		return s.lmax
	}
	n := int(math.Ceil(L))
	if n < 2 {
		n = 2
	}
	return n
}

// sum returns Σ_{l=1..L} C_l P_l(x) and Σ_{l=1..L} C_l P'_l(x).
func (s *SplineContext) sum(x float64, L int) (float64, float64) {
	p0, p1 := 1.0, x
	d0, d1 := 0.0, 1.0
	sg := s.c[1] * p1
	sd := s.c[1] * d1
	for l := 1; l < L; l++ {
		p2 := s.a[l]*x*p1 - s.b[l]*p0
		d2 := d0 + float64(2*l+1)*p1
		sg += s.c[l+1] * p2
		sd += s.c[l+1] * d2
		p0, p1 = p1, p2
		d0, d1 = d1, d2
	}
	return sg, sd
}

func (s *SplineContext) direct(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x >= 1:
		return 1
	case x <= -1:
		return 0
	}
	g, _ := s.sum(x, s.Order(x))
	return (g - s.sMinus) * s.norm
}

func (s *SplineContext) directGradient(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	_, d := s.sum(x, s.gradientOrder(x))
	return d * s.norm
}

// G returns the normalized kernel, 0 at x = -1 and 1 at x = 1.
func (s *SplineContext) G(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x >= 1:
		return 1
	case x <= -1:
		return 0
	}
	if s.g != nil && x >= s.g.min() && x <= s.g.max() {
		return s.g.eval(x)
	}
	return s.direct(x)
}

// DGDX returns dG/dx.
func (s *SplineContext) DGDX(x float64) float64 {
	if s.dg != nil && x >= s.dg.min() && x <= s.dg.max() {
		return s.dg.eval(x)
	}
	return s.directGradient(x)
}

// DGDTheta returns dG/dθ = -sin θ dG/dx, zero at both poles.
func (s *SplineContext) DGDTheta(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x >= 1 || x <= -1 {
		return 0
	}
	return -math.Sqrt(1-x*x) * s.DGDX(x)
}
