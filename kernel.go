package greenspline

import (
	"fmt"
	"math"
)

// GreenFunc evaluates a Green's function (or its radial derivative) at the
// separation r. For spherical kernels r is the cosine of the angular distance.
type GreenFunc func(r float64, par *KernelParams) float64

// KernelParams holds the constants precomputed once per run.
type KernelParams struct {
	// C is the tension coefficient sqrt(t/(1-t))/L of Cartesian tension kernels
	// and phi of the Mitasova-Mitas kernels.
	C float64
	// TwoOverC is the switch point between the small and large argument
	// approximations of the 2-D Wessel-Bercovici kernel.
	TwoOverC float64
	// Phi2Quarter is phi^2/4 of the 2-D Mitasova-Mitas kernel.
	Phi2Quarter float64
	// Norm scales the Parker kernel into [0, 1].
	Norm   float64
	Series *SplineContext
}

type KernelConfig struct {
	Method      Method
	Tension     float64
	LengthScale float64
	// Spacing of the output lattice, used for the default length scale.
	Spacing []float64
	// Series is required by WesselBecker.
	Series *SplineContext
}

type Kernel struct {
	Method      Method
	Tension     float64
	LengthScale float64
	Params      KernelParams

	g, dg GreenFunc
}

var kernels = map[Method][2]GreenFunc{
	Sandwell1D:        {sandwell1D, gradSandwell1D},
	Sandwell2D:        {sandwell2D, gradSandwell2D},
	Sandwell3D:        {sandwell3D, gradSandwell3D},
	WesselBercovici1D: {wesselBercovici1D, gradWesselBercovici1D},
	WesselBercovici2D: {wesselBercovici2D, gradWesselBercovici2D},
	WesselBercovici3D: {wesselBercovici3D, gradWesselBercovici3D},
	MitasovaMitas2D:   {mitasovaMitas2D, gradMitasovaMitas2D},
	MitasovaMitas3D:   {mitasovaMitas3D, gradMitasovaMitas3D},
	Parker:            {parker, gradParker},
	WesselBecker:      {wesselBecker, gradWesselBecker},
}

func NewKernel(cfg KernelConfig) (*Kernel, error) {
	fn, ok := kernels[cfg.Method]
	if !ok {
		return nil, fmt.Errorf("%w: unknown method %q", ErrConfiguration, cfg.Method)
	}
	t := cfg.Tension
	if t < 0 || t >= 1 || math.IsNaN(t) {
		return nil, fmt.Errorf("%w: tension %g outside [0, 1)", ErrConfiguration, t)
	}
	if cfg.Method.Tensioned() && !cfg.Method.Spherical() && t == 0 {
		return nil, fmt.Errorf("%w: %s requires a tension in (0, 1)", ErrConfiguration, cfg.Method)
	}
	if cfg.LengthScale < 0 {
		return nil, fmt.Errorf("%w: negative length scale %g", ErrConfiguration, cfg.LengthScale)
	}

	k := &Kernel{Method: cfg.Method, Tension: t, LengthScale: cfg.LengthScale, g: fn[0], dg: fn[1]}
	if k.LengthScale == 0 {
		k.LengthScale = defaultLengthScale(cfg.Method, cfg.Spacing)
	}

	p := &k.Params
	switch cfg.Method {
	case WesselBercovici1D, WesselBercovici2D, WesselBercovici3D:
		p.C = math.Sqrt(t/(1-t)) / k.LengthScale
		p.TwoOverC = 2 / p.C
	case MitasovaMitas2D, MitasovaMitas3D:
		p.C = math.Sqrt(t/(1-t)) / k.LengthScale
		p.Phi2Quarter = 0.25 * p.C * p.C
	case Parker:
		p.Norm = 6 / (math.Pi * math.Pi)
	case WesselBecker:
		if cfg.Series == nil {
			return nil, fmt.Errorf("%w: %s requires a series context", ErrConfiguration, cfg.Method)
		}
		p.Series = cfg.Series
	}
	return k, nil
}

func defaultLengthScale(method Method, spacing []float64) float64 {
	if method.Spherical() || method == MitasovaMitas2D || method == MitasovaMitas3D {
		return 1
	}
	n := method.Dimension()
	if len(spacing) < n {
		return 1
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		if spacing[i] <= 0 {
			return 1
		}
		sum += spacing[i]
	}
	return sum / float64(n)
}

// G returns the Green's function at separation r.
func (k *Kernel) G(r float64) float64 {
	return k.g(r, &k.Params)
}

// DGDR returns the radial derivative of G. Spherical kernels return dG/dθ.
func (k *Kernel) DGDR(r float64) float64 {
	return k.dg(r, &k.Params)
}

func sandwell1D(r float64, _ *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	return pow3(r)
}

func gradSandwell1D(r float64, _ *KernelParams) float64 {
	return 3 * r * r
}

func sandwell2D(r float64, _ *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	return r * r * (math.Log(r) - 1)
}

func gradSandwell2D(r float64, _ *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	return r * (2*math.Log(r) - 1)
}

func sandwell3D(r float64, _ *KernelParams) float64 {
	return r
}

func gradSandwell3D(r float64, _ *KernelParams) float64 {
	return 1
}

func wesselBercovici1D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	cx := par.C * r
	return math.Exp(-cx) + cx - 1
}

func gradWesselBercovici1D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	return par.C * -math.Expm1(-par.C*r)
}

// K0(u) + ln(u/2) + γ from the Abramowitz & Stegun 9.8.1/9.8.5/9.8.6 polynomials.
func wesselBercovici2D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	cx := par.C * r
	if r <= par.TwoOverC {
		t := cx * cx
		y := 0.25 * t
		z := t / 14.0625
		return -math.Log(0.5*cx)*(z*(3.5156229+z*(3.0899424+z*(1.2067492+z*(0.2659732+
			z*(0.360768e-1+z*0.45813e-2)))))) + y*(0.42278420+y*(0.23069756+
			y*(0.3488590e-1+y*(0.262698e-2+y*(0.10750e-3+y*0.74e-5)))))
	}
	y := par.TwoOverC / r
	return (math.Exp(-cx)/math.Sqrt(cx))*(1.25331414+y*(-0.7832358e-1+y*(0.2189568e-1+
		y*(-0.1062446e-1+y*(0.587872e-2+y*(-0.251540e-2+y*0.53208e-3)))))) +
		math.Log(cx) - math.Ln2 + eulerGamma
}

// c(1/u - K1(u)) from the Abramowitz & Stegun 9.8.3/9.8.7/9.8.8 polynomials.
func gradWesselBercovici2D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	cx := par.C * r
	var dgdr float64
	if r <= par.TwoOverC {
		t := cx * cx
		y := 0.25 * t
		z := t / 14.0625
		dgdr = -(math.Log(0.5*cx)*(cx*(0.5+z*(0.87890594+z*(0.51498869+z*(0.15084934+
			z*(0.2658733e-1+z*(0.301532e-2+z*0.32411e-3))))))) +
			(1/cx)*(y*(0.15443144+y*(-0.67278579+y*(-0.18156897+y*(-0.1919402e-1+
				y*(-0.110404e-2+y*(-0.4686e-4))))))))
	} else {
		y := par.TwoOverC / r
		dgdr = 0.5*y - (math.Exp(-cx)/math.Sqrt(cx))*(1.25331414+y*(0.23498619+y*(-0.3655620e-1+
			y*(0.1504268e-1+y*(-0.780353e-2+y*(0.325614e-2+y*(-0.68245e-3)))))))
	}
	return dgdr * par.C
}

func wesselBercovici3D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	cx := par.C * r
	return math.Expm1(-cx)/cx + 1
}

func gradWesselBercovici3D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	cx := par.C * r
	return (1 - math.Exp(-cx)*(cx+1)) / (cx * r)
}

// ln(u) + E1(u) + γ with u = φ²r²/4, E1 from Abramowitz & Stegun 5.1.53/5.1.56.
func mitasovaMitas2D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	u := par.Phi2Quarter * r * r
	if u <= 1 {
		return u * (0.99999193 + u*(-0.24991055+u*(0.05519968+u*(-0.00976004+u*0.00107857))))
	}
	en := 0.2677737343 + u*(8.6347608925+u*(18.0590169730+u*(8.5733287401+u)))
	ed := 3.9584869228 + u*(21.0996530827+u*(25.6329561486+u*(9.5733223454+u)))
	return math.Log(u) + eulerGamma + (en/ed)/(u*math.Exp(u))
}

func gradMitasovaMitas2D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	u := par.Phi2Quarter * r * r
	return -2 * math.Expm1(-u) / r
}

func mitasovaMitas3D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	u := par.C * r
	return math.Erf(0.5*u)/u - invSqrtPi
}

func gradMitasovaMitas3D(r float64, par *KernelParams) float64 {
	if r == 0 {
		return 0
	}
	u := par.C * r
	return par.C * (invSqrtPi*math.Exp(-0.25*u*u)/u - math.Erf(0.5*u)/(u*u))
}

func parker(x float64, par *KernelParams) float64 {
	switch {
	case x >= 1:
		return 1
	case x <= -1:
		return 0
	}
	return par.Norm * dilog(0.5+0.5*x)
}

func gradParker(x float64, par *KernelParams) float64 {
	if x >= 1 || x <= -1 {
		return 0
	}
	return par.Norm * math.Log(0.5-0.5*x) * math.Sqrt((1-x)/(1+x))
}

func wesselBecker(x float64, par *KernelParams) float64 {
	return par.Series.G(x)
}

func gradWesselBecker(x float64, par *KernelParams) float64 {
	return par.Series.DGDTheta(x)
}
