package greenspline

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Cutoff selects how many eigenvalues an SVD solve keeps.
type Cutoff struct {
	Mode  CutoffMode `yaml:"mode"`
	Value float64    `yaml:"value"`
	// Percent reads Value as a percentage: of the system size for CutoffCount,
	// of the largest eigenvalue for CutoffRatio and of the total variance for
	// CutoffVariance.
	Percent bool `yaml:"percent"`
}

func (c Cutoff) validate() error {
	v := c.Value
	if c.Percent {
		v /= 100
	}
	switch c.Mode {
	case CutoffCount:
		if !c.Percent && (v < 1 || v != math.Trunc(v)) {
			return fmt.Errorf("%w: eigenvalue count %g must be a positive integer", ErrConfiguration, c.Value)
		}
		if c.Percent && (v <= 0 || v > 1) {
			return fmt.Errorf("%w: eigenvalue percentage %g outside (0, 100]", ErrConfiguration, c.Value)
		}
	case CutoffRatio:
		if v < 0 || v >= 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: eigenvalue ratio %g outside [0, 1)", ErrConfiguration, v)
		}
	case CutoffVariance:
		if v <= 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: variance fraction %g outside (0, 1]", ErrConfiguration, v)
		}
	default:
		return fmt.Errorf("%w: unknown cutoff mode %q", ErrConfiguration, c.Mode)
	}
	return nil
}

// Regularizes reports whether the cutoff can discard eigenvalues, which makes
// duplicate locations with differing observations tolerable. A count or
// variance cutoff that keeps every eigenvalue is still capped at the numerical
// rank when duplicates are present.
func (c Cutoff) Regularizes() bool {
	if c.Mode == CutoffRatio {
		return c.Value > 0
	}
	return true
}

// Select returns the number of leading singular values s (sorted descending)
// to keep.
func (c Cutoff) Select(s []float64) int {
	n := len(s)
	if n == 0 {
		return 0
	}
	v := c.Value
	if c.Percent {
		v /= 100
	}
	k := n
	switch c.Mode {
	case CutoffCount:
		if c.Percent {
			k = int(math.Ceil(v * float64(n)))
		} else {
			k = int(v)
		}
	case CutoffRatio:
		k = 0
		for k < n && s[0] > 0 && s[k]/s[0] > v {
			k++
		}
	case CutoffVariance:
		total := 0.0
		for _, si := range s {
			total += si * si
		}
		if total == 0 {
			break
		}
		cum := 0.0
		for k = 0; k < n; {
			cum += s[k] * s[k]
			k++
			if cum/total >= v*(1-1e-12) {
				break
			}
		}
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// GaussJordan solves the n×n row-major system a·x = b in place by Gauss-Jordan
// elimination with full pivoting; b holds x on return and a is destroyed.
func GaussJordan(a []float64, n int, b []float64) error {
	ipiv := make([]int, n)
	tol := 0.0
	for _, v := range a[:n*n] {
		tol = math.Max(tol, math.Abs(v))
	}
	tol *= float64(n) * 2.220446049250313e-16

	for i := 0; i < n; i++ {
		big := -1.0
		irow, icol := -1, -1
		for j := 0; j < n; j++ {
			if ipiv[j] == 1 {
				continue
			}
			for k := 0; k < n; k++ {
				if ipiv[k] == 0 {
					if v := math.Abs(a[j*n+k]); v > big {
						big = v
						irow, icol = j, k
					}
				}
			}
		}
		if icol < 0 {
			return fmt.Errorf("%w: no pivot left at step %d", ErrSingularSystem, i)
		}
		ipiv[icol]++
		if irow != icol {
			for l := 0; l < n; l++ {
				a[irow*n+l], a[icol*n+l] = a[icol*n+l], a[irow*n+l]
			}
			b[irow], b[icol] = b[icol], b[irow]
		}
		pivot := a[icol*n+icol]
		if math.Abs(pivot) <= tol || math.IsNaN(pivot) {
			return fmt.Errorf("%w: pivot %g in column %d", ErrSingularSystem, pivot, icol)
		}
		inv := 1 / pivot
		a[icol*n+icol] = 1
		for l := 0; l < n; l++ {
			a[icol*n+l] *= inv
		}
		b[icol] *= inv
		for ll := 0; ll < n; ll++ {
			if ll == icol {
				continue
			}
			f := a[ll*n+icol]
			if f == 0 {
				continue
			}
			a[ll*n+icol] = 0
			for l := 0; l < n; l++ {
				a[ll*n+l] -= a[icol*n+l] * f
			}
			b[ll] -= b[icol] * f
		}
	}
	return nil
}

// SVDSolution keeps the factorization of a square system so truncated
// solutions, reports and history grids can be formed without refactoring.
type SVDSolution struct {
	N int
	// Values are the singular values in descending order.
	Values []float64
	u, v   *mat.Dense
	// proj holds uᵢᵀb / sᵢ.
	proj []float64
}

func SolveSVD(a []float64, n int, b []float64) (*SVDSolution, error) {
	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(n, n, a), mat.SVDFull); !ok {
		return nil, fmt.Errorf("%w: SVD factorization did not converge", ErrSingularSystem)
	}
	u, v := new(mat.Dense), new(mat.Dense)
	svd.UTo(u)
	svd.VTo(v)
	sol := &SVDSolution{N: n, Values: svd.Values(nil), u: u, v: v, proj: make([]float64, n)}

	col := make([]float64, n)
	for i := 0; i < n; i++ {
		if sol.Values[i] == 0 {
			continue
		}
		mat.Col(col, i, u)
		sol.proj[i] = floats.Dot(col, b) / sol.Values[i]
	}
	return sol, nil
}

// Rank returns the number of singular values above N·ε·s₀.
func (s *SVDSolution) Rank() int {
	if len(s.Values) == 0 || !(s.Values[0] > 0) {
		return 0
	}
	tol := float64(s.N) * 2.220446049250313e-16 * s.Values[0]
	r := 0
	for r < len(s.Values) && s.Values[r] > tol {
		r++
	}
	return r
}

// Component returns the contribution of eigenpair i to the coefficients.
func (s *SVDSolution) Component(i int) []float64 {
	out := make([]float64, s.N)
	mat.Col(out, i, s.v)
	floats.Scale(s.proj[i], out)
	return out
}

// Coefficients returns α built from the k largest eigenvalues.
func (s *SVDSolution) Coefficients(k int) []float64 {
	alpha := make([]float64, s.N)
	col := make([]float64, s.N)
	for i := 0; i < k && i < s.N; i++ {
		mat.Col(col, i, s.v)
		floats.AddScaled(alpha, s.proj[i], col)
	}
	return alpha
}

type SolverConfig struct {
	// Cutoff selects the SVD solver; nil means Gauss-Jordan.
	Cutoff     *Cutoff
	Weighted   bool
	WeightKind WeightKind
	// Duplicates caps an SVD solve at the numerical rank of the system.
	Duplicates bool
}

type Solution struct {
	Alpha []float64
	// Used is the number of eigenvalues kept by an SVD solve.
	Used int
	// Requested is the number the cutoff asked for before the rank cap.
	Requested int
	// Normal is set when the normal equations were solved instead of A itself.
	Normal bool
	SVD    *SVDSolution
	// Matrix and RHS are the square system that was factored.
	Matrix, RHS []float64
}

// Solve computes the coefficients of sys. Weighted and rectangular systems are
// reduced to their normal equations first.
func Solve(sys *System, cfg SolverConfig, log zerolog.Logger) (*Solution, error) {
	n := sys.Cols
	sol := &Solution{}
	var a, b []float64
	if cfg.Weighted || !sys.Square() {
		var err error
		a, b, err = normalEquations(sys, cfg.Weighted, cfg.WeightKind)
		if err != nil {
			return nil, err
		}
		sol.Normal = true
		log.Info().Bool("weighted", cfg.Weighted).Int("rows", sys.Rows).Int("cols", sys.Cols).Msg("forming normal equations")
	} else {
		a = append([]float64(nil), sys.A...)
		b = append([]float64(nil), sys.B...)
	}
	sol.Matrix = append([]float64(nil), a...)
	sol.RHS = append([]float64(nil), b...)

	if cfg.Cutoff == nil {
		log.Info().Int("n", n).Msg("solving linear system with Gauss-Jordan elimination")
		if err := GaussJordan(a, n, b); err != nil {
			return nil, err
		}
		sol.Alpha = b
		sol.Used = n
		sol.Requested = n
		return sol, nil
	}

	log.Info().Int("n", n).Str("cutoff", string(cfg.Cutoff.Mode)).Float64("value", cfg.Cutoff.Value).Msg("solving linear system with SVD")
	svd, err := SolveSVD(a, n, b)
	if err != nil {
		return nil, err
	}
	sol.SVD = svd
	sol.Requested = cfg.Cutoff.Select(svd.Values)
	sol.Used = sol.Requested
	if cfg.Duplicates {
		if r := svd.Rank(); r < sol.Used {
			log.Warn().Int("rank", r).Int("requested", sol.Used).Msg("eigenvalues capped at the rank of a system with duplicate locations")
			sol.Used = max(r, 1)
		}
	}
	sol.Alpha = svd.Coefficients(sol.Used)
	log.Info().Int("used", sol.Used).Int("total", n).Msg("eigenvalues retained")
	return sol, nil
}
