package greenspline

import (
	"context"
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/rs/zerolog"
)

// Interpolator fits a Green's function spline to value and gradient
// constraints and evaluates it.
type Interpolator struct {
	opts   Options
	log    zerolog.Logger
	metric Metric
	kernel *Kernel
	series *SplineContext
	set    *ConstraintSet

	norm     *Normalization
	system   *System
	solution *Solution
	eval     *Evaluator
	warnings []string
}

func New(opts Options) (*Interpolator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	ip := &Interpolator{opts: opts, log: opts.logger()}

	var err error
	if ip.metric, err = NewMetric(opts.DistanceMode); err != nil {
		return nil, err
	}
	if opts.Method == WesselBecker {
		if ip.series, err = NewSplineContext(opts.Tension, opts.Series); err != nil {
			return nil, err
		}
		ip.log.Debug().Int("lmax", ip.series.MaxOrder()).Bool("lookup", opts.Series.Lookup).Msg("series prepared")
	}
	ip.kernel, err = NewKernel(KernelConfig{
		Method:      opts.Method,
		Tension:     opts.Tension,
		LengthScale: opts.LengthScale,
		Spacing:     opts.Spacing,
		Series:      ip.series,
	})
	if err != nil {
		return nil, err
	}
	ip.log.Debug().Str("method", string(opts.Method)).Float64("tension", opts.Tension).
		Float64("length_scale", ip.kernel.LengthScale).Float64("c", ip.kernel.Params.C).Msg("kernel configured")

	allow := opts.Cutoff != nil && opts.Cutoff.Regularizes()
	ip.set = NewConstraintSet(ip.metric, allow, ip.log)
	return ip, nil
}

func (ip *Interpolator) AddValue(p vec3d.T, value, weight float64) (int, error) {
	return ip.set.AddValue(p, value, weight)
}

func (ip *Interpolator) AddGradient(p, dir vec3d.T, magnitude float64) (int, int, error) {
	return ip.set.AddGradient(p, dir, magnitude)
}

// AddValues adds every value constraint, stopping at the first error.
func (ip *Interpolator) AddValues(values []ValueConstraint) error {
	for i := range values {
		if _, err := ip.set.AddValue(values[i].Position, values[i].Value, values[i].Weight); err != nil {
			return err
		}
	}
	return nil
}

// AddGradients adds every gradient constraint, stopping at the first error.
func (ip *Interpolator) AddGradients(gradients []GradientConstraint) error {
	for i := range gradients {
		g := &gradients[i]
		if _, _, err := ip.set.AddGradient(g.Position, g.Direction, g.Magnitude); err != nil {
			return err
		}
	}
	return nil
}

// Fit normalizes the observations, assembles and solves the linear system.
func (ip *Interpolator) Fit() error {
	if ip.eval != nil {
		return fmt.Errorf("%w: interpolator already fitted", ErrConfiguration)
	}
	n, m, coreg := ip.set.Finalize()
	if n == 0 {
		return ErrNoConstraints
	}
	ip.log.Info().Int("values", n).Int("gradients", m).Int("coregistered", coreg).
		Int("dropped", ip.set.Dropped()).Msg("constraints found")
	if m > 0 && ip.series != nil && ip.opts.Series.Lookup {
		ip.tabulateGradient()
		ip.log.Debug().Int("nodes", ip.opts.Series.Nodes).Msg("series gradient tabulated")
	}

	mode := ip.opts.normalizeMode()
	if ip.opts.Detrend && !ip.metric.Mode.Planar() {
		ip.warn(fmt.Sprintf("detrending is not supported in %s geometry and was skipped", ip.metric.Mode))
	}
	ip.norm = NewNormalization(ip.metric, mode, ip.set.Values(), ip.set.Gradients())
	vobs, gobs := ip.norm.Apply(ip.set.Values(), ip.set.Gradients())

	ip.system = BuildSystem(ip.set, append(vobs, gobs...), ip.kernel, ip.metric, ip.log)
	if !ip.system.Square() {
		ip.log.Info().Int("coregistered", coreg).Msg("co-registered gradients make the system rectangular")
	}

	sol, err := Solve(ip.system, SolverConfig{
		Cutoff:     ip.opts.Cutoff,
		Weighted:   ip.opts.Weighted,
		WeightKind: ip.opts.WeightKind,
		Duplicates: ip.set.Duplicates() > 0,
	}, ip.log)
	if err != nil {
		return err
	}
	if sol.Used < sol.Requested {
		ip.warn(fmt.Sprintf("duplicate locations reduce the system to rank %d; %d eigenvalues were requested", sol.Used, sol.Requested))
	}
	ip.solution = sol
	ip.eval = NewEvaluator(ip.kernel, ip.metric, ip.set.Centers(), sol.Alpha, ip.norm, ip.opts.Workers)
	ip.warnings = append(ip.warnings, ip.set.Warnings()...)
	return nil
}

func (ip *Interpolator) warn(msg string) {
	ip.warnings = append(ip.warnings, msg)
	ip.log.Warn().Msg(msg)
}

// tabulateGradient builds the dG/dx table of a lookup series kernel before
// gradient rows or derivatives are evaluated.
func (ip *Interpolator) tabulateGradient() {
	if ip.series != nil && ip.opts.Series.Lookup {
		ip.series.TabulateGradient()
	}
}

func (ip *Interpolator) fitted() error {
	if ip.eval == nil {
		return ErrNotFitted
	}
	return nil
}

// Predict returns the surface at p, or NaN before Fit.
func (ip *Interpolator) Predict(p vec3d.T) float64 {
	if ip.eval == nil {
		return math.NaN()
	}
	return ip.eval.Value(p)
}

// Derivative returns the directional derivative along dir at p, or NaN before
// Fit.
func (ip *Interpolator) Derivative(p, dir vec3d.T) float64 {
	if ip.eval == nil {
		return math.NaN()
	}
	ip.tabulateGradient()
	return ip.eval.Derivative(p, dir)
}

// PredictPoints evaluates the surface, or its derivative along dir when dir is
// non-nil, at every point.
func (ip *Interpolator) PredictPoints(ctx context.Context, pts []vec3d.T, dir *vec3d.T) ([]float64, error) {
	if err := ip.fitted(); err != nil {
		return nil, err
	}
	if dir != nil {
		ip.tabulateGradient()
	}
	return ip.eval.Points(ctx, pts, dir)
}

// Grid evaluates the surface, or its derivative along dir, on a lattice. Mask
// cells holding NaN are skipped.
func (ip *Interpolator) Grid(ctx context.Context, lat *Lattice, mask []float64, dir *vec3d.T) ([]float64, error) {
	if err := ip.fitted(); err != nil {
		return nil, err
	}
	if lat.Dimension != ip.metric.Dimension() {
		return nil, fmt.Errorf("%w: %d-D lattice for a %d-D fit", ErrDimension, lat.Dimension, ip.metric.Dimension())
	}
	if dir != nil {
		ip.tabulateGradient()
	}
	out, err := ip.eval.Lattice(ctx, lat, mask, dir)
	if err != nil {
		return nil, err
	}
	ip.log.Info().Int("nodes", lat.Count()).Float64("rmin", ip.system.RMin).Float64("rmax", ip.system.RMax).Msg("lattice evaluated")
	return out, nil
}

func (ip *Interpolator) Coefficients() []float64 {
	if ip.solution == nil {
		return nil
	}
	return ip.solution.Alpha
}

func (ip *Interpolator) System() *System {
	return ip.system
}

func (ip *Interpolator) Normalization() *Normalization {
	return ip.norm
}

func (ip *Interpolator) Kernel() *Kernel {
	return ip.kernel
}

func (ip *Interpolator) Constraints() *ConstraintSet {
	return ip.set
}

// EigenvaluesUsed returns the number of eigenvalues kept by an SVD solve, or
// the system size for Gauss-Jordan.
func (ip *Interpolator) EigenvaluesUsed() int {
	if ip.solution == nil {
		return 0
	}
	return ip.solution.Used
}

func (ip *Interpolator) Warnings() []string {
	return ip.warnings
}
