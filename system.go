package greenspline

import (
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/rs/zerolog"
)

// System is the dense collocation system A·α = B, stored row-major. Rows are
// value constraints followed by gradient constraints; columns are kernel
// centers.
type System struct {
	Rows, Cols int
	A          []float64
	B          []float64
	// Weights holds the raw weight column of every row, 0 for unweighted rows.
	Weights []float64
	// RMin and RMax bound the nonzero separations seen while filling A.
	RMin, RMax float64
}

func (s *System) At(i, j int) float64 {
	return s.A[i*s.Cols+j]
}

// Square reports whether every constraint has its own center.
func (s *System) Square() bool {
	return s.Rows == s.Cols
}

type separation struct {
	metric   Metric
	min, max float64
}

func (s *separation) distance(a, b vec3d.T) float64 {
	r := s.metric.Distance(a, b)
	if !s.metric.Coincident(r) {
		d := r
		if s.metric.Mode == SphericalCosine {
			d = math.Acos(r)
		}
		s.min = math.Min(s.min, d)
		s.max = math.Max(s.max, d)
	}
	return r
}

// BuildSystem fills the collocation matrix for a finalized constraint set.
// obs holds the normalized value observations followed by the normalized
// gradient observations.
func BuildSystem(cs *ConstraintSet, obs []float64, kernel *Kernel, metric Metric, log zerolog.Logger) *System {
	values, gradients, centers := cs.Values(), cs.Gradients(), cs.Centers()
	n := len(values)
	rows, cols := n+len(gradients), len(centers)

	log.Info().Int("rows", rows).Int("cols", cols).Str("memory", memoryFootprint(rows*cols)).Msg("building linear system")

	sys := &System{
		Rows:    rows,
		Cols:    cols,
		A:       make([]float64, rows*cols),
		B:       append([]float64(nil), obs...),
		Weights: make([]float64, rows),
	}
	sep := &separation{metric: metric, min: math.Inf(1), max: math.Inf(-1)}

	for i := 0; i < n; i++ {
		sys.Weights[i] = values[i].Weight
		row := sys.A[i*cols : (i+1)*cols]
		for j := i; j < n; j++ {
			v := kernel.G(sep.distance(values[i].Position, centers[j]))
			row[j] = v
			sys.A[j*cols+i] = v
		}
		for j := n; j < cols; j++ {
			row[j] = kernel.G(sep.distance(values[i].Position, centers[j]))
		}
	}

	for k := range gradients {
		g := &gradients[k]
		row := sys.A[(n+k)*cols : (n+k+1)*cols]
		for j := 0; j < cols; j++ {
			r := sep.distance(g.Position, centers[j])
			if metric.Coincident(r) {
				continue
			}
			row[j] = kernel.DGDR(r) * metric.DirectionCosine(g.Direction, g.Position, centers[j], false)
		}
	}

	sys.RMin, sys.RMax = sep.min, sep.max
	if math.IsInf(sys.RMin, 1) {
		sys.RMin, sys.RMax = 0, 0
	}
	log.Debug().Float64("rmin", sys.RMin).Float64("rmax", sys.RMax).Msg("separation range")
	return sys
}
