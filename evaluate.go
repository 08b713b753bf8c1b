package greenspline

import (
	"context"
	"fmt"
	"math"
	"runtime"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Evaluator sums the fitted Green's functions at query points. It is
// read-only and safe for concurrent use.
type Evaluator struct {
	kernel  *Kernel
	metric  Metric
	centers []vec3d.T
	alpha   []float64
	norm    *Normalization
	workers int
}

func NewEvaluator(kernel *Kernel, metric Metric, centers []vec3d.T, alpha []float64, norm *Normalization, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Evaluator{kernel: kernel, metric: metric, centers: centers, alpha: alpha, norm: norm, workers: workers}
}

// raw returns the normalized surface at q using coefficients alpha.
func (e *Evaluator) raw(q vec3d.T, alpha, scratch []float64) float64 {
	for j := range e.centers {
		scratch[j] = e.kernel.G(e.metric.Distance(q, e.centers[j]))
	}
	return floats.Dot(alpha, scratch)
}

// rawDerivative returns the normalized directional derivative along dir at q.
func (e *Evaluator) rawDerivative(q, dir vec3d.T, alpha, scratch []float64) float64 {
	for j := range e.centers {
		r := e.metric.Distance(q, e.centers[j])
		if e.metric.Coincident(r) {
			scratch[j] = 0
			continue
		}
		scratch[j] = e.kernel.DGDR(r) * e.metric.DirectionCosine(dir, q, e.centers[j], false)
	}
	return floats.Dot(alpha, scratch)
}

func (e *Evaluator) canonical(q vec3d.T) vec3d.T {
	return e.metric.Canonical(q)
}

// Value returns the surface at q in physical units.
func (e *Evaluator) Value(q vec3d.T) float64 {
	q = e.canonical(q)
	return e.norm.Undo(q, e.raw(q, e.alpha, make([]float64, len(e.centers))))
}

// Derivative returns the directional derivative along the unit vector dir at q
// in physical units per distance unit.
func (e *Evaluator) Derivative(q, dir vec3d.T) float64 {
	q = e.canonical(q)
	dir = unitDirection(dir, e.metric.Dimension())
	return e.norm.UndoGradient(q, dir, e.rawDerivative(q, dir, e.alpha, make([]float64, len(e.centers))))
}

func unitDirection(dir vec3d.T, dim int) vec3d.T {
	for i := dim; i < 3; i++ {
		dir[i] = 0
	}
	if dir.Length() > 0 {
		dir.Normalize()
	}
	return dir
}

// query describes one evaluation pass.
type query struct {
	alpha []float64
	// dir selects derivative mode.
	dir *vec3d.T
	// restore applies the inverse normalization.
	restore bool
}

func (e *Evaluator) at(q vec3d.T, qu query, scratch []float64) float64 {
	q = e.canonical(q)
	if qu.dir == nil {
		w := e.raw(q, qu.alpha, scratch)
		if qu.restore {
			return e.norm.Undo(q, w)
		}
		return w * e.norm.Scale
	}
	w := e.rawDerivative(q, *qu.dir, qu.alpha, scratch)
	if qu.restore {
		return e.norm.UndoGradient(q, *qu.dir, w)
	}
	return w * e.norm.Scale
}

// Points evaluates the surface, or its derivative along dir when dir is
// non-nil, at every point.
func (e *Evaluator) Points(ctx context.Context, pts []vec3d.T, dir *vec3d.T) ([]float64, error) {
	qu := query{alpha: e.alpha, dir: e.direction(dir), restore: true}
	out := make([]float64, len(pts))
	chunk := (len(pts) + e.workers - 1) / e.workers
	if chunk < 64 {
		chunk = 64
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for lo := 0; lo < len(pts); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(pts))
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			scratch := make([]float64, len(e.centers))
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = e.at(pts[i], qu, scratch)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}

func (e *Evaluator) direction(dir *vec3d.T) *vec3d.T {
	if dir == nil {
		return nil
	}
	d := unitDirection(*dir, e.metric.Dimension())
	return &d
}

// Lattice evaluates every node of lat. Nodes whose mask cell is NaN are
// skipped and returned as NaN; a nil mask evaluates everything.
func (e *Evaluator) Lattice(ctx context.Context, lat *Lattice, mask []float64, dir *vec3d.T) ([]float64, error) {
	return e.lattice(ctx, lat, mask, query{alpha: e.alpha, dir: e.direction(dir), restore: true})
}

func (e *Evaluator) lattice(ctx context.Context, lat *Lattice, mask []float64, qu query) ([]float64, error) {
	if mask != nil && len(mask) != lat.Count() {
		return nil, fmt.Errorf("%w: mask has %d cells, lattice has %d", ErrDimension, len(mask), lat.Count())
	}
	out := make([]float64, lat.Count())
	nx, ny, nz := lat.Size()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for row := 0; row < ny*nz; row++ {
		row := row
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scratch := make([]float64, len(e.centers))
			base := row * nx
			for col := 0; col < nx; col++ {
				idx := base + col
				if mask != nil && math.IsNaN(mask[idx]) {
					out[idx] = math.NaN()
					continue
				}
				out[idx] = e.at(lat.Node(idx), qu, scratch)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}
