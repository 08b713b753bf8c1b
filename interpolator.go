package greenspline

import (
	"context"
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Request bundles the inputs of one complete interpolation run.
type Request struct {
	Values    []ValueConstraint
	Gradients []GradientConstraint
	// Lattice and Points select the outputs; either may be nil.
	Lattice *Lattice
	Points  []vec3d.T
	// Direction switches the outputs to directional derivatives.
	Direction *vec3d.T
	// Aggregate averages values sharing a voxel of this size before fitting.
	Aggregate *vec3d.T
	// Mask holds NaN for lattice cells to skip.
	Mask []float64
	// ClipToHull skips lattice cells outside the convex hull of the values.
	ClipToHull bool
	// NoData replaces skipped lattice cells when set.
	NoData *float64
}

type Result struct {
	Grid         []float64
	Points       []float64
	Interpolator *Interpolator
}

// Process fits the constraints of req and evaluates the requested outputs.
func Process(ctx context.Context, opts Options, req Request) (*Result, error) {
	if req.Lattice != nil && len(opts.Spacing) == 0 {
		opts.Spacing = req.Lattice.Spacing()
	}
	ip, err := New(opts)
	if err != nil {
		return nil, err
	}

	values := req.Values
	if req.Aggregate != nil {
		values = Aggregate(values, *req.Aggregate, opts.WeightKind)
		ip.log.Info().Int("before", len(req.Values)).Int("after", len(values)).Msg("values aggregated")
	}
	if err := ip.AddValues(values); err != nil {
		return nil, err
	}
	if err := ip.AddGradients(req.Gradients); err != nil {
		return nil, err
	}
	if err := ip.Fit(); err != nil {
		return nil, err
	}

	res := &Result{Interpolator: ip}
	if len(req.Points) > 0 {
		if res.Points, err = ip.PredictPoints(ctx, req.Points, req.Direction); err != nil {
			return nil, err
		}
	}
	if req.Lattice != nil {
		mask, err := ip.latticeMask(req)
		if err != nil {
			return nil, err
		}
		if res.Grid, err = ip.Grid(ctx, req.Lattice, mask, req.Direction); err != nil {
			return nil, err
		}
		if req.NoData != nil {
			for i, v := range res.Grid {
				if math.IsNaN(v) {
					res.Grid[i] = *req.NoData
				}
			}
		}
	}
	return res, nil
}

func (ip *Interpolator) latticeMask(req Request) ([]float64, error) {
	mask := req.Mask
	if mask != nil && len(mask) != req.Lattice.Count() {
		return nil, fmt.Errorf("%w: mask has %d cells, lattice has %d", ErrDimension, len(mask), req.Lattice.Count())
	}
	if !req.ClipToHull {
		return mask, nil
	}
	if req.Lattice.Dimension != 2 {
		return nil, fmt.Errorf("%w: hull clipping needs a 2-D lattice", ErrDimension)
	}
	hull := ip.HullMask(req.Lattice)
	if mask == nil {
		return hull, nil
	}
	out := make([]float64, len(mask))
	for i := range out {
		out[i] = mask[i]
		if math.IsNaN(hull[i]) {
			out[i] = math.NaN()
		}
	}
	return out, nil
}
