package greenspline

import (
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/stat"
)

type NormalizeMode uint8

const (
	NormalizeMean  NormalizeMode = 1
	NormalizeTrend NormalizeMode = 2
	NormalizeRange NormalizeMode = 4
)

// Normalization records how observations were reduced before the solve:
//
//	w = w_norm*Scale + Mean + Slope·(X - Centroid)
type Normalization struct {
	Mode     NormalizeMode
	Mean     float64
	Centroid [2]float64
	Slope    [2]float64
	Scale    float64

	metric Metric
}

// NewNormalization estimates the mean, the optional trend and the optional
// scale from the constraints. A trend is only fitted in planar geometries.
func NewNormalization(metric Metric, mode NormalizeMode, values []ValueConstraint, gradients []GradientConstraint) *Normalization {
	mode |= NormalizeMean
	if !metric.Mode.Planar() {
		mode &^= NormalizeTrend
	}
	nz := &Normalization{Mode: mode, Scale: 1, metric: metric}
	if len(values) == 0 {
		return nz
	}

	obs := make([]float64, len(values))
	for i := range values {
		obs[i] = values[i].Value
	}
	nz.Mean = stat.Mean(obs, nil)

	if mode&NormalizeTrend != 0 {
		if metric.Dimension() == 1 {
			nz.fitLine(values, obs)
		} else {
			nz.fitPlane(values, obs)
		}
	}

	if mode&NormalizeRange != 0 {
		scale := 0.0
		for i := range values {
			scale = math.Max(scale, math.Abs(nz.residual(values[i].Position, values[i].Value)))
		}
		if scale == 0 {
			for i := range gradients {
				g := &gradients[i]
				scale = math.Max(scale, math.Abs(g.Magnitude-nz.slopeAlong(g.Position, g.Direction)))
			}
		}
		if scale > 0 {
			nz.Scale = scale
		}
	}
	return nz
}

func (nz *Normalization) fitLine(values []ValueConstraint, obs []float64) {
	xs := make([]float64, len(values))
	for i := range values {
		xs[i] = values[i].Position[0]
	}
	nz.Centroid[0] = stat.Mean(xs, nil)
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 {
		return
	}
	_, beta := stat.LinearRegression(xs, obs, nil, false)
	nz.Slope[0] = beta
}

func (nz *Normalization) fitPlane(values []ValueConstraint, obs []float64) {
	n := float64(len(values))
	for i := range values {
		nz.Centroid[0] += values[i].Position[0]
		nz.Centroid[1] += values[i].Position[1]
	}
	nz.Centroid[0] /= n
	nz.Centroid[1] /= n

	var sxx, sxy, sxz, syy, syz float64
	for i := range values {
		xx := values[i].Position[0] - nz.Centroid[0]
		yy := values[i].Position[1] - nz.Centroid[1]
		zz := obs[i] - nz.Mean
		sxx += xx * xx
		sxz += xx * zz
		sxy += xx * yy
		syy += yy * yy
		syz += yy * zz
	}
	d := sxx*syy - sxy*sxy
	if d != 0 {
		nz.Slope[0] = (sxz*syy - sxy*syz) / d
		nz.Slope[1] = (sxx*syz - sxy*sxz) / d
	}
}

func (nz *Normalization) trend(p vec3d.T) float64 {
	return nz.Slope[0]*(p[0]-nz.Centroid[0]) + nz.Slope[1]*(p[1]-nz.Centroid[1])
}

func (nz *Normalization) residual(p vec3d.T, w float64) float64 {
	return w - nz.Mean - nz.trend(p)
}

// slopeAlong is the trend gradient along the unit direction d, per distance unit.
func (nz *Normalization) slopeAlong(p, d vec3d.T) float64 {
	if nz.Mode&NormalizeTrend == 0 {
		return 0
	}
	sx, sy := nz.metric.AxisScale(p[1])
	s := nz.Slope[0] / sx * d[0]
	if nz.metric.Dimension() > 1 {
		s += nz.Slope[1] / sy * d[1]
	}
	return s
}

// Apply returns the normalized value and gradient observations.
func (nz *Normalization) Apply(values []ValueConstraint, gradients []GradientConstraint) ([]float64, []float64) {
	vobs := make([]float64, len(values))
	for i := range values {
		vobs[i] = nz.Normalize(values[i].Position, values[i].Value)
	}
	gobs := make([]float64, len(gradients))
	for i := range gradients {
		g := &gradients[i]
		gobs[i] = (g.Magnitude - nz.slopeAlong(g.Position, g.Direction)) / nz.Scale
	}
	return vobs, gobs
}

func (nz *Normalization) Normalize(p vec3d.T, w float64) float64 {
	return nz.residual(p, w) / nz.Scale
}

// Undo restores a normalized value at p to physical units.
func (nz *Normalization) Undo(p vec3d.T, w float64) float64 {
	return w*nz.Scale + nz.Mean + nz.trend(p)
}

// UndoGradient restores a normalized directional derivative along d at p.
func (nz *Normalization) UndoGradient(p, d vec3d.T, g float64) float64 {
	return g*nz.Scale + nz.slopeAlong(p, d)
}
