package greenspline

import (
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
)

func planeValues(f func(x, y float64) float64, pts ...[2]float64) []ValueConstraint {
	out := make([]ValueConstraint, len(pts))
	for i, p := range pts {
		out[i] = ValueConstraint{Position: vec3d.T{p[0], p[1]}, Value: f(p[0], p[1])}
	}
	return out
}

func TestNormalizationPlane(t *testing.T) {
	a := assert.New(t)

	values := planeValues(func(x, y float64) float64 { return 3 + 2*x - y },
		[2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1}, [2]float64{1, 1}, [2]float64{2, 3})
	nz := NewNormalization(testMetric(t, Cartesian2D), NormalizeTrend, values, nil)

	a.Equal(NormalizeMean|NormalizeTrend, nz.Mode)
	a.InDelta(2.0, nz.Slope[0], 1e-12)
	a.InDelta(-1.0, nz.Slope[1], 1e-12)
	a.InDelta(0.8, nz.Centroid[0], 1e-12)
	a.InDelta(1.0, nz.Centroid[1], 1e-12)
	a.Equal(1.0, nz.Scale)

	vobs, _ := nz.Apply(values, nil)
	for _, v := range vobs {
		a.InDelta(0.0, v, 1e-12)
	}

	gradients := []GradientConstraint{
		{Position: vec3d.T{5, 5}, Direction: vec3d.T{1, 0}, Magnitude: 2},
		{Position: vec3d.T{5, 5}, Direction: vec3d.T{0, 1}, Magnitude: 0},
	}
	_, gobs := nz.Apply(values, gradients)
	a.InDelta(0.0, gobs[0], 1e-12)
	a.InDelta(1.0, gobs[1], 1e-12)
	a.InDelta(0.0, nz.UndoGradient(gradients[1].Position, gradients[1].Direction, 1), 1e-12)
}

func TestNormalizationRoundTrip(t *testing.T) {
	a := assert.New(t)

	values := planeValues(func(x, y float64) float64 { return 10 + x*x - 3*y },
		[2]float64{0, 0}, [2]float64{4, 1}, [2]float64{-2, 3}, [2]float64{1, -5}, [2]float64{7, 2})
	for _, mode := range []NormalizeMode{0, NormalizeRange, NormalizeTrend, NormalizeTrend | NormalizeRange} {
		nz := NewNormalization(testMetric(t, Cartesian2D), mode, values, nil)
		vobs, _ := nz.Apply(values, nil)
		for i, v := range values {
			a.InDelta(v.Value, nz.Undo(v.Position, vobs[i]), 1e-12, "mode %d", mode)
			a.InDelta(vobs[i], nz.Normalize(v.Position, v.Value), 1e-15)
		}
		if mode&NormalizeRange != 0 {
			peak := 0.0
			for _, v := range vobs {
				if v > peak {
					peak = v
				} else if -v > peak {
					peak = -v
				}
			}
			a.InDelta(1.0, peak, 1e-12)
		}
	}
}

func TestNormalizationLine(t *testing.T) {
	a := assert.New(t)

	values := []ValueConstraint{
		{Position: vec3d.T{0}, Value: 1},
		{Position: vec3d.T{1}, Value: 1.5},
		{Position: vec3d.T{2}, Value: 2},
		{Position: vec3d.T{3}, Value: 2.5},
	}
	nz := NewNormalization(testMetric(t, Cartesian1D), NormalizeTrend, values, nil)
	a.InDelta(1.75, nz.Mean, 1e-15)
	a.InDelta(1.5, nz.Centroid[0], 1e-15)
	a.InDelta(0.5, nz.Slope[0], 1e-12)
	a.InDelta(5.0, nz.Undo(vec3d.T{8}, 0), 1e-12)

	flat := []ValueConstraint{{Position: vec3d.T{2}, Value: 1}, {Position: vec3d.T{2}, Value: 3}}
	nz = NewNormalization(testMetric(t, Cartesian1D), NormalizeTrend, flat, nil)
	a.Equal(0.0, nz.Slope[0])
	a.Equal(2.0, nz.Mean)

	single := []ValueConstraint{{Position: vec3d.T{2}, Value: 5}}
	nz = NewNormalization(testMetric(t, Cartesian1D), NormalizeTrend|NormalizeRange, single, nil)
	a.Equal(5.0, nz.Mean)
	a.Equal(0.0, nz.Slope[0])
	a.Equal(1.0, nz.Scale)
}

func TestNormalizationGeographic(t *testing.T) {
	a := assert.New(t)

	values := planeValues(func(lon, lat float64) float64 { return 10 + lon },
		[2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1}, [2]float64{1, 1})

	nz := NewNormalization(testMetric(t, GreatCircle), NormalizeTrend, values, nil)
	a.Equal(NormalizeMean, nz.Mode)
	a.Equal([2]float64{0, 0}, nz.Slope)
	a.InDelta(10.5, nz.Mean, 1e-15)

	nz = NewNormalization(testMetric(t, FlatEarth), NormalizeTrend, values, nil)
	a.InDelta(1.0, nz.Slope[0], 1e-12)
	km := earthRadius * math.Pi / 180
	east := GradientConstraint{Position: vec3d.T{0, 0}, Direction: vec3d.T{1, 0}, Magnitude: 1 / km}
	_, gobs := nz.Apply(values, []GradientConstraint{east})
	a.InDelta(0.0, gobs[0], 1e-12)
}

func TestNormalizationRange(t *testing.T) {
	a := assert.New(t)

	values := []ValueConstraint{
		{Position: vec3d.T{0, 0}, Value: 1},
		{Position: vec3d.T{1, 0}, Value: 3},
		{Position: vec3d.T{0, 1}, Value: 8},
	}
	nz := NewNormalization(testMetric(t, Cartesian2D), NormalizeRange, values, nil)
	a.Equal(4.0, nz.Mean)
	a.Equal(4.0, nz.Scale)
	vobs, _ := nz.Apply(values, nil)
	a.Equal([]float64{-0.75, -0.25, 1}, vobs)

	constant := []ValueConstraint{{Position: vec3d.T{0, 0}, Value: 5}, {Position: vec3d.T{1, 0}, Value: 5}}
	gradients := []GradientConstraint{{Position: vec3d.T{2, 0}, Direction: vec3d.T{1, 0}, Magnitude: -2}}
	nz = NewNormalization(testMetric(t, Cartesian2D), NormalizeRange, constant, gradients)
	a.Equal(2.0, nz.Scale)
	_, gobs := nz.Apply(constant, gradients)
	a.Equal(-1.0, gobs[0])
}
