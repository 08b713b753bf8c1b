package greenspline

import (
	"errors"
	"math"
	"testing"

	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotator(t *testing.T) {
	a := assert.New(t)

	v := Rotator{90}.RotateVector(vec2d.T{1, 0})
	a.InDelta(0.0, v[0], 1e-15)
	a.InDelta(1.0, v[1], 1e-15)

	v = Rotator{-45}.RotateVector(vec2d.T{0, 2})
	a.InDelta(math.Sqrt2, v[0], 1e-15)
	a.InDelta(math.Sqrt2, v[1], 1e-15)

	u := Rotator{180}.Unit()
	a.InDelta(-1.0, u[0], 1e-15)
	a.InDelta(0.0, u[1], 1e-15)
}

func TestGradientFromRecord(t *testing.T) {
	a := assert.New(t)
	p := vec3d.T{3, 4}

	// due east, clockwise from north
	g, err := GradientFromRecord(2, AzimuthMagnitude, p, []float64{90, 2})
	require.NoError(t, err)
	a.Equal(p, g.Position)
	a.Equal(2.0, g.Magnitude)
	a.InDelta(1.0, g.Direction[0], 1e-15)
	a.InDelta(0.0, g.Direction[1], 1e-15)

	g, err = GradientFromRecord(2, MagnitudeAzimuth, p, []float64{3, 0})
	require.NoError(t, err)
	a.Equal(3.0, g.Magnitude)
	a.InDelta(0.0, g.Direction[0], 1e-15)
	a.InDelta(1.0, g.Direction[1], 1e-15)

	g, err = GradientFromRecord(2, DirectionMagnitude, p, []float64{90, 1})
	require.NoError(t, err)
	a.InDelta(0.0, g.Direction[0], 1e-15)
	a.InDelta(1.0, g.Direction[1], 1e-15)

	g, err = GradientFromRecord(3, VectorComponents, p, []float64{0, 3, 4})
	require.NoError(t, err)
	a.Equal(5.0, g.Magnitude)
	a.InDeltaSlice([]float64{0, 0.6, 0.8}, g.Direction[:], 1e-15)

	g, err = GradientFromRecord(1, UnitVectorMagnitude, p, []float64{-2, 0.5})
	require.NoError(t, err)
	a.Equal(0.5, g.Magnitude)
	a.Equal(vec3d.T{-1, 0, 0}, g.Direction)
}

func TestGradientFromRecordErrors(t *testing.T) {
	a := assert.New(t)
	p := vec3d.T{}

	_, err := GradientFromRecord(3, AzimuthMagnitude, p, []float64{0, 1})
	a.True(errors.Is(err, ErrDimension))
	_, err = GradientFromRecord(2, UnitVectorMagnitude, p, []float64{1, 0})
	a.True(errors.Is(err, ErrDimension))
	_, err = GradientFromRecord(2, VectorComponents, p, []float64{0, 0})
	a.True(errors.Is(err, ErrInvalidConstraint))
	_, err = GradientFromRecord(2, GradientLayout(42), p, []float64{0, 0})
	a.True(errors.Is(err, ErrConfiguration))
	_, err = GradientFromRecord(4, VectorComponents, p, []float64{1, 1, 1, 1})
	a.True(errors.Is(err, ErrDimension))
}
