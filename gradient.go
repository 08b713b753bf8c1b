package greenspline

import (
	"fmt"
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// GradientLayout names the column layout of a gradient record.
type GradientLayout int

const (
	// AzimuthMagnitude is (azimuth, magnitude), azimuth clockwise from north in degrees.
	AzimuthMagnitude GradientLayout = iota
	// MagnitudeAzimuth is (magnitude, azimuth).
	MagnitudeAzimuth
	// DirectionMagnitude is (direction, magnitude), direction counter-clockwise from +x in degrees.
	DirectionMagnitude
	// VectorComponents is the gradient vector itself.
	VectorComponents
	// UnitVectorMagnitude is a unit direction followed by the magnitude.
	UnitVectorMagnitude
)

// Rotator turns 2-D vectors counter-clockwise by Degrees.
type Rotator struct {
	Degrees float64
}

func (r Rotator) RotateVector(v vec2d.T) vec2d.T {
	s, c := math.Sincos(degToRad(r.Degrees))
	return vec2d.T{c*v[0] - s*v[1], s*v[0] + c*v[1]}
}

func (r Rotator) Unit() vec2d.T {
	return r.RotateVector(vec2d.T{1, 0})
}

// GradientFromRecord converts one record of a dim-dimensional gradient file
// at position p into a constraint.
func GradientFromRecord(dim int, layout GradientLayout, p vec3d.T, rec []float64) (GradientConstraint, error) {
	g := GradientConstraint{Position: p}
	need := map[GradientLayout]int{
		AzimuthMagnitude:    2,
		MagnitudeAzimuth:    2,
		DirectionMagnitude:  2,
		VectorComponents:    dim,
		UnitVectorMagnitude: dim + 1,
	}
	want, ok := need[layout]
	if !ok {
		return g, fmt.Errorf("%w: unknown gradient layout %d", ErrConfiguration, int(layout))
	}
	if dim < 1 || dim > 3 {
		return g, fmt.Errorf("%w: gradient dimension %d", ErrDimension, dim)
	}
	if dim != 2 && (layout == AzimuthMagnitude || layout == MagnitudeAzimuth || layout == DirectionMagnitude) {
		return g, fmt.Errorf("%w: angular gradient layouts need 2-D data, got %d-D", ErrDimension, dim)
	}
	if len(rec) < want {
		return g, fmt.Errorf("%w: gradient record has %d columns, layout needs %d", ErrDimension, len(rec), want)
	}

	var dir vec3d.T
	switch layout {
	case AzimuthMagnitude, MagnitudeAzimuth, DirectionMagnitude:
		angle, mag := rec[0], rec[1]
		if layout == MagnitudeAzimuth {
			angle, mag = rec[1], rec[0]
		}
		if layout != DirectionMagnitude {
			angle = 90 - angle
		}
		u := Rotator{angle}.Unit()
		dir = vec3d.T{u[0], u[1], 0}
		g.Magnitude = mag
	case VectorComponents:
		copy(dir[:], rec[:dim])
		g.Magnitude = dir.Length()
	case UnitVectorMagnitude:
		copy(dir[:], rec[:dim])
		g.Magnitude = rec[dim]
	}
	if dir.Length() == 0 || math.IsNaN(dir.Length()) {
		return g, fmt.Errorf("%w: gradient record %v has no direction", ErrInvalidConstraint, rec)
	}
	dir.Normalize()
	g.Direction = dir
	return g, nil
}
