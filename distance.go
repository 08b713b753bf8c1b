package greenspline

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/golang/geo/s2"
)

// Metric measures separations between points for one DistanceMode.
// Geographic points store (lon, lat) in degrees.
type Metric struct {
	Mode DistanceMode
}

func NewMetric(mode DistanceMode) (Metric, error) {
	if !mode.valid() {
		return Metric{}, fmt.Errorf("%w: unknown distance mode %d", ErrConfiguration, int(mode))
	}
	return Metric{Mode: mode}, nil
}

func (m Metric) Dimension() int {
	return m.Mode.Dimension()
}

// Canonical zeroes unused coordinates and wraps geographic longitudes so that
// identical locations compare equal.
func (m Metric) Canonical(p vec3d.T) vec3d.T {
	for i := m.Dimension(); i < 3; i++ {
		p[i] = 0
	}
	if m.Mode.Geographic() {
		p[0] = wrapLongitude(p[0])
		if math.Abs(p[1]) == 90 {
			p[0] = 0
		}
	}
	return p
}

// Distance returns the separation of a and b; cos θ for SphericalCosine.
func (m Metric) Distance(a, b vec3d.T) float64 {
	switch m.Mode {
	case Cartesian1D:
		return math.Abs(a[0] - b[0])
	case Cartesian2D:
		return math.Hypot(a[0]-b[0], a[1]-b[1])
	case FlatEarth:
		dlon := wrapLongitude(a[0] - b[0])
		dlat := a[1] - b[1]
		return earthRadius * degToRad(math.Hypot(dlat, math.Cos(degToRad(0.5*(a[1]+b[1])))*dlon))
	case GreatCircle:
		return earthRadius * greatCircle(a, b)
	case SphericalCosine:
		return math.Cos(greatCircle(a, b))
	case Cartesian3D:
		d := vec3d.Sub(&a, &b)
		return d.Length()
	}
	return math.NaN()
}

// Coincident reports whether a separation returned by Distance means zero
// separation.
func (m Metric) Coincident(r float64) bool {
	if m.Mode == SphericalCosine {
		return r >= 1
	}
	return r == 0
}

func greatCircle(a, b vec3d.T) float64 {
	pa := s2.LatLngFromDegrees(a[1], a[0])
	pb := s2.LatLngFromDegrees(b[1], b[0])
	return pa.Distance(pb).Radians()
}

// DirectionCosine returns the cosine of the angle between the unit direction d
// and the unit vector pointing from b to a (from a to b when reversed). For
// geographic modes d is (east, north) at a and the reference direction is the
// great circle leaving b, evaluated at a.
func (m Metric) DirectionCosine(d, a, b vec3d.T, reversed bool) float64 {
	var c float64
	switch m.Mode {
	case Cartesian1D:
		c = d[0] * sign(a[0]-b[0])
	case Cartesian2D, Cartesian3D:
		u := vec3d.Sub(&a, &b)
		if m.Mode == Cartesian2D {
			u[2] = 0
		}
		l := u.Length()
		if l == 0 {
			return 0
		}
		c = vec3d.Dot(&d, &u) / l
	case FlatEarth:
		dx := wrapLongitude(a[0]-b[0]) * math.Cos(degToRad(0.5*(a[1]+b[1])))
		dy := a[1] - b[1]
		l := math.Hypot(dx, dy)
		if l == 0 {
			return 0
		}
		c = (d[0]*dx + d[1]*dy) / l
	default:
		az, ok := azimuth(a, b)
		if !ok {
			return 0
		}
		// the direction pointing away from b
		c = -(d[0]*math.Sin(az) + d[1]*math.Cos(az))
	}
	if reversed {
		return -c
	}
	return c
}

// azimuth returns the bearing at a towards b, clockwise from north in radians.
func azimuth(a, b vec3d.T) (float64, bool) {
	lat1, lat2 := degToRad(a[1]), degToRad(b[1])
	dlon := degToRad(b[0] - a[0])
	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)
	if x == 0 && y == 0 {
		return 0, false
	}
	return math.Atan2(y, x), true
}

// AxisScale returns the length of one coordinate unit along x and y at the
// given latitude, in the units Distance reports.
func (m Metric) AxisScale(lat float64) (float64, float64) {
	if m.Mode.Geographic() {
		ky := earthRadius * math.Pi / 180
		return ky * math.Cos(degToRad(lat)), ky
	}
	return 1, 1
}
