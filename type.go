package greenspline

import "fmt"

type Method string

const (
	Sandwell1D        Method = "sandwell-1d"
	Sandwell2D        Method = "sandwell-2d"
	Sandwell3D        Method = "sandwell-3d"
	WesselBercovici1D Method = "wessel-bercovici-1d"
	WesselBercovici2D Method = "wessel-bercovici-2d"
	WesselBercovici3D Method = "wessel-bercovici-3d"
	MitasovaMitas2D   Method = "mitasova-mitas-2d"
	MitasovaMitas3D   Method = "mitasova-mitas-3d"
	Parker            Method = "parker"
	WesselBecker      Method = "wessel-becker"
)

var methods = []Method{
	Sandwell1D, Sandwell2D, Sandwell3D,
	WesselBercovici1D, WesselBercovici2D, WesselBercovici3D,
	MitasovaMitas2D, MitasovaMitas3D,
	Parker, WesselBecker,
}

// Methods lists every supported Green's function.
func Methods() []Method {
	return append([]Method(nil), methods...)
}

func (m Method) Dimension() int {
	switch m {
	case Sandwell1D, WesselBercovici1D:
		return 1
	case Sandwell3D, WesselBercovici3D, MitasovaMitas3D:
		return 3
	case Sandwell2D, WesselBercovici2D, MitasovaMitas2D, Parker, WesselBecker:
		return 2
	}
	return 0
}

func (m Method) Spherical() bool {
	return m == Parker || m == WesselBecker
}

// Tensioned reports whether the kernel depends on the tension parameter.
func (m Method) Tensioned() bool {
	switch m {
	case WesselBercovici1D, WesselBercovici2D, WesselBercovici3D,
		MitasovaMitas2D, MitasovaMitas3D, WesselBecker:
		return true
	}
	return false
}

func (m Method) valid() bool {
	return m.Dimension() != 0
}

type DistanceMode int

const (
	Cartesian1D DistanceMode = iota
	Cartesian2D
	FlatEarth
	GreatCircle
	SphericalCosine
	Cartesian3D
)

func (d DistanceMode) Dimension() int {
	switch d {
	case Cartesian1D:
		return 1
	case Cartesian3D:
		return 3
	}
	return 2
}

func (d DistanceMode) Geographic() bool {
	return d == FlatEarth || d == GreatCircle || d == SphericalCosine
}

// Planar reports whether a linear trend can be removed in this geometry.
func (d DistanceMode) Planar() bool {
	return d == Cartesian1D || d == Cartesian2D || d == FlatEarth
}

func (d DistanceMode) String() string {
	switch d {
	case Cartesian1D:
		return "cartesian-1d"
	case Cartesian2D:
		return "cartesian-2d"
	case FlatEarth:
		return "flat-earth"
	case GreatCircle:
		return "great-circle"
	case SphericalCosine:
		return "spherical-cosine"
	case Cartesian3D:
		return "cartesian-3d"
	}
	return fmt.Sprintf("distance-mode(%d)", int(d))
}

func (d DistanceMode) valid() bool {
	return d >= Cartesian1D && d <= Cartesian3D
}

type CutoffMode string

const (
	// CutoffCount keeps a fixed number of eigenvalues.
	CutoffCount CutoffMode = "count"
	// CutoffRatio keeps eigenvalues whose ratio to the largest exceeds Value.
	CutoffRatio CutoffMode = "ratio"
	// CutoffVariance keeps enough eigenvalues to explain a fraction Value of the variance.
	CutoffVariance CutoffMode = "variance"
)

type WeightKind string

const (
	// WeightSigma treats the weight column as a standard deviation.
	WeightSigma WeightKind = "sigma"
	// WeightDirect treats the weight column as the weight itself.
	WeightDirect WeightKind = "weight"
)
