package greenspline

import (
	"fmt"
	"math"
)

const (
	eulerGamma = 0.5772156649015328606065120900824024310422
	invSqrtPi  = 0.5641895835477562869480794515607725858441
	// km, mean radius of the Earth
	earthRadius = 6371.0087714
)

func degToRad(angle float64) float64 {
	return angle * math.Pi / 180
}

func pow3(x float64) float64 {
	return x * x * x
}

// dilog is Spence's function Li2(x) for x in [0, 1].
func dilog(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x <= 0:
		return 0
	case x >= 1:
		return math.Pi * math.Pi / 6
	case x > 0.5:
		return math.Pi*math.Pi/6 - math.Log(x)*math.Log1p(-x) - dilog(1-x)
	}
	sum, term := 0.0, 1.0
	for k := 1; k < 200; k++ {
		term *= x
		add := term / float64(k*k)
		sum += add
		if add < 1e-17*sum {
			break
		}
	}
	return sum
}

// wrapLongitude maps lon into [-180, 180).
func wrapLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func memoryFootprint(values int) string {
	units := []string{"bytes", "kb", "Mb", "Gb", "Tb"}
	size := float64(values) * 8
	k := 0
	for size >= 1024 && k < len(units)-1 {
		size /= 1024
		k++
	}
	return fmt.Sprintf("%.1f %s", size, units[k])
}
