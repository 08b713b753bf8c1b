package greenspline

import (
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSystemValuesAndGradients(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian1D, false)
	for i, v := range []float64{1, 2, 1.5} {
		_, err := cs.AddValue(vec3d.T{float64(i)}, v, 0)
		require.NoError(t, err)
	}
	_, _, err := cs.AddGradient(vec3d.T{0.5}, vec3d.T{1}, 0.25)
	require.NoError(t, err)
	n, m, coreg := cs.Finalize()
	require.Equal(t, 3, n)
	require.Equal(t, 1, m)
	require.Equal(t, 0, coreg)

	metric := testMetric(t, Cartesian1D)
	obs := []float64{1, 2, 1.5, 0.25}
	sys := BuildSystem(cs, obs, testKernel(t, Sandwell1D, 0), metric, zerolog.Nop())

	a.Equal(4, sys.Rows)
	a.Equal(4, sys.Cols)
	a.True(sys.Square())
	a.Equal(obs, sys.B)

	want := [][]float64{
		{0, 1, 8, 0.125},
		{1, 0, 1, 0.125},
		{8, 1, 0, 3.375},
		// 3r² sign(x - c); the gradient's own center contributes nothing
		{0.75, -0.75, -6.75, 0},
	}
	for i := range want {
		for j := range want[i] {
			a.InDelta(want[i][j], sys.At(i, j), 1e-12, "A[%d][%d]", i, j)
		}
	}
	a.Equal(0.5, sys.RMin)
	a.Equal(2.0, sys.RMax)
}

func TestBuildSystemSymmetric(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian2D, false)
	pts := [][2]float64{{0, 0}, {1, 0.5}, {-2, 3}, {4, -1}, {2.5, 2.5}}
	for i, p := range pts {
		_, err := cs.AddValue(vec3d.T{p[0], p[1]}, float64(i), 1)
		require.NoError(t, err)
	}
	cs.Finalize()
	sys := BuildSystem(cs, []float64{0, 1, 2, 3, 4}, testKernel(t, WesselBercovici2D, 0.4), testMetric(t, Cartesian2D), zerolog.Nop())

	for i := 0; i < sys.Rows; i++ {
		a.Equal(0.0, sys.At(i, i))
		a.Equal(1.0, sys.Weights[i])
		for j := 0; j < sys.Cols; j++ {
			a.Equal(sys.At(i, j), sys.At(j, i))
		}
	}
}

func TestBuildSystemCoregistered(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian2D, false)
	_, err := cs.AddValue(vec3d.T{0, 0}, 1, 0)
	require.NoError(t, err)
	_, err = cs.AddValue(vec3d.T{3, 4}, 2, 0)
	require.NoError(t, err)
	_, _, err = cs.AddGradient(vec3d.T{3, 4}, vec3d.T{1, 0}, 0.1)
	require.NoError(t, err)
	cs.Finalize()

	k := testKernel(t, Sandwell2D, 0)
	sys := BuildSystem(cs, []float64{1, 2, 0.1}, k, testMetric(t, Cartesian2D), zerolog.Nop())
	a.Equal(3, sys.Rows)
	a.Equal(2, sys.Cols)
	a.False(sys.Square())

	// gradient at (3,4) along x against the center at the origin
	a.InDelta(k.DGDR(5)*0.6, sys.At(2, 0), 1e-12)
	a.Equal(0.0, sys.At(2, 1))
}
