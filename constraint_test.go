package greenspline

import (
	"errors"
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(t *testing.T, mode DistanceMode, allowDuplicates bool) *ConstraintSet {
	t.Helper()
	return NewConstraintSet(testMetric(t, mode), allowDuplicates, zerolog.Nop())
}

func TestConstraintIdenticalDuplicateDropped(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian2D, false)
	i, err := cs.AddValue(vec3d.T{1, 2}, 5, 0)
	require.NoError(t, err)
	a.Equal(0, i)
	_, err = cs.AddValue(vec3d.T{3, 4}, 6, 0)
	require.NoError(t, err)
	// the unused z coordinate does not make the point distinct
	j, err := cs.AddValue(vec3d.T{1, 2, 9}, 5, 0)
	require.NoError(t, err)
	a.Equal(0, j)

	n, m, coreg := cs.Finalize()
	a.Equal(2, n)
	a.Equal(0, m)
	a.Equal(0, coreg)
	a.Equal(1, cs.Dropped())
	a.Len(cs.Centers(), 2)
}

func TestConstraintConflictingDuplicate(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian2D, false)
	_, err := cs.AddValue(vec3d.T{1, 2}, 5, 0)
	require.NoError(t, err)
	_, err = cs.AddValue(vec3d.T{1, 2}, 6, 0)
	a.True(errors.Is(err, ErrDuplicateConstraint))
	a.Len(cs.Values(), 1)

	cs = testSet(t, Cartesian2D, true)
	_, err = cs.AddValue(vec3d.T{1, 2}, 5, 0)
	require.NoError(t, err)
	k, err := cs.AddValue(vec3d.T{1, 2}, 6, 0)
	require.NoError(t, err)
	a.Equal(1, k)
	a.Len(cs.Warnings(), 1)
	a.Equal(1, cs.Duplicates())
	n, _, _ := cs.Finalize()
	a.Equal(2, n)
}

func TestConstraintGeographicDuplicate(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, GreatCircle, false)
	_, err := cs.AddValue(vec3d.T{-170, 10}, 1, 0)
	require.NoError(t, err)
	_, err = cs.AddValue(vec3d.T{190, 10}, 2, 0)
	a.True(errors.Is(err, ErrDuplicateConstraint))

	_, err = cs.AddValue(vec3d.T{20, 90}, 3, 0)
	require.NoError(t, err)
	_, err = cs.AddValue(vec3d.T{-60, 90}, 3, 0)
	require.NoError(t, err)
	a.Equal(1, cs.Dropped())
}

func TestConstraintCoregistration(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian2D, false)
	_, err := cs.AddValue(vec3d.T{0, 0}, 1, 0)
	require.NoError(t, err)
	_, err = cs.AddValue(vec3d.T{1, 0}, 2, 0)
	require.NoError(t, err)
	k, j, err := cs.AddGradient(vec3d.T{1, 0}, vec3d.T{0, 2}, 0.5)
	require.NoError(t, err)
	a.Equal(0, k)
	a.Equal(1, j)
	k, j, err = cs.AddGradient(vec3d.T{5, 5}, vec3d.T{1, 0}, 0.5)
	require.NoError(t, err)
	a.Equal(1, k)
	a.Equal(-1, j)

	n, m, coreg := cs.Finalize()
	a.Equal(2, n)
	a.Equal(2, m)
	a.Equal(1, coreg)
	a.Len(cs.Centers(), n+m-1)
	a.Equal(1, cs.Column(0))
	a.Equal(2, cs.Column(1))
	a.Equal(1, cs.Coregistered(0))
	a.Equal(-1, cs.Coregistered(1))
	a.Equal(vec3d.T{0, 1, 0}, cs.Gradients()[0].Direction)
}

func TestConstraintRetroactiveCoregistration(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian2D, false)
	_, _, err := cs.AddGradient(vec3d.T{3, 3}, vec3d.T{1, 1}, 2)
	require.NoError(t, err)
	_, err = cs.AddValue(vec3d.T{0, 0}, 1, 0)
	require.NoError(t, err)
	_, err = cs.AddValue(vec3d.T{3, 3}, 4, 0)
	require.NoError(t, err)

	a.Equal(1, cs.Coregistered(0))
	n, m, coreg := cs.Finalize()
	a.Equal(2, n)
	a.Equal(1, m)
	a.Equal(1, coreg)
	a.Equal(1, cs.Column(0))
	a.Len(cs.Centers(), 2)

	d := cs.Gradients()[0].Direction
	a.InDelta(1/math.Sqrt2, d[0], 1e-15)
	a.InDelta(1/math.Sqrt2, d[1], 1e-15)
}

func TestConstraintGradientDuplicates(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian2D, false)
	_, _, err := cs.AddGradient(vec3d.T{1, 1}, vec3d.T{2, 0}, 1)
	require.NoError(t, err)
	k, _, err := cs.AddGradient(vec3d.T{1, 1}, vec3d.T{1, 0}, 1)
	require.NoError(t, err)
	a.Equal(0, k)
	k, _, err = cs.AddGradient(vec3d.T{1, 1}, vec3d.T{0, 1}, 1)
	require.NoError(t, err)
	a.Equal(1, k)
	a.Equal(1, cs.Dropped())
	a.Len(cs.Gradients(), 2)
	_, _, err = cs.AddGradient(vec3d.T{4, 0}, vec3d.T{1, 0}, 1)
	require.NoError(t, err)

	// both directions at (1,1) share one center
	n, m, coreg := cs.Finalize()
	a.Equal(0, n)
	a.Equal(3, m)
	a.Equal(1, coreg)
	a.Equal([]vec3d.T{{1, 1}, {4, 0}}, cs.Centers())
	a.Equal(0, cs.Column(0))
	a.Equal(0, cs.Column(1))
	a.Equal(1, cs.Column(2))
}

func TestConstraintInvalid(t *testing.T) {
	a := assert.New(t)

	cs := testSet(t, Cartesian2D, false)
	_, _, err := cs.AddGradient(vec3d.T{1, 1}, vec3d.T{0, 0, 1}, 1)
	a.True(errors.Is(err, ErrInvalidConstraint))
	_, err = cs.AddValue(vec3d.T{math.NaN(), 1}, 1, 0)
	a.True(errors.Is(err, ErrInvalidConstraint))
	_, err = cs.AddValue(vec3d.T{0, math.Inf(1)}, 1, 0)
	a.True(errors.Is(err, ErrInvalidConstraint))
	_, err = cs.AddValue(vec3d.T{0, 0}, math.NaN(), 0)
	a.True(errors.Is(err, ErrInvalidConstraint))

	// NaN in an unused coordinate is ignored
	_, err = cs.AddValue(vec3d.T{0, 0, math.NaN()}, 1, 0)
	a.NoError(err)

	cs.Finalize()
	_, err = cs.AddValue(vec3d.T{4, 4}, 1, 0)
	a.True(errors.Is(err, ErrConfiguration))
	_, _, err = cs.AddGradient(vec3d.T{4, 4}, vec3d.T{1, 0}, 1)
	a.True(errors.Is(err, ErrConfiguration))
}
