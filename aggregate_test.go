package greenspline

import (
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	a := assert.New(t)

	values := []ValueConstraint{
		{Position: vec3d.T{0, 0}, Value: 1, Weight: 1},
		{Position: vec3d.T{5, 5}, Value: 7},
		{Position: vec3d.T{0.5, 0.25}, Value: 3, Weight: 3},
		{Position: vec3d.T{9, 0}, Value: 4},
	}
	out := Aggregate(values, vec3d.T{1, 1, 0}, WeightSigma)
	a.Len(out, 3)

	a.InDeltaSlice([]float64{0.25, 0.125, 0}, out[0].Position[:], 1e-15)
	a.Equal(2.0, out[0].Value)
	a.InDelta(math.Sqrt(10)/2, out[0].Weight, 1e-15)
	a.Equal(values[1], out[1])
	a.Equal(values[3], out[2])

	// 1/w adds like σ², giving 4/(1 + 1/3)
	out = Aggregate(values, vec3d.T{1, 1, 0}, WeightDirect)
	a.InDelta(3.0, out[0].Weight, 1e-15)
}

func TestAggregateWeights(t *testing.T) {
	a := assert.New(t)

	same := []ValueConstraint{
		{Position: vec3d.T{0.1}, Value: 1, Weight: 2},
		{Position: vec3d.T{0.2}, Value: 2, Weight: 2},
		{Position: vec3d.T{0.3}, Value: 3, Weight: 2},
		{Position: vec3d.T{0.4}, Value: 4, Weight: 2},
	}
	leaf := vec3d.T{1, 1, 1}
	a.InDelta(1.0, Aggregate(same, leaf, WeightSigma)[0].Weight, 1e-15)
	a.InDelta(8.0, Aggregate(same, leaf, WeightDirect)[0].Weight, 1e-15)

	same[2].Weight = 0
	a.Equal(0.0, Aggregate(same, leaf, WeightSigma)[0].Weight)
}

func TestAggregateExactDuplicates(t *testing.T) {
	a := assert.New(t)

	values := []ValueConstraint{
		{Position: vec3d.T{1.1, 2.2}, Value: 1},
		{Position: vec3d.T{1.1, 2.2}, Value: 2},
		{Position: vec3d.T{1.1, 2.3}, Value: 5},
	}
	out := Aggregate(values, vec3d.T{}, WeightSigma)
	a.Len(out, 2)
	a.Equal(vec3d.T{1.1, 2.2}, out[0].Position)
	a.Equal(1.5, out[0].Value)
	a.Equal(values[2], out[1])

	a.Equal(0.0, out[0].Weight)

	a.Nil(Aggregate(nil, vec3d.T{1, 1, 1}, WeightSigma))
}
