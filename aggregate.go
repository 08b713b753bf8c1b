package greenspline

import (
	"errors"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

type voxel struct {
	sum   vec3d.T
	value float64
	// spread is Σσ² for WeightSigma and Σ1/w for WeightDirect.
	spread     float64
	unweighted bool
	num        int
	first      int
}

// weight returns the weight of the mean of the voxel's observations: σ/√n
// for equal standard deviations and n·w for equal direct weights. A voxel
// holding any unweighted observation stays unweighted.
func (v *voxel) weight(kind WeightKind) float64 {
	if v.unweighted || !(v.spread > 0) {
		return 0
	}
	n := float64(v.num)
	if kind == WeightDirect {
		return n * n / v.spread
	}
	return math.Sqrt(v.spread) / n
}

func minMaxVec3(ra []vec3d.T) (vec3d.T, vec3d.T, error) {
	if len(ra) == 0 {
		return vec3d.T{}, vec3d.T{}, errors.New("no point")
	}
	min, max := ra[0], ra[0]
	for i := 1; i < len(ra); i++ {
		v := ra[i]
		for j := range v {
			if v[j] < min[j] {
				min[j] = v[j]
			}
			if v[j] > max[j] {
				max[j] = v[j]
			}
		}
	}
	return min, max, nil
}

// Aggregate replaces value constraints falling into the same voxel of size
// leaf by one constraint at their mean position carrying their mean value.
// Weights are read as kind and combined into the weight of that mean. A zero
// leaf component groups only identical coordinates along
// that axis, so a zero leaf averages exact duplicates. The output keeps the
// order of first occurrence.
func Aggregate(values []ValueConstraint, leaf vec3d.T, kind WeightKind) []ValueConstraint {
	if len(values) == 0 {
		return nil
	}
	pos := make([]vec3d.T, len(values))
	for i := range values {
		pos[i] = values[i].Position
	}
	min, _, _ := minMaxVec3(pos)

	type key [3]float64
	voxels := make(map[key]*voxel, len(values))
	order := make([]*voxel, 0, len(values))
	for i := range values {
		p := vec3d.Sub(&pos[i], &min)
		var k key
		for j := 0; j < 3; j++ {
			if leaf[j] > 0 {
				k[j] = math.Floor(p[j] / leaf[j])
			} else {
				k[j] = p[j]
			}
		}
		v, ok := voxels[k]
		if !ok {
			v = &voxel{first: i}
			voxels[k] = v
			order = append(order, v)
		}
		v.num++
		v.sum.Add(&p)
		v.value += values[i].Value
		switch w := values[i].Weight; {
		case !(w > 0):
			v.unweighted = true
		case kind == WeightDirect:
			v.spread += 1 / w
		default:
			v.spread += w * w
		}
	}

	out := make([]ValueConstraint, 0, len(order))
	for _, v := range order {
		if v.num == 1 {
			out = append(out, values[v.first])
			continue
		}
		f := 1 / float64(v.num)
		c := v.sum
		c.Scale(f)
		c.Add(&min)
		for j := 0; j < 3; j++ {
			if !(leaf[j] > 0) {
				c[j] = values[v.first].Position[j]
			}
		}
		out = append(out, ValueConstraint{Position: c, Value: v.value * f, Weight: v.weight(kind)})
	}
	return out
}
