package greenspline

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/rs/zerolog"
)

type ValueConstraint struct {
	Position vec3d.T
	Value    float64
	// Weight is a standard deviation or a weight depending on the WeightKind of
	// the solve; 0 means unweighted.
	Weight float64
}

type GradientConstraint struct {
	Position vec3d.T
	// Direction is a unit vector; (east, north) for geographic modes.
	Direction vec3d.T
	Magnitude float64
}

type location struct {
	value     int
	gradients []int
}

// ConstraintSet collects value and gradient constraints and assigns kernel
// centers. A gradient at the location of a value constraint is co-registered
// and shares that constraint's center.
type ConstraintSet struct {
	metric          Metric
	allowDuplicates bool
	log             zerolog.Logger

	values    []ValueConstraint
	gradients []GradientConstraint
	coreg     []int
	index     map[vec3d.T]*location

	columns  []int
	centers  []vec3d.T
	warnings   []string
	dropped    int
	duplicates int
	frozen     bool
}

func NewConstraintSet(metric Metric, allowDuplicates bool, log zerolog.Logger) *ConstraintSet {
	return &ConstraintSet{
		metric:          metric,
		allowDuplicates: allowDuplicates,
		log:             log,
		index:           make(map[vec3d.T]*location),
	}
}

func (cs *ConstraintSet) locate(p vec3d.T) *location {
	loc, ok := cs.index[p]
	if !ok {
		loc = &location{value: -1}
		cs.index[p] = loc
	}
	return loc
}

func checkFinite(p vec3d.T, dim int) error {
	for i := 0; i < dim; i++ {
		if math.IsNaN(p[i]) || math.IsInf(p[i], 0) {
			return fmt.Errorf("%w: non-finite coordinate %v", ErrInvalidConstraint, p)
		}
	}
	return nil
}

// AddValue adds an observation and returns its index. An identical
// observation at an existing location is dropped and the index of the kept
// constraint is returned.
func (cs *ConstraintSet) AddValue(p vec3d.T, value, weight float64) (int, error) {
	if cs.frozen {
		return -1, fmt.Errorf("%w: constraints are frozen after Finalize", ErrConfiguration)
	}
	p = cs.metric.Canonical(p)
	if err := checkFinite(p, cs.metric.Dimension()); err != nil {
		return -1, err
	}
	if math.IsNaN(value) {
		return -1, fmt.Errorf("%w: NaN observation at %v", ErrInvalidConstraint, p)
	}

	loc := cs.locate(p)
	if loc.value >= 0 {
		prev := cs.values[loc.value]
		if prev.Value == value {
			cs.dropped++
			cs.log.Debug().Int("kept", loc.value).Msg("identical value constraint dropped")
			return loc.value, nil
		}
		if !cs.allowDuplicates {
			return -1, fmt.Errorf("%w: constraints %d and %d at %v observe %g and %g",
				ErrDuplicateConstraint, loc.value, len(cs.values), p, prev.Value, value)
		}
		cs.duplicates++
		msg := fmt.Sprintf("constraints %d and %d share location %v with different observations", loc.value, len(cs.values), p)
		cs.warnings = append(cs.warnings, msg)
		cs.log.Warn().Int("first", loc.value).Int("second", len(cs.values)).Msg("duplicate location kept for SVD regularization")
	} else {
		loc.value = len(cs.values)
		for _, k := range loc.gradients {
			if cs.coreg[k] < 0 {
				cs.coreg[k] = loc.value
			}
		}
	}
	cs.values = append(cs.values, ValueConstraint{Position: p, Value: value, Weight: weight})
	return len(cs.values) - 1, nil
}

// AddGradient adds a directional derivative observation. It returns the
// gradient index and the index of the value constraint it is co-registered
// with, or -1.
func (cs *ConstraintSet) AddGradient(p, dir vec3d.T, magnitude float64) (int, int, error) {
	if cs.frozen {
		return -1, -1, fmt.Errorf("%w: constraints are frozen after Finalize", ErrConfiguration)
	}
	p = cs.metric.Canonical(p)
	if err := checkFinite(p, cs.metric.Dimension()); err != nil {
		return -1, -1, err
	}
	for i := cs.metric.Dimension(); i < 3; i++ {
		dir[i] = 0
	}
	if dir.Length() == 0 || math.IsNaN(dir.Length()) {
		return -1, -1, fmt.Errorf("%w: zero gradient direction at %v", ErrInvalidConstraint, p)
	}
	dir.Normalize()
	if math.IsNaN(magnitude) {
		return -1, -1, fmt.Errorf("%w: NaN gradient at %v", ErrInvalidConstraint, p)
	}

	loc := cs.locate(p)
	for _, k := range loc.gradients {
		g := cs.gradients[k]
		if g.Direction == dir && g.Magnitude == magnitude {
			cs.dropped++
			return k, cs.coreg[k], nil
		}
	}
	k := len(cs.gradients)
	cs.gradients = append(cs.gradients, GradientConstraint{Position: p, Direction: dir, Magnitude: magnitude})
	cs.coreg = append(cs.coreg, loc.value)
	loc.gradients = append(loc.gradients, k)
	return k, loc.value, nil
}

// Finalize freezes the set and assigns system columns: value constraints
// first, then one column per location holding only gradients. Gradients that
// share a center with an earlier column are counted as co-registered.
func (cs *ConstraintSet) Finalize() (n, m, coregistered int) {
	n, m = len(cs.values), len(cs.gradients)
	cs.columns = make([]int, m)
	cs.centers = make([]vec3d.T, 0, n+m)
	for i := range cs.values {
		cs.centers = append(cs.centers, cs.values[i].Position)
	}
	shared := make(map[vec3d.T]int)
	for k := range cs.gradients {
		if j := cs.coreg[k]; j >= 0 {
			cs.columns[k] = j
			coregistered++
			continue
		}
		p := cs.gradients[k].Position
		if j, ok := shared[p]; ok {
			cs.columns[k] = j
			coregistered++
			continue
		}
		shared[p] = len(cs.centers)
		cs.columns[k] = len(cs.centers)
		cs.centers = append(cs.centers, p)
	}
	cs.frozen = true
	return n, m, coregistered
}

func (cs *ConstraintSet) Values() []ValueConstraint {
	return cs.values
}

func (cs *ConstraintSet) Gradients() []GradientConstraint {
	return cs.gradients
}

// Centers returns the kernel center of every column after Finalize.
func (cs *ConstraintSet) Centers() []vec3d.T {
	return cs.centers
}

// Coregistered returns the value constraint gradient k shares a center with, or -1.
func (cs *ConstraintSet) Coregistered(k int) int {
	return cs.coreg[k]
}

// Column returns the system column of gradient k after Finalize.
func (cs *ConstraintSet) Column(k int) int {
	return cs.columns[k]
}

// Duplicates counts value constraints kept at an occupied location with a
// different observation.
func (cs *ConstraintSet) Duplicates() int {
	return cs.duplicates
}

// Dropped counts identical constraints that were discarded.
func (cs *ConstraintSet) Dropped() int {
	return cs.dropped
}

func (cs *ConstraintSet) Warnings() []string {
	return cs.warnings
}
