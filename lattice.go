package greenspline

import (
	"fmt"
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Lattice is a regular 1-, 2- or 3-D output grid. Nodes are stored row by row
// starting with the northernmost (largest y) row, then layer by layer upward
// in z.
type Lattice struct {
	Dimension int
	Min, Max  vec3d.T
	Inc       vec3d.T
	// Pixel places nodes at cell centers instead of on the grid lines.
	Pixel bool

	n [3]int
}

func NewLattice(dim int, min, max, inc vec3d.T, pixel bool) (*Lattice, error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("%w: lattice dimension %d", ErrDimension, dim)
	}
	l := &Lattice{Dimension: dim, Min: min, Max: max, Inc: inc, Pixel: pixel, n: [3]int{1, 1, 1}}
	for i := 0; i < dim; i++ {
		if !(inc[i] > 0) {
			return nil, fmt.Errorf("%w: lattice increment %g along axis %d", ErrConfiguration, inc[i], i)
		}
		if max[i] < min[i] {
			return nil, fmt.Errorf("%w: lattice range [%g, %g] along axis %d", ErrConfiguration, min[i], max[i], i)
		}
		cells := int(math.Round((max[i] - min[i]) / inc[i]))
		if pixel {
			l.n[i] = cells
		} else {
			l.n[i] = cells + 1
		}
		if l.n[i] < 1 {
			return nil, fmt.Errorf("%w: empty lattice along axis %d", ErrConfiguration, i)
		}
	}
	for i := dim; i < 3; i++ {
		l.Min[i], l.Max[i], l.Inc[i] = 0, 0, 0
	}
	return l, nil
}

// Size returns the node counts along x, y and z.
func (l *Lattice) Size() (int, int, int) {
	return l.n[0], l.n[1], l.n[2]
}

func (l *Lattice) Count() int {
	return l.n[0] * l.n[1] * l.n[2]
}

func (l *Lattice) Index(col, row, layer int) int {
	return (layer*l.n[1]+row)*l.n[0] + col
}

func (l *Lattice) offset() float64 {
	if l.Pixel {
		return 0.5
	}
	return 0
}

// Node returns the coordinates of node idx.
func (l *Lattice) Node(idx int) vec3d.T {
	col := idx % l.n[0]
	row := (idx / l.n[0]) % l.n[1]
	layer := idx / (l.n[0] * l.n[1])
	off := l.offset()

	var p vec3d.T
	p[0] = l.Min[0] + (float64(col)+off)*l.Inc[0]
	if l.Dimension > 1 {
		p[1] = l.Max[1] - (float64(row)+off)*l.Inc[1]
	}
	if l.Dimension > 2 {
		p[2] = l.Min[2] + (float64(layer)+off)*l.Inc[2]
	}
	return p
}

// Nodes returns every node in storage order.
func (l *Lattice) Nodes() []vec3d.T {
	out := make([]vec3d.T, l.Count())
	for i := range out {
		out[i] = l.Node(i)
	}
	return out
}

// Spacing returns the increments along the used axes.
func (l *Lattice) Spacing() []float64 {
	return append([]float64(nil), l.Inc[:l.Dimension]...)
}

func (l *Lattice) Rect() vec2d.Rect {
	return vec2d.Rect{Min: vec2d.T{l.Min[0], l.Min[1]}, Max: vec2d.T{l.Max[0], l.Max[1]}}
}
