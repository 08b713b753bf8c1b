package greenspline

import (
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Convex is the convex hull of the horizontal positions of a point set.
type Convex struct {
	vertices []vec2d.T
	hull     []vec2d.T
	edges    []Edge
}

// Edge is a counter-clockwise hull edge with its outward unit normal.
type Edge struct {
	Start  vec2d.T
	End    vec2d.T
	Normal vec2d.T
}

func NewConvex(points []vec3d.T) *Convex {
	vertices := make([]vec2d.T, len(points))
	for i := range points {
		vertices[i] = vec2d.T{points[i][0], points[i][1]}
	}
	return &Convex{vertices: vertices}
}

func (c *Convex) Rect() vec2d.Rect {
	r := vec2d.Rect{Min: vec2d.MaxVal, Max: vec2d.MinVal}
	hull := c.Hull()
	for i := range hull {
		r.Extend(&hull[i])
	}
	return r
}

// Hull returns the hull vertices counter-clockwise, starting at the point
// with the smallest x.
func (c *Convex) Hull() []vec2d.T {
	if c.hull == nil && len(c.vertices) > 0 {
		minX, maxX := c.extremePoints()
		c.hull = append(c.quickHull(c.vertices, maxX, minX), c.quickHull(c.vertices, minX, maxX)...)
	}
	return c.hull
}

func (c *Convex) Edges() []Edge {
	if c.edges == nil {
		hull := c.Hull()
		if len(hull) < 3 {
			return nil
		}
		for i, start := range hull {
			end := hull[(i+1)%len(hull)]
			d := vec2d.Sub(&end, &start)
			normal := vec2d.T{d[1], -d[0]}
			normal.Normalize()
			c.edges = append(c.edges, Edge{start, end, normal})
		}
	}
	return c.edges
}

// InHull reports whether p lies inside or on the hull.
func (c *Convex) InHull(p vec2d.T) bool {
	edges := c.Edges()
	if len(edges) == 0 {
		return false
	}
	for i := range edges {
		e := &edges[i]
		v := vec2d.Sub(&p, &e.Start)
		tol := 1e-12 * (math.Abs(v[0]) + math.Abs(v[1]) + 1)
		if vec2d.Dot(&e.Normal, &v) > tol {
			return false
		}
	}
	return true
}

// Mask returns a lattice mask holding 1 inside the hull and NaN outside.
func (c *Convex) Mask(lat *Lattice) []float64 {
	mask := make([]float64, lat.Count())
	for i := range mask {
		p := lat.Node(i)
		if c.InHull(vec2d.T{p[0], p[1]}) {
			mask[i] = 1
		} else {
			mask[i] = math.NaN()
		}
	}
	return mask
}

func (c *Convex) quickHull(points []vec2d.T, start, end vec2d.T) []vec2d.T {
	left := make([]vec2d.T, 0, len(points))
	best, farthest := 0.0, vec2d.T{}
	for _, p := range points {
		d := distanceIndicator(p, start, end)
		if d > 0 {
			left = append(left, p)
			if d > best {
				best, farthest = d, p
			}
		}
	}
	if len(left) == 0 {
		return []vec2d.T{end}
	}
	return append(
		c.quickHull(left, farthest, end),
		c.quickHull(left, start, farthest)...)
}

func (c *Convex) extremePoints() (minX, maxX vec2d.T) {
	minX = vec2d.T{math.MaxFloat64, 0}
	maxX = vec2d.T{-math.MaxFloat64, 0}
	for _, p := range c.vertices {
		if p[0] < minX[0] {
			minX = p
		}
		if maxX[0] < p[0] {
			maxX = p
		}
	}
	return minX, maxX
}

func cross(lhs, rhs vec2d.T) float64 {
	return lhs[0]*rhs[1] - lhs[1]*rhs[0]
}

// distanceIndicator is positive when p lies left of the line start→end.
func distanceIndicator(p, start, end vec2d.T) float64 {
	vLine := vec2d.Sub(&end, &start)
	vPoint := vec2d.Sub(&p, &start)
	return cross(vLine, vPoint)
}

// HullMask masks lattice nodes outside the convex hull of the value
// constraints.
func (ip *Interpolator) HullMask(lat *Lattice) []float64 {
	values := ip.set.Values()
	pts := make([]vec3d.T, len(values))
	for i := range values {
		pts[i] = values[i].Position
	}
	return NewConvex(pts).Mask(lat)
}
