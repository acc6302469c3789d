package geom

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a planar point.
type Point = r2.Vec

// Polygon is a simple planar ring without a closing duplicate vertex.
type Polygon []Point

// SignedArea returns the shoelace area, positive for counter-clockwise rings.
func (p Polygon) SignedArea() float64 {
	a := 0.0
	for i := range p {
		a += r2.Cross(p[i], p[(i+1)%len(p)])
	}

	return a / 2
}

// Area returns the unsigned area.
func (p Polygon) Area() float64 { return math.Abs(p.SignedArea()) }

// Centroid returns the area centroid, or the vertex average for degenerate
// rings.
func (p Polygon) Centroid() Point {
	a := p.SignedArea()
	if math.Abs(a) < 1e-300 {
		var c Point
		for _, q := range p {
			c = r2.Add(c, q)
		}

		return r2.Scale(1/float64(len(p)), c)
	}

	var c Point

	for i := range p {
		q := p[(i+1)%len(p)]
		c = r2.Add(c, r2.Scale(r2.Cross(p[i], q), r2.Add(p[i], q)))
	}

	return r2.Scale(1/(6*a), c)
}

// CCW returns p oriented counter-clockwise.
func (p Polygon) CCW() Polygon {
	if p.SignedArea() < 0 {
		out := slices.Clone(p)
		slices.Reverse(out)

		return out
	}

	return p
}

// IsConvex reports whether every turn of the ring has the same sign, ignoring
// turns flatter than eps.
func (p Polygon) IsConvex(eps float64) bool {
	sign := 0

	for i := range p {
		c := cross(p[i], p[(i+1)%len(p)], p[(i+2)%len(p)])
		if math.Abs(c) <= eps {
			continue
		}

		s := 1
		if c < 0 {
			s = -1
		}

		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}

	return true
}

// Clean drops consecutive duplicates and collinear vertices.
func (p Polygon) Clean(eps float64) Polygon {
	out := make(Polygon, 0, len(p))

	for _, q := range p {
		if len(out) > 0 && dist(out[len(out)-1], q) <= eps {
			continue
		}

		out = append(out, q)
	}

	for len(out) > 1 && dist(out[0], out[len(out)-1]) <= eps {
		out = out[:len(out)-1]
	}

	for changed := true; changed && len(out) >= 3; {
		changed = false

		for i := range out {
			a, b, c := out[(i+len(out)-1)%len(out)], out[i], out[(i+1)%len(out)]
			if math.Abs(cross(a, b, c)) <= eps*math.Max(dist(a, c), 1) {
				out = slices.Delete(out, i, i+1)
				changed = true

				break
			}
		}
	}

	return out
}

// Triangulate ear-clips a simple ring and returns index triples into p,
// oriented like p.
func (p Polygon) Triangulate(eps float64) [][3]int {
	n := len(p)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	orient := 1.0
	if p.SignedArea() < 0 {
		orient = -1
	}

	var out [][3]int

	for guard := 0; len(idx) > 3 && guard < n*n; guard++ {
		clipped := false

		for k := range idx {
			i0, i1, i2 := idx[(k+len(idx)-1)%len(idx)], idx[k], idx[(k+1)%len(idx)]
			if orient*cross(p[i0], p[i1], p[i2]) <= eps {
				continue
			}

			if earBlocked(p, idx, i0, i1, i2, orient, eps) {
				continue
			}

			out = append(out, [3]int{i0, i1, i2})
			idx = slices.Delete(idx, k, k+1)
			clipped = true

			break
		}

		if !clipped {
			// Degenerate remainder: fan it.
			for k := 1; k+1 < len(idx); k++ {
				out = append(out, [3]int{idx[0], idx[k], idx[k+1]})
			}

			return out
		}
	}

	return append(out, [3]int{idx[0], idx[1], idx[2]})
}

func earBlocked(p Polygon, idx []int, i0, i1, i2 int, orient, eps float64) bool {
	for _, j := range idx {
		if j == i0 || j == i1 || j == i2 {
			continue
		}

		q := p[j]
		if orient*cross(p[i0], p[i1], q) >= -eps &&
			orient*cross(p[i1], p[i2], q) >= -eps &&
			orient*cross(p[i2], p[i0], q) >= -eps {
			return true
		}
	}

	return false
}

// ContainsPoint reports whether q lies inside or within eps of the ring.
func (p Polygon) ContainsPoint(q Point, eps float64) bool {
	inside := false

	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		if segmentDistance(q, a, b) <= eps {
			return true
		}

		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := a.X + (q.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if q.X < x {
				inside = !inside
			}
		}
	}

	return inside
}

// cross is twice the signed area of the triangle abc.
func cross(a, b, c Point) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

func dist(a, b Point) float64 {
	return r2.Norm(r2.Sub(a, b))
}

func segmentDistance(q, a, b Point) float64 {
	d := r2.Sub(b, a)

	l2 := r2.Norm2(d)
	if l2 == 0 {
		return dist(q, a)
	}

	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(q, a), d)/l2))

	return dist(q, r2.Add(a, r2.Scale(t, d)))
}

// SegmentDistance returns the distance from q to the segment ab.
func SegmentDistance(q, a, b Point) float64 { return segmentDistance(q, a, b) }
