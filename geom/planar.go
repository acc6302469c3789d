package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/meshkit/mesh"
)

// Planar implements Predicates with straight-sided geometry: high-order
// elements are measured through their corners, faces are fan-triangulated
// from their centroid, and polygon clipping decomposes non-convex rings into
// triangles.
type Planar struct {
	Eps float64
}

var _ Predicates = Planar{}

// Tolerance returns Eps.
func (g Planar) Tolerance() float64 { return g.Eps }

// Centroid returns the average of the element's corners.
func (g Planar) Centroid(et mesh.ElementType, nodes []int, at Points) []float64 {
	corners := mesh.CornerNodes(et, nodes)

	var c []float64

	for _, n := range corners {
		p := at(n)
		if c == nil {
			c = make([]float64, len(p))
		}

		for k, x := range p {
			c[k] += x
		}
	}

	for k := range c {
		c[k] /= float64(len(corners))
	}

	return c
}

// Measure returns length, area or volume.
func (g Planar) Measure(et mesh.ElementType, nodes []int, at Points) float64 {
	switch et.Dimension() {
	case mesh.D1:
		if et == mesh.Spline {
			l := 0.0
			for i := 1; i < len(nodes); i++ {
				l += distance(at(nodes[i-1]), at(nodes[i]))
			}

			return l
		}

		return distance(at(nodes[0]), at(nodes[1]))
	case mesh.D2:
		return r3.Norm(newell(ringPoints(mesh.CornerNodes(et, nodes), at))) / 2
	case mesh.D3:
		faces, err := facesOf(et, nodes)
		if err != nil {
			return 0
		}

		return math.Abs(signedVolume(faces, at))
	}

	return 0
}

// Contains reports whether p lies in the closed element, within Eps.
func (g Planar) Contains(et mesh.ElementType, nodes []int, at Points, p []float64) bool {
	switch et.Dimension() {
	case mesh.D0:
		return distance(at(nodes[0]), p) <= g.Eps
	case mesh.D1:
		a, b := at(nodes[0]), at(nodes[1])
		return segDistanceN(p, a, b) <= g.Eps
	case mesh.D2:
		ring := RingOf(et, nodes, at)
		return ring.ContainsPoint(Point{X: p[0], Y: at2(p)}, g.Eps)
	case mesh.D3:
		faces, err := facesOf(et, nodes)
		if err != nil {
			return false
		}

		sign := 1.0
		if signedVolume(faces, at) < 0 {
			sign = -1
		}

		for _, f := range faces {
			pts := ringPoints(f, at)
			nrm := newell(pts)
			l := r3.Norm(nrm)

			if l == 0 {
				continue
			}

			d := r3.Dot(r3.Scale(1/l, nrm), r3.Sub(vec(p), average(pts)))

			if sign*d > g.Eps {
				return false
			}
		}

		return true
	}

	return false
}

// Intersect returns subject ∩ clip as disjoint polygons.
func (g Planar) Intersect(subject, clip Polygon) []Polygon {
	var out []Polygon

	for _, s := range convexParts(subject, g.Eps) {
		for _, c := range convexParts(clip, g.Eps) {
			if p := convexIntersect(s, c, g.Eps); p != nil {
				out = append(out, p)
			}
		}
	}

	return out
}

// Subtract returns subject \ clip as disjoint polygons.
func (g Planar) Subtract(subject, clip Polygon) []Polygon {
	pieces := convexParts(subject, g.Eps)

	for _, c := range convexParts(clip, g.Eps) {
		var next []Polygon
		for _, p := range pieces {
			next = append(next, convexSubtract(p, c, g.Eps)...)
		}

		pieces = next
	}

	return pieces
}

// facesOf returns the outward corner rings of a volume element.
func facesOf(et mesh.ElementType, nodes []int) ([][]int, error) {
	if et == mesh.Phed {
		return mesh.SplitFaces(nodes)
	}

	subs, err := mesh.SubEntities(et, nodes, mesh.D2)
	if err != nil {
		return nil, err
	}

	out := make([][]int, len(subs))
	for i, s := range subs {
		out[i] = mesh.CornerNodes(s.Type, s.Nodes)
	}

	return out, nil
}

// signedVolume applies the divergence theorem over centroid-fanned faces,
// relative to the first vertex of the first face.
func signedVolume(faces [][]int, at Points) float64 {
	if len(faces) == 0 || len(faces[0]) == 0 {
		return 0
	}

	o := vec(at(faces[0][0]))
	v := 0.0

	for _, f := range faces {
		pts := ringPoints(f, at)
		for i := range pts {
			pts[i] = r3.Sub(pts[i], o)
		}

		c := average(pts)

		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			v += det3(c, a, b)
		}
	}

	return v / 6
}

func ringPoints(nodes []int, at Points) []r3.Vec {
	out := make([]r3.Vec, len(nodes))
	for i, n := range nodes {
		out[i] = vec(at(n))
	}

	return out
}

// vec embeds a 1-, 2- or 3-component coordinate in 3-D space.
func vec(p []float64) r3.Vec {
	return r3.Vec{X: coord(p, 0), Y: coord(p, 1), Z: coord(p, 2)}
}

func coord(p []float64, k int) float64 {
	if k < len(p) {
		return p[k]
	}

	return 0
}

// newell returns twice the vector area of a closed ring. Edges are taken
// relative to the first vertex, which keeps the sums small far from the
// origin.
func newell(pts []r3.Vec) r3.Vec {
	var n r3.Vec
	if len(pts) == 0 {
		return n
	}

	o := pts[0]
	for i := range pts {
		n = r3.Add(n, r3.Cross(r3.Sub(pts[i], o), r3.Sub(pts[(i+1)%len(pts)], o)))
	}

	return n
}

func average(pts []r3.Vec) r3.Vec {
	var c r3.Vec
	for _, p := range pts {
		c = r3.Add(c, p)
	}

	return r3.Scale(1/float64(len(pts)), c)
}

// det3 is the scalar triple product a . (b x c).
func det3(a, b, c r3.Vec) float64 {
	return r3.Dot(a, r3.Cross(b, c))
}

func distance(a, b []float64) float64 {
	s := 0.0
	for k := range max(len(a), len(b)) {
		d := coord(a, k) - coord(b, k)
		s += d * d
	}

	return math.Sqrt(s)
}

// Distance returns the Euclidean distance between two points of any
// dimension.
func Distance(a, b []float64) float64 { return distance(a, b) }

func segDistanceN(p, a, b []float64) float64 {
	n := max(len(p), len(a), len(b))
	ab, ap := 0.0, 0.0

	for k := range n {
		d := coord(b, k) - coord(a, k)
		ab += d * d
		ap += d * (coord(p, k) - coord(a, k))
	}

	t := 0.0
	if ab > 0 {
		t = math.Max(0, math.Min(1, ap/ab))
	}

	s := 0.0

	for k := range n {
		d := coord(p, k) - (coord(a, k) + t*(coord(b, k)-coord(a, k)))
		s += d * d
	}

	return math.Sqrt(s)
}
