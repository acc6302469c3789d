package geom

import (
	"github.com/hupe1980/meshkit/mesh"
)

// Points resolves a node index to its coordinates.
type Points func(node int) []float64

// ReaderPoints resolves nodes through a mesh.
func ReaderPoints(r mesh.Reader) Points {
	return r.Coord
}

// Predicates is the geometric collaborator of the topology algorithms.
//
// Element arguments are an element type, its node tuple and a resolver for
// node coordinates, so that callers can ask about elements that do not exist
// in any mesh yet (for example the image of an element under a tentative
// node merge).
type Predicates interface {
	// Centroid returns the centroid of the element.
	Centroid(et mesh.ElementType, nodes []int, at Points) []float64
	// Measure returns the unsigned length, area or volume of the element.
	Measure(et mesh.ElementType, nodes []int, at Points) float64
	// Contains reports whether p lies in the closed element.
	Contains(et mesh.ElementType, nodes []int, at Points, p []float64) bool
	// Intersect returns subject ∩ clip as disjoint polygons.
	Intersect(subject, clip Polygon) []Polygon
	// Subtract returns subject \ clip as disjoint polygons.
	Subtract(subject, clip Polygon) []Polygon
	// Tolerance returns the length below which two points coincide.
	Tolerance() float64
}

// DefaultTolerance is the tolerance of Default.
const DefaultTolerance = 1e-9

// Default returns planar predicates with DefaultTolerance.
func Default() Planar {
	return Planar{Eps: DefaultTolerance}
}

// RingOf returns the corner ring of a 2-D element projected onto its first
// two coordinates. High-order nodes are ignored.
func RingOf(et mesh.ElementType, nodes []int, at Points) Polygon {
	corners := mesh.CornerNodes(et, nodes)
	ring := make(Polygon, len(corners))

	for i, n := range corners {
		p := at(n)
		ring[i] = Point{X: p[0], Y: at2(p)}
	}

	return ring
}

func at2(p []float64) float64 {
	if len(p) > 1 {
		return p[1]
	}

	return 0
}

// Degenerate reports whether an element has a repeated node, too few
// corners, or a measure within the predicates' tolerance. Regular types are
// checked over the whole tuple, so a mid-edge node collapsed onto a corner
// counts. Vertices are never degenerate.
func Degenerate(p Predicates, et mesh.ElementType, nodes []int, at Points) bool {
	if et.Dimension() == mesh.D0 {
		return false
	}

	if !et.IsPoly() {
		seen := make(map[int]struct{}, len(nodes))
		for _, n := range nodes {
			if _, dup := seen[n]; dup {
				return true
			}

			seen[n] = struct{}{}
		}
	} else if len(mesh.CornerNodes(et, nodes)) < et.Dimension().MinCorners() {
		return true
	}

	return p.Measure(et, nodes, at) <= p.Tolerance()
}
