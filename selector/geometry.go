package selector

import (
	"fmt"
	"slices"

	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
)

type region func(p []float64) bool

func box(lo, hi []float64) region {
	return func(p []float64) bool {
		for k := range p {
			if p[k] < lo[k] || p[k] > hi[k] {
				return false
			}
		}

		return true
	}
}

func sphere(center []float64, radius float64) region {
	return func(p []float64) bool { return geom.Distance(p, center) <= radius }
}

func checkDim(r mesh.Reader, pts ...[]float64) error {
	for _, p := range pts {
		if len(p) != r.SpaceDim() {
			return &mesh.DimensionError{Op: "select", SpaceDim: r.SpaceDim(), Detail: fmt.Sprintf("query point has %d coordinates", len(p))}
		}
	}

	return nil
}

func centroidIn(in region, pts ...[]float64) Selector {
	return leaf{cost: 1, check: func(r mesh.Reader) (func(mesh.ElementID) bool, error) {
		if err := checkDim(r, pts...); err != nil {
			return nil, err
		}

		return func(id mesh.ElementID) bool {
			c, err := mesh.Centroid(r, id)
			return err == nil && in(c)
		}, nil
	}}
}

// CentroidInBox matches elements whose centroid lies in the closed
// axis-aligned box [lo, hi].
func CentroidInBox(lo, hi []float64) Selector { return centroidIn(box(lo, hi), lo, hi) }

// CentroidInSphere matches elements whose centroid lies within radius of
// center.
func CentroidInSphere(center []float64, radius float64) Selector {
	return centroidIn(sphere(center, radius), center)
}

func nodesIn(all bool, in region, pts ...[]float64) Selector {
	return leaf{cost: 1, check: func(r mesh.Reader) (func(mesh.ElementID) bool, error) {
		if err := checkDim(r, pts...); err != nil {
			return nil, err
		}

		return func(id mesh.ElementID) bool {
			nodes, err := mesh.Element(r, id)
			if err != nil {
				return false
			}

			return matchNodes(nodes, all, func(n int) bool { return in(r.Coord(n)) })
		}, nil
	}}
}

// NodesInBox matches elements with all (or, when all is false, any) of
// their nodes in the closed box [lo, hi].
func NodesInBox(lo, hi []float64, all bool) Selector { return nodesIn(all, box(lo, hi), lo, hi) }

// NodesInSphere matches elements with all (or any) of their nodes within
// radius of center.
func NodesInSphere(center []float64, radius float64, all bool) Selector {
	return nodesIn(all, sphere(center, radius), center)
}

// NodeIDs matches elements with all (or any) of their nodes listed.
func NodeIDs(ids []int, all bool) Selector {
	set := slices.Clone(ids)
	slices.Sort(set)

	return constantNodes(all, func(n int) bool {
		_, found := slices.BinarySearch(set, n)
		return found
	})
}

func constantNodes(all bool, in func(n int) bool) Selector {
	return leaf{cost: 1, check: func(r mesh.Reader) (func(mesh.ElementID) bool, error) {
		return func(id mesh.ElementID) bool {
			nodes, err := mesh.Element(r, id)
			return err == nil && matchNodes(nodes, all, in)
		}, nil
	}}
}

func matchNodes(nodes []int, all bool, in func(n int) bool) bool {
	for _, n := range nodes {
		if n == mesh.FaceSeparator {
			continue
		}

		if in(n) != all {
			return !all
		}
	}

	return all
}
