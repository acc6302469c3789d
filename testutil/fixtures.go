package testutil

import (
	"fmt"
	"slices"

	"github.com/hupe1980/meshkit/mesh"
)

// QuadGrid returns an nx by ny grid of unit QUAD4 cells whose lower left
// corner is at (x0, 0). It panics on invalid sizes.
func QuadGrid(nx, ny int, x0 float64) *mesh.Mesh {
	m, err := mesh.RegularGrid(mesh.Linspace(x0, x0+float64(nx), nx+1), mesh.Linspace(0, float64(ny), ny+1))
	if err != nil {
		panic(fmt.Sprintf("testutil: quad grid: %v", err))
	}

	return m
}

// HexGrid returns an nx by ny by nz grid of unit HEX8 cells.
func HexGrid(nx, ny, nz int) *mesh.Mesh {
	m, err := mesh.RegularGrid(
		mesh.Linspace(0, float64(nx), nx+1),
		mesh.Linspace(0, float64(ny), ny+1),
		mesh.Linspace(0, float64(nz), nz+1),
	)
	if err != nil {
		panic(fmt.Sprintf("testutil: hex grid: %v", err))
	}

	return m
}

// UnitHex returns one HEX8 cell over the unit cube in standard node order.
func UnitHex() *mesh.Mesh { return HexGrid(1, 1, 1) }

// Square returns one QUAD4 cell over [x0, x0+size] x [y0, y0+size].
func Square(x0, y0, size float64) *mesh.Mesh {
	b := mesh.NewBuilder(2, mesh.WithName("square"))
	n0 := b.AddNode(x0, y0)
	n1 := b.AddNode(x0+size, y0)
	n2 := b.AddNode(x0+size, y0+size)
	n3 := b.AddNode(x0, y0+size)
	b.AddElement(mesh.Quad4, n0, n1, n2, n3)

	m, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("testutil: square: %v", err))
	}

	return m
}

// Fins returns three QUAD4 cells in 3-D space hinged on the edge between
// nodes 0 and 1, which makes that edge non-manifold.
func Fins() *mesh.Mesh {
	b := mesh.NewBuilder(3, mesh.WithName("fins"))
	b.AddNode(0, 0, 0)
	b.AddNode(1, 0, 0)
	b.AddNode(1, 1, 0)
	b.AddNode(0, 1, 0)
	b.AddNode(1, -1, 0)
	b.AddNode(0, -1, 0)
	b.AddNode(1, 0, 1)
	b.AddNode(0, 0, 1)
	b.AddElement(mesh.Quad4, 0, 1, 2, 3)
	b.AddElement(mesh.Quad4, 1, 0, 5, 4)
	b.AddElement(mesh.Quad4, 0, 1, 6, 7)

	m, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("testutil: fins: %v", err))
	}

	return m
}

// Connectivity returns every element of r as its sorted node tuple mapped
// through coordinates, so that meshes with different node numbering can be
// compared. Each entry is the element type followed by the rounded corner
// coordinates in sorted order.
func Connectivity(r mesh.Reader) []string {
	var out []string

	for id, nodes := range mesh.Elements(r) {
		pts := make([]string, 0, len(nodes))
		for _, n := range nodes {
			if n == mesh.FaceSeparator {
				continue
			}

			pts = append(pts, fmt.Sprintf("%.6g", r.Coord(n)))
		}

		slices.Sort(pts)
		out = append(out, fmt.Sprintf("%s%v", id.Type, pts))
	}

	slices.Sort(out)

	return out
}
