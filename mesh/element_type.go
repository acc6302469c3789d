package mesh

import (
	"fmt"
	"strings"
)

// Dimension is a topological dimension.
type Dimension int

// Topological dimensions.
const (
	D0 Dimension = iota
	D1
	D2
	D3
)

// String returns the dimension as "0D".."3D".
func (d Dimension) String() string {
	return fmt.Sprintf("%dD", int(d))
}

// MinCorners returns the fewest distinct corners a non-degenerate element of
// dimension d can have.
func (d Dimension) MinCorners() int {
	return int(d) + 1
}

// ElementType identifies the shape and node layout of an element.
type ElementType uint8

// Element types, in their canonical iteration order.
const (
	InvalidType ElementType = iota
	Vertex
	Seg2
	Seg3
	Seg4
	Spline
	Tri3
	Tri6
	Tri7
	Quad4
	Quad8
	Quad9
	Pgon
	Tet4
	Tet10
	Hex8
	Hex21
	Phed
)

// FaceSeparator separates faces inside PHED connectivity.
const FaceSeparator = -1

// AllTypes lists every valid element type in canonical order.
var AllTypes = []ElementType{
	Vertex, Seg2, Seg3, Seg4, Spline,
	Tri3, Tri6, Tri7, Quad4, Quad8, Quad9, Pgon,
	Tet4, Tet10, Hex8, Hex21, Phed,
}

type typeInfo struct {
	name    string
	dim     Dimension
	nodes   int
	corners int
	poly    bool
	linear  ElementType
	// support lists, for every node past the corners, the sorted corners it
	// sits between (edge midpoints) or inside (face and body centres).
	support [][]int
}

var (
	edgeSupportTri  = [][]int{{0, 1}, {1, 2}, {0, 2}}
	edgeSupportQuad = [][]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}}
	edgeSupportTet  = [][]int{{0, 1}, {1, 2}, {0, 2}, {0, 3}, {1, 3}, {2, 3}}
	edgeSupportHex  = [][]int{
		{0, 1}, {1, 2}, {2, 3}, {0, 3},
		{4, 5}, {5, 6}, {6, 7}, {4, 7},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
)

var typeTable = [...]typeInfo{
	InvalidType: {name: "INVALID"},
	Vertex:      {name: "VERTEX", dim: D0, nodes: 1, corners: 1, linear: Vertex},
	Seg2:        {name: "SEG2", dim: D1, nodes: 2, corners: 2, linear: Seg2},
	Seg3:        {name: "SEG3", dim: D1, nodes: 3, corners: 2, linear: Seg2, support: [][]int{{0, 1}}},
	Seg4:        {name: "SEG4", dim: D1, nodes: 4, corners: 2, linear: Seg2, support: [][]int{{0}, {1}}},
	Spline:      {name: "SPLINE", dim: D1, poly: true, linear: Spline},
	Tri3:        {name: "TRI3", dim: D2, nodes: 3, corners: 3, linear: Tri3},
	Tri6:        {name: "TRI6", dim: D2, nodes: 6, corners: 3, linear: Tri3, support: edgeSupportTri},
	Tri7: {
		name: "TRI7", dim: D2, nodes: 7, corners: 3, linear: Tri3,
		support: append(append([][]int{}, edgeSupportTri...), []int{0, 1, 2}),
	},
	Quad4: {name: "QUAD4", dim: D2, nodes: 4, corners: 4, linear: Quad4},
	Quad8: {name: "QUAD8", dim: D2, nodes: 8, corners: 4, linear: Quad4, support: edgeSupportQuad},
	Quad9: {
		name: "QUAD9", dim: D2, nodes: 9, corners: 4, linear: Quad4,
		support: append(append([][]int{}, edgeSupportQuad...), []int{0, 1, 2, 3}),
	},
	Pgon:  {name: "PGON", dim: D2, poly: true, linear: Pgon},
	Tet4:  {name: "TET4", dim: D3, nodes: 4, corners: 4, linear: Tet4},
	Tet10: {name: "TET10", dim: D3, nodes: 10, corners: 4, linear: Tet4, support: edgeSupportTet},
	Hex8:  {name: "HEX8", dim: D3, nodes: 8, corners: 8, linear: Hex8},
	Hex21: {
		name: "HEX21", dim: D3, nodes: 21, corners: 8, linear: Hex8,
		support: append(append([][]int{}, edgeSupportHex...), []int{0, 1, 2, 3, 4, 5, 6, 7}),
	},
	Phed: {name: "PHED", dim: D3, poly: true, linear: Phed},
}

func (t ElementType) info() typeInfo {
	if int(t) >= len(typeTable) {
		return typeTable[InvalidType]
	}

	return typeTable[t]
}

// Valid reports whether t names a known element type.
func (t ElementType) Valid() bool {
	return t != InvalidType && int(t) < len(typeTable)
}

func (t ElementType) String() string {
	return t.info().name
}

// Dimension returns the topological dimension of t.
func (t ElementType) Dimension() Dimension {
	return t.info().dim
}

// NumNodes returns the fixed arity of t, or 0 for poly types.
func (t ElementType) NumNodes() int {
	return t.info().nodes
}

// NumCorners returns the number of corner nodes of a regular type.
func (t ElementType) NumCorners() int {
	return t.info().corners
}

// IsPoly reports whether t has variable arity (SPLINE, PGON, PHED).
func (t ElementType) IsPoly() bool {
	return t.info().poly
}

// Linear returns the corner-only counterpart of t (TRI6 -> TRI3).
func (t ElementType) Linear() ElementType {
	return t.info().linear
}

// IsHighOrder reports whether t carries nodes besides its corners.
func (t ElementType) IsHighOrder() bool {
	return len(t.info().support) > 0
}

// Support returns, for every non-corner node of t, the sorted corner indices
// that node is attached to. The result must not be modified.
func (t ElementType) Support() [][]int {
	return t.info().support
}

// ParseElementType parses a type name such as "QUAD4". Matching is
// case-insensitive.
func ParseElementType(s string) (ElementType, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for _, et := range AllTypes {
		if et.String() == up {
			return et, nil
		}
	}

	return InvalidType, &StructuralError{Op: "parse element type", Detail: fmt.Sprintf("unknown type %q", s)}
}

// MarshalText implements encoding.TextMarshaler.
func (t ElementType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &StructuralError{Op: "marshal element type", Detail: fmt.Sprintf("invalid type %d", uint8(t))}
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ElementType) UnmarshalText(b []byte) error {
	et, err := ParseElementType(string(b))
	if err != nil {
		return err
	}

	*t = et

	return nil
}
