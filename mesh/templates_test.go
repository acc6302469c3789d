package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementType(t *testing.T) {
	tests := []struct {
		et      ElementType
		dim     Dimension
		nodes   int
		corners int
		poly    bool
	}{
		{Vertex, D0, 1, 1, false},
		{Seg3, D1, 3, 2, false},
		{Spline, D1, 0, 0, true},
		{Tri7, D2, 7, 3, false},
		{Quad9, D2, 9, 4, false},
		{Pgon, D2, 0, 0, true},
		{Tet10, D3, 10, 4, false},
		{Hex21, D3, 21, 8, false},
		{Phed, D3, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.et.String(), func(t *testing.T) {
			assert.Equal(t, tt.dim, tt.et.Dimension())
			assert.Equal(t, tt.nodes, tt.et.NumNodes())
			assert.Equal(t, tt.corners, tt.et.NumCorners())
			assert.Equal(t, tt.poly, tt.et.IsPoly())

			parsed, err := ParseElementType(tt.et.String())
			require.NoError(t, err)
			assert.Equal(t, tt.et, parsed)
		})
	}

	_, err := ParseElementType("OCTA12")
	require.ErrorIs(t, err, ErrStructural)
}

func TestSubEntities_Hex8Faces(t *testing.T) {
	hex := []int{10, 11, 12, 13, 14, 15, 16, 17}

	faces, err := SubEntities(Hex8, hex, D2)
	require.NoError(t, err)
	require.Len(t, faces, 6)

	for _, f := range faces {
		assert.Equal(t, Quad4, f.Type)
	}

	assert.Equal(t, []int{10, 13, 12, 11}, faces[0].Nodes)

	edges, err := SubEntities(Hex8, hex, D1)
	require.NoError(t, err)
	assert.Len(t, edges, 12)

	verts, err := SubEntities(Hex8, hex, D0)
	require.NoError(t, err)
	assert.Len(t, verts, 8)
}

func TestSubEntities_HighOrder(t *testing.T) {
	tri6 := []int{0, 1, 2, 3, 4, 5}

	edges, err := SubEntities(Tri6, tri6, D1)
	require.NoError(t, err)
	assert.Equal(t, []SubEntity{
		{Type: Seg3, Nodes: []int{0, 1, 3}},
		{Type: Seg3, Nodes: []int{1, 2, 4}},
		{Type: Seg3, Nodes: []int{2, 0, 5}},
	}, edges)

	tet10 := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	faces, err := SubEntities(Tet10, tet10, D2)
	require.NoError(t, err)
	require.Len(t, faces, 4)
	assert.Equal(t, Tri6, faces[0].Type)
	assert.Equal(t, []int{0, 2, 1, 6, 5, 4}, faces[0].Nodes)

	hex21 := make([]int, 21)
	for i := range hex21 {
		hex21[i] = i
	}

	faces, err = SubEntities(Hex21, hex21, D2)
	require.NoError(t, err)
	assert.Equal(t, Quad8, faces[1].Type)
	assert.Equal(t, []int{4, 5, 6, 7, 12, 13, 14, 15}, faces[1].Nodes)
}

func TestSubEntities_Poly(t *testing.T) {
	edges, err := SubEntities(Pgon, []int{4, 5, 6, 7, 8}, D1)
	require.NoError(t, err)
	assert.Len(t, edges, 5)
	assert.Equal(t, []int{8, 4}, edges[4].Nodes)

	// A tetrahedron expressed as a polyhedron.
	phed := JoinFaces([][]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}})

	faces, err := SubEntities(Phed, phed, D2)
	require.NoError(t, err)
	assert.Len(t, faces, 4)
	assert.Equal(t, Tri3, faces[0].Type)

	pedges, err := SubEntities(Phed, phed, D1)
	require.NoError(t, err)
	assert.Len(t, pedges, 6)

	verts, err := SubEntities(Phed, phed, D0)
	require.NoError(t, err)
	assert.Len(t, verts, 4)
}

func TestSubEntities_Errors(t *testing.T) {
	_, err := SubEntities(Tri3, []int{0, 1, 2}, D2)
	require.ErrorIs(t, err, ErrDimension)

	_, err = SubEntities(Tri3, []int{0, 1}, D1)
	require.ErrorIs(t, err, ErrStructural)

	_, err = SubEntities(Phed, []int{0, 1, 2}, D2)
	require.ErrorIs(t, err, ErrStructural)
}

func TestRegularGrid(t *testing.T) {
	m, err := RegularGrid(Linspace(0, 2, 3), Linspace(0, 1, 2))
	require.NoError(t, err)

	assert.Equal(t, 6, m.NumNodes())
	assert.Equal(t, []float64{1, 0}, m.Coord(1))

	b, ok := m.Block(Quad4)
	require.True(t, ok)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []int{0, 1, 4, 3}, b.Element(0))

	hex, err := RegularGrid(Linspace(0, 1, 3), Linspace(0, 1, 3), Linspace(0, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 27, hex.NumNodes())
	assert.Equal(t, 8, NumElements(hex))

	_, err = RegularGrid([]float64{0, 0})
	require.ErrorIs(t, err, ErrStructural)
}

func TestExtrude(t *testing.T) {
	quads, err := RegularGrid(Linspace(0, 1, 3), Linspace(0, 1, 3))
	require.NoError(t, err)

	hexes, err := Extrude(quads, []float64{0, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, 3, hexes.SpaceDim())
	assert.Equal(t, 27, hexes.NumNodes())

	b, ok := hexes.Block(Hex8)
	require.True(t, ok)
	assert.Equal(t, 8, b.Len())
	assert.Equal(t, []int{0, 1, 4, 3, 9, 10, 13, 12}, b.Element(0))

	_, err = Extrude(hexes, []float64{0, 1})
	require.ErrorIs(t, err, ErrDimension)
}
