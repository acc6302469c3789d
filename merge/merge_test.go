package merge

import (
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/testutil"
)

// splitQuads returns two unit quads side by side whose shared edge nodes are
// duplicated: nodes 1/4 and 2/7 coincide.
func splitQuads(t *testing.T) *mesh.Mesh {
	t.Helper()

	b := mesh.NewBuilder(2)
	b.AddNode(0, 0)
	b.AddNode(1, 0)
	b.AddNode(1, 1)
	b.AddNode(0, 1)
	b.AddNode(1, 0)
	b.AddNode(2, 0)
	b.AddNode(2, 1)
	b.AddNode(1, 1)
	b.AddElement(mesh.Quad4, 0, 1, 2, 3)
	b.AddElement(mesh.Quad4, 4, 5, 6, 7)

	m, err := b.Build()
	require.NoError(t, err)

	return m
}

func TestDuplicates(t *testing.T) {
	m := splitQuads(t)

	assert.Equal(t, [][]int{{1, 4}, {2, 7}}, Duplicates(m, 1e-9))
	assert.Equal(t, [][]int{{1, 4}, {2, 7}}, Duplicates(m, 0), "coincident nodes cluster at zero tolerance")
	assert.Empty(t, Duplicates(testutil.QuadGrid(1, 1, 0), 0.5))
}

func TestMergeNodes(t *testing.T) {
	m := splitQuads(t)
	before := append([]float64(nil), m.Coords().Data()...)

	res, err := MergeNodes(m, 1e-9)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Mesh.NumNodes())
	assert.Equal(t, [][]int{{1, 4}, {2, 7}}, res.Merged)
	assert.Zero(t, res.Diagnostics.Len())
	assert.NoError(t, res.Diagnostics.Err())
	assert.Equal(t, []int{0, 1, 2, 3, 1, 4, 5, 2}, res.NodeMap)

	b, _ := res.Mesh.Block(mesh.Quad4)
	assert.Equal(t, []int{1, 4, 5, 2}, b.Element(1))

	assert.Equal(t, before, m.Coords().Data(), "source coordinates are untouched")
}

func TestMergeNodesCentroid(t *testing.T) {
	b := mesh.NewBuilder(2)
	b.AddNode(0, 0)
	b.AddNode(2e-7, 0)
	b.AddNode(1, 0)
	b.AddElement(mesh.Seg2, 0, 2)
	b.AddElement(mesh.Seg2, 1, 2)

	m, err := b.Build()
	require.NoError(t, err)

	res, err := MergeNodes(m, 1e-6, WithCentroid())
	require.NoError(t, err)
	require.Equal(t, 2, res.Mesh.NumNodes())
	assert.InDelta(t, 1e-7, res.Mesh.Coord(0)[0], 1e-15)

	res, err = MergeNodes(m, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, res.Mesh.Coord(0))
}

func TestMergeNodesAmbiguous(t *testing.T) {
	b := mesh.NewBuilder(1)
	for _, x := range []float64{0, 0.6, 1.2, 10} {
		b.AddElement(mesh.Vertex, b.AddNode(x))
	}

	m, err := b.Build()
	require.NoError(t, err)

	res, err := MergeNodes(m, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Mesh.NumNodes())
	require.Len(t, res.Diagnostics.Ambiguous, 1)
	assert.Equal(t, []int{0, 1, 2}, res.Diagnostics.Ambiguous[0].Nodes)
	assert.InDelta(t, 1.2, res.Diagnostics.Ambiguous[0].Diameter, 1e-12)
	assert.ErrorIs(t, res.Diagnostics.Err(), mesh.ErrToleranceAmbiguity)

	_, err = MergeNodes(m, 1, WithStrict())
	assert.ErrorIs(t, err, mesh.ErrToleranceAmbiguity)
}

func TestMergeNodesRejectsDegenerate(t *testing.T) {
	b := mesh.NewBuilder(2)
	b.AddNode(0, 0)
	b.AddNode(1e-4, 0)
	b.AddNode(0, 1)
	b.AddNode(5, 5)
	b.AddNode(5, 5+1e-5)
	b.AddElement(mesh.Tri3, 0, 1, 2)
	b.AddElement(mesh.Vertex, 3)
	b.AddElement(mesh.Vertex, 4)

	m, err := b.Build()
	require.NoError(t, err)

	res, err := MergeNodes(m, 1e-3)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics.Rejected, 1)
	rej := res.Diagnostics.Rejected[0]
	assert.Equal(t, mesh.ElementID{Type: mesh.Tri3, Index: 0}, rej.Element)
	assert.ErrorIs(t, rej, mesh.ErrValidity)

	assert.Equal(t, [][]int{{3, 4}}, res.Merged)
	assert.Equal(t, 4, res.Mesh.NumNodes())

	tri, _ := res.Mesh.Block(mesh.Tri3)
	assert.Equal(t, []int{0, 1, 2}, tri.Element(0))
}

func TestMergeNodesRejectsCollapsedHighOrder(t *testing.T) {
	tests := []struct {
		name   string
		et     mesh.ElementType
		coords [][]float64
		want   []int
	}{
		{
			name: "tri6 mid-edge onto corner",
			et:   mesh.Tri6,
			coords: [][]float64{
				{0, 0}, {1, 0}, {0, 1},
				{1e-9, 0}, {0.5, 0.5}, {0, 0.5},
			},
			want: []int{0, 3},
		},
		{
			name: "quad8 mid-edge onto corner",
			et:   mesh.Quad8,
			coords: [][]float64{
				{0, 0}, {1, 0}, {1, 1}, {0, 1},
				{0.5, 0}, {1, 0.5}, {1 - 1e-9, 1}, {0, 0.5},
			},
			want: []int{2, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mesh.NewBuilder(2)
			nodes := make([]int, len(tt.coords))
			for i, p := range tt.coords {
				nodes[i] = b.AddNode(p...)
			}
			b.AddElement(tt.et, nodes...)

			m, err := b.Build()
			require.NoError(t, err)

			res, err := MergeNodes(m, 1e-6)
			require.NoError(t, err)

			assert.Empty(t, res.Merged)
			require.Len(t, res.Diagnostics.Rejected, 1)
			assert.Equal(t, mesh.ElementID{Type: tt.et, Index: 0}, res.Diagnostics.Rejected[0].Element)

			blk, _ := res.Mesh.Block(tt.et)
			assert.Equal(t, nodes, blk.Element(0))
			assert.Len(t, slices.Compact(slices.Sorted(slices.Values(blk.Element(0)))), len(nodes))
		})
	}
}

func TestMergeNodesNegativeTolerance(t *testing.T) {
	_, err := MergeNodes(splitQuads(t), -1)
	assert.ErrorIs(t, err, mesh.ErrStructural)
}

func TestSnap(t *testing.T) {
	subject := testutil.Square(1e-7, 0, 1)
	reference := testutil.QuadGrid(2, 1, 0)

	res, err := Snap(subject, reference, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Moved)
	assert.Equal(t, []float64{0, 0}, res.Mesh.Coord(0))
	assert.Equal(t, []float64{1e-7, 0}, subject.Coord(0), "subject is untouched")

	crowded := mesh.NewBuilder(2)
	crowded.AddElement(mesh.Vertex, crowded.AddNode(0, 0))
	crowded.AddElement(mesh.Vertex, crowded.AddNode(0, 1e-7))

	ref, err := crowded.Build()
	require.NoError(t, err)

	res, err = Snap(subject, ref, 1e-6)
	require.NoError(t, err)
	assert.Zero(t, res.Moved)
	require.Len(t, res.Diagnostics.Ambiguous, 1)
	assert.Equal(t, []int{0, 1}, res.Diagnostics.Ambiguous[0].Nodes)

	_, err = Snap(subject, ref, 1e-6, WithStrict())
	assert.ErrorIs(t, err, mesh.ErrToleranceAmbiguity)

	_, err = Snap(subject, testutil.UnitHex(), 1e-6)
	assert.ErrorIs(t, err, mesh.ErrDimension)
}

func TestSnapRejectsCollapse(t *testing.T) {
	b := mesh.NewBuilder(2)
	b.AddElement(mesh.Tri3, b.AddNode(0, 0), b.AddNode(0.1, 0), b.AddNode(0.05, 1))

	subject, err := b.Build()
	require.NoError(t, err)

	rb := mesh.NewBuilder(2)
	rb.AddElement(mesh.Vertex, rb.AddNode(0.05, 0))

	reference, err := rb.Build()
	require.NoError(t, err)

	res, err := Snap(subject, reference, 0.06)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Moved)
	require.Len(t, res.Diagnostics.Rejected, 1)
	assert.Equal(t, "snap", res.Diagnostics.Rejected[0].Op)
	assert.Equal(t, mesh.ElementID{Type: mesh.Tri3, Index: 0}, res.Diagnostics.Rejected[0].Element)
	assert.ErrorIs(t, res.Diagnostics.Err(), mesh.ErrValidity)

	assert.Equal(t, []float64{0.05, 0}, res.Mesh.Coord(0))
	assert.Equal(t, []float64{0.1, 0}, res.Mesh.Coord(1))

	nodes, err := mesh.Element(res.Mesh, mesh.ElementID{Type: mesh.Tri3, Index: 0})
	require.NoError(t, err)
	assert.False(t, geom.Degenerate(geom.Default(), mesh.Tri3, nodes, res.Mesh.Coord))
}

func TestMergeNeverDegenerates_Property(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100

	properties := gopter.NewProperties(params)
	pred := geom.Default()

	properties.Property("merging never introduces degenerate elements", prop.ForAll(
		func(seed int64, nPts, nTris int, eps float64) bool {
			rng := testutil.NewRNG(seed)

			m, err := rng.RandomTriangles(rng.UniformPoints(nPts, 2), nTris)
			if err != nil {
				return false
			}

			res, err := MergeNodes(m, eps)
			if err != nil {
				return false
			}

			if res.Diagnostics.Len()+len(res.Merged) != len(Duplicates(m, eps)) {
				return false
			}

			src, _ := m.Block(mesh.Tri3)
			out, _ := res.Mesh.Block(mesh.Tri3)

			for i := range src.Len() {
				was := geom.Degenerate(pred, mesh.Tri3, src.Element(i), m.Coord)
				is := geom.Degenerate(pred, mesh.Tri3, out.Element(i), res.Mesh.Coord)

				if is && !was {
					return false
				}
			}

			return true
		},
		gen.Int64(),
		gen.IntRange(3, 60),
		gen.IntRange(1, 60),
		gen.Float64Range(0, 0.3),
	))

	properties.TestingRun(t)
}
