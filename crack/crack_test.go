package crack

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meshkit/canon"
	"github.com/hupe1980/meshkit/merge"
	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/testutil"
	"github.com/hupe1980/meshkit/topology"
)

// edges returns a SEG2 mesh over the nodes of m.
func edges(t *testing.T, m *mesh.Mesh, data ...int) *mesh.Mesh {
	t.Helper()

	conn, err := mesh.NewRegular(2, data)
	require.NoError(t, err)

	b, err := mesh.NewElementBlock(mesh.Seg2, conn)
	require.NoError(t, err)

	cut, err := mesh.WithBlocks(m, []*mesh.ElementBlock{b})
	require.NoError(t, err)

	return cut
}

func TestCrack(t *testing.T) {
	tests := []struct {
		name       string
		cut        []int
		nodes      int
		origin     []int
		ignored    int
		components int
	}{
		{"full interior line", []int{1, 4, 4, 7}, 12, []int{1, 4, 7}, 0, 2},
		{"half line", []int{1, 4}, 10, []int{1}, 0, 1},
		{"boundary edge", []int{0, 1}, 9, nil, 1, 1},
		{"reversed tuple", []int{4, 1, 7, 4}, 12, []int{1, 4, 7}, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testutil.QuadGrid(2, 2, 0)

			res, err := Crack(m, edges(t, m, tt.cut...), canon.Unordered)
			require.NoError(t, err)

			assert.Equal(t, tt.nodes, res.Mesh.NumNodes())
			assert.Equal(t, tt.origin, res.Origin)
			assert.Equal(t, tt.ignored, res.Ignored)

			for i, v := range res.Origin {
				assert.Equal(t, m.Coord(v), res.Mesh.Coord(m.NumNodes()+i))
			}

			comps, err := topology.ConnectedComponents(res.Mesh, canon.Chiral)
			require.NoError(t, err)
			assert.Len(t, comps, tt.components)

			assert.Equal(t, 4, mesh.NumElements(res.Mesh))
			assert.Equal(t, 9, m.NumNodes(), "source is untouched")
		})
	}
}

func TestCrackRewritesOnlyOneSide(t *testing.T) {
	m := testutil.QuadGrid(2, 1, 0)

	res, err := Crack(m, edges(t, m, 1, 4), canon.Chiral)
	require.NoError(t, err)
	require.Equal(t, []int{1, 4}, res.Origin)

	q, _ := res.Mesh.Block(mesh.Quad4)
	assert.Equal(t, []int{0, 1, 4, 3}, q.Element(0))
	assert.Equal(t, []int{6, 2, 5, 7}, q.Element(1))
}

func TestCrackErrors(t *testing.T) {
	m := testutil.QuadGrid(2, 2, 0)

	_, err := Crack(m, edges(t, m, 0, 4), canon.Chiral)
	assert.ErrorIs(t, err, mesh.ErrStructural)

	b := mesh.NewBuilder(2)
	b.AddElement(mesh.Vertex, b.AddNode(1, 1))

	points, err := b.Build()
	require.NoError(t, err)

	_, err = Crack(m, points, canon.Chiral)
	assert.ErrorIs(t, err, mesh.ErrDimension)
}

func TestCrackHex(t *testing.T) {
	m := testutil.HexGrid(2, 1, 1)

	desc, err := topology.Descend(m, canon.Chiral)
	require.NoError(t, err)

	cut, err := mesh.Extract(desc.Mesh(), desc.WithParents(2))
	require.NoError(t, err)

	res, err := Crack(m, cut, canon.Chiral)
	require.NoError(t, err)
	assert.Len(t, res.Origin, 4)
	assert.Equal(t, 16, res.Mesh.NumNodes())

	comps, err := topology.ConnectedComponents(res.Mesh, canon.Chiral)
	require.NoError(t, err)
	assert.Len(t, comps, 2)
}

func TestCrackNonManifold(t *testing.T) {
	m := testutil.Fins()

	b := mesh.NewBuilder(3)
	for i := range m.NumNodes() {
		b.AddNode(m.Coord(i)...)
	}
	b.AddElement(mesh.Seg2, 0, 1)

	cut, err := b.Build()
	require.NoError(t, err)

	res, err := Crack(m, cut, canon.Chiral)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, mesh.ErrValidity)
}

func TestCrackMergeRoundTrip_Property(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50

	properties := gopter.NewProperties(params)

	properties.Property("merging a cracked mesh restores it", prop.ForAll(
		func(seed int64, nx, ny int) bool {
			m := testutil.QuadGrid(nx, ny, 0)
			rng := testutil.NewRNG(seed)

			desc, err := topology.Descend(m, canon.Chiral)
			if err != nil {
				return false
			}

			interior := desc.WithParents(2)
			sel := mesh.NewIDSet()

			for id := range interior.All() {
				if rng.Intn(2) == 0 {
					sel.Add(id)
				}
			}

			cut, err := mesh.Extract(desc.Mesh(), sel)
			if err != nil {
				return false
			}

			res, err := Crack(m, cut, canon.Chiral)
			if err != nil {
				return false
			}

			merged, err := merge.MergeNodes(res.Mesh, 1e-9)
			if err != nil {
				return false
			}

			return merged.Mesh.NumNodes() == m.NumNodes() &&
				assert.ObjectsAreEqual(testutil.Connectivity(m), testutil.Connectivity(merged.Mesh))
		},
		gen.Int64(),
		gen.IntRange(1, 5),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
