package testutil

import (
	"testing"

	"github.com/hupe1980/meshkit/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformPoints(8, 3)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 3, len(v[0]))
	assert.Less(t, v[0][0], 1.0)
	assert.GreaterOrEqual(t, v[1][0], 0.0)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformPoints(1, 10)

	rng.Reset()
	v2 := rng.UniformPoints(1, 10)

	assert.Equal(t, v1, v2)
}

func TestRandomTriangles(t *testing.T) {
	rng := NewRNG(1)

	m, err := rng.RandomTriangles(rng.UniformPoints(10, 2), 20)
	require.NoError(t, err)

	b, ok := m.Block(mesh.Tri3)
	require.True(t, ok)
	assert.Equal(t, 20, b.Len())
}

func TestFixtures(t *testing.T) {
	g := QuadGrid(2, 2, 0)
	assert.Equal(t, 9, g.NumNodes())
	assert.Equal(t, 4, mesh.NumElements(g))

	h := UnitHex()
	assert.Equal(t, 8, h.NumNodes())

	s := Square(1, 1, 2)
	assert.Equal(t, []float64{3, 3}, s.Coord(2))

	pc, err := PointCloud([][]float64{{0, 0}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.NumElements(pc))

	assert.Equal(t, Connectivity(g), Connectivity(mesh.Clone(g)))
}
