package spatial

import (
	"testing"

	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointIndexWithin(t *testing.T) {
	pts := [][]float64{{0, 0}, {1, 0}, {1, 1e-10}, {0.5, 0.5}, {1, 1}}
	idx := NewPointIndex(2, len(pts), func(i int) []float64 { return pts[i] })

	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, []int{1, 2}, idx.Within([]float64{1, 0}, 1e-9))
	assert.Equal(t, []int{0}, idx.Within([]float64{0, 0}, 0))
	assert.Empty(t, idx.Within([]float64{3, 3}, 0.5))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, idx.Within([]float64{0.5, 0.5}, 1))

	n, ok := idx.Nearest([]float64{0.4, 0.6})
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestBoxIndexOverlapping(t *testing.T) {
	idx := NewBoxIndex(2)
	assert.Empty(t, idx.Overlapping([]float64{0, 0}, []float64{1, 1}))

	idx.Insert(7, []float64{0, 0}, []float64{1, 1})
	idx.Insert(3, []float64{1, 0}, []float64{2, 1})
	idx.Insert(9, []float64{5, 5}, []float64{6, 6})

	tests := []struct {
		name   string
		lo, hi []float64
		want   []int
	}{
		{"inside first", []float64{0.2, 0.2}, []float64{0.3, 0.3}, []int{7}},
		{"shared edge", []float64{1, 0.5}, []float64{1, 0.5}, []int{3, 7}},
		{"far", []float64{10, 10}, []float64{11, 11}, nil},
		{"everything", []float64{-1, -1}, []float64{7, 7}, []int{3, 7, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Overlapping(tt.lo, tt.hi)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocator(t *testing.T) {
	m, err := mesh.RegularGrid(mesh.Linspace(0, 2, 3), mesh.Linspace(0, 1, 2))
	require.NoError(t, err)

	l := NewLocator(m, geom.Default(), -1)

	assert.Equal(t, []mesh.ElementID{{Type: mesh.Quad4, Index: 0}}, l.Locate([]float64{0.5, 0.5}))
	assert.Equal(t, []mesh.ElementID{{Type: mesh.Quad4, Index: 0}, {Type: mesh.Quad4, Index: 1}}, l.Locate([]float64{1, 0.5}))
	assert.Empty(t, l.Locate([]float64{3, 0.5}))
}
