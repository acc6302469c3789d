package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewElementBlock(t *testing.T) {
	tests := []struct {
		name string
		et   ElementType
		conn func() (Connectivity, error)
		opts []BlockOption
		ok   bool
	}{
		{
			name: "regular",
			et:   Tri3,
			conn: func() (Connectivity, error) { return NewRegular(3, []int{0, 1, 2}) },
			ok:   true,
		},
		{
			name: "arity mismatch",
			et:   Quad4,
			conn: func() (Connectivity, error) { return NewRegular(3, []int{0, 1, 2}) },
		},
		{
			name: "poly for regular type",
			et:   Tri3,
			conn: func() (Connectivity, error) { return NewPoly([]int{0, 1, 2}, []int{0, 3}) },
		},
		{
			name: "pgon",
			et:   Pgon,
			conn: func() (Connectivity, error) { return NewPoly([]int{0, 1, 2, 3, 4}, []int{0, 5}) },
			ok:   true,
		},
		{
			name: "pgon too short",
			et:   Pgon,
			conn: func() (Connectivity, error) { return NewPoly([]int{0, 1}, []int{0, 2}) },
		},
		{
			name: "partial field",
			et:   Seg2,
			conn: func() (Connectivity, error) { return NewRegular(2, []int{0, 1, 1, 2}) },
			opts: []BlockOption{WithField("f", []float64{1})},
		},
		{
			name: "group out of range",
			et:   Seg2,
			conn: func() (Connectivity, error) { return NewRegular(2, []int{0, 1}) },
			opts: []BlockOption{WithGroup("g", 3)},
		},
		{
			name: "negative group member",
			et:   Seg2,
			conn: func() (Connectivity, error) { return NewRegular(2, []int{0, 1}) },
			opts: []BlockOption{WithGroup("g", -1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := tt.conn()
			require.NoError(t, err)

			_, err = NewElementBlock(tt.et, conn, tt.opts...)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrStructural)
			}
		})
	}
}

func TestNewPoly_BadOffsets(t *testing.T) {
	_, err := NewPoly([]int{0, 1, 2}, []int{1, 3})
	require.ErrorIs(t, err, ErrStructural)

	_, err = NewPoly([]int{0, 1, 2}, []int{0, 2, 1, 3})
	require.ErrorIs(t, err, ErrStructural)

	_, err = NewPoly([]int{0, 1, 2}, []int{0, 2})
	require.ErrorIs(t, err, ErrStructural)
}

func TestFamilyInvariant(t *testing.T) {
	conn, err := NewRegular(2, []int{0, 1, 1, 2, 2, 3, 3, 4})
	require.NoError(t, err)

	b, err := NewElementBlock(Seg2, conn, WithGroup("a", 0, 1, 2), WithGroup("b", 1, 3))
	require.NoError(t, err)

	// Equal family iff equal group membership.
	for i := range b.Len() {
		for j := range b.Len() {
			same := assert.ObjectsAreEqual(b.GroupsOf(i), b.GroupsOf(j))
			assert.Equal(t, same, b.Family(i) == b.Family(j), "elements %d and %d", i, j)
		}
	}
}

func TestWithFamilies(t *testing.T) {
	conn, err := NewRegular(2, []int{0, 1, 1, 2, 2, 3})
	require.NoError(t, err)

	b, err := NewElementBlock(Seg2, conn, WithFamilies([]int{-1, 0, -1}, map[int][]string{-1: {"wall", "inlet"}}))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, b.GroupMembers("wall"))
	assert.Equal(t, []string{"inlet", "wall"}, b.GroupsOf(0))

	_, err = NewElementBlock(Seg2, conn, WithFamilies([]int{1, 2, 0}, map[int][]string{1: {"x"}, 2: {"x"}}))
	require.ErrorIs(t, err, ErrStructural, "two families with the same groups")

	_, err = NewElementBlock(Seg2, conn, WithFamilies([]int{5, 0, 0}, nil))
	require.ErrorIs(t, err, ErrStructural)
}

func TestConcatBlocks(t *testing.T) {
	c1, _ := NewRegular(2, []int{0, 1})
	c2, _ := NewRegular(2, []int{0, 1, 1, 2})

	b1, err := NewElementBlock(Seg2, c1, WithField("t", []float64{1}), WithField("only", []float64{5}), WithGroup("g", 0))
	require.NoError(t, err)
	b2, err := NewElementBlock(Seg2, c2, WithField("t", []float64{2, 3}), WithGroup("g", 1))
	require.NoError(t, err)

	out, dropped, err := ConcatBlocks([]BlockPart{{Block: b1}, {Block: b2, NodeOffset: 2}})
	require.NoError(t, err)

	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []int{2, 3}, out.Element(1))
	assert.Equal(t, []string{"only"}, dropped)

	tv, _ := out.Field("t")
	assert.Equal(t, []float64{1, 2, 3}, tv)
	assert.Equal(t, []int{0, 2}, out.GroupMembers("g"))
}

func TestWithElements(t *testing.T) {
	conn, err := NewRegular(3, []int{0, 1, 2, 2, 1, 3})
	require.NoError(t, err)

	b, err := NewElementBlock(Tri3, conn, WithField("k", []float64{1, 2}), WithGroup("left", 0))
	require.NoError(t, err)

	nb, err := b.WithElements(map[int][]int{1: {2, 1, 4}})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1, 4}, nb.Element(1))
	assert.Equal(t, []int{2, 1, 3}, b.Element(1), "source block is untouched")
	assert.Equal(t, []string{"left"}, nb.GroupsOf(0))

	k, _ := nb.Field("k")
	assert.Equal(t, []float64{1, 2}, k)

	_, err = b.WithElements(map[int][]int{1: {2, 1}})
	assert.ErrorIs(t, err, ErrStructural)

	_, err = b.WithElements(map[int][]int{5: {0, 1, 2}})
	assert.ErrorIs(t, err, ErrStructural)
}
