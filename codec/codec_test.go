package codec

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/testutil"
)

// fixture is a quad next to a pentagon, with a partly undefined field and
// overlapping groups.
func fixture(t testing.TB) *mesh.Mesh {
	t.Helper()

	b := mesh.NewBuilder(2, mesh.WithName("fixture"), mesh.WithDescription("quad and pentagon"))
	b.AddNode(0, 0)
	b.AddNode(1, 0)
	b.AddNode(1, 1)
	b.AddNode(0, 1)
	b.AddNode(2, 0)
	b.AddNode(2.5, 0.5)
	b.AddNode(2, 1)
	q := b.AddElement(mesh.Quad4, 0, 1, 2, 3)
	p := b.AddElement(mesh.Pgon, 1, 4, 5, 6, 2)
	b.SetField(mesh.Quad4, "rho", []float64{math.NaN()})
	b.SetField(mesh.Pgon, "rho", []float64{2.5})
	b.AddToGroup("left", q)
	b.AddToGroup("all", q, p)

	m, err := b.Build()
	require.NoError(t, err)

	return m
}

func assertSameMesh(t *testing.T, want, got *mesh.Mesh) {
	t.Helper()

	assert.Equal(t, want.Name(), got.Name())
	assert.Equal(t, want.Description(), got.Description())
	assert.Equal(t, want.Coords().Data(), got.Coords().Data())
	assert.Equal(t, testutil.Connectivity(want), testutil.Connectivity(got))

	for _, et := range want.Types() {
		wb, _ := want.Block(et)
		gb, ok := got.Block(et)
		require.True(t, ok, et.String())

		assert.Equal(t, wb.Connectivity().Offsets(), gb.Connectivity().Offsets())
		assert.Equal(t, wb.GroupNames(), gb.GroupNames())

		for _, g := range wb.GroupNames() {
			assert.Equal(t, wb.GroupMembers(g), gb.GroupMembers(g), g)
		}

		for _, name := range wb.FieldNames() {
			wv, _ := wb.Field(name)
			gv, ok := gb.Field(name)
			require.True(t, ok, name)
			require.Len(t, gv, len(wv))

			for i := range wv {
				if math.IsNaN(wv[i]) {
					assert.True(t, math.IsNaN(gv[i]))
				} else {
					assert.Equal(t, wv[i], gv[i])
				}
			}
		}
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	m := fixture(t)

	for _, c := range []Codec{JSON{}, GoJSON{}, YAML{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(FromMesh(m))
			require.NoError(t, err)

			var doc Document
			require.NoError(t, c.Unmarshal(data, &doc))

			got, err := doc.Mesh()
			require.NoError(t, err)

			assertSameMesh(t, m, got)
		})
	}
}

func TestValuesNaN(t *testing.T) {
	data, err := JSON{}.Marshal(Values{1, math.NaN(), 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,null,0.5]`, string(data))

	var v Values
	require.NoError(t, GoJSON{}.Unmarshal(data, &v))
	require.Len(t, v, 3)
	assert.Equal(t, 1.0, v[0])
	assert.True(t, math.IsNaN(v[1]))
}

func TestDocumentRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{
			name: "unknown type",
			doc: Document{SpaceDimension: 2, Coordinates: []float64{0, 0}, Blocks: []BlockDocument{
				{Type: "BRICK", Connectivity: []int{0}},
			}},
		},
		{
			name: "node out of range",
			doc: Document{SpaceDimension: 2, Coordinates: []float64{0, 0, 1, 0}, Blocks: []BlockDocument{
				{Type: "SEG2", Connectivity: []int{0, 5}},
			}},
		},
		{
			name: "ragged connectivity",
			doc: Document{SpaceDimension: 2, Coordinates: []float64{0, 0, 1, 0}, Blocks: []BlockDocument{
				{Type: "SEG2", Connectivity: []int{0, 1, 0}},
			}},
		},
		{
			name: "partial field",
			doc: Document{SpaceDimension: 2, Coordinates: []float64{0, 0, 1, 0}, Blocks: []BlockDocument{
				{Type: "SEG2", Connectivity: []int{0, 1}, Fields: map[string]Values{"rho": {1, 2}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.Mesh()
			assert.ErrorIs(t, err, mesh.ErrStructural)
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	m := testutil.QuadGrid(8, 8, 0)

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		for _, c := range []Codec{JSON{}, GoJSON{}, YAML{}} {
			t.Run(comp.String()+"/"+c.Name(), func(t *testing.T) {
				data, err := Encode(FromMesh(m), c, comp)
				require.NoError(t, err)

				doc, err := Decode(data)
				require.NoError(t, err)

				got, err := doc.Mesh()
				require.NoError(t, err)

				assertSameMesh(t, m, got)
			})
		}
	}
}

func TestFrameCompresses(t *testing.T) {
	doc := FromMesh(testutil.QuadGrid(16, 16, 0))

	raw, err := Encode(doc, JSON{}, CompressionNone)
	require.NoError(t, err)

	for _, comp := range []Compression{CompressionLZ4, CompressionZstd} {
		packed, err := Encode(doc, JSON{}, comp)
		require.NoError(t, err)
		assert.Less(t, len(packed), len(raw), comp.String())
	}
}

func TestFrameErrors(t *testing.T) {
	good, err := Encode(FromMesh(fixture(t)), nil, CompressionZstd)
	require.NoError(t, err)

	flipped := slices.Clone(good)
	flipped[len(flipped)-1] ^= 0x40

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", []byte("NOPE\x01\x00\x00")},
		{"bad version", append([]byte("MSHK\x09"), good[5:]...)},
		{"truncated", good[:len(good)-3]},
		{"unknown codec", append([]byte("MSHK\x01\x00\x03xml"), make([]byte, 12)...)},
		{"flipped bit", flipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, ErrCorruptFrame)
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(comp.String())
		require.NoError(t, err)
		assert.Equal(t, comp, got)
	}

	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}
