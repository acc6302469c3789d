package codec

import (
	"testing"

	"github.com/hupe1980/meshkit/testutil"
)

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal(b *testing.B, c Codec, data []byte) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for b.Loop() {
		var doc Document
		if err := c.Unmarshal(data, &doc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodec_Marshal_Document(b *testing.B) {
	doc := FromMesh(testutil.QuadGrid(32, 32, 0))

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, doc) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, doc) })
	b.Run("yaml", func(b *testing.B) { benchmarkCodecMarshal(b, YAML{}, doc) })
}

func BenchmarkCodec_Unmarshal_Document(b *testing.B) {
	doc := FromMesh(testutil.QuadGrid(32, 32, 0))
	jsonData := MustMarshal(JSON{}, doc)
	yamlData := MustMarshal(YAML{}, doc)

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecUnmarshal(b, JSON{}, jsonData) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecUnmarshal(b, GoJSON{}, jsonData) })
	b.Run("yaml", func(b *testing.B) { benchmarkCodecUnmarshal(b, YAML{}, yamlData) })
}

func BenchmarkFrame_Encode(b *testing.B) {
	doc := FromMesh(testutil.QuadGrid(32, 32, 0))

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		b.Run(comp.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Encode(doc, nil, comp); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFrame_Decode(b *testing.B) {
	doc := FromMesh(testutil.QuadGrid(32, 32, 0))

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		data, err := Encode(doc, nil, comp)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(comp.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				if _, err := Decode(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
