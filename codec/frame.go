package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/meshkit/internal/hash"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how a frame body is compressed.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZstd uses Zstandard (better ratio).
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name. The empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("codec: unknown compression %q", s)
	}
}

// ErrCorruptFrame is returned when a frame cannot be decoded.
var ErrCorruptFrame = errors.New("codec: corrupt frame")

// Frame layout:
//
//	[magic "MSHK"][version u8][compression u8][name len u8][codec name]
//	[uncompressed size u32][stored size u32][crc32c u32][body]
//
// A stored size of 0 means the body is stored uncompressed. The checksum
// covers the body bytes as stored.
const (
	frameFixed   = 12
	frameMagic   = "MSHK"
	frameVersion = 1
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}

	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))

	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}

	dec, _ := zstd.NewReader(nil)

	return dec
}

// Encode marshals doc with c and wraps it in a frame. A nil codec uses
// Default.
func Encode(doc *Document, c Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = Default
	}

	if _, ok := ByName(c.Name()); !ok {
		return nil, fmt.Errorf("codec: %q cannot be decoded by name", c.Name())
	}

	body, err := c.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal %s: %w", c.Name(), err)
	}

	stored, err := compress(body, comp)
	if err != nil {
		return nil, err
	}

	name := c.Name()
	storedSize := uint32(len(stored))
	if stored == nil {
		stored = body
	}

	out := make([]byte, 0, len(frameMagic)+3+len(name)+frameFixed+len(stored))
	out = append(out, frameMagic...)
	out = append(out, frameVersion, byte(comp), byte(len(name)))
	out = append(out, name...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	out = binary.LittleEndian.AppendUint32(out, storedSize)
	out = binary.LittleEndian.AppendUint32(out, hash.CRC32C(stored))

	return append(out, stored...), nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Document, error) {
	if len(data) < len(frameMagic)+3 || string(data[:len(frameMagic)]) != frameMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptFrame)
	}

	p := data[len(frameMagic):]
	if p[0] != frameVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptFrame, p[0])
	}

	comp := Compression(p[1])
	nameLen := int(p[2])
	p = p[3:]

	if len(p) < nameLen+frameFixed {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptFrame)
	}

	c, ok := ByName(string(p[:nameLen]))
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrCorruptFrame, p[:nameLen])
	}

	p = p[nameLen:]
	rawSize := int(binary.LittleEndian.Uint32(p[0:]))
	storedSize := int(binary.LittleEndian.Uint32(p[4:]))
	sum := binary.LittleEndian.Uint32(p[8:])
	p = p[frameFixed:]

	if !hash.Verify(p, sum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptFrame)
	}

	var body []byte

	if storedSize == 0 {
		if len(p) != rawSize {
			return nil, fmt.Errorf("%w: body is %d bytes, want %d", ErrCorruptFrame, len(p), rawSize)
		}

		body = p
	} else {
		if len(p) != storedSize {
			return nil, fmt.Errorf("%w: body is %d bytes, want %d", ErrCorruptFrame, len(p), storedSize)
		}

		var err error
		if body, err = decompress(p, rawSize, comp); err != nil {
			return nil, err
		}
	}

	var doc Document
	if err := c.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptFrame, c.Name(), err)
	}

	return &doc, nil
}

// compress returns nil when the body should be stored uncompressed.
func compress(body []byte, comp Compression) ([]byte, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var out []byte

	switch comp {
	case CompressionNone:
		return nil, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(body)))

		n, err := lz4.CompressBlock(body, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("codec: lz4: %w", err)
		}

		out = buf[:n]
	case CompressionZstd:
		enc := getZstdEncoder()
		out = enc.EncodeAll(body, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("codec: unknown compression %s", comp)
	}

	// Incompressible bodies are kept raw.
	if len(out) == 0 || len(out) >= len(body) {
		return nil, nil
	}

	return out, nil
}

func decompress(data []byte, rawSize int, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionLZ4:
		out := make([]byte, rawSize)

		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorruptFrame, err)
		}

		if n != rawSize {
			return nil, fmt.Errorf("%w: lz4 size mismatch", ErrCorruptFrame)
		}

		return out, nil
	case CompressionZstd:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(data, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptFrame, err)
		}

		if len(out) != rawSize {
			return nil, fmt.Errorf("%w: zstd size mismatch", ErrCorruptFrame)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %s", ErrCorruptFrame, comp)
	}
}
