// Package codec serializes meshes.
//
// A Document is the structural, schema-based form of a mesh with stable
// field names. Codecs turn documents into bytes (JSON through the standard
// library or go-json, and YAML). Frames wrap an encoded document with a
// small self-describing header and optional LZ4 or Zstandard compression,
// so snapshots can be decoded without knowing how they were written.
package codec

import "fmt"

// Codec turns documents into bytes and back. Implementations must be safe
// for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns the built-in codec with the given name. Frames store this
// name in their header.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "yaml":
		return YAML{}, true
	default:
		return nil, false
	}
}

// MustMarshal marshals v with c (Default when nil) and panics on failure.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
