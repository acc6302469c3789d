package codec

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Default is the codec used when none is configured. Frames record the
// codec name, so changing it never breaks decoding of existing snapshots.
var Default Codec = GoJSON{}

// JSON encodes documents with encoding/json. NaN field values are written
// as null and read back as NaN.
type JSON struct{}

func (JSON) Name() string                       { return "json" }
func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// GoJSON encodes documents with github.com/goccy/go-json. Its output is
// interchangeable with JSON.
type GoJSON struct{}

func (GoJSON) Name() string                       { return "go-json" }
func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// YAML is the human-readable codec, backed by gopkg.in/yaml.v3.
type YAML struct{}

func (YAML) Name() string                       { return "yaml" }
func (YAML) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }
