package meshkit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/meshkit/blobstore"
	"github.com/hupe1980/meshkit/canon"
	"github.com/hupe1980/meshkit/codec"
	"github.com/hupe1980/meshkit/combine"
	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/merge"
)

// Config is the file form of the kernel options. Zero values keep the
// defaults.
//
//	tolerance: 1e-6
//	measure_tolerance: 1e-9
//	mode: chiral
//	representative: first
//	reduction: mean
//	triangulate: false
//	strict: false
//	parallelism: 4
//	codec: go-json
//	compression: zstd
//	cache_size: 64
//	io_bytes_per_sec: 0
//	max_in_flight: 0
//	log_level: info
//	log_format: json
type Config struct {
	Tolerance        float64 `yaml:"tolerance"`
	MeasureTolerance float64 `yaml:"measure_tolerance"`
	Mode             string  `yaml:"mode"`
	Representative   string  `yaml:"representative"`
	Reduction        string  `yaml:"reduction"`
	Triangulate      bool    `yaml:"triangulate"`
	Strict           bool    `yaml:"strict"`
	Parallelism      int     `yaml:"parallelism"`
	Codec            string  `yaml:"codec"`
	Compression      string  `yaml:"compression"`
	CacheSize        int     `yaml:"cache_size"`
	IOBytesPerSec    int64   `yaml:"io_bytes_per_sec"`
	MaxInFlight      int64   `yaml:"max_in_flight"`
	LogLevel         string  `yaml:"log_level"`
	LogFormat        string  `yaml:"log_format"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("meshkit: read config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML config data. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("meshkit: parse config: %w", err)
	}

	return &cfg, nil
}

// Options converts the config into kernel options.
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	if c.Tolerance < 0 || c.MeasureTolerance < 0 {
		return nil, errors.New("meshkit: tolerances must not be negative")
	}

	if c.Tolerance > 0 {
		opts = append(opts, WithTolerance(c.Tolerance))
	}

	if c.MeasureTolerance > 0 {
		opts = append(opts, WithPredicates(geom.Planar{Eps: c.MeasureTolerance}))
	}

	if c.Mode != "" {
		m, err := canon.ParseMode(c.Mode)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithMode(m))
	}

	if c.Representative != "" {
		r, err := merge.ParseRepresentative(c.Representative)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithRepresentative(r))
	}

	if c.Reduction != "" {
		r, err := combine.ParseReduction(c.Reduction)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithReduction(r))
	}

	opts = append(opts, WithTriangulate(c.Triangulate), WithStrict(c.Strict))

	if c.Parallelism > 0 {
		opts = append(opts, WithParallelism(c.Parallelism))
	}

	if c.Codec != "" {
		cd, ok := codec.ByName(c.Codec)
		if !ok {
			return nil, fmt.Errorf("meshkit: unknown codec %q", c.Codec)
		}

		opts = append(opts, WithCodec(cd))
	}

	if c.Compression != "" {
		comp, err := codec.ParseCompression(c.Compression)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithCompression(comp))
	}

	if c.CacheSize > 0 {
		opts = append(opts, WithCacheSize(c.CacheSize))
	}

	if c.IOBytesPerSec < 0 || c.MaxInFlight < 0 {
		return nil, errors.New("meshkit: throttle limits must not be negative")
	}

	if c.IOBytesPerSec > 0 || c.MaxInFlight > 0 {
		opts = append(opts, WithThrottle(blobstore.ThrottleConfig{
			BytesPerSec: c.IOBytesPerSec,
			MaxInFlight: c.MaxInFlight,
		}))
	}

	if c.LogLevel != "" || c.LogFormat != "" {
		var level slog.Level
		if c.LogLevel != "" {
			if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
				return nil, fmt.Errorf("meshkit: log level: %w", err)
			}
		}

		switch strings.ToLower(c.LogFormat) {
		case "", "text":
			opts = append(opts, WithLogger(NewTextLogger(level)))
		case "json":
			opts = append(opts, WithLogger(NewJSONLogger(level)))
		default:
			return nil, fmt.Errorf("meshkit: unknown log format %q", c.LogFormat)
		}
	}

	return opts, nil
}
