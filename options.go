package meshkit

import (
	"log/slog"

	"github.com/hupe1980/meshkit/blobstore"
	"github.com/hupe1980/meshkit/canon"
	"github.com/hupe1980/meshkit/codec"
	"github.com/hupe1980/meshkit/combine"
	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/merge"
)

// DefaultTolerance is the node merge tolerance used when none is configured.
const DefaultTolerance = 1e-6

type options struct {
	tolerance        float64
	pred             geom.Predicates
	mode             canon.Mode
	representative   merge.Representative
	reduction        combine.Reduction
	triangulate      bool
	strict           bool
	parallelism      int
	store            blobstore.BlobStore
	throttle         blobstore.ThrottleConfig
	codec            codec.Codec
	compression      codec.Compression
	cacheSize        int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Kernel.
type Option func(*options)

// WithTolerance sets the distance below which nodes are merged or snapped.
func WithTolerance(eps float64) Option {
	return func(o *options) {
		o.tolerance = eps
	}
}

// WithPredicates replaces the geometric predicates. The default is
// geom.Default().
func WithPredicates(p geom.Predicates) Option {
	return func(o *options) {
		o.pred = p
	}
}

// WithMode sets the equivalence mode used to match sub-entities. The default
// is canon.Chiral.
func WithMode(m canon.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithRepresentative selects where merged node clusters end up.
func WithRepresentative(r merge.Representative) Option {
	return func(o *options) {
		o.representative = r
	}
}

// WithReduction sets how conflicting field values are combined.
func WithReduction(r combine.Reduction) Option {
	return func(o *options) {
		o.reduction = r
	}
}

// WithTriangulate makes boolean operations emit triangles for reshaped cells.
func WithTriangulate(on bool) Option {
	return func(o *options) {
		o.triangulate = on
	}
}

// WithStrict makes ambiguous merge clusters fatal.
func WithStrict(on bool) Option {
	return func(o *options) {
		o.strict = on
	}
}

// WithParallelism bounds the goroutines used for descent signatures.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithStore enables Save and Load on top of a blob store.
//
// Example:
//
//	k, _ := meshkit.New(meshkit.WithStore(blobstore.NewLocalStore("./meshes")))
//	ref, _ := k.Save(ctx, m)
func WithStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithThrottle limits the byte rate and concurrency of snapshot traffic to
// the configured store.
func WithThrottle(cfg blobstore.ThrottleConfig) Option {
	return func(o *options) {
		o.throttle = cfg
	}
}

// WithCodec configures the codec snapshots are written with.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the snapshot frame compression.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCacheSize sets how many decoded snapshots are cached.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &meshkit.BasicMetricsCollector{}
//	k, _ := meshkit.New(meshkit.WithMetricsCollector(metrics))
//	// ... use k ...
//	stats := metrics.GetStats()
//	fmt.Printf("Merges: %d\n", stats["merge_nodes"].Count)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := meshkit.NewJSONLogger(slog.LevelDebug)
//	k, _ := meshkit.New(meshkit.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		tolerance:        DefaultTolerance,
		pred:             geom.Default(),
		mode:             canon.Chiral,
		representative:   merge.First,
		reduction:        combine.NoReduction,
		codec:            codec.Default,
		compression:      codec.CompressionZstd,
		cacheSize:        64,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
