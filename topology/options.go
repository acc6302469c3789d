package topology

import "github.com/hupe1980/meshkit/mesh"

// Option configures descent and neighbor computations.
type Option func(*options)

type options struct {
	target      mesh.Dimension
	hasTarget   bool
	parallelism int
}

// WithTarget sets the dimension of the sub-entities to extract. The default
// is one below the source dimension.
func WithTarget(d mesh.Dimension) Option {
	return func(o *options) {
		o.target = d
		o.hasTarget = true
	}
}

// WithParallelism computes signatures on up to n goroutines. Values below 2
// keep the computation serial. Output does not depend on n.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

func applyOptions(opts []Option) options {
	o := options{parallelism: 1}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
