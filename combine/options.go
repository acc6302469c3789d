package combine

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/hupe1980/meshkit/geom"
)

// Reduction resolves a field whose parent cells disagree.
type Reduction int

const (
	// NoReduction flags the conflict and stores NaN.
	NoReduction Reduction = iota
	// First keeps the value of the first parent.
	First
	// Mean averages the parent values.
	Mean
	// Min keeps the smallest parent value.
	Min
	// Max keeps the largest parent value.
	Max
)

var reductionNames = [...]string{"none", "first", "mean", "min", "max"}

func (r Reduction) String() string {
	if r < 0 || int(r) >= len(reductionNames) {
		return fmt.Sprintf("Reduction(%d)", int(r))
	}

	return reductionNames[r]
}

// ParseReduction parses the name returned by Reduction.String.
func ParseReduction(s string) (Reduction, error) {
	i := slices.Index(reductionNames[:], strings.ToLower(strings.TrimSpace(s)))
	if i < 0 {
		return NoReduction, fmt.Errorf("combine: unknown reduction %q", s)
	}

	return Reduction(i), nil
}

func (r Reduction) apply(vals []float64) float64 {
	switch r {
	case First:
		return vals[0]
	case Mean:
		s := 0.0
		for _, v := range vals {
			s += v
		}

		return s / float64(len(vals))
	case Min:
		return slices.Min(vals)
	case Max:
		return slices.Max(vals)
	default:
		return math.NaN()
	}
}

// Option configures the combination operations.
type Option func(*options)

type options struct {
	pred        geom.Predicates
	tolerance   float64
	triangulate bool
	reduction   Reduction
	strict      bool
}

// WithPredicates sets the geometric predicates. The default is geom.Default.
func WithPredicates(p geom.Predicates) Option {
	return func(o *options) {
		o.pred = p
	}
}

// WithTolerance sets the distance below which result nodes are merged. The
// default is the tolerance of the predicates.
func WithTolerance(eps float64) Option {
	return func(o *options) {
		o.tolerance = eps
	}
}

// WithTriangulate ear-clips every new or reshaped cell into TRI3.
func WithTriangulate() Option {
	return func(o *options) {
		o.triangulate = true
	}
}

// WithReduction resolves conflicting field values with r instead of NaN.
func WithReduction(r Reduction) Option {
	return func(o *options) {
		o.reduction = r
	}
}

// WithStrict makes ambiguous node clusters fatal.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

func applyOptions(opts []Option) options {
	o := options{pred: geom.Default(), tolerance: -1}
	for _, fn := range opts {
		fn(&o)
	}

	if o.tolerance < 0 {
		o.tolerance = o.pred.Tolerance()
	}

	return o
}
