package merge

import (
	"fmt"
	"strings"

	"github.com/hupe1980/meshkit/geom"
)

// Representative selects where a merged cluster ends up.
type Representative int

const (
	// First keeps the smallest node of the cluster in place.
	First Representative = iota
	// Centroid moves the kept node to the cluster centroid.
	Centroid
)

func (r Representative) String() string {
	if r == Centroid {
		return "centroid"
	}

	return "first"
}

// ParseRepresentative parses "first" or "centroid".
func ParseRepresentative(s string) (Representative, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return First, nil
	case "centroid":
		return Centroid, nil
	default:
		return First, fmt.Errorf("merge: unknown representative %q", s)
	}
}

// Option configures MergeNodes and Snap.
type Option func(*options)

type options struct {
	representative Representative
	strict         bool
	pred           geom.Predicates
}

// WithRepresentative selects the cluster representative. The default is
// First.
func WithRepresentative(r Representative) Option {
	return func(o *options) {
		o.representative = r
	}
}

// WithCentroid is shorthand for WithRepresentative(Centroid).
func WithCentroid() Option { return WithRepresentative(Centroid) }

// WithStrict makes ambiguous clusters fatal.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithPredicates sets the predicates used to detect degenerate elements.
func WithPredicates(p geom.Predicates) Option {
	return func(o *options) {
		o.pred = p
	}
}

func applyOptions(opts []Option) options {
	o := options{representative: First, pred: geom.Default()}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
