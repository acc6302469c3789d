package selector

import (
	"slices"

	"github.com/hupe1980/meshkit/mesh"
)

type and []Selector

// And matches elements selected by every operand. Cheap operands run first
// so that geometric tests only see what survives them.
func And(ss ...Selector) Selector {
	ordered := slices.Clone(ss)
	slices.SortStableFunc(ordered, func(a, b Selector) int { return a.weight() - b.weight() })

	return and(ordered)
}

func (a and) weight() int { return 2 }

func (a and) Apply(r mesh.Reader, in *mesh.IDSet) (*mesh.IDSet, error) {
	cur := in

	for _, s := range a {
		next, err := s.Apply(r, cur)
		if err != nil {
			return nil, err
		}

		cur = next
	}

	return cur, nil
}

type or []Selector

// Or matches elements selected by any operand.
func Or(ss ...Selector) Selector { return or(ss) }

func (o or) weight() int { return 2 }

func (o or) Apply(r mesh.Reader, in *mesh.IDSet) (*mesh.IDSet, error) {
	out := mesh.NewIDSet()

	for _, s := range o {
		part, err := s.Apply(r, in)
		if err != nil {
			return nil, err
		}

		out = out.Union(part)
	}

	return out, nil
}

type not struct{ s Selector }

// Not matches elements s does not select.
func Not(s Selector) Selector { return not{s: s} }

func (n not) weight() int { return 2 }

func (n not) Apply(r mesh.Reader, in *mesh.IDSet) (*mesh.IDSet, error) {
	sel, err := n.s.Apply(r, in)
	if err != nil {
		return nil, err
	}

	return in.Difference(sel), nil
}
