package selector

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/meshkit/field"
	"github.com/hupe1980/meshkit/mesh"
)

// Selector narrows a set of element ids of a mesh.
type Selector interface {
	// Apply returns the members of in that match.
	Apply(r mesh.Reader, in *mesh.IDSet) (*mesh.IDSet, error)
	// weight orders the operands of And: cheap selectors run first.
	weight() int
}

// Select applies s to every element of r and returns the matching ids
// together with a mesh holding only those elements over shared coordinates.
func Select(r mesh.Reader, s Selector) (*mesh.IDSet, *mesh.Mesh, error) {
	ids, err := s.Apply(r, mesh.AllOf(r))
	if err != nil {
		return nil, nil, err
	}

	m, err := mesh.Extract(r, ids)
	if err != nil {
		return nil, nil, err
	}

	return ids, m, nil
}

// leaf is a selector testing one element at a time.
type leaf struct {
	cost  int
	check func(r mesh.Reader) (func(id mesh.ElementID) bool, error)
}

func (l leaf) weight() int { return l.cost }

func (l leaf) Apply(r mesh.Reader, in *mesh.IDSet) (*mesh.IDSet, error) {
	match, err := l.check(r)
	if err != nil {
		return nil, err
	}

	out := mesh.NewIDSet()

	for id := range in.All() {
		if match(id) {
			out.Add(id)
		}
	}

	return out, nil
}

func constant(match func(id mesh.ElementID) bool) leaf {
	return leaf{check: func(mesh.Reader) (func(mesh.ElementID) bool, error) { return match, nil }}
}

// Types matches elements of the given types.
func Types(types ...mesh.ElementType) Selector {
	return constant(func(id mesh.ElementID) bool { return slices.Contains(types, id.Type) })
}

// Dimensions matches elements of the given topological dimensions.
func Dimensions(dims ...mesh.Dimension) Selector {
	return constant(func(id mesh.ElementID) bool { return slices.Contains(dims, id.Type.Dimension()) })
}

// IDs matches the listed elements.
func IDs(ids ...mesh.ElementID) Selector {
	set := mesh.NewIDSet(ids...)
	return constant(set.Contains)
}

// Group matches elements belonging to any of the named groups.
func Group(names ...string) Selector {
	return leaf{check: func(r mesh.Reader) (func(mesh.ElementID) bool, error) {
		return func(id mesh.ElementID) bool {
			b, ok := r.Block(id.Type)
			return ok && slices.ContainsFunc(names, func(n string) bool { return b.InGroup(n, id.Index) })
		}, nil
	}}
}

// Families matches elements whose family id is listed.
func Families(families ...int) Selector {
	return leaf{check: func(r mesh.Reader) (func(mesh.ElementID) bool, error) {
		return func(id mesh.ElementID) bool {
			b, ok := r.Block(id.Type)
			return ok && slices.Contains(families, b.Family(id.Index))
		}, nil
	}}
}

// Operator compares a field value with a constant.
type Operator string

const (
	// OpEqual matches equal values.
	OpEqual Operator = "eq"
	// OpNotEqual matches different values.
	OpNotEqual Operator = "ne"
	// OpGreaterThan matches values above the constant.
	OpGreaterThan Operator = "gt"
	// OpGreaterEqual matches values at or above the constant.
	OpGreaterEqual Operator = "gte"
	// OpLessThan matches values below the constant.
	OpLessThan Operator = "lt"
	// OpLessEqual matches values at or below the constant.
	OpLessEqual Operator = "lte"
)

func (op Operator) compare(v, c float64) (bool, error) {
	switch op {
	case OpEqual:
		return v == c, nil
	case OpNotEqual:
		return v != c, nil
	case OpGreaterThan:
		return v > c, nil
	case OpGreaterEqual:
		return v >= c, nil
	case OpLessThan:
		return v < c, nil
	case OpLessEqual:
		return v <= c, nil
	default:
		return false, &mesh.StructuralError{Op: "select", Detail: fmt.Sprintf("unknown operator %q", string(op))}
	}
}

// Field matches elements whose value of the named field satisfies op
// against value. Elements of blocks without the field never match.
func Field(name string, op Operator, value float64) Selector {
	return leaf{cost: 1, check: func(r mesh.Reader) (func(mesh.ElementID) bool, error) {
		if _, err := op.compare(0, value); err != nil {
			return nil, err
		}

		return func(id mesh.ElementID) bool {
			b, ok := r.Block(id.Type)
			if !ok {
				return false
			}

			vals, ok := b.Field(name)
			if !ok {
				return false
			}

			m, _ := op.compare(vals[id.Index], value)

			return m
		}, nil
	}}
}

// Compare matches elements for which left op right holds. Both sides are
// evaluated once per block; blocks where either side reads a missing field
// never match.
func Compare(left field.Expr, op Operator, right field.Expr) Selector {
	return leaf{cost: 2, check: func(r mesh.Reader) (func(mesh.ElementID) bool, error) {
		if _, err := op.compare(0, 0); err != nil {
			return nil, err
		}

		type sides struct{ l, r []float64 }

		vals := make(map[mesh.ElementType]sides, len(r.Types()))

		for _, et := range r.Types() {
			l, err := left.Eval(r, et)
			if errors.Is(err, field.ErrNoField) {
				continue
			} else if err != nil {
				return nil, err
			}

			rv, err := right.Eval(r, et)
			if errors.Is(err, field.ErrNoField) {
				continue
			} else if err != nil {
				return nil, err
			}

			vals[et] = sides{l: l, r: rv}
		}

		return func(id mesh.ElementID) bool {
			v, ok := vals[id.Type]
			if !ok {
				return false
			}

			m, _ := op.compare(v.l[id.Index], v.r[id.Index])

			return m
		}, nil
	}}
}

// Where matches elements whose value of e satisfies op against value.
func Where(e field.Expr, op Operator, value float64) Selector {
	return Compare(e, op, field.Const(value))
}
