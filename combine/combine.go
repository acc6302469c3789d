package combine

import "github.com/hupe1980/meshkit/mesh"

func everySlot(slot) bool { return true }

func firstOperand(s slot) bool { return s.operand == 0 }

func keepAll([]Parent) bool { return true }

func run(op string, opts []Option, visit func(slot) bool, keep func([]Parent) bool, inputs ...mesh.Reader) (*Result, error) {
	c, err := newCombiner(op, applyOptions(opts), inputs...)
	if err != nil {
		return nil, err
	}

	c.arrange(visit, keep)

	return c.finish()
}

// Fuse returns the union of the cells of a and b. Overlapping cells are cut
// into fragments that each remember the cells covering them, and shared
// edges become conforming.
func Fuse(a, b mesh.Reader, opts ...Option) (*Result, error) {
	return run("fuse", opts, everySlot, keepAll, a, b)
}

// Intersect returns the fragments of a that lie inside b.
func Intersect(a, b mesh.Reader, opts ...Option) (*Result, error) {
	return run("intersect", opts, firstOperand, func(ps []Parent) bool {
		return hasOperand(ps, 0) && hasOperand(ps, 1)
	}, a, b)
}

// Subtract returns the part of a outside the closure of b.
func Subtract(a, b mesh.Reader, opts ...Option) (*Result, error) {
	return run("subtract", opts, firstOperand, func(ps []Parent) bool {
		return !hasOperand(ps, 1)
	}, a, b)
}

// Split returns a with its cells cut along the boundary of b. The whole of a
// is kept.
func Split(a, b mesh.Reader, opts ...Option) (*Result, error) {
	return run("split", opts, firstOperand, keepAll, a, b)
}

// Conformize fuses m with itself: coincident nodes are merged, overlapping
// cells are cut apart and hanging nodes are inserted into the edges they
// lie on.
func Conformize(m mesh.Reader, opts ...Option) (*Result, error) {
	return run("conformize", opts, everySlot, keepAll, m)
}
