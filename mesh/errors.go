package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural marks malformed input: bad indices, inconsistent arity,
	// partial fields or an unknown element type.
	ErrStructural = errors.New("structural error")
	// ErrValidity marks topologically or geometrically invalid meshes.
	ErrValidity = errors.New("validity error")
	// ErrToleranceAmbiguity marks proximity clusters that cannot be resolved
	// within the requested tolerance.
	ErrToleranceAmbiguity = errors.New("tolerance ambiguity")
	// ErrDimension marks operations applied to unsupported dimensions.
	ErrDimension = errors.New("dimension error")
	// ErrBorrowed is returned when a mesh is already mutably borrowed.
	ErrBorrowed = errors.New("mesh is mutably borrowed")
	// ErrBorrowReleased is returned when a released mutable view is used.
	ErrBorrowReleased = errors.New("mutable view released")
)

// StructuralError reports malformed mesh data.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type StructuralError struct {
	Op     string
	Detail string
	Err    error
}

func (e *StructuralError) Error() string {
	return formatError(e.Op, ErrStructural, e.Detail, e.Err)
}

// Is matches ErrStructural.
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

func (e *StructuralError) Unwrap() error { return e.Err }

// ValidityError reports a topologically or geometrically invalid element or
// sub-entity. Nodes holds the offending node tuple when known.
type ValidityError struct {
	Op      string
	Element ElementID
	Nodes   []int
	Detail  string
	Err     error
}

func (e *ValidityError) Error() string {
	detail := e.Detail
	if e.Element.Type.Valid() {
		detail = fmt.Sprintf("%s: %s", e.Element, detail)
	}

	if len(e.Nodes) > 0 {
		detail = fmt.Sprintf("%s (nodes %v)", detail, e.Nodes)
	}

	return formatError(e.Op, ErrValidity, detail, e.Err)
}

// Is matches ErrValidity.
func (e *ValidityError) Is(target error) bool { return target == ErrValidity }

func (e *ValidityError) Unwrap() error { return e.Err }

// ToleranceAmbiguityError reports a cluster of nodes whose transitive
// proximity group spans more than the tolerance.
type ToleranceAmbiguityError struct {
	Op        string
	Nodes     []int
	Diameter  float64
	Tolerance float64
}

func (e *ToleranceAmbiguityError) Error() string {
	return formatError(e.Op, ErrToleranceAmbiguity,
		fmt.Sprintf("cluster %v spans %g > tolerance %g", e.Nodes, e.Diameter, e.Tolerance), nil)
}

// Is matches ErrToleranceAmbiguity.
func (e *ToleranceAmbiguityError) Is(target error) bool { return target == ErrToleranceAmbiguity }

// DimensionError reports an operation applied to a mesh whose space or
// topological dimension it does not support.
type DimensionError struct {
	Op       string
	SpaceDim int
	TopoDim  Dimension
	Detail   string
}

func (e *DimensionError) Error() string {
	return formatError(e.Op, ErrDimension,
		fmt.Sprintf("%s (space dimension %d, topological dimension %s)", e.Detail, e.SpaceDim, e.TopoDim), nil)
}

// Is matches ErrDimension.
func (e *DimensionError) Is(target error) bool { return target == ErrDimension }

func formatError(op string, kind error, detail string, cause error) string {
	msg := kind.Error()
	if op != "" {
		msg = op + ": " + msg
	}

	if detail != "" {
		msg += ": " + detail
	}

	if cause != nil {
		msg += ": " + cause.Error()
	}

	return msg
}

func structuralf(op, format string, args ...any) error {
	return &StructuralError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
