package meshkit

import (
	"errors"

	"github.com/hupe1980/meshkit/mesh"
)

var (
	// ErrStructural marks malformed input.
	ErrStructural = mesh.ErrStructural
	// ErrValidity marks topologically or geometrically invalid meshes.
	ErrValidity = mesh.ErrValidity
	// ErrToleranceAmbiguity marks unresolvable proximity clusters.
	ErrToleranceAmbiguity = mesh.ErrToleranceAmbiguity
	// ErrDimension marks operations applied to unsupported dimensions.
	ErrDimension = mesh.ErrDimension
	// ErrBorrowed is returned when a mesh is already mutably borrowed.
	ErrBorrowed = mesh.ErrBorrowed

	// ErrNoRepository is returned by Save and Load when the kernel has no
	// blob store.
	ErrNoRepository = errors.New("meshkit: no repository configured")
)

type (
	// StructuralError reports malformed mesh data.
	StructuralError = mesh.StructuralError
	// ValidityError reports an invalid element or sub-entity.
	ValidityError = mesh.ValidityError
	// ToleranceAmbiguityError reports a cluster spanning more than the
	// tolerance.
	ToleranceAmbiguityError = mesh.ToleranceAmbiguityError
	// DimensionError reports an unsupported dimension.
	DimensionError = mesh.DimensionError
)
