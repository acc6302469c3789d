package combine

import (
	"fmt"

	"github.com/hupe1980/meshkit/merge"
	"github.com/hupe1980/meshkit/mesh"
)

// Parent is an input element an output element derives from.
type Parent struct {
	// Operand is the position of the input mesh in the call.
	Operand int
	ID      mesh.ElementID
}

func (p Parent) String() string { return fmt.Sprintf("%d:%s", p.Operand, p.ID) }

// Conflict is a field whose parents carry different values for one output
// element.
type Conflict struct {
	Element mesh.ElementID
	Field   string
	Values  []float64
}

// Diagnostics collects what an operation reported without failing.
type Diagnostics struct {
	// Merge holds the node clusters the deduplication did not apply.
	Merge merge.Diagnostics
	// Conflicts lists disagreeing field values.
	Conflicts []Conflict
	// Dropped lists fields missing from some blocks of an aggregate.
	Dropped []string
}

// Len returns the number of reported issues.
func (d Diagnostics) Len() int { return d.Merge.Len() + len(d.Conflicts) + len(d.Dropped) }

// Err returns the unapplied merge clusters as one joined error, or nil.
// Conflicts and dropped fields are data, not errors.
func (d Diagnostics) Err() error { return d.Merge.Err() }

// Result is the outcome of a combination.
type Result struct {
	Mesh *mesh.Mesh
	// Provenance maps every output element to the inputs it came from.
	Provenance map[mesh.ElementID][]Parent
	Diagnostics Diagnostics
}
