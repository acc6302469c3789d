package canon

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/meshkit/mesh"
)

// Mode is an equivalence relation on node tuples.
type Mode uint8

const (
	// Exact treats tuples as equal only in identical order.
	Exact Mode = iota
	// Rotational applies the orientation-preserving automorphisms of the type.
	Rotational
	// Chiral also applies orientation-reversing automorphisms.
	Chiral
	// Unordered compares node sets, discarding order entirely.
	Unordered
)

var modeNames = [...]string{"exact", "rotational", "chiral", "unordered"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}

	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}

	return 0, &mesh.StructuralError{Op: "parse mode", Detail: fmt.Sprintf("unknown equivalence mode %q", s)}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}

	*m = v

	return nil
}

// Signature is the canonical representative of a node tuple: the element
// type followed by the lexicographically smallest image of the tuple under
// the mode's automorphism group. Signatures are comparable map keys.
type Signature string

// Type returns the element type encoded in s.
func (s Signature) Type() mesh.ElementType {
	if len(s) == 0 {
		return mesh.InvalidType
	}

	return mesh.ElementType(s[0])
}

// Nodes decodes the canonical node tuple.
func (s Signature) Nodes() []int {
	var out []int

	buf := []byte(s)
	if len(buf) > 0 {
		buf = buf[1:]
	}

	for len(buf) > 0 {
		v, n := binary.Varint(buf)
		if n <= 0 {
			break
		}

		out = append(out, int(v))
		buf = buf[n:]
	}

	return out
}

func encode(et mesh.ElementType, nodes []int) Signature {
	buf := make([]byte, 1, 1+len(nodes)*3)
	buf[0] = byte(et)

	for _, n := range nodes {
		buf = binary.AppendVarint(buf, int64(n))
	}

	return Signature(buf)
}

// Of returns the signature of (et, nodes) under mode, together with the mode
// actually applied. Tuples without an automorphism table (PHED, PGON and
// SPLINE beyond MaxPolySize nodes, malformed tuples) fall back to Unordered.
func Of(et mesh.ElementType, nodes []int, mode Mode) (Signature, Mode) {
	tuple, eff := Canonical(et, nodes, mode)
	return encode(et, tuple), eff
}

// Canonical returns the canonical tuple of (et, nodes) under mode and the
// mode actually applied.
func Canonical(et mesh.ElementType, nodes []int, mode Mode) ([]int, Mode) {
	switch mode {
	case Exact:
		return slices.Clone(nodes), Exact
	case Unordered:
		return sorted(nodes), Unordered
	}

	chiral := mode == Chiral

	var (
		perms [][]int
		ok    bool
	)

	switch et {
	case mesh.Pgon, mesh.Spline:
		perms, ok = polyTable(et, len(nodes), chiral)
	default:
		perms, ok = table(et, chiral)
		ok = ok && len(nodes) == et.NumNodes()
	}

	if !ok {
		return sorted(nodes), Unordered
	}

	best := make([]int, len(nodes))
	cand := make([]int, len(nodes))

	for k, g := range perms {
		for i, src := range g {
			cand[i] = nodes[src]
		}

		if k == 0 || slices.Compare(cand, best) < 0 {
			copy(best, cand)
		}
	}

	return best, mode
}

// Equivalent reports whether a and b have equal signatures under mode.
func Equivalent(et mesh.ElementType, a, b []int, mode Mode) bool {
	sa, _ := Of(et, a, mode)
	sb, _ := Of(et, b, mode)

	return sa == sb
}

// Reversed reports whether b is an orientation-reversed image of a: equal
// under Chiral but not under Rotational. Types without a table report false.
func Reversed(et mesh.ElementType, a, b []int) bool {
	ra, eff := Of(et, a, Rotational)
	if eff != Rotational {
		return false
	}

	rb, _ := Of(et, b, Rotational)

	return ra != rb && Equivalent(et, a, b, Chiral)
}

// Oriented reports whether et has an automorphism table, i.e. whether
// Rotational and Chiral are honoured for it. PGON and SPLINE are tabulated
// up to MaxPolySize nodes.
func Oriented(et mesh.ElementType) bool {
	if et == mesh.Pgon || et == mesh.Spline {
		return true
	}

	_, ok := table(et, false)

	return ok
}

// RequireOriented returns a StructuralError for types whose signatures would
// silently lose orientation.
func RequireOriented(et mesh.ElementType) error {
	if Oriented(et) {
		return nil
	}

	return &mesh.StructuralError{Op: "canonicalize", Detail: fmt.Sprintf("%s has no orientation-aware automorphism group", et)}
}

func sorted(nodes []int) []int {
	out := slices.Clone(nodes)
	slices.Sort(out)

	return out
}
