package mesh

import (
	"slices"
)

// Connectivity stores the node tuples of one block, either with a fixed arity
// or with an offsets array for poly types.
type Connectivity struct {
	arity   int
	data    []int
	offsets []int
}

// NewRegular creates fixed-arity connectivity. len(data) must be a multiple
// of arity.
func NewRegular(arity int, data []int) (Connectivity, error) {
	if arity <= 0 {
		return Connectivity{}, structuralf("connectivity", "arity must be positive, got %d", arity)
	}

	if len(data)%arity != 0 {
		return Connectivity{}, structuralf("connectivity", "%d indices are not a multiple of arity %d", len(data), arity)
	}

	return Connectivity{arity: arity, data: data}, nil
}

// NewPoly creates variable-arity connectivity. offsets has one entry more
// than the number of elements, starts at 0, is non-decreasing and ends at
// len(data).
func NewPoly(data, offsets []int) (Connectivity, error) {
	if len(offsets) == 0 || offsets[0] != 0 {
		return Connectivity{}, structuralf("connectivity", "offsets must start at 0")
	}

	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return Connectivity{}, structuralf("connectivity", "offsets decrease at %d", i)
		}
	}

	if offsets[len(offsets)-1] != len(data) {
		return Connectivity{}, structuralf("connectivity", "last offset %d does not match %d indices",
			offsets[len(offsets)-1], len(data))
	}

	return Connectivity{data: data, offsets: offsets}, nil
}

// PolyFromTuples builds poly connectivity from element tuples.
func PolyFromTuples(tuples [][]int) Connectivity {
	c := Connectivity{offsets: make([]int, 1, len(tuples)+1)}
	for _, t := range tuples {
		c.data = append(c.data, t...)
		c.offsets = append(c.offsets, len(c.data))
	}

	return c
}

// IsPoly reports whether c uses offsets.
func (c Connectivity) IsPoly() bool { return c.arity == 0 }

// Arity returns the fixed arity, or 0 for poly connectivity.
func (c Connectivity) Arity() int { return c.arity }

// Len returns the number of elements.
func (c Connectivity) Len() int {
	if c.arity > 0 {
		return len(c.data) / c.arity
	}

	if len(c.offsets) == 0 {
		return 0
	}

	return len(c.offsets) - 1
}

// At returns the node tuple of element i. The slice aliases internal
// storage and must not be modified.
func (c Connectivity) At(i int) []int {
	if c.arity > 0 {
		return c.data[i*c.arity : (i+1)*c.arity : (i+1)*c.arity]
	}

	return c.data[c.offsets[i]:c.offsets[i+1]:c.offsets[i+1]]
}

// Data returns a copy of the flat index array.
func (c Connectivity) Data() []int { return slices.Clone(c.data) }

// Offsets returns a copy of the offsets array (nil for regular connectivity).
func (c Connectivity) Offsets() []int { return slices.Clone(c.offsets) }

// MaxNode returns the largest node index referenced, or -1.
func (c Connectivity) MaxNode() int {
	m := -1
	for _, n := range c.data {
		m = max(m, n)
	}

	return m
}

func (c Connectivity) clone() Connectivity {
	return Connectivity{arity: c.arity, data: slices.Clone(c.data), offsets: slices.Clone(c.offsets)}
}

// subset copies the elements at the given local indices, in order.
func (c Connectivity) subset(indices []int) Connectivity {
	if c.arity > 0 {
		out := Connectivity{arity: c.arity, data: make([]int, 0, len(indices)*c.arity)}
		for _, i := range indices {
			out.data = append(out.data, c.At(i)...)
		}

		return out
	}

	out := Connectivity{offsets: make([]int, 1, len(indices)+1)}
	for _, i := range indices {
		out.data = append(out.data, c.At(i)...)
		out.offsets = append(out.offsets, len(out.data))
	}

	return out
}

// remap rewrites every node index through m, leaving face separators alone.
func (c Connectivity) remap(m []int) {
	for i, n := range c.data {
		if n != FaceSeparator {
			c.data[i] = m[n]
		}
	}
}

func (c Connectivity) offset(delta int) Connectivity {
	out := c.clone()
	for i, n := range out.data {
		if n != FaceSeparator {
			out.data[i] = n + delta
		}
	}

	return out
}
