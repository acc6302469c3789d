package mesh

import (
	"fmt"
)

// Clone returns an owned copy of r. Blocks are copied; coordinates are
// shared copy-on-write.
func Clone(r Reader) *Mesh {
	m := &Mesh{
		name:        r.Name(),
		description: r.Description(),
		coords:      r.Coords().Share(),
		blocks:      make(map[ElementType]*ElementBlock),
	}

	for _, et := range r.Types() {
		b, _ := r.Block(et)
		m.blocks[et] = b.clone()
	}

	return m
}

// Extract returns a new mesh holding only the elements in ids, in id order.
// Coordinates are shared; use Prune to drop unreferenced nodes.
func Extract(r Reader, ids *IDSet) (*Mesh, error) {
	m := &Mesh{
		name:        r.Name(),
		description: r.Description(),
		blocks:      make(map[ElementType]*ElementBlock),
	}

	for _, et := range ids.Types() {
		b, ok := r.Block(et)
		indices := ids.Indices(et)

		if !ok || indices[len(indices)-1] >= b.Len() {
			return nil, structuralf("extract", "selection references missing %s elements", et)
		}

		m.blocks[et] = b.subset(indices)
	}

	m.coords = r.Coords().Share()

	return m, nil
}

// RenumberCells returns a new mesh whose block et lists the old elements in
// the given order (new index j holds old element order[j]).
func RenumberCells(r Reader, et ElementType, order []int) (*Mesh, error) {
	b, ok := r.Block(et)
	if !ok {
		return nil, structuralf("renumber cells", "no %s block", et)
	}

	if len(order) != b.Len() {
		return nil, structuralf("renumber cells", "order has %d entries for %d elements", len(order), b.Len())
	}

	seen := make([]bool, b.Len())
	for _, o := range order {
		if o < 0 || o >= b.Len() || seen[o] {
			return nil, structuralf("renumber cells", "order is not a permutation of [0,%d)", b.Len())
		}

		seen[o] = true
	}

	m := Clone(r)
	m.blocks[et] = b.subset(order)

	return m, nil
}

// Prune returns a new mesh whose coordinates hold only referenced nodes, plus
// the old -> new node map (-1 for dropped nodes).
func Prune(r Reader) (*Mesh, []int) {
	cs, remap := r.Coords().Compact(usedMask(r))

	m := &Mesh{
		name:        r.Name(),
		description: r.Description(),
		coords:      cs,
		blocks:      make(map[ElementType]*ElementBlock),
	}

	for _, et := range r.Types() {
		b, _ := r.Block(et)
		nb := b.clone()
		nb.conn.remap(remap)
		m.blocks[et] = nb
	}

	return m, remap
}

// WithCoords returns a new mesh with r's blocks over different coordinates.
// Every block must stay within the new node range.
func WithCoords(r Reader, coords *CoordStore) (*Mesh, error) {
	blocks := make([]*ElementBlock, 0, len(r.Types()))

	for _, et := range r.Types() {
		b, _ := r.Block(et)
		blocks = append(blocks, b.clone())
	}

	return New(coords, blocks, WithName(r.Name()), WithDescription(r.Description()))
}

// WithBlocks returns a new mesh over r's shared coordinates with the given
// blocks.
func WithBlocks(r Reader, blocks []*ElementBlock) (*Mesh, error) {
	return New(r.Coords().Share(), blocks, WithName(r.Name()), WithDescription(r.Description()))
}

// RemapNodes returns a copy of b whose node indices are rewritten through m.
func RemapNodes(b *ElementBlock, m []int) (*ElementBlock, error) {
	out := b.clone()
	for _, n := range out.conn.data {
		if n != FaceSeparator && (n >= len(m) || m[n] < 0) {
			return nil, structuralf("remap nodes", "node %d has no image", n)
		}
	}

	out.conn.remap(m)

	return out, nil
}

// Builder assembles a mesh element by element.
type Builder struct {
	dim    int
	coords []float64
	tuples map[ElementType][][]int
	fields map[ElementType]map[string][]float64
	groups map[ElementType]map[string][]int
	opts   []Option
	err    error
}

// NewBuilder creates a builder for a spaceDim-dimensional mesh.
func NewBuilder(spaceDim int, opts ...Option) *Builder {
	return &Builder{
		dim:    spaceDim,
		tuples: make(map[ElementType][][]int),
		fields: make(map[ElementType]map[string][]float64),
		groups: make(map[ElementType]map[string][]int),
		opts:   opts,
	}
}

// AddNode appends a node and returns its index.
func (b *Builder) AddNode(p ...float64) int {
	if len(p) != b.dim && b.err == nil {
		b.err = &DimensionError{Op: "build", SpaceDim: b.dim, Detail: fmt.Sprintf("node with %d coordinates", len(p))}
	}

	b.coords = append(b.coords, p...)

	return len(b.coords)/b.dim - 1
}

// NumNodes returns the number of nodes added so far.
func (b *Builder) NumNodes() int { return len(b.coords) / b.dim }

// AddElement appends an element and returns its id.
func (b *Builder) AddElement(et ElementType, nodes ...int) ElementID {
	cp := append([]int(nil), nodes...)
	b.tuples[et] = append(b.tuples[et], cp)

	return ElementID{Type: et, Index: len(b.tuples[et]) - 1}
}

// SetField sets a dense field of block et. It must cover every element of
// the block when Build runs.
func (b *Builder) SetField(et ElementType, name string, values []float64) {
	if b.fields[et] == nil {
		b.fields[et] = make(map[string][]float64)
	}

	b.fields[et][name] = values
}

// AddToGroup adds elements to a named group.
func (b *Builder) AddToGroup(name string, ids ...ElementID) {
	for _, id := range ids {
		if b.groups[id.Type] == nil {
			b.groups[id.Type] = make(map[string][]int)
		}

		b.groups[id.Type][name] = append(b.groups[id.Type][name], id.Index)
	}
}

// Build validates and returns the mesh.
func (b *Builder) Build() (*Mesh, error) {
	if b.err != nil {
		return nil, b.err
	}

	cs, err := NewCoordStore(b.dim, b.coords)
	if err != nil {
		return nil, err
	}

	var blocks []*ElementBlock

	for _, et := range AllTypes {
		tuples, ok := b.tuples[et]
		if !ok {
			continue
		}

		var conn Connectivity
		if et.IsPoly() {
			conn = PolyFromTuples(tuples)
		} else {
			data := make([]int, 0, len(tuples)*et.NumNodes())
			for i, t := range tuples {
				if len(t) != et.NumNodes() {
					return nil, structuralf("build", "%s has %d nodes, want %d", ElementID{Type: et, Index: i}, len(t), et.NumNodes())
				}

				data = append(data, t...)
			}

			if conn, err = NewRegular(et.NumNodes(), data); err != nil {
				return nil, err
			}
		}

		opts := []BlockOption{WithFields(b.fields[et])}
		for name, members := range b.groups[et] {
			opts = append(opts, WithGroup(name, members...))
		}

		blk, err := NewElementBlock(et, conn, opts...)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, blk)
	}

	for et := range b.fields {
		if _, ok := b.tuples[et]; !ok {
			return nil, structuralf("build", "field set on empty %s block", et)
		}
	}

	return New(cs, blocks, b.opts...)
}
