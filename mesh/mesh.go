package mesh

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
)

// Reader is the read-only access shared by owned meshes, views and mutable
// views.
type Reader interface {
	Name() string
	Description() string
	SpaceDim() int
	NumNodes() int
	// Coord returns the coordinates of node i. The slice must not be modified.
	Coord(i int) []float64
	// Coords returns the coordinate store. Derived meshes call Share on it.
	Coords() *CoordStore
	// Types returns the element types present, in canonical order.
	Types() []ElementType
	// Block returns the block of type et. Blocks must not be modified.
	Block(et ElementType) (*ElementBlock, bool)
}

// Mesh is an owned unstructured mesh: a coordinate store plus one element
// block per element type.
type Mesh struct {
	name        string
	description string
	coords      *CoordStore
	blocks      map[ElementType]*ElementBlock
	borrowed    atomic.Bool
}

// Option configures a Mesh.
type Option func(*Mesh)

// WithName sets the mesh name.
func WithName(name string) Option {
	return func(m *Mesh) { m.name = name }
}

// WithDescription sets the mesh description.
func WithDescription(desc string) Option {
	return func(m *Mesh) { m.description = desc }
}

// New creates a mesh over coords. Every block must have a distinct type and
// reference only existing nodes.
func New(coords *CoordStore, blocks []*ElementBlock, opts ...Option) (*Mesh, error) {
	m := &Mesh{coords: coords, blocks: make(map[ElementType]*ElementBlock, len(blocks))}

	for _, b := range blocks {
		if b == nil {
			continue
		}

		if _, dup := m.blocks[b.typ]; dup {
			return nil, structuralf("new mesh", "duplicate block for %s", b.typ)
		}

		if maxNode := b.conn.MaxNode(); maxNode >= coords.Len() {
			return nil, structuralf("new mesh", "%s references node %d but only %d nodes exist", b.typ, maxNode, coords.Len())
		}

		m.blocks[b.typ] = b
	}

	for _, fn := range opts {
		fn(m)
	}

	return m, nil
}

// Empty creates a mesh with no nodes and no elements.
func Empty(spaceDim int) (*Mesh, error) {
	cs, err := NewCoordStore(spaceDim, nil)
	if err != nil {
		return nil, err
	}

	return &Mesh{coords: cs, blocks: map[ElementType]*ElementBlock{}}, nil
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// Description returns the mesh description.
func (m *Mesh) Description() string { return m.description }

// SpaceDim returns the coordinate dimension.
func (m *Mesh) SpaceDim() int { return m.coords.SpaceDim() }

// NumNodes returns the number of nodes.
func (m *Mesh) NumNodes() int { return m.coords.Len() }

// Coord returns the coordinates of node i.
func (m *Mesh) Coord(i int) []float64 { return m.coords.At(i) }

// Coords returns the coordinate store.
func (m *Mesh) Coords() *CoordStore { return m.coords }

// Types returns the element types present, in canonical order.
func (m *Mesh) Types() []ElementType {
	return slices.Sorted(maps.Keys(m.blocks))
}

// Block returns the block of type et.
func (m *Mesh) Block(et ElementType) (*ElementBlock, bool) {
	b, ok := m.blocks[et]
	return b, ok
}

// SetName renames the mesh. It fails while the mesh is mutably borrowed.
func (m *Mesh) SetName(name string) error {
	if m.borrowed.Load() {
		return ErrBorrowed
	}

	m.name = name

	return nil
}

// SetDescription sets the description. It fails while the mesh is mutably
// borrowed.
func (m *Mesh) SetDescription(desc string) error {
	if m.borrowed.Load() {
		return ErrBorrowed
	}

	m.description = desc

	return nil
}

// View returns a read-only view of m.
func (m *Mesh) View() View { return View{m: m} }

// BorrowMut returns an exclusive mutable view. The coordinate store is made
// exclusive first, so holders of shared handles never observe mutations.
// Only one mutable view may exist at a time.
func (m *Mesh) BorrowMut() (*ViewMut, error) {
	if !m.borrowed.CompareAndSwap(false, true) {
		return nil, ErrBorrowed
	}

	m.coords.EnsureExclusive()

	return &ViewMut{m: m}, nil
}

// Release drops m's ownership of its coordinate store.
func (m *Mesh) Release() error {
	if m.borrowed.Load() {
		return ErrBorrowed
	}

	m.coords.Release()

	return nil
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh(%q, %d nodes, %d elements)", m.name, m.NumNodes(), NumElements(m))
}

// View is a read-only borrow of a Mesh.
type View struct {
	m *Mesh
}

// Name returns the mesh name.
func (v View) Name() string { return v.m.Name() }

// Description returns the mesh description.
func (v View) Description() string { return v.m.Description() }

// SpaceDim returns the coordinate dimension.
func (v View) SpaceDim() int { return v.m.SpaceDim() }

// NumNodes returns the number of nodes.
func (v View) NumNodes() int { return v.m.NumNodes() }

// Coord returns the coordinates of node i.
func (v View) Coord(i int) []float64 { return v.m.Coord(i) }

// Coords returns the coordinate store.
func (v View) Coords() *CoordStore { return v.m.Coords() }

// Types returns the element types present.
func (v View) Types() []ElementType { return v.m.Types() }

// Block returns the block of type et.
func (v View) Block(et ElementType) (*ElementBlock, bool) { return v.m.Block(et) }

// ViewMut is an exclusive mutable borrow of a Mesh. It allows metadata and
// coordinate mutation that keeps every block's shape. After Release every
// mutator returns ErrBorrowReleased and reads see an empty mesh.
type ViewMut struct {
	m *Mesh
}

var releasedMesh = &Mesh{
	coords: &CoordStore{dim: 1, h: &coordHandle{released: true}},
	blocks: map[ElementType]*ElementBlock{},
}

func (v *ViewMut) target() *Mesh {
	if v.m == nil {
		return releasedMesh
	}

	return v.m
}

// Name returns the mesh name.
func (v *ViewMut) Name() string { return v.target().Name() }

// Description returns the mesh description.
func (v *ViewMut) Description() string { return v.target().Description() }

// SpaceDim returns the coordinate dimension.
func (v *ViewMut) SpaceDim() int { return v.target().SpaceDim() }

// NumNodes returns the number of nodes.
func (v *ViewMut) NumNodes() int { return v.target().NumNodes() }

// Coord returns the coordinates of node i.
func (v *ViewMut) Coord(i int) []float64 { return v.target().Coord(i) }

// Coords returns the coordinate store.
func (v *ViewMut) Coords() *CoordStore { return v.target().Coords() }

// Types returns the element types present.
func (v *ViewMut) Types() []ElementType { return v.target().Types() }

// Block returns the block of type et.
func (v *ViewMut) Block(et ElementType) (*ElementBlock, bool) { return v.target().Block(et) }

// Release ends the borrow.
func (v *ViewMut) Release() {
	if v.m == nil {
		return
	}

	v.m.borrowed.Store(false)
	v.m = nil
}

func (v *ViewMut) block(op string, et ElementType) (*ElementBlock, error) {
	if v.m == nil {
		return nil, ErrBorrowReleased
	}

	b, ok := v.m.blocks[et]
	if !ok {
		return nil, structuralf(op, "no %s block", et)
	}

	return b, nil
}

// AssignField sets a dense field on the block of type et. values must hold
// exactly one value per element.
func (v *ViewMut) AssignField(et ElementType, name string, values []float64) error {
	b, err := v.block("assign field", et)
	if err != nil {
		return err
	}

	return b.setField(name, slices.Clone(values))
}

// SetGroup replaces the members of a group and recomputes families.
func (v *ViewMut) SetGroup(et ElementType, name string, members []int) error {
	b, err := v.block("set group", et)
	if err != nil {
		return err
	}

	return b.setGroup(name, members)
}

// SetFamily moves element id into family fam, updating its group
// membership. fam must be 0 or an existing family of the block.
func (v *ViewMut) SetFamily(id ElementID, fam int) error {
	b, err := v.block("set family", id.Type)
	if err != nil {
		return err
	}

	return b.setFamily(id.Index, fam)
}

// SetCoord overwrites the coordinates of node i.
func (v *ViewMut) SetCoord(i int, p []float64) error {
	if v.m == nil {
		return ErrBorrowReleased
	}

	if i < 0 || i >= v.m.NumNodes() {
		return structuralf("set coord", "node %d out of range [0,%d)", i, v.m.NumNodes())
	}

	if len(p) != v.m.SpaceDim() {
		return &DimensionError{Op: "set coord", SpaceDim: v.m.SpaceDim(), Detail: fmt.Sprintf("point has %d coordinates", len(p))}
	}

	v.m.coords.set(i, p)

	return nil
}

// TransformCoordinates applies fn to every node in place.
func (v *ViewMut) TransformCoordinates(fn func(p []float64)) error {
	if v.m == nil {
		return ErrBorrowReleased
	}

	cs := v.m.coords
	cs.EnsureExclusive()

	for i := range cs.Len() {
		fn(cs.data[i*cs.dim : (i+1)*cs.dim])
	}

	return nil
}

// RenumberNodes applies the permutation perm (old index -> new index) to the
// coordinates and to every block.
func (v *ViewMut) RenumberNodes(perm []int) error {
	if v.m == nil {
		return ErrBorrowReleased
	}

	n := v.m.NumNodes()
	if len(perm) != n {
		return structuralf("renumber nodes", "permutation has %d entries for %d nodes", len(perm), n)
	}

	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return structuralf("renumber nodes", "not a permutation of [0,%d)", n)
		}

		seen[p] = true
	}

	cs := v.m.coords
	dim := cs.dim
	flat := make([]float64, n*dim)

	for old, nw := range perm {
		copy(flat[nw*dim:(nw+1)*dim], cs.At(old))
	}

	cs.replace(flat)

	for _, b := range v.m.blocks {
		b.conn.remap(perm)
	}

	return nil
}
