package mesh

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/meshkit/internal/conv"
)

// ElementBlock holds every element of one type together with its per-element
// fields, family ids and named groups.
//
// Family invariant: two elements share a family id iff they belong to exactly
// the same set of groups. Family 0 always means "no group".
type ElementBlock struct {
	typ          ElementType
	conn         Connectivity
	fields       map[string][]float64
	families     []int
	familyGroups map[int][]string
	groups       map[string]*roaring.Bitmap
}

type blockOptions struct {
	fields      map[string][]float64
	groups      map[string][]int
	families    []int
	familyTable map[int][]string
}

// BlockOption configures NewElementBlock.
type BlockOption func(*blockOptions)

// WithField attaches a dense per-element field.
func WithField(name string, values []float64) BlockOption {
	return func(o *blockOptions) {
		if o.fields == nil {
			o.fields = make(map[string][]float64)
		}

		o.fields[name] = values
	}
}

// WithFields attaches several fields at once.
func WithFields(fields map[string][]float64) BlockOption {
	return func(o *blockOptions) {
		for name, v := range fields {
			WithField(name, v)(o)
		}
	}
}

// WithGroup adds local indices to a named group.
func WithGroup(name string, members ...int) BlockOption {
	return func(o *blockOptions) {
		if o.groups == nil {
			o.groups = make(map[string][]int)
		}

		o.groups[name] = append(o.groups[name], members...)
	}
}

// WithFamilies sets explicit family ids and the family -> groups table.
// Group membership is derived from the table. Mutually exclusive with
// WithGroup.
func WithFamilies(ids []int, table map[int][]string) BlockOption {
	return func(o *blockOptions) {
		o.families = ids
		o.familyTable = table
	}
}

// NewElementBlock validates conn against et and builds a block.
func NewElementBlock(et ElementType, conn Connectivity, opts ...BlockOption) (*ElementBlock, error) {
	const op = "new element block"

	if !et.Valid() {
		return nil, structuralf(op, "invalid element type %d", uint8(et))
	}

	if et.IsPoly() != conn.IsPoly() {
		return nil, structuralf(op, "%s requires poly=%t connectivity", et, et.IsPoly())
	}

	if !et.IsPoly() && conn.Arity() != et.NumNodes() {
		return nil, structuralf(op, "%s requires arity %d, got %d", et, et.NumNodes(), conn.Arity())
	}

	for i := range conn.Len() {
		if err := checkTuple(et, conn.At(i)); err != nil {
			return nil, &StructuralError{Op: op, Detail: ElementID{Type: et, Index: i}.String(), Err: err}
		}
	}

	o := blockOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	b := &ElementBlock{
		typ:          et,
		conn:         conn,
		fields:       make(map[string][]float64),
		families:     make([]int, conn.Len()),
		familyGroups: map[int][]string{},
		groups:       make(map[string]*roaring.Bitmap),
	}

	for name, v := range o.fields {
		if err := b.setField(name, v); err != nil {
			return nil, err
		}
	}

	switch {
	case o.families != nil && o.groups != nil:
		return nil, structuralf(op, "explicit groups and families are mutually exclusive")
	case o.families != nil:
		if err := b.setFamilies(o.families, o.familyTable); err != nil {
			return nil, err
		}
	default:
		for name, members := range o.groups {
			if err := b.setGroup(name, members); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}

func checkTuple(et ElementType, nodes []int) error {
	for _, n := range nodes {
		if n < 0 && !(et == Phed && n == FaceSeparator) {
			return structuralf("", "negative node index %d", n)
		}
	}

	switch et {
	case Spline:
		if len(nodes) < 2 {
			return structuralf("", "SPLINE needs at least 2 nodes")
		}
	case Pgon:
		if len(nodes) < 3 {
			return structuralf("", "PGON needs at least 3 nodes")
		}
	case Phed:
		_, err := SplitFaces(nodes)
		return err
	}

	return nil
}

// Type returns the element type of the block.
func (b *ElementBlock) Type() ElementType { return b.typ }

// Len returns the number of elements.
func (b *ElementBlock) Len() int { return b.conn.Len() }

// Connectivity returns the block connectivity.
func (b *ElementBlock) Connectivity() Connectivity { return b.conn }

// Element returns the node tuple of element i. The slice must not be modified.
func (b *ElementBlock) Element(i int) []int { return b.conn.At(i) }

// FieldNames returns the sorted field names.
func (b *ElementBlock) FieldNames() []string {
	return slices.Sorted(maps.Keys(b.fields))
}

// Field returns the values of a field. The slice must not be modified.
func (b *ElementBlock) Field(name string) ([]float64, bool) {
	v, ok := b.fields[name]
	return v, ok
}

// Family returns the family id of element i.
func (b *ElementBlock) Family(i int) int { return b.families[i] }

// Families returns a copy of the per-element family ids.
func (b *ElementBlock) Families() []int { return slices.Clone(b.families) }

// FamilyTable returns a copy of the family -> sorted group names table.
func (b *ElementBlock) FamilyTable() map[int][]string {
	out := make(map[int][]string, len(b.familyGroups))
	for id, g := range b.familyGroups {
		out[id] = slices.Clone(g)
	}

	return out
}

// GroupNames returns the sorted group names.
func (b *ElementBlock) GroupNames() []string {
	return slices.Sorted(maps.Keys(b.groups))
}

// GroupMembers returns the sorted local indices of a group.
func (b *ElementBlock) GroupMembers(name string) []int {
	bm, ok := b.groups[name]
	if !ok {
		return nil
	}

	out := make([]int, 0, bm.GetCardinality())
	for it := bm.Iterator(); it.HasNext(); {
		out = append(out, int(it.Next()))
	}

	return out
}

// InGroup reports whether element i belongs to group name.
func (b *ElementBlock) InGroup(name string, i int) bool {
	bm, ok := b.groups[name]
	return ok && i >= 0 && bm.Contains(uint32(i)) //nolint:gosec // checked non-negative
}

// GroupsOf returns the sorted groups element i belongs to.
func (b *ElementBlock) GroupsOf(i int) []string {
	return slices.Clone(b.familyGroups[b.families[i]])
}

func (b *ElementBlock) setField(name string, values []float64) error {
	if name == "" {
		return structuralf("set field", "empty field name")
	}

	if len(values) != b.Len() {
		return structuralf("set field", "field %q on %s has %d values for %d elements", name, b.typ, len(values), b.Len())
	}

	b.fields[name] = values

	return nil
}

func (b *ElementBlock) setGroup(name string, members []int) error {
	if name == "" {
		return structuralf("set group", "empty group name")
	}

	for _, m := range members {
		if m >= b.Len() {
			return structuralf("set group", "group %q member %d out of range [0,%d)", name, m, b.Len())
		}
	}

	idx, err := conv.Indices(members)
	if err != nil {
		return &StructuralError{Op: "set group", Detail: fmt.Sprintf("group %q", name), Err: err}
	}

	bm := roaring.BitmapOf(idx...)

	if bm.IsEmpty() {
		delete(b.groups, name)
	} else {
		b.groups[name] = bm
	}

	b.recomputeFamilies()

	return nil
}

func (b *ElementBlock) setFamily(i, fam int) error {
	if i < 0 || i >= b.Len() {
		return structuralf("set family", "element %d out of range [0,%d)", i, b.Len())
	}

	names, ok := b.familyGroups[fam]
	if !ok && fam != 0 {
		return structuralf("set family", "unknown family %d on %s", fam, b.typ)
	}

	idx := uint32(i) //nolint:gosec // checked above
	for _, bm := range b.groups {
		bm.Remove(idx)
	}

	for _, name := range names {
		bm, ok := b.groups[name]
		if !ok {
			bm = roaring.New()
			b.groups[name] = bm
		}

		bm.Add(idx)
	}

	for name, bm := range b.groups {
		if bm.IsEmpty() {
			delete(b.groups, name)
		}
	}

	b.families[i] = fam

	return nil
}

func (b *ElementBlock) setFamilies(ids []int, table map[int][]string) error {
	if len(ids) != b.Len() {
		return structuralf("set families", "%d family ids for %d elements", len(ids), b.Len())
	}

	seen := make(map[string]int, len(table))
	clean := make(map[int][]string, len(table))

	for id, names := range table {
		sorted := slices.Clone(names)
		slices.Sort(sorted)
		sorted = slices.Compact(sorted)

		if id == 0 && len(sorted) > 0 {
			return structuralf("set families", "family 0 must have no groups")
		}

		key := strings.Join(sorted, "\x00")
		if other, dup := seen[key]; dup {
			return structuralf("set families", "families %d and %d share the same groups", other, id)
		}

		seen[key] = id
		clean[id] = sorted
	}

	b.groups = make(map[string]*roaring.Bitmap)

	for i, id := range ids {
		names, ok := clean[id]
		if !ok && id != 0 {
			return structuralf("set families", "element %d references unknown family %d", i, id)
		}

		for _, name := range names {
			bm, ok := b.groups[name]
			if !ok {
				bm = roaring.New()
				b.groups[name] = bm
			}

			bm.Add(uint32(i)) //nolint:gosec // i < Len
		}
	}

	b.families = slices.Clone(ids)
	b.familyGroups = clean

	return nil
}

// recomputeFamilies renumbers families from group membership: 0 for no
// group, then 1.. in order of first appearance.
func (b *ElementBlock) recomputeFamilies() {
	names := b.GroupNames()
	member := make([][]string, b.Len())

	for _, name := range names {
		for it := b.groups[name].Iterator(); it.HasNext(); {
			i := it.Next()
			member[i] = append(member[i], name)
		}
	}

	ids := map[string]int{"": 0}
	b.familyGroups = map[int][]string{}

	for i, m := range member {
		key := strings.Join(m, "\x00")

		id, ok := ids[key]
		if !ok {
			id = len(ids)
			ids[key] = id
			b.familyGroups[id] = m
		}

		b.families[i] = id
	}
}

func (b *ElementBlock) clone() *ElementBlock {
	out := &ElementBlock{
		typ:          b.typ,
		conn:         b.conn.clone(),
		fields:       make(map[string][]float64, len(b.fields)),
		families:     slices.Clone(b.families),
		familyGroups: b.FamilyTable(),
		groups:       make(map[string]*roaring.Bitmap, len(b.groups)),
	}

	for name, v := range b.fields {
		out.fields[name] = slices.Clone(v)
	}

	for name, bm := range b.groups {
		out.groups[name] = bm.Clone()
	}

	return out
}

// subset copies the elements at the given local indices, in order.
func (b *ElementBlock) subset(indices []int) *ElementBlock {
	out := &ElementBlock{
		typ:          b.typ,
		conn:         b.conn.subset(indices),
		fields:       make(map[string][]float64, len(b.fields)),
		families:     make([]int, len(indices)),
		familyGroups: b.FamilyTable(),
		groups:       make(map[string]*roaring.Bitmap),
	}

	for name, v := range b.fields {
		nv := make([]float64, len(indices))
		for j, i := range indices {
			nv[j] = v[i]
		}

		out.fields[name] = nv
	}

	for j, i := range indices {
		out.families[j] = b.families[i]

		for name, bm := range b.groups {
			if bm.Contains(uint32(i)) { //nolint:gosec // valid local index
				nb, ok := out.groups[name]
				if !ok {
					nb = roaring.New()
					out.groups[name] = nb
				}

				nb.Add(uint32(j)) //nolint:gosec // j < len(indices)
			}
		}
	}

	return out
}

// BlockPart is one input of ConcatBlocks: a block and the offset added to its
// node indices.
type BlockPart struct {
	Block      *ElementBlock
	NodeOffset int
}

// ConcatBlocks concatenates blocks of the same type. Fields present in every
// part are concatenated; the names of all other fields are returned as
// dropped. Groups are merged by name and families recomputed.
func ConcatBlocks(parts []BlockPart) (*ElementBlock, []string, error) {
	if len(parts) == 0 {
		return nil, nil, structuralf("concat blocks", "no blocks")
	}

	et := parts[0].Block.typ

	var (
		data    []int
		offsets = []int{0}
		total   int
	)

	common := map[string]int{}

	for _, p := range parts {
		if p.Block.typ != et {
			return nil, nil, structuralf("concat blocks", "mixed types %s and %s", et, p.Block.typ)
		}

		shifted := p.Block.conn.offset(p.NodeOffset)
		for i := range shifted.Len() {
			data = append(data, shifted.At(i)...)
			offsets = append(offsets, len(data))
		}

		total += p.Block.Len()

		for name := range p.Block.fields {
			common[name]++
		}
	}

	var conn Connectivity
	if et.IsPoly() {
		conn = Connectivity{data: data, offsets: offsets}
	} else {
		conn = Connectivity{arity: et.NumNodes(), data: data}
	}

	out := &ElementBlock{
		typ:          et,
		conn:         conn,
		fields:       make(map[string][]float64),
		families:     make([]int, total),
		familyGroups: map[int][]string{},
		groups:       make(map[string]*roaring.Bitmap),
	}

	var dropped []string

	for _, name := range slices.Sorted(maps.Keys(common)) {
		if common[name] != len(parts) {
			dropped = append(dropped, name)
			continue
		}

		vals := make([]float64, 0, total)
		for _, p := range parts {
			vals = append(vals, p.Block.fields[name]...)
		}

		out.fields[name] = vals
	}

	base := 0

	for _, p := range parts {
		for name, bm := range p.Block.groups {
			nb, ok := out.groups[name]
			if !ok {
				nb = roaring.New()
				out.groups[name] = nb
			}

			for it := bm.Iterator(); it.HasNext(); {
				nb.Add(uint32(base) + it.Next()) //nolint:gosec // base bounded by total
			}
		}

		base += p.Block.Len()
	}

	out.recomputeFamilies()

	return out, dropped, nil
}

// WithElements returns a copy of b in which the elements listed in repl get
// new node tuples. Replacement tuples keep the length of the original, so
// fields, groups and families carry over unchanged.
func (b *ElementBlock) WithElements(repl map[int][]int) (*ElementBlock, error) {
	out := b.clone()

	for i, nodes := range repl {
		if i < 0 || i >= out.Len() {
			return nil, structuralf("replace elements", "%s has no element %d", b.typ, i)
		}

		cur := out.conn.At(i)
		if len(cur) != len(nodes) {
			return nil, structuralf("replace elements", "%s has %d nodes, replacement has %d", ElementID{Type: b.typ, Index: i}, len(cur), len(nodes))
		}

		copy(cur, nodes)
	}

	return out, nil
}
