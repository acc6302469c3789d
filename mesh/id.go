package mesh

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// ElementID addresses one element of a mesh. IDs are ordered by type, then
// by index within the type's block.
type ElementID struct {
	Type  ElementType
	Index int
}

func (id ElementID) String() string {
	return fmt.Sprintf("%s#%d", id.Type, id.Index)
}

// Compare orders element ids by type, then index.
func (id ElementID) Compare(other ElementID) int {
	if c := cmp.Compare(id.Type, other.Type); c != 0 {
		return c
	}

	return cmp.Compare(id.Index, other.Index)
}

// IDSet is a set of element ids backed by one roaring bitmap per type.
type IDSet struct {
	sets map[ElementType]*roaring.Bitmap
}

// NewIDSet creates a set holding ids.
func NewIDSet(ids ...ElementID) *IDSet {
	s := &IDSet{sets: make(map[ElementType]*roaring.Bitmap)}
	for _, id := range ids {
		s.Add(id)
	}

	return s
}

// AllOf returns the set of every element of r.
func AllOf(r Reader) *IDSet {
	s := NewIDSet()
	for _, et := range r.Types() {
		b, _ := r.Block(et)
		if b.Len() > 0 {
			s.bitmap(et).AddRange(0, uint64(b.Len()))
		}
	}

	return s
}

func (s *IDSet) bitmap(et ElementType) *roaring.Bitmap {
	bm, ok := s.sets[et]
	if !ok {
		bm = roaring.New()
		s.sets[et] = bm
	}

	return bm
}

// Add inserts id.
func (s *IDSet) Add(id ElementID) {
	s.bitmap(id.Type).Add(uint32(id.Index)) //nolint:gosec // element indices are non-negative and bounded by block size
}

// AddIndices inserts every index of type et.
func (s *IDSet) AddIndices(et ElementType, indices ...int) {
	bm := s.bitmap(et)
	for _, i := range indices {
		bm.Add(uint32(i)) //nolint:gosec // element indices are non-negative
	}
}

// Contains reports whether id is in the set.
func (s *IDSet) Contains(id ElementID) bool {
	bm, ok := s.sets[id.Type]
	if !ok || id.Index < 0 {
		return false
	}

	return bm.Contains(uint32(id.Index)) //nolint:gosec // checked above
}

// Len returns the number of ids.
func (s *IDSet) Len() int {
	n := 0
	for _, bm := range s.sets {
		n += int(bm.GetCardinality()) //nolint:gosec // cardinality fits int
	}

	return n
}

// Types returns the types with at least one member, in canonical order.
func (s *IDSet) Types() []ElementType {
	var out []ElementType

	for et, bm := range s.sets {
		if !bm.IsEmpty() {
			out = append(out, et)
		}
	}

	slices.Sort(out)

	return out
}

// Indices returns the sorted member indices of type et.
func (s *IDSet) Indices(et ElementType) []int {
	bm, ok := s.sets[et]
	if !ok {
		return nil
	}

	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()

	for it.HasNext() {
		out = append(out, int(it.Next()))
	}

	return out
}

// All iterates over the ids in order.
func (s *IDSet) All() iter.Seq[ElementID] {
	return func(yield func(ElementID) bool) {
		for _, et := range s.Types() {
			it := s.sets[et].Iterator()
			for it.HasNext() {
				if !yield(ElementID{Type: et, Index: int(it.Next())}) {
					return
				}
			}
		}
	}
}

// Clone returns a deep copy.
func (s *IDSet) Clone() *IDSet {
	out := NewIDSet()
	for et, bm := range s.sets {
		out.sets[et] = bm.Clone()
	}

	return out
}

// Union returns s ∪ other.
func (s *IDSet) Union(other *IDSet) *IDSet {
	out := s.Clone()
	for et, bm := range other.sets {
		out.bitmap(et).Or(bm)
	}

	return out
}

// Intersect returns s ∩ other.
func (s *IDSet) Intersect(other *IDSet) *IDSet {
	out := NewIDSet()
	for et, bm := range s.sets {
		if o, ok := other.sets[et]; ok {
			out.sets[et] = roaring.And(bm, o)
		}
	}

	return out
}

// Difference returns s \ other.
func (s *IDSet) Difference(other *IDSet) *IDSet {
	out := s.Clone()
	for et, bm := range other.sets {
		if mine, ok := out.sets[et]; ok {
			mine.AndNot(bm)
		}
	}

	return out
}
