package mesh

import (
	"runtime"
	"slices"

	"github.com/hupe1980/meshkit/internal/arena"
	"github.com/hupe1980/meshkit/internal/bitset"
)

// coordArena backs every CoordStore. Sharing a store only adds an owner to
// its arena slot; the first mutation through a shared handle detaches it.
var coordArena = arena.New()

// CoordStore is a handle to a flat array of node coordinates.
//
// Handles created with Share read the same buffer. A handle that needs to
// mutate calls EnsureExclusive first, which copies the buffer iff other
// handles exist, so no other holder ever observes the change. Handles
// release their ownership on Release or when garbage collected.
type CoordStore struct {
	dim     int
	h       *coordHandle
	data    []float64
	cleanup runtime.Cleanup
}

type coordHandle struct {
	ref      arena.Ref
	released bool
}

func releaseCoordHandle(h *coordHandle) {
	if !h.released {
		h.released = true
		_ = coordArena.DecRef(h.ref)
	}
}

// NewCoordStore creates a store of spaceDim-dimensional points from a flat
// array. The store takes ownership of data.
func NewCoordStore(spaceDim int, data []float64) (*CoordStore, error) {
	if spaceDim < 1 || spaceDim > 3 {
		return nil, &DimensionError{Op: "new coord store", SpaceDim: spaceDim, Detail: "space dimension must be 1, 2 or 3"}
	}

	if len(data)%spaceDim != 0 {
		return nil, structuralf("new coord store", "%d values are not a multiple of dimension %d", len(data), spaceDim)
	}

	return newCoordStore(spaceDim, coordArena.Alloc(data), data), nil
}

func newCoordStore(dim int, ref arena.Ref, data []float64) *CoordStore {
	cs := &CoordStore{dim: dim, h: &coordHandle{ref: ref}, data: data}
	cs.cleanup = runtime.AddCleanup(cs, releaseCoordHandle, cs.h)

	return cs
}

// SpaceDim returns the number of coordinates per node.
func (c *CoordStore) SpaceDim() int { return c.dim }

// Len returns the number of nodes.
func (c *CoordStore) Len() int {
	if c.h.released {
		return 0
	}

	return len(c.data) / c.dim
}

// At returns the coordinates of node i. The slice must not be modified.
func (c *CoordStore) At(i int) []float64 {
	return c.data[i*c.dim : (i+1)*c.dim : (i+1)*c.dim]
}

// Data returns a copy of the flat coordinate array.
func (c *CoordStore) Data() []float64 {
	return slices.Clone(c.data[:c.Len()*c.dim])
}

// Share returns a new handle on the same buffer.
func (c *CoordStore) Share() *CoordStore {
	if c.h.released {
		cs, _ := NewCoordStore(c.dim, nil)
		return cs
	}

	if err := coordArena.IncRef(c.h.ref); err != nil {
		// The handle is live, so its slot is too.
		panic(err)
	}

	return newCoordStore(c.dim, c.h.ref, c.data)
}

// Owners returns the number of handles sharing the buffer.
func (c *CoordStore) Owners() int {
	if c.h.released {
		return 0
	}

	n, _ := coordArena.Owners(c.h.ref)

	return n
}

// Shared reports whether other handles read the same buffer.
func (c *CoordStore) Shared() bool { return c.Owners() > 1 }

// EnsureExclusive makes this handle the only owner of its buffer, copying it
// when shared. It reports whether a copy was made.
func (c *CoordStore) EnsureExclusive() bool {
	if c.h.released {
		return false
	}

	ref, copied, err := coordArena.Detach(c.h.ref)
	if err != nil {
		panic(err)
	}

	if copied {
		c.h.ref = ref
		c.data, _ = coordArena.Get(ref)
	}

	return copied
}

// Release drops this handle's ownership. The handle is empty afterwards.
func (c *CoordStore) Release() {
	if c.h.released {
		return
	}

	c.cleanup.Stop()
	releaseCoordHandle(c.h)
	c.data = nil
}

// set overwrites node i. Callers hold an exclusive handle.
func (c *CoordStore) set(i int, p []float64) {
	c.EnsureExclusive()
	copy(c.data[i*c.dim:(i+1)*c.dim], p)
}

// replace swaps the whole buffer. Callers hold an exclusive handle.
func (c *CoordStore) replace(data []float64) {
	c.EnsureExclusive()

	if err := coordArena.Replace(c.h.ref, data); err != nil {
		panic(err)
	}

	c.data = data
}

// Append adds points and returns the index of the first new node. The store
// becomes exclusive first.
func (c *CoordStore) Append(points ...[]float64) (int, error) {
	first := c.Len()

	flat := slices.Clone(c.data[:first*c.dim])
	for _, p := range points {
		if len(p) != c.dim {
			return 0, &DimensionError{Op: "append coordinates", SpaceDim: c.dim, Detail: "point dimension mismatch"}
		}

		flat = append(flat, p...)
	}

	c.replace(flat)

	return first, nil
}

// Compact returns a new store holding only the nodes set in used, together
// with the old -> new index map (-1 for dropped nodes).
func (c *CoordStore) Compact(used *bitset.BitSet) (*CoordStore, []int) {
	remap := make([]int, c.Len())
	flat := make([]float64, 0, used.Count()*c.dim)
	next := 0

	for i := range remap {
		if !used.Test(i) {
			remap[i] = -1
			continue
		}

		remap[i] = next
		next++
		flat = append(flat, c.At(i)...)
	}

	return newCoordStore(c.dim, coordArena.Alloc(flat), flat), remap
}
