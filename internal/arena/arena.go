package arena

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrInvalidRef is returned for references that were never allocated.
	ErrInvalidRef = errors.New("arena: invalid reference")
	// ErrStaleRef is returned when the referenced slot was freed or reused.
	ErrStaleRef = errors.New("arena: stale reference")
)

// Ref is a safe reference to an arena buffer.
// It includes the generation ID to detect stale references.
type Ref struct {
	Slot uint32
	Gen  uint32
}

// Stats tracks arena usage.
type Stats struct {
	LiveSlots   uint64 // Current: slots holding a buffer
	FreeSlots   uint64 // Current: slots awaiting reuse
	LiveFloats  uint64 // Current: float64 values held by live slots
	TotalAllocs uint64 // Historical: total allocations
	TotalClones uint64 // Historical: copies made by Detach
}

type slot struct {
	data   []float64
	owners int64
	gen    uint32
	live   bool
}

// Arena is a reference-counted buffer arena.
type Arena struct {
	mu     sync.Mutex
	slots  []slot
	free   []uint32
	allocs atomic.Uint64
	clones atomic.Uint64
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{}
}

// Alloc stores data in a fresh slot with a single owner.
// The arena takes ownership of the slice.
func (a *Arena) Alloc(data []float64) Ref {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.allocs.Add(1)

	return a.allocLocked(data)
}

func (a *Arena) allocLocked(data []float64) Ref {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.data = data
		s.owners = 1
		s.live = true

		return Ref{Slot: idx, Gen: s.gen}
	}

	a.slots = append(a.slots, slot{data: data, owners: 1, live: true})

	return Ref{Slot: uint32(len(a.slots) - 1)} //nolint:gosec // slot count is bounded by memory
}

// lookupLocked resolves a reference. Caller must hold a.mu.
func (a *Arena) lookupLocked(ref Ref) (*slot, error) {
	if int(ref.Slot) >= len(a.slots) {
		return nil, fmt.Errorf("%w: slot %d", ErrInvalidRef, ref.Slot)
	}

	s := &a.slots[ref.Slot]
	if !s.live || s.gen != ref.Gen {
		return nil, fmt.Errorf("%w: slot %d gen %d", ErrStaleRef, ref.Slot, ref.Gen)
	}

	return s, nil
}

// Get returns the buffer behind ref.
func (a *Arena) Get(ref Ref) ([]float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookupLocked(ref)
	if err != nil {
		return nil, err
	}

	return s.data, nil
}

// Owners returns the number of owners of ref.
func (a *Arena) Owners(ref Ref) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookupLocked(ref)
	if err != nil {
		return 0, err
	}

	return int(s.owners), nil
}

// IncRef adds an owner to ref.
func (a *Arena) IncRef(ref Ref) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookupLocked(ref)
	if err != nil {
		return err
	}

	s.owners++

	return nil
}

// DecRef drops an owner from ref and frees the slot when none remain.
func (a *Arena) DecRef(ref Ref) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookupLocked(ref)
	if err != nil {
		return err
	}

	s.owners--
	if s.owners > 0 {
		return nil
	}

	s.data = nil
	s.live = false
	s.gen++
	a.free = append(a.free, ref.Slot)

	return nil
}

// Detach gives the caller exclusive ownership of the buffer behind ref.
//
// If ref is the only owner it is returned unchanged. Otherwise the buffer is
// copied into a new slot owned by the caller, and the caller's ownership of
// the shared slot is dropped. The boolean reports whether a copy was made.
func (a *Arena) Detach(ref Ref) (Ref, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookupLocked(ref)
	if err != nil {
		return Ref{}, false, err
	}

	if s.owners == 1 {
		return ref, false, nil
	}

	clone := make([]float64, len(s.data))
	copy(clone, s.data)
	s.owners--

	a.clones.Add(1)
	a.allocs.Add(1)

	return a.allocLocked(clone), true, nil
}

// Replace swaps the buffer behind ref. The caller must be the only owner.
func (a *Arena) Replace(ref Ref, data []float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.lookupLocked(ref)
	if err != nil {
		return err
	}

	if s.owners != 1 {
		return fmt.Errorf("arena: replace on shared slot %d (%d owners)", ref.Slot, s.owners)
	}

	s.data = data

	return nil
}

// Stats returns a snapshot of arena usage.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := Stats{
		FreeSlots:   uint64(len(a.free)),
		TotalAllocs: a.allocs.Load(),
		TotalClones: a.clones.Load(),
	}

	for i := range a.slots {
		if a.slots[i].live {
			st.LiveSlots++
			st.LiveFloats += uint64(len(a.slots[i].data))
		}
	}

	return st
}
