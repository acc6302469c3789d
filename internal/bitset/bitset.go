package bitset

import (
	"iter"
	"math/bits"
	"sync/atomic"
)

// BitSet is a fixed-size, thread-safe bitset.
type BitSet struct {
	words []atomic.Uint64
	size  int
}

// New creates a new BitSet with the given size (in bits).
func New(size int) *BitSet {
	if size < 0 {
		size = 0
	}

	return &BitSet{
		words: make([]atomic.Uint64, (size+63)/64),
		size:  size,
	}
}

// Len returns the size of the bitset in bits.
func (b *BitSet) Len() int {
	return b.size
}

// Set sets the bit at i. Out-of-range indices are ignored.
func (b *BitSet) Set(i int) {
	if i < 0 || i >= b.size {
		return
	}

	b.words[i/64].Or(1 << (uint(i) % 64))
}

// TestAndSet sets the bit at i and reports whether it was ALREADY set.
func (b *BitSet) TestAndSet(i int) bool {
	if i < 0 || i >= b.size {
		return false
	}

	mask := uint64(1) << (uint(i) % 64)
	prev := b.words[i/64].Or(mask)

	return prev&mask != 0
}

// Unset clears the bit at i.
func (b *BitSet) Unset(i int) {
	if i < 0 || i >= b.size {
		return
	}

	b.words[i/64].And(^(uint64(1) << (uint(i) % 64)))
}

// Test reports whether the bit at i is set.
func (b *BitSet) Test(i int) bool {
	if i < 0 || i >= b.size {
		return false
	}

	return b.words[i/64].Load()&(1<<(uint(i)%64)) != 0
}

// NextSetBit returns the index of the next set bit starting from i (inclusive).
// Returns -1 if no bit is set at or after i.
func (b *BitSet) NextSetBit(i int) int {
	if i < 0 {
		i = 0
	}

	if i >= b.size {
		return -1
	}

	w := i / 64
	val := b.words[w].Load() &^ ((1 << (uint(i) % 64)) - 1)

	for {
		if val != 0 {
			idx := w*64 + bits.TrailingZeros64(val)
			if idx >= b.size {
				return -1
			}

			return idx
		}

		w++
		if w >= len(b.words) {
			return -1
		}

		val = b.words[w].Load()
	}
}

// All iterates over the set bits in increasing order.
func (b *BitSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := b.NextSetBit(0); i >= 0; i = b.NextSetBit(i + 1) {
			if !yield(i) {
				return
			}
		}
	}
}

// Count returns the number of set bits.
func (b *BitSet) Count() int {
	n := 0
	for i := range b.words {
		n += bits.OnesCount64(b.words[i].Load())
	}

	return n
}

// ClearAll clears all bits.
func (b *BitSet) ClearAll() {
	for i := range b.words {
		b.words[i].Store(0)
	}
}
