// Package collections provides small data structures shared by the codec.
package collections

import "math/bits"

// Bitset is a memory-efficient boolean set using one bit per element.
// The segmenter tracks covered vertices with it; a []bool costs 8x the
// memory and a map far more.
type Bitset struct {
	words []uint64
	size  int
}

// NewBitset creates a new bitset with the given size.
func NewBitset(size int) *Bitset {
	if size <= 0 {
		size = 64
	}
	return &Bitset{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Set sets the bit at index i, growing the set if needed.
func (b *Bitset) Set(i int) {
	if i < 0 {
		return
	}
	word := i / 64
	if word >= len(b.words) {
		b.grow(i + 1)
	}
	b.words[word] |= 1 << (i % 64)
	if i >= b.size {
		b.size = i + 1
	}
}

// Clear clears the bit at index i.
func (b *Bitset) Clear(i int) {
	if i < 0 || i/64 >= len(b.words) {
		return
	}
	b.words[i/64] &^= 1 << (i % 64)
}

// Test returns true if the bit at index i is set.
func (b *Bitset) Test(i int) bool {
	if i < 0 || i/64 >= len(b.words) {
		return false
	}
	return b.words[i/64]&(1<<(i%64)) != 0
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	total := 0
	for _, w := range b.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Size returns the logical size of the bitset.
func (b *Bitset) Size() int {
	return b.size
}

func (b *Bitset) grow(n int) {
	need := (n + 63) / 64
	if need <= len(b.words) {
		return
	}
	words := make([]uint64, need)
	copy(words, b.words)
	b.words = words
}
