// Package bits implements a flat, sub-byte-packed array of fixed-width
// unsigned integer cells backed by a slice of 64-bit words. It is the
// storage primitive the cuckoo filter buckets are built on: addressing is
// by cell index, every cell is exactly width bits wide (not byte-aligned),
// and a cell may straddle a word boundary.
package bits

import (
	"fmt"
)

const maxWidth = 64

// Bits is a flat array of length cells, each width bits wide, packed
// without padding into 64-bit words. The zero value is not usable; use New.
type Bits struct {
	words  []uint64
	length uint64
	width  uint8
	mask   uint64
}

// New allocates storage for length cells of width bits each, all
// initialized to zero. It fails if width is outside [1, 64] or if
// length*width would overflow a 64-bit bit-count.
func New(length uint64, width uint8) (*Bits, error) {
	if width == 0 || width > maxWidth {
		return nil, fmt.Errorf("bits: width %d out of range [1, %d]", width, maxWidth)
	}
	if length != 0 && uint64(width) > (^uint64(0))/length {
		return nil, fmt.Errorf("bits: length %d * width %d overflows", length, width)
	}
	totalBits := length * uint64(width)
	numWords := (totalBits + 63) / 64

	var mask uint64
	if width == maxWidth {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << width) - 1
	}

	return &Bits{
		words:  make([]uint64, numWords),
		length: length,
		width:  width,
		mask:   mask,
	}, nil
}

// Len returns the number of cells.
func (b *Bits) Len() uint64 { return b.length }

// Width returns the bit width of every cell.
func (b *Bits) Width() uint8 { return b.width }

// Get returns the zero-extended unsigned integer stored at cell i.
// It panics if i is out of range, the same way a slice index does.
func (b *Bits) Get(i uint64) uint64 {
	b.checkIndex(i)
	bitOffset := i * uint64(b.width)
	wordIdx := bitOffset >> 6
	bitInWord := bitOffset & 63

	lo := b.words[wordIdx] >> bitInWord
	if spill := int(bitInWord) + int(b.width) - 64; spill > 0 {
		hi := b.words[wordIdx+1] << (uint(b.width) - uint(spill))
		lo |= hi
	}
	return lo & b.mask
}

// Set stores v & ((1<<width)-1) at cell i. The caller guarantees v fits;
// Set masks to the cell width regardless.
func (b *Bits) Set(i uint64, v uint64) {
	b.checkIndex(i)
	v &= b.mask

	bitOffset := i * uint64(b.width)
	wordIdx := bitOffset >> 6
	bitInWord := bitOffset & 63

	b.words[wordIdx] &^= b.mask << bitInWord
	b.words[wordIdx] |= v << bitInWord

	if spill := int(bitInWord) + int(b.width) - 64; spill > 0 {
		shift := uint(b.width) - uint(spill)
		spillMask := (uint64(1) << uint(spill)) - 1
		b.words[wordIdx+1] &^= spillMask
		b.words[wordIdx+1] |= v >> shift
	}
}

// Resize returns a new Bits of the given length and the same cell width,
// with every cell index shared by both arrays copied over. Cells beyond
// the old length (on growth) are zero; cells beyond the new length (on
// shrink) are dropped.
func (b *Bits) Resize(newLength uint64) (*Bits, error) {
	nb, err := New(newLength, b.width)
	if err != nil {
		return nil, err
	}
	n := b.length
	if newLength < n {
		n = newLength
	}
	for i := uint64(0); i < n; i++ {
		nb.Set(i, b.Get(i))
	}
	return nb, nil
}

// PopCountNonZero returns the number of cells holding a non-zero value.
// Used to cross-check item_count against the physical bucket contents.
func (b *Bits) PopCountNonZero() uint64 {
	var n uint64
	for i := uint64(0); i < b.length; i++ {
		if b.Get(i) != 0 {
			n++
		}
	}
	return n
}

func (b *Bits) checkIndex(i uint64) {
	if i >= b.length {
		panic(fmt.Sprintf("bits: index %d out of range [0, %d)", i, b.length))
	}
}

// wordsNeeded reports how many 64-bit words back length cells of width
// bits; used by tests that assert the packing is tight (no wasted word
// beyond the last partial one).
func wordsNeeded(length uint64, width uint8) uint64 {
	return (length*uint64(width) + 63) / 64
}
