package bits

import (
	"math/rand"
	"testing"
)

func TestNewRejectsInvalidWidth(t *testing.T) {
	if _, err := New(10, 0); err == nil {
		t.Errorf("expected error for width 0")
	}
	if _, err := New(10, 65); err == nil {
		t.Errorf("expected error for width 65")
	}
	if _, err := New(0, 8); err != nil {
		t.Errorf("length 0 should be allowed, got %v", err)
	}
}

func TestNewRejectsOverflow(t *testing.T) {
	if _, err := New(^uint64(0), 64); err == nil {
		t.Errorf("expected overflow error for length*width overflow")
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	widths := []uint8{1, 3, 7, 8, 12, 16, 31, 32, 63, 64}

	for _, w := range widths {
		t.Run("", func(t *testing.T) {
			b, err := New(200, w)
			if err != nil {
				t.Fatalf("New(200, %d) failed: %v", w, err)
			}

			var maxVal uint64
			if w == 64 {
				maxVal = ^uint64(0)
			} else {
				maxVal = (uint64(1) << w) - 1
			}

			want := make([]uint64, b.Len())
			rng := rand.New(rand.NewSource(int64(w) + 1))
			for i := range want {
				v := rng.Uint64() & maxVal
				want[i] = v
				b.Set(uint64(i), v)
			}
			for i, v := range want {
				if got := b.Get(uint64(i)); got != v {
					t.Fatalf("width %d: cell %d = %d, want %d", w, i, got, v)
				}
			}
		})
	}
}

func TestSetMasksOverflowingValues(t *testing.T) {
	b, err := New(4, 4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b.Set(0, 0xFF) // only the low 4 bits should survive
	if got := b.Get(0); got != 0x0F {
		t.Errorf("Set should mask to width bits: got %#x, want %#x", got, 0x0F)
	}
}

func TestCellStraddlesWordBoundary(t *testing.T) {
	// width=5 means cell 12 starts at bit 60, straddling word 0/word 1.
	b, err := New(32, 5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := uint64(0); i < b.Len(); i++ {
		b.Set(i, (i+1)%32)
	}
	for i := uint64(0); i < b.Len(); i++ {
		want := (i + 1) % 32
		if got := b.Get(i); got != want {
			t.Fatalf("cell %d = %d, want %d", i, got, want)
		}
	}
}

func TestLenAndWidth(t *testing.T) {
	b, err := New(17, 9)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Len() != 17 {
		t.Errorf("Len() = %d, want 17", b.Len())
	}
	if b.Width() != 9 {
		t.Errorf("Width() = %d, want 9", b.Width())
	}
}

func TestResizeGrowPreservesValues(t *testing.T) {
	b, _ := New(10, 8)
	for i := uint64(0); i < 10; i++ {
		b.Set(i, i*7%256)
	}
	grown, err := b.Resize(20)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if grown.Len() != 20 {
		t.Fatalf("Len() = %d, want 20", grown.Len())
	}
	for i := uint64(0); i < 10; i++ {
		if got, want := grown.Get(i), i*7%256; got != want {
			t.Errorf("cell %d = %d, want %d", i, got, want)
		}
	}
	for i := uint64(10); i < 20; i++ {
		if got := grown.Get(i); got != 0 {
			t.Errorf("new cell %d = %d, want 0", i, got)
		}
	}
}

func TestResizeShrinkTruncates(t *testing.T) {
	b, _ := New(10, 8)
	for i := uint64(0); i < 10; i++ {
		b.Set(i, i+1)
	}
	shrunk, err := b.Resize(4)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if shrunk.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", shrunk.Len())
	}
	for i := uint64(0); i < 4; i++ {
		if got, want := shrunk.Get(i), i+1; got != want {
			t.Errorf("cell %d = %d, want %d", i, got, want)
		}
	}
}

func TestPopCountNonZero(t *testing.T) {
	b, _ := New(8, 4)
	b.Set(1, 5)
	b.Set(3, 9)
	b.Set(6, 0) // explicit zero, should not count
	if got := b.PopCountNonZero(); got != 2 {
		t.Errorf("PopCountNonZero() = %d, want 2", got)
	}
}

func TestWordsNeededIsTight(t *testing.T) {
	cases := []struct {
		length uint64
		width  uint8
		words  uint64
	}{
		{0, 8, 0},
		{1, 1, 1},
		{64, 1, 1},
		{65, 1, 2},
		{8, 8, 1},
		{9, 8, 2},
		{10, 7, 2},
	}
	for _, c := range cases {
		if got := wordsNeeded(c.length, c.width); got != c.words {
			t.Errorf("wordsNeeded(%d, %d) = %d, want %d", c.length, c.width, got, c.words)
		}
	}
}

func TestGetPanicsOutOfRange(t *testing.T) {
	b, _ := New(4, 8)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on out-of-range Get")
		}
	}()
	b.Get(4)
}
