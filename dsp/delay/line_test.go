package delay

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}
}

func TestNewDefaults(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if d.Len() != 16 {
		t.Fatalf("Len: got %d want 16", d.Len())
	}

	if d.Cursor() != 0 {
		t.Fatalf("Cursor: got %d want 0", d.Cursor())
	}
}

func TestZeroValueIsInert(t *testing.T) {
	var d Line
	d.Write(1)

	if got := d.Read(0); got != 0 {
		t.Fatalf("Read on empty line: got %v want 0", got)
	}
	if got := d.TapLinear(1, 0.5); got != 0 {
		t.Fatalf("TapLinear on empty line: got %v want 0", got)
	}
}

// --- integer Read/Write ---

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		d.Write(float64(i))
	}

	if d.Cursor() != 5 {
		t.Fatalf("Cursor: got %d want 5", d.Cursor())
	}

	for offset := 1; offset <= 5; offset++ {
		want := float64(6 - offset)
		if got := d.Read(offset); got != want {
			t.Fatalf("Read(%d): got %v want %v", offset, got, want)
		}
	}
}

func TestCursorWraps(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		d.Write(float64(i))
		if c := d.Cursor(); c < 0 || c >= d.Len() {
			t.Fatalf("cursor out of range: %d", c)
		}
	}

	if d.Cursor() != 10%4 {
		t.Fatalf("Cursor: got %d want %d", d.Cursor(), 10%4)
	}

	// Most recent write is 9, one behind the cursor.
	if got := d.Read(1); got != 9 {
		t.Fatalf("Read(1): got %v want 9", got)
	}
	if got := d.Read(3); got != 7 {
		t.Fatalf("Read(3): got %v want 7", got)
	}
}

// --- fractional taps ---

func TestTapLinearInterpolatesTowardNewer(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	// Ramp: buffer[i] = i for i in 0..5, cursor at 6.
	for i := 0; i < 6; i++ {
		d.Write(float64(i))
	}

	// offset 3 reads index 3; the neighbour is index 4.
	if got := d.TapLinear(3, 0); got != 3 {
		t.Fatalf("TapLinear(3, 0): got %v want 3", got)
	}
	if got := d.TapLinear(3, 0.25); !approxEqual(got, 3.25, 1e-12) {
		t.Fatalf("TapLinear(3, 0.25): got %v want 3.25", got)
	}
}

func TestTapLinearWrapsNeighbour(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(10) // idx 0
	d.Write(20) // idx 1
	d.Write(30) // idx 2
	d.Write(40) // idx 3, cursor -> 0

	// offset 1 reads idx 3; its neighbour wraps to idx 0.
	if got := d.TapLinear(1, 0.5); !approxEqual(got, 25, 1e-12) {
		t.Fatalf("TapLinear(1, 0.5): got %v want 25", got)
	}
}

func TestTapLinearMaxOffsetStaysInBounds(t *testing.T) {
	const size = 9
	d, err := New(size)
	if err != nil {
		t.Fatal(err)
	}

	for n := 0; n < 3*size; n++ {
		for offset := 1; offset < size; offset++ {
			got := d.TapLinear(offset, 0.999)
			if math.IsNaN(got) {
				t.Fatalf("NaN at n=%d offset=%d", n, offset)
			}
		}
		d.Write(float64(n))
	}
}

// --- reset / resize ---

func TestResetClearsHistory(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		d.Write(1)
	}
	d.Reset()

	if d.Cursor() != 0 {
		t.Fatalf("Cursor after Reset: got %d want 0", d.Cursor())
	}
	for offset := 0; offset < d.Len(); offset++ {
		if got := d.Read(offset); got != 0 {
			t.Fatalf("Read(%d) after Reset: got %v want 0", offset, got)
		}
	}
}

func TestResizeReallocatesAndClears(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		d.Write(5)
	}

	if err := d.Resize(12); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 12 || d.Cursor() != 0 {
		t.Fatalf("after grow: len=%d cursor=%d", d.Len(), d.Cursor())
	}

	for i := 0; i < 12; i++ {
		d.Write(7)
	}
	if err := d.Resize(3); err != nil {
		t.Fatal(err)
	}
	for offset := 0; offset < d.Len(); offset++ {
		if got := d.Read(offset); got != 0 {
			t.Fatalf("stale sample after shrink at offset %d: %v", offset, got)
		}
	}

	if err := d.Resize(0); err == nil {
		t.Fatal("expected error for Resize(0)")
	}
}
