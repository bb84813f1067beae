// Package delay provides the fixed-capacity circular delay line used by the
// analog delay engine.
package delay

import (
	"fmt"

	"github.com/cwbudde/algo-delay/dsp/core"
	"github.com/cwbudde/algo-delay/dsp/interp"
)

// Line is a circular delay line with a single write cursor.
//
// The zero value is an empty line; reads return 0 and writes are dropped
// until Resize is called.
type Line struct {
	buffer []float64
	cursor int
}

// New returns a zero-filled delay line of fixed size.
func New(size int) (*Line, error) {
	l := &Line{}
	if err := l.Resize(size); err != nil {
		return nil, err
	}
	return l, nil
}

// Resize reallocates the line to size samples, zero-fills it and rewinds the
// cursor. The backing array is reused when its capacity suffices.
func (l *Line) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("delay size must be > 0: %d", size)
	}
	if cap(l.buffer) >= size {
		l.buffer = l.buffer[:size]
	} else {
		l.buffer = make([]float64, size)
	}
	l.Reset()
	return nil
}

// Len returns internal buffer size.
func (l *Line) Len() int {
	return len(l.buffer)
}

// Cursor returns the index the next Write will store to.
func (l *Line) Cursor() int {
	return l.cursor
}

// Reset clears line state.
func (l *Line) Reset() {
	core.Zero(l.buffer)
	l.cursor = 0
}

// Write stores sample at the cursor and advances the cursor by one,
// wrapping at the end of the buffer.
func (l *Line) Write(sample float64) {
	size := len(l.buffer)
	if size == 0 {
		return
	}
	l.buffer[l.cursor] = sample
	l.cursor++
	if l.cursor >= size {
		l.cursor = 0
	}
}

// Read returns the sample written offset samples before the cursor.
// offset must lie in [0, Len()).
func (l *Line) Read(offset int) float64 {
	size := len(l.buffer)
	if size == 0 {
		return 0
	}
	return l.buffer[l.readPos(offset)]
}

// TapLinear reads a fractional tap: the sample offset positions behind the
// cursor blended by frac toward the one written right after it.
// offset must lie in [1, Len()) for the tap to reference written history.
func (l *Line) TapLinear(offset int, frac float64) float64 {
	size := len(l.buffer)
	if size == 0 {
		return 0
	}
	readPos := l.readPos(offset)
	next := (readPos + 1) % size
	return interp.Linear(frac, l.buffer[readPos], l.buffer[next])
}

func (l *Line) readPos(offset int) int {
	readPos := l.cursor - offset
	if readPos < 0 {
		readPos += len(l.buffer)
	}
	return readPos
}
