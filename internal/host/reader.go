package host

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
)

const bytesPerFrame = 8

// Reader exposes a beep stream as interleaved stereo float32 little-endian
// bytes for audio output libraries that pull an io.Reader.
type Reader struct {
	mu     sync.Mutex
	src    beep.Streamer
	frames [][2]float64
	done   bool
}

// NewReader creates a Reader pulling from src. Scratch space for
// blockFrames frames is allocated up front.
func NewReader(src beep.Streamer, blockFrames int) *Reader {
	return &Reader{
		src:    src,
		frames: make([][2]float64, max(blockFrames, 1)),
	}
}

// Read fills p with whole frames. It returns io.EOF once the stream is
// drained.
func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return 0, io.EOF
	}

	want := len(p) / bytesPerFrame
	if want == 0 {
		return 0, nil
	}
	if len(r.frames) < want {
		r.frames = make([][2]float64, want)
	}

	n, ok := r.src.Stream(r.frames[:want])
	for i := 0; i < n; i++ {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(r.frames[i][0])))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(r.frames[i][1])))
	}

	if !ok {
		r.done = true
		if n == 0 {
			return 0, io.EOF
		}
	}
	return n * bytesPerFrame, nil
}
