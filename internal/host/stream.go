package host

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// Streamer runs a beep stream through the host. Once the source is drained
// it keeps producing the delay tail from silence for a fixed number of
// frames.
type Streamer struct {
	host    *Host
	src     beep.Streamer
	tail    int
	drained bool
}

// Stream wraps src. tail is the number of frames rendered after src ends.
func (h *Host) Stream(src beep.Streamer, tail int) *Streamer {
	return &Streamer{host: h, src: src, tail: max(tail, 0)}
}

// Stream fills samples from the source, or from silence while the tail
// lasts, and processes them.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	n := 0
	if !s.drained {
		var ok bool
		n, ok = s.src.Stream(samples)
		if !ok || n < len(samples) {
			s.drained = true
		}
	}

	if s.drained && n < len(samples) {
		pad := min(len(samples)-n, s.tail)
		clear(samples[n : n+pad])
		n += pad
		s.tail -= pad
	}

	if n == 0 {
		return 0, false
	}
	s.host.Process(samples[:n])
	return n, true
}

// Err returns the source error.
func (s *Streamer) Err() error {
	return s.src.Err()
}

// RenderFile decodes a WAV file from in, processes it with a fresh session
// at the file's sample rate and encodes the result, including tail of
// delay decay, to out in the input format.
func (h *Host) RenderFile(in io.Reader, out io.WriteSeeker, tail time.Duration) error {
	src, format, err := wav.Decode(in)
	if err != nil {
		return fmt.Errorf("host: decode: %w", err)
	}
	defer src.Close()

	if err := h.Prepare(float64(format.SampleRate)); err != nil {
		return err
	}

	stream := h.Stream(src, format.SampleRate.N(tail))
	h.log.Debug("rendering",
		"sampleRate", int(format.SampleRate),
		"channels", format.NumChannels,
		"frames", src.Len(),
		"tail", tail)

	if err := wav.Encode(out, stream, format); err != nil {
		return fmt.Errorf("host: encode: %w", err)
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("host: stream: %w", err)
	}
	return nil
}
