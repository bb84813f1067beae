package analogdelay

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-delay/dsp/core"
	"github.com/cwbudde/algo-delay/dsp/delay"
	"github.com/cwbudde/algo-delay/dsp/filter/onepole"
	"github.com/cwbudde/algo-delay/dsp/param"
	"github.com/cwbudde/algo-delay/dsp/tempo"
)

const (
	// DefaultMaxDelayMs bounds the delay line length of a session.
	DefaultMaxDelayMs = 2000.0
	// MaxChannels is the number of channels with their own delay state.
	MaxChannels = 2

	minDelayLineLen = 2
)

// ErrNilStore is returned by New when no parameter store is supplied.
var ErrNilStore = errors.New("analogdelay: nil parameter store")

// Option mutates engine construction parameters.
type Option func(*config) error

type config struct {
	maxDelayMs float64
	channels   int
}

func defaultConfig() config {
	return config{
		maxDelayMs: DefaultMaxDelayMs,
		channels:   MaxChannels,
	}
}

// WithMaxDelayMs sets the longest delay the session buffers can hold.
func WithMaxDelayMs(ms float64) Option {
	return func(cfg *config) error {
		if ms <= 0 || !core.IsFinite(ms) {
			return fmt.Errorf("analog delay max delay must be > 0: %f", ms)
		}
		cfg.maxDelayMs = ms
		return nil
	}
}

// WithMaxChannels limits the number of processed channels to 1 or 2.
func WithMaxChannels(n int) Option {
	return func(cfg *config) error {
		if n < 1 || n > MaxChannels {
			return fmt.Errorf("analog delay channels must be in [1, %d]: %d", MaxChannels, n)
		}
		cfg.channels = n
		return nil
	}
}

type channelState struct {
	line     delay.Line
	feedback onepole.Filter
}

// Engine is the per-session delay processor.
//
// Prepare and Process must be called from the same goroutine (or with
// external ordering); parameters may be changed concurrently through the
// Store.
type Engine struct {
	params *param.Store

	maxDelayMs  float64
	numChannels int

	sampleRate   float64
	maxBlockSize int
	bufferLen    int
	prepared     bool

	channels [MaxChannels]channelState
}

// New creates an engine reading its controls from params.
// No audio is produced until Prepare has been called.
func New(params *param.Store, opts ...Option) (*Engine, error) {
	if params == nil {
		return nil, ErrNilStore
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Engine{
		params:      params,
		maxDelayMs:  cfg.maxDelayMs,
		numChannels: cfg.channels,
	}, nil
}

// Prepare starts a session: every channel line is sized to
// floor(maxDelayMs/1000*sampleRate)+1 samples, silenced, and its cursor and
// feedback memory are reset. It is the only method that allocates and must
// not run concurrently with Process. On error the previous session is kept.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("analog delay sample rate must be > 0: %f", sampleRate)
	}
	if maxBlockSize < 0 {
		return fmt.Errorf("analog delay max block size must be >= 0: %d", maxBlockSize)
	}

	size := int(math.Floor(e.maxDelayMs/1000*sampleRate)) + 1
	if size < minDelayLineLen {
		size = minDelayLineLen
	}

	for ch := range e.channels {
		if err := e.channels[ch].line.Resize(size); err != nil {
			return err
		}
		e.channels[ch].feedback = onepole.NewDamping()
	}

	e.sampleRate = sampleRate
	e.maxBlockSize = maxBlockSize
	e.bufferLen = size
	e.prepared = true
	return nil
}

// Reset silences all delay lines and feedback memories without
// reallocating. It is a no-op before Prepare.
func (e *Engine) Reset() {
	for ch := range e.channels {
		e.channels[ch].line.Reset()
		e.channels[ch].feedback.Reset()
	}
}

// Process runs one block in place. block holds one slice per channel; the
// frame count is the length of the shortest processed channel. Channels
// beyond the engine's channel count are left untouched.
func (e *Engine) Process(block [][]float64, t tempo.Tempo) {
	active := min(len(block), e.numChannels)
	if active == 0 {
		return
	}
	frames := len(block[0])
	for ch := 1; ch < active; ch++ {
		frames = min(frames, len(block[ch]))
	}
	e.ProcessFrames(block, frames, t)
}

// ProcessFrames runs the first frames samples of each channel in place.
// frames is clamped to the length of each channel slice.
func (e *Engine) ProcessFrames(block [][]float64, frames int, t tempo.Tempo) {
	if !e.prepared || frames <= 0 {
		return
	}

	snap := e.params.Snapshot()
	_, delaySamples, frac := e.timing(snap, t)
	feedback := snap.Feedback
	mix := snap.Mix
	dry := 1 - mix

	active := min(len(block), e.numChannels)
	for ch := 0; ch < active; ch++ {
		st := &e.channels[ch]
		samples := block[ch]
		if len(samples) > frames {
			samples = samples[:frames]
		}

		for n, in := range samples {
			delayed := st.line.TapLinear(delaySamples, frac)
			filtered := st.feedback.Process(delayed * feedback)
			st.line.Write(in + filtered)
			samples[n] = in*dry + delayed*mix
		}
	}
}

// timing derives the block's delay in milliseconds, its integer tap offset
// clamped to [1, bufferLen-1] and the fractional remainder in [0, 1).
// When the offset is clamped the fractional part is dropped.
func (e *Engine) timing(snap param.Snapshot, t tempo.Tempo) (delayMs float64, delaySamples int, frac float64) {
	delayMs = snap.DelayTimeMs
	if snap.Sync {
		delayMs = tempo.DelayMs(t.OrDefault(), snap.Division)
	}

	exact := delayMs * 0.001 * e.sampleRate
	whole := math.Floor(exact)
	maxOffset := e.bufferLen - 1

	switch {
	case whole < 1:
		return delayMs, 1, 0
	case whole > float64(maxOffset):
		return delayMs, maxOffset, 0
	}

	delaySamples = int(whole)
	return delayMs, delaySamples, exact - whole
}

// EffectiveDelayMs returns the delay time the next block would use.
func (e *Engine) EffectiveDelayMs(t tempo.Tempo) float64 {
	delayMs, _, _ := e.timing(e.params.Snapshot(), t)
	return delayMs
}

// DelaySamples returns the integer tap offset and fractional part the next
// block would use. Both are zero before Prepare.
func (e *Engine) DelaySamples(t tempo.Tempo) (int, float64) {
	if !e.prepared {
		return 0, 0
	}
	_, n, frac := e.timing(e.params.Snapshot(), t)
	return n, frac
}

// Params returns the store the engine reads from.
func (e *Engine) Params() *param.Store { return e.params }

// Prepared reports whether a session is active.
func (e *Engine) Prepared() bool { return e.prepared }

// SampleRate returns the session sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// MaxBlockSize returns the block size announced by the host in Prepare.
func (e *Engine) MaxBlockSize() int { return e.maxBlockSize }

// BufferLen returns the per-channel delay line length in samples.
func (e *Engine) BufferLen() int { return e.bufferLen }

// Channels returns how many channels are processed.
func (e *Engine) Channels() int { return e.numChannels }

// MaxDelayMs returns the configured maximum delay.
func (e *Engine) MaxDelayMs() float64 { return e.maxDelayMs }

// TailSeconds reports how long output may continue after input stops.
func (e *Engine) TailSeconds() float64 { return e.maxDelayMs / 1000 }

// LatencySamples reports the processing latency, always zero.
func (e *Engine) LatencySamples() int { return 0 }
