// Package host drives an analog delay engine the way a plugin host would:
// interleaved stereo frames are split into bounded planar blocks, the engine
// runs with the current tempo, and the result is written back in place.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cwbudde/algo-delay/dsp/core"
	"github.com/cwbudde/algo-delay/dsp/effects/analogdelay"
	"github.com/cwbudde/algo-delay/dsp/param"
	"github.com/cwbudde/algo-delay/dsp/tempo"
)

// ErrNotPrepared is returned by operations that need an active session.
var ErrNotPrepared = errors.New("host: not prepared")

// Host owns a parameter store and a delay engine plus the scratch buffers
// needed to feed it interleaved audio.
type Host struct {
	store  *param.Store
	engine *analogdelay.Engine
	cfg    core.ProcessorConfig

	left   []float64
	right  []float64
	planar [][]float64

	tempo atomic.Pointer[tempo.Source]
	log   *slog.Logger
}

// New creates a host around store. The processor options select channel
// count and maximum block size; the sample rate is fixed by Prepare.
func New(store *param.Store, opts ...core.ProcessorOption) (*Host, error) {
	cfg := core.ApplyProcessorOptions(opts...)

	engine, err := analogdelay.New(store, analogdelay.WithMaxChannels(cfg.Channels))
	if err != nil {
		return nil, err
	}

	layout := analogdelay.Layout{
		Input:  analogdelay.ChannelSet(cfg.Channels),
		Output: analogdelay.ChannelSet(cfg.Channels),
	}
	if !engine.SupportsLayout(layout) {
		return nil, fmt.Errorf("host: unsupported layout %s/%s", layout.Input, layout.Output)
	}

	h := &Host{
		store:  store,
		engine: engine,
		cfg:    cfg,
		left:   make([]float64, cfg.BlockSize),
		right:  make([]float64, cfg.BlockSize),
		planar: make([][]float64, cfg.Channels),
		log:    slog.Default().With("component", "host"),
	}
	return h, nil
}

// SetLogger replaces the logger used for session events.
func (h *Host) SetLogger(l *slog.Logger) {
	if l != nil {
		h.log = l
	}
}

// Prepare starts a session at sampleRate.
func (h *Host) Prepare(sampleRate float64) error {
	if err := h.engine.Prepare(sampleRate, h.cfg.BlockSize); err != nil {
		return err
	}
	h.cfg.SampleRate = sampleRate
	h.log.Debug("session prepared",
		"sampleRate", sampleRate,
		"blockSize", h.cfg.BlockSize,
		"channels", h.cfg.Channels,
		"bufferLen", h.engine.BufferLen())
	return nil
}

// SetTempo installs the tempo source polled once per block. A nil source
// means no host tempo.
func (h *Host) SetTempo(src tempo.Source) {
	if src == nil {
		h.tempo.Store(nil)
		return
	}
	h.tempo.Store(&src)
}

// Tempo returns the current host tempo.
func (h *Host) Tempo() tempo.Tempo {
	if src := h.tempo.Load(); src != nil {
		return (*src)()
	}
	return tempo.None
}

// Process runs frames through the engine in place, in blocks of at most the
// configured block size. A mono host processes the left channel and copies
// it to the right. It does not allocate.
func (h *Host) Process(frames [][2]float64) {
	if !h.engine.Prepared() {
		return
	}

	for len(frames) > 0 {
		chunk := frames[:min(len(frames), h.cfg.BlockSize)]
		n := core.Deinterleave(h.left, h.right, chunk)

		h.planar[0] = h.left[:n]
		if h.cfg.Channels > 1 {
			h.planar[1] = h.right[:n]
		}
		h.engine.Process(h.planar, h.Tempo())

		if h.cfg.Channels == 1 {
			copy(h.right[:n], h.left[:n])
		}
		core.Interleave(chunk, h.left[:n], h.right[:n])
		frames = frames[n:]
	}
}

// Store returns the parameter store.
func (h *Host) Store() *param.Store { return h.store }

// Engine returns the delay engine.
func (h *Host) Engine() *analogdelay.Engine { return h.engine }

// Config returns the processing configuration.
func (h *Host) Config() core.ProcessorConfig { return h.cfg }
