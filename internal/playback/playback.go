// Package playback sends processed audio to the default output device via
// oto.
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Channels is the output channel count; readers deliver interleaved stereo
// float32 little-endian frames.
const Channels = 2

// DefaultBufferSize is the device buffer requested from oto.
const DefaultBufferSize = 40 * time.Millisecond

const pollInterval = 20 * time.Millisecond

// ErrClosed is returned when using an output after Close.
var ErrClosed = errors.New("playback: output closed")

// player is the subset of *oto.Player used by Output.
type player interface {
	Play()
	Pause()
	IsPlaying() bool
	Err() error
	Close() error
}

var (
	contextOnce sync.Once
	sharedCtx   *oto.Context
	sharedErr   error
	sharedRate  int
)

// sharedContext creates the process-wide oto context; oto allows only one.
func sharedContext(sampleRate int, buffer time.Duration) (*oto.Context, error) {
	contextOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: Channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   buffer,
		})
		if err != nil {
			sharedErr = err
			return
		}
		<-ready
		sharedCtx = ctx
		sharedRate = sampleRate
	})
	if sharedErr != nil {
		return nil, sharedErr
	}
	if sharedRate != sampleRate {
		return nil, fmt.Errorf("playback: audio context already running at %d Hz (requested %d Hz)", sharedRate, sampleRate)
	}
	return sharedCtx, nil
}

// Output plays one stream at a time. Control methods may be called from any
// goroutine; the device pulls audio on its own goroutine.
type Output struct {
	mu        sync.Mutex
	newPlayer func(io.Reader) player
	current   player
	closed    bool
	log       *slog.Logger
}

// Open returns an output on the default device at sampleRate.
func Open(sampleRate int, buffer time.Duration) (*Output, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("playback sample rate must be > 0: %d", sampleRate)
	}
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}

	ctx, err := sharedContext(sampleRate, buffer)
	if err != nil {
		return nil, err
	}
	return newOutput(func(r io.Reader) player { return ctx.NewPlayer(r) }), nil
}

func newOutput(newPlayer func(io.Reader) player) *Output {
	return &Output{
		newPlayer: newPlayer,
		log:       slog.Default().With("component", "playback"),
	}
}

// Start replaces the current stream with r and begins playing it.
func (o *Output) Start(r io.Reader) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.current != nil {
		if err := o.current.Close(); err != nil {
			o.log.Warn("closing previous player", "err", err)
		}
	}

	o.current = o.newPlayer(r)
	o.current.Play()
	o.log.Debug("playback started")
	return nil
}

// Pause suspends the current stream.
func (o *Output) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil {
		o.current.Pause()
	}
}

// Resume continues a paused stream.
func (o *Output) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil {
		o.current.Play()
	}
}

// Playing reports whether a stream is audible.
func (o *Output) Playing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current != nil && o.current.IsPlaying()
}

// Wait blocks until the current stream ends or ctx is done. It returns the
// player error, if any, or the context error.
func (o *Output) Wait(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		o.mu.Lock()
		p := o.current
		o.mu.Unlock()
		if p == nil {
			return nil
		}
		if !p.IsPlaying() {
			return p.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close stops playback and releases the player. The shared device context
// stays open for the lifetime of the process.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if o.current == nil {
		return nil
	}
	err := o.current.Close()
	o.current = nil
	return err
}
