// Package midiclock derives a host tempo from MIDI beat clock.
//
// A Tracker is fed realtime messages (24 clock pulses per quarter note plus
// Start, Continue and Stop) and publishes the tempo through a wait-free
// atomic, so the audio goroutine can poll it as a [tempo.Source].
package midiclock

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cwbudde/algo-delay/dsp/tempo"
)

// PulsesPerQuarter is the MIDI beat clock resolution.
const PulsesPerQuarter = 24

// DefaultWindow is the number of pulse intervals averaged per estimate.
const DefaultWindow = PulsesPerQuarter

// Tracker estimates tempo from clock pulse timestamps in milliseconds.
type Tracker struct {
	bpm     atomic.Uint64 // float64 bits, 0 while unlocked
	running atomic.Bool

	mu     sync.Mutex
	stamps []int32 // ring of the last window+1 pulse times
	pos    int
	filled int
}

// Option configures a Tracker.
type Option func(*Tracker) error

// WithWindow sets how many pulse intervals are averaged. Larger windows are
// steadier but follow tempo changes more slowly.
func WithWindow(intervals int) Option {
	return func(t *Tracker) error {
		if intervals < 1 {
			return fmt.Errorf("midiclock window must be >= 1: %d", intervals)
		}
		t.stamps = make([]int32, intervals+1)
		return nil
	}
}

// NewTracker creates a stopped, unlocked tracker.
func NewTracker(opts ...Option) (*Tracker, error) {
	t := &Tracker{stamps: make([]int32, DefaultWindow+1)}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Handle consumes one MIDI message received at timestampMs. Messages other
// than clock and transport are ignored. It has the signature expected by
// midi.ListenTo.
func (t *Tracker) Handle(msg midi.Message, timestampMs int32) {
	switch {
	case msg.Is(midi.TimingClockMsg):
		t.pulse(timestampMs)
	case msg.Is(midi.StartMsg), msg.Is(midi.ContinueMsg):
		t.mu.Lock()
		t.clear()
		t.mu.Unlock()
		t.running.Store(true)
	case msg.Is(midi.StopMsg):
		t.running.Store(false)
	}
}

func (t *Tracker) pulse(ts int32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.stamps)
	if t.filled > 0 {
		prev := t.stamps[(t.pos-1+n)%n]
		if ts <= prev {
			// Timestamps went backwards or stalled: restart the estimate.
			t.clear()
		}
	}

	t.stamps[t.pos] = ts
	t.pos = (t.pos + 1) % n
	if t.filled < n {
		t.filled++
	}
	if t.filled < n {
		return
	}

	oldest := t.stamps[t.pos]
	newest := t.stamps[(t.pos-1+n)%n]
	span := float64(newest - oldest)
	if span <= 0 {
		return
	}
	interval := span / float64(n-1)
	bpm := 60000 / (interval * PulsesPerQuarter)
	t.bpm.Store(math.Float64bits(bpm))
}

// clear drops the pulse history. Callers hold mu.
func (t *Tracker) clear() {
	t.pos = 0
	t.filled = 0
	t.bpm.Store(0)
}

// Reset stops the tracker and forgets the tempo.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.clear()
	t.mu.Unlock()
	t.running.Store(false)
}

// Running reports whether the clock master is playing.
func (t *Tracker) Running() bool { return t.running.Load() }

// Tempo returns the estimated tempo, or tempo.None while stopped or before
// a full window of pulses has been seen. It is wait-free.
func (t *Tracker) Tempo() tempo.Tempo {
	if !t.running.Load() {
		return tempo.None
	}
	return tempo.BPM(math.Float64frombits(t.bpm.Load()))
}

// Source returns Tempo as a tempo.Source.
func (t *Tracker) Source() tempo.Source { return t.Tempo }

// Listen starts feeding messages from in to tr. The returned function stops
// listening.
func Listen(in drivers.In, tr *Tracker) (stop func(), err error) {
	stop, err = midi.ListenTo(in, tr.Handle)
	if err != nil {
		return nil, fmt.Errorf("midiclock: listen on %s: %w", in, err)
	}
	return stop, nil
}

// Open finds and opens the input port whose name contains name.
func Open(name string) (drivers.In, error) {
	in, err := midi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("midiclock: find port %q: %w", name, err)
	}
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("midiclock: open %s: %w", in, err)
	}
	return in, nil
}

// Ports lists the available MIDI input port names.
func Ports() []string {
	ins := midi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}
