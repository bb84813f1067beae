// Package onepole provides a single-pole recursive lowpass used to damp
// the feedback path of delay effects.
package onepole

import (
	"fmt"

	"github.com/cwbudde/algo-delay/dsp/core"
)

const (
	// DampingPole is the fixed pole of the analog delay feedback filter.
	DampingPole = 0.7
	// DampingGain is the matching input gain (1 - DampingPole).
	DampingGain = 0.3
)

// Filter computes y[n] = pole*y[n-1] + gain*x[n].
type Filter struct {
	pole  float64
	gain  float64
	state float64
}

// New returns a filter with the given pole in [0, 1) and unity DC gain.
func New(pole float64) (*Filter, error) {
	if pole < 0 || pole >= 1 || !core.IsFinite(pole) {
		return nil, fmt.Errorf("one-pole pole must be in [0, 1): %f", pole)
	}
	return &Filter{pole: pole, gain: 1 - pole}, nil
}

// NewDamping returns the 0.7/0.3 feedback damping filter.
func NewDamping() Filter {
	return Filter{pole: DampingPole, gain: DampingGain}
}

// Process filters one sample and stores it as the new state.
func (f *Filter) Process(x float64) float64 {
	f.state = f.pole*f.state + f.gain*x
	return f.state
}

// State returns the last output sample.
func (f *Filter) State() float64 {
	return f.state
}

// Reset clears the filter memory.
func (f *Filter) Reset() {
	f.state = 0
}
