package tempo

import "github.com/cwbudde/algo-delay/dsp/core"

// Tempo is an optional host tempo. The zero value is absent.
type Tempo struct {
	bpm float64
	ok  bool
}

// None is the absent tempo.
var None = Tempo{}

// BPM returns a present tempo for positive, finite bpm and None otherwise.
func BPM(bpm float64) Tempo {
	if bpm <= 0 || !core.IsFinite(bpm) {
		return None
	}
	return Tempo{bpm: bpm, ok: true}
}

// Get returns the tempo and whether the host reported one.
func (t Tempo) Get() (float64, bool) {
	return t.bpm, t.ok
}

// OrDefault returns the reported tempo or DefaultBPM.
func (t Tempo) OrDefault() float64 {
	if !t.ok {
		return DefaultBPM
	}
	return t.bpm
}

// Source polls the current host tempo. Implementations must be wait-free.
type Source func() Tempo
