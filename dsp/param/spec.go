// Package param holds the analog delay's control values as independent
// atomic scalars.
//
// A [Store] is written from non-real-time contexts (control surface, preset
// loading) and read from the audio callback. Every read is a single atomic
// load, so the audio side never blocks and never observes a torn value.
// There is no cross-parameter atomicity: a [Snapshot] taken while a writer is
// active may mix old and new values of different parameters.
package param

import (
	"fmt"

	"github.com/cwbudde/algo-delay/dsp/tempo"
)

// ID identifies one of the delay parameters.
type ID int

const (
	DelayTimeMs ID = iota
	SyncEnabled
	SyncDivision
	Feedback
	Mix

	// NumParams is the number of parameters.
	NumParams = 5
)

// Spec describes a parameter's identity, range and default.
// Steps is 0 for continuous parameters and the number of intervals for
// stepped ones (1 for a toggle, NumDivisions-1 for the division choice).
type Spec struct {
	ID      ID
	Name    string
	Label   string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	Steps   int
}

var specs = [NumParams]Spec{
	{ID: DelayTimeMs, Name: "delayTime", Label: "Delay Time", Unit: "ms", Min: 1, Max: 2000, Default: 400},
	{ID: SyncEnabled, Name: "sync", Label: "Sync to Tempo", Min: 0, Max: 1, Default: 0, Steps: 1},
	{ID: SyncDivision, Name: "syncDivision", Label: "Sync Division", Min: 0, Max: tempo.NumDivisions - 1, Default: float64(tempo.Quarter), Steps: tempo.NumDivisions - 1},
	{ID: Feedback, Name: "feedback", Label: "Feedback", Min: 0, Max: 0.95, Default: 0.35},
	{ID: Mix, Name: "mix", Label: "Mix", Min: 0, Max: 1, Default: 0.5},
}

// Specs returns the parameter table in ID order.
func Specs() []Spec {
	out := make([]Spec, NumParams)
	copy(out, specs[:])
	return out
}

// Valid reports whether id names a parameter.
func (id ID) Valid() bool {
	return id >= 0 && id < NumParams
}

// Spec returns the description of id. It panics for an invalid id.
func (id ID) Spec() Spec {
	return specs[id]
}

// String returns the persistence name of id.
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("param(%d)", int(id))
	}
	return specs[id].Name
}

// Lookup resolves a persistence name to its ID.
func Lookup(name string) (ID, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s.ID, true
		}
	}
	return 0, false
}

// Format renders v for display using the parameter's unit.
func Format(id ID, v float64) string {
	switch id {
	case DelayTimeMs:
		return fmt.Sprintf("%.1f ms", v)
	case SyncEnabled:
		if v >= 0.5 {
			return "On"
		}
		return "Off"
	case SyncDivision:
		return tempo.ClampDivision(int(v)).String()
	case Feedback, Mix:
		return fmt.Sprintf("%.1f %%", v*100)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
