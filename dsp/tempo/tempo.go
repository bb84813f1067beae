// Package tempo derives delay times from musical tempo and rhythmic divisions.
package tempo

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-delay/dsp/core"
)

// DefaultBPM is assumed when the host does not report a tempo.
const DefaultBPM = 120.0

// Division is a rhythmic note value. The ordinal is the persisted choice index.
type Division int

const (
	Whole Division = iota
	Half
	Quarter
	Eighth
	Sixteenth
	EighthTriplet
	SixteenthTriplet

	// NumDivisions is the number of selectable divisions.
	NumDivisions = 7
)

var divisionNames = [NumDivisions]string{"1/1", "1/2", "1/4", "1/8", "1/16", "1/8T", "1/16T"}

// Multipliers relative to one quarter note.
var divisionMultipliers = [NumDivisions]float64{4.0, 2.0, 1.0, 0.5, 0.25, 1.0 / 3.0, 0.25 / 3.0}

// ClampDivision maps any index onto a valid division.
func ClampDivision(index int) Division {
	return Division(core.ClampInt(index, 0, NumDivisions-1))
}

// Multiplier returns the division length in quarter notes.
func (d Division) Multiplier() float64 {
	return divisionMultipliers[ClampDivision(int(d))]
}

// String returns the conventional note-value label, e.g. "1/8T".
func (d Division) String() string {
	return divisionNames[ClampDivision(int(d))]
}

// Divisions returns the display labels in index order.
func Divisions() []string {
	return divisionNames[:]
}

// ParseDivision resolves a label such as "1/4" or "1/16t".
func ParseDivision(s string) (Division, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range divisionNames {
		if s == name {
			return Division(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sync division %q (expected one of %s)", s, strings.Join(divisionNames[:], ", "))
}

// DelayMs returns the length of one division at bpm in milliseconds.
func DelayMs(bpm float64, d Division) float64 {
	quarterNoteMs := 60000.0 / bpm
	return quarterNoteMs * d.Multiplier()
}
