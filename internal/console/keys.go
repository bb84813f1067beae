package console

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-delay/dsp/param"
	"github.com/cwbudde/algo-delay/dsp/tempo"
)

const (
	keyCtrlC = 0x03
	keyQuit  = 'q'
)

type nudge struct {
	id    param.ID
	delta float64
}

var nudges = map[byte]nudge{
	'[': {param.DelayTimeMs, -10},
	']': {param.DelayTimeMs, 10},
	'{': {param.DelayTimeMs, -100},
	'}': {param.DelayTimeMs, 100},
	'-': {param.Feedback, -0.05},
	'=': {param.Feedback, 0.05},
	'+': {param.Feedback, 0.05},
	',': {param.Mix, -0.05},
	'.': {param.Mix, 0.05},
	'd': {param.SyncDivision, 1},
	'D': {param.SyncDivision, -1},
}

// Apply performs the edit bound to key on store and reports whether the key
// is bound. Values are clamped by the store.
func Apply(store *param.Store, key byte) bool {
	if n, ok := nudges[key]; ok {
		store.Set(n.id, store.Get(n.id)+n.delta)
		return true
	}

	switch key {
	case 's':
		store.SetBool(param.SyncEnabled, !store.Bool(param.SyncEnabled))
	case 'r':
		store.Reset()
	default:
		return false
	}
	return true
}

// IsQuit reports whether key ends the session.
func IsQuit(key byte) bool {
	return key == keyQuit || key == keyCtrlC
}

// Help describes the key bindings.
func Help() string {
	return strings.Join([]string{
		"[ ]  delay time -/+ 10 ms    { }  -/+ 100 ms",
		"- =  feedback -/+ 5 %        , .  mix -/+ 5 %",
		"s    toggle tempo sync       d D  next/previous division",
		"r    reset                   q    quit",
	}, "\r\n")
}

// Status renders the parameter values and host tempo on one line.
func Status(store *param.Store, t tempo.Tempo) string {
	snap := store.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "time %s", param.Format(param.DelayTimeMs, snap.DelayTimeMs))
	if snap.Sync {
		fmt.Fprintf(&b, " (sync %s)", snap.Division)
	}
	fmt.Fprintf(&b, " | feedback %s | mix %s",
		param.Format(param.Feedback, snap.Feedback),
		param.Format(param.Mix, snap.Mix))

	if bpm, ok := t.Get(); ok {
		fmt.Fprintf(&b, " | %.1f bpm", bpm)
	} else {
		b.WriteString(" | no tempo")
	}
	return b.String()
}
