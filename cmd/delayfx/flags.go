package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-delay/dsp/param"
	"github.com/cwbudde/algo-delay/dsp/preset"
	"github.com/cwbudde/algo-delay/dsp/tempo"
)

// errUsage signals a flag parsing failure whose message was already printed.
var errUsage = errors.New("usage")

// paramFlags are the parameter overrides shared by all processing commands.
// NaN and empty values mean "keep the preset or default value".
type paramFlags struct {
	presetPath string
	timeMs     float64
	feedback   float64
	mix        float64
	sync       bool
	division   string
	bpm        float64
}

func (p *paramFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.presetPath, "preset", "", "load parameters from a preset blob before applying flags")
	fs.Float64Var(&p.timeMs, "time", math.NaN(), "delay time in ms [1, 2000]")
	fs.Float64Var(&p.feedback, "feedback", math.NaN(), "feedback amount [0, 0.95]")
	fs.Float64Var(&p.mix, "mix", math.NaN(), "wet/dry mix [0, 1]")
	fs.BoolVar(&p.sync, "sync", false, "derive the delay time from tempo and -division")
	fs.StringVar(&p.division, "division", "", "sync division: 1/1 1/2 1/4 1/8 1/16 1/8T 1/16T")
	fs.Float64Var(&p.bpm, "bpm", 0, "host tempo in bpm (0 = none, sync falls back to 120)")
}

// store builds a parameter store from the preset and flag overrides.
func (p *paramFlags) store() (*param.Store, error) {
	s := param.NewStore()

	if p.presetPath != "" {
		f, err := os.Open(p.presetPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := preset.Load(f, s); err != nil {
			return nil, fmt.Errorf("preset %s: %w", p.presetPath, err)
		}
	}

	setIfGiven(s, param.DelayTimeMs, p.timeMs)
	setIfGiven(s, param.Feedback, p.feedback)
	setIfGiven(s, param.Mix, p.mix)
	if p.sync {
		s.SetBool(param.SyncEnabled, true)
	}
	if p.division != "" {
		d, err := tempo.ParseDivision(p.division)
		if err != nil {
			return nil, err
		}
		s.Set(param.SyncDivision, float64(d))
	}
	return s, nil
}

func (p *paramFlags) tempo() tempo.Tempo {
	return tempo.BPM(p.bpm)
}

func setIfGiven(s *param.Store, id param.ID, v float64) {
	if !math.IsNaN(v) {
		s.Set(id, v)
	}
}

// newFlagSet returns a flag set that reports errors to stderr instead of
// exiting.
func newFlagSet(name, usage string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: delayfx %s %s\n\nFlags:\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args. It returns flag.ErrHelp for -h and errUsage for
// invalid flags; both were already reported by the flag set.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}
