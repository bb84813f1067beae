package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-delay/dsp/effects/analogdelay"
	"github.com/cwbudde/algo-delay/measure/echo"
)

func runIR(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("ir", "[flags]", stderr)
	var pf paramFlags
	pf.register(fs)
	rate := fs.Float64("rate", 48000, "sample rate in Hz")
	seconds := fs.Float64("seconds", 4, "length of the rendered response")
	maxEchoes := fs.Int("echoes", 16, "maximum number of echo rows printed")
	threshold := fs.Float64("threshold", -60, "ignore echoes this many dB below the loudest")
	if err := parse(fs, args); err != nil {
		return err
	}

	store, err := pf.store()
	if err != nil {
		return err
	}
	e, err := analogdelay.New(store, analogdelay.WithMaxChannels(1))
	if err != nil {
		return err
	}
	if err := e.Prepare(*rate, 1024); err != nil {
		return err
	}

	t := pf.tempo()
	frames := int(*seconds * *rate)
	ir, err := echo.Render(e, frames, t)
	if err != nil {
		return err
	}

	a := echo.NewAnalyzer(*rate)
	a.ThresholdDB = *threshold
	r, err := a.Analyze(ir)
	if err != nil {
		return err
	}

	return printReport(stdout, r, e.EffectiveDelayMs(t), *maxEchoes)
}

func printReport(w io.Writer, r echo.Report, delayMs float64, maxEchoes int) error {
	fmt.Fprintf(w, "delay       %.3f ms\n", delayMs)
	fmt.Fprintf(w, "direct      %.4f\n", r.DirectLevel)
	fmt.Fprintf(w, "echoes      %d\n", len(r.Echoes))
	fmt.Fprintf(w, "period      %.3f ms\n", r.PeriodMs)
	fmt.Fprintf(w, "decay       %.2f dB/repeat\n", r.DecayPerRepeatDB)
	fmt.Fprintf(w, "centroid    %.1f Hz\n\n", r.CentroidHz)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tSample\tTime [ms]\tLevel\tLevel [dB]\n")
	fmt.Fprintf(tw, "-\t------\t---------\t-----\t----------\n")
	for i, tap := range r.Echoes {
		if i >= maxEchoes {
			break
		}
		fmt.Fprintf(tw, "%d\t%d\t%.3f\t%.5f\t%.2f\n", i+1, tap.Index, tap.TimeMs, tap.Level, tap.LevelDB)
	}
	return tw.Flush()
}
