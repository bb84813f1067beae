package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cwbudde/algo-delay/dsp/core"
	"github.com/cwbudde/algo-delay/dsp/tempo"
	"github.com/cwbudde/algo-delay/internal/host"
)

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("render", "-in <file.wav> -out <file.wav> [flags]", stderr)
	var pf paramFlags
	pf.register(fs)
	in := fs.String("in", "", "input WAV file")
	out := fs.String("out", "", "output WAV file")
	tail := fs.Duration("tail", 2*time.Second, "silence rendered after the input to let echoes decay")
	block := fs.Int("block", 512, "processing block size in frames")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return errUsage
	}

	store, err := pf.store()
	if err != nil {
		return err
	}
	h, err := host.New(store, core.WithBlockSize(*block))
	if err != nil {
		return err
	}
	t := pf.tempo()
	h.SetTempo(func() tempo.Tempo { return t })

	src, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(*out)
	if err != nil {
		return err
	}

	start := time.Now()
	renderErr := h.RenderFile(src, dst, *tail)
	if err := errors.Join(renderErr, dst.Close()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s -> %s: %.0f Hz, delay %.1f ms, %v\n",
		*in, *out, h.Engine().SampleRate(), h.Engine().EffectiveDelayMs(t),
		time.Since(start).Round(time.Millisecond))
	return nil
}
