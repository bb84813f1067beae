package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gopxl/beep/v2/wav"
	"golang.org/x/term"

	"github.com/cwbudde/algo-delay/dsp/core"
	"github.com/cwbudde/algo-delay/dsp/tempo"
	"github.com/cwbudde/algo-delay/internal/console"
	"github.com/cwbudde/algo-delay/internal/host"
	"github.com/cwbudde/algo-delay/internal/midiclock"
	"github.com/cwbudde/algo-delay/internal/playback"
)

func runPlay(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("play", "-in <file.wav> [flags]", stderr)
	var pf paramFlags
	pf.register(fs)
	in := fs.String("in", "", "input WAV file")
	midiPort := fs.String("midi", "", "follow MIDI clock from the input port containing this name")
	listPorts := fs.Bool("ports", false, "list MIDI input ports and exit")
	tail := fs.Duration("tail", 3*time.Second, "keep playing echoes this long after the input ends")
	buffer := fs.Duration("buffer", playback.DefaultBufferSize, "output device buffer")
	block := fs.Int("block", 512, "processing block size in frames")
	if err := parse(fs, args); err != nil {
		return err
	}

	if *listPorts {
		for _, name := range midiclock.Ports() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}
	if *in == "" {
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

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()
	src, format, err := wav.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", *in, err)
	}
	defer src.Close()

	if err := h.Prepare(float64(format.SampleRate)); err != nil {
		return err
	}

	if *midiPort != "" {
		stop, err := followClock(h, *midiPort)
		if err != nil {
			return err
		}
		defer stop()
	} else {
		t := pf.tempo()
		h.SetTempo(func() tempo.Tempo { return t })
	}

	out, err := playback.Open(int(format.SampleRate), *buffer)
	if err != nil {
		return err
	}
	defer out.Close()

	stream := h.Stream(src, format.SampleRate.N(*tail))
	if err := out.Start(host.NewReader(stream, *block)); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	consoleDone := make(chan error, 1)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		c := console.New(store, os.Stdin, stdout, fd)
		c.SetTempo(h.Tempo)
		go func() {
			consoleDone <- c.Run(ctx)
			cancel()
		}()
	} else {
		consoleDone <- nil
	}

	waitErr := out.Wait(ctx)
	cancel()
	consoleErr := <-consoleDone

	if errors.Is(waitErr, context.Canceled) {
		waitErr = nil
	}
	if errors.Is(consoleErr, context.Canceled) {
		consoleErr = nil
	}
	return errors.Join(waitErr, consoleErr, stream.Err())
}

func followClock(h *host.Host, name string) (stop func(), err error) {
	tr, err := midiclock.NewTracker()
	if err != nil {
		return nil, err
	}
	port, err := midiclock.Open(name)
	if err != nil {
		return nil, err
	}
	stopListen, err := midiclock.Listen(port, tr)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	h.SetTempo(tr.Source())
	slog.Info("following MIDI clock", "port", port.String())
	return func() {
		stopListen()
		_ = port.Close()
	}, nil
}
