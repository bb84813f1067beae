// Command delayfx runs the analog delay offline, live, or as an analysis
// tool.
//
// Usage:
//
//	delayfx <command> [flags]
//
// Commands:
//
//	render   process a WAV file into another WAV file
//	ir       render the impulse response and print its echo report
//	play     play a WAV file through the delay with keyboard control
//	params   list the parameters with ranges and defaults
//	preset   write or inspect a preset blob
//
// Examples:
//
//	delayfx render -in dry.wav -out wet.wav -time 375 -feedback 0.5
//	delayfx render -in dry.wav -out wet.wav -sync -division 1/8T -bpm 96
//	delayfx ir -sync -division 1/4 -bpm 120 -feedback 0.7
//	delayfx play -in loop.wav -midi "IAC Driver"
//	delayfx preset -save slapback.adly -time 90 -feedback 0 -mix 0.3
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
)

type command struct {
	name    string
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

func commands() []command {
	return []command{
		{"render", "process a WAV file into another WAV file", runRender},
		{"ir", "render the impulse response and print its echo report", runIR},
		{"play", "play a WAV file through the delay with keyboard control", runPlay},
		{"params", "list the parameters with ranges and defaults", runParams},
		{"preset", "write or inspect a preset blob", runPreset},
	}
}

func main() {
	slog.SetDefault(newLogger(os.Stderr, os.Getenv("DELAYFX_DEBUG") != ""))
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	for _, c := range commands() {
		if c.name != args[0] {
			continue
		}
		if err := c.run(args[1:], stdout, stderr); err != nil {
			switch {
			case errors.Is(err, flag.ErrHelp):
				return 0
			case errors.Is(err, errUsage):
				return 2
			}
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stderr, "error: unknown command %q\n\n", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: delayfx <command> [flags]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'delayfx <command> -h' for command flags.\n")
	fmt.Fprintf(w, "Set DELAYFX_DEBUG=1 for debug logging.\n")
}
