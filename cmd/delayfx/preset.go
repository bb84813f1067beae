package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-delay/dsp/param"
	"github.com/cwbudde/algo-delay/dsp/preset"
)

func runPreset(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("preset", "(-save <file> [flags] | -show <file>)", stderr)
	var pf paramFlags
	pf.register(fs)
	save := fs.String("save", "", "write the resulting parameters to this file")
	show := fs.String("show", "", "print the parameters stored in this file")
	if err := parse(fs, args); err != nil {
		return err
	}

	switch {
	case *show != "":
		f, err := os.Open(*show)
		if err != nil {
			return err
		}
		defer f.Close()

		s := param.NewStore()
		if err := preset.Load(f, s); err != nil {
			return err
		}
		printStore(stdout, s)
		return nil

	case *save != "":
		s, err := pf.store()
		if err != nil {
			return err
		}
		f, err := os.Create(*save)
		if err != nil {
			return err
		}
		if err := errors.Join(preset.Save(f, s), f.Close()); err != nil {
			return err
		}
		printStore(stdout, s)
		return nil

	default:
		fs.Usage()
		return errUsage
	}
}

func printStore(w io.Writer, s *param.Store) {
	for _, spec := range param.Specs() {
		fmt.Fprintf(w, "%-13s %s\n", spec.Name, param.Format(spec.ID, s.Get(spec.ID)))
	}
}
