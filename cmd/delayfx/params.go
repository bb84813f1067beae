package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-delay/dsp/param"
	"github.com/cwbudde/algo-delay/dsp/tempo"
)

func runParams(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("params", "", stderr)
	if err := parse(fs, args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tLabel\tMin\tMax\tDefault\n")
	fmt.Fprintf(tw, "----\t-----\t---\t---\t-------\n")
	for _, s := range param.Specs() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.Name, s.Label,
			param.Format(s.ID, s.Min),
			param.Format(s.ID, s.Max),
			param.Format(s.ID, s.Default))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nSync divisions:")
	for _, d := range tempo.Divisions() {
		fmt.Fprintf(stdout, " %s", d)
	}
	fmt.Fprintln(stdout)
	return nil
}
