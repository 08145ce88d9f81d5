package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-spectra/spectra/source"
)

func (a *app) agesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ages [template.lnw]",
		Short: "List the ages stored in a SNID template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Template
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no template given")
			}

			t, err := source.LoadTemplateSet(path)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"template": path, "ages": t.NumAges()}).Debug("loaded template")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  type %s  grid %v  %d ages\n\n", t.Name, t.Type, t.Grid, t.NumAges())
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Index\tAge [d]\tKnots")
			for i, age := range t.Ages {
				fmt.Fprintf(tw, "%d\t%+.1f\t%d\n", i, age, t.Continuum[i].Knots())
			}
			return tw.Flush()
		},
	}
}
