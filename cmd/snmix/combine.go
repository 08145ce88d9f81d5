package main

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-spectra/spectra/combine"
	"github.com/cwbudde/algo-spectra/spectra/prep"
)

func (a *app) combineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Write one composite spectrum as CSV",
		Long: `Combine one supernova template age with one galaxy spectrum.

Both spectra are rebinned onto the log grid and min-max normalized, cut to
their common valid bins and summed as sn-coeff*sn + galaxy-coeff*galaxy.
An empty overlap writes only the CSV header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCombine(cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("galaxy", "", "two-column galaxy spectrum")
	f.Int("age", 0, "template age index")
	f.Float64("sn-coeff", 0.3, "supernova weight")
	f.Float64("galaxy-coeff", 0.7, "galaxy weight")
	f.StringP("out", "o", "-", "output CSV file, - for stdout")
	a.bind(f, map[string]string{
		"galaxy":      "galaxy",
		"age":         "age",
		"snCoeff":     "sn-coeff",
		"galaxyCoeff": "galaxy-coeff",
		"out":         "out",
	})
	return cmd
}

func (a *app) runCombine(stdout io.Writer) error {
	cfg := a.cfg
	if cfg.Template == "" || cfg.Galaxy == "" {
		return errors.New("combine needs both --template and --galaxy")
	}
	g, err := cfg.LogGrid()
	if err != nil {
		return err
	}

	c, err := combine.New(cfg.Template, cfg.Galaxy, g, combine.WithGalaxyRedshift(cfg.Redshift))
	if err != nil {
		return err
	}
	comp, err := c.Combine(cfg.SNCoeff, cfg.GalaxyCoeff, cfg.Age)
	if err != nil {
		return err
	}

	logger := a.log.WithFields(logrus.Fields{
		"template": c.TemplateName(),
		"galaxy":   cfg.Galaxy,
		"age":      cfg.Age,
		"bins":     comp.Len(),
	})
	if comp.Empty() {
		logger.Warn("template and galaxy do not overlap on the grid")
	} else {
		logger.Infof("composite covers bins [%d, %d)", comp.Low, comp.High)
	}

	w, closeOut, err := openOutput(cfg.Out, stdout)
	if err != nil {
		return err
	}
	cw, err := newCompositeWriter(w, a.pipeline())
	if err != nil {
		closeOut()
		return err
	}
	if err := cw.write(cfg.Age, c.Ages()[cfg.Age], comp); err != nil {
		closeOut()
		return err
	}
	if err := cw.flush(); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

// pipeline returns the configured preprocessing pipeline, or nil when
// preprocessing is disabled.
func (a *app) pipeline() *prep.Pipeline {
	if !a.cfg.Prep.Enabled {
		return nil
	}
	p := a.cfg.Prep.Pipeline()
	return &p
}
