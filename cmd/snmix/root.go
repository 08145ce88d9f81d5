package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries the state shared by all subcommands of one root command.
type app struct {
	v   *viper.Viper
	cfg Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper(), log: logrus.New()}

	cmd := &cobra.Command{
		Use:           "snmix",
		Short:         "Build synthetic supernova plus host-galaxy composite spectra",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Build synthetic supernova plus host-galaxy composite spectra.

Persistent settings can be kept in a YAML config file passed with --config:

grid:
  minWavelength: 2500
  maxWavelength: 10000
  size: 1024
template: templates/snid/sn2001br.lnw
galaxyDir: templates/superfit_templates/gal
galaxies: [E, S0, Sa, Sb, Sc]
coefficients:
  - {sn: 0.3, galaxy: 0.7}
  - {sn: 0.5, galaxy: 0.5}
prep:
  enabled: true
  continuumKnots: 13
  apodizePercent: 0.05
`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "path to a YAML config file")
	pf.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.Float64("grid-min", 2500, "lower wavelength bound of the log grid")
	pf.Float64("grid-max", 10000, "upper wavelength bound of the log grid")
	pf.Int("grid-size", 1024, "number of log grid bins")
	pf.String("template", "", "SNID .lnw supernova template")
	pf.Float64("redshift", 0, "galaxy redshift removed before rebinning")
	pf.Bool("prep", false, "also write the flux after the preprocessing pipeline")
	pf.Int("prep-knots", 13, "continuum spline knots (0 disables continuum removal)")
	pf.Float64("prep-apodize", 0.05, "fraction of each end apodized with a cosine taper")
	pf.Float64("prep-lowpass", 0, "FFT low-pass cutoff as a fraction of Nyquist (0 disables)")
	a.bind(pf, map[string]string{
		"logLevel":            "log-level",
		"grid.minWavelength":  "grid-min",
		"grid.maxWavelength":  "grid-max",
		"grid.size":           "grid-size",
		"template":            "template",
		"redshift":            "redshift",
		"prep.enabled":        "prep",
		"prep.continuumKnots": "prep-knots",
		"prep.apodizePercent": "prep-apodize",
		"prep.lowPassCutoff":  "prep-lowpass",
	})

	cmd.AddCommand(
		a.agesCmd(),
		a.combineCmd(),
		a.batchCmd(),
	)
	return cmd
}

// bind maps viper keys to flags in fs.
func (a *app) bind(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := a.v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// setup loads the configuration and configures logging before any
// subcommand runs.
func (a *app) setup(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(a.v, path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	a.log.SetLevel(level)
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	if path != "" {
		a.log.WithField("config", path).Debug("loaded config file")
	}
	return nil
}
