package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-spectra/spectra/grid"
	"github.com/cwbudde/algo-spectra/spectra/prep"
)

const envPrefix = "SNMIX"

var errInvalidConfig = errors.New("invalid configuration")

// Config is the full snmix configuration after merging defaults, the config
// file, SNMIX_* environment variables and flags.
type Config struct {
	LogLevel string `mapstructure:"logLevel"`

	Grid     GridConfig `mapstructure:"grid"`
	Template string     `mapstructure:"template"`
	Redshift float64    `mapstructure:"redshift"`
	Prep     PrepConfig `mapstructure:"prep"`

	// combine
	Galaxy      string  `mapstructure:"galaxy"`
	Age         int     `mapstructure:"age"`
	SNCoeff     float64 `mapstructure:"snCoeff"`
	GalaxyCoeff float64 `mapstructure:"galaxyCoeff"`
	Out         string  `mapstructure:"out"`

	// batch
	GalaxyDir    string         `mapstructure:"galaxyDir"`
	Galaxies     []string       `mapstructure:"galaxies"`
	Ages         []int          `mapstructure:"ages"`
	Coefficients []Coefficients `mapstructure:"coefficients"`
	Output       string         `mapstructure:"output"`
	Workers      int            `mapstructure:"workers"`
	KeepGoing    bool           `mapstructure:"keepGoing"`
}

// GridConfig describes the common log wavelength grid.
type GridConfig struct {
	MinWavelength float64 `mapstructure:"minWavelength"`
	MaxWavelength float64 `mapstructure:"maxWavelength"`
	Size          int     `mapstructure:"size"`
}

// Coefficients is one (supernova, galaxy) weight pair.
type Coefficients struct {
	SN     float64 `mapstructure:"sn" yaml:"sn"`
	Galaxy float64 `mapstructure:"galaxy" yaml:"galaxy"`
}

// PrepConfig selects the preprocessing applied to written composites.
type PrepConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ContinuumKnots int     `mapstructure:"continuumKnots"`
	ApodizePercent float64 `mapstructure:"apodizePercent"`
	LowPassCutoff  float64 `mapstructure:"lowPassCutoff"`
}

// Pipeline returns the preprocessing steps p configures.
func (p PrepConfig) Pipeline() prep.Pipeline {
	return prep.Pipeline{
		ContinuumKnots: p.ContinuumKnots,
		ApodizePercent: p.ApodizePercent,
		LowPassCutoff:  p.LowPassCutoff,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := prep.DefaultPipeline()
	v.SetDefault("logLevel", "info")
	v.SetDefault("grid.minWavelength", 2500.0)
	v.SetDefault("grid.maxWavelength", 10000.0)
	v.SetDefault("grid.size", 1024)
	v.SetDefault("template", "")
	v.SetDefault("redshift", 0.0)
	v.SetDefault("prep.enabled", false)
	v.SetDefault("prep.continuumKnots", def.ContinuumKnots)
	v.SetDefault("prep.apodizePercent", def.ApodizePercent)
	v.SetDefault("prep.lowPassCutoff", def.LowPassCutoff)
	v.SetDefault("galaxy", "")
	v.SetDefault("age", 0)
	v.SetDefault("snCoeff", 0.3)
	v.SetDefault("galaxyCoeff", 0.7)
	v.SetDefault("out", "-")
	v.SetDefault("galaxyDir", filepath.Join("templates", "superfit_templates", "gal"))
	v.SetDefault("galaxies", []string{"E", "S0", "Sa", "Sb", "Sc", "SB1", "SB2", "SB3", "SB4", "SB5", "SB6"})
	v.SetDefault("ages", []int{})
	v.SetDefault("coefficients", []map[string]any{{"sn": 0.3, "galaxy": 0.7}})
	v.SetDefault("output", "composites")
	v.SetDefault("workers", 4)
	v.SetDefault("keepGoing", false)
	return v
}

// loadConfig reads the optional config file into v and decodes the merged
// settings.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LogGrid returns the validated grid.Config for c.Grid.
func (c Config) LogGrid() (grid.Config, error) {
	return grid.New(c.Grid.MinWavelength, c.Grid.MaxWavelength, c.Grid.Size)
}

// Validate checks the settings shared by every command.
func (c Config) Validate() error {
	var result *multierror.Error
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: logLevel: %w", errInvalidConfig, err))
	}
	if _, err := c.LogGrid(); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: grid: %w", errInvalidConfig, err))
	}
	if !(c.Redshift > -1) {
		result = multierror.Append(result, fmt.Errorf("%w: redshift must be > -1: %g", errInvalidConfig, c.Redshift))
	}
	if c.Prep.ContinuumKnots < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: prep.continuumKnots must be >= 0", errInvalidConfig))
	}
	if c.Prep.ApodizePercent < 0 || c.Prep.ApodizePercent > 0.5 {
		result = multierror.Append(result, fmt.Errorf("%w: prep.apodizePercent must be in [0, 0.5]", errInvalidConfig))
	}
	if c.Prep.LowPassCutoff < 0 || c.Prep.LowPassCutoff > 1 {
		result = multierror.Append(result, fmt.Errorf("%w: prep.lowPassCutoff must be in [0, 1]", errInvalidConfig))
	}
	return result.ErrorOrNil()
}

// validateBatch checks the batch-only settings.
func (c Config) validateBatch() error {
	var result *multierror.Error
	if c.Template == "" {
		result = multierror.Append(result, fmt.Errorf("%w: template is required", errInvalidConfig))
	}
	if len(c.Galaxies) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: no galaxies configured", errInvalidConfig))
	}
	if len(c.Coefficients) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: no coefficient pairs configured", errInvalidConfig))
	}
	if c.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: workers must be >= 1: %d", errInvalidConfig, c.Workers))
	}
	if c.Output == "" {
		result = multierror.Append(result, fmt.Errorf("%w: output directory is required", errInvalidConfig))
	}
	seen := make(map[string]string, len(c.Galaxies))
	for _, name := range c.Galaxies {
		out := outputName(name)
		if prev, ok := seen[out]; ok {
			result = multierror.Append(result, fmt.Errorf("%w: galaxies %s and %s both write %s",
				errInvalidConfig, prev, name, out))
			continue
		}
		seen[out] = name
	}
	return result.ErrorOrNil()
}

// outputName is the CSV file a galaxy's composites are written to inside
// the output directory.
func outputName(galaxy string) string {
	return filepath.Base(galaxy) + ".csv"
}

// galaxyPath resolves a galaxy entry against GalaxyDir. Entries containing a
// path separator are used as given.
func (c Config) galaxyPath(name string) string {
	if strings.ContainsRune(name, filepath.Separator) || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.GalaxyDir, name)
}

// parsePair parses "sn:galaxy" into a coefficient pair.
func parsePair(s string) (Coefficients, error) {
	snStr, galStr, ok := strings.Cut(s, ":")
	if !ok {
		return Coefficients{}, fmt.Errorf("%w: coefficient pair %q: want sn:galaxy", errInvalidConfig, s)
	}
	sn, err := strconv.ParseFloat(strings.TrimSpace(snStr), 64)
	if err != nil {
		return Coefficients{}, fmt.Errorf("%w: coefficient pair %q: %w", errInvalidConfig, s, err)
	}
	gal, err := strconv.ParseFloat(strings.TrimSpace(galStr), 64)
	if err != nil {
		return Coefficients{}, fmt.Errorf("%w: coefficient pair %q: %w", errInvalidConfig, s, err)
	}
	return Coefficients{SN: sn, Galaxy: gal}, nil
}
