package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-spectra/spectra/combine"
	"github.com/cwbudde/algo-spectra/spectra/grid"
	"github.com/cwbudde/algo-spectra/spectra/source"
)

const manifestName = "manifest.yaml"

// Manifest summarizes one batch run.
type Manifest struct {
	Template     string         `yaml:"template"`
	TemplateName string         `yaml:"templateName"`
	TemplateType string         `yaml:"templateType"`
	Grid         GridManifest   `yaml:"grid"`
	Redshift     float64        `yaml:"redshift"`
	Ages         []int          `yaml:"ages"`
	Coefficients []Coefficients `yaml:"coefficients"`
	Prepared     bool           `yaml:"prepared"`
	Galaxies     []GalaxyResult `yaml:"galaxies"`
}

// GridManifest records the grid a batch ran on.
type GridManifest struct {
	MinWavelength float64 `yaml:"minWavelength"`
	MaxWavelength float64 `yaml:"maxWavelength"`
	Size          int     `yaml:"size"`
}

// GalaxyResult records the outcome for one galaxy spectrum.
type GalaxyResult struct {
	Name          string `yaml:"name"`
	Source        string `yaml:"source"`
	Output        string `yaml:"output,omitempty"`
	Composites    int    `yaml:"composites"`
	EmptyOverlaps int    `yaml:"emptyOverlaps"`
	Rows          int    `yaml:"rows"`
	Error         string `yaml:"error,omitempty"`
}

func (a *app) batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Combine a template with every configured galaxy type",
		Long: `Combine every selected template age with every configured galaxy and
coefficient pair. One CSV per galaxy and a manifest.yaml are written to the
output directory.

Galaxies are processed concurrently, at most --workers at a time. By default
the first failure stops the run; with --keep-going all galaxies are attempted
and the failures are reported together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pairs, err := cmd.Flags().GetStringSlice("pairs")
			if err != nil {
				return err
			}
			if len(pairs) > 0 {
				a.cfg.Coefficients = a.cfg.Coefficients[:0]
				for _, s := range pairs {
					c, err := parsePair(s)
					if err != nil {
						return err
					}
					a.cfg.Coefficients = append(a.cfg.Coefficients, c)
				}
			}
			return a.runBatch(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.String("galaxy-dir", "", "directory holding the galaxy spectra")
	f.StringSlice("galaxies", nil, "galaxy spectra, by name inside --galaxy-dir or by path")
	f.IntSlice("ages", nil, "template age indices (default all)")
	f.StringSlice("pairs", nil, "coefficient pairs as sn:galaxy, overriding the config file")
	f.String("output", "", "output directory")
	f.Int("workers", 4, "galaxies processed concurrently")
	f.Bool("keep-going", false, "continue after a galaxy fails and report all failures")
	a.bind(f, map[string]string{
		"galaxyDir": "galaxy-dir",
		"galaxies":  "galaxies",
		"ages":      "ages",
		"output":    "output",
		"workers":   "workers",
		"keepGoing": "keep-going",
	})
	return cmd
}

func (a *app) runBatch(ctx context.Context) error {
	cfg := a.cfg
	if err := cfg.validateBatch(); err != nil {
		return err
	}
	g, err := cfg.LogGrid()
	if err != nil {
		return err
	}

	sn, err := source.LoadTemplateSet(cfg.Template)
	if err != nil {
		return err
	}
	ages, err := selectAges(cfg.Ages, sn.NumAges())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return err
	}

	a.log.WithFields(logrus.Fields{
		"template": sn.Name,
		"galaxies": len(cfg.Galaxies),
		"ages":     len(ages),
		"pairs":    len(cfg.Coefficients),
		"workers":  cfg.Workers,
	}).Info("starting batch")

	results := make([]GalaxyResult, len(cfg.Galaxies))
	var (
		mu     sync.Mutex
		failed *multierror.Error
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for i, name := range cfg.Galaxies {
		eg.Go(func() error {
			res, err := a.runGalaxy(ctx, sn, g, name, ages)
			results[i] = res
			if err == nil {
				return nil
			}
			err = fmt.Errorf("galaxy %s: %w", name, err)
			results[i].Error = err.Error()
			if !cfg.KeepGoing {
				return err
			}
			a.log.WithField("galaxy", name).Error(err)
			mu.Lock()
			failed = multierror.Append(failed, err)
			mu.Unlock()
			return nil
		})
	}
	runErr := eg.Wait()

	m := Manifest{
		Template:     cfg.Template,
		TemplateName: sn.Name,
		TemplateType: sn.Type,
		Grid:         GridManifest{MinWavelength: g.MinWavelength, MaxWavelength: g.MaxWavelength, Size: g.Size},
		Redshift:     cfg.Redshift,
		Ages:         ages,
		Coefficients: cfg.Coefficients,
		Prepared:     cfg.Prep.Enabled,
		Galaxies:     results,
	}
	if err := writeManifest(filepath.Join(cfg.Output, manifestName), m); err != nil {
		return multierror.Append(failed, runErr, err).ErrorOrNil()
	}
	if runErr != nil {
		return runErr
	}
	if err := failed.ErrorOrNil(); err != nil {
		return err
	}
	a.log.WithField("output", cfg.Output).Info("batch complete")
	return nil
}

// runGalaxy writes every (age, coefficient pair) composite for one galaxy.
func (a *app) runGalaxy(ctx context.Context, sn *source.TemplateSet, g grid.Config, name string, ages []int) (GalaxyResult, error) {
	path := a.cfg.galaxyPath(name)
	res := GalaxyResult{Name: name, Source: path}

	gal, err := source.LoadSpectrum(path)
	if err != nil {
		return res, err
	}
	c, err := combine.NewFromSpectra(sn, gal, g, combine.WithGalaxyRedshift(a.cfg.Redshift))
	if err != nil {
		return res, err
	}

	out := filepath.Join(a.cfg.Output, outputName(name))
	f, err := os.Create(out)
	if err != nil {
		return res, err
	}
	defer f.Close()
	res.Output = out

	cw, err := newCompositeWriter(f, a.pipeline())
	if err != nil {
		return res, err
	}
	allAges := c.Ages()
	logger := a.log.WithField("galaxy", name)
	for _, age := range ages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ov, err := c.Overlap(age)
		if err != nil {
			return res, err
		}
		if ov.Empty() {
			res.EmptyOverlaps++
			logger.WithField("age", age).Debug("no overlap")
		}
		for _, pair := range a.cfg.Coefficients {
			if err := cw.write(age, allAges[age], ov.Blend(pair.SN, pair.Galaxy)); err != nil {
				return res, err
			}
			res.Composites++
		}
	}
	if err := cw.flush(); err != nil {
		return res, err
	}
	res.Rows = cw.rows
	logger.WithField("rows", res.Rows).Debug("wrote composites")
	return res, f.Close()
}

// selectAges returns the requested age indices, or all of them when none
// are requested.
func selectAges(requested []int, n int) ([]int, error) {
	if len(requested) == 0 {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	for _, age := range requested {
		if age < 0 || age >= n {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", combine.ErrAgeIndex, age, n)
		}
	}
	return requested, nil
}

func writeManifest(path string, m Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
