package combine

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-spectra/spectra/grid"
	"github.com/cwbudde/algo-spectra/spectra/source"
)

var (
	// ErrAgeIndex indicates an age index outside [0, NumAges()).
	ErrAgeIndex = source.ErrAgeIndex
	// ErrLoad wraps every failure to read an input file.
	ErrLoad = source.ErrLoad
)

// Combiner blends one supernova template set with one host-galaxy spectrum
// on a fixed grid. It is immutable after construction and safe for
// concurrent use.
type Combiner struct {
	grid     grid.Config
	sn       *source.TemplateSet
	galaxy   source.Spectrum
	redshift float64
}

// New loads the SNID template at snPath and the two-column galaxy spectrum at
// galPath and returns a Combiner over cfg.
func New(snPath, galPath string, cfg grid.Config, opts ...Option) (*Combiner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sn, err := source.LoadTemplateSet(snPath)
	if err != nil {
		return nil, fmt.Errorf("combine: supernova template: %w", err)
	}
	gal, err := source.LoadSpectrum(galPath)
	if err != nil {
		return nil, fmt.Errorf("combine: galaxy template: %w", err)
	}
	return NewFromSpectra(sn, gal, cfg, opts...)
}

// NewFromSpectra returns a Combiner over already parsed inputs. The Combiner
// keeps references to sn and gal; callers must not modify them afterwards.
func NewFromSpectra(sn *source.TemplateSet, gal source.Spectrum, cfg grid.Config, opts ...Option) (*Combiner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sn == nil {
		return nil, fmt.Errorf("combine: supernova template: %w: nil template set", source.ErrUnrecognizedFormat)
	}
	if err := sn.Validate(); err != nil {
		return nil, fmt.Errorf("combine: supernova template: %w", err)
	}
	if err := gal.Validate(); err != nil {
		return nil, fmt.Errorf("combine: galaxy template: %w", err)
	}

	opt := applyOptions(opts...)
	return &Combiner{
		grid:     cfg,
		sn:       sn,
		galaxy:   gal,
		redshift: opt.galaxyRedshift,
	}, nil
}

// Grid returns the common wavelength grid.
func (c *Combiner) Grid() grid.Config { return c.grid }

// NumAges returns the number of supernova template ages.
func (c *Combiner) NumAges() int { return c.sn.NumAges() }

// Ages returns a copy of the template ages in days relative to maximum light.
func (c *Combiner) Ages() []float64 { return slices.Clone(c.sn.Ages) }

// TemplateName returns the supernova template name.
func (c *Combiner) TemplateName() string { return c.sn.Name }

// TemplateType returns the supernova subtype, with legacy names resolved.
func (c *Combiner) TemplateType() string { return c.sn.Type }

// GalaxyRedshift returns the redshift removed from the galaxy spectrum.
func (c *Combiner) GalaxyRedshift() float64 { return c.redshift }

// SNTemplate returns the supernova row at age index age with its continuum
// restored, rebinned onto the grid and min-max normalized over the full
// grid length. Low and High delimit the bins holding real data.
func (c *Combiner) SNTemplate(age int) (grid.Binned, error) {
	row, spl, err := c.sn.Row(age)
	if err != nil {
		return grid.Binned{}, err
	}

	abs, err := source.ReconstructContinuum(row.Wave, row.Flux, spl, c.sn.Grid)
	if err != nil {
		return grid.Binned{}, fmt.Errorf("combine: supernova age %d: %w", age, err)
	}
	binned, err := grid.Rebin(c.grid, abs.Wave, abs.Flux)
	if err != nil {
		return grid.Binned{}, fmt.Errorf("combine: supernova age %d: %w", age, err)
	}
	if binned, err = normalized(binned); err != nil {
		return grid.Binned{}, fmt.Errorf("combine: supernova age %d: %w", age, err)
	}
	return binned, nil
}

// GalaxyTemplate returns the galaxy spectrum shifted to its rest frame,
// restricted to the grid bounds, rebinned and min-max normalized over the
// full grid length. A galaxy with no samples inside the grid normalizes an
// all-padding array and fails with [ErrDegenerateNormalization].
func (c *Combiner) GalaxyTemplate() (grid.Binned, error) {
	rest, err := source.RestrictRange(c.galaxy.Wave, c.galaxy.Flux, c.redshift,
		c.grid.MinWavelength, c.grid.MaxWavelength)
	if err != nil {
		return grid.Binned{}, fmt.Errorf("combine: galaxy: %w", err)
	}
	binned, err := grid.Rebin(c.grid, rest.Wave, rest.Flux)
	if err != nil {
		return grid.Binned{}, fmt.Errorf("combine: galaxy: %w", err)
	}
	if binned, err = normalized(binned); err != nil {
		return grid.Binned{}, fmt.Errorf("combine: galaxy: %w", err)
	}
	return binned, nil
}

// normalized replaces b.Flux with its min-max normalization. The valid range
// still refers to the unnormalized data, where padding is exactly zero.
func normalized(b grid.Binned) (grid.Binned, error) {
	flux, err := Normalize(b.Flux)
	if err != nil {
		return grid.Binned{}, err
	}
	b.Flux = flux
	return b, nil
}
