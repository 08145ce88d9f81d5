package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfig indicates a grid with non-positive or inverted bounds
	// or a non-positive size.
	ErrInvalidConfig = errors.New("grid: invalid config")
	// ErrLengthMismatch indicates wavelength and flux slices of different length.
	ErrLengthMismatch = errors.New("grid: wavelength and flux length mismatch")
	// ErrUnsorted indicates wavelengths that decrease somewhere.
	ErrUnsorted = errors.New("grid: wavelengths must be non-decreasing")
)

// Padding is the flux value of bins outside the valid range.
const Padding = 0.0

// Config is an immutable logarithmic wavelength grid description.
type Config struct {
	MinWavelength float64
	MaxWavelength float64
	Size          int
}

// New returns a validated grid config.
func New(minWavelength, maxWavelength float64, size int) (Config, error) {
	cfg := Config{MinWavelength: minWavelength, MaxWavelength: maxWavelength, Size: size}
	return cfg, cfg.Validate()
}

// Validate reports whether 0 < MinWavelength < MaxWavelength and Size > 0.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be > 0: %d", ErrInvalidConfig, c.Size)
	}
	if !(c.MinWavelength > 0) || math.IsInf(c.MaxWavelength, 0) {
		return fmt.Errorf("%w: wavelength bounds must be finite and > 0: [%g, %g]",
			ErrInvalidConfig, c.MinWavelength, c.MaxWavelength)
	}
	if !(c.MinWavelength < c.MaxWavelength) {
		return fmt.Errorf("%w: min wavelength %g must be < max wavelength %g",
			ErrInvalidConfig, c.MinWavelength, c.MaxWavelength)
	}
	return nil
}

// LogStep returns the bin width in natural-log wavelength units.
func (c Config) LogStep() float64 {
	return math.Log(c.MaxWavelength/c.MinWavelength) / float64(c.Size)
}

// Position returns the fractional bin coordinate of wavelength w.
// Bin j spans positions [j, j+1).
func (c Config) Position(w float64) float64 {
	return math.Log(w/c.MinWavelength) / c.LogStep()
}

// WavelengthAt returns the wavelength at fractional bin coordinate p.
func (c Config) WavelengthAt(p float64) float64 {
	return c.MinWavelength * math.Exp(p*c.LogStep())
}

// Wavelengths returns the lower edge of every bin.
func (c Config) Wavelengths() []float64 {
	out := make([]float64, c.Size)
	dlog := c.LogStep()
	for i := range out {
		out[i] = c.MinWavelength * math.Exp(float64(i)*dlog)
	}
	return out
}

// String implements fmt.Stringer.
func (c Config) String() string {
	return fmt.Sprintf("[%g, %g) x %d", c.MinWavelength, c.MaxWavelength, c.Size)
}
