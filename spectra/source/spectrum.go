package source

import (
	"fmt"
	"slices"
)

// Representation is the parsed content of a spectrum file: either a
// *TemplateSet or a Spectrum.
type Representation interface {
	representation()
}

// Spectrum is a (wavelength, flux) pair in its native sampling.
type Spectrum struct {
	Wave []float64
	Flux []float64
}

func (Spectrum) representation() {}

// Len returns the number of samples.
func (s Spectrum) Len() int { return len(s.Wave) }

// Validate checks that Wave and Flux have equal length.
func (s Spectrum) Validate() error {
	if len(s.Wave) != len(s.Flux) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(s.Wave), len(s.Flux))
	}
	return nil
}

// Clone returns a deep copy of s.
func (s Spectrum) Clone() Spectrum {
	return Spectrum{Wave: slices.Clone(s.Wave), Flux: slices.Clone(s.Flux)}
}
