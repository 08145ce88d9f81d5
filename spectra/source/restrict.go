package source

import "fmt"

// RestrictRange shifts wave to the rest frame of redshift z (w / (1+z)) and
// keeps the samples with minW <= w < maxW. The inputs are not modified.
func RestrictRange(wave, flux []float64, z, minW, maxW float64) (Spectrum, error) {
	if len(wave) != len(flux) {
		return Spectrum{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(wave), len(flux))
	}
	if !(z > -1) {
		return Spectrum{}, fmt.Errorf("%w: %g", ErrRedshift, z)
	}

	scale := 1 / (1 + z)
	out := Spectrum{Wave: []float64{}, Flux: []float64{}}
	for i, w := range wave {
		rest := w * scale
		if rest >= minW && rest < maxW {
			out.Wave = append(out.Wave, rest)
			out.Flux = append(out.Flux, flux[i])
		}
	}
	return out, nil
}
