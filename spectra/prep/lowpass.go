package prep

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// LowPass removes spectral content above cutoff, given as a fraction of the
// Nyquist frequency in (0, 1]. The signal is zero-padded to the next power
// of two, transformed, bins above the cutoff are zeroed and the real part of
// the inverse transform is returned at the original length.
func LowPass(flux []float64, cutoff float64) ([]float64, error) {
	if !(cutoff > 0 && cutoff <= 1) {
		return nil, fmt.Errorf("%w: low-pass cutoff must be in (0, 1]: %g", ErrInvalidParameter, cutoff)
	}
	if len(flux) == 0 {
		return []float64{}, nil
	}

	fftSize := nextPowerOf2(len(flux))
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("prep: failed to create FFT plan: %w", err)
	}

	buf := make([]complex128, fftSize)
	for i, v := range flux {
		buf[i] = complex(v, 0)
	}

	freq := make([]complex128, fftSize)
	if err := plan.Forward(freq, buf); err != nil {
		return nil, fmt.Errorf("prep: forward FFT failed: %w", err)
	}

	keep := cutoff * float64(fftSize) / 2
	for k := range freq {
		if float64(min(k, fftSize-k)) > keep {
			freq[k] = 0
		}
	}

	if err := plan.Inverse(buf, freq); err != nil {
		return nil, fmt.Errorf("prep: inverse FFT failed: %w", err)
	}

	out := make([]float64, len(flux))
	for i := range out {
		out[i] = real(buf[i])
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
