package grid

import (
	"fmt"
	"math"
)

// Binned is a spectrum resampled onto a [Config].
//
// Wave and Flux both have length Config.Size. Flux outside [Low, High) is
// [Padding] and carries no physical meaning.
type Binned struct {
	Wave []float64
	Flux []float64
	Low  int
	High int
}

// Empty reports whether no bin holds real data.
func (b Binned) Empty() bool {
	return b.Low >= b.High
}

// Valid returns the wavelength and flux sub-slices over [Low, High).
// The returned slices alias b.
func (b Binned) Valid() (wave, flux []float64) {
	if b.Empty() {
		return []float64{}, []float64{}
	}
	return b.Wave[b.Low:b.High], b.Flux[b.Low:b.High]
}

// Rebin resamples (wave, flux) onto cfg.
//
// Each input pixel i spans the wavelength interval halfway to its
// neighbours (extrapolated by half a pixel at both ends) and adds
// flux[i] times its log-space overlap with every bin it touches. A bin
// fully covered by finely sampled input therefore holds the mean flux
// density; partially covered edge bins are attenuated by their coverage.
//
// Input wavelengths must be non-decreasing. Inputs with fewer than two
// samples carry no pixel width and produce an all-padding result.
func Rebin(cfg Config, wave, flux []float64) (Binned, error) {
	if err := cfg.Validate(); err != nil {
		return Binned{}, err
	}
	if len(wave) != len(flux) {
		return Binned{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(wave), len(flux))
	}
	for i := 1; i < len(wave); i++ {
		if wave[i] < wave[i-1] {
			return Binned{}, fmt.Errorf("%w: index %d (%g < %g)", ErrUnsorted, i, wave[i], wave[i-1])
		}
	}

	out := make([]float64, cfg.Size)
	n := len(wave)
	if n >= 2 {
		dlog := cfg.LogStep()
		size := float64(cfg.Size)

		for i := range n {
			s0, s1 := pixelBounds(wave, i)
			if !(s0 > 0) || !(s1 > s0) {
				continue
			}

			p0 := math.Log(s0/cfg.MinWavelength) / dlog
			p1 := math.Log(s1/cfg.MinWavelength) / dlog
			if p1 <= 0 || p0 >= size {
				continue
			}

			j0 := max(int(math.Floor(p0)), 0)
			j1 := min(int(math.Ceil(p1)), cfg.Size)
			for j := j0; j < j1; j++ {
				overlap := math.Min(p1, float64(j+1)) - math.Max(p0, float64(j))
				if overlap > 0 {
					out[j] += flux[i] * overlap
				}
			}
		}
	}

	low, high := ValidRange(out, Padding)
	return Binned{
		Wave: cfg.Wavelengths(),
		Flux: out,
		Low:  low,
		High: high,
	}, nil
}

// pixelBounds returns the wavelength interval covered by sample i.
func pixelBounds(wave []float64, i int) (s0, s1 float64) {
	last := len(wave) - 1
	switch i {
	case 0:
		s0 = 0.5 * (3*wave[0] - wave[1])
		s1 = 0.5 * (wave[0] + wave[1])
	case last:
		s0 = 0.5 * (wave[last-1] + wave[last])
		s1 = 0.5 * (3*wave[last] - wave[last-1])
	default:
		s0 = 0.5 * (wave[i-1] + wave[i])
		s1 = 0.5 * (wave[i] + wave[i+1])
	}
	return s0, s1
}

// ValidRange returns the half-open index range [low, high) spanning the first
// through last element that differs from outer. If every element equals
// outer, it returns (len(flux), len(flux)).
func ValidRange(flux []float64, outer float64) (low, high int) {
	low = len(flux)
	for i, v := range flux {
		if v != outer {
			low = i
			break
		}
	}
	if low == len(flux) {
		return low, low
	}

	high = low + 1
	for i := len(flux) - 1; i > low; i-- {
		if flux[i] != outer {
			high = i + 1
			break
		}
	}
	return low, high
}
