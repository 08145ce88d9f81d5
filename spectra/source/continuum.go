package source

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/cwbudde/algo-spectra/spectra/grid"
)

// constant predicts the same value everywhere.
type constant float64

func (c constant) Predict(float64) float64 { return float64(c) }

// ContinuumPredictor fits a curve through knots: a natural cubic spline for
// three or more knots, a straight line for two and a constant for one.
// Outside the knot range the end values are held.
func ContinuumPredictor(x, y []float64) (interp.Predictor, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d knot positions and %d values", ErrContinuum, len(x), len(y))
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("%w: knot positions must increase at index %d", ErrContinuum, i)
		}
	}
	switch len(x) {
	case 0:
		return nil, fmt.Errorf("%w: no knots", ErrContinuum)
	case 1:
		return constant(y[0]), nil
	case 2:
		var pl interp.PiecewiseLinear
		if err := pl.Fit(x, y); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrContinuum, err)
		}
		return &pl, nil
	default:
		var nc interp.NaturalCubic
		if err := nc.Fit(x, y); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrContinuum, err)
		}
		return &nc, nil
	}
}

// ReconstructContinuum restores absolute flux for one template row that had
// its continuum divided out: out = (flux + 1) * 10^S(x), where S is the
// spline through spl's knots and x is each wavelength's bin coordinate on
// the template's native grid.
//
// Samples whose continuum-removed flux is exactly zero are padding in SNID
// templates and stay zero. The inputs are not modified.
func ReconstructContinuum(wave, flux []float64, spl ContinuumSpline, native grid.Config) (Spectrum, error) {
	if len(wave) != len(flux) {
		return Spectrum{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(wave), len(flux))
	}
	if err := native.Validate(); err != nil {
		return Spectrum{}, err
	}
	pred, err := ContinuumPredictor(spl.X, spl.Y)
	if err != nil {
		return Spectrum{}, err
	}

	out := Spectrum{
		Wave: make([]float64, len(wave)),
		Flux: make([]float64, len(flux)),
	}
	copy(out.Wave, wave)
	for i, f := range flux {
		if f == 0 {
			continue
		}
		x := native.Position(wave[i])
		out.Flux[i] = (f + 1) * math.Pow(10, pred.Predict(x))
	}
	return out, nil
}
