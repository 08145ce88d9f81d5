package prep

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/interp"

	"github.com/cwbudde/algo-spectra/spectra/source"
)

var (
	// ErrInvalidRange indicates a valid range outside the flux array.
	ErrInvalidRange = errors.New("prep: invalid range")
	// ErrInvalidParameter indicates an out-of-range tuning parameter.
	ErrInvalidParameter = errors.New("prep: invalid parameter")
)

// continuumFloor is the smallest continuum magnitude divided by; samples on
// a vanishing continuum are set to zero.
const continuumFloor = 1e-12

func checkRange(n, low, high int) error {
	if low < 0 || high > n || low > high {
		return fmt.Errorf("%w: [%d, %d) for length %d", ErrInvalidRange, low, high, n)
	}
	return nil
}

// RemoveContinuum divides flux by a smooth continuum and subtracts one
// inside [low, high). The continuum is a natural cubic spline through
// knots points, each the mean index and mean flux of one of knots
// equal-width segments of the range, continued linearly beyond the outer
// knots. If the range is shorter than knots, one knot per sample is used.
//
// It returns the flattened flux and the continuum, both zero outside
// [low, high).
func RemoveContinuum(flux []float64, low, high, knots int) (flat, continuum []float64, err error) {
	if err := checkRange(len(flux), low, high); err != nil {
		return nil, nil, err
	}
	if knots <= 0 {
		return nil, nil, fmt.Errorf("%w: knots must be > 0: %d", ErrInvalidParameter, knots)
	}

	flat = make([]float64, len(flux))
	continuum = make([]float64, len(flux))
	n := high - low
	if n == 0 {
		return flat, continuum, nil
	}
	knots = min(knots, n)

	xs := make([]float64, knots)
	ys := make([]float64, knots)
	for k := range knots {
		start := low + k*n/knots
		end := low + (k+1)*n/knots
		var sx, sy float64
		for i := start; i < end; i++ {
			sx += float64(i)
			sy += flux[i]
		}
		cnt := float64(end - start)
		xs[k] = sx / cnt
		ys[k] = sy / cnt
	}

	pred, err := source.ContinuumPredictor(xs, ys)
	if err != nil {
		return nil, nil, err
	}
	at := linearTails(pred, xs[0], xs[knots-1])
	for i := low; i < high; i++ {
		c := at(float64(i))
		continuum[i] = c
		if math.Abs(c) < continuumFloor {
			continue
		}
		flat[i] = flux[i]/c - 1
	}
	return flat, continuum, nil
}

// linearTails extends pred beyond [first, last] along the secant slope at
// each end; the spline itself holds its end values there.
func linearTails(pred interp.Predictor, first, last float64) func(float64) float64 {
	h := min(1, last-first)
	if h <= 0 {
		return pred.Predict
	}
	y0, y1 := pred.Predict(first), pred.Predict(last)
	slope0 := (pred.Predict(first+h) - y0) / h
	slope1 := (y1 - pred.Predict(last-h)) / h
	return func(x float64) float64 {
		switch {
		case x < first:
			return y0 + slope0*(x-first)
		case x > last:
			return y1 + slope1*(x-last)
		default:
			return pred.Predict(x)
		}
	}
}

// MeanZero returns flux minus its mean over [low, high). Samples outside
// the range are zero.
func MeanZero(flux []float64, low, high int) ([]float64, error) {
	if err := checkRange(len(flux), low, high); err != nil {
		return nil, err
	}
	out := make([]float64, len(flux))
	if low == high {
		return out, nil
	}

	var sum float64
	for _, v := range flux[low:high] {
		sum += v
	}
	mean := sum / float64(high-low)
	for i := low; i < high; i++ {
		out[i] = flux[i] - mean
	}
	return out, nil
}

// Apodize tapers the first and last int((high-low)*percent) samples of
// [low, high) with a raised cosine rising from zero. A taper shorter than
// two samples leaves flux unchanged.
func Apodize(flux []float64, low, high int, percent float64) ([]float64, error) {
	if err := checkRange(len(flux), low, high); err != nil {
		return nil, err
	}
	if percent < 0 || percent > 0.5 {
		return nil, fmt.Errorf("%w: apodize percent must be in [0, 0.5]: %g", ErrInvalidParameter, percent)
	}

	out := make([]float64, len(flux))
	copy(out, flux)

	squash := int(float64(high-low) * percent)
	if squash < 2 || low == high {
		return out, nil
	}

	taper := make([]float64, len(flux))
	for i := range taper {
		taper[i] = 1
	}
	for i := range squash {
		factor := 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(squash-1)))
		lo, hi := low+i, high-1-i
		if lo >= high || hi < low {
			break
		}
		taper[lo] *= factor
		taper[hi] *= factor
	}
	vecmath.MulBlockInPlace(out, taper)
	return out, nil
}
