package combine

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmptyFlux indicates normalization of an empty flux array.
	ErrEmptyFlux = errors.New("combine: empty flux")
	// ErrDegenerateNormalization indicates a flux array whose minimum equals
	// its maximum, which has no min-max normalization.
	ErrDegenerateNormalization = errors.New("combine: flux has zero range")
)

// Normalize returns (flux - min) / (max - min) elementwise over the whole
// array. A constant array fails with [ErrDegenerateNormalization].
func Normalize(flux []float64) ([]float64, error) {
	if len(flux) == 0 {
		return nil, ErrEmptyFlux
	}

	lo, hi := floats.Min(flux), floats.Max(flux)
	span := hi - lo
	if !(span > 0) {
		return nil, fmt.Errorf("%w: min = max = %g", ErrDegenerateNormalization, lo)
	}

	out := make([]float64, len(flux))
	for i, v := range flux {
		out[i] = (v - lo) / span
	}
	return out, nil
}
