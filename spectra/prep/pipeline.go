package prep

// Pipeline configures the post-processing chain. A zero field disables the
// corresponding step; mean removal always runs.
type Pipeline struct {
	ContinuumKnots int
	ApodizePercent float64
	LowPassCutoff  float64
}

// DefaultPipeline returns 13-knot continuum removal and 5% apodization with
// no low-pass filter.
func DefaultPipeline() Pipeline {
	return Pipeline{
		ContinuumKnots: 13,
		ApodizePercent: 0.05,
	}
}

// Apply runs the enabled steps over flux with valid range [low, high) and
// returns a new slice.
func (p Pipeline) Apply(flux []float64, low, high int) ([]float64, error) {
	out := flux
	if p.ContinuumKnots > 0 {
		flat, _, err := RemoveContinuum(out, low, high, p.ContinuumKnots)
		if err != nil {
			return nil, err
		}
		out = flat
	}

	out, err := MeanZero(out, low, high)
	if err != nil {
		return nil, err
	}

	if p.ApodizePercent > 0 {
		if out, err = Apodize(out, low, high, p.ApodizePercent); err != nil {
			return nil, err
		}
	}

	if p.LowPassCutoff > 0 {
		if out, err = LowPass(out, p.LowPassCutoff); err != nil {
			return nil, err
		}
	}
	return out, nil
}
