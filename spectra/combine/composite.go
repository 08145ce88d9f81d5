package combine

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-spectra/spectra/prep"
)

// Composite is a weighted sum of a supernova and a galaxy template over
// their overlap.
type Composite struct {
	Wave        []float64
	Flux        []float64
	Low         int
	High        int
	SNCoeff     float64
	GalaxyCoeff float64
}

// Len returns the number of bins.
func (c Composite) Len() int { return len(c.Flux) }

// Empty reports whether the composite has no bins.
func (c Composite) Empty() bool { return len(c.Flux) == 0 }

// Combine returns snCoeff*sn + galCoeff*galaxy over the overlap of the
// supernova template at age and the galaxy template. Coefficients are not
// constrained. An empty overlap yields an empty Composite and no error.
func (c *Combiner) Combine(snCoeff, galCoeff float64, age int) (Composite, error) {
	ov, err := c.Overlap(age)
	if err != nil {
		return Composite{}, err
	}
	return ov.Blend(snCoeff, galCoeff), nil
}

// Blend returns snCoeff*o.SN + galCoeff*o.Galaxy. Use it to try several
// coefficient pairs against one Overlap.
func (o Overlap) Blend(snCoeff, galCoeff float64) Composite {
	n := o.Len()
	out := Composite{
		Wave:        o.SN.Wave,
		Flux:        make([]float64, n),
		Low:         o.Low,
		High:        o.High,
		SNCoeff:     snCoeff,
		GalaxyCoeff: galCoeff,
	}
	if n == 0 {
		return out
	}

	vecmath.ScaleBlock(out.Flux, o.SN.Flux, snCoeff)
	scaled := make([]float64, n)
	vecmath.ScaleBlock(scaled, o.Galaxy.Flux, galCoeff)
	vecmath.AddBlockInPlace(out.Flux, scaled)
	return out
}

// Prepared runs p over the whole composite and returns the processed flux.
// An empty composite yields an empty slice.
func (c Composite) Prepared(p prep.Pipeline) ([]float64, error) {
	if c.Empty() {
		return []float64{}, nil
	}
	return p.Apply(c.Flux, 0, len(c.Flux))
}
