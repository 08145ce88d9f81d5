package combine

import (
	"github.com/cwbudde/algo-spectra/spectra/grid"
	"github.com/cwbudde/algo-spectra/spectra/source"
)

// Overlap holds both normalized templates sliced to the intersection of
// their valid ranges. SN.Wave and Galaxy.Wave are identical.
//
// Low and High are the raw intersection bounds max(lows) and min(highs).
// When Low >= High the overlap is empty and every slice has length zero.
type Overlap struct {
	Low    int
	High   int
	SN     source.Spectrum
	Galaxy source.Spectrum
}

// Len returns the number of overlapping bins.
func (o Overlap) Len() int { return len(o.SN.Flux) }

// Empty reports whether the valid ranges do not intersect.
func (o Overlap) Empty() bool { return o.Len() == 0 }

// Overlap returns the supernova template at age and the galaxy template
// restricted to their common valid bins.
func (c *Combiner) Overlap(age int) (Overlap, error) {
	sn, err := c.SNTemplate(age)
	if err != nil {
		return Overlap{}, err
	}
	gal, err := c.GalaxyTemplate()
	if err != nil {
		return Overlap{}, err
	}
	return intersect(sn, gal), nil
}

func intersect(sn, gal grid.Binned) Overlap {
	low := max(sn.Low, gal.Low)
	high := min(sn.High, gal.High)
	ov := Overlap{Low: low, High: high}
	if low >= high {
		ov.SN = source.Spectrum{Wave: []float64{}, Flux: []float64{}}
		ov.Galaxy = source.Spectrum{Wave: []float64{}, Flux: []float64{}}
		return ov
	}

	wave := sn.Wave[low:high]
	ov.SN = source.Spectrum{Wave: wave, Flux: sn.Flux[low:high]}
	ov.Galaxy = source.Spectrum{Wave: wave, Flux: gal.Flux[low:high]}
	return ov
}
