package combine

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
	"github.com/cwbudde/algo-spectra/spectra/grid"
	"github.com/cwbudde/algo-spectra/spectra/source"
)

const (
	testMin  = 2500.0
	testMax  = 10000.0
	testSize = 1024
)

var testGrid = grid.Config{MinWavelength: testMin, MaxWavelength: testMax, Size: testSize}

// snFixture builds a template set sampled at the bin centres of testGrid.
// Rows hold exactly zero below bin validFrom and small nonzero
// continuum-removed flux from there on.
func snFixture(ages, validFrom int) *source.TemplateSet {
	centres := make([]float64, testSize)
	for j := range centres {
		centres[j] = float64(j) + 0.5
	}

	t := &source.TemplateSet{
		Name:        "sn1999fix",
		Type:        "Ia-norm",
		TypeCode:    1,
		SubtypeCode: 2,
		AgeStep:     2,
		Grid:        testGrid,
		Ages:        make([]float64, ages),
		Wave:        testutil.LogPositions(testMin, testMax, testSize, centres),
		Fluxes:      make([][]float64, ages),
		Continuum:   make([]source.ContinuumSpline, ages),
	}
	for a := range ages {
		t.Ages[a] = -10 + 2*float64(a)
		row := make([]float64, testSize)
		for j := validFrom; j < testSize; j++ {
			row[j] = 0.25 + 0.2*math.Sin(float64(j)/40+float64(a))
		}
		t.Fluxes[a] = row
		off := 0.01 * float64(a)
		t.Continuum[a] = source.ContinuumSpline{
			Mean: 1,
			X:    []float64{0, 256, 512, 768, 1023},
			Y:    []float64{0.2 + off, 0.35 + off, 0.3, 0.1, off},
		}
	}
	return t
}

// galaxyFixture builds a positive galaxy spectrum whose rebinned valid range
// on testGrid is exactly [from, to).
func galaxyFixture(from, to int) source.Spectrum {
	pos := testutil.Linspace(float64(from)+0.6, float64(to)-0.6, to-from)
	wave := testutil.LogPositions(testMin, testMax, testSize, pos)
	flux := testutil.PowerLaw(wave, 5000, -1.2, 2)
	testutil.AddGaussianLine(wave, flux, 6563, 20, 0.8)
	return source.Spectrum{Wave: wave, Flux: flux}
}

func newFixture(t *testing.T, ages, snFrom, galFrom, galTo int, opts ...Option) *Combiner {
	t.Helper()
	c, err := NewFromSpectra(snFixture(ages, snFrom), galaxyFixture(galFrom, galTo), testGrid, opts...)
	if err != nil {
		t.Fatalf("NewFromSpectra: %v", err)
	}
	return c
}

// writeFixtureFiles writes the fixtures to a temp directory and returns the
// template and galaxy paths.
func writeFixtureFiles(t *testing.T, ages, snFrom, galFrom, galTo int) (snPath, galPath string) {
	t.Helper()
	dir := t.TempDir()
	snPath = filepath.Join(dir, "sn1999fix.lnw")
	galPath = filepath.Join(dir, "Sa")

	f, err := os.Create(snPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := source.WriteTemplateSet(f, snFixture(ages, snFrom)); err != nil {
		t.Fatalf("WriteTemplateSet: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	g, err := os.Create(galPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gal := galaxyFixture(galFrom, galTo)
	if err := source.WriteTwoColumn(g, gal); err != nil {
		t.Fatalf("WriteTwoColumn: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return snPath, galPath
}
