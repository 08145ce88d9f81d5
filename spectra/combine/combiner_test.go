package combine

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
	"github.com/cwbudde/algo-spectra/spectra/grid"
	"github.com/cwbudde/algo-spectra/spectra/prep"
	"github.com/cwbudde/algo-spectra/spectra/source"
)

func TestNewLoadsFiles(t *testing.T) {
	snPath, galPath := writeFixtureFiles(t, 3, 0, 100, 900)

	c, err := New(snPath, galPath, testGrid)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.NumAges() != 3 {
		t.Fatalf("NumAges got=%d want=3", c.NumAges())
	}
	if c.TemplateName() != "sn1999fix" || c.TemplateType() != "Ia-norm" {
		t.Fatalf("template got=%s/%s", c.TemplateName(), c.TemplateType())
	}
	testutil.RequireSliceEqual(t, c.Ages(), []float64{-10, -8, -6})
	if c.Grid() != testGrid {
		t.Fatalf("grid got=%v want=%v", c.Grid(), testGrid)
	}

	comp, err := c.Combine(0.5, 0.5, 1)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if comp.Len() != 800 || comp.Low != 100 || comp.High != 900 {
		t.Fatalf("composite got len=%d [%d, %d) want 800 [100, 900)", comp.Len(), comp.Low, comp.High)
	}
}

func TestNewErrors(t *testing.T) {
	snPath, galPath := writeFixtureFiles(t, 2, 0, 100, 900)
	missing := filepath.Join(t.TempDir(), "missing.lnw")

	tests := []struct {
		name    string
		sn, gal string
		cfg     grid.Config
		want    error
	}{
		{name: "missing template", sn: missing, gal: galPath, cfg: testGrid, want: ErrLoad},
		{name: "missing galaxy", sn: snPath, gal: missing + ".dat", cfg: testGrid, want: ErrLoad},
		{name: "galaxy passed as template", sn: galPath, gal: galPath, cfg: testGrid, want: source.ErrUnrecognizedFormat},
		{name: "template passed as galaxy", sn: snPath, gal: snPath, cfg: testGrid, want: source.ErrUnrecognizedFormat},
		{name: "invalid grid", sn: snPath, gal: galPath, cfg: grid.Config{MinWavelength: 10, MaxWavelength: 5, Size: 8}, want: grid.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sn, tt.gal, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err got=%v want=%v", err, tt.want)
			}
		})
	}
}

func TestNewFromSpectraValidates(t *testing.T) {
	if _, err := NewFromSpectra(nil, galaxyFixture(0, 10), testGrid); !errors.Is(err, source.ErrUnrecognizedFormat) {
		t.Fatalf("nil template err got=%v", err)
	}
	bad := source.Spectrum{Wave: []float64{3000, 4000}, Flux: []float64{1}}
	if _, err := NewFromSpectra(snFixture(1, 0), bad, testGrid); !errors.Is(err, source.ErrLengthMismatch) {
		t.Fatalf("mismatched galaxy err got=%v", err)
	}
}

func TestSNTemplateShape(t *testing.T) {
	c := newFixture(t, 4, 0, 100, 900)
	for age := range c.NumAges() {
		sn, err := c.SNTemplate(age)
		if err != nil {
			t.Fatalf("age %d: %v", age, err)
		}
		if len(sn.Wave) != testSize || len(sn.Flux) != testSize {
			t.Fatalf("age %d: lengths %d/%d want %d", age, len(sn.Wave), len(sn.Flux), testSize)
		}
		testutil.RequireValidRange(t, sn.Low, sn.High, testSize)
		if sn.Low != 0 || sn.High != testSize {
			t.Fatalf("age %d: range got=[%d, %d) want=[0, %d)", age, sn.Low, sn.High, testSize)
		}
		testutil.RequireUnitInterval(t, sn.Flux)
		testutil.RequireSliceEqual(t, sn.Wave, testGrid.Wavelengths())
	}
}

func TestSNTemplateAgeIndex(t *testing.T) {
	c := newFixture(t, 3, 0, 100, 900)
	for _, age := range []int{-1, 3, 100} {
		if _, err := c.SNTemplate(age); !errors.Is(err, ErrAgeIndex) {
			t.Fatalf("SNTemplate(%d) err got=%v want ErrAgeIndex", age, err)
		}
		if _, err := c.Overlap(age); !errors.Is(err, ErrAgeIndex) {
			t.Fatalf("Overlap(%d) err got=%v want ErrAgeIndex", age, err)
		}
		if _, err := c.Combine(1, 0, age); !errors.Is(err, ErrAgeIndex) {
			t.Fatalf("Combine(%d) err got=%v want ErrAgeIndex", age, err)
		}
	}
}

func TestSNTemplatePartialRow(t *testing.T) {
	c := newFixture(t, 1, 500, 100, 900)
	sn, err := c.SNTemplate(0)
	if err != nil {
		t.Fatalf("SNTemplate: %v", err)
	}
	if sn.Low != 500 || sn.High != testSize {
		t.Fatalf("range got=[%d, %d) want=[500, %d)", sn.Low, sn.High, testSize)
	}
}

func TestGalaxyTemplate(t *testing.T) {
	c := newFixture(t, 1, 0, 100, 900)
	gal, err := c.GalaxyTemplate()
	if err != nil {
		t.Fatalf("GalaxyTemplate: %v", err)
	}
	if gal.Low != 100 || gal.High != 900 {
		t.Fatalf("range got=[%d, %d) want=[100, 900)", gal.Low, gal.High)
	}
	testutil.RequireUnitInterval(t, gal.Flux)

	// Positive data: padding stays at the normalized minimum.
	for _, i := range []int{0, 99, 900, testSize - 1} {
		if gal.Flux[i] != 0 {
			t.Fatalf("padding[%d] got=%g want=0", i, gal.Flux[i])
		}
	}
}

func TestGalaxyRedshiftOption(t *testing.T) {
	// z = 1 halves every wavelength, which is 512 bins on this grid.
	c := newFixture(t, 1, 0, 600, 1000, WithGalaxyRedshift(1))
	if c.GalaxyRedshift() != 1 {
		t.Fatalf("GalaxyRedshift got=%g want=1", c.GalaxyRedshift())
	}
	gal, err := c.GalaxyTemplate()
	if err != nil {
		t.Fatalf("GalaxyTemplate: %v", err)
	}
	if gal.Low != 88 || gal.High != 488 {
		t.Fatalf("range got=[%d, %d) want=[88, 488)", gal.Low, gal.High)
	}

	ignored := newFixture(t, 1, 0, 100, 900, WithGalaxyRedshift(-1))
	if ignored.GalaxyRedshift() != 0 {
		t.Fatalf("invalid redshift should be ignored, got=%g", ignored.GalaxyRedshift())
	}
}

func TestGalaxyOutsideGrid(t *testing.T) {
	gal := source.Spectrum{
		Wave: testutil.Linspace(11000, 12000, 50),
		Flux: testutil.DC(1, 50),
	}
	c, err := NewFromSpectra(snFixture(1, 0), gal, testGrid)
	if err != nil {
		t.Fatalf("NewFromSpectra: %v", err)
	}
	if _, err := c.GalaxyTemplate(); !errors.Is(err, ErrDegenerateNormalization) {
		t.Fatalf("err got=%v want ErrDegenerateNormalization", err)
	}
}

func TestOverlapIndexLaw(t *testing.T) {
	windows := [][2]int{{100, 900}, {0, 300}, {700, 1024}, {0, 1024}, {450, 520}}
	for _, snFrom := range []int{0, 500} {
		for _, w := range windows {
			c := newFixture(t, 2, snFrom, w[0], w[1])
			ov, err := c.Overlap(1)
			if err != nil {
				t.Fatalf("sn from %d, galaxy %v: %v", snFrom, w, err)
			}
			want := max(0, min(testSize, w[1])-max(snFrom, w[0]))
			if ov.Len() != want {
				t.Fatalf("sn from %d, galaxy %v: len got=%d want=%d", snFrom, w, ov.Len(), want)
			}
			if ov.Low != max(snFrom, w[0]) || ov.High != min(testSize, w[1]) {
				t.Fatalf("sn from %d, galaxy %v: bounds got=[%d, %d)", snFrom, w, ov.Low, ov.High)
			}
			if len(ov.Galaxy.Flux) != want || len(ov.SN.Wave) != want || len(ov.Galaxy.Wave) != want {
				t.Fatalf("sn from %d, galaxy %v: slice lengths disagree", snFrom, w)
			}
			testutil.RequireSliceEqual(t, ov.SN.Wave, ov.Galaxy.Wave)
		}
	}
}

func TestCombineExampleScenario(t *testing.T) {
	c := newFixture(t, 1, 0, 100, 900)
	comp, err := c.Combine(0.5, 0.5, 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if comp.Len() != 800 || len(comp.Wave) != 800 {
		t.Fatalf("len got=%d/%d want=800", comp.Len(), len(comp.Wave))
	}
	if comp.Low != 100 || comp.High != 900 {
		t.Fatalf("range got=[%d, %d) want=[100, 900)", comp.Low, comp.High)
	}
	wl := testGrid.Wavelengths()
	if comp.Wave[0] != wl[100] || comp.Wave[799] != wl[899] {
		t.Fatalf("wave bounds got=%g..%g want=%g..%g", comp.Wave[0], comp.Wave[799], wl[100], wl[899])
	}
	if comp.SNCoeff != 0.5 || comp.GalaxyCoeff != 0.5 {
		t.Fatalf("coefficients got=%g/%g", comp.SNCoeff, comp.GalaxyCoeff)
	}
	testutil.RequireUnitInterval(t, comp.Flux)
}

func TestCombineReproducesTemplates(t *testing.T) {
	c := newFixture(t, 3, 0, 100, 900)
	for age := range c.NumAges() {
		sn, err := c.SNTemplate(age)
		if err != nil {
			t.Fatalf("SNTemplate: %v", err)
		}
		gal, err := c.GalaxyTemplate()
		if err != nil {
			t.Fatalf("GalaxyTemplate: %v", err)
		}

		snOnly, err := c.Combine(1, 0, age)
		if err != nil {
			t.Fatalf("Combine(1, 0): %v", err)
		}
		testutil.RequireSliceEqual(t, snOnly.Flux, sn.Flux[100:900])

		galOnly, err := c.Combine(0, 1, age)
		if err != nil {
			t.Fatalf("Combine(0, 1): %v", err)
		}
		testutil.RequireSliceEqual(t, galOnly.Flux, gal.Flux[100:900])
	}
}

func TestCombineLinearity(t *testing.T) {
	c := newFixture(t, 2, 0, 100, 900)
	snOnly, err := c.Combine(1, 0, 1)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	galOnly, err := c.Combine(0, 1, 1)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	pairs := [][2]float64{{0.3, 0.7}, {0.5, 0.5}, {2, -1}, {0, 0}}
	for _, p := range pairs {
		got, err := c.Combine(p[0], p[1], 1)
		if err != nil {
			t.Fatalf("Combine(%g, %g): %v", p[0], p[1], err)
		}
		want := make([]float64, got.Len())
		for i := range want {
			want[i] = p[0]*snOnly.Flux[i] + p[1]*galOnly.Flux[i]
		}
		testutil.RequireSliceNearlyEqual(t, got.Flux, want, 1e-12)
	}
}

func TestCombineZeroOverlap(t *testing.T) {
	c := newFixture(t, 1, 500, 0, 300)
	comp, err := c.Combine(0.5, 0.5, 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if !comp.Empty() || comp.Wave == nil || comp.Flux == nil || len(comp.Wave) != 0 {
		t.Fatalf("want empty non-nil slices, got wave=%v flux=%v", comp.Wave, comp.Flux)
	}
	if comp.Low != 500 || comp.High != 300 {
		t.Fatalf("bounds got=[%d, %d) want=[500, 300)", comp.Low, comp.High)
	}

	out, err := comp.Prepared(prep.DefaultPipeline())
	if err != nil || len(out) != 0 {
		t.Fatalf("Prepared on empty got=%v err=%v", out, err)
	}
}

func TestCompositePrepared(t *testing.T) {
	c := newFixture(t, 1, 0, 100, 900)
	comp, err := c.Combine(0.6, 0.4, 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	before := append([]float64(nil), comp.Flux...)

	out, err := comp.Prepared(prep.DefaultPipeline())
	if err != nil {
		t.Fatalf("Prepared: %v", err)
	}
	if len(out) != comp.Len() {
		t.Fatalf("len got=%d want=%d", len(out), comp.Len())
	}
	testutil.RequireFinite(t, out)
	if out[0] != 0 || out[len(out)-1] != 0 {
		t.Fatalf("apodized ends got=%g, %g want 0", out[0], out[len(out)-1])
	}
	testutil.RequireSliceEqual(t, comp.Flux, before)
}

func TestCombinerConcurrentUse(t *testing.T) {
	c := newFixture(t, 4, 0, 100, 900)
	want := make([][]float64, c.NumAges())
	for age := range want {
		comp, err := c.Combine(0.7, 0.3, age)
		if err != nil {
			t.Fatalf("Combine: %v", err)
		}
		want[age] = comp.Flux
	}

	var wg sync.WaitGroup
	got := make([][]float64, 4*c.NumAges())
	errs := make([]error, len(got))
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comp, err := c.Combine(0.7, 0.3, i%c.NumAges())
			got[i], errs[i] = comp.Flux, err
		}()
	}
	wg.Wait()

	for i := range got {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		testutil.RequireSliceEqual(t, got[i], want[i%c.NumAges()])
	}
}
