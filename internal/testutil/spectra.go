package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// LogPositions maps fractional log-grid bin coordinates to wavelengths for a
// grid of size bins spanning [minW, maxW).
func LogPositions(minW, maxW float64, size int, positions []float64) []float64 {
	dlog := math.Log(maxW/minW) / float64(size)
	out := make([]float64, len(positions))
	for i, p := range positions {
		out[i] = minW * math.Exp(p*dlog)
	}
	return out
}

// PowerLaw returns amp*(w/ref)^index for every wavelength.
func PowerLaw(wave []float64, ref, index, amp float64) []float64 {
	out := make([]float64, len(wave))
	for i, w := range wave {
		out[i] = amp * math.Pow(w/ref, index)
	}
	return out
}

// AddGaussianLine adds a Gaussian feature of the given amplitude (negative
// for absorption) to flux in place.
func AddGaussianLine(wave, flux []float64, center, sigma, amp float64) {
	for i, w := range wave {
		d := (w - center) / sigma
		flux[i] += amp * math.Exp(-0.5*d*d)
	}
}

// DC generates a constant-valued slice.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// WriteFile writes content to name inside a per-test temp directory and
// returns the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
