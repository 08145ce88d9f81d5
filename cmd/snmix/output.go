package main

import (
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/cwbudde/algo-spectra/spectra/combine"
	"github.com/cwbudde/algo-spectra/spectra/prep"
)

var csvHeader = []string{"age_index", "age", "sn_coeff", "galaxy_coeff", "wavelength", "flux"}

// compositeWriter writes composites as CSV, one row per bin. With a
// pipeline it appends the preprocessed flux as an extra column.
type compositeWriter struct {
	csv      *csv.Writer
	pipeline *prep.Pipeline
	rows     int
}

func newCompositeWriter(w io.Writer, pipeline *prep.Pipeline) (*compositeWriter, error) {
	cw := &compositeWriter{csv: csv.NewWriter(w), pipeline: pipeline}
	header := csvHeader
	if pipeline != nil {
		header = append(slices.Clone(csvHeader), "prepared")
	}
	if err := cw.csv.Write(header); err != nil {
		return nil, err
	}
	return cw, nil
}

func (cw *compositeWriter) write(ageIndex int, age float64, comp combine.Composite) error {
	var prepared []float64
	if cw.pipeline != nil {
		var err error
		if prepared, err = comp.Prepared(*cw.pipeline); err != nil {
			return err
		}
	}

	fixed := []string{strconv.Itoa(ageIndex), ftoa(age), ftoa(comp.SNCoeff), ftoa(comp.GalaxyCoeff)}
	record := make([]string, 0, len(fixed)+3)
	for i, f := range comp.Flux {
		record = append(record[:0], fixed...)
		record = append(record, ftoa(comp.Wave[i]), ftoa(f))
		if prepared != nil {
			record = append(record, ftoa(prepared[i]))
		}
		if err := cw.csv.Write(record); err != nil {
			return err
		}
		cw.rows++
	}
	return nil
}

func (cw *compositeWriter) flush() error {
	cw.csv.Flush()
	return cw.csv.Error()
}

// openOutput returns stdout for "-" and a created file otherwise.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" || path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
