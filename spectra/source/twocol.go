package source

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// ParseTwoColumn reads a plain (wavelength, flux) text spectrum.
//
// Columns may be separated by whitespace or commas; extra columns (such as
// flux errors) are ignored. Lines starting with '#' are comments. A spectrum
// stored with descending wavelengths is reversed so that Wave increases.
func ParseTwoColumn(r io.Reader) (Spectrum, error) {
	lr := newLineReader(r)
	var s Spectrum

	for lr.sc.Scan() {
		lr.line++
		text := strings.TrimSpace(lr.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) < 2 {
			return Spectrum{}, lr.fail("want at least 2 columns, have %d", len(fields))
		}
		var w, f float64
		if err := lr.scan(fields, []any{&w, &f}); err != nil {
			return Spectrum{}, err
		}
		s.Wave = append(s.Wave, w)
		s.Flux = append(s.Flux, f)
	}
	if err := lr.err(); err != nil {
		return Spectrum{}, err
	}
	if s.Len() < 2 {
		return Spectrum{}, fmt.Errorf("%w: two-column spectrum needs at least 2 samples, have %d",
			ErrUnrecognizedFormat, s.Len())
	}

	if s.Wave[0] > s.Wave[s.Len()-1] {
		slices.Reverse(s.Wave)
		slices.Reverse(s.Flux)
	}
	return s, nil
}

// WriteTwoColumn writes s as whitespace-separated (wavelength, flux) lines.
func WriteTwoColumn(w io.Writer, s Spectrum) error {
	if err := s.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for i := range s.Wave {
		bw.WriteString(strconv.FormatFloat(s.Wave[i], 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(s.Flux[i], 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
