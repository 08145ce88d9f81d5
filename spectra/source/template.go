package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-spectra/spectra/grid"
)

// ErrAgeIndex indicates an age index outside [0, NumAges()).
var ErrAgeIndex = errors.New("source: age index out of range")

// maxLineBytes bounds a single template line. Wide templates carry one
// column per age.
const maxLineBytes = 1 << 20

// typeAliases maps legacy SNID subtype names to their current names.
var typeAliases = map[string]string{
	"Ia-99aa": "Ia-91T",
	"Ia-02cx": "Iax",
}

// ContinuumSpline holds the knots of the continuum removed from one template
// row. X is in bin coordinates of the template's native log grid and Y is
// log10 of the continuum flux.
type ContinuumSpline struct {
	Mean float64
	X    []float64
	Y    []float64
}

// Knots returns the number of knots.
func (c ContinuumSpline) Knots() int { return len(c.X) }

// TemplateSet is a multi-age supernova template read from a SNID .lnw file.
//
// All rows share Wave. Fluxes[i] is the continuum-removed flux at Ages[i]
// and Continuum[i] describes what was removed. Samples outside a row's
// observed range hold exactly zero.
type TemplateSet struct {
	Name        string
	Type        string
	TypeCode    int
	SubtypeCode int
	AgeStep     float64
	Grid        grid.Config

	Ages      []float64
	Wave      []float64
	Fluxes    [][]float64
	Continuum []ContinuumSpline
}

func (*TemplateSet) representation() {}

// NumAges returns the number of flux rows.
func (t *TemplateSet) NumAges() int { return len(t.Fluxes) }

// Row returns the spectrum and continuum spline for age index i. The
// returned slices alias t and must not be modified.
func (t *TemplateSet) Row(i int) (Spectrum, ContinuumSpline, error) {
	if i < 0 || i >= t.NumAges() {
		return Spectrum{}, ContinuumSpline{}, fmt.Errorf("%w: %d not in [0, %d)", ErrAgeIndex, i, t.NumAges())
	}
	return Spectrum{Wave: t.Wave, Flux: t.Fluxes[i]}, t.Continuum[i], nil
}

// Validate checks the internal consistency of t.
func (t *TemplateSet) Validate() error {
	n := len(t.Fluxes)
	if n == 0 {
		return fmt.Errorf("%w: template has no ages", ErrUnrecognizedFormat)
	}
	if len(t.Ages) != n || len(t.Continuum) != n {
		return fmt.Errorf("%w: %d flux rows, %d ages, %d splines",
			ErrUnrecognizedFormat, n, len(t.Ages), len(t.Continuum))
	}
	for i, row := range t.Fluxes {
		if len(row) != len(t.Wave) {
			return fmt.Errorf("%w: row %d has %d samples, wave has %d",
				ErrLengthMismatch, i, len(row), len(t.Wave))
		}
		if c := t.Continuum[i]; len(c.X) != len(c.Y) {
			return fmt.Errorf("%w: row %d has %d knot positions and %d values",
				ErrContinuum, i, len(c.X), len(c.Y))
		}
	}
	return t.Grid.Validate()
}

func (t *TemplateSet) mostKnots() int {
	most := 0
	for _, c := range t.Continuum {
		most = max(most, c.Knots())
	}
	return most
}

// ParseTemplateSet reads a SNID .lnw template.
//
// Layout (whitespace separated, blank lines ignored):
//
//	nAges nw w0 w1 mostKnots name ageStep type typeCode subtypeCode
//	<label> nk_1 mean_1 ... nk_nAges mean_nAges
//	<knot#> x_1 y_1 ... x_nAges y_nAges      (mostKnots lines)
//	<flag>  age_1 ... age_nAges
//	wave    flux_1 ... flux_nAges            (one line per sample)
func ParseTemplateSet(r io.Reader) (*TemplateSet, error) {
	lr := newLineReader(r)

	head, ok := lr.next()
	if !ok {
		return nil, lr.fail("missing header")
	}
	if len(head) < 10 {
		return nil, lr.fail("header has %d fields, want 10", len(head))
	}
	var (
		nAges, nw, mostKnots int
		w0, w1, ageStep      float64
		typeCode, subCode    int
	)
	if err := lr.scan(head, []any{&nAges, &nw, &w0, &w1, &mostKnots}); err != nil {
		return nil, err
	}
	if err := lr.scan(head[6:], []any{&ageStep}); err != nil {
		return nil, err
	}
	if err := lr.scan(head[8:], []any{&typeCode, &subCode}); err != nil {
		return nil, err
	}
	if nAges <= 0 || mostKnots < 0 {
		return nil, lr.fail("invalid age count %d or knot count %d", nAges, mostKnots)
	}

	// Two fields per age on the knot count line bound nAges before any
	// allocation.
	counts, ok := lr.next()
	if !ok {
		return nil, lr.fail("missing knot counts")
	}
	if len(counts)%2 != 1 || (len(counts)-1)/2 != nAges {
		return nil, lr.fail("knot count line has %d fields for %d ages", len(counts), nAges)
	}

	t := &TemplateSet{
		Name:        head[5],
		Type:        head[7],
		TypeCode:    typeCode,
		SubtypeCode: subCode,
		AgeStep:     ageStep,
		Grid:        grid.Config{MinWavelength: w0, MaxWavelength: w1, Size: nw},
		Ages:        make([]float64, nAges),
		Fluxes:      make([][]float64, nAges),
		Continuum:   make([]ContinuumSpline, nAges),
	}
	if alias, ok := typeAliases[t.Type]; ok {
		t.Type = alias
	}

	knots := make([]int, nAges)
	for j := range nAges {
		var nk float64
		if err := lr.scan(counts[1+2*j:], []any{&nk, &t.Continuum[j].Mean}); err != nil {
			return nil, err
		}
		if !(nk >= 0 && nk <= float64(mostKnots)) {
			return nil, lr.fail("age %d has %g knots, limit %d", j, nk, mostKnots)
		}
		knots[j] = int(nk)
	}

	for k := range mostKnots {
		fields, ok := lr.next()
		if !ok {
			return nil, lr.fail("missing knot line %d", k+1)
		}
		if len(fields) != 1+2*nAges {
			return nil, lr.fail("knot line has %d fields, want %d", len(fields), 1+2*nAges)
		}
		for j := range nAges {
			if k >= knots[j] {
				continue
			}
			var x, y float64
			if err := lr.scan(fields[1+2*j:], []any{&x, &y}); err != nil {
				return nil, err
			}
			t.Continuum[j].X = append(t.Continuum[j].X, x)
			t.Continuum[j].Y = append(t.Continuum[j].Y, y)
		}
	}

	ages, ok := lr.next()
	if !ok {
		return nil, lr.fail("missing age line")
	}
	if len(ages) != 1+nAges {
		return nil, lr.fail("age line has %d fields, want %d", len(ages), 1+nAges)
	}
	for j := range nAges {
		if err := lr.scan(ages[1+j:], []any{&t.Ages[j]}); err != nil {
			return nil, err
		}
	}

	for {
		fields, ok := lr.next()
		if !ok {
			break
		}
		if len(fields) != 1+nAges {
			return nil, lr.fail("data line has %d fields, want %d", len(fields), 1+nAges)
		}
		var w float64
		if err := lr.scan(fields, []any{&w}); err != nil {
			return nil, err
		}
		t.Wave = append(t.Wave, w)
		for j := range nAges {
			var f float64
			if err := lr.scan(fields[1+j:], []any{&f}); err != nil {
				return nil, err
			}
			t.Fluxes[j] = append(t.Fluxes[j], f)
		}
	}
	if err := lr.err(); err != nil {
		return nil, err
	}
	if len(t.Wave) == 0 {
		return nil, fmt.Errorf("%w: template has no data lines", ErrUnrecognizedFormat)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteTemplateSet writes t in the layout read by [ParseTemplateSet].
// Floats are written with the shortest representation that round-trips.
func WriteTemplateSet(w io.Writer, t *TemplateSet) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if strings.ContainsAny(t.Name, " \t\n") || strings.ContainsAny(t.Type, " \t\n") {
		return fmt.Errorf("%w: name and type must not contain whitespace", ErrUnrecognizedFormat)
	}

	bw := bufio.NewWriter(w)
	most := t.mostKnots()
	row := make([]string, 0, 1+2*t.NumAges())

	writeRow := func() {
		bw.WriteString(strings.Join(row, " "))
		bw.WriteByte('\n')
		row = row[:0]
	}

	row = append(row,
		strconv.Itoa(t.NumAges()), strconv.Itoa(t.Grid.Size),
		ftoa(t.Grid.MinWavelength), ftoa(t.Grid.MaxWavelength),
		strconv.Itoa(most), t.Name, ftoa(t.AgeStep), t.Type,
		strconv.Itoa(t.TypeCode), strconv.Itoa(t.SubtypeCode))
	writeRow()

	row = append(row, strconv.Itoa(most))
	for _, c := range t.Continuum {
		row = append(row, strconv.Itoa(c.Knots()), ftoa(c.Mean))
	}
	writeRow()

	for k := range most {
		row = append(row, strconv.Itoa(k+1))
		for _, c := range t.Continuum {
			if k < c.Knots() {
				row = append(row, ftoa(c.X[k]), ftoa(c.Y[k]))
			} else {
				row = append(row, "0", "0")
			}
		}
		writeRow()
	}

	row = append(row, "0")
	for _, a := range t.Ages {
		row = append(row, ftoa(a))
	}
	writeRow()

	for i, wv := range t.Wave {
		row = append(row, ftoa(wv))
		for _, flux := range t.Fluxes {
			row = append(row, ftoa(flux[i]))
		}
		writeRow()
	}
	return bw.Flush()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// lineReader yields whitespace-split non-blank lines and tracks the line
// number for error messages.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineReader{sc: sc}
}

func (lr *lineReader) next() ([]string, bool) {
	for lr.sc.Scan() {
		lr.line++
		if fields := strings.Fields(lr.sc.Text()); len(fields) > 0 {
			return fields, true
		}
	}
	return nil, false
}

func (lr *lineReader) err() error {
	if err := lr.sc.Err(); err != nil {
		return fmt.Errorf("%w: line %d: %w", ErrUnrecognizedFormat, lr.line+1, err)
	}
	return nil
}

func (lr *lineReader) fail(format string, args ...any) error {
	if err := lr.err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: line %d: %s", ErrUnrecognizedFormat, lr.line, fmt.Sprintf(format, args...))
}

// scan parses leading fields into dst, which holds *int or *float64.
func (lr *lineReader) scan(fields []string, dst []any) error {
	if len(fields) < len(dst) {
		return lr.fail("want %d fields, have %d", len(dst), len(fields))
	}
	for i, d := range dst {
		switch p := d.(type) {
		case *int:
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return lr.fail("field %q is not an integer", fields[i])
			}
			*p = v
		case *float64:
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return lr.fail("field %q is not a number", fields[i])
			}
			*p = v
		default:
			panic(fmt.Sprintf("source: unsupported scan target %T", d))
		}
	}
	return nil
}
