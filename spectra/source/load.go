package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TemplateExt is the file extension of SNID templates.
const TemplateExt = ".lnw"

// Load parses the spectrum file at path. Files with the [TemplateExt]
// extension are read as a *TemplateSet; everything else as a two-column
// Spectrum. Any failure wraps [ErrLoad].
func Load(path string) (Representation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	var rep Representation
	if strings.EqualFold(filepath.Ext(path), TemplateExt) {
		rep, err = ParseTemplateSet(f)
	} else {
		rep, err = ParseTwoColumn(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return rep, nil
}

// LoadTemplateSet loads path and requires it to be a SNID template.
func LoadTemplateSet(path string) (*TemplateSet, error) {
	rep, err := Load(path)
	if err != nil {
		return nil, err
	}
	t, ok := rep.(*TemplateSet)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w: want a %s template, got a two-column spectrum",
			ErrLoad, path, ErrUnrecognizedFormat, TemplateExt)
	}
	return t, nil
}

// LoadSpectrum loads path and requires it to be a two-column spectrum.
func LoadSpectrum(path string) (Spectrum, error) {
	rep, err := Load(path)
	if err != nil {
		return Spectrum{}, err
	}
	s, ok := rep.(Spectrum)
	if !ok {
		return Spectrum{}, fmt.Errorf("%w: %s: %w: want a two-column spectrum, got a %s template",
			ErrLoad, path, ErrUnrecognizedFormat, TemplateExt)
	}
	return s, nil
}
