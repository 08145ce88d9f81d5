package source

import "errors"

var (
	// ErrLoad wraps every failure to read a spectrum file.
	ErrLoad = errors.New("source: load failed")
	// ErrUnrecognizedFormat indicates content that matches neither the SNID
	// template layout nor the two-column layout.
	ErrUnrecognizedFormat = errors.New("source: unrecognized format")
	// ErrLengthMismatch indicates wavelength and flux slices of different length.
	ErrLengthMismatch = errors.New("source: wavelength and flux length mismatch")
	// ErrContinuum indicates continuum spline knots that cannot be fitted.
	ErrContinuum = errors.New("source: invalid continuum spline")
	// ErrRedshift indicates a redshift at or below -1.
	ErrRedshift = errors.New("source: redshift must be > -1")
)
