// Package source reads spectra from disk and provides the per-format
// transforms the combiner depends on.
//
// Two representations are recognized:
//
//   - [TemplateSet]: a SNID template file (.lnw) holding one wavelength
//     axis, one continuum-removed flux row per age, and the continuum spline
//     knots needed to restore absolute flux.
//   - [Spectrum]: a plain two-column (wavelength, flux) text file, as used
//     for galaxy templates.
//
// [Load] picks the parser from the file extension. Every failure it returns
// wraps [ErrLoad].
//
// [ReconstructContinuum] reverses the SNID continuum removal for one row and
// [RestrictRange] applies a redshift correction and trims to wavelength
// bounds.
package source
