// Package combine builds synthetic composite spectra by blending a
// supernova template with a host-galaxy template on a shared logarithmic
// wavelength grid.
//
// A [Combiner] owns one parsed SNID template set and one galaxy spectrum.
// For a given template age it
//
//  1. restores the supernova continuum and rebins the row onto the grid,
//  2. restricts the galaxy to the grid bounds and rebins it,
//  3. min-max normalizes both full grid-length flux arrays (padding
//     included, so the padding extent influences the normalized values),
//  4. slices both to the intersection of their valid ranges, and
//  5. returns snCoeff*sn + galCoeff*galaxy over that intersection.
//
// An empty intersection is a valid result with zero-length slices, not an
// error. Every operation is a pure function of the construction-time state,
// so one Combiner may be shared by concurrent readers.
package combine
