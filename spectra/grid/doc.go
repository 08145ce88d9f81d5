// Package grid defines the common logarithmic wavelength axis and the
// rebinning primitive that maps arbitrarily sampled spectra onto it.
//
// A [Config] describes Size bins spaced evenly in ln(wavelength) between
// MinWavelength and MaxWavelength. Bin j covers the wavelength interval
//
//	[Min*exp(j*dlog), Min*exp((j+1)*dlog)),   dlog = ln(Max/Min)/Size
//
// and [Config.Wavelengths] reports the lower edge of every bin.
//
// [Rebin] distributes every input pixel over the bins it covers, weighted
// by the fraction of each bin it overlaps in log space. Bins no input pixel
// reaches are padding and hold exactly zero. The returned [Binned] carries
// the half-open index range [Low, High) that holds real data.
package grid
