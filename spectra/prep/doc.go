// Package prep post-processes grid-aligned spectra into the shape used for
// classifier training data.
//
// The steps operate on the valid index range [low, high) of a flux array
// and leave padding outside it at zero:
//
//   - [RemoveContinuum]: divide by a smooth spline through the mean flux of
//     equal-width segments and subtract one
//   - [MeanZero]: subtract the mean over the valid range
//   - [Apodize]: taper both ends of the valid range with a raised cosine
//   - [LowPass]: drop high-frequency FFT bins
//
// [Pipeline] chains them in that order.
package prep
