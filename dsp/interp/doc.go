// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
// [Linear] is the two-point fractional tap used by the analog delay: it
// reads between two adjacent delay-line samples so that delay times which do
// not land on a whole sample still produce a smooth, pitch-stable echo.
package interp
