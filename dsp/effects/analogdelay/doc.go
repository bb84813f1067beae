// Package analogdelay implements a tempo-syncable, analog-style feedback delay.
//
// Each channel owns a circular delay line sized once per session by
// [Engine.Prepare]. [Engine.Process] reads a parameter snapshot once per
// block, derives the delay time (from milliseconds or from host tempo and a
// rhythmic division) and then, per sample:
//
//   - taps the line with linear interpolation between two adjacent samples,
//   - scales the tap by the feedback amount and damps it with a 0.7/0.3
//     one-pole lowpass,
//   - writes input plus damped feedback at the cursor,
//   - outputs input*(1-mix) + tap*mix.
//
// Processing never allocates, locks or blocks. Parameter changes take effect
// at block boundaries.
package analogdelay
