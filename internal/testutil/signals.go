// Package testutil holds signal generators and comparison helpers shared by
// the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise in [-amplitude, amplitude) from a
// fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at pos. Out-of-range positions yield silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}

// PlanarNoise returns channels independent noise channels of the given length,
// seeded seed, seed+1, ...
func PlanarNoise(seed int64, amplitude float64, channels, length int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = DeterministicNoise(seed+int64(ch), amplitude, length)
	}
	return out
}

// CloneBlock deep-copies a planar block.
func CloneBlock(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	for ch := range block {
		out[ch] = append([]float64(nil), block[ch]...)
	}
	return out
}

// StereoFrames interleaves left and right into stereo frames. The shorter
// channel bounds the frame count.
func StereoFrames(left, right []float64) [][2]float64 {
	n := min(len(left), len(right))
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{left[i], right[i]}
	}
	return out
}

// PeakIndex returns the index of the largest absolute sample, or -1 for an
// empty slice.
func PeakIndex(x []float64) int {
	idx := -1
	peak := -1.0
	for i, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
			idx = i
		}
	}
	return idx
}
