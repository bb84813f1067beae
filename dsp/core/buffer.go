package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// Deinterleave splits stereo frames into planar left/right slices and returns
// the number of frames copied (the shortest of the three lengths).
func Deinterleave(left, right []float64, frames [][2]float64) int {
	n := min(len(frames), len(left), len(right))
	for i := 0; i < n; i++ {
		left[i] = frames[i][0]
		right[i] = frames[i][1]
	}
	return n
}

// Interleave writes planar left/right slices back into stereo frames and
// returns the number of frames written.
func Interleave(frames [][2]float64, left, right []float64) int {
	n := min(len(frames), len(left), len(right))
	for i := 0; i < n; i++ {
		frames[i][0] = left[i]
		frames[i][1] = right[i]
	}
	return n
}
