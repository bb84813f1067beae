package interp

// Linear computes 2-point linear interpolation from x0 toward x1.
// frac is the fractional position in [0, 1); frac=0 returns x0 exactly.
func Linear(frac, x0, x1 float64) float64 {
	return x0 + frac*(x1-x0)
}
