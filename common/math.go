package common

// Gravity is the world gravity in pixels per second squared (+Y is down).
const Gravity = 1800.0

// FixedStep is the simulation step in seconds.
const FixedStep = 1.0 / 60.0

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
