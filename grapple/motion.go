package grapple

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/grapplehook/common"
)

// Ramp linearly raises speed from Initial to Max over Duration seconds and
// then holds.
type Ramp struct {
	Initial  float64
	Max      float64
	Duration float64
	Elapsed  float64
}

func NewRamp(initial, maxSpeed, duration float64) Ramp {
	return Ramp{Initial: initial, Max: maxSpeed, Duration: duration}
}

// Advance moves the ramp clock forward by dt and returns the new speed.
// Non-positive dt leaves the clock untouched.
func (r *Ramp) Advance(dt float64) float64 {
	if r == nil {
		return 0
	}
	if dt > 0 {
		r.Elapsed = common.Clamp(r.Elapsed+dt, 0, math.Max(r.Duration, 0))
	}
	return r.Speed()
}

func (r Ramp) Speed() float64 {
	if r.Duration <= 0 {
		return r.Max
	}
	t := common.Clamp(r.Elapsed/r.Duration, 0, 1)
	return math.Min(common.Lerp(r.Initial, r.Max, t), r.Max)
}

// FacingAngle converts a flight direction into a facing rotation. When
// flatten is set only left (pi) or right (0) is returned so pitch is never
// forced onto the host.
func FacingAngle(dir cp.Vector, flatten bool) float64 {
	if flatten {
		if dir.X < 0 {
			return math.Pi
		}
		return 0
	}
	return math.Atan2(dir.Y, dir.X)
}

// ReleaseImpulse is the momentum kept when letting go mid-flight.
func ReleaseImpulse(dir cp.Vector, speed, multiplier float64) cp.Vector {
	return dir.Mult(speed * multiplier)
}

func directionTo(from, to cp.Vector) (cp.Vector, float64) {
	delta := to.Sub(from)
	dist := delta.Length()
	if dist == 0 {
		return cp.Vector{}, 0
	}
	return delta.Mult(1 / dist), dist
}
