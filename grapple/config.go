package grapple

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
)

const (
	DefaultMaxRange                  = 10000.0
	DefaultInitialSpeed              = 500.0
	DefaultMaxSpeed                  = 2000.0
	DefaultRampDuration              = 1.0
	DefaultReleaseDistance           = 100.0
	DefaultReleaseVelocityMultiplier = 0.5
	DefaultObstructionOffset         = 24.0
	DefaultAnchorPrefab              = "anchor.yaml"
)

var ErrInvalidConfig = errors.New("grapple: invalid config")

// ImpulsePolicy selects which exits add a release impulse to the host.
type ImpulsePolicy struct {
	OnArrival     bool
	OnCancel      bool
	OnObstruction bool
}

// Applies reports whether an exit for reason gets the release impulse.
// Anchor loss and leaving range count as cancellations.
func (p ImpulsePolicy) Applies(reason ExitReason) bool {
	switch reason {
	case ExitArrival:
		return p.OnArrival
	case ExitObstruction:
		return p.OnObstruction
	default:
		return p.OnCancel
	}
}

// Config holds the tuning of a grapple. It is copied into each session, so
// changes only affect the next activation.
type Config struct {
	MaxRange                  float64
	InitialSpeed              float64
	MaxSpeed                  float64
	RampDuration              float64
	ReleaseDistance           float64
	ReleaseVelocityMultiplier float64

	ObstructionCheck       bool
	ObstructionHalfExtents cp.Vector
	ObstructionOffset      float64

	// FlattenFacing turns the host only left or right instead of pitching
	// it toward the anchor.
	FlattenFacing bool
	Impulse       ImpulsePolicy

	// AnchorPrefab names the visual anchor archetype. Empty falls back to a
	// bare marker.
	AnchorPrefab string
}

func DefaultConfig() Config {
	return Config{
		MaxRange:                  DefaultMaxRange,
		InitialSpeed:              DefaultInitialSpeed,
		MaxSpeed:                  DefaultMaxSpeed,
		RampDuration:              DefaultRampDuration,
		ReleaseDistance:           DefaultReleaseDistance,
		ReleaseVelocityMultiplier: DefaultReleaseVelocityMultiplier,
		ObstructionCheck:          true,
		ObstructionHalfExtents:    cp.Vector{X: 16, Y: 16},
		ObstructionOffset:         DefaultObstructionOffset,
		FlattenFacing:             true,
		Impulse:                   ImpulsePolicy{OnCancel: true, OnObstruction: true},
		AnchorPrefab:              DefaultAnchorPrefab,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxRange <= 0:
		return fmt.Errorf("%w: max range must be positive, got %v", ErrInvalidConfig, c.MaxRange)
	case c.InitialSpeed < 0:
		return fmt.Errorf("%w: initial speed must not be negative, got %v", ErrInvalidConfig, c.InitialSpeed)
	case c.MaxSpeed < c.InitialSpeed:
		return fmt.Errorf("%w: max speed %v below initial speed %v", ErrInvalidConfig, c.MaxSpeed, c.InitialSpeed)
	case c.RampDuration < 0:
		return fmt.Errorf("%w: ramp duration must not be negative, got %v", ErrInvalidConfig, c.RampDuration)
	case c.ReleaseDistance < 0 || c.ReleaseDistance >= c.MaxRange:
		return fmt.Errorf("%w: release distance %v outside [0, %v)", ErrInvalidConfig, c.ReleaseDistance, c.MaxRange)
	case c.ReleaseVelocityMultiplier < 0:
		return fmt.Errorf("%w: release velocity multiplier must not be negative, got %v", ErrInvalidConfig, c.ReleaseVelocityMultiplier)
	}
	if c.ObstructionCheck {
		if c.ObstructionHalfExtents.X <= 0 || c.ObstructionHalfExtents.Y <= 0 {
			return fmt.Errorf("%w: obstruction half extents must be positive, got %v", ErrInvalidConfig, c.ObstructionHalfExtents)
		}
		if c.ObstructionOffset < 0 {
			return fmt.Errorf("%w: obstruction offset must not be negative, got %v", ErrInvalidConfig, c.ObstructionOffset)
		}
	}
	return nil
}
