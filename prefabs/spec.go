package prefabs

import (
	"fmt"

	"github.com/milk9111/grapplehook/grapple"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// GrappleSpec is the YAML form of grapple.Config. Omitted fields keep
// their defaults, so every field is a pointer.
type GrappleSpec struct {
	MaxRange                  *float64            `yaml:"max_range"`
	InitialSpeed              *float64            `yaml:"initial_speed"`
	MaxSpeed                  *float64            `yaml:"max_speed"`
	RampDuration              *float64            `yaml:"ramp_duration"`
	ReleaseDistance           *float64            `yaml:"release_distance"`
	ReleaseVelocityMultiplier *float64            `yaml:"release_velocity_multiplier"`
	ObstructionCheck          *bool               `yaml:"obstruction_check"`
	ObstructionHalfExtents    *VectorSpec         `yaml:"obstruction_half_extents"`
	ObstructionOffset         *float64            `yaml:"obstruction_offset"`
	FlattenFacing             *bool               `yaml:"flatten_facing"`
	ReleaseImpulse            *ReleaseImpulseSpec `yaml:"release_impulse"`
	AnchorPrefab              *string             `yaml:"anchor_prefab"`
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type ReleaseImpulseSpec struct {
	OnArrival     *bool `yaml:"on_arrival"`
	OnCancel      *bool `yaml:"on_cancel"`
	OnObstruction *bool `yaml:"on_obstruction"`
}

// Apply overlays the set fields of s onto base.
func (s GrappleSpec) Apply(base grapple.Config) grapple.Config {
	cfg := base
	setFloat(&cfg.MaxRange, s.MaxRange)
	setFloat(&cfg.InitialSpeed, s.InitialSpeed)
	setFloat(&cfg.MaxSpeed, s.MaxSpeed)
	setFloat(&cfg.RampDuration, s.RampDuration)
	setFloat(&cfg.ReleaseDistance, s.ReleaseDistance)
	setFloat(&cfg.ReleaseVelocityMultiplier, s.ReleaseVelocityMultiplier)
	setFloat(&cfg.ObstructionOffset, s.ObstructionOffset)
	setBool(&cfg.ObstructionCheck, s.ObstructionCheck)
	setBool(&cfg.FlattenFacing, s.FlattenFacing)
	if s.ObstructionHalfExtents != nil {
		cfg.ObstructionHalfExtents.X = s.ObstructionHalfExtents.X
		cfg.ObstructionHalfExtents.Y = s.ObstructionHalfExtents.Y
	}
	if s.ReleaseImpulse != nil {
		setBool(&cfg.Impulse.OnArrival, s.ReleaseImpulse.OnArrival)
		setBool(&cfg.Impulse.OnCancel, s.ReleaseImpulse.OnCancel)
		setBool(&cfg.Impulse.OnObstruction, s.ReleaseImpulse.OnObstruction)
	}
	if s.AnchorPrefab != nil {
		cfg.AnchorPrefab = *s.AnchorPrefab
	}
	return cfg
}

// LoadGrappleConfig reads a grapple tuning file over grapple.DefaultConfig
// and validates the result.
func LoadGrappleConfig(name string) (grapple.Config, error) {
	spec, err := LoadSpec[GrappleSpec](name)
	if err != nil {
		return grapple.Config{}, err
	}
	cfg := spec.Apply(grapple.DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return grapple.Config{}, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return cfg, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
