package grapple

import "github.com/jakecoffman/cp"

// Mode is the host's locomotion mode.
type Mode int

const (
	// ModeGrounded covers walking and falling under normal gravity.
	ModeGrounded Mode = iota
	// ModeFlying is used while the grapple drives the host.
	ModeFlying
)

func (m Mode) String() string {
	switch m {
	case ModeGrounded:
		return "grounded"
	case ModeFlying:
		return "flying"
	default:
		return "unknown"
	}
}

// Target identifies the surface or object a ray hit. Zero means the static
// world, which never moves.
type Target uint64

// AnchorHandle identifies a spawned anchor object.
type AnchorHandle uint64

// Hit is the first blocking hit of a ray cast.
type Hit struct {
	Point    cp.Vector
	Normal   cp.Vector
	Target   Target
	Distance float64
}

// Host exposes the movement fields of the actor being pulled.
type Host interface {
	Position() cp.Vector
	Velocity() cp.Vector
	SetVelocity(v cp.Vector)
	SetMovementMode(mode Mode)
	GravityScale() float64
	SetGravityScale(scale float64)
	SetIgnoreMoveInput(ignore bool)
	ControlFacing() bool
	SetControlFacing(control bool)
	SetFacing(angle float64)
}

// Aimer provides the current aim ray. ok is false when there is no usable
// aim (for example no camera yet).
type Aimer interface {
	Aim() (origin, dir cp.Vector, ok bool)
}

// WorldQuery answers collision queries. Implementations exclude the host
// from every query.
type WorldQuery interface {
	RayCast(from, to cp.Vector) (Hit, bool)
	SweepBox(from, to, halfExtents cp.Vector) bool
}

// AnchorSpawner owns the visual anchor objects.
type AnchorSpawner interface {
	SpawnAnchor(point cp.Vector) (AnchorHandle, error)
	AttachAnchor(anchor AnchorHandle, target Target, preserveWorld bool) error
	// AnchorPosition reports the anchor's live world position. ok is false
	// once the anchor or the object it is attached to no longer exists.
	AnchorPosition(anchor AnchorHandle) (cp.Vector, bool)
	DestroyAnchor(anchor AnchorHandle)
}
