package component

import "github.com/milk9111/grapplehook/grapple"

// Anchor pins a marker to a point on a surface. Target is the entity hit
// by the grapple ray (0 for static level geometry) and LocalX/LocalY is the
// offset from the target's transform, so the anchor rides moving surfaces.
type Anchor struct {
	Target   grapple.Target
	LocalX   float64
	LocalY   float64
	Attached bool
	// Lost is set once the target entity no longer exists.
	Lost bool
}

var AnchorComponent = NewComponent[Anchor]()
