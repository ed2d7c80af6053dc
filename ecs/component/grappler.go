package component

import "github.com/milk9111/grapplehook/grapple"

// Grappler marks an entity that owns a grapple. The grapple system builds
// Controller on first sight using Config.
type Grappler struct {
	Config     grapple.Config
	Controller *grapple.Controller

	// ValidTarget caches HasValidTarget for rendering.
	ValidTarget bool
}

var GrapplerComponent = NewComponent[Grappler]()
