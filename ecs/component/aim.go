package component

// Aim is the viewpoint the grapple casts from: an origin at the player
// centre and a unit direction toward the cursor or stick.
type Aim struct {
	OriginX float64
	OriginY float64
	DirX    float64
	DirY    float64
	Valid   bool

	// TargetX/TargetY is the world point the reticle sits on.
	TargetX float64
	TargetY float64
}

var AimComponent = NewComponent[Aim]()
