package component

// Mover patrols a kinematic body between its spawn point and an offset
// of (DX, DY) at Speed px/s. The origin is captured on the first update.
type Mover struct {
	DX    float64
	DY    float64
	Speed float64

	OriginX   float64
	OriginY   float64
	Placed    bool
	Returning bool
}

var MoverComponent = NewComponent[Mover]()
