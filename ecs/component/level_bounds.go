package component

// LevelBounds stores the world-space bounds of the current level. The
// physics system walls the level in with it.
type LevelBounds struct {
	Width  float64
	Height float64
}

var LevelBoundsComponent = NewComponent[LevelBounds]()
