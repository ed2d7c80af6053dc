package component

type Camera struct {
	Zoom       float64
	Smoothness float64
	// Shake is the current shake amplitude in pixels; it decays each frame.
	Shake float64
}

var CameraComponent = NewComponent[Camera]()
