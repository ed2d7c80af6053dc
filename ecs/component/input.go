package component

// Input stores per-frame input state for an entity. The *Pressed fields
// are only true on the frame the button went down.
type Input struct {
	MoveX          float64
	Jump           bool
	JumpPressed    bool
	GrapplePressed bool
	CancelPressed  bool

	// AimX/AimY hold the right stick when it is outside the deadzone.
	AimX     float64
	AimY     float64
	StickAim bool
	CursorX  float64
	CursorY  float64
}

var InputComponent = NewComponent[Input]()
