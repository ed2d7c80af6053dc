package component

import "github.com/milk9111/grapplehook/grapple"

// Movement is the locomotion state the player controller and the grapple
// share.
type Movement struct {
	Mode grapple.Mode
	// IgnoreMoveInput suppresses walking and jumping.
	IgnoreMoveInput bool
	// ControlFacing lets locomotion turn the character toward its move input.
	ControlFacing bool
	Facing        float64
	FacingLeft    bool
	Grounded      bool

	MoveSpeed float64
	JumpSpeed float64
}

var MovementComponent = NewComponent[Movement]()
