package system

import (
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"github.com/milk9111/grapplehook/grapple"
)

type PlayerControllerSystem struct{}

func NewPlayerControllerSystem() *PlayerControllerSystem {
	return &PlayerControllerSystem{}
}

// Update applies walking and jumping. It steps aside while the grapple
// drives the body.
func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach3(w, component.InputComponent.Kind(), component.PhysicsBodyComponent.Kind(), component.MovementComponent.Kind(), func(e ecs.Entity, input *component.Input, bodyComp *component.PhysicsBody, mv *component.Movement) {
		if bodyComp.Body == nil || mv.IgnoreMoveInput || mv.Mode == grapple.ModeFlying {
			return
		}

		vel := bodyComp.Body.Velocity()
		// Airborne without input keeps its momentum, e.g. after a release.
		if mv.Grounded || input.MoveX != 0 {
			vel.X = input.MoveX * mv.MoveSpeed
		}

		if input.JumpPressed && mv.Grounded {
			vel.Y = -mv.JumpSpeed
			mv.Grounded = false
		}

		if mv.ControlFacing && input.MoveX != 0 {
			mv.FacingLeft = input.MoveX < 0
		}

		bodyComp.Body.SetVelocityVector(vel)
		bodyComp.Body.SetAngle(0)
		bodyComp.Body.SetAngularVelocity(0)
	})
}
