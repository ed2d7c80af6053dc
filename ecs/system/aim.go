package system

import (
	"image/color"
	"math"

	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
)

const (
	aimStickDeadzone = 0.2
	// aimCursorDistance is how far ahead of the player the reticle sits
	// when aiming with a stick.
	aimCursorDistance = 100.0
)

var (
	reticleValidColor   = color.RGBA{R: 0x5f, G: 0xd0, B: 0x6a, A: 0xff}
	reticleInvalidColor = color.RGBA{R: 0xd9, G: 0x4f, B: 0x4f, A: 0xff}
)

// AimSystem turns the player's input into an aim ray and moves the reticle
// onto the aimed point.
type AimSystem struct {
	reticleEntity ecs.Entity
}

func NewAimSystem() *AimSystem {
	return &AimSystem{}
}

func (a *AimSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	if !a.reticleEntity.Valid() || !ecs.IsAlive(w, a.reticleEntity) {
		a.reticleEntity = 0
		if reticle, ok := ecs.First(w, component.ReticleTagComponent.Kind()); ok {
			a.reticleEntity = reticle
		}
	}

	ecs.ForEach3(w, component.InputComponent.Kind(), component.AimComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, input *component.Input, aim *component.Aim, transform *component.Transform) {
		aim.OriginX = transform.X
		aim.OriginY = transform.Y

		var targetX, targetY float64
		if input.StickAim && math.Hypot(input.AimX, input.AimY) > aimStickDeadzone {
			l := math.Hypot(input.AimX, input.AimY)
			targetX = transform.X + input.AimX/l*aimCursorDistance
			targetY = transform.Y + input.AimY/l*aimCursorDistance
		} else {
			targetX = input.CursorX
			targetY = input.CursorY
		}
		aim.TargetX = targetX
		aim.TargetY = targetY

		dx := targetX - transform.X
		dy := targetY - transform.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			aim.Valid = false
			return
		}
		aim.DirX = dx / l
		aim.DirY = dy / l
		aim.Valid = true

		if !ecs.Has(w, e, component.PlayerTagComponent.Kind()) || !a.reticleEntity.Valid() {
			return
		}
		a.placeReticle(w, e, targetX, targetY)
	})
}

func (a *AimSystem) placeReticle(w *ecs.World, player ecs.Entity, x, y float64) {
	if err := ecs.Add(w, a.reticleEntity, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}); err != nil {
		panic("aim system: update reticle transform: " + err.Error())
	}
	box, ok := ecs.Get(w, a.reticleEntity, component.BoxRenderComponent.Kind())
	if !ok {
		return
	}
	box.Color = reticleInvalidColor
	if g, ok := ecs.Get(w, player, component.GrapplerComponent.Kind()); ok && g.ValidTarget {
		box.Color = reticleValidColor
	}
}
