package entity

import (
	"fmt"

	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
)

// NewSolid creates a static block centred on (x, y).
func NewSolid(w *ecs.World, x, y, width, height float64) (ecs.Entity, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("solid: invalid size %vx%v", width, height)
	}
	e, err := BuildEntity(w, "solid.yaml")
	if err != nil {
		return 0, err
	}
	resize(w, e, width, height)
	if err := SetEntityTransform(w, e, x, y, 0); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("solid: override transform: %w", err)
	}
	return e, nil
}

// NewPlatform creates a kinematic platform that patrols from (x, y) to
// (x+dx, y+dy) and back.
func NewPlatform(w *ecs.World, x, y, dx, dy, speed float64) (ecs.Entity, error) {
	e, err := BuildEntity(w, "platform.yaml")
	if err != nil {
		return 0, err
	}
	mover, ok := ecs.Get(w, e, component.MoverComponent.Kind())
	if !ok {
		mover = &component.Mover{}
	}
	mover.DX = dx
	mover.DY = dy
	if speed > 0 {
		mover.Speed = speed
	}
	if err := ecs.Add(w, e, component.MoverComponent.Kind(), mover); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("platform: add mover: %w", err)
	}
	if err := SetEntityTransform(w, e, x, y, 0); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("platform: override transform: %w", err)
	}
	return e, nil
}

func resize(w *ecs.World, e ecs.Entity, width, height float64) {
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
		body.Width = width
		body.Height = height
	}
	if box, ok := ecs.Get(w, e, component.BoxRenderComponent.Kind()); ok {
		box.Width = width
		box.Height = height
	}
}
