package entity

import (
	"fmt"
	"image/color"
	"log"

	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
)

func NewAnchor(w *ecs.World, prefab string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("anchor: world is nil")
	}
	if prefab == "" {
		return newAnchorMarker(w)
	}
	return BuildEntity(w, prefab)
}

// NewAnchorAt spawns the anchor marker at a world point. An empty prefab
// gives a bare marker. When the prefab cannot be built a bare marker is
// created instead so a session can still start; the failure is logged.
func NewAnchorAt(w *ecs.World, x, y float64, prefab string) (ecs.Entity, error) {
	anchor, err := NewAnchor(w, prefab)
	if err != nil {
		if w == nil {
			return 0, err
		}
		log.Printf("anchor: %v; using plain marker", err)
		anchor, err = newAnchorMarker(w)
		if err != nil {
			return 0, err
		}
	}
	if err := SetEntityTransform(w, anchor, x, y, 0); err != nil {
		ecs.DestroyEntity(w, anchor)
		return 0, fmt.Errorf("anchor: override transform: %w", err)
	}
	return anchor, nil
}

func newAnchorMarker(w *ecs.World) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.AnchorTagComponent.Kind(), &component.AnchorTag{}); err != nil {
		return 0, fmt.Errorf("anchor: add tag: %w", err)
	}
	if err := ecs.Add(w, e, component.AnchorComponent.Kind(), &component.Anchor{}); err != nil {
		return 0, fmt.Errorf("anchor: add anchor: %w", err)
	}
	if err := ecs.Add(w, e, component.BoxRenderComponent.Kind(), &component.BoxRender{
		Width:  8,
		Height: 8,
		Color:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Circle: true,
	}); err != nil {
		return 0, fmt.Errorf("anchor: add box render: %w", err)
	}
	return e, nil
}
