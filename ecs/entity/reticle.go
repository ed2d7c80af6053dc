package entity

import "github.com/milk9111/grapplehook/ecs"

func NewReticle(w *ecs.World) (ecs.Entity, error) {
	return BuildEntity(w, "reticle.yaml")
}
