package system

import (
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
)

// AnchorSystem keeps attached anchors on their targets and flags anchors
// whose target has gone away.
type AnchorSystem struct{}

func NewAnchorSystem() *AnchorSystem { return &AnchorSystem{} }

func (s *AnchorSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.AnchorComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, a *component.Anchor, t *component.Transform) {
		if !a.Attached || a.Lost || a.Target == 0 {
			return
		}
		target, ok := ecs.Get(w, ecs.Entity(a.Target), component.TransformComponent.Kind())
		if !ok {
			a.Lost = true
			return
		}
		t.X = target.X + a.LocalX
		t.Y = target.Y + a.LocalY
	})
}
