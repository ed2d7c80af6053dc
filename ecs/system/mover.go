package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
)

// MoverSystem drives kinematic platforms back and forth between their
// origin and origin+(DX, DY). It sets velocity only; physics moves them.
type MoverSystem struct {
	step float64
}

func NewMoverSystem(step float64) *MoverSystem {
	return &MoverSystem{step: step}
}

func (ms *MoverSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach3(w, component.MoverComponent.Kind(), component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, m *component.Mover, bodyComp *component.PhysicsBody, t *component.Transform) {
		if bodyComp.Body == nil || !bodyComp.Kinematic {
			return
		}
		if !m.Placed {
			m.OriginX, m.OriginY = t.X, t.Y
			m.Placed = true
		}
		if m.Speed <= 0 || (m.DX == 0 && m.DY == 0) {
			bodyComp.Body.SetVelocityVector(cp.Vector{})
			return
		}

		goalX, goalY := m.OriginX+m.DX, m.OriginY+m.DY
		if m.Returning {
			goalX, goalY = m.OriginX, m.OriginY
		}
		pos := bodyComp.Body.Position()
		dx, dy := goalX-pos.X, goalY-pos.Y
		dist := math.Hypot(dx, dy)

		// Turn around once the next step would reach the goal.
		if dist <= m.Speed*ms.step {
			m.Returning = !m.Returning
			if ms.step > 0 {
				bodyComp.Body.SetVelocityVector(cp.Vector{X: dx / ms.step, Y: dy / ms.step})
			}
			return
		}
		bodyComp.Body.SetVelocityVector(cp.Vector{X: dx / dist * m.Speed, Y: dy / dist * m.Speed})
	})
}
