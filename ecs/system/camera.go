package system

import (
	"math"

	"github.com/milk9111/grapplehook/common"
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
)

const shakeDecay = 0.85

type CameraSystem struct {
	camEntity    ecs.Entity
	targetEntity ecs.Entity

	screenW float64
	screenH float64
}

// NewCameraSystem follows the player with a screenW x screenH view. The
// camera transform is the world position of the view's top-left corner.
func NewCameraSystem(screenW, screenH float64) *CameraSystem {
	return &CameraSystem{screenW: screenW, screenH: screenH}
}

func (cs *CameraSystem) SetScreenSize(w, h float64) {
	cs.screenW = w
	cs.screenH = h
}

// Update eases the camera toward the player and keeps it inside the level.
func (cs *CameraSystem) Update(w *ecs.World) {
	if !cs.camEntity.Valid() || !ecs.IsAlive(w, cs.camEntity) {
		cs.camEntity = 0
		if camEntity, ok := ecs.First(w, component.CameraComponent.Kind()); ok {
			cs.camEntity = camEntity
		}
	}
	if !cs.targetEntity.Valid() || !ecs.IsAlive(w, cs.targetEntity) {
		cs.targetEntity = 0
		if player, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
			cs.targetEntity = player
		}
	}

	camComp, ok := ecs.Get(w, cs.camEntity, component.CameraComponent.Kind())
	if !ok {
		return
	}
	camTransform, ok := ecs.Get(w, cs.camEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	camComp.Shake *= shakeDecay
	if camComp.Shake < 0.1 {
		camComp.Shake = 0
	}

	targetTransform, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	zoom := camComp.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	viewW := cs.screenW / zoom
	viewH := cs.screenH / zoom

	goalX := targetTransform.X - viewW/2
	goalY := targetTransform.Y - viewH/2
	if boundsEntity, ok := ecs.First(w, component.LevelBoundsComponent.Kind()); ok {
		if bounds, ok := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind()); ok {
			goalX = clampView(goalX, viewW, bounds.Width)
			goalY = clampView(goalY, viewH, bounds.Height)
		}
	}

	t := camComp.Smoothness
	if t <= 0 || t > 1 {
		t = 1
	}
	camTransform.X = common.Lerp(camTransform.X, goalX, t)
	camTransform.Y = common.Lerp(camTransform.Y, goalY, t)
}

// clampView keeps [pos, pos+view] inside [0, world]; a level smaller than
// the view is centred.
func clampView(pos, view, world float64) float64 {
	if world <= 0 {
		return pos
	}
	if view >= world {
		return (world - view) / 2
	}
	return common.Clamp(pos, 0, world-view)
}

// ShakeCamera bumps the shake amplitude of the first camera. Smaller
// requests never cut a stronger shake short.
func ShakeCamera(w *ecs.World, amount float64) {
	camEntity, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return
	}
	cam, ok := ecs.Get(w, camEntity, component.CameraComponent.Kind())
	if !ok {
		return
	}
	cam.Shake = math.Max(cam.Shake, amount)
}
