package view

import (
	"math/rand/v2"

	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
)

// cameraView is the world-to-screen mapping for one frame.
type cameraView struct {
	x, y, zoom float64
}

func currentCamera(w *ecs.World, shake bool) cameraView {
	cam := cameraView{zoom: 1}
	camEntity, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return cam
	}
	if camTransform, ok := ecs.Get(w, camEntity, component.TransformComponent.Kind()); ok {
		cam.x = camTransform.X
		cam.y = camTransform.Y
	}
	if camComp, ok := ecs.Get(w, camEntity, component.CameraComponent.Kind()); ok {
		if camComp.Zoom > 0 {
			cam.zoom = camComp.Zoom
		}
		if shake && camComp.Shake > 0 {
			cam.x += (rand.Float64()*2 - 1) * camComp.Shake
			cam.y += (rand.Float64()*2 - 1) * camComp.Shake
		}
	}
	return cam
}

func (c cameraView) toScreen(x, y float64) (float32, float32) {
	return float32((x - c.x) * c.zoom), float32((y - c.y) * c.zoom)
}

func (c cameraView) toWorld(sx, sy int) (float64, float64) {
	return c.x + float64(sx)/c.zoom, c.y + float64(sy)/c.zoom
}
