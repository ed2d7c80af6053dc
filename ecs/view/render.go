package view

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"golang.org/x/image/colornames"
)

var backgroundColor = color.RGBA{R: 0x1b, G: 0x1e, B: 0x25, A: 0xff}

type RenderSystem struct{}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

// Draw paints boxes, discs and lines in render-layer order.
func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	screen.Fill(backgroundColor)

	cam := currentCamera(w, true)

	var entities []ecs.Entity
	ecs.ForEach(w, component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.Transform) {
		if ecs.Has(w, e, component.BoxRenderComponent.Kind()) || ecs.Has(w, e, component.LineRenderComponent.Kind()) {
			entities = append(entities, e)
		}
	})
	sort.SliceStable(entities, func(i, j int) bool {
		li := 0
		if layer, ok := ecs.Get(w, entities[i], component.RenderLayerComponent.Kind()); ok {
			li = layer.Index
		}
		lj := 0
		if layer, ok := ecs.Get(w, entities[j], component.RenderLayerComponent.Kind()); ok {
			lj = layer.Index
		}
		if li != lj {
			return li < lj
		}
		return uint64(entities[i]) < uint64(entities[j])
	})

	for _, e := range entities {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		// The rope is drawn under the anchor marker.
		if line, ok := ecs.Get(w, e, component.LineRenderComponent.Kind()); ok && line.Width > 0 {
			x0, y0 := cam.toScreen(line.StartX, line.StartY)
			x1, y1 := cam.toScreen(line.EndX, line.EndY)
			vector.StrokeLine(screen, x0, y0, x1, y1, line.Width*float32(cam.zoom), line.Color, line.AntiAlias)
		}
		if box, ok := ecs.Get(w, e, component.BoxRenderComponent.Kind()); ok {
			drawBox(screen, cam, t, box)
		}
	}

	drawFacing(w, screen, cam)
}

func drawBox(screen *ebiten.Image, cam cameraView, t *component.Transform, box *component.BoxRender) {
	sx := t.ScaleX
	if sx == 0 {
		sx = 1
	}
	sy := t.ScaleY
	if sy == 0 {
		sy = 1
	}
	cx, cy := cam.toScreen(t.X, t.Y)
	if box.Circle {
		r := float32(box.Width / 2 * sx * cam.zoom)
		vector.FillCircle(screen, cx, cy, r, box.Color, true)
		return
	}
	bw := float32(box.Width * sx * cam.zoom)
	bh := float32(box.Height * sy * cam.zoom)
	vector.FillRect(screen, cx-bw/2, cy-bh/2, bw, bh, box.Color, false)
}

// drawFacing marks which way the player faces with a short tick.
func drawFacing(w *ecs.World, screen *ebiten.Image, cam cameraView) {
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	mv, ok := ecs.Get(w, player, component.MovementComponent.Kind())
	if !ok {
		return
	}
	dir := 1.0
	if mv.FacingLeft {
		dir = -1
	}
	x0, y0 := cam.toScreen(t.X, t.Y-12)
	x1, y1 := cam.toScreen(t.X+dir*10, t.Y-12)
	vector.StrokeLine(screen, x0, y0, x1, y1, 3, colornames.White, true)
}
