package view

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"github.com/milk9111/grapplehook/grapple"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const hudEventHistory = 4

// HUD shows the grapple state and the latest grapple events. It consumes
// the world event queue, so it must be the last reader each frame.
type HUD struct {
	face   ebtext.Face
	recent []string
}

func NewHUD() *HUD {
	return &HUD{face: ebtext.NewGoXFace(basicfont.Face7x13)}
}

// Update drains the event queue into the HUD's history.
func (h *HUD) Update(w *ecs.World) {
	for _, evt := range w.Events().Drain() {
		ge, ok := evt.Data.(grapple.Event)
		if !ok {
			continue
		}
		h.recent = append(h.recent, describeEvent(ge))
		if len(h.recent) > hudEventHistory {
			h.recent = h.recent[len(h.recent)-hudEventHistory:]
		}
	}
}

func describeEvent(evt grapple.Event) string {
	switch evt.Kind {
	case grapple.EventStarted:
		return fmt.Sprintf("started at (%.0f, %.0f)", evt.Point.X, evt.Point.Y)
	case grapple.EventEnded:
		return fmt.Sprintf("ended: %s", evt.Reason)
	default:
		return string(evt.Kind)
	}
}

func (h *HUD) Draw(w *ecs.World, screen *ebiten.Image) {
	lines := []string{"click/E: grapple  right click/Q: cancel"}

	if player, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
		if g, ok := ecs.Get(w, player, component.GrapplerComponent.Kind()); ok && g.Controller != nil {
			lines = append(lines,
				fmt.Sprintf("state: %s", g.Controller.State()),
				fmt.Sprintf("speed: %.0f", g.Controller.Speed()),
				fmt.Sprintf("target: %v", g.ValidTarget),
			)
		}
		if mv, ok := ecs.Get(w, player, component.MovementComponent.Kind()); ok {
			lines = append(lines, fmt.Sprintf("mode: %s  grounded: %v", mv.Mode, mv.Grounded))
		}
	}
	lines = append(lines, h.recent...)

	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(10, 10)
	op.ColorScale.ScaleWithColor(colornames.White)
	op.LineSpacing = 16
	ebtext.Draw(screen, strings.Join(lines, "\n"), h.face, op)
}
