package entity

import (
	"fmt"
	"strings"

	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"github.com/milk9111/grapplehook/levels"
)

// Course holds the handles LoadCourse creates that systems need.
type Course struct {
	Player  ecs.Entity
	Camera  ecs.Entity
	Reticle ecs.Entity
	Width   float64
	Height  float64
}

// LoadCourse populates the world with a level: a bounds entity, one static
// solid per merged tile rectangle, and the placed entities. A camera and a
// reticle are always created.
func LoadCourse(world *ecs.World, lvl *levels.Level) (Course, error) {
	if world == nil || lvl == nil {
		return Course{}, fmt.Errorf("load course: world and level are required")
	}

	var course Course
	course.Width, course.Height = lvl.PixelSize()

	bounds := ecs.CreateEntity(world)
	if err := ecs.Add(world, bounds, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:  course.Width,
		Height: course.Height,
	}); err != nil {
		return Course{}, err
	}

	for _, r := range lvl.SolidRects() {
		if _, err := NewSolid(world, r.X+r.W/2, r.Y+r.H/2, r.W, r.H); err != nil {
			return Course{}, err
		}
	}

	for _, ent := range lvl.Entities {
		x, y := lvl.TileCenter(ent.X, ent.Y)
		switch strings.ToLower(ent.Type) {
		case "player":
			if course.Player.Valid() {
				return Course{}, fmt.Errorf("load course: more than one player")
			}
			player, err := NewPlayerAt(world, x, y)
			if err != nil {
				return Course{}, err
			}
			course.Player = player
		case "platform":
			if _, err := NewPlatform(world, x, y, propFloat(ent.Props, "dx"), propFloat(ent.Props, "dy"), propFloat(ent.Props, "speed")); err != nil {
				return Course{}, err
			}
		case "solid":
			wd := propFloat(ent.Props, "width")
			ht := propFloat(ent.Props, "height")
			if wd == 0 {
				wd = float64(lvl.TileSize)
			}
			if ht == 0 {
				ht = wd
			}
			if _, err := NewSolid(world, x, y, wd, ht); err != nil {
				return Course{}, err
			}
		default:
			// Unknown entity type; ignore for now.
		}
	}

	if !course.Player.Valid() {
		return Course{}, fmt.Errorf("load course: level has no player")
	}

	camX, camY := course.Width/2, course.Height/2
	if t, ok := ecs.Get(world, course.Player, component.TransformComponent.Kind()); ok {
		camX, camY = t.X, t.Y
	}
	camera, err := NewCameraAt(world, camX, camY)
	if err != nil {
		return Course{}, err
	}
	course.Camera = camera

	reticle, err := NewReticle(world)
	if err != nil {
		return Course{}, err
	}
	course.Reticle = reticle

	return course, nil
}

// JSON numbers decode as float64; ints are accepted for hand-built levels.
func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
