package entity

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"github.com/milk9111/grapplehook/grapple"
	"github.com/milk9111/grapplehook/prefabs"
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":    addPlayerTag,
	"camera_tag":    addCameraTag,
	"reticle_tag":   addReticleTag,
	"anchor_tag":    addAnchorTag,
	"solid_tag":     addSolidTag,
	"input":         addInput,
	"aim":           addAim,
	"transform":     addTransform,
	"physics_body":  addPhysicsBody,
	"gravity_scale": addGravityScale,
	"movement":      addMovement,
	"grappler":      addGrappler,
	"anchor":        addAnchor,
	"mover":         addMover,
	"box_render":    addBoxRender,
	"line_render":   addLineRender,
	"render_layer":  addRenderLayer,
	"camera":        addCamera,
}

// Transform goes first so size-dependent builders can read it.
var componentBuildOrder = []string{
	"player_tag",
	"camera_tag",
	"reticle_tag",
	"anchor_tag",
	"solid_tag",
	"transform",
	"input",
	"aim",
	"physics_body",
	"gravity_scale",
	"movement",
	"grappler",
	"anchor",
	"mover",
	"box_render",
	"line_render",
	"render_layer",
	"camera",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	names := make([]string, 0, len(remaining))
	for _, name := range componentBuildOrder {
		if _, ok := remaining[name]; ok {
			names = append(names, name)
		}
	}
	var unordered []string
	for name := range remaining {
		if _, ok := componentRegistry[name]; !ok || !inBuildOrder(name) {
			unordered = append(unordered, name)
		}
	}
	sort.Strings(unordered)
	names = append(names, unordered...)

	for _, name := range names {
		builder, ok := componentRegistry[name]
		if !ok {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, remaining[name], ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}

	return e, nil
}

func inBuildOrder(name string) bool {
	for _, n := range componentBuildOrder {
		if n == name {
			return true
		}
	}
	return false
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{ScaleX: 1, ScaleY: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addCameraTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraTagComponent.Kind(), &component.CameraTag{})
}

func addReticleTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.ReticleTagComponent.Kind(), &component.ReticleTag{})
}

func addAnchorTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.AnchorTagComponent.Kind(), &component.AnchorTag{})
}

func addSolidTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.SolidTagComponent.Kind(), &component.SolidTag{})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

func addAim(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.AimComponent.Kind(), &component.Aim{})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		ScaleX:   spec.ScaleX,
		ScaleY:   spec.ScaleY,
		Rotation: spec.Rotation,
	})
}

type physicsBodySpec = prefabs.PhysicsBodyComponentSpec

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[physicsBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	if spec.DefaultWidth <= 0 {
		spec.DefaultWidth = 32
	}
	if spec.DefaultHeight <= 0 {
		spec.DefaultHeight = 32
	}
	if spec.Static && spec.Kinematic {
		return fmt.Errorf("physics body cannot be both static and kinematic")
	}

	width := spec.Width
	height := spec.Height
	if width == 0 {
		width = spec.DefaultWidth
	}
	if height == 0 {
		height = spec.DefaultHeight
	}
	if !spec.Static && !spec.Kinematic && spec.Mass == 0 {
		spec.Mass = 1
	}

	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:      width,
		Height:     height,
		Radius:     spec.Radius,
		Mass:       spec.Mass,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
		Static:     spec.Static,
		Kinematic:  spec.Kinematic,
	})
}

type gravityScaleSpec = prefabs.GravityScaleComponentSpec

func addGravityScale(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[gravityScaleSpec](raw)
	if err != nil {
		return fmt.Errorf("decode gravity scale spec: %w", err)
	}
	scale := 1.0
	if spec.Scale != nil {
		scale = *spec.Scale
	}
	return ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: scale})
}

type movementSpec = prefabs.MovementComponentSpec

func addMovement(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[movementSpec](raw)
	if err != nil {
		return fmt.Errorf("decode movement spec: %w", err)
	}
	if spec.MoveSpeed == 0 {
		spec.MoveSpeed = 260
	}
	if spec.JumpSpeed == 0 {
		spec.JumpSpeed = 620
	}
	return ecs.Add(w, e, component.MovementComponent.Kind(), &component.Movement{
		Mode:          grapple.ModeGrounded,
		ControlFacing: spec.ControlFacing,
		MoveSpeed:     spec.MoveSpeed,
		JumpSpeed:     spec.JumpSpeed,
	})
}

type grapplerSpec = prefabs.GrapplerComponentSpec

func addGrappler(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[grapplerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode grappler spec: %w", err)
	}
	cfg := grapple.DefaultConfig()
	if spec.Config != "" {
		cfg, err = prefabs.LoadGrappleConfig(spec.Config)
		if err != nil {
			return err
		}
	}
	return ecs.Add(w, e, component.GrapplerComponent.Kind(), &component.Grappler{Config: cfg})
}

func addAnchor(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.AnchorComponent.Kind(), &component.Anchor{})
}

type moverSpec = prefabs.MoverComponentSpec

func addMover(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[moverSpec](raw)
	if err != nil {
		return fmt.Errorf("decode mover spec: %w", err)
	}
	if spec.Speed < 0 {
		return fmt.Errorf("mover speed must not be negative, got %v", spec.Speed)
	}
	return ecs.Add(w, e, component.MoverComponent.Kind(), &component.Mover{
		DX:    spec.DX,
		DY:    spec.DY,
		Speed: spec.Speed,
	})
}

type boxRenderSpec = prefabs.BoxRenderComponentSpec

func addBoxRender(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[boxRenderSpec](raw)
	if err != nil {
		return fmt.Errorf("decode box render spec: %w", err)
	}
	c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if spec.Color != "" {
		c, err = parseHexColor(spec.Color)
		if err != nil {
			return fmt.Errorf("parse box render color: %w", err)
		}
	}
	width, height := spec.Width, spec.Height
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
		if width == 0 {
			width = body.Width
		}
		if height == 0 {
			height = body.Height
		}
	}
	if height == 0 {
		height = width
	}
	return ecs.Add(w, e, component.BoxRenderComponent.Kind(), &component.BoxRender{
		Width:  width,
		Height: height,
		Color:  c,
		Circle: spec.Circle,
	})
}

type lineRenderSpec = prefabs.LineRenderComponentSpec

func addLineRender(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[lineRenderSpec](raw)
	if err != nil {
		return fmt.Errorf("decode line render spec: %w", err)
	}
	if spec.Width <= 0 {
		spec.Width = 1
	}
	c := color.RGBA{R: 255, A: 255}
	if spec.Color != "" {
		c, err = parseHexColor(spec.Color)
		if err != nil {
			return fmt.Errorf("parse line render color: %w", err)
		}
	}
	return ecs.Add(w, e, component.LineRenderComponent.Kind(), &component.LineRender{
		Width:     spec.Width,
		Color:     c,
		AntiAlias: spec.AntiAlias,
	})
}

type renderLayerSpec = prefabs.RenderLayerComponentSpec

func addRenderLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderLayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode render layer spec: %w", err)
	}
	return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: spec.Index})
}

type cameraSpec = prefabs.CameraComponentSpec

func addCamera(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[cameraSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera spec: %w", err)
	}
	if spec.Zoom <= 0 {
		spec.Zoom = 1
	}
	if spec.Smoothness == 0 {
		spec.Smoothness = 0.15
	}
	return ecs.Add(w, e, component.CameraComponent.Kind(), &component.Camera{
		Zoom:       spec.Zoom,
		Smoothness: spec.Smoothness,
	})
}

func parseHexColor(v string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color format: %q", v)
	}
	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}
	r, err := parse(0)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse red component: %w", err)
	}
	g, err := parse(2)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse green component: %w", err)
	}
	b, err := parse(4)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse blue component: %w", err)
	}
	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("parse alpha component: %w", err)
		}
	}
	// RGBA is alpha-premultiplied.
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 255),
		G: uint8(uint16(g) * uint16(a) / 255),
		B: uint8(uint16(b) * uint16(a) / 255),
		A: a,
	}, nil
}
