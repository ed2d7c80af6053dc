package system

import (
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/grapplehook/common"
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"github.com/milk9111/grapplehook/ecs/entity"
	"github.com/milk9111/grapplehook/grapple"
)

// GrappleSystem drives every Grappler entity. It must run before
// PhysicsSystem so velocities it writes are integrated on the same step.
type GrappleSystem struct {
	physics *PhysicsSystem
	logger  *log.Logger
	step    float64

	hooks       *grappleHooks
	controllers map[ecs.Entity]*grapple.Controller

	// LastEvent is the most recent grapple event, for the HUD.
	LastEvent grapple.Event
}

type GrappleOption func(gs *GrappleSystem)

func WithGrappleLogger(l *log.Logger) GrappleOption {
	return func(gs *GrappleSystem) {
		if l != nil {
			gs.logger = l
		}
	}
}

// WithGrappleHooks loads a tengo hook script. A script that fails to load
// is logged and skipped.
func WithGrappleHooks(scriptPath string) GrappleOption {
	return func(gs *GrappleSystem) {
		if scriptPath == "" {
			return
		}
		hooks, err := loadGrappleHooks(scriptPath)
		if err != nil {
			gs.logger.Printf("grapple: %v", err)
			return
		}
		gs.hooks = hooks
	}
}

func NewGrappleSystem(physics *PhysicsSystem, opts ...GrappleOption) *GrappleSystem {
	gs := &GrappleSystem{
		physics:     physics,
		logger:      log.Default(),
		step:        common.FixedStep,
		controllers: make(map[ecs.Entity]*grapple.Controller),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(gs)
		}
	}
	return gs
}

// ReloadHooks swaps the hook script, keeping the old one when the new one
// does not compile.
func (gs *GrappleSystem) ReloadHooks(scriptPath string) error {
	hooks, err := loadGrappleHooks(scriptPath)
	if err != nil {
		return err
	}
	gs.hooks = hooks
	return nil
}

// ReloadConfig applies cfg to every grappler. Sessions already running
// finish with the tuning they started with.
func (gs *GrappleSystem) ReloadConfig(w *ecs.World, cfg grapple.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ecs.ForEach(w, component.GrapplerComponent.Kind(), func(e ecs.Entity, g *component.Grappler) {
		g.Config = cfg
		if g.Controller != nil {
			// Validated above.
			_ = g.Controller.SetConfig(cfg)
		}
	})
	return nil
}

// Controller returns the grapple controller built for e.
func (gs *GrappleSystem) Controller(e ecs.Entity) (*grapple.Controller, bool) {
	c, ok := gs.controllers[e]
	return c, ok
}

func (gs *GrappleSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	// Fresh bodies must be queryable before the first ray cast.
	gs.physics.Sync(w)
	gs.dropDeadControllers(w)

	ecs.ForEach(w, component.GrapplerComponent.Kind(), func(e ecs.Entity, g *component.Grappler) {
		if g.Controller == nil {
			ctrl, err := gs.AttachGrapple(w, e)
			if err != nil {
				gs.logger.Printf("grapple: entity=%s: %v", e, err)
				return
			}
			g.Controller = ctrl
		}
		ctrl := g.Controller

		if input, ok := ecs.Get(w, e, component.InputComponent.Kind()); ok {
			switch {
			case input.GrapplePressed:
				ctrl.Activate()
			case input.CancelPressed:
				ctrl.Cancel()
			}
		}

		ctrl.Tick(gs.step)
		g.ValidTarget = ctrl.HasValidTarget()
		gs.updateRope(w, e, ctrl)
	})
}

// AttachGrapple builds a controller for e from its Grappler config. e needs
// a physics body, Movement and Aim.
func (gs *GrappleSystem) AttachGrapple(w *ecs.World, e ecs.Entity) (*grapple.Controller, error) {
	g, ok := ecs.Get(w, e, component.GrapplerComponent.Kind())
	if !ok {
		return nil, fmt.Errorf("attach grapple: entity %s has no grappler", e)
	}
	for _, required := range []struct {
		name string
		ok   bool
	}{
		{"physics body", ecs.Has(w, e, component.PhysicsBodyComponent.Kind())},
		{"movement", ecs.Has(w, e, component.MovementComponent.Kind())},
		{"aim", ecs.Has(w, e, component.AimComponent.Kind())},
	} {
		if !required.ok {
			return nil, fmt.Errorf("attach grapple: entity %s has no %s", e, required.name)
		}
	}

	host := &grappleHost{w: w, e: e}
	ctrl, err := grapple.New(
		host,
		&grappleAim{w: w, e: e},
		&grappleQuery{physics: gs.physics, exclude: e},
		&anchorSpawner{w: w, prefab: g.Config.AnchorPrefab},
		g.Config,
		grapple.WithLogger(gs.logger),
	)
	if err != nil {
		return nil, err
	}
	ctrl.Emitter.Subscribe(func(evt grapple.Event) {
		gs.LastEvent = evt
		w.Events().Push(ecs.Event{Type: string(evt.Kind), Data: evt})
		gs.runHooks(w, evt)
	})

	gs.controllers[e] = ctrl
	return ctrl, nil
}

func (gs *GrappleSystem) runHooks(w *ecs.World, evt grapple.Event) {
	if gs.hooks == nil {
		return
	}
	engine := grappleHookEngine{
		Log:   hookLogger(gs.logger, gs.hooks.scriptPath),
		Shake: func(amount float64) { ShakeCamera(w, amount) },
		Speed: func() float64 { return evt.Speed },
	}
	if err := gs.hooks.dispatch(evt, engine); err != nil {
		gs.logger.Printf("grapple: script %s: %v", gs.hooks.scriptPath, err)
	}
}

// dropDeadControllers ends the sessions of grapplers that were destroyed so
// their anchors do not linger.
func (gs *GrappleSystem) dropDeadControllers(w *ecs.World) {
	for e, ctrl := range gs.controllers {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.GrapplerComponent.Kind()) {
			continue
		}
		ctrl.Cancel()
		delete(gs.controllers, e)
	}
}

// updateRope stretches the anchor's line from the grappler to the anchor.
func (gs *GrappleSystem) updateRope(w *ecs.World, e ecs.Entity, ctrl *grapple.Controller) {
	handle, ok := ctrl.CurrentAnchor()
	if !ok {
		return
	}
	anchor := ecs.Entity(handle)
	line, ok := ecs.Get(w, anchor, component.LineRenderComponent.Kind())
	if !ok {
		return
	}
	from, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return
	}
	to, ok := ctrl.AnchorPoint()
	if !ok {
		return
	}
	line.StartX, line.StartY = from.X, from.Y
	line.EndX, line.EndY = to.X, to.Y
}

// grappleHost exposes an entity's body and movement state to the
// controller. Missing components read as defaults and writes to them are
// dropped.
type grappleHost struct {
	w *ecs.World
	e ecs.Entity
}

func (h *grappleHost) body() *cp.Body {
	bodyComp, ok := ecs.Get(h.w, h.e, component.PhysicsBodyComponent.Kind())
	if !ok || bodyComp.Body == nil {
		return nil
	}
	return bodyComp.Body
}

func (h *grappleHost) movement() *component.Movement {
	mv, ok := ecs.Get(h.w, h.e, component.MovementComponent.Kind())
	if !ok {
		return nil
	}
	return mv
}

func (h *grappleHost) Position() cp.Vector {
	if b := h.body(); b != nil {
		return b.Position()
	}
	if t, ok := ecs.Get(h.w, h.e, component.TransformComponent.Kind()); ok {
		return cp.Vector{X: t.X, Y: t.Y}
	}
	return cp.Vector{}
}

func (h *grappleHost) Velocity() cp.Vector {
	if b := h.body(); b != nil {
		return b.Velocity()
	}
	return cp.Vector{}
}

func (h *grappleHost) SetVelocity(v cp.Vector) {
	if b := h.body(); b != nil {
		b.SetVelocityVector(v)
	}
}

func (h *grappleHost) SetMovementMode(mode grapple.Mode) {
	if mv := h.movement(); mv != nil {
		mv.Mode = mode
	}
}

func (h *grappleHost) GravityScale() float64 {
	if gs, ok := ecs.Get(h.w, h.e, component.GravityScaleComponent.Kind()); ok {
		return gs.Scale
	}
	return 1
}

func (h *grappleHost) SetGravityScale(scale float64) {
	if gs, ok := ecs.Get(h.w, h.e, component.GravityScaleComponent.Kind()); ok {
		gs.Scale = scale
		return
	}
	if err := ecs.Add(h.w, h.e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: scale}); err != nil && ecs.IsAlive(h.w, h.e) {
		panic("grapple system: add gravity scale: " + err.Error())
	}
}

func (h *grappleHost) SetIgnoreMoveInput(ignore bool) {
	if mv := h.movement(); mv != nil {
		mv.IgnoreMoveInput = ignore
	}
}

func (h *grappleHost) ControlFacing() bool {
	if mv := h.movement(); mv != nil {
		return mv.ControlFacing
	}
	return false
}

func (h *grappleHost) SetControlFacing(control bool) {
	if mv := h.movement(); mv != nil {
		mv.ControlFacing = control
	}
}

func (h *grappleHost) SetFacing(angle float64) {
	mv := h.movement()
	if mv == nil {
		return
	}
	mv.Facing = angle
	// Straight up or down keeps the current side.
	if c := math.Cos(angle); math.Abs(c) > 1e-9 {
		mv.FacingLeft = c < 0
	}
}

type grappleAim struct {
	w *ecs.World
	e ecs.Entity
}

func (a *grappleAim) Aim() (cp.Vector, cp.Vector, bool) {
	aim, ok := ecs.Get(a.w, a.e, component.AimComponent.Kind())
	if !ok || !aim.Valid {
		return cp.Vector{}, cp.Vector{}, false
	}
	return cp.Vector{X: aim.OriginX, Y: aim.OriginY}, cp.Vector{X: aim.DirX, Y: aim.DirY}, true
}

type grappleQuery struct {
	physics *PhysicsSystem
	exclude ecs.Entity
}

func (q *grappleQuery) RayCast(from, to cp.Vector) (grapple.Hit, bool) {
	return q.physics.RayCast(from, to, q.exclude)
}

func (q *grappleQuery) SweepBox(from, to, halfExtents cp.Vector) bool {
	return q.physics.SweepBox(from, to, halfExtents, q.exclude)
}

// anchorSpawner places anchor entities. Handles are entity ids.
type anchorSpawner struct {
	w      *ecs.World
	prefab string
}

func (s *anchorSpawner) SpawnAnchor(point cp.Vector) (grapple.AnchorHandle, error) {
	e, err := entity.NewAnchorAt(s.w, point.X, point.Y, s.prefab)
	if err != nil {
		return 0, err
	}
	return grapple.AnchorHandle(e), nil
}

func (s *anchorSpawner) AttachAnchor(handle grapple.AnchorHandle, target grapple.Target, preserveWorld bool) error {
	e := ecs.Entity(handle)
	anchor, ok := ecs.Get(s.w, e, component.AnchorComponent.Kind())
	if !ok {
		return fmt.Errorf("anchor %s does not exist", e)
	}
	t, ok := ecs.Get(s.w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("anchor %s has no transform", e)
	}

	anchor.Target = target
	anchor.LocalX, anchor.LocalY = 0, 0
	if target != 0 {
		targetEntity := ecs.Entity(target)
		tt, ok := ecs.Get(s.w, targetEntity, component.TransformComponent.Kind())
		if !ok {
			return fmt.Errorf("attach target %s has no transform", targetEntity)
		}
		if preserveWorld {
			anchor.LocalX = t.X - tt.X
			anchor.LocalY = t.Y - tt.Y
		} else {
			t.X, t.Y = tt.X, tt.Y
		}
	}
	anchor.Attached = true
	anchor.Lost = false
	return nil
}

func (s *anchorSpawner) AnchorPosition(handle grapple.AnchorHandle) (cp.Vector, bool) {
	e := ecs.Entity(handle)
	anchor, ok := ecs.Get(s.w, e, component.AnchorComponent.Kind())
	if !ok || anchor.Lost {
		return cp.Vector{}, false
	}
	if anchor.Target == 0 {
		t, ok := ecs.Get(s.w, e, component.TransformComponent.Kind())
		if !ok {
			return cp.Vector{}, false
		}
		return cp.Vector{X: t.X, Y: t.Y}, true
	}
	tt, ok := ecs.Get(s.w, ecs.Entity(anchor.Target), component.TransformComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	return cp.Vector{X: tt.X + anchor.LocalX, Y: tt.Y + anchor.LocalY}, true
}

func (s *anchorSpawner) DestroyAnchor(handle grapple.AnchorHandle) {
	ecs.DestroyEntity(s.w, ecs.Entity(handle))
}
