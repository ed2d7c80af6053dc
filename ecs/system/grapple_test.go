package system

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"github.com/milk9111/grapplehook/ecs/entity"
	"github.com/milk9111/grapplehook/grapple"
)

type harness struct {
	t       *testing.T
	w       *ecs.World
	physics *PhysicsSystem
	grapple *GrappleSystem
	sched   *ecs.Scheduler
	player  ecs.Entity
	logs    *bytes.Buffer
	events  []grapple.Event
}

// newHarness places the player in open air at (x, y). Nothing else exists
// until the test adds it.
func newHarness(t *testing.T, x, y float64, opts ...GrappleOption) *harness {
	t.Helper()
	h := &harness{t: t, w: ecs.NewWorld(), logs: &bytes.Buffer{}}
	h.physics = NewPhysicsSystem()
	opts = append([]GrappleOption{WithGrappleLogger(log.New(h.logs, "", 0))}, opts...)
	h.grapple = NewGrappleSystem(h.physics, opts...)
	h.sched = ecs.NewScheduler(
		NewAimSystem(),
		h.grapple,
		NewPlayerControllerSystem(),
		NewMoverSystem(h.physics.step),
		h.physics,
		NewAnchorSystem(),
	)

	player, err := entity.NewPlayerAt(h.w, x, y)
	require.NoError(t, err)
	h.player = player
	return h
}

func (h *harness) input() *component.Input {
	in, ok := ecs.Get(h.w, h.player, component.InputComponent.Kind())
	require.True(h.t, ok)
	return in
}

func (h *harness) aimAt(x, y float64) {
	in := h.input()
	in.CursorX = x
	in.CursorY = y
}

func (h *harness) step() {
	h.sched.Update(h.w)
	for _, evt := range h.w.Events().Drain() {
		if ge, ok := evt.Data.(grapple.Event); ok {
			h.events = append(h.events, ge)
		}
	}
}

func (h *harness) press() {
	h.input().GrapplePressed = true
	h.step()
	h.input().GrapplePressed = false
}

func (h *harness) stepUntilEnded(maxSteps int) (grapple.Event, bool) {
	for i := 0; i < maxSteps; i++ {
		h.step()
		for _, evt := range h.events {
			if evt.Kind == grapple.EventEnded {
				return evt, true
			}
		}
	}
	return grapple.Event{}, false
}

func (h *harness) controller() *grapple.Controller {
	c, ok := h.grapple.Controller(h.player)
	require.True(h.t, ok)
	return c
}

func (h *harness) position() (float64, float64) {
	tr, ok := ecs.Get(h.w, h.player, component.TransformComponent.Kind())
	require.True(h.t, ok)
	return tr.X, tr.Y
}

func countAnchors(w *ecs.World) int {
	n := 0
	ecs.ForEach(w, component.AnchorComponent.Kind(), func(ecs.Entity, *component.Anchor) { n++ })
	return n
}

func TestGrappleSystemPullsPlayerToWall(t *testing.T) {
	h := newHarness(t, 100, 300)
	_, err := entity.NewSolid(h.w, 600, 300, 64, 600)
	require.NoError(t, err)
	h.aimAt(600, 300)

	h.press()

	ctrl := h.controller()
	require.Equal(t, grapple.StateAttached, ctrl.State())
	require.Len(t, h.events, 1)
	require.Equal(t, grapple.EventStarted, h.events[0].Kind)
	require.InDelta(t, 568, h.events[0].Point.X, 1)
	require.Equal(t, 1, countAnchors(h.w))

	mv, _ := ecs.Get(h.w, h.player, component.MovementComponent.Kind())
	require.Equal(t, grapple.ModeFlying, mv.Mode)
	require.True(t, mv.IgnoreMoveInput)
	require.False(t, mv.ControlFacing)
	require.False(t, mv.FacingLeft)
	gs, _ := ecs.Get(h.w, h.player, component.GravityScaleComponent.Kind())
	require.Equal(t, 0.0, gs.Scale)

	evt, ok := h.stepUntilEnded(240)
	require.True(t, ok, "grapple never ended")
	require.Equal(t, grapple.ExitArrival, evt.Reason)

	x, y := h.position()
	require.Greater(t, x, 400.0)
	require.InDelta(t, 300, y, 2, "no gravity while flying")

	require.Equal(t, grapple.StateIdle, ctrl.State())
	require.Equal(t, 0, countAnchors(h.w))
	require.Equal(t, grapple.ModeGrounded, mv.Mode)
	require.False(t, mv.IgnoreMoveInput)
	require.True(t, mv.ControlFacing, "snapshot restored")
	require.Equal(t, 1.0, gs.Scale)
	require.Contains(t, h.logs.String(), "released (arrival)")
}

func TestGrappleSystemNoTarget(t *testing.T) {
	h := newHarness(t, 100, 300)
	h.aimAt(200, 300)

	h.press()

	require.Equal(t, grapple.StateIdle, h.controller().State())
	require.Len(t, h.events, 1)
	require.Equal(t, grapple.EventNoTarget, h.events[0].Kind)
	require.Equal(t, 0, countAnchors(h.w))

	g, _ := ecs.Get(h.w, h.player, component.GrapplerComponent.Kind())
	require.False(t, g.ValidTarget)
}

func TestGrappleSystemValidTargetFlag(t *testing.T) {
	h := newHarness(t, 100, 300)
	_, err := entity.NewSolid(h.w, 600, 300, 64, 600)
	require.NoError(t, err)

	h.aimAt(600, 300)
	h.step()
	g, _ := ecs.Get(h.w, h.player, component.GrapplerComponent.Kind())
	require.True(t, g.ValidTarget)

	h.aimAt(-400, 300)
	h.step()
	require.False(t, g.ValidTarget)
}

func TestGrappleSystemSecondPressCancels(t *testing.T) {
	h := newHarness(t, 100, 300)
	_, err := entity.NewSolid(h.w, 1600, 300, 64, 600)
	require.NoError(t, err)
	h.aimAt(1600, 300)

	h.press()
	h.step()
	h.press()

	require.Equal(t, grapple.StateIdle, h.controller().State())
	require.Len(t, h.events, 2)
	require.Equal(t, grapple.EventEnded, h.events[1].Kind)
	require.Equal(t, grapple.ExitCancel, h.events[1].Reason)
	require.Equal(t, 0, countAnchors(h.w))
}

func TestGrappleSystemCancelInput(t *testing.T) {
	h := newHarness(t, 100, 300)
	_, err := entity.NewSolid(h.w, 1600, 300, 64, 600)
	require.NoError(t, err)
	h.aimAt(1600, 300)

	h.press()
	require.True(t, h.controller().IsActive())

	h.input().CancelPressed = true
	h.step()
	h.input().CancelPressed = false

	require.False(t, h.controller().IsActive())
	require.Equal(t, grapple.ExitCancel, h.events[len(h.events)-1].Reason)
}

func TestGrappleSystemAnchorLost(t *testing.T) {
	h := newHarness(t, 100, 300)
	wall, err := entity.NewSolid(h.w, 1600, 300, 64, 600)
	require.NoError(t, err)
	h.aimAt(1600, 300)

	h.press()
	require.True(t, h.controller().IsActive())
	h.step()

	ecs.DestroyEntity(h.w, wall)
	evt, ok := h.stepUntilEnded(2)
	require.True(t, ok)
	require.Equal(t, grapple.ExitAnchorLost, evt.Reason)
	require.Equal(t, 0, countAnchors(h.w))
}

func TestGrappleSystemAnchorRidesPlatform(t *testing.T) {
	h := newHarness(t, 100, 300)
	platform, err := entity.NewPlatform(h.w, 1600, 300, 0, -400, 120)
	require.NoError(t, err)
	h.aimAt(1600, 300)

	h.press()
	ctrl := h.controller()
	require.True(t, ctrl.IsActive())
	start, _ := ctrl.AnchorPoint()

	for i := 0; i < 30; i++ {
		h.step()
	}
	require.True(t, ctrl.IsActive())
	now, _ := ctrl.AnchorPoint()
	require.Less(t, now.Y, start.Y-20, "anchor follows the platform up")

	pt, _ := ecs.Get(h.w, platform, component.TransformComponent.Kind())
	handle, ok := ctrl.CurrentAnchor()
	require.True(t, ok)
	at, _ := ecs.Get(h.w, ecs.Entity(handle), component.TransformComponent.Kind())
	a, _ := ecs.Get(h.w, ecs.Entity(handle), component.AnchorComponent.Kind())
	require.InDelta(t, pt.X+a.LocalX, at.X, 1e-6)
	require.InDelta(t, pt.Y+a.LocalY, at.Y, 1e-6)
}

func TestGrappleSystemRopeFollowsPlayer(t *testing.T) {
	h := newHarness(t, 100, 300)
	_, err := entity.NewSolid(h.w, 1600, 300, 64, 600)
	require.NoError(t, err)
	h.aimAt(1600, 300)
	h.press()
	h.step()

	handle, ok := h.controller().CurrentAnchor()
	require.True(t, ok)
	line, ok := ecs.Get(h.w, ecs.Entity(handle), component.LineRenderComponent.Kind())
	require.True(t, ok)
	x, _ := h.position()
	require.Greater(t, line.EndX, line.StartX)
	require.InDelta(t, 1568, line.EndX, 1)
	require.Less(t, line.StartX, x+1)
}

func TestGrappleSystemReloadConfig(t *testing.T) {
	h := newHarness(t, 100, 300)
	_, err := entity.NewSolid(h.w, 1600, 300, 64, 600)
	require.NoError(t, err)
	h.aimAt(1600, 300)
	h.step()

	cfg := grapple.DefaultConfig()
	cfg.InitialSpeed = 900
	require.NoError(t, h.grapple.ReloadConfig(h.w, cfg))

	g, _ := ecs.Get(h.w, h.player, component.GrapplerComponent.Kind())
	require.Equal(t, 900.0, g.Config.InitialSpeed)
	require.Equal(t, 900.0, h.controller().Config().InitialSpeed)

	bad := cfg
	bad.MaxSpeed = 1
	require.ErrorIs(t, h.grapple.ReloadConfig(h.w, bad), grapple.ErrInvalidConfig)
	require.Equal(t, 900.0, g.Config.InitialSpeed)
}

func TestGrappleSystemDestroyedPlayerDropsAnchor(t *testing.T) {
	h := newHarness(t, 100, 300)
	_, err := entity.NewSolid(h.w, 1600, 300, 64, 600)
	require.NoError(t, err)
	h.aimAt(1600, 300)
	h.press()
	require.Equal(t, 1, countAnchors(h.w))

	ecs.DestroyEntity(h.w, h.player)
	h.sched.Update(h.w)

	require.Equal(t, 0, countAnchors(h.w))
	_, ok := h.grapple.Controller(h.player)
	require.False(t, ok)
}

func TestAttachGrappleRequiresComponents(t *testing.T) {
	w := ecs.NewWorld()
	gs := NewGrappleSystem(NewPhysicsSystem(), WithGrappleLogger(log.New(&bytes.Buffer{}, "", 0)))

	e := ecs.CreateEntity(w)
	_, err := gs.AttachGrapple(w, e)
	require.Error(t, err)

	require.NoError(t, ecs.Add(w, e, component.GrapplerComponent.Kind(), &component.Grappler{Config: grapple.DefaultConfig()}))
	_, err = gs.AttachGrapple(w, e)
	require.ErrorContains(t, err, "physics body")
}
