package grapple

import (
	"bytes"
	"errors"
	"log"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/require"
)

type rig struct {
	host    *fakeHost
	aim     *fakeAimer
	world   *fakeWorld
	anchors *fakeAnchors
	logs    *bytes.Buffer
	events  []Event
	c       *Controller
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{
		host:    newFakeHost(),
		aim:     &fakeAimer{dir: cp.Vector{X: 1}},
		world:   &fakeWorld{},
		anchors: newFakeAnchors(),
		logs:    &bytes.Buffer{},
	}
	c, err := New(r.host, r.aim, r.world, r.anchors, cfg,
		WithLogger(log.New(r.logs, "", 0)),
		WithHandlers(func(evt Event) { r.events = append(r.events, evt) }),
	)
	require.NoError(t, err)
	r.c = c
	return r
}

func (r *rig) hitAt(x, y float64, target Target) {
	r.world.hit = &Hit{Point: cp.Vector{X: x, Y: y}, Target: target, Distance: math.Hypot(x, y)}
}

func (r *rig) kinds() []EventKind {
	out := make([]EventKind, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.Kind)
	}
	return out
}

func scenarioConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxRange = 10000
	cfg.ReleaseDistance = 100
	cfg.InitialSpeed = 500
	cfg.MaxSpeed = 2000
	cfg.RampDuration = 1.0
	cfg.ObstructionCheck = false
	return cfg
}

func TestNewRequiresCollaborators(t *testing.T) {
	host := newFakeHost()
	aim := &fakeAimer{}
	world := &fakeWorld{}
	anchors := newFakeAnchors()

	tests := []struct {
		name    string
		host    Host
		aim     Aimer
		query   WorldQuery
		anchors AnchorSpawner
		want    error
	}{
		{"missing_host", nil, aim, world, anchors, ErrMissingHost},
		{"missing_aimer", host, nil, world, anchors, ErrMissingAimer},
		{"missing_query", host, aim, nil, anchors, ErrMissingWorldQuery},
		{"missing_anchors", host, aim, world, nil, ErrMissingAnchorSpawner},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.host, tc.aim, tc.query, tc.anchors, DefaultConfig())
			require.Nil(t, c)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSpeed = cfg.InitialSpeed - 1

	_, err := New(newFakeHost(), &fakeAimer{}, &fakeWorld{}, newFakeAnchors(), cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestActivateWithoutTarget(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.host.gravity = 0.7

	r.c.Activate()

	require.False(t, r.c.IsActive())
	require.Equal(t, StateIdle, r.c.State())
	require.Equal(t, []EventKind{EventNoTarget}, r.kinds())
	require.Contains(t, r.logs.String(), "no target")
	require.Equal(t, 0.7, r.host.gravity)
	require.Equal(t, ModeGrounded, r.host.mode)
	require.False(t, r.host.ignoreInput)
	require.Empty(t, r.anchors.live)

	_, ok := r.c.CurrentAnchor()
	require.False(t, ok)
}

func TestActivateRayUsesAimAndRange(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.aim.origin = cp.Vector{X: 10, Y: 20}
	r.aim.dir = cp.Vector{X: 0, Y: -3}

	r.c.Activate()

	require.Len(t, r.world.rays, 1)
	require.Equal(t, cp.Vector{X: 10, Y: 20}, r.world.rays[0].from)
	require.InDelta(t, 10, r.world.rays[0].to.X, 1e-9)
	require.InDelta(t, 20-10000, r.world.rays[0].to.Y, 1e-9)
}

func TestActivateStartsSession(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.host.gravity = 1.5
	r.host.controlFacing = true
	r.hitAt(-5000, 0, 42)

	r.c.Activate()

	require.True(t, r.c.IsActive())
	require.Equal(t, ModeFlying, r.host.mode)
	require.Equal(t, 0.0, r.host.gravity)
	require.True(t, r.host.ignoreInput)
	require.False(t, r.host.controlFacing)
	require.Equal(t, math.Pi, r.host.facing)
	require.Equal(t, 500.0, r.c.Speed())

	anchor, ok := r.c.CurrentAnchor()
	require.True(t, ok)
	require.Equal(t, Target(42), r.anchors.live[anchor].target)
	require.True(t, r.anchors.live[anchor].attached)

	point, ok := r.c.AnchorPoint()
	require.True(t, ok)
	require.Equal(t, cp.Vector{X: -5000}, point)

	require.Equal(t, []EventKind{EventStarted}, r.kinds())
	require.Equal(t, cp.Vector{X: -5000}, r.events[0].Point)
	require.Equal(t, 500.0, r.events[0].Speed)

	r.c.Tick(1.0 / 60.0)
	require.False(t, r.host.controlFacing, "facing control stays off in flight")
}

func TestEndedEventCarriesExitSpeed(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(5000, 0, 1)
	var seen []float64
	r.c.Emitter.Subscribe(func(evt Event) {
		if evt.Kind == EventEnded {
			seen = append(seen, evt.Speed, r.c.Speed())
		}
	})

	r.c.Activate()
	for i := 0; i < 30; i++ {
		r.c.Tick(1.0 / 60.0)
	}
	r.c.Cancel()

	require.Len(t, seen, 2)
	require.InDelta(t, 1250, seen[0], 1e-6)
	require.Zero(t, seen[1], "controller is idle by the time handlers run")
}

func TestActivateTogglesInsteadOfStacking(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(5000, 0, 1)

	for i := 0; i < 7; i++ {
		r.c.Activate()
		require.LessOrEqual(t, len(r.anchors.live), 1)
		require.Equal(t, i%2 == 0, r.c.IsActive(), "press %d", i)
	}

	ended := 0
	for _, evt := range r.events {
		if evt.Kind == EventEnded {
			ended++
			require.Equal(t, ExitCancel, evt.Reason)
		}
	}
	require.Equal(t, 3, ended)
	require.Len(t, r.anchors.destroyed, 3)
}

func TestSecondPressCancelsEvenWithoutTarget(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(5000, 0, 1)
	r.c.Activate()
	require.True(t, r.c.IsActive())

	r.world.hit = nil
	r.c.Activate()

	require.False(t, r.c.IsActive())
	require.Equal(t, []EventKind{EventStarted, EventEnded}, r.kinds())
}

func TestExitRestoresSnapshot(t *testing.T) {
	tests := []struct {
		gravity       float64
		controlFacing bool
	}{
		{1, false},
		{0.25, true},
		{2.5, false},
		{0, true},
	}
	for _, tc := range tests {
		r := newRig(t, scenarioConfig())
		r.host.gravity = tc.gravity
		r.host.controlFacing = tc.controlFacing
		r.hitAt(5000, 0, 1)

		r.c.Activate()
		r.c.Tick(0.1)
		r.c.Cancel()

		require.Equal(t, tc.gravity, r.host.gravity)
		require.Equal(t, tc.controlFacing, r.host.controlFacing)
		require.Equal(t, ModeGrounded, r.host.mode)
		require.False(t, r.host.ignoreInput)
	}
}

func TestExitWithoutSnapshotUsesDefaults(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(5000, 0, 1)
	r.c.Activate()
	r.c.sess.saved = nil
	r.host.controlFacing = true

	r.c.Cancel()

	require.Equal(t, 1.0, r.host.gravity)
	require.False(t, r.host.controlFacing)
}

func TestCancelWhenIdleIsNoop(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.host.gravity = 0.3
	r.host.mode = ModeFlying
	r.host.ignoreInput = true

	r.c.Cancel()
	r.c.Cancel()
	r.c.Tick(0.5)

	require.Empty(t, r.events)
	require.Equal(t, 0.3, r.host.gravity)
	require.Equal(t, ModeFlying, r.host.mode)
	require.True(t, r.host.ignoreInput)
	require.Zero(t, r.host.velocitySets)
}

func TestRampScenario(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(5000, 0, 1)

	r.c.Activate()
	require.Equal(t, 500.0, r.c.Speed())

	r.c.Tick(0.5)
	require.Equal(t, 1250.0, r.c.Speed())
	r.c.Tick(0.5)
	require.Equal(t, 2000.0, r.c.Speed())
	r.c.Tick(0.5)
	require.Equal(t, 2000.0, r.c.Speed())
	require.InDelta(t, 2000, r.host.vel.X, 1e-6)

	const dt = 1.0 / 60.0
	anchor := cp.Vector{X: 5000}
	last := anchor.Sub(r.host.pos).Length()
	for i := 0; i < 1000 && r.c.IsActive(); i++ {
		r.host.integrate(dt)
		dist := anchor.Sub(r.host.pos).Length()
		require.Less(t, dist, last)
		last = dist
		r.c.Tick(dt)
	}
	require.False(t, r.c.IsActive())
	require.LessOrEqual(t, last, 100.0)

	end := r.events[len(r.events)-1]
	require.Equal(t, EventEnded, end.Kind)
	require.Equal(t, ExitArrival, end.Reason)

	// no release impulse on arrival by default and no further overrides
	sets := r.host.velocitySets
	require.InDelta(t, 2000, r.host.vel.X, 1e-6)
	r.c.Tick(dt)
	require.Equal(t, sets, r.host.velocitySets)
	require.Equal(t, 1.0, r.host.gravity)
}

func TestArrivalEndsOnFirstTickWithinReleaseDistance(t *testing.T) {
	cfg := scenarioConfig()
	cfg.InitialSpeed = 480
	cfg.MaxSpeed = 480
	cfg.RampDuration = 0
	r := newRig(t, cfg)
	r.hitAt(500, 0, 1)
	r.c.Activate()

	const dt = 0.125
	anchor := cp.Vector{X: 500}
	endedAt := -1
	for tick := 0; tick < 100; tick++ {
		before := anchor.Sub(r.host.pos).Length()
		r.c.Tick(dt)
		if before <= cfg.ReleaseDistance {
			require.False(t, r.c.IsActive(), "tick %d", tick)
			endedAt = tick
			break
		}
		require.True(t, r.c.IsActive(), "tick %d", tick)
		r.host.integrate(dt)
	}
	require.Equal(t, 7, endedAt)
	require.Equal(t, ExitArrival, r.events[len(r.events)-1].Reason)
}

func TestObstructionEndsSessionWithImpulse(t *testing.T) {
	cfg := scenarioConfig()
	cfg.ObstructionCheck = true
	r := newRig(t, cfg)
	r.hitAt(5000, 0, 1)
	r.host.gravity = 0.8
	r.c.Activate()

	r.c.Tick(0.25)
	require.True(t, r.c.IsActive())
	require.Equal(t, 1, r.world.sweeps)

	r.world.obstructed = true
	r.c.Tick(0.25)

	require.False(t, r.c.IsActive())
	end := r.events[len(r.events)-1]
	require.Equal(t, EventEnded, end.Kind)
	require.Equal(t, ExitObstruction, end.Reason)
	require.Equal(t, 0.8, r.host.gravity)
	// 1250 from the ramp plus half of it as release impulse
	require.InDelta(t, 1875, r.host.vel.X, 1e-6)
}

func TestObstructionCheckDisabled(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(5000, 0, 1)
	r.world.obstructed = true
	r.c.Activate()

	r.c.Tick(0.1)

	require.True(t, r.c.IsActive())
	require.Zero(t, r.world.sweeps)
}

func TestReleaseImpulsePolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy ImpulsePolicy
		reason ExitReason
		want   bool
	}{
		{"arrival_off", ImpulsePolicy{OnCancel: true, OnObstruction: true}, ExitArrival, false},
		{"arrival_on", ImpulsePolicy{OnArrival: true}, ExitArrival, true},
		{"cancel_on", ImpulsePolicy{OnCancel: true}, ExitCancel, true},
		{"cancel_off", ImpulsePolicy{OnArrival: true, OnObstruction: true}, ExitCancel, false},
		{"obstruction_on", ImpulsePolicy{OnObstruction: true}, ExitObstruction, true},
		{"obstruction_off", ImpulsePolicy{OnCancel: true}, ExitObstruction, false},
		{"anchor_lost_follows_cancel", ImpulsePolicy{OnCancel: true}, ExitAnchorLost, true},
		{"out_of_range_follows_cancel", ImpulsePolicy{}, ExitOutOfRange, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.policy.Applies(tc.reason))
		})
	}
}

func TestCancelAddsImpulseToExistingVelocity(t *testing.T) {
	cfg := scenarioConfig()
	cfg.ReleaseVelocityMultiplier = 1
	r := newRig(t, cfg)
	r.hitAt(0, -5000, 1)
	r.c.Activate()
	r.host.vel = cp.Vector{X: 30, Y: 0}

	r.c.Cancel()

	require.InDelta(t, 30, r.host.vel.X, 1e-9)
	require.InDelta(t, -500, r.host.vel.Y, 1e-9)
}

func TestMovingAnchorIsTracked(t *testing.T) {
	cfg := scenarioConfig()
	cfg.FlattenFacing = false
	r := newRig(t, cfg)
	r.hitAt(1000, 0, 7)
	r.c.Activate()
	anchor, _ := r.c.CurrentAnchor()

	r.anchors.move(anchor, cp.Vector{X: 0, Y: 1000})
	r.c.Tick(0.1)

	require.True(t, r.c.IsActive())
	point, _ := r.c.AnchorPoint()
	require.Equal(t, cp.Vector{Y: 1000}, point)
	require.InDelta(t, 0, r.host.vel.X, 1e-9)
	require.Greater(t, r.host.vel.Y, 0.0)
	require.InDelta(t, math.Pi/2, r.host.facing, 1e-9)
}

func TestAnchorLostEndsSession(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(1000, 0, 7)
	r.c.Activate()
	anchor, _ := r.c.CurrentAnchor()
	delete(r.anchors.live, anchor)

	r.c.Tick(0.1)

	require.False(t, r.c.IsActive())
	require.Equal(t, ExitAnchorLost, r.events[len(r.events)-1].Reason)
}

func TestAnchorOutOfRangeEndsSession(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(1000, 0, 7)
	r.c.Activate()
	anchor, _ := r.c.CurrentAnchor()
	r.anchors.move(anchor, cp.Vector{X: 20000})

	r.c.Tick(0.1)

	require.False(t, r.c.IsActive())
	require.Equal(t, ExitOutOfRange, r.events[len(r.events)-1].Reason)
	require.Equal(t, []AnchorHandle{anchor}, r.anchors.destroyed)
}

func TestHasValidTarget(t *testing.T) {
	r := newRig(t, scenarioConfig())
	require.False(t, r.c.HasValidTarget())

	r.hitAt(300, 0, 1)
	require.True(t, r.c.HasValidTarget())
	require.True(t, r.c.HasValidTarget())
	require.False(t, r.c.IsActive())
	require.Empty(t, r.events)
	require.Zero(t, r.host.velocitySets)

	r.c.Activate()
	require.False(t, r.c.HasValidTarget())

	_, ok := r.c.ResolveTarget()
	require.True(t, ok)
}

func TestAimUnavailable(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(300, 0, 1)
	r.aim.off = true

	r.c.Activate()

	require.False(t, r.c.IsActive())
	require.Empty(t, r.world.rays)
}

func TestAnchorSpawnFailureLeavesHostUntouched(t *testing.T) {
	tests := []struct {
		name      string
		spawnErr  error
		attachErr error
	}{
		{"spawn", errors.New("no prefab"), nil},
		{"attach", nil, errors.New("target gone")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, scenarioConfig())
			r.hitAt(300, 0, 1)
			r.anchors.spawnErr = tc.spawnErr
			r.anchors.attachErr = tc.attachErr
			r.host.gravity = 0.5

			r.c.Activate()

			require.False(t, r.c.IsActive())
			require.Equal(t, 0.5, r.host.gravity)
			require.Equal(t, ModeGrounded, r.host.mode)
			require.Empty(t, r.anchors.live)
			require.Equal(t, []EventKind{EventNoTarget}, r.kinds())
		})
	}
}

func TestSetConfigAppliesToNextSession(t *testing.T) {
	r := newRig(t, scenarioConfig())
	r.hitAt(5000, 0, 1)
	r.c.Activate()

	next := scenarioConfig()
	next.InitialSpeed = 900
	next.MaxSpeed = 900
	require.NoError(t, r.c.SetConfig(next))

	r.c.Tick(0.5)
	require.Equal(t, 1250.0, r.c.Speed())

	r.c.Cancel()
	r.c.Activate()
	require.Equal(t, 900.0, r.c.Speed())

	bad := next
	bad.MaxRange = -1
	require.ErrorIs(t, r.c.SetConfig(bad), ErrInvalidConfig)
	require.Equal(t, 900.0, r.c.Config().InitialSpeed)
}
