package grapple

import (
	"errors"
	"fmt"
	"log"

	"github.com/jakecoffman/cp"
)

var (
	ErrMissingHost          = errors.New("grapple: host is nil")
	ErrMissingAimer         = errors.New("grapple: aimer is nil")
	ErrMissingWorldQuery    = errors.New("grapple: world query is nil")
	ErrMissingAnchorSpawner = errors.New("grapple: anchor spawner is nil")
)

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateAttached
)

func (s State) String() string {
	if s == StateAttached {
		return "attached"
	}
	return "idle"
}

type hostSnapshot struct {
	gravityScale  float64
	controlFacing bool
}

// session only exists while attached.
type session struct {
	cfg    Config
	anchor AnchorHandle
	target Target
	point  cp.Vector
	dir    cp.Vector
	ramp   Ramp
	saved  *hostSnapshot
}

// Controller runs the grapple for one host. It is not safe for concurrent
// use; all calls are expected from the simulation's update loop.
type Controller struct {
	Emitter Emitter

	host    Host
	aim     Aimer
	query   WorldQuery
	anchors AnchorSpawner
	cfg     Config
	logger  *log.Logger

	sess *session
}

type Option func(c *Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithHandlers(handlers ...Handler) Option {
	return func(c *Controller) {
		for _, h := range handlers {
			c.Emitter.Subscribe(h)
		}
	}
}

// New wires a controller to its collaborators. Every collaborator is
// required; a missing one is a setup error.
func New(host Host, aim Aimer, query WorldQuery, anchors AnchorSpawner, cfg Config, opts ...Option) (*Controller, error) {
	switch {
	case host == nil:
		return nil, fmt.Errorf("new controller: %w", ErrMissingHost)
	case aim == nil:
		return nil, fmt.Errorf("new controller: %w", ErrMissingAimer)
	case query == nil:
		return nil, fmt.Errorf("new controller: %w", ErrMissingWorldQuery)
	case anchors == nil:
		return nil, fmt.Errorf("new controller: %w", ErrMissingAnchorSpawner)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new controller: %w", err)
	}

	c := &Controller{
		host:    host,
		aim:     aim,
		query:   query,
		anchors: anchors,
		cfg:     cfg,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// SetConfig replaces the tuning. A running session keeps the config it
// started with.
func (c *Controller) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) activeConfig() Config {
	if c.sess != nil {
		return c.sess.cfg
	}
	return c.cfg
}

func (c *Controller) State() State {
	if c == nil || c.sess == nil {
		return StateIdle
	}
	return StateAttached
}

func (c *Controller) IsActive() bool {
	return c.State() == StateAttached
}

// HasValidTarget reports whether Activate would start a session right now.
func (c *Controller) HasValidTarget() bool {
	if c == nil || c.sess != nil {
		return false
	}
	_, ok := c.ResolveTarget()
	return ok
}

func (c *Controller) CurrentAnchor() (AnchorHandle, bool) {
	if c == nil || c.sess == nil {
		return 0, false
	}
	return c.sess.anchor, true
}

// AnchorPoint is the anchor position as of the last tick.
func (c *Controller) AnchorPoint() (cp.Vector, bool) {
	if c == nil || c.sess == nil {
		return cp.Vector{}, false
	}
	return c.sess.point, true
}

// Speed is the current flight speed, zero when idle.
func (c *Controller) Speed() float64 {
	if c == nil || c.sess == nil {
		return 0
	}
	return c.sess.ramp.Speed()
}

// Activate is the single input command. A press while attached always
// cancels; otherwise it tries to attach to whatever the aim ray hits.
func (c *Controller) Activate() {
	if c == nil {
		return
	}
	if c.sess != nil {
		c.end(ExitCancel)
		return
	}

	hit, ok := c.ResolveTarget()
	if !ok {
		c.logger.Printf("grapple: no target within %.0f", c.cfg.MaxRange)
		c.Emitter.Emit(Event{Kind: EventNoTarget})
		return
	}
	c.begin(hit)
}

// Cancel ends the current session. It is a no-op when idle.
func (c *Controller) Cancel() {
	if c == nil {
		return
	}
	c.end(ExitCancel)
}

func (c *Controller) begin(hit Hit) {
	// The anchor is placed before the host is touched so a spawn failure
	// leaves nothing half applied.
	anchor, err := c.anchors.SpawnAnchor(hit.Point)
	if err != nil {
		c.logger.Printf("grapple: spawn anchor at %v: %v", hit.Point, err)
		c.Emitter.Emit(Event{Kind: EventNoTarget, Point: hit.Point})
		return
	}
	if err := c.anchors.AttachAnchor(anchor, hit.Target, true); err != nil {
		c.anchors.DestroyAnchor(anchor)
		c.logger.Printf("grapple: attach anchor to %d: %v", hit.Target, err)
		c.Emitter.Emit(Event{Kind: EventNoTarget, Point: hit.Point})
		return
	}

	cfg := c.cfg
	s := &session{
		cfg:    cfg,
		anchor: anchor,
		target: hit.Target,
		point:  hit.Point,
		ramp:   NewRamp(cfg.InitialSpeed, cfg.MaxSpeed, cfg.RampDuration),
		saved: &hostSnapshot{
			gravityScale:  c.host.GravityScale(),
			controlFacing: c.host.ControlFacing(),
		},
	}

	c.host.SetMovementMode(ModeFlying)
	c.host.SetGravityScale(0)
	c.host.SetIgnoreMoveInput(true)
	c.host.SetControlFacing(false)

	if dir, dist := directionTo(c.host.Position(), hit.Point); dist > 0 {
		s.dir = dir
		c.host.SetFacing(FacingAngle(dir, cfg.FlattenFacing))
	}

	c.sess = s
	c.Emitter.Emit(Event{Kind: EventStarted, Point: hit.Point, Speed: s.ramp.Speed()})
	c.logger.Printf("grapple: attached at (%.1f, %.1f) target=%d", hit.Point.X, hit.Point.Y, hit.Target)
}

// Tick integrates one simulation step while attached. Velocity and facing
// are written to the host before it runs its own movement step.
func (c *Controller) Tick(dt float64) {
	if c == nil || c.sess == nil {
		return
	}
	s := c.sess

	point, ok := c.anchors.AnchorPosition(s.anchor)
	if !ok {
		c.end(ExitAnchorLost)
		return
	}
	s.point = point

	dir, dist := directionTo(c.host.Position(), point)
	if dist <= s.cfg.ReleaseDistance {
		c.end(ExitArrival)
		return
	}
	if dist > s.cfg.MaxRange {
		c.end(ExitOutOfRange)
		return
	}

	s.dir = dir
	speed := s.ramp.Advance(dt)
	c.host.SetVelocity(dir.Mult(speed))
	c.host.SetFacing(FacingAngle(dir, s.cfg.FlattenFacing))

	if s.cfg.ObstructionCheck && c.IsObstructed(dir) {
		c.end(ExitObstruction)
	}
}

// end is the shared exit path for every way a session finishes.
func (c *Controller) end(reason ExitReason) {
	s := c.sess
	if s == nil {
		return
	}

	c.anchors.DestroyAnchor(s.anchor)
	c.sess = nil

	c.host.SetIgnoreMoveInput(false)
	c.host.SetMovementMode(ModeGrounded)

	gravity, controlFacing := 1.0, false
	if s.saved != nil {
		gravity = s.saved.gravityScale
		controlFacing = s.saved.controlFacing
	}
	c.host.SetGravityScale(gravity)
	c.host.SetControlFacing(controlFacing)

	if s.cfg.Impulse.Applies(reason) && s.dir.LengthSq() > 0 {
		impulse := ReleaseImpulse(s.dir, s.ramp.Speed(), s.cfg.ReleaseVelocityMultiplier)
		c.host.SetVelocity(c.host.Velocity().Add(impulse))
	}

	c.Emitter.Emit(Event{Kind: EventEnded, Reason: reason, Point: s.point, Speed: s.ramp.Speed()})
	c.logger.Printf("grapple: released (%s)", reason)
}
