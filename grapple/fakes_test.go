package grapple

import (
	"errors"

	"github.com/jakecoffman/cp"
)

type fakeHost struct {
	pos           cp.Vector
	vel           cp.Vector
	mode          Mode
	gravity       float64
	ignoreInput   bool
	controlFacing bool
	facing        float64
	velocitySets  int
}

func newFakeHost() *fakeHost {
	return &fakeHost{gravity: 1}
}

func (h *fakeHost) Position() cp.Vector { return h.pos }
func (h *fakeHost) Velocity() cp.Vector { return h.vel }
func (h *fakeHost) SetVelocity(v cp.Vector) {
	h.vel = v
	h.velocitySets++
}
func (h *fakeHost) SetMovementMode(mode Mode)      { h.mode = mode }
func (h *fakeHost) GravityScale() float64          { return h.gravity }
func (h *fakeHost) SetGravityScale(scale float64)  { h.gravity = scale }
func (h *fakeHost) SetIgnoreMoveInput(ignore bool) { h.ignoreInput = ignore }
func (h *fakeHost) ControlFacing() bool            { return h.controlFacing }
func (h *fakeHost) SetControlFacing(control bool)  { h.controlFacing = control }
func (h *fakeHost) SetFacing(angle float64)        { h.facing = angle }

// integrate stands in for the host's own movement step.
func (h *fakeHost) integrate(dt float64) {
	h.pos = h.pos.Add(h.vel.Mult(dt))
}

type fakeAimer struct {
	origin cp.Vector
	dir    cp.Vector
	off    bool
}

func (a *fakeAimer) Aim() (cp.Vector, cp.Vector, bool) {
	return a.origin, a.dir, !a.off
}

type rayCall struct {
	from, to cp.Vector
}

type fakeWorld struct {
	hit        *Hit
	obstructed bool
	rays       []rayCall
	sweeps     int
}

func (w *fakeWorld) RayCast(from, to cp.Vector) (Hit, bool) {
	w.rays = append(w.rays, rayCall{from: from, to: to})
	if w.hit == nil {
		return Hit{}, false
	}
	return *w.hit, true
}

func (w *fakeWorld) SweepBox(from, to, halfExtents cp.Vector) bool {
	w.sweeps++
	return w.obstructed
}

type fakeAnchor struct {
	pos      cp.Vector
	target   Target
	attached bool
}

type fakeAnchors struct {
	next      AnchorHandle
	live      map[AnchorHandle]*fakeAnchor
	destroyed []AnchorHandle
	spawnErr  error
	attachErr error
}

func newFakeAnchors() *fakeAnchors {
	return &fakeAnchors{live: map[AnchorHandle]*fakeAnchor{}}
}

func (a *fakeAnchors) SpawnAnchor(point cp.Vector) (AnchorHandle, error) {
	if a.spawnErr != nil {
		return 0, a.spawnErr
	}
	a.next++
	a.live[a.next] = &fakeAnchor{pos: point}
	return a.next, nil
}

func (a *fakeAnchors) AttachAnchor(anchor AnchorHandle, target Target, preserveWorld bool) error {
	if a.attachErr != nil {
		return a.attachErr
	}
	fa, ok := a.live[anchor]
	if !ok {
		return errors.New("unknown anchor")
	}
	fa.target = target
	fa.attached = true
	return nil
}

func (a *fakeAnchors) AnchorPosition(anchor AnchorHandle) (cp.Vector, bool) {
	fa, ok := a.live[anchor]
	if !ok {
		return cp.Vector{}, false
	}
	return fa.pos, true
}

func (a *fakeAnchors) DestroyAnchor(anchor AnchorHandle) {
	if _, ok := a.live[anchor]; !ok {
		return
	}
	delete(a.live, anchor)
	a.destroyed = append(a.destroyed, anchor)
}

func (a *fakeAnchors) move(anchor AnchorHandle, pos cp.Vector) {
	if fa, ok := a.live[anchor]; ok {
		fa.pos = pos
	}
}
