package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/grapplehook/common"
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"github.com/milk9111/grapplehook/grapple"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypePlayerGround
	collisionTypeSolid
)

const groundGraceFrames = 4

type PhysicsSystem struct {
	space         *cp.Space
	step          float64
	handlersReady bool

	entities     map[ecs.Entity]*bodyInfo
	shapeOwners  map[*cp.Shape]ecs.Entity
	groundShapes map[*cp.Shape]ecs.Entity
	contacts     map[ecs.Entity]*playerContactState
}

type bodyInfo struct {
	body        *cp.Body
	mainShape   *cp.Shape
	groundShape *cp.Shape
	shapes      []*cp.Shape
	static      bool
	// gravityScale is read by the body's velocity update func every step.
	gravityScale float64
}

type playerContactState struct {
	grounded    bool
	groundGrace int
}

func NewPhysicsSystem() *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: common.Gravity})
	return &PhysicsSystem{
		space:        space,
		step:         common.FixedStep,
		entities:     make(map[ecs.Entity]*bodyInfo),
		shapeOwners:  make(map[*cp.Shape]ecs.Entity),
		groundShapes: make(map[*cp.Shape]ecs.Entity),
		contacts:     make(map[ecs.Entity]*playerContactState),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	ps.ensureHandlers()
	ps.syncEntities(w)
	ps.syncWorldBounds(w)
	ps.syncGravityScales(w)
	ps.resetPlayerContacts(w)

	ps.space.Step(ps.step)

	ps.syncTransforms(w)
	ps.flushPlayerContacts(w)
}

// Sync registers new bodies without stepping the space. Systems that run
// before physics call it so freshly spawned entities are queryable.
func (ps *PhysicsSystem) Sync(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.syncEntities(w)
	ps.syncWorldBounds(w)
}

// Body returns the Chipmunk body backing e.
func (ps *PhysicsSystem) Body(e ecs.Entity) (*cp.Body, bool) {
	if ps == nil {
		return nil, false
	}
	info, ok := ps.entities[e]
	if !ok || info.body == nil || info.static {
		return nil, false
	}
	return info.body, true
}

func queryFilter(exclude ecs.Entity) cp.ShapeFilter {
	return cp.ShapeFilter{Group: uint(exclude), Categories: cp.ALL_CATEGORIES, Mask: cp.ALL_CATEGORIES}
}

// RayCast returns the first solid shape on the segment from -> to, skipping
// sensors and every shape owned by exclude. Level bounds report Target 0.
func (ps *PhysicsSystem) RayCast(from, to cp.Vector, exclude ecs.Entity) (grapple.Hit, bool) {
	if ps == nil || ps.space == nil {
		return grapple.Hit{}, false
	}
	info := ps.space.SegmentQueryFirst(from, to, 0, queryFilter(exclude))
	if info.Shape == nil {
		return grapple.Hit{}, false
	}
	hit := grapple.Hit{
		Point:    info.Point,
		Normal:   info.Normal,
		Distance: from.Distance(to) * info.Alpha,
	}
	if owner, ok := ps.shapeOwners[info.Shape]; ok {
		hit.Target = grapple.Target(owner)
	}
	return hit, true
}

// sweepSamples bounds how many overlap tests a sweep runs.
const sweepSamples = 8

// SweepBox reports whether a box with the given half extents, oriented along
// the sweep, overlaps solid geometry anywhere between from and to.
func (ps *PhysicsSystem) SweepBox(from, to, halfExtents cp.Vector, exclude ecs.Entity) bool {
	if ps == nil || ps.space == nil || halfExtents.X <= 0 || halfExtents.Y <= 0 {
		return false
	}
	delta := to.Sub(from)
	angle := 0.0
	if delta.LengthSq() > 0 {
		angle = math.Atan2(delta.Y, delta.X)
	}

	probe := cp.NewKinematicBody()
	probe.SetAngle(angle)
	box := cp.NewBox(probe, halfExtents.X*2, halfExtents.Y*2, 0)
	box.SetFilter(queryFilter(exclude))

	samples := sweepSamples
	if delta.Length() < halfExtents.X {
		samples = 1
	}
	for i := 1; i <= samples; i++ {
		t := float64(i) / float64(samples)
		probe.SetPosition(from.Add(delta.Mult(t)))
		blocked := false
		ps.space.ShapeQuery(box, func(shape *cp.Shape, points *cp.ContactPointSet) {
			if shape.Sensor() || points == nil || points.Count == 0 {
				return
			}
			blocked = true
		})
		if blocked {
			return true
		}
	}
	return false
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	groundHandler := ps.space.NewCollisionHandler(collisionTypePlayerGround, collisionTypeSolid)
	groundHandler.UserData = ps
	groundHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		playerEntity, okA := sys.groundShapes[shapeA]
		if !okA {
			var okB bool
			playerEntity, okB = sys.groundShapes[shapeB]
			if !okB {
				return true
			}
		}

		n := arb.Normal()
		if !okA {
			n = n.Neg()
		}
		// Grounded only when the contact normal points down from the player
		// into the floor (+Y in screen coordinates).
		if n.Y <= 0.5 {
			return true
		}
		st := sys.contacts[playerEntity]
		if st == nil {
			st = &playerContactState{}
			sys.contacts[playerEntity] = st
		}
		st.grounded = true
		st.groundGrace = groundGraceFrames
		return true
	}

	ps.handlersReady = true
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	if ps.space == nil {
		return
	}

	ps.cleanupEntities(w)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if info := ps.entities[e]; info != nil {
			if bodyComp.Body == nil || bodyComp.Shape == nil {
				bodyComp.Body = info.body
				bodyComp.Shape = info.mainShape
			}
			return
		}

		isPlayer := ecs.Has(w, e, component.PlayerTagComponent.Kind())
		isAnchor := ecs.Has(w, e, component.AnchorTagComponent.Kind())

		info := ps.createBodyInfo(e, transform, bodyComp, isPlayer, isAnchor)
		if info == nil || info.mainShape == nil {
			return
		}

		ps.entities[e] = info
		for _, shape := range info.shapes {
			ps.shapeOwners[shape] = e
		}
		if info.groundShape != nil {
			ps.groundShapes[info.groundShape] = e
		}
		bodyComp.Body = info.body
		bodyComp.Shape = info.mainShape
	})
}

func (ps *PhysicsSystem) createBodyInfo(e ecs.Entity, transform *component.Transform, bodyComp *component.PhysicsBody, isPlayer bool, isAnchor bool) *bodyInfo {
	width := bodyComp.Width
	height := bodyComp.Height
	radius := bodyComp.Radius

	if radius <= 0 && (width <= 0 || height <= 0) {
		width = 32
		height = 32
	}

	center := cp.Vector{X: transform.X, Y: transform.Y}
	info := &bodyInfo{static: bodyComp.Static, gravityScale: 1}

	if bodyComp.Static {
		var shape *cp.Shape
		if radius > 0 {
			shape = cp.NewCircle(ps.space.StaticBody, radius, center)
		} else {
			bb := cp.BB{L: center.X - width/2, B: center.Y - height/2, R: center.X + width/2, T: center.Y + height/2}
			shape = cp.NewBox2(ps.space.StaticBody, bb, 0)
		}
		shape.SetFriction(bodyComp.Friction)
		shape.SetElasticity(bodyComp.Elasticity)
		shape.SetCollisionType(collisionTypeSolid)
		if isAnchor {
			shape.SetSensor(true)
		}
		ps.space.AddShape(shape)

		info.body = ps.space.StaticBody
		info.mainShape = shape
		info.shapes = []*cp.Shape{shape}
		return info
	}

	var body *cp.Body
	if bodyComp.Kinematic {
		body = cp.NewKinematicBody()
	} else {
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		// Characters never tip over.
		moment := math.Inf(1)
		if !isPlayer {
			if radius > 0 {
				moment = cp.MomentForCircle(mass, 0, radius, cp.Vector{})
			} else {
				moment = cp.MomentForBox(mass, width, height)
			}
		}
		body = cp.NewBody(mass, moment)
		body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
			cp.BodyUpdateVelocity(body, gravity.Mult(info.gravityScale), damping, dt)
		})
	}
	body.SetPosition(center)
	body.SetAngle(transform.Rotation)
	body.SetAngularVelocity(0)

	var shape *cp.Shape
	if radius > 0 {
		shape = cp.NewCircle(body, radius, cp.Vector{})
	} else {
		shape = cp.NewBox(body, width, height, 0)
	}

	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetCollisionType(collisionTypeSolid)
	if isAnchor {
		shape.SetSensor(true)
	}

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	info.body = body
	info.mainShape = shape
	info.shapes = []*cp.Shape{shape}

	if isPlayer {
		// Grouping keeps the player's own shapes out of its ray casts.
		shape.SetCollisionType(collisionTypePlayer)
		shape.SetFilter(queryFilter(e))
		if groundShape := ps.createGroundSensor(bodyComp, body); groundShape != nil {
			groundShape.SetFilter(queryFilter(e))
			ps.space.AddShape(groundShape)
			info.groundShape = groundShape
			info.shapes = append(info.shapes, groundShape)
		}
	}

	return info
}

func (ps *PhysicsSystem) createGroundSensor(bodyComp *component.PhysicsBody, body *cp.Body) *cp.Shape {
	if body == nil {
		return nil
	}
	width := bodyComp.Width
	height := bodyComp.Height
	if width <= 0 || height <= 0 {
		return nil
	}

	groundBB := cp.BB{
		L: -width * 0.45,
		B: height / 2.0,
		R: width * 0.45,
		T: height/2.0 + 2,
	}

	groundShape := cp.NewBox2(body, groundBB, 0)
	groundShape.SetSensor(true)
	groundShape.SetCollisionType(collisionTypePlayerGround)
	return groundShape
}

// syncWorldBounds walls the level in. Bound segments have no owner so a
// grapple hit on them anchors to static world space.
func (ps *PhysicsSystem) syncWorldBounds(w *ecs.World) {
	if ps.space == nil || w == nil {
		return
	}
	boundsEntity, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		return
	}
	if _, exists := ps.entities[boundsEntity]; exists {
		return
	}
	bounds, ok := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind())
	if !ok {
		return
	}

	worldW := bounds.Width
	worldH := bounds.Height
	if worldW <= 0 || worldH <= 0 {
		return
	}

	thickness := 1.0
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: worldW, Y: 0}},           // top
		{a: cp.Vector{X: 0, Y: worldH}, b: cp.Vector{X: worldW, Y: worldH}}, // bottom
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: worldH}},           // left
		{a: cp.Vector{X: worldW, Y: 0}, b: cp.Vector{X: worldW, Y: worldH}}, // right
	}

	info := &bodyInfo{static: true, body: ps.space.StaticBody}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, thickness)
		shape.SetFriction(0.8)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		info.shapes = append(info.shapes, shape)
	}

	ps.entities[boundsEntity] = info
}

func (ps *PhysicsSystem) syncGravityScales(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static {
			continue
		}
		info.gravityScale = 1
		if gs, ok := ecs.Get(w, e, component.GravityScaleComponent.Kind()); ok {
			info.gravityScale = gs.Scale
		}
	}
}

func (ps *PhysicsSystem) resetPlayerContacts(w *ecs.World) {
	seen := make(map[ecs.Entity]struct{})
	ecs.ForEach(w, component.MovementComponent.Kind(), func(e ecs.Entity, _ *component.Movement) {
		seen[e] = struct{}{}
		st := ps.contacts[e]
		if st == nil {
			st = &playerContactState{}
			ps.contacts[e] = st
		}
		if st.groundGrace > 0 {
			st.groundGrace--
		}
		st.grounded = false
	})

	for e := range ps.contacts {
		if _, ok := seen[e]; !ok {
			delete(ps.contacts, e)
		}
	}
}

func (ps *PhysicsSystem) flushPlayerContacts(w *ecs.World) {
	for e, st := range ps.contacts {
		mv, ok := ecs.Get(w, e, component.MovementComponent.Kind())
		if !ok {
			continue
		}
		mv.Grounded = st.grounded || st.groundGrace > 0
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if bodyComp.Body == nil || bodyComp.Static {
			return
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = bodyComp.Body.Angle()
	})
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && (ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) || ecs.Has(w, e, component.LevelBoundsComponent.Kind())) {
			continue
		}

		for _, shape := range info.shapes {
			if shape == nil {
				continue
			}
			ps.space.RemoveShape(shape)
			delete(ps.shapeOwners, shape)
			delete(ps.groundShapes, shape)
		}
		if info.body != nil && !info.static {
			ps.space.RemoveBody(info.body)
		}

		delete(ps.entities, e)
		delete(ps.contacts, e)
	}
}
