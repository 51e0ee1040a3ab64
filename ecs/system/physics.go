package system

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/brawler/common"
	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

// tickSeconds is the fixed simulation timestep; the game runs 60 ticks/s.
const tickSeconds = common.TickDelta

const (
	collisionTypeFighter cp.CollisionType = iota + 1
	collisionTypeFighterGround
	collisionTypeSolid
)

// groundGraceFrames keeps a fighter "grounded" for a few frames after the
// foot sensor loses contact, so slope seams and sensor flicker don't read
// as airborne.
const groundGraceFrames = 6

// defaultGravity applies until an arena entity exists.
const defaultGravity = common.Gravity

type contactState struct {
	grounded    bool
	groundGrace int
}

type bodyInfo struct {
	static      bool
	body        *cp.Body
	mainShape   *cp.Shape
	groundShape *cp.Shape
	shapes      []*cp.Shape
}

// PhysicsSystem owns the chipmunk space: dynamic boxes for fighters (with a
// foot sensor each), static boxes for walls, segments around the arena
// bounds. After each step it writes body positions back to transforms and
// the grounded flag plus a velocity copy into each fighter's Contact.
type PhysicsSystem struct {
	space         *cp.Space
	handlersReady bool
	boundsBuilt   bool
	entities      map[ecs.Entity]*bodyInfo
	groundShapes  map[*cp.Shape]ecs.Entity
	contacts      map[ecs.Entity]*contactState
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		entities:     make(map[ecs.Entity]*bodyInfo),
		groundShapes: make(map[*cp.Shape]ecs.Entity),
		contacts:     make(map[ecs.Entity]*contactState),
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

	if ps.space == nil {
		ps.space = cp.NewSpace()
		ps.space.Iterations = 20
		ps.space.SetGravity(cp.Vector{X: 0, Y: ps.gravity(w)})
		ps.handlersReady = false
		ps.boundsBuilt = false
	}

	ps.ensureHandlers()
	ps.syncBodies(w)
	ps.syncArenaBounds(w)
	ps.resetContacts(w)

	ps.space.Step(tickSeconds)

	ps.syncTransforms(w)
	ps.flushContacts(w)
}

func (ps *PhysicsSystem) gravity(w *ecs.World) float64 {
	if e, ok := w.First(component.ArenaComponent.Kind()); ok {
		if arena, ok := ecs.Get(w, e, component.ArenaComponent); ok && arena.Gravity > 0 {
			return arena.Gravity
		}
	}
	return defaultGravity
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	groundHandler := ps.space.NewCollisionHandler(collisionTypeFighterGround, collisionTypeSolid)
	groundHandler.UserData = ps
	groundHandler.PreSolveFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		fighter, sensorIsA := sys.groundShapes[shapeA]
		if !sensorIsA {
			var okB bool
			fighter, okB = sys.groundShapes[shapeB]
			if !okB {
				return true
			}
		}

		n := arb.Normal()
		if !sensorIsA {
			n = n.Neg()
		}
		// Grounded only when the contact normal points up from the ground
		// toward the fighter (positive Y in screen-down coordinates).
		if n.Y <= 0.5 {
			return true
		}
		st := sys.contacts[fighter]
		if st == nil {
			st = &contactState{}
			sys.contacts[fighter] = st
		}
		st.grounded = true
		st.groundGrace = groundGraceFrames
		return true
	}

	ps.handlersReady = true
}

// syncBodies creates chipmunk bodies for new fighters and walls and removes
// the ones whose entities died.
func (ps *PhysicsSystem) syncBodies(w *ecs.World) {
	ps.cleanupEntities(w)

	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		if ps.entities[e] != nil {
			continue
		}
		bodyComp, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		transform, _ := ecs.Get(w, e, component.TransformComponent)

		info := ps.createFighterBody(transform, &bodyComp)
		if info == nil {
			continue
		}
		ps.entities[e] = info
		if info.groundShape != nil {
			ps.groundShapes[info.groundShape] = e
		}

		bodyComp.Body = info.body
		bodyComp.Shape = info.mainShape
		_ = ecs.Add(w, e, component.PhysicsBodyComponent, bodyComp)
	}

	for _, e := range w.Query(component.WallComponent.Kind(), component.TransformComponent.Kind()) {
		if ps.entities[e] != nil {
			continue
		}
		wall, _ := ecs.Get(w, e, component.WallComponent)
		transform, _ := ecs.Get(w, e, component.TransformComponent)
		ps.entities[e] = ps.createWall(transform, wall)
	}
}

// createFighterBody builds a rotation-locked dynamic box centered on the
// transform, plus the foot sensor under it.
func (ps *PhysicsSystem) createFighterBody(transform component.Transform, bodyComp *component.PhysicsBody) *bodyInfo {
	width := bodyComp.Width
	height := bodyComp.Height
	if width <= 0 || height <= 0 {
		width = 32
		height = 32
	}
	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}

	// Infinite moment keeps fighters upright.
	body := cp.NewBody(mass, math.Inf(1))
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetCollisionType(collisionTypeFighter)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	info := &bodyInfo{
		body:      body,
		mainShape: shape,
		shapes:    []*cp.Shape{shape},
	}

	groundBB := cp.BB{
		L: -width * 0.45,
		B: height / 2.0,
		R: width * 0.45,
		T: height/2.0 + 2,
	}
	groundShape := cp.NewBox2(body, groundBB, 0)
	groundShape.SetSensor(true)
	groundShape.SetCollisionType(collisionTypeFighterGround)
	ps.space.AddShape(groundShape)
	info.groundShape = groundShape
	info.shapes = append(info.shapes, groundShape)

	return info
}

func (ps *PhysicsSystem) createWall(transform component.Transform, wall component.Wall) *bodyInfo {
	bb := cp.BB{
		L: transform.X - wall.Width/2,
		B: transform.Y - wall.Height/2,
		R: transform.X + wall.Width/2,
		T: transform.Y + wall.Height/2,
	}
	shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
	shape.SetFriction(0.8)
	shape.SetCollisionType(collisionTypeSolid)
	ps.space.AddShape(shape)

	return &bodyInfo{
		static:    true,
		body:      ps.space.StaticBody,
		mainShape: shape,
		shapes:    []*cp.Shape{shape},
	}
}

// syncArenaBounds rings the arena rect with static segments so nothing
// escapes the playfield.
func (ps *PhysicsSystem) syncArenaBounds(w *ecs.World) {
	if ps.boundsBuilt {
		return
	}
	e, ok := w.First(component.ArenaComponent.Kind())
	if !ok {
		return
	}
	arena, ok := ecs.Get(w, e, component.ArenaComponent)
	if !ok || arena.Width <= 0 || arena.Height <= 0 {
		return
	}

	thickness := 1.0
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: arena.Width, Y: 0}},
		{a: cp.Vector{X: 0, Y: arena.Height}, b: cp.Vector{X: arena.Width, Y: arena.Height}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: arena.Height}},
		{a: cp.Vector{X: arena.Width, Y: 0}, b: cp.Vector{X: arena.Width, Y: arena.Height}},
	}

	info := &bodyInfo{static: true, body: ps.space.StaticBody}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, thickness)
		shape.SetFriction(0.8)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		info.shapes = append(info.shapes, shape)
	}

	ps.entities[e] = info
	ps.boundsBuilt = true
}

// resetContacts ages the grounded grace window before the step; the ground
// handler refreshes it on contact.
func (ps *PhysicsSystem) resetContacts(w *ecs.World) {
	for _, e := range w.Query(component.ContactComponent.Kind()) {
		contact, ok := ecs.Get(w, e, component.ContactComponent)
		if !ok {
			continue
		}
		st := ps.contacts[e]
		if st == nil {
			st = &contactState{}
			ps.contacts[e] = st
		}
		st.groundGrace = contact.GroundGrace
		if st.groundGrace > 0 {
			st.groundGrace--
		}
		st.grounded = false
	}
}

func (ps *PhysicsSystem) flushContacts(w *ecs.World) {
	for e, st := range ps.contacts {
		if !w.IsAlive(e) {
			delete(ps.contacts, e)
			continue
		}
		contact, ok := ecs.Get(w, e, component.ContactComponent)
		if !ok {
			continue
		}
		contact.Grounded = st.grounded
		contact.GroundGrace = st.groundGrace

		if info := ps.entities[e]; info != nil && info.body != nil && !info.static {
			vel := info.body.Velocity()
			contact.VelX = vel.X
			contact.VelY = vel.Y
		}
		_ = ecs.Add(w, e, component.ContactComponent, contact)
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok || bodyComp.Body == nil {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		_ = ecs.Add(w, e, component.TransformComponent, transform)
	}
}

// cleanupEntities drops space shapes whose entities were destroyed.
func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) {
			continue
		}
		for _, shape := range info.shapes {
			ps.space.RemoveShape(shape)
			if shape == info.groundShape {
				delete(ps.groundShapes, shape)
			}
		}
		if info.body != nil && !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
		delete(ps.contacts, e)
	}
}
