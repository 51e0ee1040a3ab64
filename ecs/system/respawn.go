package system

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

// RespawnSystem counts down dead fighters and puts them back at their spawn
// point at full health. Runs after physics so the teleport lands on a synced
// body.
type RespawnSystem struct{}

func NewRespawnSystem() *RespawnSystem { return &RespawnSystem{} }

func (s *RespawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.RespawnComponent.Kind(), func(e ecs.Entity, r *component.Respawn) {
		if r.Frames > 0 {
			r.Frames--
		}
		if r.Frames > 0 {
			return
		}

		s.revive(w, e)
		_ = ecs.Remove(w, e, component.RespawnComponent)
	})
}

func (s *RespawnSystem) revive(w *ecs.World, e ecs.Entity) {
	if health, ok := ecs.Get(w, e, component.HealthComponent); ok && health != nil {
		health.Heal(health.Max)
	}

	if fighter, ok := ecs.Get(w, e, component.FighterComponent); ok && fighter != nil {
		fighter.AttackTimer = 0
		fighter.CastTimer = 0
		fighter.StunTimer = 0
		fighter.CastFired = false
	}

	spawn, hasSpawn := ecs.Get(w, e, component.SpawnPointComponent)
	if hasSpawn {
		if t, ok := ecs.Get(w, e, component.TransformComponent); ok {
			t.X = spawn.X
			t.Y = spawn.Y
			_ = ecs.Add(w, e, component.TransformComponent, t)
		}
		if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok && body.Body != nil {
			body.Body.SetPosition(cp.Vector{X: spawn.X, Y: spawn.Y})
			body.Body.SetVelocityVector(cp.Vector{})
		}
	}

	if contact, ok := ecs.Get(w, e, component.ContactComponent); ok {
		contact.Grounded = false
		contact.GroundGrace = 0
		contact.VelX = 0
		contact.VelY = 0
		_ = ecs.Add(w, e, component.ContactComponent, contact)
	}

	_ = ecs.Add(w, e, component.StateInterruptComponent, component.StateInterrupt{State: string(component.StateIdle)})
	if ecs.Has(w, e, component.AITagComponent) {
		_ = ecs.Add(w, e, component.BehaviorEventComponent, component.BehaviorEvent{Event: behaviorEventRevived})
	}

	w.Events().Push(ecs.Event{Type: ecs.EventRespawn, Data: ecs.RespawnEvent{Entity: e}})
}
