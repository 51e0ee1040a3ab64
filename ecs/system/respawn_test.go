package system

import (
	"testing"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

func TestRespawnCycle(t *testing.T) {
	w := ecs.NewWorld()
	ctrl := NewFighterControllerSystem()
	respawn := NewRespawnSystem()

	e := spawnFighter(t, w, 100, 50)
	ctrl.Update(w)

	// Kill the fighter and schedule the comeback.
	h := healthOf(t, w, e)
	h.ApplyDamage(h.Max, 0)
	interrupt(t, w, e, component.StateDead)
	mustAddC(t, w, e, component.RespawnComponent, component.Respawn{Frames: 3})
	ctrl.Update(w)
	if got := stateOf(t, w, e); got != component.StateDead {
		t.Fatalf("expected dead, got %q", got)
	}

	// The corpse drifted away from its spawn before the timer ran out.
	mustAddC(t, w, e, component.TransformComponent, component.Transform{X: 500, Y: 300})
	mustAddC(t, w, e, component.ContactComponent, component.Contact{VelX: 80, VelY: 120})

	respawn.Update(w)
	respawn.Update(w)
	if !ecs.Has(w, e, component.RespawnComponent) {
		t.Fatalf("expected countdown still running")
	}
	if healthOf(t, w, e).Dead != true {
		t.Fatalf("expected fighter still dead mid-countdown")
	}

	respawn.Update(w)
	if ecs.Has(w, e, component.RespawnComponent) {
		t.Fatalf("expected countdown consumed")
	}

	h = healthOf(t, w, e)
	if h.Dead || h.Current != h.Max {
		t.Fatalf("expected full revive, got dead=%v current=%v", h.Dead, h.Current)
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	if tr.X != 100 || tr.Y != 50 {
		t.Fatalf("expected teleport to spawn, got (%v, %v)", tr.X, tr.Y)
	}
	contact, _ := ecs.Get(w, e, component.ContactComponent)
	if contact.VelX != 0 || contact.VelY != 0 {
		t.Fatalf("expected velocity zeroed, got (%v, %v)", contact.VelX, contact.VelY)
	}

	// The queued interrupt brings the machine back next tick.
	ctrl.Update(w)
	if got := stateOf(t, w, e); got != component.StateIdle {
		t.Fatalf("expected idle after respawn, got %q", got)
	}
}

func TestRespawnClearsCombatTimers(t *testing.T) {
	w := ecs.NewWorld()
	respawn := NewRespawnSystem()

	e := spawnFighter(t, w, 0, 0)
	f := fighterOf(t, w, e)
	f.AttackTimer = 7
	f.CastTimer = 9
	f.StunTimer = 4
	f.CastFired = true
	mustAddC(t, w, e, component.RespawnComponent, component.Respawn{Frames: 1})

	respawn.Update(w)

	f = fighterOf(t, w, e)
	if f.AttackTimer != 0 || f.CastTimer != 0 || f.StunTimer != 0 || f.CastFired {
		t.Fatalf("expected timers cleared, got %+v", f)
	}
}

func TestRespawnNotifiesAIAndWorld(t *testing.T) {
	w := ecs.NewWorld()
	respawn := NewRespawnSystem()

	e := spawnFighter(t, w, 0, 0)
	mustAddC(t, w, e, component.AITagComponent, component.AITag{})
	mustAddC(t, w, e, component.RespawnComponent, component.Respawn{Frames: 1})

	respawn.Update(w)

	evt, ok := ecs.Get(w, e, component.BehaviorEventComponent)
	if !ok || evt.Event != behaviorEventRevived {
		t.Fatalf("expected revived behavior event, got %+v ok=%v", evt, ok)
	}

	var sawRespawn bool
	for _, we := range w.Events().Drain() {
		if re, ok := we.Data.(ecs.RespawnEvent); ok && re.Entity == e {
			sawRespawn = true
		}
	}
	if !sawRespawn {
		t.Fatalf("expected a respawn event in the world queue")
	}
}
