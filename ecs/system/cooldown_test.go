package system

import (
	"testing"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

func TestCooldownExpires(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewCooldownSystem()

	e := w.CreateEntity()
	mustAddC(t, w, e, component.CooldownComponent, component.Cooldown{Frames: 3})

	for i := 0; i < 2; i++ {
		sys.Update(w)
		if !ecs.Has(w, e, component.CooldownComponent) {
			t.Fatalf("expected cooldown active after tick %d", i+1)
		}
	}

	sys.Update(w)
	if ecs.Has(w, e, component.CooldownComponent) {
		t.Fatalf("expected cooldown removed on third tick")
	}
}

func TestCooldownsCountIndependently(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewCooldownSystem()

	quick := w.CreateEntity()
	slow := w.CreateEntity()
	mustAddC(t, w, quick, component.CooldownComponent, component.Cooldown{Frames: 1})
	mustAddC(t, w, slow, component.CooldownComponent, component.Cooldown{Frames: 2})

	sys.Update(w)
	if ecs.Has(w, quick, component.CooldownComponent) {
		t.Fatalf("expected quick cooldown gone after one tick")
	}
	if !ecs.Has(w, slow, component.CooldownComponent) {
		t.Fatalf("expected slow cooldown still running")
	}

	sys.Update(w)
	if ecs.Has(w, slow, component.CooldownComponent) {
		t.Fatalf("expected slow cooldown gone after two ticks")
	}
}

func TestCooldownGatesRecast(t *testing.T) {
	w := ecs.NewWorld()
	ctrl := NewFighterControllerSystem()
	cooldowns := NewCooldownSystem()

	e := spawnFighter(t, w, 0, 0)
	ctrl.Update(w)
	mustAddC(t, w, e, component.CooldownComponent, component.Cooldown{Frames: 2})

	setInput(t, w, e, component.Input{AbilityPressed: true})
	ctrl.Update(w)
	if got := stateOf(t, w, e); got != component.StateIdle {
		t.Fatalf("expected cooldown to block the cast, got %q", got)
	}

	cooldowns.Update(w)
	cooldowns.Update(w)

	setInput(t, w, e, component.Input{AbilityPressed: true})
	ctrl.Update(w)
	if got := stateOf(t, w, e); got != component.StateCasting {
		t.Fatalf("expected cast after cooldown expired, got %q", got)
	}
}
