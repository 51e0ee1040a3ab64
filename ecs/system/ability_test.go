package system

import (
	"testing"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/prefabs"
)

func newAbilityFixture(t *testing.T) (*ecs.World, *FighterControllerSystem, *AbilitySystem, *ProjectileSystem) {
	t.Helper()
	w := ecs.NewWorld()
	projectiles := NewProjectileSystem()
	for _, name := range []string{"bolt", "ember"} {
		spec, err := prefabs.LoadProjectileSpec(name)
		if err != nil {
			t.Fatalf("load projectile %s: %v", name, err)
		}
		registerSpec(t, projectiles, spec)
	}
	return w, NewFighterControllerSystem(), NewAbilitySystem(projectiles), projectiles
}

// startCast presses the ability button and confirms the machine committed.
func startCast(t *testing.T, w *ecs.World, ctrl *FighterControllerSystem, abilities *AbilitySystem, e ecs.Entity) {
	t.Helper()
	setInput(t, w, e, component.Input{AbilityPressed: true})
	ctrl.Update(w)
	abilities.Update(w)
	setInput(t, w, e, component.Input{})
	if got := stateOf(t, w, e); got != component.StateCasting {
		t.Fatalf("expected casting, got %q", got)
	}
}

func TestVolleyFiresOnceAtCastPoint(t *testing.T) {
	w, ctrl, abilities, projectiles := newAbilityFixture(t)
	e := spawnFighter(t, w, 640, 360)
	f := fighterOf(t, w, e)
	f.Ability = "volley"
	f.CastFrames = 26 // matches the volley spec so the cast point lines up

	ctrl.Update(w)
	startCast(t, w, ctrl, abilities, e)

	// Cast point is 10 ticks in; nothing fires during the windup.
	for i := 0; i < 8; i++ {
		ctrl.Update(w)
		abilities.Update(w)
		if got := len(projectiles.Active()); got != 0 {
			t.Fatalf("tick %d: expected windup without shots, got %d", i, got)
		}
	}

	ctrl.Update(w)
	abilities.Update(w)
	if got := len(projectiles.Active()); got != 3 {
		t.Fatalf("expected 3 bolts at the cast point, got %d", got)
	}
	if !f.CastFired {
		t.Fatalf("expected cast marked fired")
	}
	cd, ok := ecs.Get(w, e, component.CooldownComponent)
	if !ok || cd.Frames != 90 {
		t.Fatalf("expected 90 frame cooldown, got %+v ok=%v", cd, ok)
	}

	// The rest of the cast must not fire again.
	for i := 0; i < 5; i++ {
		ctrl.Update(w)
		abilities.Update(w)
	}
	if got := len(projectiles.Active()); got != 3 {
		t.Fatalf("expected a single volley, got %d shots", got)
	}

	// Facing right: the whole fan flies right, and the script overcharges
	// exactly one center bolt past the spec's 540 px/s.
	hot := 0
	for _, p := range projectiles.Active() {
		if p.VelX <= 0 {
			t.Fatalf("expected rightward bolt, got vel x %v", p.VelX)
		}
		if p.Owner != e {
			t.Fatalf("expected caster as owner, got %v", p.Owner)
		}
		if p.VelX > 600 {
			hot++
			if p.Damage != 8 {
				t.Fatalf("expected overcharged bolt damage 8, got %v", p.Damage)
			}
		}
	}
	if hot != 1 {
		t.Fatalf("expected one overcharged center bolt, got %d", hot)
	}
}

func TestVolleyFollowsFacing(t *testing.T) {
	w, ctrl, abilities, projectiles := newAbilityFixture(t)
	e := spawnFighter(t, w, 640, 360)
	f := fighterOf(t, w, e)
	f.Ability = "volley"
	f.CastFrames = 26
	f.FacingLeft = true

	ctrl.Update(w)
	startCast(t, w, ctrl, abilities, e)
	for i := 0; i < 9; i++ {
		ctrl.Update(w)
		abilities.Update(w)
	}

	if got := len(projectiles.Active()); got != 3 {
		t.Fatalf("expected 3 bolts, got %d", got)
	}
	for _, p := range projectiles.Active() {
		if p.VelX >= 0 {
			t.Fatalf("expected leftward bolt, got vel x %v", p.VelX)
		}
	}
}

func TestNovaRingGrowsItsPool(t *testing.T) {
	w, ctrl, abilities, projectiles := newAbilityFixture(t)
	e := spawnFighter(t, w, 640, 360)
	f := fighterOf(t, w, e)
	f.Ability = "nova"
	f.CastFrames = 40 // nova winds up for 20 ticks

	ctrl.Update(w)
	startCast(t, w, ctrl, abilities, e)
	for i := 0; i < 19; i++ {
		ctrl.Update(w)
		abilities.Update(w)
	}

	if got := len(projectiles.Active()); got != 8 {
		t.Fatalf("expected 8 embers, got %d", got)
	}
	// The ember pool starts at 6 and grows to fit the ring.
	stats := projectiles.Stats()["ember"]
	if stats.Total != 8 || stats.Active != 8 {
		t.Fatalf("expected pool grown to 8, got %+v", stats)
	}
}

func TestScriptCacheSurvivesUntilInvalidate(t *testing.T) {
	_, _, abilities, _ := newAbilityFixture(t)

	first, err := abilities.script("volley")
	if err != nil {
		t.Fatalf("compile volley: %v", err)
	}
	again, err := abilities.script("volley")
	if err != nil {
		t.Fatalf("recompile volley: %v", err)
	}
	if first != again {
		t.Fatalf("expected cached script to be reused")
	}

	abilities.Invalidate()
	fresh, err := abilities.script("volley")
	if err != nil {
		t.Fatalf("compile after invalidate: %v", err)
	}
	if fresh == first {
		t.Fatalf("expected invalidate to drop the cache")
	}
}

func TestBrokenAbilityDoesNotWedgeTheCast(t *testing.T) {
	w, ctrl, abilities, projectiles := newAbilityFixture(t)
	e := spawnFighter(t, w, 640, 360)
	f := fighterOf(t, w, e)
	f.Ability = "missing_ability"
	f.CastFrames = 5

	ctrl.Update(w)
	startCast(t, w, ctrl, abilities, e)

	// The failed load burns the cast instead of retrying every tick.
	if !fighterOf(t, w, e).CastFired {
		t.Fatalf("expected failed cast marked fired")
	}
	if got := len(projectiles.Active()); got != 0 {
		t.Fatalf("expected no shots from a missing ability, got %d", got)
	}

	// The cast still times out back to idle.
	for i := 0; i < 5; i++ {
		ctrl.Update(w)
		abilities.Update(w)
	}
	if got := stateOf(t, w, e); got != component.StateIdle {
		t.Fatalf("expected idle after the dud cast, got %q", got)
	}
}
