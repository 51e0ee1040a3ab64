package system

import (
	"strings"
	"testing"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/fsm"
	"github.com/milk9111/brawler/prefabs"
)

// testBehaviorSpec is a three-state behavior: patrol walks back and forth on
// a short timer, seek advances on the target, strike stops and attacks.
func testBehaviorSpec() *prefabs.BehaviorSpec {
	return &prefabs.BehaviorSpec{
		Name:    "watcher",
		Sight:   200,
		Reach:   50,
		Initial: "patrol",
		States: map[string]prefabs.BehaviorStateSpec{
			"patrol": {
				OnEnter: []map[string]any{{"flip_patrol": nil}, {"start_timer": 0.04}},
				While:   []map[string]any{{"patrol_walk": nil}, {"tick_timer": nil}},
			},
			"seek": {
				While: []map[string]any{{"advance": nil}},
			},
			"strike": {
				OnEnter: []map[string]any{{"stop": nil}, {"strike": nil}},
			},
		},
		Transitions: map[string][]map[string]string{
			"patrol": {{"target_seen": "seek"}, {"hurt": "seek"}, {"timer_expired": "patrol"}},
			"seek":   {{"target_in_reach": "strike"}, {"target_lost": "patrol"}},
			"strike": {{"target_dead": "patrol"}},
		},
	}
}

// spawnAI builds a minimal AI entity wired to the given behavior name.
func spawnAI(t *testing.T, w *ecs.World, name string, x, y float64) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	mustAddC(t, w, e, component.AITagComponent, component.AITag{})
	mustAddC(t, w, e, component.BehaviorComponent, component.Behavior{Name: name, SightRange: 200, ReachRange: 50})
	mustAddC(t, w, e, component.InputComponent, component.Input{})
	mustAddC(t, w, e, component.TransformComponent, component.Transform{X: x, Y: y})
	mustAddC(t, w, e, component.ContactComponent, component.Contact{Grounded: true})
	return e
}

func spawnPlayer(t *testing.T, w *ecs.World, x, y float64) ecs.Entity {
	t.Helper()
	e := spawnFighter(t, w, x, y)
	mustAddC(t, w, e, component.PlayerTagComponent, component.PlayerTag{})
	return e
}

func seedBehavior(t *testing.T, sys *AISystem, spec *prefabs.BehaviorSpec) {
	t.Helper()
	def, err := compileBehavior(spec)
	if err != nil {
		t.Fatalf("compile behavior: %v", err)
	}
	sys.defs[spec.Name] = def
}

func aiInput(t *testing.T, w *ecs.World, e ecs.Entity) component.Input {
	t.Helper()
	in, ok := ecs.Get(w, e, component.InputComponent)
	if !ok {
		t.Fatalf("input component missing")
	}
	return in
}

func aiState(t *testing.T, sys *AISystem, e ecs.Entity) fsm.StateID {
	t.Helper()
	rt, ok := sys.runtimes[e]
	if !ok {
		t.Fatalf("no behavior runtime for entity %s", e)
	}
	return rt.machine.Current()
}

func TestCompileBehaviorRejectsUnknownAction(t *testing.T) {
	spec := testBehaviorSpec()
	spec.States["patrol"] = prefabs.BehaviorStateSpec{
		While: []map[string]any{{"fly": nil}},
	}

	_, err := compileBehavior(spec)
	if err == nil {
		t.Fatalf("expected error for unknown action")
	}
	if !strings.Contains(err.Error(), `unknown action "fly"`) {
		t.Fatalf("expected action name in error, got %v", err)
	}
}

func TestPatrolWalksAndFlipsOnTimer(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewAISystem()
	seedBehavior(t, sys, testBehaviorSpec())
	e := spawnAI(t, w, "watcher", 0, 0)

	sys.Update(w)
	if got := aiState(t, sys, e); got != "patrol" {
		t.Fatalf("expected patrol, got %q", got)
	}
	if got := aiInput(t, w, e).MoveX; got != 0.5 {
		t.Fatalf("expected patrol walk at half speed, got %v", got)
	}

	// The 0.04s timer expires on the third tick; the self-transition
	// re-enters patrol and flips direction.
	sys.Update(w)
	sys.Update(w)
	sys.Update(w)
	if got := aiInput(t, w, e).MoveX; got != -0.5 {
		t.Fatalf("expected flipped patrol direction, got %v", got)
	}
}

func TestSightAndReachDriveTheMachine(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewAISystem()
	seedBehavior(t, sys, testBehaviorSpec())
	e := spawnAI(t, w, "watcher", 0, 0)
	player := spawnPlayer(t, w, 1000, 0)

	sys.Update(w)
	if got := aiState(t, sys, e); got != "patrol" {
		t.Fatalf("expected patrol while target is far, got %q", got)
	}

	// Target walks into sight range.
	mustAddC(t, w, player, component.TransformComponent, component.Transform{X: 100, Y: 0})
	sys.Update(w)
	if got := aiState(t, sys, e); got != "seek" {
		t.Fatalf("expected seek on sight, got %q", got)
	}

	sys.Update(w)
	if got := aiInput(t, w, e).MoveX; got != 1 {
		t.Fatalf("expected advance toward target, got %v", got)
	}

	// Target in reach: strike stops and presses attack the same tick.
	mustAddC(t, w, player, component.TransformComponent, component.Transform{X: 30, Y: 0})
	sys.Update(w)
	if got := aiState(t, sys, e); got != "strike" {
		t.Fatalf("expected strike in reach, got %q", got)
	}
	in := aiInput(t, w, e)
	if in.MoveX != 0 || !in.AttackPressed {
		t.Fatalf("expected stop+attack, got %+v", in)
	}

	// A dead target sends the machine back to patrol.
	h := healthOf(t, w, player)
	h.ApplyDamage(h.Max, 0)
	sys.Update(w)
	if got := aiState(t, sys, e); got != "patrol" {
		t.Fatalf("expected patrol after target death, got %q", got)
	}
}

func TestHurtEventOutranksSensors(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewAISystem()
	seedBehavior(t, sys, testBehaviorSpec())
	e := spawnAI(t, w, "watcher", 0, 0)
	spawnPlayer(t, w, 1000, 0) // out of sight

	sys.Update(w)
	if got := aiState(t, sys, e); got != "patrol" {
		t.Fatalf("expected patrol, got %q", got)
	}

	// Getting hit from off-screen snaps the machine to seek even though the
	// attacker was never seen.
	mustAddC(t, w, e, component.BehaviorEventComponent, component.BehaviorEvent{Event: behaviorEventHurt})
	sys.Update(w)
	if got := aiState(t, sys, e); got != "seek" {
		t.Fatalf("expected hurt to drive seek, got %q", got)
	}
	if ecs.Has(w, e, component.BehaviorEventComponent) {
		t.Fatalf("expected behavior event consumed")
	}
}

func TestOneTransitionPerTick(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewAISystem()
	seedBehavior(t, sys, testBehaviorSpec())
	e := spawnAI(t, w, "watcher", 0, 0)
	spawnPlayer(t, w, 30, 0) // inside both sight and reach immediately

	// Both target_seen and target_in_reach queue on the first tick, but only
	// the patrol table applies: seek, not strike.
	sys.Update(w)
	if got := aiState(t, sys, e); got != "seek" {
		t.Fatalf("expected one hop to seek, got %q", got)
	}

	sys.Update(w)
	if got := aiState(t, sys, e); got != "strike" {
		t.Fatalf("expected strike on the next tick, got %q", got)
	}
}

func TestDeadFighterStopsThinking(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewAISystem()
	ctrl := NewFighterControllerSystem()
	seedBehavior(t, sys, testBehaviorSpec())

	e := spawnFighter(t, w, 0, 0)
	mustAddC(t, w, e, component.AITagComponent, component.AITag{})
	mustAddC(t, w, e, component.BehaviorComponent, component.Behavior{Name: "watcher", SightRange: 200, ReachRange: 50})

	ctrl.Update(w)
	h := healthOf(t, w, e)
	h.ApplyDamage(h.Max, 0)
	interrupt(t, w, e, component.StateDead)
	ctrl.Update(w)

	setInput(t, w, e, component.Input{MoveX: 1})
	sys.Update(w)
	if got := aiInput(t, w, e); got != (component.Input{}) {
		t.Fatalf("expected corpse input zeroed, got %+v", got)
	}
	if _, ok := sys.runtimes[e]; ok {
		t.Fatalf("expected no behavior runtime for a corpse")
	}
}

func TestInvalidateRebuildsRuntimes(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewAISystem()
	seedBehavior(t, sys, testBehaviorSpec())
	e := spawnAI(t, w, "watcher", 0, 0)
	spawnPlayer(t, w, 100, 0)

	sys.Update(w)
	sys.Update(w)
	if got := aiState(t, sys, e); got != "seek" {
		t.Fatalf("expected seek, got %q", got)
	}

	// Invalidate drops the compiled def and the runtime; reseeding stands in
	// for the reloaded yaml. The machine restarts from the initial state.
	sys.Invalidate()
	seedBehavior(t, sys, testBehaviorSpec())
	sys.Update(w)
	if got := aiState(t, sys, e); got != "seek" && got != "patrol" {
		t.Fatalf("expected a fresh machine, got %q", got)
	}
	if _, ok := sys.runtimes[e]; !ok {
		t.Fatalf("expected runtime rebuilt after invalidate")
	}
}

func TestAggressorSpecCompiles(t *testing.T) {
	spec, err := prefabs.LoadBehaviorSpec("aggressor")
	if err != nil {
		t.Fatalf("load aggressor: %v", err)
	}
	def, err := compileBehavior(spec)
	if err != nil {
		t.Fatalf("compile aggressor: %v", err)
	}
	if def.initial != "patrol" {
		t.Fatalf("expected aggressor to start patrolling, got %q", def.initial)
	}
	if len(def.states) != 4 {
		t.Fatalf("expected 4 compiled states, got %d", len(def.states))
	}
}
