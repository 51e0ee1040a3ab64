// Command brawlsim runs a match headless for a fixed number of ticks and
// prints what happened: every state transition, damage, death and respawn,
// plus final health and pool usage. Useful for tuning specs without a
// window.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/ecs/entity"
	"github.com/milk9111/brawler/ecs/system"
	"github.com/milk9111/brawler/prefabs"
)

var projectileSpecNames = []string{"bolt", "ember"}

// scriptedInput replaces the keyboard system with a deterministic input
// track for the player so runs are reproducible.
type scriptedInput struct {
	tick int
}

func (s *scriptedInput) Update(w *ecs.World) {
	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return
	}

	in := component.Input{}
	switch {
	case s.tick < 60:
		in.MoveX = 1
	case s.tick == 60:
		in.MoveX = 1
		in.Jump = true
		in.JumpPressed = true
	case s.tick < 110:
		in.MoveX = 1
		in.Jump = s.tick < 75
	case s.tick == 140:
		in.AttackPressed = true
	case s.tick == 220:
		in.AbilityPressed = true
	case s.tick >= 260 && s.tick < 330:
		in.MoveX = -1
	case s.tick == 360:
		in.AttackPressed = true
	}

	if err := ecs.Add(w, player, component.InputComponent, in); err != nil {
		log.Printf("brawlsim: write input: %v", err)
	}
	s.tick++
}

func buildWorld(arenaName string) (*ecs.World, *system.ProjectileSystem, *system.TransitionLogSystem, error) {
	arenaSpec, err := prefabs.LoadArenaSpec(arenaName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load arena: %w", err)
	}

	w := ecs.NewWorld()
	if _, err := entity.BuildArena(w, arenaSpec); err != nil {
		return nil, nil, nil, fmt.Errorf("build arena: %w", err)
	}

	playerSpawn := arenaSpec.Spawns[0]
	if _, err := entity.NewPlayerFighter(w, "brawler", playerSpawn.X, playerSpawn.Y); err != nil {
		return nil, nil, nil, fmt.Errorf("build player: %w", err)
	}
	for i, spawn := range arenaSpec.Spawns[1:] {
		if _, err := entity.NewAIFighter(w, "dummy", spawn.X, spawn.Y); err != nil {
			return nil, nil, nil, fmt.Errorf("build ai fighter %d: %w", i, err)
		}
	}

	projectiles := system.NewProjectileSystem()
	for _, name := range projectileSpecNames {
		spec, err := prefabs.LoadProjectileSpec(name)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load projectile %s: %w", name, err)
		}
		if err := projectiles.Register(spec); err != nil {
			return nil, nil, nil, fmt.Errorf("register projectile %s: %w", name, err)
		}
	}
	transitions := system.NewTransitionLogSystem()

	w.AddSystem(&scriptedInput{})
	w.AddSystem(system.NewAISystem())
	w.AddSystem(system.NewFighterControllerSystem())
	w.AddSystem(system.NewCombatSystem())
	w.AddSystem(system.NewAbilitySystem(projectiles))
	w.AddSystem(projectiles)
	w.AddSystem(system.NewPhysicsSystem())
	w.AddSystem(system.NewRespawnSystem())
	w.AddSystem(system.NewCooldownSystem())
	w.AddSystem(system.NewTTLSystem())
	w.AddSystem(transitions)

	return w, projectiles, transitions, nil
}

func main() {
	ticks := flag.Int("ticks", 600, "number of ticks to simulate")
	arenaName := flag.String("arena", "arena", "arena name in prefabs/ (basename, .yaml optional)")
	flag.Parse()

	w, projectiles, transitions, err := buildWorld(*arenaName)
	if err != nil {
		log.Fatalf("brawlsim: %v", err)
	}

	for i := 0; i < *ticks; i++ {
		w.Update()
	}

	fmt.Printf("=== %d ticks ===\n", *ticks)
	for _, line := range transitions.Lines() {
		fmt.Println(line)
	}

	fmt.Println("=== fighters ===")
	fighters := w.Query(component.FighterComponent.Kind(), component.HealthComponent.Kind())
	sort.Slice(fighters, func(i, j int) bool { return fighters[i] < fighters[j] })
	for _, e := range fighters {
		health, _ := ecs.Get(w, e, component.HealthComponent)
		label := fmt.Sprintf("entity %s", e)
		if name, ok := ecs.Get(w, e, component.NameComponent); ok {
			label = name.Value
		}
		state := "?"
		if fm, ok := ecs.Get(w, e, component.FighterMachineComponent); ok && fm.Machine != nil {
			state = string(fm.Machine.Current())
		}
		fmt.Printf("%s: hp %.0f/%.0f state %s\n", label, health.Current, health.Max, state)
	}

	fmt.Println("=== pools ===")
	stats := projectiles.Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %s\n", name, stats[name])
	}
}
