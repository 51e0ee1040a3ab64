package system

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/prefabs"
)

// abilityDispatchScript is appended to every ability source so the compiled
// script exposes one entry point. The script itself defines cast(engine).
const abilityDispatchScript = `
if __phase == "cast" {
	cast(__engine)
}
`

type abilityScript struct {
	spec     *prefabs.AbilitySpec
	compiled *tengo.Compiled
}

// AbilitySystem fires ability scripts. A fighter in the casting state fires
// its ability exactly once, at the cast point; the script decides what that
// means (usually spawning projectiles). Scripts are tengo, compiled once
// per ability and cached.
type AbilitySystem struct {
	projectiles *ProjectileSystem
	scripts     map[string]*abilityScript
}

func NewAbilitySystem(projectiles *ProjectileSystem) *AbilitySystem {
	return &AbilitySystem{
		projectiles: projectiles,
		scripts:     make(map[string]*abilityScript),
	}
}

// Invalidate drops every compiled script so the next cast recompiles from
// the (possibly reloaded) source.
func (s *AbilitySystem) Invalidate() {
	clear(s.scripts)
}

func (s *AbilitySystem) Update(w *ecs.World) {
	for _, e := range w.Query(
		component.FighterComponent.Kind(),
		component.FighterMachineComponent.Kind(),
		component.TransformComponent.Kind(),
	) {
		fighter, _ := ecs.Get(w, e, component.FighterComponent)
		fm, _ := ecs.Get(w, e, component.FighterMachineComponent)
		if fighter == nil || fm.Machine == nil || fighter.Ability == "" {
			continue
		}
		if !fm.Machine.IsInState(component.StateCasting) || fighter.CastFired {
			continue
		}

		script, err := s.script(fighter.Ability)
		if err != nil {
			log.Printf("ability: %s: %v", fighter.Ability, err)
			fighter.CastFired = true
			continue
		}
		if fighter.CastFrames-fighter.CastTimer < script.spec.CastPoint {
			continue
		}

		fighter.CastFired = true
		if err := s.cast(w, e, fighter, script); err != nil {
			log.Printf("ability: %s cast: %v", fighter.Ability, err)
		}
		_ = ecs.Add(w, e, component.CooldownComponent, component.Cooldown{
			Frames: script.spec.CooldownFrames,
		})
	}
}

func (s *AbilitySystem) script(name string) (*abilityScript, error) {
	if sc, ok := s.scripts[name]; ok {
		return sc, nil
	}

	spec, err := prefabs.LoadAbilitySpec(name)
	if err != nil {
		return nil, err
	}
	src, err := prefabs.LoadScript(spec.Script)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript(append(src, []byte("\n"+abilityDispatchScript)...))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", spec.Script, err)
	}

	sc := &abilityScript{spec: spec, compiled: compiled}
	s.scripts[name] = sc
	return sc, nil
}

func (s *AbilitySystem) cast(w *ecs.World, caster ecs.Entity, fighter *component.Fighter, sc *abilityScript) error {
	engine := s.buildEngine(w, caster, fighter)
	if err := sc.compiled.Set("__phase", "cast"); err != nil {
		return err
	}
	if err := sc.compiled.Set("__engine", engine); err != nil {
		return err
	}
	return sc.compiled.Run()
}

// buildEngine exposes the cast's world hooks to the script.
func (s *AbilitySystem) buildEngine(w *ecs.World, caster ecs.Entity, fighter *component.Fighter) *tengo.ImmutableMap {
	transform, _ := ecs.Get(w, caster, component.TransformComponent)

	values := map[string]tengo.Object{}

	// spawn_projectile(name, dirX, dirY[, speed, damage, lifetime]) fires
	// from the caster's position. Omitted or non-positive numbers fall back
	// to the archetype's spec.
	values["spawn_projectile"] = &tengo.UserFunction{Name: "spawn_projectile", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.projectiles == nil || len(args) < 3 {
			return tengo.FalseValue, nil
		}
		name, _ := tengo.ToString(args[0])
		dirX, okX := tengo.ToFloat64(args[1])
		dirY, okY := tengo.ToFloat64(args[2])
		if name == "" || !okX || !okY {
			return tengo.FalseValue, nil
		}
		var speed, damage, lifetime float64
		if len(args) > 3 {
			speed, _ = tengo.ToFloat64(args[3])
		}
		if len(args) > 4 {
			damage, _ = tengo.ToFloat64(args[4])
		}
		if len(args) > 5 {
			lifetime, _ = tengo.ToFloat64(args[5])
		}
		if _, err := s.projectiles.Spawn(name, caster, transform.X, transform.Y, dirX, dirY, speed, damage, lifetime); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["facing"] = &tengo.UserFunction{Name: "facing", Value: func(...tengo.Object) (tengo.Object, error) {
		if fighter.FacingLeft {
			return &tengo.Float{Value: -1}, nil
		}
		return &tengo.Float{Value: 1}, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(...tengo.Object) (tengo.Object, error) {
		return &tengo.ImmutableArray{Value: []tengo.Object{
			&tengo.Float{Value: transform.X},
			&tengo.Float{Value: transform.Y},
		}}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) > 0 {
			msg, _ := tengo.ToString(args[0])
			log.Printf("ability: %s", msg)
		}
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}
