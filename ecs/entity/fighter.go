package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/prefabs"
)

// NewPlayerFighter builds the keyboard-driven fighter from its spec and
// places it at (x, y).
func NewPlayerFighter(w *ecs.World, specName string, x, y float64) (ecs.Entity, error) {
	return newFighter(w, specName, x, y, true)
}

// NewAIFighter builds a behavior-driven fighter from its spec and places it
// at (x, y). The spec must name a behavior.
func NewAIFighter(w *ecs.World, specName string, x, y float64) (ecs.Entity, error) {
	return newFighter(w, specName, x, y, false)
}

func newFighter(w *ecs.World, specName string, x, y float64, player bool) (ecs.Entity, error) {
	spec, err := prefabs.LoadFighterSpec(specName)
	if err != nil {
		return 0, fmt.Errorf("fighter %s: load spec: %w", specName, err)
	}

	e := w.CreateEntity()

	if err := ecs.Add(w, e, component.NameComponent, component.Name{Value: spec.Name}); err != nil {
		return 0, fmt.Errorf("fighter %s: add name: %w", specName, err)
	}

	if err := ecs.Add(w, e, component.TransformComponent, component.Transform{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("fighter %s: add transform: %w", specName, err)
	}

	if err := ecs.Add(w, e, component.SpawnPointComponent, component.SpawnPoint{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("fighter %s: add spawn point: %w", specName, err)
	}

	if err := ecs.Add(w, e, component.InputComponent, component.Input{}); err != nil {
		return 0, fmt.Errorf("fighter %s: add input: %w", specName, err)
	}

	if err := ecs.Add(w, e, component.ContactComponent, component.Contact{}); err != nil {
		return 0, fmt.Errorf("fighter %s: add contact: %w", specName, err)
	}

	fighter := &component.Fighter{
		MoveSpeed:        spec.MoveSpeed,
		JumpSpeed:        spec.JumpSpeed,
		AirControl:       spec.AirControl,
		AttackFrames:     spec.Attack.Frames,
		AttackActiveFrom: spec.Attack.ActiveFrom,
		AttackActiveTo:   spec.Attack.ActiveTo,
		AttackReach:      spec.Attack.Reach,
		AttackHeight:     spec.Attack.Height,
		AttackDamage:     spec.Attack.Damage,
		StunFrames:       spec.StunFrames,
		IFramesOnHit:     spec.IFramesOnHit,
		RespawnFrames:    spec.RespawnFrames,
		Ability:          spec.Ability,
	}
	if spec.Ability != "" {
		abilitySpec, err := prefabs.LoadAbilitySpec(spec.Ability)
		if err != nil {
			return 0, fmt.Errorf("fighter %s: load ability: %w", specName, err)
		}
		fighter.CastFrames = abilitySpec.CastFrames
		fighter.CastPoint = abilitySpec.CastPoint
	}
	if err := ecs.Add(w, e, component.FighterComponent, fighter); err != nil {
		return 0, fmt.Errorf("fighter %s: add fighter: %w", specName, err)
	}

	if err := ecs.Add(w, e, component.HealthComponent, component.NewHealth(spec.MaxHealth)); err != nil {
		return 0, fmt.Errorf("fighter %s: add health: %w", specName, err)
	}

	if err := ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{
		Width:      spec.Collider.Width,
		Height:     spec.Collider.Height,
		Mass:       spec.Collider.Mass,
		Friction:   spec.Collider.Friction,
		Elasticity: spec.Collider.Elasticity,
	}); err != nil {
		return 0, fmt.Errorf("fighter %s: add physics body: %w", specName, err)
	}

	if len(spec.Hurtboxes) > 0 {
		hbs := make([]component.Hurtbox, 0, len(spec.Hurtboxes))
		for _, hb := range spec.Hurtboxes {
			hbs = append(hbs, component.Hurtbox{
				Width:   hb.Width,
				Height:  hb.Height,
				OffsetX: hb.OffsetX,
				OffsetY: hb.OffsetY,
			})
		}
		if err := ecs.Add(w, e, component.HurtboxComponent, hbs); err != nil {
			return 0, fmt.Errorf("fighter %s: add hurtboxes: %w", specName, err)
		}
	}

	spriteW := spec.Sprite.Width
	spriteH := spec.Sprite.Height
	if spriteW <= 0 {
		spriteW = spec.Collider.Width
	}
	if spriteH <= 0 {
		spriteH = spec.Collider.Height
	}
	if err := ecs.Add(w, e, component.SpriteComponent, component.Sprite{
		Width:  spriteW,
		Height: spriteH,
		Color:  spec.Sprite.Color.NRGBA(color.NRGBA{R: 200, G: 200, B: 200, A: 255}),
		Layer:  spec.Sprite.Layer,
	}); err != nil {
		return 0, fmt.Errorf("fighter %s: add sprite: %w", specName, err)
	}

	if player {
		if err := ecs.Add(w, e, component.PlayerTagComponent, component.PlayerTag{}); err != nil {
			return 0, fmt.Errorf("fighter %s: add player tag: %w", specName, err)
		}
		return e, nil
	}

	if spec.Behavior == "" {
		return 0, fmt.Errorf("fighter %s: ai fighter needs a behavior", specName)
	}
	behaviorSpec, err := prefabs.LoadBehaviorSpec(spec.Behavior)
	if err != nil {
		return 0, fmt.Errorf("fighter %s: load behavior: %w", specName, err)
	}
	if err := ecs.Add(w, e, component.AITagComponent, component.AITag{}); err != nil {
		return 0, fmt.Errorf("fighter %s: add ai tag: %w", specName, err)
	}
	if err := ecs.Add(w, e, component.BehaviorComponent, component.Behavior{
		Name:       spec.Behavior,
		SightRange: behaviorSpec.Sight,
		ReachRange: behaviorSpec.Reach,
	}); err != nil {
		return 0, fmt.Errorf("fighter %s: add behavior: %w", specName, err)
	}

	return e, nil
}
