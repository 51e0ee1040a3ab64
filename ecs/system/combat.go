package system

import (
	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

// CombatSystem resolves melee swings: while a fighter's machine is in the
// attacking state and the swing is inside its active window, a reach box in
// front of the fighter is tested against every other hurtbox. Each target
// is hit at most once per swing.
type CombatSystem struct{}

func NewCombatSystem() *CombatSystem { return &CombatSystem{} }

// intersects tests two top-left anchored AABBs.
func intersects(ax, ay, aw, ah, bx, by, bw, bh float64) bool {
	return ax < bx+bw && ax+aw > bx && ay < by+bh && ay+ah > by
}

func (s *CombatSystem) Update(w *ecs.World) {
	for _, e := range w.Query(
		component.FighterComponent.Kind(),
		component.FighterMachineComponent.Kind(),
		component.TransformComponent.Kind(),
	) {
		fighter, _ := ecs.Get(w, e, component.FighterComponent)
		fm, _ := ecs.Get(w, e, component.FighterMachineComponent)
		if fighter == nil || fm.Machine == nil {
			continue
		}
		if !fm.Machine.IsInState(component.StateAttacking) || !fighter.SwingActive() {
			continue
		}

		transform, _ := ecs.Get(w, e, component.TransformComponent)
		hx, hy, hw, hh := swingBox(fighter, transform)

		for _, t := range w.Query(
			component.HurtboxComponent.Kind(),
			component.TransformComponent.Kind(),
			component.HealthComponent.Kind(),
		) {
			if t == e || fighter.SwingHits[uint64(t)] {
				continue
			}
			hurtboxes, _ := ecs.Get(w, t, component.HurtboxComponent)
			tt, _ := ecs.Get(w, t, component.TransformComponent)

			for _, hurt := range hurtboxes {
				tx := tt.X + hurt.OffsetX - hurt.Width/2
				ty := tt.Y + hurt.OffsetY - hurt.Height/2
				if !intersects(hx, hy, hw, hh, tx, ty, hurt.Width, hurt.Height) {
					continue
				}
				if applyHit(w, t, fighter.AttackDamage, e) {
					fighter.SwingHits[uint64(t)] = true
				}
				break
			}
		}
	}
}

// swingBox returns the top-left anchored world AABB of the active swing:
// reach x height, extending from the fighter's center in its facing
// direction.
func swingBox(f *component.Fighter, t component.Transform) (x, y, w, h float64) {
	w = f.AttackReach
	h = f.AttackHeight
	if f.FacingLeft {
		x = t.X - f.AttackReach
	} else {
		x = t.X
	}
	y = t.Y - h/2
	return x, y, w, h
}

// applyHit runs the shared post-damage flow used by swings and
// projectiles: damage through Health (observers push the world events),
// then hit-stun or death-plus-respawn interrupts, and a "hurt" event for AI
// machines. Reports whether damage landed.
func applyHit(w *ecs.World, target ecs.Entity, amount float64, source ecs.Entity) bool {
	health, ok := ecs.Get(w, target, component.HealthComponent)
	if !ok || !health.IsAlive() {
		return false
	}
	if !health.ApplyDamage(amount, uint64(source)) {
		return false
	}

	if fighter, ok := ecs.Get(w, target, component.FighterComponent); ok && fighter != nil {
		if health.Dead {
			_ = ecs.Add(w, target, component.StateInterruptComponent, component.StateInterrupt{
				State: string(component.StateDead),
			})
			_ = ecs.Add(w, target, component.RespawnComponent, component.Respawn{
				Frames: fighter.RespawnFrames,
			})
		} else {
			fighter.StunTimer = fighter.StunFrames
			health.StartIFrames(fighter.IFramesOnHit)
			_ = ecs.Add(w, target, component.StateInterruptComponent, component.StateInterrupt{
				State: string(component.StateStunned),
			})
		}
	}
	if ecs.Has(w, target, component.AITagComponent) {
		_ = ecs.Add(w, target, component.BehaviorEventComponent, component.BehaviorEvent{Event: behaviorEventHurt})
	}
	return true
}
