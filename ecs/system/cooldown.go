package system

import (
	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

// CooldownSystem decrements frame-based ability cooldowns and removes them
// when they finish. The fighter controller treats a missing Cooldown as
// "ability ready".
type CooldownSystem struct{}

func NewCooldownSystem() *CooldownSystem {
	return &CooldownSystem{}
}

func (s *CooldownSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.CooldownComponent.Kind(), func(e ecs.Entity, cd *component.Cooldown) {
		if cd.Frames > 0 {
			cd.Frames--
		}
		if cd.Frames > 0 {
			return
		}
		_ = ecs.Remove(w, e, component.CooldownComponent)
	})
}
