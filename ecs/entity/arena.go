package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/prefabs"
)

// BuildArena creates the arena entity plus one static wall entity per wall
// in the spec. Returns the arena entity; the physics system rings the arena
// bounds on its own.
func BuildArena(w *ecs.World, spec *prefabs.ArenaSpec) (ecs.Entity, error) {
	if spec == nil {
		return 0, fmt.Errorf("arena: nil spec")
	}

	arena := w.CreateEntity()
	if err := ecs.Add(w, arena, component.NameComponent, component.Name{Value: spec.Name}); err != nil {
		return 0, fmt.Errorf("arena %s: add name: %w", spec.Name, err)
	}
	if err := ecs.Add(w, arena, component.ArenaComponent, component.Arena{
		Width:   spec.Width,
		Height:  spec.Height,
		Gravity: spec.Gravity,
	}); err != nil {
		return 0, fmt.Errorf("arena %s: add arena: %w", spec.Name, err)
	}

	for i, wall := range spec.Walls {
		e := w.CreateEntity()
		if err := ecs.Add(w, e, component.TransformComponent, component.Transform{X: wall.X, Y: wall.Y}); err != nil {
			return 0, fmt.Errorf("arena %s: wall %d: add transform: %w", spec.Name, i, err)
		}
		if err := ecs.Add(w, e, component.WallComponent, component.Wall{
			Width:  wall.Width,
			Height: wall.Height,
		}); err != nil {
			return 0, fmt.Errorf("arena %s: wall %d: add wall: %w", spec.Name, i, err)
		}
		if err := ecs.Add(w, e, component.SpriteComponent, component.Sprite{
			Width:  wall.Width,
			Height: wall.Height,
			Color:  wall.Color.NRGBA(color.NRGBA{R: 70, G: 74, B: 84, A: 255}),
		}); err != nil {
			return 0, fmt.Errorf("arena %s: wall %d: add sprite: %w", spec.Name, i, err)
		}
	}

	return arena, nil
}
