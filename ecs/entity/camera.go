package entity

import (
	"fmt"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/prefabs"
)

// NewCamera creates the camera entity from its spec. The camera system
// resolves the target by name at runtime.
func NewCamera(w *ecs.World, spec *prefabs.CameraSpec) (ecs.Entity, error) {
	if spec == nil {
		return 0, fmt.Errorf("camera: nil spec")
	}

	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.TransformComponent, component.Transform{}); err != nil {
		return 0, fmt.Errorf("camera: add transform: %w", err)
	}

	zoom := spec.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	if err := ecs.Add(w, e, component.CameraComponent, component.Camera{
		TargetName: spec.Target,
		Zoom:       zoom,
		Smoothness: spec.Smoothness,
	}); err != nil {
		return 0, fmt.Errorf("camera: add camera: %w", err)
	}

	return e, nil
}
