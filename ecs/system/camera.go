package system

import (
	"github.com/milk9111/brawler/common"
	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

// CameraSystem eases the camera entity's transform toward its target's
// center. The render system reads the camera transform as the world-space
// view center.
type CameraSystem struct {
	camEntity    ecs.Entity
	targetEntity ecs.Entity
	snapped      bool
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	if !cs.camEntity.Valid() || !w.IsAlive(cs.camEntity) {
		camEntity, ok := w.First(component.CameraComponent.Kind())
		if !ok {
			return
		}
		cs.camEntity = camEntity
		cs.snapped = false
	}

	cam, ok := ecs.Get(w, cs.camEntity, component.CameraComponent)
	if !ok {
		return
	}

	if !cs.targetEntity.Valid() || !w.IsAlive(cs.targetEntity) {
		cs.targetEntity = findEntityByName(w, cam.TargetName)
		if !cs.targetEntity.Valid() {
			return
		}
	}

	targetTransform, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent)
	if !ok {
		return
	}

	camTransform, ok := ecs.Get(w, cs.camEntity, component.TransformComponent)
	if !ok {
		return
	}

	if !cs.snapped {
		camTransform.X = targetTransform.X
		camTransform.Y = targetTransform.Y
		cs.snapped = true
	} else {
		t := common.Clamp(cam.Smoothness, 0, 1)
		if t == 0 {
			t = 1 // no smoothing configured means hard follow
		}
		camTransform.X = common.Lerp(camTransform.X, targetTransform.X, t)
		camTransform.Y = common.Lerp(camTransform.Y, targetTransform.Y, t)
	}

	_ = ecs.Add(w, cs.camEntity, component.TransformComponent, camTransform)
}

// findEntityByName resolves a camera target: a fighter whose Name matches,
// or the player tag for the reserved name "player".
func findEntityByName(w *ecs.World, name string) ecs.Entity {
	if name == "player" {
		if e, ok := w.First(component.PlayerTagComponent.Kind()); ok {
			return e
		}
	}
	for _, e := range w.Query(component.NameComponent.Kind()) {
		n, ok := ecs.Get(w, e, component.NameComponent)
		if ok && n.Value == name {
			return e
		}
	}
	return 0
}
