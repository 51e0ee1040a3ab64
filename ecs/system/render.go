package system

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/brawler/common"
	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

// RenderSystem draws the placeholder world: flat-colored rectangles for
// walls and fighters, circles for live projectiles, health bars and state
// labels over each fighter. Everything is placed through the camera
// transform (camera transform is the view center in world space).
type RenderSystem struct {
	camEntity   ecs.Entity
	projectiles *ProjectileSystem
}

func NewRenderSystem(projectiles *ProjectileSystem) *RenderSystem {
	return &RenderSystem{projectiles: projectiles}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	camX, camY, zoom := r.view(w)
	bounds := screen.Bounds()
	halfW := float64(bounds.Dx()) / 2
	halfH := float64(bounds.Dy()) / 2

	toScreen := func(wx, wy float64) (float32, float32) {
		return float32((wx-camX)*zoom + halfW), float32((wy-camY)*zoom + halfH)
	}

	entities := w.Query(component.TransformComponent.Kind(), component.SpriteComponent.Kind())
	sort.SliceStable(entities, func(i, j int) bool {
		li, lj := 0, 0
		if s, ok := ecs.Get(w, entities[i], component.SpriteComponent); ok {
			li = s.Layer
		}
		if s, ok := ecs.Get(w, entities[j], component.SpriteComponent); ok {
			lj = s.Layer
		}
		if li != lj {
			return li < lj
		}
		return uint64(entities[i]) < uint64(entities[j])
	})

	for _, e := range entities {
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		s, ok := ecs.Get(w, e, component.SpriteComponent)
		if !ok || s.Width <= 0 || s.Height <= 0 {
			continue
		}

		sx, sy := toScreen(t.X-s.Width/2, t.Y-s.Height/2)
		sw := float32(s.Width * zoom)
		sh := float32(s.Height * zoom)

		if !r.drawFighter(w, e, screen, sx, sy, sw, sh, s.Color) {
			vector.FillRect(screen, sx, sy, sw, sh, s.Color, false)
		}

		r.drawHealthBar(w, e, screen, sx, sy, sw)
		r.drawStateLabel(w, e, screen, sx, sy)
	}

	r.drawProjectiles(w, screen, toScreen, zoom)
}

func (r *RenderSystem) view(w *ecs.World) (camX, camY, zoom float64) {
	camX, camY = common.BaseWidth/2.0, common.BaseHeight/2.0
	zoom = 1.0

	if !r.camEntity.Valid() || !w.IsAlive(r.camEntity) {
		if camEntity, ok := w.First(component.CameraComponent.Kind()); ok {
			r.camEntity = camEntity
		}
	}
	if camTransform, ok := ecs.Get(w, r.camEntity, component.TransformComponent); ok {
		camX = camTransform.X
		camY = camTransform.Y
	}
	if camComp, ok := ecs.Get(w, r.camEntity, component.CameraComponent); ok && camComp.Zoom > 0 {
		zoom = camComp.Zoom
	}
	return camX, camY, zoom
}

// drawFighter renders fighter-specific dressing: an i-frame blink, a stun
// tint, and a facing stripe. Reports false for non-fighters so the caller
// draws the plain sprite rect.
func (r *RenderSystem) drawFighter(w *ecs.World, e ecs.Entity, screen *ebiten.Image, sx, sy, sw, sh float32, base color.NRGBA) bool {
	fighter, ok := ecs.Get(w, e, component.FighterComponent)
	if !ok || fighter == nil {
		return false
	}

	body := base
	health, _ := ecs.Get(w, e, component.HealthComponent)
	if health != nil {
		if health.Dead {
			body.A = 64
		} else if health.IFrames > 0 && (health.IFrames/3)%2 == 0 {
			// Blink while invulnerable.
			body.A = 96
		}
	}
	if fighter.StunTimer > 0 {
		body = color.NRGBA{R: 230, G: 200, B: 80, A: body.A}
	}

	vector.FillRect(screen, sx, sy, sw, sh, body, false)

	// Facing stripe on the leading edge.
	stripeW := sw / 6
	stripeX := sx + sw - stripeW
	if fighter.FacingLeft {
		stripeX = sx
	}
	stripe := color.NRGBA{R: 250, G: 250, B: 250, A: body.A}
	vector.FillRect(screen, stripeX, sy+sh/4, stripeW, sh/6, stripe, false)

	if fighter.SwingActive() {
		r.drawSwing(w, e, screen, fighter)
	}
	return true
}

// drawSwing outlines the active attack window so hits read on screen.
func (r *RenderSystem) drawSwing(w *ecs.World, e ecs.Entity, screen *ebiten.Image, fighter *component.Fighter) {
	t, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		return
	}
	camX, camY, zoom := r.view(w)
	bounds := screen.Bounds()
	halfW := float64(bounds.Dx()) / 2
	halfH := float64(bounds.Dy()) / 2

	x := t.X
	if fighter.FacingLeft {
		x = t.X - fighter.AttackReach
	}
	y := t.Y - fighter.AttackHeight/2

	sx := float32((x-camX)*zoom + halfW)
	sy := float32((y-camY)*zoom + halfH)
	vector.StrokeRect(screen, sx, sy, float32(fighter.AttackReach*zoom), float32(fighter.AttackHeight*zoom), 1.5, color.NRGBA{R: 255, G: 120, B: 60, A: 220}, false)
}

func (r *RenderSystem) drawHealthBar(w *ecs.World, e ecs.Entity, screen *ebiten.Image, sx, sy, sw float32) {
	health, ok := ecs.Get(w, e, component.HealthComponent)
	if !ok || health == nil || health.Max <= 0 {
		return
	}

	const barH = 4.0
	barY := sy - 8
	frac := float32(common.Clamp(health.Current/health.Max, 0, 1))

	vector.FillRect(screen, sx, barY, sw, barH, color.NRGBA{R: 80, G: 20, B: 20, A: 220}, false)
	if frac > 0 {
		vector.FillRect(screen, sx, barY, sw*frac, barH, color.NRGBA{R: 70, G: 200, B: 90, A: 230}, false)
	}
}

func (r *RenderSystem) drawStateLabel(w *ecs.World, e ecs.Entity, screen *ebiten.Image, sx, sy float32) {
	fm, ok := ecs.Get(w, e, component.FighterMachineComponent)
	if !ok || fm.Machine == nil {
		return
	}
	label := string(fm.Machine.Current())
	ebitenutil.DebugPrintAt(screen, label, int(sx), int(sy)-26)
}

func (r *RenderSystem) drawProjectiles(w *ecs.World, screen *ebiten.Image, toScreen func(float64, float64) (float32, float32), zoom float64) {
	if r.projectiles == nil {
		return
	}
	for _, p := range r.projectiles.Active() {
		if p == nil || p.Spec == nil {
			continue
		}
		sx, sy := toScreen(p.X, p.Y)
		c := p.Spec.Color.NRGBA(color.NRGBA{R: 240, G: 240, B: 120, A: 255})
		vector.FillCircle(screen, sx, sy, float32(p.Spec.Radius*zoom), c, false)
	}
}

// DrawHUD paints the fixed-position match readout.
func (r *RenderSystem) DrawHUD(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	health, _ := ecs.Get(w, player, component.HealthComponent)
	fm, okFM := ecs.Get(w, player, component.FighterMachineComponent)

	hp := 0.0
	maxHP := 0.0
	if health != nil {
		hp = health.Current
		maxHP = health.Max
	}
	state := "-"
	if okFM && fm.Machine != nil {
		state = string(fm.Machine.Current())
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("HP: %.0f/%.0f    State: %s", hp, maxHP, state), 10, 10)
}
