package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/brawler/common"
	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/ecs/entity"
	"github.com/milk9111/brawler/ecs/system"
	"github.com/milk9111/brawler/fsm"
	"github.com/milk9111/brawler/prefabs"
)

// projectileSpecNames lists every projectile archetype the game pools at
// startup. Abilities can only spawn projectiles named here.
var projectileSpecNames = []string{"bolt", "ember"}

var backgroundColor = color.NRGBA{R: 24, G: 26, B: 32, A: 255}

type Game struct {
	world *ecs.World
	flow  *fsm.Locked[*Game]

	physics     *system.PhysicsSystem
	projectiles *system.ProjectileSystem
	abilities   *system.AbilitySystem
	ai          *system.AISystem
	transitions *system.TransitionLogSystem
	render      *system.RenderSystem
	overlay     *system.DebugOverlaySystem

	pauseUI *ebitenui.UI
	watcher *prefabs.Watcher

	debug bool

	// Request flags set by UI handlers and hooks; Update applies them after
	// the flow machine tick so nothing transitions from inside the lock.
	resumeRequested bool
	resetRequested  bool
	quitRequested   bool
	queueRevert     bool

	frames int
}

func NewGame(arenaName string, debug bool) (*Game, error) {
	g := &Game{debug: debug}

	if err := g.buildWorld(arenaName); err != nil {
		return nil, err
	}

	g.pauseUI = NewPauseUI(g)

	g.flow = fsm.NewLocked(g)
	g.flow.Register(playingState{})
	g.flow.Register(pausedState{})
	g.flow.Register(reloadingState{})
	if err := g.flow.ChangeState(flowPlaying); err != nil {
		return nil, fmt.Errorf("game: start flow: %w", err)
	}

	g.startWatcher()

	return g, nil
}

func (g *Game) buildWorld(arenaName string) error {
	arenaSpec, err := prefabs.LoadArenaSpec(arenaName)
	if err != nil {
		return fmt.Errorf("game: load arena: %w", err)
	}

	w := ecs.NewWorld()
	if _, err := entity.BuildArena(w, arenaSpec); err != nil {
		return fmt.Errorf("game: build arena: %w", err)
	}

	playerSpawn := arenaSpec.Spawns[0]
	if _, err := entity.NewPlayerFighter(w, "brawler", playerSpawn.X, playerSpawn.Y); err != nil {
		return fmt.Errorf("game: build player: %w", err)
	}
	for i, spawn := range arenaSpec.Spawns[1:] {
		if _, err := entity.NewAIFighter(w, "dummy", spawn.X, spawn.Y); err != nil {
			return fmt.Errorf("game: build ai fighter %d: %w", i, err)
		}
	}

	cameraSpec, err := prefabs.LoadCameraSpec()
	if err != nil {
		return fmt.Errorf("game: load camera: %w", err)
	}
	if _, err := entity.NewCamera(w, cameraSpec); err != nil {
		return fmt.Errorf("game: build camera: %w", err)
	}

	g.projectiles = system.NewProjectileSystem()
	if err := g.registerProjectiles(); err != nil {
		return err
	}
	g.physics = system.NewPhysicsSystem()
	g.abilities = system.NewAbilitySystem(g.projectiles)
	g.ai = system.NewAISystem()
	g.transitions = system.NewTransitionLogSystem()
	g.render = system.NewRenderSystem(g.projectiles)
	g.overlay = system.NewDebugOverlaySystem(g.physics, g.projectiles, g.transitions)

	w.AddSystem(system.NewInputSystem())
	w.AddSystem(g.ai)
	w.AddSystem(system.NewFighterControllerSystem())
	w.AddSystem(system.NewCombatSystem())
	w.AddSystem(g.abilities)
	w.AddSystem(g.projectiles)
	w.AddSystem(g.physics)
	w.AddSystem(system.NewRespawnSystem())
	w.AddSystem(system.NewCooldownSystem())
	w.AddSystem(system.NewTTLSystem())
	w.AddSystem(system.NewCameraSystem())
	w.AddSystem(g.transitions)

	g.world = w
	return nil
}

func (g *Game) registerProjectiles() error {
	for _, name := range projectileSpecNames {
		spec, err := prefabs.LoadProjectileSpec(name)
		if err != nil {
			return fmt.Errorf("game: load projectile %s: %w", name, err)
		}
		if err := g.projectiles.Register(spec); err != nil {
			return fmt.Errorf("game: register projectile %s: %w", name, err)
		}
	}
	return nil
}

// startWatcher begins watching the prefab specs on disk. The watcher
// goroutine only requests the reloading flow state; the actual reload runs
// on the game tick.
func (g *Game) startWatcher() {
	watcher, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
	if err != nil {
		log.Printf("game: spec watcher disabled: %v", err)
		return
	}
	g.watcher = watcher

	go func() {
		for {
			select {
			case path, ok := <-watcher.Events:
				if !ok {
					return
				}
				log.Printf("game: spec changed: %s", path)
				if err := g.flow.ChangeState(flowReloading); err != nil {
					log.Printf("game: queue reload: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("game: spec watcher: %v", err)
			}
		}
	}()
}

// applyReload re-reads every spec kind that can change without a restart:
// projectile archetypes (pools keep their entries), ability scripts,
// behaviors and fighter tuning. Arena geometry needs a fresh run.
func (g *Game) applyReload() {
	if err := g.registerProjectiles(); err != nil {
		log.Printf("game: reload projectiles: %v", err)
	}
	g.abilities.Invalidate()
	g.ai.Invalidate()
	g.reloadFighters()
	log.Println("game: specs reloaded")
}

func (g *Game) reloadFighters() {
	for _, e := range g.world.Query(component.FighterComponent.Kind(), component.NameComponent.Kind()) {
		name, _ := ecs.Get(g.world, e, component.NameComponent)
		spec, err := prefabs.LoadFighterSpec(name.Value)
		if err != nil {
			log.Printf("game: reload fighter %s: %v", name.Value, err)
			continue
		}
		fighter, ok := ecs.Get(g.world, e, component.FighterComponent)
		if !ok || fighter == nil {
			continue
		}
		fighter.MoveSpeed = spec.MoveSpeed
		fighter.JumpSpeed = spec.JumpSpeed
		fighter.AirControl = spec.AirControl
		fighter.AttackFrames = spec.Attack.Frames
		fighter.AttackActiveFrom = spec.Attack.ActiveFrom
		fighter.AttackActiveTo = spec.Attack.ActiveTo
		fighter.AttackReach = spec.Attack.Reach
		fighter.AttackHeight = spec.Attack.Height
		fighter.AttackDamage = spec.Attack.Damage
		fighter.StunFrames = spec.StunFrames
		fighter.IFramesOnHit = spec.IFramesOnHit
		fighter.RespawnFrames = spec.RespawnFrames

		if behavior, ok := ecs.Get(g.world, e, component.BehaviorComponent); ok && behavior.Name != "" {
			if behaviorSpec, err := prefabs.LoadBehaviorSpec(behavior.Name); err == nil {
				behavior.SightRange = behaviorSpec.Sight
				behavior.ReachRange = behaviorSpec.Reach
				_ = ecs.Add(g.world, e, component.BehaviorComponent, behavior)
			}
		}
	}
}

// resetMatch returns every projectile to its pool and puts all fighters back
// at their spawns at full health.
func (g *Game) resetMatch() {
	g.projectiles.ReturnAll()
	g.ai.Invalidate()

	for _, e := range g.world.Query(component.FighterComponent.Kind()) {
		if health, ok := ecs.Get(g.world, e, component.HealthComponent); ok && health != nil {
			health.Heal(health.Max)
			health.IFrames = 0
		}
		if fighter, ok := ecs.Get(g.world, e, component.FighterComponent); ok && fighter != nil {
			fighter.AttackTimer = 0
			fighter.CastTimer = 0
			fighter.StunTimer = 0
			fighter.CastFired = false
		}
		if spawn, ok := ecs.Get(g.world, e, component.SpawnPointComponent); ok {
			if t, tok := ecs.Get(g.world, e, component.TransformComponent); tok {
				t.X = spawn.X
				t.Y = spawn.Y
				_ = ecs.Add(g.world, e, component.TransformComponent, t)
			}
			if body, bok := ecs.Get(g.world, e, component.PhysicsBodyComponent); bok && body.Body != nil {
				body.Body.SetPosition(cp.Vector{X: spawn.X, Y: spawn.Y})
				body.Body.SetVelocityVector(cp.Vector{})
			}
		}
		if ecs.Has(g.world, e, component.ContactComponent) {
			_ = ecs.Add(g.world, e, component.ContactComponent, component.Contact{})
		}
		_ = ecs.Add(g.world, e, component.StateInterruptComponent, component.StateInterrupt{State: string(component.StateIdle)})
		ecs.Remove(g.world, e, component.RespawnComponent)
		ecs.Remove(g.world, e, component.CooldownComponent)
	}
	log.Println("game: match reset")
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		switch {
		case g.flow.IsInState(flowPlaying):
			if err := g.flow.ChangeState(flowPaused); err != nil {
				log.Printf("game: pause: %v", err)
			}
		case g.flow.IsInState(flowPaused):
			g.resumeRequested = true
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	if g.debug && inpututil.IsKeyJustPressed(ebiten.KeyF4) {
		g.overlay.CopyDiagnostics(g.world)
	}

	g.flow.Update()

	if g.queueRevert {
		g.queueRevert = false
		if err := g.flow.RevertToPrevious(); err != nil {
			log.Printf("game: leave reload: %v", err)
			if err := g.flow.ChangeState(flowPlaying); err != nil {
				return fmt.Errorf("game: flow recovery: %w", err)
			}
		}
	}

	if g.resetRequested {
		g.resetRequested = false
		g.resetMatch()
		g.resumeRequested = true
	}
	if g.resumeRequested {
		g.resumeRequested = false
		if g.flow.IsInState(flowPaused) {
			if err := g.flow.ChangeState(flowPlaying); err != nil {
				log.Printf("game: resume: %v", err)
			}
		}
	}
	if g.quitRequested {
		if g.watcher != nil {
			_ = g.watcher.Close()
		}
		return ebiten.Termination
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	g.render.Draw(g.world, screen)
	g.render.DrawHUD(g.world, screen)

	if g.debug {
		g.overlay.Draw(g.world, screen)
	}

	if g.flow.IsInState(flowPaused) {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
