package system

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/pool"
	"github.com/milk9111/brawler/prefabs"
)

// outOfBoundsMargin is how far past the arena rect a projectile may travel
// before it is reclaimed.
const outOfBoundsMargin = 64.0

// Projectile is a pooled in-flight shot. Projectiles are plain pool entries,
// not entities: the system owns their whole lifecycle and the pools they
// come from. Damage and Lifetime are resolved at spawn, so a hot reload
// never retunes shots already in the air.
type Projectile struct {
	X, Y       float64
	VelX, VelY float64
	Age        float64
	Damage     float64
	Lifetime   float64
	Owner      ecs.Entity
	Spec       *prefabs.ProjectileSpec
}

// ProjectileSystem advances every active projectile, collides it against
// arena walls (no damage) and fighter hurtboxes (damage through the shared
// hit flow), and returns dead shots to their archetype's pool.
type ProjectileSystem struct {
	specs  map[string]*prefabs.ProjectileSpec
	pools  map[string]*pool.Pool[Projectile]
	active []*Projectile
}

func NewProjectileSystem() *ProjectileSystem {
	return &ProjectileSystem{
		specs: make(map[string]*prefabs.ProjectileSpec),
		pools: make(map[string]*pool.Pool[Projectile]),
	}
}

// Register builds the pool for one projectile archetype. Registering a name
// twice replaces the spec but keeps the existing pool, so hot reloads don't
// orphan in-flight shots.
func (s *ProjectileSystem) Register(spec *prefabs.ProjectileSpec) error {
	if spec == nil || spec.Name == "" {
		return fmt.Errorf("projectile: registering unnamed spec")
	}
	s.specs[spec.Name] = spec
	if _, ok := s.pools[spec.Name]; ok {
		return nil
	}
	cfg, err := spec.Pool.Config()
	if err != nil {
		return fmt.Errorf("projectile: %s: %w", spec.Name, err)
	}
	p, err := pool.New(cfg, func() *Projectile { return &Projectile{} })
	if err != nil {
		return fmt.Errorf("projectile: %s: %w", spec.Name, err)
	}
	s.pools[spec.Name] = p
	return nil
}

// Spawn fires one shot of the named archetype from (x, y) along dir.
// Non-positive speed, damage, and lifetime fall back to the archetype's
// numbers, so callers pass zeros for a stock shot. On an exhausted pool the
// spawn is skipped with a log line; gameplay continues.
func (s *ProjectileSystem) Spawn(name string, owner ecs.Entity, x, y, dirX, dirY, speed, damage, lifetime float64) (*Projectile, error) {
	spec := s.specs[name]
	pl := s.pools[name]
	if spec == nil || pl == nil {
		return nil, fmt.Errorf("projectile: unknown archetype %q", name)
	}

	p, err := pl.Get()
	if err != nil {
		if errors.Is(err, pool.ErrExhausted) {
			log.Printf("projectile: %s pool exhausted, skipping spawn (%s)", name, pl.Stats())
			return nil, err
		}
		return nil, err
	}

	if speed <= 0 {
		speed = spec.Speed
	}
	if damage <= 0 {
		damage = spec.Damage
	}
	if lifetime <= 0 {
		lifetime = spec.Lifetime
	}

	length := math.Hypot(dirX, dirY)
	if length == 0 {
		dirX, dirY, length = 1, 0, 1
	}
	p.X = x
	p.Y = y
	p.VelX = dirX / length * speed
	p.VelY = dirY / length * speed
	p.Age = 0
	p.Damage = damage
	p.Lifetime = lifetime
	p.Owner = owner
	p.Spec = spec

	s.active = append(s.active, p)
	return p, nil
}

func (s *ProjectileSystem) Update(w *ecs.World) {
	arena, _ := s.arena(w)

	n := 0
	for _, p := range s.active {
		p.Age += tickSeconds
		if p.Age >= p.Lifetime {
			s.release(p)
			continue
		}

		if p.Spec.Gravity != 0 {
			p.VelY += arena.Gravity * p.Spec.Gravity * tickSeconds
		}
		p.X += p.VelX * tickSeconds
		p.Y += p.VelY * tickSeconds

		if s.outOfBounds(p, arena) || s.hitsWall(w, p) || s.hitsFighter(w, p) {
			s.release(p)
			continue
		}

		s.active[n] = p
		n++
	}
	for i := n; i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = s.active[:n]
}

func (s *ProjectileSystem) arena(w *ecs.World) (component.Arena, bool) {
	e, ok := w.First(component.ArenaComponent.Kind())
	if !ok {
		return component.Arena{}, false
	}
	a, ok := ecs.Get(w, e, component.ArenaComponent)
	return a, ok
}

func (s *ProjectileSystem) outOfBounds(p *Projectile, arena component.Arena) bool {
	if arena.Width <= 0 || arena.Height <= 0 {
		return false
	}
	return p.X < -outOfBoundsMargin || p.X > arena.Width+outOfBoundsMargin ||
		p.Y < -outOfBoundsMargin || p.Y > arena.Height+outOfBoundsMargin
}

func (s *ProjectileSystem) hitsWall(w *ecs.World, p *Projectile) bool {
	hit := false
	ecs.ForEach2(w, component.WallComponent.Kind(), component.TransformComponent.Kind(),
		func(_ ecs.Entity, wall *component.Wall, t *component.Transform) {
			if hit {
				return
			}
			if circleOverlapsRect(p.X, p.Y, p.Spec.Radius, t.X, t.Y, wall.Width, wall.Height) {
				hit = true
			}
		})
	return hit
}

// hitsFighter ends the flight on the first live hurtbox overlap this tick.
// The owner never hits itself. I-frames can block the damage but the shot
// still spends itself on the contact.
func (s *ProjectileSystem) hitsFighter(w *ecs.World, p *Projectile) bool {
	for _, t := range w.Query(
		component.HurtboxComponent.Kind(),
		component.TransformComponent.Kind(),
		component.HealthComponent.Kind(),
	) {
		if t == p.Owner {
			continue
		}
		health, _ := ecs.Get(w, t, component.HealthComponent)
		if !health.IsAlive() {
			continue
		}
		hurtboxes, _ := ecs.Get(w, t, component.HurtboxComponent)
		tt, _ := ecs.Get(w, t, component.TransformComponent)
		for _, hurt := range hurtboxes {
			if !circleOverlapsRect(p.X, p.Y, p.Spec.Radius,
				tt.X+hurt.OffsetX, tt.Y+hurt.OffsetY, hurt.Width, hurt.Height) {
				continue
			}
			applyHit(w, t, p.Damage, p.Owner)
			return true
		}
	}
	return false
}

func (s *ProjectileSystem) release(p *Projectile) {
	pl := s.pools[p.Spec.Name]
	if pl == nil {
		return
	}
	if err := pl.Return(p); err != nil {
		log.Printf("projectile: returning %s: %v", p.Spec.Name, err)
	}
}

// ReturnAll reclaims every in-flight shot; used by match resets.
func (s *ProjectileSystem) ReturnAll() {
	for _, pl := range s.pools {
		pl.ReturnAll()
	}
	for i := range s.active {
		s.active[i] = nil
	}
	s.active = s.active[:0]
}

// Active exposes in-flight shots to the renderer.
func (s *ProjectileSystem) Active() []*Projectile {
	return s.active
}

// Stats snapshots every archetype's pool occupancy for the debug overlay
// and the headless sim report.
func (s *ProjectileSystem) Stats() map[string]pool.Stats {
	out := make(map[string]pool.Stats, len(s.pools))
	for name, pl := range s.pools {
		out[name] = pl.Stats()
	}
	return out
}

// circleOverlapsRect tests a circle against a center-anchored AABB.
func circleOverlapsRect(cx, cy, r, rx, ry, rw, rh float64) bool {
	nearX := math.Max(rx-rw/2, math.Min(cx, rx+rw/2))
	nearY := math.Max(ry-rh/2, math.Min(cy, ry+rh/2))
	dx := cx - nearX
	dy := cy - nearY
	return dx*dx+dy*dy <= r*r
}
