package system

import (
	"fmt"
	"log"
	"strconv"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/fsm"
	"github.com/milk9111/brawler/prefabs"
)

// Sensor and combat events behavior transition tables react to.
const (
	behaviorEventTargetSeen    = "target_seen"
	behaviorEventTargetLost    = "target_lost"
	behaviorEventTargetInReach = "target_in_reach"
	behaviorEventTargetAway    = "target_out_of_reach"
	behaviorEventTargetDead    = "target_dead"
	behaviorEventTimerExpired  = "timer_expired"
	behaviorEventHurt          = "hurt"
	behaviorEventRevived       = "revived"
)

type behaviorAction func(ctx *component.BehaviorContext)

// behaviorActions maps yaml action names to their factories, keyed exactly
// as they appear in behavior specs.
var behaviorActions = map[string]func(arg any) behaviorAction{
	"print": func(arg any) behaviorAction {
		msg := fmt.Sprint(arg)
		return func(_ *component.BehaviorContext) {
			log.Println("ai:", msg)
		}
	},
	"stop": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil || ctx.Input == nil {
				return
			}
			ctx.Input.MoveX = 0
		}
	},
	"advance": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil || ctx.Input == nil {
				return
			}
			ctx.Input.MoveX = ctx.TargetDir()
		}
	},
	"retreat": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil || ctx.Input == nil {
				return
			}
			ctx.Input.MoveX = -ctx.TargetDir()
		}
	},
	"patrol_walk": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil || ctx.Input == nil {
				return
			}
			ctx.Input.MoveX = ctx.PatrolDir * 0.5
		}
	},
	"flip_patrol": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil {
				return
			}
			if ctx.PatrolDir == 0 {
				ctx.PatrolDir = 1
				return
			}
			ctx.PatrolDir = -ctx.PatrolDir
		}
	},
	"strike": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil || ctx.Input == nil {
				return
			}
			ctx.Input.AttackPressed = true
		}
	},
	"cast": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil || ctx.Input == nil {
				return
			}
			ctx.Input.AbilityPressed = true
		}
	},
	"hop": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil || ctx.Input == nil {
				return
			}
			ctx.Input.JumpPressed = true
		}
	},
	"start_timer": func(arg any) behaviorAction {
		seconds := asFloat(arg)
		return func(ctx *component.BehaviorContext) {
			if ctx == nil {
				return
			}
			ctx.Timer = seconds
		}
	},
	"tick_timer": func(any) behaviorAction {
		return func(ctx *component.BehaviorContext) {
			if ctx == nil || ctx.Timer <= 0 {
				return
			}
			ctx.Timer -= tickSeconds
			if ctx.Timer <= 0 && ctx.Enqueue != nil {
				ctx.Enqueue(behaviorEventTimerExpired)
			}
		}
	},
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

// behaviorState is one compiled yaml state: its action lists run through
// the machine's Enter/Update/Exit hooks.
type behaviorState struct {
	id      fsm.StateID
	onEnter []behaviorAction
	while   []behaviorAction
	onExit  []behaviorAction
}

func (s *behaviorState) ID() fsm.StateID { return s.id }
func (s *behaviorState) Enter(ctx *component.BehaviorContext) {
	for _, a := range s.onEnter {
		a(ctx)
	}
}
func (s *behaviorState) Update(ctx *component.BehaviorContext) {
	for _, a := range s.while {
		a(ctx)
	}
}
func (s *behaviorState) Exit(ctx *component.BehaviorContext) {
	for _, a := range s.onExit {
		a(ctx)
	}
}

// behaviorDef is a compiled behavior spec, shared by every fighter running
// that behavior.
type behaviorDef struct {
	initial     fsm.StateID
	states      []*behaviorState
	transitions map[fsm.StateID]map[string]fsm.StateID
}

func compileBehavior(spec *prefabs.BehaviorSpec) (*behaviorDef, error) {
	build := func(list []map[string]any) ([]behaviorAction, error) {
		if len(list) == 0 {
			return nil, nil
		}
		out := make([]behaviorAction, 0, len(list))
		for _, entry := range list {
			for name, arg := range entry {
				factory, ok := behaviorActions[name]
				if !ok {
					return nil, fmt.Errorf("behavior: unknown action %q", name)
				}
				out = append(out, factory(arg))
			}
		}
		return out, nil
	}

	def := &behaviorDef{
		initial:     fsm.StateID(spec.Initial),
		transitions: make(map[fsm.StateID]map[string]fsm.StateID),
	}

	for name, raw := range spec.States {
		onEnter, err := build(raw.OnEnter)
		if err != nil {
			return nil, fmt.Errorf("behavior: state %s: %w", name, err)
		}
		while, err := build(raw.While)
		if err != nil {
			return nil, fmt.Errorf("behavior: state %s: %w", name, err)
		}
		onExit, err := build(raw.OnExit)
		if err != nil {
			return nil, fmt.Errorf("behavior: state %s: %w", name, err)
		}
		def.states = append(def.states, &behaviorState{
			id:      fsm.StateID(name),
			onEnter: onEnter,
			while:   while,
			onExit:  onExit,
		})
	}

	for from, rules := range spec.Transitions {
		table := make(map[string]fsm.StateID)
		for _, rule := range rules {
			for event, to := range rule {
				if _, exists := table[event]; !exists {
					table[event] = fsm.StateID(to)
				}
			}
		}
		def.transitions[fsm.StateID(from)] = table
	}

	return def, nil
}

// behaviorRuntime is one fighter's live machine over a shared def.
type behaviorRuntime struct {
	machine *fsm.Machine[*component.BehaviorContext]
	ctx     *component.BehaviorContext
	def     *behaviorDef
	pending []string
}

// AISystem drives AI fighters: it compiles behavior specs into state
// machines, feeds each machine a per-tick world snapshot, runs it, applies
// the event-driven transition table and writes the machine's decisions into
// the fighter's Input.
type AISystem struct {
	defs     map[string]*behaviorDef
	runtimes map[ecs.Entity]*behaviorRuntime
}

func NewAISystem() *AISystem {
	return &AISystem{
		defs:     make(map[string]*behaviorDef),
		runtimes: make(map[ecs.Entity]*behaviorRuntime),
	}
}

// Invalidate drops compiled behaviors and live runtimes so the next tick
// rebuilds them from (possibly reloaded) specs.
func (s *AISystem) Invalidate() {
	clear(s.defs)
	clear(s.runtimes)
}

func (s *AISystem) Update(w *ecs.World) {
	targetX, targetY, targetFound, targetDead := s.playerTarget(w)

	for _, e := range w.Query(
		component.AITagComponent.Kind(),
		component.BehaviorComponent.Kind(),
		component.InputComponent.Kind(),
		component.TransformComponent.Kind(),
	) {
		behavior, _ := ecs.Get(w, e, component.BehaviorComponent)

		// Corpses don't think. The "revived" event waits in the component
		// until the machine runs again.
		if fm, ok := ecs.Get(w, e, component.FighterMachineComponent); ok &&
			fm.Machine != nil && fm.Machine.IsInState(component.StateDead) {
			_ = ecs.Add(w, e, component.InputComponent, component.Input{})
			continue
		}

		rt, err := s.runtime(e, behavior)
		if err != nil {
			log.Printf("ai: entity %s behavior %q: %v", e, behavior.Name, err)
			continue
		}

		var input component.Input
		rt.ctx.Input = &input
		transform, _ := ecs.Get(w, e, component.TransformComponent)
		rt.ctx.SelfX = transform.X
		rt.ctx.SelfY = transform.Y
		contact, _ := ecs.Get(w, e, component.ContactComponent)
		rt.ctx.Grounded = contact.Grounded || contact.GroundGrace > 0
		rt.ctx.TargetFound = targetFound
		rt.ctx.TargetDead = targetDead
		rt.ctx.TargetX = targetX
		rt.ctx.TargetY = targetY

		rt.pending = rt.pending[:0]
		if evt, ok := ecs.Get(w, e, component.BehaviorEventComponent); ok {
			ecs.Remove(w, e, component.BehaviorEventComponent)
			rt.pending = append(rt.pending, evt.Event)
		}
		s.senseTarget(rt, behavior)

		rt.machine.Update()
		s.applyTransitions(rt)

		_ = ecs.Add(w, e, component.InputComponent, input)
	}
}

func (s *AISystem) playerTarget(w *ecs.World) (x, y float64, found, dead bool) {
	e, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return 0, 0, false, false
	}
	transform, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		return 0, 0, false, false
	}
	if health, ok := ecs.Get(w, e, component.HealthComponent); ok {
		dead = !health.IsAlive()
	}
	return transform.X, transform.Y, true, dead
}

func (s *AISystem) senseTarget(rt *behaviorRuntime, behavior component.Behavior) {
	dist := rt.ctx.TargetDistance()
	if rt.ctx.TargetFound && rt.ctx.TargetDead {
		rt.pending = append(rt.pending, behaviorEventTargetDead)
		return
	}
	if rt.ctx.TargetFound && dist <= behavior.SightRange {
		rt.pending = append(rt.pending, behaviorEventTargetSeen)
	} else {
		rt.pending = append(rt.pending, behaviorEventTargetLost)
	}
	if rt.ctx.TargetFound && dist <= behavior.ReachRange {
		rt.pending = append(rt.pending, behaviorEventTargetInReach)
	} else {
		rt.pending = append(rt.pending, behaviorEventTargetAway)
	}
}

// applyTransitions takes the first queued event with a rule for the current
// state; one transition per tick.
func (s *AISystem) applyTransitions(rt *behaviorRuntime) {
	table := rt.def.transitions[rt.machine.Current()]
	if table == nil {
		return
	}
	for _, event := range rt.pending {
		to, ok := table[event]
		if !ok {
			continue
		}
		if err := rt.machine.ChangeState(to); err != nil {
			log.Printf("ai: transition to %q: %v", to, err)
		}
		return
	}
}

func (s *AISystem) runtime(e ecs.Entity, behavior component.Behavior) (*behaviorRuntime, error) {
	if rt, ok := s.runtimes[e]; ok {
		return rt, nil
	}

	def, ok := s.defs[behavior.Name]
	if !ok {
		spec, err := prefabs.LoadBehaviorSpec(behavior.Name)
		if err != nil {
			return nil, err
		}
		def, err = compileBehavior(spec)
		if err != nil {
			return nil, err
		}
		s.defs[behavior.Name] = def
	}

	ctx := &component.BehaviorContext{}
	m := fsm.New(ctx)
	for _, st := range def.states {
		m.Register(st)
	}
	rt := &behaviorRuntime{machine: m, ctx: ctx, def: def}
	ctx.Enqueue = func(event string) {
		rt.pending = append(rt.pending, event)
	}
	if err := m.ChangeState(def.initial); err != nil {
		return nil, err
	}

	s.runtimes[e] = rt
	return rt, nil
}
