package system

import (
	"log"
	"math"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/fsm"
)

// FighterControllerSystem owns every fighter's state machine: it builds the
// machine lazily, refreshes the borrowed context each tick, consumes
// one-shot interrupts, evaluates the transition rules and then ticks the
// active state. States never change state themselves; all transitions go
// through here.
type FighterControllerSystem struct{}

func NewFighterControllerSystem() *FighterControllerSystem {
	return &FighterControllerSystem{}
}

func (s *FighterControllerSystem) Update(w *ecs.World) {
	for _, e := range w.Query(
		component.FighterComponent.Kind(),
		component.InputComponent.Kind(),
		component.HealthComponent.Kind(),
	) {
		fighter, ok := ecs.Get(w, e, component.FighterComponent)
		if !ok || fighter == nil {
			continue
		}
		health, ok := ecs.Get(w, e, component.HealthComponent)
		if !ok || health == nil {
			continue
		}

		fm := s.ensureMachine(w, e, fighter, health)
		if fm.Machine == nil {
			continue
		}

		input, _ := ecs.Get(w, e, component.InputComponent)
		contact, _ := ecs.Get(w, e, component.ContactComponent)
		s.refreshContext(w, e, fm.Ctx, fighter, health, &input, &contact)

		health.Tick()

		if !s.consumeInterrupt(w, e, fm, health) {
			s.applyRules(w, e, fm)
		}
		fm.Machine.Update()

		// Write the snapshot back so headless worlds (no physics system)
		// still observe state-driven velocity changes.
		_ = ecs.Add(w, e, component.ContactComponent, contact)
	}
}

// ensureMachine builds the fighter's machine on first sight: registers the
// eight states, wires health observers into world events and enters idle.
func (s *FighterControllerSystem) ensureMachine(
	w *ecs.World,
	e ecs.Entity,
	fighter *component.Fighter,
	health *component.Health,
) component.FighterMachine {
	if fm, ok := ecs.Get(w, e, component.FighterMachineComponent); ok {
		return fm
	}

	ctx := &component.FighterContext{Self: uint64(e)}
	m := fsm.New(ctx)
	for _, st := range fighterStates {
		m.Register(st)
	}
	m.OnChange(func(from, to fsm.StateID) {
		w.Events().Push(ecs.Event{Type: ecs.EventStateChanged, Data: ecs.StateChangedEvent{
			Entity: e,
			From:   string(from),
			To:     string(to),
		}})
	})

	health.OnDamage = func(_ *component.Health, amount float64, source uint64) {
		w.Events().Push(ecs.Event{Type: ecs.EventDamage, Data: ecs.DamageEvent{
			Target: e,
			Source: ecs.Entity(source),
			Amount: amount,
		}})
	}
	health.OnDeath = func(_ *component.Health, _ uint64) {
		w.Events().Push(ecs.Event{Type: ecs.EventDeath, Data: ecs.DeathEvent{Entity: e}})
	}

	if err := m.ChangeState(component.StateIdle); err != nil {
		log.Printf("fighter controller: entering idle: %v", err)
	}

	fm := component.FighterMachine{Machine: m, Ctx: ctx}
	if err := ecs.Add(w, e, component.FighterMachineComponent, fm); err != nil {
		log.Printf("fighter controller: attaching machine: %v", err)
	}
	return fm
}

// refreshContext repoints the borrowed context at this tick's component
// data. Velocity flows through the contact snapshot and writes through to
// the chipmunk body when one exists.
func (s *FighterControllerSystem) refreshContext(
	w *ecs.World,
	e ecs.Entity,
	ctx *component.FighterContext,
	fighter *component.Fighter,
	health *component.Health,
	input *component.Input,
	contact *component.Contact,
) {
	ctx.Input = input
	ctx.Fighter = fighter
	ctx.Health = health

	body, hasBody := ecs.Get(w, e, component.PhysicsBodyComponent)

	ctx.GetVelocity = func() (float64, float64) {
		return contact.VelX, contact.VelY
	}
	ctx.SetVelocity = func(x, y float64) {
		contact.VelX = x
		contact.VelY = y
		if hasBody && body.Body != nil {
			body.Body.SetVelocity(x, y)
		}
	}
	ctx.IsGrounded = func() bool {
		return contact.Grounded || contact.GroundGrace > 0
	}
	ctx.SetFacingLeft = func(facingLeft bool) {
		fighter.FacingLeft = facingLeft
	}
}

// consumeInterrupt pops a pending StateInterrupt, validates it against
// health and applies it. Reports whether an interrupt was consumed (rules
// are skipped for the tick when so).
func (s *FighterControllerSystem) consumeInterrupt(
	w *ecs.World,
	e ecs.Entity,
	fm component.FighterMachine,
	health *component.Health,
) bool {
	intr, ok := ecs.Get(w, e, component.StateInterruptComponent)
	if !ok {
		return false
	}
	ecs.Remove(w, e, component.StateInterruptComponent)

	target := fsm.StateID(intr.State)
	switch {
	case !fm.Machine.Registered(target):
		log.Printf("fighter controller: dropping interrupt to unknown state %q (entity %s)", intr.State, e)
		return false
	case target == component.StateDead:
		// Death is always honored.
	case fm.Machine.IsInState(component.StateDead) && !health.IsAlive():
		// A corpse ignores everything until something heals it.
		log.Printf("fighter controller: dropping interrupt %q on dead entity %s", intr.State, e)
		return false
	}

	s.changeState(fm.Machine, target)
	return true
}

// applyRules evaluates the transition table for the active state. First
// match wins; at most one transition happens per tick.
func (s *FighterControllerSystem) applyRules(w *ecs.World, e ecs.Entity, fm component.FighterMachine) {
	m := fm.Machine
	ctx := fm.Ctx
	in := ctx.Input
	f := ctx.Fighter
	if in == nil || f == nil {
		return
	}

	grounded := ctx.IsGrounded()
	_, vy := ctx.GetVelocity()

	switch m.Current() {
	case component.StateDead:
		// Only a validated interrupt leaves dead.

	case component.StateStunned:
		if f.StunTimer <= 0 {
			if grounded {
				s.changeState(m, idleOrMoving(in))
			} else {
				s.changeState(m, component.StateFalling)
			}
		}

	case component.StateAttacking:
		if f.AttackTimer <= 0 {
			s.changeState(m, idleOrMoving(in))
		}

	case component.StateCasting:
		if f.CastTimer <= 0 {
			s.changeState(m, idleOrMoving(in))
		}

	case component.StateJumping:
		switch {
		case grounded && vy >= 0:
			s.changeState(m, idleOrMoving(in))
		case in.AttackPressed:
			s.changeState(m, component.StateAttacking)
		case vy > fallEpsilon:
			s.changeState(m, component.StateFalling)
		}

	case component.StateFalling:
		switch {
		case grounded && vy >= 0:
			s.changeState(m, idleOrMoving(in))
		case in.AttackPressed:
			s.changeState(m, component.StateAttacking)
		}

	case component.StateIdle, component.StateMoving:
		switch {
		case !grounded && vy > fallEpsilon:
			s.changeState(m, component.StateFalling)
		case in.JumpPressed && grounded:
			s.changeState(m, component.StateJumping)
		case in.AttackPressed:
			s.changeState(m, component.StateAttacking)
		case in.AbilityPressed && f.Ability != "" && !ecs.Has(w, e, component.CooldownComponent):
			s.changeState(m, component.StateCasting)
		case m.Current() == component.StateIdle && math.Abs(in.MoveX) > moveDeadzone:
			s.changeState(m, component.StateMoving)
		case m.Current() == component.StateMoving && math.Abs(in.MoveX) <= moveDeadzone:
			s.changeState(m, component.StateIdle)
		}
	}
}

func (s *FighterControllerSystem) changeState(m *fsm.Machine[*component.FighterContext], id fsm.StateID) {
	if err := m.ChangeState(id); err != nil {
		log.Printf("fighter controller: transition to %q: %v", id, err)
	}
}

func idleOrMoving(in *component.Input) fsm.StateID {
	if math.Abs(in.MoveX) > moveDeadzone {
		return component.StateMoving
	}
	return component.StateIdle
}
