// Package fsm provides a small generic state machine driven by explicit
// state tags. It owns no update loop; callers decide when to change state
// and when to tick the active state.
package fsm

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrStateNotRegistered is returned when a transition names a state
	// that was never registered. The machine is left unchanged.
	ErrStateNotRegistered = errors.New("fsm: state not registered")

	// ErrNoPreviousState is returned by RevertToPrevious before any
	// completed transition has recorded a previous state.
	ErrNoPreviousState = errors.New("fsm: no previous state")

	// ErrTransitionFailed wraps transition hook failures so callers can
	// match them with errors.Is.
	ErrTransitionFailed = errors.New("fsm: transition failed")
)

// StateID identifies a registered state. IDs are plain tags chosen by the
// caller; the machine never derives identity from the state's dynamic type.
type StateID string

// StateNone is the id reported while no state is active.
const StateNone StateID = ""

// State is a single behavior in a machine. Enter and Exit bracket the
// state's active lifetime; Update runs once per tick while active.
type State[C any] interface {
	ID() StateID
	Enter(ctx C)
	Update(ctx C)
	Exit(ctx C)
}

// Phase names the transition hook that failed.
type Phase string

const (
	PhaseEnter Phase = "enter"
	PhaseExit  Phase = "exit"
)

// TransitionError reports a panic recovered from a state's Enter or Exit
// hook. The machine remains in a valid state: an enter failure restores the
// outgoing state as current, an exit failure abandons the transition.
type TransitionError struct {
	State StateID
	Phase Phase
	Cause any
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("fsm: %s %q: recovered panic: %v", e.Phase, e.State, e.Cause)
}

func (e *TransitionError) Unwrap() error { return ErrTransitionFailed }

// Machine runs one active state at a time over a shared context value.
//
// A Machine is not safe for concurrent use; it is meant to be driven from a
// single goroutine (the game tick). Use Locked for a mutex-guarded variant.
type Machine[C any] struct {
	ctx      C
	states   map[StateID]State[C]
	current  State[C]
	previous State[C]

	enterFns  []func(StateID)
	exitFns   []func(StateID)
	changeFns []func(from, to StateID)

	logger *slog.Logger
}

// New creates a machine with no registered states and no active state.
// The context is borrowed, not owned; its lifetime is the caller's problem.
func New[C any](ctx C) *Machine[C] {
	return &Machine[C]{
		ctx:    ctx,
		states: make(map[StateID]State[C]),
	}
}

// SetLogger overrides the default slog logger used for recovered panics and
// rejected transitions.
func (m *Machine[C]) SetLogger(l *slog.Logger) {
	m.logger = l
}

func (m *Machine[C]) log() *slog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return slog.Default()
}

// Register adds a state under its ID. The first registration for an ID
// wins; later duplicates are ignored and Register reports false. Enter is
// never called during registration.
func (m *Machine[C]) Register(s State[C]) bool {
	if s == nil {
		return false
	}
	id := s.ID()
	if id == StateNone {
		return false
	}
	if _, exists := m.states[id]; exists {
		return false
	}
	m.states[id] = s
	return true
}

// Registered reports whether an id has a state bound to it.
func (m *Machine[C]) Registered(id StateID) bool {
	_, ok := m.states[id]
	return ok
}

// ChangeState exits the active state and enters the state registered under
// id. Observers fire after the corresponding hook completes: exited, then
// entered, then changed(from, to).
//
// Changing to the active state is a real transition: Exit then Enter both
// run again. A panic inside either hook is recovered, the machine keeps (or
// restores) the outgoing state as current, and a *TransitionError is
// returned.
func (m *Machine[C]) ChangeState(id StateID) error {
	next, ok := m.states[id]
	if !ok {
		m.log().Warn("fsm: rejected transition to unregistered state", "state", string(id))
		return fmt.Errorf("%q: %w", id, ErrStateNotRegistered)
	}

	outgoing := m.current
	oldPrevious := m.previous

	from := StateNone
	if outgoing != nil {
		from = outgoing.ID()
		if err := m.runHook(outgoing, PhaseExit); err != nil {
			return err
		}
		for _, fn := range m.exitFns {
			fn(from)
		}
	}

	m.previous = outgoing
	m.current = next

	if err := m.runHook(next, PhaseEnter); err != nil {
		m.current = outgoing
		m.previous = oldPrevious
		return err
	}
	for _, fn := range m.enterFns {
		fn(next.ID())
	}
	for _, fn := range m.changeFns {
		fn(from, next.ID())
	}
	return nil
}

// Update ticks the active state. It performs no transition logic and is a
// no-op while no state is active.
func (m *Machine[C]) Update() {
	if m.current == nil {
		return
	}
	m.current.Update(m.ctx)
}

// IsInState reports whether id is the active state.
func (m *Machine[C]) IsInState(id StateID) bool {
	return m.current != nil && m.current.ID() == id
}

// Current returns the active state's id, or StateNone.
func (m *Machine[C]) Current() StateID {
	if m.current == nil {
		return StateNone
	}
	return m.current.ID()
}

// Previous returns the id of the state active before the last completed
// transition, or StateNone.
func (m *Machine[C]) Previous() StateID {
	if m.previous == nil {
		return StateNone
	}
	return m.previous.ID()
}

// Context returns the shared context value the machine was built with.
func (m *Machine[C]) Context() C {
	return m.ctx
}

// ExitCurrent exits the active state without entering a replacement. The
// exited state is recorded as previous so RevertToPrevious can re-enter it.
func (m *Machine[C]) ExitCurrent() error {
	if m.current == nil {
		return nil
	}
	cur := m.current
	if err := m.runHook(cur, PhaseExit); err != nil {
		return err
	}
	for _, fn := range m.exitFns {
		fn(cur.ID())
	}
	m.previous = cur
	m.current = nil
	return nil
}

// RevertToPrevious re-enters the previously active state by id, running the
// full ChangeState protocol.
func (m *Machine[C]) RevertToPrevious() error {
	if m.previous == nil {
		return ErrNoPreviousState
	}
	return m.ChangeState(m.previous.ID())
}

// OnEnter subscribes to state entries. Fires after Enter completes.
func (m *Machine[C]) OnEnter(fn func(StateID)) {
	if fn != nil {
		m.enterFns = append(m.enterFns, fn)
	}
}

// OnExit subscribes to state exits. Fires after Exit completes.
func (m *Machine[C]) OnExit(fn func(StateID)) {
	if fn != nil {
		m.exitFns = append(m.exitFns, fn)
	}
}

// OnChange subscribes to completed transitions. from is StateNone for the
// machine's first transition.
func (m *Machine[C]) OnChange(fn func(from, to StateID)) {
	if fn != nil {
		m.changeFns = append(m.changeFns, fn)
	}
}

func (m *Machine[C]) runHook(s State[C], phase Phase) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TransitionError{State: s.ID(), Phase: phase, Cause: r}
			m.log().Error("fsm: recovered panic in state hook",
				"state", string(s.ID()),
				"phase", string(phase),
				"cause", r,
			)
		}
	}()
	switch phase {
	case PhaseEnter:
		s.Enter(m.ctx)
	case PhaseExit:
		s.Exit(m.ctx)
	}
	return nil
}
