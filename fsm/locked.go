package fsm

import (
	"log/slog"
	"sync"
)

// Locked wraps a Machine with a mutex so it can be driven from multiple
// goroutines. Every operation, registration included, holds the lock.
//
// Observers and state hooks run while the lock is held; they must not call
// back into the same Locked machine.
type Locked[C any] struct {
	mu sync.Mutex
	m  *Machine[C]
}

// NewLocked creates a mutex-guarded machine over ctx.
func NewLocked[C any](ctx C) *Locked[C] {
	return &Locked[C]{m: New(ctx)}
}

func (l *Locked[C]) SetLogger(logger *slog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.SetLogger(logger)
}

func (l *Locked[C]) Register(s State[C]) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.Register(s)
}

func (l *Locked[C]) Registered(id StateID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.Registered(id)
}

func (l *Locked[C]) ChangeState(id StateID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.ChangeState(id)
}

func (l *Locked[C]) Update() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.Update()
}

func (l *Locked[C]) IsInState(id StateID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.IsInState(id)
}

func (l *Locked[C]) Current() StateID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.Current()
}

func (l *Locked[C]) Previous() StateID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.Previous()
}

func (l *Locked[C]) Context() C {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.Context()
}

func (l *Locked[C]) ExitCurrent() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.ExitCurrent()
}

func (l *Locked[C]) RevertToPrevious() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.RevertToPrevious()
}

func (l *Locked[C]) OnEnter(fn func(StateID)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.OnEnter(fn)
}

func (l *Locked[C]) OnExit(fn func(StateID)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.OnExit(fn)
}

func (l *Locked[C]) OnChange(fn func(from, to StateID)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.OnChange(fn)
}
