// Package pool provides a bounded object pool with explicit ownership.
// Every entry is constructed by the pool and is always in exactly one of
// two sets: available or active. Identity is pointer identity; values are
// never copied in or out.
package pool

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrExhausted is returned by Get when no entry is available, the pool
	// cannot grow, and the fail policy is selected.
	ErrExhausted = errors.New("pool: exhausted")

	// ErrForeignInstance is returned by Return for instances this pool
	// never constructed. The return is ignored; counts stay intact.
	ErrForeignInstance = errors.New("pool: instance not owned by pool")

	// ErrNotActive is returned by Return for owned instances that are
	// already available. The return is ignored; counts stay intact.
	ErrNotActive = errors.New("pool: instance already available")

	// ErrInvalidConfig is wrapped by New for unusable configurations.
	ErrInvalidConfig = errors.New("pool: invalid config")
)

// ExhaustionPolicy selects what Get does when the pool is out of entries
// and cannot grow within its cap.
type ExhaustionPolicy int

const (
	// ExhaustFail makes Get return nil and ErrExhausted. Callers degrade
	// gracefully, e.g. a spawner skips the spawn.
	ExhaustFail ExhaustionPolicy = iota

	// ExhaustForceAllocate makes Get allocate past the cap with a logged
	// warning. Forced entries are pool-owned like any other.
	ExhaustForceAllocate
)

// Config sizes a pool and picks its exhaustion behavior.
type Config struct {
	// InitialSize entries are constructed up front and start available.
	InitialSize int

	// AllowGrowth permits Get to construct new entries on demand, up to
	// MaxSize. Without it the pool never exceeds InitialSize.
	AllowGrowth bool

	// MaxSize caps growth. Zero means unbounded growth.
	MaxSize int

	// Exhaustion applies once the pool is out of entries and at its cap.
	Exhaustion ExhaustionPolicy

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Stats is a point-in-time snapshot of pool occupancy.
// Total == Active + Available always holds.
type Stats struct {
	Total     int
	Active    int
	Available int
}

func (s Stats) String() string {
	return fmt.Sprintf("total=%d active=%d available=%d", s.Total, s.Active, s.Available)
}

// Pool hands out reusable entries of T. It is not safe for concurrent use;
// each pool belongs to a single goroutine (the game tick in practice).
//
// The pool never resets entries. Callers reinitialize an entry after Get,
// the same way they would after new(T).
type Pool[T any] struct {
	cfg    Config
	newFn  func() *T
	logger *slog.Logger

	free    []*T
	entries map[*T]bool // value true = active; key presence = pool-owned
	active  int
}

// New constructs a pool with cfg.InitialSize entries pre-built by newFn.
func New[T any](cfg Config, newFn func() *T) (*Pool[T], error) {
	if newFn == nil {
		return nil, fmt.Errorf("%w: nil factory", ErrInvalidConfig)
	}
	if cfg.InitialSize < 0 {
		return nil, fmt.Errorf("%w: negative initial size %d", ErrInvalidConfig, cfg.InitialSize)
	}
	if cfg.AllowGrowth && cfg.MaxSize > 0 && cfg.MaxSize < cfg.InitialSize {
		return nil, fmt.Errorf("%w: max size %d below initial size %d", ErrInvalidConfig, cfg.MaxSize, cfg.InitialSize)
	}

	p := &Pool[T]{
		cfg:     cfg,
		newFn:   newFn,
		logger:  cfg.Logger,
		free:    make([]*T, 0, cfg.InitialSize),
		entries: make(map[*T]bool, cfg.InitialSize),
	}
	for i := 0; i < cfg.InitialSize; i++ {
		inst := newFn()
		p.entries[inst] = false
		p.free = append(p.free, inst)
	}
	return p, nil
}

func (p *Pool[T]) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

// Get returns an entry in the active set. When nothing is available the
// pool grows within its cap; past the cap the configured exhaustion policy
// decides between (nil, ErrExhausted) and a forced allocation.
func (p *Pool[T]) Get() (*T, error) {
	if n := len(p.free); n > 0 {
		inst := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.entries[inst] = true
		p.active++
		return inst, nil
	}

	if p.canGrow() {
		return p.allocateActive(), nil
	}

	if p.cfg.Exhaustion == ExhaustForceAllocate {
		p.log().Warn("pool: exhausted, forcing allocation past cap",
			"total", len(p.entries)+1,
			"cap", p.cap(),
		)
		return p.allocateActive(), nil
	}
	return nil, ErrExhausted
}

// Return moves an active entry back to available. Foreign and
// already-available instances are logged and ignored.
func (p *Pool[T]) Return(inst *T) error {
	if inst == nil {
		p.log().Warn("pool: ignored return of nil instance")
		return ErrForeignInstance
	}
	active, owned := p.entries[inst]
	if !owned {
		p.log().Warn("pool: ignored return of foreign instance")
		return ErrForeignInstance
	}
	if !active {
		p.log().Warn("pool: ignored duplicate return")
		return ErrNotActive
	}
	p.entries[inst] = false
	p.active--
	p.free = append(p.free, inst)
	return nil
}

// ReturnAll forces every active entry back to available. Used for scene
// resets.
func (p *Pool[T]) ReturnAll() {
	if p.active == 0 {
		return
	}
	for inst, active := range p.entries {
		if active {
			p.entries[inst] = false
			p.free = append(p.free, inst)
		}
	}
	p.active = 0
}

// Owns reports whether inst was constructed by this pool.
func (p *Pool[T]) Owns(inst *T) bool {
	_, owned := p.entries[inst]
	return owned
}

// Stats returns current occupancy for diagnostics.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Total:     len(p.entries),
		Active:    p.active,
		Available: len(p.free),
	}
}

func (p *Pool[T]) canGrow() bool {
	if !p.cfg.AllowGrowth {
		return false
	}
	if p.cfg.MaxSize <= 0 {
		return true
	}
	return len(p.entries) < p.cfg.MaxSize
}

// cap reports the configured limit, or -1 when growth is unbounded.
func (p *Pool[T]) cap() int {
	if !p.cfg.AllowGrowth {
		return p.cfg.InitialSize
	}
	if p.cfg.MaxSize <= 0 {
		return -1
	}
	return p.cfg.MaxSize
}

func (p *Pool[T]) allocateActive() *T {
	inst := p.newFn()
	p.entries[inst] = true
	p.active++
	return inst
}
