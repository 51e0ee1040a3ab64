package system

import (
	"fmt"

	"github.com/milk9111/brawler/ecs"
	"github.com/milk9111/brawler/ecs/component"
)

const transitionLogCapacity = 64

// TransitionLogSystem drains the world event queue into a bounded log of
// human-readable lines. The debug overlay and the headless simulator both
// read from it. Must run after every system that pushes events.
type TransitionLogSystem struct {
	lines []string
	tick  uint64
}

func NewTransitionLogSystem() *TransitionLogSystem {
	return &TransitionLogSystem{}
}

func (tl *TransitionLogSystem) Update(w *ecs.World) {
	if tl == nil || w == nil {
		return
	}
	tl.tick++

	for _, evt := range w.Events().Drain() {
		line := tl.format(w, evt)
		if line == "" {
			continue
		}
		tl.lines = append(tl.lines, fmt.Sprintf("[%d] %s", tl.tick, line))
	}

	if overflow := len(tl.lines) - transitionLogCapacity; overflow > 0 {
		tl.lines = append(tl.lines[:0], tl.lines[overflow:]...)
	}
}

// Lines returns the retained log, oldest first.
func (tl *TransitionLogSystem) Lines() []string {
	if tl == nil {
		return nil
	}
	out := make([]string, len(tl.lines))
	copy(out, tl.lines)
	return out
}

// Tail returns up to n of the most recent lines.
func (tl *TransitionLogSystem) Tail(n int) []string {
	if tl == nil || n <= 0 {
		return nil
	}
	if n > len(tl.lines) {
		n = len(tl.lines)
	}
	out := make([]string, n)
	copy(out, tl.lines[len(tl.lines)-n:])
	return out
}

func (tl *TransitionLogSystem) format(w *ecs.World, evt ecs.Event) string {
	switch data := evt.Data.(type) {
	case ecs.StateChangedEvent:
		return fmt.Sprintf("%s: %s -> %s", entityLabel(w, data.Entity), data.From, data.To)
	case ecs.DamageEvent:
		return fmt.Sprintf("%s: -%.0f hp (from %s)", entityLabel(w, data.Target), data.Amount, entityLabel(w, data.Source))
	case ecs.DeathEvent:
		return fmt.Sprintf("%s: died", entityLabel(w, data.Entity))
	case ecs.RespawnEvent:
		return fmt.Sprintf("%s: respawned", entityLabel(w, data.Entity))
	default:
		return fmt.Sprintf("%s: %v", evt.Type, evt.Data)
	}
}

func entityLabel(w *ecs.World, e ecs.Entity) string {
	if n, ok := ecs.Get(w, e, component.NameComponent); ok && n.Value != "" {
		return n.Value
	}
	return "entity " + e.String()
}
