package ecs

// Event is a type-tagged payload carried for one frame on the world queue.
type Event struct {
	Type string
	Data any
}

const (
	EventStateChanged = "state_changed"
	EventDamage       = "damage"
	EventDeath        = "death"
	EventRespawn      = "respawn"
)

// StateChangedEvent is emitted when a fighter's action state changes.
type StateChangedEvent struct {
	Entity Entity
	From   string
	To     string
}

// DamageEvent is emitted when a fighter takes damage.
type DamageEvent struct {
	Target Entity
	Source Entity
	Amount float64
}

// DeathEvent is emitted when a fighter dies.
type DeathEvent struct {
	Entity Entity
}

// RespawnEvent is emitted when a dead fighter is revived.
type RespawnEvent struct {
	Entity Entity
}

// EventQueue is a FIFO of frame events. Pushed events survive until the end
// of the world update that produced them.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all queued events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Peek returns queued events without clearing them.
func (q *EventQueue) Peek() []Event {
	if q == nil {
		return nil
	}
	return q.items
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
