package component

import "math"

// Behavior names the yaml behavior spec driving an AI fighter, plus the
// sensor ranges its transitions react to.
type Behavior struct {
	Name       string
	SightRange float64
	ReachRange float64
}

var BehaviorComponent = NewComponent[Behavior]()

// BehaviorEvent is a one-shot event for an AI machine, consumed by the AI
// system on its next tick (combat posts "hurt", the respawn system posts
// "revived").
type BehaviorEvent struct {
	Event string
}

var BehaviorEventComponent = NewComponent[BehaviorEvent]()

// BehaviorContext is what a compiled behavior state sees: a snapshot of the
// world from the AI fighter's point of view, plus the Input it writes its
// decisions into. The AI system refreshes it every tick.
type BehaviorContext struct {
	Input *Input

	SelfX, SelfY     float64
	Grounded         bool
	TargetFound      bool
	TargetDead       bool
	TargetX, TargetY float64

	// Timer is a scratch countdown in seconds for timed behavior states.
	Timer float64
	// PatrolDir is the current patrol direction, -1 or +1.
	PatrolDir float64

	// Enqueue posts an event back onto the machine's queue; actions use it
	// to signal their own transitions (e.g. a timer expiring).
	Enqueue func(event string)
}

// TargetDistance returns the distance to the target, or +Inf when no target
// is visible.
func (c *BehaviorContext) TargetDistance() float64 {
	if c == nil || !c.TargetFound {
		return math.Inf(1)
	}
	dx := c.TargetX - c.SelfX
	dy := c.TargetY - c.SelfY
	return math.Hypot(dx, dy)
}

// TargetDir returns -1 or +1 for the horizontal direction toward the
// target, or 0 when no target is visible.
func (c *BehaviorContext) TargetDir() float64 {
	if c == nil || !c.TargetFound {
		return 0
	}
	if c.TargetX < c.SelfX {
		return -1
	}
	return 1
}
