package component

import "github.com/milk9111/brawler/fsm"

// Action state ids for the fighter machine. The controller, combat, AI and
// HUD all key off these.
const (
	StateIdle      fsm.StateID = "idle"
	StateMoving    fsm.StateID = "moving"
	StateJumping   fsm.StateID = "jumping"
	StateFalling   fsm.StateID = "falling"
	StateAttacking fsm.StateID = "attacking"
	StateCasting   fsm.StateID = "ability_casting"
	StateStunned   fsm.StateID = "stunned"
	StateDead      fsm.StateID = "dead"
)

// FighterContext provides controlled access to input and physics for a
// state. It intentionally uses callbacks to avoid tight coupling to the ECS
// and physics packages; the controller refreshes the fields every tick
// before the machine runs.
type FighterContext struct {
	Self    uint64
	Input   *Input
	Fighter *Fighter
	Health  *Health

	GetVelocity   func() (x, y float64)
	SetVelocity   func(x, y float64)
	IsGrounded    func() bool
	SetFacingLeft func(facingLeft bool)
}

// FighterMachine stores a fighter's state machine and the context it
// borrows. The controller builds it lazily the first time it sees a
// fighter.
type FighterMachine struct {
	Machine *fsm.Machine[*FighterContext]
	Ctx     *FighterContext
}

var FighterMachineComponent = NewComponent[FighterMachine]()
