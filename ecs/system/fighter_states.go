package system

import (
	"github.com/milk9111/brawler/ecs/component"
	"github.com/milk9111/brawler/fsm"
)

const (
	// moveDeadzone filters stick noise out of MoveX.
	moveDeadzone = 0.15
	// fallEpsilon is the downward speed (px/s, screen-down +Y) past which a
	// fighter counts as falling.
	fallEpsilon = 5.0
	// stunFriction bleeds off knockback while stunned.
	stunFriction = 0.85
)

// Fighter state singletons (avoid allocations on transitions). Transition
// decisions live in the controller; states only drive velocity and timers.
var fighterStates = []fsm.State[*component.FighterContext]{
	idleState{},
	movingState{},
	jumpingState{},
	fallingState{},
	attackingState{},
	castingState{},
	stunnedState{},
	deadState{},
}

type idleState struct{}

func (idleState) ID() fsm.StateID { return component.StateIdle }
func (idleState) Enter(ctx *component.FighterContext) {
	haltHorizontal(ctx)
}
func (idleState) Update(ctx *component.FighterContext) {
	haltHorizontal(ctx)
}
func (idleState) Exit(ctx *component.FighterContext) {}

type movingState struct{}

func (movingState) ID() fsm.StateID { return component.StateMoving }
func (movingState) Enter(ctx *component.FighterContext) {}
func (movingState) Update(ctx *component.FighterContext) {
	if ctx == nil || ctx.Input == nil || ctx.Fighter == nil || ctx.GetVelocity == nil || ctx.SetVelocity == nil {
		return
	}
	_, y := ctx.GetVelocity()
	ctx.SetVelocity(ctx.Input.MoveX*ctx.Fighter.MoveSpeed, y)
	faceByMove(ctx)
}
func (movingState) Exit(ctx *component.FighterContext) {}

type jumpingState struct{}

func (jumpingState) ID() fsm.StateID { return component.StateJumping }
func (jumpingState) Enter(ctx *component.FighterContext) {
	if ctx == nil || ctx.Fighter == nil || ctx.GetVelocity == nil || ctx.SetVelocity == nil {
		return
	}
	x, _ := ctx.GetVelocity()
	ctx.SetVelocity(x, -ctx.Fighter.JumpSpeed)
}
func (jumpingState) Update(ctx *component.FighterContext) {
	airControl(ctx)
}
func (jumpingState) Exit(ctx *component.FighterContext) {}

type fallingState struct{}

func (fallingState) ID() fsm.StateID { return component.StateFalling }
func (fallingState) Enter(ctx *component.FighterContext) {}
func (fallingState) Update(ctx *component.FighterContext) {
	airControl(ctx)
}
func (fallingState) Exit(ctx *component.FighterContext) {}

type attackingState struct{}

func (attackingState) ID() fsm.StateID { return component.StateAttacking }
func (attackingState) Enter(ctx *component.FighterContext) {
	if ctx == nil || ctx.Fighter == nil {
		return
	}
	ctx.Fighter.BeginSwing()
	if ctx.IsGrounded != nil && ctx.IsGrounded() {
		haltHorizontal(ctx)
	}
}
func (attackingState) Update(ctx *component.FighterContext) {
	if ctx == nil || ctx.Fighter == nil {
		return
	}
	if ctx.Fighter.AttackTimer > 0 {
		ctx.Fighter.AttackTimer--
	}
	if ctx.IsGrounded != nil && ctx.IsGrounded() {
		haltHorizontal(ctx)
	}
}
func (attackingState) Exit(ctx *component.FighterContext) {}

type castingState struct{}

func (castingState) ID() fsm.StateID { return component.StateCasting }
func (castingState) Enter(ctx *component.FighterContext) {
	if ctx == nil || ctx.Fighter == nil {
		return
	}
	ctx.Fighter.CastTimer = ctx.Fighter.CastFrames
	ctx.Fighter.CastFired = false
	haltHorizontal(ctx)
}
func (castingState) Update(ctx *component.FighterContext) {
	if ctx == nil || ctx.Fighter == nil {
		return
	}
	if ctx.Fighter.CastTimer > 0 {
		ctx.Fighter.CastTimer--
	}
	haltHorizontal(ctx)
}
func (castingState) Exit(ctx *component.FighterContext) {}

type stunnedState struct{}

func (stunnedState) ID() fsm.StateID { return component.StateStunned }
func (stunnedState) Enter(ctx *component.FighterContext) {
	if ctx == nil || ctx.Fighter == nil {
		return
	}
	// Combat stamps the exact hit-stun before interrupting; fall back to
	// the tuning value when entered any other way.
	if ctx.Fighter.StunTimer <= 0 {
		ctx.Fighter.StunTimer = ctx.Fighter.StunFrames
	}
}
func (stunnedState) Update(ctx *component.FighterContext) {
	if ctx == nil || ctx.Fighter == nil {
		return
	}
	if ctx.Fighter.StunTimer > 0 {
		ctx.Fighter.StunTimer--
	}
	if ctx.GetVelocity != nil && ctx.SetVelocity != nil {
		x, y := ctx.GetVelocity()
		ctx.SetVelocity(x*stunFriction, y)
	}
}
func (stunnedState) Exit(ctx *component.FighterContext) {}

type deadState struct{}

func (deadState) ID() fsm.StateID { return component.StateDead }
func (deadState) Enter(ctx *component.FighterContext) {
	haltHorizontal(ctx)
}
func (deadState) Update(ctx *component.FighterContext) {
	haltHorizontal(ctx)
}
func (deadState) Exit(ctx *component.FighterContext) {}

// haltHorizontal zeroes x velocity, keeping gravity's y.
func haltHorizontal(ctx *component.FighterContext) {
	if ctx == nil || ctx.GetVelocity == nil || ctx.SetVelocity == nil {
		return
	}
	_, y := ctx.GetVelocity()
	ctx.SetVelocity(0, y)
}

// airControl applies damped horizontal steering while airborne. Velocity is
// only touched when there is input, so momentum carries.
func airControl(ctx *component.FighterContext) {
	if ctx == nil || ctx.Input == nil || ctx.Fighter == nil || ctx.GetVelocity == nil || ctx.SetVelocity == nil {
		return
	}
	if ctx.Input.MoveX > -moveDeadzone && ctx.Input.MoveX < moveDeadzone {
		return
	}
	_, y := ctx.GetVelocity()
	ctx.SetVelocity(ctx.Input.MoveX*ctx.Fighter.MoveSpeed*ctx.Fighter.AirControl, y)
	faceByMove(ctx)
}

func faceByMove(ctx *component.FighterContext) {
	if ctx == nil || ctx.Input == nil || ctx.SetFacingLeft == nil {
		return
	}
	if ctx.Input.MoveX > moveDeadzone {
		ctx.SetFacingLeft(false)
	} else if ctx.Input.MoveX < -moveDeadzone {
		ctx.SetFacingLeft(true)
	}
}
