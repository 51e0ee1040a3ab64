package component

// Input stores per-frame intent for a fighter. The input system fills it
// from the keyboard for player entities; the AI system synthesizes it for
// everyone else. The controller only reads it.
type Input struct {
	MoveX          float64
	Jump           bool
	JumpPressed    bool
	AttackPressed  bool
	AbilityPressed bool
}

var InputComponent = NewComponent[Input]()
