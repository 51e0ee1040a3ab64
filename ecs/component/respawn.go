package component

// Respawn is a countdown attached to a dead fighter. When Frames reaches
// zero the respawn system heals the fighter, moves it to its spawn point
// and interrupts the machine back to idle.
type Respawn struct {
	Frames int
}

var RespawnComponent = NewComponent[Respawn]()
