package component

// Cooldown is a frame-based cooldown marker. The ability system adds it
// when a cast fires; the controller refuses new casts while it is present;
// the cooldown system removes it when Frames reaches zero.
type Cooldown struct {
	// Frames remaining (in update ticks)
	Frames int
}

var CooldownComponent = NewComponent[Cooldown]()
