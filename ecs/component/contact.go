package component

// Contact is the physics system's post-step snapshot for a fighter: the
// grounded flag from the foot sensor plus a copy of the body velocity.
// State hooks read movement through this snapshot, which keeps the
// controller testable without a physics space.
type Contact struct {
	Grounded bool
	// GroundGrace counts down frames since the sensor last touched ground,
	// so one-frame sensor flicker doesn't read as airborne.
	GroundGrace int
	VelX        float64
	VelY        float64
}

var ContactComponent = NewComponent[Contact]()
