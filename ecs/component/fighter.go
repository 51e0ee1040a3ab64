package component

// Fighter carries a fighter's tuning (loaded from its prefab) and the
// per-action bookkeeping the states mutate. Stored as a pointer component:
// the machine context and the combat system work on the same instance.
type Fighter struct {
	// tuning
	MoveSpeed        float64
	JumpSpeed        float64
	AirControl       float64
	AttackFrames     int
	AttackActiveFrom int
	AttackActiveTo   int
	AttackReach      float64
	AttackHeight     float64
	AttackDamage     float64
	CastFrames       int
	CastPoint        int
	StunFrames       int
	IFramesOnHit     int
	RespawnFrames    int
	Ability          string

	// runtime, owned by the states and the combat system
	AttackTimer int
	CastTimer   int
	StunTimer   int
	CastFired   bool
	FacingLeft  bool
	// SwingHits records which entities the current swing already hit so a
	// multi-frame active window lands at most once per target.
	SwingHits map[uint64]bool
}

var FighterComponent = NewComponent[*Fighter]()

// BeginSwing resets the per-swing bookkeeping.
func (f *Fighter) BeginSwing() {
	f.AttackTimer = f.AttackFrames
	if f.SwingHits == nil {
		f.SwingHits = make(map[uint64]bool)
	} else {
		clear(f.SwingHits)
	}
}

// SwingElapsed returns how many ticks of the current swing have played.
func (f *Fighter) SwingElapsed() int {
	return f.AttackFrames - f.AttackTimer
}

// SwingActive reports whether the current swing tick is inside the active
// hit window.
func (f *Fighter) SwingActive() bool {
	elapsed := f.SwingElapsed()
	return f.AttackTimer > 0 && elapsed >= f.AttackActiveFrom && elapsed <= f.AttackActiveTo
}
