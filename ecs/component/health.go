package component

// Health is a reusable health pool for anything that can take damage. It is
// stored as a pointer component so state-machine contexts and combat share
// one instance.
type Health struct {
	Max     float64
	Current float64
	IFrames int
	Dead    bool

	// Observers fire synchronously from ApplyDamage. Source is the raw
	// entity handle of the attacker (0 for environmental damage).
	OnDamage func(h *Health, amount float64, source uint64)
	OnDeath  func(h *Health, source uint64)
}

var HealthComponent = NewComponent[*Health]()

// NewHealth creates a Health with max/current initialized.
func NewHealth(max float64) *Health {
	if max <= 0 {
		max = 1
	}
	return &Health{Max: max, Current: max}
}

// IsAlive reports whether the owner is alive.
func (h *Health) IsAlive() bool {
	return h != nil && !h.Dead && h.Current > 0
}

// ApplyDamage applies damage unless the owner is dead or in i-frames.
// Reports whether damage landed.
func (h *Health) ApplyDamage(amount float64, source uint64) bool {
	if h == nil || h.Dead || h.IFrames > 0 || amount <= 0 {
		return false
	}
	h.Current -= amount
	if h.Current < 0 {
		h.Current = 0
	}
	if h.OnDamage != nil {
		h.OnDamage(h, amount, source)
	}
	if h.Current <= 0 {
		h.Dead = true
		if h.OnDeath != nil {
			h.OnDeath(h, source)
		}
	}
	return true
}

// Heal restores health up to Max. Healing a dead owner revives it.
func (h *Health) Heal(amount float64) {
	if h == nil || amount <= 0 {
		return
	}
	h.Current += amount
	if h.Current > h.Max {
		h.Current = h.Max
	}
	if h.Current > 0 {
		h.Dead = false
	}
}

// StartIFrames grants invulnerability for the given number of ticks.
func (h *Health) StartIFrames(frames int) {
	if h == nil || frames <= 0 {
		return
	}
	if frames > h.IFrames {
		h.IFrames = frames
	}
}

// Tick advances the i-frame timer by one frame.
func (h *Health) Tick() {
	if h == nil || h.IFrames <= 0 {
		return
	}
	h.IFrames--
}
