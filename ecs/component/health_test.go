package component

import "testing"

func TestNewHealthClampsMax(t *testing.T) {
	h := NewHealth(-5)
	if h.Max != 1 || h.Current != 1 {
		t.Fatalf("expected max clamped to 1, got max=%v current=%v", h.Max, h.Current)
	}
}

func TestApplyDamage(t *testing.T) {
	t.Run("reduces health", func(t *testing.T) {
		h := NewHealth(100)
		if !h.ApplyDamage(30, 0) {
			t.Fatalf("expected damage to land")
		}
		if h.Current != 70 {
			t.Fatalf("expected 70 hp, got %v", h.Current)
		}
	})

	t.Run("kills at zero", func(t *testing.T) {
		h := NewHealth(100)
		h.ApplyDamage(250, 0)
		if h.Current != 0 {
			t.Fatalf("expected hp clamped at 0, got %v", h.Current)
		}
		if !h.Dead || h.IsAlive() {
			t.Fatalf("expected dead, got dead=%v alive=%v", h.Dead, h.IsAlive())
		}
	})

	t.Run("ignores corpses", func(t *testing.T) {
		h := NewHealth(100)
		h.ApplyDamage(100, 0)
		if h.ApplyDamage(10, 0) {
			t.Fatalf("expected damage blocked on a corpse")
		}
	})

	t.Run("ignores non-positive amounts", func(t *testing.T) {
		h := NewHealth(100)
		if h.ApplyDamage(0, 0) || h.ApplyDamage(-5, 0) {
			t.Fatalf("expected non-positive damage blocked")
		}
		if h.Current != 100 {
			t.Fatalf("expected hp untouched, got %v", h.Current)
		}
	})

	t.Run("blocked by i-frames", func(t *testing.T) {
		h := NewHealth(100)
		h.StartIFrames(3)
		if h.ApplyDamage(10, 0) {
			t.Fatalf("expected damage blocked during i-frames")
		}
		if h.Current != 100 {
			t.Fatalf("expected hp untouched, got %v", h.Current)
		}
	})
}

func TestObserversFireInOrder(t *testing.T) {
	h := NewHealth(50)
	var calls []string
	h.OnDamage = func(h *Health, amount float64, source uint64) {
		calls = append(calls, "damage")
		if amount != 50 || source != 7 {
			t.Fatalf("expected amount=50 source=7, got %v %v", amount, source)
		}
	}
	h.OnDeath = func(h *Health, source uint64) {
		calls = append(calls, "death")
		if source != 7 {
			t.Fatalf("expected source=7, got %v", source)
		}
	}

	h.ApplyDamage(50, 7)

	if len(calls) != 2 || calls[0] != "damage" || calls[1] != "death" {
		t.Fatalf("expected damage then death, got %v", calls)
	}
}

func TestHealRevivesAndClamps(t *testing.T) {
	h := NewHealth(100)
	h.ApplyDamage(100, 0)
	if h.IsAlive() {
		t.Fatalf("expected dead before heal")
	}

	h.Heal(40)
	if !h.IsAlive() || h.Current != 40 {
		t.Fatalf("expected revived at 40 hp, got alive=%v current=%v", h.IsAlive(), h.Current)
	}

	h.Heal(500)
	if h.Current != h.Max {
		t.Fatalf("expected hp clamped at max, got %v", h.Current)
	}

	h.Heal(-10)
	if h.Current != h.Max {
		t.Fatalf("expected negative heal ignored, got %v", h.Current)
	}
}

func TestIFramesKeepLongestWindow(t *testing.T) {
	h := NewHealth(100)
	h.StartIFrames(5)
	h.StartIFrames(2)
	if h.IFrames != 5 {
		t.Fatalf("expected longer window kept, got %d", h.IFrames)
	}

	h.StartIFrames(0)
	if h.IFrames != 5 {
		t.Fatalf("expected zero-length window ignored, got %d", h.IFrames)
	}

	for i := 0; i < 5; i++ {
		h.Tick()
	}
	if h.IFrames != 0 {
		t.Fatalf("expected i-frames expired, got %d", h.IFrames)
	}
	h.Tick()
	if h.IFrames != 0 {
		t.Fatalf("expected tick on expired i-frames to be a no-op, got %d", h.IFrames)
	}

	if !h.ApplyDamage(10, 0) {
		t.Fatalf("expected damage to land after i-frames expired")
	}
}
