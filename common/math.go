package common

import "math"

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// Gravity is the downward acceleration applied by the physics space,
	// in pixels per second squared (screen-down positive Y).
	Gravity = 1800.0

	// TickRate is the fixed simulation rate in updates per second.
	TickRate = 60.0

	// TickDelta is the fixed timestep in seconds.
	TickDelta = 1.0 / TickRate
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize returns the unit vector of (x, y) and its original length.
// A zero vector normalizes to zero.
func Normalize(x, y float64) (nx, ny, length float64) {
	length = math.Hypot(x, y)
	if length == 0 {
		return 0, 0, 0
	}
	return x / length, y / length, length
}

// Rect is an axis-aligned box in world coordinates (top-left anchored,
// screen-down positive Y).
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r Rect) CenterX() float64 { return r.X + r.W/2 }

func (r Rect) CenterY() float64 { return r.Y + r.H/2 }
