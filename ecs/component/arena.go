package component

// Wall is a static solid AABB centered on the entity transform. The physics
// system gives walls static chipmunk boxes; the projectile system checks
// them directly.
type Wall struct {
	Width  float64
	Height float64
}

var WallComponent = NewComponent[Wall]()

// SpawnPoint marks where a fighter starts and where it respawns.
type SpawnPoint struct {
	X float64
	Y float64
}

var SpawnPointComponent = NewComponent[SpawnPoint]()

// Arena carries match-level geometry: the playable bounds and gravity. One
// entity per world.
type Arena struct {
	Width   float64
	Height  float64
	Gravity float64
}

var ArenaComponent = NewComponent[Arena]()
