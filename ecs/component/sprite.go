package component

import "image/color"

// Sprite is a flat-colored placeholder rectangle centered on the transform.
type Sprite struct {
	Width  float64
	Height float64
	Color  color.NRGBA
	// Layer orders drawing; lower layers draw first.
	Layer int
}

var SpriteComponent = NewComponent[Sprite]()
