package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and collider configuration for
// a dynamic fighter body. The collider is a box centered on the transform.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Width      float64
	Height     float64
	Mass       float64
	Friction   float64
	Elasticity float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
