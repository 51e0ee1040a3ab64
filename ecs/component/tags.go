package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type AITag struct{}

var AITagComponent = NewComponent[AITag]()

// Name is a human-readable label used by the camera target lookup, the HUD
// and the transition log.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
