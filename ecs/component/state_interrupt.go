package component

// StateInterrupt is a one-shot request for an immediate state change on a
// fighter. Systems add it to the entity and the controller consumes it next
// tick, after validating it against health (a corpse can't be stunned, and
// leaving dead requires health to have been restored first).
type StateInterrupt struct {
	State string
}

var StateInterruptComponent = NewComponent[StateInterrupt]()
