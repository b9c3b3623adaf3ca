package relay

// State is the lifecycle state of one physical Relay.
type State int32

const (
	// Unclaimed relays were constructed but never enabled.
	Unclaimed State = iota
	// Active relays hold the registry slot and forward frame callbacks.
	Active
	// Inert relays lost the claim to another instance. They never forward.
	Inert
	// Destroyed relays were destroyed by the host or released by a registry reset.
	Destroyed
)

func (s State) String() string {
	switch s {
	case Unclaimed:
		return "unclaimed"
	case Active:
		return "active"
	case Inert:
		return "inert"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
