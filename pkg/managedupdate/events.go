package managedupdate

// Reserved channel ids. They are negative so they never collide with
// user-defined event ids.
const (
	EventIDUpdate      = -1000
	EventIDLateUpdate  = -1001
	EventIDFixedUpdate = -1002
)

// Channel names used in logs, errors and metrics.
const (
	NameUpdate      = "update"
	NameLateUpdate  = "late_update"
	NameFixedUpdate = "fixed_update"
)
