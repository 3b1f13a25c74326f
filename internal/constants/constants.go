package constants

// Context keys set by the auth middleware.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyIdentity = "identity"
)

// OrderStep is the gap between sibling sort keys. Appending always adds a
// full step, so inserts never need to renumber neighbours.
const OrderStep = 1000

// Username constraints applied after normalization.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 24
)

// MaxUsernameAttempts bounds the numeric-suffix search when a derived
// username is already taken.
const MaxUsernameAttempts = 20

// Defaults applied to blank titles after trimming.
const (
	DefaultProjectName = "Untitled Project"
	DefaultColumnTitle = "Untitled"
	DefaultTaskTitle   = "Untitled task"
)
