package syncengine

// SessionState tracks the engine's lifecycle. Transitions:
// Unauthenticated → Migrating → IndexLoading → Subscribed ⇄ Switching,
// ending in Disposed.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateMigrating
	StateIndexLoading
	StateSubscribed
	StateSwitching
	StateDisposed
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateMigrating:
		return "migrating"
	case StateIndexLoading:
		return "index-loading"
	case StateSubscribed:
		return "subscribed"
	case StateSwitching:
		return "switching"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
