package srp

// State is the externally visible state of a Client or Server.
type State int

// States shared by both roles. Success and Failed are terminal.
const (
	StateInit State = iota
	StateCredentialed
	StateKeyed
	StateSuccess
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCredentialed:
		return "credentialed"
	case StateKeyed:
		return "keyed"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}
