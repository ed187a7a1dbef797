// Package carttoken models the lifecycle of the Store API session token.
//
// A token is either absent or active. Transitions are pure: they return the
// next state and the storage effect the caller must apply.
package carttoken

import "strings"

// Effect is the storage side effect of a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectPersist
	EffectDelete
)

func (e Effect) String() string {
	switch e {
	case EffectPersist:
		return "persist"
	case EffectDelete:
		return "delete"
	default:
		return "none"
	}
}

// State is Absent (zero value) or Active(token).
type State struct {
	token string
}

// Absent is the state with no current token.
func Absent() State { return State{} }

// Active is the state holding token. A blank token is Absent.
func Active(token string) State {
	return State{token: strings.TrimSpace(token)}
}

// Token returns the current token and whether one is active.
func (s State) Token() (string, bool) {
	return s.token, s.token != ""
}

// IsActive reports whether a token is held.
func (s State) IsActive() bool { return s.token != "" }

// Observe applies a token seen on a platform response. A blank or unchanged
// token leaves the state alone; any other token becomes current.
func (s State) Observe(responseToken string) (State, Effect) {
	next := strings.TrimSpace(responseToken)
	if next == "" || next == s.token {
		return s, EffectNone
	}
	return State{token: next}, EffectPersist
}

// Clear drops the token. The delete effect is issued even from Absent so
// storage never keeps a stale value.
func (s State) Clear() (State, Effect) {
	return State{}, EffectDelete
}
