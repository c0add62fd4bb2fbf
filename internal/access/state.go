// Package access owns the client-side session and profile state of the
// learner portal and derives a single access state from them. Delivery
// surfaces (a TUI, an SDK consumer, tests) subscribe to it instead of
// tracking tokens and entitlements themselves.
package access

import (
	"academy/internal/domain/entity"
)

// State is the single derived flag consumers branch on.
type State int

const (
	// StateUnauthenticated means no session is held.
	StateUnauthenticated State = iota
	// StateLoading means a session is held and the profile fetch is in flight.
	StateLoading
	// StateAwaitingTierSelection means a session is held but the account has
	// not completed tier selection (no profile row or entitlement unset).
	StateAwaitingTierSelection
	// StateEntitledBasic means the account holds a basic entitlement.
	StateEntitledBasic
	// StateEntitledPremium means the account holds a premium entitlement.
	StateEntitledPremium
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoading:
		return "loading"
	case StateAwaitingTierSelection:
		return "awaiting_tier_selection"
	case StateEntitledBasic:
		return "entitled_basic"
	case StateEntitledPremium:
		return "entitled_premium"
	default:
		return "unknown"
	}
}

// Entitled reports whether the state grants access to the learner area.
func (s State) Entitled() bool {
	return s == StateEntitledBasic || s == StateEntitledPremium
}

// Snapshot is an immutable view of the controller's state handed to
// subscribers. Session and Profile are copies; mutating them has no effect.
type Snapshot struct {
	State   State
	Session *entity.Session
	Profile *entity.Profile
}

// computeState derives the access state. It is a pure projection of the
// three inputs; no other field may influence it.
func computeState(session *entity.Session, profile *entity.Profile, loading bool) State {
	switch {
	case session == nil:
		return StateUnauthenticated
	case loading:
		return StateLoading
	case profile == nil || !profile.Entitlement.Entitled():
		// A missing profile row and a failed fetch both settle here: the
		// learner is signed in but cannot enter the portal yet.
		return StateAwaitingTierSelection
	case profile.Entitlement == entity.EntitlementPremium:
		return StateEntitledPremium
	default:
		return StateEntitledBasic
	}
}
