package access

import (
	"context"

	"academy/internal/domain/entity"
)

// SessionEventType classifies the session changes a Gateway can report
// outside of a direct call.
type SessionEventType int

const (
	// SessionRefreshed means the gateway obtained a new access token for
	// the current session.
	SessionRefreshed SessionEventType = iota
	// SessionEnded means the session became unusable (revoked or expired
	// beyond recovery) and the holder must treat itself as signed out.
	SessionEnded
)

// SessionEvent describes an out-of-band session change.
type SessionEvent struct {
	Type    SessionEventType
	Session *entity.Session // nil for SessionEnded
}

// Gateway is the controller's only window onto the portal backend. The
// controller never inspects transport details; everything it needs is
// expressed as entities and the shared error taxonomy.
//
// All methods must map remote failures onto the sentinels in
// internal/domain/errors (ErrAlreadyRegistered, ErrInvalidCredentials,
// ErrEmailNotConfirmed, ErrProfileNotFound, ErrRemoteUnavailable, ...) so
// the controller can discriminate without string matching.
type Gateway interface {
	// CreateAccount registers a new account. The display name is optional
	// and lands on the new profile row. It does not authenticate.
	CreateAccount(ctx context.Context, email, password, displayName string) error

	// Authenticate signs in and returns the new session.
	Authenticate(ctx context.Context, email, password string) (*entity.Session, error)

	// InvalidateSession revokes the session remotely. The caller clears its
	// local state regardless of the returned error.
	InvalidateSession(ctx context.Context, session *entity.Session) error

	// CurrentSession returns the session the gateway still holds from an
	// earlier run, or nil when there is none to rehydrate.
	CurrentSession(ctx context.Context) (*entity.Session, error)

	// SessionEvents exposes out-of-band session changes, e.g. background
	// token refreshes. The channel is closed when the gateway shuts down.
	SessionEvents() <-chan SessionEvent

	// FetchProfile reads the profile row for the session's account.
	// A missing row is reported as ErrProfileNotFound.
	FetchProfile(ctx context.Context, session *entity.Session) (*entity.Profile, error)

	// WriteTier records the chosen plan. The caller refetches afterwards;
	// the write's own response is never trusted as the new local profile.
	WriteTier(ctx context.Context, session *entity.Session, tier entity.Entitlement) error

	// UpgradeTier moves the account to the premium plan.
	UpgradeTier(ctx context.Context, session *entity.Session) error
}
