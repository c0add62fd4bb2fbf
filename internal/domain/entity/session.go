package entity

import (
	"time"

	"github.com/google/uuid"
)

// Credential represents an email/password login method for an account.
type Credential struct {
	ID           uuid.UUID // The unique ID for this credential record.
	AccountID    uuid.UUID // Links this credential to the Account it belongs to.
	Email        string    // The login email; unique across credentials.
	PasswordHash string    // The bcrypt-hashed password.
	Confirmed    bool      // Whether the email address has been confirmed.
	CreatedAt    time.Time // Timestamp of when this credential was created.
}

// Session is proof of an authenticated identity as held by a client: the
// token pair issued by the portal plus the identity it was issued for.
type Session struct {
	AccountID    uuid.UUID // The account the session belongs to.
	Email        string    // The account email, for display without a profile fetch.
	AccessToken  string    // Short-lived bearer token for API calls.
	RefreshToken string    // Long-lived token used to obtain new access tokens.
	ExpiresAt    time.Time // Expiry of the access token.
}

// RefreshToken is the server-side record of a long-lived session. It is used
// to obtain a new access token after the old one expires, without requiring
// credentials.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this refresh token record.
	AccountID uuid.UUID // Links this session to the Account it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token.
	ExpiresAt time.Time // When this refresh token becomes invalid.
	CreatedAt time.Time // When this session was created.
}
