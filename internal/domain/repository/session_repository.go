package repository

import (
	"context"
	"errors"

	"academy/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for session persistence.
var (
	// ErrSessionNotFound is returned when a refresh token is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a refresh token has expired.
	ErrSessionExpired = errors.New("session has expired")
)

// SessionRepository defines the interface for refresh-token session management.
type SessionRepository interface {
	// Create persists a new refresh token, representing a live session.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash retrieves a refresh token record by its securely stored hash.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteByHash removes a refresh token by its hash, ending that session.
	// Deleting an absent hash is not an error: sign-out is idempotent.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByAccountID removes all refresh tokens for an account.
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error

	// DeleteExpired removes all expired refresh tokens. Called periodically for cleanup.
	DeleteExpired(ctx context.Context) error
}
