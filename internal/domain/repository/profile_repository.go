package repository

import (
	"context"
	"errors"

	"academy/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProfileNotFound is the distinguished "no row" outcome of a profile read.
// Callers must treat it as a setup-completion signal, never as a fatal error.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines the operations for profile persistence.
// A profile row is keyed by its account ID; an account has at most one row.
type ProfileRepository interface {
	// FindByAccountID retrieves the profile row for an account.
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error)

	// Create inserts a new profile row.
	Create(ctx context.Context, profile *entity.Profile) error

	// Apply writes the non-nil fields of the patch to the profile row.
	Apply(ctx context.Context, accountID uuid.UUID, patch entity.ProfilePatch) error
}
