package usecase

import (
	"context"

	"academy/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateProfileInput defines the optional display fields of a profile update.
// Nil fields are left untouched.
type UpdateProfileInput struct {
	DisplayName *string
	AvatarURL   *string
}

// ProfileUsecase defines the interface for profile and entitlement operations.
//
// SelectTier and Upgrade both follow write-then-refetch: the returned profile
// is re-read from storage after the write, never assembled in memory, so the
// caller always observes what the store actually holds.
type ProfileUsecase interface {
	// GetProfile retrieves the profile row for an account.
	// Returns ErrProfileNotFound when the row does not exist.
	GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error)

	// UpdateProfile applies a partial update to the display fields.
	UpdateProfile(ctx context.Context, accountID uuid.UUID, input *UpdateProfileInput) (*entity.Profile, error)

	// SelectTier records the account's chosen plan. Only basic and premium
	// are selectable; re-selecting the current tier is a no-op that succeeds.
	SelectTier(ctx context.Context, accountID uuid.UUID, tier entity.Entitlement) (*entity.Profile, error)

	// Upgrade moves the account to the premium tier. Upgrading an already
	// premium account succeeds and changes nothing.
	Upgrade(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error)
}
