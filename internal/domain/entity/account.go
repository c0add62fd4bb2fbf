package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the core entity in the system, representing a unique learner identity.
// It carries only identity information; everything display- or plan-related lives
// on the Profile.
type Account struct {
	ID        uuid.UUID // The Global Unique Identifier (GUID) for the account.
	Email     string    // The account's login identifier.
	Profile   *Profile  // The per-account profile. Nil only when the row has not been created yet.
	CreatedAt time.Time // Timestamp of when this account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this account.
}

// Profile is the durable per-account record describing display attributes and
// the entitlement tier. An account has at most one Profile.
type Profile struct {
	AccountID   uuid.UUID   // Foreign key that links this profile to its Account.
	DisplayName string      // Optional display name shown in the portal.
	AvatarURL   string      // Optional avatar image reference.
	Entitlement Entitlement // Tri-state plan flag; starts at EntitlementUnset.
	CreatedAt   time.Time   // Timestamp of when this profile was created.
	UpdatedAt   time.Time   // Timestamp of the last modification to this profile.
}

// ProfilePatch describes a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	DisplayName *string
	AvatarURL   *string
	Entitlement *Entitlement
}

// Empty reports whether the patch would change nothing.
func (p ProfilePatch) Empty() bool {
	return p.DisplayName == nil && p.AvatarURL == nil && p.Entitlement == nil
}
