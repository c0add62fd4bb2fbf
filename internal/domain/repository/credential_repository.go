package repository

import (
	"context"
	"errors"

	"academy/internal/domain/entity"
)

// ErrCredentialNotFound is returned when no credential exists for an email.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository defines the operations for email/password credential persistence.
type CredentialRepository interface {
	// FindByEmail retrieves the credential registered for an email address.
	FindByEmail(ctx context.Context, email string) (*entity.Credential, error)

	// Create persists a new credential.
	Create(ctx context.Context, credential *entity.Credential) error

	// Update modifies an existing credential, e.g. after email confirmation.
	Update(ctx context.Context, credential *entity.Credential) error
}
