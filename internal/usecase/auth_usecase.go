// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"academy/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new learner account.
// DisplayName is optional and lands on the profile row when present.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginInput defines the data required for a learner to sign in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput carries the refresh token used to obtain a new access token.
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput carries the refresh token of the session being ended.
type LogoutInput struct {
	RefreshToken string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's basic information.
type RegisterOutput struct {
	Account *entity.Account
}

// LoginOutput returns the generated tokens after a successful sign-in.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Account      *entity.Account
}

// RefreshOutput returns the replacement access token.
// The refresh token itself is never rotated.
type RefreshOutput struct {
	AccessToken string
	ExpiresAt   time.Time
}

// AuthUsecase defines the interface for account authentication operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)
	Logout(ctx context.Context, input *LogoutInput) error
}
