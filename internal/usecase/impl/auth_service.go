// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"net/mail"
	"time"

	"academy/config"
	deliverycontext "academy/internal/delivery/context"
	"academy/internal/domain/entity"
	domainerrors "academy/internal/domain/errors"
	"academy/internal/domain/repository"
	"academy/internal/domain/service"
	"academy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager      repository.TransactionManager
	accountRepo    repository.AccountRepository
	credentialRepo repository.CredentialRepository
	sessionRepo    repository.SessionRepository
	hasher         service.PasswordHasher
	tokenService   service.TokenService
	autoConfirm    bool
	logger         *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	AccountRepo    repository.AccountRepository
	CredentialRepo repository.CredentialRepository
	SessionRepo    repository.SessionRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	Config         *config.Config
	Logger         *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	autoConfirm := false
	if params.Config != nil && params.Config.Auth != nil {
		autoConfirm = params.Config.Auth.AutoConfirm
	}

	return &authService{
		txManager:      params.TxManager,
		accountRepo:    params.AccountRepo,
		credentialRepo: params.CredentialRepo,
		sessionRepo:    params.SessionRepo,
		hasher:         params.Hasher,
		tokenService:   params.TokenService,
		autoConfirm:    autoConfirm,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete account registration process.
// The account, its credential and an empty profile (entitlement unset) are
// created atomically; a half-registered account must never be observable.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if err := validateEmail(input.Email); err != nil {
		srv.log(ctx).Warn("Email validation failed during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	// Hash outside the transaction (bcrypt is CPU-bound).
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	var registeredAccount *entity.Account
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		credentialRepo := repoFactory.CredentialRepo()

		_, err := credentialRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrAlreadyRegistered.WrapMessage("email already registered")
		}
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			return errors.Wrap(err, "failed to check existing credential")
		}

		registeredAccount, err = srv.createAccountWithCredential(ctx, repoFactory, input, hashedPassword)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", registeredAccount.ID))

	return &usecase.RegisterOutput{Account: registeredAccount}, nil
}

func (srv *authService) createAccountWithCredential(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	input *usecase.RegisterInput,
	hashedPassword string,
) (*entity.Account, error) {
	accountRepo := repoFactory.AccountRepo()
	credentialRepo := repoFactory.CredentialRepo()
	profileRepo := repoFactory.ProfileRepo()

	newAccount := &entity.Account{Email: input.Email}
	if err := accountRepo.Create(ctx, newAccount); err != nil {
		return nil, errors.Wrap(err, "failed to create account during registration")
	}

	newCredential := &entity.Credential{
		AccountID:    newAccount.ID,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Confirmed:    srv.autoConfirm,
	}
	if err := credentialRepo.Create(ctx, newCredential); err != nil {
		return nil, errors.Wrap(err, "failed to create credential during registration")
	}

	// Every account gets a profile row immediately. The entitlement stays
	// unset until the learner picks a plan.
	newProfile := &entity.Profile{
		AccountID:   newAccount.ID,
		DisplayName: input.DisplayName,
		Entitlement: entity.EntitlementUnset,
	}
	if err := profileRepo.Create(ctx, newProfile); err != nil {
		return nil, errors.Wrap(err, "failed to create profile during registration")
	}
	newAccount.Profile = newProfile

	return newAccount, nil
}

// Login orchestrates the sign-in process.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	credential, err := srv.credentialRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

			// An unknown email and a wrong password must be indistinguishable.
			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to load credential during login")
	}

	// Check password outside any transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, credential.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	// Confirmation is checked only after the password matched, so probing
	// confirmation state requires valid credentials.
	if !credential.Confirmed {
		srv.log(ctx).Warn("Login blocked for unconfirmed email", slog.String("email", input.Email))

		return nil, domainerrors.ErrEmailNotConfirmed.WrapMessage("login failed")
	}

	account, err := srv.accountRepo.FindByID(ctx, credential.AccountID)
	if err != nil {
		srv.log(ctx).Error("Login failed to load account", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load account during login")
	}

	accessToken, refreshToken, err := srv.tokenService.GenerateTokens(account.ID)
	if err != nil {
		srv.log(ctx).Error("Login failed to generate tokens", slog.Any("accountID", account.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate tokens during login")
	}

	if err := srv.storeRefreshToken(ctx, account.ID, refreshToken); err != nil {
		srv.log(ctx).Error("Login failed to persist session", slog.Any("accountID", account.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store refresh token during login")
	}

	srv.log(ctx).Debug("Login completed", slog.Any("accountID", account.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(srv.tokenService.AccessTokenDuration()),
		Account:      account,
	}, nil
}

// Refresh issues a new access token for a live session.
// The refresh token remains unchanged; rotation would invalidate concurrent
// refresh attempts from the same client.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Debug("Attempting to refresh access token")

	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, domainerrors.ErrSessionInvalid.WrapMessage("invalid refresh token")
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)
	if _, err := srv.sessionRepo.FindByHash(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) || errors.Is(err, repository.ErrSessionExpired) {
			return nil, domainerrors.ErrSessionInvalid.WrapMessage("session not found or expired")
		}

		return nil, errors.Wrap(err, "failed to look up session during refresh")
	}

	accessToken, _, err := srv.tokenService.GenerateTokens(claims.AccountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate new access token")
	}

	return &usecase.RefreshOutput{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(srv.tokenService.AccessTokenDuration()),
	}, nil
}

// Logout ends a session by deleting its refresh token. The operation is
// idempotent: an unknown or already-deleted token is still a successful
// logout from the caller's point of view.
func (srv *authService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	srv.log(ctx).Info("Attempting to log out")

	if _, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken); err != nil {
		// Even if the token is invalid, proceed to delete it from the database.
		srv.log(ctx).Warn("Logout with invalid token", slog.Any("error", err))
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)
	if err := srv.sessionRepo.DeleteByHash(ctx, tokenHash); err != nil {
		srv.log(ctx).Error("Failed to delete refresh token", slog.Any("error", err))

		return errors.Wrap(err, "failed to delete refresh token")
	}
	srv.log(ctx).Info("Successfully logged out")

	return nil
}

func (srv *authService) storeRefreshToken(ctx context.Context, accountID uuid.UUID, refreshToken string) error {
	newSession := &entity.RefreshToken{
		AccountID: accountID,
		TokenHash: srv.tokenService.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(srv.tokenService.RefreshTokenDuration()),
	}

	if err := srv.sessionRepo.Create(ctx, newSession); err != nil {
		return errors.Wrap(err, "failed to store refresh token")
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("email format is invalid")
	}

	return nil
}
