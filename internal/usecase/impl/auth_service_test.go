package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"academy/config"
	"academy/internal/domain/entity"
	domainerrors "academy/internal/domain/errors"
	"academy/internal/domain/repository"
	"academy/internal/domain/service"
	mockrepo "academy/internal/mocks/repository"
	mockservice "academy/internal/mocks/service"
	"academy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authServiceMocks struct {
	txManager      *mockrepo.MockTransactionManager
	accountRepo    *mockrepo.MockAccountRepository
	credentialRepo *mockrepo.MockCredentialRepository
	sessionRepo    *mockrepo.MockSessionRepository
	hasher         *mockservice.MockPasswordHasher
	tokenService   *mockservice.MockTokenService
}

func newAuthService(t *testing.T) (usecase.AuthUsecase, *authServiceMocks) {
	t.Helper()

	m := &authServiceMocks{
		txManager:      mockrepo.NewMockTransactionManager(),
		accountRepo:    new(mockrepo.MockAccountRepository),
		credentialRepo: new(mockrepo.MockCredentialRepository),
		sessionRepo:    new(mockrepo.MockSessionRepository),
		hasher:         new(mockservice.MockPasswordHasher),
		tokenService:   new(mockservice.MockTokenService),
	}

	svc := NewAuthService(AuthServiceParams{
		TxManager:      m.txManager,
		AccountRepo:    m.accountRepo,
		CredentialRepo: m.credentialRepo,
		SessionRepo:    m.sessionRepo,
		Hasher:         m.hasher,
		TokenService:   m.tokenService,
		Config: &config.Config{
			Auth: &config.AuthConfig{AutoConfirm: true},
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return svc, m
}

func testRefreshClaims(accountID uuid.UUID) *service.Claims {
	return &service.Claims{AccountID: accountID, Type: "refresh"}
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()

	m.hasher.On("ValidatePasswordStrength", "learning-rocks-2024").Return(nil)
	m.hasher.On("Hash", "learning-rocks-2024").Return("hashed", nil)
	m.txManager.On("Execute", ctx, mock.Anything).Return(nil)

	factory := m.txManager.Factory
	factory.CredentialRepository.On("FindByEmail", ctx, "new@example.com").
		Return(nil, repository.ErrCredentialNotFound)
	factory.AccountRepository.On("Create", ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Account).ID = uuid.New()
		}).
		Return(nil)
	factory.CredentialRepository.On("Create", ctx, mock.AnythingOfType("*entity.Credential")).Return(nil)
	factory.ProfileRepository.On("Create", ctx, mock.AnythingOfType("*entity.Profile")).Return(nil)

	out, err := svc.Register(ctx, &usecase.RegisterInput{
		Email:       "new@example.com",
		Password:    "learning-rocks-2024",
		DisplayName: "Trader One",
	})

	require.NoError(t, err)
	require.NotNil(t, out.Account)
	require.NotNil(t, out.Account.Profile)
	// A fresh account starts with an unset entitlement.
	assert.Equal(t, entity.EntitlementUnset, out.Account.Profile.Entitlement)
	assert.Equal(t, "Trader One", out.Account.Profile.DisplayName)
	assert.Equal(t, "new@example.com", out.Account.Email)

	createdCredential := factory.CredentialRepository.Calls[1].Arguments.Get(1).(*entity.Credential)
	assert.True(t, createdCredential.Confirmed) // AutoConfirm is on in the test config
	assert.Equal(t, "hashed", createdCredential.PasswordHash)
}

func TestAuthService_Register_AlreadyRegistered(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()

	m.hasher.On("ValidatePasswordStrength", mock.Anything).Return(nil)
	m.hasher.On("Hash", mock.Anything).Return("hashed", nil)
	m.txManager.On("Execute", ctx, mock.Anything).Return(nil)

	m.txManager.Factory.CredentialRepository.On("FindByEmail", ctx, "taken@example.com").
		Return(&entity.Credential{Email: "taken@example.com"}, nil)

	out, err := svc.Register(ctx, &usecase.RegisterInput{
		Email:    "taken@example.com",
		Password: "learning-rocks-2024",
	})

	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyRegistered))
	// Nothing must be created for a duplicate registration.
	m.txManager.Factory.AccountRepository.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()

	// Malformed email is rejected before any remote work.
	out, err := svc.Register(ctx, &usecase.RegisterInput{Email: "not-an-email", Password: "learning-rocks-2024"})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	// Weak password is rejected before hashing.
	m.hasher.On("ValidatePasswordStrength", "short").
		Return(domainerrors.ErrPasswordStrength.WrapMessage("password is too short"))

	out, err = svc.Register(ctx, &usecase.RegisterInput{Email: "ok@example.com", Password: "short"})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
	m.hasher.AssertNotCalled(t, "Hash", mock.Anything)
	m.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()
	accountID := uuid.New()

	m.credentialRepo.On("FindByEmail", ctx, "learner@example.com").Return(&entity.Credential{
		AccountID:    accountID,
		Email:        "learner@example.com",
		PasswordHash: "hashed",
		Confirmed:    true,
	}, nil)
	m.hasher.On("Check", "learning-rocks-2024", "hashed").Return(true)
	m.accountRepo.On("FindByID", ctx, accountID).Return(&entity.Account{
		ID:    accountID,
		Email: "learner@example.com",
		Profile: &entity.Profile{
			AccountID:   accountID,
			Entitlement: entity.EntitlementBasic,
		},
	}, nil)
	m.tokenService.On("GenerateTokens", accountID).Return("access-token", "refresh-token", nil)
	m.tokenService.On("HashToken", "refresh-token").Return("refresh-hash")
	m.tokenService.On("AccessTokenDuration").Return(15 * time.Minute)
	m.tokenService.On("RefreshTokenDuration").Return(7 * 24 * time.Hour)
	m.sessionRepo.On("Create", ctx, mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	out, err := svc.Login(ctx, &usecase.LoginInput{Email: "learner@example.com", Password: "learning-rocks-2024"})

	require.NoError(t, err)
	assert.Equal(t, "access-token", out.AccessToken)
	assert.Equal(t, "refresh-token", out.RefreshToken)
	assert.Equal(t, accountID, out.Account.ID)

	storedSession := m.sessionRepo.Calls[0].Arguments.Get(1).(*entity.RefreshToken)
	assert.Equal(t, "refresh-hash", storedSession.TokenHash) // Only the hash is persisted
	assert.Equal(t, accountID, storedSession.AccountID)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()

	m.credentialRepo.On("FindByEmail", ctx, "nobody@example.com").
		Return(nil, repository.ErrCredentialNotFound)

	out, err := svc.Login(ctx, &usecase.LoginInput{Email: "nobody@example.com", Password: "whatever-1234"})

	assert.Nil(t, out)
	// Unknown email and wrong password map to the same error.
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()

	m.credentialRepo.On("FindByEmail", ctx, "learner@example.com").Return(&entity.Credential{
		AccountID:    uuid.New(),
		PasswordHash: "hashed",
		Confirmed:    true,
	}, nil)
	m.hasher.On("Check", "wrong-password", "hashed").Return(false)

	out, err := svc.Login(ctx, &usecase.LoginInput{Email: "learner@example.com", Password: "wrong-password"})

	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	m.tokenService.AssertNotCalled(t, "GenerateTokens", mock.Anything)
}

func TestAuthService_Login_EmailNotConfirmed(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()

	m.credentialRepo.On("FindByEmail", ctx, "pending@example.com").Return(&entity.Credential{
		AccountID:    uuid.New(),
		PasswordHash: "hashed",
		Confirmed:    false,
	}, nil)
	m.hasher.On("Check", "learning-rocks-2024", "hashed").Return(true)

	out, err := svc.Login(ctx, &usecase.LoginInput{Email: "pending@example.com", Password: "learning-rocks-2024"})

	assert.Nil(t, out)
	// Distinguishable from bad credentials so the client can prompt a resend.
	assert.True(t, errors.Is(err, domainerrors.ErrEmailNotConfirmed))
	assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Refresh_Success(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()
	accountID := uuid.New()

	m.tokenService.On("ValidateRefreshToken", "refresh-token").
		Return(testRefreshClaims(accountID), nil)
	m.tokenService.On("HashToken", "refresh-token").Return("refresh-hash")
	m.sessionRepo.On("FindByHash", ctx, "refresh-hash").Return(&entity.RefreshToken{
		AccountID: accountID,
		TokenHash: "refresh-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	m.tokenService.On("GenerateTokens", accountID).Return("new-access", "unused-refresh", nil)
	m.tokenService.On("AccessTokenDuration").Return(15 * time.Minute)

	out, err := svc.Refresh(ctx, &usecase.RefreshInput{RefreshToken: "refresh-token"})

	require.NoError(t, err)
	assert.Equal(t, "new-access", out.AccessToken)
	// The stored refresh token is never rotated.
	m.sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.sessionRepo.AssertNotCalled(t, "DeleteByHash", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_SessionRevoked(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()
	accountID := uuid.New()

	m.tokenService.On("ValidateRefreshToken", "refresh-token").
		Return(testRefreshClaims(accountID), nil)
	m.tokenService.On("HashToken", "refresh-token").Return("refresh-hash")
	m.sessionRepo.On("FindByHash", ctx, "refresh-hash").Return(nil, repository.ErrSessionNotFound)

	out, err := svc.Refresh(ctx, &usecase.RefreshInput{RefreshToken: "refresh-token"})

	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionInvalid))
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	svc, m := newAuthService(t)
	ctx := context.Background()

	// Even a token that fails validation is still scrubbed from storage.
	m.tokenService.On("ValidateRefreshToken", "garbage").Return(nil, errors.New("token is invalid"))
	m.tokenService.On("HashToken", "garbage").Return("garbage-hash")
	m.sessionRepo.On("DeleteByHash", ctx, "garbage-hash").Return(nil)

	err := svc.Logout(ctx, &usecase.LogoutInput{RefreshToken: "garbage"})

	assert.NoError(t, err)
	m.sessionRepo.AssertCalled(t, "DeleteByHash", ctx, "garbage-hash")
}
