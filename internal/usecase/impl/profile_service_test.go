package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"academy/internal/domain/entity"
	domainerrors "academy/internal/domain/errors"
	"academy/internal/domain/repository"
	mockrepo "academy/internal/mocks/repository"
	"academy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProfileService(t *testing.T) (usecase.ProfileUsecase, *mockrepo.MockTransactionManager, *mockrepo.MockProfileRepository) {
	t.Helper()

	txManager := mockrepo.NewMockTransactionManager()
	profileRepo := new(mockrepo.MockProfileRepository)

	svc := NewProfileService(ProfileServiceParams{
		TxManager:   txManager,
		ProfileRepo: profileRepo,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return svc, txManager, profileRepo
}

func TestProfileService_GetProfile(t *testing.T) {
	svc, _, profileRepo := newProfileService(t)
	ctx := context.Background()
	accountID := uuid.New()

	profileRepo.On("FindByAccountID", ctx, accountID).Return(&entity.Profile{
		AccountID:   accountID,
		DisplayName: "Taylor",
		Entitlement: entity.EntitlementBasic,
	}, nil)

	profile, err := svc.GetProfile(ctx, accountID)

	require.NoError(t, err)
	assert.Equal(t, "Taylor", profile.DisplayName)
	assert.Equal(t, entity.EntitlementBasic, profile.Entitlement)
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	svc, _, profileRepo := newProfileService(t)
	ctx := context.Background()
	accountID := uuid.New()

	profileRepo.On("FindByAccountID", ctx, accountID).Return(nil, repository.ErrProfileNotFound)

	profile, err := svc.GetProfile(ctx, accountID)

	assert.Nil(t, profile)
	// The distinguished not-found outcome must survive the usecase layer.
	assert.True(t, errors.Is(err, domainerrors.ErrProfileNotFound))
}

func TestProfileService_UpdateProfile_EmptyPatch(t *testing.T) {
	svc, txManager, _ := newProfileService(t)
	ctx := context.Background()

	profile, err := svc.UpdateProfile(ctx, uuid.New(), &usecase.UpdateProfileInput{})

	assert.Nil(t, profile)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestProfileService_SelectTier_WriteThenRefetch(t *testing.T) {
	svc, txManager, _ := newProfileService(t)
	ctx := context.Background()
	accountID := uuid.New()

	txManager.On("Execute", ctx, mock.Anything).Return(nil)

	factory := txManager.Factory
	factory.ProfileRepository.On("Apply", ctx, accountID, mock.MatchedBy(func(patch entity.ProfilePatch) bool {
		return patch.Entitlement != nil && *patch.Entitlement == entity.EntitlementBasic
	})).Return(nil)
	factory.ProfileRepository.On("FindByAccountID", ctx, accountID).Return(&entity.Profile{
		AccountID:   accountID,
		Entitlement: entity.EntitlementBasic,
	}, nil)

	profile, err := svc.SelectTier(ctx, accountID, entity.EntitlementBasic)

	require.NoError(t, err)
	// The returned profile is the refetched row, not a locally built one.
	assert.Equal(t, entity.EntitlementBasic, profile.Entitlement)
	factory.ProfileRepository.AssertCalled(t, "FindByAccountID", ctx, accountID)
}

func TestProfileService_SelectTier_RejectsUnset(t *testing.T) {
	svc, txManager, _ := newProfileService(t)
	ctx := context.Background()

	for _, tier := range []entity.Entitlement{entity.EntitlementUnset, entity.Entitlement("gold"), entity.Entitlement("")} {
		profile, err := svc.SelectTier(ctx, uuid.New(), tier)

		assert.Nil(t, profile, "tier %q must be rejected", tier)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	}

	txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestProfileService_SelectTier_ReselectSameTier(t *testing.T) {
	svc, txManager, _ := newProfileService(t)
	ctx := context.Background()
	accountID := uuid.New()

	txManager.On("Execute", ctx, mock.Anything).Return(nil)

	factory := txManager.Factory
	factory.ProfileRepository.On("Apply", ctx, accountID, mock.Anything).Return(nil)
	factory.ProfileRepository.On("FindByAccountID", ctx, accountID).Return(&entity.Profile{
		AccountID:   accountID,
		Entitlement: entity.EntitlementPremium,
	}, nil)

	// Re-selecting the tier the account already holds is a quiet success.
	profile, err := svc.SelectTier(ctx, accountID, entity.EntitlementPremium)

	require.NoError(t, err)
	assert.Equal(t, entity.EntitlementPremium, profile.Entitlement)
}

func TestProfileService_Upgrade(t *testing.T) {
	svc, txManager, _ := newProfileService(t)
	ctx := context.Background()
	accountID := uuid.New()

	txManager.On("Execute", ctx, mock.Anything).Return(nil)

	factory := txManager.Factory
	factory.ProfileRepository.On("Apply", ctx, accountID, mock.MatchedBy(func(patch entity.ProfilePatch) bool {
		return patch.Entitlement != nil && *patch.Entitlement == entity.EntitlementPremium
	})).Return(nil)
	factory.ProfileRepository.On("FindByAccountID", ctx, accountID).Return(&entity.Profile{
		AccountID:   accountID,
		Entitlement: entity.EntitlementPremium,
	}, nil)

	profile, err := svc.Upgrade(ctx, accountID)

	require.NoError(t, err)
	assert.Equal(t, entity.EntitlementPremium, profile.Entitlement)
}

func TestProfileService_Upgrade_NoProfileRow(t *testing.T) {
	svc, txManager, _ := newProfileService(t)
	ctx := context.Background()
	accountID := uuid.New()

	txManager.On("Execute", ctx, mock.Anything).Return(nil)
	txManager.Factory.ProfileRepository.On("Apply", ctx, accountID, mock.Anything).
		Return(repository.ErrProfileNotFound)

	profile, err := svc.Upgrade(ctx, accountID)

	assert.Nil(t, profile)
	assert.True(t, errors.Is(err, domainerrors.ErrProfileNotFound))
}
