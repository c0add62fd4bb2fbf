package impl

import (
	"context"
	"log/slog"

	deliverycontext "academy/internal/delivery/context"
	"academy/internal/domain/entity"
	domainerrors "academy/internal/domain/errors"
	"academy/internal/domain/repository"
	"academy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	txManager   repository.TransactionManager
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// ProfileServiceParams holds dependencies for profileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProfileRepo repository.ProfileRepository
	Logger      *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager:   params.TxManager,
		profileRepo: params.ProfileRepo,
		logger:      params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile retrieves the profile row for an account.
func (srv *profileService) GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error) {
	profile, err := srv.profileRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			// Absence is a meaningful outcome for the caller, not a fault.
			srv.log(ctx).Debug("Profile row absent", slog.Any("accountID", accountID))

			return nil, domainerrors.ErrProfileNotFound.WrapMessage("profile row does not exist")
		}

		srv.log(ctx).Error("Failed to load profile", slog.Any("accountID", accountID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load profile")
	}

	return profile, nil
}

// UpdateProfile applies a partial update to the display fields and returns
// the refetched row.
func (srv *profileService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.Profile, error) {
	patch := entity.ProfilePatch{
		DisplayName: input.DisplayName,
		AvatarURL:   input.AvatarURL,
	}
	if patch.Empty() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("no fields to update")
	}

	return srv.applyAndRefetch(ctx, accountID, patch)
}

// SelectTier records the account's chosen plan.
func (srv *profileService) SelectTier(ctx context.Context, accountID uuid.UUID, tier entity.Entitlement) (*entity.Profile, error) {
	// "unset" and unknown values are never selection targets.
	if !tier.Selectable() {
		srv.log(ctx).Warn("Rejected tier selection", slog.Any("accountID", accountID), slog.String("tier", tier.String()))

		return nil, domainerrors.ErrValidationFailed.WrapMessage("tier must be basic or premium")
	}

	srv.log(ctx).Info("Recording tier selection", slog.Any("accountID", accountID), slog.String("tier", tier.String()))

	return srv.applyAndRefetch(ctx, accountID, entity.ProfilePatch{Entitlement: &tier})
}

// Upgrade moves the account to the premium tier. Idempotent.
func (srv *profileService) Upgrade(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error) {
	srv.log(ctx).Info("Upgrading entitlement to premium", slog.Any("accountID", accountID))

	premium := entity.EntitlementPremium

	return srv.applyAndRefetch(ctx, accountID, entity.ProfilePatch{Entitlement: &premium})
}

// applyAndRefetch writes the patch and re-reads the row within one
// transaction. Returning the refetched row rather than a locally assembled
// one keeps the response honest about what the store holds.
func (srv *profileService) applyAndRefetch(ctx context.Context, accountID uuid.UUID, patch entity.ProfilePatch) (*entity.Profile, error) {
	var refetched *entity.Profile
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		profileRepo := repoFactory.ProfileRepo()

		if err := profileRepo.Apply(ctx, accountID, patch); err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				return domainerrors.ErrProfileNotFound.WrapMessage("profile row does not exist")
			}

			return errors.Wrap(err, "failed to apply profile patch")
		}

		var readErr error
		refetched, readErr = profileRepo.FindByAccountID(ctx, accountID)
		if readErr != nil {
			return errors.Wrap(readErr, "failed to refetch profile after write")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute profile update transaction", slog.Any("accountID", accountID), slog.Any("error", err))

		return nil, err
	}

	return refetched, nil
}
