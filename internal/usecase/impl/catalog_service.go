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

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	courseRepo  repository.CourseRepository
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// CatalogServiceParams holds dependencies for catalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	CourseRepo  repository.CourseRepository
	ProfileRepo repository.ProfileRepository
	Logger      *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		courseRepo:  params.CourseRepo,
		profileRepo: params.ProfileRepo,
		logger:      params.Logger,
	}
}

func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListCourses returns the course library for an entitled account.
func (srv *catalogService) ListCourses(ctx context.Context, accountID uuid.UUID) ([]*entity.Course, error) {
	if _, err := srv.requireEntitlement(ctx, accountID); err != nil {
		return nil, err
	}

	courses, err := srv.courseRepo.List(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to list courses", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list courses")
	}

	return courses, nil
}

// GetCourse returns one course with its ordered lessons. Premium courses
// require a premium entitlement.
func (srv *catalogService) GetCourse(ctx context.Context, accountID uuid.UUID, courseID uuid.UUID) (*entity.Course, error) {
	entitlement, err := srv.requireEntitlement(ctx, accountID)
	if err != nil {
		return nil, err
	}

	course, err := srv.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, domainerrors.ErrNotFound.WrapMessage("course not found")
		}

		srv.log(ctx).Error("Failed to load course", slog.Any("courseID", courseID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load course")
	}

	if course.Premium && entitlement != entity.EntitlementPremium {
		srv.log(ctx).Debug("Premium course blocked", slog.Any("accountID", accountID), slog.Any("courseID", courseID))

		return nil, domainerrors.ErrUpgradeRequired.WrapMessage("course requires a premium plan")
	}

	return course, nil
}

// requireEntitlement loads the account's entitlement and rejects accounts
// that have not completed tier selection.
func (srv *catalogService) requireEntitlement(ctx context.Context, accountID uuid.UUID) (entity.Entitlement, error) {
	profile, err := srv.profileRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return entity.EntitlementUnset, domainerrors.ErrTierNotSelected.WrapMessage("no profile for this account")
		}

		return entity.EntitlementUnset, errors.Wrap(err, "failed to load profile for entitlement check")
	}

	if !profile.Entitlement.Entitled() {
		return entity.EntitlementUnset, domainerrors.ErrTierNotSelected.WrapMessage("tier selection not completed")
	}

	return profile.Entitlement, nil
}
