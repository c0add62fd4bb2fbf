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

func newCatalogService(t *testing.T) (usecase.CatalogUsecase, *mockrepo.MockCourseRepository, *mockrepo.MockProfileRepository) {
	t.Helper()

	courseRepo := new(mockrepo.MockCourseRepository)
	profileRepo := new(mockrepo.MockProfileRepository)

	svc := NewCatalogService(CatalogServiceParams{
		CourseRepo:  courseRepo,
		ProfileRepo: profileRepo,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return svc, courseRepo, profileRepo
}

func entitledProfile(accountID uuid.UUID, tier entity.Entitlement) *entity.Profile {
	return &entity.Profile{AccountID: accountID, Entitlement: tier}
}

func TestCatalogService_ListCourses(t *testing.T) {
	svc, courseRepo, profileRepo := newCatalogService(t)
	ctx := context.Background()
	accountID := uuid.New()

	profileRepo.On("FindByAccountID", ctx, accountID).
		Return(entitledProfile(accountID, entity.EntitlementBasic), nil)
	courseRepo.On("List", ctx).Return([]*entity.Course{
		{ID: uuid.New(), Title: "Candlestick Basics", Premium: false},
		{ID: uuid.New(), Title: "Advanced Order Flow", Premium: true},
	}, nil)

	courses, err := svc.ListCourses(ctx, accountID)

	require.NoError(t, err)
	// Basic accounts still see premium courses listed; only the detail view is gated.
	assert.Len(t, courses, 2)
}

func TestCatalogService_ListCourses_TierNotSelected(t *testing.T) {
	svc, courseRepo, profileRepo := newCatalogService(t)
	ctx := context.Background()
	accountID := uuid.New()

	profileRepo.On("FindByAccountID", ctx, accountID).
		Return(entitledProfile(accountID, entity.EntitlementUnset), nil)

	courses, err := svc.ListCourses(ctx, accountID)

	assert.Nil(t, courses)
	assert.True(t, errors.Is(err, domainerrors.ErrTierNotSelected))
	courseRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestCatalogService_ListCourses_MissingProfile(t *testing.T) {
	svc, _, profileRepo := newCatalogService(t)
	ctx := context.Background()
	accountID := uuid.New()

	profileRepo.On("FindByAccountID", ctx, accountID).Return(nil, repository.ErrProfileNotFound)

	courses, err := svc.ListCourses(ctx, accountID)

	assert.Nil(t, courses)
	// A missing profile row is the same gate as an unset entitlement.
	assert.True(t, errors.Is(err, domainerrors.ErrTierNotSelected))
}

func TestCatalogService_GetCourse_PremiumGate(t *testing.T) {
	svc, courseRepo, profileRepo := newCatalogService(t)
	ctx := context.Background()
	accountID := uuid.New()
	courseID := uuid.New()

	profileRepo.On("FindByAccountID", ctx, accountID).
		Return(entitledProfile(accountID, entity.EntitlementBasic), nil)
	courseRepo.On("FindByID", ctx, courseID).Return(&entity.Course{
		ID:      courseID,
		Title:   "Advanced Order Flow",
		Premium: true,
	}, nil)

	course, err := svc.GetCourse(ctx, accountID, courseID)

	assert.Nil(t, course)
	assert.True(t, errors.Is(err, domainerrors.ErrUpgradeRequired))
}

func TestCatalogService_GetCourse_PremiumAllowed(t *testing.T) {
	svc, courseRepo, profileRepo := newCatalogService(t)
	ctx := context.Background()
	accountID := uuid.New()
	courseID := uuid.New()

	profileRepo.On("FindByAccountID", ctx, accountID).
		Return(entitledProfile(accountID, entity.EntitlementPremium), nil)
	courseRepo.On("FindByID", ctx, courseID).Return(&entity.Course{
		ID:      courseID,
		Title:   "Advanced Order Flow",
		Premium: true,
		Lessons: []*entity.Lesson{
			{Title: "Reading the Tape", Position: 1},
			{Title: "Imbalance Setups", Position: 2},
		},
	}, nil)

	course, err := svc.GetCourse(ctx, accountID, courseID)

	require.NoError(t, err)
	assert.Len(t, course.Lessons, 2)
}

func TestCatalogService_GetCourse_NotFound(t *testing.T) {
	svc, courseRepo, profileRepo := newCatalogService(t)
	ctx := context.Background()
	accountID := uuid.New()
	courseID := uuid.New()

	profileRepo.On("FindByAccountID", ctx, accountID).
		Return(entitledProfile(accountID, entity.EntitlementBasic), nil)
	courseRepo.On("FindByID", ctx, courseID).Return(nil, repository.ErrCourseNotFound)

	course, err := svc.GetCourse(ctx, accountID, courseID)

	assert.Nil(t, course)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}
