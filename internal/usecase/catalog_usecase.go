package usecase

import (
	"context"

	"academy/internal/domain/entity"

	"github.com/google/uuid"
)

// CatalogUsecase defines read access to the course library, gated by the
// account's entitlement.
//
// Accounts that have not completed tier selection are kept out of the library
// entirely (ErrTierNotSelected); premium courses additionally require a
// premium entitlement (ErrUpgradeRequired).
type CatalogUsecase interface {
	// ListCourses returns the course library without lesson media.
	ListCourses(ctx context.Context, accountID uuid.UUID) ([]*entity.Course, error)

	// GetCourse returns one course with its ordered lessons.
	GetCourse(ctx context.Context, accountID uuid.UUID, courseID uuid.UUID) (*entity.Course, error)
}
