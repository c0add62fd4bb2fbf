package repository

import (
	"context"
	"errors"

	"academy/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCourseNotFound is returned when a course is not found.
var ErrCourseNotFound = errors.New("course not found")

// CourseRepository defines read operations over the course catalog.
// The catalog is published out-of-band; this flow never mutates it.
type CourseRepository interface {
	// List retrieves all published courses without their lessons.
	List(ctx context.Context) ([]*entity.Course, error)

	// FindByID retrieves a single course with its lessons in order.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
}
