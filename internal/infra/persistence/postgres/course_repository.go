package postgres

import (
	"context"

	"academy/internal/domain/entity"
	"academy/internal/domain/repository"
	"academy/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// courseRepository implements the domain.CourseRepository interface.
// The catalog is read-only from the portal's point of view, so the repository
// is constructed directly against the shared *gorm.DB rather than through the
// transaction factory.
type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository is the constructor for courseRepository.
func NewCourseRepository(db *gorm.DB) repository.CourseRepository {
	return &courseRepository{db: db}
}

// List retrieves all published courses without their lessons.
func (repo *courseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	var courseModels []*model.CourseModel
	err := repo.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&courseModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	courses := make([]*entity.Course, 0, len(courseModels))
	for _, courseM := range courseModels {
		courses = append(courses, toCourseDomain(courseM))
	}

	return courses, nil
}

// FindByID retrieves a single course with its lessons in order.
func (repo *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var courseM model.CourseModel
	err := repo.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&courseM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCourseNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toCourseDomain(&courseM), nil
}

// --- Mapper Functions ---

// toCourseDomain converts a GORM CourseModel to a domain Course entity.
func toCourseDomain(data *model.CourseModel) *entity.Course {
	if data == nil {
		return nil
	}

	lessons := make([]*entity.Lesson, 0, len(data.Lessons))
	for i := range data.Lessons {
		lessons = append(lessons, toLessonDomain(&data.Lessons[i]))
	}

	return &entity.Course{
		ID:          data.ID,
		Title:       data.Title,
		Description: data.Description,
		Level:       entity.CourseLevel(data.Level),
		Instructor:  data.Instructor,
		Rating:      data.Rating,
		Premium:     data.Premium,
		Thumbnail:   data.Thumbnail,
		Duration:    data.Duration,
		Lessons:     lessons,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// toLessonDomain converts a GORM LessonModel to a domain Lesson entity.
func toLessonDomain(data *model.LessonModel) *entity.Lesson {
	if data == nil {
		return nil
	}

	return &entity.Lesson{
		ID:       data.ID,
		CourseID: data.CourseID,
		Title:    data.Title,
		Kind:     entity.LessonKind(data.Kind),
		Duration: data.Duration,
		MediaURL: data.MediaURL,
		Position: data.Position,
	}
}
