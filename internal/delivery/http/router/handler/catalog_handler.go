package handler

import (
	"log/slog"
	"net/http"

	"academy/internal/delivery/http/middleware"
	"academy/internal/delivery/http/response"
	"academy/internal/domain/entity"
	"academy/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CatalogHandler holds dependencies for course library handlers.
type CatalogHandler struct {
	uc     usecase.CatalogUsecase
	logger *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler, injected by Fx.
func NewCatalogHandler(uc usecase.CatalogUsecase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: logger,
	}
}

type courseSummaryView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Level       string  `json:"level"`
	Instructor  string  `json:"instructor,omitempty"`
	Rating      float64 `json:"rating"`
	Premium     bool    `json:"premium"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Duration    string  `json:"duration,omitempty"`
}

type lessonView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	Duration string `json:"duration,omitempty"`
	MediaURL string `json:"mediaUrl,omitempty"`
	Position int    `json:"position"`
}

type courseDetailView struct {
	courseSummaryView

	Lessons []lessonView `json:"lessons"`
}

func toCourseSummaryView(course *entity.Course) courseSummaryView {
	return courseSummaryView{
		ID:          course.ID.String(),
		Title:       course.Title,
		Description: course.Description,
		Level:       string(course.Level),
		Instructor:  course.Instructor,
		Rating:      course.Rating,
		Premium:     course.Premium,
		Thumbnail:   course.Thumbnail,
		Duration:    course.Duration,
	}
}

func toCourseDetailView(course *entity.Course) courseDetailView {
	lessons := make([]lessonView, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		lessons = append(lessons, lessonView{
			ID:       lesson.ID.String(),
			Title:    lesson.Title,
			Kind:     string(lesson.Kind),
			Duration: lesson.Duration,
			MediaURL: lesson.MediaURL,
			Position: lesson.Position,
		})
	}

	return courseDetailView{
		courseSummaryView: toCourseSummaryView(course),
		Lessons:           lessons,
	}
}

// ListCourses handles the course library listing request.
func (h *CatalogHandler) ListCourses(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Invalid account ID in token")
	}

	courses, err := h.uc.ListCourses(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]courseSummaryView, 0, len(courses))
	for _, course := range courses {
		views = append(views, toCourseSummaryView(course))
	}

	return response.Success(c, http.StatusOK, views, "Courses retrieved successfully")
}

// GetCourse handles the course detail request.
func (h *CatalogHandler) GetCourse(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Invalid account ID in token")
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", "Invalid course ID")
	}

	course, err := h.uc.GetCourse(c.Request().Context(), accountID, courseID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toCourseDetailView(course), "Course retrieved successfully")
}
