package entity

import (
	"time"

	"github.com/google/uuid"
)

// CourseLevel describes the difficulty of a course.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// LessonKind describes the media type of a single lesson.
type LessonKind string

const (
	LessonVideo LessonKind = "video"
	LessonPDF   LessonKind = "pdf"
	LessonQuiz  LessonKind = "quiz"
)

// Course is a unit of the learning catalog. Premium courses are only
// viewable by accounts with a premium entitlement.
type Course struct {
	ID          uuid.UUID   // The Global Unique Identifier (GUID) for the course.
	Title       string      // Course title shown in the library.
	Description string      // Short marketing description.
	Level       CourseLevel // Difficulty level.
	Instructor  string      // Display name of the instructor.
	Rating      float64     // Average learner rating, 0..5.
	Premium     bool        // Whether the course requires a premium entitlement.
	Thumbnail   string      // Thumbnail image reference.
	Duration    string      // Human-readable total duration, e.g. "4h 30m".
	Lessons     []*Lesson   // Ordered lessons; may be empty in list views.
	CreatedAt   time.Time   // Timestamp of when this course was published.
	UpdatedAt   time.Time   // Timestamp of the last modification.
}

// Lesson is a single ordered item inside a course.
type Lesson struct {
	ID       uuid.UUID  // The unique ID for this lesson.
	CourseID uuid.UUID  // Links this lesson to its course.
	Title    string     // Lesson title.
	Kind     LessonKind // Media type: video, pdf or quiz.
	Duration string     // Human-readable duration; empty for quizzes.
	MediaURL string     // Playback/download URL; withheld for locked content.
	Position int        // Order of the lesson within the course, starting at 1.
}
