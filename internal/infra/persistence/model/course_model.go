package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseModel mirrors the 'courses' table.
type CourseModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Level       string    `gorm:"type:varchar(20);not null"`
	Instructor  string    `gorm:"type:varchar(100)"`
	Rating      float64   `gorm:"type:numeric(3,2)"`
	Premium     bool      `gorm:"not null;default:false"`
	Thumbnail   string    `gorm:"type:varchar(512)"`
	Duration    string    `gorm:"type:varchar(20)"` // human-readable, e.g. "4h 30m"
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Lessons []LessonModel `gorm:"foreignKey:CourseID"`
}

// TableName explicitly sets the table name for GORM.
func (CourseModel) TableName() string {
	return "courses"
}

// LessonModel mirrors the 'lessons' table. Position orders lessons within a course.
type LessonModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Kind      string    `gorm:"type:varchar(20);not null"`
	Duration  string    `gorm:"type:varchar(20)"`
	MediaURL  string    `gorm:"type:varchar(512)"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (LessonModel) TableName() string {
	return "lessons"
}
