package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseCompletion backs the completion oracle: a row exists once the user has
// finished the course.
type CourseCompletion struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_course_completions_user_course"`
	CourseID    uuid.UUID `gorm:"column:course_id;type:uuid;not null;uniqueIndex:ux_course_completions_user_course"`
	CompletedAt time.Time `gorm:"column:completed_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
