package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseLicense backs the historical license oracle. Presence of a row means
// the user held a license at some point; ExpiresAt is informational only and
// never erases the past-ownership fact.
type CourseLicense struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:ix_course_licenses_user_course"`
	CourseID  uuid.UUID  `gorm:"column:course_id;type:uuid;not null;index:ix_course_licenses_user_course"`
	GrantedAt time.Time  `gorm:"column:granted_at;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
