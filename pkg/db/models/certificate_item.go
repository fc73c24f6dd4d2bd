package models

import (
	"time"

	"github.com/google/uuid"
)

// CertificateItem is one appended course on a certificate. Position preserves
// append order; the (certificate_id, course_id) unique index is the membership
// invariant that forbids duplicates for the lifetime of the record.
type CertificateItem struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CertificateID uuid.UUID  `gorm:"column:certificate_id;type:uuid;not null;uniqueIndex:ux_certificate_items_member"`
	CourseID      uuid.UUID  `gorm:"column:course_id;type:uuid;not null;uniqueIndex:ux_certificate_items_member"`
	Position      int        `gorm:"column:position;not null"`
	PaymentRef    string     `gorm:"column:payment_ref;not null"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
