package models

import (
	"time"

	"github.com/google/uuid"
)

// Course mirrors the course registry: the designated owner receives the payee
// share of mint/append settlements and may set a per-course price override.
type Course struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID        uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null"`
	Title              string    `gorm:"column:title;not null"`
	PriceOverrideCents *int64    `gorm:"column:price_override_cents"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
