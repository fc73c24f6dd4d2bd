package models

import (
	"time"

	"github.com/google/uuid"
)

// PlatformSettings is the singleton admin configuration row (id is always 1).
type PlatformSettings struct {
	ID                int16      `gorm:"column:id;primaryKey"`
	MintPriceCents    int64      `gorm:"column:mint_price_cents;not null"`
	AppendPriceCents  int64      `gorm:"column:append_price_cents;not null"`
	TreasuryUserID    uuid.UUID  `gorm:"column:treasury_user_id;type:uuid;not null"`
	PlatformName      string     `gorm:"column:platform_name;not null"`
	VerificationRoute string     `gorm:"column:verification_route;not null;default:''"`
	MetadataBaseURI   string     `gorm:"column:metadata_base_uri;not null;default:''"`
	Paused            bool       `gorm:"column:paused;not null;default:false"`
	UpdatedBy         *uuid.UUID `gorm:"column:updated_by;type:uuid"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
