package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is the single growable record a principal owns. Ownership is
// soulbound: no operation anywhere reassigns OwnerUserID after creation.
type Certificate struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SerialNumber     int64             `gorm:"column:serial_number;not null;uniqueIndex:ux_certificates_serial"`
	OwnerUserID      uuid.UUID         `gorm:"column:owner_user_id;type:uuid;not null;uniqueIndex:ux_certificates_owner"`
	DisplayName      string            `gorm:"column:display_name;not null"`
	Valid            bool              `gorm:"column:valid;not null;default:true"`
	RevocationReason *string           `gorm:"column:revocation_reason"`
	ContentRef       string            `gorm:"column:content_ref;not null"`
	ItemCount        int               `gorm:"column:item_count;not null;default:0"`
	LastPaymentRef   string            `gorm:"column:last_payment_ref;not null"`
	Items            []CertificateItem `gorm:"foreignKey:CertificateID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
