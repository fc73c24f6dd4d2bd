package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifecert/lifecert-backend/pkg/enums"
)

// ConsumedPayment marks a payment reference as spent. The unique index on
// payment_ref is the authoritative replay guard: insertion commits or aborts
// with the enclosing mutation.
type ConsumedPayment struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentRef    string               `gorm:"column:payment_ref;not null;uniqueIndex:ux_consumed_payments_ref"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	CertificateID *uuid.UUID           `gorm:"column:certificate_id;type:uuid"`
	Purpose       enums.PaymentPurpose `gorm:"column:purpose;type:payment_purpose;not null"`
	AmountCents   int64                `gorm:"column:amount_cents;not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
