package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifecert/lifecert-backend/pkg/enums"
)

// LedgerEntry records one settlement transfer leg. Entries are append-only;
// together the legs for a payment ref must conserve the required amount.
type LedgerEntry struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentRef    string                `gorm:"column:payment_ref;not null;index:ix_ledger_entries_payment_ref"`
	CertificateID *uuid.UUID            `gorm:"column:certificate_id;type:uuid"`
	FromUserID    uuid.UUID             `gorm:"column:from_user_id;type:uuid;not null"`
	ToUserID      uuid.UUID             `gorm:"column:to_user_id;type:uuid;not null"`
	Kind          enums.LedgerEntryKind `gorm:"column:kind;type:ledger_entry_kind;not null"`
	AmountCents   int64                 `gorm:"column:amount_cents;not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
