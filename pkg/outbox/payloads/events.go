package payloads

import (
	"time"

	"github.com/google/uuid"
)

// CertificateMintedEvent signals the creation of a principal's certificate.
type CertificateMintedEvent struct {
	CertificateID uuid.UUID `json:"certificate_id"`
	SerialNumber  int64     `json:"serial_number"`
	OwnerUserID   uuid.UUID `json:"owner_user_id"`
	DisplayName   string    `json:"display_name"`
	CourseID      uuid.UUID `json:"course_id"`
	ContentRef    string    `json:"content_ref"`
	PaymentRef    string    `json:"payment_ref"`
	AmountCents   int64     `json:"amount_cents"`
}

// CertificateItemAddedEvent is emitted once per appended course, including one
// per course in the batch path, so the indexer sees item-level granularity.
type CertificateItemAddedEvent struct {
	CertificateID uuid.UUID `json:"certificate_id"`
	SerialNumber  int64     `json:"serial_number"`
	OwnerUserID   uuid.UUID `json:"owner_user_id"`
	CourseID      uuid.UUID `json:"course_id"`
	Position      int       `json:"position"`
	ContentRef    string    `json:"content_ref"`
	PaymentRef    string    `json:"payment_ref"`
	AmountCents   int64     `json:"amount_cents"`
}

// CertificateRefreshedEvent records a paid content-reference refresh.
type CertificateRefreshedEvent struct {
	CertificateID uuid.UUID `json:"certificate_id"`
	OwnerUserID   uuid.UUID `json:"owner_user_id"`
	ContentRef    string    `json:"content_ref"`
	PaymentRef    string    `json:"payment_ref"`
	AmountCents   int64     `json:"amount_cents"`
}

// CertificateRevokedEvent records the one-way valid -> invalid transition.
type CertificateRevokedEvent struct {
	CertificateID uuid.UUID `json:"certificate_id"`
	OwnerUserID   uuid.UUID `json:"owner_user_id"`
	Reason        string    `json:"reason,omitempty"`
	RevokedAt     time.Time `json:"revoked_at"`
}

// PaymentSettledEvent summarizes the settlement legs for one payment ref.
type PaymentSettledEvent struct {
	PaymentRef      string    `json:"payment_ref"`
	CertificateID   uuid.UUID `json:"certificate_id"`
	PayerUserID     uuid.UUID `json:"payer_user_id"`
	PayeeUserID     uuid.UUID `json:"payee_user_id"`
	RequiredCents   int64     `json:"required_cents"`
	PlatformCents   int64     `json:"platform_cents"`
	PayeeShareCents int64     `json:"payee_share_cents"`
	RefundCents     int64     `json:"refund_cents"`
	FeePercent      int64     `json:"fee_percent"`
}

// PlatformConfigChangedEvent records which admin setting changed.
type PlatformConfigChangedEvent struct {
	Field     string    `json:"field"`
	UpdatedBy uuid.UUID `json:"updated_by"`
}

// PlatformPauseToggledEvent records pause flips.
type PlatformPauseToggledEvent struct {
	Paused    bool      `json:"paused"`
	UpdatedBy uuid.UUID `json:"updated_by"`
}

// CoursePriceOverrideSetEvent records course-owner price changes.
type CoursePriceOverrideSetEvent struct {
	CourseID   uuid.UUID `json:"course_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	PriceCents *int64    `json:"price_cents"`
}
