package settlement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
)

// Transfer is one settlement leg moving an amount between two users.
type Transfer struct {
	From        uuid.UUID
	To          uuid.UUID
	Kind        enums.LedgerEntryKind
	AmountCents int64
}

// Rail executes one transfer leg. The engine's ordering guarantees hold for
// any implementation; a failing leg aborts the enclosing mutation.
type Rail interface {
	Pay(ctx context.Context, transfer Transfer) error
}

type journalRail struct {
	tx            *gorm.DB
	paymentRef    string
	certificateID *uuid.UUID
}

// NewJournalRail returns a Rail that records each leg as an append-only
// ledger entry inside the provided transaction. The legs become visible only
// when the surrounding mutation commits.
func NewJournalRail(tx *gorm.DB, paymentRef string, certificateID *uuid.UUID) Rail {
	return &journalRail{tx: tx, paymentRef: paymentRef, certificateID: certificateID}
}

func (r *journalRail) Pay(ctx context.Context, transfer Transfer) error {
	entry := models.LedgerEntry{
		ID:            uuid.New(),
		PaymentRef:    r.paymentRef,
		CertificateID: r.certificateID,
		FromUserID:    transfer.From,
		ToUserID:      transfer.To,
		Kind:          transfer.Kind,
		AmountCents:   transfer.AmountCents,
	}
	return r.tx.WithContext(ctx).Create(&entry).Error
}
