package settlement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

type recordingRail struct {
	transfers []Transfer
	failOn    enums.LedgerEntryKind
}

func (r *recordingRail) Pay(ctx context.Context, transfer Transfer) error {
	if r.failOn != "" && transfer.Kind == r.failOn {
		return assert.AnError
	}
	r.transfers = append(r.transfers, transfer)
	return nil
}

func baseInput() Input {
	return Input{
		Payer:         uuid.New(),
		Payee:         uuid.New(),
		Treasury:      uuid.New(),
		RequiredCents: 1000,
		AttachedCents: 1000,
		FeePercent:    10,
	}
}

func TestEngine_SettleSplitsByFloorDivision(t *testing.T) {
	cases := []struct {
		name         string
		required     int64
		feePercent   int64
		wantPlatform int64
		wantPayee    int64
	}{
		{name: "ten percent exact", required: 1000, feePercent: 10, wantPlatform: 100, wantPayee: 900},
		{name: "two percent floor", required: 99, feePercent: 2, wantPlatform: 1, wantPayee: 98},
		{name: "fee rounds down to zero", required: 49, feePercent: 2, wantPlatform: 0, wantPayee: 49},
		{name: "zero fee", required: 500, feePercent: 0, wantPlatform: 0, wantPayee: 500},
		{name: "full fee", required: 500, feePercent: 100, wantPlatform: 500, wantPayee: 0},
	}

	engine := NewEngine()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rail := &recordingRail{}
			input := baseInput()
			input.RequiredCents = tc.required
			input.AttachedCents = tc.required
			input.FeePercent = tc.feePercent

			got, err := engine.Settle(context.Background(), rail, input)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPlatform, got.PlatformCents)
			assert.Equal(t, tc.wantPayee, got.PayeeShareCents)
			assert.Zero(t, got.RefundCents)
			assert.Equal(t, tc.required, got.PlatformCents+got.PayeeShareCents,
				"platform and payee legs must conserve the required amount")
		})
	}
}

func TestEngine_SettleRefundsExcess(t *testing.T) {
	engine := NewEngine()
	rail := &recordingRail{}
	input := baseInput()
	input.AttachedCents = 1500

	got, err := engine.Settle(context.Background(), rail, input)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.RefundCents)

	require.Len(t, rail.transfers, 3)
	last := rail.transfers[2]
	assert.Equal(t, enums.LedgerEntryKindRefund, last.Kind)
	assert.Equal(t, input.Payer, last.To)
	assert.Equal(t, int64(500), last.AmountCents)
}

func TestEngine_SettleInsufficientPayment(t *testing.T) {
	engine := NewEngine()
	rail := &recordingRail{}
	input := baseInput()
	input.AttachedCents = 999

	_, err := engine.Settle(context.Background(), rail, input)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePaymentRequired, apperrors.As(err).Code())
	assert.Empty(t, rail.transfers, "no leg may execute on shortfall")
}

func TestEngine_SettleFailingLegAborts(t *testing.T) {
	engine := NewEngine()
	rail := &recordingRail{failOn: enums.LedgerEntryKindPayeeShare}

	_, err := engine.Settle(context.Background(), rail, baseInput())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDependency, apperrors.As(err).Code())
}

func TestEngine_SettleSkipsZeroLegs(t *testing.T) {
	engine := NewEngine()
	rail := &recordingRail{}
	input := baseInput()
	input.RequiredCents = 49
	input.AttachedCents = 49
	input.FeePercent = 2

	_, err := engine.Settle(context.Background(), rail, input)
	require.NoError(t, err)
	require.Len(t, rail.transfers, 1, "zero platform fee and zero refund emit no leg")
	assert.Equal(t, enums.LedgerEntryKindPayeeShare, rail.transfers[0].Kind)
}

func TestEngine_SettleToPlatform(t *testing.T) {
	engine := NewEngine()
	rail := &recordingRail{}
	input := baseInput()
	input.Payee = uuid.Nil
	input.AttachedCents = 1100

	got, err := engine.SettleToPlatform(context.Background(), rail, input)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.PlatformCents)
	assert.Zero(t, got.PayeeShareCents)
	assert.Equal(t, int64(100), got.RefundCents)

	require.Len(t, rail.transfers, 2)
	assert.Equal(t, input.Treasury, rail.transfers[0].To)
	assert.Equal(t, enums.LedgerEntryKindPlatformFee, rail.transfers[0].Kind)
}

func TestEngine_SettleValidation(t *testing.T) {
	engine := NewEngine()
	rail := &recordingRail{}

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{name: "missing payer", mutate: func(in *Input) { in.Payer = uuid.Nil }},
		{name: "missing payee", mutate: func(in *Input) { in.Payee = uuid.Nil }},
		{name: "missing treasury", mutate: func(in *Input) { in.Treasury = uuid.Nil }},
		{name: "negative required", mutate: func(in *Input) { in.RequiredCents = -1; in.AttachedCents = 0 }},
		{name: "fee out of range", mutate: func(in *Input) { in.FeePercent = 101 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := baseInput()
			tc.mutate(&input)
			_, err := engine.Settle(context.Background(), rail, input)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
		})
	}
}

func setupJournalTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  payment_ref TEXT NOT NULL,
  certificate_id TEXT,
  from_user_id TEXT NOT NULL,
  to_user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestJournalRailWritesEntries(t *testing.T) {
	db := setupJournalTestDB(t)
	engine := NewEngine()
	certID := uuid.New()
	ref := "ab12"
	input := baseInput()
	input.AttachedCents = 1200

	err := db.Transaction(func(tx *gorm.DB) error {
		rail := NewJournalRail(tx, ref, &certID)
		_, err := engine.Settle(context.Background(), rail, input)
		return err
	})
	require.NoError(t, err)

	var entries []models.LedgerEntry
	require.NoError(t, db.Where("payment_ref = ?", ref).Order("created_at ASC").Find(&entries).Error)
	require.Len(t, entries, 3)

	var total int64
	for _, entry := range entries {
		require.NotNil(t, entry.CertificateID)
		assert.Equal(t, certID, *entry.CertificateID)
		if entry.Kind != enums.LedgerEntryKindRefund {
			total += entry.AmountCents
		}
	}
	assert.Equal(t, input.RequiredCents, total)
}

func TestJournalRailRolledBackWithTransaction(t *testing.T) {
	db := setupJournalTestDB(t)
	engine := NewEngine()

	err := db.Transaction(func(tx *gorm.DB) error {
		rail := NewJournalRail(tx, "cd34", nil)
		if _, err := engine.Settle(context.Background(), rail, baseInput()); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&count).Error)
	assert.Zero(t, count, "aborted transaction must not persist settlement legs")
}
