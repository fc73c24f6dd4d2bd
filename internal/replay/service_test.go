package replay

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/enums"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

func setupReplayTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS consumed_payments (
  id TEXT PRIMARY KEY,
  payment_ref TEXT NOT NULL,
  user_id TEXT NOT NULL,
  certificate_id TEXT,
  purpose TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  created_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_consumed_payments_ref ON consumed_payments (payment_ref);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func testRef(seed string) string {
	return strings.Repeat("0", 64-len(seed)) + seed
}

type fakeReplayStore struct {
	setNXResult bool
	setNXErr    error
	setKeys     []string
	delKeys     []string
}

func (f *fakeReplayStore) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (f *fakeReplayStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.setKeys = append(f.setKeys, key)
	return f.setNXResult, f.setNXErr
}

func (f *fakeReplayStore) IdempotencyKey(scope, id string) string {
	return "lc:idempotency:" + scope + ":" + id
}

func (f *fakeReplayStore) Del(ctx context.Context, keys ...string) error {
	f.delKeys = append(f.delKeys, keys...)
	return nil
}

func TestNormalizeRef(t *testing.T) {
	ref := testRef("abc123")

	got, err := NormalizeRef("0x" + strings.ToUpper(ref))
	require.NoError(t, err)
	assert.Equal(t, ref, got)

	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace only", raw: "   "},
		{name: "too short", raw: "abc123"},
		{name: "non hex", raw: strings.Repeat("z", 64)},
		{name: "zero sentinel", raw: strings.Repeat("0", 64)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeRef(tc.raw)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
		})
	}
}

func TestService_ConsumeMarksReference(t *testing.T) {
	db := setupReplayTestDB(t)
	svc, err := NewService(NewRepository(db), nil, nil, time.Hour, false)
	require.NoError(t, err)

	input := ConsumeInput{
		PaymentRef:  testRef("a1"),
		UserID:      uuid.New(),
		Purpose:     enums.PaymentPurposeMint,
		AmountCents: 1000,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Consume(context.Background(), tx, input)
	})
	require.NoError(t, err)

	exists, err := NewRepository(db).Exists(context.Background(), testRef("a1"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestService_ConsumeRejectsReuse(t *testing.T) {
	db := setupReplayTestDB(t)
	svc, err := NewService(NewRepository(db), nil, nil, time.Hour, false)
	require.NoError(t, err)

	input := ConsumeInput{
		PaymentRef:  testRef("b2"),
		UserID:      uuid.New(),
		Purpose:     enums.PaymentPurposeAppend,
		AmountCents: 200,
	}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Consume(context.Background(), tx, input)
	}))

	// Different user, different purpose: the bar is global.
	input.UserID = uuid.New()
	input.Purpose = enums.PaymentPurposeMint
	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Consume(context.Background(), tx, input)
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIdempotency, apperrors.As(err).Code())
}

func TestService_ConsumeRolledBackWithTransaction(t *testing.T) {
	db := setupReplayTestDB(t)
	svc, err := NewService(NewRepository(db), nil, nil, time.Hour, false)
	require.NoError(t, err)

	ref := testRef("c3")
	sentinel := assert.AnError
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Consume(context.Background(), tx, ConsumeInput{
			PaymentRef:  ref,
			UserID:      uuid.New(),
			Purpose:     enums.PaymentPurposeRefresh,
			AmountCents: 50,
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	exists, err := NewRepository(db).Exists(context.Background(), ref)
	require.NoError(t, err)
	assert.False(t, exists, "aborted transaction must not leave the mark behind")
}

func TestService_ConsumeValidation(t *testing.T) {
	db := setupReplayTestDB(t)
	svc, err := NewService(NewRepository(db), nil, nil, time.Hour, false)
	require.NoError(t, err)

	cases := []struct {
		name  string
		input ConsumeInput
	}{
		{name: "empty ref", input: ConsumeInput{UserID: uuid.New(), Purpose: enums.PaymentPurposeMint}},
		{name: "missing user", input: ConsumeInput{PaymentRef: testRef("d4"), Purpose: enums.PaymentPurposeMint}},
		{name: "bad purpose", input: ConsumeInput{PaymentRef: testRef("d4"), UserID: uuid.New(), Purpose: enums.PaymentPurpose("nope")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := db.Transaction(func(tx *gorm.DB) error {
				return svc.Consume(context.Background(), tx, tc.input)
			})
			require.Error(t, err)
		})
	}
}

func TestService_PrecheckFastPath(t *testing.T) {
	db := setupReplayTestDB(t)
	store := &fakeReplayStore{setNXResult: true}
	svc, err := NewService(NewRepository(db), store, nil, time.Hour, true)
	require.NoError(t, err)

	ref := testRef("e5")
	require.NoError(t, svc.Precheck(context.Background(), ref))
	require.Len(t, store.setKeys, 1)
	assert.Contains(t, store.setKeys[0], ref)

	store.setNXResult = false
	err = svc.Precheck(context.Background(), ref)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIdempotency, apperrors.As(err).Code())

	svc.ReleasePrecheck(context.Background(), ref)
	require.Len(t, store.delKeys, 1)
	assert.Contains(t, store.delKeys[0], ref)
}

func TestService_PrecheckDegradesWhenStoreDown(t *testing.T) {
	db := setupReplayTestDB(t)
	store := &fakeReplayStore{setNXErr: assert.AnError}
	svc, err := NewService(NewRepository(db), store, nil, time.Hour, true)
	require.NoError(t, err)

	assert.NoError(t, svc.Precheck(context.Background(), testRef("f6")))
}

func TestService_PrecheckDisabled(t *testing.T) {
	db := setupReplayTestDB(t)
	store := &fakeReplayStore{}
	svc, err := NewService(NewRepository(db), store, nil, time.Hour, false)
	require.NoError(t, err)

	require.NoError(t, svc.Precheck(context.Background(), testRef("a7")))
	assert.Empty(t, store.setKeys)
}
