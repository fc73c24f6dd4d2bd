package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/db"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/logger"
	"github.com/lifecert/lifecert-backend/pkg/redis"
)

const precheckScope = "payment-ref"

// Service is the replay guard. Consume marks a payment reference as spent
// inside the caller's transaction; the unique index on consumed_payments is
// the authoritative check, so the mark commits or aborts with the enclosing
// mutation. The Redis precheck is a fast-path convenience only and is never
// trusted for correctness.
type Service interface {
	Consume(ctx context.Context, tx *gorm.DB, input ConsumeInput) error
	Precheck(ctx context.Context, paymentRef string) error
	ReleasePrecheck(ctx context.Context, paymentRef string)
}

// ConsumeInput carries everything a consumed-payment row records.
type ConsumeInput struct {
	PaymentRef    string
	UserID        uuid.UUID
	CertificateID *uuid.UUID
	Purpose       enums.PaymentPurpose
	AmountCents   int64
}

type service struct {
	repo        Repository
	store       redis.ReplayStore
	logg        *logger.Logger
	precheckTTL time.Duration
	usePrecheck bool
}

// NewService wires a replay guard with the provided repository. The Redis
// store is optional; without it every check falls through to the database.
func NewService(repo Repository, store redis.ReplayStore, logg *logger.Logger, precheckTTL time.Duration, usePrecheck bool) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("replay repository required")
	}
	return &service{
		repo:        repo,
		store:       store,
		logg:        logg,
		precheckTTL: precheckTTL,
		usePrecheck: usePrecheck && store != nil,
	}, nil
}

func (s *service) Consume(ctx context.Context, tx *gorm.DB, input ConsumeInput) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	ref, err := NormalizeRef(input.PaymentRef)
	if err != nil {
		return err
	}
	if input.UserID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if !input.Purpose.IsValid() {
		return apperrors.New(apperrors.CodeValidation, "invalid payment purpose")
	}

	row := models.ConsumedPayment{
		PaymentRef:    ref,
		UserID:        input.UserID,
		CertificateID: input.CertificateID,
		Purpose:       input.Purpose,
		AmountCents:   input.AmountCents,
	}
	if err := s.repo.WithTx(tx).Create(ctx, &row); err != nil {
		if db.IsUniqueViolation(err, "ux_consumed_payments_ref") || db.IsUniqueViolation(err, "") {
			return apperrors.New(apperrors.CodeIdempotency, "payment reference already used").
				WithDetails(map[string]string{"payment_ref": ref})
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "marking payment reference consumed")
	}
	return nil
}

// Precheck claims the reference in Redis before the transaction opens so a
// concurrent duplicate submission fails fast without touching the database.
// Redis being down degrades to the authoritative DB check, never to an error.
func (s *service) Precheck(ctx context.Context, paymentRef string) error {
	if !s.usePrecheck {
		return nil
	}
	ref, err := NormalizeRef(paymentRef)
	if err != nil {
		return err
	}
	key := s.store.IdempotencyKey(precheckScope, ref)
	ok, err := s.store.SetNX(ctx, key, "1", s.precheckTTL)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithPaymentRef(ctx, ref), "replay precheck unavailable, falling back to database")
		}
		return nil
	}
	if !ok {
		return apperrors.New(apperrors.CodeIdempotency, "payment reference already used").
			WithDetails(map[string]string{"payment_ref": ref})
	}
	return nil
}

// ReleasePrecheck drops the Redis claim after an aborted mutation so the
// reference is not blocked until the TTL expires. Failed mutations must leave
// no surviving side effects, including the fast-path mark.
func (s *service) ReleasePrecheck(ctx context.Context, paymentRef string) {
	if !s.usePrecheck {
		return
	}
	ref, err := NormalizeRef(paymentRef)
	if err != nil {
		return
	}
	key := s.store.IdempotencyKey(precheckScope, ref)
	if err := s.store.Del(ctx, key); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithPaymentRef(ctx, ref), "releasing replay precheck failed")
	}
}
