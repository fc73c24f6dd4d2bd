package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/internal/certificates"
	"github.com/lifecert/lifecert-backend/internal/pricing"
	"github.com/lifecert/lifecert-backend/internal/replay"
	"github.com/lifecert/lifecert-backend/internal/settlement"
	"github.com/lifecert/lifecert-backend/pkg/config"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/logger"
	"github.com/lifecert/lifecert-backend/pkg/metrics"
	"github.com/lifecert/lifecert-backend/pkg/outbox"
	"github.com/lifecert/lifecert-backend/pkg/outbox/payloads"
)

const (
	maxDisplayNameLength = 200
	maxContentRefLength  = 512
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type courseOracle interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Course, error)
	CheckEligibility(ctx context.Context, userID, courseID uuid.UUID) error
}

type settingsSource interface {
	Current(ctx context.Context) (*models.PlatformSettings, error)
}

// RailFactory builds the payment rail used for one mutation's settlement
// legs, bound to the mutation's transaction.
type RailFactory func(tx *gorm.DB, paymentRef string, certificateID *uuid.UUID) settlement.Rail

// Service is the ledger state machine: the only entry point for paid
// certificate mutations. Every operation runs as one transaction in strict
// order: validate, consume the payment reference, mutate the record, settle.
// A failure at any step aborts the whole mutation with no surviving side
// effects.
type Service interface {
	MintOrAppend(ctx context.Context, input MintOrAppendInput) (*MutationResult, error)
	AppendBatch(ctx context.Context, input AppendBatchInput) (*MutationResult, error)
	RefreshContent(ctx context.Context, input RefreshInput) (*MutationResult, error)
}

// MintOrAppendInput drives the combined mint-or-append operation. Whether it
// mints or appends is decided inside the transaction by whether the principal
// already owns a record.
type MintOrAppendInput struct {
	PrincipalID   uuid.UUID
	CourseID      uuid.UUID
	DisplayName   string
	ContentRef    string
	PaymentRef    string
	AttachedCents int64
}

// AppendBatchInput appends several courses at once to an existing record.
type AppendBatchInput struct {
	PrincipalID   uuid.UUID
	CourseIDs     []uuid.UUID
	ContentRef    string
	PaymentRef    string
	AttachedCents int64
}

// RefreshInput replaces the content reference of an existing record without
// touching its items.
type RefreshInput struct {
	PrincipalID   uuid.UUID
	CertificateID uuid.UUID
	NewContentRef string
	PaymentRef    string
	AttachedCents int64
}

// MutationResult reports what a successful mutation did.
type MutationResult struct {
	Certificate   *models.Certificate
	Purpose       enums.PaymentPurpose
	RequiredCents int64
	Breakdown     settlement.Breakdown
}

type service struct {
	tx       txRunner
	certs    certificates.Repository
	courses  courseOracle
	settings settingsSource
	guard    replay.Service
	engine   settlement.Engine
	rails    RailFactory
	events   *outbox.Service
	metrics  *metrics.LedgerMetrics
	logg     *logger.Logger
	cfg      config.LedgerConfig
}

// Deps bundles the state machine's collaborators.
type Deps struct {
	Tx          txRunner
	Certs       certificates.Repository
	Courses     courseOracle
	Settings    settingsSource
	Guard       replay.Service
	Engine      settlement.Engine
	RailFactory RailFactory
	Events      *outbox.Service
	Metrics     *metrics.LedgerMetrics
	Logger      *logger.Logger
	Config      config.LedgerConfig
}

// NewService wires the ledger state machine. The rail factory defaults to the
// journaling rail when not provided.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Certs == nil {
		return nil, fmt.Errorf("certificate repository required")
	}
	if deps.Courses == nil {
		return nil, fmt.Errorf("course oracle required")
	}
	if deps.Settings == nil {
		return nil, fmt.Errorf("settings source required")
	}
	if deps.Guard == nil {
		return nil, fmt.Errorf("replay guard required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("settlement engine required")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if deps.RailFactory == nil {
		deps.RailFactory = settlement.NewJournalRail
	}
	return &service{
		tx:       deps.Tx,
		certs:    deps.Certs,
		courses:  deps.Courses,
		settings: deps.Settings,
		guard:    deps.Guard,
		engine:   deps.Engine,
		rails:    deps.RailFactory,
		events:   deps.Events,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
		cfg:      deps.Config,
	}, nil
}

func (s *service) MintOrAppend(ctx context.Context, input MintOrAppendInput) (*MutationResult, error) {
	started := time.Now()
	result, err := s.mintOrAppend(ctx, input)
	kind := "mint_or_append"
	if result != nil {
		kind = string(result.Purpose)
	}
	s.record(kind, started, result, err)
	return result, err
}

func (s *service) mintOrAppend(ctx context.Context, input MintOrAppendInput) (*MutationResult, error) {
	if input.PrincipalID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "principal is required")
	}
	if input.CourseID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "course id is required")
	}
	if err := validateContentRef(input.ContentRef); err != nil {
		return nil, err
	}
	if len(input.DisplayName) > maxDisplayNameLength {
		return nil, apperrors.New(apperrors.CodeValidation, "display name length out of bounds")
	}
	if input.AttachedCents < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "attached amount must be non-negative")
	}
	ref, err := replay.NormalizeRef(input.PaymentRef)
	if err != nil {
		return nil, err
	}

	settings, err := s.currentUnpaused(ctx)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.Get(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.courses.CheckEligibility(ctx, input.PrincipalID, input.CourseID); err != nil {
		return nil, err
	}

	if err := s.guard.Precheck(ctx, ref); err != nil {
		return nil, err
	}

	var result *MutationResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		certs := s.certs.WithTx(tx)

		existing, err := certs.GetByOwner(ctx, input.PrincipalID)
		switch {
		case err == nil:
			result, err = s.appendCourse(ctx, tx, certs, existing, course, settings, input, ref)
			return err
		case isNotFound(err):
			result, err = s.mint(ctx, tx, certs, course, settings, input, ref)
			return err
		default:
			return err
		}
	})
	if err != nil {
		s.guard.ReleasePrecheck(ctx, ref)
		return nil, err
	}
	return result, nil
}

// mint creates the principal's one and only record, seeded with exactly one
// item. The record id is allocated before the guard mark so the consumed
// payment row can point at it without reordering consume-before-mutate.
func (s *service) mint(
	ctx context.Context,
	tx *gorm.DB,
	certs certificates.Repository,
	course *models.Course,
	settings *models.PlatformSettings,
	input MintOrAppendInput,
	ref string,
) (*MutationResult, error) {
	if input.DisplayName == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "display name is required")
	}

	required := pricing.Resolve(course, settings.MintPriceCents)
	certID := uuid.New()

	if err := s.guard.Consume(ctx, tx, replay.ConsumeInput{
		PaymentRef:    ref,
		UserID:        input.PrincipalID,
		CertificateID: &certID,
		Purpose:       enums.PaymentPurposeMint,
		AmountCents:   required,
	}); err != nil {
		return nil, err
	}

	cert := &models.Certificate{
		ID:             certID,
		OwnerUserID:    input.PrincipalID,
		DisplayName:    input.DisplayName,
		Valid:          true,
		ContentRef:     input.ContentRef,
		ItemCount:      1,
		LastPaymentRef: ref,
	}
	if err := certs.Create(ctx, cert); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := certs.AddItem(ctx, &models.CertificateItem{
		CertificateID: cert.ID,
		CourseID:      course.ID,
		Position:      1,
		PaymentRef:    ref,
		CompletedAt:   &now,
	}); err != nil {
		return nil, err
	}

	rail := s.rails(tx, ref, &cert.ID)
	breakdown, err := s.engine.Settle(ctx, rail, settlement.Input{
		Payer:         input.PrincipalID,
		Payee:         course.OwnerUserID,
		Treasury:      settings.TreasuryUserID,
		RequiredCents: required,
		AttachedCents: input.AttachedCents,
		FeePercent:    s.cfg.MintFeePercent,
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCertificateMinted,
		AggregateType: enums.AggregateCertificate,
		AggregateID:   cert.ID,
		Actor:         &outbox.ActorRef{UserID: input.PrincipalID},
		Data: payloads.CertificateMintedEvent{
			CertificateID: cert.ID,
			SerialNumber:  cert.SerialNumber,
			OwnerUserID:   cert.OwnerUserID,
			DisplayName:   cert.DisplayName,
			CourseID:      course.ID,
			ContentRef:    cert.ContentRef,
			PaymentRef:    ref,
			AmountCents:   required,
		},
	}); err != nil {
		return nil, err
	}
	if err := s.emitSettled(ctx, tx, cert.ID, input.PrincipalID, course.OwnerUserID, ref, required, s.cfg.MintFeePercent, breakdown); err != nil {
		return nil, err
	}

	return &MutationResult{
		Certificate:   cert,
		Purpose:       enums.PaymentPurposeMint,
		RequiredCents: required,
		Breakdown:     breakdown,
	}, nil
}

func (s *service) appendCourse(
	ctx context.Context,
	tx *gorm.DB,
	certs certificates.Repository,
	cert *models.Certificate,
	course *models.Course,
	settings *models.PlatformSettings,
	input MintOrAppendInput,
	ref string,
) (*MutationResult, error) {
	if !cert.Valid {
		return nil, apperrors.New(apperrors.CodeStateConflict, "certificate has been revoked")
	}

	member, err := certs.HasItem(ctx, cert.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, apperrors.New(apperrors.CodeConflict, "course already on certificate")
	}

	required := pricing.Resolve(course, settings.AppendPriceCents)
	if err := s.guard.Consume(ctx, tx, replay.ConsumeInput{
		PaymentRef:    ref,
		UserID:        input.PrincipalID,
		CertificateID: &cert.ID,
		Purpose:       enums.PaymentPurposeAppend,
		AmountCents:   required,
	}); err != nil {
		return nil, err
	}

	position := cert.ItemCount + 1
	now := time.Now()
	if err := certs.AddItem(ctx, &models.CertificateItem{
		CertificateID: cert.ID,
		CourseID:      course.ID,
		Position:      position,
		PaymentRef:    ref,
		CompletedAt:   &now,
	}); err != nil {
		return nil, err
	}
	if err := certs.UpdateRecord(ctx, cert.ID, map[string]any{
		"item_count":       position,
		"content_ref":      input.ContentRef,
		"last_payment_ref": ref,
	}); err != nil {
		return nil, err
	}
	cert.ItemCount = position
	cert.ContentRef = input.ContentRef
	cert.LastPaymentRef = ref

	rail := s.rails(tx, ref, &cert.ID)
	breakdown, err := s.engine.Settle(ctx, rail, settlement.Input{
		Payer:         input.PrincipalID,
		Payee:         course.OwnerUserID,
		Treasury:      settings.TreasuryUserID,
		RequiredCents: required,
		AttachedCents: input.AttachedCents,
		FeePercent:    s.cfg.AppendFeePercent,
	})
	if err != nil {
		return nil, err
	}

	if err := s.emitItemAdded(ctx, tx, cert, course.ID, position, ref, required, input.PrincipalID); err != nil {
		return nil, err
	}
	if err := s.emitSettled(ctx, tx, cert.ID, input.PrincipalID, course.OwnerUserID, ref, required, s.cfg.AppendFeePercent, breakdown); err != nil {
		return nil, err
	}

	return &MutationResult{
		Certificate:   cert,
		Purpose:       enums.PaymentPurposeAppend,
		RequiredCents: required,
		Breakdown:     breakdown,
	}, nil
}

// AppendBatch appends every course or none. All courses are validated before
// any row is written; the batch is priced at the flat append default and the
// full amount settles to the platform.
func (s *service) AppendBatch(ctx context.Context, input AppendBatchInput) (*MutationResult, error) {
	started := time.Now()
	result, err := s.appendBatch(ctx, input)
	s.record("batch_append", started, result, err)
	return result, err
}

func (s *service) appendBatch(ctx context.Context, input AppendBatchInput) (*MutationResult, error) {
	if input.PrincipalID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "principal is required")
	}
	if len(input.CourseIDs) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "course ids must be non-empty")
	}
	if err := validateContentRef(input.ContentRef); err != nil {
		return nil, err
	}
	if input.AttachedCents < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "attached amount must be non-negative")
	}
	ref, err := replay.NormalizeRef(input.PaymentRef)
	if err != nil {
		return nil, err
	}

	settings, err := s.currentUnpaused(ctx)
	if err != nil {
		return nil, err
	}

	var batchErr error
	seen := make(map[uuid.UUID]bool, len(input.CourseIDs))
	for _, courseID := range input.CourseIDs {
		if courseID == uuid.Nil {
			batchErr = multierr.Append(batchErr, fmt.Errorf("course id must be non-zero"))
			continue
		}
		if seen[courseID] {
			batchErr = multierr.Append(batchErr, fmt.Errorf("course %s duplicated in batch", courseID))
			continue
		}
		seen[courseID] = true
		if _, err := s.courses.Get(ctx, courseID); err != nil {
			batchErr = multierr.Append(batchErr, err)
			continue
		}
		if err := s.courses.CheckEligibility(ctx, input.PrincipalID, courseID); err != nil {
			batchErr = multierr.Append(batchErr, err)
		}
	}
	if batchErr != nil {
		return nil, apperrors.Wrap(apperrors.CodePrecondition, batchErr, "batch validation failed").
			WithDetails(errorStrings(batchErr))
	}

	required := pricing.BatchTotal(settings.AppendPriceCents, len(input.CourseIDs))

	if err := s.guard.Precheck(ctx, ref); err != nil {
		return nil, err
	}

	var result *MutationResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		certs := s.certs.WithTx(tx)

		cert, err := certs.GetByOwner(ctx, input.PrincipalID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.New(apperrors.CodeNotFound, "no certificate exists for principal")
			}
			return err
		}
		if !cert.Valid {
			return apperrors.New(apperrors.CodeStateConflict, "certificate has been revoked")
		}

		// All-or-nothing membership check before any append.
		for _, courseID := range input.CourseIDs {
			member, err := certs.HasItem(ctx, cert.ID, courseID)
			if err != nil {
				return err
			}
			if member {
				return apperrors.New(apperrors.CodeConflict, "course already on certificate").
					WithDetails(map[string]string{"course_id": courseID.String()})
			}
		}

		if err := s.guard.Consume(ctx, tx, replay.ConsumeInput{
			PaymentRef:    ref,
			UserID:        input.PrincipalID,
			CertificateID: &cert.ID,
			Purpose:       enums.PaymentPurposeBatchAppend,
			AmountCents:   required,
		}); err != nil {
			return err
		}

		now := time.Now()
		position := cert.ItemCount
		for _, courseID := range input.CourseIDs {
			position++
			if err := certs.AddItem(ctx, &models.CertificateItem{
				CertificateID: cert.ID,
				CourseID:      courseID,
				Position:      position,
				PaymentRef:    ref,
				CompletedAt:   &now,
			}); err != nil {
				return err
			}
		}
		if err := certs.UpdateRecord(ctx, cert.ID, map[string]any{
			"item_count":       position,
			"content_ref":      input.ContentRef,
			"last_payment_ref": ref,
		}); err != nil {
			return err
		}
		cert.ItemCount = position
		cert.ContentRef = input.ContentRef
		cert.LastPaymentRef = ref

		rail := s.rails(tx, ref, &cert.ID)
		breakdown, err := s.engine.SettleToPlatform(ctx, rail, settlement.Input{
			Payer:         input.PrincipalID,
			Treasury:      settings.TreasuryUserID,
			RequiredCents: required,
			AttachedCents: input.AttachedCents,
		})
		if err != nil {
			return err
		}

		// One event per appended item so the indexer keeps item granularity.
		startPosition := cert.ItemCount - len(input.CourseIDs)
		for i, courseID := range input.CourseIDs {
			if err := s.emitItemAdded(ctx, tx, cert, courseID, startPosition+i+1, ref, settings.AppendPriceCents, input.PrincipalID); err != nil {
				return err
			}
		}
		if err := s.emitSettled(ctx, tx, cert.ID, input.PrincipalID, settings.TreasuryUserID, ref, required, 100, breakdown); err != nil {
			return err
		}

		result = &MutationResult{
			Certificate:   cert,
			Purpose:       enums.PaymentPurposeBatchAppend,
			RequiredCents: required,
			Breakdown:     breakdown,
		}
		return nil
	})
	if err != nil {
		s.guard.ReleasePrecheck(ctx, ref)
		return nil, err
	}
	return result, nil
}

// RefreshContent replaces the content reference without touching items. The
// caller must own the record; the full required amount settles to the
// platform since no third-party payee exists.
func (s *service) RefreshContent(ctx context.Context, input RefreshInput) (*MutationResult, error) {
	started := time.Now()
	result, err := s.refreshContent(ctx, input)
	s.record("refresh", started, result, err)
	return result, err
}

func (s *service) refreshContent(ctx context.Context, input RefreshInput) (*MutationResult, error) {
	if input.PrincipalID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "principal is required")
	}
	if input.CertificateID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "certificate id is required")
	}
	if err := validateContentRef(input.NewContentRef); err != nil {
		return nil, err
	}
	if input.AttachedCents < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "attached amount must be non-negative")
	}
	ref, err := replay.NormalizeRef(input.PaymentRef)
	if err != nil {
		return nil, err
	}

	settings, err := s.currentUnpaused(ctx)
	if err != nil {
		return nil, err
	}
	required := settings.AppendPriceCents

	if err := s.guard.Precheck(ctx, ref); err != nil {
		return nil, err
	}

	var result *MutationResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		certs := s.certs.WithTx(tx)

		cert, err := certs.GetByOwner(ctx, input.PrincipalID)
		if err != nil {
			return err
		}
		if cert.ID != input.CertificateID {
			return apperrors.New(apperrors.CodeForbidden, "caller does not own this certificate")
		}
		if !cert.Valid {
			return apperrors.New(apperrors.CodeStateConflict, "certificate has been revoked")
		}

		if err := s.guard.Consume(ctx, tx, replay.ConsumeInput{
			PaymentRef:    ref,
			UserID:        input.PrincipalID,
			CertificateID: &cert.ID,
			Purpose:       enums.PaymentPurposeRefresh,
			AmountCents:   required,
		}); err != nil {
			return err
		}

		if err := certs.UpdateRecord(ctx, cert.ID, map[string]any{
			"content_ref":      input.NewContentRef,
			"last_payment_ref": ref,
		}); err != nil {
			return err
		}
		cert.ContentRef = input.NewContentRef
		cert.LastPaymentRef = ref

		rail := s.rails(tx, ref, &cert.ID)
		breakdown, err := s.engine.SettleToPlatform(ctx, rail, settlement.Input{
			Payer:         input.PrincipalID,
			Treasury:      settings.TreasuryUserID,
			RequiredCents: required,
			AttachedCents: input.AttachedCents,
		})
		if err != nil {
			return err
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCertificateRefreshed,
			AggregateType: enums.AggregateCertificate,
			AggregateID:   cert.ID,
			Actor:         &outbox.ActorRef{UserID: input.PrincipalID},
			Data: payloads.CertificateRefreshedEvent{
				CertificateID: cert.ID,
				OwnerUserID:   cert.OwnerUserID,
				ContentRef:    cert.ContentRef,
				PaymentRef:    ref,
				AmountCents:   required,
			},
		}); err != nil {
			return err
		}
		if err := s.emitSettled(ctx, tx, cert.ID, input.PrincipalID, settings.TreasuryUserID, ref, required, s.cfg.AppendFeePercent, breakdown); err != nil {
			return err
		}

		result = &MutationResult{
			Certificate:   cert,
			Purpose:       enums.PaymentPurposeRefresh,
			RequiredCents: required,
			Breakdown:     breakdown,
		}
		return nil
	})
	if err != nil {
		s.guard.ReleasePrecheck(ctx, ref)
		return nil, err
	}
	return result, nil
}

func (s *service) currentUnpaused(ctx context.Context) (*models.PlatformSettings, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if settings.Paused {
		return nil, apperrors.New(apperrors.CodeStateConflict, "platform is paused")
	}
	return settings, nil
}

func (s *service) emitItemAdded(ctx context.Context, tx *gorm.DB, cert *models.Certificate, courseID uuid.UUID, position int, ref string, amount int64, actor uuid.UUID) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCertificateItemAdded,
		AggregateType: enums.AggregateCertificate,
		AggregateID:   cert.ID,
		Actor:         &outbox.ActorRef{UserID: actor},
		Data: payloads.CertificateItemAddedEvent{
			CertificateID: cert.ID,
			SerialNumber:  cert.SerialNumber,
			OwnerUserID:   cert.OwnerUserID,
			CourseID:      courseID,
			Position:      position,
			ContentRef:    cert.ContentRef,
			PaymentRef:    ref,
			AmountCents:   amount,
		},
	})
}

func (s *service) emitSettled(ctx context.Context, tx *gorm.DB, certID, payer, payee uuid.UUID, ref string, required, feePercent int64, breakdown settlement.Breakdown) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentSettled,
		AggregateType: enums.AggregateSettlement,
		AggregateID:   certID,
		Actor:         &outbox.ActorRef{UserID: payer},
		Data: payloads.PaymentSettledEvent{
			PaymentRef:      ref,
			CertificateID:   certID,
			PayerUserID:     payer,
			PayeeUserID:     payee,
			RequiredCents:   required,
			PlatformCents:   breakdown.PlatformCents,
			PayeeShareCents: breakdown.PayeeShareCents,
			RefundCents:     breakdown.RefundCents,
			FeePercent:      feePercent,
		},
	})
}

func (s *service) record(kind string, started time.Time, result *MutationResult, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.IncMutation(kind, outcome)
	s.metrics.ObserveDuration(kind, time.Since(started).Seconds())
	if err == nil && result != nil {
		s.metrics.AddSettled(string(enums.LedgerEntryKindPlatformFee), result.Breakdown.PlatformCents)
		s.metrics.AddSettled(string(enums.LedgerEntryKindPayeeShare), result.Breakdown.PayeeShareCents)
		s.metrics.AddSettled(string(enums.LedgerEntryKindRefund), result.Breakdown.RefundCents)
	}
}

func validateContentRef(ref string) error {
	if ref == "" {
		return apperrors.New(apperrors.CodeValidation, "content reference is required")
	}
	if len(ref) > maxContentRefLength {
		return apperrors.New(apperrors.CodeValidation, "content reference length out of bounds")
	}
	return nil
}

func isNotFound(err error) bool {
	typed := apperrors.As(err)
	return typed != nil && typed.Code() == apperrors.CodeNotFound
}

func errorStrings(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
