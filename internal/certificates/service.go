package certificates

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/logger"
	"github.com/lifecert/lifecert-backend/pkg/outbox"
	"github.com/lifecert/lifecert-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type settingsSource interface {
	Current(ctx context.Context) (*models.PlatformSettings, error)
}

// Service exposes the read surface of the certificate store plus revocation.
// Paid mutations (mint, append, refresh) live on the ledger state machine.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Certificate, error)
	GetBySerial(ctx context.Context, serial int64) (*models.Certificate, error)
	Revoke(ctx context.Context, input RevokeInput) (*models.Certificate, error)
	VerificationURL(ctx context.Context, cert *models.Certificate) (string, error)
}

// RevokeInput identifies the record to invalidate and who ordered it.
type RevokeInput struct {
	CertificateID uuid.UUID
	Reason        string
	ActorUserID   uuid.UUID
}

type service struct {
	repo     Repository
	tx       txRunner
	events   *outbox.Service
	settings settingsSource
	logg     *logger.Logger
}

// NewService wires the certificate service with its dependencies.
func NewService(repo Repository, tx txRunner, events *outbox.Service, settings settingsSource, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("certificate repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings source required")
	}
	return &service{repo: repo, tx: tx, events: events, settings: settings, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "certificate id is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Certificate, error) {
	if ownerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "owner id is required")
	}
	return s.repo.GetByOwner(ctx, ownerID)
}

func (s *service) GetBySerial(ctx context.Context, serial int64) (*models.Certificate, error) {
	if serial <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "serial number must be positive")
	}
	return s.repo.GetBySerial(ctx, serial)
}

// Revoke flips valid to false. The transition is one-way and idempotent: a
// second revoke succeeds without mutating anything and without emitting an
// event.
func (s *service) Revoke(ctx context.Context, input RevokeInput) (*models.Certificate, error) {
	if input.CertificateID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "certificate id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "actor is required")
	}

	var revoked *models.Certificate
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cert, err := repo.GetByID(ctx, input.CertificateID)
		if err != nil {
			return err
		}
		if !cert.Valid {
			revoked = cert
			return nil
		}

		fields := map[string]any{"valid": false}
		if input.Reason != "" {
			fields["revocation_reason"] = input.Reason
		}
		if err := repo.UpdateRecord(ctx, cert.ID, fields); err != nil {
			return err
		}
		cert.Valid = false
		if input.Reason != "" {
			cert.RevocationReason = &input.Reason
		}
		revoked = cert

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCertificateRevoked,
			AggregateType: enums.AggregateCertificate,
			AggregateID:   cert.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: payloads.CertificateRevokedEvent{
				CertificateID: cert.ID,
				OwnerUserID:   cert.OwnerUserID,
				Reason:        input.Reason,
				RevokedAt:     time.Now(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithCertificateID(ctx, input.CertificateID.String()), "certificate revoked")
	}
	return revoked, nil
}

// VerificationURL renders the public QR/landing-page link:
// {route}?address={owner}&recordId={serial}&items={count}. An empty
// configured route yields an empty string.
func (s *service) VerificationURL(ctx context.Context, cert *models.Certificate) (string, error) {
	if cert == nil {
		return "", apperrors.New(apperrors.CodeValidation, "certificate is required")
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return "", err
	}
	if settings.VerificationRoute == "" {
		return "", nil
	}

	query := url.Values{}
	query.Set("address", cert.OwnerUserID.String())
	query.Set("recordId", strconv.FormatInt(cert.SerialNumber, 10))
	query.Set("items", strconv.Itoa(cert.ItemCount))
	return settings.VerificationRoute + "?" + query.Encode(), nil
}
