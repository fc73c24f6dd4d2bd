package platform

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/config"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/logger"
	"github.com/lifecert/lifecert-backend/pkg/outbox"
	"github.com/lifecert/lifecert-backend/pkg/outbox/payloads"
)

const maxNameLength = 120

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the admin-gated configuration surface. Authorization (admin
// role) is enforced at the transport layer; every setter here still records
// who made the change.
type Service interface {
	Current(ctx context.Context) (*models.PlatformSettings, error)
	EnsureDefaults(ctx context.Context, defaults SeedInput) error
	SetMintPrice(ctx context.Context, actor uuid.UUID, cents int64) (*models.PlatformSettings, error)
	SetAppendPrice(ctx context.Context, actor uuid.UUID, cents int64) (*models.PlatformSettings, error)
	SetTreasury(ctx context.Context, actor, treasury uuid.UUID) (*models.PlatformSettings, error)
	SetPlatformName(ctx context.Context, actor uuid.UUID, name string) (*models.PlatformSettings, error)
	SetVerificationRoute(ctx context.Context, actor uuid.UUID, route string) (*models.PlatformSettings, error)
	SetMetadataBaseURI(ctx context.Context, actor uuid.UUID, baseURI string) (*models.PlatformSettings, error)
	SetPaused(ctx context.Context, actor uuid.UUID, paused bool) (*models.PlatformSettings, error)
}

// SeedInput provides the initial settings row for a fresh deployment.
type SeedInput struct {
	MintPriceCents   int64
	AppendPriceCents int64
	TreasuryUserID   uuid.UUID
	PlatformName     string
}

type service struct {
	repo   Repository
	tx     txRunner
	events *outbox.Service
	ledger config.LedgerConfig
	logg   *logger.Logger
}

// NewService wires the platform settings service with its dependencies.
func NewService(repo Repository, tx txRunner, events *outbox.Service, ledger config.LedgerConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{repo: repo, tx: tx, events: events, ledger: ledger, logg: logg}, nil
}

func (s *service) Current(ctx context.Context) (*models.PlatformSettings, error) {
	return s.repo.Get(ctx)
}

// EnsureDefaults inserts the singleton row if none exists yet. Safe to run on
// every boot.
func (s *service) EnsureDefaults(ctx context.Context, defaults SeedInput) error {
	_, err := s.repo.Get(ctx)
	if err == nil {
		return nil
	}
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeNotFound {
		return err
	}

	if defaults.TreasuryUserID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "treasury user id is required")
	}
	if err := s.validatePrice(defaults.MintPriceCents); err != nil {
		return err
	}
	if err := s.validatePrice(defaults.AppendPriceCents); err != nil {
		return err
	}

	row := &models.PlatformSettings{
		MintPriceCents:   defaults.MintPriceCents,
		AppendPriceCents: defaults.AppendPriceCents,
		TreasuryUserID:   defaults.TreasuryUserID,
		PlatformName:     defaults.PlatformName,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(ctx, "platform settings seeded")
	}
	return nil
}

func (s *service) SetMintPrice(ctx context.Context, actor uuid.UUID, cents int64) (*models.PlatformSettings, error) {
	if err := s.validatePrice(cents); err != nil {
		return nil, err
	}
	return s.update(ctx, actor, "mint_price_cents", map[string]any{"mint_price_cents": cents})
}

func (s *service) SetAppendPrice(ctx context.Context, actor uuid.UUID, cents int64) (*models.PlatformSettings, error) {
	if err := s.validatePrice(cents); err != nil {
		return nil, err
	}
	return s.update(ctx, actor, "append_price_cents", map[string]any{"append_price_cents": cents})
}

func (s *service) SetTreasury(ctx context.Context, actor, treasury uuid.UUID) (*models.PlatformSettings, error) {
	if treasury == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "treasury user id is required")
	}
	return s.update(ctx, actor, "treasury_user_id", map[string]any{"treasury_user_id": treasury})
}

func (s *service) SetPlatformName(ctx context.Context, actor uuid.UUID, name string) (*models.PlatformSettings, error) {
	if name == "" || len(name) > maxNameLength {
		return nil, apperrors.New(apperrors.CodeValidation, "platform name length out of bounds")
	}
	return s.update(ctx, actor, "platform_name", map[string]any{"platform_name": name})
}

func (s *service) SetVerificationRoute(ctx context.Context, actor uuid.UUID, route string) (*models.PlatformSettings, error) {
	return s.update(ctx, actor, "verification_route", map[string]any{"verification_route": route})
}

func (s *service) SetMetadataBaseURI(ctx context.Context, actor uuid.UUID, baseURI string) (*models.PlatformSettings, error) {
	return s.update(ctx, actor, "metadata_base_uri", map[string]any{"metadata_base_uri": baseURI})
}

// SetPaused flips the kill switch. Mutating ledger operations fail fast while
// paused; reads are unaffected.
func (s *service) SetPaused(ctx context.Context, actor uuid.UUID, paused bool) (*models.PlatformSettings, error) {
	if actor == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "actor is required")
	}

	var updated *models.PlatformSettings
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.Get(ctx)
		if err != nil {
			return err
		}
		if current.Paused == paused {
			updated = current
			return nil
		}
		if err := repo.Update(ctx, map[string]any{"paused": paused, "updated_by": actor}); err != nil {
			return err
		}
		current.Paused = paused
		current.UpdatedBy = &actor
		updated = current

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPlatformPauseToggled,
			AggregateType: enums.AggregatePlatformSettings,
			AggregateID:   uuid.Nil,
			Actor:         &outbox.ActorRef{UserID: actor, Role: "admin"},
			Data:          payloads.PlatformPauseToggledEvent{Paused: paused, UpdatedBy: actor},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) update(ctx context.Context, actor uuid.UUID, field string, fields map[string]any) (*models.PlatformSettings, error) {
	if actor == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "actor is required")
	}

	var updated *models.PlatformSettings
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fields["updated_by"] = actor
		if err := repo.Update(ctx, fields); err != nil {
			return err
		}
		current, err := repo.Get(ctx)
		if err != nil {
			return err
		}
		updated = current

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPlatformConfigChanged,
			AggregateType: enums.AggregatePlatformSettings,
			AggregateID:   uuid.Nil,
			Actor:         &outbox.ActorRef{UserID: actor, Role: "admin"},
			Data:          payloads.PlatformConfigChangedEvent{Field: field, UpdatedBy: actor},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) validatePrice(cents int64) error {
	if cents <= 0 {
		return apperrors.New(apperrors.CodeValidation, "price must be positive")
	}
	if cents > s.ledger.MaxPriceCents {
		return apperrors.New(apperrors.CodeValidation, "price exceeds maximum").
			WithDetails(map[string]int64{"max_price_cents": s.ledger.MaxPriceCents})
	}
	return nil
}
