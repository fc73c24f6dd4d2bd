package courses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/config"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
	"github.com/lifecert/lifecert-backend/pkg/outbox"
	"github.com/lifecert/lifecert-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the course registry: ownership, price overrides, and the
// completion and historical-license oracles the ledger consults.
type Service interface {
	CreateCourse(ctx context.Context, input CreateCourseInput) (*models.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Course, error)
	SetPriceOverride(ctx context.Context, input SetPriceOverrideInput) (*models.Course, error)
	ImportCompletion(ctx context.Context, input ImportCompletionInput) error
	GrantLicense(ctx context.Context, input GrantLicenseInput) error
	CheckEligibility(ctx context.Context, userID, courseID uuid.UUID) error
}

// CreateCourseInput registers a course with its designated owner.
type CreateCourseInput struct {
	OwnerUserID uuid.UUID
	Title       string
}

// SetPriceOverrideInput updates a course's price override. A nil price clears
// the override back to the platform default.
type SetPriceOverrideInput struct {
	CourseID    uuid.UUID
	ActorUserID uuid.UUID
	PriceCents  *int64
}

// ImportCompletionInput records that a user finished a course.
type ImportCompletionInput struct {
	UserID      uuid.UUID
	CourseID    uuid.UUID
	CompletedAt time.Time
}

// GrantLicenseInput records a license grant; expiry is informational only.
type GrantLicenseInput struct {
	UserID    uuid.UUID
	CourseID  uuid.UUID
	GrantedAt time.Time
	ExpiresAt *time.Time
}

type service struct {
	repo   Repository
	tx     txRunner
	events *outbox.Service
	ledger config.LedgerConfig
}

// NewService wires the course service with its dependencies.
func NewService(repo Repository, tx txRunner, events *outbox.Service, ledger config.LedgerConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("course repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{repo: repo, tx: tx, events: events, ledger: ledger}, nil
}

func (s *service) CreateCourse(ctx context.Context, input CreateCourseInput) (*models.Course, error) {
	if input.OwnerUserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "owner id is required")
	}
	if input.Title == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "title is required")
	}

	course := &models.Course{
		OwnerUserID: input.OwnerUserID,
		Title:       input.Title,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "course id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// SetPriceOverride is gated by the course's designated owner, not the
// platform admin. The new price must respect the global ceiling.
func (s *service) SetPriceOverride(ctx context.Context, input SetPriceOverrideInput) (*models.Course, error) {
	if input.CourseID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "course id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "actor is required")
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "price override must be positive")
		}
		if *input.PriceCents > s.ledger.MaxPriceCents {
			return nil, apperrors.New(apperrors.CodeValidation, "price override exceeds maximum").
				WithDetails(map[string]int64{"max_price_cents": s.ledger.MaxPriceCents})
		}
	}

	var updated *models.Course
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		course, err := repo.GetByID(ctx, input.CourseID)
		if err != nil {
			return err
		}
		if course.OwnerUserID != input.ActorUserID {
			return apperrors.New(apperrors.CodeForbidden, "only the course owner may set its price")
		}
		if err := repo.SetPriceOverride(ctx, course.ID, input.PriceCents); err != nil {
			return err
		}
		course.PriceOverrideCents = input.PriceCents
		updated = course

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCoursePriceOverrideSet,
			AggregateType: enums.AggregateCourse,
			AggregateID:   course.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID},
			Data: payloads.CoursePriceOverrideSetEvent{
				CourseID:   course.ID,
				OwnerID:    course.OwnerUserID,
				PriceCents: input.PriceCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ImportCompletion(ctx context.Context, input ImportCompletionInput) error {
	if input.UserID == uuid.Nil || input.CourseID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "user id and course id are required")
	}
	if input.CompletedAt.IsZero() {
		input.CompletedAt = time.Now()
	}
	if _, err := s.repo.GetByID(ctx, input.CourseID); err != nil {
		return err
	}
	return s.repo.RecordCompletion(ctx, &models.CourseCompletion{
		UserID:      input.UserID,
		CourseID:    input.CourseID,
		CompletedAt: input.CompletedAt,
	})
}

func (s *service) GrantLicense(ctx context.Context, input GrantLicenseInput) error {
	if input.UserID == uuid.Nil || input.CourseID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "user id and course id are required")
	}
	if input.GrantedAt.IsZero() {
		input.GrantedAt = time.Now()
	}
	if _, err := s.repo.GetByID(ctx, input.CourseID); err != nil {
		return err
	}
	return s.repo.GrantLicense(ctx, &models.CourseLicense{
		UserID:    input.UserID,
		CourseID:  input.CourseID,
		GrantedAt: input.GrantedAt,
		ExpiresAt: input.ExpiresAt,
	})
}

// CheckEligibility enforces both oracle facts before a course may be minted
// or appended: the user completed the course, and the user has at some point
// held a license for it. Current license validity is irrelevant.
func (s *service) CheckEligibility(ctx context.Context, userID, courseID uuid.UUID) error {
	completed, err := s.repo.HasCompletion(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !completed {
		return apperrors.New(apperrors.CodePrecondition, "course not completed by principal").
			WithDetails(map[string]string{"course_id": courseID.String()})
	}

	licensed, err := s.repo.HasEverLicensed(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !licensed {
		return apperrors.New(apperrors.CodePrecondition, "no historical license for course").
			WithDetails(map[string]string{"course_id": courseID.String()})
	}
	return nil
}
