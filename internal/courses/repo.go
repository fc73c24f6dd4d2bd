package courses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/db"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

// Repository manages the course registry and the two eligibility oracles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	SetPriceOverride(ctx context.Context, courseID uuid.UUID, cents *int64) error
	RecordCompletion(ctx context.Context, completion *models.CourseCompletion) error
	GrantLicense(ctx context.Context, license *models.CourseLicense) error
	HasCompletion(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	HasEverLicensed(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a course repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "course not found")
		}
		return nil, err
	}
	return &course, nil
}

func (r *repository) SetPriceOverride(ctx context.Context, courseID uuid.UUID, cents *int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("price_override_cents", cents)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "course not found")
	}
	return nil
}

func (r *repository) RecordCompletion(ctx context.Context, completion *models.CourseCompletion) error {
	if completion.ID == uuid.Nil {
		completion.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(completion).Error; err != nil {
		if db.IsUniqueViolation(err, "ux_course_completions_user_course") || db.IsUniqueViolation(err, "") {
			return apperrors.New(apperrors.CodeConflict, "completion already recorded")
		}
		return err
	}
	return nil
}

func (r *repository) GrantLicense(ctx context.Context, license *models.CourseLicense) error {
	if license.ID == uuid.Nil {
		license.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(license).Error
}

func (r *repository) HasCompletion(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CourseCompletion{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasEverLicensed reports historical license ownership. Expiry is not
// consulted: once granted, the past-ownership fact never goes away.
func (r *repository) HasEverLicensed(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CourseLicense{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
