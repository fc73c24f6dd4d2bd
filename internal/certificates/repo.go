package certificates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/db"
	"github.com/lifecert/lifecert-backend/pkg/db/models"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

// Repository manages persistence for certificates and their items. Mutating
// methods are expected to run via WithTx inside the caller's transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cert *models.Certificate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Certificate, error)
	GetBySerial(ctx context.Context, serial int64) (*models.Certificate, error)
	AddItem(ctx context.Context, item *models.CertificateItem) error
	HasItem(ctx context.Context, certificateID, courseID uuid.UUID) (bool, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, fields map[string]any) error
	ListItems(ctx context.Context, certificateID uuid.UUID) ([]models.CertificateItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a certificate repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create allocates the next serial number and inserts the record. The unique
// index on owner_user_id is the backstop against a concurrent double mint:
// two transactions may both read "no record", but only one insert commits.
func (r *repository) Create(ctx context.Context, cert *models.Certificate) error {
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}

	var maxSerial int64
	if err := r.db.WithContext(ctx).
		Model(&models.Certificate{}).
		Select("COALESCE(MAX(serial_number), 0)").
		Scan(&maxSerial).Error; err != nil {
		return fmt.Errorf("allocating serial number: %w", err)
	}
	cert.SerialNumber = maxSerial + 1

	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		if db.IsUniqueViolation(err, "ux_certificates_owner") || db.IsUniqueViolation(err, "") {
			return apperrors.New(apperrors.CodeConflict, "certificate already exists for principal")
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&cert).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &cert, nil
}

func (r *repository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("owner_user_id = ?", ownerID).
		First(&cert).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &cert, nil
}

func (r *repository) GetBySerial(ctx context.Context, serial int64) (*models.Certificate, error) {
	var cert models.Certificate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("serial_number = ?", serial).
		First(&cert).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &cert, nil
}

func (r *repository) AddItem(ctx context.Context, item *models.CertificateItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if db.IsUniqueViolation(err, "ux_certificate_items_member") || db.IsUniqueViolation(err, "") {
			return apperrors.New(apperrors.CodeConflict, "course already on certificate")
		}
		return err
	}
	return nil
}

func (r *repository) HasItem(ctx context.Context, certificateID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CertificateItem{}).
		Where("certificate_id = ? AND course_id = ?", certificateID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateRecord(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Certificate{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "certificate not found")
	}
	return nil
}

func (r *repository) ListItems(ctx context.Context, certificateID uuid.UUID) ([]models.CertificateItem, error) {
	var items []models.CertificateItem
	err := r.db.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "certificate not found")
	}
	return err
}
