package platform

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/db/models"
	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

// settingsRowID is the fixed primary key of the singleton settings row.
const settingsRowID = int16(1)

// Repository manages the singleton platform settings row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.PlatformSettings, error)
	Insert(ctx context.Context, settings *models.PlatformSettings) error
	Update(ctx context.Context, fields map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := r.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "platform settings not initialized")
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Insert(ctx context.Context, settings *models.PlatformSettings) error {
	settings.ID = settingsRowID
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) Update(ctx context.Context, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.PlatformSettings{}).
		Where("id = ?", settingsRowID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "platform settings not initialized")
	}
	return nil
}
