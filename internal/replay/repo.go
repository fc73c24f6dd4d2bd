package replay

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lifecert/lifecert-backend/pkg/db/models"
)

// Repository manages persistence for consumed payment references.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.ConsumedPayment) error
	Exists(ctx context.Context, paymentRef string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a consumed-payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, row *models.ConsumedPayment) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) Exists(ctx context.Context, paymentRef string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ConsumedPayment{}).
		Where("payment_ref = ?", paymentRef).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
