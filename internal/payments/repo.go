package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists manual payment claims.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, payment *models.ManualPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *Repository) FindByTxnID(ctx context.Context, txnID string) ([]models.ManualPayment, error) {
	var rows []models.ManualPayment
	err := r.db.WithContext(ctx).
		Where("txn_id = ?", txnID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}
