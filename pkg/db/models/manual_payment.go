package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
)

// ManualPayment records a customer's claim of an out-of-band transfer.
type ManualPayment struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Email         string          `gorm:"column:email;not null"`
	TxnID         string          `gorm:"column:txn_id;not null"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Items         dbtypes.JSON    `gorm:"column:items;type:jsonb;not null"`
	CartTokenHash *string         `gorm:"column:cart_token_hash"` // SHA-256 of the shopper's cart token
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (m *ManualPayment) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
