package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRegisteredEvent announces a new customer account.
type UserRegisteredEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Lastname string    `json:"lastname"`
}

// ProfileUpdatedEvent lists the fields a customer changed.
type ProfileUpdatedEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	ChangedFields []string  `json:"changed_fields"`
	PhotoChanged  bool      `json:"photo_changed"`
}

// ManualPaymentItem is one purchased line as the customer reported it.
type ManualPaymentItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// ManualPaymentReceivedEvent carries a manual transfer claim to fulfilment staff.
type ManualPaymentReceivedEvent struct {
	PaymentID uuid.UUID           `json:"payment_id"`
	Email     string              `json:"email"`
	TxnID     string              `json:"txn_id"`
	Total     decimal.Decimal     `json:"total"`
	Items     []ManualPaymentItem `json:"items"`
}
