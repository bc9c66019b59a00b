package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfirmationMessage is what the storefront shows once a claim is recorded.
const ConfirmationMessage = "Order received! We’ll get back to you shortly."

// Item is one purchased line as reported by the customer.
type Item struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"min=1"`
}

// ManualPaymentInput is the body of a manual payment notification.
type ManualPaymentInput struct {
	Email     string          `json:"email" validate:"required,email"`
	TxnID     string          `json:"txnId" validate:"required,min=4,max=64"`
	Total     decimal.Decimal `json:"total"`
	Items     []Item          `json:"items" validate:"required,min=1,dive"`
	CartToken *string         `json:"-"`
}

// Confirmation is returned once the claim and its outbox event are committed.
type Confirmation struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Message   string    `json:"message"`
}
