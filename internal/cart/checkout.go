package cart

import (
	"github.com/shopspring/decimal"
)

// CheckoutItem is one active line as sent to the payment notification.
type CheckoutItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CheckoutPayload is the order intent built from the active list.
type CheckoutPayload struct {
	Email string          `json:"email"`
	TxnID string          `json:"txnId"`
	Total decimal.Decimal `json:"total"`
	Items []CheckoutItem  `json:"items"`
}

// CheckoutPayload flattens the active list. The saved list never takes part.
func (e *Engine) CheckoutPayload(email, txnID string) CheckoutPayload {
	e.mu.RLock()
	defer e.mu.RUnlock()

	items := make([]CheckoutItem, 0, len(e.active))
	for _, l := range e.active {
		items = append(items, CheckoutItem{Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	return CheckoutPayload{
		Email: email,
		TxnID: txnID,
		Total: totalOf(e.active),
		Items: items,
	}
}
