package cart

import (
	"github.com/shopspring/decimal"
)

// Line is one product entry in the active or saved list.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  *string         `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) clone() Line {
	if l.ImageURL != nil {
		url := *l.ImageURL
		l.ImageURL = &url
	}
	return l
}

// Product is the catalog record handed to AddItem.
type Product struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	ImageURL  *string
}

func (p Product) toLine(quantity int) Line {
	return Line{
		ProductID: p.ProductID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  quantity,
	}.clone()
}

// State is a snapshot of both lists in insertion order.
type State struct {
	Active []Line `json:"active"`
	Saved  []Line `json:"saved"`
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.clone()
	}
	return out
}

func indexOf(lines []Line, productID string) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func without(lines []Line, idx int) []Line {
	out := make([]Line, 0, len(lines)-1)
	out = append(out, lines[:idx]...)
	return append(out, lines[idx+1:]...)
}
